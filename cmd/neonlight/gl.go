package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"

	"github.com/normanking/neonlight/internal/light"
	"github.com/normanking/neonlight/internal/neon"
	"github.com/normanking/neonlight/internal/renderer"
)

func newGLCmd(g *globals) *cobra.Command {
	var showFPS bool

	cmd := &cobra.Command{
		Use:   "gl",
		Short: "Show the light in a native OpenGL window",
		RunE: func(cmd *cobra.Command, args []string) error {
			syslog, err := g.openLogger(true)
			if err != nil {
				return err
			}
			zlogger := syslog.Zerolog()
			cfg := g.store.Config()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := glfw.Init(); err != nil {
				return err
			}
			defer glfw.Terminate()

			host, err := light.New(g.store, nil, zlogger)
			if err != nil {
				return err
			}
			defer host.Stop()

			rcfg := renderer.DefaultConfig()
			rcfg.Width = cfg.Light.Width
			rcfg.Height = cfg.Light.Height
			rcfg.Title = cfg.Window.Title
			rcfg.ShaderDir = cfg.Shaders.Dir
			rcfg.HotReload = cfg.Shaders.HotReload

			rend, err := renderer.New(rcfg, zlogger, host.Bus)
			if err != nil {
				return err
			}
			defer rend.Shutdown()

			bindKeys(rend.Window(), host)

			if err := host.Start(ctx); err != nil {
				syslog.Error("remote", "Failed to start state feed", err, nil)
			}
			syslog.Info("gl", "Renderer initialized", map[string]interface{}{
				"width":   rcfg.Width,
				"height":  rcfg.Height,
				"shaders": rcfg.ShaderDir,
			})

			frameCount := 0
			fpsTimer := time.Now()

			for !rend.ShouldClose() && ctx.Err() == nil {
				// This thread is the light loop's goroutine
				if w, h := rend.ViewSize(); w != host.Ctrl.Metrics().Width || h != host.Ctrl.Metrics().Height {
					host.Ctrl.Resize(w, h)
				}
				host.Loop.Step()
				rend.Render(host.Ctrl)
				rend.Present()

				frameCount++
				if showFPS && time.Since(fpsTimer) >= time.Second {
					syslog.Debug("gl", "Frame stats", map[string]interface{}{
						"fps":   frameCount,
						"draws": rend.GetStats(),
						"state": host.Ctrl.State().String(),
					})
					frameCount = 0
					fpsTimer = time.Now()
				}
			}

			syslog.Info("gl", "Render loop ended", nil)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFPS, "fps", false, "log frame rate every second")
	return cmd
}

// bindKeys maps digit keys to states, P to privacy and Escape or Q to close
func bindKeys(w *glfw.Window, host *light.Host) {
	w.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch {
		case key == glfw.KeyEscape || key == glfw.KeyQ:
			w.SetShouldClose(true)
		case key == glfw.KeyP:
			host.Selector.OnPrivacyToggled(!host.Ctrl.IsPrivacy())
		case key >= glfw.Key0 && key <= glfw.Key9:
			states := neon.States()
			if i := int(key - glfw.Key0); i < len(states) {
				host.Selector.OnStateRequested(states[i])
			}
		}
	})
}
