package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog"

	"github.com/normanking/neonlight/internal/bus"
	"github.com/normanking/neonlight/internal/neon"
	"github.com/normanking/neonlight/internal/renderer/paint"
)

type Config struct {
	Width         int
	Height        int
	Title         string
	VSync         bool
	MSAA          int
	TransparentBG bool
	ShaderDir     string
	HotReload     bool
}

func DefaultConfig() Config {
	return Config{
		Width:         480,
		Height:        160,
		Title:         "NeonLight",
		VSync:         true,
		MSAA:          4,
		TransparentBG: true,
	}
}

// Renderer paints the light into a GLFW window. All methods must be
// called from the thread that created it.
type Renderer struct {
	window *glfw.Window
	config Config
	logger zerolog.Logger

	gradientShader *Shader
	overlayShader  *Shader
	watcher        *ShaderWatcher

	quadVAO uint32
	batch   paint.Batch

	drawCalls int

	fbWidth  int
	fbHeight int
}

// New opens the window and compiles the shaders. glfw.Init must already
// have been called on the locked main thread.
func New(cfg Config, logger zerolog.Logger, events bus.Publisher) (*Renderer, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	if cfg.MSAA > 0 {
		glfw.WindowHint(glfw.Samples, cfg.MSAA)
	}

	if cfg.TransparentBG {
		glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)
	}

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		return nil, fmt.Errorf("gl init: %w", err)
	}

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	r := &Renderer{
		window: window,
		config: cfg,
		logger: logger.With().Str("component", "renderer").Logger(),
	}
	r.fbWidth, r.fbHeight = window.GetFramebufferSize()
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		r.fbWidth, r.fbHeight = w, h
	})

	if err := r.initShaders(); err != nil {
		window.Destroy()
		return nil, fmt.Errorf("init shaders: %w", err)
	}

	if cfg.HotReload && cfg.ShaderDir != "" {
		r.watcher, err = NewShaderWatcher(r.logger, events)
		if err != nil {
			r.logger.Warn().Err(err).Msg("Shader hot reload disabled")
		} else {
			for _, s := range []*Shader{r.gradientShader, r.overlayShader} {
				if err := r.watcher.Watch(s); err != nil {
					r.logger.Warn().Err(err).Str("shader", s.Name).Msg("Cannot watch shader")
				}
			}
		}
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	if cfg.MSAA > 0 {
		gl.Enable(gl.MULTISAMPLE)
	}

	return r, nil
}

func (r *Renderer) initShaders() error {
	var err error

	r.gradientShader, err = LoadShader(r.config.ShaderDir, "gradient", gradientFragSrc)
	if err != nil {
		return err
	}

	r.overlayShader, err = LoadShader(r.config.ShaderDir, "overlay", overlayFragSrc)
	if err != nil {
		r.gradientShader.Delete()
		return err
	}

	return nil
}

// Window exposes the GLFW window for input callbacks
func (r *Renderer) Window() *glfw.Window {
	return r.window
}

// ViewSize returns the window size in screen coordinates, which is the
// size the light lays out against
func (r *Renderer) ViewSize() (int, int) {
	return r.window.GetSize()
}

// Render clears the framebuffer and draws the light's current frame.
// Must run on the light loop's goroutine.
func (r *Renderer) Render(ctrl *neon.Controller) {
	if r.watcher != nil {
		r.watcher.reloadStale()
	}

	r.drawCalls = 0
	gl.Viewport(0, 0, int32(r.fbWidth), int32(r.fbHeight))
	gl.Disable(gl.SCISSOR_TEST)
	if r.config.TransparentBG {
		gl.ClearColor(0, 0, 0, 0)
	} else {
		gl.ClearColor(0, 0, 0, 1)
	}
	gl.Clear(gl.COLOR_BUFFER_BIT)

	r.batch.Reset(r.fbWidth, r.fbHeight)
	ctrl.Draw(&r.batch)
	if r.batch.Empty() {
		return
	}

	gl.Enable(gl.SCISSOR_TEST)
	gl.BindVertexArray(r.quadVAO)
	for _, cmd := range r.batch.Commands {
		r.execute(cmd)
	}
	gl.BindVertexArray(0)
	gl.Disable(gl.SCISSOR_TEST)
}

func (r *Renderer) execute(cmd paint.Command) {
	if cmd.Scissor.W <= 0 || cmd.Scissor.H <= 0 {
		return
	}
	gl.Scissor(cmd.Scissor.X, cmd.Scissor.Y, cmd.Scissor.W, cmd.Scissor.H)

	if cmd.Flat {
		r.overlayShader.Use()
		r.overlayShader.SetVec4("uColor", cmd.Color)
	} else {
		s := r.gradientShader
		s.Use()
		s.SetVec2("uCenter", cmd.Center)
		s.SetFloat("uRadius", cmd.Radius)
		s.SetVec4("uInner", cmd.Inner)
		s.SetVec4("uOuter", cmd.Outer)
		s.SetVec2("uStops", cmd.Stops)
	}

	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	r.drawCalls++
}

func (r *Renderer) Present() {
	r.window.SwapBuffers()
	glfw.PollEvents()
}

func (r *Renderer) ShouldClose() bool {
	return r.window.ShouldClose()
}

func (r *Renderer) GetStats() (drawCalls int) {
	return r.drawCalls
}

func (r *Renderer) Shutdown() {
	if r.watcher != nil {
		r.watcher.Close()
	}

	gl.DeleteVertexArrays(1, &r.quadVAO)
	r.gradientShader.Delete()
	r.overlayShader.Delete()

	r.window.Destroy()
}

var fullscreenVertSrc = `#version 410 core

void main() {
    vec2 positions[3] = vec2[](
        vec2(-1.0, -1.0),
        vec2(3.0, -1.0),
        vec2(-1.0, 3.0)
    );

    gl_Position = vec4(positions[gl_VertexID], 0.0, 1.0);
}
` + "\x00"

var gradientFragSrc = `#version 410 core

out vec4 FragColor;

uniform vec2 uCenter;
uniform float uRadius;
uniform vec4 uInner;
uniform vec4 uOuter;
uniform vec2 uStops;

void main() {
    if (uRadius <= 0.0) {
        FragColor = uOuter;
        return;
    }
    float t = distance(gl_FragCoord.xy, uCenter) / uRadius;
    float span = max(uStops.y - uStops.x, 1e-5);
    FragColor = mix(uInner, uOuter, clamp((t - uStops.x) / span, 0.0, 1.0));
}
` + "\x00"

var overlayFragSrc = `#version 410 core

out vec4 FragColor;

uniform vec4 uColor;

void main() {
    FragColor = uColor;
}
` + "\x00"
