// NeonLight - the assistant's status light
package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	"github.com/normanking/neonlight/internal/bridge"
	"github.com/normanking/neonlight/internal/config"
	"github.com/normanking/neonlight/internal/light"
	"github.com/normanking/neonlight/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

const version = "1.0.0"

// Global logger instance
var syslog *logging.Logger

// getAssets returns the frontend assets with the correct path
func getAssets() fs.FS {
	fsys, err := fs.Sub(assets, "frontend/dist")
	if err != nil {
		syslog.Error("assets", "Failed to get assets", err, nil)
		panic(err)
	}

	entries, _ := fs.ReadDir(fsys, ".")
	syslog.Debug("assets", "Assets loaded", map[string]interface{}{
		"fileCount": len(entries),
	})

	return fsys
}

func main() {
	store, err := config.Open("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := store.Config()

	syslog, err = logging.New(cfg.Logging.LoggerConfig())
	if err != nil {
		// Fallback to standard log if logger fails
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer syslog.Close()

	syslog.Info("main", "NeonLight starting...", map[string]interface{}{
		"config":     store.Path(),
		"windowSize": cfg.Window,
		"remote":     cfg.Remote.Enabled,
	})

	zlogger := syslog.Zerolog()

	host, err := light.New(store, nil, zlogger)
	if err != nil {
		syslog.Error("main", "Failed to create light", err, nil)
		os.Exit(1)
	}

	lightBridge := bridge.NewLightBridge(host.Ctrl, host.Selector, host.Bus, zlogger)
	settingsBridge := bridge.NewSettingsBridge(store, host.Ctrl, host.Bus, zlogger)
	connectionBridge := bridge.NewConnectionBridge(host.Remote, cfg.Remote.URL, host.Bus, zlogger)
	logBridge := bridge.NewLogBridge(syslog)

	app := &App{
		store:            store,
		syslog:           syslog,
		host:             host,
		lightBridge:      lightBridge,
		settingsBridge:   settingsBridge,
		connectionBridge: connectionBridge,
		logBridge:        logBridge,
	}

	appOptions := &options.App{
		Title:       cfg.Window.Title,
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		MinWidth:    200,
		MinHeight:   120,
		Frameless:   cfg.Window.Frameless,
		AlwaysOnTop: cfg.Window.AlwaysOnTop,
		AssetServer: &assetserver.Options{
			Assets: getAssets(),
		},
		BackgroundColour: &options.RGBA{R: 0, G: 0, B: 0, A: 255},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
			lightBridge,
			settingsBridge,
			connectionBridge,
			logBridge,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				FullSizeContent:            true,
			},
			WebviewIsTransparent: cfg.Window.Transparent,
			WindowIsTranslucent:  cfg.Window.Transparent,
			About: &mac.AboutInfo{
				Title:   "NeonLight",
				Message: "Assistant status light\nVersion " + version,
			},
		},
	}

	if err := wails.Run(appOptions); err != nil {
		syslog.Error("wails", "Wails.Run failed", err, nil)
		os.Exit(1)
	}

	syslog.Info("main", "Application exited normally", nil)
}

// App struct holds the main application state
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	store            *config.Store
	syslog           *logging.Logger
	host             *light.Host
	lightBridge      *bridge.LightBridge
	settingsBridge   *bridge.SettingsBridge
	connectionBridge *bridge.ConnectionBridge
	logBridge        *bridge.LogBridge
}

// startup is called when the app starts
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	a.lightBridge.Bind(ctx)
	a.settingsBridge.Bind(ctx)
	a.connectionBridge.Bind(ctx)
	a.logBridge.Bind(ctx)

	loopCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	go a.host.Loop.Run(loopCtx)

	if err := a.host.Start(loopCtx); err != nil {
		a.syslog.Error("remote", "Failed to start state feed", err, nil)
	}

	a.syslog.Info("lifecycle", "App.startup() complete", nil)
}

// shutdown is called when the app is closing
func (a *App) shutdown(ctx context.Context) {
	a.host.Stop()
	if a.cancel != nil {
		a.cancel()
	}
	a.syslog.Info("lifecycle", "NeonLight shutdown complete", nil)
}

// GetVersion returns the application version
func (a *App) GetVersion() string {
	return version
}

// GetConfig returns the current configuration
func (a *App) GetConfig() *config.Config {
	return a.store.Config()
}
