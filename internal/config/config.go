// Package config provides configuration management for NeonLight
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/normanking/neonlight/internal/anim"
	"github.com/normanking/neonlight/internal/argb"
	"github.com/normanking/neonlight/internal/bus"
	"github.com/normanking/neonlight/internal/logging"
	"github.com/normanking/neonlight/internal/neon"
)

// Config holds all application configuration
type Config struct {
	Light   LightConfig   `mapstructure:"light"`
	Palette PaletteConfig `mapstructure:"palette"`
	Timings TimingsConfig `mapstructure:"timings"`
	Window  WindowConfig  `mapstructure:"window"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Shaders ShaderConfig  `mapstructure:"shaders"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LightConfig configures the light view
type LightConfig struct {
	Density       float64       `mapstructure:"density"` // pixels per density-independent unit
	Width         int           `mapstructure:"width"`
	Height        int           `mapstructure:"height"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	StartFollowUp string        `mapstructure:"start_follow_up"` // state selected when Start finishes, empty for none
	Privacy       bool          `mapstructure:"privacy"`          // privacy flag at launch
}

// PaletteConfig holds the light colors as #AARRGGBB or #RRGGBB
type PaletteConfig struct {
	Foreground string `mapstructure:"foreground"`
	Background string `mapstructure:"background"`
	Error      string `mapstructure:"error"`
	Privacy    string `mapstructure:"privacy"`
}

// TimingsConfig holds animation durations
type TimingsConfig struct {
	Start            time.Duration `mapstructure:"start"`
	Listening        time.Duration `mapstructure:"listening"`
	Thinking         time.Duration `mapstructure:"thinking"`
	ThinkingRecovery time.Duration `mapstructure:"thinking_recovery"`
	Speaking         time.Duration `mapstructure:"speaking"`
	SpeakingRecovery time.Duration `mapstructure:"speaking_recovery"`
	Error            time.Duration `mapstructure:"error"`
	Privacy          time.Duration `mapstructure:"privacy"`
	Recovery         time.Duration `mapstructure:"recovery"`
}

// WindowConfig configures the window
type WindowConfig struct {
	Title       string `mapstructure:"title"`
	Width       int    `mapstructure:"width"`
	Height      int    `mapstructure:"height"`
	AlwaysOnTop bool   `mapstructure:"always_on_top"`
	Frameless   bool   `mapstructure:"frameless"`
	Transparent bool   `mapstructure:"transparent"`
}

// RemoteConfig configures the assistant state feed
type RemoteConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	URL               string        `mapstructure:"url"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
	MaxReconnectDelay time.Duration `mapstructure:"max_reconnect_delay"`
}

// ShaderConfig configures GL shader overrides
type ShaderConfig struct {
	Dir       string `mapstructure:"dir"` // directory holding gradient.frag / overlay.frag overrides
	HotReload bool   `mapstructure:"hot_reload"`
}

// LoggingConfig configures the logger
type LoggingConfig struct {
	Dir        string `mapstructure:"dir"`
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	MaxHistory int    `mapstructure:"max_history"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	t := neon.DefaultTimings()
	return &Config{
		Light: LightConfig{
			Density:       1.0,
			Width:         480,
			Height:        160,
			FrameInterval: 16 * time.Millisecond,
			StartFollowUp: neon.Listening.String(),
		},
		Palette: PaletteConfig{
			Foreground: argb.Foreground.Hex(),
			Background: argb.Background.Hex(),
			Error:      argb.Error.Hex(),
			Privacy:    argb.Privacy.Hex(),
		},
		Timings: TimingsConfig{
			Start:            t.Start,
			Listening:        t.Listening,
			Thinking:         t.Thinking,
			ThinkingRecovery: t.ThinkingRecovery,
			Speaking:         t.Speaking,
			SpeakingRecovery: t.SpeakingRecovery,
			Error:            t.Error,
			Privacy:          t.Privacy,
			Recovery:         t.Recovery,
		},
		Window: WindowConfig{
			Title:  "NeonLight",
			Width:  480,
			Height: 220,
		},
		Remote: RemoteConfig{
			URL:               "ws://localhost:8765/light",
			ReconnectDelay:    3 * time.Second,
			MaxReconnectDelay: 60 * time.Second,
		},
		Shaders: ShaderConfig{
			HotReload: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			MaxHistory: 1000,
		},
	}
}

// Palette converts the hex colors
func (p PaletteConfig) Palette() (neon.Palette, error) {
	var out neon.Palette
	for _, f := range []struct {
		name string
		hex  string
		dst  *argb.Color
	}{
		{"foreground", p.Foreground, &out.Foreground},
		{"background", p.Background, &out.Background},
		{"error", p.Error, &out.Error},
		{"privacy", p.Privacy, &out.Privacy},
	} {
		c, err := argb.ParseHex(f.hex)
		if err != nil {
			return neon.Palette{}, fmt.Errorf("palette.%s: %w", f.name, err)
		}
		*f.dst = c
	}
	return out, nil
}

// Timings converts to controller timings
func (t TimingsConfig) Timings() neon.Timings {
	return neon.Timings{
		Start:            t.Start,
		Listening:        t.Listening,
		Thinking:         t.Thinking,
		ThinkingRecovery: t.ThinkingRecovery,
		Speaking:         t.Speaking,
		SpeakingRecovery: t.SpeakingRecovery,
		Error:            t.Error,
		Privacy:          t.Privacy,
		Recovery:         t.Recovery,
	}
}

// Metrics returns the light view metrics
func (l LightConfig) Metrics() neon.Metrics {
	return neon.Metrics{Density: l.Density, Width: l.Width, Height: l.Height}
}

// FollowUp parses StartFollowUp. ok is false when no follow-up is configured.
func (l LightConfig) FollowUp() (s neon.State, ok bool, err error) {
	if strings.TrimSpace(l.StartFollowUp) == "" {
		return neon.Idle, false, nil
	}
	s, err = neon.ParseState(l.StartFollowUp)
	if err != nil {
		return neon.Idle, false, fmt.Errorf("light.start_follow_up: %w", err)
	}
	return s, true, nil
}

// LoggerConfig converts to logger settings. An empty dir keeps the
// logger's default location.
func (l LoggingConfig) LoggerConfig() *logging.Config {
	cfg := logging.DefaultConfig()
	if l.Dir != "" {
		cfg.LogDir = l.Dir
	}
	if l.Level != "" {
		cfg.Level = logging.LogLevel(strings.ToLower(l.Level))
	}
	if l.MaxHistory > 0 {
		cfg.MaxHistory = l.MaxHistory
	}
	cfg.Console = l.Console
	return cfg
}

// ControllerOptions builds the light controller options from c
func (c *Config) ControllerOptions(loop *anim.Loop, logger zerolog.Logger, events bus.Publisher) (neon.Options, error) {
	p, err := c.Palette.Palette()
	if err != nil {
		return neon.Options{}, err
	}
	return neon.Options{
		Loop:    loop,
		Metrics: c.Light.Metrics(),
		Palette: p,
		Timings: c.Timings.Timings(),
		Logger:  logger,
		Events:  events,
	}, nil
}

// Apply pushes the palette and timings onto ctrl. It must run on the
// controller's loop goroutine.
func (c *Config) Apply(ctrl *neon.Controller) error {
	p, err := c.Palette.Palette()
	if err != nil {
		return err
	}
	ctrl.SetPalette(p)
	ctrl.SetTimings(c.Timings.Timings())
	return nil
}

// Validate checks values that would leave the light unusable
func (c *Config) Validate() error {
	var errs []error
	if c.Light.Density <= 0 {
		errs = append(errs, fmt.Errorf("light.density must be positive, got %v", c.Light.Density))
	}
	if c.Light.Width < 0 || c.Light.Height < 0 {
		errs = append(errs, fmt.Errorf("light size must not be negative, got %dx%d", c.Light.Width, c.Light.Height))
	}
	if _, _, err := c.Light.FollowUp(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Palette.Palette(); err != nil {
		errs = append(errs, err)
	}
	if c.Remote.Enabled && c.Remote.URL == "" {
		errs = append(errs, errors.New("remote.url is required when remote.enabled is set"))
	}
	return errors.Join(errs...)
}

// Store reads, writes and watches one config file
type Store struct {
	v   *viper.Viper
	dir string

	mu  sync.RWMutex
	cfg *Config
}

// Open loads config.yaml from dir, writing the defaults there if it does
// not exist yet. An empty dir means GetConfigDir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		d, err := GetConfigDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	// Environment variable overrides, e.g. NEONLIGHT_LIGHT_DENSITY
	v.SetEnvPrefix("NEONLIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for k, val := range settings(DefaultConfig()) {
		v.SetDefault(k, val)
	}

	s := &Store{v: v, dir: dir}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and create one
		if err := s.Save(DefaultConfig()); err != nil {
			return nil, err
		}
	}

	cfg, err := s.decode()
	if err != nil {
		return nil, err
	}
	s.cfg = cfg
	return s, nil
}

// Load reads configuration from the default directory and environment
func Load() (*Config, error) {
	s, err := Open("")
	if err != nil {
		return DefaultConfig(), err
	}
	return s.Config(), nil
}

// Config returns a copy of the current configuration
func (s *Store) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := *s.cfg
	return &cp
}

// AllSettings returns the effective settings, including environment
// overrides, as nested maps
func (s *Store) AllSettings() map[string]any {
	return s.v.AllSettings()
}

// Path returns the config file path
func (s *Store) Path() string {
	return filepath.Join(s.dir, "config.yaml")
}

// Save writes cfg to the config file and makes it current
func (s *Store) Save(cfg *Config) error {
	// Set on s.v would shadow the file from now on
	w := viper.New()
	w.SetConfigType("yaml")
	for k, val := range settings(cfg) {
		w.Set(k, val)
	}
	if err := w.WriteConfigAs(s.Path()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := s.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	s.mu.Lock()
	cp := *cfg
	s.cfg = &cp
	s.mu.Unlock()
	return nil
}

// Reload re-reads the config file
func (s *Store) Reload() (*Config, error) {
	if err := s.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := s.decode()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return s.Config(), nil
}

// Watch calls fn every time the config file changes on disk. A file that
// fails to decode or validate is reported and leaves the current config
// in place.
func (s *Store) Watch(fn func(cfg *Config, err error)) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := s.decode()
		if err != nil {
			fn(nil, err)
			return
		}
		s.mu.Lock()
		s.cfg = cfg
		s.mu.Unlock()
		fn(s.Config(), nil)
	})
	s.v.WatchConfig()
}

func (s *Store) decode() (*Config, error) {
	cfg := DefaultConfig()
	if err := s.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", s.Path(), err)
	}
	return cfg, nil
}

// settings flattens cfg into viper keys. Durations are written as strings
// so the YAML stays readable.
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"light.density":         cfg.Light.Density,
		"light.width":           cfg.Light.Width,
		"light.height":          cfg.Light.Height,
		"light.frame_interval":  cfg.Light.FrameInterval.String(),
		"light.start_follow_up": cfg.Light.StartFollowUp,
		"light.privacy":         cfg.Light.Privacy,

		"palette.foreground": cfg.Palette.Foreground,
		"palette.background": cfg.Palette.Background,
		"palette.error":      cfg.Palette.Error,
		"palette.privacy":    cfg.Palette.Privacy,

		"timings.start":             cfg.Timings.Start.String(),
		"timings.listening":         cfg.Timings.Listening.String(),
		"timings.thinking":          cfg.Timings.Thinking.String(),
		"timings.thinking_recovery": cfg.Timings.ThinkingRecovery.String(),
		"timings.speaking":          cfg.Timings.Speaking.String(),
		"timings.speaking_recovery": cfg.Timings.SpeakingRecovery.String(),
		"timings.error":             cfg.Timings.Error.String(),
		"timings.privacy":           cfg.Timings.Privacy.String(),
		"timings.recovery":          cfg.Timings.Recovery.String(),

		"window.title":         cfg.Window.Title,
		"window.width":         cfg.Window.Width,
		"window.height":        cfg.Window.Height,
		"window.always_on_top": cfg.Window.AlwaysOnTop,
		"window.frameless":     cfg.Window.Frameless,
		"window.transparent":   cfg.Window.Transparent,

		"remote.enabled":             cfg.Remote.Enabled,
		"remote.url":                 cfg.Remote.URL,
		"remote.reconnect_delay":     cfg.Remote.ReconnectDelay.String(),
		"remote.max_reconnect_delay": cfg.Remote.MaxReconnectDelay.String(),

		"shaders.dir":        cfg.Shaders.Dir,
		"shaders.hot_reload": cfg.Shaders.HotReload,

		"logging.dir":         cfg.Logging.Dir,
		"logging.level":       cfg.Logging.Level,
		"logging.console":     cfg.Logging.Console,
		"logging.max_history": cfg.Logging.MaxHistory,
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".neonlight"), nil
}
