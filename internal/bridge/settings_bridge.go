package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/normanking/neonlight/internal/bus"
	"github.com/normanking/neonlight/internal/config"
	"github.com/normanking/neonlight/internal/neon"
)

// EventSettingsReloaded tells the frontend the config file changed on disk
const EventSettingsReloaded = "settings:reloaded"

// SettingsData represents all configurable settings
type SettingsData struct {
	// Palette, #AARRGGBB
	Foreground string `json:"foreground"`
	Background string `json:"background"`
	Error      string `json:"error"`
	Privacy    string `json:"privacy"`

	// Durations in milliseconds
	StartMs            int `json:"startMs"`
	ListeningMs        int `json:"listeningMs"`
	ThinkingMs         int `json:"thinkingMs"`
	ThinkingRecoveryMs int `json:"thinkingRecoveryMs"`
	SpeakingMs         int `json:"speakingMs"`
	SpeakingRecoveryMs int `json:"speakingRecoveryMs"`
	ErrorMs            int `json:"errorMs"`
	PrivacyMs          int `json:"privacyMs"`
	RecoveryMs         int `json:"recoveryMs"`

	Density       float64 `json:"density"`
	StartFollowUp string  `json:"startFollowUp"`

	// Connection settings
	RemoteEnabled bool   `json:"remoteEnabled"`
	RemoteURL     string `json:"remoteUrl"`
}

// SettingsBridge exposes settings methods to the frontend
type SettingsBridge struct {
	ctx      context.Context
	store    *config.Store
	ctrl     *neon.Controller
	eventBus *bus.EventBus
	logger   zerolog.Logger
	emit     EmitFunc
}

// NewSettingsBridge creates a new settings bridge
func NewSettingsBridge(store *config.Store, ctrl *neon.Controller, eventBus *bus.EventBus, logger zerolog.Logger) *SettingsBridge {
	return &SettingsBridge{
		store:    store,
		ctrl:     ctrl,
		eventBus: eventBus,
		logger:   logger.With().Str("component", "settings").Logger(),
		emit:     runtime.EventsEmit,
	}
}

// Bind sets the Wails runtime context and starts watching the config file
func (b *SettingsBridge) Bind(ctx context.Context) {
	b.ctx = ctx

	b.store.Watch(func(cfg *config.Config, err error) {
		if err != nil {
			b.logger.Warn().Err(err).Msg("Ignoring config change")
			return
		}
		b.logger.Info().Str("path", b.store.Path()).Msg("Config reloaded")
		b.apply(cfg)
		b.emit(b.ctx, EventSettingsReloaded, toSettings(cfg))
	})
}

// GetSettings returns current settings
func (b *SettingsBridge) GetSettings() SettingsData {
	return toSettings(b.store.Config())
}

// SaveSettings validates, persists and applies settings
func (b *SettingsBridge) SaveSettings(s SettingsData) error {
	cfg := b.store.Config()
	fromSettings(cfg, s)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := b.store.Save(cfg); err != nil {
		b.logger.Error().Err(err).Msg("Failed to save settings")
		return err
	}

	b.logger.Info().Msg("Settings saved")
	b.apply(cfg)
	return nil
}

// ResetSettings restores and saves the defaults
func (b *SettingsBridge) ResetSettings() (SettingsData, error) {
	cfg := config.DefaultConfig()
	if err := b.store.Save(cfg); err != nil {
		return SettingsData{}, err
	}
	b.apply(cfg)
	return toSettings(cfg), nil
}

// GetConfigPath returns the config file location
func (b *SettingsBridge) GetConfigPath() string {
	return b.store.Path()
}

func (b *SettingsBridge) apply(cfg *config.Config) {
	b.ctrl.Loop().Post(func() {
		if err := cfg.Apply(b.ctrl); err != nil {
			b.logger.Warn().Err(err).Msg("Could not apply settings to the light")
		}
	})
	b.eventBus.Publish(bus.Event{
		Type: bus.EventTypeConfigReloaded,
		Data: map[string]any{"path": b.store.Path()},
	})
}

func toSettings(cfg *config.Config) SettingsData {
	ms := func(d time.Duration) int { return int(d / time.Millisecond) }
	return SettingsData{
		Foreground:         cfg.Palette.Foreground,
		Background:         cfg.Palette.Background,
		Error:              cfg.Palette.Error,
		Privacy:            cfg.Palette.Privacy,
		StartMs:            ms(cfg.Timings.Start),
		ListeningMs:        ms(cfg.Timings.Listening),
		ThinkingMs:         ms(cfg.Timings.Thinking),
		ThinkingRecoveryMs: ms(cfg.Timings.ThinkingRecovery),
		SpeakingMs:         ms(cfg.Timings.Speaking),
		SpeakingRecoveryMs: ms(cfg.Timings.SpeakingRecovery),
		ErrorMs:            ms(cfg.Timings.Error),
		PrivacyMs:          ms(cfg.Timings.Privacy),
		RecoveryMs:         ms(cfg.Timings.Recovery),
		Density:            cfg.Light.Density,
		StartFollowUp:      cfg.Light.StartFollowUp,
		RemoteEnabled:      cfg.Remote.Enabled,
		RemoteURL:          cfg.Remote.URL,
	}
}

func fromSettings(cfg *config.Config, s SettingsData) {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	cfg.Palette = config.PaletteConfig{
		Foreground: s.Foreground,
		Background: s.Background,
		Error:      s.Error,
		Privacy:    s.Privacy,
	}
	cfg.Timings = config.TimingsConfig{
		Start:            ms(s.StartMs),
		Listening:        ms(s.ListeningMs),
		Thinking:         ms(s.ThinkingMs),
		ThinkingRecovery: ms(s.ThinkingRecoveryMs),
		Speaking:         ms(s.SpeakingMs),
		SpeakingRecovery: ms(s.SpeakingRecoveryMs),
		Error:            ms(s.ErrorMs),
		Privacy:          ms(s.PrivacyMs),
		Recovery:         ms(s.RecoveryMs),
	}
	cfg.Light.Density = s.Density
	cfg.Light.StartFollowUp = s.StartFollowUp
	cfg.Remote.Enabled = s.RemoteEnabled
	cfg.Remote.URL = s.RemoteURL
}
