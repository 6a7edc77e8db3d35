// Package light wires the controller to its loop, event bus and remote
// state feed. Both the desktop app and the command line hosts build on it.
package light

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/normanking/neonlight/internal/anim"
	"github.com/normanking/neonlight/internal/bus"
	"github.com/normanking/neonlight/internal/config"
	"github.com/normanking/neonlight/internal/neon"
	"github.com/normanking/neonlight/internal/remote"
)

// Host owns one light and everything that feeds it
type Host struct {
	Store    *config.Store
	Bus      *bus.EventBus
	Loop     *anim.Loop
	Ctrl     *neon.Controller
	Selector *neon.Selector
	Remote   *remote.Client // nil unless the feed is enabled

	logger zerolog.Logger

	// sendMu keeps reports in order; each one reads the newest status
	sendMu sync.Mutex

	mu         sync.Mutex
	state      neon.State
	privacy    bool
	stateSeq   uint64
	privacySeq uint64
}

// New builds a host from the store's current config. clock may be nil
// for the wall clock.
func New(store *config.Store, clock anim.Clock, logger zerolog.Logger) (*Host, error) {
	cfg := store.Config()

	loop := anim.NewLoop(clock, cfg.Light.FrameInterval)
	eventBus := bus.NewEventBus()

	opts, err := cfg.ControllerOptions(loop, logger.With().Str("component", "light").Logger(), eventBus)
	if err != nil {
		return nil, fmt.Errorf("light options: %w", err)
	}
	ctrl := neon.NewController(opts)

	var selOpts []neon.SelectorOption
	next, ok, err := cfg.Light.FollowUp()
	if err != nil {
		return nil, err
	}
	if ok {
		selOpts = append(selOpts, neon.WithStartFollowUp(next))
	}

	h := &Host{
		Store:    store,
		Bus:      eventBus,
		Loop:     loop,
		Ctrl:     ctrl,
		Selector: neon.NewSelector(ctrl, selOpts...),
		logger:   logger.With().Str("component", "host").Logger(),
	}

	if cfg.Light.Privacy {
		h.Selector.OnPrivacyToggled(true)
	}

	if cfg.Remote.Enabled {
		h.Remote = remote.NewClient(remote.Config{
			URL:               cfg.Remote.URL,
			ReconnectDelay:    cfg.Remote.ReconnectDelay,
			MaxReconnectDelay: cfg.Remote.MaxReconnectDelay,
		}, h.Selector, eventBus, logger)

		eventBus.SubscribeMultiple([]bus.EventType{
			bus.EventTypeStateChanged,
			bus.EventTypePrivacyChanged,
			bus.EventTypeConnected,
		}, h.reportStatus)
	}

	return h, nil
}

// Start connects the remote feed if one is configured. The caller drives
// the loop, either with Loop.Run or by calling Loop.Step per frame.
func (h *Host) Start(ctx context.Context) error {
	if h.Remote == nil {
		return nil
	}
	if err := h.Remote.Connect(ctx); err != nil {
		return fmt.Errorf("remote feed: %w", err)
	}
	h.logger.Info().Str("session", h.Remote.SessionID()).Msg("Remote feed started")
	return nil
}

// Stop disconnects the feed and drops bus subscribers
func (h *Host) Stop() {
	if h.Remote != nil {
		h.Remote.Disconnect()
	}
	h.Bus.Clear()
}

// Status returns the last state and privacy flag seen on the bus
func (h *Host) Status() (neon.State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state, h.privacy
}

// reportStatus tracks the newest state and privacy flag and reports them
// to the feed. Bus handlers run concurrently, so events older than the last
// one applied are dropped by their sequence number.
func (h *Host) reportStatus(e bus.Event) {
	seq, _ := e.Data["seq"].(uint64)

	h.mu.Lock()
	switch e.Type {
	case bus.EventTypeStateChanged:
		if seq != 0 && seq <= h.stateSeq {
			h.mu.Unlock()
			return
		}
		if name, ok := e.Data["state"].(string); ok {
			if s, err := neon.ParseState(name); err == nil {
				h.state = s
				h.stateSeq = seq
			}
		}
	case bus.EventTypePrivacyChanged:
		if seq != 0 && seq <= h.privacySeq {
			h.mu.Unlock()
			return
		}
		if on, ok := e.Data["privacy"].(bool); ok {
			h.privacy = on
			h.privacySeq = seq
		}
	}
	h.mu.Unlock()

	h.sendMu.Lock()
	defer h.sendMu.Unlock()
	state, privacy := h.Status()
	if err := h.Remote.SendStatus(state, privacy); err != nil && !errors.Is(err, remote.ErrNotConnected) {
		h.logger.Warn().Err(err).Msg("Status report failed")
	}
}
