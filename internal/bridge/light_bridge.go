// Package bridge provides Wails bindings between Go and frontend
package bridge

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/normanking/neonlight/internal/bus"
	"github.com/normanking/neonlight/internal/neon"
)

// Frontend event names
const (
	EventFrame          = "neon:frame"
	EventStateChanged   = "neon:stateChanged"
	EventPrivacyChanged = "neon:privacyChanged"
	EventStartComplete  = "neon:startComplete"
)

// EmitFunc sends an event to the frontend
type EmitFunc func(ctx context.Context, name string, data ...interface{})

// frameTimeout bounds how long GetFrame waits for the light loop
const frameTimeout = time.Second

// LightBridge exposes the light to the frontend. The web UI's radio
// buttons and privacy checkbox call into it as a StateSelector and it
// streams frames back for the canvas renderer.
type LightBridge struct {
	ctx      context.Context
	ctrl     *neon.Controller
	selector neon.StateSelector
	eventBus *bus.EventBus
	logger   zerolog.Logger
	emit     EmitFunc

	// touched only on the loop goroutine
	dirty bool
}

// NewLightBridge creates the light bridge
func NewLightBridge(ctrl *neon.Controller, selector neon.StateSelector, eventBus *bus.EventBus, logger zerolog.Logger) *LightBridge {
	return &LightBridge{
		ctrl:     ctrl,
		selector: selector,
		eventBus: eventBus,
		logger:   logger.With().Str("component", "light-bridge").Logger(),
		emit:     runtime.EventsEmit,
	}
}

// Bind sets the Wails runtime context
func (b *LightBridge) Bind(ctx context.Context) {
	b.ctx = ctx

	forward := func(name string) bus.Handler {
		return func(e bus.Event) {
			b.emit(b.ctx, name, e.Data)
		}
	}
	b.eventBus.Subscribe(bus.EventTypeStateChanged, forward(EventStateChanged))
	b.eventBus.Subscribe(bus.EventTypePrivacyChanged, forward(EventPrivacyChanged))
	b.eventBus.Subscribe(bus.EventTypeStartComplete, forward(EventStartComplete))

	// Frames are pushed at most once per loop step
	b.ctrl.Loop().Post(func() {
		b.ctrl.SetInvalidateFunc(func() { b.dirty = true })
		b.ctrl.Loop().SetFrameHook(b.flush)
	})
}

func (b *LightBridge) flush() {
	if !b.dirty {
		return
	}
	b.dirty = false
	b.emit(b.ctx, EventFrame, b.ctrl.Snapshot())
}

// SelectState requests a state by name
func (b *LightBridge) SelectState(name string) error {
	s, err := neon.ParseState(name)
	if err != nil {
		b.logger.Warn().Str("state", name).Msg("Frontend requested unknown state")
		return err
	}
	b.selector.OnStateRequested(s)
	return nil
}

// SetPrivacy toggles the privacy flag
func (b *LightBridge) SetPrivacy(on bool) {
	b.selector.OnPrivacyToggled(on)
}

// Resize reports the canvas size in pixels
func (b *LightBridge) Resize(width, height int) {
	b.ctrl.Loop().Post(func() {
		b.ctrl.Resize(width, height)
	})
}

// GetStates lists selectable state names in order
func (b *LightBridge) GetStates() []string {
	states := neon.States()
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.String()
	}
	return names
}

// GetFrame returns the current frame
func (b *LightBridge) GetFrame() neon.Frame {
	ch := make(chan neon.Frame, 1)
	b.ctrl.Loop().Post(func() {
		ch <- b.ctrl.Snapshot()
	})

	select {
	case f := <-ch:
		return f
	case <-time.After(frameTimeout):
		b.logger.Warn().Msg("Light loop did not answer frame request")
		return neon.Frame{Kind: neon.PaintNone}
	}
}
