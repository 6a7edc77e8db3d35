package bridge

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/neonlight/internal/anim"
	"github.com/normanking/neonlight/internal/argb"
	"github.com/normanking/neonlight/internal/bus"
	"github.com/normanking/neonlight/internal/config"
	"github.com/normanking/neonlight/internal/logging"
	"github.com/normanking/neonlight/internal/neon"
	"github.com/normanking/neonlight/internal/remote"
)

type emitted struct {
	name string
	data []interface{}
}

type emitRecorder struct {
	mu     sync.Mutex
	events []emitted
}

func (r *emitRecorder) emit(_ context.Context, name string, data ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{name: name, data: data})
}

func (r *emitRecorder) named(name string) []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []emitted
	for _, e := range r.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	loop  *anim.Loop
	clock *anim.ManualClock
	ctrl  *neon.Controller
	bus   *bus.EventBus
}

func newFixture() *fixture {
	clock := anim.NewManualClock(time.Unix(0, 0))
	loop := anim.NewLoop(clock, 10*time.Millisecond)
	eventBus := bus.NewEventBus()
	ctrl := neon.NewController(neon.Options{
		Loop:    loop,
		Metrics: neon.Metrics{Density: 1, Width: 400, Height: 100},
		Logger:  zerolog.Nop(),
		Events:  eventBus,
	})
	return &fixture{loop: loop, clock: clock, ctrl: ctrl, bus: eventBus}
}

func (f *fixture) step(d time.Duration) {
	f.clock.Advance(d)
	f.loop.Step()
}

func TestLightBridgeSelectsAndStreamsFrames(t *testing.T) {
	f := newFixture()
	rec := &emitRecorder{}
	b := NewLightBridge(f.ctrl, neon.NewSelector(f.ctrl), f.bus, zerolog.Nop())
	b.emit = rec.emit
	b.Bind(context.Background())
	f.loop.Step()
	assert.Empty(t, rec.named(EventFrame), "nothing to paint before a repaint")

	require.NoError(t, b.SelectState("Thinking"))
	f.step(10 * time.Millisecond)
	assert.Equal(t, neon.Thinking, f.ctrl.State())

	frames := rec.named(EventFrame)
	require.NotEmpty(t, frames)
	frame, ok := frames[len(frames)-1].data[0].(neon.Frame)
	require.True(t, ok)
	assert.Equal(t, neon.Thinking, frame.State)
	assert.Equal(t, neon.PaintSingle, frame.Kind)

	require.Eventually(t, func() bool {
		return len(rec.named(EventStateChanged)) == 1
	}, time.Second, 5*time.Millisecond)
	data := rec.named(EventStateChanged)[0].data[0].(map[string]any)
	assert.Equal(t, "thinking", data["state"])
	assert.Equal(t, uint64(1), data["seq"], "the frontend drops stale events by seq")
}

func TestLightBridgeRejectsUnknownState(t *testing.T) {
	f := newFixture()
	b := NewLightBridge(f.ctrl, neon.NewSelector(f.ctrl), f.bus, zerolog.Nop())

	err := b.SelectState("dancing")
	assert.ErrorIs(t, err, neon.ErrUnknownState)
	f.loop.Step()
	assert.Equal(t, neon.Idle, f.ctrl.State())
}

func TestLightBridgePrivacyAndResize(t *testing.T) {
	f := newFixture()
	b := NewLightBridge(f.ctrl, neon.NewSelector(f.ctrl), f.bus, zerolog.Nop())

	b.Resize(800, 200)
	b.SetPrivacy(true)
	f.loop.Step()

	assert.True(t, f.ctrl.IsPrivacy())
	assert.Equal(t, 800, f.ctrl.Metrics().Width)
	assert.Equal(t, []string{"idle", "start", "listening", "thinking", "speaking", "error"}, b.GetStates())
}

func TestLightBridgeGetFrame(t *testing.T) {
	f := newFixture()
	b := NewLightBridge(f.ctrl, neon.NewSelector(f.ctrl), f.bus, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.loop.Run(ctx)

	frame := b.GetFrame()
	assert.Equal(t, neon.Idle, frame.State)
	assert.Equal(t, neon.PaintNone, frame.Kind)
	assert.Equal(t, 400.0, frame.Width)
}

func TestSettingsBridgeSaveAndApply(t *testing.T) {
	f := newFixture()
	store, err := config.Open(t.TempDir())
	require.NoError(t, err)
	b := NewSettingsBridge(store, f.ctrl, f.bus, zerolog.Nop())

	s := b.GetSettings()
	assert.Equal(t, 1000, s.StartMs)
	assert.Equal(t, argb.Error.Hex(), s.Error)

	s.Error = "#ff112233"
	s.ErrorMs = 120
	require.NoError(t, b.SaveSettings(s))
	f.loop.Step()

	assert.Equal(t, argb.New(255, 0x11, 0x22, 0x33), f.ctrl.Palette().Error)
	assert.Equal(t, 120*time.Millisecond, f.ctrl.Timings().Error)
	assert.Equal(t, 120*time.Millisecond, store.Config().Timings.Error)

	s.Privacy = "red"
	assert.Error(t, b.SaveSettings(s))
	assert.Equal(t, "#ff112233", store.Config().Palette.Error, "rejected settings are not saved")

	reset, err := b.ResetSettings()
	require.NoError(t, err)
	assert.Equal(t, argb.Error.Hex(), reset.Error)
}

func TestLogBridge(t *testing.T) {
	logger := logging.NewWithWriter(&bytes.Buffer{}, logging.LevelDebug, 10)
	rec := &emitRecorder{}
	b := NewLogBridge(logger)
	b.emit = rec.emit
	b.Bind(context.Background())

	b.Log("warn", "frontend", "canvas lost", map[string]interface{}{"w": 0})
	b.Log("bogus", "frontend", "defaults to info", nil)

	hist := b.GetLogHistory(0)
	require.Len(t, hist, 2)
	assert.Equal(t, "warn", hist[0].Level)
	assert.Equal(t, "info", hist[1].Level)

	require.Eventually(t, func() bool {
		return len(rec.named(EventLogEntry)) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, b.GetSystemInfo(), "goVersion")
}

func TestConnectionBridgeWithoutFeed(t *testing.T) {
	eventBus := bus.NewEventBus()
	b := NewConnectionBridge(nil, "ws://localhost:8765/light", eventBus, zerolog.Nop())

	assert.ErrorIs(t, b.Connect(), ErrRemoteDisabled)
	assert.ErrorIs(t, b.Disconnect(), ErrRemoteDisabled)
	assert.False(t, b.IsConnected())

	status := b.GetConnectionStatus()
	assert.Equal(t, false, status["enabled"])
	assert.NotContains(t, status, "session")
}

func TestConnectionBridgeForwardsFeedEvents(t *testing.T) {
	eventBus := bus.NewEventBus()
	client := remote.NewClient(remote.Config{URL: "ws://127.0.0.1:1/light"}, nil, eventBus, zerolog.Nop())
	rec := &emitRecorder{}
	b := NewConnectionBridge(client, "ws://127.0.0.1:1/light", eventBus, zerolog.Nop())
	b.emit = rec.emit
	b.Bind(context.Background())

	eventBus.PublishSync(bus.Event{Type: bus.EventTypeConnected})
	eventBus.PublishSync(bus.Event{Type: bus.EventTypeError, Data: map[string]any{"message": "boom"}})

	status := rec.named(EventConnectionStatus)
	require.Len(t, status, 1)
	assert.Equal(t, client.SessionID(), status[0].data[0].(map[string]any)["session"])
	assert.Len(t, rec.named(EventConnectionError), 1)
}
