package light

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/neonlight/internal/anim"
	"github.com/normanking/neonlight/internal/bus"
	"github.com/normanking/neonlight/internal/config"
	"github.com/normanking/neonlight/internal/neon"
)

func openStore(t *testing.T, edit func(*config.Config)) *config.Store {
	t.Helper()
	store, err := config.Open(t.TempDir())
	require.NoError(t, err)
	if edit != nil {
		cfg := store.Config()
		edit(cfg)
		require.NoError(t, store.Save(cfg))
	}
	return store
}

func TestHostDefaults(t *testing.T) {
	clock := anim.NewManualClock(time.Unix(0, 0))
	h, err := New(openStore(t, nil), clock, zerolog.Nop())
	require.NoError(t, err)
	defer h.Stop()

	assert.Nil(t, h.Remote)
	assert.Equal(t, 16*time.Millisecond, h.Loop.Interval())
	assert.Equal(t, 480, h.Ctrl.Metrics().Width)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	assert.NoError(t, h.Start(ctx))
}

func TestHostStartFollowUp(t *testing.T) {
	clock := anim.NewManualClock(time.Unix(0, 0))
	h, err := New(openStore(t, func(c *config.Config) {
		c.Light.StartFollowUp = "speaking"
		c.Timings.Start = 100 * time.Millisecond
	}), clock, zerolog.Nop())
	require.NoError(t, err)

	h.Selector.OnStateRequested(neon.Start)
	h.Loop.Step()
	for i := 0; i < 12; i++ {
		clock.Advance(10 * time.Millisecond)
		h.Loop.Step()
	}
	assert.Equal(t, neon.Speaking, h.Ctrl.State())
}

func TestHostPrivacyAtLaunch(t *testing.T) {
	h, err := New(openStore(t, func(c *config.Config) {
		c.Light.Privacy = true
	}), anim.NewManualClock(time.Unix(0, 0)), zerolog.Nop())
	require.NoError(t, err)

	h.Loop.Step()
	assert.True(t, h.Ctrl.IsPrivacy())
}

func TestHostTracksStatusForRemote(t *testing.T) {
	h, err := New(openStore(t, func(c *config.Config) {
		c.Remote.Enabled = true
		c.Remote.URL = "ws://127.0.0.1:1/light"
	}), anim.NewManualClock(time.Unix(0, 0)), zerolog.Nop())
	require.NoError(t, err)
	defer h.Stop()

	require.NotNil(t, h.Remote)
	assert.NotEmpty(t, h.Remote.SessionID())

	h.Bus.PublishSync(bus.Event{Type: bus.EventTypeStateChanged, Data: map[string]any{"state": "thinking"}})
	h.Bus.PublishSync(bus.Event{Type: bus.EventTypePrivacyChanged, Data: map[string]any{"privacy": true}})

	state, privacy := h.Status()
	assert.Equal(t, neon.Thinking, state)
	assert.True(t, privacy)
}

func TestHostStatusSettlesOnLatestBurst(t *testing.T) {
	h, err := New(openStore(t, func(c *config.Config) {
		c.Remote.Enabled = true
		c.Remote.URL = "ws://127.0.0.1:1/light"
	}), anim.NewManualClock(time.Unix(0, 0)), zerolog.Nop())
	require.NoError(t, err)
	defer h.Stop()

	states := []neon.State{neon.Listening, neon.Thinking, neon.Speaking, neon.Start, neon.Idle, neon.Error}
	for round := 0; round < 30; round++ {
		burst := append(append([]neon.State{}, states[round%len(states):]...), states[:round%len(states)]...)
		for _, s := range burst {
			h.Ctrl.SetState(s)
		}
		privacy := round%2 == 0
		h.Ctrl.SetPrivacy(!privacy)
		h.Ctrl.SetPrivacy(privacy)

		want := burst[len(burst)-1]
		require.Eventually(t, func() bool {
			state, on := h.Status()
			return state == want && on == privacy
		}, time.Second, time.Millisecond, "round %d", round)

		time.Sleep(5 * time.Millisecond)
		state, on := h.Status()
		assert.Equal(t, want, state, "round %d: older events arrive late", round)
		assert.Equal(t, privacy, on, "round %d", round)
	}
}
