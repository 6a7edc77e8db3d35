package anim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func newTestLoop() (*Loop, *ManualClock) {
	clock := NewManualClock(time.Unix(0, 0))
	return NewLoop(clock, 0), clock
}

type recorder struct {
	updates []float64
	starts  int
	repeats int
	ends    int
	cancels int
}

func (r *recorder) listener() Listener[float64] {
	return Listener[float64]{
		OnStart:  func() { r.starts++ },
		OnUpdate: func(v float64) { r.updates = append(r.updates, v) },
		OnRepeat: func() { r.repeats++ },
		OnEnd:    func() { r.ends++ },
		OnCancel: func() { r.cancels++ },
	}
}

func (r *recorder) last() float64 {
	if len(r.updates) == 0 {
		return -1
	}
	return r.updates[len(r.updates)-1]
}

func TestAnimatorRunsToEnd(t *testing.T) {
	loop, clock := newTestLoop()
	rec := &recorder{}
	a := New(loop, Floats(0.5), time.Second).WithListener(rec.listener())

	a.Start()
	require.True(t, a.IsRunning())
	assert.Equal(t, 1, rec.starts)
	assert.InDelta(t, 0, rec.last(), 1e-9, "start emits the first frame")
	assert.Equal(t, 1, loop.Active())

	clock.Advance(500 * time.Millisecond)
	loop.Tick()
	assert.InDelta(t, 0.25, rec.last(), 1e-9)

	clock.Advance(600 * time.Millisecond)
	loop.Tick()
	assert.InDelta(t, 0.5, rec.last(), 1e-9)
	assert.Equal(t, 1, rec.ends)
	assert.False(t, a.IsRunning())
	assert.Equal(t, 0, loop.Active())

	clock.Advance(time.Second)
	loop.Tick()
	assert.Equal(t, 1, rec.ends, "end fires exactly once")
}

func TestAnimatorNotRunningInsideOnEnd(t *testing.T) {
	loop, clock := newTestLoop()
	var a *Animator[float64]
	runningAtEnd := true
	a = New(loop, Floats(1), 100*time.Millisecond).WithListener(Listener[float64]{
		OnEnd: func() { runningAtEnd = a.IsRunning() },
	})

	a.Start()
	clock.Advance(100 * time.Millisecond)
	loop.Tick()

	assert.False(t, runningAtEnd)
}

func TestAnimatorCancel(t *testing.T) {
	loop, clock := newTestLoop()
	rec := &recorder{}
	a := New(loop, Floats(0, 1), time.Second).WithCurve(Linear).WithListener(rec.listener())

	a.Start()
	clock.Advance(200 * time.Millisecond)
	loop.Tick()
	updates := len(rec.updates)

	a.Cancel()
	a.Cancel()
	assert.Equal(t, 1, rec.cancels)
	assert.False(t, a.IsRunning())

	clock.Advance(2 * time.Second)
	loop.Tick()
	assert.Len(t, rec.updates, updates, "no updates after cancel")
	assert.Equal(t, 0, rec.ends, "cancel never ends")
}

func TestAnimatorDetach(t *testing.T) {
	loop, clock := newTestLoop()
	rec := &recorder{}
	a := New(loop, Floats(0, 1), time.Second).WithListener(rec.listener())

	a.Start()
	a.Detach()
	clock.Advance(2 * time.Second)
	loop.Tick()

	assert.Len(t, rec.updates, 1)
	assert.Equal(t, 0, rec.ends)
	assert.False(t, a.IsRunning())
}

func TestAnimatorStartWhileRunning(t *testing.T) {
	loop, _ := newTestLoop()
	rec := &recorder{}
	a := New(loop, Floats(1), time.Second).WithListener(rec.listener())

	a.Start()
	a.Start()

	assert.Equal(t, 1, rec.starts)
	assert.Equal(t, 1, loop.Active())
}

func TestAnimatorInfiniteRepeat(t *testing.T) {
	loop, clock := newTestLoop()
	rec := &recorder{}
	a := New(loop, Floats(0, 1), 100*time.Millisecond).
		WithCurve(Linear).
		WithRepeat(Infinite).
		WithListener(rec.listener())

	a.Start()
	clock.Advance(150 * time.Millisecond)
	loop.Tick()
	assert.Equal(t, 1, rec.repeats)
	assert.InDelta(t, 0.5, rec.last(), 1e-9)

	clock.Advance(200 * time.Millisecond)
	loop.Tick()
	assert.Equal(t, 2, rec.repeats, "skipped cycles repeat once per tick")
	assert.InDelta(t, 0.5, rec.last(), 1e-9)
	assert.True(t, a.IsRunning())
	assert.Equal(t, 0, rec.ends)
}

func TestAnimatorEasesEachCycle(t *testing.T) {
	loop, clock := newTestLoop()
	rec := &recorder{}
	a := New(loop, Floats(0, 1), 100*time.Millisecond).
		WithCurve(Accelerate).
		WithRepeat(Infinite).
		WithListener(rec.listener())

	a.Start()
	clock.Advance(50 * time.Millisecond)
	loop.Tick()
	assert.InDelta(t, 0.25, rec.last(), 1e-6)

	clock.Advance(100 * time.Millisecond)
	loop.Tick()
	assert.Equal(t, 1, rec.repeats)
	assert.InDelta(t, 0.25, rec.last(), 1e-6, "the curve restarts with the cycle")
}

func TestAnimatorAcceptsAnyTweenFunc(t *testing.T) {
	loop, clock := newTestLoop()
	rec := &recorder{}
	a := New(loop, Floats(0, 1), time.Second).
		WithCurve(ease.OutQuad).
		WithListener(rec.listener())

	a.Start()
	clock.Advance(500 * time.Millisecond)
	loop.Tick()
	assert.InDelta(t, 0.75, rec.last(), 1e-6)

	clock.Advance(500 * time.Millisecond)
	loop.Tick()
	assert.InDelta(t, 1, rec.last(), 1e-6)
	assert.Equal(t, 1, rec.ends)
}

func TestAnimatorCancelInsideRepeat(t *testing.T) {
	loop, clock := newTestLoop()
	var a *Animator[float64]
	updates := 0
	a = New(loop, Floats(0, 1), 100*time.Millisecond).
		WithRepeat(Infinite).
		WithListener(Listener[float64]{
			OnUpdate: func(float64) { updates++ },
			OnRepeat: func() { a.Cancel() },
		})

	a.Start()
	clock.Advance(120 * time.Millisecond)
	loop.Tick()

	assert.Equal(t, 1, updates, "only the start frame")
	assert.False(t, a.IsRunning())
}

func TestLoopSkipsAnimatorsRemovedMidTick(t *testing.T) {
	loop, clock := newTestLoop()
	second := New(loop, Floats(0, 1), time.Second)
	secondUpdates := 0
	second.WithListener(Listener[float64]{OnUpdate: func(float64) { secondUpdates++ }})

	first := New(loop, Floats(0, 1), time.Second).WithListener(Listener[float64]{
		OnUpdate: func(v float64) {
			if v > 0 {
				second.Cancel()
			}
		},
	})

	first.Start()
	second.Start()
	require.Equal(t, 1, secondUpdates)

	clock.Advance(500 * time.Millisecond)
	loop.Tick()

	assert.Equal(t, 1, secondUpdates)
	assert.Equal(t, 1, loop.Active())
}

func TestLoopStepRunsPostedWork(t *testing.T) {
	loop, _ := newTestLoop()
	ran := 0
	loop.Post(func() { ran++ })
	loop.Post(func() { ran++ })

	loop.Step()

	assert.Equal(t, 2, ran)
}

func TestLoopRun(t *testing.T) {
	loop := NewLoop(nil, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	done := make(chan struct{})
	loop.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("posted work never ran")
	}

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
