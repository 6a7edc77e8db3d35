// Package anim drives timed value animations from a single scheduling loop.
//
// All animator callbacks run on whichever goroutine calls Loop.Step (or
// inside Loop.Run). Other goroutines must hand work to the loop with Post.
package anim

import (
	"context"
	"time"
)

// DefaultFrameInterval is the tick cadence used when none is configured
const DefaultFrameInterval = 16 * time.Millisecond

// Clock supplies the loop's notion of now
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock
func SystemClock() Clock {
	return systemClock{}
}

// ManualClock only moves when told to. Used by tests and offline hosts.
type ManualClock struct {
	now time.Time
}

// NewManualClock creates a clock frozen at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type ticker interface {
	tick(now time.Time)
}

// Loop schedules running animators and serializes work posted from other
// goroutines onto the loop goroutine.
type Loop struct {
	clock    Clock
	interval time.Duration

	running []ticker
	posted  chan func()
	nextID  uint64
	onFrame func()
}

// NewLoop creates a loop. A nil clock means the wall clock and a
// non-positive interval means DefaultFrameInterval.
func NewLoop(clock Clock, interval time.Duration) *Loop {
	if clock == nil {
		clock = SystemClock()
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop{
		clock:    clock,
		interval: interval,
		posted:   make(chan func(), 64),
	}
}

// Now returns the loop clock's current time
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// Interval returns the tick cadence
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Active returns the number of running animators
func (l *Loop) Active() int {
	return len(l.running)
}

// Post queues fn to run on the loop goroutine. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.posted <- fn
}

// SetFrameHook registers fn to run on the loop goroutine after every Step,
// and inside Run after each batch of work. Hosts use it to flush repaints.
func (l *Loop) SetFrameHook(fn func()) {
	l.onFrame = fn
}

// Step runs queued work and then advances every running animator once.
// Hosts with their own frame loop call Step once per frame.
func (l *Loop) Step() {
	l.drain()
	l.Tick()
	l.frame()
}

// Tick advances every running animator to the clock's current time.
// Animators started during this tick are first advanced on the next one.
func (l *Loop) Tick() {
	if len(l.running) == 0 {
		return
	}
	now := l.clock.Now()
	snapshot := make([]ticker, len(l.running))
	copy(snapshot, l.running)
	for _, t := range snapshot {
		if l.contains(t) {
			t.tick(now)
		}
	}
}

// Run drives Step from a ticker until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	t := time.NewTicker(l.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.posted:
			fn()
			l.frame()
		case <-t.C:
			l.Tick()
			l.frame()
		}
	}
}

func (l *Loop) frame() {
	if l.onFrame != nil {
		l.onFrame()
	}
}

func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.posted:
			fn()
		default:
			return
		}
	}
}

func (l *Loop) add(t ticker) {
	if l.contains(t) {
		return
	}
	l.running = append(l.running, t)
}

func (l *Loop) remove(t ticker) {
	for i, r := range l.running {
		if r == t {
			l.running = append(l.running[:i], l.running[i+1:]...)
			return
		}
	}
}

func (l *Loop) contains(t ticker) bool {
	for _, r := range l.running {
		if r == t {
			return true
		}
	}
	return false
}

func (l *Loop) newID() uint64 {
	l.nextID++
	return l.nextID
}
