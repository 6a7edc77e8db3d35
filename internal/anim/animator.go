package anim

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Repeat controls what happens when a run reaches the end of its duration
type Repeat int

const (
	Once Repeat = iota
	Infinite
)

func (r Repeat) String() string {
	if r == Infinite {
		return "infinite"
	}
	return "once"
}

// Listener receives an animator's events. Nil fields are skipped.
type Listener[T any] struct {
	OnStart  func()
	OnUpdate func(value T)
	OnRepeat func()
	OnEnd    func()
	OnCancel func()
}

// Handle is the type-erased view of an animator
type Handle interface {
	ID() uint64
	Start()
	Cancel()
	Detach()
	IsRunning() bool
}

// Animator produces interpolated values of type T over a duration.
//
// Start emits an update for fraction 0. Every loop tick emits an update for
// the elapsed fraction of the current cycle, eased by a gween tween.
// Infinite runs emit OnRepeat at each cycle boundary; Once runs emit the
// final update followed by OnEnd exactly once, and IsRunning already
// reports false inside OnEnd. After Cancel no further event is delivered.
type Animator[T any] struct {
	loop     *Loop
	id       uint64
	values   Evaluator[T]
	duration time.Duration
	curve    ease.TweenFunc
	repeat   Repeat
	listener Listener[T]

	// tween eases progress through one cycle, measured in cycles
	tween *gween.Tween

	running bool
	started time.Time
	cycle   int
	value   T
}

// New creates an animator on loop. The default curve is
// AccelerateDecelerate and the default repeat policy is Once.
func New[T any](loop *Loop, values Evaluator[T], duration time.Duration) *Animator[T] {
	return &Animator[T]{
		loop:     loop,
		id:       loop.newID(),
		values:   values,
		duration: duration,
		curve:    AccelerateDecelerate,
		repeat:   Once,
	}
}

// WithCurve sets the easing curve
func (a *Animator[T]) WithCurve(curve ease.TweenFunc) *Animator[T] {
	if curve == nil {
		curve = Linear
	}
	a.curve = curve
	return a
}

// WithRepeat sets the repeat policy
func (a *Animator[T]) WithRepeat(r Repeat) *Animator[T] {
	a.repeat = r
	return a
}

// WithListener replaces the listener
func (a *Animator[T]) WithListener(l Listener[T]) *Animator[T] {
	a.listener = l
	return a
}

func (a *Animator[T]) ID() uint64 {
	return a.id
}

func (a *Animator[T]) Duration() time.Duration {
	return a.duration
}

// Value returns the most recently emitted value
func (a *Animator[T]) Value() T {
	return a.value
}

func (a *Animator[T]) IsRunning() bool {
	return a.running
}

// Start begins the run. Starting a running animator does nothing.
func (a *Animator[T]) Start() {
	if a.running {
		return
	}
	a.running = true
	a.started = a.loop.Now()
	a.cycle = 0
	a.tween = gween.New(0, 1, 1, a.curve)
	a.loop.add(a)

	if a.listener.OnStart != nil {
		a.listener.OnStart()
		if !a.running {
			return
		}
	}
	a.animate(0)
}

// Cancel stops the run without emitting OnEnd. Idempotent.
func (a *Animator[T]) Cancel() {
	if !a.running {
		return
	}
	a.running = false
	a.loop.remove(a)
	if a.listener.OnCancel != nil {
		a.listener.OnCancel()
	}
}

// Detach drops every listener
func (a *Animator[T]) Detach() {
	a.listener = Listener[T]{}
}

func (a *Animator[T]) tick(now time.Time) {
	if !a.running {
		return
	}

	fraction := 1.0
	if a.duration > 0 {
		fraction = float64(now.Sub(a.started)) / float64(a.duration)
	}

	if a.repeat == Infinite {
		if a.duration <= 0 {
			a.animate(1)
			return
		}
		cycles := int(fraction)
		if cycles > a.cycle {
			a.cycle = cycles
			a.tween.Reset()
			if a.listener.OnRepeat != nil {
				a.listener.OnRepeat()
				if !a.running {
					return
				}
			}
		}
		a.animate(fraction - float64(cycles))
		return
	}

	if fraction >= 1 {
		a.animate(1)
		if !a.running {
			return
		}
		a.running = false
		a.loop.remove(a)
		if a.listener.OnEnd != nil {
			a.listener.OnEnd()
		}
		return
	}
	a.animate(fraction)
}

func (a *Animator[T]) animate(fraction float64) {
	eased, _ := a.tween.Set(float32(fraction))
	a.value = a.values(float64(eased))
	if a.listener.OnUpdate != nil {
		a.listener.OnUpdate(a.value)
	}
}
