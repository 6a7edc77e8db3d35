package neon

import (
	"math"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/normanking/neonlight/internal/anim"
	"github.com/normanking/neonlight/internal/argb"
	"github.com/normanking/neonlight/internal/bus"
)

// listeningScales are the keyframes of the listening breath, relative to
// the base radius
var listeningScales = []float64{1.0, 0.7, 1.0, 0.7, 1.1, 0.6, 0.8, 1.0, 0.7, 1.0}

// owner is what a run animates for: a state, or the privacy overlay
type owner struct {
	state   State
	privacy bool
}

func stateOwner(s State) owner { return owner{state: s} }

var privacyOwner = owner{privacy: true}

// live reports whether a run for o may still mutate pts. Runs stay live
// while their owner is current, and keep finishing after a switch to Idle
// as long as their points survive.
func (c *Controller) live(o owner, pts ...*Point) bool {
	for _, p := range pts {
		if p == nil {
			return false
		}
	}
	if o.privacy && c.privacy {
		return true
	}
	if !o.privacy && c.current == o.state {
		return true
	}
	return c.current == Idle && len(pts) > 0
}

func (c *Controller) startAnimation() {
	c.ClearAnimation()
	c.primary = c.newPoint(0)
	c.secondary = c.newPoint(1)

	o := stateOwner(Start)
	run := anim.New(c.loop, anim.Floats(0.5), c.timings.Start).
		WithCurve(anim.AccelerateDecelerate)
	run.WithListener(anim.Listener[float64]{
		OnUpdate: func(v float64) {
			if !c.live(o, c.primary, c.secondary) {
				return
			}
			c.primary.Position = v
			c.secondary.Position = 1 - v
			c.requestRepaint()
		},
		OnEnd: func() {
			c.ended("start")
			c.publish(bus.EventTypeStartComplete, nil)
			if c.callback != nil {
				c.callback.OnStartAnimationEnd()
			}
		},
	})
	c.occupy(&c.active, run)
	c.begin(run, c.current == Start, "start")
}

func (c *Controller) listeningAnimation() {
	c.ClearAnimation()
	c.primary = c.newPoint(0.5)

	o := stateOwner(Listening)
	base := c.baseRadius()
	run := anim.New(c.loop, anim.Floats(listeningScales...), c.timings.Listening).
		WithCurve(anim.Accelerate).
		WithRepeat(anim.Infinite)
	run.WithListener(anim.Listener[float64]{
		OnUpdate: func(scale float64) {
			if !c.live(o, c.primary) {
				return
			}
			c.primary.Radius = base * scale
			c.requestRepaint()
		},
		OnRepeat: func() {
			if c.current == Idle {
				run.Cancel()
				c.recoverToIdle()
			}
		},
	})
	c.occupy(&c.active, run)
	c.begin(run, c.current == Listening, "listening")
}

// phase is one half of a thinking or speaking pulse
type phase int

const (
	rise phase = iota
	fall
)

func (p phase) String() string {
	if p == fall {
		return "fall"
	}
	return "rise"
}

// pulse runs one phase of the thinking or speaking cycle on a full width
// point. Rises occupy the active slot and falls the recovery slot.
func (c *Controller) pulse(s State, ph phase) {
	c.ClearAnimation()
	p := c.newPoint(0.5)
	p.Radius = c.width()
	c.primary = p

	o := stateOwner(s)
	next := func() {
		c.ended(s.String())
		c.advancePulse(s, ph)
	}

	var run anim.Handle
	switch {
	case s == Thinking && ph == rise:
		run = c.thinkingRise(o, next)
	case s == Speaking && ph == rise:
		run = c.colorRun(o, c.palette.Background, c.palette.Foreground, c.timings.Speaking, anim.Accelerate, next)
	case s == Thinking:
		run = c.colorRun(o, c.palette.Foreground, c.palette.Background, c.timings.ThinkingRecovery, anim.AccelerateDecelerate, next)
	default:
		run = c.colorRun(o, c.palette.Foreground, c.palette.Background, c.timings.SpeakingRecovery, anim.AccelerateDecelerate, next)
	}

	slot := &c.active
	if ph == fall {
		slot = &c.recovery
	}
	c.occupy(slot, run)
	c.begin(run, c.current == s || c.current == Idle, s.String()+" "+ph.String())
}

// advancePulse picks the node that follows a finished phase. A fall always
// rises again; a rise falls while its state is current and recovers once
// the light has gone idle.
func (c *Controller) advancePulse(s State, ph phase) {
	if ph == fall {
		c.pulse(s, rise)
		return
	}
	switch c.current {
	case Idle:
		c.recoverToIdle()
	case s:
		c.pulse(s, fall)
	}
}

// thinkingRise grows the point across the view while its foreground alpha
// follows the radius
func (c *Controller) thinkingRise(o owner, onEnd func()) anim.Handle {
	w := c.metrics.Width
	run := anim.New(c.loop, anim.Ints(w), c.timings.Thinking).
		WithCurve(anim.Accelerate)
	run.WithListener(anim.Listener[int]{
		OnUpdate: func(r int) {
			if !c.live(o, c.primary) {
				return
			}
			c.primary.Radius = float64(r)
			c.primary.Inner = c.palette.Foreground.WithAlpha(thinkingAlpha(r, w))
			c.requestRepaint()
		},
		OnEnd: onEnd,
	})
	return run
}

func thinkingAlpha(radius, width int) int {
	frac := 0.0
	if width > 0 {
		frac = float64(radius) / float64(width)
	}
	return min(255, int(math.Round(255*frac))+100)
}

func (c *Controller) colorRun(o owner, from, to argb.Color, d time.Duration, curve ease.TweenFunc, onEnd func()) anim.Handle {
	run := anim.New(c.loop, anim.Colors(from, to), d).WithCurve(curve)
	run.WithListener(anim.Listener[argb.Color]{
		OnUpdate: func(col argb.Color) {
			if !c.live(o, c.primary) {
				return
			}
			c.primary.Inner = col
			c.requestRepaint()
		},
		OnEnd: onEnd,
	})
	return run
}

func (c *Controller) errorAnimation() {
	c.overlayFade(stateOwner(Error), c.palette.Error, c.timings.Error, c.current == Error, "error")
}

func (c *Controller) privacyAnimation() {
	c.overlayFade(privacyOwner, c.palette.Privacy, c.timings.Privacy, c.privacy, "privacy")
}

// overlayFade fades a full width point of col in from transparent
func (c *Controller) overlayFade(o owner, col argb.Color, d time.Duration, start bool, name string) {
	c.ClearAnimation()
	p := c.newPoint(0.5)
	p.Radius = c.width()
	c.primary = p

	run := anim.New(c.loop, anim.Ints(255), d).WithCurve(anim.Accelerate)
	run.WithListener(anim.Listener[int]{
		OnUpdate: func(alpha int) {
			if !c.live(o, c.primary) {
				return
			}
			c.primary.Inner = col.WithAlpha(alpha)
			c.requestRepaint()
		},
		OnEnd: func() {
			c.ended(name)
			c.requestRepaint()
		},
	})
	c.occupy(&c.active, run)
	c.begin(run, start, name)
}

// recoverToIdle fades whatever points remain to transparent. It stops the
// runs that were animating them but keeps the points.
func (c *Controller) recoverToIdle() {
	c.stopAnimations()

	run := anim.New(c.loop, anim.Ints(255), c.timings.Recovery).WithCurve(anim.Accelerate)
	run.WithListener(anim.Listener[int]{
		OnUpdate: func(v int) {
			if !c.live(stateOwner(Idle)) {
				return
			}
			for _, p := range []*Point{c.primary, c.secondary} {
				if p == nil {
					continue
				}
				p.Inner = p.Inner.WithAlpha(255 - v)
				p.Outer = p.Outer.WithAlpha(255 - v)
			}
			c.requestRepaint()
		},
		OnEnd: func() {
			c.ended("recovery")
			if c.current == Idle && c.privacy {
				c.privacyAnimation()
				return
			}
			c.requestRepaint()
		},
	})
	c.occupy(&c.active, run)
	c.begin(run, c.current == Idle, "recovery")
}

func (c *Controller) begin(run anim.Handle, start bool, name string) {
	if !start {
		c.log.Debug().Str("animation", name).Str("state", c.current.String()).Msg("animation not started")
		return
	}
	c.log.Debug().Uint64("run", run.ID()).Str("animation", name).Msg("animation started")
	run.Start()
}

func (c *Controller) ended(name string) {
	c.publish(bus.EventTypeAnimationEnded, map[string]any{
		"animation": name,
		"state":     c.current.String(),
	})
}
