package neon

import (
	"github.com/rs/zerolog"

	"github.com/normanking/neonlight/internal/anim"
	"github.com/normanking/neonlight/internal/bus"
)

// AnimationCallback is notified when the Start animation finishes naturally
type AnimationCallback interface {
	OnStartAnimationEnd()
}

// AnimationCallbackFunc adapts a function to AnimationCallback
type AnimationCallbackFunc func()

func (f AnimationCallbackFunc) OnStartAnimationEnd() { f() }

// Options configures a Controller
type Options struct {
	Loop    *anim.Loop
	Metrics Metrics
	Palette Palette
	Timings Timings
	Logger  zerolog.Logger
	Events  bus.Publisher
}

// Controller owns the light's state, its points and the running animations.
//
// A Controller is not safe for concurrent use. Every method, and every
// animation callback, runs on the goroutine that drives its anim.Loop;
// other goroutines hand work over with Loop.Post.
type Controller struct {
	loop    *anim.Loop
	log     zerolog.Logger
	events  bus.Publisher
	palette Palette
	timings Timings
	metrics Metrics

	current  State
	previous State
	privacy  bool

	// seq orders state and privacy events, which the bus may deliver out
	// of order
	seq uint64

	primary   *Point
	secondary *Point

	// active holds the running animation; recovery holds the fall half of
	// a pulse cycle
	active   anim.Handle
	recovery anim.Handle

	callback   AnimationCallback
	invalidate func()
}

// NewController creates a controller in the Idle state
func NewController(opts Options) *Controller {
	loop := opts.Loop
	if loop == nil {
		loop = anim.NewLoop(nil, 0)
	}
	if opts.Metrics.Density <= 0 {
		opts.Metrics.Density = 1
	}
	if opts.Palette == (Palette{}) {
		opts.Palette = DefaultPalette()
	}

	return &Controller{
		loop:    loop,
		log:     opts.Logger,
		events:  opts.Events,
		palette: opts.Palette,
		timings: opts.Timings.withDefaults(),
		metrics: opts.Metrics,
	}
}

// Loop returns the animation loop the controller runs on
func (c *Controller) Loop() *anim.Loop {
	return c.loop
}

func (c *Controller) State() State         { return c.current }
func (c *Controller) PreviousState() State { return c.previous }
func (c *Controller) IsPrivacy() bool      { return c.privacy }
func (c *Controller) Metrics() Metrics     { return c.metrics }
func (c *Controller) Palette() Palette     { return c.palette }
func (c *Controller) Timings() Timings     { return c.timings }

// SetState switches the light to s. Setting the current state again does
// nothing.
func (c *Controller) SetState(s State) {
	if !s.Valid() {
		c.log.Warn().Int("state", int(s)).Msg("ignoring invalid state")
		return
	}
	if s == c.current {
		return
	}

	c.previous = c.current
	c.current = s
	c.log.Debug().
		Str("state", s.String()).
		Str("previous", c.previous.String()).
		Msg("state changed")
	c.publishStatus(bus.EventTypeStateChanged, map[string]any{
		"state":    s.String(),
		"previous": c.previous.String(),
	})

	switch s {
	case Idle:
		if c.previous == Start || c.previous == Error {
			c.recoverToIdle()
		}
	case Start:
		c.startAnimation()
	case Listening:
		c.listeningAnimation()
	case Thinking:
		c.pulse(Thinking, rise)
	case Speaking:
		c.pulse(Speaking, rise)
	case Error:
		c.errorAnimation()
	}
}

// SetPrivacy records the privacy flag. When nothing is animating, enabling
// it plays the privacy fade in and disabling it clears the overlay. A
// settled Error overlay is painted over privacy, so no fade plays there.
func (c *Controller) SetPrivacy(on bool) {
	c.privacy = on
	c.publishStatus(bus.EventTypePrivacyChanged, map[string]any{"privacy": on})

	if c.IsAnimationRunning() {
		return
	}
	if on && c.current != Error {
		c.privacyAnimation()
		return
	}
	c.requestRepaint()
}

// IsAnimationRunning reports whether either animation slot is running
func (c *Controller) IsAnimationRunning() bool {
	return running(c.active) || running(c.recovery)
}

// ClearAnimation cancels both animation slots, detaches their listeners
// and drops the points.
func (c *Controller) ClearAnimation() {
	c.stopAnimations()
	c.primary = nil
	c.secondary = nil
}

// SetAnimationCallback registers the callback notified when a Start run
// finishes. It is read when the run ends, so a callback registered while
// Start is in flight still fires; a cancelled Start never notifies it.
func (c *Controller) SetAnimationCallback(cb AnimationCallback) {
	c.callback = cb
}

// SetInvalidateFunc sets the function called whenever the light needs a repaint
func (c *Controller) SetInvalidateFunc(fn func()) {
	c.invalidate = fn
}

// Resize updates the view dimensions. Running animations keep the values
// they were created with.
func (c *Controller) Resize(width, height int) {
	c.metrics.Width = width
	c.metrics.Height = height
	c.requestRepaint()
}

// SetPalette replaces the colors used by animations started from now on
func (c *Controller) SetPalette(p Palette) {
	c.palette = p
	c.requestRepaint()
}

// SetTimings replaces the durations used by animations started from now on
func (c *Controller) SetTimings(t Timings) {
	c.timings = t.withDefaults()
}

// Points returns copies of the live points
func (c *Controller) Points() []Point {
	var pts []Point
	for _, p := range []*Point{c.primary, c.secondary} {
		if p != nil {
			pts = append(pts, *p)
		}
	}
	return pts
}

func (c *Controller) width() float64 {
	return float64(c.metrics.Width)
}

func (c *Controller) baseRadius() float64 {
	return float64(DpToPx(BaseRadiusUnits, c.metrics.Density))
}

func (c *Controller) newPoint(position float64) *Point {
	return &Point{
		Position: position,
		Radius:   c.baseRadius(),
		Inner:    c.palette.Foreground,
		Outer:    c.palette.Background,
	}
}

func (c *Controller) stopAnimations() {
	release(&c.recovery)
	release(&c.active)
}

// occupy stores h in slot, releasing whatever ran there before
func (c *Controller) occupy(slot *anim.Handle, h anim.Handle) {
	release(slot)
	*slot = h
}

func release(slot *anim.Handle) {
	h := *slot
	if h == nil {
		return
	}
	*slot = nil
	h.Detach()
	h.Cancel()
}

func running(h anim.Handle) bool {
	return h != nil && h.IsRunning()
}

func (c *Controller) requestRepaint() {
	if c.invalidate != nil {
		c.invalidate()
	}
}

// publishStatus stamps a state or privacy event with the next sequence
// number
func (c *Controller) publishStatus(t bus.EventType, data map[string]any) {
	c.seq++
	data["seq"] = c.seq
	c.publish(t, data)
}

func (c *Controller) publish(t bus.EventType, data map[string]any) {
	if c.events != nil {
		c.events.Publish(bus.Event{Type: t, Data: data})
	}
}
