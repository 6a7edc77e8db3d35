package neon

import "github.com/normanking/neonlight/internal/argb"

// Renderer paints the light. Width and height are the view size in pixels.
type Renderer interface {
	// PaintDualGradient fills [0,splitX) with left's gradient and the rest
	// with right's
	PaintDualGradient(left, right Gradient, splitX, width, height float64)
	// PaintSingleGradient fills the whole view with one gradient
	PaintSingleGradient(g Gradient, width, height float64)
	// PaintFlatOverlay fills the whole view with a flat color
	PaintFlatOverlay(c argb.Color, width, height float64)
}

// Draw issues the paint commands for the current frame.
//
// While an animation runs, Start paints its two points split at the
// midpoint of their centers and every other run paints the primary point.
// With nothing running, Error paints its flat overlay, then privacy paints
// its overlay, and otherwise nothing is painted.
func (c *Controller) Draw(r Renderer) {
	w := float64(c.metrics.Width)
	h := float64(c.metrics.Height)

	if c.IsAnimationRunning() {
		if c.current == Start {
			if c.primary == nil || c.secondary == nil {
				return
			}
			left, right := orderByCenter(*c.primary, *c.secondary, w)
			r.PaintDualGradient(left.Gradient(w, h), right.Gradient(w, h), SplitX(left, right, w), w, h)
			return
		}
		if c.primary != nil {
			r.PaintSingleGradient(c.primary.Gradient(w, h), w, h)
		}
		return
	}

	switch {
	case c.current == Error:
		r.PaintFlatOverlay(c.palette.Error, w, h)
	case c.privacy:
		r.PaintFlatOverlay(c.palette.Privacy, w, h)
	}
}

// PaintKind names the paint command of a Frame
type PaintKind string

const (
	PaintNone    PaintKind = "none"
	PaintSingle  PaintKind = "single"
	PaintDual    PaintKind = "dual"
	PaintOverlay PaintKind = "overlay"
)

// Frame is a self-contained copy of one Draw call, safe to hand to other
// goroutines
type Frame struct {
	State     State      `json:"state"`
	Privacy   bool       `json:"privacy"`
	Running   bool       `json:"running"`
	Kind      PaintKind  `json:"kind"`
	Gradients []Gradient `json:"gradients,omitempty"`
	SplitX    float64    `json:"splitX,omitempty"`
	Overlay   argb.Color `json:"overlay,omitempty"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
}

// Snapshot records what Draw would paint right now
func (c *Controller) Snapshot() Frame {
	f := &Frame{
		State:   c.current,
		Privacy: c.privacy,
		Running: c.IsAnimationRunning(),
		Kind:    PaintNone,
		Width:   float64(c.metrics.Width),
		Height:  float64(c.metrics.Height),
	}
	c.Draw(frameRecorder{f})
	return *f
}

type frameRecorder struct {
	f *Frame
}

func (r frameRecorder) PaintDualGradient(left, right Gradient, splitX, _, _ float64) {
	r.f.Kind = PaintDual
	r.f.Gradients = []Gradient{left, right}
	r.f.SplitX = splitX
}

func (r frameRecorder) PaintSingleGradient(g Gradient, _, _ float64) {
	r.f.Kind = PaintSingle
	r.f.Gradients = []Gradient{g}
}

func (r frameRecorder) PaintFlatOverlay(c argb.Color, _, _ float64) {
	r.f.Kind = PaintOverlay
	r.f.Overlay = c
}

// Replay issues the frame's paint command on r
func (f Frame) Replay(r Renderer) {
	switch f.Kind {
	case PaintDual:
		if len(f.Gradients) == 2 {
			r.PaintDualGradient(f.Gradients[0], f.Gradients[1], f.SplitX, f.Width, f.Height)
		}
	case PaintSingle:
		if len(f.Gradients) == 1 {
			r.PaintSingleGradient(f.Gradients[0], f.Width, f.Height)
		}
	case PaintOverlay:
		r.PaintFlatOverlay(f.Overlay, f.Width, f.Height)
	}
}
