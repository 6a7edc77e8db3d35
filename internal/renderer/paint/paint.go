// Package paint turns the light's paint calls into framebuffer-space draw
// commands for the GL renderer.
//
// View coordinates have their origin top-left in window pixels. Commands
// are in framebuffer pixels with the origin bottom-left, matching
// gl_FragCoord and glScissor.
package paint

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/normanking/neonlight/internal/argb"
	"github.com/normanking/neonlight/internal/neon"
)

// Rect is a scissor box in framebuffer pixels
type Rect struct {
	X, Y, W, H int32
}

// Command is one fullscreen draw
type Command struct {
	Flat bool

	// Flat overlay color
	Color mgl32.Vec4

	// Radial gradient
	Center mgl32.Vec2
	Radius float32
	Inner  mgl32.Vec4
	Outer  mgl32.Vec4
	Stops  mgl32.Vec2

	Scissor Rect
}

// Batch collects commands for one frame. It implements neon.Renderer.
type Batch struct {
	fbWidth  int
	fbHeight int

	Commands []Command
}

var _ neon.Renderer = (*Batch)(nil)

// Reset empties the batch and sets the framebuffer size for the next frame
func (b *Batch) Reset(fbWidth, fbHeight int) {
	b.fbWidth = fbWidth
	b.fbHeight = fbHeight
	b.Commands = b.Commands[:0]
}

// Empty reports whether nothing was painted
func (b *Batch) Empty() bool {
	return len(b.Commands) == 0
}

func (b *Batch) full() Rect {
	return Rect{W: int32(b.fbWidth), H: int32(b.fbHeight)}
}

// scale returns framebuffer pixels per view pixel on each axis
func (b *Batch) scale(width, height float64) mgl32.Vec2 {
	if width <= 0 || height <= 0 {
		return mgl32.Vec2{1, 1}
	}
	return mgl32.Vec2{float32(float64(b.fbWidth) / width), float32(float64(b.fbHeight) / height)}
}

// PaintSingleGradient draws g over the whole framebuffer
func (b *Batch) PaintSingleGradient(g neon.Gradient, width, height float64) {
	b.Commands = append(b.Commands, b.gradient(g, width, height, b.full()))
}

// PaintDualGradient draws left up to splitX and right after it
func (b *Batch) PaintDualGradient(left, right neon.Gradient, splitX, width, height float64) {
	s := b.scale(width, height)
	split := int32(math.Round(splitX * float64(s.X())))
	split = min(max(split, 0), int32(b.fbWidth))

	full := b.full()
	b.Commands = append(b.Commands,
		b.gradient(left, width, height, Rect{W: split, H: full.H}),
		b.gradient(right, width, height, Rect{X: split, W: full.W - split, H: full.H}),
	)
}

// PaintFlatOverlay fills the framebuffer with c
func (b *Batch) PaintFlatOverlay(c argb.Color, _, _ float64) {
	b.Commands = append(b.Commands, Command{
		Flat:    true,
		Color:   Vec4(c),
		Scissor: b.full(),
	})
}

func (b *Batch) gradient(g neon.Gradient, width, height float64, scissor Rect) Command {
	s := b.scale(width, height)
	return Command{
		Center:  mgl32.Vec2{float32(g.CX) * s.X(), float32(height-g.CY) * s.Y()},
		Radius:  float32(g.Radius) * s.X(),
		Inner:   Vec4(g.Colors[0]),
		Outer:   Vec4(g.Colors[1]),
		Stops:   mgl32.Vec2{float32(g.Stops[0]), float32(g.Stops[1])},
		Scissor: scissor,
	}
}

// Vec4 converts c to normalized RGBA
func Vec4(c argb.Color) mgl32.Vec4 {
	r, g, bl, a := c.RGBA()
	return mgl32.Vec4{r, g, bl, a}
}
