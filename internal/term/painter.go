// Package term renders the light in a terminal with tcell.
//
// Each cell stands for CellWidth x CellHeight view pixels and is drawn as
// an upper half block, so the foreground carries the top half of the cell
// and the background carries the bottom half.
package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/normanking/neonlight/internal/argb"
	"github.com/normanking/neonlight/internal/neon"
)

// Cell size in view pixels
const (
	CellWidth  = 8
	CellHeight = 16
)

const halfBlock = '▀'

// Canvas is the part of tcell.Screen the painter draws on
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

// Painter implements neon.Renderer on a character grid
type Painter struct {
	canvas Canvas
}

var _ neon.Renderer = (*Painter)(nil)

// NewPainter creates a painter on c
func NewPainter(c Canvas) *Painter {
	return &Painter{canvas: c}
}

// ViewSize returns the view size in pixels for a grid of cols x rows
func ViewSize(cols, rows int) (width, height int) {
	return cols * CellWidth, rows * CellHeight
}

// Clear blanks every cell
func (p *Painter) Clear() {
	p.fill(func(_, _ float64) argb.Color { return argb.Transparent })
}

func (p *Painter) PaintSingleGradient(g neon.Gradient, _, _ float64) {
	p.fill(g.ColorAt)
}

func (p *Painter) PaintDualGradient(left, right neon.Gradient, splitX, _, _ float64) {
	p.fill(func(x, y float64) argb.Color {
		if x < splitX {
			return left.ColorAt(x, y)
		}
		return right.ColorAt(x, y)
	})
}

func (p *Painter) PaintFlatOverlay(c argb.Color, _, _ float64) {
	p.fill(func(_, _ float64) argb.Color { return c })
}

func (p *Painter) fill(sample func(x, y float64) argb.Color) {
	cols, rows := p.canvas.Size()
	for row := 0; row < rows; row++ {
		top := (float64(row) + 0.25) * CellHeight
		bottom := (float64(row) + 0.75) * CellHeight
		for col := 0; col < cols; col++ {
			x := (float64(col) + 0.5) * CellWidth
			style := tcell.StyleDefault.
				Foreground(TermColor(sample(x, top))).
				Background(TermColor(sample(x, bottom)))
			p.canvas.SetContent(col, row, halfBlock, nil, style)
		}
	}
}

// TermColor composites c over black, since terminals have no alpha
func TermColor(c argb.Color) tcell.Color {
	over := colorful.Color{}.BlendRgb(c.Colorful(), float64(c.A())/255)
	r, g, b := over.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
