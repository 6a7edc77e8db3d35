package neon

import (
	"math"

	"github.com/normanking/neonlight/internal/argb"
)

// BaseRadiusUnits is the resting radius of a point in density-independent units
const BaseRadiusUnits = 120

// EdgeStops are the gradient stop offsets for the inner and outer color
var EdgeStops = [2]float64{0.75, 1.0}

// Metrics describes the host view
type Metrics struct {
	Density float64
	Width   int
	Height  int
}

// DpToPx converts density-independent units to pixels
func DpToPx(units, density float64) int {
	return int(units*density + 0.5)
}

// Point is one glowing locus of the light. Position is a fraction of the
// view width; Start briefly drives it outside [0,1].
type Point struct {
	Position float64    `json:"position"`
	Radius   float64    `json:"radius"`
	Inner    argb.Color `json:"inner"`
	Outer    argb.Color `json:"outer"`
}

// CenterX returns the point's horizontal center in pixels
func (p Point) CenterX(width float64) float64 {
	return width * p.Position
}

// Gradient returns the radial gradient painted for p in a width x height view
func (p Point) Gradient(width, height float64) Gradient {
	return Gradient{
		CX:     p.CenterX(width),
		CY:     height / 2,
		Radius: math.Max(p.Radius, 0),
		Colors: [2]argb.Color{p.Inner, p.Outer},
		Stops:  EdgeStops,
	}
}

// Gradient is a clamped two-stop radial gradient
type Gradient struct {
	CX     float64       `json:"cx"`
	CY     float64       `json:"cy"`
	Radius float64       `json:"radius"`
	Colors [2]argb.Color `json:"colors"`
	Stops  [2]float64    `json:"stops"`
}

// ColorAt evaluates the gradient at a pixel. A zero radius paints the
// outer color everywhere.
func (g Gradient) ColorAt(x, y float64) argb.Color {
	if g.Radius <= 0 {
		return g.Colors[1]
	}
	t := math.Hypot(x-g.CX, y-g.CY) / g.Radius
	switch {
	case t <= g.Stops[0]:
		return g.Colors[0]
	case t >= g.Stops[1]:
		return g.Colors[1]
	}
	return argb.Lerp(g.Colors[0], g.Colors[1], (t-g.Stops[0])/(g.Stops[1]-g.Stops[0]))
}

// SplitX returns where a dual paint switches from the left to the right gradient
func SplitX(left, right Point, width float64) float64 {
	return (left.CenterX(width) + right.CenterX(width)) / 2
}

func orderByCenter(a, b Point, width float64) (left, right Point) {
	if a.CenterX(width) < b.CenterX(width) {
		return a, b
	}
	return b, a
}
