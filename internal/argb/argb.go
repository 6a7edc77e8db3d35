// Package argb provides packed ARGB colors and the alpha/interpolation
// helpers used by the light animations.
package argb

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a packed 0xAARRGGBB color
type Color uint32

// Palette colors of the light
var (
	Foreground  = New(255, 0, 251, 251)
	Background  = New(180, 31, 59, 251)
	Error       = New(200, 248, 162, 77)
	Privacy     = New(200, 222, 38, 40)
	Transparent = Color(0)
)

// New packs the four channels, clamping each to [0,255]
func New(a, r, g, b int) Color {
	return Color(uint32(clampByte(a))<<24 | uint32(clampByte(r))<<16 | uint32(clampByte(g))<<8 | uint32(clampByte(b)))
}

func (c Color) A() int { return int(c>>24) & 0xff }
func (c Color) R() int { return int(c>>16) & 0xff }
func (c Color) G() int { return int(c>>8) & 0xff }
func (c Color) B() int { return int(c) & 0xff }

// WithAlpha returns c with its alpha channel replaced
func (c Color) WithAlpha(alpha int) Color {
	return New(alpha, c.R(), c.G(), c.B())
}

// Lerp interpolates each channel linearly. t is not clamped so that
// overshooting curves behave like the keyframe evaluators.
func Lerp(a, b Color, t float64) Color {
	return New(
		lerpChannel(a.A(), b.A(), t),
		lerpChannel(a.R(), b.R(), t),
		lerpChannel(a.G(), b.G(), t),
		lerpChannel(a.B(), b.B(), t),
	)
}

func lerpChannel(a, b int, t float64) int {
	return a + int(float64(b-a)*t)
}

// RGBA returns normalized non-premultiplied channels
func (c Color) RGBA() (r, g, b, a float32) {
	return float32(c.R()) / 255, float32(c.G()) / 255, float32(c.B()) / 255, float32(c.A()) / 255
}

// Colorful converts the RGB part to a go-colorful color, dropping alpha
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R()) / 255,
		G: float64(c.G()) / 255,
		B: float64(c.B()) / 255,
	}
}

// Hex formats the color as #AARRGGBB
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%s", c.A(), strings.TrimPrefix(c.Colorful().Hex(), "#"))
}

// CSS formats the color as a CSS rgba() value
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R(), c.G(), c.B(), float64(c.A())/255)
}

func (c Color) String() string {
	return c.Hex()
}

// ParseHex parses #RRGGBB (opaque) or #AARRGGBB
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return 0, fmt.Errorf("invalid color %q: missing #", s)
	}
	alpha := 255
	switch len(s) {
	case 7:
	case 9:
		if _, err := fmt.Sscanf(s[1:3], "%02x", &alpha); err != nil {
			return 0, fmt.Errorf("parse alpha of %q: %w", s, err)
		}
		s = "#" + s[3:]
	default:
		return 0, fmt.Errorf("invalid color %q: want #RRGGBB or #AARRGGBB", s)
	}

	col, err := colorful.Hex(s)
	if err != nil {
		return 0, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	return New(alpha, int(r), int(g), int(b)), nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
