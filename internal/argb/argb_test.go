package argb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannels(t *testing.T) {
	c := New(180, 31, 59, 251)
	assert.Equal(t, 180, c.A())
	assert.Equal(t, 31, c.R())
	assert.Equal(t, 59, c.G())
	assert.Equal(t, 251, c.B())
	assert.Equal(t, Background, c)
	assert.Equal(t, Color(0xb41f3bfb), c)
}

func TestNewClamps(t *testing.T) {
	c := New(300, -5, 128, 256)
	assert.Equal(t, New(255, 0, 128, 255), c)
}

func TestWithAlpha(t *testing.T) {
	c := Foreground.WithAlpha(100)
	assert.Equal(t, 100, c.A())
	assert.Equal(t, Foreground.R(), c.R())
	assert.Equal(t, Foreground.G(), c.G())
	assert.Equal(t, Foreground.B(), c.B())
}

func TestLerp(t *testing.T) {
	assert.Equal(t, Background, Lerp(Background, Foreground, 0))
	assert.Equal(t, Foreground, Lerp(Background, Foreground, 1))
	assert.Equal(t, New(217, 16, 155, 251), Lerp(Background, Foreground, 0.5))
}

func TestHexRoundTrip(t *testing.T) {
	for _, c := range []Color{Foreground, Background, Error, Privacy, Transparent} {
		parsed, err := ParseHex(c.Hex())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, "#ff00fbfb", Foreground.Hex())
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#f8a24d")
	require.NoError(t, err)
	assert.Equal(t, New(255, 248, 162, 77), c)

	for _, bad := range []string{"", "f8a24d", "#f8a", "#zzzzzz", "#gg00fbfb"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestCSS(t *testing.T) {
	assert.Equal(t, "rgba(222,38,40,0.784)", Privacy.CSS())
}

func TestText(t *testing.T) {
	var c Color
	require.NoError(t, c.UnmarshalText([]byte("#c8de2628")))
	assert.Equal(t, Privacy, c)

	text, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#c8de2628", string(text))
}
