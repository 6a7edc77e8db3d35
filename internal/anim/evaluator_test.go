package anim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/normanking/neonlight/internal/argb"
)

func TestCurves(t *testing.T) {
	assert.InDelta(t, 0.25, Accelerate(0.5, 0, 1, 1), 1e-6)
	assert.InDelta(t, 1, Accelerate(1, 0, 1, 1), 1e-6)
	assert.InDelta(t, 0, AccelerateDecelerate(0, 0, 1, 1), 1e-6)
	assert.InDelta(t, 0.5, AccelerateDecelerate(0.5, 0, 1, 1), 1e-6)
	assert.InDelta(t, 1, AccelerateDecelerate(1, 0, 1, 1), 1e-6)
	assert.InDelta(t, 0.3, Linear(0.3, 0, 1, 1), 1e-6)
	assert.InDelta(t, 0.5*(1-math.Cos(math.Pi*0.3)), AccelerateDecelerate(0.3, 0, 1, 1), 1e-6)
}

func TestSingleValueAnimatesFromZero(t *testing.T) {
	ints := Ints(255)
	assert.Equal(t, 0, ints(0))
	assert.Equal(t, 127, ints(0.5), "integer steps truncate")
	assert.Equal(t, 255, ints(1))

	floats := Floats(0.5)
	assert.InDelta(t, 0.25, floats(0.5), 1e-9)
}

func TestKeyframesEqualSegments(t *testing.T) {
	scales := Floats(1.0, 0.7, 1.0, 0.7, 1.1, 0.6, 0.8, 1.0, 0.7, 1.0)

	assert.InDelta(t, 1.0, scales(0), 1e-9)
	assert.InDelta(t, 0.85, scales(0.5), 1e-9)
	assert.InDelta(t, 1.0, scales(1), 1e-9)
}

func TestKeyframesExtrapolate(t *testing.T) {
	f := Floats(0, 1)
	assert.InDelta(t, 1.5, f(1.5), 1e-9)
	assert.InDelta(t, -0.5, f(-0.5), 1e-9)
}

func TestColorKeyframes(t *testing.T) {
	c := Colors(argb.Background, argb.Foreground)

	assert.Equal(t, argb.Background, c(0))
	assert.Equal(t, argb.Foreground, c(1))
	assert.Equal(t, argb.New(217, 16, 155, 251), c(0.5))
}

func TestEmptyKeyframes(t *testing.T) {
	assert.Equal(t, 0, Ints()(0.5))
}
