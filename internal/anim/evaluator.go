package anim

import "github.com/normanking/neonlight/internal/argb"

// Evaluator returns the animated value at an eased fraction. Fractions may
// fall outside [0,1] when a curve overshoots.
type Evaluator[T any] func(fraction float64) T

// Keyframes samples values at equal fractions and interpolates between
// neighbours with lerp. A single value animates from the zero value to it.
func Keyframes[T any](lerp func(a, b T, t float64) T, values ...T) Evaluator[T] {
	frames := make([]T, 0, len(values)+1)
	if len(values) == 1 {
		var zero T
		frames = append(frames, zero)
	}
	frames = append(frames, values...)

	return func(fraction float64) T {
		switch len(frames) {
		case 0:
			var zero T
			return zero
		case 1:
			return frames[0]
		}

		segments := len(frames) - 1
		pos := fraction * float64(segments)
		i := int(pos)
		if pos < 0 {
			i = 0
		}
		if i > segments-1 {
			i = segments - 1
		}
		return lerp(frames[i], frames[i+1], pos-float64(i))
	}
}

// Floats animates float keyframes
func Floats(values ...float64) Evaluator[float64] {
	return Keyframes(lerpFloat, values...)
}

// Ints animates integer keyframes, truncating each interpolated step
func Ints(values ...int) Evaluator[int] {
	return Keyframes(lerpInt, values...)
}

// Colors animates ARGB keyframes channel by channel
func Colors(values ...argb.Color) Evaluator[argb.Color] {
	return Keyframes(argb.Lerp, values...)
}

func lerpFloat(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpInt(a, b int, t float64) int {
	return a + int(float64(b-a)*t)
}
