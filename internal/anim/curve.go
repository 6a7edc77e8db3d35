package anim

import "github.com/tanema/gween/ease"

// Curves used by the light's animations. Each one is evaluated by a
// gween tween over a single cycle, so any ease.TweenFunc works as well.
var (
	Linear ease.TweenFunc = ease.Linear

	// Accelerate starts slow and speeds up
	Accelerate ease.TweenFunc = ease.InQuad

	// AccelerateDecelerate starts and ends slow, fastest in the middle
	AccelerateDecelerate ease.TweenFunc = ease.InOutSine
)
