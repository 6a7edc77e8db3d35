package neon

import (
	"time"

	"github.com/normanking/neonlight/internal/argb"
)

// Palette holds the light's colors
type Palette struct {
	Foreground argb.Color
	Background argb.Color
	Error      argb.Color
	Privacy    argb.Color
}

func DefaultPalette() Palette {
	return Palette{
		Foreground: argb.Foreground,
		Background: argb.Background,
		Error:      argb.Error,
		Privacy:    argb.Privacy,
	}
}

// Timings holds the duration of every animation
type Timings struct {
	Start            time.Duration
	Listening        time.Duration
	Thinking         time.Duration
	ThinkingRecovery time.Duration
	Speaking         time.Duration
	SpeakingRecovery time.Duration
	Error            time.Duration
	Privacy          time.Duration
	Recovery         time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Start:            1000 * time.Millisecond,
		Listening:        1200 * time.Millisecond,
		Thinking:         700 * time.Millisecond,
		ThinkingRecovery: 200 * time.Millisecond,
		Speaking:         700 * time.Millisecond,
		SpeakingRecovery: 700 * time.Millisecond,
		Error:            300 * time.Millisecond,
		Privacy:          300 * time.Millisecond,
		Recovery:         200 * time.Millisecond,
	}
}

// withDefaults fills zero durations from DefaultTimings
func (t Timings) withDefaults() Timings {
	d := DefaultTimings()
	fill := func(v *time.Duration, def time.Duration) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&t.Start, d.Start)
	fill(&t.Listening, d.Listening)
	fill(&t.Thinking, d.Thinking)
	fill(&t.ThinkingRecovery, d.ThinkingRecovery)
	fill(&t.Speaking, d.Speaking)
	fill(&t.SpeakingRecovery, d.SpeakingRecovery)
	fill(&t.Error, d.Error)
	fill(&t.Privacy, d.Privacy)
	fill(&t.Recovery, d.Recovery)
	return t
}
