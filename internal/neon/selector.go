package neon

// StateSelector is the input side of the light: something that asks for
// state changes and privacy toggles
type StateSelector interface {
	OnStateRequested(s State)
	OnPrivacyToggled(on bool)
}

// SelectorOption configures a Selector
type SelectorOption func(*Selector)

// WithStartFollowUp makes every Start request move on to next once the
// Start animation completes
func WithStartFollowUp(next State) SelectorOption {
	return func(s *Selector) {
		s.followUp = next
		s.hasFollowUp = true
	}
}

// Selector forwards requests from any goroutine to a controller on its loop
type Selector struct {
	ctrl        *Controller
	followUp    State
	hasFollowUp bool
}

// NewSelector creates a selector for c
func NewSelector(c *Controller, opts ...SelectorOption) *Selector {
	s := &Selector{ctrl: c}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnStateRequested queues a state change
func (s *Selector) OnStateRequested(st State) {
	s.ctrl.Loop().Post(func() { s.apply(st) })
}

// OnPrivacyToggled queues a privacy change
func (s *Selector) OnPrivacyToggled(on bool) {
	s.ctrl.Loop().Post(func() { s.ctrl.SetPrivacy(on) })
}

func (s *Selector) apply(st State) {
	if st == Start && s.hasFollowUp {
		next := s.followUp
		s.ctrl.SetAnimationCallback(AnimationCallbackFunc(func() {
			s.ctrl.SetState(next)
		}))
	}
	s.ctrl.SetState(st)
}
