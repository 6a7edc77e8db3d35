// Package neon implements the neon light: a glowing indicator whose
// animations encode the assistant's operating state.
package neon

import (
	"errors"
	"fmt"
	"strings"
)

// State is the operating mode shown by the light
type State int

const (
	Idle State = iota
	Start
	Listening
	Thinking
	Speaking
	Error
)

// ErrUnknownState is returned when a state name cannot be parsed
var ErrUnknownState = errors.New("unknown state")

var stateNames = [...]string{
	Idle:      "idle",
	Start:     "start",
	Listening: "listening",
	Thinking:  "thinking",
	Speaking:  "speaking",
	Error:     "error",
}

// States lists every state in declaration order
func States() []State {
	return []State{Idle, Start, Listening, Thinking, Speaking, Error}
}

func (s State) Valid() bool {
	return s >= Idle && s <= Error
}

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState parses a state name, case-insensitively
func ParseState(name string) (State, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return Idle, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, int(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
