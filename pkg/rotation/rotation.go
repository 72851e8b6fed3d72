// Package rotation implements the deterministic mode-selection state
// machine: given a pattern string over {B,E,R,A} and the outcome of the
// previous session, it decides which mode the next tick should run and
// whether the rotation index advances or the tick retries in place.
package rotation

import (
	"fmt"
	"strings"
	"time"
)

// Mode is one of the four session modes.
type Mode string

const (
	ModeBuild   Mode = "Build"
	ModeEngage  Mode = "Engage"
	ModeReflect Mode = "Reflect"
	ModeAudit   Mode = "Audit"
)

// letterToMode and modeToLetter translate between the pattern alphabet and
// mode names.
var letterToMode = map[byte]Mode{
	'B': ModeBuild,
	'E': ModeEngage,
	'R': ModeReflect,
	'A': ModeAudit,
}

// Outcome mirrors the session outcome taxonomy relevant to rotation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeTimeout Outcome = "timeout"
	OutcomeError   Outcome = "error"
	// OutcomeNone is used on the very first tick, when there is no
	// previous outcome to react to.
	OutcomeNone Outcome = ""
)

// State is the persisted rotation document.
type State struct {
	Pattern        string    `json:"pattern"`
	SessionCounter int       `json:"session_counter"`
	RotationIndex  int       `json:"rotation_index"`
	RetryCount     int       `json:"retry_count"`
	LastOutcome    Outcome   `json:"last_outcome"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Decision is the result of Advance: the mode to run this tick plus the
// new state to persist.
type Decision struct {
	Mode     Mode
	Counter  int
	NewState State
	Retried  bool // true if this tick repeats the previous index
	Overrode bool // true if the caller forced a mode, bypassing selection
}

// Machine operates over a given pattern and retry budget. It holds no
// state itself — State is passed in and a new State is returned — so
// Advance is a pure function, easy to property-test.
type Machine struct {
	maxRetries int
}

// New returns a rotation Machine with the given max-retries budget.
func New(maxRetries int) *Machine {
	return &Machine{maxRetries: maxRetries}
}

// Initial returns the zero-value rotation state for the given pattern.
func Initial(pattern string) State {
	return State{Pattern: pattern, SessionCounter: 0, RotationIndex: 0, RetryCount: 0, LastOutcome: OutcomeNone}
}

// Advance computes the next rotation state given the previous tick's
// outcome, following these ordered rules:
//  1. previous == timeout && retry_count < max_retries: stay on the same
//     index, increment retry_count, increment session_counter.
//  2. otherwise: advance rotation_index modulo len(pattern), reset
//     retry_count to 0, increment session_counter.
func (m *Machine) Advance(prev State, prevOutcome Outcome, now time.Time) (Decision, error) {
	mode, err := modeAt(prev.Pattern, prev.RotationIndex)
	if err != nil {
		return Decision{}, err
	}

	next := prev
	next.SessionCounter = prev.SessionCounter + 1
	next.LastOutcome = prevOutcome
	next.UpdatedAt = now

	retried := prevOutcome == OutcomeTimeout && prev.RetryCount < m.maxRetries
	if retried {
		next.RetryCount = prev.RetryCount + 1
		// rotation_index unchanged; mode stays the same too.
	} else {
		// This tick still runs as mode, selected from the index stored
		// coming in; rotation_index only advances for the *next* tick.
		next.RotationIndex = (prev.RotationIndex + 1) % len(prev.Pattern)
		next.RetryCount = 0
	}

	return Decision{Mode: mode, Counter: next.SessionCounter, NewState: next, Retried: retried}, nil
}

// Override forces the next tick to run as forcedMode. The counter still
// advances but rotation_index does not move — an operator-forced mode
// does not perturb the underlying pattern.
func (m *Machine) Override(prev State, forcedMode Mode, now time.Time) Decision {
	next := prev
	next.SessionCounter = prev.SessionCounter + 1
	next.RetryCount = 0
	next.UpdatedAt = now
	return Decision{Mode: forcedMode, Counter: next.SessionCounter, NewState: next, Overrode: true}
}

// modeAt returns the mode selected by pattern at the given index.
func modeAt(pattern string, index int) (Mode, error) {
	if len(pattern) == 0 {
		return "", fmt.Errorf("rotation pattern is empty")
	}
	letter := pattern[index%len(pattern)]
	mode, ok := letterToMode[letter]
	if !ok {
		return "", fmt.Errorf("rotation pattern contains unknown letter %q", letter)
	}
	return mode, nil
}

// ValidatePattern reports whether pattern is non-empty and drawn only from
// the {B,E,R,A} alphabet.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("rotation pattern must not be empty")
	}
	for i := 0; i < len(pattern); i++ {
		if _, ok := letterToMode[pattern[i]]; !ok {
			return fmt.Errorf("rotation pattern has unknown letter %q at position %d", pattern[i], i)
		}
	}
	return nil
}
