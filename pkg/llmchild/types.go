// Package llmchild spawns the LLM CLI child process for one session and
// streams its newline-delimited JSON event output back to the caller.
package llmchild

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrSpawnFailed wraps a failure to start the child process at all (binary
// missing, exec permission denied) — distinct from the child starting and
// later exiting non-zero.
var ErrSpawnFailed = errors.New("llm child spawn failed")

// EventType identifies the recognized shapes in the child's event stream.
// Values outside this set are ignored per the child output contract.
type EventType string

const (
	EventAssistant EventType = "assistant"
	EventUser      EventType = "user"
	EventResult    EventType = "result"
)

// Event is one decoded line of the child's NDJSON stream. Raw carries the
// full line so a caller interested in a specific shape's nested fields
// (tool_use, tool_result, cost) can decode further; this package itself
// only needs Type to classify lines and Raw to hand off to the
// outcome recorder.
type Event struct {
	Type EventType
	Raw  json.RawMessage
}

// Spec describes one child invocation.
type Spec struct {
	Binary        string
	Prompt        string
	SessionType   string
	SessionNumber int
	Focus         string
	BudgetCap     string
	MCPConfigPath string
	Timeout       time.Duration
	KillGrace     time.Duration

	// OnStart, if set, is called with the child's PID immediately after
	// it starts, so a caller can record it for stale-process cleanup on
	// the next tick.
	OnStart func(pid int)
}

// Outcome classifies how the child run ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeTimeout Outcome = "timeout"
	OutcomeError   Outcome = "error"
)

// Result is the full record of one child invocation: every decoded event,
// how it ended, and timing.
type Result struct {
	Outcome  Outcome
	Events   []Event
	Duration time.Duration
	ExitCode int
}
