// Package outcome turns one LLM child's raw event stream into a session
// history record, a note, a cost figure, and per-platform circuit
// breaker updates.
package outcome

import "time"

// ToolCall is one assistant tool invocation paired with its result, when
// a pairing could be made from the event stream.
type ToolCall struct {
	Name    string
	Success bool
	Paired  bool // false if no matching tool_result was found in the stream
}

// Record is one session's outcome, ready to append to the history log.
type Record struct {
	SessionType   string    `json:"session_type"`
	SessionNumber int       `json:"session_number"`
	Outcome       string    `json:"outcome"`
	DurationMS    int64     `json:"duration_ms"`
	ToolCallCount int       `json:"tool_call_count"`
	CostUSD       float64   `json:"cost_usd"`
	Note          string    `json:"note"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Summary is the short sibling written next to the raw per-session log.
type Summary struct {
	SessionNumber int     `json:"session_number"`
	Outcome       string  `json:"outcome"`
	ToolCallCount int     `json:"tool_call_count"`
	CostUSD       float64 `json:"cost_usd"`
	Note          string  `json:"note"`
}
