package outcome

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tickwright/tickctl/pkg/circuit"
	"github.com/tickwright/tickctl/pkg/llmchild"
	"github.com/tickwright/tickctl/pkg/state"
)

const (
	historyLog    = "history.log"
	outcomesLog   = "outcomes.log"
	maxHistoryLen = 5000
)

// rawLogName returns the per-session raw NDJSON log path, the sibling
// writeSummary's .summary file sits next to.
func rawLogName(sessionNumber int) string {
	return fmt.Sprintf("sessions/%04d.log", sessionNumber)
}

// LogPath returns the state-directory-relative path of a session's raw
// log, the same name Record writes to. Callers that need to expose the
// path outside this package (e.g. a hook's environment) use this instead
// of duplicating the naming scheme.
func LogPath(sessionNumber int) string {
	return rawLogName(sessionNumber)
}

// Recorder turns a child's Result into durable history and circuit
// breaker updates.
type Recorder struct {
	store    *state.Store
	circuits *circuit.Registry
	// KnownPlatforms is the set of tool names treated as platform ids
	// for circuit breaker recording. Tool calls outside this set are
	// still counted but never touch the circuit breaker registry.
	KnownPlatforms map[string]bool
}

// New returns a Recorder writing to store and updating circuits for
// tool calls whose name is a member of knownPlatforms.
func New(store *state.Store, circuits *circuit.Registry, knownPlatforms map[string]bool) *Recorder {
	return &Recorder{store: store, circuits: circuits, KnownPlatforms: knownPlatforms}
}

// Record appends a history entry for one child run, writes the raw
// NDJSON event stream and its .summary sibling under sessions/, and
// calls circuit.RecordOutcome for every paired tool call (one with a
// matching tool_result) that targeted a known platform.
func (rec *Recorder) Record(result llmchild.Result, sessionType string, sessionNumber int, now time.Time) (Record, error) {
	calls := ExtractToolCalls(result.Events)
	cost := ExtractCost(result.Events)
	note := ExtractNote(result.Events)

	for _, call := range calls {
		if !call.Paired || !rec.KnownPlatforms[call.Name] {
			continue
		}
		if _, err := rec.circuits.RecordOutcome(call.Name, call.Success, now); err != nil {
			return Record{}, fmt.Errorf("recording circuit outcome for %s: %w", call.Name, err)
		}
	}

	record := Record{
		SessionType:   sessionType,
		SessionNumber: sessionNumber,
		Outcome:       string(result.Outcome),
		DurationMS:    result.Duration.Milliseconds(),
		ToolCallCount: len(calls),
		CostUSD:       cost,
		Note:          note,
		RecordedAt:    now,
	}

	line, err := json.Marshal(record)
	if err != nil {
		return Record{}, fmt.Errorf("encoding history record: %w", err)
	}
	if err := rec.store.AppendLine(historyLog, string(line), maxHistoryLen); err != nil {
		return Record{}, err
	}
	if err := rec.store.AppendLine(outcomesLog, string(line), maxHistoryLen); err != nil {
		return Record{}, err
	}

	if err := rec.writeRawLog(sessionNumber, result.Events); err != nil {
		return Record{}, err
	}
	if err := rec.writeSummary(sessionNumber, record); err != nil {
		return Record{}, err
	}

	return record, nil
}

// writeRawLog concatenates the child's captured NDJSON lines, one per
// event, into sessions/%04d.log — the raw log writeSummary's .summary
// file sits next to.
func (rec *Recorder) writeRawLog(sessionNumber int, events []llmchild.Event) error {
	var buf bytes.Buffer
	for _, e := range events {
		buf.Write(e.Raw)
		buf.WriteByte('\n')
	}
	return rec.store.WriteRaw(rawLogName(sessionNumber), buf.Bytes())
}

func (rec *Recorder) writeSummary(sessionNumber int, record Record) error {
	summary := Summary{
		SessionNumber: sessionNumber,
		Outcome:       record.Outcome,
		ToolCallCount: record.ToolCallCount,
		CostUSD:       record.CostUSD,
		Note:          record.Note,
	}
	name := fmt.Sprintf("sessions/%04d.summary", sessionNumber)
	return rec.store.Write(name, summary)
}
