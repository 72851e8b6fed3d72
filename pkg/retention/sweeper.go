package retention

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tickwright/tickctl/pkg/state"
)

const (
	historyLog   = "history.log"
	healthLog    = "health.log"
	intelArchive = "intel-archive.json"
)

// timestampedLine is the minimal shape every append-only log in this
// orchestrator shares: a JSON object with either a recorded_at or a ts
// field. Both history.log (outcome.Record) and health.log (health.LogLine)
// use one of these field names.
type timestampedLine struct {
	RecordedAt time.Time `json:"recorded_at"`
	TS         time.Time `json:"ts"`
}

func extractLineTime(line string) (time.Time, bool) {
	var t timestampedLine
	if err := json.Unmarshal([]byte(line), &t); err != nil {
		return time.Time{}, false
	}
	if !t.RecordedAt.IsZero() {
		return t.RecordedAt, true
	}
	if !t.TS.IsZero() {
		return t.TS, true
	}
	return time.Time{}, false
}

// Config mirrors pkg/config.RetentionConfig's three knobs, kept
// independent of that package so retention has no import-time
// dependency on the config loader.
type Config struct {
	HistoryMaxAge          time.Duration
	HealthLogMaxLines      int
	IntelArchiveMaxEntries int
}

// Report summarizes one full sweep across every retained document.
type Report struct {
	HistoryRemoved int `json:"history_removed"`
	HealthRemoved  int `json:"health_removed"`
	IntelRemoved   int `json:"intel_removed"`
}

// Sweeper applies Config's knobs against a state.Store's documents.
type Sweeper struct {
	store *state.Store
	cfg   Config
}

// New returns a Sweeper operating on store per cfg.
func New(store *state.Store, cfg Config) *Sweeper {
	return &Sweeper{store: store, cfg: cfg}
}

// Run applies every configured retention knob and persists the trimmed
// results. A failure on one document does not prevent the others from
// running; the first error encountered is returned after all three have
// been attempted, so a caller logging the error still sees the partial
// Report's counts for what did succeed.
func (s *Sweeper) Run(now time.Time) (Report, error) {
	var report Report
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if s.cfg.HistoryMaxAge > 0 {
		removed, err := s.sweepHistoryByAge(now)
		report.HistoryRemoved = removed
		record(err)
	}

	if s.cfg.HealthLogMaxLines > 0 {
		removed, err := s.sweepHealthByCount()
		report.HealthRemoved = removed
		record(err)
	}

	if s.cfg.IntelArchiveMaxEntries > 0 {
		removed, err := s.sweepIntelArchiveByCount()
		report.IntelRemoved = removed
		record(err)
	}

	return report, firstErr
}

func (s *Sweeper) sweepHistoryByAge(now time.Time) (int, error) {
	lines, err := s.store.ReadLines(historyLog)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", historyLog, err)
	}
	cutoff := now.Add(-s.cfg.HistoryMaxAge)
	result := SweepByAge(lines, extractLineTime, cutoff)
	if result.Removed == 0 {
		return 0, nil
	}
	if err := rewriteLines(s.store, historyLog, result.Kept); err != nil {
		return 0, err
	}
	return result.Removed, nil
}

func (s *Sweeper) sweepHealthByCount() (int, error) {
	lines, err := s.store.ReadLines(healthLog)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", healthLog, err)
	}
	result := SweepByCount(lines, s.cfg.HealthLogMaxLines)
	if result.Removed == 0 {
		return 0, nil
	}
	if err := rewriteLines(s.store, healthLog, result.Kept); err != nil {
		return 0, err
	}
	return result.Removed, nil
}

func (s *Sweeper) sweepIntelArchiveByCount() (int, error) {
	var entries []json.RawMessage
	found, err := s.store.Read(intelArchive, &entries)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", intelArchive, err)
	}
	if !found || len(entries) <= s.cfg.IntelArchiveMaxEntries {
		return 0, nil
	}
	removed := len(entries) - s.cfg.IntelArchiveMaxEntries
	trimmed := entries[removed:]
	if err := s.store.Write(intelArchive, trimmed); err != nil {
		return 0, fmt.Errorf("writing %s: %w", intelArchive, err)
	}
	return removed, nil
}

// rewriteLines replaces name's entire contents with lines, since
// state.Store has no bulk-line-write primitive beyond AppendLine's
// rotate-then-append. Writing one line at a time through AppendLine
// would re-trigger rotation on every call, so the file is rewritten
// directly via the same atomic-write path Write uses for JSON documents.
func rewriteLines(store *state.Store, name string, lines []string) error {
	joined := ""
	for _, l := range lines {
		joined += l + "\n"
	}
	return store.WriteRaw(name, []byte(joined))
}
