// Package retention enforces the storage-lifetime knobs configured for
// the orchestrator's append-only logs and archive documents:
// a max age for history entries, a max line count for the health log,
// and a max entry count for the archived intel document. Every sweep is
// a pure function over an already-loaded document plus a cutoff — no
// package in here touches a file directly; pkg/retention/sweeper.go
// wires these against pkg/state for the caller (a post-session hook or
// the retention-sweep CLI subcommand).
package retention

import "time"

// LineResult is the outcome of sweeping one append-only log.
type LineResult struct {
	Kept    []string
	Removed int
}

// SweepByAge keeps only the lines whose extracted timestamp is at or
// after cutoff. A line whose timestamp can't be extracted is kept —
// retention never discards data it can't confidently judge as expired.
func SweepByAge(lines []string, extractTime func(line string) (time.Time, bool), cutoff time.Time) LineResult {
	kept := make([]string, 0, len(lines))
	removed := 0
	for _, line := range lines {
		ts, ok := extractTime(line)
		if ok && ts.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	return LineResult{Kept: kept, Removed: removed}
}

// SweepByCount keeps only the last maxLines entries (oldest-first input
// assumed, matching state.Store.ReadLines/AppendLine's own ordering).
// maxLines <= 0 disables trimming.
func SweepByCount(lines []string, maxLines int) LineResult {
	if maxLines <= 0 || len(lines) <= maxLines {
		return LineResult{Kept: lines, Removed: 0}
	}
	removed := len(lines) - maxLines
	return LineResult{Kept: lines[removed:], Removed: removed}
}
