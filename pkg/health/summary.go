package health

import (
	"encoding/json"

	"github.com/tickwright/tickctl/pkg/state"
)

// Query reads the full health log and computes per-endpoint uptime
// percentage, average latency, and the most frequent error codes.
func Query(store *state.Store) (Summary, error) {
	lines, err := store.ReadLines(healthLog)
	if err != nil {
		return nil, err
	}

	type accum struct {
		okCount     int
		total       int
		latencySum  int64
		errorCounts map[string]int
	}
	acc := make(map[string]*accum)

	for _, raw := range lines {
		var line LogLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			continue
		}
		for name, res := range line.Results {
			a, ok := acc[name]
			if !ok {
				a = &accum{errorCounts: make(map[string]int)}
				acc[name] = a
			}
			a.total++
			a.latencySum += res.LatencyMS
			if res.OK {
				a.okCount++
			} else if res.ErrorCode != "" {
				a.errorCounts[res.ErrorCode]++
			}
		}
	}

	summary := make(Summary, len(acc))
	for name, a := range acc {
		es := EndpointSummary{SampleCount: a.total}
		if a.total > 0 {
			es.UptimePercent = 100 * float64(a.okCount) / float64(a.total)
			es.AvgLatencyMS = float64(a.latencySum) / float64(a.total)
		}
		if len(a.errorCounts) > 0 {
			es.TopErrorCodes = a.errorCounts
		}
		summary[name] = es
	}
	return summary, nil
}
