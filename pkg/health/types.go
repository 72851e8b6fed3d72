// Package health periodically probes a declared list of platform
// endpoints, independent of the session driver's own clock, and keeps
// an append-only JSON-lines log of the results.
package health

import "time"

// Endpoint is one probe target.
type Endpoint struct {
	Name    string
	URL     string
	Method  string // defaults to GET when empty
	Timeout time.Duration
}

// ProbeResult is the outcome of probing one endpoint once.
type ProbeResult struct {
	StatusCode int    `json:"status_code"`
	LatencyMS  int64  `json:"latency_ms"`
	OK         bool   `json:"ok"`
	ErrorCode  string `json:"error,omitempty"`
}

// LogLine is one tick's worth of probe results, the health log's unit
// of record in its "one JSON object per line" format.
type LogLine struct {
	TS      time.Time              `json:"ts"`
	Results map[string]ProbeResult `json:"results"`
}

// EndpointSummary aggregates one endpoint's history across the log.
type EndpointSummary struct {
	UptimePercent float64        `json:"uptime_percent"`
	AvgLatencyMS  float64        `json:"avg_latency_ms"`
	TopErrorCodes map[string]int `json:"top_error_codes,omitempty"`
	SampleCount   int            `json:"sample_count"`
}

// Summary maps endpoint name to its aggregated EndpointSummary.
type Summary map[string]EndpointSummary
