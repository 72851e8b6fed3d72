package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/tickwright/tickctl/pkg/redact"
	"github.com/tickwright/tickctl/pkg/state"
)

const healthLog = "health.log"

// Monitor runs a background goroutine that probes each declared endpoint
// on a fixed interval. It owns only its own HTTP client and its own
// log; it reads no other orchestrator state and the session driver
// never blocks on it.
type Monitor struct {
	store         *state.Store
	endpoints     []Endpoint
	checkInterval time.Duration
	maxLogLines   int
	client        *http.Client

	statusesMu sync.RWMutex
	statuses   map[string]ProbeResult

	cancel context.CancelFunc
	done   chan struct{}

	// Redactor, if set, scrubs a probe's error string before it is
	// persisted to the health log — a transport error can embed the
	// probed URL (including any userinfo) verbatim.
	Redactor *redact.Redactor
}

// New returns a Monitor that probes endpoints every checkInterval,
// rotating the health log to maxLogLines.
func New(store *state.Store, endpoints []Endpoint, checkInterval time.Duration, maxLogLines int) *Monitor {
	return &Monitor{
		store:         store,
		endpoints:     endpoints,
		checkInterval: checkInterval,
		maxLogLines:   maxLogLines,
		client:        &http.Client{},
		statuses:      make(map[string]ProbeResult),
	}
}

// Start launches the background probe loop. Calling Start on an
// already-running Monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.loop(ctx)
}

// Stop gracefully shuts down the probe loop and waits for it to exit.
// After Stop returns, Start may be called again.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.done != nil {
		<-m.done
	}
	m.cancel = nil
	m.done = nil
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	m.checkAll(ctx)

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkAll(ctx)
		}
	}
}

// CheckOnce runs a single probe pass immediately and returns its result,
// for the `health-probe` CLI subcommand's out-of-band use.
func (m *Monitor) CheckOnce(ctx context.Context) LogLine {
	return m.checkAll(ctx)
}

func (m *Monitor) checkAll(ctx context.Context) LogLine {
	results := make(map[string]ProbeResult, len(m.endpoints))
	for _, ep := range m.endpoints {
		results[ep.Name] = m.probe(ctx, ep)
	}

	m.statusesMu.Lock()
	for name, res := range results {
		m.statuses[name] = res
	}
	m.statusesMu.Unlock()

	line := LogLine{TS: time.Now(), Results: results}
	if data, err := json.Marshal(line); err == nil {
		_ = m.store.AppendLine(healthLog, string(data), m.maxLogLines)
	}
	return line
}

func (m *Monitor) probe(ctx context.Context, ep Endpoint) ProbeResult {
	method := ep.Method
	if method == "" {
		method = http.MethodGet
	}

	probeCtx, cancel := context.WithTimeout(ctx, ep.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, method, ep.URL, nil)
	if err != nil {
		return ProbeResult{OK: false, ErrorCode: "bad_request"}
	}

	start := time.Now()
	resp, err := m.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return ProbeResult{OK: false, LatencyMS: latency.Milliseconds(), ErrorCode: m.redactErrorCode(classifyError(err))}
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 400
	result := ProbeResult{StatusCode: resp.StatusCode, LatencyMS: latency.Milliseconds(), OK: ok}
	if !ok {
		result.ErrorCode = "http_" + http.StatusText(resp.StatusCode)
	}
	return result
}

func (m *Monitor) redactErrorCode(code string) string {
	if m.Redactor == nil {
		return code
	}
	return m.Redactor.Redact(code)
}

// classifyError buckets the common cases (timeout, connection refused)
// into fixed codes, and otherwise falls back to the raw error text so an
// operator can diagnose an unfamiliar failure — which is exactly the
// case that can leak a credential-bearing URL, hence the Redactor pass
// in probe().
func classifyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection_refused"
	}
	return "connection_error: " + err.Error()
}

// Statuses returns a snapshot of every endpoint's most recent probe
// result.
func (m *Monitor) Statuses() map[string]ProbeResult {
	m.statusesMu.RLock()
	defer m.statusesMu.RUnlock()
	out := make(map[string]ProbeResult, len(m.statuses))
	for k, v := range m.statuses {
		out[k] = v
	}
	return out
}
