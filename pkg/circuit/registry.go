package circuit

import (
	"fmt"
	"sort"
	"time"

	"github.com/tickwright/tickctl/pkg/state"
)

// Registry is the circuit breaker store for all known platforms.
type Registry struct {
	store  *state.Store
	params Params
}

// New returns a Registry backed by store, evaluated against params.
func New(store *state.Store, params Params) *Registry {
	return &Registry{store: store, params: params}
}

func (r *Registry) load() (registryDocument, error) {
	var doc registryDocument
	if _, err := r.store.Read(registryDoc, &doc); err != nil {
		return registryDocument{}, err
	}
	if doc.Records == nil {
		doc.Records = make(map[string]Record)
	}
	return doc, nil
}

func (r *Registry) save(doc registryDocument) error {
	return r.store.Write(registryDoc, doc)
}

// Get returns the current record for platform, or the implicit Closed
// zero-record if none has been recorded yet.
func (r *Registry) Get(platform string) (Record, error) {
	doc, err := r.load()
	if err != nil {
		return Record{}, err
	}
	if rec, ok := doc.Records[platform]; ok {
		return rec, nil
	}
	return newRecord(platform), nil
}

// RecordOutcome applies a single success/failure observation to platform's
// circuit and persists the result, following the registry's transition
// table. A Defunct record only has its counters updated — it stays
// Defunct until an operator calls Reset.
func (r *Registry) RecordOutcome(platform string, success bool, now time.Time) (Record, error) {
	doc, err := r.load()
	if err != nil {
		return Record{}, err
	}

	rec, ok := doc.Records[platform]
	if !ok {
		rec = newRecord(platform)
	}

	if success {
		rec.TotalSuccesses++
		rec.LastSuccess = &now
		rec.ConsecutiveFailures = 0
		if rec.Status == StatusHalfOpen {
			rec.Status = StatusClosed
			rec.OpenedAt = nil
		}
	} else {
		rec.TotalFailures++
		rec.ConsecutiveFailures++
		rec.LastFailure = &now

		switch rec.Status {
		case StatusClosed:
			if rec.ConsecutiveFailures >= r.params.FailureThreshold {
				rec.Status = StatusOpen
				rec.OpenedAt = &now
			}
		case StatusHalfOpen:
			rec.Status = StatusOpen
			rec.OpenedAt = &now
		case StatusOpen:
			// already open; counters accumulate, cooldown clock is
			// re-evaluated lazily by FilterAllowed.
		case StatusDefunct:
			// terminal; counters still accumulate for visibility.
		}

		if rec.Status == StatusOpen && rec.OpenedAt != nil &&
			rec.ConsecutiveFailures >= r.params.DefunctConsecutiveFailures &&
			now.Sub(*rec.OpenedAt) >= r.params.DefunctOpenFor {
			rec.Status = StatusDefunct
			rec.DefunctReason = fmt.Sprintf(
				"%d consecutive failures, open for %s without recovering",
				rec.ConsecutiveFailures, now.Sub(*rec.OpenedAt).Round(time.Second))
		}
	}

	doc.Records[platform] = rec
	if err := r.save(doc); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// MarkDefunct forces platform's circuit into the terminal Defunct state
// regardless of its current status — an operator-triggered "any ->
// Defunct" transition.
func (r *Registry) MarkDefunct(platform, reason string) (Record, error) {
	doc, err := r.load()
	if err != nil {
		return Record{}, err
	}
	rec, ok := doc.Records[platform]
	if !ok {
		rec = newRecord(platform)
	}
	rec.Status = StatusDefunct
	rec.DefunctReason = reason
	doc.Records[platform] = rec
	if err := r.save(doc); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Reset clears platform's circuit back to Closed with zeroed counters —
// the operator action that ends a Defunct (or any other) state.
func (r *Registry) Reset(platform string) (Record, error) {
	doc, err := r.load()
	if err != nil {
		return Record{}, err
	}
	rec := newRecord(platform)
	doc.Records[platform] = rec
	if err := r.save(doc); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// FilterAllowed splits platforms into allowed (Closed, plus each
// Half-Open platform's single permitted probe), blocked (Open, cooldown
// not yet elapsed), and defunct. An Open platform whose cooldown has
// elapsed is lazily promoted to Half-Open and persisted before the split
// is computed — the status is a derived view of counters plus the
// wall-clock cooldown.
//
// Each Half-Open platform contributes exactly one probe per call: the
// orchestrator invokes this once per tick and attempts each allowed
// platform at most once, so "exactly one probe per Half-Open platform per
// tick" falls out of the caller's own single-attempt-per-platform loop
// rather than needing a counter here.
func (r *Registry) FilterAllowed(platforms []string, now time.Time) (FilterResult, error) {
	doc, err := r.load()
	if err != nil {
		return FilterResult{}, err
	}

	var result FilterResult
	changed := false

	sorted := append([]string(nil), platforms...)
	sort.Strings(sorted)

	for _, platform := range sorted {
		rec, ok := doc.Records[platform]
		if !ok {
			result.Allowed = append(result.Allowed, platform)
			continue
		}

		if rec.Status == StatusOpen && rec.OpenedAt != nil && now.Sub(*rec.OpenedAt) >= r.params.Cooldown {
			rec.Status = StatusHalfOpen
			doc.Records[platform] = rec
			changed = true
		}

		switch rec.Status {
		case StatusClosed, StatusHalfOpen:
			result.Allowed = append(result.Allowed, platform)
		case StatusOpen:
			result.Blocked = append(result.Blocked, platform)
		case StatusDefunct:
			result.Defunct = append(result.Defunct, platform)
		}
	}

	if changed {
		if err := r.save(doc); err != nil {
			return FilterResult{}, err
		}
	}
	return result, nil
}
