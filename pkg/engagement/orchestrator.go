package engagement

import (
	"time"

	"github.com/tickwright/tickctl/pkg/circuit"
)

// PlatformPlan is the full per-tick platform picture the context builder
// embeds verbatim into its platform_plan section.
type PlatformPlan struct {
	Allowed  []string `json:"allowed"`
	Blocked  []string `json:"blocked"`
	Defunct  []string `json:"defunct"`
	ROI      []Ranked `json:"roi_scores"`
	Degraded []string `json:"degraded"`
}

// Orchestrator combines the circuit breaker registry's allow/block split
// with ROI ranking to produce the full platform plan and eval target for
// one tick.
type Orchestrator struct {
	circuits *circuit.Registry
	params   PlanParams
}

// New returns an Orchestrator reading circuit state from circuits.
func New(circuits *circuit.Registry, params PlanParams) *Orchestrator {
	return &Orchestrator{circuits: circuits, params: params}
}

// Build computes the PlatformPlan plus evaluation target for the given
// candidate platform list, ROI stats, and the previous evaluation's
// outcome.
func (o *Orchestrator) Build(
	platforms []string,
	stats map[string]PlatformStats,
	lastEvaluated string,
	lastVerdict VerdictLabel,
	now time.Time,
) (PlatformPlan, string, error) {
	filter, err := o.circuits.FilterAllowed(platforms, now)
	if err != nil {
		return PlatformPlan{}, "", err
	}

	plan := BuildPlan(filter.Allowed, stats, o.params, lastEvaluated, lastVerdict)

	return PlatformPlan{
		Allowed:  filter.Allowed,
		Blocked:  filter.Blocked,
		Defunct:  filter.Defunct,
		ROI:      plan.Ranked,
		Degraded: plan.Degraded,
	}, plan.EvalTarget, nil
}
