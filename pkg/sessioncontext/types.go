// Package sessioncontext implements the deterministic context assembly
// function the session driver calls once per tick: it consults the
// rotation, work queue, circuit/engagement, and directive state and
// renders a single structured value that becomes the LLM child's prompt
// material.
package sessioncontext

import (
	"github.com/tickwright/tickctl/pkg/directives"
	"github.com/tickwright/tickctl/pkg/engagement"
	"github.com/tickwright/tickctl/pkg/rotation"
	"github.com/tickwright/tickctl/pkg/workqueue"
)

// RotationInfo is the rotation section of the built context.
type RotationInfo struct {
	Mode         rotation.Mode `json:"mode"`
	Counter      int           `json:"counter"`
	PerTypeCount int           `json:"per_type_counter"`
}

// EvalTargetInfo names the platform the evaluator should probe this tick.
type EvalTargetInfo struct {
	PlatformID  string                  `json:"platform_id"`
	URL         string                  `json:"url,omitempty"`
	LastVerdict engagement.VerdictLabel `json:"last_verdict,omitempty"`
}

// CapabilitySummary is the live/missing-credential platform split.
type CapabilitySummary struct {
	LivePlatforms      []string `json:"live_platforms"`
	MissingCredentials []string `json:"missing_credentials"`
}

// Context is the context builder's complete output.
type Context struct {
	Rotation            RotationInfo            `json:"rotation"`
	AssignedTask        *workqueue.WorkItem     `json:"assigned_task"`
	BrainstormingSeeded []workqueue.WorkItem    `json:"brainstorming_seeded,omitempty"`
	DedupReport         workqueue.DedupReport   `json:"dedup_report"`
	TodoIngested        workqueue.IngestResult  `json:"todo_ingested"`
	PlatformPlan        engagement.PlatformPlan `json:"platform_plan"`
	EvalTarget          EvalTargetInfo          `json:"eval_target"`
	DirectivesActive    []directives.Directive  `json:"directives_active"`
	CapabilitySummary   CapabilitySummary       `json:"capability_summary"`
	ModeSpecificBlock   string                  `json:"mode_specific_block"`
	Warnings            []string                `json:"warnings,omitempty"`
}

// Renderer produces the mode_specific_block text. Implementations may
// fail — a rendering failure is reported as a warning, never an error
// that aborts context assembly.
type Renderer func(mode rotation.Mode, ctx Context) (string, error)

// Knobs carries every input Build needs beyond mode/counter: the pieces
// of state that were computed elsewhere (dedup/ingest results, which are
// mutations the builder itself must never perform) and the data a caller
// reads from outside the work queue/circuit registry (ROI stats,
// platform URLs, per-type session counters).
type Knobs struct {
	PerTypeCounters map[rotation.Mode]int

	SelectBudgetHint workqueue.BudgetHint

	Platforms          []string
	PlatformURLs       map[string]string
	PlatformStats      map[string]engagement.PlatformStats
	LastEvaluated      string
	LastVerdict        engagement.VerdictLabel
	LivePlatforms      []string
	MissingCredentials []string

	// DedupReport and TodoIngested reflect housekeeping the caller ran
	// before calling Build — Build only echoes them into the context,
	// it does not invoke Dedup or IngestTodos itself.
	DedupReport  workqueue.DedupReport
	TodoIngested workqueue.IngestResult

	AutoPromoteLowWater int
	AutoPromoteBuffer   int

	Render Renderer
}
