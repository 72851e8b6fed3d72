// Package engagement computes the per-tick ROI-ranked platform plan and
// the service-evaluation verdict the session driver consults when
// choosing which platforms to engage and which one to probe more deeply.
package engagement

// VerdictLabel is the human-facing name for a 0-9 evaluator score.
type VerdictLabel string

const (
	VerdictUnreachable   VerdictLabel = "unreachable"
	VerdictMinimal       VerdictLabel = "minimal"
	VerdictBasic         VerdictLabel = "basic"
	VerdictActive        VerdictLabel = "active"
	VerdictActiveWithAPI VerdictLabel = "active_with_api"
)

// Threshold maps a minimum score to a label; callers supply these sorted
// descending by MinScore (see pkg/config.VerdictThreshold).
type Threshold struct {
	Label    VerdictLabel
	MinScore int
}

// PlatformStats are the historical counters ROI scoring reads, gathered
// by the caller from whatever analytics source is available.
type PlatformStats struct {
	Writes                int
	Attempts              int
	Cost                  float64
	RecentEngagementCount int
}

// Ranked is one platform's computed score, in descending rank order.
type Ranked struct {
	Platform string  `json:"platform"`
	Score    float64 `json:"score"`
}

// Verdict is the stored result of an evaluator run against one platform.
type Verdict struct {
	Platform string       `json:"platform"`
	Score    int          `json:"score"`
	Label    VerdictLabel `json:"label"`
}

// Plan is the ROI ranker's output: the ranked, ROI-scored platform list, a degraded
// fallback subset, and the designated evaluation target.
type Plan struct {
	Ranked     []Ranked `json:"roi_scores"`
	Degraded   []string `json:"degraded"`
	EvalTarget string   `json:"eval_target"`
	Fallback   bool     `json:"analytics_fallback"`
}
