// Package hooks runs the operator-authored shell scripts that bracket
// each session: pre-session hooks before the LLM child spawns, post-
// session hooks after it exits.
package hooks

import (
	"time"

	"github.com/tickwright/tickctl/pkg/rotation"
)

// Class is the outcome classification for one hook's exit.
type Class string

const (
	ClassSuccess        Class = "success"
	ClassWarn           Class = "warn"
	ClassFatal          Class = "fatal"
	ClassBudgetExceeded Class = "budget_exceeded"
)

// Meta is a hook's declared metadata: whether it is safe to run
// concurrently with others, which state document it writes (for
// serialization), and whether a non-zero exit should be classified
// fatal instead of the default warn.
type Meta struct {
	ParallelSafe bool   `yaml:"parallel_safe"`
	WriteTarget  string `yaml:"write_target,omitempty"`
	Fatal        bool   `yaml:"fatal,omitempty"`
}

// Manifest maps a hook's filename to its declared metadata. Hooks absent
// from the manifest get the zero Meta: not parallel-safe, no write
// target, non-fatal on error.
type Manifest map[string]Meta

// Hook is one discovered script file.
type Hook struct {
	Name  string        // full filename, e.g. "10-lint_B.sh"
	Path  string        // absolute path
	Order string        // the NN ordering prefix
	Mode  rotation.Mode // empty means the hook runs in every mode
	Meta  Meta
}

// Result is one hook's execution outcome.
type Result struct {
	Name       string `json:"name"`
	Exit       int    `json:"exit"`
	DurationMS int64  `json:"duration_ms"`
	Class      Class  `json:"class"`
	Output     string `json:"output,omitempty"`
}

// Phase distinguishes pre- from post-session hooks, which differ in
// their default timeout and in whether write-target serialization
// applies.
type Phase string

const (
	PhasePre  Phase = "pre"
	PhasePost Phase = "post"
)

// RunParams bounds one Run call.
type RunParams struct {
	Phase          Phase
	PerHookTimeout time.Duration
	GlobalBudget   time.Duration
	MaxParallel    int
	Env            map[string]string
}

// Report is the full structured result of one Run call.
type Report struct {
	Results []Result `json:"results"`
}
