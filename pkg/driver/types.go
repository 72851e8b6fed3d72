// Package driver implements the session driver: the per-tick loop
// that acquires the state lock, advances rotation, assembles context,
// runs hooks, spawns the LLM child, and records the outcome.
package driver

import (
	"time"

	"github.com/tickwright/tickctl/pkg/llmchild"
	"github.com/tickwright/tickctl/pkg/rotation"
	"github.com/tickwright/tickctl/pkg/sessioncontext"
)

// TickOptions are the per-invocation overrides a caller (normally the
// CLI entrypoint) may apply to one tick.
type TickOptions struct {
	// ModeOverride forces the next tick to run as this mode, bypassing
	// rotation selection (the counter still advances).
	ModeOverride *rotation.Mode

	// SafeMode skips non-essential init stages. Currently: pre/post
	// hooks are skipped.
	SafeMode bool

	// Emergency skips rotation selection and context assembly and forces
	// a fixed Build-mode tick with an empty context. The rotation index
	// and pattern position are left untouched; only the session counter
	// advances.
	Emergency bool

	// DryRun assembles and returns the prompt without spawning the LLM
	// child or running post-session hooks.
	DryRun bool
}

// TickResult summarizes one completed (or skipped) tick.
type TickResult struct {
	Skipped       bool
	Mode          rotation.Mode
	SessionNumber int
	Prompt        string
	Outcome       llmchild.Outcome
	Notices       []string
}

// Transform proposes demoting or otherwise changing the selected mode
// given the assembled context. The first Transform in the driver's list
// that returns ok=true wins; the context is rebuilt for the new mode.
type Transform func(mode rotation.Mode, ctx sessioncontext.Context) (rotation.Mode, bool)

// clock is overridable in tests; defaults to time.Now.
type clock func() time.Time
