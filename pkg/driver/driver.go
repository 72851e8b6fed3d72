package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/tickwright/tickctl/pkg/engagement"
	"github.com/tickwright/tickctl/pkg/hooks"
	"github.com/tickwright/tickctl/pkg/intel"
	"github.com/tickwright/tickctl/pkg/llmchild"
	"github.com/tickwright/tickctl/pkg/outcome"
	"github.com/tickwright/tickctl/pkg/platforms"
	"github.com/tickwright/tickctl/pkg/redact"
	"github.com/tickwright/tickctl/pkg/rotation"
	"github.com/tickwright/tickctl/pkg/sessioncontext"
	"github.com/tickwright/tickctl/pkg/state"
	"github.com/tickwright/tickctl/pkg/workqueue"
)

const (
	rotationDoc = "rotation.json"
	contextDoc  = "context.json"
	contextEnv  = "context.env"
	skipLog     = "skip.log"
)

// StatsSource supplies the per-tick ROI input the driver itself has no
// opinion on (write counts, costs, recent engagement) — owned by
// whatever analytics a deployment wires in, not by any orchestrator
// component.
type StatsSource func() (map[string]engagement.PlatformStats, error)

// Deps bundles every component the driver composes. All fields are
// required except Redactor, Queue, Intel, Transforms, RenderMode,
// Templates.Injected, and Stats (which defaults to reporting no
// analytics, triggering the ROI fallback).
type Deps struct {
	Store     *state.Store
	Platforms *platforms.Store
	Context   *sessioncontext.Builder
	Hooks     *hooks.Runner
	Recorder  *outcome.Recorder
	Redactor  *redact.Redactor

	// Queue and Intel are optional: when both are set, a Build/Reflect
	// tick drains pending Engage-session intel into the idea pool
	// before context assembly runs auto-promote, and an Engage tick's
	// self-reported note (if any) is recorded as a new intel entry
	// after the child exits.
	Queue *workqueue.Queue
	Intel *intel.Store

	RotationMachine *rotation.Machine
	RotationPattern string

	Templates  TemplateSet
	Transforms []Transform
	RenderMode sessioncontext.Renderer
	Stats      StatsSource

	PreHooks  []hooks.Hook
	PostHooks []hooks.Hook

	LLMBinary       string
	BudgetCap       string
	MCPConfigPath   string
	SessionTimeout  time.Duration
	KillGrace       time.Duration
	LockStaleFor    time.Duration
	PreHookTimeout  time.Duration
	PostHookTimeout time.Duration
	PreBudget       time.Duration
	PostBudget      time.Duration
	MaxParallelHook int

	// Now is overridable for deterministic tests; defaults to time.Now.
	Now clock
}

// Driver runs one tick at a time over a fixed set of component deps.
type Driver struct {
	deps Deps
}

// New returns a Driver composed from deps.
func New(deps Deps) *Driver {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Driver{deps: deps}
}

// Tick runs exactly one session-driver pass. It never returns an error
// for anything recoverable mid-tick (those become
// warnings folded into TickResult.Notices); the returned error is
// reserved for failing to even acquire the lock in an unexpected way,
// which callers should treat as a fatal orchestrator error.
func (d *Driver) Tick(ctx context.Context, opts TickOptions) (result TickResult, err error) {
	now := d.deps.Now()

	lock, lockErr := d.deps.Store.TryLock(d.deps.LockStaleFor)
	if lockErr != nil {
		if errors.Is(lockErr, state.ErrLockBusy) {
			_ = d.deps.Store.AppendLine(skipLog, fmt.Sprintf(`{"ts":%q,"reason":"lock_busy"}`, now.Format(time.RFC3339)), 1000)
			return TickResult{Skipped: true}, nil
		}
		return TickResult{}, lockErr
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("session driver panic recovered", "panic", r)
			_ = d.deps.Store.AppendLine(skipLog, fmt.Sprintf(`{"ts":%q,"reason":"panic_recovered"}`, now.Format(time.RFC3339)), 1000)
		}
		_ = lock.Release()
	}()

	reapStaleChild(d.deps.Store)

	var notices []string
	note := func(stage string, err error) {
		if err != nil {
			notices = append(notices, fmt.Sprintf("%s: %v", stage, err))
			slog.Warn("session driver degraded", "stage", stage, "error", err)
		}
	}

	mode, counter, rotState := d.advanceRotation(opts, now)
	if err := d.deps.Store.Write(rotationDoc, rotState); err != nil {
		note("persist_rotation", err)
	}

	if opts.Emergency {
		result = TickResult{Mode: rotation.ModeBuild, SessionNumber: counter}
		prompt := RenderPrompt(d.deps.Templates, string(rotation.ModeBuild), "", "emergency tick: rotation and context assembly skipped")
		result.Prompt = prompt
		if opts.DryRun {
			return result, nil
		}
		return d.runChild(ctx, result, sessioncontext.Context{}, opts, now)
	}

	sctx, buildErr := d.buildContext(mode, counter, now)
	note("context_build", buildErr)

	if newMode, changed := ApplyTransforms(d.deps.Transforms, mode, sctx); changed {
		slog.Info("mode transform applied", "from", mode, "to", newMode)
		mode = newMode
		rebuilt, rebuildErr := d.buildContext(mode, counter, now)
		note("context_rebuild_after_transform", rebuildErr)
		if rebuildErr == nil {
			sctx = rebuilt
		}
	}

	if err := d.persistContext(sctx); err != nil {
		note("persist_context", err)
	}

	degradation := ""
	if len(notices) > 0 {
		degradation = "DEGRADATION NOTICE: " + notices[0]
		if d.deps.Redactor != nil {
			degradation = d.deps.Redactor.Redact(degradation)
		}
	}
	prompt := RenderPrompt(d.deps.Templates, string(mode), sctx.ModeSpecificBlock, degradation)

	result = TickResult{Mode: mode, SessionNumber: counter, Prompt: prompt, Notices: notices}

	if opts.DryRun {
		return result, nil
	}

	if !opts.SafeMode {
		d.runHooks(ctx, hooks.PhasePre, d.deps.PreHooks, mode, counter)
	}

	result, runErr := d.runChild(ctx, result, sctx, opts, now)
	if runErr != nil {
		return result, runErr
	}

	return result, nil
}

func (d *Driver) advanceRotation(opts TickOptions, now time.Time) (rotation.Mode, int, rotation.State) {
	var prev rotation.State
	found, err := d.deps.Store.Read(rotationDoc, &prev)
	if err != nil || !found {
		prev = rotation.Initial(d.deps.RotationPattern)
	}

	if opts.Emergency {
		decision := d.deps.RotationMachine.Override(prev, rotation.ModeBuild, now)
		return decision.Mode, decision.Counter, decision.NewState
	}

	if opts.ModeOverride != nil {
		decision := d.deps.RotationMachine.Override(prev, *opts.ModeOverride, now)
		return decision.Mode, decision.Counter, decision.NewState
	}

	decision, err := d.deps.RotationMachine.Advance(prev, prev.LastOutcome, now)
	if err != nil {
		slog.Error("rotation advance failed, falling back to Build", "error", err)
		return rotation.ModeBuild, prev.SessionCounter + 1, prev
	}
	return decision.Mode, decision.Counter, decision.NewState
}

func (d *Driver) buildContext(mode rotation.Mode, counter int, now time.Time) (sessioncontext.Context, error) {
	if mode == rotation.ModeBuild || mode == rotation.ModeReflect {
		if err := d.drainIntel(); err != nil {
			slog.Warn("intel drain failed, auto-promote will see fewer ideas this tick", "error", err)
		}
	}

	accounts, err := d.deps.Platforms.List()
	if err != nil {
		return sessioncontext.Context{}, err
	}

	var plat []string
	urls := map[string]string{}
	for _, a := range accounts {
		plat = append(plat, a.ID)
		urls[a.ID] = a.URL
	}
	sort.Strings(plat)

	live, missing, err := d.deps.Platforms.LiveAndMissingCredentials()
	if err != nil {
		return sessioncontext.Context{}, err
	}

	var stats map[string]engagement.PlatformStats
	if d.deps.Stats != nil {
		stats, err = d.deps.Stats()
		if err != nil {
			return sessioncontext.Context{}, err
		}
	}

	knobs := sessioncontext.Knobs{
		Platforms:           plat,
		PlatformURLs:        urls,
		PlatformStats:       stats,
		LivePlatforms:       live,
		MissingCredentials:  missing,
		AutoPromoteLowWater: 3,
		AutoPromoteBuffer:   3,
		Render:              d.deps.RenderMode,
	}

	return d.deps.Context.Build(mode, counter, knobs, now)
}

// drainIntel turns every pending Engage-session intel entry into an idea
// pool candidate and archives the entries, so a given intel note feeds
// auto-promote exactly once.
func (d *Driver) drainIntel() error {
	if d.deps.Queue == nil || d.deps.Intel == nil {
		return nil
	}
	pending, err := d.deps.Intel.Recent()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	for _, entry := range pending {
		if err := d.deps.Queue.AddIdea(workqueue.Idea{
			Title:          entry.Summary,
			CreatedSession: entry.Session,
			CreatedAt:      d.deps.Now(),
		}); err != nil {
			return err
		}
	}
	return d.deps.Intel.Archive(pending)
}

func (d *Driver) persistContext(sctx sessioncontext.Context) error {
	if err := d.deps.Store.Write(contextDoc, sctx); err != nil {
		return err
	}
	env := contextEnvLines(sctx)
	return d.deps.Store.Write(contextEnv, env)
}

// contextEnvLines renders the shell-sourcable copy of the context: one
// KEY=VALUE pair per line, for hooks that only need a handful of scalar
// facts rather than the full JSON document.
func contextEnvLines(sctx sessioncontext.Context) []string {
	lines := []string{
		fmt.Sprintf("TICKCTL_MODE=%s", sctx.Rotation.Mode),
		fmt.Sprintf("TICKCTL_COUNTER=%d", sctx.Rotation.Counter),
		fmt.Sprintf("TICKCTL_EVAL_TARGET=%s", sctx.EvalTarget.PlatformID),
	}
	if sctx.AssignedTask != nil {
		lines = append(lines, fmt.Sprintf("TICKCTL_ASSIGNED_TASK_ID=%s", sctx.AssignedTask.ID))
	}
	return lines
}

func (d *Driver) runHooks(ctx context.Context, phase hooks.Phase, list []hooks.Hook, mode rotation.Mode, counter int) hooks.Report {
	applicable := hooks.FilterMode(list, mode)
	timeout := d.deps.PreHookTimeout
	budget := d.deps.PreBudget
	if phase == hooks.PhasePost {
		timeout = d.deps.PostHookTimeout
		budget = d.deps.PostBudget
	}

	logPath := filepath.Join(d.deps.Store.Dir(), outcome.LogPath(counter))

	report := d.deps.Hooks.Run(ctx, applicable, hooks.RunParams{
		Phase:          phase,
		PerHookTimeout: timeout,
		GlobalBudget:   budget,
		MaxParallel:    d.deps.MaxParallelHook,
		Env: map[string]string{
			"TICKCTL_MODE":           string(mode),
			"TICKCTL_COUNTER":        fmt.Sprintf("%d", counter),
			"TICKCTL_SESSION_NUMBER": fmt.Sprintf("%d", counter),
			"TICKCTL_LOG_PATH":       logPath,
		},
	})

	if d.deps.Redactor != nil {
		for i, res := range report.Results {
			report.Results[i].Output = d.deps.Redactor.Redact(res.Output)
		}
	}

	data, _ := json.Marshal(report)
	_ = d.deps.Store.Write("hook-results.json", json.RawMessage(data))
	return report
}

func (d *Driver) runChild(ctx context.Context, result TickResult, sctx sessioncontext.Context, opts TickOptions, now time.Time) (TickResult, error) {
	spec := llmchild.Spec{
		Binary:        d.deps.LLMBinary,
		Prompt:        result.Prompt,
		SessionType:   string(result.Mode),
		SessionNumber: result.SessionNumber,
		Focus:         sctx.EvalTarget.PlatformID,
		BudgetCap:     d.deps.BudgetCap,
		MCPConfigPath: d.deps.MCPConfigPath,
		Timeout:       d.deps.SessionTimeout,
		KillGrace:     d.deps.KillGrace,
		OnStart: func(pid int) {
			recordChildPID(d.deps.Store, pid, now)
		},
	}

	childResult, err := llmchild.Run(ctx, spec)
	clearChildPID(d.deps.Store)

	if err != nil {
		result.Outcome = llmchild.OutcomeError
		if _, recErr := d.deps.Recorder.Record(llmchild.Result{Outcome: llmchild.OutcomeError}, string(result.Mode), result.SessionNumber, now); recErr != nil {
			slog.Error("failed to record spawn-failure outcome", "error", recErr)
		}
	} else {
		result.Outcome = childResult.Outcome
		if _, recErr := d.deps.Recorder.Record(childResult, string(result.Mode), result.SessionNumber, now); recErr != nil {
			slog.Error("failed to record session outcome", "error", recErr)
		}
		d.recordIntel(result.Mode, result.SessionNumber, childResult)
	}

	if !opts.SafeMode {
		d.runHooks(ctx, hooks.PhasePost, d.deps.PostHooks, result.Mode, result.SessionNumber)
	}

	return result, nil
}

// recordIntel archives an Engage session's self-reported note as a new
// intel entry, candidate material for a later Build/Reflect tick's
// drainIntel. Other modes produce no intel.
func (d *Driver) recordIntel(mode rotation.Mode, sessionNumber int, childResult llmchild.Result) {
	if d.deps.Intel == nil || mode != rotation.ModeEngage {
		return
	}
	note := outcome.ExtractNote(childResult.Events)
	if note == "" {
		return
	}
	if err := d.deps.Intel.Record(intel.Entry{Session: sessionNumber, Summary: note}, 0); err != nil {
		slog.Error("failed to record engage intel", "error", err)
	}
}
