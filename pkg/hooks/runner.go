package hooks

import (
	"bytes"
	"context"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const maxCapturedOutput = 8000

// Runner executes a list of hooks under one phase's budget and
// parallelism rules.
type Runner struct{}

// New returns a hook Runner. It is stateless — every Run call is
// self-contained.
func New() *Runner {
	return &Runner{}
}

// Run executes hooks according to params, respecting the per-hook
// timeout, the global budget (hooks that would start after the budget
// is exhausted are skipped as budget_exceeded), and phase-appropriate
// concurrency: pre-session hooks run concurrently only when declared
// parallel-safe; post-session hooks run concurrently across distinct
// write targets but are serialized within the same write target.
func (r *Runner) Run(ctx context.Context, list []Hook, params RunParams) Report {
	deadline := time.Now().Add(params.GlobalBudget)

	var mu sync.Mutex
	var report Report
	record := func(res Result) {
		mu.Lock()
		report.Results = append(report.Results, res)
		mu.Unlock()
	}

	maxParallel := params.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}
	sem := semaphore.NewWeighted(int64(maxParallel))

	writeTargetLocks := make(map[string]*sync.Mutex)
	lockFor := func(target string) *sync.Mutex {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := writeTargetLocks[target]; ok {
			return l
		}
		l := &sync.Mutex{}
		writeTargetLocks[target] = l
		return l
	}

	var concurrent, sequential []Hook
	if params.Phase == PhasePost {
		concurrent = list // write-target locking makes every post hook schedulable concurrently
	} else {
		for _, h := range list {
			if h.Meta.ParallelSafe {
				concurrent = append(concurrent, h)
			} else {
				sequential = append(sequential, h)
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, h := range concurrent {
		h := h
		g.Go(func() error {
			if time.Now().After(deadline) {
				record(Result{Name: h.Name, Class: ClassBudgetExceeded})
				return nil
			}
			if err := sem.Acquire(gctx, 1); err != nil {
				record(Result{Name: h.Name, Class: ClassBudgetExceeded})
				return nil
			}
			defer sem.Release(1)

			if params.Phase == PhasePost && h.Meta.WriteTarget != "" {
				l := lockFor(h.Meta.WriteTarget)
				l.Lock()
				defer l.Unlock()
			}

			record(r.runOne(gctx, h, params))
			return nil
		})
	}
	_ = g.Wait()

	for _, h := range sequential {
		if time.Now().After(deadline) {
			record(Result{Name: h.Name, Class: ClassBudgetExceeded})
			continue
		}
		record(r.runOne(ctx, h, params))
	}

	return report
}

func (r *Runner) runOne(ctx context.Context, h Hook, params RunParams) Result {
	start := time.Now()

	hookCtx, cancel := context.WithTimeout(ctx, params.PerHookTimeout)
	defer cancel()

	cmd := exec.CommandContext(hookCtx, h.Path)
	cmd.Env = envSlice(params.Env)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	class := ClassSuccess
	if exitCode != 0 {
		if h.Meta.Fatal {
			class = ClassFatal
		} else {
			class = ClassWarn
		}
	}

	output := out.String()
	if len(output) > maxCapturedOutput {
		output = output[:maxCapturedOutput]
	}

	return Result{
		Name:       h.Name,
		Exit:       exitCode,
		DurationMS: duration.Milliseconds(),
		Class:      class,
		Output:     output,
	}
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
