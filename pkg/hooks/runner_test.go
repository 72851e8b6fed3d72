package hooks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string) Hook {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return Hook{Name: name, Path: path}
}

func baseEnv() map[string]string {
	return map[string]string{"PATH": os.Getenv("PATH")}
}

func TestRunClassifiesSuccessWarnAndFatal(t *testing.T) {
	dir := t.TempDir()
	ok := writeScript(t, dir, "ok.sh", "exit 0")
	warn := writeScript(t, dir, "warn.sh", "exit 1")
	fatal := writeScript(t, dir, "fatal.sh", "exit 1")
	fatal.Meta = Meta{Fatal: true}

	r := New()
	report := r.Run(context.Background(), []Hook{ok, warn, fatal}, RunParams{
		Phase:          PhasePost,
		PerHookTimeout: time.Second,
		GlobalBudget:   time.Minute,
		MaxParallel:    4,
		Env:            baseEnv(),
	})

	byName := map[string]Result{}
	for _, res := range report.Results {
		byName[res.Name] = res
	}
	require.Len(t, byName, 3)
	assert.Equal(t, ClassSuccess, byName["ok.sh"].Class)
	assert.Equal(t, ClassWarn, byName["warn.sh"].Class)
	assert.Equal(t, ClassFatal, byName["fatal.sh"].Class)
}

func TestRunEnforcesPerHookTimeout(t *testing.T) {
	dir := t.TempDir()
	slow := writeScript(t, dir, "slow.sh", "sleep 2")

	r := New()
	start := time.Now()
	report := r.Run(context.Background(), []Hook{slow}, RunParams{
		Phase:          PhasePre,
		PerHookTimeout: 50 * time.Millisecond,
		GlobalBudget:   time.Minute,
		MaxParallel:    1,
		Env:            baseEnv(),
	})
	elapsed := time.Since(start)

	require.Len(t, report.Results, 1)
	assert.NotEqual(t, 0, report.Results[0].Exit)
	assert.Less(t, elapsed, time.Second, "hook should have been killed well before its 2s sleep completed")
}

func TestRunSkipsHooksPastGlobalBudget(t *testing.T) {
	dir := t.TempDir()
	slow := writeScript(t, dir, "10-slow.sh", "sleep 0.1")
	fast := writeScript(t, dir, "20-fast.sh", "exit 0")

	r := New()
	report := r.Run(context.Background(), []Hook{slow, fast}, RunParams{
		Phase:          PhasePre,
		PerHookTimeout: time.Second,
		GlobalBudget:   50 * time.Millisecond,
		MaxParallel:    1,
		Env:            baseEnv(),
	})

	require.Len(t, report.Results, 2)
	assert.Equal(t, ClassBudgetExceeded, report.Results[1].Class)
}

func TestRunParallelSafeHooksOverlap(t *testing.T) {
	dir := t.TempDir()
	a := writeScript(t, dir, "a.sh", "sleep 0.15")
	a.Meta = Meta{ParallelSafe: true}
	b := writeScript(t, dir, "b.sh", "sleep 0.15")
	b.Meta = Meta{ParallelSafe: true}

	r := New()
	start := time.Now()
	report := r.Run(context.Background(), []Hook{a, b}, RunParams{
		Phase:          PhasePre,
		PerHookTimeout: time.Second,
		GlobalBudget:   time.Minute,
		MaxParallel:    2,
		Env:            baseEnv(),
	})
	elapsed := time.Since(start)

	require.Len(t, report.Results, 2)
	assert.Less(t, elapsed, 280*time.Millisecond, "two 150ms hooks should overlap, not sum to 300ms")
}

func TestRunSerializesSharedWriteTarget(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "events.log")

	body := `echo "start" >> "$EVENT_LOG"
sleep 0.1
echo "end" >> "$EVENT_LOG"`
	a := writeScript(t, dir, "a.sh", body)
	a.Meta = Meta{WriteTarget: "shared-doc"}
	b := writeScript(t, dir, "b.sh", body)
	b.Meta = Meta{WriteTarget: "shared-doc"}

	env := baseEnv()
	env["EVENT_LOG"] = logPath

	r := New()
	report := r.Run(context.Background(), []Hook{a, b}, RunParams{
		Phase:          PhasePost,
		PerHookTimeout: time.Second,
		GlobalBudget:   time.Minute,
		MaxParallel:    4,
		Env:            env,
	})
	require.Len(t, report.Results, 2)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Fields(string(data))
	require.Len(t, lines, 4)
	// serialized: one hook's start/end must fully precede the other's
	assert.Equal(t, []string{"start", "end", "start", "end"}, lines)
}
