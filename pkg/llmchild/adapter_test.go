package llmchild

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptSpec(t *testing.T, body string) Spec {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "child.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return Spec{
		Binary:        path,
		Prompt:        "do the thing",
		SessionType:   "Build",
		SessionNumber: 7,
		Timeout:       5 * time.Second,
		KillGrace:     200 * time.Millisecond,
	}
}

func TestRunDecodesRecognizedEventsAndIgnoresUnknown(t *testing.T) {
	spec := scriptSpec(t, `cat <<'EOF'
{"type":"assistant","content":"thinking"}
{"type":"bogus","content":"skip me"}
{"type":"result","cost":0.05}
EOF`)

	res, err := Run(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	require.Len(t, res.Events, 2)
	assert.Equal(t, EventAssistant, res.Events[0].Type)
	assert.Equal(t, EventResult, res.Events[1].Type)
}

func TestRunReportsErrorOutcomeOnNonZeroExit(t *testing.T) {
	spec := scriptSpec(t, "exit 3")

	res, err := Run(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeError, res.Outcome)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunKillsChildAfterTimeout(t *testing.T) {
	spec := scriptSpec(t, "sleep 5")
	spec.Timeout = 50 * time.Millisecond
	spec.KillGrace = 50 * time.Millisecond

	start := time.Now()
	res, err := Run(context.Background(), spec)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, OutcomeTimeout, res.Outcome)
	assert.Less(t, elapsed, 2*time.Second, "child should be killed well before its 5s sleep completes")
}

func TestRunSpawnFailureOnMissingBinary(t *testing.T) {
	spec := scriptSpec(t, "exit 0")
	spec.Binary = filepath.Join(t.TempDir(), "does-not-exist")

	_, err := Run(context.Background(), spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSpawnFailed)
}
