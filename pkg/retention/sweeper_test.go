package retention

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickwright/tickctl/pkg/state"
)

func newTestStore(t *testing.T) *state.Store {
	t.Helper()
	store, err := state.New(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestRunSweepsHistoryByAge(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	old, _ := json.Marshal(map[string]any{"recorded_at": now.Add(-100 * 24 * time.Hour)})
	fresh, _ := json.Marshal(map[string]any{"recorded_at": now.Add(-1 * time.Hour)})
	require.NoError(t, store.AppendLine("history.log", string(old), 0))
	require.NoError(t, store.AppendLine("history.log", string(fresh), 0))

	sweeper := New(store, Config{HistoryMaxAge: 30 * 24 * time.Hour})
	report, err := sweeper.Run(now)
	require.NoError(t, err)
	assert.Equal(t, 1, report.HistoryRemoved)

	lines, err := store.ReadLines("history.log")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.JSONEq(t, string(fresh), lines[0])
}

func TestRunSweepsHealthLogByCount(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendLine("health.log", `{"ts":"2026-01-01T00:00:00Z"}`, 0))
	}

	sweeper := New(store, Config{HealthLogMaxLines: 2})
	report, err := sweeper.Run(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, report.HealthRemoved)

	lines, err := store.ReadLines("health.log")
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestRunSweepsIntelArchiveByCount(t *testing.T) {
	store := newTestStore(t)
	entries := []json.RawMessage{
		json.RawMessage(`{"id":1}`),
		json.RawMessage(`{"id":2}`),
		json.RawMessage(`{"id":3}`),
	}
	require.NoError(t, store.Write("intel-archive.json", entries))

	sweeper := New(store, Config{IntelArchiveMaxEntries: 1})
	report, err := sweeper.Run(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, report.IntelRemoved)

	var remaining []json.RawMessage
	found, err := store.Read("intel-archive.json", &remaining)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, remaining, 1)
	assert.JSONEq(t, `{"id":3}`, string(remaining[0]))
}

func TestRunIsNoopWhenKnobsAreZero(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AppendLine("history.log", `{"recorded_at":"2020-01-01T00:00:00Z"}`, 0))

	sweeper := New(store, Config{})
	report, err := sweeper.Run(time.Now())
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)

	lines, err := store.ReadLines("history.log")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}
