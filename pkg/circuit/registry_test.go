package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickwright/tickctl/pkg/state"
)

func newRegistry(t *testing.T, params Params) *Registry {
	t.Helper()
	s, err := state.New(t.TempDir())
	require.NoError(t, err)
	return New(s, params)
}

func defaultParams() Params {
	return Params{
		FailureThreshold:           3,
		Cooldown:                   24 * time.Hour,
		DefunctConsecutiveFailures: 10,
		DefunctOpenFor:             24 * time.Hour,
	}
}

func TestClosedStaysClosedBelowThreshold(t *testing.T) {
	r := newRegistry(t, defaultParams())
	now := time.Now()

	rec, err := r.RecordOutcome("slack", false, now)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, rec.Status)

	rec, err = r.RecordOutcome("slack", false, now)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, rec.Status)
}

func TestClosedOpensAtThreshold(t *testing.T) {
	r := newRegistry(t, defaultParams())
	now := time.Now()

	var rec Record
	var err error
	for i := 0; i < 3; i++ {
		rec, err = r.RecordOutcome("slack", false, now)
		require.NoError(t, err)
	}
	assert.Equal(t, StatusOpen, rec.Status)
	assert.Equal(t, 3, rec.ConsecutiveFailures)
}

func TestSuccessResetsConsecutiveFailures(t *testing.T) {
	r := newRegistry(t, defaultParams())
	now := time.Now()

	_, err := r.RecordOutcome("slack", false, now)
	require.NoError(t, err)
	_, err = r.RecordOutcome("slack", false, now)
	require.NoError(t, err)

	rec, err := r.RecordOutcome("slack", true, now)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, rec.Status)
	assert.Equal(t, 0, rec.ConsecutiveFailures)
}

func TestOpenTransitionsToHalfOpenAfterCooldown(t *testing.T) {
	r := newRegistry(t, defaultParams())
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := r.RecordOutcome("slack", false, start)
		require.NoError(t, err)
	}

	later := start.Add(25 * time.Hour)
	result, err := r.FilterAllowed([]string{"slack"}, later)
	require.NoError(t, err)
	assert.Contains(t, result.Allowed, "slack")

	rec, err := r.Get("slack")
	require.NoError(t, err)
	assert.Equal(t, StatusHalfOpen, rec.Status)
}

func TestOpenStaysBlockedBeforeCooldown(t *testing.T) {
	r := newRegistry(t, defaultParams())
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := r.RecordOutcome("slack", false, start)
		require.NoError(t, err)
	}

	soon := start.Add(time.Hour)
	result, err := r.FilterAllowed([]string{"slack"}, soon)
	require.NoError(t, err)
	assert.Contains(t, result.Blocked, "slack")
	assert.NotContains(t, result.Allowed, "slack")
}

func TestHalfOpenSuccessCloses(t *testing.T) {
	r := newRegistry(t, defaultParams())
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := r.RecordOutcome("slack", false, start)
		require.NoError(t, err)
	}
	_, err := r.FilterAllowed([]string{"slack"}, start.Add(25*time.Hour))
	require.NoError(t, err)

	rec, err := r.RecordOutcome("slack", true, start.Add(26*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, rec.Status)
}

func TestHalfOpenFailureReopensAndResetsCooldown(t *testing.T) {
	r := newRegistry(t, defaultParams())
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := r.RecordOutcome("slack", false, start)
		require.NoError(t, err)
	}
	probeAt := start.Add(25 * time.Hour)
	_, err := r.FilterAllowed([]string{"slack"}, probeAt)
	require.NoError(t, err)

	rec, err := r.RecordOutcome("slack", false, probeAt)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, rec.Status)
	require.NotNil(t, rec.OpenedAt)
	assert.True(t, rec.OpenedAt.Equal(probeAt), "cooldown clock must reset to the half-open failure time")
}

func TestDefunctIsTerminalUntilReset(t *testing.T) {
	params := defaultParams()
	params.DefunctConsecutiveFailures = 4
	params.DefunctOpenFor = time.Hour
	r := newRegistry(t, params)

	start := time.Now()
	for i := 0; i < 4; i++ {
		_, err := r.RecordOutcome("slack", false, start)
		require.NoError(t, err)
	}
	rec, err := r.RecordOutcome("slack", false, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusDefunct, rec.Status)
	assert.NotEmpty(t, rec.DefunctReason)

	// A later success must not revive it.
	rec, err = r.RecordOutcome("slack", true, start.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusDefunct, rec.Status)

	reset, err := r.Reset("slack")
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, reset.Status)
}

func TestFilterAllowedThreeWaySplit(t *testing.T) {
	r := newRegistry(t, defaultParams())
	now := time.Now()

	for i := 0; i < 3; i++ {
		_, err := r.RecordOutcome("open-platform", false, now)
		require.NoError(t, err)
	}
	_, err := r.MarkDefunct("defunct-platform", "operator marked unreachable")
	require.NoError(t, err)

	result, err := r.FilterAllowed([]string{"open-platform", "defunct-platform", "healthy-platform"}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"healthy-platform"}, result.Allowed)
	assert.Equal(t, []string{"open-platform"}, result.Blocked)
	assert.Equal(t, []string{"defunct-platform"}, result.Defunct)
}
