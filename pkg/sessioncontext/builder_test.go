package sessioncontext

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickwright/tickctl/pkg/circuit"
	"github.com/tickwright/tickctl/pkg/directives"
	"github.com/tickwright/tickctl/pkg/engagement"
	"github.com/tickwright/tickctl/pkg/rotation"
	"github.com/tickwright/tickctl/pkg/state"
	"github.com/tickwright/tickctl/pkg/workqueue"
)

func newBuilder(t *testing.T) (*Builder, *workqueue.Queue) {
	t.Helper()
	s, err := state.New(t.TempDir())
	require.NoError(t, err)

	q := workqueue.New(s)
	circuits := circuit.New(s, circuit.Params{FailureThreshold: 3, Cooldown: time.Hour, DefunctConsecutiveFailures: 10, DefunctOpenFor: 24 * time.Hour})
	eng := engagement.New(circuits, engagement.PlanParams{})
	dirs := directives.New(s)

	return New(q, eng, dirs), q
}

func TestBuildAssignsTaskOnlyInBuildMode(t *testing.T) {
	b, q := newBuilder(t)
	_, err := q.Add(workqueue.WorkItem{Title: "fix the bug", Priority: 1})
	require.NoError(t, err)

	ctx, err := b.Build(rotation.ModeBuild, 1, Knobs{}, time.Now())
	require.NoError(t, err)
	require.NotNil(t, ctx.AssignedTask)
	assert.Equal(t, "fix the bug", ctx.AssignedTask.Title)

	ctx2, err := b.Build(rotation.ModeEngage, 2, Knobs{}, time.Now())
	require.NoError(t, err)
	assert.Nil(t, ctx2.AssignedTask)
}

func TestBuildAutoPromotesOnlyInBuildAndReflect(t *testing.T) {
	b, q := newBuilder(t)
	require.NoError(t, q.AddIdea(workqueue.Idea{Title: "investigate webhook support"}))

	knobs := Knobs{AutoPromoteLowWater: 3, AutoPromoteBuffer: 3}

	ctx, err := b.Build(rotation.ModeEngage, 1, knobs, time.Now())
	require.NoError(t, err)
	assert.Empty(t, ctx.BrainstormingSeeded, "Engage must not auto-promote")

	ctx, err = b.Build(rotation.ModeReflect, 2, knobs, time.Now())
	require.NoError(t, err)
	assert.Len(t, ctx.BrainstormingSeeded, 1)
}

func TestBuildEchoesDedupAndIngestWithoutMutating(t *testing.T) {
	b, _ := newBuilder(t)
	knobs := Knobs{
		DedupReport:  workqueue.DedupReport{RemovedIDs: []string{"wq-3"}},
		TodoIngested: workqueue.IngestResult{Added: []string{"new idea"}},
	}

	ctx, err := b.Build(rotation.ModeAudit, 1, knobs, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"wq-3"}, ctx.DedupReport.RemovedIDs)
	assert.Equal(t, []string{"new idea"}, ctx.TodoIngested.Added)
}

func TestBuildRenderFailureBecomesWarningNotError(t *testing.T) {
	b, _ := newBuilder(t)
	knobs := Knobs{
		Render: func(mode rotation.Mode, ctx Context) (string, error) {
			return "", errors.New("template missing")
		},
	}

	ctx, err := b.Build(rotation.ModeBuild, 1, knobs, time.Now())
	require.NoError(t, err)
	assert.Empty(t, ctx.ModeSpecificBlock)
	require.Len(t, ctx.Warnings, 1)
	assert.Contains(t, ctx.Warnings[0], "template missing")
}

func TestBuildIsIdempotentForSameInputs(t *testing.T) {
	b, q := newBuilder(t)
	_, err := q.Add(workqueue.WorkItem{Title: "stable task", Priority: 1})
	require.NoError(t, err)

	now := time.Now()
	knobs := Knobs{}

	first, err := b.Build(rotation.ModeEngage, 3, knobs, now)
	require.NoError(t, err)
	second, err := b.Build(rotation.ModeEngage, 3, knobs, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
