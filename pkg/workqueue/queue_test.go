package workqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickwright/tickctl/pkg/state"
)

func newQueue(t *testing.T) *Queue {
	t.Helper()
	s, err := state.New(t.TempDir())
	require.NoError(t, err)
	return New(s)
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	q := newQueue(t)

	first, err := q.Add(WorkItem{Title: "first"})
	require.NoError(t, err)
	assert.Equal(t, "wq-1", first.ID)

	second, err := q.Add(WorkItem{Title: "second"})
	require.NoError(t, err)
	assert.Equal(t, "wq-2", second.ID)
}

func TestAddIDsNeverReused(t *testing.T) {
	q := newQueue(t)
	_, err := q.Add(WorkItem{ID: "wq-7", Title: "manual"})
	require.NoError(t, err)

	next, err := q.Add(WorkItem{Title: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "wq-8", next.ID)
}

func TestUpdateRejectsDoneBackToPending(t *testing.T) {
	q := newQueue(t)
	item, err := q.Add(WorkItem{Title: "x", Status: StatusDone})
	require.NoError(t, err)

	pending := StatusPending
	_, err = q.Update(item.ID, Patch{Status: &pending})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateRejectsDependencyCycle(t *testing.T) {
	q := newQueue(t)
	a, err := q.Add(WorkItem{Title: "a"})
	require.NoError(t, err)
	b, err := q.Add(WorkItem{Title: "b", Deps: []string{a.ID}})
	require.NoError(t, err)

	_, err = q.Update(a.ID, Patch{Deps: []string{b.ID}})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSelectNextFiltersByStatusAndDeps(t *testing.T) {
	q := newQueue(t)
	blocked, err := q.Add(WorkItem{Title: "blocked-dep", Status: StatusInProgress})
	require.NoError(t, err)
	_, err = q.Add(WorkItem{Title: "waiting", Priority: 1, Deps: []string{blocked.ID}})
	require.NoError(t, err)
	ready, err := q.Add(WorkItem{Title: "ready", Priority: 2})
	require.NoError(t, err)

	next, err := q.SelectNext(BudgetNormal)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, ready.ID, next.ID)
}

func TestSelectNextRanksByPriorityThenCreatedSession(t *testing.T) {
	q := newQueue(t)
	_, err := q.Add(WorkItem{Title: "low-priority", Priority: 5, CreatedSession: 1})
	require.NoError(t, err)
	older, err := q.Add(WorkItem{Title: "older-same-priority", Priority: 1, CreatedSession: 1})
	require.NoError(t, err)
	_, err = q.Add(WorkItem{Title: "newer-same-priority", Priority: 1, CreatedSession: 2})
	require.NoError(t, err)

	next, err := q.SelectNext(BudgetNormal)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, older.ID, next.ID)
}

func TestSelectNextComplexityGateWhenTight(t *testing.T) {
	q := newQueue(t)
	_, err := q.Add(WorkItem{Title: "big-urgent", Priority: 1, Complexity: ComplexityLarge})
	require.NoError(t, err)
	small, err := q.Add(WorkItem{Title: "small-less-urgent", Priority: 5, Complexity: ComplexitySmall})
	require.NoError(t, err)

	next, err := q.SelectNext(BudgetTight)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, small.ID, next.ID, "tight budget must prefer S/M over L regardless of priority")
}

func TestSelectNextReturnsNilWhenNoneReady(t *testing.T) {
	q := newQueue(t)
	_, err := q.Add(WorkItem{Title: "done", Status: StatusDone})
	require.NoError(t, err)

	next, err := q.SelectNext(BudgetNormal)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestAutoPromotePromotesUpToLowWaterWhenEmpty(t *testing.T) {
	q := newQueue(t)
	require.NoError(t, q.saveIdeas(ideaPoolDocument{Ideas: []Idea{
		{Title: "idea one"}, {Title: "idea two"}, {Title: "idea three"}, {Title: "idea four"},
	}}))

	result, err := q.AutoPromote(3, 3)
	require.NoError(t, err)
	assert.Len(t, result.PromotedItems, 3)
	for _, item := range result.PromotedItems {
		assert.Equal(t, autoPromoteSource, item.Source)
	}

	remaining, err := q.loadIdeas()
	require.NoError(t, err)
	assert.Len(t, remaining.Ideas, 1)
}

func TestAutoPromoteBufferedWhenNotEmpty(t *testing.T) {
	q := newQueue(t)
	_, err := q.Add(WorkItem{Title: "already pending"})
	require.NoError(t, err)
	require.NoError(t, q.saveIdeas(ideaPoolDocument{Ideas: []Idea{
		{Title: "idea one"}, {Title: "idea two"}, {Title: "idea three"}, {Title: "idea four"}, {Title: "idea five"},
	}}))

	result, err := q.AutoPromote(3, 3)
	require.NoError(t, err)
	assert.Len(t, result.PromotedItems, 2, "max(0, len(ideas)-buffer) = max(0, 5-3) = 2")
}

func TestAutoPromoteNoopWhenBelowBuffer(t *testing.T) {
	q := newQueue(t)
	_, err := q.Add(WorkItem{Title: "already pending"})
	require.NoError(t, err)
	require.NoError(t, q.saveIdeas(ideaPoolDocument{Ideas: []Idea{{Title: "idea one"}}}))

	result, err := q.AutoPromote(3, 3)
	require.NoError(t, err)
	assert.Empty(t, result.PromotedItems)
}

func TestDedupKeepsEarliestByNormalizedPrefix(t *testing.T) {
	q := newQueue(t)
	earliest, err := q.Add(WorkItem{Title: "Fix the login bug in staging", CreatedSession: 1})
	require.NoError(t, err)
	dup, err := q.Add(WorkItem{Title: "fix the login bug elsewhere", CreatedSession: 2})
	require.NoError(t, err)
	_, err = q.Add(WorkItem{Title: "totally unrelated work", CreatedSession: 3})
	require.NoError(t, err)

	report, err := q.Dedup(4)
	require.NoError(t, err)
	assert.Equal(t, []string{dup.ID}, report.RemovedIDs)

	items, err := q.List()
	require.NoError(t, err)
	var ids []string
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Contains(t, ids, earliest.ID)
	assert.NotContains(t, ids, dup.ID)
}

func TestIngestTodosSkipsDuplicatesAgainstQueueAndIdeaPool(t *testing.T) {
	q := newQueue(t)
	_, err := q.Add(WorkItem{Title: "Write docs for release", CreatedSession: 1})
	require.NoError(t, err)
	require.NoError(t, q.saveIdeas(ideaPoolDocument{Ideas: []Idea{{Title: "Investigate flaky test suite"}}}))

	result, err := q.IngestTodos([]string{
		"Write docs for release notes",   // dup of queue item by 4-word prefix
		"Investigate flaky test suite",   // dup of idea pool entry
		"Add retry to the HTTP client",   // new
		"",                               // blank, ignored
	}, 4, 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"Add retry to the HTTP client"}, result.Added)
	assert.ElementsMatch(t, []string{"Write docs for release notes", "Investigate flaky test suite"}, result.Skipped)
}
