package directives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickwright/tickctl/pkg/state"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := state.New(t.TempDir())
	require.NoError(t, err)
	return New(s)
}

func TestActiveIncludesActiveAndAckedNotResolved(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add("d-1", "always run tests before merging", 1))
	require.NoError(t, s.Add("d-2", "never touch the prod config", 1))
	require.NoError(t, s.Transition("d-2", StatusAcked, 2))
	require.NoError(t, s.Add("d-3", "old resolved rule", 1))
	require.NoError(t, s.Transition("d-3", StatusResolved, 2))

	active, err := s.Active()
	require.NoError(t, err)

	var ids []string
	for _, d := range active {
		ids = append(ids, d.ID)
	}
	assert.ElementsMatch(t, []string{"d-1", "d-2"}, ids)
}

func TestTransitionUnknownIDErrors(t *testing.T) {
	s := newStore(t)
	err := s.Transition("missing", StatusAcked, 1)
	assert.Error(t, err)
}
