package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickwright/tickctl/pkg/state"
)

func TestRecordAndRecentRoundTrip(t *testing.T) {
	s, err := state.New(t.TempDir())
	require.NoError(t, err)
	store := New(s)

	require.NoError(t, store.Record(Entry{Session: 4, Summary: "found a webhook endpoint"}, 0))
	require.NoError(t, store.Record(Entry{Session: 5, Summary: "api key rotated"}, 0))

	entries, err := store.Recent()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "found a webhook endpoint", entries[0].Summary)
	assert.Equal(t, 5, entries[1].Session)
}

func TestArchiveClearsPendingAndAppendsToArchive(t *testing.T) {
	s, err := state.New(t.TempDir())
	require.NoError(t, err)
	store := New(s)

	require.NoError(t, store.Record(Entry{Session: 1, Summary: "first"}, 0))
	require.NoError(t, store.Record(Entry{Session: 2, Summary: "second"}, 0))

	pending, err := store.Recent()
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, store.Archive(pending))

	remaining, err := store.Recent()
	require.NoError(t, err)
	assert.Empty(t, remaining)

	var archived []Entry
	found, err := s.Read(archiveDoc, &archived)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, archived, 2)
	assert.Equal(t, "first", archived[0].Summary)

	require.NoError(t, store.Record(Entry{Session: 3, Summary: "third"}, 0))
	require.NoError(t, store.Archive([]Entry{{Session: 3, Summary: "third"}}))

	found, err = s.Read(archiveDoc, &archived)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, archived, 3, "archiving again should append, not overwrite")
}
