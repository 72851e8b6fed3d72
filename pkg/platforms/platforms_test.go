package platforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickwright/tickctl/pkg/state"
)

func TestUpsertInsertsThenReplaces(t *testing.T) {
	s, err := state.New(t.TempDir())
	require.NoError(t, err)
	store := New(s)

	require.NoError(t, store.Upsert(Account{ID: "slack", URL: "https://slack.example", HasCredentials: true}))
	require.NoError(t, store.Upsert(Account{ID: "slack", URL: "https://slack.example", HasCredentials: false, LastStatus: "401"}))

	accounts, err := store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "401", accounts[0].LastStatus)
	assert.False(t, accounts[0].HasCredentials)
}

func TestLiveAndMissingCredentialsSplit(t *testing.T) {
	s, err := state.New(t.TempDir())
	require.NoError(t, err)
	store := New(s)
	require.NoError(t, store.Upsert(Account{ID: "slack", HasCredentials: true}))
	require.NoError(t, store.Upsert(Account{ID: "discord", HasCredentials: false}))

	live, missing, err := store.LiveAndMissingCredentials()
	require.NoError(t, err)
	assert.Equal(t, []string{"slack"}, live)
	assert.Equal(t, []string{"discord"}, missing)
}
