package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestState(t *testing.T) *State {
	t.Helper()
	state, err := OpenState(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { state.Close() })
	return state
}

func TestStateConfigRoundTrip(t *testing.T) {
	state := openTestState(t)

	v, err := state.GetConfig("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, state.SetConfig("key", "value1"))
	require.NoError(t, state.SetConfig("key", "value2")) // upsert

	v, err = state.GetConfig("key")
	require.NoError(t, err)
	assert.Equal(t, "value2", v)

	require.NoError(t, state.DeleteConfig("key"))
	v, err = state.GetConfig("key")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestStateCredentialRoundTrip(t *testing.T) {
	state := openTestState(t)

	_, _, ok := state.Credential()
	assert.False(t, ok)

	require.NoError(t, state.SetCredential("12345", "abcdef"))
	apiID, apiHash, ok := state.Credential()
	require.True(t, ok)
	assert.Equal(t, "12345", apiID)
	assert.Equal(t, "abcdef", apiHash)

	require.NoError(t, state.ClearCredential())
	_, _, ok = state.Credential()
	assert.False(t, ok)
}

func TestStateHalfCredentialIsAbsent(t *testing.T) {
	state := openTestState(t)

	require.NoError(t, state.SetConfig(configKeyAPIID, "12345"))
	_, _, ok := state.Credential()
	assert.False(t, ok, "one half alone is not a usable credential")
}

func TestStateLastServer(t *testing.T) {
	state := openTestState(t)

	assert.Empty(t, state.GetLastServer())
	require.NoError(t, state.SetLastServer("ws://localhost:3001"))
	assert.Equal(t, "ws://localhost:3001", state.GetLastServer())
}

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	state, err := OpenState(path)
	require.NoError(t, err)
	require.NoError(t, state.SetCredential("12345", "abcdef"))
	require.NoError(t, state.Close())

	state, err = OpenState(path)
	require.NoError(t, err)
	defer state.Close()

	apiID, _, ok := state.Credential()
	require.True(t, ok)
	assert.Equal(t, "12345", apiID)
}
