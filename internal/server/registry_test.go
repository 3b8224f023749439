package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/parlour/internal/protocol"
)

type nullSender struct{}

func (nullSender) Send(*protocol.Message) {}

func TestRegistryAddRejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&User{ID: "u1", Name: "alice", Sender: nullSender{}}))

	err := r.Add(&User{ID: "u2", Name: "alice", Sender: nullSender{}})
	require.Error(t, err)
	assert.Equal(t, "Name already taken.", err.Error())

	// Different case is a different name.
	require.NoError(t, r.Add(&User{ID: "u3", Name: "Alice", Sender: nullSender{}}))
	assert.Equal(t, 2, r.Len())
}

func TestRegistryRemoveFreesName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&User{ID: "u1", Name: "alice", Sender: nullSender{}}))

	removed := r.Remove("u1")
	require.NotNil(t, removed)
	assert.Equal(t, "alice", removed.Name)
	assert.Nil(t, r.Remove("u1"))

	require.NoError(t, r.Add(&User{ID: "u2", Name: "alice", Sender: nullSender{}}))
}

func TestRegistrySetStatus(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&User{ID: "u1", Name: "alice", Sender: nullSender{}}))

	user, ok := r.Get("u1")
	require.True(t, ok)
	assert.Equal(t, protocol.StatusAvailable, user.Status)

	user.RoomCode = "ABCD"
	_, ok = r.SetStatus("u1", protocol.StatusInGame, "checkers")
	require.True(t, ok)
	assert.Equal(t, "checkers", user.GameType)
	assert.Equal(t, "ABCD", user.RoomCode)

	// Returning to available clears the game context.
	_, ok = r.SetStatus("u1", protocol.StatusAvailable, "")
	require.True(t, ok)
	assert.Empty(t, user.GameType)
	assert.Empty(t, user.RoomCode)

	_, ok = r.SetStatus("ghost", protocol.StatusInGame, "war")
	assert.False(t, ok)
}

func TestRegistrySnapshotExcludesSelf(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&User{ID: "u1", Name: "alice", Sender: nullSender{}}))
	require.NoError(t, r.Add(&User{ID: "u2", Name: "bob", Sender: nullSender{}}))

	snap := r.Snapshot("u1")
	require.Len(t, snap, 1)
	assert.Equal(t, "bob", snap[0].Name)
	assert.Equal(t, protocol.StatusAvailable, snap[0].Status)
}
