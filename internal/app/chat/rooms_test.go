package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
)

func TestRoomsJoinLeave(t *testing.T) {
	rooms := NewRooms()
	c := NewClient(nil, nil)

	require.Nil(t, rooms.Join("lobby", c))
	require.Nil(t, rooms.Join("lobby", c)) // idempotent
	assert.Contains(t, rooms.MembersOf("lobby"), c)
	assert.Len(t, rooms.MembersOf("lobby"), 1)

	require.Nil(t, rooms.Leave("lobby", c))
	assert.Empty(t, rooms.MembersOf("lobby"))

	// leaving again or leaving an unknown room is a no-op
	require.Nil(t, rooms.Leave("lobby", c))
	require.Nil(t, rooms.Leave("nowhere", c))
}

func TestRoomsEmptyNameRejected(t *testing.T) {
	rooms := NewRooms()
	c := NewClient(nil, nil)

	err := rooms.Join("", c)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrRoomNameInvalid, err.Code)

	err = rooms.Leave("", c)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrRoomNameInvalid, err.Code)
}

func TestRoomsUnknownRoomIsEmpty(t *testing.T) {
	rooms := NewRooms()
	assert.Empty(t, rooms.MembersOf("ghost"))
}

func TestRoomsPurgeRemovesFromEveryRoom(t *testing.T) {
	rooms := NewRooms()
	c := NewClient(nil, nil)
	other := NewClient(nil, nil)

	require.Nil(t, rooms.Join("lobby", c))
	require.Nil(t, rooms.Join("games", c))
	require.Nil(t, rooms.Join("games", other))

	rooms.Purge(c)

	assert.Empty(t, rooms.MembersOf("lobby"))
	assert.NotContains(t, rooms.MembersOf("games"), c)
	assert.Contains(t, rooms.MembersOf("games"), other)
}
