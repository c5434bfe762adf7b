//go:build unit

package room_test

import (
	"testing"

	"roomchat/internal/domain/room"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegistry(t *testing.T) {
	t.Run("sorted by id", func(t *testing.T) {
		reg, err := room.ParseRegistry([]string{"4:Room 4:6", "1:Room 1:4", " 2 : Board room : 12 "})
		require.NoError(t, err)

		assert.Equal(t, []int{1, 2, 4}, reg.IDs())
		r, ok := reg.Get(2)
		require.True(t, ok)
		assert.Equal(t, "Board room", r.Name())
		assert.Equal(t, 12, r.Capacity())
		assert.False(t, reg.Contains(3))
	})

	testCases := []struct {
		name    string
		entries []string
		errIs   error
	}{
		{name: "empty catalog", entries: nil, errIs: room.ErrEmptyRoomCatalog},
		{name: "missing capacity", entries: []string{"1:Room 1"}, errIs: room.ErrMalformedRoom},
		{name: "non numeric id", entries: []string{"one:Room 1:4"}, errIs: room.ErrMalformedRoom},
		{name: "zero id", entries: []string{"0:Room:4"}, errIs: room.ErrInvalidRoomID},
		{name: "blank name", entries: []string{"1: :4"}, errIs: room.ErrEmptyRoomName},
		{name: "zero capacity", entries: []string{"1:Room:0"}, errIs: room.ErrInvalidCapacity},
		{name: "duplicate id", entries: []string{"1:A:4", "1:B:4"}, errIs: room.ErrDuplicateRoomID},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reg, err := room.ParseRegistry(tc.entries)
			require.Nil(t, reg)
			require.ErrorIs(t, err, tc.errIs)
		})
	}
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	reg, err := room.ParseRegistry([]string{"1:A:4", "2:B:4"})
	require.NoError(t, err)

	rooms := reg.All()
	rooms[0] = rooms[1]

	assert.Equal(t, []int{1, 2}, reg.IDs())
}
