package pb

import (
	"testing"

	"github.com/arcade-cabinet/beppo-laughs/game"
	"github.com/arcade-cabinet/beppo-laughs/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtobuf(t *testing.T) {
	enc := &Protobuf{}
	target := "2,1"

	snap := game.Snapshot{
		Seed:   "beppo",
		Status: game.StatusPlaying,
		Navigation: game.NavState{
			Phase:    game.PhaseTransiting,
			Current:  "1,1",
			Target:   &target,
			IsMoving: true,
			Progress: 0.25,
			Speed:    3.5,
			Facing:   1.5,
			AvailableMoves: []game.Move{
				{Direction: maze.East, Key: "2,1"},
				{Direction: maze.North, Key: "1,0", IsExit: true},
			},
		},
		Sanity:      game.SanityReading{Fear: 12, Despair: 3.5, Max: 100},
		SanityLevel: 92.25,
		Explored:    4,
		Collected:   []string{"unlock-3,3"},
		Blockades:   []string{},
	}

	t.Run("Snapshot", func(t *testing.T) {
		b, err := enc.MarshalSnapshot(snap)
		require.NoError(t, err)

		got, err := enc.UnmarshalSnapshot(b)
		require.NoError(t, err)
		assert.Equal(t, snap, got)
	})

	t.Run("Events", func(t *testing.T) {
		events := []game.Event{
			{Kind: game.EventNodeArrived, Key: "1,1"},
			{Kind: game.EventConfused, Key: "0,1", Intended: "2,1"},
			{Kind: game.EventGameOver, Key: "0,1", Reason: game.ReasonDespair},
		}
		b, err := enc.MarshalEvents(events)
		require.NoError(t, err)

		got, err := enc.UnmarshalEvents(b)
		require.NoError(t, err)
		assert.Equal(t, events, got)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := enc.UnmarshalSnapshot([]byte{0xff, 0xff, 0xff})
		assert.Error(t, err)
	})

	assert.Equal(t, ContentType, enc.ContentType())
}
