package rotation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTally_FiresAtThreshold(t *testing.T) {
	v := NewTally()

	require.False(t, v.Vote("a", 2))
	require.True(t, v.Vote("b", 2))
}

func TestTally_RepeatVoteIsIdempotent(t *testing.T) {
	v := NewTally()

	require.False(t, v.Vote("a", 2))
	// Same voter again: no new decision, even though the set already holds
	// them and a shrinking lobby could have lowered the bar.
	require.False(t, v.Vote("a", 1))
	require.Equal(t, 1, v.Count())
}

func TestTally_ThresholdTracksCurrentCount(t *testing.T) {
	v := NewTally()

	// First vote while 4 players are in: needs 3.
	require.False(t, v.Vote("a", requiredVotes(4)))
	// Two players left since; 2 presents means 2 votes fire the decision.
	require.True(t, v.Vote("b", requiredVotes(2)))
}

func TestTally_Reset(t *testing.T) {
	v := NewTally()
	v.Vote("a", 3)
	v.Vote("b", 3)
	v.Reset()

	require.Equal(t, 0, v.Count())
	require.False(t, v.Vote("a", 2), "old votes must not carry over")
}

func TestRequiredVotes(t *testing.T) {
	cases := []struct {
		players int
		want    int
	}{
		{players: 1, want: 1},
		{players: 2, want: 2},
		{players: 3, want: 2},
		{players: 4, want: 3},
		{players: 16, want: 9},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, requiredVotes(tc.players), "players=%d", tc.players)
	}
}
