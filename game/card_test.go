package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

/**
Cards are encoded as suit*13+rank, ranks running high to low. The tests
verify the encoding round trip, the protocol string form, and the
trick-taking comparison.
*/

func TestCardEncoding(t *testing.T) {
	for s := Spades; s < NumSuits; s++ {
		for r := Ace; r < NumRanks; r++ {
			c := NewCard(s, r)
			require.Equal(t, s, c.Suit(), "Suit should survive the round trip")
			require.Equal(t, r, c.Rank(), "Rank should survive the round trip")
		}
	}
	require.Equal(t, Card(2), QueenOfSpades, "Queen of spades should be card 2")
	require.Equal(t, Card(16), JackOfDiamonds, "Jack of diamonds should be card 16")
	require.Equal(t, Card(38), TwoOfClubs, "Two of clubs should be card 38")
}

func TestCardString(t *testing.T) {
	require.Equal(t, "AS", NewCard(Spades, Ace).String())
	require.Equal(t, "10H", NewCard(Hearts, Ten).String())
	require.Equal(t, "2C", TwoOfClubs.String())
	require.Equal(t, "QS", QueenOfSpades.String())
	require.Equal(t, "JD", JackOfDiamonds.String())
}

func TestParseCard(t *testing.T) {
	t.Run("round trips every card", func(t *testing.T) {
		for c := Card(0); c < NumCards; c++ {
			parsed, err := ParseCard(c.String())
			require.NoError(t, err)
			require.Equal(t, c, parsed, "ParseCard should invert String")
		}
	})

	t.Run("accepts T as an alias for 10", func(t *testing.T) {
		parsed, err := ParseCard("TH")
		require.NoError(t, err)
		require.Equal(t, NewCard(Hearts, Ten), parsed)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, bad := range []string{"", "S", "AX", "1S", "QQ", "10"} {
			_, err := ParseCard(bad)
			require.Error(t, err, "ParseCard should reject %q", bad)
		}
	})
}

func TestBeats(t *testing.T) {
	lead := Clubs
	require.True(t, NewCard(Clubs, Ace).Beats(NewCard(Clubs, King), lead),
		"Higher rank of the lead suit should win")
	require.False(t, NewCard(Clubs, King).Beats(NewCard(Clubs, Ace), lead),
		"Lower rank of the lead suit should lose")
	require.False(t, NewCard(Spades, Ace).Beats(NewCard(Clubs, Two), lead),
		"Off-suit cards should never beat the lead")
	require.True(t, NewCard(Clubs, Two).Beats(NewCard(Spades, Ace), lead),
		"Any lead-suit card should beat an off-suit card")
}
