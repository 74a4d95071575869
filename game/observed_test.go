package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// playTrick builds a complete trick from four plays starting at lead.
func playTrick(t *testing.T, lead int, names ...string) Trick {
	t.Helper()
	require.Len(t, names, NumPlayers)
	trick := Trick{Lead: lead}
	for i, n := range names {
		trick.AddCard(mustCard(t, n), (lead+i)%NumPlayers)
	}
	trick.Resolve()
	return trick
}

func TestObservedToAct(t *testing.T) {
	obs := &Observed{Current: Trick{Lead: 2}}
	require.Equal(t, 2, obs.ToAct(), "With no plays the lead seat acts")

	obs.Current.AddCard(NewCard(Clubs, Two), 2)
	require.Equal(t, 3, obs.ToAct(), "Play proceeds clockwise from the last seat")
}

func TestObservedCounts(t *testing.T) {
	obs := &Observed{
		History: []Trick{playTrick(t, 0, "2C", "3C", "4C", "5C")},
		Current: Trick{Lead: 1},
	}
	obs.Current.AddCard(mustCard(t, "6D"), 1)

	require.Equal(t, 5, obs.PlayedCards().Count())
	require.Equal(t, 2, obs.PlayCount(1))
	require.Equal(t, 1, obs.PlayCount(0))
	require.Equal(t, 11, obs.HandSize(1))
	require.Equal(t, 12, obs.HandSize(0))
}

func TestObservedValidate(t *testing.T) {
	valid := func(t *testing.T) *Observed {
		t.Helper()
		obs := &Observed{
			Rules:   DefaultRules,
			MySeat:  0,
			History: []Trick{playTrick(t, 0, "2C", "3C", "4C", "5C")},
			Current: Trick{Lead: 3},
		}
		// 12-card hand consistent with one completed trick.
		obs.MyHand = FullDeck.OfSuit(Spades).Without(setOf(NewCard(Spades, Ace)))
		return obs
	}

	t.Run("accepts a consistent state", func(t *testing.T) {
		require.NoError(t, valid(t).Validate())
	})

	t.Run("rejects a seat out of range", func(t *testing.T) {
		obs := valid(t)
		obs.MySeat = 4
		require.ErrorIs(t, obs.Validate(), ErrInconsistentState)
	})

	t.Run("rejects a card played twice", func(t *testing.T) {
		obs := valid(t)
		obs.Current.AddCard(mustCard(t, "2C"), 3)
		require.ErrorIs(t, obs.Validate(), ErrInconsistentState)
	})

	t.Run("rejects a hand overlapping the play record", func(t *testing.T) {
		obs := valid(t)
		obs.MyHand.Remove(QueenOfSpades)
		obs.MyHand.Add(mustCard(t, "2C"))
		require.ErrorIs(t, obs.Validate(), ErrInconsistentState)
	})

	t.Run("rejects a hand of the wrong size", func(t *testing.T) {
		obs := valid(t)
		obs.MyHand.Remove(QueenOfSpades)
		require.ErrorIs(t, obs.Validate(), ErrInconsistentState)
	})

	t.Run("rejects an incomplete trick in the history", func(t *testing.T) {
		obs := valid(t)
		obs.History[0].Plays = 3
		require.ErrorIs(t, obs.Validate(), ErrInconsistentState)
	})

	t.Run("rejects piles holding unplayed cards", func(t *testing.T) {
		obs := valid(t)
		obs.Taken[2] = setOf(NewCard(Hearts, Ace))
		require.ErrorIs(t, obs.Validate(), ErrInconsistentState)
	})
}

func TestObservedToState(t *testing.T) {
	first := playTrick(t, 0, "2C", "3C", "4C", "5C")
	obs := &Observed{
		Rules:        DefaultRules,
		MySeat:       0,
		History:      []Trick{first},
		Current:      Trick{Lead: first.Winner},
		HeartsBroken: true,
	}
	obs.MyHand = FullDeck.OfSuit(Spades).Without(setOf(NewCard(Spades, Ace)))
	obs.Taken[first.Winner] = first.CardSet()

	var hands [NumPlayers]CardSet
	hands[0] = obs.MyHand
	gs := obs.ToState(hands)

	require.Equal(t, PlayingPhase, gs.Phase)
	require.Equal(t, 1, gs.TrickNum)
	require.Equal(t, first.Winner, gs.CurrentPlayer)
	require.True(t, gs.HeartsBroken)
	require.Equal(t, obs.PlayedCards(), gs.AllPlayed)
	require.Equal(t, obs.MyHand, gs.Hands[0])
}

func TestObservedLegalMoves(t *testing.T) {
	obs := &Observed{
		Rules:   DefaultRules,
		MySeat:  1,
		Current: Trick{Lead: 0},
		MyHand:  cardsOf(t, "2D", "KD", "AH"),
	}
	obs.Current.AddCard(mustCard(t, "7D"), 0)
	obs.History = []Trick{playTrick(t, 0, "2C", "3C", "4C", "5C")}

	moves := obs.LegalMoves(make([]Card, 0, 13))
	require.ElementsMatch(t, []Card{mustCard(t, "2D"), mustCard(t, "KD")}, moves,
		"Observed legal moves should force the lead suit")
}
