package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"hearts/game"
)

/**
Policy tests pin the greedy heuristic's behavior in each of its three
situations: leading a trick, following suit, and discarding. Epsilon is
zero in those tests so every pick is deterministic; the single-move test
sets it to one to show a forced card never consults the coin.
*/

func cardsOf(t *testing.T, names ...string) game.CardSet {
	t.Helper()
	var s game.CardSet
	for _, n := range names {
		c, err := game.ParseCard(n)
		require.NoError(t, err)
		s.Add(c)
	}
	return s
}

func mustCard(t *testing.T, name string) game.Card {
	t.Helper()
	c, err := game.ParseCard(name)
	require.NoError(t, err)
	return c
}

// leadState puts seat 0 on lead mid-round with the given hand.
func leadState(t *testing.T, hand game.CardSet) *game.GameState {
	t.Helper()
	gs := game.NewGameState(game.DefaultRules, game.Hold)
	var hands [game.NumPlayers]game.CardSet
	hands[0] = hand
	gs.SetHands(hands)
	gs.TrickNum = 1
	return gs
}

// followState puts seat 1 second to play under the given led cards.
func followState(t *testing.T, hand game.CardSet, led ...string) *game.GameState {
	t.Helper()
	gs := game.NewGameState(game.DefaultRules, game.Hold)
	var hands [game.NumPlayers]game.CardSet
	hands[len(led)] = hand
	gs.SetHands(hands)
	gs.TrickNum = 1
	gs.HeartsBroken = true
	gs.Current = game.Trick{Lead: 0}
	for i, n := range led {
		gs.Current.AddCard(mustCard(t, n), i)
	}
	gs.CurrentPlayer = len(led)
	return gs
}

func TestGreedyPolicyLeads(t *testing.T) {
	policy := GreedyPolicy{}
	rng := rand.New(rand.NewSource(1))
	buf := make([]game.Card, 0, 13)

	t.Run("with the lowest non-heart", func(t *testing.T) {
		gs := leadState(t, cardsOf(t, "2H", "9C", "KD"))
		require.Equal(t, mustCard(t, "9C"), policy.Pick(gs, buf, rng))
	})

	t.Run("with the lowest heart when nothing else remains", func(t *testing.T) {
		gs := leadState(t, cardsOf(t, "AH", "3H"))
		require.Equal(t, mustCard(t, "3H"), policy.Pick(gs, buf, rng))
	})
}

func TestGreedyPolicyFollows(t *testing.T) {
	policy := GreedyPolicy{}
	rng := rand.New(rand.NewSource(1))
	buf := make([]game.Card, 0, 13)

	t.Run("ducking with the highest losing card", func(t *testing.T) {
		gs := followState(t, cardsOf(t, "JD", "3D", "AD"), "QD")
		require.Equal(t, mustCard(t, "JD"), policy.Pick(gs, buf, rng),
			"The jack keeps the ace back while staying under the queen")
	})

	t.Run("dumping the queen when the trick cannot be avoided", func(t *testing.T) {
		gs := followState(t, cardsOf(t, "QS", "KS"), "JS")
		require.Equal(t, game.QueenOfSpades, policy.Pick(gs, buf, rng))
	})

	t.Run("taking with the highest card when forced to win", func(t *testing.T) {
		gs := followState(t, cardsOf(t, "5C", "9C"), "2C")
		require.Equal(t, mustCard(t, "9C"), policy.Pick(gs, buf, rng))
	})
}

func TestGreedyPolicyDiscards(t *testing.T) {
	policy := GreedyPolicy{}
	rng := rand.New(rand.NewSource(1))
	buf := make([]game.Card, 0, 13)

	t.Run("the queen first", func(t *testing.T) {
		gs := followState(t, cardsOf(t, "QS", "AH", "KC"), "4D")
		require.Equal(t, game.QueenOfSpades, policy.Pick(gs, buf, rng))
	})

	t.Run("then the highest heart", func(t *testing.T) {
		gs := followState(t, cardsOf(t, "AH", "2H", "KC"), "4D")
		require.Equal(t, mustCard(t, "AH"), policy.Pick(gs, buf, rng))
	})

	t.Run("then the highest remaining card", func(t *testing.T) {
		gs := followState(t, cardsOf(t, "KC", "2C", "9S"), "4D")
		require.Equal(t, mustCard(t, "KC"), policy.Pick(gs, buf, rng))
	})
}

func TestGreedyPolicySingleMove(t *testing.T) {
	policy := GreedyPolicy{Epsilon: 1}
	rng := rand.New(rand.NewSource(1))
	gs := followState(t, cardsOf(t, "3D", "AH"), "QD")

	require.Equal(t, mustCard(t, "3D"), policy.Pick(gs, make([]game.Card, 0, 13), rng),
		"A forced follow never consults the epsilon coin")
}

func TestUniformPolicyStaysLegal(t *testing.T) {
	policy := UniformPolicy{}
	rng := rand.New(rand.NewSource(1))
	gs := followState(t, cardsOf(t, "2D", "KD", "AH"), "QD")

	buf := make([]game.Card, 0, 13)
	for i := 0; i < 20; i++ {
		c := policy.Pick(gs, buf, rng)
		require.Contains(t, []game.Card{mustCard(t, "2D"), mustCard(t, "KD")}, c)
	}
}
