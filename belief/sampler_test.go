package belief

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"hearts/game"
)

// requireValidWorld checks the assignment invariants every sampled world
// must satisfy against its belief.
func requireValidWorld(t *testing.T, obs *game.Observed, w World) {
	t.Helper()
	var union game.CardSet
	for p := 0; p < game.NumPlayers; p++ {
		require.Equal(t, obs.HandSize(p), w.Hands[p].Count(),
			"Seat %d should hold exactly its implied hand size", p)
		require.Equal(t, game.CardSet(0), union.Intersect(w.Hands[p]),
			"Hands should be disjoint")
		union = union.Union(w.Hands[p])
	}
	require.Equal(t, game.FullDeck.Without(obs.PlayedCards()), union,
		"Hands should partition the unplayed deck")
	require.Equal(t, obs.MyHand, w.Hands[obs.MySeat],
		"The viewer's hand is never resampled")
}

func TestSampleFreshDeal(t *testing.T) {
	obs := freshDeal(t)
	b, err := New(obs, Basic)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		w, err := b.SampleWorld(rng)
		require.NoError(t, err)
		requireValidWorld(t, obs, w)
		require.Equal(t, 1.0, w.Weight, "Basic worlds all weigh the same")
	}
}

func TestSampleRespectsVoids(t *testing.T) {
	obs := afterSpadeDiscard(t)
	b, err := New(obs, VoidAware)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		w, err := b.SampleWorld(rng)
		require.NoError(t, err)
		requireValidWorld(t, obs, w)
		require.False(t, w.Hands[2].HasSuit(game.Spades),
			"A seat shown void in spades should never draw one")
	}
}

func TestSamplePinsPassedCards(t *testing.T) {
	obs := freshDeal(t)
	obs.Rules |= game.DoPassCards
	obs.PassDir = game.Left
	obs.HasPassed = true
	obs.Passed = [3]game.Card{mustCard(t, "AH"), mustCard(t, "KH"), mustCard(t, "QH")}

	b, err := New(obs, Behavioral)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		w, err := b.SampleWorld(rng)
		require.NoError(t, err)
		requireValidWorld(t, obs, w)
		for _, c := range obs.Passed {
			require.True(t, w.Hands[1].Has(c),
				"Passed cards sit with the recipient until seen in play")
		}
	}
}

func TestSampleBehavioralWeight(t *testing.T) {
	obs := &game.Observed{
		Rules:  game.DefaultRules,
		MySeat: 0,
		MyHand: cardsOf(t, "2C", "2D").Union(
			game.FullDeck.OfSuit(game.Spades).Without(cardsOf(t, "5S", "2S", "QS"))),
		History: []game.Trick{completeTrick(t, 0, "5S", "2S", "QS", "4C")},
	}
	obs.Taken[obs.History[0].Winner] = obs.History[0].CardSet()

	b, err := New(obs, Behavioral)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 50; i++ {
		w, err := b.SampleWorld(rng)
		require.NoError(t, err)
		requireValidWorld(t, obs, w)
		require.Greater(t, w.Weight, 0.0)
		require.LessOrEqual(t, w.Weight, 1.0,
			"Split probabilities multiply to at most one")
	}
}

func TestSampleDeterministicUnderFixedSeed(t *testing.T) {
	b, err := New(freshDeal(t), Basic)
	require.NoError(t, err)

	w1, err := b.SampleWorld(rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	w2, err := b.SampleWorld(rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	require.Equal(t, w1, w2, "The same seed should draw the same world")
}
