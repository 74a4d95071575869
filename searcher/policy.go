package searcher

import (
	"golang.org/x/exp/rand"

	"hearts/game"
)

// PlayoutPolicy picks one move during a rollout. Implementations are
// read-only with respect to their own fields: a single policy value is
// shared by every worker of a decision, so all per-call randomness comes
// from the worker's rng.
type PlayoutPolicy interface {
	Pick(gs *game.GameState, buf []game.Card, rng *rand.Rand) game.Card
}

// UniformPolicy plays a uniformly random legal card.
type UniformPolicy struct{}

func (UniformPolicy) Pick(gs *game.GameState, buf []game.Card, rng *rand.Rand) game.Card {
	moves := gs.LegalMoves(buf)
	return moves[rng.Intn(len(moves))]
}

// GreedyPolicy plays a cheap Hearts heuristic, falling back to a uniform
// pick with probability Epsilon. Ties resolve to the lowest rank, so the
// policy is deterministic for a given state once the epsilon coin is cast.
type GreedyPolicy struct {
	Epsilon float64
}

func (g GreedyPolicy) Pick(gs *game.GameState, buf []game.Card, rng *rand.Rand) game.Card {
	moves := gs.LegalMoves(buf)
	if len(moves) == 1 {
		return moves[0]
	}
	if g.Epsilon > 0 && rng.Float64() < g.Epsilon {
		return moves[rng.Intn(len(moves))]
	}

	var legal game.CardSet
	for _, c := range moves {
		legal.Add(c)
	}

	if gs.Current.Plays == 0 {
		return leadCard(legal)
	}
	lead := gs.Current.LeadSuit()
	if moves[0].Suit() == lead {
		return followCard(gs, legal, lead)
	}
	return discardCard(legal)
}

// leadCard opens a trick with the lowest non-heart, keeping hearts back
// for later discards. All-heart hands lead their lowest heart.
func leadCard(legal game.CardSet) game.Card {
	nonHearts := legal.Without(legal.OfSuit(game.Hearts))
	if nonHearts == 0 {
		return legal.Lowest()
	}
	best := nonHearts.Lowest()
	nonHearts.Each(func(c game.Card) {
		if c.Rank() > best.Rank() {
			best = c
		}
	})
	return best
}

// followCard ducks under the current winner when possible, playing the
// highest card that still loses; when the trick cannot be avoided it
// takes with the most dangerous card it must otherwise keep.
func followCard(gs *game.GameState, legal game.CardSet, lead game.Suit) game.Card {
	winning := gs.Current.Cards[0]
	for i := 1; i < gs.Current.Plays; i++ {
		if gs.Current.Cards[i].Beats(winning, lead) {
			winning = gs.Current.Cards[i]
		}
	}

	var duck game.Card
	haveDuck := false
	legal.Each(func(c game.Card) {
		if c.Beats(winning, lead) {
			return
		}
		if !haveDuck || c.Rank() < duck.Rank() {
			// Rank values grow downwards; the smaller value is the
			// higher card.
			duck = c
		}
		haveDuck = true
	})
	if haveDuck {
		return duck
	}

	if legal.Has(game.QueenOfSpades) {
		return game.QueenOfSpades
	}
	high, _ := legal.Highest(lead)
	return high
}

// discardCard sloughs the most dangerous card: the queen first, then the
// highest heart, then the highest-ranked card, ties to the earlier suit.
func discardCard(legal game.CardSet) game.Card {
	if legal.Has(game.QueenOfSpades) {
		return game.QueenOfSpades
	}
	if h, ok := legal.Highest(game.Hearts); ok {
		return h
	}
	best := legal.Lowest()
	legal.Each(func(c game.Card) {
		if c.Rank() < best.Rank() {
			best = c
		}
	})
	return best
}
