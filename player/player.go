// Package player holds the decision-engine facade and the rule-based
// baseline players. The facade is the single entry point consumers use:
// given an observed game state and a configuration, return a card in
// bounded time.
package player

import (
	"golang.org/x/exp/rand"

	"hearts/game"
)

// Player chooses moves from observed states. Implementations must not
// retain obs across calls.
type Player interface {
	ChooseMove(obs *game.Observed) (game.Card, error)
}

// Passer additionally selects the three cards to give away during the
// passing phase.
type Passer interface {
	ChoosePass(obs *game.Observed) ([3]game.Card, error)
}

// Ducker leads its lowest card, follows with the highest card that still
// loses the trick (its most dangerous card when every follow wins), and
// throws its most dangerous card when it cannot follow.
// It is the fallback when the search degrades, and the baseline
// opponent in experiments.
type Ducker struct{}

func (Ducker) ChooseMove(obs *game.Observed) (game.Card, error) {
	if err := obs.Validate(); err != nil {
		return 0, err
	}
	buf := make([]game.Card, 0, 13)
	moves := obs.LegalMoves(buf)
	if len(moves) == 1 {
		return moves[0], nil
	}
	var legal game.CardSet
	for _, c := range moves {
		legal.Add(c)
	}

	if obs.Current.Plays == 0 {
		return lowestOf(legal), nil
	}
	lead := obs.Current.LeadSuit()
	if moves[0].Suit() == lead {
		return duckOrDump(obs, legal, lead), nil
	}
	return dumpCard(legal), nil
}

// ChoosePass gives away the hand's biggest liabilities: the queen and
// high spades first, then the highest remaining cards.
func (Ducker) ChoosePass(obs *game.Observed) ([3]game.Card, error) {
	return passHighest(obs.MyHand), nil
}

// Shooter tries to take every point: it leads high, wins tricks it can
// win, and keeps its hearts. Useful as a stress opponent; shooting the
// moon on purpose is beyond a rule-based player.
type Shooter struct{}

func (Shooter) ChooseMove(obs *game.Observed) (game.Card, error) {
	if err := obs.Validate(); err != nil {
		return 0, err
	}
	buf := make([]game.Card, 0, 13)
	moves := obs.LegalMoves(buf)
	if len(moves) == 1 {
		return moves[0], nil
	}
	var legal game.CardSet
	for _, c := range moves {
		legal.Add(c)
	}

	if obs.Current.Plays == 0 {
		return highestOf(legal), nil
	}
	lead := obs.Current.LeadSuit()
	if moves[0].Suit() == lead {
		if h, ok := legal.Highest(lead); ok {
			return h, nil
		}
	}
	// Discarding never wins the trick; shed the lowest card.
	return lowestOf(legal), nil
}

func (Shooter) ChoosePass(obs *game.Observed) ([3]game.Card, error) {
	// Keep the high cards; pass the three lowest.
	var out [3]game.Card
	rest := obs.MyHand
	for i := 0; i < 3; i++ {
		c := lowestOf(rest)
		out[i] = c
		rest.Remove(c)
	}
	return out, nil
}

// Uniform plays a uniformly random legal card; experiments use it as
// the weakest baseline.
type Uniform struct {
	Rng *rand.Rand
}

func (u Uniform) ChooseMove(obs *game.Observed) (game.Card, error) {
	if err := obs.Validate(); err != nil {
		return 0, err
	}
	buf := make([]game.Card, 0, 13)
	moves := obs.LegalMoves(buf)
	return moves[u.Rng.Intn(len(moves))], nil
}

func (u Uniform) ChoosePass(obs *game.Observed) ([3]game.Card, error) {
	var out [3]game.Card
	buf := make([]game.Card, 0, 13)
	cards := obs.MyHand.Cards(buf)
	u.Rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	copy(out[:], cards[:3])
	return out, nil
}

// lowestOf returns the lowest-ranked card, ties to the earlier suit.
func lowestOf(set game.CardSet) game.Card {
	best := set.Lowest()
	set.Each(func(c game.Card) {
		if c.Rank() > best.Rank() {
			best = c
		}
	})
	return best
}

// highestOf returns the highest-ranked card, ties to the earlier suit.
func highestOf(set game.CardSet) game.Card {
	best := set.Lowest()
	set.Each(func(c game.Card) {
		if c.Rank() < best.Rank() {
			best = c
		}
	})
	return best
}

// duckOrDump follows under the current winner when it can, and takes
// with its most dangerous lead-suit card when it must.
func duckOrDump(obs *game.Observed, legal game.CardSet, lead game.Suit) game.Card {
	winning := obs.Current.Cards[0]
	for i := 1; i < obs.Current.Plays; i++ {
		if obs.Current.Cards[i].Beats(winning, lead) {
			winning = obs.Current.Cards[i]
		}
	}
	var duck game.Card
	haveDuck := false
	legal.Each(func(c game.Card) {
		if c.Beats(winning, lead) {
			return
		}
		if !haveDuck || c.Rank() < duck.Rank() {
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
	h, _ := legal.Highest(lead)
	return h
}

// dumpCard sloughs the most dangerous card when off lead.
func dumpCard(legal game.CardSet) game.Card {
	if legal.Has(game.QueenOfSpades) {
		return game.QueenOfSpades
	}
	if h, ok := legal.Highest(game.Hearts); ok {
		return h
	}
	return highestOf(legal)
}

// passHighest picks the queen and the highest remaining cards, spades
// weighted first so dangerous spade honours leave the hand.
func passHighest(hand game.CardSet) [3]game.Card {
	var out [3]game.Card
	rest := hand
	pick := func() game.Card {
		if rest.Has(game.QueenOfSpades) {
			return game.QueenOfSpades
		}
		for _, c := range []game.Card{game.NewCard(game.Spades, game.Ace), game.NewCard(game.Spades, game.King)} {
			if rest.Has(c) {
				return c
			}
		}
		return highestOf(rest)
	}
	for i := 0; i < 3; i++ {
		c := pick()
		out[i] = c
		rest.Remove(c)
	}
	return out
}
