package belief

import (
	"golang.org/x/exp/rand"

	"hearts/game"
)

// maxAttempts bounds the constrained sampling retries before falling back
// to the basic level, which guarantees termination.
const maxAttempts = 20

// World is one determinization: a full assignment of the hidden cards.
type World struct {
	Hands  [game.NumPlayers]game.CardSet
	Weight float64
}

// SampleWorld draws one hand assignment consistent with the belief. The
// weight is the likelihood of the draw under the behavioral prior; it is
// 1 at the basic and void-aware levels, where worlds count equally.
func (b *Belief) SampleWorld(rng *rand.Rand) (World, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if w, ok := b.trySample(rng); ok {
			return w, nil
		}
	}
	if b.level > Basic {
		basic := b.Downgrade()
		for attempt := 0; attempt < maxAttempts; attempt++ {
			if w, ok := basic.trySample(rng); ok {
				return w, nil
			}
		}
	}
	return World{}, ErrInconsistentBelief
}

func (b *Belief) trySample(rng *rand.Rand) (World, bool) {
	w := World{Weight: 1}
	w.Hands[b.viewer] = b.possible[b.viewer]

	var capacity [game.NumPlayers]int
	for p := 0; p < game.NumPlayers; p++ {
		if p != b.viewer {
			capacity[p] = b.handSize[p]
		}
	}

	for _, suit := range b.suitOrder() {
		if !b.assignSuit(suit, &w, &capacity, rng) {
			return World{}, false
		}
	}

	for p := 0; p < game.NumPlayers; p++ {
		if capacity[p] != 0 {
			return World{}, false
		}
	}
	return w, true
}

// suitOrder sorts suits most-constrained first: fewest eligible seats,
// then most cards to place.
func (b *Belief) suitOrder() [game.NumSuits]game.Suit {
	order := [game.NumSuits]game.Suit{game.Spades, game.Diamonds, game.Clubs, game.Hearts}
	key := func(s game.Suit) int {
		eligible := 0
		for p := 0; p < game.NumPlayers; p++ {
			if p != b.viewer && b.possible[p].HasSuit(s) {
				eligible++
			}
		}
		// Fewer eligible seats and more cards both mean tighter.
		return eligible*64 - b.hidden.SuitCount(s)
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && key(order[j]) < key(order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

// assignSuit places every hidden card of one suit. Cards pinned to a
// single seat (pass memory) go first; the rest are split across the
// non-void seats by a draw-without-replacement weighted by remaining
// capacities, then dealt per seat.
func (b *Belief) assignSuit(suit game.Suit, w *World, capacity *[game.NumPlayers]int, rng *rand.Rand) bool {
	var free []game.Card
	buf := make([]game.Card, 0, game.NumRanks)
	for _, c := range b.hidden.OfSuit(suit).Cards(buf) {
		holders := b.holders(c)
		switch len(holders) {
		case 0:
			return false
		case 1:
			p := holders[0]
			if capacity[p] == 0 {
				return false
			}
			w.Hands[p].Add(c)
			capacity[p]--
		default:
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return true
	}

	var eligible []int
	for p := 0; p < game.NumPlayers; p++ {
		if p != b.viewer && b.possible[p].HasSuit(suit) {
			eligible = append(eligible, p)
		}
	}

	split, prob, ok := b.drawSplit(suit, len(free), eligible, capacity, rng)
	if !ok {
		return false
	}
	if b.level >= Behavioral {
		w.Weight *= prob
	}

	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	idx := 0
	for i, p := range eligible {
		for k := 0; k < split[i]; k++ {
			c := b.pickCard(p, free[idx:], rng)
			// Swap the chosen card into position idx.
			for j := idx; j < len(free); j++ {
				if free[j] == c {
					free[idx], free[j] = free[j], free[idx]
					break
				}
			}
			w.Hands[p].Add(free[idx])
			idx++
		}
		capacity[p] -= split[i]
	}
	return true
}

// drawSplit chooses how many of n cards each eligible seat receives,
// weighted by the number of ways each split can happen given remaining
// capacities and by the seats' mean priors. Returns the split and its
// normalized probability.
func (b *Belief) drawSplit(suit game.Suit, n int, eligible []int, capacity *[game.NumPlayers]int, rng *rand.Rand) ([]int, float64, bool) {
	var splits [][]int
	var weights []float64
	total := 0.0

	var walk func(i, left int, acc []int, weight float64)
	walk = func(i, left int, acc []int, weight float64) {
		if i == len(eligible)-1 {
			p := eligible[i]
			if left > capacity[p] {
				return
			}
			wgt := weight * binomial(capacity[p], left) * b.seatFactor(p, suit, left)
			if wgt <= 0 {
				return
			}
			split := append(append([]int{}, acc...), left)
			splits = append(splits, split)
			weights = append(weights, wgt)
			total += wgt
			return
		}
		p := eligible[i]
		max := capacity[p]
		if left < max {
			max = left
		}
		for k := 0; k <= max; k++ {
			walk(i+1, left-k, append(acc, k), weight*binomial(capacity[p], k)*b.seatFactor(p, suit, k))
		}
	}
	walk(0, n, nil, 1)

	if total == 0 {
		return nil, 0, false
	}
	r := rng.Float64() * total
	for i, wgt := range weights {
		r -= wgt
		if r <= 0 {
			return splits[i], wgt / total, true
		}
	}
	return splits[len(splits)-1], weights[len(weights)-1] / total, true
}

// seatFactor folds the behavioral prior into a split weight as the seat's
// mean card prior in the suit raised to the number of cards drawn.
func (b *Belief) seatFactor(p int, suit game.Suit, k int) float64 {
	if b.level < Behavioral || k == 0 {
		return 1
	}
	sum, n := 0.0, 0
	b.possible[p].OfSuit(suit).Each(func(c game.Card) {
		sum += b.prior[p][c]
		n++
	})
	if n == 0 {
		return 1
	}
	mean := sum / float64(n)
	f := 1.0
	for i := 0; i < k; i++ {
		f *= mean
	}
	return f
}

// pickCard selects one card for seat p from candidates, weighted by the
// behavioral prior (uniform below that level).
func (b *Belief) pickCard(p int, candidates []game.Card, rng *rand.Rand) game.Card {
	if b.level < Behavioral || len(candidates) == 1 {
		return candidates[0] // candidates arrive pre-shuffled
	}
	total := 0.0
	for _, c := range candidates {
		total += b.prior[p][c]
	}
	r := rng.Float64() * total
	for _, c := range candidates {
		r -= b.prior[p][c]
		if r <= 0 {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

// holders lists the seats that may hold c.
func (b *Belief) holders(c game.Card) []int {
	var out []int
	for p := 0; p < game.NumPlayers; p++ {
		if p != b.viewer && b.possible[p].Has(c) {
			out = append(out, p)
		}
	}
	return out
}
