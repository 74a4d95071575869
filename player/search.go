package player

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"hearts/belief"
	"hearts/game"
	"hearts/searcher"
)

// Searcher is the IS-MCTS player: it samples worlds from a belief over
// the hidden hands, searches each, and plays the aggregated best card.
// When the search cannot produce a trustworthy answer it degrades to
// the Ducker's card rather than fail the decision.
type Searcher struct {
	engine   *Engine
	config   Config
	fallback Ducker

	// Degraded reports whether the last decision fell back to the
	// rule-based move.
	Degraded bool
	// LastMetric records the search statistics of the last decision.
	LastMetric searcher.Metric
}

// NewSearcher builds a search player on the engine's pool. engine may
// be nil for a purely single-threaded player.
func NewSearcher(engine *Engine, options ...Option) *Searcher {
	config := DefaultConfig()
	for _, option := range options {
		option(&config)
	}
	return &Searcher{engine: engine, config: config}
}

// ChooseMove implements the decision contract: validate, short-circuit
// single legal moves, otherwise sample and search. The returned card is
// always legal in obs.
func (s *Searcher) ChooseMove(obs *game.Observed) (game.Card, error) {
	s.Degraded = false
	s.LastMetric = searcher.Metric{}

	if err := obs.Validate(); err != nil {
		return 0, err
	}

	buf := make([]game.Card, 0, 13)
	legal := obs.LegalMoves(buf)
	if len(legal) == 1 {
		return legal[0], nil
	}

	bel, err := s.buildBelief(obs)
	if err != nil {
		return 0, err
	}

	driver := s.newDriver()
	if s.config.Deadline > 0 {
		timer := time.AfterFunc(s.config.Deadline, driver.Cancel)
		defer timer.Stop()
	}

	move, metric, err := driver.Analyze(obs, bel)
	s.LastMetric = metric
	if err != nil {
		if !errors.Is(err, searcher.ErrInsufficientWorlds) {
			return 0, err
		}
		log.Warn().Err(err).Msg("search degraded, playing fallback card")
		s.Degraded = true
		return s.fallback.ChooseMove(obs)
	}
	return move, nil
}

// buildBelief constructs the opponent model at the configured level,
// widening to the basic level when the richer observations turn out to
// be contradictory.
func (s *Searcher) buildBelief(obs *game.Observed) (*belief.Belief, error) {
	bel, err := belief.New(obs, s.config.Level)
	if err == nil {
		return bel, nil
	}
	if !errors.Is(err, belief.ErrInconsistentBelief) || s.config.Level == belief.Basic {
		return nil, err
	}
	log.Warn().Err(err).Msg("belief inconsistent, downgrading to basic")
	return belief.New(obs, belief.Basic)
}

func (s *Searcher) newDriver() *searcher.Driver {
	uct := searcher.NewUCT(
		searcher.WithIterations(s.config.PerWorld()),
		searcher.WithTwoPhaseExploration(s.config.C1, s.config.C2, s.config.Crossover),
		searcher.WithPolicy(searcher.GreedyPolicy{Epsilon: s.config.Epsilon}),
	)

	options := []searcher.DriverOption{
		searcher.WithWorlds(s.config.Worlds),
		searcher.WithDecisionRule(s.config.Rule),
	}
	if s.config.Seed != 0 {
		options = append(options, searcher.WithSeed(s.config.Seed))
	}
	if s.config.UseThreads && s.engine != nil && s.engine.pool != nil {
		options = append(options, searcher.WithPool(s.engine.pool))
	}
	return searcher.NewDriver(uct, options...)
}

// ChoosePass selects three discards by hand-shape heuristics: void the
// short minor suits, shed the queen and naked spade honours, then the
// highest remaining cards. The search core is not consulted; passing
// happens before any trick information exists.
func (s *Searcher) ChoosePass(obs *game.Observed) ([3]game.Card, error) {
	var out [3]game.Card
	if obs.MyHand.Count() < 3 {
		return out, game.ErrInconsistentState
	}

	rest := obs.MyHand
	for i := 0; i < 3; i++ {
		c := passCandidate(rest)
		out[i] = c
		rest.Remove(c)
	}
	return out, nil
}

// passCandidate scores every card and returns the most passable one.
func passCandidate(hand game.CardSet) game.Card {
	best := hand.Lowest()
	bestScore := -1.0
	hand.Each(func(c game.Card) {
		score := passScore(hand, c)
		if score > bestScore {
			best = c
			bestScore = score
		}
	})
	return best
}

func passScore(hand game.CardSet, c game.Card) float64 {
	// Height within the suit: aces score 12, twos 0.
	score := float64(int(game.NumRanks) - 1 - int(c.Rank()))

	suitLen := hand.SuitCount(c.Suit())
	switch {
	case c == game.QueenOfSpades && suitLen <= 3:
		// A short queen is a trap; a guarded one can be kept.
		score += 30
	case c.Suit() == game.Spades && c.Rank() <= game.King && suitLen <= 3:
		score += 20
	case c.Suit() == game.Hearts && c.Rank() <= game.Queen:
		score += 8
	}

	// Voiding a short side suit buys future discards.
	if c.Suit() != game.Spades && c.Suit() != game.Hearts && suitLen <= 2 {
		score += 6
	}
	return score
}
