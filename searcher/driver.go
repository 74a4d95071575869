package searcher

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"hearts/belief"
	"hearts/game"
	"hearts/pool"
)

// ErrInsufficientWorlds reports that more than half of a decision's
// world searches failed; the caller falls back to a rule-based move.
var ErrInsufficientWorlds = errors.New("insufficient worlds")

// DecisionRule selects how per-world statistics combine into one score
// per root move.
type DecisionRule int

const (
	// MaxWeighted weighs each world by its sample weight times the
	// move's visit count and maximises the weighted mean reward.
	MaxWeighted DecisionRule = iota
	// MaxAverage maximises the plain mean reward across worlds.
	MaxAverage
	// MaxAvgMinusVar maximises mean minus lambda times variance,
	// preferring moves that do well consistently.
	MaxAvgMinusVar
	// MaxMin maximises the worst per-world mean, the pessimist's rule.
	MaxMin
)

func (r DecisionRule) String() string {
	switch r {
	case MaxWeighted:
		return "max_weighted"
	case MaxAverage:
		return "max_average"
	case MaxAvgMinusVar:
		return "max_avg_minus_var"
	case MaxMin:
		return "max_min"
	}
	return fmt.Sprintf("DecisionRule(%d)", int(r))
}

// Driver runs one UCT search per sampled world and aggregates the
// root-edge statistics into a single move. The driver exclusively owns
// its child UCT; the UCT owns the playout policy.
type Driver struct {
	uct    *UCT
	worlds int
	rule   DecisionRule
	lambda float64
	seed   uint64
	pool   *pool.Pool // nil means run worlds inline, in order

	cancel atomic.Bool
}

type DriverOption func(*Driver)

func WithWorlds(worlds int) DriverOption {
	return func(d *Driver) {
		if worlds > 0 {
			d.worlds = worlds
		}
	}
}

func WithDecisionRule(rule DecisionRule) DriverOption {
	return func(d *Driver) { d.rule = rule }
}

// WithVarianceLambda sets the variance penalty used by MaxAvgMinusVar.
func WithVarianceLambda(lambda float64) DriverOption {
	return func(d *Driver) { d.lambda = lambda }
}

func WithSeed(seed uint64) DriverOption {
	return func(d *Driver) { d.seed = seed }
}

// WithPool runs world searches on the given pool. Without it the driver
// is single-threaded and fully deterministic under a fixed seed.
func WithPool(p *pool.Pool) DriverOption {
	return func(d *Driver) { d.pool = p }
}

func NewDriver(uct *UCT, options ...DriverOption) *Driver {
	if uct == nil {
		panic("Must provide a UCT search")
	}
	d := &Driver{
		uct:    uct,
		worlds: 30,
		rule:   MaxWeighted,
		lambda: 1.0,
		seed:   uint64(time.Now().UnixNano()),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Cancel makes every outstanding world search return its partial
// statistics before its next iteration. Safe from any goroutine.
func (d *Driver) Cancel() {
	d.cancel.Store(true)
}

// Metric summarises one decision for the experiment collectors.
type Metric struct {
	Worlds       int
	FailedWorlds int
	Episodes     int
	Duration     time.Duration
	Cancelled    bool
}

// Analyze samples worlds from bel, searches each, and returns the best
// move for the observed seat among the observed legal moves.
func (d *Driver) Analyze(obs *game.Observed, bel *belief.Belief) (game.Card, Metric, error) {
	start := time.Now()
	d.cancel.Store(false)

	buf := make([]game.Card, 0, 13)
	legal := obs.LegalMoves(buf)
	if len(legal) == 0 {
		panic("Analyze on a terminal state")
	}

	results := make(chan WorldResult, d.worlds)
	for w := 0; w < d.worlds; w++ {
		seed := d.seed + uint64(w)
		task := func() {
			results <- d.searchWorld(obs, bel, seed)
		}
		if d.pool != nil {
			d.pool.Submit(task)
		} else {
			task()
		}
	}

	metric := Metric{Worlds: d.worlds}
	collected := make([]WorldResult, 0, d.worlds)
	for w := 0; w < d.worlds; w++ {
		r := <-results
		if r.Err != nil {
			metric.FailedWorlds++
			log.Warn().Err(r.Err).Msg("world search failed")
			continue
		}
		metric.Episodes += r.Episodes
		collected = append(collected, r)
	}
	metric.Duration = time.Since(start)
	metric.Cancelled = d.cancel.Load()

	if 2*metric.FailedWorlds > d.worlds {
		return 0, metric, fmt.Errorf("%w: %d of %d failed",
			ErrInsufficientWorlds, metric.FailedWorlds, d.worlds)
	}

	move := d.aggregate(legal, collected, obs.MySeat)
	return move, metric, nil
}

// searchWorld draws one determinization and runs the UCT on it. The
// worker owns its world and rng; nothing here is shared.
func (d *Driver) searchWorld(obs *game.Observed, bel *belief.Belief, seed uint64) WorldResult {
	rng := rand.New(rand.NewSource(seed))
	world, err := bel.SampleWorld(rng)
	if err != nil {
		return WorldResult{Err: err}
	}
	gs := obs.ToState(world.Hands)
	return d.uct.Search(gs, world.Weight, rng, &d.cancel)
}

// aggregate combines world results into one choice among the observed
// legal moves. Ties break by higher total visits, then lowest card.
func (d *Driver) aggregate(legal []game.Card, results []WorldResult, seat int) game.Card {
	best := legal[0]
	bestScore := math.Inf(-1)
	bestVisits := -1

	for _, move := range legal {
		score, visits, ok := d.scoreMove(move, results, seat)
		if !ok {
			continue
		}
		better := score > bestScore ||
			(score == bestScore && visits > bestVisits) ||
			(score == bestScore && visits == bestVisits && lowerCard(move, best))
		if better {
			best = move
			bestScore = score
			bestVisits = visits
		}
	}
	return best
}

// lowerCard orders suit first, then rank low to high.
func lowerCard(a, b game.Card) bool {
	if a.Suit() != b.Suit() {
		return a.Suit() < b.Suit()
	}
	return a.Rank() > b.Rank()
}

// scoreMove computes the aggregation rule for one move. ok is false
// when no world accumulated a visit on the move.
func (d *Driver) scoreMove(move game.Card, results []WorldResult, seat int) (float64, int, bool) {
	means := make([]float64, 0, len(results))
	weights := make([]float64, 0, len(results))
	visits := 0
	for _, r := range results {
		s, ok := r.Moves[move]
		if !ok || s.Visits == 0 {
			continue
		}
		means = append(means, s.Mean(seat))
		weights = append(weights, r.Weight*float64(s.Visits))
		visits += s.Visits
	}
	if len(means) == 0 {
		return 0, 0, false
	}

	switch d.rule {
	case MaxWeighted:
		num, den := 0.0, 0.0
		for i, m := range means {
			num += weights[i] * m
			den += weights[i]
		}
		if den == 0 {
			return 0, 0, false
		}
		return num / den, visits, true
	case MaxAverage:
		return mean(means), visits, true
	case MaxAvgMinusVar:
		mu := mean(means)
		return mu - d.lambda*variance(means, mu), visits, true
	case MaxMin:
		worst := means[0]
		for _, m := range means[1:] {
			if m < worst {
				worst = m
			}
		}
		return worst, visits, true
	}
	panic(fmt.Sprintf("unknown decision rule %d", int(d.rule)))
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func variance(xs []float64, mu float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - mu
		sum += d * d
	}
	return sum / float64(len(xs))
}
