package searcher

import (
	"sync/atomic"

	"golang.org/x/exp/rand"

	"hearts/game"
)

// MoveStats is the root-edge record for one candidate move in one world.
type MoveStats struct {
	Visits  int
	Rewards [game.NumPlayers]float64
}

// Mean returns the mean reward for seat across the edge's visits.
func (s MoveStats) Mean(seat int) float64 {
	if s.Visits == 0 {
		return 0
	}
	return s.Rewards[seat] / float64(s.Visits)
}

// WorldResult is everything one determinized search contributes to the
// decision.
type WorldResult struct {
	Moves    map[game.Card]MoveStats
	Weight   float64
	Episodes int
	Err      error
}

// UCT searches one concrete world. The zero value is unusable; build
// with NewUCT. A single UCT value is shared by all workers of a
// decision: it is read-only during search, and it holds the playout
// policy as the policy's sole owner.
type UCT struct {
	iterations int
	c1         float64
	c2         float64
	crossover  int
	policy     PlayoutPolicy
}

type UCTOption func(*UCT)

func WithIterations(iterations int) UCTOption {
	return func(u *UCT) {
		if iterations > 0 {
			u.iterations = iterations
		}
	}
}

// WithExploration sets the UCB1 constant for the whole search.
func WithExploration(c float64) UCTOption {
	return func(u *UCT) {
		u.c1 = c
		u.c2 = c
	}
}

// WithTwoPhaseExploration uses c1 until the root has seen crossover
// visits, then c2.
func WithTwoPhaseExploration(c1, c2 float64, crossover int) UCTOption {
	return func(u *UCT) {
		u.c1 = c1
		u.c2 = c2
		u.crossover = crossover
	}
}

func WithPolicy(policy PlayoutPolicy) UCTOption {
	return func(u *UCT) {
		if policy != nil {
			u.policy = policy
		}
	}
}

// DefaultExploration suits rewards on the negated-score scale.
const DefaultExploration = 8.0

func NewUCT(options ...UCTOption) *UCT {
	u := &UCT{
		c1:     DefaultExploration,
		c2:     DefaultExploration,
		policy: GreedyPolicy{Epsilon: 0.1},
	}
	for _, option := range options {
		option(u)
	}
	if u.iterations <= 0 {
		panic("Must specify search iterations")
	}
	return u
}

// Search runs the configured number of iterations from gs and returns
// the root-edge statistics. The caller owns gs; Search mutates copies
// only. cancel is polled between iterations: a cancelled search returns
// whatever it has accumulated.
func (u *UCT) Search(gs *game.GameState, weight float64, rng *rand.Rand, cancel *atomic.Bool) WorldResult {
	root := newNode(gs)
	result := WorldResult{Weight: weight}
	if root.terminal {
		result.Moves = map[game.Card]MoveStats{}
		return result
	}

	path := make([]int, 0, 64)
	nodes := make([]*node, 0, 64)
	buf := make([]game.Card, 0, 13)

	for i := 0; i < u.iterations; i++ {
		if cancel != nil && cancel.Load() {
			break
		}

		sim := gs.Copy()
		nodes = append(nodes[:0], root)
		path = path[:0]

		// Selection: walk UCB1 picks until a node with an unvisited
		// edge; that first visit is the expansion.
		expanded := false
		for !expanded {
			n := nodes[len(nodes)-1]
			if n.terminal {
				break
			}
			idx := n.selectChild(u.exploration(root))
			path = append(path, idx)
			sim.Apply(n.moves[idx])
			child := n.children[idx]
			if child == nil {
				child = newNode(sim)
				n.children[idx] = child
				expanded = true
			}
			nodes = append(nodes, child)
		}

		// Simulation from the frontier to terminal.
		for !sim.IsTerminal() {
			sim.Apply(u.policy.Pick(sim, buf, rng))
		}

		// Lower score is better: reward is the negated round score.
		var rewards [game.NumPlayers]float64
		for p := 0; p < game.NumPlayers; p++ {
			rewards[p] = -sim.Score(p)
		}

		for d := len(path) - 1; d >= 0; d-- {
			nodes[d].update(path[d], rewards)
		}
		result.Episodes++
	}

	result.Moves = make(map[game.Card]MoveStats, len(root.moves))
	for i, m := range root.moves {
		result.Moves[m] = MoveStats{Visits: root.visits[i], Rewards: root.rewards[i]}
	}
	return result
}

func (u *UCT) exploration(root *node) float64 {
	if root.total < u.crossover {
		return u.c1
	}
	return u.c2
}
