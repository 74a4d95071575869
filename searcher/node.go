package searcher

import (
	"math"

	"hearts/game"
)

// node is one position in a single world's search tree. A tree belongs
// to exactly one worker, so nodes carry no locks. Per-edge statistics
// live on the parent: rewards is a per-seat running sum for the edge to
// each child.
type node struct {
	seat     int // seat to act
	moves    []game.Card
	children []*node
	visits   []int
	rewards  [][game.NumPlayers]float64
	total    int // visits through this node
	terminal bool
}

func newNode(gs *game.GameState) *node {
	n := &node{seat: gs.CurrentPlayer}
	buf := make([]game.Card, 0, 13)
	moves := gs.LegalMoves(buf)
	if len(moves) == 0 {
		n.terminal = true
		return n
	}
	n.moves = append(make([]game.Card, 0, len(moves)), moves...)
	n.children = make([]*node, len(moves))
	n.visits = make([]int, len(moves))
	n.rewards = make([][game.NumPlayers]float64, len(moves))
	return n
}

// selectChild returns the index of the move maximising UCB1 for the
// acting seat. Unvisited children have infinite priority and are taken
// in move order.
func (n *node) selectChild(c float64) int {
	for i, v := range n.visits {
		if v == 0 {
			return i
		}
	}
	if n.total == 0 {
		panic("selectChild on unvisited node")
	}
	numerator := c * c * math.Log(float64(n.total))

	best := -1
	bestScore := math.Inf(-1)
	for i := range n.moves {
		mean := n.rewards[i][n.seat] / float64(n.visits[i])
		score := mean + math.Sqrt(numerator/float64(n.visits[i]))
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// update records one visit through edge i with the given per-seat
// rewards.
func (n *node) update(i int, rewards [game.NumPlayers]float64) {
	n.total++
	n.visits[i]++
	for p := 0; p < game.NumPlayers; p++ {
		n.rewards[i][p] += rewards[p]
	}
}
