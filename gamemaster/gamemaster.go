// Package gamemaster runs complete local rounds of Hearts: dealing,
// passing, thirteen tricks and scoring. Experiments and integration
// tests drive AI and baseline players head to head through it.
package gamemaster

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"hearts/game"
	"hearts/player"
)

// Local orchestrates rounds between four in-process players.
type Local struct {
	rules   game.Rules
	players [game.NumPlayers]player.Player
	rng     *rand.Rand

	// MatchScores accumulates round scores across PlayRound calls.
	MatchScores [game.NumPlayers]float64
}

// NewLocal builds a gamemaster over the four players, seat order 0..3.
func NewLocal(rules game.Rules, players [game.NumPlayers]player.Player, rng *rand.Rand) *Local {
	for seat, p := range players {
		if p == nil {
			panic(fmt.Sprintf("seat %d has no player", seat))
		}
	}
	return &Local{rules: rules, players: players, rng: rng}
}

// PlayRound deals a fresh round, runs the pass (when the direction and
// rules call for one) and all thirteen tricks, then returns the round
// scores and adds them to MatchScores.
func (l *Local) PlayRound(passDir game.PassDirection) ([game.NumPlayers]float64, error) {
	gs := game.NewGameState(l.rules, passDir)
	gs.Deal(l.rng)

	var passed, received [game.NumPlayers][3]game.Card
	didPass := gs.Phase == game.PassingPhase
	if didPass {
		var commits [game.NumPlayers][3]game.Card
		for seat := 0; seat < game.NumPlayers; seat++ {
			obs := l.observedFor(gs, seat, passed, received, false)
			cards, err := l.passerFor(seat).ChoosePass(obs)
			if err != nil {
				return [game.NumPlayers]float64{}, fmt.Errorf("seat %d pass: %w", seat, err)
			}
			commits[seat] = cards
		}
		gs.ApplyPass(commits)
		passed = commits
		for seat := 0; seat < game.NumPlayers; seat++ {
			received[seat] = commits[passDir.Giver(seat)]
		}
	}

	for !gs.IsTerminal() {
		seat := gs.CurrentPlayer
		obs := l.observedFor(gs, seat, passed, received, didPass)
		move, err := l.players[seat].ChooseMove(obs)
		if err != nil {
			return [game.NumPlayers]float64{}, fmt.Errorf("seat %d move: %w", seat, err)
		}
		if !legalIn(gs, move) {
			return [game.NumPlayers]float64{}, fmt.Errorf("seat %d played illegal card %v", seat, move)
		}
		gs.Apply(move)
	}

	scores := gs.Scores()
	for seat, s := range scores {
		l.MatchScores[seat] += s
	}
	log.Info().Msgf("round over: scores %v", scores)
	return scores, nil
}

// passerFor returns the seat's pass strategy; players without one pass
// their highest cards like the Ducker.
func (l *Local) passerFor(seat int) player.Passer {
	if p, ok := l.players[seat].(player.Passer); ok {
		return p
	}
	return player.Ducker{}
}

// observedFor projects the full state down to what seat may see.
func (l *Local) observedFor(gs *game.GameState, seat int, passed, received [game.NumPlayers][3]game.Card, didPass bool) *game.Observed {
	obs := &game.Observed{
		Rules:        gs.Rules,
		PassDir:      gs.PassDir,
		MySeat:       seat,
		MyHand:       gs.Hands[seat],
		History:      append([]game.Trick(nil), gs.History...),
		Current:      gs.Current,
		Taken:        gs.Taken,
		MatchScores:  l.MatchScores,
		HeartsBroken: gs.HeartsBroken,
	}
	if didPass {
		obs.Passed = passed[seat]
		obs.HasPassed = true
		obs.Received = received[seat]
		obs.HasReceived = true
	}
	return obs
}

func legalIn(gs *game.GameState, move game.Card) bool {
	buf := make([]game.Card, 0, 13)
	for _, c := range gs.LegalMoves(buf) {
		if c == move {
			return true
		}
	}
	return false
}
