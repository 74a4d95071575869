// Package experiments pits the search player against rule-based
// baselines over many rounds and records how it behaves.
package experiments

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"hearts/experiments/metrics"
	"hearts/game"
	"hearts/gamemaster"
	"hearts/player"
)

// Config sizes one experiment run.
type Config struct {
	Rounds  int
	Workers int
	Seed    uint64
	Rules   game.Rules
	Search  []player.Option
	OutDir  string // empty disables metrics collection and CSV output
}

// passRotation is the conventional left, right, across, hold cycle.
var passRotation = []game.PassDirection{game.Left, game.Right, game.Across, game.Hold}

// Run plays the configured number of rounds with the search player in
// seat 0 and Duckers elsewhere, then writes the collected metrics.
func Run(config Config) error {
	if config.Rounds <= 0 {
		panic("Must specify experiment rounds")
	}

	engine := player.NewEngine(config.Workers)
	defer engine.Close()

	collector := metrics.NewCollector()
	if config.OutDir == "" {
		collector = metrics.NewDummyCollector()
	}
	ai := player.NewSearcher(engine, config.Search...)
	seat0 := &recordingPlayer{inner: ai, collector: collector}

	rng := rand.New(rand.NewSource(config.Seed))
	master := gamemaster.NewLocal(config.Rules, [game.NumPlayers]player.Player{
		seat0, player.Ducker{}, player.Ducker{}, player.Ducker{},
	}, rng)

	for round := 0; round < config.Rounds; round++ {
		seat0.round = round
		passDir := game.Hold
		if config.Rules.Has(game.DoPassCards) {
			passDir = passRotation[round%len(passRotation)]
		}

		start := time.Now()
		scores, err := master.PlayRound(passDir)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		collector.AddRound(metrics.RoundMetric{
			Round:    round,
			Scores:   scores,
			Duration: time.Since(start),
		})
		log.Info().Int("round", round).Floats64("scores", scores[:]).Msg("round complete")
	}

	log.Info().Msgf("experiment over: match scores %v", master.MatchScores)

	if config.OutDir == "" {
		return nil
	}
	writer, err := metrics.NewWriter(config.OutDir)
	if err != nil {
		return err
	}
	if err := writer.WriteDecisions(collector.Decisions()); err != nil {
		return err
	}
	if err := writer.WriteRounds(collector.Rounds()); err != nil {
		return err
	}
	log.Info().Msgf("metrics written to %s", writer.Dir())
	return nil
}

// recordingPlayer wraps the search player and logs every decision it
// makes into the collector.
type recordingPlayer struct {
	inner     *player.Searcher
	collector metrics.Collector
	round     int
}

func (r *recordingPlayer) ChooseMove(obs *game.Observed) (game.Card, error) {
	card, err := r.inner.ChooseMove(obs)
	if err != nil {
		return 0, err
	}
	r.collector.AddDecision(metrics.DecisionMetric{
		Round:    r.round,
		Trick:    len(obs.History),
		Seat:     obs.MySeat,
		Card:     card.String(),
		Metric:   r.inner.LastMetric,
		Degraded: r.inner.Degraded,
	})
	return card, nil
}

func (r *recordingPlayer) ChoosePass(obs *game.Observed) ([3]game.Card, error) {
	return r.inner.ChoosePass(obs)
}
