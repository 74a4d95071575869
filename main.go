// Command hearts runs the decision service or a local simulation
// experiment.
//
//	hearts serve [config.yaml]
//	hearts simulate [rounds]
package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hearts/communication"
	"hearts/communication/server"
	"hearts/config"
	"hearts/experiments"
	"hearts/game"
	"hearts/player"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env not loaded")
	}

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "serve":
		serve()
	case "simulate":
		simulate()
	default:
		log.Fatal().Msgf("unknown command %q (want serve or simulate)", command)
	}
}

func serve() {
	path := "config.yaml"
	if len(os.Args) > 2 {
		path = os.Args[2]
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	level, err := communication.ParseModelLevel(cfg.AI.ModelLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("bad model level")
	}

	engine := player.NewEngine(cfg.AI.Workers)
	defer engine.Close()

	defaults := player.DefaultConfig()
	defaults.Worlds = cfg.AI.Worlds
	defaults.Simulations = cfg.AI.Simulations
	defaults.Epsilon = cfg.AI.Epsilon
	defaults.Level = level
	defaults.UseThreads = cfg.AI.UseThreads

	srv := server.New(server.Config{
		Address:  cfg.Server.Address,
		Defaults: defaults,
		Deadline: cfg.Server.Deadline,
	}, engine)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func simulate() {
	rounds := 10
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			log.Fatal().Msgf("bad round count %q", os.Args[2])
		}
		rounds = n
	}

	err := experiments.Run(experiments.Config{
		Rounds:  rounds,
		Workers: 0, // no pool: every search runs single-threaded
		Seed:    uint64(time.Now().UnixNano()),
		Rules:   game.DefaultRules | game.Lead2Clubs | game.DoPassCards,
		Search: []player.Option{
			player.WithSimulations(2000),
			player.WithWorlds(10),
		},
		OutDir: "experiments-out",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}
}
