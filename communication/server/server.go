// Package server exposes the decision engine over HTTP/JSON:
//
//	GET  /api/health    - liveness probe
//	POST /api/move      - compute a move with the request's AI config
//	POST /api/play-one  - compute a move with the serving defaults
//	POST /api/pass      - choose three cards to pass
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hearts/communication"
	"hearts/game"
	"hearts/player"
)

// Config sizes the serving stack.
type Config struct {
	Address  string
	Defaults player.Config
	// Deadline bounds one decision; zero disables the cutoff.
	Deadline time.Duration
}

// Server owns the engine handle (and with it the worker pool) for the
// lifetime of the process.
type Server struct {
	config Config
	engine *player.Engine
	http   *http.Server
}

// New builds a server around an engine handle. The caller keeps
// ownership of the engine and closes it after Shutdown.
func New(config Config, engine *player.Engine) *Server {
	if config.Address == "" {
		config.Address = ":8080"
	}
	s := &Server{config: config, engine: engine}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/move", s.handleMove)
	mux.HandleFunc("POST /api/play-one", s.handlePlayOne)
	mux.HandleFunc("POST /api/pass", s.handlePass)
	s.http = &http.Server{Addr: config.Address, Handler: mux}
	return s
}

// ListenAndServe blocks until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	log.Info().Msgf("decision service listening on %s", s.config.Address)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Handler exposes the routing for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Shutdown stops accepting requests and drains in-flight ones.
func (s *Server) Shutdown() error {
	return s.http.Shutdown(context.Background())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	s.serveMove(w, r, true)
}

// handlePlayOne ignores any ai_config in the request and serves with
// the process defaults.
func (s *Server) handlePlayOne(w http.ResponseWriter, r *http.Request) {
	s.serveMove(w, r, false)
}

func (s *Server) serveMove(w http.ResponseWriter, r *http.Request, applyConfig bool) {
	id := uuid.NewString()
	start := time.Now()

	obs, config, ok := s.parseRequest(w, r, id, applyConfig)
	if !ok {
		return
	}

	p := s.newPlayer(config)
	move, err := p.ChooseMove(obs)
	if err != nil {
		code := "AI_ERROR"
		status := http.StatusInternalServerError
		if errors.Is(err, game.ErrInconsistentState) {
			code = "INVALID_GAME_STATE"
			status = http.StatusBadRequest
		}
		writeError(w, status, code, err.Error(), id)
		return
	}

	elapsed := time.Since(start)
	log.Info().
		Str("request_id", id).
		Str("card", move.String()).
		Dur("elapsed", elapsed).
		Bool("degraded", p.Degraded).
		Int("failed_worlds", p.LastMetric.FailedWorlds).
		Msg("move served")

	writeJSON(w, http.StatusOK, communication.MoveResponse{
		Status:            "success",
		Move:              &communication.MoveJSON{Card: move.String(), Player: obs.MySeat},
		Degraded:          p.Degraded,
		ComputationTimeMS: float64(elapsed) / float64(time.Millisecond),
		RequestID:         id,
	})
}

func (s *Server) handlePass(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	start := time.Now()

	obs, config, ok := s.parseRequest(w, r, id, true)
	if !ok {
		return
	}
	if obs.PassDir == game.Hold {
		writeError(w, http.StatusBadRequest, "INVALID_GAME_STATE",
			"pass requested with pass_direction hold", id)
		return
	}

	p := s.newPlayer(config)
	cards, err := p.ChoosePass(obs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_GAME_STATE", err.Error(), id)
		return
	}

	elapsed := time.Since(start)
	log.Info().
		Str("request_id", id).
		Strs("cards", communication.CardStrings(cards[:])).
		Dur("elapsed", elapsed).
		Msg("pass served")

	writeJSON(w, http.StatusOK, communication.MoveResponse{
		Status:            "success",
		Pass:              &communication.PassJSON{Cards: communication.CardStrings(cards[:]), Player: obs.MySeat},
		ComputationTimeMS: float64(elapsed) / float64(time.Millisecond),
		RequestID:         id,
	})
}

func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request, id string, applyConfig bool) (*game.Observed, player.Config, bool) {
	var req communication.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error(), id)
		return nil, player.Config{}, false
	}

	obs, err := req.GameState.ToObserved()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_GAME_STATE", err.Error(), id)
		return nil, player.Config{}, false
	}

	config := s.config.Defaults
	if config.Deadline == 0 {
		config.Deadline = s.config.Deadline
	}
	if applyConfig && req.AIConfig != nil {
		if err := mergeConfig(&config, req.AIConfig); err != nil {
			writeError(w, http.StatusBadRequest, "AI_CONFIG_ERROR", err.Error(), id)
			return nil, player.Config{}, false
		}
	}
	return obs, config, true
}

func mergeConfig(config *player.Config, ai *communication.AIConfigJSON) error {
	if ai.Simulations > 0 {
		config.Simulations = ai.Simulations
	}
	if ai.Worlds > 0 {
		config.Worlds = ai.Worlds
	}
	if ai.Epsilon > 0 {
		config.Epsilon = ai.Epsilon
	}
	if ai.UseThreads != nil {
		config.UseThreads = *ai.UseThreads
	}
	if ai.ModelLevel > 0 {
		level, err := communication.ParseModelLevel(ai.ModelLevel)
		if err != nil {
			return err
		}
		config.Level = level
	}
	rule, err := communication.ParseDecisionRule(ai.DecisionRule)
	if err != nil {
		return err
	}
	config.Rule = rule
	return nil
}

func (s *Server) newPlayer(config player.Config) *player.Searcher {
	options := []player.Option{
		player.WithWorlds(config.Worlds),
		player.WithSimulations(config.Simulations),
		player.WithLevel(config.Level),
		player.WithDecisionRule(config.Rule),
		player.WithEpsilon(config.Epsilon),
		player.WithThreads(config.UseThreads),
		player.WithDeadline(config.Deadline),
	}
	return player.NewSearcher(s.engine, options...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("response encoding failed")
	}
}

func writeError(w http.ResponseWriter, status int, code, message, id string) {
	log.Warn().Str("request_id", id).Str("error_code", code).Msg(message)
	writeJSON(w, status, communication.ErrorResponse{
		Status:    "error",
		ErrorCode: code,
		Message:   message,
		RequestID: id,
	})
}
