// Package communication defines the JSON wire protocol of the decision
// service. Card strings use the {rank}{suit} form ("AS", "10H", "2C"),
// rules arrive as either an integer bitmask or an object of flags, and
// every response carries a status discriminator.
package communication

import (
	"encoding/json"
	"fmt"

	"hearts/belief"
	"hearts/game"
	"hearts/searcher"
)

// TrickCardJSON is one play inside a trick.
type TrickCardJSON struct {
	Player int    `json:"player"`
	Card   string `json:"card"`
}

// TrickJSON carries a completed or in-progress trick.
type TrickJSON struct {
	LeadPlayer int             `json:"lead_player"`
	Winner     int             `json:"winner,omitempty"`
	Cards      []TrickCardJSON `json:"cards"`
}

// GameStateJSON is the observed state as consumers send it.
type GameStateJSON struct {
	PlayerHand    []string        `json:"player_hand"`
	CurrentPlayer int             `json:"current_player"`
	CurrentTrick  *TrickJSON      `json:"current_trick,omitempty"`
	TrickHistory  []TrickJSON     `json:"trick_history,omitempty"`
	PlayedCards   [][]string      `json:"played_cards,omitempty"`
	Scores        []float64       `json:"scores,omitempty"`
	HeartsBroken  bool            `json:"hearts_broken"`
	PassDirection int             `json:"pass_direction"`
	Rules         json.RawMessage `json:"rules,omitempty"`
}

// AIConfigJSON tunes the search for one request. Zero values take the
// serving defaults.
type AIConfigJSON struct {
	Simulations  int     `json:"simulations,omitempty"`
	Worlds       int     `json:"worlds,omitempty"`
	Epsilon      float64 `json:"epsilon,omitempty"`
	UseThreads   *bool   `json:"use_threads,omitempty"`
	PlayerType   string  `json:"player_type,omitempty"`
	ModelLevel   int     `json:"model_level,omitempty"`
	DecisionRule string  `json:"decision_rule,omitempty"`
}

// MoveRequest is the body of POST /api/move and /api/pass.
type MoveRequest struct {
	GameState GameStateJSON `json:"game_state"`
	AIConfig  *AIConfigJSON `json:"ai_config,omitempty"`
}

// MoveJSON is the chosen play.
type MoveJSON struct {
	Card   string `json:"card"`
	Player int    `json:"player"`
}

// PassJSON is the chosen three-card discard.
type PassJSON struct {
	Cards  []string `json:"cards"`
	Player int      `json:"player"`
}

// MoveResponse answers a successful move or pass request.
type MoveResponse struct {
	Status            string    `json:"status"`
	Move              *MoveJSON `json:"move,omitempty"`
	Pass              *PassJSON `json:"pass,omitempty"`
	Degraded          bool      `json:"degraded,omitempty"`
	ComputationTimeMS float64   `json:"computation_time_ms"`
	RequestID         string    `json:"request_id,omitempty"`
}

// ErrorResponse answers any failed request.
type ErrorResponse struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// rulesFlagsJSON is the object form of the rules field. Pointers keep
// absent flags at their serving defaults.
type rulesFlagsJSON struct {
	QueenPenalty       *bool `json:"queen_penalty,omitempty"`
	JackBonus          *bool `json:"jack_bonus,omitempty"`
	NoTrickBonus       *bool `json:"no_trick_bonus,omitempty"`
	ShootingNeedsJack  *bool `json:"shooting_needs_jack,omitempty"`
	Lead2Clubs         *bool `json:"lead_2_clubs,omitempty"`
	LeadClubs          *bool `json:"lead_clubs,omitempty"`
	NoHeartsFirstTrick *bool `json:"no_hearts_first_trick,omitempty"`
	NoQueenFirstTrick  *bool `json:"no_queen_first_trick,omitempty"`
	QueenBreaksHearts  *bool `json:"queen_breaks_hearts,omitempty"`
	DoPassCards        *bool `json:"do_pass_cards,omitempty"`
	MustBreakHearts    *bool `json:"must_break_hearts,omitempty"`
	HeartsArentPoints  *bool `json:"hearts_arent_points,omitempty"`
	NoShooting         *bool `json:"no_shooting,omitempty"`
}

// ParseRules accepts the integer bitmask form, the flag-object form, or
// nothing at all, which yields the serving defaults.
func ParseRules(raw json.RawMessage) (game.Rules, error) {
	if len(raw) == 0 {
		return game.DefaultRules, nil
	}

	var mask uint16
	if err := json.Unmarshal(raw, &mask); err == nil {
		return game.Rules(mask), nil
	}

	var flags rulesFlagsJSON
	if err := json.Unmarshal(raw, &flags); err != nil {
		return 0, fmt.Errorf("rules must be an integer mask or a flag object: %w", err)
	}

	rules := game.Rules(0)
	set := func(ptr *bool, def bool, flag game.Rules) {
		value := def
		if ptr != nil {
			value = *ptr
		}
		if value {
			rules |= flag
		}
	}
	set(flags.QueenPenalty, true, game.QueenPenalty)
	set(flags.JackBonus, false, game.JackBonus)
	set(flags.NoTrickBonus, false, game.NoTrickBonus)
	set(flags.ShootingNeedsJack, false, game.ShootingNeedsJack)
	set(flags.Lead2Clubs, false, game.Lead2Clubs)
	set(flags.LeadClubs, true, game.LeadClubs)
	set(flags.NoHeartsFirstTrick, true, game.NoHeartsFirstTrick)
	set(flags.NoQueenFirstTrick, true, game.NoQueenFirstTrick)
	set(flags.QueenBreaksHearts, true, game.QueenBreaksHearts)
	set(flags.DoPassCards, false, game.DoPassCards)
	set(flags.MustBreakHearts, true, game.MustBreakHearts)
	set(flags.HeartsArentPoints, false, game.HeartsArentPoints)
	set(flags.NoShooting, false, game.NoShooting)
	return rules, nil
}

// ToObserved converts the wire state into the core's observed state.
func (g *GameStateJSON) ToObserved() (*game.Observed, error) {
	rules, err := ParseRules(g.Rules)
	if err != nil {
		return nil, err
	}

	obs := &game.Observed{
		Rules:        rules,
		PassDir:      game.PassDirection(g.PassDirection),
		MySeat:       g.CurrentPlayer,
		HeartsBroken: g.HeartsBroken,
	}

	for _, s := range g.PlayerHand {
		c, err := game.ParseCard(s)
		if err != nil {
			return nil, fmt.Errorf("player_hand: %w", err)
		}
		obs.MyHand.Add(c)
	}

	for i, tj := range g.TrickHistory {
		t, err := tj.toTrick()
		if err != nil {
			return nil, fmt.Errorf("trick_history[%d]: %w", i, err)
		}
		t.Resolve()
		obs.History = append(obs.History, t)
	}

	if g.CurrentTrick != nil {
		t, err := g.CurrentTrick.toTrick()
		if err != nil {
			return nil, fmt.Errorf("current_trick: %w", err)
		}
		obs.Current = t
	} else {
		obs.Current = game.Trick{Lead: g.CurrentPlayer}
	}

	for seat, pile := range g.PlayedCards {
		if seat >= game.NumPlayers {
			break
		}
		for _, s := range pile {
			c, err := game.ParseCard(s)
			if err != nil {
				return nil, fmt.Errorf("played_cards[%d]: %w", seat, err)
			}
			obs.Taken[seat].Add(c)
		}
	}

	for seat, s := range g.Scores {
		if seat >= game.NumPlayers {
			break
		}
		obs.MatchScores[seat] = s
	}
	return obs, nil
}

func (t *TrickJSON) toTrick() (game.Trick, error) {
	trick := game.Trick{Lead: t.LeadPlayer}
	for _, tc := range t.Cards {
		c, err := game.ParseCard(tc.Card)
		if err != nil {
			return game.Trick{}, err
		}
		trick.AddCard(c, tc.Player)
	}
	return trick, nil
}

// ParseDecisionRule maps the wire name to the driver's rule; the empty
// string selects max_weighted.
func ParseDecisionRule(name string) (searcher.DecisionRule, error) {
	switch name {
	case "", "max_weighted":
		return searcher.MaxWeighted, nil
	case "max_average":
		return searcher.MaxAverage, nil
	case "max_avg_minus_var":
		return searcher.MaxAvgMinusVar, nil
	case "max_min":
		return searcher.MaxMin, nil
	}
	return 0, fmt.Errorf("unknown decision rule %q", name)
}

// ParseModelLevel maps the wire level to a belief level.
func ParseModelLevel(level int) (belief.Level, error) {
	switch level {
	case 0:
		return belief.Basic, nil
	case 1:
		return belief.VoidAware, nil
	case 2:
		return belief.Behavioral, nil
	}
	return 0, fmt.Errorf("unknown model level %d", level)
}

// CardStrings renders cards in wire form.
func CardStrings(cards []game.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
