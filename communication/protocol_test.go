package communication

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"hearts/belief"
	"hearts/game"
	"hearts/searcher"
)

/**
Protocol tests pin the wire formats down: the two accepted shapes of
the rules field and their defaults, the enum mappings for decision
rules and model levels, and the conversion of a full wire state into a
consistent observed state.
*/

func mustCard(t *testing.T, name string) game.Card {
	t.Helper()
	c, err := game.ParseCard(name)
	require.NoError(t, err)
	return c
}

func TestParseRules(t *testing.T) {
	t.Run("absent rules take the serving defaults", func(t *testing.T) {
		rules, err := ParseRules(nil)
		require.NoError(t, err)
		require.Equal(t, game.DefaultRules, rules)
	})

	t.Run("an integer is the raw bitmask", func(t *testing.T) {
		mask := uint16(game.QueenPenalty | game.JackBonus)
		rules, err := ParseRules(json.RawMessage(jsonInt(t, mask)))
		require.NoError(t, err)
		require.Equal(t, game.QueenPenalty|game.JackBonus, rules)
	})

	t.Run("an empty flag object also means the defaults", func(t *testing.T) {
		rules, err := ParseRules(json.RawMessage(`{}`))
		require.NoError(t, err)
		require.Equal(t, game.DefaultRules, rules)
	})

	t.Run("explicit flags override the defaults both ways", func(t *testing.T) {
		rules, err := ParseRules(json.RawMessage(
			`{"queen_penalty": false, "jack_bonus": true, "do_pass_cards": true}`))
		require.NoError(t, err)
		require.Zero(t, rules&game.QueenPenalty)
		require.NotZero(t, rules&game.JackBonus)
		require.NotZero(t, rules&game.DoPassCards)
		require.NotZero(t, rules&game.LeadClubs, "Untouched flags keep their defaults")
	})

	t.Run("anything else is rejected", func(t *testing.T) {
		_, err := ParseRules(json.RawMessage(`"standard"`))
		require.ErrorContains(t, err, "rules must be")
	})
}

func jsonInt(t *testing.T, v uint16) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestParseDecisionRule(t *testing.T) {
	for name, want := range map[string]searcher.DecisionRule{
		"":                  searcher.MaxWeighted,
		"max_weighted":      searcher.MaxWeighted,
		"max_average":       searcher.MaxAverage,
		"max_avg_minus_var": searcher.MaxAvgMinusVar,
		"max_min":           searcher.MaxMin,
	} {
		rule, err := ParseDecisionRule(name)
		require.NoError(t, err)
		require.Equal(t, want, rule)
	}

	_, err := ParseDecisionRule("argmax")
	require.ErrorContains(t, err, "unknown decision rule")
}

func TestParseModelLevel(t *testing.T) {
	for level, want := range map[int]belief.Level{
		0: belief.Basic, 1: belief.VoidAware, 2: belief.Behavioral,
	} {
		got, err := ParseModelLevel(level)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseModelLevel(3)
	require.ErrorContains(t, err, "unknown model level")
}

func TestCardStrings(t *testing.T) {
	cards := []game.Card{mustCard(t, "AS"), mustCard(t, "10H"), mustCard(t, "2C")}
	require.Equal(t, []string{"AS", "10H", "2C"}, CardStrings(cards))
	require.Empty(t, CardStrings(nil))
}

func TestToObserved(t *testing.T) {
	state := GameStateJSON{
		PlayerHand:    []string{"KS", "3D"},
		CurrentPlayer: 2,
		CurrentTrick: &TrickJSON{
			LeadPlayer: 0,
			Cards: []TrickCardJSON{
				{Player: 0, Card: "4D"},
				{Player: 1, Card: "5D"},
			},
		},
		TrickHistory: []TrickJSON{{
			LeadPlayer: 1,
			Cards: []TrickCardJSON{
				{Player: 1, Card: "2C"},
				{Player: 2, Card: "AC"},
				{Player: 3, Card: "7C"},
				{Player: 0, Card: "9C"},
			},
		}},
		PlayedCards:   [][]string{{}, {}, {"2C", "AC", "7C", "9C"}, {}},
		Scores:        []float64{4, 0, 13, 9},
		HeartsBroken:  true,
		PassDirection: int(game.Left),
	}

	obs, err := state.ToObserved()
	require.NoError(t, err)
	require.Equal(t, game.DefaultRules, obs.Rules)
	require.Equal(t, 2, obs.MySeat)
	require.Equal(t, game.Left, obs.PassDir)
	require.True(t, obs.HeartsBroken)
	require.True(t, obs.MyHand.Has(mustCard(t, "KS")))
	require.Equal(t, 2, obs.MyHand.Count())

	require.Len(t, obs.History, 1)
	require.Equal(t, 2, obs.History[0].Winner, "The ace of clubs takes the opening trick")

	require.Equal(t, 0, obs.Current.Lead)
	require.Equal(t, 2, obs.Current.Plays)

	require.Equal(t, 4, obs.Taken[2].Count())
	require.Equal(t, [game.NumPlayers]float64{4, 0, 13, 9}, obs.MatchScores)
}

func TestToObservedDefaultsCurrentTrick(t *testing.T) {
	state := GameStateJSON{PlayerHand: []string{"2C"}, CurrentPlayer: 3}
	obs, err := state.ToObserved()
	require.NoError(t, err)
	require.Equal(t, 3, obs.Current.Lead, "A missing trick means the player is on lead")
	require.Zero(t, obs.Current.Plays)
}

func TestToObservedRejectsBadCards(t *testing.T) {
	for name, state := range map[string]GameStateJSON{
		"player_hand":   {PlayerHand: []string{"1X"}},
		"trick_history": {TrickHistory: []TrickJSON{{Cards: []TrickCardJSON{{Card: "ZZ"}}}}},
		"current_trick": {CurrentTrick: &TrickJSON{Cards: []TrickCardJSON{{Card: ""}}}},
		"played_cards":  {PlayedCards: [][]string{{"17S"}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := state.ToObserved()
			require.ErrorContains(t, err, name)
		})
	}
}
