package game

import (
	"golang.org/x/exp/rand"
)

type Phase int

const (
	PassingPhase Phase = iota
	PlayingPhase
	DonePhase
)

// GameState is a fully determinized round of Hearts: every card has a
// known location. The search and the playout policies operate on this
// type; hidden-information handling lives in the belief package.
type GameState struct {
	Rules         Rules
	PassDir       PassDirection
	Phase         Phase
	Hands         [NumPlayers]CardSet
	Taken         [NumPlayers]CardSet
	AllPlayed     CardSet
	Current       Trick
	History       []Trick
	TrickNum      int // completed tricks, 0..13
	CurrentPlayer int
	HeartsBroken  bool
}

// NewGameState returns an undealt state. Deal or SetHands must run before
// play begins.
func NewGameState(rules Rules, passDir PassDirection) *GameState {
	phase := PlayingPhase
	if passDir != Hold && rules.Has(DoPassCards) {
		phase = PassingPhase
	}
	return &GameState{
		Rules:   rules,
		PassDir: passDir,
		Phase:   phase,
		History: make([]Trick, 0, 13),
	}
}

// Deal shuffles the full deck and deals 13 cards to each seat, then sets
// the opening lead.
func (gs *GameState) Deal(rng *rand.Rand) {
	deck := make([]Card, 0, NumCards)
	for c := Card(0); c < NumCards; c++ {
		deck = append(deck, c)
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	for p := 0; p < NumPlayers; p++ {
		gs.Hands[p] = 0
		for i := 0; i < 13; i++ {
			gs.Hands[p].Add(deck[p*13+i])
		}
	}
	gs.setOpeningLead()
}

// SetHands installs explicit hands (tests, determinized worlds) and sets
// the opening lead.
func (gs *GameState) SetHands(hands [NumPlayers]CardSet) {
	gs.Hands = hands
	gs.setOpeningLead()
}

func (gs *GameState) setOpeningLead() {
	lead := 0
	if gs.Rules.Has(Lead2Clubs) {
		for p := 0; p < NumPlayers; p++ {
			if gs.Hands[p].Has(TwoOfClubs) {
				lead = p
				break
			}
		}
	}
	gs.Current = Trick{Lead: lead}
	gs.CurrentPlayer = lead
}

// Copy returns an independent deep copy.
func (gs *GameState) Copy() *GameState {
	dup := *gs
	dup.History = make([]Trick, len(gs.History), 13)
	copy(dup.History, gs.History)
	return &dup
}

// ApplyPass removes each seat's three outgoing cards and delivers them to
// the recipient seat, then transitions to the playing phase.
func (gs *GameState) ApplyPass(passes [NumPlayers][3]Card) {
	if gs.Phase != PassingPhase {
		panic("ApplyPass outside passing phase")
	}
	for p := 0; p < NumPlayers; p++ {
		for _, c := range passes[p] {
			if !gs.Hands[p].Has(c) {
				panic("passing a card not held")
			}
			gs.Hands[p].Remove(c)
		}
	}
	for p := 0; p < NumPlayers; p++ {
		to := gs.PassDir.Recipient(p)
		for _, c := range passes[p] {
			gs.Hands[to].Add(c)
		}
	}
	gs.Phase = PlayingPhase
	gs.setOpeningLead()
}

// LegalMoves appends every card the current player may play to buf and
// returns it. The result is empty only in a terminal state.
func (gs *GameState) LegalMoves(buf []Card) []Card {
	if gs.Phase == DonePhase {
		return buf[:0]
	}
	if gs.Phase == PassingPhase {
		panic("LegalMoves during passing phase")
	}
	return gs.legalSet().Cards(buf[:0])
}

func (gs *GameState) legalSet() CardSet {
	hand := gs.Hands[gs.CurrentPlayer]
	firstTrick := gs.TrickNum == 0

	if gs.Current.Plays > 0 {
		// Following: lead-suit cards are forced when held.
		lead := gs.Current.LeadSuit()
		if hand.HasSuit(lead) {
			return hand.OfSuit(lead)
		}
		// Discarding off-suit on the first trick.
		if firstTrick {
			return gs.filterFirstTrick(hand)
		}
		return hand
	}

	// Leading.
	if firstTrick {
		if gs.Rules.Has(Lead2Clubs) && hand.Has(TwoOfClubs) {
			var only CardSet
			only.Add(TwoOfClubs)
			return only
		}
		if gs.Rules.Has(LeadClubs) && hand.HasSuit(Clubs) {
			return gs.filterFirstTrick(hand.OfSuit(Clubs))
		}
		return gs.filterFirstTrick(gs.filterUnbrokenHearts(hand))
	}
	return gs.filterUnbrokenHearts(hand)
}

// filterUnbrokenHearts removes hearts from a lead candidate set while
// hearts are unbroken, unless nothing else remains.
func (gs *GameState) filterUnbrokenHearts(set CardSet) CardSet {
	if !gs.Rules.Has(MustBreakHearts) || gs.HeartsBroken {
		return set
	}
	rest := set.Without(set.OfSuit(Hearts))
	if rest == 0 {
		return set
	}
	return rest
}

// filterFirstTrick removes point cards barred from trick one, unless the
// hand holds nothing else.
func (gs *GameState) filterFirstTrick(set CardSet) CardSet {
	rest := set
	if gs.Rules.Has(NoHeartsFirstTrick) {
		rest = rest.Without(rest.OfSuit(Hearts))
	}
	if gs.Rules.Has(NoQueenFirstTrick) && rest.Has(QueenOfSpades) {
		rest.Remove(QueenOfSpades)
	}
	if rest == 0 {
		return set
	}
	return rest
}

// Apply plays c for the current player, resolving the trick when it
// completes. Playing an illegal card is a programmer error; callers
// construct moves from LegalMoves.
func (gs *GameState) Apply(c Card) {
	if gs.Phase != PlayingPhase {
		panic("Apply outside playing phase")
	}
	if !gs.Hands[gs.CurrentPlayer].Has(c) {
		panic("Apply: card not in hand")
	}

	gs.Hands[gs.CurrentPlayer].Remove(c)
	gs.Current.AddCard(c, gs.CurrentPlayer)
	gs.AllPlayed.Add(c)

	if c.Suit() == Hearts {
		gs.HeartsBroken = true
	} else if c == QueenOfSpades && gs.Rules.Has(QueenBreaksHearts) {
		gs.HeartsBroken = true
	}

	if gs.Current.Complete() {
		winner := gs.Current.Resolve()
		gs.Taken[winner] = gs.Taken[winner].Union(gs.Current.CardSet())
		gs.History = append(gs.History, gs.Current)
		gs.TrickNum++
		gs.Current = Trick{Lead: winner}
		gs.CurrentPlayer = winner
		if gs.TrickNum == 13 {
			gs.Phase = DonePhase
		}
	} else {
		gs.CurrentPlayer = (gs.CurrentPlayer + 1) % NumPlayers
	}
}

func (gs *GameState) IsTerminal() bool {
	return gs.Phase == DonePhase
}

// Score computes the seat's round score from its taken pile per the rules
// mask. Valid at any point of the round; final once terminal.
func (gs *GameState) Score(seat int) float64 {
	score := gs.pointScore(seat)

	if shooter := gs.moonShooter(); shooter >= 0 {
		if seat == shooter {
			score = 0
		} else {
			score = 26
		}
	}

	if gs.Rules.Has(JackBonus) && gs.Taken[seat].Has(JackOfDiamonds) {
		score -= 10
	}
	if gs.Rules.Has(NoTrickBonus) && gs.Taken[seat] == 0 && gs.IsTerminal() {
		score -= 5
	}
	return score
}

func (gs *GameState) pointScore(seat int) float64 {
	score := 0.0
	if gs.Rules.Has(QueenPenalty) && gs.Taken[seat].Has(QueenOfSpades) {
		score += 13
	}
	if !gs.Rules.Has(HeartsArentPoints) {
		score += float64(gs.Taken[seat].SuitCount(Hearts))
	}
	return score
}

// moonShooter returns the seat that shot the moon, or -1. Shooting
// requires all thirteen hearts, the queen when the queen is a penalty,
// and the jack when the variant demands it.
func (gs *GameState) moonShooter() int {
	if gs.Rules.Has(NoShooting) {
		return -1
	}
	for p := 0; p < NumPlayers; p++ {
		if gs.Taken[p].Intersect(AllHearts) != AllHearts {
			continue
		}
		if gs.Rules.Has(QueenPenalty) && !gs.Taken[p].Has(QueenOfSpades) {
			continue
		}
		if gs.Rules.Has(ShootingNeedsJack) && !gs.Taken[p].Has(JackOfDiamonds) {
			continue
		}
		return p
	}
	return -1
}

// Scores returns all four seat scores.
func (gs *GameState) Scores() [NumPlayers]float64 {
	var out [NumPlayers]float64
	for p := 0; p < NumPlayers; p++ {
		out[p] = gs.Score(p)
	}
	return out
}
