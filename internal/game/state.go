package game

import (
	"errors"
	"fmt"
	"time"
)

// Snapshot is the read-only view handed to the presentation layer after
// every operation. It shares no memory with the game.
type Snapshot struct {
	ID            string    `json:"id"`
	Phase         Phase     `json:"phase"`
	Money         int       `json:"money"`
	Bet           int       `json:"bet"`
	PlayerHand    Hand      `json:"playerHand"`
	DealerHand    Hand      `json:"dealerHand"`
	PlayerValue   int       `json:"playerValue"`
	DealerValue   int       `json:"dealerValue"`
	Outcome       Outcome   `json:"outcome,omitempty"`
	Message       string    `json:"message"`
	DeckRemaining int       `json:"deckRemaining"`
	Rounds        int       `json:"rounds"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Snapshot returns the current view of the game
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		ID:            g.id,
		Phase:         g.round.phase,
		Money:         g.money,
		Bet:           g.round.bet,
		PlayerHand:    g.round.player.clone(),
		DealerHand:    g.round.dealer.clone(),
		PlayerValue:   g.round.player.Value(),
		DealerValue:   g.round.dealer.Value(),
		Outcome:       g.round.outcome,
		Message:       g.round.message,
		DeckRemaining: g.round.deck.Len(),
		Rounds:        g.rounds,
		CreatedAt:     g.createdAt,
		UpdatedAt:     g.updatedAt,
	}
}

// State is the complete, serializable form of a game including the
// order of the undealt cards. Stores persist it; clients never see it.
type State struct {
	ID         string    `json:"id"`
	Money      int       `json:"money"`
	Rounds     int       `json:"rounds"`
	Phase      Phase     `json:"phase"`
	Bet        int       `json:"bet"`
	Deck       []Card    `json:"deck"`
	PlayerHand Hand      `json:"playerHand"`
	DealerHand Hand      `json:"dealerHand"`
	Outcome    Outcome   `json:"outcome,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// State returns a copy of the full game state
func (g *Game) State() State {
	return State{
		ID:         g.id,
		Money:      g.money,
		Rounds:     g.rounds,
		Phase:      g.round.phase,
		Bet:        g.round.bet,
		Deck:       g.round.deck.Cards(),
		PlayerHand: g.round.player.clone(),
		DealerHand: g.round.dealer.clone(),
		Outcome:    g.round.outcome,
		Message:    g.round.message,
		CreatedAt:  g.createdAt,
		UpdatedAt:  g.updatedAt,
	}
}

var ErrInvalidState = errors.New("invalid game state")

// Restore rebuilds a game from a saved state. Options supply the random
// source and clock, which are not part of the state.
func Restore(s State, opts ...Option) (*Game, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	g := New(s.Money, opts...)
	g.id = s.ID
	g.rounds = s.Rounds
	g.round = round{
		deck:    DeckOf(s.Deck),
		player:  s.PlayerHand.clone(),
		dealer:  s.DealerHand.clone(),
		bet:     s.Bet,
		phase:   s.Phase,
		outcome: s.Outcome,
		message: s.Message,
	}
	g.createdAt = s.CreatedAt
	g.updatedAt = s.UpdatedAt
	return g, nil
}

// Validate checks that the state could have been produced by a Game.
func (s State) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidState)
	}
	if !s.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidState, s.Phase)
	}
	if s.Money < 0 {
		return fmt.Errorf("%w: negative money %d", ErrInvalidState, s.Money)
	}

	switch s.Phase {
	case DealerTurn:
		return fmt.Errorf("%w: %s is never at rest", ErrInvalidState, s.Phase)
	case Betting:
		if len(s.Deck)+len(s.PlayerHand)+len(s.DealerHand) != 0 {
			return fmt.Errorf("%w: cards present while betting", ErrInvalidState)
		}
		return nil
	}

	if s.Bet <= 0 {
		return fmt.Errorf("%w: round in %s without a bet", ErrInvalidState, s.Phase)
	}
	if len(s.PlayerHand) < 2 || len(s.DealerHand) < 2 {
		return fmt.Errorf("%w: hands must hold at least two cards", ErrInvalidState)
	}
	if s.Phase == Playing && s.PlayerHand.Bust() {
		return fmt.Errorf("%w: bust hand still playing", ErrInvalidState)
	}

	seen := make(map[Card]bool, DeckSize)
	for _, group := range [][]Card{s.Deck, s.PlayerHand, s.DealerHand} {
		for _, c := range group {
			if !c.Valid() {
				return fmt.Errorf("%w: bad card %+v", ErrInvalidState, c)
			}
			if seen[c] {
				return fmt.Errorf("%w: card %s appears twice", ErrInvalidState, c)
			}
			seen[c] = true
		}
	}
	if len(seen) != DeckSize {
		return fmt.Errorf("%w: %d cards accounted for, want %d", ErrInvalidState, len(seen), DeckSize)
	}
	return nil
}
