package game

import (
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

type Phase string

const (
	Betting    Phase = "betting"    // Waiting for a bet and a deal
	Playing    Phase = "playing"    // Player may hit or stand
	DealerTurn Phase = "dealerTurn" // Dealer draws, then the round settles
	GameOver   Phase = "gameOver"   // Round settled, waiting for a new game
)

func (p Phase) Valid() bool {
	switch p {
	case Betting, Playing, DealerTurn, GameOver:
		return true
	}
	return false
}

// DefaultMoney is the starting balance of a new table
const DefaultMoney = 1000

// round holds everything that lives for a single deal. The previous
// round's deck and hands are dropped when a new game starts.
type round struct {
	deck    Deck
	player  Hand
	dealer  Hand
	bet     int
	phase   Phase
	outcome Outcome
	message string
}

func freshRound() round {
	return round{
		player:  Hand{},
		dealer:  Hand{},
		phase:   Betting,
		message: MsgPlaceBet,
	}
}

// Game is the single-player blackjack state machine. Money is the only
// value that outlives a round.
//
// A Game is not safe for concurrent use; callers serialize access.
type Game struct {
	id        string
	money     int
	rounds    int
	round     round
	src       Source
	clock     quartz.Clock
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Game)

// WithSource sets the random source used to shuffle each new deck
func WithSource(src Source) Option {
	return func(g *Game) {
		if src != nil {
			g.src = src
		}
	}
}

// WithClock sets the clock used for timestamps
func WithClock(clock quartz.Clock) Option {
	return func(g *Game) {
		if clock != nil {
			g.clock = clock
		}
	}
}

func WithID(id string) Option {
	return func(g *Game) {
		if id != "" {
			g.id = id
		}
	}
}

// New creates a game in the betting phase holding money.
func New(money int, opts ...Option) *Game {
	g := &Game{
		id:    uuid.New().String(),
		money: money,
		round: freshRound(),
		src:   globalSource{},
		clock: quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.createdAt = g.clock.Now()
	g.updatedAt = g.createdAt
	return g
}

func (g *Game) ID() string   { return g.id }
func (g *Game) Money() int   { return g.money }
func (g *Game) Phase() Phase { return g.round.phase }

// PlaceBet records the pending bet. The amount is only checked by Deal.
func (g *Game) PlaceBet(amount int) Snapshot {
	if g.round.phase != Betting {
		return g.Snapshot()
	}

	g.round.bet = amount
	return g.touch()
}

// Deal validates the bet, debits it and deals two cards each to the
// player and the dealer from a freshly shuffled deck.
func (g *Game) Deal() Snapshot {
	if g.round.phase != Betting {
		return g.Snapshot()
	}

	if g.round.bet <= 0 || g.round.bet > g.money {
		g.round.message = MsgInvalidBet
		return g.touch()
	}

	deck := NewDeck(g.src)
	var p1, p2, d1, d2 Card
	p1, deck = deck.Draw()
	p2, deck = deck.Draw()
	d1, deck = deck.Draw()
	d2, deck = deck.Draw()

	g.round.deck = deck
	g.round.player = Hand{p1, p2}
	g.round.dealer = Hand{d1, d2}
	g.round.outcome = Unresolved
	g.round.message = MsgYourTurn
	g.round.phase = Playing

	// Winnings are credited when the round settles
	g.money -= g.round.bet
	g.rounds++

	return g.touch()
}

// Hit gives the player another card. Going over 21 ends the round
// with the bet lost.
func (g *Game) Hit() Snapshot {
	if g.round.phase != Playing {
		return g.Snapshot()
	}

	var card Card
	card, g.round.deck = g.round.deck.Draw()
	g.round.player = g.round.player.With(card)

	if g.round.player.Bust() {
		g.settle(PlayerBust)
	}
	return g.touch()
}

// Stand ends the player's turn. The dealer plays out and the round
// settles before Stand returns, so the snapshot is always in GameOver.
func (g *Game) Stand() Snapshot {
	if g.round.phase != Playing {
		return g.Snapshot()
	}

	g.round.phase = DealerTurn
	g.dealerTurn()
	return g.touch()
}

func (g *Game) dealerTurn() {
	g.round.dealer, g.round.deck = DealerPlay(g.round.dealer, g.round.deck)

	outcome := Resolve(g.round.dealer.Value(), g.round.player.Value())
	g.money += outcome.Payout(g.round.bet)
	g.settle(outcome)
}

func (g *Game) settle(o Outcome) {
	g.round.outcome = o
	g.round.message = o.Message()
	g.round.phase = GameOver
}

// NewGame discards the current round and returns to betting. Money is
// kept as is; a bet already debited for an unfinished round is forfeit.
func (g *Game) NewGame() Snapshot {
	g.round = freshRound()
	return g.touch()
}

func (g *Game) touch() Snapshot {
	g.updatedAt = g.clock.Now()
	return g.Snapshot()
}
