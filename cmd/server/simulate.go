package main

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/randutil"
)

// SimulateCmd plays rounds with a fixed bet and a simple hitting rule
type SimulateCmd struct {
	Rounds   int    `default:"1000" help:"Number of rounds to play"`
	Bet      int    `default:"10" help:"Bet placed every round"`
	Money    int    `default:"1000" help:"Starting money"`
	HitBelow int    `default:"17" help:"Player hits while the hand is worth less than this"`
	Seed     *int64 `help:"Deterministic shuffle seed (optional)"`
	Debug    bool   `help:"Log every round"`
}

// summary tallies the outcome of a simulation run
type summary struct {
	Rounds   int
	Outcomes map[game.Outcome]int
	Money    int
}

func (c *SimulateCmd) Run() error {
	level := "info"
	if c.Debug {
		level = "debug"
	}
	logger := newLogger(level)

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	logger.Info("Starting simulation", "rounds", c.Rounds, "bet", c.Bet, "hitBelow", c.HitBelow, "seed", seed)

	g := game.New(c.Money, game.WithSource(randutil.New(seed)))
	s := simulate(g, c.Rounds, c.Bet, c.HitBelow, logger)

	logger.Info("Simulation complete",
		"rounds", s.Rounds,
		"playerWins", s.Outcomes[game.PlayerWins],
		"dealerBusts", s.Outcomes[game.DealerBust],
		"dealerWins", s.Outcomes[game.DealerWins],
		"playerBusts", s.Outcomes[game.PlayerBust],
		"pushes", s.Outcomes[game.Push],
		"money", s.Money,
		"net", s.Money-c.Money)
	return nil
}

// simulate plays up to rounds rounds, stopping early once money no longer
// covers the bet.
func simulate(g *game.Game, rounds, bet, hitBelow int, logger *log.Logger) summary {
	s := summary{Outcomes: make(map[game.Outcome]int)}

	for range rounds {
		if g.Money() < bet || bet <= 0 {
			logger.Warn("Out of money", "money", g.Money(), "bet", bet)
			break
		}

		g.PlaceBet(bet)
		snap := g.Deal()
		for snap.Phase == game.Playing && snap.PlayerValue < hitBelow {
			snap = g.Hit()
		}
		if snap.Phase == game.Playing {
			snap = g.Stand()
		}

		s.Rounds++
		s.Outcomes[snap.Outcome]++
		logger.Debug("Round",
			"n", s.Rounds,
			"player", snap.PlayerHand.String(),
			"dealer", snap.DealerHand.String(),
			"outcome", snap.Outcome,
			"money", snap.Money)

		g.NewGame()
	}

	s.Money = g.Money()
	return s
}
