package game

import (
	"slices"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCards(t *testing.T, s string) []Card {
	t.Helper()
	cards, err := ParseCards(s)
	require.NoError(t, err)
	return cards
}

// seqSource replays a fixed list of swap indexes, one full shuffle at a time.
type seqSource struct {
	js  []int
	pos int
}

func (s *seqSource) IntN(n int) int {
	j := s.js[s.pos]
	s.pos = (s.pos + 1) % len(s.js)
	return j
}

// rigged returns a source that makes every shuffle put the given cards on
// top, followed by the rest of the deck in construction order.
func rigged(t *testing.T, top string) Source {
	t.Helper()
	want := mustCards(t, top)
	target := append([]Card(nil), want...)
	for _, c := range orderedCards() {
		if !slices.Contains(want, c) {
			target = append(target, c)
		}
	}
	require.Len(t, target, DeckSize)

	cur := orderedCards()
	js := make([]int, 0, DeckSize-1)
	for i := len(cur) - 1; i > 0; i-- {
		j := slices.Index(cur[:i+1], target[i])
		cur[i], cur[j] = cur[j], cur[i]
		js = append(js, j)
	}
	return &seqSource{js: js}
}

// newRigged deals a round of bet with player, dealer and then the next cards on top.
func newRigged(t *testing.T, money, bet int, top string) *Game {
	t.Helper()
	g := New(money, WithSource(rigged(t, top)))
	g.PlaceBet(bet)
	snap := g.Deal()
	require.Equal(t, Playing, snap.Phase)
	return g
}

func cardsInPlay(s State) []Card {
	var all []Card
	all = append(all, s.Deck...)
	all = append(all, s.PlayerHand...)
	all = append(all, s.DealerHand...)
	return all
}

func assertFullDeck(t *testing.T, cards []Card) {
	t.Helper()
	require.Len(t, cards, DeckSize)
	seen := make(map[Card]bool)
	for _, c := range cards {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	for _, c := range orderedCards() {
		assert.True(t, seen[c], "missing card %s", c)
	}
}

func TestNewGame(t *testing.T) {
	g := New(DefaultMoney)
	snap := g.Snapshot()

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, Betting, snap.Phase)
	assert.Equal(t, 1000, snap.Money)
	assert.Equal(t, 0, snap.Bet)
	assert.Empty(t, snap.PlayerHand)
	assert.Empty(t, snap.DealerHand)
	assert.Equal(t, MsgPlaceBet, snap.Message)
	assert.Equal(t, 0, snap.DeckRemaining)
}

func TestDeal(t *testing.T) {
	t.Run("debits bet and deals two cards each", func(t *testing.T) {
		g := New(1000, WithSource(rigged(t, "10h 8c 9d 7s")))
		g.PlaceBet(100)
		snap := g.Deal()

		assert.Equal(t, Playing, snap.Phase)
		assert.Equal(t, 900, snap.Money)
		assert.Equal(t, 100, snap.Bet)
		assert.Equal(t, mustCards(t, "10h 8c"), []Card(snap.PlayerHand))
		assert.Equal(t, mustCards(t, "9d 7s"), []Card(snap.DealerHand))
		assert.Equal(t, 18, snap.PlayerValue)
		assert.Equal(t, 16, snap.DealerValue)
		assert.Equal(t, DeckSize-4, snap.DeckRemaining)
		assert.Equal(t, MsgYourTurn, snap.Message)
		assert.Equal(t, 1, snap.Rounds)
	})

	t.Run("random deal keeps every card once", func(t *testing.T) {
		g := New(1000)
		g.PlaceBet(100)
		snap := g.Deal()

		assert.Len(t, snap.PlayerHand, 2)
		assert.Len(t, snap.DealerHand, 2)
		assertFullDeck(t, cardsInPlay(g.State()))
	})

	invalid := []struct {
		name string
		bet  int
	}{
		{"zero bet", 0},
		{"negative bet", -5},
		{"bet above balance", 1001},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			g := New(1000)
			g.PlaceBet(tt.bet)
			snap := g.Deal()

			assert.Equal(t, Betting, snap.Phase)
			assert.Equal(t, MsgInvalidBet, snap.Message)
			assert.Equal(t, 1000, snap.Money)
			assert.Empty(t, snap.PlayerHand)
			assert.Equal(t, 0, snap.DeckRemaining)
		})
	}

	t.Run("whole balance is a valid bet", func(t *testing.T) {
		g := New(250)
		g.PlaceBet(250)
		snap := g.Deal()

		assert.Equal(t, Playing, snap.Phase)
		assert.Equal(t, 0, snap.Money)
	})

	t.Run("recovers after an invalid bet", func(t *testing.T) {
		g := New(1000)
		g.PlaceBet(0)
		g.Deal()
		g.PlaceBet(50)
		snap := g.Deal()

		assert.Equal(t, Playing, snap.Phase)
		assert.Equal(t, 950, snap.Money)
	})

	t.Run("ignored outside betting", func(t *testing.T) {
		g := newRigged(t, 1000, 100, "10h 8c 9d 7s")
		before := g.State()
		snap := g.Deal()

		assert.Equal(t, Playing, snap.Phase)
		assert.Equal(t, 900, snap.Money)
		assert.Equal(t, before.Deck, g.State().Deck)
	})
}

func TestPlaceBetOnlyWhileBetting(t *testing.T) {
	g := newRigged(t, 1000, 100, "10h 8c 9d 7s")
	snap := g.PlaceBet(500)

	assert.Equal(t, 100, snap.Bet)
}

func TestHit(t *testing.T) {
	t.Run("bust ends the round without refund", func(t *testing.T) {
		g := newRigged(t, 1000, 100, "10h 8c 9d 7s 5d")
		snap := g.Hit()

		assert.Equal(t, GameOver, snap.Phase)
		assert.Equal(t, PlayerBust, snap.Outcome)
		assert.Equal(t, MsgBust, snap.Message)
		assert.Equal(t, 23, snap.PlayerValue)
		assert.Equal(t, 900, snap.Money)
		assert.Len(t, snap.DealerHand, 2, "dealer does not play after a player bust")
	})

	t.Run("draws one card without busting", func(t *testing.T) {
		g := newRigged(t, 1000, 100, "5h 4c 9d 7s 6d")
		snap := g.Hit()

		assert.Equal(t, Playing, snap.Phase)
		assert.Equal(t, mustCards(t, "5h 4c 6d"), []Card(snap.PlayerHand))
		assert.Equal(t, 15, snap.PlayerValue)
		assert.Equal(t, DeckSize-5, snap.DeckRemaining)
	})

	t.Run("soft hand survives a big card", func(t *testing.T) {
		g := newRigged(t, 1000, 100, "Ah 6c 9d 7s 9h")
		snap := g.Hit()

		assert.Equal(t, Playing, snap.Phase)
		assert.Equal(t, 16, snap.PlayerValue)
	})

	t.Run("natural may still draw", func(t *testing.T) {
		g := newRigged(t, 1000, 100, "Ah Kc 9d 7s 2h")
		require.True(t, Hand(g.Snapshot().PlayerHand).Natural())
		snap := g.Hit()

		assert.Equal(t, Playing, snap.Phase)
		assert.Equal(t, 13, snap.PlayerValue)
	})

	t.Run("ignored outside playing", func(t *testing.T) {
		g := New(1000)
		snap := g.Hit()

		assert.Equal(t, Betting, snap.Phase)
		assert.Empty(t, snap.PlayerHand)
	})
}

func TestStand(t *testing.T) {
	tests := []struct {
		name        string
		top         string
		outcome     Outcome
		money       int
		dealerValue int
		message     string
	}{
		{
			name:        "dealer draws to 18 and beats 17",
			top:         "10h 7c 6d 2s 10s",
			outcome:     DealerWins,
			money:       900,
			dealerValue: 18,
			message:     "Dealer wins!",
		},
		{
			name:        "player 20 beats dealer 18",
			top:         "10h Qc 6d 2s 10s",
			outcome:     PlayerWins,
			money:       1100,
			dealerValue: 18,
			message:     "You win!",
		},
		{
			name:        "push on equal totals returns the bet",
			top:         "Kh Qh Ks Qs",
			outcome:     Push,
			money:       1000,
			dealerValue: 20,
			message:     "Push!",
		},
		{
			name:        "dealer bust pays double",
			top:         "10h 5c 10d 6s 9c",
			outcome:     DealerBust,
			money:       1100,
			dealerValue: 25,
			message:     "Dealer busts! You win!",
		},
		{
			name:        "dealer stands on soft 17",
			top:         "10h 8c Ad 6s",
			outcome:     PlayerWins,
			money:       1100,
			dealerValue: 17,
			message:     "You win!",
		},
		{
			name:        "natural pays even money",
			top:         "Ah Kc 10d 8s",
			outcome:     PlayerWins,
			money:       1100,
			dealerValue: 18,
			message:     "You win!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newRigged(t, 1000, 100, tt.top)
			snap := g.Stand()

			assert.Equal(t, GameOver, snap.Phase)
			assert.Equal(t, tt.outcome, snap.Outcome)
			assert.Equal(t, tt.money, snap.Money)
			assert.Equal(t, tt.dealerValue, snap.DealerValue)
			assert.Equal(t, tt.message, snap.Message)
			assertFullDeck(t, cardsInPlay(g.State()))
		})
	}

	t.Run("ignored outside playing", func(t *testing.T) {
		g := New(1000)
		snap := g.Stand()
		assert.Equal(t, Betting, snap.Phase)

		g = newRigged(t, 1000, 100, "10h 8c 9d 7s 5d")
		g.Hit()
		snap = g.Stand()
		assert.Equal(t, PlayerBust, snap.Outcome)
		assert.Len(t, snap.DealerHand, 2)
		assert.Equal(t, 900, snap.Money)
	})
}

func TestNewGameResetsRound(t *testing.T) {
	g := newRigged(t, 1000, 100, "10h Qc 6d 2s 10s")
	g.Stand()
	snap := g.NewGame()

	assert.Equal(t, Betting, snap.Phase)
	assert.Equal(t, 1100, snap.Money)
	assert.Equal(t, 0, snap.Bet)
	assert.Empty(t, snap.PlayerHand)
	assert.Empty(t, snap.DealerHand)
	assert.Equal(t, 0, snap.DeckRemaining)
	assert.Equal(t, Unresolved, snap.Outcome)
	assert.Equal(t, MsgPlaceBet, snap.Message)
	assert.Equal(t, 1, snap.Rounds)

	t.Run("mid round forfeits the debited bet", func(t *testing.T) {
		g := newRigged(t, 1000, 100, "10h 8c 9d 7s")
		snap := g.NewGame()

		assert.Equal(t, Betting, snap.Phase)
		assert.Equal(t, 900, snap.Money)
		assert.Empty(t, snap.PlayerHand)
	})
}

func TestSeveralRounds(t *testing.T) {
	g := New(1000, WithSource(rigged(t, "Kh Qh Ks 8s")))
	for range 3 {
		g.PlaceBet(100)
		g.Deal()
		g.Stand()
		g.NewGame()
	}
	snap := g.Snapshot()

	assert.Equal(t, 1300, snap.Money)
	assert.Equal(t, 3, snap.Rounds)
}

func TestSnapshotIsACopy(t *testing.T) {
	g := newRigged(t, 1000, 100, "10h 8c 9d 7s")
	snap := g.Snapshot()
	snap.PlayerHand[0] = NewCard(Spades, Ace)

	assert.Equal(t, NewCard(Hearts, Ten), g.Snapshot().PlayerHand[0])
}

func TestTimestampsFollowClock(t *testing.T) {
	clock := quartz.NewMock(t)
	g := New(1000, WithClock(clock), WithID("table-1"))
	created := clock.Now()

	clock.Advance(time.Minute)
	snap := g.PlaceBet(10)

	assert.Equal(t, "table-1", snap.ID)
	assert.Equal(t, created, snap.CreatedAt)
	assert.Equal(t, created.Add(time.Minute), snap.UpdatedAt)
}

func TestRestore(t *testing.T) {
	t.Run("round trips a game in progress", func(t *testing.T) {
		g := newRigged(t, 1000, 100, "10h 8c 9d 7s 2c")
		state := g.State()

		restored, err := Restore(state, WithSource(rigged(t, "Kh Qh Ks Qs")))
		require.NoError(t, err)
		assert.Equal(t, state, restored.State())

		snap := restored.Hit()
		assert.Equal(t, 20, snap.PlayerValue)
	})

	t.Run("round trips betting", func(t *testing.T) {
		g := New(700)
		g.PlaceBet(20)

		restored, err := Restore(g.State())
		require.NoError(t, err)
		assert.Equal(t, g.Snapshot(), restored.Snapshot())
	})

	t.Run("rejects invalid states", func(t *testing.T) {
		valid := newRigged(t, 1000, 100, "10h 8c 9d 7s").State()

		cases := map[string]func(s *State){
			"missing id":       func(s *State) { s.ID = "" },
			"unknown phase":    func(s *State) { s.Phase = "lobby" },
			"dealer turn":      func(s *State) { s.Phase = DealerTurn },
			"negative money":   func(s *State) { s.Money = -1 },
			"no bet":           func(s *State) { s.Bet = 0 },
			"lost card":        func(s *State) { s.Deck = s.Deck[1:] },
			"duplicate card":   func(s *State) { s.Deck[0] = s.PlayerHand[0] },
			"bad card value":   func(s *State) { s.Deck[0].Value = 99 },
			"short hand":       func(s *State) { s.DealerHand = s.DealerHand[:1] },
			"cards in betting": func(s *State) { s.Phase = Betting },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				s := valid
				s.Deck = slices.Clone(valid.Deck)
				s.PlayerHand = slices.Clone(valid.PlayerHand)
				s.DealerHand = slices.Clone(valid.DealerHand)
				mutate(&s)

				_, err := Restore(s)
				assert.ErrorIs(t, err, ErrInvalidState)
			})
		}
	})
}
