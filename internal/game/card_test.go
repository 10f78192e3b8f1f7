package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseValue(t *testing.T) {
	tests := []struct {
		rank  Rank
		value int
	}{
		{Two, 2}, {Three, 3}, {Four, 4}, {Five, 5}, {Six, 6}, {Seven, 7},
		{Eight, 8}, {Nine, 9}, {Ten, 10}, {Jack, 10}, {Queen, 10}, {King, 10},
		{Ace, 11}, {Rank("1"), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.value, tt.rank.BaseValue(), "rank %s", tt.rank)
	}
}

func TestOrderedCardsCoverEveryCombination(t *testing.T) {
	cards := orderedCards()
	require.Len(t, cards, DeckSize)

	seen := make(map[[2]string]bool)
	for _, c := range cards {
		key := [2]string{string(c.Suit), string(c.Rank)}
		assert.False(t, seen[key], "duplicate %s", c)
		seen[key] = true
		assert.Equal(t, c.Rank.BaseValue(), c.Value)
		assert.True(t, c.Valid())
	}
}

func TestParseCard(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tests := map[string]Card{
			"Ah":  NewCard(Hearts, Ace),
			"10d": NewCard(Diamonds, Ten),
			"Td":  NewCard(Diamonds, Ten),
			"kc":  NewCard(Clubs, King),
			"2S":  NewCard(Spades, Two),
		}
		for in, want := range tests {
			got, err := ParseCard(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, got, in)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{"", "A", "1h", "Ax", "11s"} {
			_, err := ParseCard(in)
			assert.Error(t, err, in)
		}
	})

	t.Run("string round trip", func(t *testing.T) {
		for _, c := range orderedCards() {
			got, err := ParseCard(c.String())
			require.NoError(t, err)
			assert.Equal(t, c, got)
		}
	})
}
