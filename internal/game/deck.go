package game

import "math/rand/v2"

// DeckSize is the number of cards in a standard deck
const DeckSize = 52

// Source supplies uniform random integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Deck is an ordered sequence of cards consumed from the front.
// A Deck value is never modified in place; Draw returns the remainder.
type Deck struct {
	cards []Card
}

// NewDeck creates a standard 52-card deck shuffled with src
func NewDeck(src Source) Deck {
	return Deck{cards: Shuffle(orderedCards(), src)}
}

// DeckOf returns a deck holding a copy of cards in the given order.
func DeckOf(cards []Card) Deck {
	return Deck{cards: append([]Card(nil), cards...)}
}

func orderedCards() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// Shuffle returns a uniformly random permutation of cards without
// touching the input.
func Shuffle(cards []Card, src Source) []Card {
	if src == nil {
		src = globalSource{}
	}
	out := append([]Card(nil), cards...)

	// Fisher-Yates shuffle algorithm
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Draw returns the top card and the deck without it.
// Drawing from an empty deck is a programming error and panics.
func (d Deck) Draw() (Card, Deck) {
	if len(d.cards) == 0 {
		panic("game: draw from empty deck")
	}
	return d.cards[0], Deck{cards: d.cards[1:]}
}

// Len returns the number of cards left in the deck
func (d Deck) Len() int { return len(d.cards) }

// Cards returns a copy of the remaining cards in draw order.
func (d Deck) Cards() []Card {
	if len(d.cards) == 0 {
		return []Card{}
	}
	return append([]Card(nil), d.cards...)
}
