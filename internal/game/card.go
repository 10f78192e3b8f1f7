package game

import (
	"fmt"
	"strings"
)

type Suit string
type Rank string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

// Suits and Ranks list every suit and rank in deck construction order.
var (
	Suits = []Suit{Hearts, Diamonds, Clubs, Spades}
	Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
)

// Card is an immutable playing card. Value holds the base blackjack value;
// an Ace carries 11 and the hand evaluator drops it to 1 when needed.
type Card struct {
	Suit  Suit `json:"suit"`
	Rank  Rank `json:"rank"`
	Value int  `json:"value"`
}

// NewCard returns the card for suit and rank with its base value assigned.
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, Value: rank.BaseValue()}
}

// BaseValue returns the blackjack value of the rank
func (r Rank) BaseValue() int {
	switch r {
	case Ace:
		return 11
	case Ten, Jack, Queen, King:
		return 10
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	default:
		return 0
	}
}

func (r Rank) Valid() bool { return r.BaseValue() > 0 }

func (s Suit) Valid() bool {
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}
	return false
}

// IsAce reports whether the card is an Ace
func (c Card) IsAce() bool { return c.Rank == Ace }

// Valid reports whether the card is one of the 52 and carries its base value.
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid() && c.Value == c.Rank.BaseValue()
}

// String renders the card in short notation, e.g. "Qh" or "10s".
func (c Card) String() string {
	return string(c.Rank) + string(c.Suit[0])
}

// ParseCard parses short notation such as "Ah", "10d" or "kc".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	rank := Rank(strings.ToUpper(s[:len(s)-1]))
	if rank == "T" {
		rank = Ten
	}
	if !rank.Valid() {
		return Card{}, fmt.Errorf("invalid rank in card %q", s)
	}

	var suit Suit
	switch strings.ToLower(s[len(s)-1:]) {
	case "h":
		suit = Hearts
	case "d":
		suit = Diamonds
	case "c":
		suit = Clubs
	case "s":
		suit = Spades
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}

	return NewCard(suit, rank), nil
}

// ParseCards parses a space separated list of cards.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}
