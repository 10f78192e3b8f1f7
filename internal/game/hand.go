package game

import "strings"

// BlackjackValue is the best attainable hand total
const BlackjackValue = 21

// Hand is an ordered set of cards held by the player or the dealer.
// Hands only grow; With returns a new hand and leaves the receiver alone.
type Hand []Card

// HandValue calculates the score of a hand, accounting for aces
func HandValue(cards []Card) int {
	total, _ := score(cards)
	return total
}

// score returns the best total and how many aces are still counted as 11.
func score(cards []Card) (total, softAces int) {
	// First pass: count aces as 11
	for _, c := range cards {
		if c.IsAce() {
			softAces++
			total += 11
			continue
		}
		total += c.Rank.BaseValue()
	}

	// Second pass: convert aces from 11 to 1 as needed to avoid busting
	for softAces > 0 && total > BlackjackValue {
		total -= 10
		softAces--
	}
	return total, softAces
}

// Value returns the hand total
func (h Hand) Value() int { return HandValue(h) }

// Soft reports whether at least one ace is still counted as 11.
func (h Hand) Soft() bool {
	_, soft := score(h)
	return soft > 0
}

func (h Hand) Bust() bool { return h.Value() > BlackjackValue }

// Natural reports a two-card 21. It does not change the payout.
func (h Hand) Natural() bool {
	return len(h) == 2 && h.Value() == BlackjackValue
}

// With returns a copy of the hand with c appended.
func (h Hand) With(c Card) Hand {
	out := make(Hand, len(h), len(h)+1)
	copy(out, h)
	return append(out, c)
}

func (h Hand) clone() Hand {
	if len(h) == 0 {
		return Hand{}
	}
	return append(Hand(nil), h...)
}

func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
