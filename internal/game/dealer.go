package game

// DealerStandValue is the total at which the dealer stops drawing.
// Soft 17 counts as 17.
const DealerStandValue = 17

// DealerPlay draws for the dealer until the hand is worth 17 or more,
// busting included, and returns the final hand and the remaining deck.
func DealerPlay(hand Hand, deck Deck) (Hand, Deck) {
	for hand.Value() < DealerStandValue {
		var card Card
		card, deck = deck.Draw()
		hand = hand.With(card)
	}
	return hand, deck
}
