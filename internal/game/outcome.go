package game

type Outcome string

const (
	Unresolved Outcome = ""           // Round still in progress
	PlayerBust Outcome = "playerBust" // Player went over 21
	DealerBust Outcome = "dealerBust" // Dealer went over 21
	PlayerWins Outcome = "playerWins" // Player closer to 21
	DealerWins Outcome = "dealerWins" // Dealer closer to 21
	Push       Outcome = "push"       // Equal totals
)

const (
	MsgPlaceBet   = "Place your bet!"
	MsgInvalidBet = "Please place a valid bet!"
	MsgYourTurn   = "Hit or stand?"
	MsgBust       = "Bust! You lose!"
)

// Resolve compares final totals after the dealer has finished drawing.
// The player total is assumed not to be bust.
func Resolve(dealerValue, playerValue int) Outcome {
	switch {
	case dealerValue > BlackjackValue:
		return DealerBust
	case dealerValue > playerValue:
		return DealerWins
	case dealerValue < playerValue:
		return PlayerWins
	default:
		return Push
	}
}

// Payout returns the amount credited back for a settled bet. The bet has
// already been debited at deal time, so a win pays 2x and a push returns it.
func (o Outcome) Payout(bet int) int {
	switch o {
	case DealerBust, PlayerWins:
		return bet * 2
	case Push:
		return bet
	default:
		return 0
	}
}

// Message returns the text shown to the player for the outcome
func (o Outcome) Message() string {
	switch o {
	case PlayerBust:
		return MsgBust
	case DealerBust:
		return "Dealer busts! You win!"
	case PlayerWins:
		return "You win!"
	case DealerWins:
		return "Dealer wins!"
	case Push:
		return "Push!"
	default:
		return ""
	}
}
