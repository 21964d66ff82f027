package game

import "github.com/lox/abstractpoker/poker"

// ActionKind is the primitive move vocabulary a betting protocol understands.
// The abstract action set in actions.go maps onto these three moves plus a
// raise amount.
type ActionKind int

const (
	ActionFold ActionKind = iota
	ActionCall
	ActionRaise
)

// Protocol tracks one hand of betting: whose turn it is, which moves are
// legal, how much each player has committed, and the final settlement.
// Implementations are mutable and exclusively owned by a single State; Clone
// must return a fully independent copy.
type Protocol interface {
	// CurrentPlayer returns the seat to act, or -1 once the hand is over.
	CurrentPlayer() int

	// IsFinished reports whether betting has concluded, by folds or by
	// reaching showdown.
	IsFinished() bool

	// Round returns the current 0-based betting round.
	Round() int

	// IsValidAction reports whether the move is legal for the player to
	// act. For ActionRaise the amount is the raise-to total; zero means
	// "any legal raise".
	IsValidAction(kind ActionKind, amount int) bool

	// RaiseIsValid returns the inclusive raise-to bounds for the player to
	// act, or ok=false when raising is not allowed.
	RaiseIsValid() (min, max int, ok bool)

	// DoAction applies a legal move. Callers must check validity first.
	DoAction(kind ActionKind, amount int)

	// NumFolded returns how many players have folded so far.
	NumFolded() int

	// Folded reports whether the seat has folded.
	Folded(player int) bool

	// MaxSpend returns the largest total commitment by any player.
	MaxSpend() int

	// Money returns the chips the seat still has behind.
	Money(player int) int

	// Ante returns the seat's total commitment so far, blinds included.
	Ante(player int) int

	// BettingSequence returns the round's move history in the compact
	// "cr600f" notation.
	BettingSequence(round int) string

	// SetHoleAndBoardCards hands the dealt cards to the protocol so it can
	// settle showdowns. Called after every deal.
	SetHoleAndBoardCards(hole []poker.CardSet, board poker.CardSet)

	// ValueOfState returns the seat's net chip outcome. Only meaningful
	// once IsFinished is true and all cards required for settlement have
	// been set.
	ValueOfState(player int) float64

	// Clone returns an independent deep copy.
	Clone() Protocol
}

// Engine creates fresh hands for a fixed game configuration.
// Implementations must be immutable and safe for concurrent use.
type Engine interface {
	NewHand() Protocol
}
