package game

import "fmt"

// Action is a public action id. At decision nodes the ids below apply; at
// chance nodes the action id is the dealt card's id.
type Action int

const (
	ActionIDFold Action = iota
	ActionIDCall
	ActionIDBet
	ActionIDAllIn
	ActionIDBetHalfPot
	ActionIDOffAbs
	ActionIDBetPot
	ActionIDBetDoublePot

	numDecisionActions = 8
)

// actionFlag is the internal enablement bit for one abstract action. A
// node's legal set is a union of these.
type actionFlag uint16

const (
	flagDeal actionFlag = 1 << iota
	flagFold
	flagCheckCall
	flagBet
	flagAllIn
	flagBetHalfPot
	flagOffAbs
	flagBetPot
	flagBetDoublePot
)

var actionIDToFlag = [numDecisionActions]actionFlag{
	ActionIDFold:         flagFold,
	ActionIDCall:         flagCheckCall,
	ActionIDBet:          flagBet,
	ActionIDAllIn:        flagAllIn,
	ActionIDBetHalfPot:   flagBetHalfPot,
	ActionIDOffAbs:       flagOffAbs,
	ActionIDBetPot:       flagBetPot,
	ActionIDBetDoublePot: flagBetDoublePot,
}

// Each applied action is logged as a single character. Deals log 'd'.
var actionIDToChar = [numDecisionActions]byte{
	ActionIDFold:         'f',
	ActionIDCall:         'c',
	ActionIDBet:          'p',
	ActionIDAllIn:        'a',
	ActionIDBetHalfPot:   'h',
	ActionIDOffAbs:       'b',
	ActionIDBetPot:       'w',
	ActionIDBetDoublePot: 't',
}

var actionIDToName = [numDecisionActions]string{
	ActionIDFold:         "Fold",
	ActionIDCall:         "Call",
	ActionIDBet:          "Bet",
	ActionIDAllIn:        "AllIn",
	ActionIDBetHalfPot:   "BetHalfPot",
	ActionIDOffAbs:       "OffAbsBet",
	ActionIDBetPot:       "BetPot",
	ActionIDBetDoublePot: "BetDoublePot",
}

func (a Action) String() string {
	if a >= 0 && int(a) < numDecisionActions {
		return actionIDToName[a]
	}
	return fmt.Sprintf("Action(%d)", int(a))
}
