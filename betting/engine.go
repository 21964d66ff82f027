// Package betting implements the total-spent betting protocol consumed by
// the game package: blinds, fold/call/raise validity with raise-to amounts,
// limit raise schedules, round advancement including all-in run-outs, and
// side-pot-correct settlement.
package betting

import (
	"fmt"

	"github.com/lox/abstractpoker/game"
	"github.com/lox/abstractpoker/poker"
)

// Engine creates hands for one game configuration. Immutable and safe for
// concurrent use.
type Engine struct {
	config *game.Config
}

// NewEngine validates the configuration and returns an engine for it.
func NewEngine(config *game.Config) (*Engine, error) {
	if config == nil {
		return nil, fmt.Errorf("betting: nil config")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("betting: %w", err)
	}
	showdown := config.NumHoleCards + config.TotalBoardCards(config.NumRounds-1)
	switch showdown {
	case 3, 5, 6, 7:
	default:
		return nil, fmt.Errorf("betting: cannot settle %d card showdowns", showdown)
	}
	return &Engine{config: config}, nil
}

// NewHand starts a hand with blinds posted and the first player to act.
func (e *Engine) NewHand() game.Protocol {
	c := e.config
	h := &handState{
		cfg:          c,
		spent:        make([]int, c.NumPlayers),
		folded:       make([]bool, c.NumPlayers),
		acted:        make([]bool, c.NumPlayers),
		seqs:         make([]string, c.NumRounds),
		hole:         make([]poker.CardSet, c.NumPlayers),
		lastRaiseInc: c.BigBlind(),
	}
	for p := 0; p < c.NumPlayers; p++ {
		blind := c.Blind[p]
		if blind > c.Stack[p] {
			blind = c.Stack[p]
		}
		h.spent[p] = blind
		if blind > h.maxSpend {
			h.maxSpend = blind
		}
	}
	h.current = h.nextActor(c.FirstPlayer[0])
	if h.current < 0 {
		// Blinds already have everyone all-in.
		h.completeRound()
	}
	return h
}

// handState is one hand of betting. Mutable, exclusively owned.
type handState struct {
	cfg *game.Config

	round    int
	finished bool
	current  int

	spent  []int
	folded []bool
	acted  []bool

	maxSpend     int
	lastRaiseInc int
	numRaises    int

	seqs []string

	hole  []poker.CardSet
	board poker.CardSet
}

func (h *handState) CurrentPlayer() int {
	if h.finished {
		return -1
	}
	return h.current
}

func (h *handState) IsFinished() bool { return h.finished }
func (h *handState) Round() int       { return h.round }

func (h *handState) NumFolded() int {
	n := 0
	for _, f := range h.folded {
		if f {
			n++
		}
	}
	return n
}

func (h *handState) Folded(player int) bool { return h.folded[player] }
func (h *handState) MaxSpend() int          { return h.maxSpend }
func (h *handState) Money(player int) int   { return h.cfg.Stack[player] - h.spent[player] }
func (h *handState) Ante(player int) int    { return h.spent[player] }

func (h *handState) BettingSequence(round int) string {
	if round < 0 || round >= len(h.seqs) {
		return ""
	}
	return h.seqs[round]
}

func (h *handState) SetHoleAndBoardCards(hole []poker.CardSet, board poker.CardSet) {
	copy(h.hole, hole)
	h.board = board
}

// IsValidAction reports move legality for the player to act. Folding
// requires an outstanding bet; calling is always legal; raising follows
// RaiseIsValid, with amount zero meaning any legal raise.
func (h *handState) IsValidAction(kind game.ActionKind, amount int) bool {
	if h.finished {
		return false
	}
	switch kind {
	case game.ActionFold:
		return h.spent[h.current] < h.maxSpend
	case game.ActionCall:
		return true
	case game.ActionRaise:
		min, max, ok := h.RaiseIsValid()
		if !ok {
			return false
		}
		return amount == 0 || (amount >= min && amount <= max)
	}
	return false
}

// RaiseIsValid returns the inclusive raise-to bounds for the player to act.
// The minimum raise adds the larger of the last raise increment and the big
// blind; a short stack may always raise all-in below that. Limit games pin
// both bounds to the round's fixed size and cap the raise count.
func (h *handState) RaiseIsValid() (min, max int, ok bool) {
	if h.finished {
		return 0, 0, false
	}
	stack := h.cfg.Stack[h.current]
	if stack <= h.maxSpend {
		return 0, 0, false
	}
	// Raising needs someone able to respond.
	responder := false
	for p := 0; p < h.cfg.NumPlayers; p++ {
		if p != h.current && !h.folded[p] && h.spent[p] < h.cfg.Stack[p] {
			responder = true
			break
		}
	}
	if !responder {
		return 0, 0, false
	}

	if game.BettingType(h.cfg.Betting) == game.BettingLimit {
		if h.numRaises >= h.cfg.MaxRaises[h.round] {
			return 0, 0, false
		}
		to := h.maxSpend + h.cfg.RaiseSize[h.round]
		if to > stack {
			to = stack
		}
		return to, to, true
	}

	inc := h.lastRaiseInc
	if bb := h.cfg.BigBlind(); inc < bb {
		inc = bb
	}
	min = h.maxSpend + inc
	if min > stack {
		min = stack
	}
	return min, stack, true
}

// DoAction applies a legal move for the player to act. Callers must check
// validity first; an illegal move panics.
func (h *handState) DoAction(kind game.ActionKind, amount int) {
	if !h.IsValidAction(kind, amount) {
		panic(fmt.Sprintf("betting: invalid action %d amount %d for player %d", kind, amount, h.current))
	}
	switch kind {
	case game.ActionFold:
		h.folded[h.current] = true
		h.seqs[h.round] += "f"
	case game.ActionCall:
		target := h.maxSpend
		if stack := h.cfg.Stack[h.current]; target > stack {
			target = stack
		}
		h.spent[h.current] = target
		h.acted[h.current] = true
		h.seqs[h.round] += "c"
	case game.ActionRaise:
		if amount == 0 {
			min, _, _ := h.RaiseIsValid()
			amount = min
		}
		if inc := amount - h.maxSpend; inc > h.lastRaiseInc {
			h.lastRaiseInc = inc
		}
		h.spent[h.current] = amount
		h.maxSpend = amount
		h.numRaises++
		for p := range h.acted {
			h.acted[p] = false
		}
		h.acted[h.current] = true
		h.seqs[h.round] += fmt.Sprintf("r%d", amount)
	}
	h.advance()
}

// advance moves to the next player, closing the round or the hand when
// betting is settled.
func (h *handState) advance() {
	if h.NumFolded() == h.cfg.NumPlayers-1 {
		h.finished = true
		h.current = -1
		return
	}

	next := h.nextActor(h.current + 1)
	if next < 0 || h.acted[next] {
		h.completeRound()
		return
	}
	h.current = next
}

// nextActor returns the first seat at or after from (wrapping) that can
// still put chips in, or -1.
func (h *handState) nextActor(from int) int {
	n := h.cfg.NumPlayers
	for i := 0; i < n; i++ {
		p := (from + i) % n
		if !h.folded[p] && h.spent[p] < h.cfg.Stack[p] {
			return p
		}
	}
	return -1
}

// completeRound advances to the next round with live betting, skipping
// rounds where fewer than two players can act, and finishes the hand past
// the last round. All-in hands land finished on the final round so the
// board can be run out.
func (h *handState) completeRound() {
	for {
		h.round++
		if h.round >= h.cfg.NumRounds {
			h.round = h.cfg.NumRounds - 1
			h.finished = true
			h.current = -1
			return
		}
		for p := range h.acted {
			h.acted[p] = false
		}
		h.lastRaiseInc = h.cfg.BigBlind()
		h.numRaises = 0

		canAct := 0
		for p := 0; p < h.cfg.NumPlayers; p++ {
			if !h.folded[p] && h.spent[p] < h.cfg.Stack[p] {
				canAct++
			}
		}
		if canAct >= 2 {
			h.current = h.nextActor(h.cfg.FirstPlayer[h.round])
			return
		}
	}
}

// Clone returns an independent deep copy.
func (h *handState) Clone() game.Protocol {
	clone := &handState{
		cfg:          h.cfg,
		round:        h.round,
		finished:     h.finished,
		current:      h.current,
		spent:        append([]int(nil), h.spent...),
		folded:       append([]bool(nil), h.folded...),
		acted:        append([]bool(nil), h.acted...),
		maxSpend:     h.maxSpend,
		lastRaiseInc: h.lastRaiseInc,
		numRaises:    h.numRaises,
		seqs:         append([]string(nil), h.seqs...),
		hole:         append([]poker.CardSet(nil), h.hole...),
		board:        h.board,
	}
	return clone
}
