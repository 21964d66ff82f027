package betting

import (
	"fmt"
	"sort"

	ph "github.com/paulhankin/poker"

	"github.com/lox/abstractpoker/poker"
)

// ValueOfState returns the seat's net chip outcome once the hand is
// finished. Settlement layers the pot by commitment level, so short all-ins
// win only what they covered.
func (h *handState) ValueOfState(player int) float64 {
	if !h.finished {
		panic("betting: ValueOfState before the hand is finished")
	}
	winnings := h.settle()
	return winnings[player] - float64(h.spent[player])
}

// settle distributes the pot and returns gross winnings per seat.
func (h *handState) settle() []float64 {
	n := h.cfg.NumPlayers
	winnings := make([]float64, n)

	contenders := 0
	for p := 0; p < n; p++ {
		if !h.folded[p] {
			contenders++
		}
	}

	ranks := make([]int16, n)
	if contenders > 1 {
		for p := 0; p < n; p++ {
			if !h.folded[p] {
				ranks[p] = h.handRank(p)
			}
		}
	}

	// Ascending distinct commitment levels form the pot layers.
	levels := append([]int(nil), h.spent...)
	sort.Ints(levels)
	levels = dedupe(levels)

	prev := 0
	for _, level := range levels {
		if level == 0 {
			continue
		}
		layer := 0
		for p := 0; p < n; p++ {
			contrib := h.spent[p]
			if contrib > level {
				contrib = level
			}
			if contrib > prev {
				layer += contrib - prev
			}
		}
		prev = level

		var best int16
		var winners []int
		for p := 0; p < n; p++ {
			if h.folded[p] || h.spent[p] < level {
				continue
			}
			switch {
			case len(winners) == 0 || ranks[p] > best:
				best = ranks[p]
				winners = winners[:0]
				winners = append(winners, p)
			case ranks[p] == best:
				winners = append(winners, p)
			}
		}
		if len(winners) == 0 {
			// Everyone at this level folded; the layer goes back to the
			// remaining contenders of the lower levels.
			for p := 0; p < n; p++ {
				if !h.folded[p] {
					winners = append(winners, p)
				}
			}
		}
		share := float64(layer) / float64(len(winners))
		for _, w := range winners {
			winnings[w] += share
		}
	}
	return winnings
}

// handRank scores a seat's best hand, higher is better. NewEngine rejects
// schedules whose showdown size is not scorable here.
func (h *handState) handRank(player int) int16 {
	cards := append(h.hole[player].Cards(), h.board.Cards()...)
	switch len(cards) {
	case 7:
		var hand [7]ph.Card
		for i, c := range cards {
			hand[i] = evalCard(c)
		}
		return ph.Eval7(&hand)
	case 6:
		return bestFiveOfSix(cards)
	case 5:
		var hand [5]ph.Card
		for i, c := range cards {
			hand[i] = evalCard(c)
		}
		return ph.Eval5(&hand)
	case 3:
		var hand [3]ph.Card
		for i, c := range cards {
			hand[i] = evalCard(c)
		}
		return ph.Eval3(&hand)
	default:
		panic(fmt.Sprintf("betting: cannot evaluate a %d card hand", len(cards)))
	}
}

func bestFiveOfSix(cards []poker.Card) int16 {
	var best int16
	var hand [5]ph.Card
	for skip := 0; skip < 6; skip++ {
		k := 0
		for i, c := range cards {
			if i == skip {
				continue
			}
			hand[k] = evalCard(c)
			k++
		}
		if rank := ph.Eval5(&hand); skip == 0 || rank > best {
			best = rank
		}
	}
	return best
}

var evalSuits = [4]ph.Suit{ph.Spade, ph.Heart, ph.Diamond, ph.Club}

// evalCard converts to the evaluator's encoding, where ranks run ace=1
// through king=13.
func evalCard(c poker.Card) ph.Card {
	rank := ph.Rank(c.Rank() + 2)
	if rank == 14 {
		rank = 1
	}
	card, err := ph.MakeCard(evalSuits[c.Suit()], rank)
	if err != nil {
		panic(fmt.Sprintf("betting: bad card %v: %v", c, err))
	}
	return card
}

func dedupe(sorted []int) []int {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}
