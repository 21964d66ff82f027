package handindex

import (
	"fmt"
	"io"

	"github.com/lox/abstractpoker/poker"
)

// Preflop indexes two-card starting hands into the 169 canonical classes.
type Preflop struct {
	ix *Indexer
}

// NewPreflop builds the single-round two-card indexer.
func NewPreflop() (*Preflop, error) {
	ix, err := NewIndexer(1, []int{2})
	if err != nil {
		return nil, err
	}
	return &Preflop{ix: ix}, nil
}

// Size returns the number of starting-hand classes, always 169 for a full
// deck.
func (p *Preflop) Size() uint64 {
	return p.ix.Size(1)
}

// Index returns the canonical index for a two-card string like "AsKh".
func (p *Preflop) Index(cardString string) uint64 {
	return p.ix.Index(cardString)
}

// IndexCards is Index for already-decoded cards.
func (p *Preflop) IndexCards(cards []poker.Card) uint64 {
	return p.ix.IndexCards(cards)
}

// CanonicalHand returns a representative two-card string for an index.
func (p *Preflop) CanonicalHand(index uint64) string {
	return p.ix.CanonicalHand(index)
}

// PrintTable writes the standard 13x13 starting-hand chart to w, ranks
// descending from ace. Cells above the diagonal are suited, on and below are
// offsuit and pairs.
func (p *Preflop) PrintTable(w io.Writer) error {
	for i := 0; i < numRanks; i++ {
		for j := 0; j < numRanks; j++ {
			c0 := poker.MakeCard(0, uint8(numRanks-1-j))
			suit1 := uint8(0)
			if j <= i {
				suit1 = 1
			}
			c1 := poker.MakeCard(suit1, uint8(numRanks-1-i))
			if _, err := fmt.Fprintf(w, "%3d ", p.ix.IndexCards([]poker.Card{c0, c1})); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
