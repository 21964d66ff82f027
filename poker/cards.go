// Package poker provides the card primitives shared by the hand indexer and
// the game state machine: a compact card encoding and a bit-vector card set.
package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// RankChars is the ordered rank alphabet used by the two-character card
// encoding. Rank 0 is "2", rank 12 is "A".
const RankChars = "23456789TJQKA"

// SuitChars is the ordered suit alphabet. Suit 0 is spades.
const SuitChars = "shdc"

// Card is a single card encoded as rank<<2 | suit. The layout keeps cards of
// the same rank adjacent, which is what the indexer's rank-set arithmetic
// relies on.
type Card uint8

// MakeCard builds a card from a suit (0-3) and rank (0-12).
func MakeCard(suit, rank uint8) Card {
	return Card(rank<<2 | suit)
}

// Suit returns the suit of the card (0-3).
func (c Card) Suit() uint8 {
	return uint8(c) & 3
}

// Rank returns the rank of the card (0-12).
func (c Card) Rank() uint8 {
	return uint8(c) >> 2
}

// String returns the two-character representation, e.g. "As" or "Th".
func (c Card) String() string {
	rank, suit := c.Rank(), c.Suit()
	if rank > 12 || suit > 3 {
		return "??"
	}
	return string(RankChars[rank]) + string(SuitChars[suit])
}

// ParseCard parses a two-character card like "As".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card string: %q", s)
	}
	rank := strings.IndexByte(RankChars, s[0])
	if rank < 0 {
		return 0, fmt.Errorf("invalid rank: %c", s[0])
	}
	suit := strings.IndexByte(SuitChars, s[1])
	if suit < 0 {
		return 0, fmt.Errorf("invalid suit: %c", s[1])
	}
	return MakeCard(uint8(suit), uint8(rank)), nil
}

// ParseCards parses a concatenated card string like "5s9sAhKhTc".
func ParseCards(s string) ([]Card, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length card string: %q", s)
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// CardSet is a bit vector of cards, one bit per Card value. The zero value is
// the empty set. Sets are values; copying one copies its contents.
type CardSet uint64

// NewCardSet builds a set from the given cards.
func NewCardSet(cards ...Card) CardSet {
	var cs CardSet
	for _, c := range cards {
		cs.Add(c)
	}
	return cs
}

// NewDeck builds the full deck for the given geometry. Holdem is NewDeck(4, 13).
func NewDeck(numSuits, numRanks int) CardSet {
	var cs CardSet
	for rank := 0; rank < numRanks; rank++ {
		for suit := 0; suit < numSuits; suit++ {
			cs.Add(MakeCard(uint8(suit), uint8(rank)))
		}
	}
	return cs
}

// Add inserts a card into the set.
func (cs *CardSet) Add(c Card) {
	*cs |= 1 << c
}

// Remove deletes a card from the set.
func (cs *CardSet) Remove(c Card) {
	*cs &^= 1 << c
}

// Contains reports whether the set holds the card.
func (cs CardSet) Contains(c Card) bool {
	return cs&(1<<c) != 0
}

// NumCards returns the number of cards in the set.
func (cs CardSet) NumCards() int {
	return bits.OnesCount64(uint64(cs))
}

// Cards returns the cards in ascending card-id order (rank-major), which is
// the stable order used by String.
func (cs CardSet) Cards() []Card {
	cards := make([]Card, 0, cs.NumCards())
	for cs != 0 {
		cards = append(cards, Card(bits.TrailingZeros64(uint64(cs))))
		cs &= cs - 1
	}
	return cards
}

// String returns the concatenated two-character encodings of the cards in the
// set, e.g. "2s2hAc".
func (cs CardSet) String() string {
	var sb strings.Builder
	for _, c := range cs.Cards() {
		sb.WriteString(c.String())
	}
	return sb.String()
}
