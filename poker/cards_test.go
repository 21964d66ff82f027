package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardEncoding(t *testing.T) {
	c := MakeCard(0, 12)
	assert.Equal(t, uint8(0), c.Suit())
	assert.Equal(t, uint8(12), c.Rank())
	assert.Equal(t, "As", c.String())

	c = MakeCard(3, 0)
	assert.Equal(t, uint8(3), c.Suit())
	assert.Equal(t, uint8(0), c.Rank())
	assert.Equal(t, "2c", c.String())
}

func TestParseCard(t *testing.T) {
	for id := 0; id < 52; id++ {
		c := Card(id)
		parsed, err := ParseCard(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCard("Xs")
	assert.Error(t, err)
	_, err = ParseCard("Ax")
	assert.Error(t, err)
	_, err = ParseCard("A")
	assert.Error(t, err)
}

func TestParseCards(t *testing.T) {
	cards, err := ParseCards("5s9sAhKhTc")
	require.NoError(t, err)
	require.Len(t, cards, 5)
	assert.Equal(t, "5s", cards[0].String())
	assert.Equal(t, "Tc", cards[4].String())

	_, err = ParseCards("5s9")
	assert.Error(t, err)
	_, err = ParseCards("5sZZ")
	assert.Error(t, err)
}

func TestCardSet(t *testing.T) {
	var cs CardSet
	assert.Equal(t, 0, cs.NumCards())

	a := MakeCard(0, 12)
	k := MakeCard(1, 11)
	cs.Add(a)
	cs.Add(k)
	assert.Equal(t, 2, cs.NumCards())
	assert.True(t, cs.Contains(a))
	assert.True(t, cs.Contains(k))

	cs.Remove(a)
	assert.False(t, cs.Contains(a))
	assert.Equal(t, 1, cs.NumCards())
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck(4, 13)
	assert.Equal(t, 52, deck.NumCards())

	short := NewDeck(4, 6)
	assert.Equal(t, 24, short.NumCards())
	assert.True(t, short.Contains(MakeCard(2, 5)))
	assert.False(t, short.Contains(MakeCard(2, 6)))
}

func TestCardSetCardsAscending(t *testing.T) {
	cs := NewCardSet(MakeCard(3, 12), MakeCard(0, 0), MakeCard(1, 5))
	cards := cs.Cards()
	require.Len(t, cards, 3)
	for i := 1; i < len(cards); i++ {
		assert.Less(t, uint8(cards[i-1]), uint8(cards[i]))
	}
}
