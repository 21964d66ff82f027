// Package game implements an action-abstracted poker state machine: chance
// nodes deal cards, decision nodes offer a small menu of pot-relative bets on
// top of an underlying betting protocol, and canonical hand indices feed
// per-round cluster tables for information abstraction.
package game

import (
	"fmt"

	"github.com/lox/abstractpoker/handindex"
)

// Game holds everything immutable across hands: configuration, the betting
// engine, per-round hand indexers, cluster tables, and the shared
// off-abstraction raise table. It is safe for concurrent use; all mutation
// happens in States.
type Game struct {
	config       *Config
	engine       Engine
	indexers     []*handindex.Indexer
	clusters     [][]uint8
	offAbsRaises map[string]int
	maxLength    int
}

// Option configures a Game at construction.
type Option func(*Game)

// WithOffAbsRaise registers a shared off-abstraction raise-to amount for an
// information-state string. States inherit these; a later registration for
// the same string is ignored, the first value wins.
func WithOffAbsRaise(infoState string, amount int) Option {
	return func(g *Game) {
		if _, ok := g.offAbsRaises[infoState]; !ok {
			g.offAbsRaises[infoState] = amount
		}
	}
}

// NewGame validates the configuration and builds the immutable game. Hand
// indexers are built for the full 4x13 deck; smaller deck geometries play
// fine but report cluster id 0 in information states.
func NewGame(config *Config, engine Engine, opts ...Option) (*Game, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	if engine == nil {
		return nil, fmt.Errorf("game requires a betting engine")
	}

	g := &Game{
		config:       config,
		engine:       engine,
		clusters:     make([][]uint8, config.NumRounds),
		offAbsRaises: make(map[string]int),
	}

	if config.NumSuits == 4 && config.NumRanks == 13 {
		schedule := make([]int, config.NumRounds)
		schedule[0] = config.NumHoleCards + config.NumBoardCards[0]
		for r := 1; r < config.NumRounds; r++ {
			schedule[r] = config.NumBoardCards[r]
		}
		g.indexers = make([]*handindex.Indexer, config.NumRounds)
		for r := 0; r < config.NumRounds; r++ {
			ix, err := handindex.NewIndexer(r+1, schedule)
			if err != nil {
				return nil, fmt.Errorf("building indexer for round %d: %w", r+1, err)
			}
			g.indexers[r] = ix
		}
		for _, cl := range config.Clusters {
			g.clusters[cl.Round-1] = loadClusterTable(cl.Round, cl.Path, g.indexers[cl.Round-1].Size(cl.Round))
		}
	}

	for _, opt := range opts {
		opt(g)
	}

	g.maxLength = g.computeMaxGameLength()
	return g, nil
}

// Config returns the game configuration. Callers must not mutate it.
func (g *Game) Config() *Config {
	return g.config
}

// NumPlayers returns the number of seats.
func (g *Game) NumPlayers() int {
	return g.config.NumPlayers
}

// NumDistinctActions returns the size of the flat action id space: card ids
// at chance nodes, the abstract bet menu at decision nodes.
func (g *Game) NumDistinctActions() int {
	if ds := g.config.DeckSize(); ds > numDecisionActions {
		return ds
	}
	return numDecisionActions
}

// MaxChanceOutcomes returns the deck size.
func (g *Game) MaxChanceOutcomes() int {
	return g.config.DeckSize()
}

// MaxGameLength bounds the number of actions in any playthrough, deals
// included.
func (g *Game) MaxGameLength() int {
	return g.maxLength
}

func (g *Game) computeMaxGameLength() int {
	c := g.config
	length := c.NumPlayers * c.NumHoleCards
	raisesPerRound := 0
	if c.Betting == string(BettingLimit) {
		for _, m := range c.MaxRaises {
			if m > raisesPerRound {
				raisesPerRound = m
			}
		}
	} else {
		// Every raise commits at least one more big blind, so the deepest
		// stack bounds raises per round.
		maxStack := 0
		for _, s := range c.Stack {
			if s > maxStack {
				maxStack = s
			}
		}
		if bb := c.BigBlind(); bb > 0 {
			raisesPerRound = maxStack/bb + 1
		}
	}
	for r := 0; r < c.NumRounds; r++ {
		length += c.NumBoardCards[r]
		length += c.NumPlayers + raisesPerRound
	}
	return length
}

// MinUtility is the worst possible net outcome for any seat.
func (g *Game) MinUtility() float64 {
	maxStack := 0
	for _, s := range g.config.Stack {
		if s > maxStack {
			maxStack = s
		}
	}
	return -float64(maxStack)
}

// MaxUtility is the best possible net outcome for any seat.
func (g *Game) MaxUtility() float64 {
	total, minStack := 0, g.config.Stack[0]
	for _, s := range g.config.Stack {
		total += s
		if s < minStack {
			minStack = s
		}
	}
	return float64(total - minStack)
}

// UtilitySum is zero: chips only move between seats.
func (g *Game) UtilitySum() float64 {
	return 0
}

// Index returns the canonical index of a hand string for the 1-based round.
// Panics if indexing is unavailable for the configured deck or the round is
// out of range.
func (g *Game) Index(round int, cardString string) uint64 {
	return g.indexer(round).Index(cardString)
}

// CanonicalHand returns a representative hand string for a 1-based round
// index.
func (g *Game) CanonicalHand(round int, index uint64) string {
	return g.indexer(round).CanonicalHand(index)
}

// IndexerSize returns the number of canonical classes for the 1-based round.
func (g *Game) IndexerSize(round int) uint64 {
	return g.indexer(round).Size(round)
}

func (g *Game) indexer(round int) *handindex.Indexer {
	if g.indexers == nil {
		panic(fmt.Sprintf("game: hand indexing requires a 4x13 deck, configured %dx%d", g.config.NumSuits, g.config.NumRanks))
	}
	if round < 1 || round > len(g.indexers) {
		panic(fmt.Sprintf("game: round %d outside [1, %d]", round, len(g.indexers)))
	}
	return g.indexers[round-1]
}

// Cluster returns the bucket id for a canonical hand index in the 1-based
// round. Rounds without a loaded table use the placeholder index mod 200.
func (g *Game) Cluster(round int, index uint64) int {
	if round < 1 || round > g.config.NumRounds {
		panic(fmt.Sprintf("game: round %d outside [1, %d]", round, g.config.NumRounds))
	}
	table := g.clusters[round-1]
	if table == nil || index >= uint64(len(table)) {
		return int(index % placeholderClusters)
	}
	return int(table[index])
}

// OffAbsRaise looks up the shared off-abstraction raise table.
func (g *Game) OffAbsRaise(infoState string) (int, bool) {
	amount, ok := g.offAbsRaises[infoState]
	return amount, ok
}
