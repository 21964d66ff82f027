package game

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// BettingType selects the raise structure.
type BettingType string

const (
	BettingLimit   BettingType = "limit"
	BettingNoLimit BettingType = "nolimit"
)

// BettingAbstraction selects which abstract bet actions decision nodes offer.
type BettingAbstraction string

const (
	// AbstractionFC offers fold and check/call only.
	AbstractionFC BettingAbstraction = "fc"
	// AbstractionFCPA adds the pot-relative bets and all-in.
	AbstractionFCPA BettingAbstraction = "fcpa"
)

// Config describes a game: the betting structure, the deal schedule, and
// optional cluster tables for hand bucketing.
type Config struct {
	Betting            string          `hcl:"betting,optional"`
	NumPlayers         int             `hcl:"num_players,optional"`
	NumRounds          int             `hcl:"num_rounds,optional"`
	Stack              []int           `hcl:"stack,optional"`
	Blind              []int           `hcl:"blind,optional"`
	RaiseSize          []int           `hcl:"raise_size,optional"`
	MaxRaises          []int           `hcl:"max_raises,optional"`
	FirstPlayer        []int           `hcl:"first_player,optional"`
	NumSuits           int             `hcl:"num_suits,optional"`
	NumRanks           int             `hcl:"num_ranks,optional"`
	NumHoleCards       int             `hcl:"num_hole_cards,optional"`
	NumBoardCards      []int           `hcl:"num_board_cards,optional"`
	BettingAbstraction string          `hcl:"betting_abstraction,optional"`
	Clusters           []ClusterConfig `hcl:"cluster,block"`
}

// ClusterConfig points a 1-based round at a flat binary cluster table, one
// byte per canonical hand index.
type ClusterConfig struct {
	Round int    `hcl:"round"`
	Path  string `hcl:"path"`
}

// DefaultConfig returns heads-up no-limit holdem with 12 big-blind stacks,
// matching the structure the rest of the package's examples assume.
func DefaultConfig() *Config {
	return &Config{
		Betting:            string(BettingNoLimit),
		NumPlayers:         2,
		NumRounds:          4,
		Stack:              []int{1200, 1200},
		Blind:              []int{100, 100},
		FirstPlayer:        []int{0, 0, 0, 0},
		NumSuits:           4,
		NumRanks:           13,
		NumHoleCards:       2,
		NumBoardCards:      []int{0, 3, 1, 1},
		BettingAbstraction: string(AbstractionFCPA),
	}
}

// LoadConfig loads a game configuration from an HCL file, filling unset
// fields from DefaultConfig. A missing file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Betting == "" {
		c.Betting = def.Betting
	}
	if c.NumPlayers == 0 {
		c.NumPlayers = def.NumPlayers
	}
	if c.NumRounds == 0 {
		c.NumRounds = def.NumRounds
	}
	if len(c.Stack) == 0 {
		for i := 0; i < c.NumPlayers; i++ {
			c.Stack = append(c.Stack, 1200)
		}
	}
	if len(c.Blind) == 0 {
		c.Blind = append([]int(nil), def.Blind...)
		for len(c.Blind) < c.NumPlayers {
			c.Blind = append(c.Blind, 0)
		}
	}
	if len(c.FirstPlayer) == 0 {
		c.FirstPlayer = make([]int, c.NumRounds)
	}
	if len(c.MaxRaises) == 0 && c.Betting == string(BettingLimit) {
		for i := 0; i < c.NumRounds; i++ {
			c.MaxRaises = append(c.MaxRaises, 4)
		}
	}
	if c.NumSuits == 0 {
		c.NumSuits = def.NumSuits
	}
	if c.NumRanks == 0 {
		c.NumRanks = def.NumRanks
	}
	if c.NumHoleCards == 0 {
		c.NumHoleCards = def.NumHoleCards
	}
	if len(c.NumBoardCards) == 0 {
		c.NumBoardCards = append([]int(nil), def.NumBoardCards[:min(c.NumRounds, len(def.NumBoardCards))]...)
		for len(c.NumBoardCards) < c.NumRounds {
			c.NumBoardCards = append(c.NumBoardCards, 0)
		}
	}
	if c.BettingAbstraction == "" {
		c.BettingAbstraction = def.BettingAbstraction
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	switch BettingType(c.Betting) {
	case BettingLimit, BettingNoLimit:
	default:
		return fmt.Errorf("invalid betting type: %s", c.Betting)
	}
	switch BettingAbstraction(c.BettingAbstraction) {
	case AbstractionFC, AbstractionFCPA:
	default:
		return fmt.Errorf("invalid betting abstraction: %s", c.BettingAbstraction)
	}
	if c.NumPlayers < 2 || c.NumPlayers > 10 {
		return fmt.Errorf("num_players must be between 2 and 10, got %d", c.NumPlayers)
	}
	if c.NumRounds < 1 || c.NumRounds > 4 {
		return fmt.Errorf("num_rounds must be between 1 and 4, got %d", c.NumRounds)
	}
	if len(c.Stack) != c.NumPlayers {
		return fmt.Errorf("stack needs %d entries, got %d", c.NumPlayers, len(c.Stack))
	}
	for i, s := range c.Stack {
		if s <= 0 {
			return fmt.Errorf("stack for player %d must be positive", i)
		}
	}
	if len(c.Blind) != c.NumPlayers {
		return fmt.Errorf("blind needs %d entries, got %d", c.NumPlayers, len(c.Blind))
	}
	if len(c.FirstPlayer) != c.NumRounds {
		return fmt.Errorf("first_player needs %d entries, got %d", c.NumRounds, len(c.FirstPlayer))
	}
	for _, p := range c.FirstPlayer {
		if p < 0 || p >= c.NumPlayers {
			return fmt.Errorf("first_player seat %d out of range", p)
		}
	}
	if c.Betting == string(BettingLimit) {
		if len(c.RaiseSize) != c.NumRounds {
			return fmt.Errorf("raise_size needs %d entries for limit games, got %d", c.NumRounds, len(c.RaiseSize))
		}
		if len(c.MaxRaises) != c.NumRounds {
			return fmt.Errorf("max_raises needs %d entries for limit games, got %d", c.NumRounds, len(c.MaxRaises))
		}
	}
	if c.NumSuits < 1 || c.NumSuits > 4 {
		return fmt.Errorf("num_suits must be between 1 and 4, got %d", c.NumSuits)
	}
	if c.NumRanks < 2 || c.NumRanks > 13 {
		return fmt.Errorf("num_ranks must be between 2 and 13, got %d", c.NumRanks)
	}
	if c.NumHoleCards < 1 {
		return fmt.Errorf("num_hole_cards must be positive, got %d", c.NumHoleCards)
	}
	if len(c.NumBoardCards) != c.NumRounds {
		return fmt.Errorf("num_board_cards needs %d entries, got %d", c.NumRounds, len(c.NumBoardCards))
	}
	totalCards := c.NumPlayers * c.NumHoleCards
	for _, n := range c.NumBoardCards {
		totalCards += n
	}
	if totalCards > c.NumSuits*c.NumRanks {
		return fmt.Errorf("deal requires %d cards, deck holds %d", totalCards, c.NumSuits*c.NumRanks)
	}
	for _, cl := range c.Clusters {
		if cl.Round < 1 || cl.Round > c.NumRounds {
			return fmt.Errorf("cluster round %d out of range [1, %d]", cl.Round, c.NumRounds)
		}
		if cl.Path == "" {
			return fmt.Errorf("cluster round %d has no path", cl.Round)
		}
	}
	return nil
}

// BigBlind returns the largest configured blind.
func (c *Config) BigBlind() int {
	bb := 0
	for _, b := range c.Blind {
		if b > bb {
			bb = b
		}
	}
	return bb
}

// DeckSize returns the number of cards in the configured deck.
func (c *Config) DeckSize() int {
	return c.NumSuits * c.NumRanks
}

// TotalBoardCards returns the board cards dealt by the end of the 0-based
// round.
func (c *Config) TotalBoardCards(round int) int {
	total := 0
	for i := 0; i <= round && i < len(c.NumBoardCards); i++ {
		total += c.NumBoardCards[i]
	}
	return total
}
