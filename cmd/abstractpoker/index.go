package main

import (
	"fmt"
	"os"

	"github.com/lox/abstractpoker/handindex"
)

// holdemSchedule is the standard deal: two hole cards, then flop, turn,
// river.
var holdemSchedule = []int{2, 3, 1, 1}

type IndexCmd struct {
	Round int    `help:"Round the hand reaches (1-4)" default:"4"`
	Hand  string `arg:"" help:"Concatenated cards, e.g. AsKh2c3c4d"`
}

func (cmd *IndexCmd) Run() error {
	ix, err := handindex.NewIndexer(cmd.Round, holdemSchedule)
	if err != nil {
		return err
	}
	index, err := safeIndex(ix, cmd.Hand)
	if err != nil {
		return err
	}
	fmt.Printf("%d\n", index)
	return nil
}

// safeIndex converts the indexer's precondition panics into errors at the
// CLI boundary.
func safeIndex(ix *handindex.Indexer, hand string) (index uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return ix.Index(hand), nil
}

type CanonicalCmd struct {
	Round int    `help:"Round of the index (1-4)" default:"4"`
	Index uint64 `arg:"" help:"Canonical index"`
}

func (cmd *CanonicalCmd) Run() error {
	ix, err := handindex.NewIndexer(cmd.Round, holdemSchedule)
	if err != nil {
		return err
	}
	if cmd.Index >= ix.Size(cmd.Round) {
		return fmt.Errorf("index %d out of range [0, %d)", cmd.Index, ix.Size(cmd.Round))
	}
	fmt.Println(ix.CanonicalHand(cmd.Index))
	return nil
}

type SizesCmd struct {
	Rounds int `help:"Number of rounds (1-4)" default:"4"`
}

func (cmd *SizesCmd) Run() error {
	ix, err := handindex.NewIndexer(cmd.Rounds, holdemSchedule)
	if err != nil {
		return err
	}
	for r := 1; r <= cmd.Rounds; r++ {
		fmt.Printf("round %d: %d cards, %d classes\n", r, ix.CardsNum(r), ix.Size(r))
	}
	return nil
}

type PreflopTableCmd struct{}

func (cmd *PreflopTableCmd) Run() error {
	p, err := handindex.NewPreflop()
	if err != nil {
		return err
	}
	return p.PrintTable(os.Stdout)
}
