package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/lox/abstractpoker/betting"
	"github.com/lox/abstractpoker/game"
)

type SimulateCmd struct {
	Hands   int    `help:"Number of hands to play" default:"10000"`
	Workers int    `help:"Concurrent workers; 0 uses all CPUs" default:"0"`
	Config  string `help:"Game configuration HCL file" default:"game.hcl"`
	Seed    int64  `help:"Random seed; 0 uses a time seed" default:"0"`
}

func (cmd *SimulateCmd) Run() error {
	cfg, err := game.LoadConfig(cmd.Config)
	if err != nil {
		return err
	}
	engine, err := betting.NewEngine(cfg)
	if err != nil {
		return err
	}
	g, err := game.NewGame(cfg, engine)
	if err != nil {
		return err
	}

	workers := cmd.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	seed := cmd.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	log.Info().
		Int("hands", cmd.Hands).
		Int("workers", workers).
		Int64("seed", seed).
		Str("betting", cfg.Betting).
		Int("players", cfg.NumPlayers).
		Msg("starting simulation")

	bar := progressbar.Default(int64(cmd.Hands), "playing")
	var played, terminalSteps atomic.Int64
	returns := make([]atomic.Int64, cfg.NumPlayers)

	eg, ctx := errgroup.WithContext(context.Background())
	handsPerWorker := (cmd.Hands + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		eg.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(w)))
			for i := 0; i < handsPerWorker; i++ {
				if int(played.Load()) >= cmd.Hands {
					return nil
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				steps, vals, err := playHand(g, rng)
				if err != nil {
					return err
				}
				for p, v := range vals {
					returns[p].Add(int64(math.Round(v * 100)))
				}
				played.Add(1)
				terminalSteps.Add(int64(steps))
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	_ = bar.Finish()

	log.Info().
		Int64("hands", played.Load()).
		Float64("avg_actions", float64(terminalSteps.Load())/float64(played.Load())).
		Msg("simulation complete")
	for p := range returns {
		log.Info().
			Int("player", p).
			Float64("avg_return", float64(returns[p].Load())/100/float64(played.Load())).
			Msg("player results")
	}
	return nil
}

// playHand plays one hand with uniform random actions and checks the
// zero-sum invariant.
func playHand(g *game.Game, rng *rand.Rand) (int, []float64, error) {
	s := g.NewInitialState()
	steps := 0
	for !s.IsTerminal() {
		if steps > g.MaxGameLength() {
			return 0, nil, fmt.Errorf("hand exceeded max game length %d", g.MaxGameLength())
		}
		legal := s.LegalActions()
		if len(legal) == 0 {
			return 0, nil, fmt.Errorf("no legal actions at a non-terminal node:\n%s", s)
		}
		s.ApplyAction(legal[rng.Intn(len(legal))])
		steps++
	}
	vals := s.Returns()
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	if math.Abs(sum) > 1e-6 {
		return 0, nil, fmt.Errorf("returns sum to %f, expected 0:\n%s", sum, s)
	}
	return steps, vals, nil
}
