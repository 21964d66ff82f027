package game_test

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/abstractpoker/betting"
	"github.com/lox/abstractpoker/game"
	"github.com/lox/abstractpoker/poker"
)

func newGame(t *testing.T, cfg *game.Config, opts ...game.Option) *game.Game {
	t.Helper()
	if cfg == nil {
		cfg = game.DefaultConfig()
	}
	engine, err := betting.NewEngine(cfg)
	require.NoError(t, err)
	g, err := game.NewGame(cfg, engine, opts...)
	require.NoError(t, err)
	return g
}

// deal applies chance actions for the given card strings.
func deal(t *testing.T, s *game.State, cards string) {
	t.Helper()
	parsed, err := poker.ParseCards(cards)
	require.NoError(t, err)
	for _, c := range parsed {
		require.True(t, s.IsChanceNode(), "expected chance node before dealing %v", c)
		s.ApplyAction(game.Action(c))
	}
}

func TestGameAccessors(t *testing.T) {
	g := newGame(t, nil)

	assert.Equal(t, 2, g.NumPlayers())
	assert.Equal(t, 52, g.NumDistinctActions())
	assert.Equal(t, 52, g.MaxChanceOutcomes())
	assert.Equal(t, -1200.0, g.MinUtility())
	assert.Equal(t, 1200.0, g.MaxUtility())
	assert.Equal(t, 0.0, g.UtilitySum())
	assert.Greater(t, g.MaxGameLength(), 9)
}

func TestInitialStateDealsHoleCards(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()

	require.True(t, s.IsChanceNode())
	assert.Equal(t, game.ChancePlayerID, s.CurrentPlayer())
	assert.Len(t, s.LegalActions(), 52)

	outcomes := s.ChanceOutcomes()
	require.Len(t, outcomes, 52)
	assert.InDelta(t, 1.0/52, outcomes[0].Prob, 1e-12)

	deal(t, s, "AsAhKsKh")
	assert.False(t, s.IsChanceNode())
	assert.Equal(t, 0, s.CurrentPlayer())
}

func TestPreflopLegalActions(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	// Blinds are matched, so there is nothing to fold against. Pot is 200:
	// the plain bet clamps to the 200 minimum, which collides with the half
	// pot bet; both stay listed with their own ids.
	assert.Equal(t, []game.Action{
		game.ActionIDCall, game.ActionIDBet, game.ActionIDAllIn,
		game.ActionIDBetHalfPot, game.ActionIDBetPot, game.ActionIDBetDoublePot,
	}, s.LegalActions())

	raises := s.LegalRaises()
	assert.Equal(t, 200, raises[game.ActionIDBet])
	assert.Equal(t, 1200, raises[game.ActionIDAllIn])
	assert.Equal(t, 200, raises[game.ActionIDBetHalfPot])
	assert.Equal(t, 300, raises[game.ActionIDBetPot])
	assert.Equal(t, 500, raises[game.ActionIDBetDoublePot])
}

func TestFacingBetLegalActions(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	s.ApplyAction(game.ActionIDBetPot) // raise to 300
	legal := s.LegalActions()
	assert.Contains(t, legal, game.ActionIDFold)
	assert.Contains(t, legal, game.ActionIDCall)
	assert.Equal(t, 1, s.CurrentPlayer())
}

func TestApplyIllegalActionPanics(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	assert.Panics(t, func() { s.ApplyAction(game.ActionIDFold) })
	assert.Panics(t, func() { s.ApplyAction(game.Action(99)) })
}

func TestDealDuplicateCardPanics(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "As")

	as, err := poker.ParseCard("As")
	require.NoError(t, err)
	assert.Panics(t, func() { s.ApplyAction(game.Action(as)) })
}

func TestFoldReturns(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	s.ApplyAction(game.ActionIDBetPot) // to 300
	s.ApplyAction(game.ActionIDFold)

	require.True(t, s.IsTerminal())
	assert.Equal(t, game.TerminalPlayerID, s.CurrentPlayer())
	assert.Equal(t, []float64{100, -100}, s.Returns())
}

func TestAllInRunsOutBoard(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	s.ApplyAction(game.ActionIDAllIn)
	s.ApplyAction(game.ActionIDCall)

	require.True(t, s.IsChanceNode(), "board must run out for the showdown")
	deal(t, s, "2h7d9cTs3d")

	require.True(t, s.IsTerminal())
	assert.Equal(t, []float64{1200, -1200}, s.Returns())
}

func TestInformationStateString(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	cluster0 := g.Cluster(1, g.Index(1, "AsAh"))
	want := fmt.Sprintf("[Round 0][Player: 0][Pot: 200][Money: 1100 1100][InfoAbs: %d][Sequences: ]", cluster0)
	assert.Equal(t, want, s.InformationStateString(0))

	s.ApplyAction(game.ActionIDBetPot) // to 300

	// Sequences carry the protocol engine's raise-to notation.
	cluster1 := g.Cluster(1, g.Index(1, "KsKh"))
	want = fmt.Sprintf("[Round 0][Player: 1][Pot: 600][Money: 900 1100][InfoAbs: %d][Sequences: r300]", cluster1)
	assert.Equal(t, want, s.InformationStateString(1))
}

func TestInformationStateStringOutsideDecisionNodes(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()

	require.True(t, s.IsChanceNode())
	assert.Contains(t, s.InformationStateString(0), "[Player: -1]")

	deal(t, s, "AsAhKsKh")
	s.ApplyAction(game.ActionIDBetPot)
	s.ApplyAction(game.ActionIDFold)

	require.True(t, s.IsTerminal())
	assert.Contains(t, s.InformationStateString(0), "[Player: -4]")
	assert.Contains(t, s.InformationStateString(0), "[Sequences: r300f]")
	assert.Contains(t, s.ObservationString(0), "[Player: -4]")
}

func TestInformationStateStringPostflop(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	s.ApplyAction(game.ActionIDCall)
	s.ApplyAction(game.ActionIDCall)
	deal(t, s, "2h7d9c")

	cluster := g.Cluster(2, g.Index(2, "AsAh2h7d9c"))
	want := fmt.Sprintf("[Round 1][Player: 0][Pot: 200][Money: 1100 1100][InfoAbs: %d][Sequences: cc|]", cluster)
	assert.Equal(t, want, s.InformationStateString(0))
}

func TestObservationString(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	want := "[Round 0][Player: 0][Pot: 200][Money: 1100 1100][Private: KsKh][Ante: 100 100]"
	assert.Equal(t, want, s.ObservationString(1))
}

func TestOffAbsRaiseWriteOnce(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	info := s.InformationStateString(0)
	require.NoError(t, s.AddOffAbsRaise(info, 450))

	raises := s.LegalRaises()
	assert.Equal(t, 450, raises[game.ActionIDOffAbs])
	assert.Contains(t, s.LegalActions(), game.ActionIDOffAbs)

	// The first registration wins.
	assert.Error(t, s.AddOffAbsRaise(info, 500))
	assert.Equal(t, 450, s.LegalRaises()[game.ActionIDOffAbs])
}

func TestOffAbsRaiseFromGameTable(t *testing.T) {
	cfg := game.DefaultConfig()
	engine, err := betting.NewEngine(cfg)
	require.NoError(t, err)

	scratch, err := game.NewGame(cfg, engine)
	require.NoError(t, err)
	ps := scratch.NewInitialState()
	deal(t, ps, "AsAhKsKh")
	info := ps.InformationStateString(0)

	g, err := game.NewGame(cfg, engine,
		game.WithOffAbsRaise(info, 450),
		game.WithOffAbsRaise(info, 999))
	require.NoError(t, err)

	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")
	assert.Equal(t, 450, s.LegalRaises()[game.ActionIDOffAbs])
	assert.Error(t, s.AddOffAbsRaise(info, 500))
}

func TestOffAbsRaiseOutOfBoundsDisabled(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	// Below the minimum raise, so never offered.
	require.NoError(t, s.AddOffAbsRaise(s.InformationStateString(0), 150))
	assert.NotContains(t, s.LegalActions(), game.ActionIDOffAbs)
}

func TestApplyOffAbsRaise(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	require.NoError(t, s.AddOffAbsRaise(s.InformationStateString(0), 450))
	s.ApplyAction(game.ActionIDOffAbs)

	info := s.InformationStateString(1)
	assert.Contains(t, info, "[Sequences: r450]")
	assert.Contains(t, info, "[Pot: 900]")
}

func TestFCAbstractionOffersNoBets(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.BettingAbstraction = string(game.AbstractionFC)
	g := newGame(t, cfg)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	assert.Equal(t, []game.Action{game.ActionIDCall}, s.LegalActions())
}

func TestLimitOffersSingleBet(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.Betting = string(game.BettingLimit)
	cfg.RaiseSize = []int{100, 100, 200, 200}
	cfg.MaxRaises = []int{4, 4, 4, 4}
	g := newGame(t, cfg)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	assert.Equal(t, []game.Action{game.ActionIDCall, game.ActionIDBet}, s.LegalActions())
	assert.Equal(t, 200, s.LegalRaises()[game.ActionIDBet])
}

func TestCloneIsIndependent(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	clone := s.Clone()
	s.ApplyAction(game.ActionIDBetPot)

	assert.Equal(t, 0, clone.CurrentPlayer())
	assert.NotEqual(t, s.InformationStateString(1), clone.InformationStateString(1))
	assert.Contains(t, clone.LegalActions(), game.ActionIDBetPot)
}

func TestActionToString(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()

	as, err := poker.ParseCard("As")
	require.NoError(t, err)
	assert.Equal(t, "Deal As", s.ActionToString(game.ChancePlayerID, game.Action(as)))

	deal(t, s, "AsAhKsKh")
	assert.Equal(t, "Fold", s.ActionToString(0, game.ActionIDFold))
	assert.Equal(t, "Call", s.ActionToString(0, game.ActionIDCall))
	assert.Equal(t, "BetPot 300", s.ActionToString(0, game.ActionIDBetPot))
	assert.Equal(t, "AllIn 1200", s.ActionToString(0, game.ActionIDAllIn))
}

func TestTensorSizes(t *testing.T) {
	g := newGame(t, nil)
	s := g.NewInitialState()
	deal(t, s, "AsAhKsKh")

	info := s.InformationStateTensor(0)
	assert.Len(t, info, g.InformationStateTensorSize())
	obs := s.ObservationTensor(0)
	assert.Len(t, obs, g.ObservationTensorSize())

	// Player one-hot and ante entries.
	assert.Equal(t, 1.0, info[0])
	assert.Equal(t, 0.0, info[1])
	assert.Equal(t, 100.0, obs[len(obs)-2])
	assert.Equal(t, 100.0, obs[len(obs)-1])
}

func TestRandomPlaythroughsAreZeroSum(t *testing.T) {
	g := newGame(t, nil)
	rng := rand.New(rand.NewSource(1))

	for hand := 0; hand < 200; hand++ {
		s := g.NewInitialState()
		steps := 0
		for !s.IsTerminal() {
			legal := s.LegalActions()
			require.NotEmpty(t, legal)
			s.ApplyAction(legal[rng.Intn(len(legal))])
			steps++
			require.LessOrEqual(t, steps, g.MaxGameLength())
		}
		returns := s.Returns()
		sum := 0.0
		for _, r := range returns {
			sum += r
			assert.GreaterOrEqual(t, r, g.MinUtility())
			assert.LessOrEqual(t, r, g.MaxUtility())
		}
		assert.InDelta(t, 0.0, sum, 1e-9, "hand %d", hand)
	}
}

func TestClusterTableFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preflop.bin")
	table := make([]byte, 169)
	for i := range table {
		table[i] = byte(i % 50)
	}
	require.NoError(t, os.WriteFile(path, table, 0o644))

	cfg := game.DefaultConfig()
	cfg.Clusters = []game.ClusterConfig{{Round: 1, Path: path}}
	g := newGame(t, cfg)

	assert.Equal(t, 42%50, g.Cluster(1, 42))
}

func TestClusterMissingFileUsesPlaceholder(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.Clusters = []game.ClusterConfig{{Round: 2, Path: "/does/not/exist.bin"}}
	g := newGame(t, cfg)

	assert.Equal(t, int(1026452%200), g.Cluster(2, 1026452))
}

func TestClusterWrongLengthUsesPlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 10), 0o644))

	cfg := game.DefaultConfig()
	cfg.Clusters = []game.ClusterConfig{{Round: 1, Path: path}}
	g := newGame(t, cfg)

	assert.Equal(t, 42%200, g.Cluster(1, 42))
}
