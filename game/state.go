package game

import (
	"fmt"
	"strings"

	"github.com/lox/abstractpoker/poker"
)

// Player ids returned by CurrentPlayer outside decision nodes.
const (
	ChancePlayerID   = -1
	TerminalPlayerID = -4
)

type nodeType int

const (
	nodeChance nodeType = iota
	nodeDecision
	nodeTerminal
)

// ChanceOutcome pairs a chance action (a card id) with its probability.
type ChanceOutcome struct {
	Action Action
	Prob   float64
}

// State is one hand in progress. It owns a mutable Protocol and the dealt
// cards; it is not safe for concurrent use. Clone before exploring branches
// in parallel.
type State struct {
	game     *Game
	protocol Protocol

	deck  poker.CardSet
	hole  [][]poker.Card
	board []poker.Card

	// actionSeq logs one character per applied action, 'd' for deals.
	actionSeq []byte

	offAbsRaises map[string]int

	nodeType   nodeType
	possible   actionFlag
	potSize    int
	allIn      int
	halfPot    int
	fullPot    int
	doublePot  int
	offAbsSize int
}

// NewInitialState starts a fresh hand: blinds posted, nothing dealt.
func (g *Game) NewInitialState() *State {
	s := &State{
		game:         g,
		protocol:     g.engine.NewHand(),
		deck:         poker.NewDeck(g.config.NumSuits, g.config.NumRanks),
		hole:         make([][]poker.Card, g.config.NumPlayers),
		offAbsRaises: make(map[string]int),
	}
	s.recompute()
	return s
}

// Game returns the immutable game this state belongs to.
func (s *State) Game() *Game {
	return s.game
}

// IsTerminal reports whether the hand is over and settled.
func (s *State) IsTerminal() bool {
	return s.nodeType == nodeTerminal
}

// IsChanceNode reports whether the next action is a deal.
func (s *State) IsChanceNode() bool {
	return s.nodeType == nodeChance
}

// CurrentPlayer returns the seat to act, ChancePlayerID at deals, or
// TerminalPlayerID once the hand is over.
func (s *State) CurrentPlayer() int {
	switch s.nodeType {
	case nodeTerminal:
		return TerminalPlayerID
	case nodeChance:
		return ChancePlayerID
	default:
		return s.protocol.CurrentPlayer()
	}
}

// LegalActions returns the sorted action ids available at this node: card
// ids at chance nodes, abstract bet ids at decision nodes, nothing at
// terminals.
func (s *State) LegalActions() []Action {
	switch s.nodeType {
	case nodeTerminal:
		return nil
	case nodeChance:
		cards := s.deck.Cards()
		actions := make([]Action, len(cards))
		for i, c := range cards {
			actions[i] = Action(c)
		}
		return actions
	default:
		var actions []Action
		for id := Action(0); id < numDecisionActions; id++ {
			if s.possible&actionIDToFlag[id] != 0 {
				actions = append(actions, id)
			}
		}
		return actions
	}
}

// LegalRaises returns the raise-to amount behind each enabled bet action.
func (s *State) LegalRaises() map[Action]int {
	raises := make(map[Action]int)
	if s.nodeType != nodeDecision {
		return raises
	}
	if s.possible&flagBet != 0 {
		raises[ActionIDBet] = s.potSize
	}
	if s.possible&flagAllIn != 0 {
		raises[ActionIDAllIn] = s.allIn
	}
	if s.possible&flagBetHalfPot != 0 {
		raises[ActionIDBetHalfPot] = s.halfPot
	}
	if s.possible&flagOffAbs != 0 {
		raises[ActionIDOffAbs] = s.offAbsSize
	}
	if s.possible&flagBetPot != 0 {
		raises[ActionIDBetPot] = s.fullPot
	}
	if s.possible&flagBetDoublePot != 0 {
		raises[ActionIDBetDoublePot] = s.doublePot
	}
	return raises
}

// ChanceOutcomes returns the uniform deal distribution. Panics outside
// chance nodes.
func (s *State) ChanceOutcomes() []ChanceOutcome {
	if s.nodeType != nodeChance {
		panic("game: ChanceOutcomes called outside a chance node")
	}
	cards := s.deck.Cards()
	prob := 1.0 / float64(len(cards))
	outcomes := make([]ChanceOutcome, len(cards))
	for i, c := range cards {
		outcomes[i] = ChanceOutcome{Action: Action(c), Prob: prob}
	}
	return outcomes
}

// ApplyAction advances the state. Panics if the action is not legal at the
// current node.
func (s *State) ApplyAction(action Action) {
	switch s.nodeType {
	case nodeTerminal:
		panic("game: ApplyAction on a terminal state")
	case nodeChance:
		s.applyDeal(action)
	default:
		s.applyDecision(action)
	}
	s.recompute()
}

func (s *State) applyDeal(action Action) {
	card := poker.Card(action)
	if !s.deck.Contains(card) {
		panic(fmt.Sprintf("game: card %v is not available to deal", card))
	}
	s.deck.Remove(card)

	placed := false
	for p := 0; p < s.game.config.NumPlayers; p++ {
		if len(s.hole[p]) < s.game.config.NumHoleCards {
			s.hole[p] = append(s.hole[p], card)
			placed = true
			break
		}
	}
	if !placed {
		if len(s.board) >= s.game.config.TotalBoardCards(s.game.config.NumRounds-1) {
			panic("game: deal with hole and board already complete")
		}
		s.board = append(s.board, card)
	}
	s.actionSeq = append(s.actionSeq, 'd')

	holeSets := make([]poker.CardSet, len(s.hole))
	for p, cards := range s.hole {
		holeSets[p] = poker.NewCardSet(cards...)
	}
	s.protocol.SetHoleAndBoardCards(holeSets, poker.NewCardSet(s.board...))
}

func (s *State) applyDecision(action Action) {
	if action < 0 || int(action) >= numDecisionActions {
		panic(fmt.Sprintf("game: unknown action id %d", int(action)))
	}
	if s.possible&actionIDToFlag[action] == 0 {
		panic(fmt.Sprintf("game: action %v is not legal here", action))
	}

	switch action {
	case ActionIDFold:
		s.protocol.DoAction(ActionFold, 0)
	case ActionIDCall:
		s.protocol.DoAction(ActionCall, 0)
	case ActionIDBet:
		s.protocol.DoAction(ActionRaise, s.potSize)
	case ActionIDAllIn:
		s.protocol.DoAction(ActionRaise, s.allIn)
	case ActionIDBetHalfPot:
		s.protocol.DoAction(ActionRaise, s.halfPot)
	case ActionIDOffAbs:
		s.protocol.DoAction(ActionRaise, s.offAbsSize)
	case ActionIDBetPot:
		s.protocol.DoAction(ActionRaise, s.fullPot)
	case ActionIDBetDoublePot:
		s.protocol.DoAction(ActionRaise, s.doublePot)
	}
	s.actionSeq = append(s.actionSeq, actionIDToChar[action])
}

// recompute classifies the node after every transition and caches the legal
// abstract actions with their raise amounts.
func (s *State) recompute() {
	c := s.game.config
	s.possible = 0
	boardNeeded := c.TotalBoardCards(s.protocol.Round())

	if s.protocol.IsFinished() {
		if len(s.board) < boardNeeded {
			// Run out the board so showdowns can settle.
			s.nodeType = nodeChance
			s.possible = flagDeal
			return
		}
		s.nodeType = nodeTerminal
		return
	}

	for p := 0; p < c.NumPlayers; p++ {
		if len(s.hole[p]) < c.NumHoleCards {
			s.nodeType = nodeChance
			s.possible = flagDeal
			return
		}
	}
	if len(s.board) < boardNeeded {
		s.nodeType = nodeChance
		s.possible = flagDeal
		return
	}

	s.nodeType = nodeDecision
	if s.protocol.IsValidAction(ActionFold, 0) {
		s.possible |= flagFold
	}
	if s.protocol.IsValidAction(ActionCall, 0) {
		s.possible |= flagCheckCall
	}
	if BettingAbstraction(c.BettingAbstraction) == AbstractionFC {
		return
	}
	min, max, ok := s.protocol.RaiseIsValid()
	if !ok {
		return
	}

	if BettingType(c.Betting) == BettingLimit {
		// Fixed raise size, one bet action.
		s.possible |= flagBet
		s.potSize = min
		return
	}

	s.allIn = max
	maxSpend := s.protocol.MaxSpend()
	pot := maxSpend * (c.NumPlayers - s.protocol.NumFolded())

	s.potSize = pot
	if s.potSize < min {
		s.potSize = min
	}
	if s.potSize > s.allIn {
		s.potSize = s.allIn
	}
	s.possible |= flagBet

	if s.allIn > s.potSize {
		s.possible |= flagAllIn
	}
	if half := maxSpend + pot/2; half >= min && half < s.allIn {
		s.halfPot = half
		s.possible |= flagBetHalfPot
	}
	if full := maxSpend + pot; full >= min && full < s.allIn {
		s.fullPot = full
		s.possible |= flagBetPot
	}
	if double := maxSpend + 2*pot; double >= min && double < s.allIn {
		s.doublePot = double
		s.possible |= flagBetDoublePot
	}

	if len(s.offAbsRaises) > 0 || len(s.game.offAbsRaises) > 0 {
		info := s.InformationStateString(s.protocol.CurrentPlayer())
		amount, found := s.offAbsRaises[info]
		if !found {
			amount, found = s.game.OffAbsRaise(info)
		}
		if found && amount >= min && amount < s.allIn {
			s.offAbsSize = amount
			s.possible |= flagOffAbs
		}
	}
}

// AddOffAbsRaise registers a raise-to amount for an information-state
// string, visible to this state and its clones. The first registration wins;
// a duplicate, here or in the shared game table, is refused.
func (s *State) AddOffAbsRaise(infoState string, amount int) error {
	if _, ok := s.offAbsRaises[infoState]; ok {
		return fmt.Errorf("off-abstraction raise already registered for %q", infoState)
	}
	if _, ok := s.game.OffAbsRaise(infoState); ok {
		return fmt.Errorf("off-abstraction raise already registered for %q in the game table", infoState)
	}
	s.offAbsRaises[infoState] = amount
	if s.nodeType == nodeDecision {
		s.recompute()
	}
	return nil
}

// Returns gives each seat's net chip outcome. Panics before terminal.
func (s *State) Returns() []float64 {
	if s.nodeType != nodeTerminal {
		panic("game: Returns called before the hand is over")
	}
	returns := make([]float64, s.game.config.NumPlayers)
	for p := range returns {
		returns[p] = s.protocol.ValueOfState(p)
	}
	return returns
}

// InformationStateString is the stable key for a player's information set.
// Private cards appear only through the cluster id, so hands in the same
// bucket share a key.
func (s *State) InformationStateString(player int) string {
	c := s.game.config
	round := s.protocol.Round()

	money := make([]string, c.NumPlayers)
	for p := range money {
		money[p] = fmt.Sprintf("%d", s.protocol.Money(p))
	}
	pot := s.protocol.MaxSpend() * (c.NumPlayers - s.protocol.NumFolded())

	cluster := s.clusterID(player, round)

	seqs := make([]string, round+1)
	for r := 0; r <= round; r++ {
		seqs[r] = s.protocol.BettingSequence(r)
	}

	return fmt.Sprintf("[Round %d][Player: %d][Pot: %d][Money: %s][InfoAbs: %d][Sequences: %s]",
		round, s.CurrentPlayer(), pot,
		strings.Join(money, " "), cluster, strings.Join(seqs, "|"))
}

// clusterID buckets the player's cards. The index is only computed when the
// hole cards are complete and the board is either empty or holds at least
// three cards; otherwise the hand maps to bucket of index 0.
func (s *State) clusterID(player int, round int) int {
	var sb strings.Builder
	for _, c := range s.hole[player] {
		sb.WriteString(c.String())
	}
	holeLen := sb.Len()
	for _, c := range s.board {
		sb.WriteString(c.String())
	}
	boardLen := sb.Len() - holeLen

	index := uint64(0)
	if s.game.indexers != nil && holeLen == 4 && (boardLen == 0 || boardLen >= 6) {
		index = s.game.Index(min(round+1, s.game.config.NumRounds), sb.String())
	}
	return s.game.Cluster(min(round+1, s.game.config.NumRounds), index)
}

// ObservationString is what the player can see: public state plus their own
// cards and everyone's commitment.
func (s *State) ObservationString(player int) string {
	c := s.game.config

	money := make([]string, c.NumPlayers)
	ante := make([]string, c.NumPlayers)
	for p := 0; p < c.NumPlayers; p++ {
		money[p] = fmt.Sprintf("%d", s.protocol.Money(p))
		ante[p] = fmt.Sprintf("%d", s.protocol.Ante(p))
	}
	pot := s.protocol.MaxSpend() * (c.NumPlayers - s.protocol.NumFolded())

	var private strings.Builder
	for _, card := range s.hole[player] {
		private.WriteString(card.String())
	}

	return fmt.Sprintf("[Round %d][Player: %d][Pot: %d][Money: %s][Private: %s][Ante: %s]",
		s.protocol.Round(), s.CurrentPlayer(), pot,
		strings.Join(money, " "), private.String(), strings.Join(ante, " "))
}

// ActionToString names an action for logs and traces.
func (s *State) ActionToString(player int, action Action) string {
	if player == ChancePlayerID {
		return fmt.Sprintf("Deal %s", poker.Card(action))
	}
	switch action {
	case ActionIDFold:
		return "Fold"
	case ActionIDCall:
		return "Call"
	case ActionIDBet:
		return fmt.Sprintf("Bet %d", s.potSize)
	case ActionIDAllIn:
		return fmt.Sprintf("AllIn %d", s.allIn)
	case ActionIDBetHalfPot:
		return fmt.Sprintf("BetHalfPot %d", s.halfPot)
	case ActionIDOffAbs:
		return fmt.Sprintf("OffAbsBet %d", s.offAbsSize)
	case ActionIDBetPot:
		return fmt.Sprintf("BetPot %d", s.fullPot)
	case ActionIDBetDoublePot:
		return fmt.Sprintf("BetDoublePot %d", s.doublePot)
	}
	return fmt.Sprintf("Action(%d)", int(action))
}

// String renders the full state for debugging, private cards included.
func (s *State) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Round: %d\n", s.protocol.Round())
	for p, cards := range s.hole {
		fmt.Fprintf(&sb, "P%d cards: %s\n", p, cardsToString(cards))
	}
	fmt.Fprintf(&sb, "Board: %s\n", cardsToString(s.board))
	fmt.Fprintf(&sb, "Sequence: %s\n", s.actionSeq)
	return sb.String()
}

func cardsToString(cards []poker.Card) string {
	var sb strings.Builder
	for _, c := range cards {
		sb.WriteString(c.String())
	}
	return sb.String()
}

// Clone returns an independent copy safe to mutate in parallel with the
// original.
func (s *State) Clone() *State {
	clone := &State{
		game:       s.game,
		protocol:   s.protocol.Clone(),
		deck:       s.deck,
		board:      append([]poker.Card(nil), s.board...),
		actionSeq:  append([]byte(nil), s.actionSeq...),
		nodeType:   s.nodeType,
		possible:   s.possible,
		potSize:    s.potSize,
		allIn:      s.allIn,
		halfPot:    s.halfPot,
		fullPot:    s.fullPot,
		doublePot:  s.doublePot,
		offAbsSize: s.offAbsSize,
	}
	clone.hole = make([][]poker.Card, len(s.hole))
	for p, cards := range s.hole {
		clone.hole[p] = append([]poker.Card(nil), cards...)
	}
	clone.offAbsRaises = make(map[string]int, len(s.offAbsRaises))
	for k, v := range s.offAbsRaises {
		clone.offAbsRaises[k] = v
	}
	return clone
}
