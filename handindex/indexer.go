// Package handindex maps dealt card tuples to dense canonical indices under
// suit isomorphism: two hands index identically exactly when one is a
// consistent suit relabeling of the other. Indices for a round are dense in
// [0, Size(round)), which is what makes byte-per-hand cluster tables feasible
// for the later betting rounds.
package handindex

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/lox/abstractpoker/poker"
)

// roundTables holds the precomputed per-round lookup tables. Suit
// configurations (per-suit card counts packed per round) are kept in
// ascending lexicographic order so permutation lookups can binary search.
type roundTables struct {
	configs        [][numSuits]uint32
	configEqual    []uint32
	configOffset   []uint64
	configSuitSize [][numSuits]uint32

	permToConfig []uint32
	permToPi     [][numSuits]uint8

	size uint64
}

// Indexer computes canonical hand indices for a fixed round schedule. It is
// immutable after construction and safe for concurrent use.
type Indexer struct {
	rounds        int
	cardsPerRound []int
	roundStart    []int
	cardsNum      []int // cumulative card counts per round
	rt            []roundTables
}

// NewIndexer builds an indexer for the first rounds entries of cardsPerRound.
// The round count must be within [1, 4] and the schedule must fit a 52-card
// deck.
func NewIndexer(rounds int, cardsPerRound []int) (*Indexer, error) {
	if rounds < 1 || rounds > maxRounds {
		return nil, fmt.Errorf("handindex: round count %d outside [1, %d]", rounds, maxRounds)
	}
	if len(cardsPerRound) < rounds {
		return nil, fmt.Errorf("handindex: schedule has %d rounds, need %d", len(cardsPerRound), rounds)
	}
	total := 0
	for i := 0; i < rounds; i++ {
		if cardsPerRound[i] < 0 || cardsPerRound[i] > roundMask {
			return nil, fmt.Errorf("handindex: invalid card count %d for round %d", cardsPerRound[i], i+1)
		}
		total += cardsPerRound[i]
	}
	if total == 0 || total > numCards {
		return nil, fmt.Errorf("handindex: schedule deals %d cards, deck holds %d", total, numCards)
	}

	initTables()

	ix := &Indexer{
		rounds:        rounds,
		cardsPerRound: append([]int(nil), cardsPerRound[:rounds]...),
		roundStart:    make([]int, rounds),
		cardsNum:      make([]int, rounds),
		rt:            make([]roundTables, rounds),
	}
	start := 0
	for i := 0; i < rounds; i++ {
		ix.roundStart[i] = start
		start += ix.cardsPerRound[i]
		ix.cardsNum[i] = start
	}

	ix.enumerateConfigurations(ix.tabulateConfiguration)
	for r := range ix.rt {
		rt := &ix.rt[r]
		var accum uint64
		for j := range rt.configOffset {
			next := accum + rt.configOffset[j]
			rt.configOffset[j] = accum
			accum = next
		}
		rt.size = accum
	}

	permCount := make([]int, rounds)
	ix.enumeratePermutations(func(round int, count [numSuits]uint32) {
		if idx := ix.permutationIndex(round, count); idx+1 > permCount[round] {
			permCount[round] = idx + 1
		}
	})
	for r := range ix.rt {
		ix.rt[r].permToConfig = make([]uint32, permCount[r])
		ix.rt[r].permToPi = make([][numSuits]uint8, permCount[r])
	}
	ix.enumeratePermutations(ix.tabulatePermutation)

	return ix, nil
}

// Rounds returns the configured round count.
func (ix *Indexer) Rounds() int {
	return ix.rounds
}

// Size returns the number of isomorphism classes for the 1-based round.
func (ix *Indexer) Size(round int) uint64 {
	if round < 1 || round > ix.rounds {
		panic(fmt.Sprintf("handindex: round %d outside [1, %d]", round, ix.rounds))
	}
	return ix.rt[round-1].size
}

// CardsNum returns the cumulative number of cards dealt by the end of the
// 1-based round.
func (ix *Indexer) CardsNum(round int) int {
	if round < 1 || round > ix.rounds {
		panic(fmt.Sprintf("handindex: round %d outside [1, %d]", round, ix.rounds))
	}
	return ix.cardsNum[round-1]
}

// Index decodes a concatenated two-character card string ("5s9sAhKhTc") and
// returns the canonical index for the last configured round whose card-count
// boundary the input reaches. Panics if the string is malformed, exceeds the
// configured capacity, or does not land exactly on a round boundary.
func (ix *Indexer) Index(cardString string) uint64 {
	cards, err := poker.ParseCards(cardString)
	if err != nil {
		panic(fmt.Sprintf("handindex: %v", err))
	}
	return ix.IndexCards(cards)
}

// IndexCards is Index for already-decoded cards.
func (ix *Indexer) IndexCards(cards []poker.Card) uint64 {
	if len(cards) > ix.cardsNum[ix.rounds-1] {
		panic(fmt.Sprintf("handindex: %d cards exceeds capacity %d", len(cards), ix.cardsNum[ix.rounds-1]))
	}
	round := -1
	for i := 0; i < ix.rounds; i++ {
		if len(cards) >= ix.cardsNum[i] {
			round = i
		}
	}
	if round < 0 || len(cards) != ix.cardsNum[round] {
		panic(fmt.Sprintf("handindex: %d cards does not reach a round boundary", len(cards)))
	}

	var st indexState
	st.init()
	var index uint64
	for i := 0; i <= round; i++ {
		index = ix.indexNextRound(&st, cards[ix.roundStart[i]:ix.cardsNum[i]])
	}
	return index
}

// CanonicalHand returns a deterministic representative card string for the
// final configured round. Panics if index >= Size(rounds).
func (ix *Indexer) CanonicalHand(index uint64) string {
	cards := ix.unindex(ix.rounds-1, index)
	var sb strings.Builder
	for _, c := range cards {
		sb.WriteString(c.String())
	}
	return sb.String()
}

// CanonicalCards is CanonicalHand without the string encoding.
func (ix *Indexer) CanonicalCards(index uint64) []poker.Card {
	return ix.unindex(ix.rounds-1, index)
}

/* configuration enumeration */

// enumerateConfigurations walks every reachable per-suit card-count
// configuration, visiting each round's completed configuration once. The
// equality mask constrains interchangeable suits to non-increasing counts so
// each isomorphism class of configurations is produced exactly once.
func (ix *Indexer) enumerateConfigurations(observe func(round int, configuration [numSuits]uint32)) {
	var used, configuration [numSuits]uint32
	ix.enumConfig(0, uint32(ix.cardsPerRound[0]), 0, 1<<numSuits-2, &used, &configuration, observe)
}

func (ix *Indexer) enumConfig(round int, remaining uint32, suit int, eq uint32, used, configuration *[numSuits]uint32, observe func(int, [numSuits]uint32)) {
	if suit == numSuits {
		observe(round, *configuration)
		if round+1 < ix.rounds {
			ix.enumConfig(round+1, uint32(ix.cardsPerRound[round+1]), 0, eq, used, configuration, observe)
		}
		return
	}

	min := uint32(0)
	if suit == numSuits-1 {
		min = remaining
	}
	max := uint32(numRanks) - used[suit]
	if remaining < max {
		max = remaining
	}

	previous := uint32(numRanks + 1)
	wasEqual := eq&(1<<suit) != 0
	if wasEqual {
		previous = configuration[suit-1] >> (roundShift * (ix.rounds - round - 1)) & roundMask
		if previous < max {
			max = previous
		}
	}

	oldConfig, oldUsed := configuration[suit], used[suit]
	for i := min; i <= max; i++ {
		newEq := eq &^ (1 << suit)
		if wasEqual && i == previous {
			newEq |= 1 << suit
		}
		used[suit] = oldUsed + i
		configuration[suit] = oldConfig | i<<(roundShift*(ix.rounds-round-1))
		ix.enumConfig(round, remaining-i, suit+1, newEq, used, configuration, observe)
	}
	configuration[suit] = oldConfig
	used[suit] = oldUsed
}

// tabulateConfiguration inserts a configuration into the round's sorted
// tables and computes its suit sizes, equality flags, and class count (stored
// in configOffset until the prefix-sum pass turns counts into offsets).
func (ix *Indexer) tabulateConfiguration(round int, configuration [numSuits]uint32) {
	rt := &ix.rt[round]

	rt.configs = append(rt.configs, [numSuits]uint32{})
	rt.configSuitSize = append(rt.configSuitSize, [numSuits]uint32{})
	rt.configOffset = append(rt.configOffset, 0)
	rt.configEqual = append(rt.configEqual, 0)

	id := len(rt.configs) - 1
	for ; id > 0; id-- {
		if configLess(rt.configs[id-1], configuration) {
			break
		}
		rt.configs[id] = rt.configs[id-1]
		rt.configSuitSize[id] = rt.configSuitSize[id-1]
		rt.configOffset[id] = rt.configOffset[id-1]
		rt.configEqual[id] = rt.configEqual[id-1]
	}

	offset := uint64(1)
	var suitSize [numSuits]uint32
	var eq uint32
	for i := 0; i < numSuits; {
		size := uint64(1)
		remainingRanks := uint32(numRanks)
		for j := 0; j <= round; j++ {
			n := configuration[i] >> (roundShift * (ix.rounds - j - 1)) & roundMask
			size *= uint64(nCrRanks[remainingRanks][n])
			remainingRanks -= n
		}
		j := i + 1
		for j < numSuits && configuration[j] == configuration[i] {
			j++
		}
		for k := i; k < j; k++ {
			suitSize[k] = uint32(size)
		}
		offset *= nCrGroups[size+uint64(j-i)-1][j-i]
		for k := i + 1; k < j; k++ {
			eq |= 1 << k
		}
		i = j
	}

	rt.configs[id] = configuration
	rt.configSuitSize[id] = suitSize
	rt.configOffset[id] = offset
	rt.configEqual[id] = eq >> 1
}

func configLess(a, b [numSuits]uint32) bool {
	for i := 0; i < numSuits; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

/* permutation enumeration */

// enumeratePermutations walks every per-suit card-count split without the
// equality constraint, covering all raw deals a caller can present.
func (ix *Indexer) enumeratePermutations(observe func(round int, count [numSuits]uint32)) {
	var used, count [numSuits]uint32
	ix.enumPerm(0, uint32(ix.cardsPerRound[0]), 0, &used, &count, observe)
}

func (ix *Indexer) enumPerm(round int, remaining uint32, suit int, used, count *[numSuits]uint32, observe func(int, [numSuits]uint32)) {
	if suit == numSuits {
		observe(round, *count)
		if round+1 < ix.rounds {
			ix.enumPerm(round+1, uint32(ix.cardsPerRound[round+1]), 0, used, count, observe)
		}
		return
	}

	min := uint32(0)
	if suit == numSuits-1 {
		min = remaining
	}
	max := uint32(numRanks) - used[suit]
	if remaining < max {
		max = remaining
	}

	oldCount, oldUsed := count[suit], used[suit]
	for i := min; i <= max; i++ {
		used[suit] = oldUsed + i
		count[suit] = oldCount | i<<(roundShift*(ix.rounds-round-1))
		ix.enumPerm(round, remaining-i, suit+1, used, count, observe)
	}
	count[suit] = oldCount
	used[suit] = oldUsed
}

// permutationIndex ranks a per-suit count split; the same mixed-radix
// accumulation is maintained incrementally by indexState during indexing.
func (ix *Indexer) permutationIndex(round int, count [numSuits]uint32) int {
	idx, mult := 0, 1
	for i := 0; i <= round; i++ {
		remaining := ix.cardsPerRound[i]
		for j := 0; j < numSuits-1; j++ {
			size := int(count[j] >> (roundShift * (ix.rounds - i - 1)) & roundMask)
			idx += mult * size
			mult *= remaining + 1
			remaining -= size
		}
	}
	return idx
}

func (ix *Indexer) tabulatePermutation(round int, count [numSuits]uint32) {
	rt := &ix.rt[round]
	idx := ix.permutationIndex(round, count)

	// Stable sort of suits by count descending: ties keep suit order, which
	// pins a unique configuration per permutation.
	var pi [numSuits]uint8
	for i := range pi {
		pi[i] = uint8(i)
	}
	for i := 1; i < numSuits; i++ {
		j, piI := i, pi[i]
		for ; j > 0; j-- {
			if count[piI] > count[pi[j-1]] {
				pi[j] = pi[j-1]
			} else {
				break
			}
		}
		pi[j] = piI
	}
	rt.permToPi[idx] = pi

	var sorted [numSuits]uint32
	for i := range sorted {
		sorted[i] = count[pi[i]]
	}
	low, high := 0, len(rt.configs)
	for low < high {
		mid := (low + high) / 2
		cmp := 0
		for i := 0; i < numSuits; i++ {
			if rt.configs[mid][i] != sorted[i] {
				if rt.configs[mid][i] > sorted[i] {
					cmp = -1
				} else {
					cmp = 1
				}
				break
			}
		}
		switch {
		case cmp < 0:
			high = mid
		case cmp > 0:
			low = mid + 1
		default:
			low, high = mid, mid
		}
	}
	rt.permToConfig[idx] = uint32(low)
}

/* indexing */

// indexState carries the per-suit rank-set indices and the permutation rank
// across chained rounds.
type indexState struct {
	suitIndex      [numSuits]uint64
	suitMultiplier [numSuits]uint64
	usedRanks      [numSuits]uint32
	round          int
	permIndex      int
	permMultiplier int
}

func (st *indexState) init() {
	*st = indexState{permMultiplier: 1}
	for i := range st.suitMultiplier {
		st.suitMultiplier[i] = 1
	}
}

func (ix *Indexer) indexNextRound(st *indexState, cards []poker.Card) uint64 {
	round := st.round
	st.round++

	var ranks, shiftedRanks [numSuits]uint32
	for _, c := range cards {
		rank, suit := uint32(c.Rank()), c.Suit()
		rankBit := uint32(1) << rank
		if ranks[suit]&rankBit != 0 || st.usedRanks[suit]&rankBit != 0 {
			panic(fmt.Sprintf("handindex: duplicate card %v", c))
		}
		ranks[suit] |= rankBit
		shiftedRanks[suit] |= rankBit >> uint(bits.OnesCount32((rankBit-1)&st.usedRanks[suit]))
	}

	for i := 0; i < numSuits; i++ {
		usedSize := bits.OnesCount32(st.usedRanks[i])
		thisSize := bits.OnesCount32(ranks[i])
		st.suitIndex[i] += st.suitMultiplier[i] * uint64(rankSetToIndex[shiftedRanks[i]])
		st.suitMultiplier[i] *= uint64(nCrRanks[numRanks-usedSize][thisSize])
		st.usedRanks[i] |= ranks[i]
	}

	remaining := len(cards)
	for i := 0; i < numSuits-1; i++ {
		thisSize := bits.OnesCount32(ranks[i])
		st.permIndex += st.permMultiplier * thisSize
		st.permMultiplier *= remaining + 1
		remaining -= thisSize
	}

	rt := &ix.rt[round]
	conf := rt.permToConfig[st.permIndex]
	pi := rt.permToPi[st.permIndex]
	equalFlags := rt.configEqual[conf]
	offset := rt.configOffset[conf]

	var suitIndex, suitMultiplier [numSuits]uint64
	for i := 0; i < numSuits; i++ {
		suitIndex[i] = st.suitIndex[pi[i]]
		suitMultiplier[i] = st.suitMultiplier[pi[i]]
	}

	index := offset
	multiplier := uint64(1)
	for i := 0; i < numSuits; {
		j := i + 1
		for j < numSuits && equal[equalFlags][j] {
			j++
		}
		groupLen := j - i

		var part, size uint64
		if groupLen == 1 {
			part, size = suitIndex[i], suitMultiplier[i]
		} else {
			sortAscending(suitIndex[i:j])
			part = suitIndex[i]
			for k := 1; k < groupLen; k++ {
				part += nCrGroups[suitIndex[i+k]+uint64(k)][k+1]
			}
			size = nCrGroups[suitMultiplier[i]+uint64(groupLen)-1][groupLen]
		}

		index += multiplier * part
		multiplier *= size
		i = j
	}
	return index
}

func sortAscending(v []uint64) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}

/* unindexing */

// unindex reconstructs the representative hand for a 0-based round index.
func (ix *Indexer) unindex(round int, index uint64) []poker.Card {
	rt := &ix.rt[round]
	if index >= rt.size {
		panic(fmt.Sprintf("handindex: index %d out of range [0, %d)", index, rt.size))
	}

	// Largest configuration whose offset does not exceed the index.
	lo, hi := 0, len(rt.configs)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if rt.configOffset[mid] <= index {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	conf := lo
	index -= rt.configOffset[conf]
	configuration := rt.configs[conf]

	var suitIndex [numSuits]uint64
	for i := 0; i < numSuits; {
		j := i + 1
		for j < numSuits && configuration[j] == configuration[i] {
			j++
		}
		groupLen := j - i
		suitSize := uint64(rt.configSuitSize[conf][i])
		groupSize := nCrGroups[suitSize+uint64(groupLen)-1][groupLen]
		groupIndex := index % groupSize
		index /= groupSize

		// Peel the multiset index from its largest component down.
		for k := groupLen - 1; k >= 1; k-- {
			glo, ghi := uint64(0), suitSize-1
			for glo < ghi {
				mid := (glo + ghi + 1) / 2
				if nCrGroups[mid+uint64(k)][k+1] <= groupIndex {
					glo = mid
				} else {
					ghi = mid - 1
				}
			}
			suitIndex[i+k] = glo
			groupIndex -= nCrGroups[glo+uint64(k)][k+1]
		}
		suitIndex[i] = groupIndex
		i = j
	}

	cards := make([]poker.Card, ix.cardsNum[round])
	locs := make([]int, round+1)
	for i := 0; i <= round; i++ {
		locs[i] = ix.roundStart[i]
	}
	for i := 0; i < numSuits; i++ {
		var used, usedCount uint32
		si := suitIndex[i]
		for j := 0; j <= round; j++ {
			n := configuration[i] >> (roundShift * (ix.rounds - j - 1)) & roundMask
			roundSize := uint64(nCrRanks[numRanks-usedCount][n])
			usedCount += n
			roundIndex := si % roundSize
			si /= roundSize

			shifted := indexToRankSet[n][roundIndex]
			var newRanks uint32
			for k := uint32(0); k < n; k++ {
				bit := shifted & -shifted
				shifted ^= bit
				rank := nthUnset[used][bits.TrailingZeros32(bit)]
				newRanks |= 1 << rank
				cards[locs[j]] = poker.MakeCard(uint8(i), rank)
				locs[j]++
			}
			used |= newRanks
		}
	}
	return cards
}
