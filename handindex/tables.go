package handindex

import (
	"math/bits"
	"sync"
)

const (
	numSuits = 4
	numRanks = 13
	numCards = numSuits * numRanks

	maxRounds = 4

	// Per-round card counts are packed into 4-bit nibbles of a uint32, high
	// nibble first.
	roundShift = 4
	roundMask  = 0xf

	// Upper bound on per-suit sizes appearing as arguments to the multiset
	// binomial table. A suit holding all seven cards of a {2,3,1,1} schedule
	// reaches C(13,2)*C(11,3)*C(8,1)*C(7,1) = 720720.
	maxGroupIndex = 0x100000
)

var (
	tablesOnce sync.Once

	// nthUnset[set][k] is the index of the k-th zero bit of set, or 0xff.
	nthUnset [1 << numRanks][numRanks]uint8

	// equal[e][j] reports whether suit j shares a group with suit j-1 under
	// the packed equality flags e.
	equal [1 << (numSuits - 1)][numSuits]bool

	nCrRanks [numRanks + 1][numRanks + 1]uint32

	// rankSetToIndex gives the colexicographic index of a rank set among all
	// sets of the same cardinality; indexToRankSet is its inverse, keyed by
	// cardinality.
	rankSetToIndex [1 << numRanks]uint32
	indexToRankSet [numRanks + 1][1 << numRanks]uint32

	// nCrGroups[n][k] = C(n, k) for k <= numSuits, used for multiset indices
	// of suit groups. Allocated lazily: the table is large.
	nCrGroups [][numSuits + 1]uint64
)

func initTables() {
	tablesOnce.Do(func() {
		for e := 0; e < 1<<(numSuits-1); e++ {
			for j := 1; j < numSuits; j++ {
				equal[e][j] = e&(1<<(j-1)) != 0
			}
		}

		for i := 0; i < 1<<numRanks; i++ {
			set := ^uint32(i) & (1<<numRanks - 1)
			for j := 0; j < numRanks; j++ {
				if set != 0 {
					nthUnset[i][j] = uint8(bits.TrailingZeros32(set))
				} else {
					nthUnset[i][j] = 0xff
				}
				set &= set - 1
			}
		}

		nCrRanks[0][0] = 1
		for i := 1; i <= numRanks; i++ {
			nCrRanks[i][0] = 1
			nCrRanks[i][i] = 1
			for j := 1; j < i; j++ {
				nCrRanks[i][j] = nCrRanks[i-1][j-1] + nCrRanks[i-1][j]
			}
		}

		nCrGroups = make([][numSuits + 1]uint64, maxGroupIndex)
		nCrGroups[0][0] = 1
		for i := 1; i < maxGroupIndex; i++ {
			nCrGroups[i][0] = 1
			if i <= numSuits {
				nCrGroups[i][i] = 1
			}
			top := numSuits + 1
			if i < top {
				top = i
			}
			for j := 1; j < top; j++ {
				nCrGroups[i][j] = nCrGroups[i-1][j-1] + nCrGroups[i-1][j]
			}
		}

		for i := 0; i < 1<<numRanks; i++ {
			var idx uint32
			j := uint32(1)
			for set := uint32(i); set != 0; set &= set - 1 {
				idx += nCrRanks[bits.TrailingZeros32(set)][j]
				j++
			}
			rankSetToIndex[i] = idx
			indexToRankSet[bits.OnesCount32(uint32(i))][idx] = uint32(i)
		}
	})
}
