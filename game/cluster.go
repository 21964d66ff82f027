package game

import (
	"os"

	"github.com/rs/zerolog/log"
)

// placeholderClusters is the modulus used for bucket ids when no cluster
// table is available for a round.
const placeholderClusters = 200

// loadClusterTable reads a flat binary cluster table: one unsigned byte per
// canonical hand index, exactly size bytes long. Any failure degrades to the
// placeholder bucketing, never to an error.
func loadClusterTable(round int, path string, size uint64) []uint8 {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug().Err(err).Int("round", round).Str("path", path).
			Msg("cluster table unavailable, using placeholder buckets")
		return nil
	}
	if uint64(len(data)) != size {
		log.Warn().Int("round", round).Str("path", path).
			Int("got", len(data)).Uint64("want", size).
			Msg("cluster table has wrong length, using placeholder buckets")
		return nil
	}
	return data
}
