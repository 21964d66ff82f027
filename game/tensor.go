package game

// Tensor encodings for learning agents. Each logged action occupies four
// entries holding a binary code, so every distinct action character gets a
// distinct pattern:
//
//	none 0000, d 0001, f 0010, c 0011, p 0100,
//	a 0101, h 0110, b 0111, w 1000, t 1001
//
// The information-state tensor is the acting player's one-hot, their hole
// card bits, the board bits, then the action log. The observation tensor
// swaps the action log for each seat's commitment.

const actionCodeBits = 4

// Card planes are keyed by raw card id, which is sparse for decks with
// fewer than four suits, so they always span the full 52 ids.
const cardPlaneSlots = 52

var actionCharToCode = map[byte]int{
	'd': 1,
	'f': 2,
	'c': 3,
	'p': 4,
	'a': 5,
	'h': 6,
	'b': 7,
	'w': 8,
	't': 9,
}

// InformationStateTensorSize returns the fixed length of the information
// state encoding.
func (g *Game) InformationStateTensorSize() int {
	return g.config.NumPlayers + 2*cardPlaneSlots + actionCodeBits*g.MaxGameLength()
}

// ObservationTensorSize returns the fixed length of the observation
// encoding.
func (g *Game) ObservationTensorSize() int {
	return g.config.NumPlayers + 2*cardPlaneSlots + g.config.NumPlayers
}

// InformationStateTensor encodes the player's information set as a flat
// float vector of InformationStateTensorSize entries.
func (s *State) InformationStateTensor(player int) []float64 {
	g := s.game
	tensor := make([]float64, g.InformationStateTensorSize())
	offset := s.encodeCards(tensor, player)

	for i, ch := range s.actionSeq {
		code := actionCharToCode[ch]
		for b := 0; b < actionCodeBits; b++ {
			if code&(1<<b) != 0 {
				tensor[offset+i*actionCodeBits+b] = 1
			}
		}
	}
	return tensor
}

// ObservationTensor encodes what the player can currently see.
func (s *State) ObservationTensor(player int) []float64 {
	g := s.game
	tensor := make([]float64, g.ObservationTensorSize())
	offset := s.encodeCards(tensor, player)

	for p := 0; p < g.config.NumPlayers; p++ {
		tensor[offset+p] = float64(s.protocol.Ante(p))
	}
	return tensor
}

// encodeCards writes the player one-hot, hole bits, and board bits, and
// returns the next free offset.
func (s *State) encodeCards(tensor []float64, player int) int {
	g := s.game
	tensor[player] = 1
	offset := g.config.NumPlayers

	for _, c := range s.hole[player] {
		tensor[offset+int(c)] = 1
	}
	offset += cardPlaneSlots
	for _, c := range s.board {
		tensor[offset+int(c)] = 1
	}
	return offset + cardPlaneSlots
}
