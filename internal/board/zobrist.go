package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristPiece      [2][7][64]uint64 // [Color][PieceType][Square] - 7 to handle NoPieceType safely
	zobristEnPassant  [8]uint64        // One per file
	zobristCastling   [16]uint64       // All 16 castling combinations
	zobristCastled    [2]uint64        // XOR when the color has castled
	zobristSideToMove uint64           // XOR when black to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234) // Fixed seed

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}
	for i := 0; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}
	zobristCastled[White] = rng.next()
	zobristCastled[Black] = rng.next()
	zobristSideToMove = rng.next()
}

// Hash computes the Zobrist hash of the board from scratch. Two boards with
// equal hashes have, with overwhelming probability, the same occupancy,
// side to move, castling flags and en passant target.
func (b *Board) Hash() uint64 {
	var h uint64
	for sq := A1; sq <= H8; sq++ {
		if p := b.squares[sq]; !p.IsEmpty() {
			h ^= zobristPiece[p.Color][p.Type][sq]
		}
	}
	if ep := b.EnPassantSquare(); ep != NoSquare {
		h ^= zobristEnPassant[ep.File()]
	}
	h ^= zobristCastling[b.rights]
	for _, c := range [2]Color{White, Black} {
		if b.castled[c] {
			h ^= zobristCastled[c]
		}
	}
	if b.next == Black {
		h ^= zobristSideToMove
	}
	return h
}
