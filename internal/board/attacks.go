package board

// Pre-computed target lists. Offsets that would leave the board are dropped
// here so generators never need to check for file wrap-around.
var (
	knightTargets [64][]Square
	kingTargets   [64][]Square

	// rays[sq][d] lists the squares from sq outwards in direction d, nearest
	// first. Directions 0-3 are orthogonal, 4-7 diagonal.
	rays [64][8][]Square
)

type delta struct{ df, dr int }

var (
	knightDeltas = [8]delta{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas   = [8]delta{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
	rayDeltas    = [8]delta{{0, 1}, {1, 0}, {0, -1}, {-1, 0}, {1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
)

const (
	firstOrthogonal = 0
	firstDiagonal   = 4
)

func init() {
	initLeaperTargets()
	initRays()
}

func initLeaperTargets() {
	for sq := A1; sq <= H8; sq++ {
		for _, d := range knightDeltas {
			if to, ok := sq.offset(d.df, d.dr); ok {
				knightTargets[sq] = append(knightTargets[sq], to)
			}
		}
		for _, d := range kingDeltas {
			if to, ok := sq.offset(d.df, d.dr); ok {
				kingTargets[sq] = append(kingTargets[sq], to)
			}
		}
	}
}

func initRays() {
	for sq := A1; sq <= H8; sq++ {
		for dir, d := range rayDeltas {
			for to, ok := sq.offset(d.df, d.dr); ok; to, ok = to.offset(d.df, d.dr) {
				rays[sq][dir] = append(rays[sq][dir], to)
			}
		}
	}
}

// pawnForward returns the rank step of a pawn of color c.
func pawnForward(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
// Castling never attacks, so it is not considered.
func (b *Board) IsSquareAttacked(sq Square, by Color) bool {
	mustBeValid(sq)

	// A pawn of color by attacks sq from one rank behind it.
	for _, df := range [2]int{-1, 1} {
		if from, ok := sq.offset(df, -pawnForward(by)); ok && b.is(from, by, Pawn) {
			return true
		}
	}
	for _, from := range knightTargets[sq] {
		if b.is(from, by, Knight) {
			return true
		}
	}
	for _, from := range kingTargets[sq] {
		if b.is(from, by, King) {
			return true
		}
	}
	for dir := range rays[sq] {
		slider := Rook
		if dir >= firstDiagonal {
			slider = Bishop
		}
		for _, from := range rays[sq][dir] {
			p := b.squares[from]
			if p.IsEmpty() {
				continue
			}
			if p.Color == by && (p.Type == slider || p.Type == Queen) {
				return true
			}
			break
		}
	}
	return false
}

func (b *Board) is(sq Square, c Color, pt PieceType) bool {
	p := b.squares[sq]
	return p.Color == c && p.Type == pt
}

// KingSquare returns the square of c's king, or NoSquare if it is missing.
func (b *Board) KingSquare(c Color) Square {
	for sq := A1; sq <= H8; sq++ {
		if b.is(sq, c, King) {
			return sq
		}
	}
	return NoSquare
}

// IsCheck reports whether c's king is attacked by the opponent.
func (b *Board) IsCheck(c Color) bool {
	k := b.KingSquare(c)
	if k == NoSquare {
		return false
	}
	return b.IsSquareAttacked(k, c.Other())
}
