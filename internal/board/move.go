package board

import "fmt"

// Move describes one game action. Piece is the mover as it stood on From;
// Eaten is the occupant of the captured square before the move, or the
// empty sentinel. For en passant Eaten.Position is the captured pawn's
// square, not To.
type Move struct {
	From  Square
	To    Square
	Piece Piece
	Eaten Piece
}

// NewMove builds a move from the board's current occupants of from and to.
func NewMove(b *Board, from, to Square) Move {
	return Move{From: from, To: to, Piece: b.PieceAt(from), Eaten: b.PieceAt(to)}
}

// Eat reports whether the move captures a piece.
func (m Move) Eat() bool {
	return m.Eaten.Type != NoPieceType
}

// Equal compares two moves as game actions: same squares, same mover type and
// same captured type, regardless of the piece values carried.
func (m Move) Equal(o Move) bool {
	return m.From == o.From &&
		m.To == o.To &&
		m.Piece.Type == o.Piece.Type &&
		m.Eaten.Type == o.Eaten.Type
}

// IsCastle reports whether the move is a king's two-square castling step.
func (m Move) IsCastle() bool {
	return m.Piece.Type == King && abs(int(m.To)-int(m.From)) == 2
}

// IsDoublePush reports whether the move is a pawn's two-square advance.
func (m Move) IsDoublePush() bool {
	return m.Piece.Type == Pawn && abs(int(m.To)-int(m.From)) == 16
}

// IsPromotion reports whether the move brings a pawn to its last rank.
func (m Move) IsPromotion() bool {
	return m.Piece.Type == Pawn && m.To.RelativeRank(m.Piece.Color) == 7
}

// String returns the coordinate form of the move (e.g. "e2e4").
func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// Describe returns a verbose form listing both squares and piece types.
func (m Move) Describe() string {
	return fmt.Sprintf("%d, %d, %s, %s", m.From, m.To, m.Piece.Type, m.Eaten.Type)
}

// Contains reports whether moves holds a move equal to m.
func Contains(moves []Move, m Move) bool {
	for _, x := range moves {
		if x.Equal(m) {
			return true
		}
	}
	return false
}

// MoveInfo stores what Unplay needs beyond the move itself: the castling
// availability and has-castled flags as they were before the move.
type MoveInfo struct {
	Move    Move
	Rights  CastlingRights
	Castled [2]bool
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
