package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
// King side is the "right" castle (towards h), queen side the "left" one.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	switch {
	case c == White && kingSide:
		return WhiteKingSideCastle
	case c == White:
		return WhiteQueenSideCastle
	case kingSide:
		return BlackKingSideCastle
	default:
		return BlackQueenSideCastle
	}
}

func bothRights(c Color) CastlingRights {
	return castleRight(c, true) | castleRight(c, false)
}

// castle describes one of the four castling geometries.
type castle struct {
	color    Color
	kingSide bool
	kingFrom Square
	kingTo   Square
	rookFrom Square
	rookTo   Square
	empty    []Square // must be vacant
	safe     []Square // must not be attacked, king's start included
}

var castles = [4]castle{
	{White, true, E1, G1, H1, F1, []Square{F1, G1}, []Square{E1, F1, G1}},
	{White, false, E1, C1, A1, D1, []Square{B1, C1, D1}, []Square{E1, D1, C1}},
	{Black, true, E8, G8, H8, F8, []Square{F8, G8}, []Square{E8, F8, G8}},
	{Black, false, E8, C8, A8, D8, []Square{B8, C8, D8}, []Square{E8, D8, C8}},
}

// castleFor returns the castling geometry matching a king step, if any.
func castleFor(from, to Square) (castle, bool) {
	for _, c := range castles {
		if c.kingFrom == from && c.kingTo == to {
			return c, true
		}
	}
	return castle{}, false
}

// Board is the game state: the occupancy of all 64 squares, whose turn it
// is, castling flags, captured material, pending promotions and the undo
// history. A Board is mutated only through Play, Unplay and PromotePawn and
// is not safe for concurrent use.
type Board struct {
	squares [64]Piece
	next    Color

	rights  CastlingRights
	castled [2]bool

	// counts[c] is the material captured by c.
	counts [2]int

	// promote[c] is the square of c's pawn awaiting promotion, or NoSquare.
	promote [2]Square

	history []MoveInfo
	offered []Move
}

// New returns a board set up at the standard starting position.
func New() *Board {
	b := &Board{history: make([]MoveInfo, 0, 64)}
	b.InitializeBoard()
	return b
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// InitializeBoard resets the board to the starting position with White to
// move. It can be called at any time to restart a game.
func (b *Board) InitializeBoard() {
	b.clear()
	for file := 0; file < 8; file++ {
		b.put(NewPiece(White, backRank[file], NewSquare(file, 0)))
		b.put(NewPiece(White, Pawn, NewSquare(file, 1)))
		b.put(NewPiece(Black, Pawn, NewSquare(file, 6)))
		b.put(NewPiece(Black, backRank[file], NewSquare(file, 7)))
	}
	b.rights = AllCastling
}

// clear empties the board and resets every flag.
func (b *Board) clear() {
	for sq := A1; sq <= H8; sq++ {
		b.squares[sq] = EmptyAt(sq)
	}
	b.next = White
	b.rights = NoCastling
	b.castled = [2]bool{}
	b.counts = [2]int{}
	b.promote = [2]Square{NoSquare, NoSquare}
	b.history = b.history[:0]
	b.offered = nil
}

func (b *Board) put(p Piece) {
	b.squares[p.Position] = p
}

// swap exchanges the occupants of two squares and fixes their positions.
func (b *Board) swap(a, c Square) {
	b.squares[a], b.squares[c] = b.squares[c], b.squares[a]
	b.squares[a].Position = a
	b.squares[c].Position = c
}

// Play makes a move on the board. Real moves (simulate == false) may mark a
// pawn as awaiting promotion and append castle rook steps to the offered
// moves; simulated moves leave no trace beyond the undo history.
func (b *Board) Play(m Move, simulate bool) {
	mustBeValid(m.From)
	mustBeValid(m.To)

	b.history = append(b.history, MoveInfo{Move: m, Rights: b.rights, Castled: b.castled})

	b.updateCastle(m, simulate)
	if !simulate && m.IsPromotion() {
		b.promote[m.Piece.Color] = m.To
	}
	if m.Eat() {
		b.counts[m.Piece.Color] += m.Eaten.Value()
		b.squares[m.Eaten.Position] = EmptyAt(m.Eaten.Position)
	}
	b.swap(m.From, m.To)
	b.next = b.next.Other()
}

// Unplay takes back the most recent move. It panics when nothing was played.
func (b *Board) Unplay() {
	n := len(b.history)
	if n == 0 {
		panic("board: Unplay with empty history")
	}
	info := b.history[n-1]
	b.history = b.history[:n-1]
	m := info.Move

	b.swap(m.From, m.To)
	b.squares[m.From].Type = m.Piece.Type
	if m.Eat() {
		b.squares[m.Eaten.Position] = m.Eaten
		b.counts[m.Piece.Color] -= m.Eaten.Value()
	}
	if m.Piece.Type == King {
		if c, ok := castleFor(m.From, m.To); ok && info.Rights.CanCastle(c.color, c.kingSide) {
			b.swap(c.rookFrom, c.rookTo)
		}
	}
	if c := m.Piece.Color; c < NoColor && b.promote[c] == m.To {
		b.promote[c] = NoSquare
	}

	b.rights = info.Rights
	b.castled = info.Castled
	b.next = b.next.Other()
}

// updateCastle clears castling rights touched by m and, when m is a castle,
// relocates the rook as part of the same ply.
func (b *Board) updateCastle(m Move, simulate bool) {
	if m.Piece.Type == King {
		c := m.Piece.Color
		if b.rights&bothRights(c) != 0 {
			if cs, ok := castleFor(m.From, m.To); ok && b.rights.CanCastle(c, cs.kingSide) {
				if !simulate {
					b.offered = append(b.offered, NewMove(b, cs.rookFrom, cs.rookTo))
				}
				b.swap(cs.rookFrom, cs.rookTo)
				b.castled[c] = true
			}
			b.rights &^= bothRights(c)
		}
	}

	b.rights &^= rookCornerRight(m.From)
	if m.Eaten.Type == Rook {
		b.rights &^= rookCornerRight(m.Eaten.Position)
	}
}

// rookCornerRight returns the right that depends on a rook standing on sq.
func rookCornerRight(sq Square) CastlingRights {
	switch sq {
	case A1:
		return WhiteQueenSideCastle
	case H1:
		return WhiteKingSideCastle
	case A8:
		return BlackQueenSideCastle
	case H8:
		return BlackKingSideCastle
	}
	return NoCastling
}

// PromotePawn resolves c's pending promotion by turning the pawn into pt.
// It panics when no promotion is pending for c or pt is not a valid choice.
func (b *Board) PromotePawn(pt PieceType, c Color) {
	if c >= NoColor || b.promote[c] == NoSquare {
		panic(fmt.Sprintf("board: no promotion pending for %s", c))
	}
	switch pt {
	case Knight, Bishop, Rook, Queen:
	default:
		panic(fmt.Sprintf("board: cannot promote to %s", pt))
	}
	b.squares[b.promote[c]].Type = pt
	b.promote[c] = NoSquare
}

// PendingPromotion returns the square of c's pawn awaiting promotion.
func (b *Board) PendingPromotion(c Color) (Square, bool) {
	if c >= NoColor {
		return NoSquare, false
	}
	sq := b.promote[c]
	return sq, sq != NoSquare
}

// PieceAt returns the occupant of sq (the empty sentinel if vacant).
func (b *Board) PieceAt(sq Square) Piece {
	mustBeValid(sq)
	return b.squares[sq]
}

// NextToPlay returns the side to move.
func (b *Board) NextToPlay() Color {
	return b.next
}

// SetNextToPlay overrides the side to move.
func (b *Board) SetNextToPlay(c Color) {
	b.next = c
}

// CastleRights returns the castling availability flags.
func (b *Board) CastleRights() CastlingRights {
	return b.rights
}

// HasCastled reports whether c has castled.
func (b *Board) HasCastled(c Color) bool {
	return c < NoColor && b.castled[c]
}

// Counts returns the material captured by White and by Black.
func (b *Board) Counts() (white, black int) {
	return b.counts[White], b.counts[Black]
}

// LastMove returns the most recently played move.
func (b *Board) LastMove() (Move, bool) {
	if len(b.history) == 0 {
		return Move{}, false
	}
	return b.history[len(b.history)-1].Move, true
}

// Depth returns the number of moves that can be taken back.
func (b *Board) Depth() int {
	return len(b.history)
}

// History returns a copy of the undo history, oldest first.
func (b *Board) History() []MoveInfo {
	out := make([]MoveInfo, len(b.history))
	copy(out, b.history)
	return out
}

// Moves returns the moves currently offered to the player.
func (b *Board) Moves() []Move {
	return b.offered
}

// SetMoves replaces the moves currently offered to the player.
func (b *Board) SetMoves(moves []Move) {
	b.offered = moves
}

// String returns a visual representation of the board.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			p := b.squares[NewSquare(file, rank)]
			if p.IsEmpty() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(p.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", b.next)
	fmt.Fprintf(&sb, "Castling: %s\n", b.rights)
	return sb.String()
}
