package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// startMaterial is the value of one side's non-king pieces at the start.
const startMaterial = 8*1 + 2*3 + 2*3 + 2*5 + 9

// ParseFEN parses a FEN string and returns a Board.
//
// An en passant target becomes a synthetic double advance at the bottom of
// the undo history, so the capture is generated from the last move as in a
// played game. Captured material is derived from what is missing from the
// starting material. The move clocks are accepted but not tracked.
func ParseFEN(fen string) (*Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	b := &Board{history: make([]MoveInfo, 0, 64)}
	b.clear()

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(b, parts[0]); err != nil {
		return nil, err
	}
	for _, c := range [2]Color{White, Black} {
		kings := 0
		for sq := A1; sq <= H8; sq++ {
			if b.is(sq, c, King) {
				kings++
			}
		}
		if kings != 1 {
			return nil, fmt.Errorf("invalid FEN: %s has %d kings", c, kings)
		}
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		b.next = White
	case "b":
		b.next = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(b, parts[2]); err != nil {
		return nil, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %s", parts[3])
		}
		if err := b.setEnPassant(sq); err != nil {
			return nil, err
		}
	}

	// Half-move clock and full-move number (fields 4 and 5, optional)
	for i := 4; i < len(parts) && i < 6; i++ {
		if _, err := strconv.Atoi(parts[i]); err != nil {
			return nil, fmt.Errorf("invalid move counter: %s", parts[i])
		}
	}

	for _, c := range [2]Color{White, Black} {
		b.counts[c] = max(0, startMaterial-b.material(c.Other()))
	}

	return b, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			sq := NewSquare(file, rank)
			piece := PieceFromChar(byte(c), sq)
			if piece.IsEmpty() {
				return fmt.Errorf("invalid piece character: %c", c)
			}
			b.put(piece)
			file++
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
// A right whose king or rook is not on its home square is dropped.
func parseCastlingRights(b *Board, castling string) error {
	if castling == "-" {
		return nil
	}

	for _, c := range castling {
		var cr CastlingRights
		switch c {
		case 'K':
			cr = WhiteKingSideCastle
		case 'Q':
			cr = WhiteQueenSideCastle
		case 'k':
			cr = BlackKingSideCastle
		case 'q':
			cr = BlackQueenSideCastle
		default:
			return fmt.Errorf("invalid castling character: %c", c)
		}
		b.rights |= cr
	}

	for _, cs := range castles {
		if !b.is(cs.kingFrom, cs.color, King) || !b.is(cs.rookFrom, cs.color, Rook) {
			b.rights &^= castleRight(cs.color, cs.kingSide)
		}
	}
	return nil
}

// setEnPassant records the double advance that made sq an en passant target.
func (b *Board) setEnPassant(target Square) error {
	pusher := b.next.Other()
	fwd := pawnForward(pusher)
	if target.RelativeRank(pusher) != 2 {
		return fmt.Errorf("invalid en passant square: %s", target)
	}
	from, _ := target.offset(0, -fwd)
	to, _ := target.offset(0, fwd)
	if !b.is(to, pusher, Pawn) || !b.squares[target].IsEmpty() || !b.squares[from].IsEmpty() {
		return fmt.Errorf("invalid en passant square: %s: no pawn just advanced", target)
	}
	b.history = append(b.history, MoveInfo{
		Move:    Move{From: from, To: to, Piece: b.squares[to], Eaten: EmptyAt(to)},
		Rights:  b.rights,
		Castled: b.castled,
	})
	return nil
}

// material sums the values of c's pieces on the board.
func (b *Board) material(c Color) int {
	total := 0
	for sq := A1; sq <= H8; sq++ {
		if p := b.squares[sq]; p.Color == c {
			total += p.Value()
		}
	}
	return total
}

// EnPassantSquare returns the square behind a pawn that just advanced two
// squares, or NoSquare.
func (b *Board) EnPassantSquare() Square {
	last, ok := b.LastMove()
	if !ok || !last.IsDoublePush() {
		return NoSquare
	}
	return (last.From + last.To) / 2
}

// ToFEN returns the FEN representation of the board. The half-move clock is
// always 0 and the full-move number is derived from the undo history.
func (b *Board) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := b.squares[NewSquare(file, rank)]
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if b.next == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	// Castling rights
	sb.WriteByte(' ')
	sb.WriteString(b.rights.String())

	// En passant
	sb.WriteByte(' ')
	if ep := b.EnPassantSquare(); ep != NoSquare {
		sb.WriteString(ep.String())
	} else {
		sb.WriteByte('-')
	}

	sb.WriteString(" 0 ")
	sb.WriteString(strconv.Itoa(1 + len(b.history)/2))

	return sb.String()
}
