package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color. NoColor stays NoColor.
func (c Color) Other() Color {
	if c >= NoColor {
		return NoColor
	}
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the type of a chess piece.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the FEN character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	chars := []byte{' ', 'p', 'n', 'b', 'r', 'q', 'k'}
	if pt > King {
		return ' '
	}
	return chars[pt]
}

// PieceTypeFromChar converts a promotion letter (either case) to a PieceType.
func PieceTypeFromChar(c byte) PieceType {
	switch c {
	case 'p', 'P':
		return Pawn
	case 'n', 'N':
		return Knight
	case 'b', 'B':
		return Bishop
	case 'r', 'R':
		return Rook
	case 'q', 'Q':
		return Queen
	case 'k', 'K':
		return King
	default:
		return NoPieceType
	}
}

// PieceValue is the material value of each piece type in pawns.
// Kings are never captured and count for nothing.
var PieceValue = [7]int{0, 1, 3, 3, 5, 9, 0}

// Piece is the occupant of a square. Empty squares hold a sentinel piece
// with NoColor and NoPieceType that still knows its own position.
type Piece struct {
	Color    Color
	Type     PieceType
	Position Square
}

// NewPiece creates a piece standing on sq.
func NewPiece(c Color, pt PieceType, sq Square) Piece {
	return Piece{Color: c, Type: pt, Position: sq}
}

// EmptyAt returns the sentinel for an unoccupied square.
func EmptyAt(sq Square) Piece {
	return Piece{Color: NoColor, Type: NoPieceType, Position: sq}
}

// IsEmpty reports whether p is the empty-square sentinel.
func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}

// Value returns the material value of the piece.
func (p Piece) Value() int {
	return PieceValue[p.Type]
}

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black, a space for empty squares.
func (p Piece) String() string {
	if p.IsEmpty() {
		return " "
	}
	c := p.Type.Char()
	if p.Color == White {
		c -= 'a' - 'A'
	}
	return string(c)
}

// PieceFromChar converts a FEN character to a piece standing on sq.
func PieceFromChar(c byte, sq Square) Piece {
	pt := PieceTypeFromChar(c)
	if pt == NoPieceType {
		return EmptyAt(sq)
	}
	color := Black
	if c >= 'A' && c <= 'Z' {
		color = White
	}
	return NewPiece(color, pt, sq)
}
