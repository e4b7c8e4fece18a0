package board

// generator appends the pseudo-legal moves of p to moves.
type generator func(b *Board, p Piece, moves []Move) []Move

// generators dispatches on piece type. King castling is added separately so
// that attack probes never recurse into castle generation.
var generators = [7]generator{
	NoPieceType: func(_ *Board, _ Piece, moves []Move) []Move { return moves },
	Pawn:        (*Board).pawnMoves,
	Knight:      (*Board).knightMoves,
	Bishop:      (*Board).bishopMoves,
	Rook:        (*Board).rookMoves,
	Queen:       (*Board).queenMoves,
	King:        (*Board).kingMoves,
}

// PseudoLegalMoves returns the geometric moves of the piece on sq, ignoring
// whether they leave its own king in check. Castling is included.
func (b *Board) PseudoLegalMoves(sq Square) []Move {
	mustBeValid(sq)
	p := b.squares[sq]
	moves := generators[p.Type](b, p, nil)
	if p.Type == King {
		moves = b.castleMoves(p, moves)
	}
	return moves
}

func (b *Board) pawnMoves(p Piece, moves []Move) []Move {
	fwd := pawnForward(p.Color)

	if one, ok := p.Position.offset(0, fwd); ok && b.squares[one].IsEmpty() {
		moves = append(moves, Move{From: p.Position, To: one, Piece: p, Eaten: b.squares[one]})
		if p.Position.RelativeRank(p.Color) == 1 {
			two, _ := one.offset(0, fwd)
			if b.squares[two].IsEmpty() {
				moves = append(moves, Move{From: p.Position, To: two, Piece: p, Eaten: b.squares[two]})
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		to, ok := p.Position.offset(df, fwd)
		if !ok {
			continue
		}
		if t := b.squares[to]; !t.IsEmpty() && t.Color != p.Color {
			moves = append(moves, Move{From: p.Position, To: to, Piece: p, Eaten: t})
		}
	}

	if m, ok := b.enPassant(p); ok {
		moves = append(moves, m)
	}
	return moves
}

// enPassant returns p's en passant capture when the last move was an enemy
// pawn's double advance landing beside p.
func (b *Board) enPassant(p Piece) (Move, bool) {
	last, ok := b.LastMove()
	if !ok || !last.IsDoublePush() || last.Piece.Color == p.Color {
		return Move{}, false
	}
	if last.To.Rank() != p.Position.Rank() || abs(last.To.File()-p.Position.File()) != 1 {
		return Move{}, false
	}
	victim := b.squares[last.To]
	if victim.Type != Pawn || victim.Color == p.Color {
		return Move{}, false
	}
	to := (last.From + last.To) / 2
	return Move{From: p.Position, To: to, Piece: p, Eaten: victim}, true
}

func (b *Board) leaperMoves(p Piece, targets []Square, moves []Move) []Move {
	for _, to := range targets {
		if t := b.squares[to]; t.Color != p.Color {
			moves = append(moves, Move{From: p.Position, To: to, Piece: p, Eaten: t})
		}
	}
	return moves
}

func (b *Board) knightMoves(p Piece, moves []Move) []Move {
	return b.leaperMoves(p, knightTargets[p.Position], moves)
}

func (b *Board) kingMoves(p Piece, moves []Move) []Move {
	return b.leaperMoves(p, kingTargets[p.Position], moves)
}

// sliderMoves walks the rays [first, first+n) until blocked, capturing an
// enemy blocker and stopping short of an own one.
func (b *Board) sliderMoves(p Piece, first, n int, moves []Move) []Move {
	for dir := first; dir < first+n; dir++ {
		for _, to := range rays[p.Position][dir] {
			t := b.squares[to]
			if t.Color == p.Color {
				break
			}
			moves = append(moves, Move{From: p.Position, To: to, Piece: p, Eaten: t})
			if !t.IsEmpty() {
				break
			}
		}
	}
	return moves
}

func (b *Board) bishopMoves(p Piece, moves []Move) []Move {
	return b.sliderMoves(p, firstDiagonal, 4, moves)
}

func (b *Board) rookMoves(p Piece, moves []Move) []Move {
	return b.sliderMoves(p, firstOrthogonal, 4, moves)
}

func (b *Board) queenMoves(p Piece, moves []Move) []Move {
	return b.sliderMoves(p, firstOrthogonal, 8, moves)
}

// castleMoves appends the castles available to king p: the right remains,
// the rook stands on its corner, the path is empty and the king's start,
// path and destination are not attacked.
func (b *Board) castleMoves(p Piece, moves []Move) []Move {
	them := p.Color.Other()
	for _, c := range castles {
		if c.color != p.Color || c.kingFrom != p.Position || !b.rights.CanCastle(c.color, c.kingSide) {
			continue
		}
		if !b.is(c.rookFrom, c.color, Rook) || !b.allEmpty(c.empty) || b.anyAttacked(c.safe, them) {
			continue
		}
		moves = append(moves, Move{From: c.kingFrom, To: c.kingTo, Piece: p, Eaten: b.squares[c.kingTo]})
	}
	return moves
}

func (b *Board) allEmpty(squares []Square) bool {
	for _, sq := range squares {
		if !b.squares[sq].IsEmpty() {
			return false
		}
	}
	return true
}

func (b *Board) anyAttacked(squares []Square, by Color) bool {
	for _, sq := range squares {
		if b.IsSquareAttacked(sq, by) {
			return true
		}
	}
	return false
}

// isLegal plays m as a simulation and reports whether the mover's king is
// safe afterwards. The board is restored before returning.
func (b *Board) isLegal(m Move) bool {
	b.Play(m, true)
	ok := !b.IsCheck(m.Piece.Color)
	b.Unplay()
	return ok
}

// legalMovesAt appends the legal moves of the piece on sq to moves.
func (b *Board) legalMovesAt(sq Square, moves []Move) []Move {
	for _, m := range b.PseudoLegalMoves(sq) {
		if b.isLegal(m) {
			moves = append(moves, m)
		}
	}
	return moves
}

// MovesFrom returns the legal moves of the piece on sq. It is empty when sq
// does not hold a piece of the side to move.
func (b *Board) MovesFrom(sq Square) []Move {
	mustBeValid(sq)
	if p := b.squares[sq]; p.IsEmpty() || p.Color != b.next {
		return []Move{}
	}
	return b.legalMovesAt(sq, []Move{})
}

// LegalMoves returns the legal moves of every piece of color c.
func (b *Board) LegalMoves(c Color) []Move {
	moves := make([]Move, 0, 48)
	for sq := A1; sq <= H8; sq++ {
		if b.squares[sq].Color == c {
			moves = b.legalMovesAt(sq, moves)
		}
	}
	return moves
}

// hasLegalMove reports whether c has at least one legal move.
func (b *Board) hasLegalMove(c Color) bool {
	for sq := A1; sq <= H8; sq++ {
		if b.squares[sq].Color != c {
			continue
		}
		for _, m := range b.PseudoLegalMoves(sq) {
			if b.isLegal(m) {
				return true
			}
		}
	}
	return false
}

// IsCheckMate returns true if the side to move is checkmated.
func (b *Board) IsCheckMate() bool {
	return b.IsCheck(b.next) && !b.hasLegalMove(b.next)
}

// IsStalemate returns true if the side to move has no legal move and is not in check.
func (b *Board) IsStalemate() bool {
	return !b.IsCheck(b.next) && !b.hasLegalMove(b.next)
}

// IsDraw returns true if the position is a draw (stalemate or insufficient material).
func (b *Board) IsDraw() bool {
	return b.IsStalemate() || b.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate: kings
// only, kings and a single minor piece, or kings and two bishops of the same
// side.
func (b *Board) IsInsufficientMaterial() bool {
	var minors []Piece
	for sq := A1; sq <= H8; sq++ {
		switch p := b.squares[sq]; p.Type {
		case NoPieceType, King:
		case Knight, Bishop:
			minors = append(minors, p)
		default:
			return false
		}
	}

	switch len(minors) {
	case 0, 1:
		return true
	case 2:
		a, c := minors[0], minors[1]
		return a.Type == Bishop && c.Type == Bishop && a.Color == c.Color
	}
	return false
}

// IsThreatening reports whether a pseudo-legal move of one of c's pieces
// (castling excluded) lands on sq. Unlike IsSquareAttacked, pawn pushes count.
func (b *Board) IsThreatening(c Color, sq Square) bool {
	mustBeValid(sq)
	var buf [32]Move
	for from := A1; from <= H8; from++ {
		p := b.squares[from]
		if p.Color != c {
			continue
		}
		for _, m := range generators[p.Type](b, p, buf[:0]) {
			if m.To == sq {
				return true
			}
		}
	}
	return false
}

const (
	centreBonus = 0.1
	castleBonus = 0.9
)

var (
	whiteCentre = [2]Square{D5, E5}
	blackCentre = [2]Square{D4, E4}
)

// EvaluationScore returns the static evaluation from White's point of view:
// captured material difference plus small bonuses for central pressure and
// for having castled, and penalties for having lost the option to castle.
func (b *Board) EvaluationScore() float64 {
	score := float64(b.counts[White] - b.counts[Black])

	if b.IsThreatening(White, whiteCentre[0]) || b.IsThreatening(White, whiteCentre[1]) {
		score += centreBonus
	}
	if b.IsThreatening(Black, blackCentre[0]) || b.IsThreatening(Black, blackCentre[1]) {
		score -= centreBonus
	}

	sign := [2]float64{White: 1, Black: -1}
	for _, c := range [2]Color{White, Black} {
		switch {
		case b.castled[c]:
			score += sign[c] * castleBonus
		case b.rights&bothRights(c) == 0:
			score -= sign[c] * castleBonus
		}
	}
	return score
}
