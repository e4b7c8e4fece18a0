package board

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

// playAll plays the moves given as from/to pairs on b.
func playAll(t *testing.T, b *Board, pairs ...Square) {
	t.Helper()
	for i := 0; i+1 < len(pairs); i += 2 {
		m := NewMove(b, pairs[i], pairs[i+1])
		if m.Piece.IsEmpty() {
			t.Fatalf("no piece on %s", pairs[i])
		}
		b.Play(m, false)
	}
}

// targets returns the sorted destination squares of moves.
func targets(moves []Move) []int {
	out := make([]int, 0, len(moves))
	for _, m := range moves {
		out = append(out, int(m.To))
	}
	sort.Ints(out)
	return out
}

func sameTargets(t *testing.T, label string, moves []Move, want ...int) {
	t.Helper()
	sort.Ints(want)
	got := targets(moves)
	if len(got) != len(want) {
		t.Fatalf("%s: got targets %v, want %v", label, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s: got targets %v, want %v", label, got, want)
		}
	}
}

// openingBoard plays a short game that leaves pins, en passant and castling
// options on the board. Black is to move afterwards.
func openingBoard(t *testing.T) *Board {
	t.Helper()
	b := New()
	playAll(t, b,
		12, 28, 52, 36, 6, 21, 62, 45, 21, 36, 45, 28, 36, 46, 59, 45,
		3, 12, 48, 32, 14, 30, 32, 24, 7, 6, 51, 43, 9, 25,
	)
	return b
}

func TestInitializeBoard(t *testing.T) {
	b := New()
	b.Play(NewMove(b, E2, E4), false)
	b.InitializeBoard()

	if b.NextToPlay() != White {
		t.Errorf("NextToPlay = %s, want White", b.NextToPlay())
	}
	if b.CastleRights() != AllCastling {
		t.Errorf("CastleRights = %s, want KQkq", b.CastleRights())
	}
	if b.Depth() != 0 {
		t.Errorf("Depth = %d, want 0", b.Depth())
	}
	if w, bl := b.Counts(); w != 0 || bl != 0 {
		t.Errorf("Counts = %d/%d, want 0/0", w, bl)
	}
	for _, c := range []Color{White, Black} {
		if _, ok := b.PendingPromotion(c); ok {
			t.Errorf("%s has a pending promotion", c)
		}
	}
	if got := b.ToFEN(); got != StartFEN {
		t.Errorf("ToFEN = %q, want %q", got, StartFEN)
	}
	for sq := A3; sq <= H6; sq++ {
		if p := b.PieceAt(sq); !p.IsEmpty() || p.Position != sq {
			t.Fatalf("square %s = %+v, want empty sentinel", sq, p)
		}
	}
}

func TestCastlingFlagsAfterOpening(t *testing.T) {
	b := openingBoard(t)
	cr := b.CastleRights()

	if !cr.CanCastle(Black, true) || !cr.CanCastle(Black, false) {
		t.Errorf("black rights = %s, want both", cr)
	}
	if !cr.CanCastle(White, false) {
		t.Errorf("white queen side right lost: %s", cr)
	}
	if cr.CanCastle(White, true) {
		t.Errorf("white king side right kept after rook move: %s", cr)
	}
}

func TestPieceMoves(t *testing.T) {
	b := openingBoard(t)

	if got := b.MovesFrom(28); len(got) != 0 {
		t.Errorf("pinned knight has moves %v", got)
	}
	if got := b.PseudoLegalMoves(28); len(got) == 0 {
		t.Error("pinned knight has no pseudo-legal moves")
	}

	sameTargets(t, "knight b1", b.legalMovesAt(1, nil), 16, 18)
	sameTargets(t, "king e8", b.MovesFrom(60), 59, 51)
	sameTargets(t, "pawn h7", b.MovesFrom(55), 47, 39, 46)
	sameTargets(t, "pawn d6", b.MovesFrom(43), 35)
	sameTargets(t, "bishop c8", b.MovesFrom(58), 51, 44, 37, 30)

	if got := b.MovesFrom(1); len(got) != 0 {
		t.Errorf("moves offered for the side not to move: %v", got)
	}
}

func TestEnPassant(t *testing.T) {
	b := openingBoard(t)
	_, eaten := b.Counts()

	ep := Move{From: 24, To: 17, Piece: b.PieceAt(24), Eaten: b.PieceAt(25)}
	moves := b.MovesFrom(24)
	if !Contains(moves, ep) {
		t.Fatalf("en passant missing from %v", moves)
	}

	b.Play(ep, false)
	if !b.PieceAt(25).IsEmpty() {
		t.Error("captured pawn still on b4")
	}
	if p := b.PieceAt(17); p.Type != Pawn || p.Color != Black {
		t.Errorf("b3 = %+v, want black pawn", p)
	}
	if _, bl := b.Counts(); bl != eaten+1 {
		t.Errorf("black count = %d, want %d", bl, eaten+1)
	}

	b.Unplay()
	if p := b.PieceAt(25); p.Type != Pawn || p.Color != White {
		t.Errorf("b4 = %+v, want white pawn restored", p)
	}
	if !b.PieceAt(17).IsEmpty() {
		t.Error("b3 not empty after Unplay")
	}
}

func TestQueenAndQueenSideCastle(t *testing.T) {
	b := openingBoard(t)
	b.SetNextToPlay(White)
	sameTargets(t, "queen e2", b.MovesFrom(12), 21, 3, 19, 26, 33, 40, 20, 28)

	playAll(t, b, 1, 18)
	b.SetNextToPlay(White)
	playAll(t, b, 2, 9)
	b.SetNextToPlay(White)

	sameTargets(t, "king e1", b.MovesFrom(4), 3, 2)

	b.SetMoves(nil)
	b.Play(NewMove(b, 4, 2), false)

	if p := b.PieceAt(3); p.Type != Rook || p.Color != White {
		t.Errorf("d1 = %+v, want white rook", p)
	}
	if !b.PieceAt(0).IsEmpty() || !b.PieceAt(4).IsEmpty() {
		t.Error("a1 or e1 not empty after castling")
	}
	if p := b.PieceAt(2); p.Type != King {
		t.Errorf("c1 = %+v, want king", p)
	}
	if !b.HasCastled(White) {
		t.Error("HasCastled(White) = false")
	}
	if b.CastleRights().CanCastle(White, true) || b.CastleRights().CanCastle(White, false) {
		t.Errorf("white rights kept after castling: %s", b.CastleRights())
	}
	if offered := b.Moves(); len(offered) != 1 || offered[0].From != 0 || offered[0].To != 3 {
		t.Errorf("offered moves = %v, want the rook step a1d1", offered)
	}
}

func TestKingSideCastle(t *testing.T) {
	b, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	before := b.squares

	b.Play(NewMove(b, E1, G1), false)
	if p := b.PieceAt(F1); p.Type != Rook || p.Color != White {
		t.Errorf("f1 = %+v, want white rook", p)
	}
	if !b.PieceAt(H1).IsEmpty() {
		t.Error("h1 not empty")
	}
	if !b.HasCastled(White) {
		t.Error("HasCastled(White) = false")
	}
	if b.CastleRights() != BlackKingSideCastle|BlackQueenSideCastle {
		t.Errorf("rights = %s, want kq", b.CastleRights())
	}

	b.Unplay()
	if b.squares != before {
		t.Error("Unplay did not restore the castle")
	}
	if b.HasCastled(White) || b.CastleRights() != AllCastling {
		t.Errorf("flags not restored: castled=%v rights=%s", b.HasCastled(White), b.CastleRights())
	}
}

func TestCastleBlockedByAttack(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want []int
	}{
		{"free", "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", []int{int(D1), int(F1), int(D2), int(E2), int(F2), int(G1), int(C1)}},
		{"f1 attacked", "4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1", []int{int(D1), int(D2), int(E2), int(C1)}},
		{"in check", "4k3/8/8/8/8/8/8/R3K2r w Q - 0 1", []int{int(D2), int(E2), int(F2)}},
		{"b1 occupied", "4k3/8/8/8/8/8/8/RN2K2R w KQ - 0 1", []int{int(D1), int(F1), int(D2), int(E2), int(F2), int(G1)}},
		{"b1 attacked only", "1r2k3/8/8/8/8/8/8/R3K3 w Q - 0 1", []int{int(D1), int(D2), int(E2), int(F2), int(F1), int(C1)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			sameTargets(t, tc.name, b.MovesFrom(E1), tc.want...)
		})
	}
}

func TestRookCaptureClearsRight(t *testing.T) {
	b, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	before, _ := b.Counts()
	b.Play(NewMove(b, A1, A8), false)
	if got := b.CastleRights(); got != WhiteKingSideCastle|BlackKingSideCastle {
		t.Errorf("rights = %s, want Kk", got)
	}
	if w, _ := b.Counts(); w != before+5 {
		t.Errorf("white count = %d, want %d", w, before+5)
	}

	b.Unplay()
	if b.CastleRights() != AllCastling {
		t.Errorf("rights = %s, want KQkq", b.CastleRights())
	}
	if w, _ := b.Counts(); w != before {
		t.Errorf("white count = %d, want %d", w, before)
	}
}

func TestPromotion(t *testing.T) {
	b, err := ParseFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	m := NewMove(b, A7, A8)
	b.Play(m, true)
	if _, ok := b.PendingPromotion(White); ok {
		t.Error("simulated move left a pending promotion")
	}
	b.Unplay()

	b.Play(m, false)
	sq, ok := b.PendingPromotion(White)
	if !ok || sq != A8 {
		t.Fatalf("PendingPromotion = %s, %v; want a8, true", sq, ok)
	}

	b.PromotePawn(Queen, White)
	if p := b.PieceAt(A8); p.Type != Queen || p.Color != White {
		t.Errorf("a8 = %+v, want white queen", p)
	}
	if _, ok := b.PendingPromotion(White); ok {
		t.Error("promotion still pending after PromotePawn")
	}

	b.Unplay()
	if p := b.PieceAt(A7); p.Type != Pawn {
		t.Errorf("a7 = %+v, want pawn after Unplay", p)
	}

	b.Play(m, false)
	b.Unplay()
	if _, ok := b.PendingPromotion(White); ok {
		t.Error("Unplay left the pending promotion set")
	}
}

func TestPreconditionPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(b *Board)
	}{
		{"unplay empty", func(b *Board) { b.Unplay() }},
		{"promote nothing pending", func(b *Board) { b.PromotePawn(Queen, White) }},
		{"square out of range", func(b *Board) { b.PieceAt(64) }},
		{"moves out of range", func(b *Board) { b.MovesFrom(NoSquare) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected a panic")
				}
			}()
			tc.fn(New())
		})
	}
}

func TestPromotePawnRejectsKing(t *testing.T) {
	b, err := ParseFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	b.Play(NewMove(b, A7, A8), false)

	defer func() {
		if recover() == nil {
			t.Error("expected a panic promoting to a king")
		}
	}()
	b.PromotePawn(King, White)
}

type snapshot struct {
	squares [64]Piece
	next    Color
	rights  CastlingRights
	castled [2]bool
	counts  [2]int
	depth   int
}

func snap(b *Board) snapshot {
	return snapshot{b.squares, b.next, b.rights, b.castled, b.counts, len(b.history)}
}

// TestPlayUnplayRoundTrip plays random games and checks that every legal
// move is exactly reversible.
func TestPlayUnplayRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for game := 0; game < 20; game++ {
		b := New()
		for ply := 0; ply < 80; ply++ {
			moves := b.LegalMoves(b.NextToPlay())
			if len(moves) == 0 {
				break
			}
			before := snap(b)
			for _, m := range moves {
				b.Play(m, true)
				b.Unplay()
				if snap(b) != before {
					t.Fatalf("game %d ply %d: %s not reversible", game, ply, m)
				}
			}

			b.Play(moves[rng.Intn(len(moves))], false)
			if sq, ok := b.PendingPromotion(b.NextToPlay().Other()); ok {
				b.PromotePawn(Queen, b.PieceAt(sq).Color)
			}
		}
	}
}

func TestEvaluationScore(t *testing.T) {
	b := New()
	if got := b.EvaluationScore(); got != 0 {
		t.Errorf("start score = %v, want 0", got)
	}

	playAll(t, b, E2, E4)
	if got := b.EvaluationScore(); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("after e4 score = %v, want 0.1", got)
	}

	tests := []struct {
		name string
		fen  string
		want float64
	}{
		// Both sides have lost castling without castling.
		{"no rights", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", 0},
		// A rook up, and only Black is penalised.
		{"white rights only", "4k3/8/8/8/8/8/8/R3K3 w Q - 0 1", 5.9},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := b.EvaluationScore(); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHash(t *testing.T) {
	b := New()
	start := b.Hash()

	playAll(t, b, G1, F3, G8, F6, F3, G1, F6, G8)
	if b.Hash() != start {
		t.Error("knight shuffle changed the hash")
	}

	b.Play(NewMove(b, E2, E4), false)
	if b.Hash() == start {
		t.Error("e4 did not change the hash")
	}
	b.Unplay()
	if b.Hash() != start {
		t.Error("Unplay did not restore the hash")
	}
}
