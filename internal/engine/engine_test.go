package engine

import (
	"math/rand"
	"testing"

	"github.com/hailam/chessgame/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Board {
	t.Helper()
	b, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	return b
}

func TestSearchBasic(t *testing.T) {
	b := board.New()
	before := b.ToFEN()

	p := NewPlayer(Easy.Depth(), b, WithRand(rand.New(rand.NewSource(1))))
	move, ok := p.DesiredMove()
	if !ok {
		t.Fatal("Search returned no move for starting position")
	}
	if !board.Contains(b.LegalMoves(board.White), move) {
		t.Errorf("Search returned illegal move %s", move)
	}
	if after := b.ToFEN(); after != before {
		t.Errorf("Search changed the board: %s -> %s", before, after)
	}
	t.Logf("Best move: %s", move.String())
}

func TestMateInOne(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		from board.Square
		to   board.Square
	}{
		// Back rank mate: Ra1-a8.
		{"white rook", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", board.A1, board.A8},
		// Mirror for Black: Ra8-a1.
		{"black rook", "r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1", board.A8, board.A1},
		// Scholar's mate: Qh5xf7.
		{"scholar", "r1bqkbnr/pppp1ppp/2n5/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 0 1", board.H5, board.F7},
	}

	for _, tc := range tests {
		for _, depth := range []int{1, 2} {
			for seed := int64(0); seed < 5; seed++ {
				b := mustFEN(t, tc.fen)
				p := NewPlayer(depth, b, WithRand(rand.New(rand.NewSource(seed))))
				move, ok := p.DesiredMove()
				if !ok || move.From != tc.from || move.To != tc.to {
					t.Errorf("%s depth %d seed %d: got %s, want %s%s", tc.name, depth, seed, move, tc.from, tc.to)
				}
			}
		}
	}
}

func TestDepthZeroPicksBestCapture(t *testing.T) {
	// The white rook can take a queen or a knight.
	b := mustFEN(t, "k7/8/8/3q4/8/8/3R2n1/K7 w - - 0 1")

	p := NewPlayer(0, b, WithRand(rand.New(rand.NewSource(3))))
	if p.Depth() != MinDepth {
		t.Fatalf("Depth = %d, want %d", p.Depth(), MinDepth)
	}
	move, ok := p.DesiredMove()
	if !ok || move.To != board.D5 {
		t.Errorf("got %s, want the queen capture on d5", move)
	}
}

func TestNoMoveWhenGameOver(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"checkmate", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1"},
		{"stalemate", "k7/8/1Q6/8/8/8/8/7K b - - 0 1"},
		{"insufficient material", "4k3/8/8/8/8/8/8/2B1K3 w - - 0 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPlayer(2, mustFEN(t, tc.fen))
			if move, ok := p.DesiredMove(); ok {
				t.Errorf("got %s, want no move", move)
			}
		})
	}
}

func TestSearchRestoresBoard(t *testing.T) {
	b := mustFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	before := b.ToFEN()
	hash := b.Hash()

	var info SearchInfo
	p := NewPlayer(2, b, WithRand(rand.New(rand.NewSource(9))), WithInfo(func(si SearchInfo) { info = si }))
	if _, ok := p.DesiredMove(); !ok {
		t.Fatal("no move found")
	}

	if after := b.ToFEN(); after != before || b.Hash() != hash {
		t.Errorf("board changed by search: %s -> %s", before, after)
	}
	if info.Nodes == 0 || info.Depth != 2 || !info.Found {
		t.Errorf("unexpected search info %+v", info)
	}
}

func TestDesiredMoveForColor(t *testing.T) {
	b := board.New()
	p := NewPlayer(1, b, WithRand(rand.New(rand.NewSource(5))))

	move, ok := p.DesiredMoveFor(board.Black)
	if !ok {
		t.Fatal("no move found for Black")
	}
	if move.Piece.Color != board.Black {
		t.Errorf("got %s for %s, want a black move", move, move.Piece.Color)
	}
}

func TestPerft(t *testing.T) {
	b := board.New()
	tests := []struct {
		depth    int
		expected uint64
	}{
		{0, 1},
		{1, 20},
		{2, 400},
		{3, 8902},
	}
	for _, tc := range tests {
		if got := Perft(b, tc.depth); got != tc.expected {
			t.Errorf("Perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}

	div := Divide(b, 2)
	if len(div) != 20 || div["e2e4"] != 20 {
		t.Errorf("Divide(2) = %v", div)
	}
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		in    string
		want  Difficulty
		depth int
	}{
		{"easy", Easy, 1},
		{"Medium", Medium, 2},
		{"2", Hard, 3},
	}
	for _, tc := range tests {
		d, err := ParseDifficulty(tc.in)
		if err != nil {
			t.Fatalf("ParseDifficulty(%q): %v", tc.in, err)
		}
		if d != tc.want || d.Depth() != tc.depth {
			t.Errorf("ParseDifficulty(%q) = %s depth %d, want %s depth %d", tc.in, d, d.Depth(), tc.want, tc.depth)
		}
	}
	if _, err := ParseDifficulty("brutal"); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "0.0"},
		{1.2, "+1.2"},
		{-3, "-3.0"},
		{MateScore, "White mates"},
		{-MateScore, "Black mates"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestDifficultyForDepth(t *testing.T) {
	tests := []struct {
		depth int
		want  Difficulty
	}{
		{0, Easy},
		{1, Easy},
		{2, Medium},
		{3, Hard},
		{6, Hard},
	}
	for _, tc := range tests {
		if got := DifficultyForDepth(tc.depth); got != tc.want {
			t.Errorf("DifficultyForDepth(%d) = %s, want %s", tc.depth, got, tc.want)
		}
	}
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		if got := DifficultyForDepth(d.Depth()); got != d {
			t.Errorf("DifficultyForDepth(%s.Depth()) = %s", d, got)
		}
	}
}
