package board

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

// moveKeys returns the sorted from*64+to keys of our legal moves.
func moveKeys(moves []Move) []int {
	keys := make([]int, 0, len(moves))
	for _, m := range moves {
		keys = append(keys, int(m.From)*64+int(m.To))
	}
	sort.Ints(keys)
	return keys
}

// oracleKeys returns the same keys for the moves dragontoothmg generates,
// folding the four promotion choices into one move.
func oracleKeys(fen string) []int {
	db := dragontoothmg.ParseFen(fen)
	seen := make(map[int]bool)
	keys := []int{}
	for _, m := range db.GenerateLegalMoves() {
		k := int(m.From())*64 + int(m.To())
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	return keys
}

func equalKeys(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestLegalMovesMatchOracle walks random games and compares the legal move
// set at every ply with an independent bitboard generator.
func TestLegalMovesMatchOracle(t *testing.T) {
	starts := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	}
	rng := rand.New(rand.NewSource(42))

	for _, start := range starts {
		for game := 0; game < 10; game++ {
			b, err := ParseFEN(start)
			if err != nil {
				t.Fatal(err)
			}
			for ply := 0; ply < 60; ply++ {
				fen := b.ToFEN()
				moves := b.LegalMoves(b.NextToPlay())
				if got, want := moveKeys(moves), oracleKeys(fen); !equalKeys(got, want) {
					t.Fatalf("%s: legal moves differ\n got %v\nwant %v", fen, got, want)
				}
				if len(moves) == 0 {
					break
				}
				b.Play(moves[rng.Intn(len(moves))], false)
				if sq, ok := b.PendingPromotion(b.NextToPlay().Other()); ok {
					promos := []PieceType{Knight, Bishop, Rook, Queen}
					b.PromotePawn(promos[rng.Intn(len(promos))], b.PieceAt(sq).Color)
				}
			}
		}
	}
}
