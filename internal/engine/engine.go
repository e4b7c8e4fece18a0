// Package engine implements the computer opponent: a fixed-depth minimax
// search with alpha-beta pruning over a board.Board, plus perft for
// verifying move generation.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/chessgame/internal/board"
)

// SearchInfo contains information about a finished search.
type SearchInfo struct {
	Depth int
	Score float64
	Nodes uint64
	Time  time.Duration
	Move  board.Move
	Found bool
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 1 ply
	Medium                   // 2 ply
	Hard                     // 3 ply
)

// DifficultySettings maps difficulty to search depth.
var DifficultySettings = map[Difficulty]int{
	Easy:   1,
	Medium: 2,
	Hard:   3,
}

// Depth returns the search depth for the difficulty.
func (d Difficulty) Depth() int {
	if depth, ok := DifficultySettings[d]; ok {
		return depth
	}
	return DifficultySettings[Medium]
}

// DifficultyForDepth returns the preset searching closest to depth.
func DifficultyForDepth(depth int) Difficulty {
	switch {
	case depth <= DifficultySettings[Easy]:
		return Easy
	case depth == DifficultySettings[Medium]:
		return Medium
	default:
		return Hard
	}
}

// String returns the difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

// ParseDifficulty converts a name or a number (0-2) to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "0":
		return Easy, nil
	case "medium", "1":
		return Medium, nil
	case "hard", "2":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// Perft counts the leaf nodes of the legal move tree at the given depth.
// A promotion counts as a single move.
func Perft(b *board.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := b.LegalMoves(b.NextToPlay())
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		b.Play(m, true)
		nodes += Perft(b, depth-1)
		b.Unplay()
	}

	return nodes
}

// Divide returns the perft count below each legal move of the side to move.
func Divide(b *board.Board, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth < 1 {
		return out
	}
	for _, m := range b.LegalMoves(b.NextToPlay()) {
		b.Play(m, true)
		out[m.String()] += Perft(b, depth-1)
		b.Unplay()
	}
	return out
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score float64) string {
	switch {
	case score >= MateScore:
		return "White mates"
	case score <= -MateScore:
		return "Black mates"
	}
	s := strconv.FormatFloat(score, 'f', 1, 64)
	if score > 0 {
		s = "+" + s
	}
	return s
}
