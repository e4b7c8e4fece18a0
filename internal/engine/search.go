package engine

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessgame/internal/board"
)

// Search constants
const (
	// MateScore is returned for a checkmated node: negative when White is
	// mated, positive when Black is.
	MateScore = 100.0
	MinDepth  = 1
)

// Option configures a Player.
type Option func(*Player)

// WithRand sets the source used to shuffle moves. A seeded source makes the
// player's choices reproducible.
func WithRand(r *rand.Rand) Option {
	return func(p *Player) { p.rng = r }
}

// WithLogger sets the logger that receives search summaries.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Player) { p.log = log }
}

// WithInfo registers a callback invoked after every completed search.
func WithInfo(fn func(SearchInfo)) Option {
	return func(p *Player) { p.onInfo = fn }
}

// Player picks moves with a fixed-depth minimax search with alpha-beta
// pruning. It explores variations by playing and unplaying moves on the
// board it was given, so the board must not be touched while a search is
// running. A Player is not safe for concurrent use.
type Player struct {
	board *board.Board
	depth int

	rng    *rand.Rand
	log    zerolog.Logger
	onInfo func(SearchInfo)

	best  board.Move
	found bool
	nodes uint64
}

// NewPlayer creates a player searching depth plies on b. Depths below
// MinDepth are raised to MinDepth.
func NewPlayer(depth int, b *board.Board, opts ...Option) *Player {
	p := &Player{
		board: b,
		depth: max(depth, MinDepth),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Depth returns the search depth in plies.
func (p *Player) Depth() int {
	return p.depth
}

// SetDepth changes the search depth. Depths below MinDepth are raised.
func (p *Player) SetDepth(depth int) {
	p.depth = max(depth, MinDepth)
}

// DesiredMove returns the best move for the side to move.
func (p *Player) DesiredMove() (board.Move, bool) {
	return p.DesiredMoveFor(p.board.NextToPlay())
}

// DesiredMoveFor returns the best move for color c. It returns false when
// the game is already over or c has no legal move. The board is left as it
// was found.
func (p *Player) DesiredMoveFor(c board.Color) (board.Move, bool) {
	if p.board.IsCheckMate() || p.board.IsDraw() {
		return board.Move{}, false
	}

	p.best, p.found, p.nodes = board.Move{}, false, 0
	start := time.Now()
	score := p.minimax(p.depth, math.Inf(-1), math.Inf(1), c)
	elapsed := time.Since(start)

	p.log.Debug().
		Str("color", c.String()).
		Int("depth", p.depth).
		Uint64("nodes", p.nodes).
		Float64("score", score).
		Str("move", p.best.String()).
		Uint64("hash", p.board.Hash()).
		Dur("elapsed", elapsed).
		Msg("search finished")

	if p.onInfo != nil {
		p.onInfo(SearchInfo{
			Depth: p.depth,
			Score: score,
			Nodes: p.nodes,
			Time:  elapsed,
			Move:  p.best,
			Found: p.found,
		})
	}
	return p.best, p.found
}

// minimax returns the value of the current node for the side c to move.
// White maximises, Black minimises. Only the root records its best move.
// Every simulated move is unplayed before returning, including on cutoffs.
func (p *Player) minimax(depth int, alpha, beta float64, c board.Color) float64 {
	b := p.board
	p.nodes++

	if b.IsCheckMate() {
		if b.NextToPlay() == board.White {
			return -MateScore
		}
		return MateScore
	}
	if b.IsDraw() {
		return 0
	}
	if depth == 0 {
		return b.EvaluationScore()
	}

	moves := b.LegalMoves(c)
	p.rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
	root := depth == p.depth

	if c == board.White {
		best := math.Inf(-1)
		for _, m := range moves {
			b.Play(m, true)
			score := p.minimax(depth-1, alpha, beta, c.Other())
			b.Unplay()

			if score > best {
				best = score
				if root {
					p.best, p.found = m, true
				}
			}
			alpha = max(alpha, score)
			if alpha >= beta {
				break
			}
		}
		return best
	}

	best := math.Inf(1)
	for _, m := range moves {
		b.Play(m, true)
		score := p.minimax(depth-1, alpha, beta, c.Other())
		b.Unplay()

		if score < best {
			best = score
			if root {
				p.best, p.found = m, true
			}
		}
		beta = min(beta, score)
		if alpha >= beta {
			break
		}
	}
	return best
}
