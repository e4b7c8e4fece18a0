// Package cli is a line-oriented text front end for a chess session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessgame/internal/board"
	"github.com/hailam/chessgame/internal/engine"
	"github.com/hailam/chessgame/internal/session"
	"github.com/hailam/chessgame/internal/storage"
)

// maxPerftDepth bounds the perft command; deeper counts take minutes.
const maxPerftDepth = 6

const helpText = `commands:
  new                     start a new game
  mode hvh|hva|ava [color] choose who plays; color is the human side in hva
  depth N                 set the computer's search depth
  select SQ | SQ          select a piece, or play to SQ from the selection
  move e2e4[q]            play a move in coordinate form
  promote q|r|b|n         resolve a pending promotion
  ai [N]                  let the computer play N moves (default 1)
  undo                    take back the last move
  show | fen | moves | eval | pgn
  perft N                 count move paths from the current position
  stats                   show finished-game statistics
  help | quit`

// Option configures a CLI.
type Option func(*CLI)

// WithStorage records finished games in store.
func WithStorage(store *storage.Storage) Option {
	return func(c *CLI) { c.store = store }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *CLI) { c.log = log }
}

// CLI reads commands from in and writes replies to out.
type CLI struct {
	in       io.Reader
	out      io.Writer
	log      zerolog.Logger
	session  *session.Session
	store    *storage.Storage
	recorded bool
}

// New creates a command loop driving s.
func New(in io.Reader, out io.Writer, s *session.Session, opts ...Option) *CLI {
	c := &CLI{
		in:      in,
		out:     out,
		log:     zerolog.Nop(),
		session: s,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes commands until quit, end of input or ctx is done.
func (c *CLI) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)

	c.autoPlay()
	c.printf("%s", c.session.Snapshot().Diagram)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := c.handle(cmd, args); err != nil {
			c.log.Debug().Err(err).Str("cmd", line).Msg("command failed")
			c.printf("error: %v\n", err)
		}
		c.recordFinished()
	}

	return scanner.Err()
}

func (c *CLI) handle(cmd string, args []string) error {
	switch cmd {
	case "new":
		if err := c.session.Reset(); err != nil {
			return err
		}
		c.recorded = false
		c.autoPlay()
		c.printf("%s", c.session.Snapshot().Diagram)
	case "mode":
		return c.handleMode(args)
	case "depth":
		return c.handleDepth(args)
	case "select":
		if len(args) != 1 {
			return errors.New("usage: select SQ")
		}
		return c.handleSelect(args[0])
	case "move":
		if len(args) != 1 {
			return errors.New("usage: move e2e4")
		}
		st, err := c.session.Move(args[0])
		if err != nil {
			return err
		}
		c.report(st)
	case "promote":
		return c.handlePromote(args)
	case "ai":
		return c.handleAI(args)
	case "undo":
		if err := c.session.Undo(); err != nil {
			return err
		}
		if c.session.Outcome() == session.Running {
			c.recorded = false
		}
		c.printf("%s", c.session.Snapshot().Diagram)
	case "show", "d":
		snap := c.session.Snapshot()
		c.printf("%sHash: %016x\n", snap.Diagram, snap.Hash)
	case "fen":
		c.printf("%s\n", c.session.Snapshot().FEN)
	case "moves":
		c.printf("%s\n", joinMoves(c.session.LegalMoves()))
	case "eval":
		snap := c.session.Snapshot()
		c.printf("eval %s\n", engine.ScoreToString(snap.Eval))
	case "pgn":
		c.printf("%s\n", c.session.Transcript().PGN)
	case "perft":
		return c.handlePerft(args)
	case "stats":
		return c.handleStats()
	case "help", "?":
		c.printf("%s\n", helpText)
	default:
		// A bare square is a select.
		if _, err := board.ParseSquare(cmd); err == nil && len(args) == 0 {
			return c.handleSelect(cmd)
		}
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func (c *CLI) handleMode(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: mode hvh|hva|ava [white|black]")
	}
	m, err := session.ParseMode(args[0])
	if err != nil {
		return err
	}
	human := board.White
	if len(args) == 2 {
		switch strings.ToLower(args[1]) {
		case "white", "w":
		case "black", "b":
			human = board.Black
		default:
			return fmt.Errorf("unknown color %q", args[1])
		}
	}
	c.session.SetMode(m, human)
	c.printf("mode %s\n", m)
	c.autoPlay()
	return nil
}

func (c *CLI) handleDepth(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: depth N")
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < engine.MinDepth {
		return fmt.Errorf("bad depth %q", args[0])
	}
	c.session.SetDepth(depth)
	c.printf("depth %d\n", c.session.Depth())
	return nil
}

func (c *CLI) handleSelect(text string) error {
	sq, err := board.ParseSquare(strings.ToLower(text))
	if err != nil {
		return err
	}
	st, err := c.session.Select(sq)
	if err != nil {
		return err
	}
	c.report(st)
	return nil
}

func (c *CLI) handlePromote(args []string) error {
	if len(args) != 1 || len(args[0]) != 1 {
		return errors.New("usage: promote q|r|b|n")
	}
	st, err := c.session.Promote(board.PieceTypeFromChar(strings.ToLower(args[0])[0]))
	if err != nil {
		return err
	}
	c.report(st)
	return nil
}

func (c *CLI) handleAI(args []string) error {
	n := 1
	if len(args) == 1 {
		var err error
		if n, err = strconv.Atoi(args[0]); err != nil || n < 1 {
			return fmt.Errorf("bad move count %q", args[0])
		}
	}
	for i := 0; i < n; i++ {
		st, err := c.session.AIMove()
		if err != nil {
			return err
		}
		c.report(st)
		if st.Outcome != session.Running {
			break
		}
	}
	return nil
}

// handlePerft runs perft on a copy of the current position.
func (c *CLI) handlePerft(args []string) error {
	depth := 3
	if len(args) > 0 {
		var err error
		if depth, err = strconv.Atoi(args[0]); err != nil || depth < 1 || depth > maxPerftDepth {
			return fmt.Errorf("perft depth must be 1-%d", maxPerftDepth)
		}
	}

	b, err := board.ParseFEN(c.session.Snapshot().FEN)
	if err != nil {
		return err
	}

	start := time.Now()
	nodes := engine.Perft(b, depth)
	elapsed := time.Since(start)

	c.printf("Nodes: %d\n", nodes)
	c.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		c.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
	return nil
}

func (c *CLI) handleStats() error {
	if c.store == nil {
		return errors.New("statistics are not available")
	}
	stats, err := c.store.LoadStats()
	if err != nil {
		return err
	}
	c.printf("games %d  wins %d  losses %d  draws %d  win rate %.1f%%  best streak %d\n",
		stats.GamesPlayed, stats.Wins, stats.Losses, stats.Draws, stats.GetWinRate(), stats.LongestWinStrk)
	return nil
}

// autoPlay lets the computer move while it is its turn against a human.
func (c *CLI) autoPlay() {
	if m, _ := c.session.Mode(); m != session.HumanVsAI {
		return
	}
	for c.session.AITurn() {
		st, err := c.session.AIMove()
		if err != nil {
			c.log.Warn().Err(err).Msg("computer move failed")
			return
		}
		c.report(st)
	}
}

// report prints what a session call did.
func (c *CLI) report(st session.Status) {
	for _, m := range st.Played {
		c.printf("%s plays %s\n", m.Piece.Color, m)
	}
	for _, m := range st.RookSteps {
		c.printf("rook %s\n", m)
	}
	if len(st.Played) == 0 {
		if st.Selected == board.NoSquare {
			c.printf("nothing selected\n")
		} else {
			c.printf("%s: %s\n", st.Selected, joinMoves(st.Offered))
		}
	}
	if st.Promotion {
		c.printf("choose a promotion: promote q|r|b|n\n")
	}
	switch st.Outcome {
	case session.WhiteWins:
		c.printf("checkmate, White wins\n")
	case session.BlackWins:
		c.printf("checkmate, Black wins\n")
	case session.Draw:
		c.printf("draw\n")
	}
}

// recordFinished stores the result of a game that just ended.
func (c *CLI) recordFinished() {
	if c.recorded || c.store == nil {
		return
	}
	outcome := c.session.Outcome()
	if outcome == session.Running {
		return
	}
	c.recorded = true

	m, human := c.session.Mode()
	winner := session.WhiteWins
	if m == session.HumanVsAI && human == board.Black {
		winner = session.BlackWins
	}
	mode, err := storage.ParseGameMode(m.String())
	if err != nil {
		c.log.Error().Err(err).Msg("failed to record game")
		return
	}
	result := storage.GameResult{
		Won:        outcome == winner,
		Draw:       outcome == session.Draw,
		Mode:       mode,
		Difficulty: engine.DifficultyForDepth(c.session.Depth()),
		Duration:   time.Since(c.session.Started()),
	}
	if err := c.store.RecordGame(result); err != nil {
		c.log.Error().Err(err).Msg("failed to record game")
	}
}

func joinMoves(moves []board.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
