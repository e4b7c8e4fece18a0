// Package session runs one chess game: the two-step select-square then
// choose-destination protocol of a human player, promotion, the computer's
// replies and end-of-game detection.
package session

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessgame/internal/board"
	"github.com/hailam/chessgame/internal/engine"
)

var (
	ErrGameOver           = errors.New("game is over")
	ErrIllegalMove        = errors.New("illegal move")
	ErrNoPendingPromotion = errors.New("no promotion pending")
	ErrPromotionPending   = errors.New("promotion pending")
	ErrNotYourTurn        = errors.New("not a human turn")
	ErrNothingToUndo      = errors.New("nothing to undo")
)

// Mode selects who plays each side.
type Mode int

const (
	HumanVsHuman Mode = iota
	HumanVsAI
	AIVsAI
)

// String returns the short mode name used on the command line.
func (m Mode) String() string {
	switch m {
	case HumanVsHuman:
		return "hvh"
	case HumanVsAI:
		return "hva"
	case AIVsAI:
		return "ava"
	default:
		return "unknown"
	}
}

// ParseMode converts a short mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hvh":
		return HumanVsHuman, nil
	case "hva":
		return HumanVsAI, nil
	case "ava":
		return AIVsAI, nil
	}
	return HumanVsHuman, fmt.Errorf("unknown game mode %q", s)
}

// Outcome is the end-of-game state in the form the game page reports it.
type Outcome string

const (
	Running   Outcome = "no"
	WhiteWins Outcome = "white"
	BlackWins Outcome = "black"
	Draw      Outcome = "draw"
)

// Config configures a Session.
type Config struct {
	Mode       Mode
	Depth      int         // AI search depth in plies
	HumanColor board.Color // the human side in HumanVsAI
	FEN        string      // start position; empty for the standard one
	Logger     zerolog.Logger
	Rand       *rand.Rand // move shuffling source; nil for a time-seeded one
}

// Status reports what a call did.
type Status struct {
	Played    []board.Move // moves played by the call, in order
	RookSteps []board.Move // rook relocations caused by castles in Played
	Selected  board.Square // NoSquare when nothing is selected
	Offered   []board.Move // moves offered for the selected piece
	Promotion bool         // the human must call Promote before play continues
	Outcome   Outcome
}

// Snapshot is a read-only view of the game.
type Snapshot struct {
	FEN       string
	Diagram   string
	Turn      board.Color
	Eval      float64
	Check     bool
	Outcome   Outcome
	Plies     int
	Promotion bool
	Hash      uint64
}

// Session owns the board and the computer player of one game. All methods
// are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	cfg     Config
	log     zerolog.Logger
	board   *board.Board
	player  *engine.Player
	base    int // undo entries present before the first move
	start   string
	ucis    []string
	game    *transcript
	started time.Time
}

// NewSession creates a session and sets up its start position.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.HumanColor != board.Black {
		cfg.HumanColor = board.White
	}
	s := &Session{cfg: cfg, log: cfg.Logger}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset restarts the game from the configured start position.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset()
}

func (s *Session) reset() error {
	if s.board == nil {
		s.board = board.New()
	}
	if s.cfg.FEN == "" {
		s.board.InitializeBoard()
	} else {
		b, err := board.ParseFEN(s.cfg.FEN)
		if err != nil {
			return fmt.Errorf("start position: %w", err)
		}
		s.board = b
	}

	s.player = engine.NewPlayer(s.cfg.Depth, s.board,
		engine.WithRand(s.cfg.Rand),
		engine.WithLogger(s.log),
	)
	s.base = s.board.Depth()
	s.start = s.board.ToFEN()
	s.ucis = s.ucis[:0]
	s.started = time.Now()

	game, err := newTranscript(s.start)
	if err != nil {
		return err
	}
	s.game = game

	s.log.Info().Str("mode", s.cfg.Mode.String()).Int("depth", s.player.Depth()).Str("fen", s.start).Msg("new game")
	return nil
}

// SetMode changes who plays each side. The position is kept.
func (s *Session) SetMode(m Mode, human board.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Mode = m
	if human != board.Black {
		human = board.White
	}
	s.cfg.HumanColor = human
}

// Mode returns the current mode and the human color used in HumanVsAI.
func (s *Session) Mode() (Mode, board.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Mode, s.cfg.HumanColor
}

// SetDepth changes the AI search depth.
func (s *Session) SetDepth(depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Depth = depth
	s.player.SetDepth(depth)
}

// Depth returns the AI search depth.
func (s *Session) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Depth()
}

// Started returns when the current game began.
func (s *Session) Started() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// isHuman reports whether c is played by a human in the current mode.
func (s *Session) isHuman(c board.Color) bool {
	switch s.cfg.Mode {
	case HumanVsHuman:
		return true
	case HumanVsAI:
		return c == s.cfg.HumanColor
	default:
		return false
	}
}

// AITurn reports whether the computer is to move in a running game.
func (s *Session) AITurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome() == Running && !s.isHuman(s.board.NextToPlay()) && !s.promotionPending()
}

// Select handles a click on sq. If sq is the destination of a move offered
// for the selected piece, the move is played and, against the computer,
// answered. Otherwise the legal moves of the piece on sq are offered; an
// empty offer clears the selection.
func (s *Session) Select(sq board.Square) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !sq.IsValid() {
		return Status{}, fmt.Errorf("select %d: %w", sq, ErrIllegalMove)
	}
	if err := s.humanCanMove(); err != nil {
		return Status{}, err
	}

	for _, m := range s.board.Moves() {
		if m.To == sq && m.Piece.Color == s.board.NextToPlay() {
			return s.humanPlay(m), nil
		}
	}

	offered := s.board.MovesFrom(sq)
	s.board.SetMoves(offered)
	st := Status{Selected: board.NoSquare, Offered: offered, Outcome: Running}
	if len(offered) > 0 {
		st.Selected = sq
	}
	return st, nil
}

// Move plays a move given in coordinate form ("e2e4", "e7e8q") for the
// human to move. A promotion letter resolves the promotion at once.
func (s *Session) Move(text string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.humanCanMove(); err != nil {
		return Status{}, err
	}
	from, to, promo, err := parseCoordinate(text)
	if err != nil {
		return Status{}, err
	}

	var move board.Move
	found := false
	for _, m := range s.board.MovesFrom(from) {
		if m.To == to {
			move, found = m, true
			break
		}
	}
	if !found {
		return Status{}, fmt.Errorf("move %s: %w", text, ErrIllegalMove)
	}
	if promo != board.NoPieceType && !move.IsPromotion() {
		return Status{}, fmt.Errorf("move %s: %w", text, ErrIllegalMove)
	}

	st := s.humanPlay(move)
	if st.Promotion && promo != board.NoPieceType {
		more, err := s.promote(promo)
		if err != nil {
			return st, err
		}
		more.Played = append(st.Played, more.Played...)
		more.RookSteps = append(st.RookSteps, more.RookSteps...)
		return more, nil
	}
	return st, nil
}

// parseCoordinate splits "e2e4" or "e7e8q" into its parts.
func parseCoordinate(text string) (from, to board.Square, promo board.PieceType, err error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if len(text) != 4 && len(text) != 5 {
		return board.NoSquare, board.NoSquare, board.NoPieceType, fmt.Errorf("move %q: %w", text, ErrIllegalMove)
	}
	if from, err = board.ParseSquare(text[0:2]); err != nil {
		return board.NoSquare, board.NoSquare, board.NoPieceType, fmt.Errorf("move %q: %w", text, err)
	}
	if to, err = board.ParseSquare(text[2:4]); err != nil {
		return board.NoSquare, board.NoSquare, board.NoPieceType, fmt.Errorf("move %q: %w", text, err)
	}
	if len(text) == 5 {
		promo = board.PieceTypeFromChar(text[4])
		if !promotable(promo) {
			return board.NoSquare, board.NoSquare, board.NoPieceType, fmt.Errorf("move %q: %w", text, ErrIllegalMove)
		}
	}
	return from, to, promo, nil
}

func promotable(pt board.PieceType) bool {
	switch pt {
	case board.Knight, board.Bishop, board.Rook, board.Queen:
		return true
	}
	return false
}

// humanCanMove checks that the side to move is human and may move now.
func (s *Session) humanCanMove() error {
	if s.outcome() != Running {
		return ErrGameOver
	}
	if s.promotionPending() {
		return ErrPromotionPending
	}
	if !s.isHuman(s.board.NextToPlay()) {
		return ErrNotYourTurn
	}
	return nil
}

// humanPlay plays m for the human and lets the computer answer unless a
// promotion must be chosen first.
func (s *Session) humanPlay(m board.Move) Status {
	st := Status{Selected: board.NoSquare}
	s.play(m, &st)
	if _, ok := s.board.PendingPromotion(m.Piece.Color); ok {
		st.Promotion = true
		st.Outcome = s.outcome()
		return st
	}
	s.record(m, board.NoPieceType)
	s.reply(&st)
	return st
}

// Promote resolves the human's pending promotion and lets the computer
// answer.
func (s *Session) Promote(pt board.PieceType) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promote(pt)
}

func (s *Session) promote(pt board.PieceType) (Status, error) {
	c, ok := s.pendingColor()
	if !ok {
		return Status{}, ErrNoPendingPromotion
	}
	if !promotable(pt) {
		return Status{}, fmt.Errorf("promote to %s: %w", pt, ErrIllegalMove)
	}

	s.board.PromotePawn(pt, c)
	if last, ok := s.board.LastMove(); ok {
		s.record(last, pt)
	}
	st := Status{Selected: board.NoSquare}
	s.reply(&st)
	return st, nil
}

// AIMove plays the computer's move for the side to move, whoever controls
// it. It is used for AI-vs-AI play, for the computer's first move when the
// human plays Black, and for hints.
func (s *Session) AIMove() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome() != Running {
		return Status{}, ErrGameOver
	}
	if s.promotionPending() {
		return Status{}, ErrPromotionPending
	}
	st := Status{Selected: board.NoSquare}
	s.aiPlay(&st)
	st.Outcome = s.outcome()
	return st, nil
}

// reply lets the computer move while it is to move in a running game.
func (s *Session) reply(st *Status) {
	for s.cfg.Mode == HumanVsAI && s.outcome() == Running && !s.isHuman(s.board.NextToPlay()) {
		if !s.aiPlay(st) {
			break
		}
	}
	st.Outcome = s.outcome()
}

// aiPlay searches and plays one computer move. Computer promotions become
// queens immediately.
func (s *Session) aiPlay(st *Status) bool {
	m, ok := s.player.DesiredMove()
	if !ok {
		return false
	}
	s.play(m, st)
	promo := board.NoPieceType
	if _, ok := s.board.PendingPromotion(m.Piece.Color); ok {
		promo = board.Queen
		s.board.PromotePawn(promo, m.Piece.Color)
	}
	s.record(m, promo)
	return true
}

// play makes m on the board for real and collects any rook step.
func (s *Session) play(m board.Move, st *Status) {
	s.board.SetMoves(nil)
	s.board.Play(m, false)
	st.Played = append(st.Played, m)
	st.RookSteps = append(st.RookSteps, s.board.Moves()...)
	s.board.SetMoves(nil)
	s.log.Debug().Str("move", m.String()).Str("piece", m.Piece.Type.String()).Msg("played")
}

// Undo takes back the last move, and against the computer keeps taking
// back until the human is to move again.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.board.Depth() <= s.base {
		return ErrNothingToUndo
	}
	s.unplay()
	for s.cfg.Mode == HumanVsAI && !s.isHuman(s.board.NextToPlay()) && s.board.Depth() > s.base {
		s.unplay()
	}
	s.board.SetMoves(nil)
	return s.rebuildTranscript()
}

func (s *Session) unplay() {
	s.board.Unplay()
	if n := s.board.Depth() - s.base; len(s.ucis) > n {
		s.ucis = s.ucis[:n]
	}
}

// Outcome returns the state of the game.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome()
}

func (s *Session) outcome() Outcome {
	switch {
	case s.board.IsCheckMate():
		if s.board.NextToPlay() == board.White {
			return BlackWins
		}
		return WhiteWins
	case s.board.IsDraw():
		return Draw
	}
	return Running
}

func (s *Session) pendingColor() (board.Color, bool) {
	for _, c := range []board.Color{board.White, board.Black} {
		if _, ok := s.board.PendingPromotion(c); ok {
			return c, true
		}
	}
	return board.NoColor, false
}

func (s *Session) promotionPending() bool {
	_, ok := s.pendingColor()
	return ok
}

// LegalMoves returns the legal moves of the side to move.
func (s *Session) LegalMoves() []board.Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.LegalMoves(s.board.NextToPlay())
}

// Snapshot returns a read-only view of the current position.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.board
	return Snapshot{
		FEN:       b.ToFEN(),
		Diagram:   b.String(),
		Turn:      b.NextToPlay(),
		Eval:      b.EvaluationScore(),
		Check:     b.IsCheck(b.NextToPlay()),
		Outcome:   s.outcome(),
		Plies:     b.Depth() - s.base,
		Promotion: s.promotionPending(),
		Hash:      b.Hash(),
	}
}
