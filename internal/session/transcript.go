package session

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/hailam/chessgame/internal/board"
)

// transcript mirrors the game in a notnil/chess Game to produce standard
// algebraic notation and PGN.
type transcript struct {
	game *chess.Game
}

func newTranscript(fen string) (*transcript, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("transcript start position: %w", err)
	}
	return &transcript{game: chess.NewGame(opt)}, nil
}

// push appends a move given in coordinate notation.
func (t *transcript) push(uci string) error {
	m, err := chess.UCINotation{}.Decode(t.game.Position(), uci)
	if err != nil {
		return fmt.Errorf("transcript move %s: %w", uci, err)
	}
	if err := t.game.Move(m); err != nil {
		return fmt.Errorf("transcript move %s: %w", uci, err)
	}
	return nil
}

// san returns the moves of the game in standard algebraic notation.
func (t *transcript) san() []string {
	positions := t.game.Positions()
	moves := t.game.Moves()
	out := make([]string, 0, len(moves))
	for i, m := range moves {
		out = append(out, chess.AlgebraicNotation{}.Encode(positions[i], m))
	}
	return out
}

// uciFor returns the coordinate form of a played move, with the promotion
// letter when the pawn was promoted.
func uciFor(m board.Move, promo board.PieceType) string {
	s := m.String()
	if promo != board.NoPieceType {
		s += string(promo.Char())
	}
	return s
}

// record appends a played move to the transcript. The board is the source
// of truth; a transcript that cannot follow is logged and left behind.
func (s *Session) record(m board.Move, promo board.PieceType) {
	uci := uciFor(m, promo)
	s.ucis = append(s.ucis, uci)
	if err := s.game.push(uci); err != nil {
		s.log.Warn().Err(err).Msg("transcript out of sync")
	}
}

// rebuildTranscript replays the recorded moves from the start position.
func (s *Session) rebuildTranscript() error {
	game, err := newTranscript(s.start)
	if err != nil {
		return err
	}
	for _, uci := range s.ucis {
		if err := game.push(uci); err != nil {
			s.log.Warn().Err(err).Msg("transcript out of sync")
			break
		}
	}
	s.game = game
	return nil
}

// Transcript is the record of the game so far.
type Transcript struct {
	Moves []string // standard algebraic notation
	PGN   string
}

// Transcript returns the game record in standard algebraic notation and PGN.
func (s *Session) Transcript() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Transcript{Moves: s.game.san(), PGN: s.game.game.String()}
}

// MoveList formats SAN moves with move numbers, e.g. "1. e4 e5 2. Nf3".
func MoveList(moves []string) string {
	var sb strings.Builder
	for i, m := range moves {
		if i%2 == 0 {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d. ", i/2+1)
		} else {
			sb.WriteByte(' ')
		}
		sb.WriteString(m)
	}
	return sb.String()
}
