// Package rules wraps the board-rules capability the orchestration core
// needs (legality, notation, termination) around notnil/chess. Nothing in
// here talks to the engine; everything is stateless over the FEN argument.
package rules

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"
)

type Status int

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

var ErrIllegalMove = errors.New("illegal move for position")

func positionOf(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("bad FEN %q: %w", fen, err)
	}
	return chess.NewGame(opt).Position(), nil
}

// WhiteToMove reports the side to move of a FEN.
func WhiteToMove(fen string) (bool, error) {
	pos, err := positionOf(fen)
	if err != nil {
		return false, err
	}
	return pos.Turn() == chess.White, nil
}

// StatusOf reports whether the position is already terminal.
func StatusOf(fen string) (Status, error) {
	pos, err := positionOf(fen)
	if err != nil {
		return Ongoing, err
	}
	switch pos.Status() {
	case chess.Checkmate:
		return Checkmate, nil
	case chess.Stalemate:
		return Stalemate, nil
	default:
		return Ongoing, nil
	}
}

// LegalMoves enumerates every legal move of the position as UCI coordinate
// tokens (e2e4, e7e8q, ...).
func LegalMoves(fen string) ([]string, error) {
	pos, err := positionOf(fen)
	if err != nil {
		return nil, err
	}
	valid := pos.ValidMoves()
	moves := make([]string, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, chess.UCINotation{}.Encode(pos, m))
	}
	return moves, nil
}

func legalMoveByToken(pos *chess.Position, token string) *chess.Move {
	for _, m := range pos.ValidMoves() {
		if (chess.UCINotation{}).Encode(pos, m) == token {
			return m
		}
	}
	return nil
}

// SANLine replays UCI coordinate tokens against the position and returns
// their SAN spellings. An illegal token truncates the line at the point of
// failure instead of failing the whole conversion.
func SANLine(fen string, uciMoves []string) ([]string, error) {
	pos, err := positionOf(fen)
	if err != nil {
		return nil, err
	}
	san := make([]string, 0, len(uciMoves))
	for _, token := range uciMoves {
		m := legalMoveByToken(pos, token)
		if m == nil {
			break
		}
		san = append(san, chess.AlgebraicNotation{}.Encode(pos, m))
		pos = pos.Update(m)
	}
	return san, nil
}

// SANOf converts a single UCI token in the given position. Unlike SANLine
// an illegal token is an error here.
func SANOf(fen string, uciMove string) (string, error) {
	pos, err := positionOf(fen)
	if err != nil {
		return "", err
	}
	m := legalMoveByToken(pos, uciMove)
	if m == nil {
		return "", fmt.Errorf("%w: %s on %s", ErrIllegalMove, uciMove, fen)
	}
	return chess.AlgebraicNotation{}.Encode(pos, m), nil
}
