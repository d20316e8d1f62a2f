// Package puzzle defines the puzzle records consumed by the training
// session and the intake that turns a raw batch into a playable set.
package puzzle

import (
	"fmt"

	"chesstrainer/internal/board"
	"chesstrainer/internal/core"
)

// Meta carries display-only context about the source game. The training
// engine passes it through without interpreting it.
type Meta struct {
	Opponent    string `json:"opponent,omitempty"`
	Date        string `json:"date,omitempty"`
	OpeningName string `json:"openingName,omitempty"`
	OpeningECO  string `json:"openingEco,omitempty"`
	MoveNumber  int    `json:"moveNumber,omitempty"`
	EvalBefore  string `json:"evalBefore,omitempty"`
	EvalAfter   string `json:"evalAfter,omitempty"`
	GameID      string `json:"gameId,omitempty"`
	PGN         string `json:"pgn,omitempty"`
}

// Puzzle is immutable once received. PrincipalVariation holds the full
// forced line from the side to move at FEN; index 0 is always the solving
// player's first required move.
type Puzzle struct {
	ID                 string          `json:"puzzleId"`
	FEN                string          `json:"fen"`
	PrincipalVariation []string        `json:"principalVariation,omitempty"`
	BestMove           string          `json:"bestMove"`
	BestMoveDisplay    string          `json:"bestMoveDisplay,omitempty"`
	Difficulty         core.Difficulty `json:"difficulty"`
	Type               core.PuzzleType `json:"puzzleType"`
	PlayerColor        core.Color      `json:"playerColor"`
	Meta               Meta            `json:"meta,omitempty"`
}

// Normalize validates p and returns a copy ready for training. A missing
// principal variation falls back to a single-move line containing only
// BestMove; this happens once at ingestion, never on access.
func Normalize(p Puzzle) (Puzzle, error) {
	if p.ID == "" {
		return Puzzle{}, fmt.Errorf("puzzle missing id")
	}
	if err := board.ValidateFEN(p.FEN); err != nil {
		return Puzzle{}, fmt.Errorf("puzzle %s: %w", p.ID, err)
	}
	if !p.Difficulty.Valid() {
		return Puzzle{}, fmt.Errorf("puzzle %s: invalid difficulty %q", p.ID, p.Difficulty)
	}

	if len(p.PrincipalVariation) == 0 {
		if p.BestMove == "" {
			return Puzzle{}, fmt.Errorf("puzzle %s: no principal variation and no best move", p.ID)
		}
		p.PrincipalVariation = []string{p.BestMove}
	}

	for i, mv := range p.PrincipalVariation {
		if !board.IsEncodedMove(mv) {
			return Puzzle{}, fmt.Errorf("puzzle %s: bad move encoding %q at ply %d", p.ID, mv, i)
		}
	}

	if p.BestMove == "" {
		p.BestMove = p.PrincipalVariation[0]
	}

	if p.PlayerColor != core.ColorWhite && p.PlayerColor != core.ColorBlack {
		turn, err := board.Turn(p.FEN)
		if err != nil {
			return Puzzle{}, fmt.Errorf("puzzle %s: %w", p.ID, err)
		}
		p.PlayerColor = core.Color(turn)
	}

	return p, nil
}

// Set is an ordered sequence of puzzles, fixed for the lifetime of a
// training session. The index is the sole navigation cursor.
type Set struct {
	Key     core.CollectionKey
	Puzzles []Puzzle
}

func (s *Set) Len() int {
	return len(s.Puzzles)
}

func (s *Set) At(i int) Puzzle {
	return s.Puzzles[i]
}
