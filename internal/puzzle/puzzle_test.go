package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chesstrainer/internal/board"
	"chesstrainer/internal/core"
)

func validPuzzle(id string) Puzzle {
	return Puzzle{
		ID:                 id,
		FEN:                board.StartingFEN,
		PrincipalVariation: []string{"e2e4", "e7e5"},
		BestMove:           "e2e4",
		Difficulty:         core.DifficultyEasy,
		Type:               core.PuzzleTactical,
		PlayerColor:        core.ColorWhite,
	}
}

func TestNormalizeFallsBackToBestMove(t *testing.T) {
	p := validPuzzle("p1")
	p.PrincipalVariation = nil

	normalized, err := Normalize(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"e2e4"}, normalized.PrincipalVariation)
}

func TestNormalizeFillsBestMoveFromVariation(t *testing.T) {
	p := validPuzzle("p1")
	p.BestMove = ""

	normalized, err := Normalize(p)
	require.NoError(t, err)
	assert.Equal(t, "e2e4", normalized.BestMove)
}

func TestNormalizeDerivesPlayerColorFromFEN(t *testing.T) {
	p := validPuzzle("p1")
	p.PlayerColor = 0

	normalized, err := Normalize(p)
	require.NoError(t, err)
	assert.Equal(t, core.ColorWhite, normalized.PlayerColor)
}

func TestNormalizeRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Puzzle)
	}{
		{"missing id", func(p *Puzzle) { p.ID = "" }},
		{"bad fen", func(p *Puzzle) { p.FEN = "not a position" }},
		{"bad difficulty", func(p *Puzzle) { p.Difficulty = "impossible" }},
		{"bad encoding", func(p *Puzzle) { p.PrincipalVariation = []string{"e4"} }},
		{"empty line", func(p *Puzzle) { p.PrincipalVariation = nil; p.BestMove = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPuzzle("p1")
			tt.mutate(&p)
			_, err := Normalize(p)
			assert.Error(t, err)
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	p := validPuzzle("p1")
	p.PrincipalVariation = nil

	_, err := Normalize(p)
	require.NoError(t, err)
	assert.Nil(t, p.PrincipalVariation)
}
