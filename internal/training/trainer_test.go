package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chesstrainer/internal/board"
	"chesstrainer/internal/core"
	"chesstrainer/internal/progress"
	"chesstrainer/internal/puzzle"
)

func testSet(t *testing.T, ids ...string) *puzzle.Set {
	t.Helper()
	puzzles := make([]puzzle.Puzzle, 0, len(ids))
	for _, id := range ids {
		puzzles = append(puzzles, testPuzzle(id, "e2e4", "e7e5"))
	}
	return &puzzle.Set{Key: "col", Puzzles: puzzles}
}

func TestNavigationBoundaries(t *testing.T) {
	store := progress.NewMemoryStore()
	tr := NewTrainer(testSet(t, "a", "b", "c"), store, -1, nil)
	defer tr.Close()

	assert.False(t, tr.Previous(), "previous is a no-op at the first index")
	assert.Equal(t, 0, tr.Index())

	assert.True(t, tr.Next())
	assert.True(t, tr.Next())
	assert.Equal(t, 2, tr.Index())

	assert.False(t, tr.Next(), "next is a no-op at the last index")
	assert.Equal(t, 2, tr.Index())
}

func TestNavigationRebuildsSession(t *testing.T) {
	store := progress.NewMemoryStore()
	tr := NewTrainer(testSet(t, "a", "b"), store, -1, nil)
	defer tr.Close()

	_, err := tr.Session().SubmitMove("e2e4")
	require.NoError(t, err)
	require.True(t, tr.Session().Snapshot().Solved)

	require.True(t, tr.Next())

	// Fresh state regardless of the previous puzzle's terminal state
	snap := tr.Session().Snapshot()
	assert.Equal(t, "b", snap.PuzzleID)
	assert.Equal(t, 0, snap.Cursor)
	assert.False(t, snap.Solved)
	assert.False(t, snap.Revealed)
	assert.Empty(t, snap.Attempts)
	assert.Equal(t, board.StartingFEN, snap.FEN)

	require.True(t, tr.Previous())
	snap = tr.Session().Snapshot()
	assert.Equal(t, "a", snap.PuzzleID)
	assert.False(t, snap.Solved, "returning to a solved puzzle rebuilds it fresh")
}

func TestTrainerRecordsSolvesAndAttempts(t *testing.T) {
	store := progress.NewMemoryStore()
	tr := NewTrainer(testSet(t, "a", "b"), store, -1, nil)
	defer tr.Close()

	_, err := tr.Session().SubmitMove("d2d4") // wrong
	require.NoError(t, err)
	_, err = tr.Session().SubmitMove("e2e4") // right
	require.NoError(t, err)

	stats, err := tr.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSolved)
	assert.Equal(t, 2, stats.TotalAttempted)
	assert.Equal(t, stats.TotalSolved,
		stats.ByDifficulty[core.DifficultyEasy]+
			stats.ByDifficulty[core.DifficultyMedium]+
			stats.ByDifficulty[core.DifficultyHard])
}
