// FILE: internal/progress/progress_test.go
package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chesstrainer/internal/core"
)

func TestMemoryStoreSolveTracking(t *testing.T) {
	store := NewMemoryStore()
	key := core.CollectionKey("c1")

	solved, err := store.IsSolved(key, "p1")
	require.NoError(t, err)
	assert.False(t, solved)

	stats, err := store.RecordSolve(key, "p1", core.DifficultyEasy)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSolved)

	// Recording the same puzzle again does not double count
	stats, err = store.RecordSolve(key, "p1", core.DifficultyEasy)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSolved)
	assert.Equal(t, 1, stats.ByDifficulty[core.DifficultyEasy])

	require.NoError(t, store.RecordAttempt(key))
	require.NoError(t, store.RecordAttempt(key))

	stats, err = store.Stats(key)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalAttempted)

	ids, err := store.SolvedIDs(key)
	require.NoError(t, err)
	assert.Contains(t, ids, "p1")

	// Solves never leak between collections
	other, err := store.Stats(core.CollectionKey("c2"))
	require.NoError(t, err)
	assert.Zero(t, other.TotalSolved)

	require.NoError(t, store.Reset(key))
	stats, err = store.Stats(key)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSolved)
	assert.Zero(t, stats.TotalAttempted)
}
