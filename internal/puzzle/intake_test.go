package puzzle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chesstrainer/internal/core"
	"chesstrainer/internal/progress"
)

func TestBuildSetFiltersSolved(t *testing.T) {
	store := progress.NewMemoryStore()
	key := core.CollectionKey("col-1")

	_, err := store.RecordSolve(key, "a", core.DifficultyEasy)
	require.NoError(t, err)
	_, err = store.RecordSolve(key, "b", core.DifficultyHard)
	require.NoError(t, err)

	set, err := BuildSet(store, key, []Puzzle{validPuzzle("a"), validPuzzle("b"), validPuzzle("c")})
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "c", set.At(0).ID)
}

func TestBuildSetAllSolved(t *testing.T) {
	store := progress.NewMemoryStore()
	key := core.CollectionKey("col-1")

	for _, id := range []string{"a", "b"} {
		_, err := store.RecordSolve(key, id, core.DifficultyMedium)
		require.NoError(t, err)
	}

	_, err := BuildSet(store, key, []Puzzle{validPuzzle("a"), validPuzzle("b")})
	var allSolved *AllSolvedError
	require.True(t, errors.As(err, &allSolved))
	assert.Equal(t, 2, allSolved.Count)
}

func TestBuildSetPreservesOrder(t *testing.T) {
	store := progress.NewMemoryStore()

	set, err := BuildSet(store, "col-1", []Puzzle{validPuzzle("z"), validPuzzle("a"), validPuzzle("m")})
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())
	assert.Equal(t, "z", set.At(0).ID)
	assert.Equal(t, "a", set.At(1).ID)
	assert.Equal(t, "m", set.At(2).ID)
}

func TestBuildSetSolvedScopedPerCollection(t *testing.T) {
	store := progress.NewMemoryStore()

	_, err := store.RecordSolve("col-1", "a", core.DifficultyEasy)
	require.NoError(t, err)

	// Progress in col-1 must not leak into col-2
	set, err := BuildSet(store, "col-2", []Puzzle{validPuzzle("a")})
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestBuildSetEmptyInput(t *testing.T) {
	store := progress.NewMemoryStore()
	_, err := BuildSet(store, "col-1", nil)
	assert.Error(t, err)
}
