// FILE: internal/tasks/tasks_test.go
package tasks

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskLifecycle(t *testing.T) {
	r := NewRegistry()

	id := r.Start("import")
	require.NotEmpty(t, id)

	status, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, StateRunning, status.State)
	assert.Equal(t, 0, status.Progress)
	assert.Equal(t, "import", status.Kind)

	r.SetProgress(id, 45)
	status, _ = r.Get(id)
	assert.Equal(t, 45, status.Progress)

	// Progress is clamped
	r.SetProgress(id, 150)
	status, _ = r.Get(id)
	assert.Equal(t, 100, status.Progress)

	r.Complete(id, 120, 100, 20)
	status, _ = r.Get(id)
	assert.Equal(t, StateCompleted, status.State)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, 120, status.TotalFetched)
	assert.Equal(t, 100, status.NewGamesAdded)
	assert.Equal(t, 20, status.DuplicatesSkipped)
	assert.False(t, status.FinishedAt.IsZero())

	// Progress updates after completion are ignored
	r.SetProgress(id, 10)
	status, _ = r.Get(id)
	assert.Equal(t, 100, status.Progress)
}

func TestTaskFailure(t *testing.T) {
	r := NewRegistry()

	id := r.Start("import")
	r.SetProgress(id, 60)
	r.Fail(id, errors.New("user not found"))

	status, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, 0, status.Progress)
	assert.Equal(t, "user not found", status.Error)
}

func TestGenerationProgress(t *testing.T) {
	r := NewRegistry()

	id := r.Start("generate")
	r.SetGenerationProgress(id, 25, 100, 7)

	status, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, 25, status.CurrentGameIndex)
	assert.Equal(t, 100, status.TotalGames)
	assert.Equal(t, 7, status.PuzzlesFound)
	assert.Equal(t, 25, status.Progress)
}

func TestUnknownTask(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get("nope")
	assert.False(t, ok)
}

func TestFinishedTasksReaped(t *testing.T) {
	r := NewRegistry()
	r.ttl = time.Nanosecond

	done := r.Start("import")
	r.Complete(done, 0, 0, 0)

	time.Sleep(time.Millisecond)

	// Starting a new task triggers the reap
	r.Start("import")

	_, ok := r.Get(done)
	assert.False(t, ok)
}
