// FILE: internal/tasks/tasks.go

// Package tasks tracks background jobs whose status clients poll by id.
package tasks

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type TaskState string

const (
	StateRunning   TaskState = "running"
	StateCompleted TaskState = "completed"
	StateFailed    TaskState = "failed"
)

// Status is a point-in-time snapshot of a background task
type Status struct {
	TaskID            string    `json:"taskId"`
	Kind              string    `json:"kind"`
	State             TaskState `json:"status"`
	Progress          int       `json:"progress"` // 0-100
	TotalFetched      int       `json:"totalFetched"`
	NewGamesAdded     int       `json:"newGamesAdded"`
	DuplicatesSkipped int       `json:"duplicatesSkipped"`
	CurrentGameIndex  int       `json:"currentGameIndex"`
	TotalGames        int       `json:"totalGames"`
	PuzzlesFound      int       `json:"puzzlesFound"`
	Error             string    `json:"error,omitempty"`
	StartedAt         time.Time `json:"startedAt"`
	FinishedAt        time.Time `json:"finishedAt,omitempty"`
}

// Registry holds task statuses in memory. Finished tasks are retained
// so clients can observe the terminal state, and reaped after a TTL.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Status
	ttl   time.Duration
}

func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*Status),
		ttl:   time.Hour,
	}
}

// Start registers a new running task and returns its generated id
func (r *Registry) Start(kind string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reapLocked()

	id := uuid.New().String()
	r.tasks[id] = &Status{
		TaskID:    id,
		Kind:      kind,
		State:     StateRunning,
		StartedAt: time.Now().UTC(),
	}
	return id
}

// Get returns a copy of the task status, or false if unknown
func (r *Registry) Get(id string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return Status{}, false
	}
	return *t, true
}

// SetProgress updates the progress percentage of a running task
func (r *Registry) SetProgress(id string, percent int) {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tasks[id]; ok && t.State == StateRunning {
		t.Progress = percent
	}
}

// SetGenerationProgress updates the per-game counters of a running
// puzzle generation task and derives the percentage from them.
func (r *Registry) SetGenerationProgress(id string, gameIndex, totalGames, puzzlesFound int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tasks[id]; ok && t.State == StateRunning {
		t.CurrentGameIndex = gameIndex
		t.TotalGames = totalGames
		t.PuzzlesFound = puzzlesFound
		if totalGames > 0 {
			t.Progress = gameIndex * 100 / totalGames
		}
	}
}

// Complete marks a task finished with its final counts
func (r *Registry) Complete(id string, totalFetched, newGames, duplicates int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tasks[id]; ok {
		t.State = StateCompleted
		t.Progress = 100
		t.TotalFetched = totalFetched
		t.NewGamesAdded = newGames
		t.DuplicatesSkipped = duplicates
		t.FinishedAt = time.Now().UTC()
	}
}

// Fail marks a task failed and resets its progress
func (r *Registry) Fail(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tasks[id]; ok {
		t.State = StateFailed
		t.Progress = 0
		if err != nil {
			t.Error = err.Error()
		}
		t.FinishedAt = time.Now().UTC()
	}
}

// reapLocked drops finished tasks older than the retention TTL
func (r *Registry) reapLocked() {
	cutoff := time.Now().UTC().Add(-r.ttl)
	for id, t := range r.tasks {
		if t.State != StateRunning && !t.FinishedAt.IsZero() && t.FinishedAt.Before(cutoff) {
			delete(r.tasks, id)
		}
	}
}
