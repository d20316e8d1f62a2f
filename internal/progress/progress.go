// Package progress tracks which puzzles have been solved per collection.
package progress

import (
	"sync"

	"chesstrainer/internal/core"
)

// Stats aggregates solve counts for one collection.
// TotalSolved always equals the sum of ByDifficulty.
type Stats struct {
	TotalSolved    int                     `json:"totalSolved"`
	TotalAttempted int                     `json:"totalAttempted"`
	ByDifficulty   map[core.Difficulty]int `json:"byDifficulty"`
}

func NewStats() Stats {
	return Stats{ByDifficulty: map[core.Difficulty]int{
		core.DifficultyEasy:   0,
		core.DifficultyMedium: 0,
		core.DifficultyHard:   0,
	}}
}

// Store persists solve progress keyed by collection. RecordSolve is
// idempotent per puzzle id; Reset irreversibly clears a collection.
type Store interface {
	IsSolved(key core.CollectionKey, puzzleID string) (bool, error)
	SolvedIDs(key core.CollectionKey) (map[string]struct{}, error)
	RecordSolve(key core.CollectionKey, puzzleID string, difficulty core.Difficulty) (Stats, error)
	RecordAttempt(key core.CollectionKey) error
	Stats(key core.CollectionKey) (Stats, error)
	Reset(key core.CollectionKey) error
}

// MemoryStore is a Store kept entirely in memory, used by the local
// trainer and tests. Writes are visible immediately.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[core.CollectionKey]*record
}

type record struct {
	solved    map[string]core.Difficulty
	attempted int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[core.CollectionKey]*record)}
}

func (m *MemoryStore) get(key core.CollectionKey) *record {
	r, ok := m.records[key]
	if !ok {
		r = &record{solved: make(map[string]core.Difficulty)}
		m.records[key] = r
	}
	return r
}

func (m *MemoryStore) IsSolved(key core.CollectionKey, puzzleID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[key]
	if !ok {
		return false, nil
	}
	_, solved := r.solved[puzzleID]
	return solved, nil
}

func (m *MemoryStore) SolvedIDs(key core.CollectionKey) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make(map[string]struct{})
	if r, ok := m.records[key]; ok {
		for id := range r.solved {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func (m *MemoryStore) RecordSolve(key core.CollectionKey, puzzleID string, difficulty core.Difficulty) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.get(key)
	if _, done := r.solved[puzzleID]; !done {
		r.solved[puzzleID] = difficulty
	}
	return r.stats(), nil
}

func (m *MemoryStore) RecordAttempt(key core.CollectionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.get(key).attempted++
	return nil
}

func (m *MemoryStore) Stats(key core.CollectionKey) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if r, ok := m.records[key]; ok {
		return r.stats(), nil
	}
	return NewStats(), nil
}

func (m *MemoryStore) Reset(key core.CollectionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

func (r *record) stats() Stats {
	s := NewStats()
	s.TotalAttempted = r.attempted
	for _, d := range r.solved {
		s.TotalSolved++
		s.ByDifficulty[d]++
	}
	return s
}
