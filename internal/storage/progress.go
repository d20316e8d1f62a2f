// FILE: internal/storage/progress.go
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"chesstrainer/internal/core"
	"chesstrainer/internal/progress"
)

// ProgressStore adapts the Store to the progress.Store contract. Solve
// and attempt writes are synchronous transactions so a reported solve
// is durable before the session advances.
type ProgressStore struct {
	store *Store
}

var _ progress.Store = (*ProgressStore)(nil)

func NewProgressStore(store *Store) *ProgressStore {
	return &ProgressStore{store: store}
}

func (p *ProgressStore) IsSolved(key core.CollectionKey, puzzleID string) (bool, error) {
	var count int
	err := p.store.db.QueryRow(
		"SELECT COUNT(*) FROM solved_puzzles WHERE collection_key = ? AND puzzle_id = ?",
		string(key), puzzleID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("solve lookup failed: %w", err)
	}
	return count > 0, nil
}

func (p *ProgressStore) SolvedIDs(key core.CollectionKey) (map[string]struct{}, error) {
	rows, err := p.store.db.Query(
		"SELECT puzzle_id FROM solved_puzzles WHERE collection_key = ?", string(key))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return ids, nil
}

// RecordSolve inserts the solve row and returns the updated stats.
// INSERT OR IGNORE makes repeated solves of the same puzzle a no-op.
func (p *ProgressStore) RecordSolve(key core.CollectionKey, puzzleID string, difficulty core.Difficulty) (progress.Stats, error) {
	tx, err := p.store.db.Begin()
	if err != nil {
		return progress.Stats{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT OR IGNORE INTO solved_puzzles (collection_key, puzzle_id, difficulty, solved_at)
		VALUES (?, ?, ?, ?)`,
		string(key), puzzleID, string(difficulty), time.Now().UTC(),
	)
	if err != nil {
		return progress.Stats{}, fmt.Errorf("failed to record solve: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return progress.Stats{}, fmt.Errorf("failed to commit solve: %w", err)
	}

	return p.Stats(key)
}

func (p *ProgressStore) RecordAttempt(key core.CollectionKey) error {
	tx, err := p.store.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO collection_stats (collection_key, attempted) VALUES (?, 1)
		ON CONFLICT(collection_key) DO UPDATE SET attempted = attempted + 1`, string(key))
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	return tx.Commit()
}

// Stats derives solve counts from the solved rows so the total always
// matches the per-difficulty breakdown.
func (p *ProgressStore) Stats(key core.CollectionKey) (progress.Stats, error) {
	stats := progress.NewStats()

	rows, err := p.store.db.Query(
		"SELECT difficulty, COUNT(*) FROM solved_puzzles WHERE collection_key = ? GROUP BY difficulty",
		string(key))
	if err != nil {
		return stats, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var difficulty string
		var count int
		if err := rows.Scan(&difficulty, &count); err != nil {
			return stats, fmt.Errorf("scan failed: %w", err)
		}
		stats.ByDifficulty[core.Difficulty(difficulty)] = count
		stats.TotalSolved += count
	}

	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("rows iteration failed: %w", err)
	}

	err = p.store.db.QueryRow(
		"SELECT attempted FROM collection_stats WHERE collection_key = ?", string(key),
	).Scan(&stats.TotalAttempted)
	if err != nil && err != sql.ErrNoRows {
		return stats, fmt.Errorf("attempt lookup failed: %w", err)
	}

	return stats, nil
}

// Reset irreversibly clears all progress for a collection
func (p *ProgressStore) Reset(key core.CollectionKey) error {
	tx, err := p.store.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM solved_puzzles WHERE collection_key = ?", string(key)); err != nil {
		return fmt.Errorf("failed to clear solves: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM collection_stats WHERE collection_key = ?", string(key)); err != nil {
		return fmt.Errorf("failed to clear stats: %w", err)
	}

	return tx.Commit()
}
