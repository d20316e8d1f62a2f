// FILE: internal/storage/collection.go
package storage

import (
	"database/sql"
	"fmt"

	"chesstrainer/internal/core"
)

// CreateCollection creates a collection synchronously, failing on a
// duplicate name.
func (s *Store) CreateCollection(record CollectionRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow("SELECT COUNT(*) FROM collections WHERE name = ?", record.Name).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check collection name: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("collection %q already exists", record.Name)
	}

	_, err = tx.Exec(`INSERT INTO collections (collection_id, name, platform, username, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		record.CollectionID, record.Name, record.Platform, record.Username, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	return tx.Commit()
}

// GetCollection retrieves a collection by ID, including its game count
func (s *Store) GetCollection(collectionID string) (*CollectionRecord, error) {
	var c CollectionRecord
	err := s.db.QueryRow(`SELECT c.collection_id, c.name, c.platform, c.username, c.created_at,
		(SELECT COUNT(*) FROM games g WHERE g.collection_id = c.collection_id)
		FROM collections c WHERE c.collection_id = ?`, collectionID,
	).Scan(&c.CollectionID, &c.Name, &c.Platform, &c.Username, &c.CreatedAt, &c.GameCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &c, nil
}

// ListCollections returns all collections with their game counts
func (s *Store) ListCollections() ([]CollectionRecord, error) {
	rows, err := s.db.Query(`SELECT c.collection_id, c.name, c.platform, c.username, c.created_at,
		(SELECT COUNT(*) FROM games g WHERE g.collection_id = c.collection_id)
		FROM collections c ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var collections []CollectionRecord
	for rows.Next() {
		var c CollectionRecord
		if err := rows.Scan(&c.CollectionID, &c.Name, &c.Platform, &c.Username, &c.CreatedAt, &c.GameCount); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		collections = append(collections, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return collections, nil
}

// RenameCollection changes a collection's name, failing on a duplicate.
// Returns false if the collection does not exist.
func (s *Store) RenameCollection(collectionID, name string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow("SELECT COUNT(*) FROM collections WHERE name = ? AND collection_id != ?",
		name, collectionID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check collection name: %w", err)
	}
	if count > 0 {
		return false, fmt.Errorf("collection %q already exists", name)
	}

	res, err := tx.Exec("UPDATE collections SET name = ? WHERE collection_id = ?", name, collectionID)
	if err != nil {
		return false, fmt.Errorf("failed to rename collection: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return false, nil
	}

	return true, tx.Commit()
}

// DeleteCollection removes a collection, its games, and its training
// progress. Returns false if the collection does not exist.
func (s *Store) DeleteCollection(collectionID string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM collections WHERE collection_id = ?", collectionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete collection: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return false, nil
	}

	// Games cascade via foreign key; progress is keyed separately
	key := string(core.CollectionKey(collectionID))
	if _, err := tx.Exec("DELETE FROM solved_puzzles WHERE collection_key = ?", key); err != nil {
		return false, fmt.Errorf("failed to delete progress: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM collection_stats WHERE collection_key = ?", key); err != nil {
		return false, fmt.Errorf("failed to delete stats: %w", err)
	}

	return true, tx.Commit()
}
