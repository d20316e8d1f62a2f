// FILE: internal/service/collection.go
package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"chesstrainer/internal/core"
	"chesstrainer/internal/storage"
)

// CreateCollection creates a named, empty game collection
func (s *Service) CreateCollection(name, platform, username string) (*storage.CollectionRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	record := storage.CollectionRecord{
		CollectionID: uuid.New().String(),
		Name:         name,
		Platform:     platform,
		Username:     username,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateCollection(record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListCollections returns all collections with game counts
func (s *Service) ListCollections() ([]storage.CollectionRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	return s.store.ListCollections()
}

// RenameCollection changes a collection's display name
func (s *Service) RenameCollection(collectionID, name string) (*storage.CollectionRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	renamed, err := s.store.RenameCollection(collectionID, name)
	if err != nil {
		return nil, err
	}
	if !renamed {
		return nil, ErrCollectionNotFound
	}
	return s.GetCollection(collectionID)
}

// GetCollection retrieves one collection
func (s *Service) GetCollection(collectionID string) (*storage.CollectionRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	record, err := s.store.GetCollection(collectionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrCollectionNotFound
	}
	return record, nil
}

// DeleteCollection removes a collection, its games, and its training
// progress. Any cached generated puzzles for it are dropped too.
func (s *Service) DeleteCollection(collectionID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}

	deleted, err := s.store.DeleteCollection(collectionID)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if !deleted {
		return ErrCollectionNotFound
	}

	s.mu.Lock()
	delete(s.generated, core.CollectionKey(collectionID))
	s.mu.Unlock()

	return nil
}
