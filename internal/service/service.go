// FILE: internal/service/service.go

// Package service coordinates storage, fetchers, the analysis engine
// and active training sessions behind the HTTP layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"chesstrainer/internal/core"
	"chesstrainer/internal/engine"
	"chesstrainer/internal/explorer"
	"chesstrainer/internal/fetch"
	"chesstrainer/internal/progress"
	"chesstrainer/internal/puzzle"
	"chesstrainer/internal/storage"
	"chesstrainer/internal/tasks"
)

const (
	SessionTTL         = 7 * 24 * time.Hour
	TrainingSessionTTL = 6 * time.Hour
	CleanupJobInterval = 1 * time.Hour
)

var (
	ErrSessionNotFound    = errors.New("training session not found")
	ErrEngineUnavailable  = errors.New("analysis engine unavailable")
	ErrStorageDisabled    = errors.New("storage disabled")
	ErrGeneratorNotWired  = errors.New("puzzle generator not configured")
	ErrCollectionNotFound = errors.New("collection not found")
)

// Analyzer is the position evaluation capability, satisfied by
// engine.UCI and by test stubs.
type Analyzer interface {
	Analyze(fen string, depth int) (*engine.Analysis, error)
	Close() error
}

// Config assembles the service's collaborators. Nil fields disable the
// corresponding capability rather than failing.
type Config struct {
	Store     *storage.Store
	Progress  progress.Store // defaults to the SQLite store, or memory without one
	Analyzer  Analyzer
	Generator PuzzleGenerator
	Fetchers  []fetch.Fetcher
	Openings  *explorer.OpeningBook
	JWTSecret []byte
}

// Service coordinates training sessions, archives, and user accounts
type Service struct {
	store     *storage.Store
	progress  progress.Store
	analyzer  Analyzer
	generator PuzzleGenerator
	fetchers  map[string]fetch.Fetcher
	book      *explorer.OpeningBook
	tasks     *tasks.Registry
	jwtSecret []byte

	mu        sync.RWMutex
	sessions  map[string]*trainingSession
	generated map[core.CollectionKey][]puzzle.Puzzle
}

// New creates a service instance from the given collaborators
func New(cfg Config) *Service {
	prog := cfg.Progress
	if prog == nil {
		if cfg.Store != nil {
			prog = storage.NewProgressStore(cfg.Store)
		} else {
			prog = progress.NewMemoryStore()
		}
	}

	fetchers := make(map[string]fetch.Fetcher)
	if cfg.Fetchers == nil {
		cfg.Fetchers = []fetch.Fetcher{fetch.NewChessComFetcher(), fetch.NewLichessFetcher()}
	}
	for _, f := range cfg.Fetchers {
		fetchers[f.Platform()] = f
	}

	book := cfg.Openings
	if book == nil {
		book = &explorer.OpeningBook{}
	}

	return &Service{
		store:     cfg.Store,
		progress:  prog,
		analyzer:  cfg.Analyzer,
		generator: cfg.Generator,
		fetchers:  fetchers,
		book:      book,
		tasks:     tasks.NewRegistry(),
		jwtSecret: cfg.JWTSecret,
		sessions:  make(map[string]*trainingSession),
		generated: make(map[core.CollectionKey][]puzzle.Puzzle),
	}
}

// Progress exposes the progress store for stats and reset operations
func (s *Service) Progress() progress.Store {
	return s.progress
}

// TaskStatus returns the status of a background task
func (s *Service) TaskStatus(taskID string) (tasks.Status, bool) {
	return s.tasks.Get(taskID)
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// GetEngineHealth reports whether position analysis is available
func (s *Service) GetEngineHealth() string {
	if s.analyzer == nil {
		return "disabled"
	}
	return "ok"
}

// Shutdown gracefully shuts down the service
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.trainer.Close()
	}
	s.sessions = make(map[string]*trainingSession)
	s.mu.Unlock()

	if s.analyzer != nil {
		if err := s.analyzer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("engine: %w", err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RunCleanupJob runs periodic cleanup of expired auth sessions and
// abandoned training sessions.
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired()
		}
	}
}

func (s *Service) cleanupExpired() {
	if s.store != nil {
		if deleted, err := s.store.DeleteExpiredSessions(); err != nil {
			log.Printf("cleanup: failed to delete expired sessions: %v", err)
		} else if deleted > 0 {
			log.Printf("cleanup: deleted %d expired sessions", deleted)
		}
	}

	cutoff := time.Now().Add(-TrainingSessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			sess.trainer.Close()
			delete(s.sessions, id)
			log.Printf("cleanup: closed abandoned training session %s", id)
		}
	}
}
