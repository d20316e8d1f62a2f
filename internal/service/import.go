// FILE: internal/service/import.go
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"chesstrainer/internal/fetch"
	"chesstrainer/internal/storage"
)

// ImportRequest names the accounts to pull games from. At least one
// username must be set.
type ImportRequest struct {
	CollectionID     string
	ChessComUsername string
	LichessUsername  string
}

// StartImport launches a background import into an existing collection
// and returns the task id for polling.
func (s *Service) StartImport(req ImportRequest) (string, error) {
	if s.store == nil {
		return "", ErrStorageDisabled
	}
	if req.ChessComUsername == "" && req.LichessUsername == "" {
		return "", fmt.Errorf("at least one username is required")
	}

	collection, err := s.store.GetCollection(req.CollectionID)
	if err != nil {
		return "", err
	}
	if collection == nil {
		return "", ErrCollectionNotFound
	}

	taskID := s.tasks.Start("import")
	log.Printf("Created import task %s for collection %s", taskID, req.CollectionID)

	go s.runImport(taskID, req)

	return taskID, nil
}

type importSource struct {
	fetcher  fetch.Fetcher
	username string
}

func (s *Service) runImport(taskID string, req ImportRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var sources []importSource
	if req.ChessComUsername != "" {
		if f, ok := s.fetchers["chess.com"]; ok {
			sources = append(sources, importSource{f, req.ChessComUsername})
		}
	}
	if req.LichessUsername != "" {
		if f, ok := s.fetchers["lichess"]; ok {
			sources = append(sources, importSource{f, req.LichessUsername})
		}
	}

	if len(sources) == 0 {
		s.tasks.Fail(taskID, fmt.Errorf("no fetchers available for the requested platforms"))
		return
	}

	var totalFetched, newGames, duplicates int

	// Archive rows are written through the async queue, so rows from
	// this run are not yet queryable. Track this run's keys in memory
	// and use the database only for previously imported games.
	seen := make(map[string]struct{})

	for idx, src := range sources {
		// Scale each platform's 0-100 progress into its share of the task
		offset := idx * 100 / len(sources)
		span := 100 / len(sources)
		progress := func(percent int) {
			s.tasks.SetProgress(taskID, offset+percent*span/100)
		}

		log.Printf("Task %s: fetching %s games for %s", taskID, src.fetcher.Platform(), src.username)

		games, err := src.fetcher.FetchGames(ctx, src.username, progress)
		if err != nil {
			s.tasks.Fail(taskID, fmt.Errorf("%s: %w", src.fetcher.Platform(), err))
			return
		}

		for _, g := range games {
			totalFetched++

			key := g.Platform + "|" + g.PlayedAt + "|" + g.WhitePlayer + "|" + g.BlackPlayer
			if _, dup := seen[key]; dup {
				duplicates++
				continue
			}

			exists, err := s.store.GameExists(req.CollectionID, g.Platform, g.PlayedAt, g.WhitePlayer, g.BlackPlayer)
			if err != nil {
				s.tasks.Fail(taskID, err)
				return
			}
			if exists {
				duplicates++
				continue
			}
			seen[key] = struct{}{}

			record := storage.GameRecord{
				GameID:      uuid.New().String(),
				Collection:  req.CollectionID,
				Platform:    g.Platform,
				PlayedAt:    g.PlayedAt,
				WhitePlayer: g.WhitePlayer,
				BlackPlayer: g.BlackPlayer,
				Result:      g.Result,
				TimeControl: g.TimeControl,
				TimeClass:   g.TimeClass,
				Rated:       g.Rated,
				PGN:         g.PGN,
				ImportedAt:  time.Now().UTC(),
			}
			if err := s.store.RecordGame(record); err != nil {
				s.tasks.Fail(taskID, err)
				return
			}
			newGames++
		}
	}

	// Make the archive writes visible before reporting the counts
	s.store.Flush()

	s.tasks.Complete(taskID, totalFetched, newGames, duplicates)
	log.Printf("Task %s completed: total %d, new %d, duplicates %d", taskID, totalFetched, newGames, duplicates)
}
