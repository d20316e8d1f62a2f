// FILE: internal/service/generate.go
package service

import (
	"context"
	"log"
	"time"

	"chesstrainer/internal/core"
	"chesstrainer/internal/puzzle"
	"chesstrainer/internal/storage"
)

// GenerationRequest scopes a puzzle generation run over a collection
type GenerationRequest struct {
	Collection      core.CollectionKey
	SubjectUsername string
	MinPly          int
	MaxPly          int
	Difficulties    []core.Difficulty
	MaxPuzzles      int
}

// GenerationProgress reports how far through the archive a run is
type GenerationProgress struct {
	GameIndex    int
	TotalGames   int
	PuzzlesFound int
}

// PuzzleGenerator produces puzzles from archived games. The mining
// algorithm lives behind this interface; the service only does the
// task plumbing around it.
type PuzzleGenerator interface {
	Generate(ctx context.Context, games []storage.GameRecord, req GenerationRequest, progress func(GenerationProgress)) ([]puzzle.Puzzle, error)
}

// StartGeneration launches a background puzzle generation run and
// returns the task id for polling. The finished puzzle set is cached
// per collection and consumed by StartTraining.
func (s *Service) StartGeneration(req GenerationRequest) (string, error) {
	if s.generator == nil {
		return "", ErrGeneratorNotWired
	}
	if s.store == nil {
		return "", ErrStorageDisabled
	}

	collection, err := s.store.GetCollection(string(req.Collection))
	if err != nil {
		return "", err
	}
	if collection == nil {
		return "", ErrCollectionNotFound
	}

	games, err := s.store.QueryGames(storage.GameFilter{Collection: string(req.Collection)})
	if err != nil {
		return "", err
	}

	taskID := s.tasks.Start("generate")
	log.Printf("Created generation task %s for collection %s over %d games", taskID, req.Collection, len(games))

	go s.runGeneration(taskID, req, games)

	return taskID, nil
}

func (s *Service) runGeneration(taskID string, req GenerationRequest, games []storage.GameRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	progress := func(p GenerationProgress) {
		s.tasks.SetGenerationProgress(taskID, p.GameIndex, p.TotalGames, p.PuzzlesFound)
	}

	raw, err := s.generator.Generate(ctx, games, req, progress)
	if err != nil {
		s.tasks.Fail(taskID, err)
		return
	}

	// Normalize up front so training start never sees malformed input
	puzzles := make([]puzzle.Puzzle, 0, len(raw))
	for _, p := range raw {
		normalized, err := puzzle.Normalize(p)
		if err != nil {
			log.Printf("Task %s: dropping malformed generated puzzle %q: %v", taskID, p.ID, err)
			continue
		}
		puzzles = append(puzzles, normalized)
	}

	s.mu.Lock()
	s.generated[req.Collection] = puzzles
	s.mu.Unlock()

	s.tasks.SetGenerationProgress(taskID, len(games), len(games), len(puzzles))
	s.tasks.Complete(taskID, 0, 0, 0)
	log.Printf("Task %s completed: %d puzzles for collection %s", taskID, len(puzzles), req.Collection)
}

// GeneratedPuzzles returns the cached puzzle set of the last completed
// generation run for a collection.
func (s *Service) GeneratedPuzzles(key core.CollectionKey) ([]puzzle.Puzzle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	puzzles, ok := s.generated[key]
	if !ok {
		return nil, false
	}
	out := make([]puzzle.Puzzle, len(puzzles))
	copy(out, puzzles)
	return out, true
}
