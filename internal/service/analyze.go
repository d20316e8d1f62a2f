// FILE: internal/service/analyze.go
package service

import (
	"log"

	"chesstrainer/internal/board"
	"chesstrainer/internal/core"
	"chesstrainer/internal/engine"
	"chesstrainer/internal/explorer"
	"chesstrainer/internal/storage"
)

const continuationEvalDepth = 15

// AnalyzePosition evaluates a position with the UCI engine
func (s *Service) AnalyzePosition(fen string, depth int) (*engine.Analysis, error) {
	if s.analyzer == nil {
		return nil, ErrEngineUnavailable
	}
	if err := board.ValidateFEN(fen); err != nil {
		return nil, err
	}
	if depth <= 0 {
		depth = 20
	}

	return s.analyzer.Analyze(fen, depth)
}

// ContinuationsRequest asks what the player played from a position
type ContinuationsRequest struct {
	Collection  string
	FEN         string
	Color       core.Color
	FromDate    string
	ToDate      string
	TimeClasses []string
	Usernames   []string
	WithEvals   bool
}

// FindContinuations queries the archive for moves played from the
// given position. When requested and an engine is available, each
// continuation is annotated with a shallow evaluation.
func (s *Service) FindContinuations(req ContinuationsRequest) ([]explorer.Continuation, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if err := board.ValidateFEN(req.FEN); err != nil {
		return nil, err
	}

	games, err := s.store.QueryGames(storage.GameFilter{
		Collection: req.Collection,
		FromDate:   req.FromDate,
		ToDate:     req.ToDate,
	})
	if err != nil {
		return nil, err
	}

	conts, err := explorer.FindContinuations(games, req.FEN, req.Color, explorer.Filter{
		TimeClasses: req.TimeClasses,
		Usernames:   req.Usernames,
	})
	if err != nil {
		return nil, err
	}

	if req.WithEvals && s.analyzer != nil {
		for i := range conts {
			s.annotateContinuation(req.FEN, &conts[i])
		}
	}

	return conts, nil
}

// annotateContinuation attaches an engine eval to one continuation.
// Evaluation failures degrade to "N/A" instead of failing the query.
func (s *Service) annotateContinuation(fen string, c *explorer.Continuation) {
	afterFEN, err := explorer.ApplySAN(fen, c.Move)
	if err != nil {
		c.Eval = "N/A"
		return
	}

	analysis, err := s.analyzer.Analyze(afterFEN, continuationEvalDepth)
	if err != nil {
		log.Printf("Continuation eval failed for %s: %v", c.Move, err)
		c.Eval = "N/A"
		return
	}

	c.Eval = analysis.Score
	c.EvalCP = analysis.ScoreCP
}
