// FILE: internal/service/training.go
package service

import (
	"time"

	"github.com/google/uuid"

	"chesstrainer/internal/core"
	"chesstrainer/internal/progress"
	"chesstrainer/internal/puzzle"
	"chesstrainer/internal/training"
)

type trainingSession struct {
	id       string
	userID   string
	trainer  *training.Trainer
	lastUsed time.Time
}

// SessionView is the client-facing state of a training session
type SessionView struct {
	SessionID string             `json:"sessionId"`
	Key       core.CollectionKey `json:"collection"`
	Index     int                `json:"index"`
	Total     int                `json:"total"`
	Puzzle    puzzle.Puzzle      `json:"puzzle"`
	Snapshot  training.Snapshot  `json:"state"`
}

// StartTraining builds a puzzle set and opens a training session over
// it. With no explicit puzzles the cached generated set for the
// collection is used. Already-solved puzzles are filtered out; an
// AllSolvedError propagates when nothing remains.
func (s *Service) StartTraining(userID string, key core.CollectionKey, puzzles []puzzle.Puzzle, replyDelay time.Duration) (SessionView, error) {
	if len(puzzles) == 0 {
		cached, ok := s.GeneratedPuzzles(key)
		if !ok {
			return SessionView{}, ErrCollectionNotFound
		}
		puzzles = cached
	}

	set, err := puzzle.BuildSet(s.progress, key, puzzles)
	if err != nil {
		return SessionView{}, err
	}

	if replyDelay == 0 {
		replyDelay = training.DefaultReplyDelay
	}

	sess := &trainingSession{
		id:       uuid.New().String(),
		userID:   userID,
		trainer:  training.NewTrainer(set, s.progress, replyDelay, nil),
		lastUsed: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return s.view(sess), nil
}

// GetTraining returns the current state of a training session
func (s *Service) GetTraining(sessionID string) (SessionView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return s.view(sess), nil
}

// SubmitTrainingMove judges a player move in a training session
func (s *Service) SubmitTrainingMove(sessionID, move string) (training.Outcome, SessionView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return training.Outcome{}, SessionView{}, err
	}

	outcome, err := sess.trainer.Session().SubmitMove(move)
	if err != nil {
		return training.Outcome{}, s.view(sess), err
	}
	return outcome, s.view(sess), nil
}

// RevealTraining returns the remaining solution of the current puzzle
func (s *Service) RevealTraining(sessionID string) ([]string, SessionView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, SessionView{}, err
	}

	pv := sess.trainer.Session().Reveal()
	return pv, s.view(sess), nil
}

// AdvanceTraining moves to the next or previous puzzle. Boundary moves
// are no-ops and return the unchanged state.
func (s *Service) AdvanceTraining(sessionID string, forward bool) (SessionView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return SessionView{}, err
	}

	if forward {
		sess.trainer.Next()
	} else {
		sess.trainer.Previous()
	}
	return s.view(sess), nil
}

// TrainingStats returns progress stats for the session's collection
func (s *Service) TrainingStats(sessionID string) (progress.Stats, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return progress.Stats{}, err
	}
	return sess.trainer.Stats()
}

// EndTraining closes a session and cancels any pending reply
func (s *Service) EndTraining(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	sess.trainer.Close()
	delete(s.sessions, sessionID)
	return nil
}

// ResetProgress irreversibly clears solve history for a collection
func (s *Service) ResetProgress(key core.CollectionKey) error {
	return s.progress.Reset(key)
}

// SessionOwner reports which user opened a training session
func (s *Service) SessionOwner(sessionID string) (string, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return "", err
	}
	return sess.userID, nil
}

func (s *Service) session(sessionID string) (*trainingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastUsed = time.Now()
	return sess, nil
}

func (s *Service) view(sess *trainingSession) SessionView {
	t := sess.trainer
	return SessionView{
		SessionID: sess.id,
		Key:       t.Key(),
		Index:     t.Index(),
		Total:     t.Len(),
		Puzzle:    clientPuzzle(t.Session().Puzzle()),
		Snapshot:  t.Session().Snapshot(),
	}
}

// clientPuzzle strips the solution fields so the client cannot read
// the answer out of the session state.
func clientPuzzle(p puzzle.Puzzle) puzzle.Puzzle {
	p.PrincipalVariation = nil
	p.BestMove = ""
	p.BestMoveDisplay = ""
	return p
}
