// Package training implements the puzzle session state machine: it
// validates player moves against the scripted principal variation,
// auto-plays the opponent's replies, and records solves.
package training

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"chesstrainer/internal/board"
	"chesstrainer/internal/core"
	"chesstrainer/internal/puzzle"
)

// DefaultReplyDelay is how long the opponent's scripted reply is held
// back so the player sees their own move land first.
const DefaultReplyDelay = 500 * time.Millisecond

var ErrPuzzleSolved = errors.New("puzzle already solved")

// MalformedPuzzleError reports a scripted reply that is illegal on the
// board it was meant for. A data-integrity fault in upstream generation,
// not a player error; the session stalls but navigation stays available.
type MalformedPuzzleError struct {
	PuzzleID string
	Move     string
}

func (e *MalformedPuzzleError) Error() string {
	return fmt.Sprintf("puzzle %s: scripted reply %s is illegal", e.PuzzleID, e.Move)
}

type Status int

const (
	// StatusIllegal means the move violates movement rules; nothing changed.
	StatusIllegal Status = iota
	// StatusIncorrect means the move is legal but not the scripted one.
	StatusIncorrect
	// StatusCorrect means the scripted move was played; a reply is pending.
	StatusCorrect
	// StatusSolved means the move completed the line.
	StatusSolved
)

func (s Status) String() string {
	switch s {
	case StatusIncorrect:
		return "incorrect"
	case StatusCorrect:
		return "correct"
	case StatusSolved:
		return "solved"
	default:
		return "illegal"
	}
}

// MarshalJSON emits the wire form used by the HTTP API
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Outcome is the result of one submitted move.
type Outcome struct {
	Status Status `json:"result"`
	SAN    string `json:"san"` // human-readable form of the submitted move
	FEN    string `json:"fen"` // committed position after the outcome
}

// Reply describes a scripted opponent reply that has been applied.
type Reply struct {
	SAN    string
	FEN    string
	Solved bool
}

// Config wires a session to its collaborators. OnSolve runs synchronously
// before the solved transition is final; a failure aborts the transition.
type Config struct {
	ReplyDelay time.Duration
	OnSolve    func(puzzleID string, difficulty core.Difficulty) error
	OnAttempt  func()
	OnReply    func(Reply)
}

// Session owns the lifecycle of the puzzle currently displayed. It is
// discarded and rebuilt, never patched, on every puzzle change.
type Session struct {
	mu       sync.Mutex
	puzzle   puzzle.Puzzle
	cfg      Config
	fen      string
	cursor   int
	state    core.State
	solved   bool
	revealed bool
	attempts []string
	diag     error

	// Single outstanding reply at a time; epoch guards the callback
	// against firing into a session that has since been replaced.
	replyTimer *time.Timer
	epoch      uint64
}

// NewSession starts a fresh session over p, board at the puzzle FEN,
// variation cursor at the player's first required move.
func NewSession(p puzzle.Puzzle, cfg Config) *Session {
	if cfg.ReplyDelay == 0 {
		cfg.ReplyDelay = DefaultReplyDelay
	}
	return &Session{
		puzzle: p,
		cfg:    cfg,
		fen:    p.FEN,
		state:  core.StateAwaitingPlayerMove,
	}
}

// Puzzle returns the puzzle this session plays.
func (s *Session) Puzzle() puzzle.Puzzle {
	return s.puzzle
}

// SubmitMove validates one encoded player move against the scripted line.
// Incorrect and illegal moves leave the board untouched. A correct move
// commits the new position, advances the cursor past the opponent's
// scripted reply, and schedules that reply as a delayed cancellable task.
func (s *Session) SubmitMove(encoded string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.solved {
		return Outcome{}, ErrPuzzleSolved
	}

	// A submission racing the pending reply flushes it first so the
	// move is judged against the position the cursor already points at.
	s.flushPendingReplyLocked()
	if s.solved {
		return Outcome{}, ErrPuzzleSolved
	}

	applied, err := board.Apply(s.fen, encoded, true)
	if err != nil {
		return Outcome{Status: StatusIllegal, SAN: encoded, FEN: s.fen}, nil
	}

	if s.cfg.OnAttempt != nil {
		s.cfg.OnAttempt()
	}

	if !CheckMove(s.puzzle, s.cursor, applied.UCI) {
		s.attempts = append(s.attempts, applied.SAN)
		return Outcome{Status: StatusIncorrect, SAN: applied.SAN, FEN: s.fen}, nil
	}

	prevFEN, prevCursor := s.fen, s.cursor
	s.fen = applied.FEN
	s.cursor++
	s.attempts = append(s.attempts, applied.SAN)

	if s.cursor >= len(s.puzzle.PrincipalVariation) {
		if err := s.markSolvedLocked(); err != nil {
			// Solved is only final once the progress write lands;
			// roll back so the final move can be retried.
			s.fen, s.cursor = prevFEN, prevCursor
			s.attempts = s.attempts[:len(s.attempts)-1]
			return Outcome{}, err
		}
		return Outcome{Status: StatusSolved, SAN: applied.SAN, FEN: s.fen}, nil
	}

	// Advance past the scripted reply now so the player's next move is
	// matched against the right entry even before the reply lands.
	reply := s.puzzle.PrincipalVariation[s.cursor]
	s.cursor++
	s.state = core.StateAwaitingOpponentReply

	epoch := s.epoch
	if s.cfg.ReplyDelay < 0 {
		s.applyReplyLocked(epoch, reply)
	} else {
		s.replyTimer = time.AfterFunc(s.cfg.ReplyDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.applyReplyLocked(epoch, reply)
		})
	}

	return Outcome{Status: StatusCorrect, SAN: applied.SAN, FEN: s.fen}, nil
}

// flushPendingReplyLocked applies a scheduled reply immediately if its
// timer has not fired yet.
func (s *Session) flushPendingReplyLocked() {
	if s.replyTimer == nil || s.state != core.StateAwaitingOpponentReply {
		return
	}
	if s.replyTimer.Stop() {
		// cursor points past the reply; the reply itself sits one back
		reply := s.puzzle.PrincipalVariation[s.cursor-1]
		s.applyReplyLocked(s.epoch, reply)
	}
}

func (s *Session) applyReplyLocked(epoch uint64, reply string) {
	if epoch != s.epoch || s.state != core.StateAwaitingOpponentReply {
		return // session was replaced or already advanced
	}
	s.replyTimer = nil

	// Scripted moves are replayed verbatim, no promotion defaulting
	applied, err := board.Apply(s.fen, reply, false)
	if err != nil {
		s.diag = &MalformedPuzzleError{PuzzleID: s.puzzle.ID, Move: reply}
		return
	}

	s.fen = applied.FEN
	solved := s.cursor >= len(s.puzzle.PrincipalVariation)
	if solved {
		if err := s.markSolvedLocked(); err != nil {
			s.diag = err
			return
		}
	} else {
		s.state = core.StateAwaitingPlayerMove
	}

	if s.cfg.OnReply != nil {
		s.cfg.OnReply(Reply{SAN: applied.SAN, FEN: s.fen, Solved: solved})
	}
}

func (s *Session) markSolvedLocked() error {
	if s.cfg.OnSolve != nil {
		if err := s.cfg.OnSolve(s.puzzle.ID, s.puzzle.Difficulty); err != nil {
			return fmt.Errorf("record solve: %w", err)
		}
	}
	s.solved = true
	s.state = core.StateSolved
	return nil
}

// Reveal marks the solution as shown and returns the scripted line.
// It never touches the board, the cursor, or the solved flag; repeated
// calls are idempotent.
func (s *Session) Reveal() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revealed = true
	line := make([]string, len(s.puzzle.PrincipalVariation))
	copy(line, s.puzzle.PrincipalVariation)
	return line
}

// Cancel stops any pending opponent reply and invalidates its callback.
// Must be called before the session is replaced.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	if s.replyTimer != nil {
		s.replyTimer.Stop()
		s.replyTimer = nil
	}
}

// Snapshot is a point-in-time view of the session for display.
type Snapshot struct {
	PuzzleID   string     `json:"puzzleId"`
	FEN        string     `json:"fen"`
	State      core.State `json:"state"`
	Cursor     int        `json:"cursor"`
	Solved     bool       `json:"solved"`
	Revealed   bool       `json:"revealed"`
	Attempts   []string   `json:"attempts"`
	Diagnostic string     `json:"diagnostic,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		PuzzleID: s.puzzle.ID,
		FEN:      s.fen,
		State:    s.state,
		Cursor:   s.cursor,
		Solved:   s.solved,
		Revealed: s.revealed,
		Attempts: append([]string(nil), s.attempts...),
	}
	if s.diag != nil {
		snap.Diagnostic = s.diag.Error()
	}
	return snap
}
