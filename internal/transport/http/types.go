// FILE: internal/transport/http/types.go
package http

import (
	"chesstrainer/internal/puzzle"
)

// CreateCollectionRequest creates a named game collection
type CreateCollectionRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Platform string `json:"platform" validate:"required,oneof=chess.com lichess"`
	Username string `json:"username" validate:"required,min=1,max=60"`
}

// RenameCollectionRequest changes a collection's display name
type RenameCollectionRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// ImportGamesRequest starts a background archive import
type ImportGamesRequest struct {
	ChessComUsername string `json:"chesscomUsername" validate:"omitempty,min=1,max=60"`
	LichessUsername  string `json:"lichessUsername" validate:"omitempty,min=1,max=60"`
}

// TaskResponse returns the id of a started background task
type TaskResponse struct {
	TaskID  string `json:"taskId"`
	Message string `json:"message"`
}

// AnalyzePositionRequest evaluates one position
type AnalyzePositionRequest struct {
	FEN   string `json:"fen" validate:"required"`
	Depth int    `json:"depth" validate:"omitempty,min=1,max=40"`
}

// ExplorerQueryRequest asks for continuations from a position
type ExplorerQueryRequest struct {
	Collection  string   `json:"collection" validate:"required"`
	FEN         string   `json:"fen" validate:"required"`
	Color       string   `json:"color" validate:"required,oneof=white black"`
	FromDate    string   `json:"fromDate" validate:"omitempty"`
	ToDate      string   `json:"toDate" validate:"omitempty"`
	TimeClasses []string `json:"timeClasses" validate:"omitempty"`
	Usernames   []string `json:"usernames" validate:"omitempty"`
	WithEvals   bool     `json:"withEvals"`
}

// GeneratePuzzlesRequest starts a background puzzle generation run
type GeneratePuzzlesRequest struct {
	SubjectUsername string   `json:"subjectUsername" validate:"omitempty,min=1,max=60"`
	MinPly          int      `json:"minPly" validate:"omitempty,min=0"`
	MaxPly          int      `json:"maxPly" validate:"omitempty,min=0"`
	Difficulties    []string `json:"difficulties" validate:"omitempty,dive,oneof=easy medium hard"`
	MaxPuzzles      int      `json:"maxPuzzles" validate:"omitempty,min=1,max=500"`
}

// StartTrainingRequest opens a training session over a puzzle set.
// With no puzzles in the body, the collection's generated set is used.
type StartTrainingRequest struct {
	Collection   string          `json:"collection" validate:"required"`
	Puzzles      []puzzle.Puzzle `json:"puzzles" validate:"omitempty"`
	ReplyDelayMs int             `json:"replyDelayMs" validate:"omitempty,min=0,max=10000"`
}

// TrainingMoveRequest submits one player move
type TrainingMoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"`
}
