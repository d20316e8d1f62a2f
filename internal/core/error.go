package core

// Error codes
const (
	ErrIllegalMove        = "ILLEGAL_MOVE"
	ErrWrongMove          = "WRONG_MOVE"
	ErrPuzzleSolved       = "PUZZLE_SOLVED"
	ErrMalformedPuzzle    = "MALFORMED_PUZZLE"
	ErrAllSolved          = "ALL_PUZZLES_SOLVED"
	ErrSessionNotFound    = "SESSION_NOT_FOUND"
	ErrCollectionNotFound = "COLLECTION_NOT_FOUND"
	ErrGameNotFound       = "GAME_NOT_FOUND"
	ErrTaskNotFound       = "TASK_NOT_FOUND"
	ErrRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrInvalidRequest     = "INVALID_REQUEST"
	ErrInvalidContent     = "INVALID_CONTENT_TYPE"
	ErrInvalidFEN         = "INVALID_FEN"
	ErrInternalError      = "INTERNAL_ERROR"
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrEngineUnavailable  = "ENGINE_UNAVAILABLE"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
