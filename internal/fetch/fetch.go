// FILE: internal/fetch/fetch.go

// Package fetch downloads public game archives from chess platforms
// and normalizes them into a single model.
package fetch

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Game is a normalized archived game as reported by a platform
type Game struct {
	Platform    string `json:"platform"`
	PlayedAt    string `json:"playedAt"` // ISO datetime
	WhitePlayer string `json:"whitePlayer"`
	BlackPlayer string `json:"blackPlayer"`
	Result      string `json:"result"` // "1-0", "0-1", "1/2-1/2"
	TimeControl string `json:"timeControl"`
	TimeClass   string `json:"timeClass"`
	Rated       bool   `json:"rated"`
	PGN         string `json:"pgn"`
}

// Fetcher retrieves all available public games for a username.
// The progress callback receives a 0-100 percentage and may be nil.
type Fetcher interface {
	Platform() string
	FetchGames(ctx context.Context, username string, progress func(percent int)) ([]Game, error)
}

func defaultClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// ClassifyTimeControl buckets a time control string into
// bullet/blitz/rapid/classical/correspondence. Accepts "180+0",
// "600", "3+0" (minutes when below 60), or "correspondence".
func ClassifyTimeControl(timeControl string) string {
	tc := strings.ToLower(timeControl)

	if strings.Contains(tc, "correspondence") || strings.Contains(tc, "daily") {
		return "correspondence"
	}

	base := tc
	if i := strings.Index(tc, "+"); i >= 0 {
		base = tc[:i]
	}

	seconds, err := strconv.Atoi(strings.TrimSpace(base))
	if err != nil {
		// Unparseable time controls default to blitz
		return "blitz"
	}

	// Small values are minutes, not seconds
	if seconds < 60 {
		seconds *= 60
	}

	switch {
	case seconds < 180:
		return "bullet"
	case seconds < 600:
		return "blitz"
	case seconds < 1800:
		return "rapid"
	default:
		return "classical"
	}
}
