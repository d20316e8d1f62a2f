// FILE: internal/fetch/chesscom.go
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const chessComBaseURL = "https://api.chess.com/pub/player"

// ChessComFetcher fetches games from the chess.com public API via its
// monthly archive listing.
type ChessComFetcher struct {
	client  *http.Client
	baseURL string
}

func NewChessComFetcher() *ChessComFetcher {
	return &ChessComFetcher{client: defaultClient(), baseURL: chessComBaseURL}
}

func (f *ChessComFetcher) Platform() string { return "chess.com" }

type chessComArchiveList struct {
	Archives []string `json:"archives"`
}

type chessComGame struct {
	White       chessComPlayer `json:"white"`
	Black       chessComPlayer `json:"black"`
	PGN         string         `json:"pgn"`
	EndTime     int64          `json:"end_time"`
	TimeControl string         `json:"time_control"`
	TimeClass   string         `json:"time_class"`
	Rated       bool           `json:"rated"`
}

type chessComPlayer struct {
	Username string `json:"username"`
	Result   string `json:"result"`
}

// FetchGames downloads every monthly archive for the user. A failed
// month is logged and skipped so one bad archive does not abort the
// whole import.
func (f *ChessComFetcher) FetchGames(ctx context.Context, username string, progress func(percent int)) ([]Game, error) {
	archivesURL := fmt.Sprintf("%s/%s/games/archives", f.baseURL, username)

	var list chessComArchiveList
	if err := f.getJSON(ctx, archivesURL, &list); err != nil {
		return nil, fmt.Errorf("failed to list archives for %s: %w", username, err)
	}

	if len(list.Archives) == 0 {
		return nil, nil
	}

	var games []Game
	for i, archiveURL := range list.Archives {
		var archive struct {
			Games []chessComGame `json:"games"`
		}
		if err := f.getJSON(ctx, archiveURL, &archive); err != nil {
			if ctx.Err() != nil {
				return games, ctx.Err()
			}
			log.Printf("Skipping chess.com archive %s: %v", archiveURL, err)
			continue
		}

		for _, g := range archive.Games {
			games = append(games, normalizeChessComGame(g))
		}

		if progress != nil {
			progress((i + 1) * 100 / len(list.Archives))
		}
	}

	return games, nil
}

func (f *ChessComFetcher) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func normalizeChessComGame(g chessComGame) Game {
	// chess.com reports the result per side, not as a score string
	var result string
	switch g.White.Result {
	case "win":
		result = "1-0"
	case "checkmated", "resigned", "timeout", "abandoned":
		result = "0-1"
	default:
		result = "1/2-1/2"
	}

	playedAt := time.Now().UTC().Format("2006-01-02T15:04:05")
	if g.EndTime > 0 {
		playedAt = time.Unix(g.EndTime, 0).UTC().Format("2006-01-02T15:04:05")
	}

	timeClass := g.TimeClass
	if timeClass == "" {
		timeClass = ClassifyTimeControl(g.TimeControl)
	}

	return Game{
		Platform:    "chess.com",
		PlayedAt:    playedAt,
		WhitePlayer: orUnknown(g.White.Username),
		BlackPlayer: orUnknown(g.Black.Username),
		Result:      result,
		TimeControl: g.TimeControl,
		TimeClass:   timeClass,
		Rated:       g.Rated,
		PGN:         g.PGN,
	}
}

func orUnknown(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}
