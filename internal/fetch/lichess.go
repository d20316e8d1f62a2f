// FILE: internal/fetch/lichess.go
package fetch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const (
	lichessBaseURL  = "https://lichess.org/api"
	lichessMaxGames = 500
)

// LichessFetcher fetches games from the lichess.org public API, which
// streams them as newline-delimited JSON.
type LichessFetcher struct {
	client  *http.Client
	baseURL string
}

func NewLichessFetcher() *LichessFetcher {
	// No client-level timeout: the NDJSON stream can legitimately run
	// longer than a single request budget. Cancellation comes from ctx.
	return &LichessFetcher{client: &http.Client{}, baseURL: lichessBaseURL}
}

func (f *LichessFetcher) Platform() string { return "lichess" }

type lichessGame struct {
	Players struct {
		White lichessPlayer `json:"white"`
		Black lichessPlayer `json:"black"`
	} `json:"players"`
	Winner    string `json:"winner"`
	Speed     string `json:"speed"`
	PGN       string `json:"pgn"`
	CreatedAt int64  `json:"createdAt"` // milliseconds
	Rated     bool   `json:"rated"`
	Clock     *struct {
		Initial   int `json:"initial"`
		Increment int `json:"increment"`
	} `json:"clock"`
}

type lichessPlayer struct {
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

func (f *LichessFetcher) FetchGames(ctx context.Context, username string, progress func(percent int)) ([]Game, error) {
	url := fmt.Sprintf("%s/games/user/%s?max=%d&pgnInJson=true", f.baseURL, username, lichessMaxGames)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lichess games for %s: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from lichess", resp.StatusCode)
	}

	var games []Game
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024) // PGNs can be large

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var g lichessGame
		if err := json.Unmarshal(line, &g); err != nil {
			log.Printf("Skipping malformed lichess game line: %v", err)
			continue
		}

		games = append(games, normalizeLichessGame(g))

		// Total is unknown until the stream ends, so cap the estimate
		if progress != nil && len(games)%10 == 0 {
			pct := len(games) * 100 / lichessMaxGames
			if pct > 90 {
				pct = 90
			}
			progress(pct)
		}
	}

	if err := scanner.Err(); err != nil {
		return games, fmt.Errorf("lichess stream interrupted: %w", err)
	}

	if progress != nil {
		progress(100)
	}

	return games, nil
}

// lichessSpeedClass maps the lichess speed tag onto the shared
// bullet/blitz/rapid/classical/correspondence buckets. Returns ""
// when the tag is missing or unknown.
func lichessSpeedClass(speed string) string {
	switch speed {
	case "ultraBullet", "bullet":
		return "bullet"
	case "blitz", "rapid", "classical", "correspondence":
		return speed
	default:
		return ""
	}
}

func normalizeLichessGame(g lichessGame) Game {
	var result string
	switch g.Winner {
	case "white":
		result = "1-0"
	case "black":
		result = "0-1"
	default:
		result = "1/2-1/2"
	}

	playedAt := time.Now().UTC().Format("2006-01-02T15:04:05")
	if g.CreatedAt > 0 {
		playedAt = time.UnixMilli(g.CreatedAt).UTC().Format("2006-01-02T15:04:05")
	}

	timeControl := "correspondence"
	if g.Clock != nil {
		timeControl = fmt.Sprintf("%d+%d", g.Clock.Initial, g.Clock.Increment)
	}

	// The platform's own classification wins over the clock-derived one
	timeClass := lichessSpeedClass(g.Speed)
	if timeClass == "" {
		timeClass = ClassifyTimeControl(timeControl)
	}

	return Game{
		Platform:    "lichess",
		PlayedAt:    playedAt,
		WhitePlayer: orUnknown(g.Players.White.User.Name),
		BlackPlayer: orUnknown(g.Players.Black.User.Name),
		Result:      result,
		TimeControl: timeControl,
		TimeClass:   timeClass,
		Rated:       g.Rated,
		PGN:         g.PGN,
	}
}
