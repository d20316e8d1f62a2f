// FILE: internal/explorer/explorer.go

// Package explorer answers "what did I play here and how did it go"
// questions against the archived game collections.
package explorer

import (
	"math"
	"sort"
	"strings"

	"github.com/corentings/chess/v2"

	"chesstrainer/internal/core"
	"chesstrainer/internal/fetch"
	"chesstrainer/internal/storage"
)

// Continuation aggregates the outcomes of one move played from a
// position, from the perspective of the querying player.
type Continuation struct {
	Move    string  `json:"move"` // SAN
	Count   int     `json:"count"`
	Wins    int     `json:"wins"`
	Draws   int     `json:"draws"`
	Losses  int     `json:"losses"`
	WinPct  float64 `json:"winPct"`
	DrawPct float64 `json:"drawPct"`
	LossPct float64 `json:"lossPct"`
	Eval    string  `json:"eval,omitempty"`
	EvalCP  int     `json:"evalCp"`
}

// Filter narrows which archived games count toward the statistics
type Filter struct {
	TimeClasses []string // bullet/blitz/rapid/classical/correspondence
	Usernames   []string // accounts considered "the player"
}

// FindContinuations replays each game looking for the given position
// and tallies what was played next. Only games where one of the filter
// usernames held the given color are counted; results are scored from
// that player's perspective. Position matching ignores move counters
// and castling rights, matching piece placement and side to move only.
func FindContinuations(games []storage.GameRecord, fen string, color core.Color, filter Filter) ([]Continuation, error) {
	targetPos, err := positionFields(fen)
	if err != nil {
		return nil, err
	}

	tally := make(map[string]*Continuation)

	for _, game := range games {
		if !matchesFilter(game, color, filter) {
			continue
		}

		san, found := continuationAfter(game.PGN, targetPos)
		if !found {
			continue
		}

		c, ok := tally[san]
		if !ok {
			c = &Continuation{Move: san}
			tally[san] = c
		}
		c.Count++

		switch outcomeFor(game.Result, color) {
		case 1:
			c.Wins++
		case -1:
			c.Losses++
		default:
			c.Draws++
		}
	}

	result := make([]Continuation, 0, len(tally))
	for _, c := range tally {
		c.WinPct = pct(c.Wins, c.Count)
		c.DrawPct = pct(c.Draws, c.Count)
		c.LossPct = pct(c.Losses, c.Count)
		result = append(result, *c)
	}

	// Most played first, alphabetical for equal counts
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Move < result[j].Move
	})

	return result, nil
}

// continuationAfter replays a PGN and returns the SAN of the move
// played from the first occurrence of the target position.
func continuationAfter(pgn string, targetPos string) (string, bool) {
	opt, err := chess.PGN(strings.NewReader(pgn))
	if err != nil {
		return "", false
	}
	game := chess.NewGame(opt)

	positions := game.Positions()
	moves := game.Moves()

	for i, move := range moves {
		fields, err := positionFields(positions[i].String())
		if err != nil {
			continue
		}
		if fields == targetPos {
			return chess.AlgebraicNotation{}.Encode(positions[i], move), true
		}
	}

	return "", false
}

func matchesFilter(game storage.GameRecord, color core.Color, filter Filter) bool {
	if len(filter.Usernames) > 0 {
		player := game.WhitePlayer
		if color == core.ColorBlack {
			player = game.BlackPlayer
		}

		found := false
		for _, u := range filter.Usernames {
			if strings.EqualFold(u, player) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(filter.TimeClasses) > 0 {
		class := game.TimeClass
		if class == "" {
			class = fetch.ClassifyTimeControl(game.TimeControl)
		}

		found := false
		for _, tc := range filter.TimeClasses {
			if strings.EqualFold(tc, class) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// outcomeFor returns 1 for a win, -1 for a loss, 0 for a draw from
// the given color's perspective.
func outcomeFor(result string, color core.Color) int {
	switch result {
	case "1-0":
		if color == core.ColorWhite {
			return 1
		}
		return -1
	case "0-1":
		if color == core.ColorBlack {
			return 1
		}
		return -1
	default:
		return 0
	}
}

// ApplySAN plays a SAN move on a FEN and returns the resulting FEN,
// used to evaluate candidate continuations.
func ApplySAN(fen, san string) (string, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return "", &InvalidPositionError{FEN: fen}
	}
	game := chess.NewGame(opt)

	move, err := chess.AlgebraicNotation{}.Decode(game.Position(), san)
	if err != nil {
		return "", err
	}
	if err := game.Move(move, nil); err != nil {
		return "", err
	}

	return game.FEN(), nil
}

// positionFields reduces a FEN to piece placement and side to move
func positionFields(fen string) (string, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return "", &InvalidPositionError{FEN: fen}
	}
	return fields[0] + " " + fields[1], nil
}

type InvalidPositionError struct {
	FEN string
}

func (e *InvalidPositionError) Error() string {
	return "invalid position: " + e.FEN
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
