// FILE: internal/explorer/explorer_test.go
package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chesstrainer/internal/core"
	"chesstrainer/internal/storage"
)

// Position after 1. e4 e5, white to move
const openGameFEN = "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"

func archivedGame(white, black, result, timeClass, pgn string) storage.GameRecord {
	return storage.GameRecord{
		WhitePlayer: white,
		BlackPlayer: black,
		Result:      result,
		TimeClass:   timeClass,
		PGN:         pgn,
	}
}

func TestFindContinuations(t *testing.T) {
	games := []storage.GameRecord{
		archivedGame("alice", "carol", "1-0", "blitz", "1. e4 e5 2. Nf3 Nc6 1-0"),
		archivedGame("alice", "dan", "0-1", "blitz", "1. e4 e5 2. Nf3 Nf6 0-1"),
		archivedGame("alice", "erin", "1/2-1/2", "rapid", "1. e4 e5 2. Bc4 Nf6 1/2-1/2"),
		// Different opening, never reaches the target position
		archivedGame("alice", "frank", "1-0", "blitz", "1. d4 d5 2. c4 1-0"),
		// Alice played black here, so it must not count for white
		archivedGame("carol", "alice", "1-0", "blitz", "1. e4 e5 2. Nc3 Nf6 1-0"),
	}

	filter := Filter{Usernames: []string{"Alice"}}
	conts, err := FindContinuations(games, openGameFEN, core.ColorWhite, filter)
	require.NoError(t, err)
	require.Len(t, conts, 2)

	// Most played first
	nf3 := conts[0]
	assert.Equal(t, "Nf3", nf3.Move)
	assert.Equal(t, 2, nf3.Count)
	assert.Equal(t, 1, nf3.Wins)
	assert.Equal(t, 1, nf3.Losses)
	assert.Equal(t, 50.0, nf3.WinPct)
	assert.Equal(t, 50.0, nf3.LossPct)

	bc4 := conts[1]
	assert.Equal(t, "Bc4", bc4.Move)
	assert.Equal(t, 1, bc4.Count)
	assert.Equal(t, 1, bc4.Draws)
	assert.Equal(t, 100.0, bc4.DrawPct)
}

func TestFindContinuationsTimeClassFilter(t *testing.T) {
	games := []storage.GameRecord{
		archivedGame("alice", "carol", "1-0", "blitz", "1. e4 e5 2. Nf3 Nc6 1-0"),
		archivedGame("alice", "erin", "1/2-1/2", "rapid", "1. e4 e5 2. Bc4 Nf6 1/2-1/2"),
	}

	filter := Filter{Usernames: []string{"alice"}, TimeClasses: []string{"rapid"}}
	conts, err := FindContinuations(games, openGameFEN, core.ColorWhite, filter)
	require.NoError(t, err)
	require.Len(t, conts, 1)
	assert.Equal(t, "Bc4", conts[0].Move)
}

func TestFindContinuationsBlackPerspective(t *testing.T) {
	// Position after 1. e4, black to move
	fen := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"

	games := []storage.GameRecord{
		archivedGame("carol", "alice", "1-0", "blitz", "1. e4 c5 2. Nf3 1-0"),
		archivedGame("dan", "alice", "0-1", "blitz", "1. e4 c5 2. Nc3 0-1"),
	}

	conts, err := FindContinuations(games, fen, core.ColorBlack, Filter{Usernames: []string{"alice"}})
	require.NoError(t, err)
	require.Len(t, conts, 1)

	c5 := conts[0]
	assert.Equal(t, "c5", c5.Move)
	assert.Equal(t, 2, c5.Count)
	assert.Equal(t, 1, c5.Wins)   // 0-1 with alice as black
	assert.Equal(t, 1, c5.Losses) // 1-0 with alice as black
}

func TestFindContinuationsInvalidFEN(t *testing.T) {
	_, err := FindContinuations(nil, "garbage", core.ColorWhite, Filter{})
	assert.Error(t, err)
}

func TestOutcomeFor(t *testing.T) {
	assert.Equal(t, 1, outcomeFor("1-0", core.ColorWhite))
	assert.Equal(t, -1, outcomeFor("1-0", core.ColorBlack))
	assert.Equal(t, 1, outcomeFor("0-1", core.ColorBlack))
	assert.Equal(t, -1, outcomeFor("0-1", core.ColorWhite))
	assert.Equal(t, 0, outcomeFor("1/2-1/2", core.ColorWhite))
}
