package training

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chesstrainer/internal/board"
	"chesstrainer/internal/core"
	"chesstrainer/internal/progress"
	"chesstrainer/internal/puzzle"
)

func testPuzzle(id string, pv ...string) puzzle.Puzzle {
	p, err := puzzle.Normalize(puzzle.Puzzle{
		ID:                 id,
		FEN:                board.StartingFEN,
		PrincipalVariation: pv,
		Difficulty:         core.DifficultyEasy,
		Type:               core.PuzzleTactical,
		PlayerColor:        core.ColorWhite,
	})
	if err != nil {
		panic(err)
	}
	return p
}

// syncConfig applies scripted replies synchronously and records solves
// into store under key.
func syncConfig(store progress.Store, key core.CollectionKey) Config {
	return Config{
		ReplyDelay: -1,
		OnSolve: func(puzzleID string, difficulty core.Difficulty) error {
			_, err := store.RecordSolve(key, puzzleID, difficulty)
			return err
		},
	}
}

func TestSubmitCorrectMoveSolvesViaReply(t *testing.T) {
	store := progress.NewMemoryStore()
	s := NewSession(testPuzzle("p1", "e2e4", "e7e5"), syncConfig(store, "col"))

	out, err := s.SubmitMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, StatusCorrect, out.Status)
	assert.Equal(t, "e4", out.SAN)

	snap := s.Snapshot()
	assert.True(t, snap.Solved)
	assert.Equal(t, core.StateSolved, snap.State)
	assert.Equal(t, 2, snap.Cursor)

	solved, err := store.IsSolved("col", "p1")
	require.NoError(t, err)
	assert.True(t, solved)

	stats, err := store.Stats("col")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSolved)
	assert.Equal(t, 1, stats.ByDifficulty[core.DifficultyEasy])
}

func TestSubmitIncorrectMoveRevertsBoard(t *testing.T) {
	store := progress.NewMemoryStore()
	s := NewSession(testPuzzle("p1", "e2e4", "e7e5"), syncConfig(store, "col"))

	out, err := s.SubmitMove("d2d4")
	require.NoError(t, err)
	assert.Equal(t, StatusIncorrect, out.Status)
	assert.Equal(t, "d4", out.SAN)

	snap := s.Snapshot()
	assert.Equal(t, board.StartingFEN, snap.FEN)
	assert.Equal(t, []string{"d4"}, snap.Attempts)
	assert.False(t, snap.Solved)
	assert.Equal(t, 0, snap.Cursor)
}

func TestSubmitIllegalMoveRejected(t *testing.T) {
	store := progress.NewMemoryStore()
	s := NewSession(testPuzzle("p1", "e2e4", "e7e5"), syncConfig(store, "col"))

	out, err := s.SubmitMove("e2e5")
	require.NoError(t, err)
	assert.Equal(t, StatusIllegal, out.Status)

	snap := s.Snapshot()
	assert.Equal(t, board.StartingFEN, snap.FEN)
	assert.Empty(t, snap.Attempts, "illegal moves are rejected, not logged")
}

func TestSubmitAfterSolvedErrors(t *testing.T) {
	store := progress.NewMemoryStore()
	s := NewSession(testPuzzle("p1", "e2e4"), syncConfig(store, "col"))

	out, err := s.SubmitMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, out.Status)

	_, err = s.SubmitMove("d2d4")
	assert.ErrorIs(t, err, ErrPuzzleSolved)
}

func TestRecordSolveIdempotentAcrossSessions(t *testing.T) {
	store := progress.NewMemoryStore()
	p := testPuzzle("p1", "e2e4")

	for i := 0; i < 2; i++ {
		s := NewSession(p, syncConfig(store, "col"))
		_, err := s.SubmitMove("e2e4")
		require.NoError(t, err)
	}

	stats, err := store.Stats("col")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSolved)
}

func TestDelayedReplyFires(t *testing.T) {
	store := progress.NewMemoryStore()
	replied := make(chan Reply, 1)
	cfg := syncConfig(store, "col")
	cfg.ReplyDelay = 20 * time.Millisecond
	cfg.OnReply = func(r Reply) { replied <- r }

	s := NewSession(testPuzzle("p1", "e2e4", "e7e5"), cfg)

	out, err := s.SubmitMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, StatusCorrect, out.Status)

	// Cursor already points past the scripted reply, but the board has
	// not moved yet.
	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Cursor)
	assert.Equal(t, core.StateAwaitingOpponentReply, snap.State)
	assert.False(t, snap.Solved)

	select {
	case r := <-replied:
		assert.Equal(t, "e5", r.SAN)
		assert.True(t, r.Solved)
	case <-time.After(time.Second):
		t.Fatal("scripted reply never fired")
	}

	assert.True(t, s.Snapshot().Solved)
}

func TestSubmitBeforeReplyFiresFlushesReply(t *testing.T) {
	store := progress.NewMemoryStore()
	cfg := syncConfig(store, "col")
	cfg.ReplyDelay = time.Hour

	s := NewSession(testPuzzle("p1", "e2e4", "e7e5", "f1c4"), cfg)

	out, err := s.SubmitMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, StatusCorrect, out.Status)

	// The reply timer has not fired; the next submission must still be
	// judged against the post-reply position.
	out, err = s.SubmitMove("f1c4")
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, out.Status)
	assert.Equal(t, "Bc4", out.SAN)
}

func TestCancelInvalidatesPendingReply(t *testing.T) {
	store := progress.NewMemoryStore()
	cfg := syncConfig(store, "col")
	cfg.ReplyDelay = time.Hour

	s := NewSession(testPuzzle("p1", "e2e4", "e7e5"), cfg)
	_, err := s.SubmitMove("e2e4")
	require.NoError(t, err)

	s.Cancel()

	snap := s.Snapshot()
	assert.False(t, snap.Solved, "cancelled reply must never land")
	assert.Equal(t, core.StateAwaitingOpponentReply, snap.State)
}

func TestMalformedScriptedReply(t *testing.T) {
	store := progress.NewMemoryStore()
	// The scripted reply repeats white's move; illegal with black to move.
	s := NewSession(testPuzzle("p1", "e2e4", "e2e4", "d2d4"), syncConfig(store, "col"))

	out, err := s.SubmitMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, StatusCorrect, out.Status)

	snap := s.Snapshot()
	assert.False(t, snap.Solved)
	assert.Contains(t, snap.Diagnostic, "scripted reply")

	solved, err := store.IsSolved("col", "p1")
	require.NoError(t, err)
	assert.False(t, solved)
}

type failingStore struct {
	*progress.MemoryStore
}

func (f *failingStore) RecordSolve(core.CollectionKey, string, core.Difficulty) (progress.Stats, error) {
	return progress.Stats{}, errors.New("disk full")
}

func TestSolveWriteFailureRollsBack(t *testing.T) {
	store := &failingStore{progress.NewMemoryStore()}
	s := NewSession(testPuzzle("p1", "e2e4"), syncConfig(store, "col"))

	_, err := s.SubmitMove("e2e4")
	require.Error(t, err)

	snap := s.Snapshot()
	assert.False(t, snap.Solved)
	assert.Equal(t, board.StartingFEN, snap.FEN)
	assert.Equal(t, 0, snap.Cursor)
	assert.Empty(t, snap.Attempts)
}

func TestPromotionDefaultMatchesScriptedQueen(t *testing.T) {
	store := progress.NewMemoryStore()
	p, err := puzzle.Normalize(puzzle.Puzzle{
		ID:                 "promo",
		FEN:                "8/4P1k1/8/8/8/8/8/4K3 w - - 0 1",
		PrincipalVariation: []string{"e7e8q"},
		Difficulty:         core.DifficultyMedium,
		Type:               core.PuzzleMistake,
		PlayerColor:        core.ColorWhite,
	})
	require.NoError(t, err)

	s := NewSession(p, syncConfig(store, "col"))

	// Bare push without a promotion letter normalizes to the queen.
	out, err := s.SubmitMove("e7e8")
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, out.Status)
}

func TestRevealIsInformationalAndIdempotent(t *testing.T) {
	store := progress.NewMemoryStore()
	s := NewSession(testPuzzle("p1", "e2e4", "e7e5"), syncConfig(store, "col"))

	line := s.Reveal()
	assert.Equal(t, []string{"e2e4", "e7e5"}, line)

	snap := s.Snapshot()
	assert.True(t, snap.Revealed)
	assert.False(t, snap.Solved)
	assert.Equal(t, 0, snap.Cursor)
	assert.Equal(t, board.StartingFEN, snap.FEN)

	s.Reveal()
	assert.True(t, s.Snapshot().Revealed)
}

func TestCheckMove(t *testing.T) {
	p := testPuzzle("p1", "e2e4", "e7e5")

	assert.True(t, CheckMove(p, 0, "e2e4"))
	assert.False(t, CheckMove(p, 0, "d2d4"), "equally strong alternatives are still wrong")
	assert.True(t, CheckMove(p, 1, "e7e5"))
	assert.False(t, CheckMove(p, 2, "e2e4"), "cursor past the line matches nothing")
	assert.False(t, CheckMove(p, -1, "e2e4"))
}
