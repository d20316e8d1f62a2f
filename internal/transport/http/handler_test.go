// FILE: internal/transport/http/handler_test.go
package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chesstrainer/internal/board"
	"chesstrainer/internal/core"
	"chesstrainer/internal/fetch"
	"chesstrainer/internal/puzzle"
	"chesstrainer/internal/service"
	"chesstrainer/internal/storage"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trainer.db")
	store, err := storage.NewStore(path, false)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())
	t.Cleanup(func() { store.Close() })

	svc := service.New(service.Config{
		Store:     store,
		Fetchers:  []fetch.Fetcher{},
		JWTSecret: []byte("test-secret-0123456789abcdef0123"),
	})
	return NewFiberApp(svc, true)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	payload := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), "body: %s", raw)
	}
	return resp, payload
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["storage"])
	assert.Equal(t, "disabled", body["engine"])
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	// Weak password rejected before any storage write
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "magnus",
		"password": "letters_only",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "Magnus",
		"email":    "magnus@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "magnus", body["username"])

	// Duplicate username is a conflict regardless of case
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "MAGNUS",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"identifier": "magnus@example.com",
		"password":   "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loginToken, _ := body["token"].(string)
	require.NotEmpty(t, loginToken)

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/auth/me", loginToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "magnus", body["username"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"identifier": "magnus",
		"password":   "wrong-pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", loginToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCollectionEndpoints(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/collections", "", map[string]any{
		"name":     "my games",
		"platform": "lichess",
		"username": "drnykterstein",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	collectionID, _ := body["collectionId"].(string)
	require.NotEmpty(t, collectionID)

	// Unsupported platform fails request validation
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/collections", "", map[string]any{
		"name":     "bad",
		"platform": "fics",
		"username": "someone",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, core.ErrInvalidRequest, body["code"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/collections", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/collections/"+collectionID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPut, "/api/v1/collections/"+collectionID, "", map[string]any{
		"name": "renamed games",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "renamed games", body["name"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/collections/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Delete requires authentication
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/collections/"+collectionID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTaskNotFound(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/tasks/2f4cfc43-11f7-4b77-a4b0-f4b05cfd4a28", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, core.ErrTaskNotFound, body["code"])
}

func TestContentTypeRejected(t *testing.T) {
	app := newTestApp(t)

	req, err := http.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader([]byte("fen=x")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestAnalyzeWithoutEngine(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/analyze", "", map[string]any{
		"fen": board.StartingFEN,
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, core.ErrEngineUnavailable, body["code"])
}

func TestTrainingOverHTTP(t *testing.T) {
	app := newTestApp(t)

	start := map[string]any{
		"collection": "practice",
		"puzzles": []puzzle.Puzzle{{
			ID:          "p1",
			FEN:         board.StartingFEN,
			BestMove:    "e2e4",
			Difficulty:  core.DifficultyEasy,
			Type:        core.PuzzleTactical,
			PlayerColor: core.ColorWhite,
		}},
	}

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/training", "", start)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID, _ := body["sessionId"].(string)
	require.NotEmpty(t, sessionID)

	// Solution fields never reach the client
	pz, ok := body["puzzle"].(map[string]any)
	require.True(t, ok)
	assert.Empty(t, pz["bestMove"])
	assert.Nil(t, pz["principalVariation"])

	base := "/api/v1/training/" + sessionID

	resp, body = doJSON(t, app, http.MethodPost, base+"/moves", "", map[string]any{"move": "a2a3"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	outcome, _ := body["outcome"].(map[string]any)
	assert.Equal(t, "incorrect", outcome["result"])

	resp, body = doJSON(t, app, http.MethodPost, base+"/moves", "", map[string]any{"move": "e2e4"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	outcome, _ = body["outcome"].(map[string]any)
	assert.Equal(t, "solved", outcome["result"])

	// Resolving a finished puzzle is a conflict
	resp, body = doJSON(t, app, http.MethodPost, base+"/moves", "", map[string]any{"move": "d2d4"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, core.ErrPuzzleSolved, body["code"])

	resp, body = doJSON(t, app, http.MethodGet, base+"/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["totalSolved"])

	resp, _ = doJSON(t, app, http.MethodDelete, base, "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, core.ErrSessionNotFound, body["code"])
}

func TestOwnedSessionDeletion(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "owner",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	start := map[string]any{
		"collection": "practice",
		"puzzles": []puzzle.Puzzle{{
			ID:          "p1",
			FEN:         board.StartingFEN,
			BestMove:    "e2e4",
			Difficulty:  core.DifficultyEasy,
			Type:        core.PuzzleTactical,
			PlayerColor: core.ColorWhite,
		}},
	}

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/training", token, start)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID, _ := body["sessionId"].(string)

	// Anonymous caller cannot close an owned session
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/training/"+sessionID, "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/training/"+sessionID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
