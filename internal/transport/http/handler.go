// FILE: internal/transport/http/handler.go
package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chesstrainer/internal/core"
	"chesstrainer/internal/puzzle"
	"chesstrainer/internal/service"
	"chesstrainer/internal/storage"
	"chesstrainer/internal/training"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the service
type HTTPHandler struct {
	svc *service.Service
}

func NewHTTPHandler(svc *service.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func NewFiberApp(svc *service.Service, devMode bool) *fiber.App {
	// Create handler
	h := NewHTTPHandler(svc)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	// API v1 routes
	api := app.Group("/api/v1")

	// Auth routes with specific rate limiting
	auth := api.Group("/auth")

	// Register: 5 req/min per IP
	auth.Post("/register", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: "5 registrations per minute allowed",
			})
		},
	}), h.RegisterHandler)

	// Login: 10 req/min per IP
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: "10 login attempts per minute allowed",
			})
		},
	}), h.LoginHandler)

	// Create token validator closure
	validateToken := TokenValidator(svc.ValidateToken)

	// Current user (requires auth)
	auth.Get("/me", AuthRequired(validateToken), h.GetCurrentUserHandler)

	// Logout
	auth.Post("/logout", AuthRequired(validateToken), h.LogoutHandler)

	// API routes with standard rate limiting
	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	// Content-Type validation for POST and PUT requests
	api.Use(contentTypeValidator)

	// Middleware validation for sanitization
	api.Use(validationMiddleware)

	// Collections and archive import
	api.Post("/collections", h.CreateCollection)
	api.Get("/collections", h.ListCollections)
	api.Get("/collections/:collectionId", h.GetCollection)
	api.Put("/collections/:collectionId", h.RenameCollection)
	api.Delete("/collections/:collectionId", AuthRequired(validateToken), h.DeleteCollection)
	api.Post("/collections/:collectionId/import", h.ImportGames)
	api.Post("/collections/:collectionId/generate", h.GeneratePuzzles)
	api.Post("/collections/:collectionId/progress/reset", AuthRequired(validateToken), h.ResetProgress)

	// Background task polling
	api.Get("/tasks/:taskId", h.GetTask)

	// Archived games
	api.Get("/games", h.ListGames)
	api.Get("/games/:gameId", h.GetGame)

	// Analysis
	api.Post("/analyze", h.AnalyzePosition)
	api.Post("/explorer", h.QueryExplorer)

	// Training sessions
	api.Post("/training", OptionalAuth(validateToken), h.StartTraining) // Optional auth for session ownership
	api.Get("/training/:sessionId", h.GetTraining)
	api.Post("/training/:sessionId/moves", h.SubmitTrainingMove)
	api.Post("/training/:sessionId/reveal", h.RevealTraining)
	api.Post("/training/:sessionId/next", h.NextPuzzle)
	api.Post("/training/:sessionId/previous", h.PreviousPuzzle)
	api.Get("/training/:sessionId/stats", h.TrainingStats)
	api.Delete("/training/:sessionId", OptionalAuth(validateToken), h.EndTraining)

	return app
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		// Map HTTP status to error codes
		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// serviceError maps service-layer failures to HTTP responses
func serviceError(c *fiber.Ctx, err error) error {
	var allSolved *puzzle.AllSolvedError
	var malformed *training.MalformedPuzzleError

	switch {
	case errors.Is(err, service.ErrCollectionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "collection not found",
			Code:  core.ErrCollectionNotFound,
		})
	case errors.Is(err, service.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "training session not found",
			Code:  core.ErrSessionNotFound,
		})
	case errors.Is(err, training.ErrPuzzleSolved):
		return c.Status(fiber.StatusConflict).JSON(core.ErrorResponse{
			Error: "puzzle already solved",
			Code:  core.ErrPuzzleSolved,
		})
	case errors.As(err, &allSolved):
		return c.Status(fiber.StatusConflict).JSON(core.ErrorResponse{
			Error:   "all puzzles already solved",
			Code:    core.ErrAllSolved,
			Details: fmt.Sprintf("%d puzzles filtered out", allSolved.Count),
		})
	case errors.As(err, &malformed):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(core.ErrorResponse{
			Error:   "malformed puzzle",
			Code:    core.ErrMalformedPuzzle,
			Details: err.Error(),
		})
	case errors.Is(err, service.ErrEngineUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(core.ErrorResponse{
			Error: "analysis engine unavailable",
			Code:  core.ErrEngineUnavailable,
		})
	case errors.Is(err, service.ErrStorageDisabled),
		errors.Is(err, service.ErrGeneratorNotWired):
		return c.Status(fiber.StatusServiceUnavailable).JSON(core.ErrorResponse{
			Error: err.Error(),
			Code:  core.ErrInternalError,
		})
	}

	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "request failed",
		Code:    core.ErrInvalidRequest,
		Details: err.Error(),
	})
}

// validatedBody retrieves the typed body stored by validationMiddleware.
// On failure the error response is already written and ok is false.
func validatedBody[T any](c *fiber.Ctx) (*T, bool) {
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		_ = c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		})
		return nil, false
	}

	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		_ = c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrInternalError,
		})
		return nil, false
	}
	return body, true
}

// Health check endpoint with storage and engine status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
		"engine":  h.svc.GetEngineHealth(),
	})
}

// CreateCollection creates a named game collection
func (h *HTTPHandler) CreateCollection(c *fiber.Ctx) error {
	req, ok := validatedBody[CreateCollectionRequest](c)
	if !ok {
		return nil
	}

	record, err := h.svc.CreateCollection(req.Name, req.Platform, req.Username)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return c.Status(fiber.StatusConflict).JSON(core.ErrorResponse{
				Error:   "collection already exists",
				Code:    core.ErrInvalidRequest,
				Details: "collection name already taken",
			})
		}
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

// ListCollections returns all collections with game counts
func (h *HTTPHandler) ListCollections(c *fiber.Ctx) error {
	collections, err := h.svc.ListCollections()
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"collections": collections,
		"count":       len(collections),
	})
}

// GetCollection retrieves one collection
func (h *HTTPHandler) GetCollection(c *fiber.Ctx) error {
	collectionID := c.Params("collectionId")
	if !isValidUUID(collectionID) {
		return invalidIDResponse(c, "collection")
	}

	record, err := h.svc.GetCollection(collectionID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(record)
}

// RenameCollection changes a collection's display name
func (h *HTTPHandler) RenameCollection(c *fiber.Ctx) error {
	collectionID := c.Params("collectionId")
	if !isValidUUID(collectionID) {
		return invalidIDResponse(c, "collection")
	}

	req, ok := validatedBody[RenameCollectionRequest](c)
	if !ok {
		return nil
	}

	record, err := h.svc.RenameCollection(collectionID, req.Name)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return c.Status(fiber.StatusConflict).JSON(core.ErrorResponse{
				Error:   "collection already exists",
				Code:    core.ErrInvalidRequest,
				Details: "collection name already taken",
			})
		}
		return serviceError(c, err)
	}

	return c.JSON(record)
}

// DeleteCollection removes a collection and its games
func (h *HTTPHandler) DeleteCollection(c *fiber.Ctx) error {
	collectionID := c.Params("collectionId")
	if !isValidUUID(collectionID) {
		return invalidIDResponse(c, "collection")
	}

	if err := h.svc.DeleteCollection(collectionID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ImportGames starts a background archive import for a collection
func (h *HTTPHandler) ImportGames(c *fiber.Ctx) error {
	collectionID := c.Params("collectionId")
	if !isValidUUID(collectionID) {
		return invalidIDResponse(c, "collection")
	}

	req, ok := validatedBody[ImportGamesRequest](c)
	if !ok {
		return nil
	}

	taskID, err := h.svc.StartImport(service.ImportRequest{
		CollectionID:     collectionID,
		ChessComUsername: req.ChessComUsername,
		LichessUsername:  req.LichessUsername,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(TaskResponse{
		TaskID:  taskID,
		Message: "import started",
	})
}

// GeneratePuzzles starts a background puzzle generation run
func (h *HTTPHandler) GeneratePuzzles(c *fiber.Ctx) error {
	collectionID := c.Params("collectionId")
	if !isValidUUID(collectionID) {
		return invalidIDResponse(c, "collection")
	}

	req, ok := validatedBody[GeneratePuzzlesRequest](c)
	if !ok {
		return nil
	}

	difficulties := make([]core.Difficulty, 0, len(req.Difficulties))
	for _, d := range req.Difficulties {
		difficulties = append(difficulties, core.Difficulty(d))
	}

	taskID, err := h.svc.StartGeneration(service.GenerationRequest{
		Collection:      core.CollectionKey(collectionID),
		SubjectUsername: req.SubjectUsername,
		MinPly:          req.MinPly,
		MaxPly:          req.MaxPly,
		Difficulties:    difficulties,
		MaxPuzzles:      req.MaxPuzzles,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(TaskResponse{
		TaskID:  taskID,
		Message: "generation started",
	})
}

// GetTask reports progress of a background task
func (h *HTTPHandler) GetTask(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	if !isValidUUID(taskID) {
		return invalidIDResponse(c, "task")
	}

	status, ok := h.svc.TaskStatus(taskID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "task not found",
			Code:  core.ErrTaskNotFound,
		})
	}

	return c.JSON(status)
}

// ListGames returns archived games matching query filters
func (h *HTTPHandler) ListGames(c *fiber.Ctx) error {
	filter := storage.GameFilter{
		Collection: c.Query("collection"),
		FromDate:   c.Query("fromDate"),
		ToDate:     c.Query("toDate"),
		Color:      c.Query("color"),
		Username:   c.Query("username"),
	}

	games, err := h.svc.ListGames(filter)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"games": games,
		"count": len(games),
	})
}

// GetGame returns one archived game with its move list and opening
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidIDResponse(c, "game")
	}

	detail, err := h.svc.GetGameDetail(gameID)
	if err != nil {
		return serviceError(c, err)
	}
	if detail == nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "game not found",
			Code:  core.ErrGameNotFound,
		})
	}

	return c.JSON(detail)
}

// AnalyzePosition evaluates one position with the engine
func (h *HTTPHandler) AnalyzePosition(c *fiber.Ctx) error {
	req, ok := validatedBody[AnalyzePositionRequest](c)
	if !ok {
		return nil
	}

	analysis, err := h.svc.AnalyzePosition(req.FEN, req.Depth)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(analysis)
}

// QueryExplorer returns moves played from a position in the archive
func (h *HTTPHandler) QueryExplorer(c *fiber.Ctx) error {
	req, ok := validatedBody[ExplorerQueryRequest](c)
	if !ok {
		return nil
	}

	color, err := core.ParseColor(req.Color)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid color",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	continuations, err := h.svc.FindContinuations(service.ContinuationsRequest{
		Collection:  req.Collection,
		FEN:         req.FEN,
		Color:       color,
		FromDate:    req.FromDate,
		ToDate:      req.ToDate,
		TimeClasses: req.TimeClasses,
		Usernames:   req.Usernames,
		WithEvals:   req.WithEvals,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"continuations": continuations,
		"count":         len(continuations),
	})
}

// ResetProgress clears solve history for a collection
func (h *HTTPHandler) ResetProgress(c *fiber.Ctx) error {
	collectionID := c.Params("collectionId")
	if !isValidUUID(collectionID) {
		return invalidIDResponse(c, "collection")
	}

	if err := h.svc.ResetProgress(core.CollectionKey(collectionID)); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "progress reset"})
}

// invalidIDResponse rejects a malformed path parameter
func invalidIDResponse(c *fiber.Ctx, kind string) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   fmt.Sprintf("invalid %s ID format", kind),
		Code:    core.ErrInvalidRequest,
		Details: fmt.Sprintf("%s ID must be a valid UUID", kind),
	})
}
