// FILE: internal/transport/http/training.go
package http

import (
	"time"

	"chesstrainer/internal/core"

	"github.com/gofiber/fiber/v2"
)

// StartTraining opens a training session over a puzzle set. The set
// comes from the request body, or from the collection's last generated
// batch when the body carries none.
func (h *HTTPHandler) StartTraining(c *fiber.Ctx) error {
	req, ok := validatedBody[StartTrainingRequest](c)
	if !ok {
		return nil
	}

	// Anonymous sessions are allowed; authenticated ones are owned
	userID, _ := c.Locals("userID").(string)

	replyDelay := time.Duration(req.ReplyDelayMs) * time.Millisecond

	view, err := h.svc.StartTraining(userID, core.CollectionKey(req.Collection), req.Puzzles, replyDelay)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetTraining returns the current state of a training session
func (h *HTTPHandler) GetTraining(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if !isValidUUID(sessionID) {
		return invalidIDResponse(c, "session")
	}

	view, err := h.svc.GetTraining(sessionID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(view)
}

// SubmitTrainingMove judges one player move
func (h *HTTPHandler) SubmitTrainingMove(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if !isValidUUID(sessionID) {
		return invalidIDResponse(c, "session")
	}

	req, ok := validatedBody[TrainingMoveRequest](c)
	if !ok {
		return nil
	}

	outcome, view, err := h.svc.SubmitTrainingMove(sessionID, req.Move)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"outcome": outcome,
		"session": view,
	})
}

// RevealTraining returns the remaining solution of the current puzzle
func (h *HTTPHandler) RevealTraining(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if !isValidUUID(sessionID) {
		return invalidIDResponse(c, "session")
	}

	solution, view, err := h.svc.RevealTraining(sessionID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"solution": solution,
		"session":  view,
	})
}

// NextPuzzle advances the session to the next puzzle
func (h *HTTPHandler) NextPuzzle(c *fiber.Ctx) error {
	return h.advance(c, true)
}

// PreviousPuzzle moves the session back one puzzle
func (h *HTTPHandler) PreviousPuzzle(c *fiber.Ctx) error {
	return h.advance(c, false)
}

func (h *HTTPHandler) advance(c *fiber.Ctx, forward bool) error {
	sessionID := c.Params("sessionId")
	if !isValidUUID(sessionID) {
		return invalidIDResponse(c, "session")
	}

	view, err := h.svc.AdvanceTraining(sessionID, forward)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(view)
}

// TrainingStats returns progress stats for the session's collection
func (h *HTTPHandler) TrainingStats(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if !isValidUUID(sessionID) {
		return invalidIDResponse(c, "session")
	}

	stats, err := h.svc.TrainingStats(sessionID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(stats)
}

// EndTraining closes a session. Owned sessions can only be closed by
// their owner; anonymous sessions by anyone holding the id.
func (h *HTTPHandler) EndTraining(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if !isValidUUID(sessionID) {
		return invalidIDResponse(c, "session")
	}

	owner, err := h.svc.SessionOwner(sessionID)
	if err != nil {
		return serviceError(c, err)
	}
	if owner != "" {
		userID, _ := c.Locals("userID").(string)
		if userID != owner {
			return c.Status(fiber.StatusForbidden).JSON(core.ErrorResponse{
				Error: "session belongs to another user",
				Code:  core.ErrUnauthorized,
			})
		}
	}

	if err := h.svc.EndTraining(sessionID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
