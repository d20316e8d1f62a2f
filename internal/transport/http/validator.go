// FILE: internal/transport/http/validator.go
package http

import (
	"fmt"
	"reflect"
	"strings"

	"chesstrainer/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

// validationMiddleware parses and validates request bodies by route,
// storing the typed body in Locals for the handler
func validationMiddleware(c *fiber.Ctx) error {
	// Skip validation for GET, DELETE, OPTIONS
	method := c.Method()
	if method == fiber.MethodGet || method == fiber.MethodDelete || method == fiber.MethodOptions {
		return c.Next()
	}

	// Determine request type based on path
	path := c.Path()
	var requestType interface{}

	switch {
	case strings.HasSuffix(path, "/collections") && method == fiber.MethodPost:
		requestType = &CreateCollectionRequest{}
	case strings.Contains(path, "/collections/") && method == fiber.MethodPut:
		requestType = &RenameCollectionRequest{}
	case strings.HasSuffix(path, "/import") && method == fiber.MethodPost:
		requestType = &ImportGamesRequest{}
	case strings.HasSuffix(path, "/analyze") && method == fiber.MethodPost:
		requestType = &AnalyzePositionRequest{}
	case strings.HasSuffix(path, "/explorer") && method == fiber.MethodPost:
		requestType = &ExplorerQueryRequest{}
	case strings.HasSuffix(path, "/generate") && method == fiber.MethodPost:
		requestType = &GeneratePuzzlesRequest{}
	case strings.HasSuffix(path, "/training") && method == fiber.MethodPost:
		requestType = &StartTrainingRequest{}
	case strings.HasSuffix(path, "/moves") && method == fiber.MethodPost:
		requestType = &TrainingMoveRequest{}
	default:
		return c.Next() // No validation for unknown endpoints
	}

	// Parse body
	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	// Validate
	if errs := validate.Struct(requestType); errs != nil {
		var details strings.Builder
		for _, err := range errs.(validator.ValidationErrors) {
			if details.Len() > 0 {
				details.WriteString("; ")
			}
			switch err.Tag() {
			case "required":
				details.WriteString(fmt.Sprintf("%s is required", err.Field()))
			case "oneof":
				details.WriteString(fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param()))
			case "min":
				if err.Type().Kind() == reflect.String {
					details.WriteString(fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param()))
				} else {
					details.WriteString(fmt.Sprintf("%s must be at least %s", err.Field(), err.Param()))
				}
			case "max":
				if err.Type().Kind() == reflect.String {
					details.WriteString(fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param()))
				} else {
					details.WriteString(fmt.Sprintf("%s must be at most %s", err.Field(), err.Param()))
				}
			case "omitempty": // Skip, a control tag that doesn't error
				continue
			case "dive": // Skip, control tag
				continue
			default:
				details.WriteString(fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag()))
			}
		}

		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: details.String(),
		})
	}

	// Store validated body for handler use
	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
