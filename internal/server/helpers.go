package server

import (
	"errors"
	"fmt"

	"snapgram/internal/middleware"
	"snapgram/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errResponseWritten signals that a helper already wrote the error response.
var errResponseWritten = errors.New("response already written")

// parseID parses a positive integer route param. On failure it writes a 400
// response and returns errResponseWritten; callers should return nil.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// principal returns the authenticated user id set by the auth middleware.
func principal(c *fiber.Ctx) uint {
	id, _ := middleware.UserID(c)
	return id
}

// respond writes err with the status its code maps to.
func respond(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// bodyParser parses the JSON body into dest, checks its validate tags and
// writes a 400 on failure.
func bodyParser(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	if err := validate.Struct(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(validationMessage(err)))
		return errResponseWritten
	}
	return nil
}

// validationMessage reports the first failing field in client terms.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid request body"
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return "Invalid email address"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
