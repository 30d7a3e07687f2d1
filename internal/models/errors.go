package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeSelfFollow       = "SELF_FOLLOW"
	CodeAlreadyFollowing = "ALREADY_FOLLOWING"
	CodeNotFollowing     = "NOT_FOLLOWING"
	CodeExpired          = "EXPIRED"
	CodeUnavailable      = "UNAVAILABLE"
	CodeConflict         = "CONFLICT"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Op      string `json:"op,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error.
// Op names the operation that failed (e.g. "graph.follow") so callers can log it.
type AppError struct {
	Code    string
	Message string
	Op      string
	Err     error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the operation with backoff.
func (e *AppError) Retryable() bool {
	return e.Code == CodeConflict || e.Code == CodeUnavailable
}

// WithOp returns a copy of the error tagged with the given operation name.
func (e *AppError) WithOp(op string) *AppError {
	cp := *e
	cp.Op = op
	return &cp
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// CodeOf returns the AppError code for err, or CodeInternal for foreign errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewSelfFollowError(userID uint) *AppError {
	return &AppError{
		Code:    CodeSelfFollow,
		Message: fmt.Sprintf("user %d cannot follow itself", userID),
	}
}

func NewAlreadyFollowingError(actorID, targetID uint) *AppError {
	return &AppError{
		Code:    CodeAlreadyFollowing,
		Message: fmt.Sprintf("user %d already follows user %d", actorID, targetID),
	}
}

func NewNotFollowingError(actorID, targetID uint) *AppError {
	return &AppError{
		Code:    CodeNotFollowing,
		Message: fmt.Sprintf("user %d does not follow user %d", actorID, targetID),
	}
}

func NewExpiredError(storyID uint) *AppError {
	return &AppError{
		Code:    CodeExpired,
		Message: fmt.Sprintf("story %d has expired", storyID),
	}
}

func NewUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeUnavailable,
		Message: "Store unavailable",
		Err:     err,
	}
}

func NewConflictError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Err:     err,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusFor maps an error to the HTTP status the API responds with.
func StatusFor(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeSelfFollow, CodeValidation:
		return fiber.StatusBadRequest
	case CodeAlreadyFollowing, CodeNotFollowing, CodeConflict:
		return fiber.StatusConflict
	case CodeExpired:
		return fiber.StatusGone
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
			Op:    appErr.Op,
		}
		// internal causes stay in the logs
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
