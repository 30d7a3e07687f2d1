package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"snapgram/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrWriteConflict marks a write that lost a race with a concurrent writer.
// It is safe to retry after re-reading state.
var ErrWriteConflict = errors.New("concurrent write detected")

// storeError classifies a low-level store error. Timeouts, cancellations and
// broken connections become UNAVAILABLE; everything else is INTERNAL.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isUnavailableError(err) {
		return models.NewUnavailableError(err)
	}
	return models.NewInternalError(err)
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND error for resource/id
// and classifies anything else with storeError.
func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return storeError(err)
}

func isUnavailableError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
