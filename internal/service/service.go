// Package service contains the follow graph, feed and story business logic.
package service

import (
	"context"
	"errors"
	"time"

	"snapgram/internal/config"
	"snapgram/internal/models"
)

// Options carries the runtime knobs shared by every service.
type Options struct {
	// StoreTimeout bounds each operation. Zero disables the bound.
	StoreTimeout time.Duration
	// FollowRetryLimit is how many times a follow mutation is retried after
	// a write conflict before surfacing CONFLICT.
	FollowRetryLimit int
	// Now is the time source. Nil means time.Now in UTC.
	Now func() time.Time
}

// OptionsFromConfig builds service options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		StoreTimeout:     cfg.StoreTimeout,
		FollowRetryLimit: cfg.FollowRetryLimit,
	}
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

func (o Options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.StoreTimeout)
}

// tagOp stamps op on err so callers can log which operation failed. Context
// errors that escaped the store are reported as UNAVAILABLE.
func tagOp(err error, op string) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.WithOp(op)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewUnavailableError(err).WithOp(op)
	}
	return models.NewInternalError(err).WithOp(op)
}

// resultLabel is the metrics label for an operation outcome.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return models.CodeOf(err)
}
