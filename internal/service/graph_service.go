package service

import (
	"context"
	"errors"
	"log/slog"

	"snapgram/internal/cache"
	"snapgram/internal/models"
	"snapgram/internal/observability"
	"snapgram/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// GraphService maintains the follow graph.
type GraphService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	cache      *cache.Cache
	opts       Options
}

// NewGraphService returns a new GraphService. c may be nil.
func NewGraphService(userRepo repository.UserRepository, followRepo repository.FollowRepository, c *cache.Cache, opts Options) *GraphService {
	return &GraphService{
		userRepo:   userRepo,
		followRepo: followRepo,
		cache:      c,
		opts:       opts,
	}
}

// Follow makes actorID follow targetID.
func (s *GraphService) Follow(ctx context.Context, actorID, targetID uint) error {
	return s.mutate(ctx, "follow", actorID, targetID)
}

// Unfollow removes the edge from actorID to targetID.
func (s *GraphService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	return s.mutate(ctx, "unfollow", actorID, targetID)
}

func (s *GraphService) mutate(ctx context.Context, op string, actorID, targetID uint) (err error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	ctx, end := observability.StartSpan(ctx, "graph."+op,
		attribute.Int64("actor_id", int64(actorID)),
		attribute.Int64("target_id", int64(targetID)),
	)
	defer func() {
		err = tagOp(err, "graph."+op)
		observability.GraphOperations.WithLabelValues(op, resultLabel(err)).Inc()
		end(err)
	}()

	for attempt := 0; ; attempt++ {
		if err := s.checkPreconditions(ctx, op, actorID, targetID); err != nil {
			return err
		}

		err := s.apply(ctx, op, actorID, targetID)
		if err == nil {
			s.cache.InvalidateUsers(ctx, actorID, targetID)
			observability.Logger.InfoContext(ctx, "follow graph updated",
				slog.String("operation", op),
				slog.Uint64("actor_id", uint64(actorID)),
				slog.Uint64("target_id", uint64(targetID)),
			)
			return nil
		}
		if !errors.Is(err, repository.ErrWriteConflict) {
			return err
		}

		if attempt >= s.opts.FollowRetryLimit {
			// The precise precondition error wins over a bare conflict.
			if err := s.checkPreconditions(ctx, op, actorID, targetID); err != nil {
				return err
			}
			return models.NewConflictError("follow graph changed concurrently", err)
		}
		observability.GraphRetries.WithLabelValues(op).Inc()
		observability.Logger.WarnContext(ctx, "follow graph write conflict, retrying",
			slog.String("operation", op),
			slog.Int("attempt", attempt+1),
		)
	}
}

func (s *GraphService) apply(ctx context.Context, op string, actorID, targetID uint) error {
	if op == "follow" {
		return s.followRepo.Follow(ctx, actorID, targetID, s.opts.now())
	}
	return s.followRepo.Unfollow(ctx, actorID, targetID)
}

func (s *GraphService) checkPreconditions(ctx context.Context, op string, actorID, targetID uint) error {
	if _, err := s.userRepo.GetByID(ctx, actorID); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	if actorID == targetID {
		return models.NewSelfFollowError(actorID)
	}

	following, err := s.followRepo.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	switch {
	case op == "follow" && following:
		return models.NewAlreadyFollowingError(actorID, targetID)
	case op == "unfollow" && !following:
		return models.NewNotFollowingError(actorID, targetID)
	}
	return nil
}

// Following returns the set of users userID follows.
func (s *GraphService) Following(ctx context.Context, userID uint) (models.IDSet, error) {
	return s.readSet(ctx, "graph.following", userID, s.followRepo.FollowingIDs)
}

// Followers returns the set of users that follow userID.
func (s *GraphService) Followers(ctx context.Context, userID uint) (models.IDSet, error) {
	return s.readSet(ctx, "graph.followers", userID, s.followRepo.FollowerIDs)
}

func (s *GraphService) readSet(ctx context.Context, op string, userID uint, read func(context.Context, uint) ([]uint, error)) (models.IDSet, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, tagOp(err, op)
	}
	ids, err := read(ctx, userID)
	if err != nil {
		return nil, tagOp(err, op)
	}
	return models.NewIDSet(ids...), nil
}

// IsFollowing reports whether actorID follows targetID.
func (s *GraphService) IsFollowing(ctx context.Context, actorID, targetID uint) (bool, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	ok, err := s.followRepo.IsFollowing(ctx, actorID, targetID)
	return ok, tagOp(err, "graph.is_following")
}
