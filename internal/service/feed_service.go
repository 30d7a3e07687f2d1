package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"
	"snapgram/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FeedService builds a viewer's home feed: the newest post of every user the
// viewer follows, newest first. It never writes.
type FeedService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
	opts       Options
}

// NewFeedService returns a new FeedService.
func NewFeedService(userRepo repository.UserRepository, followRepo repository.FollowRepository, postRepo repository.PostRepository, opts Options) *FeedService {
	return &FeedService{
		userRepo:   userRepo,
		followRepo: followRepo,
		postRepo:   postRepo,
		opts:       opts,
	}
}

// HomeFeed returns at most one entry per followed owner, ordered by post
// creation time descending with ties broken by post id descending.
func (s *FeedService) HomeFeed(ctx context.Context, viewerID uint) (entries []models.FeedEntry, err error) {
	start := time.Now()
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	ctx, end := observability.StartSpan(ctx, "feed.home", attribute.Int64("viewer_id", int64(viewerID)))
	defer func() {
		err = tagOp(err, "feed.home")
		if err == nil {
			observability.FeedLatency.Observe(time.Since(start).Seconds())
			observability.FeedEntries.Observe(float64(len(entries)))
		}
		end(err)
	}()

	if _, err := s.userRepo.GetByID(ctx, viewerID); err != nil {
		return nil, err
	}

	owners, err := s.followRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return []models.FeedEntry{}, nil
	}

	posts, err := s.postRepo.LatestByOwners(ctx, owners)
	if err != nil {
		return nil, err
	}
	// Abandoned requests stop here; nothing has been written.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})

	users, err := s.userRepo.GetByIDs(ctx, ownerIDs(posts))
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.UserSummary, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].Summary()
	}

	entries = make([]models.FeedEntry, 0, len(posts))
	for i := range posts {
		owner, ok := byID[posts[i].UserID]
		if !ok {
			observability.Logger.DebugContext(ctx, "feed entry dropped, owner missing",
				slog.Uint64("post_id", uint64(posts[i].ID)),
				slog.Uint64("owner_id", uint64(posts[i].UserID)),
			)
			continue
		}
		entries = append(entries, models.NewFeedEntry(&posts[i], owner))
	}
	return entries, nil
}

func ownerIDs(posts []models.Post) []uint {
	set := models.NewIDSet()
	for i := range posts {
		set.Add(posts[i].UserID)
	}
	return set.Slice()
}
