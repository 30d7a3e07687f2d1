package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"
	"snapgram/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// MaxReactionKindLength bounds the free-form reaction label.
const MaxReactionKindLength = 32

// StoryService manages the 24h story lifecycle. Expiry is evaluated against
// the injected clock on every call; nothing is flagged or deleted on expiry.
type StoryService struct {
	storyRepo repository.StoryRepository
	userRepo  repository.UserRepository
	opts      Options
}

// PublishStoryInput is the payload for PublishStory.
type PublishStoryInput struct {
	OwnerID  uint
	FileRef  string
	IsPublic bool
}

// NewStoryService returns a new StoryService.
func NewStoryService(storyRepo repository.StoryRepository, userRepo repository.UserRepository, opts Options) *StoryService {
	return &StoryService{
		storyRepo: storyRepo,
		userRepo:  userRepo,
		opts:      opts,
	}
}

// PublishStory creates a story that expires StoryTTL after now.
func (s *StoryService) PublishStory(ctx context.Context, in PublishStoryInput) (story *models.Story, err error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	ctx, end := observability.StartSpan(ctx, "story.publish", attribute.Int64("owner_id", int64(in.OwnerID)))
	defer func() {
		err = tagOp(err, "story.publish")
		observability.StoryEvents.WithLabelValues("publish", resultLabel(err)).Inc()
		end(err)
	}()

	if strings.TrimSpace(in.FileRef) == "" {
		return nil, models.NewValidationError("File reference is required")
	}
	owner, err := s.userRepo.GetByID(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	story = &models.Story{
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		FileRef:       in.FileRef,
		IsPublic:      in.IsPublic,
		CreatedAt:     now,
		ExpiresAt:     now.Add(models.StoryTTL),
		Viewers:       []models.StoryView{},
		Reactions:     []models.StoryReaction{},
	}
	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// RecordView appends a view event. Repeated views by one viewer are kept.
func (s *StoryService) RecordView(ctx context.Context, storyID, viewerID uint) (err error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	ctx, end := observability.StartSpan(ctx, "story.view",
		attribute.Int64("story_id", int64(storyID)),
		attribute.Int64("viewer_id", int64(viewerID)),
	)
	defer func() {
		err = tagOp(err, "story.view")
		observability.StoryEvents.WithLabelValues("view", resultLabel(err)).Inc()
		end(err)
	}()

	now := s.opts.now()
	ok, err := s.storyRepo.AppendView(ctx, storyID, viewerID, now)
	if err != nil {
		return err
	}
	if !ok {
		return s.rejectAppend(ctx, storyID, now)
	}
	return nil
}

// RecordReaction appends a reaction event of the given kind.
func (s *StoryService) RecordReaction(ctx context.Context, storyID, reactorID uint, kind string) (err error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	ctx, end := observability.StartSpan(ctx, "story.react",
		attribute.Int64("story_id", int64(storyID)),
		attribute.Int64("reactor_id", int64(reactorID)),
		attribute.String("kind", kind),
	)
	defer func() {
		err = tagOp(err, "story.react")
		observability.StoryEvents.WithLabelValues("reaction", resultLabel(err)).Inc()
		end(err)
	}()

	kind = strings.TrimSpace(kind)
	if kind == "" || len(kind) > MaxReactionKindLength {
		return models.NewValidationError("Reaction type must be 1-32 characters")
	}

	now := s.opts.now()
	ok, err := s.storyRepo.AppendReaction(ctx, storyID, reactorID, kind, now)
	if err != nil {
		return err
	}
	if !ok {
		return s.rejectAppend(ctx, storyID, now)
	}
	return nil
}

// rejectAppend explains why a conditional append wrote nothing.
func (s *StoryService) rejectAppend(ctx context.Context, storyID uint, now time.Time) error {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if !story.LiveAt(now) {
		return models.NewExpiredError(storyID)
	}
	return models.NewConflictError("story changed during append", nil)
}

// GetStory returns a live story with its events.
func (s *StoryService) GetStory(ctx context.Context, storyID uint) (*models.Story, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, tagOp(err, "story.get")
	}
	if !story.LiveAt(s.opts.now()) {
		return nil, tagOp(models.NewExpiredError(storyID), "story.get")
	}
	return story, nil
}

// ActiveStoriesFor returns ownerID's live stories, newest first.
func (s *StoryService) ActiveStoriesFor(ctx context.Context, ownerID uint) ([]models.Story, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	ctx, end := observability.StartSpan(ctx, "story.active", attribute.Int64("owner_id", int64(ownerID)))

	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		err = tagOp(err, "story.active")
		end(err)
		return nil, err
	}
	stories, err := s.storyRepo.ActiveByOwner(ctx, ownerID, s.opts.now())
	err = tagOp(err, "story.active")
	end(err)
	if err != nil {
		return nil, err
	}
	if stories == nil {
		stories = []models.Story{}
	}
	return stories, nil
}

// Reap deletes stories that expired at or before cutoff, along with their
// events, and returns how many stories were removed. Nothing in the request
// path calls it.
func (s *StoryService) Reap(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	ctx, end := observability.StartSpan(ctx, "story.reap")

	n, err := s.storyRepo.DeleteExpired(ctx, cutoff)
	err = tagOp(err, "story.reap")
	end(err)
	if err != nil {
		return 0, err
	}
	observability.Logger.InfoContext(ctx, "expired stories reaped",
		slog.Time("cutoff", cutoff),
		slog.Int64("deleted", n),
	)
	return n, nil
}
