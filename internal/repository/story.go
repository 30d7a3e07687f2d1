package repository

import (
	"context"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"gorm.io/gorm"
)

// StoryRepository stores stories and their append-only view and reaction
// events. Liveness is always evaluated against the time passed in.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id uint) (*models.Story, error)
	ActiveByOwner(ctx context.Context, ownerID uint, now time.Time) ([]models.Story, error)
	// AppendView inserts a view event if the story exists and is live at
	// seenAt. It reports whether a row was written.
	AppendView(ctx context.Context, storyID, viewerID uint, seenAt time.Time) (bool, error)
	// AppendReaction inserts a reaction event under the same condition as
	// AppendView.
	AppendReaction(ctx context.Context, storyID, reactorID uint, kind string, reactedAt time.Time) (bool, error)
	// DeleteExpired removes stories with expires_at <= cutoff and their events.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type storyRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db, log: observability.NewRepoLogger("stories")}
}

func withEvents(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Viewers", func(db *gorm.DB) *gorm.DB { return db.Order("seen_at ASC, id ASC") }).
		Preload("Reactions", func(db *gorm.DB) *gorm.DB { return db.Order("reacted_at ASC, id ASC") })
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	defer observability.TrackQuery("create", "stories")()
	if err := r.db.WithContext(ctx).Omit("Viewers", "Reactions").Create(story).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return storeError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"story_id": story.ID, "owner_id": story.OwnerID})
	return nil
}

func (r *storyRepository) GetByID(ctx context.Context, id uint) (*models.Story, error) {
	var story models.Story
	if err := withEvents(r.db.WithContext(ctx)).First(&story, id).Error; err != nil {
		return nil, notFoundOr(err, "Story", id)
	}
	return &story, nil
}

func (r *storyRepository) ActiveByOwner(ctx context.Context, ownerID uint, now time.Time) ([]models.Story, error) {
	defer observability.TrackQuery("active_by_owner", "stories")()
	var stories []models.Story
	err := withEvents(r.db.WithContext(ctx)).
		Where("owner_id = ? AND expires_at > ?", ownerID, now).
		Order("created_at DESC, id DESC").
		Find(&stories).Error
	if err != nil {
		return nil, storeError(err)
	}
	return stories, nil
}

// The liveness check and the insert run as one statement, so an append can
// never land on a story that expired or was reaped in between.
func (r *storyRepository) AppendView(ctx context.Context, storyID, viewerID uint, seenAt time.Time) (bool, error) {
	defer observability.TrackQuery("append", "story_views")()
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO story_views (story_id, viewer_id, seen_at)
		 SELECT id, ?, ? FROM stories WHERE id = ? AND expires_at > ?`,
		viewerID, seenAt, storyID, seenAt,
	)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "append_view")
		return false, storeError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *storyRepository) AppendReaction(ctx context.Context, storyID, reactorID uint, kind string, reactedAt time.Time) (bool, error) {
	defer observability.TrackQuery("append", "story_reactions")()
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO story_reactions (story_id, reactor_id, kind, reacted_at)
		 SELECT id, ?, ?, ? FROM stories WHERE id = ? AND expires_at > ?`,
		reactorID, kind, reactedAt, storyID, reactedAt,
	)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "append_reaction")
		return false, storeError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *storyRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	defer observability.TrackQuery("delete_expired", "stories")()
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&models.Story{}).Select("id").Where("expires_at <= ?", cutoff)
		if err := tx.Where("story_id IN (?)", expired).Delete(&models.StoryView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id IN (?)", expired).Delete(&models.StoryReaction{}).Error; err != nil {
			return err
		}
		res := tx.Where("expires_at <= ?", cutoff).Delete(&models.Story{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete_expired")
		return 0, storeError(err)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"cutoff": cutoff, "deleted": deleted})
	return deleted, nil
}
