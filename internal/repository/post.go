package repository

import (
	"context"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"gorm.io/gorm"
)

// PostRepository reads and writes posts and their likes and comments.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// LatestByOwners returns at most one post per owner: the newest by
	// (created_at, id). Owners with no posts contribute nothing.
	LatestByOwners(ctx context.Context, ownerIDs []uint) ([]models.Post, error)
	Like(ctx context.Context, postID, userID uint, at time.Time) error
	Unlike(ctx context.Context, postID, userID uint) error
	AddComment(ctx context.Context, comment *models.PostComment) error
	IncrementShare(ctx context.Context, postID uint) error
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func orderedComments(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	if err := r.db.WithContext(ctx).Omit("Likes", "Comments").Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return storeError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "user_id": post.UserID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Likes").
		Preload("Comments", orderedComments).
		First(&post, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) LatestByOwners(ctx context.Context, ownerIDs []uint) ([]models.Post, error) {
	if len(ownerIDs) == 0 {
		return []models.Post{}, nil
	}
	defer observability.TrackQuery("latest_by_owner", "posts")()

	db := r.db.WithContext(ctx)
	ranked := db.Model(&models.Post{}).
		Select("id, ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY created_at DESC, id DESC) AS rn").
		Where("user_id IN ?", ownerIDs)
	latest := db.Table("(?) AS ranked", ranked).Select("id").Where("rn = 1")

	var posts []models.Post
	err := db.
		Preload("Likes").
		Preload("Comments", orderedComments).
		Where("id IN (?)", latest).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, storeError(err)
	}
	return posts, nil
}

// Like records userID's like. Liking twice is a no-op.
func (r *postRepository) Like(ctx context.Context, postID, userID uint, at time.Time) error {
	defer observability.TrackQuery("like", "post_likes")()
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO post_likes (post_id, user_id, created_at)
		 SELECT id, ?, ? FROM posts WHERE id = ?
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		userID, at, postID,
	)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "like")
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return r.ensureExists(ctx, postID)
	}
	return nil
}

// Unlike removes userID's like. Unliking a post that was not liked is a no-op.
func (r *postRepository) Unlike(ctx context.Context, postID, userID uint) error {
	defer observability.TrackQuery("unlike", "post_likes")()
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "unlike")
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return r.ensureExists(ctx, postID)
	}
	return nil
}

func (r *postRepository) AddComment(ctx context.Context, comment *models.PostComment) error {
	defer observability.TrackQuery("create", "post_comments")()
	if err := r.ensureExists(ctx, comment.PostID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "comment")
		return storeError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"comment_id": comment.ID, "post_id": comment.PostID})
	return nil
}

func (r *postRepository) IncrementShare(ctx context.Context, postID uint) error {
	defer observability.TrackQuery("share", "posts")()
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("share_count", gorm.Expr("share_count + ?", 1))
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "share")
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

func (r *postRepository) ensureExists(ctx context.Context, postID uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return storeError(err)
	}
	if count == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}
