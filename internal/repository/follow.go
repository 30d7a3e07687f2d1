package repository

import (
	"context"
	"errors"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository stores the follow graph. Every mutation writes the edge row
// and both users' counters in one transaction.
type FollowRepository interface {
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	// Follow inserts the edge. It returns NOT_FOUND if either user is missing
	// and ErrWriteConflict if the edge already exists.
	Follow(ctx context.Context, followerID, followeeID uint, at time.Time) error
	// Unfollow removes the edge. It returns NOT_FOUND if either user is missing
	// and ErrWriteConflict if the edge does not exist.
	Unfollow(ctx context.Context, followerID, followeeID uint) error
}

type followRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, log: observability.NewRepoLogger("follows")}
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, storeError(err)
	}
	return count > 0, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	defer observability.TrackQuery("list_following", "follows")()
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("followee_id").
		Pluck("followee_id", &ids).Error; err != nil {
		return nil, storeError(err)
	}
	return ids, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	defer observability.TrackQuery("list_followers", "follows")()
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Order("follower_id").
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, storeError(err)
	}
	return ids, nil
}

func (r *followRepository) Follow(ctx context.Context, followerID, followeeID uint, at time.Time) error {
	defer observability.TrackQuery("follow", "follows")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUsers(tx, followerID, followeeID); err != nil {
			return err
		}

		// ON CONFLICT makes a racing duplicate show up as zero rows instead of
		// aborting the transaction.
		res := tx.Exec(
			`INSERT INTO follows (follower_id, followee_id, created_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT (follower_id, followee_id) DO NOTHING`,
			followerID, followeeID, at,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrWriteConflict
		}

		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", followeeID).
			UpdateColumn("followers_count", gorm.Expr("followers_count + ?", 1)).Error
	})
	if err != nil {
		if errors.Is(err, ErrWriteConflict) || models.HasCode(err, models.CodeNotFound) {
			return err
		}
		r.log.LogError(ctx, err, "follow")
		return storeError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"follower_id": followerID, "followee_id": followeeID})
	return nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	defer observability.TrackQuery("unfollow", "follows")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUsers(tx, followerID, followeeID); err != nil {
			return err
		}

		res := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrWriteConflict
		}

		if err := tx.Model(&models.User{}).Where("id = ? AND following_count > 0", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count - ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ? AND followers_count > 0", followeeID).
			UpdateColumn("followers_count", gorm.Expr("followers_count - ?", 1)).Error
	})
	if err != nil {
		if errors.Is(err, ErrWriteConflict) || models.HasCode(err, models.CodeNotFound) {
			return err
		}
		r.log.LogError(ctx, err, "unfollow")
		return storeError(err)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"follower_id": followerID, "followee_id": followeeID})
	return nil
}

// lockUsers takes row locks on both users in ascending id order and fails
// with NOT_FOUND if either is missing.
func lockUsers(tx *gorm.DB, a, b uint) error {
	var ids []uint
	if err := tx.Model(&models.User{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", []uint{a, b}).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	found := models.NewIDSet(ids...)
	for _, id := range []uint{a, b} {
		if !found.Has(id) {
			return models.NewNotFoundError("User", id)
		}
	}
	return nil
}
