package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_StampsClockAndTrimsCaption(t *testing.T) {
	clock := newFakeClock(epoch)
	postRepo := noopPostRepo()
	var stored *models.Post
	postRepo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 7
		stored = p
		return nil
	}
	svc := NewPostService(postRepo, noopUserRepo(), Options{Now: clock.Now})

	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, ImageRef: "img/1.jpg", Caption: "  hi  "})
	require.NoError(t, err)
	assert.Equal(t, uint(7), post.ID)
	assert.Equal(t, "hi", stored.Caption)
	assert.True(t, stored.CreatedAt.Equal(epoch))
	assert.NotNil(t, post.Comments)
}

func TestCreatePost_Validation(t *testing.T) {
	svc := NewPostService(noopPostRepo(), noopUserRepo(), Options{})

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, ImageRef: "  "})
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestCreatePost_UnknownOwner(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}
	postRepo := noopPostRepo()
	postRepo.createFn = func(context.Context, *models.Post) error {
		t.Fatal("create must not be called for an unknown owner")
		return nil
	}
	svc := NewPostService(postRepo, userRepo, Options{})

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 9, ImageRef: "img.jpg"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "post.create", appErr.Op)
}

func TestAddComment_Validation(t *testing.T) {
	svc := NewPostService(noopPostRepo(), noopUserRepo(), Options{})

	_, err := svc.AddComment(context.Background(), 1, 2, "   ")
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = svc.AddComment(context.Background(), 1, 2, strings.Repeat("x", MaxCommentLength+1))
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestLike_PassesClockTime(t *testing.T) {
	clock := newFakeClock(epoch.Add(time.Hour))
	postRepo := noopPostRepo()
	var likedAt time.Time
	postRepo.likeFn = func(_ context.Context, _, _ uint, at time.Time) error {
		likedAt = at
		return nil
	}
	svc := NewPostService(postRepo, noopUserRepo(), Options{Now: clock.Now})

	require.NoError(t, svc.Like(context.Background(), 1, 2))
	assert.True(t, likedAt.Equal(epoch.Add(time.Hour)))
}

func TestPostInteractions_SQLite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, fan := f.register(t, "owner"), f.register(t, "fan")

	post, err := f.posts.CreatePost(ctx, CreatePostInput{UserID: owner.ID, ImageRef: "img/a.jpg", Caption: "first"})
	require.NoError(t, err)

	require.NoError(t, f.posts.Like(ctx, post.ID, fan.ID))
	require.NoError(t, f.posts.Like(ctx, post.ID, fan.ID))
	_, err = f.posts.AddComment(ctx, post.ID, fan.ID, "nice")
	require.NoError(t, err)
	require.NoError(t, f.posts.Share(ctx, post.ID))

	stored, err := repository.NewPostRepository(f.db).GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{fan.ID}, stored.LikeUserIDs())
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, "nice", stored.Comments[0].Text)
	assert.Equal(t, int64(1), stored.ShareCount)

	require.NoError(t, f.posts.Unlike(ctx, post.ID, fan.ID))
	stored, err = repository.NewPostRepository(f.db).GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Likes)
}

func TestPostInteractions_MissingPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fan := f.register(t, "fan")

	assert.True(t, models.HasCode(f.posts.Like(ctx, 404, fan.ID), models.CodeNotFound))
	assert.True(t, models.HasCode(f.posts.Share(ctx, 404), models.CodeNotFound))
	_, err := f.posts.AddComment(ctx, 404, fan.ID, "hello")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
