package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_LatestByOwners(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	b := testutil.CreateUser(t, db, "b")
	c := testutil.CreateUser(t, db, "c")
	d := testutil.CreateUser(t, db, "d")

	testutil.CreatePost(t, db, b.ID, "p1", base.Add(1*time.Hour))
	p2 := testutil.CreatePost(t, db, b.ID, "p2", base.Add(2*time.Hour))
	p3 := testutil.CreatePost(t, db, c.ID, "p3", base.Add(3*time.Hour))

	posts, err := repo.LatestByOwners(ctx, []uint{b.ID, c.ID, d.ID})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, p3.ID, posts[0].ID)
	assert.Equal(t, p2.ID, posts[1].ID)

	posts, err = repo.LatestByOwners(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostRepository_LatestByOwnersTieBreaksOnID(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	b := testutil.CreateUser(t, db, "b")
	testutil.CreatePost(t, db, b.ID, "first", at)
	second := testutil.CreatePost(t, db, b.ID, "second", at)

	posts, err := repo.LatestByOwners(context.Background(), []uint{b.ID})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, second.ID, posts[0].ID)
}

func TestPostRepository_Interactions(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	owner := testutil.CreateUser(t, db, "owner")
	fan := testutil.CreateUser(t, db, "fan")
	post := testutil.CreatePost(t, db, owner.ID, "img", now)

	require.NoError(t, repo.Like(ctx, post.ID, fan.ID, now))
	require.NoError(t, repo.Like(ctx, post.ID, fan.ID, now))
	require.NoError(t, repo.AddComment(ctx, &models.PostComment{PostID: post.ID, UserID: fan.ID, Text: "first", CreatedAt: now}))
	require.NoError(t, repo.AddComment(ctx, &models.PostComment{PostID: post.ID, UserID: owner.ID, Text: "second", CreatedAt: now.Add(time.Second)}))
	require.NoError(t, repo.IncrementShare(ctx, post.ID))
	require.NoError(t, repo.IncrementShare(ctx, post.ID))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{fan.ID}, got.LikeUserIDs())
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "first", got.Comments[0].Text)
	assert.Equal(t, "second", got.Comments[1].Text)
	assert.Equal(t, int64(2), got.ShareCount)

	require.NoError(t, repo.Unlike(ctx, post.ID, fan.ID))
	require.NoError(t, repo.Unlike(ctx, post.ID, fan.ID))
	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LikeUserIDs())

	assert.True(t, models.HasCode(repo.Like(ctx, 404, fan.ID, now), models.CodeNotFound))
	assert.True(t, models.HasCode(repo.IncrementShare(ctx, 404), models.CodeNotFound))
	assert.True(t, models.HasCode(repo.AddComment(ctx, &models.PostComment{PostID: 404, UserID: fan.ID, Text: "x"}), models.CodeNotFound))
}

func TestPostRepository_IncrementShareSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "share_count"=share_count + $1 WHERE id = $2`)).
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.IncrementShare(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
