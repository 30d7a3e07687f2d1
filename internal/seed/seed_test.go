package seed

import (
	"context"
	"testing"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedSocialMesh_CountersMatchEdges(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	seeder := NewSeeder(db, Options{SkipBcrypt: true, Seed: 42})
	users, err := seeder.SeedSocialMesh(ctx, 6, 3)
	require.NoError(t, err)
	require.Len(t, users, 6)

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	assert.Equal(t, int64(18), edges)

	var selfEdges int64
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = followee_id").Count(&selfEdges).Error)
	assert.Zero(t, selfEdges)

	for _, u := range users {
		fresh := testutil.Reload(t, db, u.ID)
		var following, followers int64
		require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = ?", u.ID).Count(&following).Error)
		require.NoError(t, db.Model(&models.Follow{}).Where("followee_id = ?", u.ID).Count(&followers).Error)
		assert.Equal(t, following, fresh.FollowingCount, "user %d following", u.ID)
		assert.Equal(t, followers, fresh.FollowersCount, "user %d followers", u.ID)
	}
}

func TestSeedContent_PostsAndStories(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	seeder := NewSeeder(db, Options{SkipBcrypt: true, Seed: 7})
	users, err := seeder.SeedSocialMesh(ctx, 4, 2)
	require.NoError(t, err)
	require.NoError(t, seeder.SeedContent(ctx, users, 2, 1, true))

	var posts, stories, live int64
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Story{}).Count(&stories).Error)
	require.NoError(t, db.Model(&models.Story{}).Where("expires_at > ?", time.Now().UTC()).Count(&live).Error)
	assert.Equal(t, int64(8), posts)
	assert.Equal(t, int64(8), stories)
	assert.Equal(t, int64(4), live)

	var selfViews int64
	require.NoError(t, db.Model(&models.StoryView{}).
		Joins("JOIN stories ON stories.id = story_views.story_id").
		Where("stories.owner_id = story_views.viewer_id").
		Count(&selfViews).Error)
	assert.Zero(t, selfViews)
}

func TestClearAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	seeder := NewSeeder(db, Options{SkipBcrypt: true, Seed: 1})
	require.NoError(t, seeder.ApplyPreset(ctx, "Minimal"))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.Equal(t, int64(5), users)

	require.NoError(t, seeder.ClearAll(ctx))
	for _, m := range []interface{}{&models.User{}, &models.Follow{}, &models.Post{}, &models.Story{}, &models.StoryView{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}
}

func TestApplyPreset_Unknown(t *testing.T) {
	seeder := NewSeeder(testutil.NewSQLiteDB(t), Options{SkipBcrypt: true})
	assert.Error(t, seeder.ApplyPreset(context.Background(), "Nope"))
}

func TestDryRun_WritesNothing(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	seeder := NewSeeder(db, Options{SkipBcrypt: true, DryRun: true, Seed: 3})
	users, err := seeder.SeedSocialMesh(ctx, 3, 1)
	require.NoError(t, err)
	require.NoError(t, seeder.SeedContent(ctx, users, 1, 1, false))
	for _, u := range users {
		assert.NotZero(t, u.ID)
	}

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestFactory_CreateUserHashesPassword(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	f := NewFactory(db, Options{Seed: 9})

	u, err := f.CreateUser(context.Background(), func(u *models.User) { u.Username = "fixed" })
	require.NoError(t, err)
	assert.Equal(t, "fixed", u.Username)
	assert.NotEqual(t, DefaultPassword, u.Password)
	assert.Contains(t, u.Email, "@example.com")
}
