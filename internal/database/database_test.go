package database

import (
	"testing"

	"snapgram/internal/config"
	"snapgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLiteMigrates(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBPath: ":memory:", Env: "test"}

	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	for _, table := range []string{"users", "follows", "posts", "post_likes", "post_comments", "stories", "story_views", "story_reactions"} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Post{}, "idx_posts_user_created"))
	assert.True(t, db.Migrator().HasIndex(&models.Story{}, "idx_stories_owner_expires"))
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestPersistentModelsIncludesGraphAndStories(t *testing.T) {
	var hasFollow, hasStoryView bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.Follow:
			hasFollow = true
		case *models.StoryView:
			hasStoryView = true
		}
	}
	assert.True(t, hasFollow, "PersistentModels should include Follow")
	assert.True(t, hasStoryView, "PersistentModels should include StoryView")
}
