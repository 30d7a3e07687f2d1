// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"snapgram/internal/database"
	"snapgram/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a migrated in-memory database. The pool is pinned to one
// connection so every query sees the same database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts a user named name with a derived email.
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{
		Username: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hash",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post owned by userID at the given time.
func CreatePost(t *testing.T, db *gorm.DB, userID uint, image string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: userID, ImageRef: image, CreatedAt: at}
	require.NoError(t, db.Omit("Likes", "Comments").Create(p).Error)
	return p
}

// CreateStory inserts a story for owner created at the given time.
func CreateStory(t *testing.T, db *gorm.DB, owner *models.User, at time.Time) *models.Story {
	t.Helper()
	s := &models.Story{
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		FileRef:       "stories/" + owner.Username + ".jpg",
		IsPublic:      true,
		CreatedAt:     at,
		ExpiresAt:     at.Add(models.StoryTTL),
	}
	require.NoError(t, db.Omit("Viewers", "Reactions").Create(s).Error)
	return s
}

// Reload fetches a fresh copy of the user row.
func Reload(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return &u
}
