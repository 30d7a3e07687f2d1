package database

import "snapgram/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.PostLike{},
		&models.PostComment{},
		&models.Story{},
		&models.StoryView{},
		&models.StoryReaction{},
	}
}
