package models

import (
	"time"
)

// StoryTTL is how long a story stays live after it is published.
const StoryTTL = 24 * time.Hour

// Story is a short-lived upload. ExpiresAt is fixed at creation and never
// recomputed; liveness is always derived from it against the read time.
type Story struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OwnerID       uint      `gorm:"not null;index:idx_stories_owner_expires,priority:1" json:"owner_id"`
	OwnerUsername string    `gorm:"not null" json:"owner_username"`
	FileRef       string    `gorm:"not null" json:"file_path"`
	IsPublic      bool      `gorm:"not null" json:"is_public"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `gorm:"not null;index:idx_stories_owner_expires,priority:2" json:"expires"`

	Viewers   []StoryView     `gorm:"foreignKey:StoryID" json:"viewers"`
	Reactions []StoryReaction `gorm:"foreignKey:StoryID" json:"reactions"`
}

// LiveAt reports whether the story is still live at t.
func (s *Story) LiveAt(t time.Time) bool {
	return t.Before(s.ExpiresAt)
}

// StoryView is a viewer event. Repeated views by one viewer are kept as
// separate events.
type StoryView struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	StoryID  uint      `gorm:"not null;index" json:"story_id"`
	ViewerID uint      `gorm:"not null" json:"user_id"`
	SeenAt   time.Time `gorm:"not null" json:"seen_at"`
}

// StoryReaction is a reaction event. A reactor may react many times.
type StoryReaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoryID   uint      `gorm:"not null;index" json:"story_id"`
	ReactorID uint      `gorm:"not null" json:"user_id"`
	Kind      string    `gorm:"type:varchar(32);not null" json:"reaction_type"`
	ReactedAt time.Time `gorm:"not null" json:"reacted_at"`
}
