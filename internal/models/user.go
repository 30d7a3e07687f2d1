// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User is an account in the identity store. Follow edges live in the follows
// table; FollowingCount and FollowersCount are kept in step with it inside the
// same transaction.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	ProfilePhoto   string    `json:"profile_photo"`
	FollowingCount int64     `gorm:"not null;default:0" json:"following_count"`
	FollowersCount int64     `gorm:"not null;default:0" json:"followers_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserSummary is the display identity attached to feed entries.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Summary returns the display identity of the user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}
