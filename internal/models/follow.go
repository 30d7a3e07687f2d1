package models

import "time"

// Follow is a directed edge of the follow graph. A single row backs both
// projections: FolloweeID is in the follower's following set and FollowerID is
// in the followee's followers set.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FolloweeID uint      `gorm:"primaryKey;autoIncrement:false;index:idx_follows_followee" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
