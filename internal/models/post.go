package models

import (
	"time"
)

// Post is a published image post. It is read-only to the feed aggregation path.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index:idx_posts_user_created,priority:1" json:"user_id"`
	ImageRef   string    `gorm:"not null" json:"image"`
	Caption    string    `gorm:"not null;default:''" json:"caption"`
	ShareCount int64     `gorm:"not null;default:0" json:"share_count"`
	CreatedAt  time.Time `gorm:"index:idx_posts_user_created,priority:2" json:"created_at"`

	Likes    []PostLike    `gorm:"foreignKey:PostID" json:"-"`
	Comments []PostComment `gorm:"foreignKey:PostID" json:"comments"`
}

// PostLike records that a user liked a post. The pair is unique.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostComment is one entry of a post's ordered comment list.
type PostComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeUserIDs returns the ids of users who liked the post.
func (p *Post) LikeUserIDs() []uint {
	ids := make([]uint, 0, len(p.Likes))
	for _, l := range p.Likes {
		ids = append(ids, l.UserID)
	}
	return ids
}

// FeedEntry is a post selected for a viewer's home feed, annotated with its
// owner's display identity.
type FeedEntry struct {
	PostID     uint          `json:"id"`
	ImageRef   string        `json:"image"`
	Caption    string        `json:"caption"`
	CreatedAt  time.Time     `json:"timestamp"`
	Likes      []uint        `json:"likes"`
	Comments   []PostComment `json:"comments"`
	ShareCount int64         `json:"share_count"`
	Owner      UserSummary   `json:"owner"`
}

// NewFeedEntry builds a feed entry from a post and its owner.
func NewFeedEntry(p *Post, owner UserSummary) FeedEntry {
	comments := p.Comments
	if comments == nil {
		comments = []PostComment{}
	}
	return FeedEntry{
		PostID:     p.ID,
		ImageRef:   p.ImageRef,
		Caption:    p.Caption,
		CreatedAt:  p.CreatedAt,
		Likes:      p.LikeUserIDs(),
		Comments:   comments,
		ShareCount: p.ShareCount,
		Owner:      owner,
	}
}
