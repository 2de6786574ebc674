package models

import (
	"time"
)

type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title   string `gorm:"not null" json:"title"`
	URL     string `json:"url"` // Optional, at least one of URL/Content required
	Content string `gorm:"type:text" json:"content"`
	// Points mirrors the number of PostUpvote rows. Mutated only through
	// atomic increment expressions inside the vote transaction.
	Points int `gorm:"not null;default:0" json:"points"`
	// CommentCount counts every comment in the post's tree, any depth.
	CommentCount int       `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}
