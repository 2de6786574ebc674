package models

import (
	"time"
)

type Comment struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	// PostID is the root post of the tree; fixed at creation and always equal
	// to the parent's PostID for nested replies.
	PostID uint `gorm:"not null;index" json:"post_id"`
	Post   Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	// Nullable for top-level comments
	ParentCommentID *uint    `gorm:"index" json:"parent_comment_id"`
	ParentComment   *Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	// Depth is 0 for top-level comments, parent.Depth+1 for replies.
	// Never recomputed after insert.
	Depth   int    `gorm:"not null;default:0" json:"depth"`
	Content string `gorm:"type:text;not null" json:"content"`
	Points  int    `gorm:"not null;default:0" json:"points"`
	// CommentCount counts direct children only, not the whole subtree.
	CommentCount int       `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}
