package services

import (
	"time"
)

// Sort keys accepted by the listing endpoints
const (
	SortByPoints = "points"
	SortByRecent = "recent"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Pagination carries caller-validated listing parameters. Page is 1-based.
type Pagination struct {
	Page            int
	Limit           int
	SortedBy        string
	Order           string
	IncludeChildren bool
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// orderClause maps the sort parameters onto a fixed set of ORDER BY strings.
// Only known values are ever interpolated.
func (p Pagination) orderClause() string {
	column := "created_at"
	if p.SortedBy == SortByPoints {
		column = "points"
	}
	direction := "DESC"
	if p.Order == OrderAsc {
		direction = "ASC"
	}
	return column + " " + direction
}

type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// UpvoteData is the result of a vote toggle: the freshly committed counter
// value and the membership state after the call.
type UpvoteData struct {
	Points    int  `json:"points"`
	IsUpvoted bool `json:"is_upvoted"`
}

type PostData struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Content      string    `json:"content"`
	ContentHTML  string    `json:"content_html"`
	Points       int       `json:"points"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	Author       Author    `json:"author"`
	IsUpvoted    bool      `json:"is_upvoted"`
}

type CommentData struct {
	ID              uint          `json:"id"`
	PostID          uint          `json:"post_id"`
	ParentCommentID *uint         `json:"parent_comment_id"`
	Depth           int           `json:"depth"`
	Content         string        `json:"content"`
	ContentHTML     string        `json:"content_html"`
	Points          int           `json:"points"`
	CommentCount    int           `json:"comment_count"`
	CreatedAt       time.Time     `json:"created_at"`
	Author          Author        `json:"author"`
	IsUpvoted       bool          `json:"is_upvoted"`
	ChildComments   []CommentData `json:"child_comments"`
}
