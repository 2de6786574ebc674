package services

import (
	"errors"
	"net/url"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/ibqn/hacker-news/internal/apperr"
	"github.com/ibqn/hacker-news/internal/db"
	"github.com/ibqn/hacker-news/internal/models"
	"github.com/ibqn/hacker-news/internal/utils"
)

// PostFilter narrows post listings to a submitting user and/or a source URL.
type PostFilter struct {
	Author uint
	Site   string
}

func (f PostFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Author != 0 {
		q = q.Where("user_id = ?", f.Author)
	}
	if f.Site != "" {
		q = q.Where("url = ?", f.Site)
	}
	return q
}

// CreatePost validates and inserts a submission. At least one of URL and
// content is required; validation failures never reach storage.
func CreatePost(user *models.User, title, postURL, content string) (*PostData, error) {
	if utf8.RuneCountInString(title) < 3 {
		return nil, apperr.Validation("title", "Title should have at least 3 characters.")
	}
	if postURL == "" && content == "" {
		return nil, apperr.Validation("url", "Either URL or Content must be provided.")
	}
	if postURL != "" {
		parsed, err := url.Parse(postURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, apperr.Validation("url", "URL must be valid.")
		}
	}

	post := models.Post{
		UserID:  user.ID,
		Title:   title,
		URL:     postURL,
		Content: content,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		return nil, err
	}

	data := PostData{
		ID:           post.ID,
		Title:        post.Title,
		URL:          post.URL,
		Content:      post.Content,
		ContentHTML:  utils.RenderMarkdown(post.Content),
		Points:       post.Points,
		CommentCount: post.CommentCount,
		CreatedAt:    post.CreatedAt,
		Author:       Author{ID: user.ID, Username: user.Username},
		IsUpvoted:    false,
	}
	return &data, nil
}

// GetPost fetches one post with author enrichment and the viewer's upvote
// membership.
func GetPost(postID, viewerID uint) (*PostData, error) {
	var post models.Post
	if err := db.DB.Preload("User").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("post")
		}
		return nil, err
	}

	data, err := assemblePosts([]models.Post{post}, viewerID)
	if err != nil {
		return nil, err
	}
	return &data[0], nil
}

// ListPosts returns one page of posts ordered by the requested sort key.
func ListPosts(p Pagination, f PostFilter, viewerID uint) ([]PostData, error) {
	var posts []models.Post
	if err := f.apply(db.DB).
		Preload("User").
		Order(p.orderClause()).
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return assemblePosts(posts, viewerID)
}

// CountPosts shares the listing predicate so totalPages is consistent.
func CountPosts(f PostFilter) (int64, error) {
	var count int64
	err := f.apply(db.DB.Model(&models.Post{})).Count(&count).Error
	return count, err
}

// DeletePost removes a post owned by the caller. The storage engine cascades
// the delete to the comment tree and both upvote junction tables; application
// code never walks the tree.
func DeletePost(postID, userID uint) error {
	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("post")
		}
		return err
	}

	if post.UserID != userID {
		return apperr.NotFound("post")
	}

	return db.DB.Delete(&post).Error
}

func assemblePosts(posts []models.Post, viewerID uint) ([]PostData, error) {
	data := make([]PostData, 0, len(posts))
	if len(posts) == 0 {
		return data, nil
	}

	upvoted := make(map[uint]bool)
	if viewerID != 0 {
		ids := make([]uint, len(posts))
		for i, post := range posts {
			ids[i] = post.ID
		}

		var rows []models.PostUpvote
		if err := db.DB.
			Where("user_id = ? AND post_id IN ?", viewerID, ids).
			Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			upvoted[row.PostID] = true
		}
	}

	for _, post := range posts {
		data = append(data, PostData{
			ID:           post.ID,
			Title:        post.Title,
			URL:          post.URL,
			Content:      post.Content,
			ContentHTML:  utils.RenderMarkdown(post.Content),
			Points:       post.Points,
			CommentCount: post.CommentCount,
			CreatedAt:    post.CreatedAt,
			Author:       Author{ID: post.User.ID, Username: post.User.Username},
			IsUpvoted:    upvoted[post.ID],
		})
	}

	return data, nil
}
