package services

import (
	"errors"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/ibqn/hacker-news/internal/apperr"
	"github.com/ibqn/hacker-news/internal/db"
	"github.com/ibqn/hacker-news/internal/models"
	"github.com/ibqn/hacker-news/internal/utils"
)

const childPreviewLimit = 3

func validateCommentContent(content string) error {
	if utf8.RuneCountInString(content) < 3 {
		return apperr.Validation("content", "Content should have at least 3 characters.")
	}
	return nil
}

// CreateTopLevelComment inserts a comment directly under a post. The post's
// comment counter is bumped in the same transaction as the insert: a crash or
// a concurrent read can never observe a comment the counter does not reflect,
// or the other way around.
func CreateTopLevelComment(postID uint, user *models.User, content string) (*CommentData, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	var comment models.Comment

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("post")
		}

		comment = models.Comment{
			UserID:  user.ID,
			PostID:  postID,
			Content: content,
			Depth:   0,
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}

	data := newCommentData(&comment, user)
	return &data, nil
}

// CreateReply inserts a nested comment under an existing one. Both the direct
// parent's counter and the root post's counter move with the insert,
// atomically. A counter update that hits zero rows after the parent lookup
// succeeded means the parent or post vanished mid-transaction; that is a
// consistency fault, not a NotFound.
func CreateReply(parentCommentID uint, user *models.User, content string) (*CommentData, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	var comment models.Comment

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var parent models.Comment
		if err := tx.First(&parent, parentCommentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("comment")
			}
			return err
		}

		res := tx.Model(&models.Comment{}).
			Where("id = ?", parent.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Consistency("parent comment count update")
		}

		res = tx.Model(&models.Post{}).
			Where("id = ?", parent.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Consistency("post comment count update")
		}

		comment = models.Comment{
			UserID:          user.ID,
			PostID:          parent.PostID,
			ParentCommentID: &parent.ID,
			Depth:           parent.Depth + 1,
			Content:         content,
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}

	data := newCommentData(&comment, user)
	return &data, nil
}

// newCommentData enriches a freshly inserted comment so the caller can render
// it without a second read. A new comment has no children and no votes yet.
func newCommentData(comment *models.Comment, author *models.User) CommentData {
	return CommentData{
		ID:              comment.ID,
		PostID:          comment.PostID,
		ParentCommentID: comment.ParentCommentID,
		Depth:           comment.Depth,
		Content:         comment.Content,
		ContentHTML:     utils.RenderMarkdown(comment.Content),
		Points:          comment.Points,
		CommentCount:    comment.CommentCount,
		CreatedAt:       comment.CreatedAt,
		Author:          Author{ID: author.ID, Username: author.Username},
		IsUpvoted:       false,
		ChildComments:   make([]CommentData, 0),
	}
}

// ListPostComments returns one page of a post's top-level comments.
// viewerID 0 means anonymous: no upvote annotation is computed.
func ListPostComments(postID uint, p Pagination, viewerID uint) ([]CommentData, error) {
	var post models.Post
	if err := db.DB.Select("id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("post")
		}
		return nil, err
	}

	return listComments(db.DB.Where("post_id = ? AND parent_comment_id IS NULL", postID), p, viewerID)
}

// ListReplies returns one page of a comment's direct children.
func ListReplies(commentID uint, p Pagination, viewerID uint) ([]CommentData, error) {
	var parent models.Comment
	if err := db.DB.Select("id").First(&parent, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("comment")
		}
		return nil, err
	}

	return listComments(db.DB.Where("parent_comment_id = ?", commentID), p, viewerID)
}

// GetComment fetches a single comment with the same enrichment as the
// listing queries.
func GetComment(commentID uint, includeChildren bool, viewerID uint) (*CommentData, error) {
	var comment models.Comment
	if err := db.DB.Preload("User").First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("comment")
		}
		return nil, err
	}

	p := Pagination{SortedBy: SortByRecent, Order: OrderDesc, IncludeChildren: includeChildren}
	data, err := assembleComments([]models.Comment{comment}, p, viewerID)
	if err != nil {
		return nil, err
	}
	return &data[0], nil
}

// CountPostComments counts top-level comments of a post, using the same
// predicate as ListPostComments so pagination totals line up.
func CountPostComments(postID uint) (int64, error) {
	var count int64
	err := db.DB.Model(&models.Comment{}).
		Where("post_id = ? AND parent_comment_id IS NULL", postID).
		Count(&count).Error
	return count, err
}

// CountReplies counts the direct children of a comment.
func CountReplies(commentID uint) (int64, error) {
	var count int64
	err := db.DB.Model(&models.Comment{}).
		Where("parent_comment_id = ?", commentID).
		Count(&count).Error
	return count, err
}

func listComments(scope *gorm.DB, p Pagination, viewerID uint) ([]CommentData, error) {
	var comments []models.Comment
	if err := scope.
		Preload("User").
		Order(p.orderClause()).
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(&comments).Error; err != nil {
		return nil, err
	}

	return assembleComments(comments, p, viewerID)
}

// assembleComments turns comment rows into DTOs: batch-loads up to three
// direct children per comment, then annotates every comment and previewed
// child with the viewer's upvote membership via one targeted junction lookup.
func assembleComments(comments []models.Comment, p Pagination, viewerID uint) ([]CommentData, error) {
	data := make([]CommentData, 0, len(comments))
	if len(comments) == 0 {
		return data, nil
	}

	childMap := make(map[uint][]models.Comment)
	if p.IncludeChildren {
		parentIDs := make([]uint, len(comments))
		for i, comment := range comments {
			parentIDs[i] = comment.ID
		}

		var children []models.Comment
		if err := db.DB.
			Preload("User").
			Where("parent_comment_id IN ?", parentIDs).
			Order(p.orderClause()).
			Find(&children).Error; err != nil {
			return nil, err
		}

		for _, child := range children {
			parentID := *child.ParentCommentID
			if len(childMap[parentID]) < childPreviewLimit {
				childMap[parentID] = append(childMap[parentID], child)
			}
		}
	}

	upvoted, err := viewerUpvotedComments(viewerID, comments, childMap)
	if err != nil {
		return nil, err
	}

	for _, comment := range comments {
		item := CommentData{
			ID:              comment.ID,
			PostID:          comment.PostID,
			ParentCommentID: comment.ParentCommentID,
			Depth:           comment.Depth,
			Content:         comment.Content,
			ContentHTML:     utils.RenderMarkdown(comment.Content),
			Points:          comment.Points,
			CommentCount:    comment.CommentCount,
			CreatedAt:       comment.CreatedAt,
			Author:          Author{ID: comment.User.ID, Username: comment.User.Username},
			IsUpvoted:       upvoted[comment.ID],
			ChildComments:   make([]CommentData, 0),
		}

		for _, child := range childMap[comment.ID] {
			item.ChildComments = append(item.ChildComments, CommentData{
				ID:              child.ID,
				PostID:          child.PostID,
				ParentCommentID: child.ParentCommentID,
				Depth:           child.Depth,
				Content:         child.Content,
				ContentHTML:     utils.RenderMarkdown(child.Content),
				Points:          child.Points,
				CommentCount:    child.CommentCount,
				CreatedAt:       child.CreatedAt,
				Author:          Author{ID: child.User.ID, Username: child.User.Username},
				IsUpvoted:       upvoted[child.ID],
				ChildComments:   make([]CommentData, 0),
			})
		}

		data = append(data, item)
	}

	return data, nil
}

// viewerUpvotedComments resolves the viewer's upvote membership for a page of
// comments and their previewed children in a single junction-table query.
func viewerUpvotedComments(viewerID uint, comments []models.Comment, childMap map[uint][]models.Comment) (map[uint]bool, error) {
	upvoted := make(map[uint]bool)
	if viewerID == 0 {
		return upvoted, nil
	}

	ids := make([]uint, 0, len(comments))
	for _, comment := range comments {
		ids = append(ids, comment.ID)
	}
	for _, children := range childMap {
		for _, child := range children {
			ids = append(ids, child.ID)
		}
	}

	var rows []models.CommentUpvote
	if err := db.DB.
		Where("user_id = ? AND comment_id IN ?", viewerID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		upvoted[row.CommentID] = true
	}
	return upvoted, nil
}
