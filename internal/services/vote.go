package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ibqn/hacker-news/internal/apperr"
	"github.com/ibqn/hacker-news/internal/db"
	"github.com/ibqn/hacker-news/internal/models"
)

// TogglePostUpvote flips the calling user's upvote on a post. One transaction
// covers the membership check, the counter update and the junction-row
// insert/delete, so no observer ever sees the counter and the membership row
// disagree.
func TogglePostUpvote(postID, userID uint) (*UpvoteData, error) {
	var data UpvoteData

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.PostUpvote
		existed := true
		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			First(&existing).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			existed = false
		}

		delta := 1
		if existed {
			delta = -1
		}

		// Atomic increment evaluated by the storage engine. A stale in-process
		// read-modify-write would lose updates under concurrent toggles.
		res := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("points", gorm.Expr("points + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("post")
		}

		if existed {
			res := tx.Delete(&existing)
			if res.Error != nil {
				return res.Error
			}
			// A racing toggle already removed the row. Roll the whole
			// transaction back so the counter is not decremented twice.
			if res.RowsAffected == 0 {
				return apperr.Conflict("upvote")
			}
		} else {
			upvote := models.PostUpvote{UserID: userID, PostID: postID}
			if err := tx.Create(&upvote).Error; err != nil {
				// A racing toggle from the same user won the insert. Roll the
				// whole transaction back so the counter stays untouched.
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict("upvote")
				}
				return err
			}
		}

		var points int
		if err := tx.Model(&models.Post{}).
			Select("points").
			Where("id = ?", postID).
			Scan(&points).Error; err != nil {
			return err
		}

		data = UpvoteData{Points: points, IsUpvoted: !existed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &data, nil
}

// ToggleCommentUpvote is the comment counterpart of TogglePostUpvote.
func ToggleCommentUpvote(commentID, userID uint) (*UpvoteData, error) {
	var data UpvoteData

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.CommentUpvote
		existed := true
		if err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).
			First(&existing).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			existed = false
		}

		delta := 1
		if existed {
			delta = -1
		}

		res := tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			UpdateColumn("points", gorm.Expr("points + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("comment")
		}

		if existed {
			res := tx.Delete(&existing)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperr.Conflict("upvote")
			}
		} else {
			upvote := models.CommentUpvote{UserID: userID, CommentID: commentID}
			if err := tx.Create(&upvote).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict("upvote")
				}
				return err
			}
		}

		var points int
		if err := tx.Model(&models.Comment{}).
			Select("points").
			Where("id = ?", commentID).
			Scan(&points).Error; err != nil {
			return err
		}

		data = UpvoteData{Points: points, IsUpvoted: !existed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &data, nil
}
