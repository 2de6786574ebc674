package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ibqn/hacker-news/internal/response"
	"github.com/ibqn/hacker-news/internal/services"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

type createCommentInput struct {
	Content string `json:"content" binding:"required"`
}

// CreateReply nests a new comment under an existing one.
func (h *CommentHandler) CreateReply(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var input createCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.FormError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	comment, err := services.CreateReply(id, currentUser(c), input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Comment created", comment)
}

func (h *CommentHandler) Upvote(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	data, err := services.ToggleCommentUpvote(id, currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Comment upvote toggled", data)
}

func (h *CommentHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	includeChildren := c.DefaultQuery("includeChildren", "false") == "true"

	comment, err := services.GetComment(id, includeChildren, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Comment fetched", comment)
}

// ListReplies pages through the direct children of a comment.
func (h *CommentHandler) ListReplies(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var query paginationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	count, err := services.CountReplies(id)
	if err != nil {
		respondError(c, err)
		return
	}

	comments, err := services.ListReplies(id, query.pagination(), viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Paginated(c, http.StatusOK, "Comments fetched", comments, query.Page, totalPages(count, query.Limit))
}
