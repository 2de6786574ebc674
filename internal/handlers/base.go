package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ibqn/hacker-news/internal/apperr"
	"github.com/ibqn/hacker-news/internal/middleware"
	"github.com/ibqn/hacker-news/internal/models"
	"github.com/ibqn/hacker-news/internal/response"
	"github.com/ibqn/hacker-news/internal/services"
)

// currentUser returns the signed-in user, or nil for anonymous requests.
func currentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}

// viewerID is 0 for anonymous requests; services skip upvote annotation then.
func viewerID(c *gin.Context) uint {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return 0
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}
	return uint(id), true
}

// respondError maps the service error taxonomy onto the HTTP boundary.
// Consistency faults stay opaque on purpose.
func respondError(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		response.FormError(c, http.StatusBadRequest, ve.Message)
		return
	}

	var ce *apperr.ConflictError
	if errors.As(err, &ce) {
		response.FormError(c, http.StatusConflict, ce.Error())
		return
	}

	if apperr.IsNotFound(err) {
		response.Error(c, http.StatusNotFound, err.Error())
		return
	}

	response.Error(c, http.StatusInternalServerError, "Internal server error")
}

// paginationQuery binds the listing parameters every paginated endpoint
// shares. Defaults mirror the web client's expectations.
type paginationQuery struct {
	Limit           int    `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Page            int    `form:"page,default=1" binding:"omitempty,min=1"`
	SortedBy        string `form:"sortedBy,default=recent" binding:"omitempty,oneof=points recent"`
	Order           string `form:"order,default=desc" binding:"omitempty,oneof=asc desc"`
	IncludeChildren bool   `form:"includeChildren"`
}

func (q paginationQuery) pagination() services.Pagination {
	return services.Pagination{
		Page:            q.Page,
		Limit:           q.Limit,
		SortedBy:        q.SortedBy,
		Order:           q.Order,
		IncludeChildren: q.IncludeChildren,
	}
}

// totalPages is ceil(count/limit).
func totalPages(count int64, limit int) int64 {
	return (count + int64(limit) - 1) / int64(limit)
}
