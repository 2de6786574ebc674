package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ibqn/hacker-news/internal/response"
	"github.com/ibqn/hacker-news/internal/services"
	"github.com/ibqn/hacker-news/internal/utils"
)

const (
	frontPageCacheSize = 512
	frontPageCacheTTL  = time.Minute
)

// PostHandler owns the front page cache; each handler instance starts cold.
type PostHandler struct {
	cache *utils.Cache[response.Envelope]
}

func NewPostHandler() *PostHandler {
	cache, err := utils.NewCache[response.Envelope](frontPageCacheSize)
	if err != nil {
		log.Fatalf("Failed to create front page cache: %v", err)
	}
	return &PostHandler{cache: cache}
}

type createPostInput struct {
	Title   string `json:"title" binding:"required"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type postListQuery struct {
	paginationQuery
	Author uint   `form:"author"`
	Site   string `form:"site"`
}

func (h *PostHandler) Create(c *gin.Context) {
	var input createPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.FormError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	post, err := services.CreatePost(currentUser(c), input.Title, input.URL, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	// New submissions should show up on the front page right away
	h.cache.Delete(frontPageCacheKey(1))

	response.Success(c, http.StatusCreated, "Post created", post)
}

// List returns a page of posts. Anonymous front-page requests are served from
// a short-lived cache; signed-in viewers bypass it because is_upvoted is
// viewer specific.
func (h *PostHandler) List(c *gin.Context) {
	var query postListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	filter := services.PostFilter{Author: query.Author, Site: query.Site}
	viewer := viewerID(c)

	cacheable := viewer == 0 && filter == (services.PostFilter{}) &&
		query.SortedBy == services.SortByRecent && query.Order == services.OrderDesc
	cacheKey := frontPageCacheKey(query.Page)
	if cacheable {
		if envelope, ok := h.cache.Get(cacheKey); ok {
			c.JSON(http.StatusOK, envelope)
			return
		}
	}

	count, err := services.CountPosts(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	posts, err := services.ListPosts(query.pagination(), filter, viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	if cacheable {
		h.cache.Set(cacheKey, response.Envelope{
			Success:    true,
			Message:    "Posts fetched",
			Data:       posts,
			Pagination: &response.Pagination{Page: query.Page, TotalPages: totalPages(count, query.Limit)},
		}, frontPageCacheTTL)
	}

	response.Paginated(c, http.StatusOK, "Posts fetched", posts, query.Page, totalPages(count, query.Limit))
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	post, err := services.GetPost(id, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Post fetched", post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := services.DeletePost(id, currentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}

	h.cache.Delete(frontPageCacheKey(1))

	response.Success(c, http.StatusOK, "Post deleted", nil)
}

func (h *PostHandler) Upvote(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	data, err := services.TogglePostUpvote(id, currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Post upvote toggled", data)
}

// CreateComment attaches a top-level comment to a post.
func (h *PostHandler) CreateComment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var input createCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.FormError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	comment, err := services.CreateTopLevelComment(id, currentUser(c), input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Comment created", comment)
}

// ListComments pages through the top-level comments of a post.
func (h *PostHandler) ListComments(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var query paginationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	count, err := services.CountPostComments(id)
	if err != nil {
		respondError(c, err)
		return
	}

	comments, err := services.ListPostComments(id, query.pagination(), viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Paginated(c, http.StatusOK, "Comments fetched", comments, query.Page, totalPages(count, query.Limit))
}

func frontPageCacheKey(page int) string {
	return fmt.Sprintf("posts:recent:page:%d", page)
}
