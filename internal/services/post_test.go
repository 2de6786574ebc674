package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibqn/hacker-news/internal/apperr"
	"github.com/ibqn/hacker-news/internal/db"
	"github.com/ibqn/hacker-news/internal/models"
)

func TestCreatePostValidation(t *testing.T) {
	setupTestDB(t)

	user := createTestUser(t, "alice")

	_, err := CreatePost(user, "ab", "https://example.com", "")
	assert.True(t, apperr.IsValidation(err))

	_, err = CreatePost(user, "a fine title", "", "")
	assert.True(t, apperr.IsValidation(err))

	_, err = CreatePost(user, "a fine title", "not a url", "")
	assert.True(t, apperr.IsValidation(err))

	assert.EqualValues(t, 0, countRows(t, &models.Post{}, "1 = 1"))

	post, err := CreatePost(user, "a fine title", "https://example.com/story", "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/story", post.URL)
	assert.Equal(t, 0, post.Points)
	assert.Equal(t, 0, post.CommentCount)
	assert.Equal(t, "alice", post.Author.Username)

	// Text-only submissions are fine too
	post, err = CreatePost(user, "ask: anything", "", "some *markdown* body")
	require.NoError(t, err)
	assert.Contains(t, post.ContentHTML, "<em>markdown</em>")
}

func TestGetPost(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	post := createTestPost(t, alice, "a post")

	_, err := TogglePostUpvote(post.ID, bob.ID)
	require.NoError(t, err)

	data, err := GetPost(post.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, data.ID)
	assert.Equal(t, "alice", data.Author.Username)
	assert.Equal(t, 1, data.Points)
	assert.True(t, data.IsUpvoted)

	data, err = GetPost(post.ID, 0)
	require.NoError(t, err)
	assert.False(t, data.IsUpvoted)

	_, err = GetPost(9999, 0)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListPostsSortingAndAnnotation(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	base := time.Now().Add(-time.Hour)
	posts := make([]*models.Post, 4)
	for i := range posts {
		posts[i] = createTestPost(t, alice, uniqueName("post ", i))
		require.NoError(t, db.DB.Model(&models.Post{}).
			Where("id = ?", posts[i].ID).
			Updates(map[string]interface{}{
				"points":     i * 2,
				"created_at": base.Add(time.Duration(i) * time.Minute),
			}).Error)
	}

	_, err := TogglePostUpvote(posts[2].ID, bob.ID)
	require.NoError(t, err)

	p := Pagination{Page: 1, Limit: 10, SortedBy: SortByPoints, Order: OrderDesc}
	page, err := ListPosts(p, PostFilter{}, bob.ID)
	require.NoError(t, err)
	require.Len(t, page, 4)
	assert.Equal(t, "post 3", page[0].Title)
	assert.False(t, page[0].IsUpvoted)
	assert.Equal(t, "post 2", page[1].Title) // toggled from 4 to 5 points
	assert.True(t, page[1].IsUpvoted)

	p = Pagination{Page: 2, Limit: 3, SortedBy: SortByRecent, Order: OrderAsc}
	page, err = ListPosts(p, PostFilter{}, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "post 3", page[0].Title)
}

func TestListPostsFilter(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	createTestPost(t, alice, "alice one")
	createTestPost(t, alice, "alice two")
	createTestPost(t, bob, "bob one")

	p := Pagination{Page: 1, Limit: 10, SortedBy: SortByRecent, Order: OrderDesc}

	page, err := ListPosts(p, PostFilter{Author: alice.ID}, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	count, err := CountPosts(PostFilter{Author: alice.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = CountPosts(PostFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestDeletePostCascades(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	post := createTestPost(t, alice, "a post")

	parent, err := CreateTopLevelComment(post.ID, bob, "first comment")
	require.NoError(t, err)
	_, err = CreateReply(parent.ID, alice, "nested reply")
	require.NoError(t, err)
	_, err = TogglePostUpvote(post.ID, bob.ID)
	require.NoError(t, err)
	_, err = ToggleCommentUpvote(parent.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, DeletePost(post.ID, alice.ID))

	// The whole tree and every junction row go with the post
	assert.EqualValues(t, 0, countRows(t, &models.Post{}, "id = ?", post.ID))
	assert.EqualValues(t, 0, countRows(t, &models.Comment{}, "post_id = ?", post.ID))
	assert.EqualValues(t, 0, countRows(t, &models.PostUpvote{}, "post_id = ?", post.ID))
	assert.EqualValues(t, 0, countRows(t, &models.CommentUpvote{}, "1 = 1"))
}

func TestDeletePostOwnerOnly(t *testing.T) {
	setupTestDB(t)

	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	post := createTestPost(t, alice, "a post")

	// Ownership failures look identical to a missing post
	err := DeletePost(post.ID, bob.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.EqualValues(t, 1, countRows(t, &models.Post{}, "id = ?", post.ID))

	err = DeletePost(9999, alice.ID)
	assert.True(t, apperr.IsNotFound(err))
}
