package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ibqn/hacker-news/internal/handlers"
	"github.com/ibqn/hacker-news/internal/middleware"
	"github.com/ibqn/hacker-news/internal/response"
)

func RegisterRoutes(r *gin.Engine) {
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Not Found")
	})

	api := r.Group("/api")

	// Auth
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.Me)

	// Public read paths (viewer annotation kicks in when a session exists)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:id", postHandler.Get)
	api.GET("/posts/:id/comments", postHandler.ListComments)
	api.GET("/comments/:id", commentHandler.Get)
	api.GET("/comments/:id/comments", commentHandler.ListReplies)

	// Mutations require a signed-in user
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", postHandler.Create)
		authorized.DELETE("/posts/:id", postHandler.Delete)
		authorized.POST("/posts/:id/upvote", postHandler.Upvote)
		authorized.POST("/posts/:id/comment", postHandler.CreateComment)

		authorized.POST("/comments/:id", commentHandler.CreateReply)
		authorized.POST("/comments/:id/upvote", commentHandler.Upvote)
	}
}
