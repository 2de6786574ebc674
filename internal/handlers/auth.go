package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ibqn/hacker-news/internal/db"
	"github.com/ibqn/hacker-news/internal/models"
	"github.com/ibqn/hacker-news/internal/response"
	"github.com/ibqn/hacker-news/internal/services"
	"github.com/ibqn/hacker-news/internal/utils"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type credentialsInput struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6"`
}

// Signup creates an account. A duplicate username surfaces from the storage
// layer as a uniqueness violation and maps to a form-level conflict.
func (h *AuthHandler) Signup(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.FormError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := models.User{
		Username: input.Username,
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.FormError(c, http.StatusConflict, "Username already used")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to save session")
		return
	}

	response.Success(c, http.StatusCreated, "User created", services.Author{ID: user.ID, Username: user.Username})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.FormError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := db.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		response.FormError(c, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		response.FormError(c, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to save session")
		return
	}

	response.Success(c, http.StatusOK, "Logged in", services.Author{ID: user.ID, Username: user.Username})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to save session")
		return
	}
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// Me returns the identity behind the session cookie.
func (h *AuthHandler) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	response.Success(c, http.StatusOK, "User fetched", services.Author{ID: user.ID, Username: user.Username})
}
