// Package response holds the JSON envelope every API endpoint answers with.
package response

import (
	"github.com/gin-gonic/gin"
)

type Pagination struct {
	Page       int   `json:"page"`
	TotalPages int64 `json:"totalPages"`
}

type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type ErrorEnvelope struct {
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	IsFormError bool   `json:"isFormError,omitempty"`
}

func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Envelope{Success: true, Message: message, Data: data})
}

func Paginated(c *gin.Context, code int, message string, data interface{}, page int, totalPages int64) {
	c.JSON(code, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &Pagination{Page: page, TotalPages: totalPages},
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorEnvelope{Success: false, Error: message})
}

func FormError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorEnvelope{Success: false, Error: message, IsFormError: true})
}
