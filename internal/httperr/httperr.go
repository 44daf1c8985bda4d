package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code     string            `json:"error_code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func TooManyRequests(c *gin.Context, code, message string) {
	Write(c, http.StatusTooManyRequests, code, message)
}

// Unprocessable answers with per-field messages.
func Unprocessable(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, HTTPError{
		Code:    "validation_failed",
		Message: "Verifique os campos informados.",
		Fields:  fields,
	})
}

// Redirect answers 404 with the page the client should go to instead.
func Redirect(c *gin.Context, code, message, to string) {
	c.JSON(http.StatusNotFound, HTTPError{
		Code:     code,
		Message:  message,
		Redirect: to,
	})
}
