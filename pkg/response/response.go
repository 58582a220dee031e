package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayhub/service-booking/pkg/domain"
)

// envelope is the uniform JSON response shape.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Error: message})
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, envelope{Success: false, Error: message})
}

// Rejected writes a 422 carrying a machine-readable rejection reason
// alongside the human-readable message.
func Rejected(c *gin.Context, reason, message string) {
	c.JSON(http.StatusUnprocessableEntity, struct {
		envelope
		Reason string `json:"reason"`
	}{envelope{Success: false, Error: message}, reason})
}

// Error maps domain errors to HTTP status codes; anything unrecognized is a 500.
func Error(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, envelope{Success: false, Error: err.Error()})
	case domain.IsInvalidState(err):
		c.JSON(http.StatusConflict, envelope{Success: false, Error: err.Error()})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, envelope{Success: false, Error: err.Error()})
	case domain.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, envelope{Success: false, Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, envelope{Success: false, Error: "internal server error"})
	}
}
