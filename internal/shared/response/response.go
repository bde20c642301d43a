// Package response defines the JSON envelope shared by every handler and
// the single mapping from domain errors to HTTP status codes.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Vitaee/books-api/internal/shared/apperrors"
)

type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message)
}

func Conflict(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, "CONFLICT", message)
}

func UnprocessableEntity(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", message)
}

func InternalServerError(c *gin.Context) {
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error")
}

// FromError translates a domain error to the matching HTTP response.
// Repository and upstream failures deliberately hide their details; the
// full error is logged server side with the request id.
func FromError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidation(err):
		UnprocessableEntity(c, err.Error())
	case apperrors.IsConflict(err):
		Conflict(c, err.Error())
	case apperrors.IsUnauthorized(err):
		Unauthorized(c, err.Error())
	case apperrors.IsNotFound(err):
		NotFound(c, err.Error())
	case apperrors.IsBadRequest(err):
		BadRequest(c, err.Error())
	default:
		// The request-scoped logger is attached by the logging middleware
		// and already carries the request id.
		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		InternalServerError(c)
	}
}
