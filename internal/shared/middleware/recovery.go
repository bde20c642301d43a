package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Vitaee/books-api/internal/shared/response"
)

// Recovery converts panics into a 500 without taking the process down.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString("request_id")).
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				response.InternalServerError(c)
				c.Abort()
			}
		}()
		c.Next()
	}
}
