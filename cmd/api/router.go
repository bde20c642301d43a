package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vitaee/books-api/internal/shared/middleware"
	"github.com/Vitaee/books-api/pkg/container"
)

// SetupRouter wires middleware and every domain's routes.
func SetupRouter(c *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(c.Log),
		middleware.Recovery(c.Log),
	)

	r.GET("/health", func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "version": c.Config.App.Version})
	})

	v1 := r.Group("/v1")
	authed := v1.Group("")
	authed.Use(middleware.Auth(c.Tokens, c.UserService))

	c.UserHandler.RegisterRoutes(v1, authed)
	c.BookHandler.RegisterRoutes(authed)

	return r
}
