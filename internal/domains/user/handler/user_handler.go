package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vitaee/books-api/internal/domains/user"
	"github.com/Vitaee/books-api/internal/shared/middleware"
	"github.com/Vitaee/books-api/internal/shared/response"
)

type Handler struct {
	service user.Service
}

func NewHandler(service user.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the account endpoints. The auth group is public;
// profile endpoints require the auth middleware applied by the caller.
func (h *Handler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)

	authed.GET("/me", h.Me)
	authed.DELETE("/me", h.Deactivate)
}

// Register - POST /v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Login - POST /v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Me - GET /v1/me
func (h *Handler) Me(c *gin.Context) {
	profile, err := h.service.GetProfile(c.Request.Context(), middleware.CurrentAccountID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// Deactivate - DELETE /v1/me
func (h *Handler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), middleware.CurrentAccountID(c)); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
