package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Vitaee/books-api/internal/domains/book"
	"github.com/Vitaee/books-api/internal/shared/middleware"
	"github.com/Vitaee/books-api/internal/shared/response"
)

// maxCoverUpload bounds the multipart read before the service runs its own
// size check.
const maxCoverUpload = 6 << 20

type Handler struct {
	books  book.Service
	covers book.CoverService
}

func NewHandler(books book.Service, covers book.CoverService) *Handler {
	return &Handler{books: books, covers: covers}
}

// RegisterRoutes mounts the library endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(authed *gin.RouterGroup) {
	authed.POST("/books", h.Create)
	authed.POST("/books/bulk", h.BulkImport)
	authed.GET("/books", h.List)
	authed.GET("/books/search", h.Search)
	authed.GET("/books/by-author", h.ByAuthor)
	authed.GET("/books/:id", h.Get)
	authed.PATCH("/books/:id", h.Update)
	authed.DELETE("/books/:id", h.Delete)

	authed.PUT("/books/:id/cover", h.UploadCover)
	authed.DELETE("/books/:id/cover", h.RemoveCover)
	authed.GET("/books/:id/cover", h.CoverURL)
}

// Create - POST /v1/books
func (h *Handler) Create(c *gin.Context) {
	var req book.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	created, err := h.books.Create(c.Request.Context(), middleware.CurrentAccountID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, created)
}

// BulkImport - POST /v1/books/bulk
func (h *Handler) BulkImport(c *gin.Context) {
	var req book.BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	created, err := h.books.BulkImport(c.Request.Context(), middleware.CurrentAccountID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, created)
}

// List - GET /v1/books?page=&limit=&sort_by=&sort_order=
func (h *Handler) List(c *gin.Context) {
	var q book.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	page, err := h.books.List(c.Request.Context(), middleware.CurrentAccountID(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// Search - GET /v1/books/search?q=
func (h *Handler) Search(c *gin.Context) {
	books, err := h.books.Search(c.Request.Context(), middleware.CurrentAccountID(c), c.Query("q"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, books)
}

// ByAuthor - GET /v1/books/by-author?author=
func (h *Handler) ByAuthor(c *gin.Context) {
	books, err := h.books.ByAuthor(c.Request.Context(), middleware.CurrentAccountID(c), c.Query("author"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, books)
}

// Get - GET /v1/books/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	found, err := h.books.Get(c.Request.Context(), middleware.CurrentAccountID(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, found)
}

// Update - PATCH /v1/books/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	var req book.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	updated, err := h.books.Update(c.Request.Context(), middleware.CurrentAccountID(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated)
}

// Delete - DELETE /v1/books/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	if err := h.books.Delete(c.Request.Context(), middleware.CurrentAccountID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadCover - PUT /v1/books/:id/cover (multipart field "cover")
func (h *Handler) UploadCover(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("cover")
	if err != nil {
		response.BadRequest(c, "multipart field \"cover\" is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxCoverUpload))
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}

	updated, err := h.covers.Upload(
		c.Request.Context(),
		middleware.CurrentAccountID(c),
		id,
		file.Filename,
		file.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated)
}

// RemoveCover - DELETE /v1/books/:id/cover
func (h *Handler) RemoveCover(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	updated, err := h.covers.Remove(c.Request.Context(), middleware.CurrentAccountID(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated)
}

// CoverURL - GET /v1/books/:id/cover returns a short-lived download link.
func (h *Handler) CoverURL(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	url, err := h.covers.PresignURL(c.Request.Context(), middleware.CurrentAccountID(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url})
}

func bookID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.BadRequest(c, "invalid book id")
		return 0, false
	}
	return id, true
}
