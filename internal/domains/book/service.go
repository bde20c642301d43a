package book

import (
	"context"

	"github.com/Vitaee/books-api/internal/repository"
)

// Service exposes the library operations for one authenticated account.
// The ownerID on every method is the authenticated account id; callers can
// never act on another account's books through this interface.
type Service interface {
	Create(ctx context.Context, ownerID int64, req CreateBookRequest) (*Book, error)
	BulkImport(ctx context.Context, ownerID int64, req BulkCreateRequest) ([]Book, error)
	Get(ctx context.Context, ownerID, bookID int64) (*Book, error)
	List(ctx context.Context, ownerID int64, q ListBooksQuery) (*repository.Page[Book], error)
	Search(ctx context.Context, ownerID int64, term string) ([]Book, error)
	ByAuthor(ctx context.Context, ownerID int64, author string) ([]Book, error)
	Update(ctx context.Context, ownerID, bookID int64, req UpdateBookRequest) (*Book, error)
	Delete(ctx context.Context, ownerID, bookID int64) error
}

// CoverService manages the optional cover image attached to a book.
type CoverService interface {
	Upload(ctx context.Context, ownerID, bookID int64, filename, contentType string, data []byte) (*Book, error)
	Remove(ctx context.Context, ownerID, bookID int64) (*Book, error)
	PresignURL(ctx context.Context, ownerID, bookID int64) (string, error)
}
