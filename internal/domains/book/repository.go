package book

import (
	"context"

	"github.com/Vitaee/books-api/internal/repository"
)

// Repository is the owner-scoped persistence port for books. Every read
// takes the owning account id and applies it inside the query, so a book
// belonging to another account behaves exactly like one that does not exist.
type Repository interface {
	Create(ctx context.Context, values *repository.Updates) (*Book, error)
	BulkCreate(ctx context.Context, values []*repository.Updates) ([]Book, error)

	FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*Book, error)
	FindByAuthorForOwner(ctx context.Context, ownerID int64, author string) ([]Book, error)
	SearchByOwner(ctx context.Context, ownerID int64, term string) ([]Book, error)
	GetPaginatedByOwner(ctx context.Context, ownerID int64, opts repository.PageOptions) (*repository.Page[Book], error)
	TitleExistsForOwner(ctx context.Context, ownerID int64, title string) (bool, error)

	UpdateAndReturn(ctx context.Context, id int64, values *repository.Updates) (*Book, error)
	SoftDelete(ctx context.Context, id int64) (int64, error)
}
