package book

import "github.com/Vitaee/books-api/internal/shared/apperrors"

var (
	// ErrBookNotFound covers both truly absent rows and rows owned by a
	// different account. The two cases are indistinguishable to callers.
	ErrBookNotFound = apperrors.NotFound("book not found")

	ErrNoCover     = apperrors.NotFound("book has no cover")
	ErrEmptyUpdate = apperrors.Validation("update must name at least one field")
)

// ErrDuplicateTitle names the conflicting title so clients can surface it.
func ErrDuplicateTitle(title string) error {
	return apperrors.Conflict("a book titled %q already exists in your library", title)
}
