package repository

import (
	"context"
	"fmt"

	"github.com/Vitaee/books-api/internal/shared/apperrors"
)

// SoftDeleteRepository adds soft delete and restore on top of a base
// repository. The type parameter is constrained to SoftDeletable, so the
// capability cannot be invoked for entities without a deletion marker.
type SoftDeleteRepository[T SoftDeletable] struct {
	*Repository[T]
}

// NewSoftDelete wraps a base repository with the soft-delete capability.
func NewSoftDelete[T SoftDeletable](base *Repository[T]) *SoftDeleteRepository[T] {
	return &SoftDeleteRepository[T]{Repository: base}
}

// SoftDelete stamps the deletion marker. Already-deleted or missing rows
// report zero affected.
func (r *SoftDeleteRepository[T]) SoftDelete(ctx context.Context, id int64) (int64, error) {
	query := fmt.Sprintf(
		"UPDATE %s SET %s = now(), updated_at = now() WHERE id = $1 AND %s IS NULL",
		r.table, r.deletedCol, r.deletedCol,
	)
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, apperrors.Repository(r.op("softDelete"), err)
	}
	return tag.RowsAffected(), nil
}

// Restore clears the deletion marker, making the row visible to reads again.
func (r *SoftDeleteRepository[T]) Restore(ctx context.Context, id int64) (int64, error) {
	query := fmt.Sprintf(
		"UPDATE %s SET %s = NULL, updated_at = now() WHERE id = $1 AND %s IS NOT NULL",
		r.table, r.deletedCol, r.deletedCol,
	)
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, apperrors.Repository(r.op("restore"), err)
	}
	return tag.RowsAffected(), nil
}
