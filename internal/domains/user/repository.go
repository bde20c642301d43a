package user

import (
	"context"

	"github.com/Vitaee/books-api/internal/repository"
)

// Repository is the account data-access contract. The implementation
// delegates to the generic repository layer.
type Repository interface {
	Create(ctx context.Context, values *repository.Updates) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindByEmailWithHash fetches the account including the credential hash,
	// which the default projection leaves out. Absence is (nil, nil).
	FindByEmailWithHash(ctx context.Context, email string) (*Account, error)

	// FindDeletedByEmail resolves a deactivated account still holding the
	// address. Registration revives such accounts instead of colliding with
	// the unique index.
	FindDeletedByEmail(ctx context.Context, email string) (*Account, error)

	// Revive restores a soft-deleted account and swaps in the new credential
	// hash in one transaction; a failure leaves the account deactivated.
	Revive(ctx context.Context, id int64, hash string) error

	SoftDelete(ctx context.Context, id int64) (int64, error)
}
