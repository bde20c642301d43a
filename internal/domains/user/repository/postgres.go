package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Vitaee/books-api/internal/domains/user"
	"github.com/Vitaee/books-api/internal/repository"
	"github.com/Vitaee/books-api/internal/shared/apperrors"
	"github.com/Vitaee/books-api/pkg/database"
)

// postgresRepository backs user.Repository with the generic repository
// layer plus dedicated credential queries.
type postgresRepository struct {
	*repository.SoftDeleteRepository[user.Account]
	pool *pgxpool.Pool
	db   repository.Querier
}

func NewPostgresRepository(pool *pgxpool.Pool, log zerolog.Logger) user.Repository {
	base := repository.New[user.Account](pool, log, user.RepositoryConfig())
	return &postgresRepository{
		SoftDeleteRepository: repository.NewSoftDelete(base),
		pool:                 pool,
		db:                   pool,
	}
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.Exists(ctx, "email", email)
}

// FindByEmailWithHash bypasses the default projection to include the
// credential hash. Used by login only.
func (r *postgresRepository) FindByEmailWithHash(ctx context.Context, email string) (*user.Account, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at, deleted_at
		FROM accounts
		WHERE email = $1 AND deleted_at IS NULL
	`
	var a user.Account
	err := r.db.QueryRow(ctx, query, email).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Repository("accounts.findByEmailWithHash", err)
	}
	return &a, nil
}

// FindDeletedByEmail looks past the soft-delete guard for an account still
// holding the address.
func (r *postgresRepository) FindDeletedByEmail(ctx context.Context, email string) (*user.Account, error) {
	query := `
		SELECT id, email, created_at, updated_at, deleted_at
		FROM accounts
		WHERE email = $1 AND deleted_at IS NOT NULL
	`
	var a user.Account
	err := r.db.QueryRow(ctx, query, email).Scan(
		&a.ID, &a.Email, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Repository("accounts.findDeletedByEmail", err)
	}
	return &a, nil
}

// Revive clears the deletion marker and replaces the credential hash as one
// atomic unit, so a failure between the two statements can never resurrect
// the account with its old credentials.
func (r *postgresRepository) Revive(ctx context.Context, id int64, hash string) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		txRepo := repository.NewSoftDelete(r.Repository.WithTx(tx))
		affected, err := txRepo.Restore(ctx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return user.ErrAccountNotFound
		}
		_, err = txRepo.Update(ctx, id, repository.NewUpdates().Set("password_hash", hash))
		return err
	})
}
