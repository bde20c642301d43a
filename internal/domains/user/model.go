package user

import (
	"time"

	"github.com/Vitaee/books-api/internal/repository"
)

// Account is the authenticated identity owning a book collection. Identity
// is established once at creation and never changes.
type Account struct {
	ID           int64      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`
}

func (Account) TableName() string       { return "accounts" }
func (Account) DeletedAtColumn() string { return "deleted_at" }

// RepositoryConfig declares the account column sets. The credential hash is
// deliberately absent from the default projection; login fetches it through
// a dedicated query.
func RepositoryConfig() repository.Config {
	return repository.Config{
		Columns:    []string{"id", "email", "created_at", "updated_at"},
		Writable:   []string{"email", "password_hash"},
		Filterable: []string{"id", "email", "created_at"},
	}
}

// AccountDTO is the outward-facing account shape.
type AccountDTO struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Account) ToDTO() AccountDTO {
	return AccountDTO{ID: a.ID, Email: a.Email, CreatedAt: a.CreatedAt}
}
