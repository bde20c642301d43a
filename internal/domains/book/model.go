package book

import (
	"time"

	"github.com/Vitaee/books-api/internal/repository"
)

// Book is a title in one account's personal library. Every row belongs to
// exactly one owner and all reads are scoped to that owner.
type Book struct {
	ID              int64      `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Author          string     `db:"author" json:"author"`
	Description     *string    `db:"description" json:"description,omitempty"`
	PublicationYear *int       `db:"publication_year" json:"publication_year,omitempty"`
	CoverURL        *string    `db:"cover_url" json:"cover_url,omitempty"`
	CoverKey        *string    `db:"cover_key" json:"-"`
	OwnerID         int64      `db:"owner_id" json:"owner_id"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at" json:"-"`
}

func (Book) TableName() string { return "books" }

func (Book) DeletedAtColumn() string { return "deleted_at" }

// RepositoryConfig declares the column allow-lists for the books table.
func RepositoryConfig() repository.Config {
	return repository.Config{
		Columns: []string{
			"id", "title", "author", "description", "publication_year",
			"cover_url", "cover_key", "owner_id", "created_at", "updated_at",
		},
		Writable: []string{
			"title", "author", "description", "publication_year",
			"cover_url", "cover_key", "owner_id",
		},
		Filterable: []string{
			"id", "title", "author", "publication_year", "owner_id",
			"created_at", "updated_at",
		},
	}
}
