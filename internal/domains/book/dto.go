package book

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// maxPublicationYear leaves headroom for announced-but-unreleased titles.
func maxPublicationYear() int {
	return time.Now().Year() + 10
}

// CreateBookRequest carries the caller-writable fields of a new book. The
// owner is always taken from the authenticated account, never from the body.
type CreateBookRequest struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Description     *string `json:"description,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(2, 255)),
		validation.Field(&r.Author, validation.Required, validation.Length(2, 255)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
		validation.Field(&r.PublicationYear, validation.Min(1), validation.Max(maxPublicationYear())),
	)
}

// UpdateBookRequest is a partial update. Nil fields are left untouched.
type UpdateBookRequest struct {
	Title           *string `json:"title,omitempty"`
	Author          *string `json:"author,omitempty"`
	Description     *string `json:"description,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(2, 255)),
		validation.Field(&r.Author, validation.Length(2, 255)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
		validation.Field(&r.PublicationYear, validation.Min(1), validation.Max(maxPublicationYear())),
	)
}

// Empty reports whether the update names no fields at all.
func (r UpdateBookRequest) Empty() bool {
	return r.Title == nil && r.Author == nil && r.Description == nil && r.PublicationYear == nil
}

// BulkCreateRequest imports several books in one call.
type BulkCreateRequest struct {
	Books []CreateBookRequest `json:"books"`
}

func (r BulkCreateRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Books, validation.Required, validation.Length(1, 100)),
	); err != nil {
		return err
	}
	for _, b := range r.Books {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ListBooksQuery mirrors the pagination query string.
type ListBooksQuery struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}
