package repository

import (
	"strings"

	"github.com/Vitaee/books-api/internal/shared/apperrors"
)

const (
	MinPageLimit = 1
	MaxPageLimit = 100

	DefaultPage  = 1
	DefaultLimit = 10
)

// PageOptions describes the requested pagination window. Sorting defaults to
// ascending on the primary key when SortBy is empty.
type PageOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// Validate enforces the window bounds before any storage access.
func (o PageOptions) Validate() error {
	if o.Page < 1 {
		return apperrors.Validation("page must be >= 1, got %d", o.Page)
	}
	if o.Limit < MinPageLimit || o.Limit > MaxPageLimit {
		return apperrors.Validation("limit must be between %d and %d, got %d", MinPageLimit, MaxPageLimit, o.Limit)
	}
	switch strings.ToLower(o.SortOrder) {
	case "", "asc", "desc":
	default:
		return apperrors.Validation("sort order must be asc or desc, got %q", o.SortOrder)
	}
	return nil
}

// Offset computes the window start row.
func (o PageOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

func (o PageOptions) orderSQL(defaultColumn string) string {
	col := o.SortBy
	if col == "" {
		col = defaultColumn
	}
	dir := "ASC"
	if strings.EqualFold(o.SortOrder, "desc") {
		dir = "DESC"
	}
	return col + " " + dir
}

// Page is a derived pagination result, never persisted.
type Page[T any] struct {
	Items           []T  `json:"items"`
	CurrentPage     int  `json:"current_page"`
	TotalPages      int  `json:"total_pages"`
	TotalItems      int  `json:"total_items"`
	ItemsPerPage    int  `json:"items_per_page"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

// NewPage derives the pagination metadata: totalPages = ceil(total/limit),
// hasNextPage = page < totalPages, hasPreviousPage = page > 1.
func NewPage[T any](items []T, page, limit, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &Page[T]{
		Items:           items,
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    limit,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}
