package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vitaee/books-api/internal/shared/apperrors"
)

func TestPageOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    PageOptions
		wantErr bool
	}{
		{"valid defaults", PageOptions{Page: 1, Limit: 10}, false},
		{"valid max limit", PageOptions{Page: 1, Limit: 100}, false},
		{"valid desc order", PageOptions{Page: 3, Limit: 25, SortOrder: "desc"}, false},
		{"valid mixed case order", PageOptions{Page: 1, Limit: 10, SortOrder: "DESC"}, false},
		{"page zero", PageOptions{Page: 0, Limit: 10}, true},
		{"page negative", PageOptions{Page: -1, Limit: 10}, true},
		{"limit zero", PageOptions{Page: 1, Limit: 0}, true},
		{"limit over max", PageOptions{Page: 1, Limit: 101}, true},
		{"bogus sort order", PageOptions{Page: 1, Limit: 10, SortOrder: "sideways"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPageOptionsOffset(t *testing.T) {
	assert.Equal(t, 0, PageOptions{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 10, PageOptions{Page: 2, Limit: 10}.Offset())
	assert.Equal(t, 50, PageOptions{Page: 3, Limit: 25}.Offset())
}

func TestPageOptionsOrderSQL(t *testing.T) {
	assert.Equal(t, "id ASC", PageOptions{}.orderSQL("id"))
	assert.Equal(t, "title ASC", PageOptions{SortBy: "title"}.orderSQL("id"))
	assert.Equal(t, "title DESC", PageOptions{SortBy: "title", SortOrder: "desc"}.orderSQL("id"))
	assert.Equal(t, "title DESC", PageOptions{SortBy: "title", SortOrder: "DESC"}.orderSQL("id"))
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name         string
		page, limit  int
		total        int
		items        int
		wantPages    int
		wantNext     bool
		wantPrevious bool
	}{
		{"first of many", 1, 10, 35, 10, 4, true, false},
		{"middle", 2, 10, 35, 10, 4, true, true},
		{"last partial", 4, 10, 35, 5, 4, false, true},
		{"exact division", 2, 10, 20, 10, 2, false, true},
		{"empty result", 1, 10, 0, 0, 0, false, false},
		{"single item", 1, 1, 1, 1, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.items)
			p := NewPage(items, tt.page, tt.limit, tt.total)

			assert.Equal(t, tt.page, p.CurrentPage)
			assert.Equal(t, tt.limit, p.ItemsPerPage)
			assert.Equal(t, tt.total, p.TotalItems)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantNext, p.HasNextPage)
			assert.Equal(t, tt.wantPrevious, p.HasPreviousPage)
			assert.Len(t, p.Items, tt.items)
		})
	}
}

func TestNewPageNilItems(t *testing.T) {
	p := NewPage[int](nil, 1, 10, 0)
	require.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
}
