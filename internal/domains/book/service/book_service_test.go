package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vitaee/books-api/internal/domains/book"
	"github.com/Vitaee/books-api/internal/repository"
	"github.com/Vitaee/books-api/internal/shared/apperrors"
)

// fakeBookRepo is an in-memory book.Repository. lastUpdate captures the
// column set of the most recent update so tests can assert what the service
// writes.
type fakeBookRepo struct {
	books      map[int64]*book.Book
	nextID     int64
	createErr  error
	updateErr  error
	lastUpdate *repository.Updates
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: map[int64]*book.Book{}, nextID: 1}
}

func (f *fakeBookRepo) apply(b *book.Book, values *repository.Updates) {
	if v, ok := values.Get("title"); ok {
		b.Title = v.(string)
	}
	if v, ok := values.Get("author"); ok {
		b.Author = v.(string)
	}
	if v, ok := values.Get("description"); ok {
		switch d := v.(type) {
		case *string:
			b.Description = d
		case string:
			b.Description = &d
		}
	}
	if v, ok := values.Get("publication_year"); ok {
		switch y := v.(type) {
		case *int:
			b.PublicationYear = y
		case int:
			b.PublicationYear = &y
		}
	}
	if v, ok := values.Get("cover_url"); ok {
		if v == nil {
			b.CoverURL = nil
		} else {
			s := v.(string)
			b.CoverURL = &s
		}
	}
	if v, ok := values.Get("cover_key"); ok {
		if v == nil {
			b.CoverKey = nil
		} else {
			s := v.(string)
			b.CoverKey = &s
		}
	}
	b.UpdatedAt = time.Now()
}

func (f *fakeBookRepo) Create(_ context.Context, values *repository.Updates) (*book.Book, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	b := &book.Book{ID: f.nextID, CreatedAt: time.Now()}
	if v, ok := values.Get("owner_id"); ok {
		b.OwnerID = v.(int64)
	}
	f.apply(b, values)
	f.nextID++
	f.books[b.ID] = b
	return b, nil
}

// BulkCreate enforces the same identical-column-set rule as the SQL
// renderer, so service bugs that only surface in multi-VALUES inserts are
// caught here too.
func (f *fakeBookRepo) BulkCreate(ctx context.Context, values []*repository.Updates) ([]book.Book, error) {
	for _, v := range values[1:] {
		if !assert.ObjectsAreEqual(values[0].Columns(), v.Columns()) {
			return nil, apperrors.Validation("bulk create requires identical fields on every entry")
		}
	}
	out := make([]book.Book, 0, len(values))
	for _, v := range values {
		b, err := f.Create(ctx, v)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBookRepo) FindByIDAndOwner(_ context.Context, id, ownerID int64) (*book.Book, error) {
	b, ok := f.books[id]
	if !ok || b.OwnerID != ownerID || b.DeletedAt != nil {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookRepo) FindByAuthorForOwner(_ context.Context, ownerID int64, author string) ([]book.Book, error) {
	out := []book.Book{}
	for _, b := range f.books {
		if b.OwnerID == ownerID && b.DeletedAt == nil &&
			strings.Contains(strings.ToLower(b.Author), strings.ToLower(author)) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookRepo) SearchByOwner(_ context.Context, ownerID int64, term string) ([]book.Book, error) {
	term = strings.ToLower(term)
	out := []book.Book{}
	for _, b := range f.books {
		if b.OwnerID != ownerID || b.DeletedAt != nil {
			continue
		}
		if strings.Contains(strings.ToLower(b.Title), term) ||
			strings.Contains(strings.ToLower(b.Author), term) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookRepo) GetPaginatedByOwner(_ context.Context, ownerID int64, opts repository.PageOptions) (*repository.Page[book.Book], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	items := []book.Book{}
	for _, b := range f.books {
		if b.OwnerID == ownerID && b.DeletedAt == nil {
			items = append(items, *b)
		}
	}
	return repository.NewPage(items, opts.Page, opts.Limit, len(items)), nil
}

func (f *fakeBookRepo) TitleExistsForOwner(_ context.Context, ownerID int64, title string) (bool, error) {
	for _, b := range f.books {
		if b.OwnerID == ownerID && b.DeletedAt == nil && b.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookRepo) UpdateAndReturn(_ context.Context, id int64, values *repository.Updates) (*book.Book, error) {
	f.lastUpdate = values
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	b, ok := f.books[id]
	if !ok || b.DeletedAt != nil {
		return nil, nil
	}
	f.apply(b, values)
	copied := *b
	return &copied, nil
}

func (f *fakeBookRepo) SoftDelete(_ context.Context, id int64) (int64, error) {
	b, ok := f.books[id]
	if !ok || b.DeletedAt != nil {
		return 0, nil
	}
	now := time.Now()
	b.DeletedAt = &now
	return 1, nil
}

type fakeCleaner struct {
	keys []string
	err  error
}

func (f *fakeCleaner) EnqueueDeleteCover(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}

type fakeDeleter struct {
	keys []string
	err  error
}

func (f *fakeDeleter) Delete(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}

func newTestBookService(repo book.Repository) (book.Service, *fakeCleaner, *fakeDeleter) {
	cleaner := &fakeCleaner{}
	deleter := &fakeDeleter{}
	return NewBookService(repo, cleaner, deleter, zerolog.Nop()), cleaner, deleter
}

func createReq(title string) book.CreateBookRequest {
	return book.CreateBookRequest{Title: title, Author: "Frank Herbert"}
}

func TestCreateStampsOwner(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	created, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.OwnerID)
	assert.Equal(t, "Dune", created.Title)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestBookService(newFakeBookRepo())

	tests := []struct {
		name string
		req  book.CreateBookRequest
	}{
		{"missing title", book.CreateBookRequest{Author: "Frank Herbert"}},
		{"one-char title", book.CreateBookRequest{Title: "D", Author: "Frank Herbert"}},
		{"missing author", book.CreateBookRequest{Title: "Dune"}},
		{"long description", book.CreateBookRequest{
			Title: "Dune", Author: "Frank Herbert",
			Description: ptr(strings.Repeat("x", 1001)),
		}},
		{"year zero", book.CreateBookRequest{
			Title: "Dune", Author: "Frank Herbert", PublicationYear: ptrInt(0),
		}},
		{"far-future year", book.CreateBookRequest{
			Title: "Dune", Author: "Frank Herbert", PublicationYear: ptrInt(time.Now().Year() + 11),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 7, tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestCreateDuplicateTitleConflictsPerOwnerOnly(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	_, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 7, createReq("Dune"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "Dune")

	// A different owner may hold the same title.
	_, err = svc.Create(context.Background(), 8, createReq("Dune"))
	require.NoError(t, err)
}

func TestCreateTranslatesUniqueViolationRace(t *testing.T) {
	repo := newFakeBookRepo()
	repo.createErr = apperrors.Repository("books.create", &pgconn.PgError{Code: "23505"})
	svc, _, _ := newTestBookService(repo)

	_, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "Dune")
}

func TestGetScopesToOwner(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	created, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	found, err := svc.Get(context.Background(), 7, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// Another owner's id and a nonexistent id produce identical errors.
	_, crossErr := svc.Get(context.Background(), 8, created.ID)
	_, missingErr := svc.Get(context.Background(), 7, 9999)
	require.Error(t, crossErr)
	require.Error(t, missingErr)
	assert.Equal(t, missingErr.Error(), crossErr.Error())
	assert.True(t, apperrors.IsNotFound(crossErr))
}

func TestListValidation(t *testing.T) {
	svc, _, _ := newTestBookService(newFakeBookRepo())

	_, err := svc.List(context.Background(), 7, book.ListBooksQuery{Page: 1, Limit: 10, SortBy: "password_hash"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.List(context.Background(), 7, book.ListBooksQuery{Page: 0, Limit: 10})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	page, err := svc.List(context.Background(), 7, book.ListBooksQuery{Page: 1, Limit: 10, SortBy: "title", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
}

func TestSearchRequiresTerm(t *testing.T) {
	svc, _, _ := newTestBookService(newFakeBookRepo())

	_, err := svc.Search(context.Background(), 7, "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSearchIsOwnerScoped(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	_, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 8, createReq("Dune Messiah"))
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), 7, "dune")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Dune", results[0].Title)
}

func TestUpdateNeverTouchesOwner(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	created, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), 7, created.ID, book.UpdateBookRequest{
		Title:  ptr("Dune Messiah"),
		Author: ptr("F. Herbert"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, int64(7), updated.OwnerID)

	require.NotNil(t, repo.lastUpdate)
	_, hasOwner := repo.lastUpdate.Get("owner_id")
	assert.False(t, hasOwner)
}

func TestUpdateRejectsEmptyRequest(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	created, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 7, created.ID, book.UpdateBookRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateTitleConflict(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	_, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), 7, createReq("Dune Messiah"))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 7, second.ID, book.UpdateBookRequest{Title: ptr("Dune")})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	// Renaming to the current title is a no-op, not a conflict.
	updated, err := svc.Update(context.Background(), 7, second.ID, book.UpdateBookRequest{Title: ptr("Dune Messiah")})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Title)
}

func TestUpdateIsOwnerScoped(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	created, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 8, created.ID, book.UpdateBookRequest{Title: ptr("Hijacked")})
	require.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestDeleteEnqueuesCoverCleanup(t *testing.T) {
	repo := newFakeBookRepo()
	svc, cleaner, deleter := newTestBookService(repo)

	created, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)
	key := "123-abcd-cover.jpg"
	repo.books[created.ID].CoverKey = &key

	require.NoError(t, svc.Delete(context.Background(), 7, created.ID))
	assert.Equal(t, []string{key}, cleaner.keys)
	assert.Empty(t, deleter.keys)

	_, err = svc.Get(context.Background(), 7, created.ID)
	require.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestDeleteFallsBackToDirectStorageDelete(t *testing.T) {
	repo := newFakeBookRepo()
	svc, cleaner, deleter := newTestBookService(repo)
	cleaner.err = errors.New("redis down")

	created, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)
	key := "123-abcd-cover.jpg"
	repo.books[created.ID].CoverKey = &key

	require.NoError(t, svc.Delete(context.Background(), 7, created.ID))
	assert.Equal(t, []string{key}, deleter.keys)
}

func TestDeleteSucceedsWhenAllCleanupFails(t *testing.T) {
	repo := newFakeBookRepo()
	svc, cleaner, deleter := newTestBookService(repo)
	cleaner.err = errors.New("redis down")
	deleter.err = errors.New("storage down")

	created, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)
	key := "123-abcd-cover.jpg"
	repo.books[created.ID].CoverKey = &key

	// Cleanup failure never fails the deletion itself.
	require.NoError(t, svc.Delete(context.Background(), 7, created.ID))
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	created, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 8, created.ID)
	require.ErrorIs(t, err, book.ErrBookNotFound)

	// Still present for its real owner.
	_, err = svc.Get(context.Background(), 7, created.ID)
	require.NoError(t, err)
}

func TestBulkImport(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	created, err := svc.BulkImport(context.Background(), 7, book.BulkCreateRequest{
		Books: []book.CreateBookRequest{createReq("Dune"), createReq("Dune Messiah")},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, b := range created {
		assert.Equal(t, int64(7), b.OwnerID)
	}
}

func TestBulkImportMixedOptionalFields(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	// One entry with optional fields, one without: every insert row must
	// still name the same columns.
	created, err := svc.BulkImport(context.Background(), 7, book.BulkCreateRequest{
		Books: []book.CreateBookRequest{
			{Title: "Dune", Author: "Frank Herbert", Description: ptr("Spice."), PublicationYear: ptrInt(1965)},
			{Title: "Dune Messiah", Author: "Frank Herbert"},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.NotNil(t, created[0].Description)
	assert.Equal(t, 1965, *created[0].PublicationYear)
	assert.Nil(t, created[1].Description)
	assert.Nil(t, created[1].PublicationYear)
}

func TestUpdateUniqueViolationWithoutTitleChange(t *testing.T) {
	repo := newFakeBookRepo()
	svc, _, _ := newTestBookService(repo)

	created, err := svc.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	// A unique violation can surface on an update that never named the
	// title; the conflict must not assume req.Title is set.
	repo.updateErr = apperrors.Repository("books.update", &pgconn.PgError{Code: "23505"})
	_, err = svc.Update(context.Background(), 7, created.ID, book.UpdateBookRequest{Author: ptr("F. Herbert")})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "Dune")
}

func TestBulkImportRejectsDuplicateWithinRequest(t *testing.T) {
	svc, _, _ := newTestBookService(newFakeBookRepo())

	_, err := svc.BulkImport(context.Background(), 7, book.BulkCreateRequest{
		Books: []book.CreateBookRequest{createReq("Dune"), createReq("Dune")},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestBulkImportRejectsEmpty(t *testing.T) {
	svc, _, _ := newTestBookService(newFakeBookRepo())

	_, err := svc.BulkImport(context.Background(), 7, book.BulkCreateRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func ptr(s string) *string { return &s }

func ptrInt(i int) *int { return &i }
