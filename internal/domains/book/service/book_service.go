package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Vitaee/books-api/internal/domains/book"
	"github.com/Vitaee/books-api/internal/repository"
	"github.com/Vitaee/books-api/internal/shared/apperrors"
)

// CoverCleaner removes a stored cover object. The queue client is the
// primary implementation; the storage layer serves as a synchronous
// fallback when enqueueing fails.
type CoverCleaner interface {
	EnqueueDeleteCover(ctx context.Context, key string) error
}

// CoverDeleter is the synchronous fallback path used when the queue is
// unavailable.
type CoverDeleter interface {
	Delete(ctx context.Context, key string) error
}

// sortableBookColumns limits the pagination sort surface to indexed or
// cheap columns.
var sortableBookColumns = map[string]bool{
	"title":            true,
	"author":           true,
	"publication_year": true,
	"created_at":       true,
	"updated_at":       true,
}

type bookService struct {
	repo    book.Repository
	cleanup CoverCleaner
	storage CoverDeleter
	log     zerolog.Logger
}

func NewBookService(repo book.Repository, cleanup CoverCleaner, storage CoverDeleter, log zerolog.Logger) book.Service {
	return &bookService{repo: repo, cleanup: cleanup, storage: storage, log: log}
}

func (s *bookService) Create(ctx context.Context, ownerID int64, req book.CreateBookRequest) (*book.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	exists, err := s.repo.TitleExistsForOwner(ctx, ownerID, req.Title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, book.ErrDuplicateTitle(req.Title)
	}

	created, err := s.repo.Create(ctx, buildCreate(ownerID, req))
	if err != nil {
		// A concurrent insert can still trip the unique index after the
		// pre-check passed.
		if repository.IsUniqueViolation(err) {
			return nil, book.ErrDuplicateTitle(req.Title)
		}
		return nil, err
	}

	s.log.Info().
		Int64("owner_id", ownerID).
		Int64("book_id", created.ID).
		Str("title", created.Title).
		Msg("book_created")
	return created, nil
}

func (s *bookService) BulkImport(ctx context.Context, ownerID int64, req book.BulkCreateRequest) ([]book.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	seen := make(map[string]bool, len(req.Books))
	values := make([]*repository.Updates, 0, len(req.Books))
	for _, b := range req.Books {
		if seen[b.Title] {
			return nil, book.ErrDuplicateTitle(b.Title)
		}
		seen[b.Title] = true

		exists, err := s.repo.TitleExistsForOwner(ctx, ownerID, b.Title)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, book.ErrDuplicateTitle(b.Title)
		}
		values = append(values, buildCreate(ownerID, b))
	}

	created, err := s.repo.BulkCreate(ctx, values)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("one of the imported titles already exists in your library")
		}
		return nil, err
	}

	s.log.Info().
		Int64("owner_id", ownerID).
		Int("count", len(created)).
		Msg("books_imported")
	return created, nil
}

func (s *bookService) Get(ctx context.Context, ownerID, bookID int64) (*book.Book, error) {
	found, err := s.repo.FindByIDAndOwner(ctx, bookID, ownerID)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, book.ErrBookNotFound
	}
	return found, nil
}

func (s *bookService) List(ctx context.Context, ownerID int64, q book.ListBooksQuery) (*repository.Page[book.Book], error) {
	if q.SortBy != "" && !sortableBookColumns[q.SortBy] {
		return nil, apperrors.Validation("cannot sort by %q", q.SortBy)
	}
	opts := repository.PageOptions{
		Page:      q.Page,
		Limit:     q.Limit,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	return s.repo.GetPaginatedByOwner(ctx, ownerID, opts)
}

func (s *bookService) Search(ctx context.Context, ownerID int64, term string) ([]book.Book, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.Validation("search term must not be empty")
	}
	return s.repo.SearchByOwner(ctx, ownerID, term)
}

func (s *bookService) ByAuthor(ctx context.Context, ownerID int64, author string) ([]book.Book, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, apperrors.Validation("author must not be empty")
	}
	return s.repo.FindByAuthorForOwner(ctx, ownerID, author)
}

// Update applies a partial update. The owner column is never part of the
// update set, so ownership cannot change regardless of request content.
func (s *bookService) Update(ctx context.Context, ownerID, bookID int64, req book.UpdateBookRequest) (*book.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}
	if req.Empty() {
		return nil, book.ErrEmptyUpdate
	}

	current, err := s.Get(ctx, ownerID, bookID)
	if err != nil {
		return nil, err
	}

	values := repository.NewUpdates()
	if req.Title != nil && *req.Title != current.Title {
		exists, err := s.repo.TitleExistsForOwner(ctx, ownerID, *req.Title)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, book.ErrDuplicateTitle(*req.Title)
		}
		values.Set("title", *req.Title)
	}
	if req.Author != nil {
		values.Set("author", *req.Author)
	}
	if req.Description != nil {
		values.Set("description", *req.Description)
	}
	if req.PublicationYear != nil {
		values.Set("publication_year", *req.PublicationYear)
	}
	if values.Len() == 0 {
		// Every named field already holds the requested value.
		return current, nil
	}

	updated, err := s.repo.UpdateAndReturn(ctx, bookID, values)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			// The title may not be part of this update; fall back to the
			// current one for the message.
			title := current.Title
			if req.Title != nil {
				title = *req.Title
			}
			return nil, book.ErrDuplicateTitle(title)
		}
		return nil, err
	}
	if updated == nil {
		// Deleted between the ownership check and the update.
		return nil, book.ErrBookNotFound
	}
	return updated, nil
}

// Delete removes the book and then disposes of its cover object. Cover
// cleanup is best effort and never fails the deletion.
func (s *bookService) Delete(ctx context.Context, ownerID, bookID int64) error {
	current, err := s.Get(ctx, ownerID, bookID)
	if err != nil {
		return err
	}

	affected, err := s.repo.SoftDelete(ctx, bookID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return book.ErrBookNotFound
	}

	if current.CoverKey != nil {
		s.disposeCover(ctx, bookID, *current.CoverKey)
	}

	s.log.Info().
		Int64("owner_id", ownerID).
		Int64("book_id", bookID).
		Msg("book_deleted")
	return nil
}

// disposeCover enqueues cover deletion, falling back to a direct storage
// delete when the queue is down. Failures are logged and swallowed.
func (s *bookService) disposeCover(ctx context.Context, bookID int64, key string) {
	err := s.cleanup.EnqueueDeleteCover(ctx, key)
	if err == nil {
		return
	}
	s.log.Warn().Err(err).Int64("book_id", bookID).Str("key", key).
		Msg("cover cleanup enqueue failed, deleting directly")
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Error().Err(err).Int64("book_id", bookID).Str("key", key).
			Msg("orphaned cover object left in storage")
	}
}

// buildCreate always names the optional columns, passing the pointers
// straight through (nil renders as NULL). Bulk inserts require an identical
// column set on every entry, so absent may never mean omitted here.
func buildCreate(ownerID int64, req book.CreateBookRequest) *repository.Updates {
	return repository.NewUpdates().
		Set("title", req.Title).
		Set("author", req.Author).
		Set("description", req.Description).
		Set("publication_year", req.PublicationYear).
		Set("owner_id", ownerID)
}
