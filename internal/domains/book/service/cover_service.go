package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vitaee/books-api/internal/domains/book"
	"github.com/Vitaee/books-api/internal/infrastructure/storage"
	"github.com/Vitaee/books-api/internal/repository"
	"github.com/Vitaee/books-api/internal/shared/apperrors"
)

const (
	maxCoverSize      = 5 << 20
	presignedCoverTTL = 15 * time.Minute
)

var allowedCoverTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// CoverStorage is the object store surface the cover service needs.
// *storage.MinIOStorage satisfies it.
type CoverStorage interface {
	Upload(ctx context.Context, data []byte, originalName string, opts storage.UploadOptions) (*storage.UploadResult, error)
	Delete(ctx context.Context, key string) error
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type coverService struct {
	repo    book.Repository
	storage CoverStorage
	cleanup CoverCleaner
	log     zerolog.Logger
}

func NewCoverService(repo book.Repository, st CoverStorage, cleanup CoverCleaner, log zerolog.Logger) book.CoverService {
	return &coverService{repo: repo, storage: st, cleanup: cleanup, log: log}
}

// Upload stores a new cover image and records its location on the book.
// Replacing an existing cover disposes of the old object best effort.
func (s *coverService) Upload(ctx context.Context, ownerID, bookID int64, filename, contentType string, data []byte) (*book.Book, error) {
	if len(data) == 0 {
		return nil, apperrors.Validation("cover file must not be empty")
	}
	if len(data) > maxCoverSize {
		return nil, apperrors.Validation("cover file exceeds the %d MB limit", maxCoverSize>>20)
	}
	if !allowedCoverTypes[contentType] {
		return nil, apperrors.Validation("unsupported cover type %q, expected jpeg, png or webp", contentType)
	}

	current, err := s.mustGet(ctx, ownerID, bookID)
	if err != nil {
		return nil, err
	}

	result, err := s.storage.Upload(ctx, data, filename, storage.UploadOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"owner-id": fmt.Sprintf("%d", ownerID),
			"book-id":  fmt.Sprintf("%d", bookID),
		},
	})
	if err != nil {
		return nil, err
	}

	values := repository.NewUpdates().
		Set("cover_url", result.URL).
		Set("cover_key", result.Key)
	updated, err := s.repo.UpdateAndReturn(ctx, bookID, values)
	if err != nil {
		// The object is already stored; do not leak it.
		s.disposeObject(ctx, bookID, result.Key)
		return nil, err
	}
	if updated == nil {
		s.disposeObject(ctx, bookID, result.Key)
		return nil, book.ErrBookNotFound
	}

	if current.CoverKey != nil && *current.CoverKey != result.Key {
		s.disposeObject(ctx, bookID, *current.CoverKey)
	}

	s.log.Info().
		Int64("owner_id", ownerID).
		Int64("book_id", bookID).
		Str("key", result.Key).
		Msg("cover_uploaded")
	return updated, nil
}

// Remove clears the cover columns and disposes of the stored object.
func (s *coverService) Remove(ctx context.Context, ownerID, bookID int64) (*book.Book, error) {
	current, err := s.mustGet(ctx, ownerID, bookID)
	if err != nil {
		return nil, err
	}
	if current.CoverKey == nil {
		return nil, book.ErrNoCover
	}

	values := repository.NewUpdates().
		Set("cover_url", nil).
		Set("cover_key", nil)
	updated, err := s.repo.UpdateAndReturn(ctx, bookID, values)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, book.ErrBookNotFound
	}

	s.disposeObject(ctx, bookID, *current.CoverKey)
	return updated, nil
}

// PresignURL returns a short-lived direct download link for the cover.
func (s *coverService) PresignURL(ctx context.Context, ownerID, bookID int64) (string, error) {
	current, err := s.mustGet(ctx, ownerID, bookID)
	if err != nil {
		return "", err
	}
	if current.CoverKey == nil {
		return "", book.ErrNoCover
	}
	return s.storage.Presign(ctx, *current.CoverKey, presignedCoverTTL)
}

func (s *coverService) mustGet(ctx context.Context, ownerID, bookID int64) (*book.Book, error) {
	found, err := s.repo.FindByIDAndOwner(ctx, bookID, ownerID)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, book.ErrBookNotFound
	}
	return found, nil
}

func (s *coverService) disposeObject(ctx context.Context, bookID int64, key string) {
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
