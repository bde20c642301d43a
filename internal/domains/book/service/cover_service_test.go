package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vitaee/books-api/internal/domains/book"
	"github.com/Vitaee/books-api/internal/infrastructure/storage"
	"github.com/Vitaee/books-api/internal/shared/apperrors"
)

type fakeStorage struct {
	objects map[string][]byte
	nextID  int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, data []byte, originalName string, _ storage.UploadOptions) (*storage.UploadResult, error) {
	f.nextID++
	key := fmt.Sprintf("%d-%s", f.nextID, originalName)
	f.objects[key] = data
	return &storage.UploadResult{
		Key:  key,
		URL:  "http://storage.local/covers/" + key,
		Size: int64(len(data)),
	}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Presign(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", apperrors.Upstream("storage.presign", fmt.Errorf("no such key %q", key))
	}
	return "http://storage.local/signed/" + key, nil
}

func newTestCoverService(repo book.Repository) (book.CoverService, *fakeStorage, *fakeCleaner) {
	st := newFakeStorage()
	cleaner := &fakeCleaner{}
	return NewCoverService(repo, st, cleaner, zerolog.Nop()), st, cleaner
}

func TestUploadCover(t *testing.T) {
	repo := newFakeBookRepo()
	books, _, _ := newTestBookService(repo)
	covers, st, _ := newTestCoverService(repo)

	created, err := books.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	updated, err := covers.Upload(context.Background(), 7, created.ID, "cover.jpg", "image/jpeg", []byte("image-bytes"))
	require.NoError(t, err)
	require.NotNil(t, updated.CoverURL)
	require.NotNil(t, updated.CoverKey)
	assert.Contains(t, *updated.CoverURL, *updated.CoverKey)
	assert.Len(t, st.objects, 1)
}

func TestUploadCoverValidation(t *testing.T) {
	repo := newFakeBookRepo()
	covers, _, _ := newTestCoverService(repo)

	tests := []struct {
		name        string
		contentType string
		data        []byte
	}{
		{"empty file", "image/jpeg", nil},
		{"wrong type", "application/pdf", []byte("x")},
		{"oversized", "image/png", make([]byte, maxCoverSize+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := covers.Upload(context.Background(), 7, 1, "f", tt.contentType, tt.data)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestUploadCoverIsOwnerScoped(t *testing.T) {
	repo := newFakeBookRepo()
	books, _, _ := newTestBookService(repo)
	covers, st, _ := newTestCoverService(repo)

	created, err := books.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	_, err = covers.Upload(context.Background(), 8, created.ID, "cover.jpg", "image/jpeg", []byte("x"))
	require.ErrorIs(t, err, book.ErrBookNotFound)
	assert.Empty(t, st.objects)
}

func TestUploadCoverReplacementDisposesOldObject(t *testing.T) {
	repo := newFakeBookRepo()
	books, _, _ := newTestBookService(repo)
	covers, _, cleaner := newTestCoverService(repo)

	created, err := books.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	first, err := covers.Upload(context.Background(), 7, created.ID, "a.jpg", "image/jpeg", []byte("a"))
	require.NoError(t, err)
	_, err = covers.Upload(context.Background(), 7, created.ID, "b.jpg", "image/jpeg", []byte("b"))
	require.NoError(t, err)

	assert.Equal(t, []string{*first.CoverKey}, cleaner.keys)
}

func TestRemoveCover(t *testing.T) {
	repo := newFakeBookRepo()
	books, _, _ := newTestBookService(repo)
	covers, _, cleaner := newTestCoverService(repo)

	created, err := books.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	uploaded, err := covers.Upload(context.Background(), 7, created.ID, "a.jpg", "image/jpeg", []byte("a"))
	require.NoError(t, err)

	cleared, err := covers.Remove(context.Background(), 7, created.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.CoverURL)
	assert.Nil(t, cleared.CoverKey)
	assert.Equal(t, []string{*uploaded.CoverKey}, cleaner.keys)
}

func TestRemoveCoverWithoutCover(t *testing.T) {
	repo := newFakeBookRepo()
	books, _, _ := newTestBookService(repo)
	covers, _, _ := newTestCoverService(repo)

	created, err := books.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	_, err = covers.Remove(context.Background(), 7, created.ID)
	require.ErrorIs(t, err, book.ErrNoCover)
}

func TestPresignURL(t *testing.T) {
	repo := newFakeBookRepo()
	books, _, _ := newTestBookService(repo)
	covers, _, _ := newTestCoverService(repo)

	created, err := books.Create(context.Background(), 7, createReq("Dune"))
	require.NoError(t, err)

	_, err = covers.PresignURL(context.Background(), 7, created.ID)
	require.ErrorIs(t, err, book.ErrNoCover)

	_, err = covers.Upload(context.Background(), 7, created.ID, "a.jpg", "image/jpeg", []byte("a"))
	require.NoError(t, err)

	url, err := covers.PresignURL(context.Background(), 7, created.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "signed")
}
