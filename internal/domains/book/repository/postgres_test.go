package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vitaee/books-api/internal/domains/book"
)

// memoryCache serializes through JSON exactly like the Redis adapter, so
// tests catch fields lost to the model's client-facing JSON tags.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }

func sampleBook() *book.Book {
	key := "1700000000-abcd1234-cover.jpg"
	url := "http://storage.local/covers/" + key
	return &book.Book{
		ID:       42,
		Title:    "Dune",
		Author:   "Frank Herbert",
		CoverURL: &url,
		CoverKey: &key,
		OwnerID:  7,
	}
}

func TestBookCacheEntryPreservesCoverKey(t *testing.T) {
	b := sampleBook()

	raw, err := json.Marshal(newBookCacheEntry(b))
	require.NoError(t, err)

	var entry bookCacheEntry
	require.NoError(t, json.Unmarshal(raw, &entry))

	decoded := entry.decode()
	require.NotNil(t, decoded.CoverKey)
	assert.Equal(t, *b.CoverKey, *decoded.CoverKey)
	require.NotNil(t, decoded.CoverURL)
	assert.Equal(t, b.OwnerID, decoded.OwnerID)
}

func TestFindByIDAndOwnerCacheHitKeepsCoverKey(t *testing.T) {
	c := newMemoryCache()
	r := &postgresRepository{cache: c, log: zerolog.Nop()}

	b := sampleBook()
	require.NoError(t, c.Set(context.Background(), bookCacheKey(b.ID), newBookCacheEntry(b), time.Minute))

	found, err := r.FindByIDAndOwner(context.Background(), b.ID, b.OwnerID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.CoverKey)
	assert.Equal(t, *b.CoverKey, *found.CoverKey)
}

func TestFindByIDAndOwnerCacheHitWrongOwnerIsAbsent(t *testing.T) {
	c := newMemoryCache()
	r := &postgresRepository{cache: c, log: zerolog.Nop()}

	b := sampleBook()
	require.NoError(t, c.Set(context.Background(), bookCacheKey(b.ID), newBookCacheEntry(b), time.Minute))

	found, err := r.FindByIDAndOwner(context.Background(), b.ID, b.OwnerID+1)
	require.NoError(t, err)
	assert.Nil(t, found)
}
