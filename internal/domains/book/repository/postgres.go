package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Vitaee/books-api/internal/domains/book"
	"github.com/Vitaee/books-api/internal/repository"
	"github.com/Vitaee/books-api/pkg/cache"
	"github.com/Vitaee/books-api/pkg/database"
)

const (
	bookCacheTTL = 15 * time.Minute

	// bulkChunkSize keeps each INSERT's placeholder count well under the
	// protocol limit.
	bulkChunkSize = 100
)

// postgresRepository backs book.Repository with the generic repository layer
// and a read-through cache on single-book lookups. List and search queries
// always hit the database.
type postgresRepository struct {
	*repository.SoftDeleteRepository[book.Book]
	pool  *pgxpool.Pool
	cache cache.Cache
	log   zerolog.Logger
}

func NewPostgresRepository(pool *pgxpool.Pool, c cache.Cache, log zerolog.Logger) book.Repository {
	base := repository.New[book.Book](pool, log, book.RepositoryConfig())
	return &postgresRepository{
		SoftDeleteRepository: repository.NewSoftDelete(base),
		pool:                 pool,
		cache:                c,
		log:                  log,
	}
}

// BulkCreate inserts in chunks inside one transaction, so an import either
// lands completely or not at all.
func (r *postgresRepository) BulkCreate(ctx context.Context, values []*repository.Updates) ([]book.Book, error) {
	if len(values) <= bulkChunkSize {
		return r.Repository.BulkCreate(ctx, values)
	}
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) ([]book.Book, error) {
		txRepo := r.Repository.WithTx(tx)
		out := make([]book.Book, 0, len(values))
		for start := 0; start < len(values); start += bulkChunkSize {
			end := start + bulkChunkSize
			if end > len(values) {
				end = len(values)
			}
			chunk, err := txRepo.BulkCreate(ctx, values[start:end])
			if err != nil {
				return nil, err
			}
			out = append(out, chunk...)
		}
		return out, nil
	})
}

func bookCacheKey(id int64) string {
	return fmt.Sprintf("book:%d", id)
}

// bookCacheEntry is the cache encoding of a book. The model's client-facing
// JSON hides cover_key, so caching the model directly would drop it; the
// entry carries it explicitly.
type bookCacheEntry struct {
	Book     book.Book `json:"book"`
	CoverKey *string   `json:"cover_key,omitempty"`
}

func newBookCacheEntry(b *book.Book) bookCacheEntry {
	return bookCacheEntry{Book: *b, CoverKey: b.CoverKey}
}

func (e bookCacheEntry) decode() *book.Book {
	b := e.Book
	b.CoverKey = e.CoverKey
	return &b
}

// FindByIDAndOwner resolves a book only when it belongs to ownerID. Both
// predicates run in one query, so cross-owner ids and unknown ids are the
// same (nil, nil) outcome. A cached row owned by someone else counts as
// absent for the same reason.
func (r *postgresRepository) FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*book.Book, error) {
	key := bookCacheKey(id)
	var cached bookCacheEntry
	if hit, err := r.cache.Get(ctx, key, &cached); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("book cache read failed")
	} else if hit {
		if cached.Book.OwnerID != ownerID {
			return nil, nil
		}
		return cached.decode(), nil
	}

	found, err := r.FindOne(ctx, repository.NewFilter().Eq("id", id).Eq("owner_id", ownerID))
	if err != nil || found == nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, newBookCacheEntry(found), bookCacheTTL); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("book cache write failed")
	}
	return found, nil
}

func (r *postgresRepository) FindByAuthorForOwner(ctx context.Context, ownerID int64, author string) ([]book.Book, error) {
	filter := repository.NewFilter().Eq("owner_id", ownerID).ILikeAny(author, "author")
	return r.Find(ctx, filter, &repository.FindOptions{SortBy: "title"})
}

// SearchByOwner matches the term case-insensitively against title or author
// within one owner's library.
func (r *postgresRepository) SearchByOwner(ctx context.Context, ownerID int64, term string) ([]book.Book, error) {
	filter := repository.NewFilter().Eq("owner_id", ownerID).ILikeAny(term, "title", "author")
	return r.Find(ctx, filter, &repository.FindOptions{SortBy: "title"})
}

func (r *postgresRepository) GetPaginatedByOwner(ctx context.Context, ownerID int64, opts repository.PageOptions) (*repository.Page[book.Book], error) {
	return r.GetPaginated(ctx, opts, repository.NewFilter().Eq("owner_id", ownerID))
}

// TitleExistsForOwner is a case-sensitive exact match, mirroring the unique
// index that ultimately enforces the constraint.
func (r *postgresRepository) TitleExistsForOwner(ctx context.Context, ownerID int64, title string) (bool, error) {
	return r.ExistsWhere(ctx, repository.NewFilter().Eq("owner_id", ownerID).Eq("title", title))
}

func (r *postgresRepository) UpdateAndReturn(ctx context.Context, id int64, values *repository.Updates) (*book.Book, error) {
	updated, err := r.Repository.UpdateAndReturn(ctx, id, values)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return updated, nil
}

func (r *postgresRepository) SoftDelete(ctx context.Context, id int64) (int64, error) {
	affected, err := r.SoftDeleteRepository.SoftDelete(ctx, id)
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		r.invalidate(ctx, id)
	}
	return affected, nil
}

func (r *postgresRepository) invalidate(ctx context.Context, id int64) {
	if err := r.cache.Delete(ctx, bookCacheKey(id)); err != nil {
		r.log.Warn().Err(err).Int64("book_id", id).Msg("book cache invalidation failed")
	}
}
