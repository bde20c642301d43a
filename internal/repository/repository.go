// Package repository implements the entity-agnostic data-access layer all
// domain services build on: CRUD, pagination, existence and count primitives
// over pgx, parameterized by entity type.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/Vitaee/books-api/internal/shared/apperrors"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so the same repository
// code runs inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config declares the closed column sets a repository may touch.
type Config struct {
	// Columns is the default projection. Sensitive columns (e.g. credential
	// hashes) are simply left out and fetched by dedicated queries.
	Columns []string
	// Writable lists columns accepted by Create/Update builders.
	Writable []string
	// Filterable lists columns usable in filters, field lookups and sorting.
	Filterable []string
}

// Repository provides generic CRUD over one table. The zero id column is
// assumed to be `id` (bigserial primary key).
type Repository[T Entity] struct {
	db         Querier
	log        zerolog.Logger
	table      string
	projection string
	writable   map[string]bool
	filterable map[string]bool
	deletedCol string // empty when T is not soft-deletable
}

// New builds a repository for T. The logger is injected per component rather
// than pulled from a global.
func New[T Entity](db Querier, log zerolog.Logger, cfg Config) *Repository[T] {
	var zero T
	r := &Repository[T]{
		db:         db,
		log:        log.With().Str("table", zero.TableName()).Logger(),
		table:      zero.TableName(),
		projection: strings.Join(cfg.Columns, ", "),
		writable:   toSet(cfg.Writable),
		filterable: toSet(cfg.Filterable),
	}
	if sd, ok := any(zero).(SoftDeletable); ok {
		r.deletedCol = sd.DeletedAtColumn()
	}
	return r
}

// WithTx returns a copy of the repository bound to the given transaction.
// Use together with database.WithTransaction for multi-statement atomicity.
func (r *Repository[T]) WithTx(tx pgx.Tx) *Repository[T] {
	cp := *r
	cp.db = tx
	return &cp
}

// GetByID fetches one row by primary key. Absence is (nil, nil), not an
// error; only infrastructure failures are reported.
func (r *Repository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1%s", r.projection, r.table, r.aliveClause())
	return r.queryOne(ctx, "getById", query, id)
}

// GetAll returns every row matching the optional filter, ordered by id.
func (r *Repository[T]) GetAll(ctx context.Context, filter *Filter) ([]T, error) {
	where, args, err := r.whereSQL(filter, 1)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id ASC", r.projection, r.table, where)
	return r.queryMany(ctx, "getAll", query, args...)
}

// Create inserts the supplied columns and returns the stored row, with
// generated id and timestamps populated.
func (r *Repository[T]) Create(ctx context.Context, values *Updates) (*T, error) {
	cols, args, err := values.render(r.writable)
	if err != nil {
		return nil, err
	}
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		r.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), r.projection,
	)
	item, err := r.queryOne(ctx, "create", query, args...)
	if err != nil {
		return nil, err
	}
	if item == nil {
		// INSERT ... RETURNING always yields a row; reaching here means the
		// driver misbehaved.
		return nil, apperrors.Repository(r.op("create"), pgx.ErrNoRows)
	}
	return item, nil
}

// BulkCreate inserts several rows in one statement. All entries must assign
// the same column set. Empty input is a no-op yielding an empty slice.
func (r *Repository[T]) BulkCreate(ctx context.Context, values []*Updates) ([]T, error) {
	if len(values) == 0 {
		return []T{}, nil
	}
	cols, args, err := values[0].render(r.writable)
	if err != nil {
		return nil, err
	}
	rowsSQL := make([]string, 0, len(values))
	allArgs := make([]any, 0, len(values)*len(cols))
	allArgs = append(allArgs, args...)
	idx := 1
	for i, v := range values {
		if i > 0 {
			vCols, vArgs, err := v.render(r.writable)
			if err != nil {
				return nil, err
			}
			if !equalColumns(cols, vCols) {
				return nil, apperrors.Validation("bulk create requires identical fields on every entry")
			}
			allArgs = append(allArgs, vArgs...)
		}
		ph := make([]string, len(cols))
		for j := range cols {
			ph[j] = fmt.Sprintf("$%d", idx)
			idx++
		}
		rowsSQL = append(rowsSQL, "("+strings.Join(ph, ", ")+")")
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s RETURNING %s",
		r.table, strings.Join(cols, ", "), strings.Join(rowsSQL, ", "), r.projection,
	)
	return r.queryMany(ctx, "bulkCreate", query, allArgs...)
}

// Update applies a partial update by id and reports how many rows matched.
// A missing id is zero matched rows, not an error.
func (r *Repository[T]) Update(ctx context.Context, id int64, values *Updates) (int64, error) {
	return r.updateWhere(ctx, "update", "id", id, values)
}

// UpdateByField applies a partial update to every row where field = value.
func (r *Repository[T]) UpdateByField(ctx context.Context, field string, value any, values *Updates) (int64, error) {
	if !r.filterable[field] {
		return 0, apperrors.Validation("field %q is not filterable", field)
	}
	return r.updateWhere(ctx, "updateByField", field, value, values)
}

func (r *Repository[T]) updateWhere(ctx context.Context, op, column string, match any, values *Updates) (int64, error) {
	cols, args, err := values.render(r.writable)
	if err != nil {
		return 0, err
	}
	assignments := make([]string, len(cols))
	for i, c := range cols {
		assignments[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	// Keep updated_at honest on every write path.
	if !containsColumn(cols, "updated_at") {
		assignments = append(assignments, "updated_at = now()")
	}
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d%s",
		r.table, strings.Join(assignments, ", "), column, len(cols)+1, r.aliveClause(),
	)
	args = append(args, match)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, apperrors.Repository(r.op(op), err)
	}
	return tag.RowsAffected(), nil
}

// UpdateAndReturn applies a partial update and re-fetches the row. The two
// steps are not atomic: a concurrent delete in between yields (nil, nil),
// which callers treat as absent rather than as a failure.
func (r *Repository[T]) UpdateAndReturn(ctx context.Context, id int64, values *Updates) (*T, error) {
	if _, err := r.Update(ctx, id, values); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a row by id and reports the affected count.
func (r *Repository[T]) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.table), id)
	if err != nil {
		return 0, apperrors.Repository(r.op("delete"), err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByField removes every row where field = value.
func (r *Repository[T]) DeleteByField(ctx context.Context, field string, value any) (int64, error) {
	if !r.filterable[field] {
		return 0, apperrors.Validation("field %q is not filterable", field)
	}
	tag, err := r.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", r.table, field), value)
	if err != nil {
		return 0, apperrors.Repository(r.op("deleteByField"), err)
	}
	return tag.RowsAffected(), nil
}

// FindOptions tunes field lookups.
type FindOptions struct {
	SortBy    string
	SortOrder string
	Limit     int
}

// FindByField returns every row where field = value.
func (r *Repository[T]) FindByField(ctx context.Context, field string, value any, opts *FindOptions) ([]T, error) {
	if !r.filterable[field] {
		return nil, apperrors.Validation("field %q is not filterable", field)
	}
	order := "id ASC"
	limit := ""
	if opts != nil {
		if opts.SortBy != "" {
			if !r.filterable[opts.SortBy] {
				return nil, apperrors.Validation("field %q is not sortable", opts.SortBy)
			}
			order = PageOptions{SortBy: opts.SortBy, SortOrder: opts.SortOrder}.orderSQL("id")
		}
		if opts.Limit > 0 {
			limit = fmt.Sprintf(" LIMIT %d", opts.Limit)
		}
	}
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1%s ORDER BY %s%s",
		r.projection, r.table, field, r.aliveClause(), order, limit,
	)
	return r.queryMany(ctx, "findByField", query, value)
}

// Find returns every row matching the filter.
func (r *Repository[T]) Find(ctx context.Context, filter *Filter, opts *FindOptions) ([]T, error) {
	where, args, err := r.whereSQL(filter, 1)
	if err != nil {
		return nil, err
	}
	order := "id ASC"
	limit := ""
	if opts != nil {
		if opts.SortBy != "" {
			if !r.filterable[opts.SortBy] {
				return nil, apperrors.Validation("field %q is not sortable", opts.SortBy)
			}
			order = PageOptions{SortBy: opts.SortBy, SortOrder: opts.SortOrder}.orderSQL("id")
		}
		if opts.Limit > 0 {
			limit = fmt.Sprintf(" LIMIT %d", opts.Limit)
		}
	}
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s%s", r.projection, r.table, where, order, limit)
	return r.queryMany(ctx, "find", query, args...)
}

// FindOne returns the first row matching the filter, or (nil, nil). All
// predicates run in a single query, so existence cannot leak through
// fetch-then-check response differences.
func (r *Repository[T]) FindOne(ctx context.Context, filter *Filter) (*T, error) {
	where, args, err := r.whereSQL(filter, 1)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s%s LIMIT 1", r.projection, r.table, where)
	return r.queryOne(ctx, "findOne", query, args...)
}

// ExistsWhere reports whether any row matches the filter.
func (r *Repository[T]) ExistsWhere(ctx context.Context, filter *Filter) (bool, error) {
	where, args, err := r.whereSQL(filter, 1)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s%s)", r.table, where)
	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, apperrors.Repository(r.op("existsWhere"), err)
	}
	return exists, nil
}

// FindOneByField returns the first row where field = value, or (nil, nil).
func (r *Repository[T]) FindOneByField(ctx context.Context, field string, value any) (*T, error) {
	if !r.filterable[field] {
		return nil, apperrors.Validation("field %q is not filterable", field)
	}
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1%s LIMIT 1",
		r.projection, r.table, field, r.aliveClause(),
	)
	return r.queryOne(ctx, "findOneByField", query, value)
}

// Exists reports whether any row has field = value.
func (r *Repository[T]) Exists(ctx context.Context, field string, value any) (bool, error) {
	if !r.filterable[field] {
		return false, apperrors.Validation("field %q is not filterable", field)
	}
	query := fmt.Sprintf(
		"SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1%s)",
		r.table, field, r.aliveClause(),
	)
	var exists bool
	if err := r.db.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return false, apperrors.Repository(r.op("exists"), err)
	}
	return exists, nil
}

// Count returns the number of rows matching the optional filter.
func (r *Repository[T]) Count(ctx context.Context, filter *Filter) (int, error) {
	where, args, err := r.whereSQL(filter, 1)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.table, where)
	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperrors.Repository(r.op("count"), err)
	}
	return total, nil
}

// GetPaginated returns one window of the filtered, ordered result set. The
// window bounds are validated before any query runs.
func (r *Repository[T]) GetPaginated(ctx context.Context, opts PageOptions, filter *Filter) (*Page[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.SortBy != "" && !r.filterable[opts.SortBy] {
		return nil, apperrors.Validation("field %q is not sortable", opts.SortBy)
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return NewPage[T](nil, opts.Page, opts.Limit, 0), nil
	}

	where, args, err := r.whereSQL(filter, 1)
	if err != nil {
		return nil, err
	}
	n := len(args)
	query := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		r.projection, r.table, where, opts.orderSQL("id"), n+1, n+2,
	)
	args = append(args, opts.Limit, opts.Offset())
	items, err := r.queryMany(ctx, "getPaginated", query, args...)
	if err != nil {
		return nil, err
	}
	return NewPage(items, opts.Page, opts.Limit, total), nil
}

// helpers

func (r *Repository[T]) op(name string) string {
	return r.table + "." + name
}

// aliveClause appends the soft-delete guard for reads and updates.
func (r *Repository[T]) aliveClause() string {
	if r.deletedCol == "" {
		return ""
	}
	return fmt.Sprintf(" AND %s IS NULL", r.deletedCol)
}

// whereSQL renders the full WHERE clause including the soft-delete guard.
func (r *Repository[T]) whereSQL(filter *Filter, startIdx int) (string, []any, error) {
	frag, args, err := filter.render(r.filterable, startIdx)
	if err != nil {
		return "", nil, err
	}
	clauses := make([]string, 0, 2)
	if frag != "" {
		clauses = append(clauses, frag)
	}
	if r.deletedCol != "" {
		clauses = append(clauses, r.deletedCol+" IS NULL")
	}
	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func (r *Repository[T]) queryOne(ctx context.Context, op, query string, args ...any) (*T, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Repository(r.op(op), err)
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Repository(r.op(op), err)
	}
	return &item, nil
}

func (r *Repository[T]) queryMany(ctx context.Context, op, query string, args ...any) ([]T, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Repository(r.op(op), err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, apperrors.Repository(r.op(op), err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// IsUniqueViolation reports whether err stems from a violated unique
// constraint (SQLSTATE 23505), unwrapping through RepositoryError.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// UniqueConstraint returns the violated constraint name, when available.
func UniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}
	return ""
}

func toSet(cols []string) map[string]bool {
	s := make(map[string]bool, len(cols))
	for _, c := range cols {
		s[c] = true
	}
	return s
}

func containsColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
