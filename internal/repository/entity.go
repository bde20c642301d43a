package repository

// Entity is the minimal capability every persisted type must provide.
// Rows are mapped by `db` struct tags via pgx.RowToStructByNameLax, so the
// struct fields must cover the configured projection.
type Entity interface {
	TableName() string
}

// SoftDeletable marks entities that carry a deletion timestamp. Soft delete
// and restore are only available through SoftDeleteRepository, so calling
// them on an entity without the marker does not compile.
type SoftDeletable interface {
	Entity
	DeletedAtColumn() string
}
