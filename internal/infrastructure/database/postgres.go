// Package database owns the PostgreSQL connection pool lifecycle and schema
// migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql bridge for goose
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/Vitaee/books-api/internal/config"
	"github.com/Vitaee/books-api/migrations"
)

// PostgresDB wraps the pgx pool together with its configuration.
type PostgresDB struct {
	Pool *pgxpool.Pool

	cfg config.DatabaseConfig
	log zerolog.Logger
}

func New(cfg config.DatabaseConfig, log zerolog.Logger) *PostgresDB {
	return &PostgresDB{cfg: cfg, log: log.With().Str("component", "database").Logger()}
}

// Connect establishes the pool, retrying with exponential backoff. Each
// attempt gets its own timeout and is verified with a ping.
func (db *PostgresDB) Connect(ctx context.Context) error {
	poolCfg, err := pgxpool.ParseConfig(db.cfg.DSN())
	if err != nil {
		return fmt.Errorf("parse database config: %w", err)
	}
	poolCfg.MaxConns = db.cfg.MaxConns
	poolCfg.MinConns = db.cfg.MinConns
	poolCfg.ConnConfig.ConnectTimeout = db.cfg.ConnectTimeout

	var lastErr error
	for attempt := 1; attempt <= db.cfg.MaxRetries; attempt++ {
		connectCtx, cancel := context.WithTimeout(ctx, db.cfg.ConnectTimeout)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
		cancel()

		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr != nil {
				pool.Close()
				err = pingErr
			} else {
				db.Pool = pool
				db.log.Info().Int("attempt", attempt).Msg("connected to postgres")
				return nil
			}
		}
		lastErr = err
		db.log.Warn().Err(err).Int("attempt", attempt).Msg("postgres connection failed")

		if attempt < db.cfg.MaxRetries {
			delay := db.cfg.RetryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("connection cancelled: %w", ctx.Err())
			}
		}
	}
	return fmt.Errorf("connect after %d attempts: %w", db.cfg.MaxRetries, lastErr)
}

// RunMigrations applies the embedded goose migrations. goose needs a
// database/sql handle, so a short-lived stdlib connection is opened beside
// the pool.
func (db *PostgresDB) RunMigrations(ctx context.Context) error {
	sqlDB, err := sql.Open("pgx", db.cfg.DSN())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	db.log.Info().Msg("migrations up to date")
	return nil
}

// HealthCheck pings the pool with a short timeout.
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Pool.Ping(healthCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close drains the pool. Safe to call more than once.
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.Pool = nil
	}
}
