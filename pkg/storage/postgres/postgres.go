// Package postgres implements the storage.Store interface on PostgreSQL
// using database/sql with the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/glossaryhq/glossary/pkg/observability"
	"github.com/glossaryhq/glossary/pkg/storage"
)

// PostgresStore implements storage.Store backed by PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	mode   storage.HistoryMode
	logger *observability.Logger
}

// NewPostgresStore opens a pooled connection, verifies connectivity, and
// applies pending schema migrations.
func NewPostgresStore(config storage.Config, logger *observability.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", config.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(config.PostgresMaxConns)
	db.SetMaxIdleConns(config.PostgresMinConns)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), config.PostgresTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewWithDB(db, config.HistoryMode, logger), nil
}

// NewWithDB wraps an existing connection pool. Used by tests that inject a
// mock database.
func NewWithDB(db *sql.DB, mode storage.HistoryMode, logger *observability.Logger) *PostgresStore {
	if !mode.Valid() {
		mode = storage.HistoryStrict
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &PostgresStore{db: db, mode: mode, logger: logger}
}

// HealthCheck implements storage.Store.HealthCheck.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres unhealthy: %w", err)
	}
	return nil
}

// DB exposes the underlying pool for stats collection.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Close implements storage.Store.Close.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
