package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is a versioned schema change applied at startup.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations returns the full, ordered migration set.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create glossary table",
			SQL: `
				CREATE TABLE IF NOT EXISTS glossary (
					id UUID PRIMARY KEY,
					term VARCHAR(255) NOT NULL,
					definition TEXT NOT NULL,
					revision INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_glossary_term ON glossary(term);
			`,
		},
		{
			Version:     2,
			Description: "Create glossary_history table",
			SQL: `
				CREATE TABLE IF NOT EXISTS glossary_history (
					id UUID PRIMARY KEY,
					glossary_id UUID NOT NULL REFERENCES glossary(id) ON DELETE CASCADE,
					term VARCHAR(255) NOT NULL,
					definition TEXT NOT NULL,
					revision INTEGER NOT NULL,
					who VARCHAR(255),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_glossary_history_glossary_id
					ON glossary_history(glossary_id, created_at DESC);
			`,
		},
		{
			Version:     3,
			Description: "Create likes table",
			SQL: `
				CREATE TABLE IF NOT EXISTS likes (
					id UUID PRIMARY KEY,
					glossary_id UUID NOT NULL REFERENCES glossary(id) ON DELETE CASCADE,
					who VARCHAR(255),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_likes_glossary_id
					ON likes(glossary_id, created_at DESC);
			`,
		},
	}
}

// Migrate applies all pending migrations, tracking progress in a
// schema_migrations bookkeeping table.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current int
	err = db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read current schema version: %w", err)
	}

	for _, migration := range Migrations() {
		if migration.Version <= current {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to start migration %d: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
			migration.Version, migration.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
