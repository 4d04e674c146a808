package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/glossaryhq/glossary/pkg/glossary"
	"github.com/glossaryhq/glossary/pkg/storage"
)

const entryColumns = "id, term, definition, revision, created_at, updated_at"

// CreateEntry implements storage.Store.CreateEntry. In strict mode the
// entry insert and the history append commit atomically; in best-effort
// mode a failed history append is logged and the create still succeeds.
func (s *PostgresStore) CreateEntry(ctx context.Context, entry *glossary.Entry, who *string) error {
	const insertEntry = `
		INSERT INTO glossary (id, term, definition, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if s.mode == storage.HistoryBestEffort {
		if _, err := s.db.ExecContext(ctx, insertEntry,
			entry.ID, entry.Term, entry.Definition, entry.Revision, entry.CreatedAt, entry.UpdatedAt,
		); err != nil {
			return glossary.MapStorageError("create entry", err)
		}
		s.appendHistoryBestEffort(ctx, entry, who)
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return glossary.MapStorageError("create entry", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertEntry,
		entry.ID, entry.Term, entry.Definition, entry.Revision, entry.CreatedAt, entry.UpdatedAt,
	); err != nil {
		return glossary.MapStorageError("create entry", err)
	}

	if err := appendHistoryTx(ctx, tx, glossary.NewHistoryRecord(entry, who)); err != nil {
		return glossary.MapStorageError("create entry history", err)
	}

	if err := tx.Commit(); err != nil {
		return glossary.MapStorageError("create entry", err)
	}
	return nil
}

// GetEntry implements storage.Store.GetEntry.
func (s *PostgresStore) GetEntry(ctx context.Context, id string) (*glossary.Entry, error) {
	query := fmt.Sprintf("SELECT %s FROM glossary WHERE id = $1", entryColumns)

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, glossary.MapStorageError("get entry", err)
	}
	return entry, nil
}

// ListEntries implements storage.Store.ListEntries.
func (s *PostgresStore) ListEntries(ctx context.Context) ([]*glossary.Entry, error) {
	query := fmt.Sprintf("SELECT %s FROM glossary ORDER BY term ASC", entryColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, glossary.MapStorageError("list entries", err)
	}
	defer rows.Close()

	return collectEntries(rows, "list entries")
}

// UpdateEntry implements storage.Store.UpdateEntry. The revision bump
// happens in SQL so concurrent updates each get a distinct revision.
func (s *PostgresStore) UpdateEntry(ctx context.Context, id, term, definition string, who *string) (*glossary.Entry, error) {
	updateEntry := fmt.Sprintf(`
		UPDATE glossary
		SET term = $1, definition = $2, revision = revision + 1, updated_at = NOW()
		WHERE id = $3
		RETURNING %s
	`, entryColumns)

	if s.mode == storage.HistoryBestEffort {
		entry, err := scanEntry(s.db.QueryRowContext(ctx, updateEntry, term, definition, id))
		if err != nil {
			return nil, glossary.MapStorageError("update entry", err)
		}
		s.appendHistoryBestEffort(ctx, entry, who)
		return entry, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, glossary.MapStorageError("update entry", err)
	}
	defer tx.Rollback()

	entry, err := scanEntry(tx.QueryRowContext(ctx, updateEntry, term, definition, id))
	if err != nil {
		return nil, glossary.MapStorageError("update entry", err)
	}

	if err := appendHistoryTx(ctx, tx, glossary.NewHistoryRecord(entry, who)); err != nil {
		return nil, glossary.MapStorageError("update entry history", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, glossary.MapStorageError("update entry", err)
	}
	return entry, nil
}

// DeleteEntry implements storage.Store.DeleteEntry. History and likes are
// removed by the ON DELETE CASCADE constraints; deleting a missing id
// affects zero rows and is still a success.
func (s *PostgresStore) DeleteEntry(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM glossary WHERE id = $1", id); err != nil {
		return glossary.MapStorageError("delete entry", err)
	}
	return nil
}

// SearchEntries implements storage.Store.SearchEntries using ILIKE
// substring matching over term and definition.
func (s *PostgresStore) SearchEntries(ctx context.Context, query string) ([]*glossary.Entry, error) {
	stmt := fmt.Sprintf(`
		SELECT %s
		FROM glossary
		WHERE term ILIKE $1 OR definition ILIKE $1
		ORDER BY term ASC
	`, entryColumns)

	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, stmt, pattern)
	if err != nil {
		return nil, glossary.MapStorageError("search entries", err)
	}
	defer rows.Close()

	return collectEntries(rows, "search entries")
}

// ListPopularEntries implements storage.Store.ListPopularEntries. Entries
// are ranked by like count descending; equal counts are broken by id
// ascending so the ranking is deterministic. Entries without likes never
// appear.
func (s *PostgresStore) ListPopularEntries(ctx context.Context, limit int) ([]*glossary.Entry, error) {
	if limit < 0 {
		limit = storage.DefaultPopularLimit
	}

	query := `
		SELECT g.id, g.term, g.definition, g.revision, g.created_at, g.updated_at
		FROM glossary g
		JOIN (
			SELECT glossary_id, COUNT(*) AS like_count
			FROM likes
			GROUP BY glossary_id
			ORDER BY like_count DESC, glossary_id ASC
			LIMIT $1
		) top ON top.glossary_id = g.id
		ORDER BY top.like_count DESC, g.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, glossary.MapStorageError("list popular entries", err)
	}
	defer rows.Close()

	return collectEntries(rows, "list popular entries")
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*glossary.Entry, error) {
	var entry glossary.Entry
	err := row.Scan(
		&entry.ID,
		&entry.Term,
		&entry.Definition,
		&entry.Revision,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Likes = []glossary.Like{}
	return &entry, nil
}

func collectEntries(rows *sql.Rows, op string) ([]*glossary.Entry, error) {
	entries := make([]*glossary.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, glossary.MapStorageError(op, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, glossary.MapStorageError(op, err)
	}
	return entries, nil
}

// escapeLike escapes LIKE wildcards so user queries match literally.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
