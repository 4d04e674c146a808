package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/glossaryhq/glossary/pkg/glossary"
)

const insertHistory = `
	INSERT INTO glossary_history (id, glossary_id, term, definition, revision, who, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// appendHistoryTx writes a history record inside the entry write
// transaction (strict mode).
func appendHistoryTx(ctx context.Context, tx *sql.Tx, record *glossary.HistoryRecord) error {
	_, err := tx.ExecContext(ctx, insertHistory,
		record.ID, record.GlossaryID, record.Term, record.Definition,
		record.Revision, record.Who, record.CreatedAt,
	)
	return err
}

// appendHistoryBestEffort writes a history record outside any transaction
// and only logs failures, preserving the legacy fire-and-forget behavior.
func (s *PostgresStore) appendHistoryBestEffort(ctx context.Context, entry *glossary.Entry, who *string) {
	record := glossary.NewHistoryRecord(entry, who)
	_, err := s.db.ExecContext(ctx, insertHistory,
		record.ID, record.GlossaryID, record.Term, record.Definition,
		record.Revision, record.Who, record.CreatedAt,
	)
	if err != nil {
		s.logger.WithError(err).
			WithField("glossary_id", record.GlossaryID).
			WithField("revision", record.Revision).
			Error("failed to append history record")
	}
}

// ListHistory implements storage.Store.ListHistory.
func (s *PostgresStore) ListHistory(ctx context.Context, glossaryID string) ([]*glossary.HistoryRecord, error) {
	query := `
		SELECT id, glossary_id, term, definition, revision, who, created_at
		FROM glossary_history
		WHERE glossary_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, glossaryID)
	if err != nil {
		return nil, glossary.MapStorageError("list history", err)
	}
	defer rows.Close()

	records := make([]*glossary.HistoryRecord, 0)
	for rows.Next() {
		var record glossary.HistoryRecord
		err := rows.Scan(
			&record.ID,
			&record.GlossaryID,
			&record.Term,
			&record.Definition,
			&record.Revision,
			&record.Who,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, glossary.MapStorageError("list history", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, glossary.MapStorageError("list history", err)
	}
	return records, nil
}

// MostRecentAuthor implements storage.Store.MostRecentAuthor.
func (s *PostgresStore) MostRecentAuthor(ctx context.Context, glossaryID string) (*string, error) {
	query := `
		SELECT who
		FROM glossary_history
		WHERE glossary_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var who *string
	err := s.db.QueryRowContext(ctx, query, glossaryID).Scan(&who)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, glossary.MapStorageError("most recent author", err)
	}
	return who, nil
}
