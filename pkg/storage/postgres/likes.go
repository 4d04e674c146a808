package postgres

import (
	"context"

	"github.com/glossaryhq/glossary/pkg/glossary"
)

// ListLikes implements storage.Store.ListLikes. An entry with no likes, or
// an unknown entry, yields an empty list.
func (s *PostgresStore) ListLikes(ctx context.Context, glossaryID string) ([]glossary.Like, error) {
	query := `
		SELECT id, who, created_at
		FROM likes
		WHERE glossary_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, glossaryID)
	if err != nil {
		return nil, glossary.MapStorageError("list likes", err)
	}
	defer rows.Close()

	likes := make([]glossary.Like, 0)
	for rows.Next() {
		var like glossary.Like
		if err := rows.Scan(&like.ID, &like.Who, &like.CreatedAt); err != nil {
			return nil, glossary.MapStorageError("list likes", err)
		}
		likes = append(likes, like)
	}
	if err := rows.Err(); err != nil {
		return nil, glossary.MapStorageError("list likes", err)
	}
	return likes, nil
}

// AddLike implements storage.Store.AddLike. A foreign-key violation on
// glossary_id surfaces as glossary.ErrConflict.
func (s *PostgresStore) AddLike(ctx context.Context, glossaryID string, who *string) (*glossary.Like, error) {
	like := glossary.NewLike(who)

	query := `
		INSERT INTO likes (id, glossary_id, who, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.db.ExecContext(ctx, query, like.ID, glossaryID, like.Who, like.CreatedAt); err != nil {
		return nil, glossary.MapStorageError("add like", err)
	}
	return like, nil
}

// RemoveOneLike implements storage.Store.RemoveOneLike. Without a likeID
// the most recently created like for the entry is removed (LIFO). Matching
// zero rows is a success.
func (s *PostgresStore) RemoveOneLike(ctx context.Context, glossaryID string, likeID *string) error {
	if likeID != nil {
		query := "DELETE FROM likes WHERE id = $1 AND glossary_id = $2"
		if _, err := s.db.ExecContext(ctx, query, *likeID, glossaryID); err != nil {
			return glossary.MapStorageError("remove like", err)
		}
		return nil
	}

	query := `
		DELETE FROM likes
		WHERE id = (
			SELECT id FROM likes
			WHERE glossary_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
	`
	if _, err := s.db.ExecContext(ctx, query, glossaryID); err != nil {
		return glossary.MapStorageError("remove like", err)
	}
	return nil
}
