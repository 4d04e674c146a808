package storage

import (
	"context"
	"time"

	"github.com/glossaryhq/glossary/pkg/glossary"
)

// HistoryMode controls how history appends relate to the parent entry write.
type HistoryMode string

const (
	// HistoryStrict wraps the entry write and the history append in one
	// transaction; a failed append fails the whole operation.
	HistoryStrict HistoryMode = "strict"
	// HistoryBestEffort appends history after the entry write and only
	// logs failures, matching the legacy fire-and-forget behavior.
	HistoryBestEffort HistoryMode = "best-effort"
)

// Valid reports whether m is a known history mode.
func (m HistoryMode) Valid() bool {
	return m == HistoryStrict || m == HistoryBestEffort
}

// DefaultPopularLimit is the number of entries returned by popularity
// ranking when the caller does not specify a limit.
const DefaultPopularLimit = 10

// Store is the persistence boundary for the glossary service. Every write
// to an entry also appends a history record according to the configured
// HistoryMode. Implementations must be safe for concurrent use.
type Store interface {
	// CreateEntry persists a new entry and appends its revision-0 history
	// record attributed to who.
	CreateEntry(ctx context.Context, entry *glossary.Entry, who *string) error

	// GetEntry returns the entry with the given id, without derived
	// fields populated. Returns glossary.ErrNotFound when absent.
	GetEntry(ctx context.Context, id string) (*glossary.Entry, error)

	// ListEntries returns all entries ordered by term ascending.
	ListEntries(ctx context.Context) ([]*glossary.Entry, error)

	// UpdateEntry sets new content on an existing entry, bumping its
	// revision by one, and appends the matching history record.
	// Returns glossary.ErrNotFound when the entry does not exist.
	UpdateEntry(ctx context.Context, id, term, definition string, who *string) (*glossary.Entry, error)

	// DeleteEntry removes the entry; history and likes go with it via
	// schema-level cascade. Deleting a missing id is not an error.
	DeleteEntry(ctx context.Context, id string) error

	// SearchEntries returns entries whose term or definition contains the
	// query, case-insensitively, ordered by term ascending.
	SearchEntries(ctx context.Context, query string) ([]*glossary.Entry, error)

	// ListPopularEntries ranks entries by like count descending (ties
	// broken by id ascending) and returns up to limit of them. Entries
	// with zero likes are never included. A limit of zero returns an
	// empty list; a negative limit falls back to DefaultPopularLimit.
	ListPopularEntries(ctx context.Context, limit int) ([]*glossary.Entry, error)

	// ListHistory returns all history records for an entry, most recent
	// first.
	ListHistory(ctx context.Context, glossaryID string) ([]*glossary.HistoryRecord, error)

	// MostRecentAuthor returns the who attribution of the newest history
	// record for an entry, or nil when no history exists.
	MostRecentAuthor(ctx context.Context, glossaryID string) (*string, error)

	// ListLikes returns all likes for an entry, most recent first. An
	// unknown entry yields an empty list, not an error.
	ListLikes(ctx context.Context, glossaryID string) ([]glossary.Like, error)

	// AddLike records a like on an entry. Returns glossary.ErrConflict
	// when the entry does not exist.
	AddLike(ctx context.Context, glossaryID string, who *string) (*glossary.Like, error)

	// RemoveOneLike removes the like with the given id, or the most
	// recently created like for the entry when likeID is nil. Removing
	// from an entry with no likes is a no-op. Never removes more than
	// one row.
	RemoveOneLike(ctx context.Context, glossaryID string, likeID *string) error

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases held resources.
	Close() error
}

// Config holds storage backend configuration.
type Config struct {
	Type string // "postgres" or "memory"

	PostgresURL      string
	PostgresMaxConns int
	PostgresMinConns int
	PostgresTimeout  time.Duration

	HistoryMode HistoryMode
}

// DefaultConfig returns sensible storage defaults.
func DefaultConfig() Config {
	return Config{
		Type:             "postgres",
		PostgresMaxConns: 25,
		PostgresMinConns: 5,
		PostgresTimeout:  10 * time.Second,
		HistoryMode:      HistoryStrict,
	}
}
