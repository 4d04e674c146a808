package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossaryhq/glossary/pkg/glossary"
	"github.com/glossaryhq/glossary/pkg/storage"
)

func setupMockStore(t *testing.T, mode storage.HistoryMode) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db, mode, nil), mock
}

func entryRows(entry *glossary.Entry) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "term", "definition", "revision", "created_at", "updated_at"}).
		AddRow(entry.ID, entry.Term, entry.Definition, entry.Revision, entry.CreatedAt, entry.UpdatedAt)
}

func strPtr(s string) *string { return &s }

func TestNewWithDBDefaults(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db, storage.HistoryMode("bogus"), nil)
	assert.Equal(t, storage.HistoryStrict, store.mode)
	assert.NotNil(t, store.logger)
}

func TestGetEntry(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)
	entry := glossary.NewEntry("Cache", "A store of precomputed results")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, term, definition, revision, created_at, updated_at FROM glossary WHERE id = $1")).
		WithArgs(entry.ID).
		WillReturnRows(entryRows(entry))

	got, err := store.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, "Cache", got.Term)
	assert.NotNil(t, got.Likes)
	assert.Empty(t, got.Likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEntryNotFound(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectQuery("SELECT id, term, definition").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetEntry(context.Background(), "29a1c3c8-68d8-4d3c-9c27-a1e0b54bc7de")
	assert.ErrorIs(t, err, glossary.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntryStrict(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)
	entry := glossary.NewEntry("Cache", "def")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO glossary")).
		WithArgs(entry.ID, entry.Term, entry.Definition, entry.Revision, entry.CreatedAt, entry.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO glossary_history")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.CreateEntry(context.Background(), entry, strPtr("alice@example.com"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntryStrictHistoryFailureRollsBack(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)
	entry := glossary.NewEntry("Cache", "def")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO glossary")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO glossary_history")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.CreateEntry(context.Background(), entry, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntryBestEffortToleratesHistoryFailure(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryBestEffort)
	entry := glossary.NewEntry("Cache", "def")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO glossary")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO glossary_history")).
		WillReturnError(errors.New("disk full"))

	err := store.CreateEntry(context.Background(), entry, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEntryStrict(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	updated := glossary.NewEntry("Cache", "new def")
	updated.Revision = 1

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE glossary")).
		WithArgs("Cache", "new def", updated.ID).
		WillReturnRows(entryRows(updated))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO glossary_history")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := store.UpdateEntry(context.Background(), updated.ID, "Cache", "new def", strPtr("bob@example.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, got.Revision)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEntryNotFound(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE glossary")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := store.UpdateEntry(context.Background(), "29a1c3c8-68d8-4d3c-9c27-a1e0b54bc7de", "t", "d", nil)
	assert.ErrorIs(t, err, glossary.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEntryIdempotent(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM glossary WHERE id = $1")).
		WithArgs("29a1c3c8-68d8-4d3c-9c27-a1e0b54bc7de").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteEntry(context.Background(), "29a1c3c8-68d8-4d3c-9c27-a1e0b54bc7de")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchEntriesEscapesWildcards(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectQuery("WHERE term ILIKE").
		WithArgs(`%100\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "term", "definition", "revision", "created_at", "updated_at"}))

	results, err := store.SearchEntries(context.Background(), "100%")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEntries(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)
	entry := glossary.NewEntry("Cache", "def")

	mock.ExpectQuery("FROM glossary ORDER BY term ASC").
		WillReturnRows(entryRows(entry))

	entries, err := store.ListEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPopularEntries(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)
	entry := glossary.NewEntry("Hot", "popular")

	mock.ExpectQuery("JOIN").
		WithArgs(5).
		WillReturnRows(entryRows(entry))

	entries, err := store.ListPopularEntries(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPopularEntriesDefaultLimit(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectQuery("JOIN").
		WithArgs(storage.DefaultPopularLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "term", "definition", "revision", "created_at", "updated_at"}))

	_, err := store.ListPopularEntries(context.Background(), -1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPopularEntriesZeroLimit(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	// An explicit zero reaches SQL as LIMIT 0 instead of the default.
	mock.ExpectQuery("JOIN").
		WithArgs(0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "term", "definition", "revision", "created_at", "updated_at"}))

	entries, err := store.ListPopularEntries(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHistory(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "glossary_id", "term", "definition", "revision", "who", "created_at"}).
		AddRow("h2", "g1", "Cache", "v2", 1, "bob@example.com", now).
		AddRow("h1", "g1", "Cache", "v1", 0, nil, now.Add(-time.Minute))

	mock.ExpectQuery("FROM glossary_history").
		WithArgs("g1").
		WillReturnRows(rows)

	records, err := store.ListHistory(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Revision)
	require.NotNil(t, records[0].Who)
	assert.Equal(t, "bob@example.com", *records[0].Who)
	assert.Nil(t, records[1].Who)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMostRecentAuthor(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectQuery("SELECT who").
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"who"}).AddRow("alice@example.com"))

	who, err := store.MostRecentAuthor(context.Background(), "g1")
	require.NoError(t, err)
	require.NotNil(t, who)
	assert.Equal(t, "alice@example.com", *who)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMostRecentAuthorNoHistory(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectQuery("SELECT who").
		WillReturnError(sql.ErrNoRows)

	who, err := store.MostRecentAuthor(context.Background(), "g1")
	require.NoError(t, err)
	assert.Nil(t, who)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLikes(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "who", "created_at"}).
		AddRow("l2", nil, now).
		AddRow("l1", "alice@example.com", now.Add(-time.Minute))

	mock.ExpectQuery("FROM likes").
		WithArgs("g1").
		WillReturnRows(rows)

	likes, err := store.ListLikes(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.Equal(t, "l2", likes[0].ID)
	assert.Nil(t, likes[0].Who)
	require.NotNil(t, likes[1].Who)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLikesEmpty(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectQuery("FROM likes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "who", "created_at"}))

	likes, err := store.ListLikes(context.Background(), "g1")
	require.NoError(t, err)
	assert.NotNil(t, likes)
	assert.Empty(t, likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLike(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO likes")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	like, err := store.AddLike(context.Background(), "g1", strPtr("alice@example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, like.ID)
	require.NotNil(t, like.Who)
	assert.Equal(t, "alice@example.com", *like.Who)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLikeMissingEntryConflict(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO likes")).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := store.AddLike(context.Background(), "g1", nil)
	assert.ErrorIs(t, err, glossary.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveOneLikeByID(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM likes WHERE id = $1 AND glossary_id = $2")).
		WithArgs("l1", "g1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	likeID := "l1"
	err := store.RemoveOneLike(context.Background(), "g1", &likeID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveOneLikeNewest(t *testing.T) {
	store, mock := setupMockStore(t, storage.HistoryStrict)

	mock.ExpectExec("DELETE FROM likes").
		WithArgs("g1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.RemoveOneLike(context.Background(), "g1", nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	store := NewWithDB(db, storage.HistoryStrict, nil)

	mock.ExpectPing()
	assert.NoError(t, store.HealthCheck(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, store.HealthCheck(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
