package storage

import (
	"context"
	"time"

	"github.com/glossaryhq/glossary/pkg/glossary"
	"github.com/glossaryhq/glossary/pkg/observability"
)

// InstrumentedStore wraps a Store and records operation counts, latencies
// and errors into the metrics registry. The backend label carries the
// configured storage type.
type InstrumentedStore struct {
	store   Store
	metrics *observability.Metrics
	backend string
}

// NewInstrumentedStore decorates store with operation metrics.
func NewInstrumentedStore(store Store, metrics *observability.Metrics, backend string) *InstrumentedStore {
	return &InstrumentedStore{store: store, metrics: metrics, backend: backend}
}

// observe records one finished operation.
func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		s.metrics.StorageErrorsTotal.WithLabelValues(op, s.backend).Inc()
	}
	s.metrics.StorageOperationsTotal.WithLabelValues(op, s.backend, status).Inc()
	s.metrics.StorageOperationDuration.WithLabelValues(op, s.backend).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStore) CreateEntry(ctx context.Context, entry *glossary.Entry, who *string) error {
	start := time.Now()
	err := s.store.CreateEntry(ctx, entry, who)
	s.observe("create_entry", start, err)
	return err
}

func (s *InstrumentedStore) GetEntry(ctx context.Context, id string) (*glossary.Entry, error) {
	start := time.Now()
	entry, err := s.store.GetEntry(ctx, id)
	s.observe("get_entry", start, err)
	return entry, err
}

func (s *InstrumentedStore) ListEntries(ctx context.Context) ([]*glossary.Entry, error) {
	start := time.Now()
	entries, err := s.store.ListEntries(ctx)
	s.observe("list_entries", start, err)
	return entries, err
}

func (s *InstrumentedStore) UpdateEntry(ctx context.Context, id, term, definition string, who *string) (*glossary.Entry, error) {
	start := time.Now()
	entry, err := s.store.UpdateEntry(ctx, id, term, definition, who)
	s.observe("update_entry", start, err)
	return entry, err
}

func (s *InstrumentedStore) DeleteEntry(ctx context.Context, id string) error {
	start := time.Now()
	err := s.store.DeleteEntry(ctx, id)
	s.observe("delete_entry", start, err)
	return err
}

func (s *InstrumentedStore) SearchEntries(ctx context.Context, query string) ([]*glossary.Entry, error) {
	start := time.Now()
	entries, err := s.store.SearchEntries(ctx, query)
	s.observe("search_entries", start, err)
	return entries, err
}

func (s *InstrumentedStore) ListPopularEntries(ctx context.Context, limit int) ([]*glossary.Entry, error) {
	start := time.Now()
	entries, err := s.store.ListPopularEntries(ctx, limit)
	s.observe("list_popular_entries", start, err)
	return entries, err
}

func (s *InstrumentedStore) ListHistory(ctx context.Context, glossaryID string) ([]*glossary.HistoryRecord, error) {
	start := time.Now()
	records, err := s.store.ListHistory(ctx, glossaryID)
	s.observe("list_history", start, err)
	return records, err
}

func (s *InstrumentedStore) MostRecentAuthor(ctx context.Context, glossaryID string) (*string, error) {
	start := time.Now()
	who, err := s.store.MostRecentAuthor(ctx, glossaryID)
	s.observe("most_recent_author", start, err)
	return who, err
}

func (s *InstrumentedStore) ListLikes(ctx context.Context, glossaryID string) ([]glossary.Like, error) {
	start := time.Now()
	likes, err := s.store.ListLikes(ctx, glossaryID)
	s.observe("list_likes", start, err)
	return likes, err
}

func (s *InstrumentedStore) AddLike(ctx context.Context, glossaryID string, who *string) (*glossary.Like, error) {
	start := time.Now()
	like, err := s.store.AddLike(ctx, glossaryID, who)
	s.observe("add_like", start, err)
	return like, err
}

func (s *InstrumentedStore) RemoveOneLike(ctx context.Context, glossaryID string, likeID *string) error {
	start := time.Now()
	err := s.store.RemoveOneLike(ctx, glossaryID, likeID)
	s.observe("remove_one_like", start, err)
	return err
}

func (s *InstrumentedStore) HealthCheck(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}

func (s *InstrumentedStore) Close() error {
	return s.store.Close()
}
