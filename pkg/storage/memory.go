package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/glossaryhq/glossary/pkg/glossary"
)

// MemoryStore is an in-memory Store implementation. It backs unit and
// integration tests and the "memory" storage type for local development.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]glossary.Entry
	history []glossary.HistoryRecord
	likes   []memLike
	seq     int64
}

// memLike tracks insertion order so LIFO removal is deterministic even when
// two likes share a created_at timestamp.
type memLike struct {
	glossary.Like
	glossaryID string
	seq        int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]glossary.Entry),
	}
}

// CreateEntry implements Store.CreateEntry.
func (s *MemoryStore) CreateEntry(_ context.Context, entry *glossary.Entry, who *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *entry
	stored.Likes = nil
	stored.LikesCount = 0
	stored.Who = nil
	s.entries[entry.ID] = stored
	s.appendHistoryLocked(entry, who)
	return nil
}

// GetEntry implements Store.GetEntry.
func (s *MemoryStore) GetEntry(_ context.Context, id string) (*glossary.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, glossary.NewNotFound("glossary entry " + id)
	}
	out := entry
	out.Likes = []glossary.Like{}
	return &out, nil
}

// ListEntries implements Store.ListEntries.
func (s *MemoryStore) ListEntries(_ context.Context) ([]*glossary.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*glossary.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		e := entry
		e.Likes = []glossary.Like{}
		out = append(out, &e)
	}
	sortByTerm(out)
	return out, nil
}

// UpdateEntry implements Store.UpdateEntry.
func (s *MemoryStore) UpdateEntry(_ context.Context, id, term, definition string, who *string) (*glossary.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, glossary.NewNotFound("glossary entry " + id)
	}

	entry.Term = term
	entry.Definition = definition
	entry.Revision++
	entry.UpdatedAt = time.Now().UTC()
	s.entries[id] = entry

	s.appendHistoryLocked(&entry, who)

	out := entry
	out.Likes = []glossary.Like{}
	return &out, nil
}

// DeleteEntry implements Store.DeleteEntry. Missing ids are not an error.
func (s *MemoryStore) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)

	history := s.history[:0]
	for _, record := range s.history {
		if record.GlossaryID != id {
			history = append(history, record)
		}
	}
	s.history = history

	likes := s.likes[:0]
	for _, like := range s.likes {
		if like.glossaryID != id {
			likes = append(likes, like)
		}
	}
	s.likes = likes
	return nil
}

// SearchEntries implements Store.SearchEntries.
func (s *MemoryStore) SearchEntries(_ context.Context, query string) ([]*glossary.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	out := make([]*glossary.Entry, 0)
	for _, entry := range s.entries {
		if strings.Contains(strings.ToLower(entry.Term), needle) ||
			strings.Contains(strings.ToLower(entry.Definition), needle) {
			e := entry
			e.Likes = []glossary.Like{}
			out = append(out, &e)
		}
	}
	sortByTerm(out)
	return out, nil
}

// ListPopularEntries implements Store.ListPopularEntries.
func (s *MemoryStore) ListPopularEntries(_ context.Context, limit int) ([]*glossary.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 0 {
		limit = DefaultPopularLimit
	}

	counts := make(map[string]int)
	for _, like := range s.likes {
		counts[like.glossaryID] += 1
	}

	type ranked struct {
		id    string
		count int
	}
	ranking := make([]ranked, 0, len(counts))
	for id, count := range counts {
		ranking = append(ranking, ranked{id: id, count: count})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].count != ranking[j].count {
			return ranking[i].count > ranking[j].count
		}
		return ranking[i].id < ranking[j].id
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}

	out := make([]*glossary.Entry, 0, len(ranking))
	for _, r := range ranking {
		entry, ok := s.entries[r.id]
		if !ok {
			continue
		}
		e := entry
		e.Likes = []glossary.Like{}
		out = append(out, &e)
	}
	return out, nil
}

// ListHistory implements Store.ListHistory.
func (s *MemoryStore) ListHistory(_ context.Context, glossaryID string) ([]*glossary.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*glossary.HistoryRecord, 0)
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].GlossaryID == glossaryID {
			record := s.history[i]
			out = append(out, &record)
		}
	}
	return out, nil
}

// MostRecentAuthor implements Store.MostRecentAuthor.
func (s *MemoryStore) MostRecentAuthor(_ context.Context, glossaryID string) (*string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].GlossaryID == glossaryID {
			return s.history[i].Who, nil
		}
	}
	return nil, nil
}

// ListLikes implements Store.ListLikes.
func (s *MemoryStore) ListLikes(_ context.Context, glossaryID string) ([]glossary.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likesForLocked(glossaryID), nil
}

// AddLike implements Store.AddLike.
func (s *MemoryStore) AddLike(_ context.Context, glossaryID string, who *string) (*glossary.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[glossaryID]; !ok {
		return nil, glossary.NewConflict("glossary entry " + glossaryID + " does not exist")
	}

	like := glossary.NewLike(who)
	s.seq++
	s.likes = append(s.likes, memLike{Like: *like, glossaryID: glossaryID, seq: s.seq})
	return like, nil
}

// RemoveOneLike implements Store.RemoveOneLike.
func (s *MemoryStore) RemoveOneLike(_ context.Context, glossaryID string, likeID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := -1
	if likeID != nil {
		for i, like := range s.likes {
			if like.ID == *likeID && like.glossaryID == glossaryID {
				target = i
				break
			}
		}
	} else {
		var newest int64 = -1
		for i, like := range s.likes {
			if like.glossaryID == glossaryID && like.seq > newest {
				newest = like.seq
				target = i
			}
		}
	}

	if target < 0 {
		return nil
	}
	s.likes = append(s.likes[:target], s.likes[target+1:]...)
	return nil
}

// HealthCheck implements Store.HealthCheck.
func (s *MemoryStore) HealthCheck(context.Context) error { return nil }

// Close implements Store.Close.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) appendHistoryLocked(entry *glossary.Entry, who *string) {
	record := glossary.NewHistoryRecord(entry, who)
	s.history = append(s.history, *record)
}

func (s *MemoryStore) likesForLocked(glossaryID string) []glossary.Like {
	matched := make([]memLike, 0)
	for _, like := range s.likes {
		if like.glossaryID == glossaryID {
			matched = append(matched, like)
		}
	}
	// Most recent first.
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	out := make([]glossary.Like, 0, len(matched))
	for _, like := range matched {
		out = append(out, like.Like)
	}
	return out
}

func sortByTerm(entries []*glossary.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		ti, tj := strings.ToLower(entries[i].Term), strings.ToLower(entries[j].Term)
		if ti != tj {
			return ti < tj
		}
		return entries[i].Term < entries[j].Term
	})
}
