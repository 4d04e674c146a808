package api

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/glossaryhq/glossary/pkg/glossary"
	"github.com/glossaryhq/glossary/pkg/httputil"
	"github.com/glossaryhq/glossary/pkg/observability"
	"github.com/glossaryhq/glossary/pkg/storage"
)

// maxPopularLimit caps the limit query parameter on the popular route.
const maxPopularLimit = 255

// groupKey buckets entries under the uppercased first character of the
// term. Entries whose term starts with a non-letter keep that character
// as-is.
func groupKey(term string) string {
	for _, r := range term {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// enrichEntry attaches likes and the latest history author to an entry.
func (s *Server) enrichEntry(r *http.Request, entry *glossary.Entry) (*glossary.Entry, error) {
	ctx := r.Context()

	likes, err := s.store.ListLikes(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	who, err := s.store.MostRecentAuthor(ctx, entry.ID)
	if err != nil {
		return nil, err
	}

	enriched := entry.WithLikes(likes)
	enriched.Who = who
	return &enriched, nil
}

// listEntries handles GET /api/v1/glossary. Entries come back grouped by
// the uppercased first character of their term; within each group the
// ascending-by-term order is preserved.
func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListEntries(r.Context())
	if err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	grouped := make(map[string][]glossary.Entry)
	for _, entry := range entries {
		enriched, err := s.enrichEntry(r, entry)
		if err != nil {
			httputil.WriteStorageError(w, err)
			return
		}
		key := groupKey(enriched.Term)
		grouped[key] = append(grouped[key], *enriched)
	}

	httputil.WriteJSON(w, http.StatusOK, grouped)
}

// getEntry handles GET /api/v1/glossary/{id}
func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	entry, err := s.store.GetEntry(r.Context(), id)
	if err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	enriched, err := s.enrichEntry(r, entry)
	if err != nil {
		httputil.WriteStorageError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, enriched)
}

// createEntry handles POST /api/v1/glossary
func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var req glossary.EntryRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	who := httputil.AuthenticatedUser(r)
	entry := glossary.NewEntry(req.Term, req.Definition)

	if err := s.store.CreateEntry(r.Context(), entry, who); err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	entry.Who = who
	if s.metrics != nil {
		s.metrics.EntriesCreatedTotal.Inc()
	}
	observability.FromContext(r.Context()).
		WithField("glossary_id", entry.ID).
		Info("glossary entry created")
	httputil.WriteJSON(w, http.StatusOK, entry)
}

// updateEntry handles PUT /api/v1/glossary/{id}
func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var req glossary.EntryRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	who := httputil.AuthenticatedUser(r)
	entry, err := s.store.UpdateEntry(r.Context(), id, req.Term, req.Definition, who)
	if err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	entry.Who = who
	if s.metrics != nil {
		s.metrics.EntriesUpdatedTotal.Inc()
	}
	observability.FromContext(r.Context()).
		WithField("glossary_id", entry.ID).
		WithField("revision", entry.Revision).
		Info("glossary entry updated")
	httputil.WriteJSON(w, http.StatusOK, entry)
}

// deleteEntry handles DELETE /api/v1/glossary/{id}. Deleting an id that
// does not exist still succeeds.
func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteEntry(r.Context(), id); err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.EntriesDeletedTotal.Inc()
	}
	observability.FromContext(r.Context()).
		WithField("glossary_id", id).
		Info("glossary entry deleted")
	httputil.WriteMessage(w, "deleted")
}

// searchEntries handles GET /api/v1/glossary-search?q=
func (s *Server) searchEntries(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(httputil.ParseQueryString(r, "q"))
	if query == "" {
		httputil.WriteBadRequest(w, "search query is required")
		return
	}

	entries, err := s.store.SearchEntries(r.Context(), query)
	if err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	results := make([]glossary.Entry, 0, len(entries))
	for _, entry := range entries {
		enriched, err := s.enrichEntry(r, entry)
		if err != nil {
			httputil.WriteStorageError(w, err)
			return
		}
		results = append(results, *enriched)
	}

	httputil.WriteList(w, results, len(results))
}

// popularEntries handles GET /api/v1/glossary-popular?limit=. Results are
// lean entries: likes are intentionally not populated here. The response
// is a bare array, not the results envelope, and an explicit limit of
// zero returns an empty array.
func (s *Server) popularEntries(w http.ResponseWriter, r *http.Request) {
	limit := httputil.ParseQueryInt(r, "limit", storage.DefaultPopularLimit, 0, maxPopularLimit)

	entries, err := s.store.ListPopularEntries(r.Context(), limit)
	if err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	results := make([]glossary.Entry, 0, len(entries))
	for _, entry := range entries {
		results = append(results, *entry)
	}

	httputil.WriteJSON(w, http.StatusOK, results)
}

// listHistory handles GET /api/v1/glossary/{id}/history
func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	records, err := s.store.ListHistory(r.Context(), id)
	if err != nil {
		httputil.WriteStorageError(w, err)
		return
	}

	httputil.WriteList(w, records, len(records))
}
