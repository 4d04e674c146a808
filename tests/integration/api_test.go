package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossaryhq/glossary/pkg/api"
	"github.com/glossaryhq/glossary/pkg/glossary"
	"github.com/glossaryhq/glossary/pkg/httputil"
	"github.com/glossaryhq/glossary/pkg/observability"
	"github.com/glossaryhq/glossary/pkg/storage"
)

func newServer(t *testing.T) *api.Server {
	t.Helper()
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return api.NewServer(storage.NewMemoryStore(), logger, api.Options{})
}

func do(t *testing.T, server *api.Server, method, path string, body interface{}, who string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if who != "" {
		req.Header.Set(httputil.AuthenticatedUserHeader, who)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// TestEntryLifecycle walks the full create/read/update/delete path a
// client would take.
func TestEntryLifecycle(t *testing.T) {
	server := newServer(t)

	// Create.
	w := do(t, server, "POST", "/api/v1/glossary",
		glossary.EntryRequest{Term: "Cache", Definition: "A store of precomputed results"},
		"alice@example.com")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created glossary.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Cache", created.Term)
	assert.Equal(t, 0, created.Revision)

	// Read back: identical content.
	w = do(t, server, "GET", "/api/v1/glossary/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var got glossary.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.Term, got.Term)
	assert.Equal(t, created.Definition, got.Definition)
	assert.Equal(t, created.Revision, got.Revision)
	assert.Equal(t, 0, got.LikesCount)

	// Update bumps the revision.
	w = do(t, server, "PUT", "/api/v1/glossary/"+created.ID,
		glossary.EntryRequest{Term: "Cache", Definition: "Updated def"}, "bob@example.com")
	require.Equal(t, http.StatusOK, w.Code)

	var updated glossary.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 1, updated.Revision)
	assert.Equal(t, "Updated def", updated.Definition)

	// Delete confirms and then the entry is gone.
	w = do(t, server, "DELETE", "/api/v1/glossary/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"deleted"}`, w.Body.String())

	w = do(t, server, "GET", "/api/v1/glossary/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Idempotent delete.
	w = do(t, server, "DELETE", "/api/v1/glossary/"+created.ID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestLikeAndPopularityFlow exercises the like endpoints and the
// popularity ranking together.
func TestLikeAndPopularityFlow(t *testing.T) {
	server := newServer(t)

	create := func(term string) glossary.Entry {
		w := do(t, server, "POST", "/api/v1/glossary",
			glossary.EntryRequest{Term: term, Definition: "def"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		var entry glossary.Entry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
		return entry
	}

	hot := create("Hot")
	warm := create("Warm")
	create("Cold")

	// Liking a non-existent entry conflicts.
	w := do(t, server, "POST", "/api/v1/glossary/29a1c3c8-68d8-4d3c-9c27-a1e0b54bc7de/likes", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	for i := 0; i < 2; i++ {
		w = do(t, server, "POST", "/api/v1/glossary/"+hot.ID+"/likes", nil, "alice@example.com")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w = do(t, server, "POST", "/api/v1/glossary/"+warm.ID+"/likes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Popular ranks hot before warm and omits the unliked entry. The
	// response is a bare array.
	w = do(t, server, "GET", "/api/v1/glossary-popular", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var popular []glossary.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &popular))
	require.Len(t, popular, 2)
	assert.Equal(t, hot.ID, popular[0].ID)
	assert.Equal(t, warm.ID, popular[1].ID)

	// An explicit zero limit returns nothing rather than the default.
	w = do(t, server, "GET", "/api/v1/glossary-popular?limit=0", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	// Removing the newest like drops the count.
	w = do(t, server, "DELETE", "/api/v1/glossary/"+hot.ID+"/likes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, server, "GET", "/api/v1/glossary/"+hot.ID+"/likes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var likes struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &likes))
	assert.Equal(t, 1, likes.Count)

	// Draining the rest and removing past empty still succeeds.
	w = do(t, server, "DELETE", "/api/v1/glossary/"+hot.ID+"/likes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, server, "DELETE", "/api/v1/glossary/"+hot.ID+"/likes", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestSearchAndGroupedList covers the read-side list endpoints.
func TestSearchAndGroupedList(t *testing.T) {
	server := newServer(t)

	for _, pair := range [][2]string{
		{"Cache", "A store of precomputed results"},
		{"cursor", "database pagination token"},
		{"Queue", "holds cached work"},
	} {
		w := do(t, server, "POST", "/api/v1/glossary",
			glossary.EntryRequest{Term: pair[0], Definition: pair[1]}, "alice@example.com")
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Grouped list buckets by uppercased first letter.
	w := do(t, server, "GET", "/api/v1/glossary", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var grouped map[string][]glossary.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grouped))
	assert.Len(t, grouped["C"], 2)
	assert.Len(t, grouped["Q"], 1)
	assert.Equal(t, "Cache", grouped["C"][0].Term)
	assert.Equal(t, "cursor", grouped["C"][1].Term)

	// Search matches term or definition, case-insensitively.
	w = do(t, server, "GET", "/api/v1/glossary-search?q=cache", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var results struct {
		Results []glossary.Entry `json:"results"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Equal(t, 2, results.Count)

	// Empty query is rejected.
	w = do(t, server, "GET", "/api/v1/glossary-search?q=", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestAttributionFlow verifies the trusted identity header drives the who
// fields on entries and history.
func TestAttributionFlow(t *testing.T) {
	server := newServer(t)

	w := do(t, server, "POST", "/api/v1/glossary",
		glossary.EntryRequest{Term: "Cache", Definition: "v1"}, "alice@example.com")
	require.Equal(t, http.StatusOK, w.Code)

	var created glossary.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, server, "PUT", "/api/v1/glossary/"+created.ID,
		glossary.EntryRequest{Term: "Cache", Definition: "v2"}, "bob@example.com")
	require.Equal(t, http.StatusOK, w.Code)

	// The entry now reports its latest editor.
	w = do(t, server, "GET", "/api/v1/glossary/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var got glossary.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Who)
	assert.Equal(t, "bob@example.com", *got.Who)

	// The history trail keeps both revisions, newest first.
	w = do(t, server, "GET", "/api/v1/glossary/"+created.ID+"/history", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var history struct {
		Results []glossary.HistoryRecord `json:"results"`
		Count   int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Equal(t, 2, history.Count)
	require.NotNil(t, history.Results[0].Who)
	assert.Equal(t, "bob@example.com", *history.Results[0].Who)
	require.NotNil(t, history.Results[1].Who)
	assert.Equal(t, "alice@example.com", *history.Results[1].Who)
	assert.Equal(t, "v2", history.Results[0].Definition)
}

// TestInvalidIdentifiers verifies malformed UUIDs are rejected before any
// storage access.
func TestInvalidIdentifiers(t *testing.T) {
	server := newServer(t)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/v1/glossary/invalid-uuid"},
		{"PUT", "/api/v1/glossary/invalid-uuid"},
		{"DELETE", "/api/v1/glossary/invalid-uuid"},
		{"GET", "/api/v1/glossary/invalid-uuid/history"},
		{"GET", "/api/v1/glossary/invalid-uuid/likes"},
	} {
		body := interface{}(nil)
		if tc.method == "PUT" {
			body = glossary.EntryRequest{Term: "t", Definition: "d"}
		}
		w := do(t, server, tc.method, tc.path, body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.method+" "+tc.path)
	}
}
