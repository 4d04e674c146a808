package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// AuthenticatedUserHeader carries the caller identity set by the fronting
// proxy. The value is trusted as-is; there is no in-process verification.
const AuthenticatedUserHeader = "x-authenticated-user-email"

// ParseJSON decodes JSON from the request body into the destination
func ParseJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseJSONOrError decodes JSON and writes a 400 response on failure
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := ParseJSON(r, dest); err != nil {
		WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// ParsePathUUID extracts a path parameter and validates it as a UUID
func ParsePathUUID(r *http.Request, key string) (string, error) {
	vars := mux.Vars(r)
	str := vars[key]
	if str == "" {
		return "", fmt.Errorf("missing path parameter: %s", key)
	}
	if _, err := uuid.Parse(str); err != nil {
		return "", fmt.Errorf("invalid UUID for %s: %s", key, str)
	}
	return str, nil
}

// ParsePathUUIDOrError extracts a UUID path parameter and writes a 400
// response on failure
func ParsePathUUIDOrError(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	val, err := ParsePathUUID(r, key)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return "", false
	}
	return val, true
}

// ParseQueryInt parses an integer query parameter with a default, clamped
// to [min, max]. Unparseable values fall back to the default.
func ParseQueryInt(r *http.Request, key string, defaultValue, min, max int) int {
	str := r.URL.Query().Get(key)
	if str == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultValue
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ParseQueryString returns a trimmed query parameter value
func ParseQueryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// AuthenticatedUser returns the caller identity from the trusted proxy
// header, or nil when the header is absent or blank.
func AuthenticatedUser(r *http.Request) *string {
	who := strings.TrimSpace(r.Header.Get(AuthenticatedUserHeader))
	if who == "" {
		return nil
	}
	return &who
}
