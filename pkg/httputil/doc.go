// Package httputil provides HTTP handler utilities for consistent error
// handling, JSON encoding/decoding, request parsing, and middleware.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteMessage(w, "deleted")
//	httputil.WriteStorageError(w, err)
//
// Error responses always carry the shape {"error": "..."}; list responses
// carry {"results": [...], "count": N}.
//
// # Request Parsing
//
//	var req glossary.EntryRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // error response already written
//	}
//	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
//	limit := httputil.ParseQueryInt(r, "limit", 10, 0, 255)
//	who := httputil.AuthenticatedUser(r)
//
// # Middleware
//
//	httputil.Chain(handler,
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//	)
package httputil
