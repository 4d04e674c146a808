package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/glossaryhq/glossary/pkg/glossary"
)

// ListResponse is the envelope for list endpoints
type ListResponse struct {
	Results interface{} `json:"results"`
	Count   int         `json:"count"`
}

// Message is the envelope for status-only responses
type Message struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteList writes a 200 list response wrapped in {"results": ..., "count": N}
func WriteList(w http.ResponseWriter, results interface{}, count int) error {
	return WriteJSON(w, http.StatusOK, ListResponse{Results: results, Count: count})
}

// WriteMessage writes a 200 response with a {"message": ...} body
func WriteMessage(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, Message{Message: message})
}

// WriteCreated writes a successful creation response (201 Created)
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteErrorMessage(w, status, err.Error())
}

// WriteErrorMessage writes a JSON error response with a custom message
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// WriteBadRequest writes a bad request error (400)
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusBadRequest, message)
}

// WriteNotFound writes a not found error (404)
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusNotFound, message)
}

// WriteConflict writes a conflict error (409)
func WriteConflict(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusConflict, message)
}

// WriteUnprocessable writes an unprocessable entity error (422)
func WriteUnprocessable(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusUnprocessableEntity, message)
}

// WriteInternalError writes an internal server error response (500)
func WriteInternalError(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusInternalServerError, err)
}

// WriteStorageError maps domain errors onto HTTP status codes:
// ErrNotFound 404, ErrInvalidInput 400, ErrUnprocessable 422, ErrConflict
// 409, anything else 500.
func WriteStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, glossary.ErrNotFound):
		WriteError(w, http.StatusNotFound, err)
	case errors.Is(err, glossary.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err)
	case errors.Is(err, glossary.ErrUnprocessable):
		WriteError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, glossary.ErrConflict):
		WriteError(w, http.StatusConflict, err)
	default:
		WriteInternalError(w, err)
	}
}
