package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"together-backend/internal/store"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// respondStoreError maps store errors onto HTTP status codes. Reads and
// writes surface errors the same way; nothing is swallowed.
func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, "not found", http.StatusNotFound)
		return
	}
	respondError(w, err.Error(), http.StatusInternalServerError)
}
