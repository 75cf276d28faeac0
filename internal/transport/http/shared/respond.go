// Package shared centralizes JSON response and error envelope writing so
// every handler speaks the same dialect.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "loanmatch/pkg/domain-errors"
)

// WriteJSON writes v with the given status as JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Unclassified errors map to 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error":   string(code),
		"message": dErrors.MessageOf(err),
	})
}
