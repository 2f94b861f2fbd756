// Helper functions for sending standardized JSON responses.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scandesk/scandesk/internal/backend"
)

// RespondWithJSON writes a JSON response with the given status code and payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		// If marshaling fails, return an error response
		RespondWithError(w, http.StatusInternalServerError, "Failed to marshal response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes a standardized JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithBackendError maps a failure from the digitization backend to
// a dashboard status code. Connectivity problems and backend 5xx both
// surface as 502.
func RespondWithBackendError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	code := http.StatusInternalServerError
	switch apiErr.Kind {
	case backend.KindBadRequest:
		code = http.StatusBadRequest
	case backend.KindUnauthorized:
		code = http.StatusUnauthorized
	case backend.KindNotFound:
		code = http.StatusNotFound
	case backend.KindNetwork, backend.KindServer:
		code = http.StatusBadGateway
	}
	RespondWithError(w, code, apiErr.Message)
}
