package api

// Handlers for local journal maintenance. These touch only the journal
// database; nothing here calls the backend.

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleClearCompleted removes journal rows for uploads the backend has
// confirmed.
func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	cleared, err := s.session.ClearCompleted()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to clear completed entries")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]int64{"cleared": cleared})
}

// handleClearPending removes journal rows that have not been uploaded yet,
// including failed ones. In-flight uploads are left alone.
func (s *Server) handleClearPending(w http.ResponseWriter, r *http.Request) {
	cleared, err := s.session.ClearPending()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to clear pending entries")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]int64{"cleared": cleared})
}

// handleRemoveQueueEntry removes a single journal row. Unknown IDs are a
// no-op, matching the store.
func (s *Server) handleRemoveQueueEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	if err := s.session.RemoveEntry(entryID); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to remove queue entry")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
