package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListDocuments returns the reconciled display list: the local
// journal merged with the last backend snapshot and any cached detail
// statuses, plus the per-bucket counts.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.session.Snapshot()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to build document list")
		return
	}
	RespondWithJSON(w, http.StatusOK, snapshot)
}

// handleDocumentCounts returns only the status counts.
func (s *Server) handleDocumentCounts(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.session.Snapshot()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to build document list")
		return
	}
	RespondWithJSON(w, http.StatusOK, snapshot.Counts)
}

// handleGetDocument fetches one document fresh from the backend. With
// ?finalized=true the finalized text and edit history are included.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	finalized := r.URL.Query().Get("finalized") == "true"

	doc, err := s.session.Document(r.Context(), fileID, finalized)
	if err != nil {
		RespondWithBackendError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, doc)
}

// handleRefresh forces a full refresh: the backend list is re-fetched and
// the detail cache and refresh budgets are reset.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ForceRefresh(r.Context()); err != nil {
		RespondWithBackendError(w, err)
		return
	}
	snapshot, err := s.session.Snapshot()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to build document list")
		return
	}
	RespondWithJSON(w, http.StatusOK, snapshot)
}
