package api

// This file contains the handlers for per-document actions: deletion,
// restore, finalization and text edits. All of them pass through the
// session so the deleting markers and the detail cache stay consistent.

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/scandesk/scandesk/internal/backend"
)

// handleDeleteDocument moves a document to the recycle bin, or erases it
// outright with ?permanent=true.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	permanent := r.URL.Query().Get("permanent") == "true"

	if err := s.session.Delete(r.Context(), fileID, permanent); err != nil {
		log.Printf("Failed to delete document %s: %v", fileID, err)
		RespondWithBackendError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleRestoreDocument brings a document back from the recycle bin.
func (s *Server) handleRestoreDocument(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	if err := s.session.Restore(r.Context(), fileID); err != nil {
		log.Printf("Failed to restore document %s: %v", fileID, err)
		RespondWithBackendError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleFinalizeDocument locks in a text layer for a processed document.
func (s *Server) handleFinalizeDocument(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	var payload struct {
		TextSource   string `json:"text_source"`
		Notes        string `json:"notes"`
		EditedText   string `json:"edited_text"`
		OriginalText string `json:"original_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	freq := backend.FinalizeRequest{
		TextSource:   payload.TextSource,
		Notes:        payload.Notes,
		EditedText:   payload.EditedText,
		OriginalText: payload.OriginalText,
	}
	if err := s.session.Finalize(r.Context(), fileID, freq); err != nil {
		RespondWithBackendError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleEditText replaces the OCR text of a not-yet-finalized document.
func (s *Server) handleEditText(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Text == "" {
		RespondWithError(w, http.StatusBadRequest, "Text is required")
		return
	}

	if err := s.session.EditOCRText(r.Context(), fileID, payload.Text); err != nil {
		RespondWithBackendError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleEditFinalizedText rewrites the text of an already finalized
// document, optionally keeping the previous version in the edit history.
func (s *Server) handleEditFinalizedText(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	var payload struct {
		Text            string `json:"text"`
		Reason          string `json:"reason"`
		PreserveHistory bool   `json:"preserve_history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Text == "" {
		RespondWithError(w, http.StatusBadRequest, "Text is required")
		return
	}

	freq := backend.EditFinalizedRequest{
		FinalizedText:   payload.Text,
		EditReason:      payload.Reason,
		PreserveHistory: payload.PreserveHistory,
	}
	if err := s.session.EditFinalizedText(r.Context(), fileID, freq); err != nil {
		RespondWithBackendError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
