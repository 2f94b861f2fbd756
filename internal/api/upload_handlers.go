package api

// This file contains the handler for dashboard uploads. The uploaded file
// is staged under the state directory so the journal has a real path to
// retry from, then attached and pushed through the session like any other
// upload.

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/scandesk/scandesk/internal/models"
	"github.com/scandesk/scandesk/internal/util"
)

// handleUpload accepts a multipart form with a "file" part and an optional
// "metadata" part holding a JSON metadata block.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	var md *models.DocumentMetadata
	if raw := r.FormValue("metadata"); raw != "" {
		md = &models.DocumentMetadata{}
		if err := json.Unmarshal([]byte(raw), md); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid metadata")
			return
		}
	}

	path, err := s.stage(file, util.SanitizeFileName(filepath.Base(header.Filename)))
	if err != nil {
		log.Printf("Failed to stage upload %s: %v", header.Filename, err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	res := s.session.Attach([]string{path}, md)[0]
	if res.Err != nil {
		os.RemoveAll(filepath.Dir(path))
		RespondWithError(w, http.StatusBadRequest, res.Err.Error())
		return
	}

	if err := s.session.Upload(r.Context(), res.Entry.ID); err != nil {
		// The entry stays journaled as failed so the upload can be
		// retried from the dashboard.
		RespondWithBackendError(w, err)
		return
	}

	entry, err := s.store.GetQueueEntry(res.Entry.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read journal entry")
		return
	}
	RespondWithJSON(w, http.StatusCreated, entry)
}

// stage writes the uploaded file into its own directory under the state
// dir, keeping the original base name for the display list.
func (s *Server) stage(src io.Reader, name string) (string, error) {
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	dir := filepath.Join(s.app.Config().State.Dir, "uploads", uuid.New().String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return path, nil
}
