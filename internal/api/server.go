// It defines the dashboard API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/scandesk/scandesk/internal/core"
	"github.com/scandesk/scandesk/internal/session"
	"github.com/scandesk/scandesk/internal/store"
)

// Server holds the dependencies for the dashboard API.
type Server struct {
	app     *core.App
	db      *sql.DB
	store   *store.Store
	session *session.Session
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// NewServer creates a new Server instance over an already-built session.
func NewServer(app *core.App, sess *session.Session) *Server {
	return &Server{
		app:     app,
		db:      app.DB(),
		store:   store.New(app.DB()),
		session: sess,
	}
}

// Router sets up and returns the main router for the dashboard.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		// Document Routes
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/counts", s.handleDocumentCounts)
		r.Get("/documents/{fileID}", s.handleGetDocument)
		r.Delete("/documents/{fileID}", s.handleDeleteDocument)
		r.Post("/documents/{fileID}/restore", s.handleRestoreDocument)
		r.Post("/documents/{fileID}/finalize", s.handleFinalizeDocument)
		r.Put("/documents/{fileID}/text", s.handleEditText)
		r.Put("/documents/{fileID}/finalized-text", s.handleEditFinalizedText)

		// Upload Route
		r.Post("/uploads", s.handleUpload)

		// Archive Routes
		r.Get("/recycle-bin", s.handleRecycleBin)
		r.Get("/search", s.handleSearch)

		// Refresh and Queue Maintenance Routes
		r.Post("/refresh", s.handleRefresh)
		r.Post("/queue/clear-completed", s.handleClearCompleted)
		r.Post("/queue/clear-pending", s.handleClearPending)
		r.Delete("/queue/{entryID}", s.handleRemoveQueueEntry)
	})

	// WebSocket route
	r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.app.Version()})
	})

	return r
}
