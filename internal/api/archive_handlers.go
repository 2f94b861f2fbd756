package api

// Handlers for the finalized archive: the recycle bin listing and the
// full-text search passthrough. Query parameter names match the backend's
// own search endpoint.

import (
	"net/http"
	"strconv"

	"github.com/scandesk/scandesk/internal/backend"
)

func (s *Server) handleRecycleBin(w http.ResponseWriter, r *http.Request) {
	entries, err := s.session.RecycleBin(r.Context())
	if err != nil {
		RespondWithBackendError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("q") == "" {
		RespondWithError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	opts := backend.SearchOptions{
		Query:       q.Get("q"),
		Author:      q.Get("author"),
		Publication: q.Get("publication"),
		Fuzzy:       q.Get("fuzzy") == "true",
	}
	opts.YearFrom, _ = strconv.Atoi(q.Get("as_ylo"))
	opts.YearTo, _ = strconv.Atoi(q.Get("as_yhi"))
	opts.SortByDate = q.Get("scisbd") == "1"
	opts.Limit, _ = strconv.Atoi(q.Get("num"))
	opts.FuzzyThreshold, _ = strconv.ParseFloat(q.Get("fuzzyThreshold"), 64)

	results, err := s.session.SearchArchive(r.Context(), opts)
	if err != nil {
		RespondWithBackendError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, results)
}
