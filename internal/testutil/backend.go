// A fake digitization backend for development and testing purposes. It
// simulates the document-processing service over a local httptest server
// without making network calls, including the service's habit of switching
// between camelCase and snake_case payloads across deployments.

package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// FakeDocument is one record held by the fake backend. DetailStatus, when
// set, is returned by the per-file endpoint in place of Status, mirroring
// how the real service reports richer statuses on detail fetches.
type FakeDocument struct {
	FileID         string
	FileName       string
	FileSize       int64
	Status         string
	DetailStatus   string
	ProcessingType string
	Finalized      bool
	FinalizedText  string
	TextSource     string
	Notes          string
	EditedText     string
	RawText        string
	FormattedText  string
	Title          string
	Author         string
	Tags           []string
	Collection     string
	MetaNotes      string
	MetaDate       string
	UploadedAt     time.Time
	DeletedAt      time.Time
	EditHistory    []FakeEdit
}

// FakeEdit is one finalized-text edit recorded by the fake backend.
type FakeEdit struct {
	Reason       string
	PreviousText string
	EditedAt     time.Time
}

// FakeBackend is an in-process stand-in for the digitization service.
type FakeBackend struct {
	ts *httptest.Server

	mu         sync.Mutex
	snake      bool
	token      string
	docs       []*FakeDocument
	bin        []*FakeDocument
	nextID     int
	version    string
	routing    string
	uploadCode int
	uploadMsg  string
	deleteCode int
	deleteMsg  string
	listHits   int
	detailHits map[string]int
}

// NewFakeBackend starts the fake service. It emits camelCase payloads and
// long-batch routing decisions until told otherwise, and shuts down with
// the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	f := &FakeBackend{
		version:    "1.4.2",
		routing:    "long-batch",
		detailHits: make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/batch/processed", f.handleProcessed)
	mux.HandleFunc("/batch/processed/edit", f.handleEditOCR)
	mux.HandleFunc("/batch/processed/finalize/", f.handleFinalize)
	mux.HandleFunc("/finalized/edit/", f.handleEditFinalized)
	mux.HandleFunc("/batch/upload", f.handleUpload)
	mux.HandleFunc("/batch/delete/", f.handleDelete)
	mux.HandleFunc("/batch/restore/", f.handleRestore)
	mux.HandleFunc("/batch/recycle-bin", f.handleRecycleBin)
	mux.HandleFunc("/batch/search", f.handleSearch)
	f.ts = httptest.NewServer(mux)
	t.Cleanup(f.ts.Close)
	return f
}

// URL returns the base URL a backend client should be pointed at.
func (f *FakeBackend) URL() string { return f.ts.URL }

// UseSnakeCase switches responses to snake_case field names with epoch
// timestamps, the dialect of older backend deployments.
func (f *FakeBackend) UseSnakeCase(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snake = v
}

// RequireToken makes every endpoint demand the given bearer token.
func (f *FakeBackend) RequireToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

// SetVersion changes the deployment version stamped on upload receipts.
func (f *FakeBackend) SetVersion(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.version = v
}

// RouteUploads sets the routing decision assigned to subsequent uploads.
func (f *FakeBackend) RouteUploads(route string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routing = route
}

// FailUploads makes the upload endpoint answer with the given status and
// message. A zero code restores normal behavior.
func (f *FakeBackend) FailUploads(code int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadCode, f.uploadMsg = code, message
}

// FailDeletes makes the delete endpoint answer with the given status and
// message. A zero code restores normal behavior.
func (f *FakeBackend) FailDeletes(code int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCode, f.deleteMsg = code, message
}

// AddDocument seeds a record. Missing fields get serviceable defaults.
func (f *FakeBackend) AddDocument(doc FakeDocument) *FakeDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc.FileID == "" {
		f.nextID++
		doc.FileID = fmt.Sprintf("file-%04d", f.nextID)
	}
	if doc.Status == "" {
		doc.Status = "processing"
	}
	if doc.ProcessingType == "" {
		doc.ProcessingType = "long-batch"
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	d := doc
	f.docs = append(f.docs, &d)
	return &d
}

// SetStatus rewrites the listed status of one record.
func (f *FakeBackend) SetStatus(fileID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d := f.find(fileID); d != nil {
		d.Status = status
	}
}

// SetDetailStatus sets the status reported only by the per-file endpoint.
func (f *FakeBackend) SetDetailStatus(fileID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d := f.find(fileID); d != nil {
		d.DetailStatus = status
	}
}

// RemoveDocument drops a record outright, as if purged server-side.
func (f *FakeBackend) RemoveDocument(fileID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.docs {
		if d.FileID == fileID {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return
		}
	}
}

// Document returns a copy of the record with the given file ID.
func (f *FakeBackend) Document(fileID string) (FakeDocument, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d := f.find(fileID); d != nil {
		return *d, true
	}
	return FakeDocument{}, false
}

// Documents returns copies of all live records in insertion order.
func (f *FakeBackend) Documents() []FakeDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeDocument, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, *d)
	}
	return out
}

// Binned reports whether the record sits in the recycle bin.
func (f *FakeBackend) Binned(fileID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.bin {
		if d.FileID == fileID {
			return true
		}
	}
	return false
}

// ListHits counts how many times the list endpoint was queried.
func (f *FakeBackend) ListHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listHits
}

// DetailHits counts how many times one file's detail endpoint was queried.
func (f *FakeBackend) DetailHits(fileID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailHits[fileID]
}

func (f *FakeBackend) find(fileID string) *FakeDocument {
	for _, d := range f.docs {
		if d.FileID == fileID {
			return d
		}
	}
	return nil
}

func (f *FakeBackend) authorized(w http.ResponseWriter, r *http.Request) bool {
	f.mu.Lock()
	token := f.token
	f.mu.Unlock()
	if token == "" || r.Header.Get("Authorization") == "Bearer "+token {
		return true
	}
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprint(w, `{"error": "unauthorized"}`)
	return false
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (f *FakeBackend) handleProcessed(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	fileID := r.URL.Query().Get("fileId")
	f.mu.Lock()
	defer f.mu.Unlock()
	if fileID == "" {
		f.listHits++
		list := make([]map[string]interface{}, 0, len(f.docs))
		for _, d := range f.docs {
			list = append(list, f.docJSON(d, false))
		}
		wrapper := "documents"
		if f.snake {
			wrapper = "files"
		}
		json.NewEncoder(w).Encode(map[string]interface{}{wrapper: list})
		return
	}
	f.detailHits[fileID]++
	d := f.find(fileID)
	if d == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	json.NewEncoder(w).Encode(f.docJSON(d, true))
}

func (f *FakeBackend) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	f.mu.Lock()
	code, msg := f.uploadCode, f.uploadMsg
	f.mu.Unlock()
	if code != 0 {
		writeError(w, code, msg)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "malformed upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()
	size, _ := io.Copy(io.Discard, file)

	f.mu.Lock()
	f.nextID++
	doc := &FakeDocument{
		FileID:         fmt.Sprintf("file-%04d", f.nextID),
		FileName:       header.Filename,
		FileSize:       size,
		Status:         "processing",
		ProcessingType: f.routing,
		Title:          r.FormValue("title"),
		Author:         r.FormValue("author"),
		MetaDate:       r.FormValue("date"),
		Collection:     r.FormValue("collection"),
		MetaNotes:      r.FormValue("notes"),
		UploadedAt:     time.Now().UTC(),
	}
	if tags := r.FormValue("tags"); tags != "" {
		doc.Tags = strings.Split(tags, ",")
	}
	f.docs = append(f.docs, doc)

	fileKey, routeKey, depKey := "fileId", "decision", "deploymentInfo"
	if f.snake {
		fileKey, routeKey, depKey = "file_id", "routing_decision", "deployment_info"
	}
	resp := map[string]interface{}{
		"files": []map[string]interface{}{{
			fileKey:   doc.FileID,
			"routing": map[string]string{routeKey: doc.ProcessingType},
		}},
		depKey: map[string]string{"version": f.version, "environment": "test"},
	}
	f.mu.Unlock()
	json.NewEncoder(w).Encode(resp)
}

func (f *FakeBackend) handleEditOCR(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	var payload struct {
		EditedText string `json:"editedText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed edit request")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.find(r.URL.Query().Get("fileId"))
	if d == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	d.EditedText = payload.EditedText
	fmt.Fprint(w, `{"message": "edit saved"}`)
}

func (f *FakeBackend) handleFinalize(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	fileID := strings.TrimPrefix(r.URL.Path, "/batch/processed/finalize/")
	var payload struct {
		TextSource string `json:"textSource"`
		Notes      string `json:"notes"`
		EditedText string `json:"editedText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed finalize request")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.find(fileID)
	if d == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	switch payload.TextSource {
	case "formatted":
		d.FinalizedText = d.FormattedText
	case "edited":
		if payload.EditedText != "" {
			d.EditedText = payload.EditedText
		}
		d.FinalizedText = d.EditedText
	default:
		d.FinalizedText = d.RawText
	}
	d.TextSource = payload.TextSource
	d.Notes = payload.Notes
	d.Finalized = true
	d.Status = "finalized"
	fmt.Fprint(w, `{"message": "document finalized"}`)
}

func (f *FakeBackend) handleEditFinalized(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	fileID := strings.TrimPrefix(r.URL.Path, "/finalized/edit/")
	var payload struct {
		FinalizedText   string `json:"finalizedText"`
		EditReason      string `json:"editReason"`
		PreserveHistory bool   `json:"preserveHistory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed edit request")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.find(fileID)
	if d == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if !d.Finalized {
		writeError(w, http.StatusBadRequest, "document is not finalized")
		return
	}
	if payload.PreserveHistory {
		d.EditHistory = append(d.EditHistory, FakeEdit{
			Reason:       payload.EditReason,
			PreviousText: d.FinalizedText,
			EditedAt:     time.Now().UTC(),
		})
	}
	d.FinalizedText = payload.FinalizedText
	fmt.Fprint(w, `{"message": "finalized text updated"}`)
}

func (f *FakeBackend) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteCode != 0 {
		writeError(w, f.deleteCode, f.deleteMsg)
		return
	}
	fileID := strings.TrimPrefix(r.URL.Path, "/batch/delete/")
	for i, d := range f.docs {
		if d.FileID == fileID {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			if r.URL.Query().Get("permanent") != "true" {
				d.DeletedAt = time.Now().UTC()
				f.bin = append(f.bin, d)
			}
			fmt.Fprint(w, `{"message": "document deleted"}`)
			return
		}
	}
	// A permanent delete also purges recycle-bin residents.
	if r.URL.Query().Get("permanent") == "true" {
		for i, d := range f.bin {
			if d.FileID == fileID {
				f.bin = append(f.bin[:i], f.bin[i+1:]...)
				fmt.Fprint(w, `{"message": "document deleted"}`)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "document not found")
}

func (f *FakeBackend) handleRestore(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	fileID := strings.TrimPrefix(r.URL.Path, "/batch/restore/")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.bin {
		if d.FileID == fileID {
			f.bin = append(f.bin[:i], f.bin[i+1:]...)
			d.DeletedAt = time.Time{}
			f.docs = append(f.docs, d)
			fmt.Fprint(w, `{"message": "document restored"}`)
			return
		}
	}
	writeError(w, http.StatusNotFound, "document not found in recycle bin")
}

func (f *FakeBackend) handleRecycleBin(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]map[string]interface{}, 0, len(f.bin))
	for _, d := range f.bin {
		obj := map[string]interface{}{}
		f.set(obj, "fileId", "file_id", d.FileID)
		f.set(obj, "fileName", "file_name", d.FileName)
		f.set(obj, "fileSize", "file_size", d.FileSize)
		f.setTime(obj, "deletedAt", "deleted_at", d.DeletedAt)
		items = append(items, obj)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
}

func (f *FakeBackend) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	query := strings.ToLower(r.URL.Query().Get("q"))
	author := strings.ToLower(r.URL.Query().Get("author"))
	f.mu.Lock()
	defer f.mu.Unlock()
	results := make([]map[string]interface{}, 0)
	for _, d := range f.docs {
		if !d.Finalized {
			continue
		}
		haystack := strings.ToLower(d.FileName + " " + d.Title + " " + d.FinalizedText)
		if query != "" && !strings.Contains(haystack, query) {
			continue
		}
		if author != "" && !strings.Contains(strings.ToLower(d.Author), author) {
			continue
		}
		snippet := d.FinalizedText
		if len(snippet) > 80 {
			snippet = snippet[:80]
		}
		obj := map[string]interface{}{
			"title":   d.Title,
			"author":  d.Author,
			"snippet": snippet,
			"score":   1.0,
		}
		f.set(obj, "fileId", "file_id", d.FileID)
		f.set(obj, "fileName", "file_name", d.FileName)
		results = append(results, obj)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
}

// set stores v under the camel or snake key per the active dialect.
// Callers hold f.mu.
func (f *FakeBackend) set(obj map[string]interface{}, camel, snake string, v interface{}) {
	if f.snake {
		obj[snake] = v
	} else {
		obj[camel] = v
	}
}

// setTime emits RFC3339 in camel mode and epoch seconds in snake mode;
// older deployments pair snake_case keys with epoch timestamps.
func (f *FakeBackend) setTime(obj map[string]interface{}, camel, snake string, t time.Time) {
	if t.IsZero() {
		return
	}
	if f.snake {
		obj[snake] = t.Unix()
	} else {
		obj[camel] = t.Format(time.RFC3339)
	}
}

// docJSON renders one record in the active dialect. detail selects the
// per-file view, where DetailStatus overrides the listed status.
func (f *FakeBackend) docJSON(d *FakeDocument, detail bool) map[string]interface{} {
	status := d.Status
	if detail && d.DetailStatus != "" {
		status = d.DetailStatus
	}
	obj := map[string]interface{}{"finalized": d.Finalized}
	f.set(obj, "fileId", "file_id", d.FileID)
	f.set(obj, "fileName", "file_name", d.FileName)
	f.set(obj, "fileSize", "file_size", d.FileSize)
	f.set(obj, "processingStatus", "processing_status", status)
	f.set(obj, "processingType", "processing_type", d.ProcessingType)
	f.setTime(obj, "uploadedAt", "uploaded_at", d.UploadedAt)

	if d.Title != "" || d.Author != "" || len(d.Tags) > 0 || d.Collection != "" || d.MetaNotes != "" || d.MetaDate != "" {
		obj["metadata"] = map[string]interface{}{
			"title":      d.Title,
			"author":     d.Author,
			"date":       d.MetaDate,
			"tags":       d.Tags,
			"collection": d.Collection,
			"notes":      d.MetaNotes,
		}
	}
	if d.RawText != "" || d.EditedText != "" || d.FormattedText != "" {
		ocr := map[string]interface{}{"confidence": 0.97}
		f.set(ocr, "rawText", "raw_text", d.RawText)
		f.set(ocr, "formattedText", "formatted_text", d.FormattedText)
		f.set(ocr, "editedText", "edited_text", d.EditedText)
		f.set(obj, "ocrResults", "ocr_results", ocr)
	}
	if d.Finalized {
		fin := map[string]interface{}{"text": d.FinalizedText, "notes": d.Notes}
		f.set(fin, "textSource", "text_source", d.TextSource)
		if len(d.EditHistory) > 0 {
			edits := make([]map[string]interface{}, 0, len(d.EditHistory))
			for _, e := range d.EditHistory {
				eo := map[string]interface{}{"reason": e.Reason}
				f.set(eo, "previousText", "previous_text", e.PreviousText)
				f.setTime(eo, "editedAt", "edited_at", e.EditedAt)
				edits = append(edits, eo)
			}
			f.set(fin, "editHistory", "edit_history", edits)
		}
		f.set(obj, "finalizedResults", "finalized_results", fin)
	}
	return obj
}
