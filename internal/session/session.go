// Package session owns the client-side state of the upload pipeline: the
// persistent upload journal, the last accepted backend snapshot, and the
// per-file detailed-status cache. All mutation happens under one mutex and
// every write replaces the affected collection wholesale, so readers always
// get a consistent view and the reconciler runs on snapshots without locks.
package session

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scandesk/scandesk/internal/backend"
	"github.com/scandesk/scandesk/internal/config"
	"github.com/scandesk/scandesk/internal/models"
	"github.com/scandesk/scandesk/internal/reconcile"
	"github.com/scandesk/scandesk/internal/store"
	"github.com/scandesk/scandesk/internal/util"
)

// detailRefreshCeiling caps how many times one file's detailed status is
// refetched, so a job the backend never resolves cannot be polled forever.
// At the 5s tier this is roughly twenty minutes of watching.
const detailRefreshCeiling = 240

// Broadcaster pushes JSON messages to connected dashboard clients. The
// websocket hub implements it; a nil Broadcaster means CLI mode.
type Broadcaster interface {
	BroadcastJSON(v interface{})
}

// Session is the view-model shared by the dashboard API and the CLI.
type Session struct {
	store  *store.Store
	client *backend.Client
	cfg    *config.Config
	hub    Broadcaster

	mu          sync.Mutex
	remote      []models.Document
	details     reconcile.DetailCache
	refreshes   map[string]int
	lastVersion string

	burst func(fileID string)
	now   func() time.Time
}

// New wires a session over the journal store and the backend client. hub
// may be nil when no dashboard is attached.
func New(st *store.Store, client *backend.Client, cfg *config.Config, hub Broadcaster) *Session {
	return &Session{
		store:     st,
		client:    client,
		cfg:       cfg,
		hub:       hub,
		details:   reconcile.DetailCache{},
		refreshes: make(map[string]int),
		now:       time.Now,
	}
}

// SetBurstHook registers the callback fired when a short-batch upload
// receipt arrives. The poll runner uses it to start burst polling for the
// new file.
func (s *Session) SetBurstHook(fn func(fileID string)) {
	s.burst = fn
}

// AttachResult reports the journal entry created for one file, or why the
// file was rejected.
type AttachResult struct {
	Path  string
	Entry *models.QueueEntry
	Err   error
}

// Attach validates each file and creates its pending journal entry. A bad
// file never aborts the rest of the batch; its result carries the error.
func (s *Session) Attach(paths []string, md *models.DocumentMetadata) []AttachResult {
	results := make([]AttachResult, 0, len(paths))
	attached := false
	for _, path := range paths {
		entry, err := s.attachOne(path, md)
		if err == nil {
			attached = true
		}
		results = append(results, AttachResult{Path: path, Entry: entry, Err: err})
	}
	if attached {
		s.broadcastSnapshot()
	}
	return results
}

func (s *Session) attachOne(path string, md *models.DocumentMetadata) (*models.QueueEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if !util.HasAllowedExtension(path, s.cfg.Upload.AllowedExtensions) {
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	maxBytes := int64(s.cfg.Upload.MaxSizeMB) << 20
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%s is %s, over the %d MB limit",
			filepath.Base(path), util.FormatBytes(info.Size()), s.cfg.Upload.MaxSizeMB)
	}

	entry := &models.QueueEntry{
		ID:          uuid.New().String(),
		FilePath:    path,
		DisplayName: filepath.Base(path),
		SizeBytes:   info.Size(),
		SizeLabel:   util.FormatBytes(info.Size()),
		Status:      models.StatusPending,
		Metadata:    copyMetadata(md),
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertQueueEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// copyMetadata snapshots the metadata block so later edits by the caller do
// not leak into already-attached entries.
func copyMetadata(md *models.DocumentMetadata) *models.DocumentMetadata {
	if md == nil {
		return nil
	}
	cp := *md
	if len(md.Tags) > 0 {
		cp.Tags = append([]string(nil), md.Tags...)
	}
	return &cp
}

// Snapshot merges the journal, the backend snapshot and the detail cache
// into the deduplicated display list with its status counts.
func (s *Session) Snapshot() (*models.QueueSnapshot, error) {
	local, err := s.store.GetQueueEntries()
	if err != nil {
		return nil, fmt.Errorf("failed to load upload journal: %w", err)
	}
	now := s.now()
	s.mu.Lock()
	remote := s.remote
	details := s.details
	s.mu.Unlock()

	docs := reconcile.Reconcile(local, remote, details, now)
	return &models.QueueSnapshot{
		Documents: docs,
		Counts:    reconcile.CountStatuses(docs),
		At:        now,
	}, nil
}

// BulkResult aggregates per-item outcomes of a bulk operation. Items are
// attempted independently; one failure never stops the rest.
type BulkResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// AllOK reports whether every item succeeded.
func (r BulkResult) AllOK() bool { return len(r.Failed) == 0 }

func (r *BulkResult) ok(id string) {
	r.Succeeded = append(r.Succeeded, id)
}

func (r *BulkResult) fail(id string, err error) {
	if r.Failed == nil {
		r.Failed = make(map[string]string)
	}
	r.Failed[id] = err.Error()
}

func (s *Session) broadcastSnapshot() {
	if s.hub == nil {
		return
	}
	snap, err := s.Snapshot()
	if err != nil {
		log.Printf("Failed to build queue snapshot for broadcast: %v", err)
		return
	}
	s.hub.BroadcastJSON(snap)
}

func (s *Session) broadcastProgress(p models.UploadProgress) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastJSON(p)
}
