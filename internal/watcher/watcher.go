// This file implements the inbox hot folder. It uses OS-level file system
// events to pick up freshly scanned files, feed them through the upload
// pipeline, and move them aside once the backend has them.

package watcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/scandesk/scandesk/internal/config"
	"github.com/scandesk/scandesk/internal/session"
	"github.com/scandesk/scandesk/internal/store"
	"github.com/scandesk/scandesk/internal/util"
)

// SentDirName is the subdirectory of the inbox that uploaded files are
// moved into.
const SentDirName = "sent"

// InboxWatcher watches the inbox directory for new scan files and uploads
// them automatically.
type InboxWatcher struct {
	session       *session.Session
	store         *store.Store
	cfg           *config.Config
	watcher       *fsnotify.Watcher
	pendingPaths  map[string]bool
	mu            sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

// New creates an inbox watcher over the configured hot folder.
func New(sess *session.Session, st *store.Store, cfg *config.Config) *InboxWatcher {
	return &InboxWatcher{
		session:       sess,
		store:         st,
		cfg:           cfg,
		pendingPaths:  make(map[string]bool),
		debounceDelay: 2 * time.Second, // Wait 2 seconds after the last write before uploading
		stopChan:      make(chan struct{}),
	}
}

// Start begins watching the inbox directory. Files already sitting in the
// inbox are swept up immediately, so scans dropped while the agent was
// down are not lost.
func (w *InboxWatcher) Start() error {
	inbox := w.cfg.Inbox.Path
	if inbox == "" {
		return errors.New("no inbox directory configured")
	}
	if err := util.ValidateFolderPath(inbox); err != nil {
		return fmt.Errorf("inbox directory unusable: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(inbox, SentDirName), 0755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if err := watcher.Add(inbox); err != nil {
		watcher.Close()
		return err
	}

	log.Printf("Inbox watcher started for: %s", inbox)

	go w.processEvents()
	w.sweep(inbox)
	return nil
}

// Stop stops the inbox watcher.
func (w *InboxWatcher) Stop() error {
	close(w.stopChan)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// sweep enqueues scan files already present in the inbox.
func (w *InboxWatcher) sweep(inbox string) {
	entries, err := os.ReadDir(inbox)
	if err != nil {
		log.Printf("Inbox sweep failed: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(inbox, entry.Name())
		if w.isRelevantFile(path) {
			w.enqueue(path)
		}
	}
}

// processEvents processes file system events until the watcher stops.
func (w *InboxWatcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Inbox watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

// handleEvent processes a single file system event.
func (w *InboxWatcher) handleEvent(event fsnotify.Event) {
	// Ignore Chmod events (these are often triggered by opening folders,
	// reading files, etc.)
	if event.Op == fsnotify.Chmod {
		return
	}

	// Scanner software creates a file and then writes to it in bursts;
	// only Create and Write matter here.
	hasRelevantOp := (event.Op&fsnotify.Create == fsnotify.Create) ||
		(event.Op&fsnotify.Write == fsnotify.Write)
	if !hasRelevantOp {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return
	}
	if w.isRelevantFile(event.Name) {
		w.enqueue(event.Name)
	}
}

// isRelevantFile checks whether a path looks like a scan the pipeline will
// accept. Everything else (temp files, partial writes under odd names) is
// left alone.
func (w *InboxWatcher) isRelevantFile(path string) bool {
	return util.HasAllowedExtension(path, w.cfg.Upload.AllowedExtensions)
}

// enqueue records a path and resets the debounce timer.
func (w *InboxWatcher) enqueue(path string) {
	w.mu.Lock()
	w.pendingPaths[path] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.flush)
	w.mu.Unlock()
}

// flush snapshots the pending set and hands it to the upload pipeline.
func (w *InboxWatcher) flush() {
	w.mu.Lock()
	if len(w.pendingPaths) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pendingPaths))
	for path := range w.pendingPaths {
		paths = append(paths, path)
	}
	w.pendingPaths = make(map[string]bool)
	w.mu.Unlock()
	sort.Strings(paths)

	log.Printf("Inbox watcher detected %d new file(s)", len(paths))

	// Upload in a goroutine to keep the event loop responsive.
	go w.ingest(paths)
}

// ingest attaches and uploads each new file, then moves it into the sent
// subdirectory. Files already journaled (a failed upload awaiting retry,
// or a sweep overlapping an event) are skipped.
func (w *InboxWatcher) ingest(paths []string) {
	known, err := w.journaledPaths()
	if err != nil {
		log.Printf("Could not read the upload journal: %v", err)
		known = map[string]bool{}
	}
	for _, path := range paths {
		if known[path] {
			continue
		}
		results := w.session.Attach([]string{path}, nil)
		res := results[0]
		if res.Err != nil {
			log.Printf("Inbox file %s skipped: %v", path, res.Err)
			continue
		}
		if err := w.session.Upload(context.Background(), res.Entry.ID); err != nil {
			log.Printf("Inbox upload of %s failed: %v", path, err)
			continue
		}
		w.moveToSent(path)
	}
}

// journaledPaths returns the file paths of all live journal rows.
func (w *InboxWatcher) journaledPaths() (map[string]bool, error) {
	entries, err := w.store.GetQueueEntries()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(entries))
	for _, entry := range entries {
		known[entry.FilePath] = true
	}
	return known, nil
}

// moveToSent moves an uploaded file out of the inbox so it is never picked
// up twice. Name collisions get a timestamp suffix.
func (w *InboxWatcher) moveToSent(path string) {
	sentDir := filepath.Join(w.cfg.Inbox.Path, SentDirName)
	dest := filepath.Join(sentDir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(dest)
		dest = strings.TrimSuffix(dest, ext) + "-" + time.Now().Format("20060102-150405") + ext
	}
	if err := os.Rename(path, dest); err != nil {
		log.Printf("Could not move %s aside: %v", path, err)
	}
}
