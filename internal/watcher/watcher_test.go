package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scandesk/scandesk/internal/backend"
	"github.com/scandesk/scandesk/internal/models"
	"github.com/scandesk/scandesk/internal/session"
	"github.com/scandesk/scandesk/internal/store"
	"github.com/scandesk/scandesk/internal/testutil"
)

func newTestWatcher(t *testing.T) (*InboxWatcher, *session.Session, *testutil.FakeBackend, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	fake := testutil.NewFakeBackend(t)
	cfg := testutil.TestConfig(t)
	inbox := t.TempDir()
	cfg.Inbox.Path = inbox

	client := backend.New(fake.URL(), 5*time.Second, backend.StaticToken("test-token"))
	sess := session.New(st, client, cfg, nil)
	w := New(sess, st, cfg)
	w.debounceDelay = 100 * time.Millisecond
	return w, sess, fake, inbox
}

func TestWatcherRequiresInbox(t *testing.T) {
	w, _, _, _ := newTestWatcher(t)
	w.cfg.Inbox.Path = ""
	if err := w.Start(); err == nil {
		t.Fatal("expected an error without an inbox path")
	}
}

func TestWatcherSweepsExistingFiles(t *testing.T) {
	w, _, fake, inbox := newTestWatcher(t)
	path := testutil.CreateScanFile(t, inbox, "backlog.pdf", 1024)

	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	// Sweep, debounce, upload and move-aside all happen in the background.
	time.Sleep(1500 * time.Millisecond)

	docs := fake.Documents()
	if len(docs) != 1 || docs[0].FileName != "backlog.pdf" {
		t.Fatalf("backlog file not uploaded: %+v", docs)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("uploaded file still in the inbox")
	}
	if _, err := os.Stat(filepath.Join(inbox, SentDirName, "backlog.pdf")); err != nil {
		t.Errorf("uploaded file not moved to sent: %v", err)
	}
}

func TestWatcherPicksUpNewFiles(t *testing.T) {
	w, _, fake, inbox := newTestWatcher(t)
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	// Wait a bit for watcher to initialize
	time.Sleep(100 * time.Millisecond)

	testutil.CreateScanFile(t, inbox, "fresh.pdf", 2048)
	stray := testutil.CreateScanFile(t, inbox, "readme.txt", 64)

	time.Sleep(1500 * time.Millisecond)

	docs := fake.Documents()
	if len(docs) != 1 || docs[0].FileName != "fresh.pdf" {
		t.Fatalf("expected only fresh.pdf uploaded, got %+v", docs)
	}
	if _, err := os.Stat(stray); err != nil {
		t.Error("non-scan file should be left alone")
	}
}

func TestWatcherSkipsJournaledPaths(t *testing.T) {
	w, sess, fake, inbox := newTestWatcher(t)
	path := testutil.CreateScanFile(t, inbox, "retry-later.pdf", 512)

	// The file is already journaled from a previous run; the sweep must
	// not attach it a second time.
	if res := sess.Attach([]string{path}, nil); res[0].Err != nil {
		t.Fatalf("attach failed: %v", res[0].Err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	time.Sleep(1500 * time.Millisecond)

	if docs := fake.Documents(); len(docs) != 0 {
		t.Errorf("journaled file was uploaded again: %+v", docs)
	}
	entries, _ := w.store.GetQueueEntries()
	if len(entries) != 1 {
		t.Errorf("expected a single journal row, got %d", len(entries))
	}
}

func TestWatcherLeavesFailedUploads(t *testing.T) {
	w, _, fake, inbox := newTestWatcher(t)
	fake.FailUploads(500, "storage offline")

	if err := w.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	path := testutil.CreateScanFile(t, inbox, "unlucky.pdf", 256)

	time.Sleep(1500 * time.Millisecond)

	if _, err := os.Stat(path); err != nil {
		t.Error("failed upload must stay in the inbox for retry")
	}
	entries, _ := w.store.GetQueueEntriesByStatus(models.StatusFailed)
	if len(entries) != 1 || entries[0].Error != "storage offline" {
		t.Errorf("failure not journaled: %+v", entries)
	}
}
