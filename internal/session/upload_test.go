package session

import (
	"context"
	"strings"
	"testing"

	"github.com/scandesk/scandesk/internal/models"
	"github.com/scandesk/scandesk/internal/testutil"
)

func mustAttach(t *testing.T, s *Session, name string, size int, md *models.DocumentMetadata) *models.QueueEntry {
	t.Helper()
	path := testutil.CreateScanFile(t, t.TempDir(), name, size)
	results := s.Attach([]string{path}, md)
	if results[0].Err != nil {
		t.Fatalf("attach of %s failed: %v", name, results[0].Err)
	}
	return results[0].Entry
}

func TestUploadLifecycle(t *testing.T) {
	s, fake := newTestSession(t)
	hub := &captureHub{}
	s.hub = hub
	ctx := context.Background()

	md := &models.DocumentMetadata{
		Title:  "Deed of Sale",
		Author: "County Clerk",
		Tags:   []string{"legal", "1922"},
	}
	entry := mustAttach(t, s, "deed.pdf", 4096, md)

	if err := s.Upload(ctx, entry.ID); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	got, err := s.store.GetQueueEntry(entry.ID)
	if err != nil {
		t.Fatalf("failed to re-read entry: %v", err)
	}
	if got.Status != models.StatusUploaded {
		t.Errorf("expected uploaded, got %q", got.Status)
	}
	if got.FileID != "file-0001" {
		t.Errorf("expected file-0001, got %q", got.FileID)
	}
	if got.Progress != 100 {
		t.Errorf("expected progress 100, got %d", got.Progress)
	}

	doc, ok := fake.Document("file-0001")
	if !ok {
		t.Fatal("backend never received the file")
	}
	if doc.FileName != "deed.pdf" || doc.FileSize != 4096 {
		t.Errorf("backend saw wrong file: %+v", doc)
	}
	if doc.Title != "Deed of Sale" || doc.Author != "County Clerk" {
		t.Errorf("metadata fields not forwarded: %+v", doc)
	}
	if len(doc.Tags) != 2 || doc.Tags[0] != "legal" || doc.Tags[1] != "1922" {
		t.Errorf("tags not forwarded: %v", doc.Tags)
	}

	msgs := hub.progress()
	if len(msgs) == 0 {
		t.Fatal("no progress broadcasts")
	}
	sawUploading := false
	for _, m := range msgs {
		if m.Status == models.StatusUploading {
			sawUploading = true
		}
	}
	if !sawUploading {
		t.Error("no uploading broadcast seen")
	}
	last := msgs[len(msgs)-1]
	if !last.Done || last.Progress != 100 || last.FileID != "file-0001" {
		t.Errorf("final broadcast incomplete: %+v", last)
	}
}

func TestUploadShortBatchTriggersBurst(t *testing.T) {
	s, fake := newTestSession(t)
	ctx := context.Background()
	fake.RouteUploads(models.RouteShortBatch)

	var burstID string
	s.SetBurstHook(func(fileID string) { burstID = fileID })

	entry := mustAttach(t, s, "receipt.jpg", 800, nil)
	if err := s.Upload(ctx, entry.ID); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if burstID != "file-0001" {
		t.Errorf("burst hook not fired for short-batch upload, got %q", burstID)
	}
	got, _ := s.store.GetQueueEntry(entry.ID)
	if got.Routing != models.RouteShortBatch {
		t.Errorf("routing decision not journaled: %q", got.Routing)
	}
}

func TestUploadLongBatchSkipsBurst(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	var burstID string
	s.SetBurstHook(func(fileID string) { burstID = fileID })

	entry := mustAttach(t, s, "tome.pdf", 4096, nil)
	if err := s.Upload(ctx, entry.ID); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if burstID != "" {
		t.Errorf("burst hook fired for a long-batch upload: %q", burstID)
	}
}

func TestUploadFailureRecordsBackendMessage(t *testing.T) {
	s, fake := newTestSession(t)
	ctx := context.Background()
	fake.FailUploads(400, "File too large")

	entry := mustAttach(t, s, "oversized.pdf", 2048, nil)
	err := s.Upload(ctx, entry.ID)
	if err == nil {
		t.Fatal("expected upload to fail")
	}

	got, _ := s.store.GetQueueEntry(entry.ID)
	if got.Status != models.StatusFailed {
		t.Errorf("expected failed, got %q", got.Status)
	}
	if got.Error != "File too large" {
		t.Errorf("expected the backend's message, got %q", got.Error)
	}

	// A failed entry may be retried once the backend recovers.
	fake.FailUploads(0, "")
	if err := s.Upload(ctx, entry.ID); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	got, _ = s.store.GetQueueEntry(entry.ID)
	if got.Status != models.StatusUploaded || got.Error != "" {
		t.Errorf("retry did not clean up the entry: %+v", got)
	}
}

func TestUploadRequiresPendingOrFailed(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	entry := mustAttach(t, s, "scan.pdf", 1024, nil)
	if err := s.Upload(ctx, entry.ID); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	err := s.Upload(ctx, entry.ID)
	if err == nil || !strings.Contains(err.Error(), "only pending or failed") {
		t.Errorf("expected status guard error, got %v", err)
	}

	if err := s.Upload(ctx, "no-such-entry"); err == nil {
		t.Error("expected an error for an unknown entry")
	}
}

func TestUploadPendingDrainsQueue(t *testing.T) {
	s, fake := newTestSession(t)
	ctx := context.Background()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		mustAttach(t, s, name, 512, nil)
	}
	result, err := s.UploadPending(ctx)
	if err != nil {
		t.Fatalf("UploadPending failed: %v", err)
	}
	if !result.AllOK() || len(result.Succeeded) != 3 {
		t.Fatalf("expected 3 successes, got %+v", result)
	}
	if len(fake.Documents()) != 3 {
		t.Errorf("backend holds %d documents, want 3", len(fake.Documents()))
	}

	entries, _ := s.store.GetQueueEntriesByStatus(models.StatusPending)
	if len(entries) != 0 {
		t.Errorf("%d entries still pending after drain", len(entries))
	}
}

func TestUploadTracksDeploymentVersion(t *testing.T) {
	s, fake := newTestSession(t)
	ctx := context.Background()

	entry := mustAttach(t, s, "first.pdf", 256, nil)
	if err := s.Upload(ctx, entry.ID); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if s.lastVersion != "1.4.2" {
		t.Errorf("expected version 1.4.2 recorded, got %q", s.lastVersion)
	}

	fake.SetVersion("1.5.0")
	entry = mustAttach(t, s, "second.pdf", 256, nil)
	if err := s.Upload(ctx, entry.ID); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if s.lastVersion != "1.5.0" {
		t.Errorf("expected version 1.5.0 recorded, got %q", s.lastVersion)
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name     string
		v1       string
		v2       string
		expected int
		wantErr  bool
	}{
		{"Equal versions", "1.0.0", "1.0.0", 0, false},
		{"v1 less than v2", "1.0.0", "1.0.1", -1, false},
		{"v1 greater than v2", "1.0.1", "1.0.0", 1, false},
		{"Major version difference", "1.0.0", "2.0.0", -1, false},
		{"Pre-release vs release", "1.0.0-alpha", "1.0.0", -1, false},
		{"Version with leading v", "v1.0.0", "1.0.0", 0, false},
		{"Invalid version v1", "invalid", "1.0.0", 0, true},
		{"Invalid version v2", "1.0.0", "invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := compareVersions(tt.v1, tt.v2)
			if (err != nil) != tt.wantErr {
				t.Errorf("compareVersions() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && result != tt.expected {
				t.Errorf("compareVersions() = %v, want %v", result, tt.expected)
			}
		})
	}
}
