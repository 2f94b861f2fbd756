package session

import (
	"context"
	"testing"
	"time"

	"github.com/scandesk/scandesk/internal/models"
	"github.com/scandesk/scandesk/internal/testutil"
)

func TestRefreshListDropsDeletedRecords(t *testing.T) {
	s, fake := newTestSession(t)
	ctx := context.Background()

	fake.AddDocument(testutil.FakeDocument{FileID: "file-live", FileName: "live.pdf", Status: "processed"})
	fake.AddDocument(testutil.FakeDocument{FileID: "file-gone", FileName: "gone.pdf", Status: "deleted"})

	if err := s.RefreshList(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	snap, _ := s.Snapshot()
	if len(snap.Documents) != 1 || snap.Documents[0].FileID != "file-live" {
		t.Fatalf("deleted record leaked into the working list: %+v", snap.Documents)
	}
}

func TestRefreshListPrunesConfirmedJournal(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	entry := mustAttach(t, s, "handoff.pdf", 1024, nil)
	if err := s.Upload(ctx, entry.ID); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	// Before the next poll the journal row is the only trace of the file.
	snap, _ := s.Snapshot()
	if len(snap.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(snap.Documents))
	}
	if snap.Documents[0].FromProcessed || snap.Documents[0].Status != models.StatusUploaded {
		t.Errorf("expected a local uploaded row, got %+v", snap.Documents[0])
	}

	// The poll confirms the file; the backend record must take over without
	// the file ever appearing twice or not at all.
	if err := s.RefreshList(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	snap, _ = s.Snapshot()
	if len(snap.Documents) != 1 {
		t.Fatalf("expected 1 document after handoff, got %d", len(snap.Documents))
	}
	if !snap.Documents[0].FromProcessed || snap.Documents[0].FileID != "file-0001" {
		t.Errorf("backend record did not take over: %+v", snap.Documents[0])
	}

	entries, _ := s.store.GetQueueEntries()
	if len(entries) != 0 {
		t.Errorf("journal row survived confirmation: %+v", entries)
	}
}

func TestRefreshListMarkLifecycle(t *testing.T) {
	s, fake := newTestSession(t)
	ctx := context.Background()

	fake.AddDocument(testutil.FakeDocument{FileID: "file-doomed", FileName: "doomed.pdf", Status: "processed"})
	if err := s.RefreshList(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if err := s.Delete(ctx, "file-doomed", false); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// A poll snapshot taken before the deletion landed may still list the
	// file; the mark must pin its status to deleting regardless.
	fake.AddDocument(testutil.FakeDocument{FileID: "file-doomed", FileName: "doomed.pdf", Status: "processed"})
	if err := s.RefreshList(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	snap, _ := s.Snapshot()
	if len(snap.Documents) != 1 || snap.Documents[0].Status != models.StatusDeleting {
		t.Fatalf("stale snapshot unpinned the deleting status: %+v", snap.Documents)
	}
	if snap.Counts.Deleting != 1 {
		t.Errorf("deleting not counted: %+v", snap.Counts)
	}
	marks, _ := s.store.DeletionMarks()
	if _, ok := marks["file-doomed"]; !ok {
		t.Fatal("deletion mark cleared too early")
	}

	// Once a snapshot omits the file the deletion is confirmed and the
	// mark is retired.
	fake.RemoveDocument("file-doomed")
	if err := s.RefreshList(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	snap, _ = s.Snapshot()
	if len(snap.Documents) != 0 {
		t.Fatalf("document survived confirmed deletion: %+v", snap.Documents)
	}
	marks, _ = s.store.DeletionMarks()
	if len(marks) != 0 {
		t.Errorf("mark survived confirmed deletion: %v", marks)
	}
}

func TestRefreshListClearsMarkOnDeletedStatus(t *testing.T) {
	s, fake := newTestSession(t)
	ctx := context.Background()

	fake.AddDocument(testutil.FakeDocument{FileID: "file-x", FileName: "x.pdf", Status: "processed"})
	if err := s.store.MarkDeleting("file-x"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	fake.SetStatus("file-x", "deleted")

	if err := s.RefreshList(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	snap, _ := s.Snapshot()
	if len(snap.Documents) != 0 {
		t.Fatalf("deleted record shown: %+v", snap.Documents)
	}
	marks, _ := s.store.DeletionMarks()
	if len(marks) != 0 {
		t.Errorf("mark not cleared for a deleted record: %v", marks)
	}
}

func TestRefreshDetailsTiers(t *testing.T) {
	s, fake := newTestSession(t)
	ctx := context.Background()
	now := time.Now().UTC()
	s.now = func() time.Time { return now }

	fake.AddDocument(testutil.FakeDocument{FileID: "file-lb", FileName: "lb.pdf", Status: "processing", ProcessingType: models.RouteLongBatch})
	fake.AddDocument(testutil.FakeDocument{FileID: "file-lb2", FileName: "lb2.pdf", Status: "processing", ProcessingType: models.RouteLongBatch})
	fake.AddDocument(testutil.FakeDocument{FileID: "file-sb", FileName: "sb.jpg", Status: "processing", ProcessingType: models.RouteShortBatch})
	fake.AddDocument(testutil.FakeDocument{FileID: "file-done", FileName: "done.pdf", Status: "processed", ProcessingType: models.RouteLongBatch})
	fake.SetDetailStatus("file-lb", "In progress 42.5% - Refining text")
	fake.SetDetailStatus("file-lb2", "Queued for OCR")

	if err := s.RefreshList(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	s.RefreshDetails(ctx)

	if got := fake.DetailHits("file-lb"); got != 1 {
		t.Errorf("file-lb detail hits = %d, want 1", got)
	}
	if got := fake.DetailHits("file-lb2"); got != 1 {
		t.Errorf("file-lb2 detail hits = %d, want 1", got)
	}
	if got := fake.DetailHits("file-sb"); got != 0 {
		t.Errorf("short-batch file was detail-polled %d times", got)
	}
	if got := fake.DetailHits("file-done"); got != 0 {
		t.Errorf("settled file was detail-polled %d times", got)
	}

	snap, _ := s.Snapshot()
	byID := make(map[string]models.DisplayDocument)
	for _, d := range snap.Documents {
		byID[d.FileID] = d
	}
	lb := byID["file-lb"]
	if lb.Status != "In progress 42.5% - Refining text" {
		t.Errorf("detailed status not projected verbatim: %q", lb.Status)
	}
	if lb.Label != "In progress 42.5% - Refining text" {
		t.Errorf("detailed label rewritten: %q", lb.Label)
	}
	if lb.Progress != 43 {
		t.Errorf("expected 42.5%% to round to 43, got %d", lb.Progress)
	}

	// Statuses carrying a progress marker refresh on the aggressive tier;
	// the rest keep the standard window.
	now = now.Add(6 * time.Second)
	s.RefreshDetails(ctx)
	if got := fake.DetailHits("file-lb"); got != 2 {
		t.Errorf("aggressive tier: file-lb hits = %d, want 2", got)
	}
	if got := fake.DetailHits("file-lb2"); got != 1 {
		t.Errorf("standard tier refreshed early: file-lb2 hits = %d, want 1", got)
	}

	now = now.Add(6 * time.Second)
	s.RefreshDetails(ctx)
	if got := fake.DetailHits("file-lb"); got != 3 {
		t.Errorf("file-lb hits = %d, want 3", got)
	}
	if got := fake.DetailHits("file-lb2"); got != 2 {
		t.Errorf("file-lb2 hits = %d, want 2", got)
	}
}

func TestRefreshDetailsCeiling(t *testing.T) {
	s, fake := newTestSession(t)
	ctx := context.Background()
	now := time.Now().UTC()
	s.now = func() time.Time { return now }

	fake.AddDocument(testutil.FakeDocument{FileID: "file-stuck", FileName: "stuck.pdf", Status: "processing", ProcessingType: models.RouteLongBatch})
	fake.SetDetailStatus("file-stuck", "In progress 10% - OCR")

	if err := s.RefreshList(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	s.RefreshDetails(ctx)
	if got := fake.DetailHits("file-stuck"); got != 1 {
		t.Fatalf("detail hits = %d, want 1", got)
	}

	s.mu.Lock()
	s.refreshes["file-stuck"] = detailRefreshCeiling
	s.mu.Unlock()

	now = now.Add(time.Minute)
	s.RefreshDetails(ctx)
	if got := fake.DetailHits("file-stuck"); got != 1 {
		t.Errorf("ceiling did not stop polling: %d hits", got)
	}

	// A manual refresh resets the budget.
	if err := s.ForceRefresh(ctx); err != nil {
		t.Fatalf("force refresh failed: %v", err)
	}
	s.RefreshDetails(ctx)
	if got := fake.DetailHits("file-stuck"); got != 2 {
		t.Errorf("budget not reset by manual refresh: %d hits", got)
	}
}

func TestRefreshDetailReportsTerminal(t *testing.T) {
	s, fake := newTestSession(t)
	ctx := context.Background()

	fake.AddDocument(testutil.FakeDocument{FileID: "file-sb", FileName: "sb.jpg", Status: "processing", ProcessingType: models.RouteShortBatch})
	if err := s.RefreshList(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	terminal, err := s.RefreshDetail(ctx, "file-sb")
	if err != nil {
		t.Fatalf("detail refresh failed: %v", err)
	}
	if terminal {
		t.Error("processing reported as terminal")
	}

	fake.SetStatus("file-sb", "completed")
	terminal, err = s.RefreshDetail(ctx, "file-sb")
	if err != nil {
		t.Fatalf("detail refresh failed: %v", err)
	}
	if !terminal {
		t.Error("completed not reported as terminal")
	}
}

func TestForceRefreshClearsDetailCache(t *testing.T) {
	s, fake := newTestSession(t)
	ctx := context.Background()

	fake.AddDocument(testutil.FakeDocument{FileID: "file-lb", FileName: "lb.pdf", Status: "processing", ProcessingType: models.RouteLongBatch})
	fake.SetDetailStatus("file-lb", "In progress 80% - Formatting")

	if err := s.RefreshList(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	s.RefreshDetails(ctx)
	snap, _ := s.Snapshot()
	if snap.Documents[0].Status != "In progress 80% - Formatting" {
		t.Fatalf("detail not projected: %q", snap.Documents[0].Status)
	}

	fake.SetDetailStatus("file-lb", "")
	if err := s.ForceRefresh(ctx); err != nil {
		t.Fatalf("force refresh failed: %v", err)
	}
	snap, _ = s.Snapshot()
	if snap.Documents[0].Status != models.StatusProcessing {
		t.Errorf("stale detail survived the manual refresh: %q", snap.Documents[0].Status)
	}
}
