package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scandesk/scandesk/internal/api"
	"github.com/scandesk/scandesk/internal/backend"
	"github.com/scandesk/scandesk/internal/models"
	"github.com/scandesk/scandesk/internal/session"
	"github.com/scandesk/scandesk/internal/store"
	"github.com/scandesk/scandesk/internal/testutil"
)

// setupTestServer initializes a full core.App, session and api.Server
// wired to a fake backend for integration testing.
func setupTestServer(t *testing.T) (*api.Server, *testutil.FakeBackend, *session.Session) {
	t.Helper()
	app := testutil.SetupTestApp(t)
	fake := testutil.NewFakeBackend(t)

	client := backend.New(fake.URL(), 5*time.Second, backend.StaticToken("test-token"))
	sess := session.New(store.New(app.DB()), client, app.Config(), app.WsHub())
	return api.NewServer(app, sess), fake, sess
}

func TestHandleListDocuments(t *testing.T) {
	server, fake, sess := setupTestServer(t)
	router := server.Router()

	fake.AddDocument(testutil.FakeDocument{FileName: "ledger.pdf", Status: models.StatusProcessed})
	fake.AddDocument(testutil.FakeDocument{FileName: "deed.pdf", Status: models.StatusProcessing})
	if err := sess.RefreshList(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	req, _ := http.NewRequest("GET", "/api/documents", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var snapshot models.QueueSnapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(snapshot.Documents) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(snapshot.Documents))
	}
	if snapshot.Counts.Completed != 1 || snapshot.Counts.Queued != 1 {
		t.Errorf("Unexpected counts: %+v", snapshot.Counts)
	}
}

func TestHandleDocumentCounts(t *testing.T) {
	server, fake, sess := setupTestServer(t)
	router := server.Router()

	fake.AddDocument(testutil.FakeDocument{FileName: "ledger.pdf", Status: models.StatusProcessed})
	if err := sess.RefreshList(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	path := testutil.CreateScanFile(t, t.TempDir(), "fresh.pdf", 1024)
	if res := sess.Attach([]string{path}, nil); res[0].Err != nil {
		t.Fatalf("attach failed: %v", res[0].Err)
	}

	req, _ := http.NewRequest("GET", "/api/documents/counts", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var counts models.StatusCounts
	if err := json.Unmarshal(rr.Body.Bytes(), &counts); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if counts.Attached != 1 || counts.Completed != 1 || counts.Total() != 2 {
		t.Errorf("Unexpected counts: %+v", counts)
	}
}

func TestHandleGetDocument(t *testing.T) {
	server, fake, _ := setupTestServer(t)
	router := server.Router()

	doc := fake.AddDocument(testutil.FakeDocument{
		FileName: "ledger.pdf",
		Status:   models.StatusProcessed,
		RawText:  "the quick brown fox",
	})

	t.Run("Success", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/documents/"+doc.FileID, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
		var got models.Document
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if got.FileID != doc.FileID || got.FileName != "ledger.pdf" {
			t.Errorf("handler returned wrong document: %+v", got)
		}
	})

	t.Run("Finalized Variant", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/documents/"+doc.FileID+"/finalize",
			bytes.NewBufferString(`{"text_source": "ocr"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("finalize failed: %d %s", rr.Code, rr.Body.String())
		}

		req, _ = http.NewRequest("GET", "/api/documents/"+doc.FileID+"?finalized=true", nil)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		var got models.Document
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if got.FinalizedResult == nil || got.FinalizedResult.Text != "the quick brown fox" {
			t.Errorf("finalized text missing from response: %+v", got.FinalizedResult)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/documents/file-9999", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusNotFound {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
		}
	})
}

func TestHandleRefresh(t *testing.T) {
	server, fake, _ := setupTestServer(t)
	router := server.Router()

	fake.AddDocument(testutil.FakeDocument{FileName: "ledger.pdf", Status: models.StatusProcessed})

	req, _ := http.NewRequest("POST", "/api/refresh", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	if fake.ListHits() == 0 {
		t.Error("refresh did not hit the backend")
	}

	var snapshot models.QueueSnapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(snapshot.Documents) != 1 {
		t.Errorf("Expected 1 document after refresh, got %d", len(snapshot.Documents))
	}
}

func TestHealthCheck(t *testing.T) {
	server, _, _ := setupTestServer(t)
	router := server.Router()

	req, _ := http.NewRequest("GET", "/api/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	var body map[string]string
	json.Unmarshal(rr.Body.Bytes(), &body)
	if body["status"] != "ok" {
		t.Errorf("Unexpected health payload: %v", body)
	}
}
