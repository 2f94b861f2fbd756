package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scandesk/scandesk/internal/models"
	"github.com/scandesk/scandesk/internal/testutil"
)

func TestHandleRecycleBin(t *testing.T) {
	server, fake, _ := setupTestServer(t)
	router := server.Router()

	doc := fake.AddDocument(testutil.FakeDocument{FileName: "old-ledger.pdf", Status: models.StatusProcessed})
	req, _ := http.NewRequest("DELETE", "/api/documents/"+doc.FileID, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", rr.Code)
	}

	req, _ = http.NewRequest("GET", "/api/recycle-bin", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	var entries []models.RecycleBinEntry
	if err := json.Unmarshal(rr.Body.Bytes(), &entries); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(entries) != 1 || entries[0].FileID != doc.FileID {
		t.Errorf("unexpected recycle bin contents: %+v", entries)
	}
}

func TestHandleSearch(t *testing.T) {
	server, fake, _ := setupTestServer(t)
	router := server.Router()

	fake.AddDocument(testutil.FakeDocument{
		FileName:      "fables.pdf",
		Status:        models.StatusFinalized,
		Finalized:     true,
		FinalizedText: "the quick brown fox jumps over the lazy dog",
		Author:        "Aesop",
	})
	fake.AddDocument(testutil.FakeDocument{
		FileName:      "ledger.pdf",
		Status:        models.StatusFinalized,
		Finalized:     true,
		FinalizedText: "accounts receivable for the year 1922",
		Author:        "Smith",
	})

	t.Run("Match", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/search?q=quick+brown", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
		var results []models.SearchResult
		if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(results) != 1 || results[0].FileName != "fables.pdf" {
			t.Errorf("unexpected search results: %+v", results)
		}
	})

	t.Run("Author Filter", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/search?q=the&author=Smith", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		var results []models.SearchResult
		if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(results) != 1 || results[0].FileName != "ledger.pdf" {
			t.Errorf("author filter not applied: %+v", results)
		}
	})

	t.Run("Missing Query", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/search", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
		}
	})
}
