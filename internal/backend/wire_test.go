package backend

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWireTimeFormats(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string // RFC3339, empty means nil
	}{
		{"rfc3339", `"2025-03-01T10:00:00Z"`, "2025-03-01T10:00:00Z"},
		{"rfc3339 with offset", `"2025-03-01T10:00:00+02:00"`, "2025-03-01T08:00:00Z"},
		{"epoch seconds", `1740823200`, "2025-03-01T10:00:00Z"},
		{"fractional epoch", `1740823200.5`, "2025-03-01T10:00:00Z"},
		{"null", `null`, ""},
		{"empty string", `""`, ""},
		{"garbage string", `"not a date"`, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var w wireTime
			if err := json.Unmarshal([]byte(tc.input), &w); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if tc.want == "" {
				if w.t != nil {
					t.Fatalf("expected nil time, got %v", w.t)
				}
				return
			}
			if w.t == nil {
				t.Fatal("expected a time, got nil")
			}
			want, _ := time.Parse(time.RFC3339, tc.want)
			if !w.t.Truncate(time.Second).Equal(want) {
				t.Errorf("expected %v, got %v", want, w.t)
			}
		})
	}
}

func TestWireDocumentCamelCase(t *testing.T) {
	raw := `{
		"fileId": "abc123",
		"fileName": "scan_001.pdf",
		"fileSize": 2048,
		"processingStatus": "Processing",
		"processingType": "long-batch",
		"metadata": {"title": "Deed of Sale", "tags": ["legal", "1922"]},
		"ocrResults": {"rawText": "raw", "formattedText": "fmt", "pageCount": 3},
		"textAnalysis": {"qualityScore": 0.91, "wordCount": 120},
		"uploadedAt": "2025-03-01T10:00:00Z"
	}`

	var wd wireDocument
	if err := json.Unmarshal([]byte(raw), &wd); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	doc := wd.toModel()

	if doc.FileID != "abc123" {
		t.Errorf("expected file ID 'abc123', got %q", doc.FileID)
	}
	if doc.FileName != "scan_001.pdf" {
		t.Errorf("expected file name 'scan_001.pdf', got %q", doc.FileName)
	}
	if doc.FileSize != 2048 {
		t.Errorf("expected size 2048, got %d", doc.FileSize)
	}
	if doc.Status != "processing" {
		t.Errorf("expected normalized status 'processing', got %q", doc.Status)
	}
	if doc.Metadata == nil || doc.Metadata.Title != "Deed of Sale" {
		t.Errorf("metadata not decoded: %+v", doc.Metadata)
	}
	if doc.OCR == nil || doc.OCR.PageCount != 3 {
		t.Errorf("ocr results not decoded: %+v", doc.OCR)
	}
	if doc.TextAnalysis == nil || doc.TextAnalysis.WordCount != 120 {
		t.Errorf("text analysis not decoded: %+v", doc.TextAnalysis)
	}
	if doc.UploadedAt == nil {
		t.Error("expected uploadedAt to decode")
	}
}

func TestWireDocumentSnakeCase(t *testing.T) {
	raw := `{
		"file_id": "def456",
		"file_name": "scan_002.pdf",
		"file_size": 4096,
		"processing_status": "completed",
		"processing_type": "short-batch",
		"ocr_results": {"raw_text": "raw", "edited_text": "edited", "page_count": 2},
		"text_analysis": {"quality_score": 0.77, "word_count": 45},
		"uploaded_at": 1740823200,
		"processed_at": "2025-03-01T10:05:00Z"
	}`

	var wd wireDocument
	if err := json.Unmarshal([]byte(raw), &wd); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	doc := wd.toModel()

	if doc.FileID != "def456" {
		t.Errorf("expected file ID 'def456', got %q", doc.FileID)
	}
	if doc.FileSize != 4096 {
		t.Errorf("expected size 4096, got %d", doc.FileSize)
	}
	if doc.Status != "completed" {
		t.Errorf("expected status 'completed', got %q", doc.Status)
	}
	if doc.OCR == nil || doc.OCR.EditedText != "edited" || doc.OCR.PageCount != 2 {
		t.Errorf("snake_case ocr results not decoded: %+v", doc.OCR)
	}
	if doc.TextAnalysis == nil || doc.TextAnalysis.QualityScore != 0.77 {
		t.Errorf("snake_case text analysis not decoded: %+v", doc.TextAnalysis)
	}
	if doc.UploadedAt == nil || doc.ProcessedAt == nil {
		t.Error("expected both timestamps to decode")
	}
}

func TestWireDocumentMixedCasing(t *testing.T) {
	// Some deployments mix both conventions in a single record. The camel
	// key wins when both are present.
	raw := `{"fileId": "camel", "file_id": "snake", "file_name": "only_snake.pdf"}`

	var wd wireDocument
	if err := json.Unmarshal([]byte(raw), &wd); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	doc := wd.toModel()

	if doc.FileID != "camel" {
		t.Errorf("expected camelCase key to win, got %q", doc.FileID)
	}
	if doc.FileName != "only_snake.pdf" {
		t.Errorf("expected snake_case fallback, got %q", doc.FileName)
	}
}

func TestCanonicalStatus(t *testing.T) {
	testCases := []struct{ in, want string }{
		{"Processing", "processing"},
		{" COMPLETED ", "completed"},
		{"uploaded", "uploaded"},
		{"In progress 42% - Refining text", "In progress 42% - Refining text"},
		{"something novel", "something novel"},
		{"", ""},
	}
	for _, tc := range testCases {
		if got := canonicalStatus(tc.in); got != tc.want {
			t.Errorf("canonicalStatus(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestWireDocumentListShapes(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  int
	}{
		{"bare array", `[{"fileId":"a"},{"fileId":"b"}]`, 2},
		{"documents wrapper", `{"documents":[{"file_id":"a"}]}`, 1},
		{"files wrapper", `{"files":[{"fileId":"a"},{"fileId":"b"},{"fileId":"c"}]}`, 3},
		{"empty object", `{}`, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var list wireDocumentList
			if err := json.Unmarshal([]byte(tc.input), &list); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if len(list.docs) != tc.want {
				t.Errorf("expected %d documents, got %d", tc.want, len(list.docs))
			}
		})
	}
}

func TestWireFinalizedEditHistory(t *testing.T) {
	raw := `{
		"text": "final text",
		"text_source": "edited",
		"edit_history": [
			{"editReason": "typo fix", "previous_text": "finel text", "edited_at": "2025-03-02T09:00:00Z"}
		]
	}`

	var wf wireFinalized
	if err := json.Unmarshal([]byte(raw), &wf); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	fin := (&wf).toModel()

	if fin.Text != "final text" || fin.TextSource != "edited" {
		t.Errorf("finalized result not decoded: %+v", fin)
	}
	if len(fin.EditHistory) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(fin.EditHistory))
	}
	edit := fin.EditHistory[0]
	if edit.Reason != "typo fix" {
		t.Errorf("expected reason 'typo fix', got %q", edit.Reason)
	}
	if edit.PreviousText != "finel text" {
		t.Errorf("expected previous text preserved, got %q", edit.PreviousText)
	}
	if edit.EditedAt == nil {
		t.Error("expected edit timestamp to decode")
	}
}

func TestWireUploadResponse(t *testing.T) {
	raw := `{
		"files": [{"file_id": "new-1", "routing": {"decision": "long-batch"}}],
		"deployment_info": {"version": "2.4.1", "environment": "production"}
	}`

	var wr wireUploadResponse
	if err := json.Unmarshal([]byte(raw), &wr); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	receipt := wr.toReceipt()

	if receipt.FileID != "new-1" {
		t.Errorf("expected file ID 'new-1', got %q", receipt.FileID)
	}
	if receipt.Routing != "long-batch" {
		t.Errorf("expected routing 'long-batch', got %q", receipt.Routing)
	}
	if receipt.DeploymentInfo == nil || receipt.DeploymentInfo.Version != "2.4.1" {
		t.Errorf("deployment info not decoded: %+v", receipt.DeploymentInfo)
	}
}
