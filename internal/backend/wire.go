package backend

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/scandesk/scandesk/internal/models"
)

// The backend is inconsistent about field casing: some deployments emit
// camelCase, others snake_case, and a few mix both in one payload. All of
// that tolerance lives here, at the decode boundary. The rest of the
// program only ever sees models.Document.

// wireTime accepts RFC3339 strings or epoch seconds (integer or
// fractional). Anything unparseable decodes to nil rather than failing
// the whole payload.
type wireTime struct {
	t *time.Time
}

func (w *wireTime) UnmarshalJSON(b []byte) error {
	s := bytes.TrimSpace(b)
	if len(s) == 0 || string(s) == "null" || string(s) == `""` {
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(s, &str); err != nil {
			return nil
		}
		if ts, err := time.Parse(time.RFC3339, str); err == nil {
			w.t = &ts
		}
		return nil
	}
	var epoch float64
	if err := json.Unmarshal(s, &epoch); err != nil {
		return nil
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * 1e9)
	ts := time.Unix(sec, nsec).UTC()
	w.t = &ts
	return nil
}

func pickString(camel, snake string) string {
	if camel != "" {
		return camel
	}
	return snake
}

// canonicalStatus lowercases recognized coarse statuses so the rest of the
// program can compare them exactly. Free-text statuses such as
// "In progress 42% - Refining text" pass through verbatim; the display
// layer shows them as-is.
func canonicalStatus(raw string) string {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case models.StatusPending, models.StatusUploading, models.StatusUploaded,
		models.StatusProcessing, models.StatusProcessed, models.StatusCompleted,
		models.StatusFinalized, models.StatusFailed, models.StatusDeleted,
		models.StatusDeleting:
		return strings.ToLower(s)
	}
	return s
}

func pickInt64(camel, snake int64) int64 {
	if camel != 0 {
		return camel
	}
	return snake
}

func pickTime(camel, snake wireTime) *time.Time {
	if camel.t != nil {
		return camel.t
	}
	return snake.t
}

type wireMetadata struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Date       string   `json:"date"`
	Tags       []string `json:"tags"`
	Collection string   `json:"collection"`
	Notes      string   `json:"notes"`
}

func (w *wireMetadata) toModel() *models.DocumentMetadata {
	if w == nil {
		return nil
	}
	return &models.DocumentMetadata{
		Title:      w.Title,
		Author:     w.Author,
		Date:       w.Date,
		Tags:       w.Tags,
		Collection: w.Collection,
		Notes:      w.Notes,
	}
}

type wireOCR struct {
	RawText        string  `json:"rawText"`
	RawTextS       string  `json:"raw_text"`
	FormattedText  string  `json:"formattedText"`
	FormattedTextS string  `json:"formatted_text"`
	EditedText     string  `json:"editedText"`
	EditedTextS    string  `json:"edited_text"`
	Confidence     float64 `json:"confidence"`
	PageCount      int     `json:"pageCount"`
	PageCountS     int     `json:"page_count"`
}

func (w *wireOCR) toModel() *models.OCRResult {
	if w == nil {
		return nil
	}
	pages := w.PageCount
	if pages == 0 {
		pages = w.PageCountS
	}
	return &models.OCRResult{
		RawText:       pickString(w.RawText, w.RawTextS),
		FormattedText: pickString(w.FormattedText, w.FormattedTextS),
		EditedText:    pickString(w.EditedText, w.EditedTextS),
		Confidence:    w.Confidence,
		PageCount:     pages,
	}
}

type wireEdit struct {
	Reason        string   `json:"reason"`
	ReasonAlt     string   `json:"editReason"`
	ReasonAltS    string   `json:"edit_reason"`
	PreviousText  string   `json:"previousText"`
	PreviousTextS string   `json:"previous_text"`
	EditedAt      wireTime `json:"editedAt"`
	EditedAtS     wireTime `json:"edited_at"`
}

func (w wireEdit) toModel() models.FinalizedEdit {
	reason := w.Reason
	if reason == "" {
		reason = pickString(w.ReasonAlt, w.ReasonAltS)
	}
	return models.FinalizedEdit{
		Reason:       reason,
		PreviousText: pickString(w.PreviousText, w.PreviousTextS),
		EditedAt:     pickTime(w.EditedAt, w.EditedAtS),
	}
}

type wireFinalized struct {
	Text         string     `json:"text"`
	TextSource   string     `json:"textSource"`
	TextSourceS  string     `json:"text_source"`
	Notes        string     `json:"notes"`
	FinalizedAt  wireTime   `json:"finalizedAt"`
	FinalizedAtS wireTime   `json:"finalized_at"`
	EditHistory  []wireEdit `json:"editHistory"`
	EditHistoryS []wireEdit `json:"edit_history"`
}

func (w *wireFinalized) toModel() *models.FinalizedResult {
	if w == nil {
		return nil
	}
	edits := w.EditHistory
	if len(edits) == 0 {
		edits = w.EditHistoryS
	}
	out := &models.FinalizedResult{
		Text:        w.Text,
		TextSource:  pickString(w.TextSource, w.TextSourceS),
		Notes:       w.Notes,
		FinalizedAt: pickTime(w.FinalizedAt, w.FinalizedAtS),
	}
	for _, e := range edits {
		out.EditHistory = append(out.EditHistory, e.toModel())
	}
	return out
}

type wireAnalysis struct {
	QualityScore  float64 `json:"qualityScore"`
	QualityScoreS float64 `json:"quality_score"`
	WordCount     int     `json:"wordCount"`
	WordCountS    int     `json:"word_count"`
	CharCount     int     `json:"charCount"`
	CharCountS    int     `json:"char_count"`
}

func (w *wireAnalysis) toModel() *models.TextAnalysis {
	if w == nil {
		return nil
	}
	score := w.QualityScore
	if score == 0 {
		score = w.QualityScoreS
	}
	words := w.WordCount
	if words == 0 {
		words = w.WordCountS
	}
	chars := w.CharCount
	if chars == 0 {
		chars = w.CharCountS
	}
	return &models.TextAnalysis{QualityScore: score, WordCount: words, CharCount: chars}
}

type wireDocument struct {
	FileID           string         `json:"fileId"`
	FileIDS          string         `json:"file_id"`
	FileName         string         `json:"fileName"`
	FileNameS        string         `json:"file_name"`
	FileSize         int64          `json:"fileSize"`
	FileSizeS        int64          `json:"file_size"`
	Status           string         `json:"processingStatus"`
	StatusS          string         `json:"processing_status"`
	ProcessingType   string         `json:"processingType"`
	ProcessingTypeS  string         `json:"processing_type"`
	Metadata         *wireMetadata  `json:"metadata"`
	OCR              *wireOCR       `json:"ocrResults"`
	OCRS             *wireOCR       `json:"ocr_results"`
	FinalizedResult  *wireFinalized `json:"finalizedResults"`
	FinalizedResultS *wireFinalized `json:"finalized_results"`
	Finalized        bool           `json:"finalized"`
	TextAnalysis     *wireAnalysis  `json:"textAnalysis"`
	TextAnalysisS    *wireAnalysis  `json:"text_analysis"`
	UploadedAt       wireTime       `json:"uploadedAt"`
	UploadedAtS      wireTime       `json:"uploaded_at"`
	ProcessedAt      wireTime       `json:"processedAt"`
	ProcessedAtS     wireTime       `json:"processed_at"`
	FinalizedAt      wireTime       `json:"finalizedAt"`
	FinalizedAtS     wireTime       `json:"finalized_at"`
}

func (w wireDocument) toModel() models.Document {
	ocr := w.OCR
	if ocr == nil {
		ocr = w.OCRS
	}
	fin := w.FinalizedResult
	if fin == nil {
		fin = w.FinalizedResultS
	}
	analysis := w.TextAnalysis
	if analysis == nil {
		analysis = w.TextAnalysisS
	}
	return models.Document{
		FileID:          pickString(w.FileID, w.FileIDS),
		FileName:        pickString(w.FileName, w.FileNameS),
		FileSize:        pickInt64(w.FileSize, w.FileSizeS),
		Status:          canonicalStatus(pickString(w.Status, w.StatusS)),
		ProcessingType:  pickString(w.ProcessingType, w.ProcessingTypeS),
		Metadata:        w.Metadata.toModel(),
		OCR:             ocr.toModel(),
		FinalizedResult: fin.toModel(),
		Finalized:       w.Finalized,
		TextAnalysis:    analysis.toModel(),
		UploadedAt:      pickTime(w.UploadedAt, w.UploadedAtS),
		ProcessedAt:     pickTime(w.ProcessedAt, w.ProcessedAtS),
		FinalizedAt:     pickTime(w.FinalizedAt, w.FinalizedAtS),
	}
}

// wireDocumentList accepts either a bare JSON array or an object wrapping
// the array under "documents" or "files".
type wireDocumentList struct {
	docs []wireDocument
}

func (w *wireDocumentList) UnmarshalJSON(b []byte) error {
	s := bytes.TrimSpace(b)
	if len(s) > 0 && s[0] == '[' {
		return json.Unmarshal(s, &w.docs)
	}
	var wrapper struct {
		Documents []wireDocument `json:"documents"`
		Files     []wireDocument `json:"files"`
	}
	if err := json.Unmarshal(s, &wrapper); err != nil {
		return err
	}
	if len(wrapper.Documents) > 0 {
		w.docs = wrapper.Documents
	} else {
		w.docs = wrapper.Files
	}
	return nil
}

type wireBinEntry struct {
	FileID     string   `json:"fileId"`
	FileIDS    string   `json:"file_id"`
	FileName   string   `json:"fileName"`
	FileNameS  string   `json:"file_name"`
	FileSize   int64    `json:"fileSize"`
	FileSizeS  int64    `json:"file_size"`
	DeletedAt  wireTime `json:"deletedAt"`
	DeletedAtS wireTime `json:"deleted_at"`
}

func (w wireBinEntry) toModel() models.RecycleBinEntry {
	return models.RecycleBinEntry{
		FileID:    pickString(w.FileID, w.FileIDS),
		FileName:  pickString(w.FileName, w.FileNameS),
		FileSize:  pickInt64(w.FileSize, w.FileSizeS),
		DeletedAt: pickTime(w.DeletedAt, w.DeletedAtS),
	}
}

type wireBinList struct {
	entries []wireBinEntry
}

func (w *wireBinList) UnmarshalJSON(b []byte) error {
	s := bytes.TrimSpace(b)
	if len(s) > 0 && s[0] == '[' {
		return json.Unmarshal(s, &w.entries)
	}
	var wrapper struct {
		Documents []wireBinEntry `json:"documents"`
		Files     []wireBinEntry `json:"files"`
		Items     []wireBinEntry `json:"items"`
	}
	if err := json.Unmarshal(s, &wrapper); err != nil {
		return err
	}
	switch {
	case len(wrapper.Documents) > 0:
		w.entries = wrapper.Documents
	case len(wrapper.Files) > 0:
		w.entries = wrapper.Files
	default:
		w.entries = wrapper.Items
	}
	return nil
}

type wireSearchResult struct {
	FileID      string  `json:"fileId"`
	FileIDS     string  `json:"file_id"`
	FileName    string  `json:"fileName"`
	FileNameS   string  `json:"file_name"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Publication string  `json:"publication"`
	Year        int     `json:"year"`
	Snippet     string  `json:"snippet"`
	Score       float64 `json:"score"`
}

func (w wireSearchResult) toModel() models.SearchResult {
	return models.SearchResult{
		FileID:      pickString(w.FileID, w.FileIDS),
		FileName:    pickString(w.FileName, w.FileNameS),
		Title:       w.Title,
		Author:      w.Author,
		Publication: w.Publication,
		Year:        w.Year,
		Snippet:     w.Snippet,
		Score:       w.Score,
	}
}

type wireSearchList struct {
	results []wireSearchResult
}

func (w *wireSearchList) UnmarshalJSON(b []byte) error {
	s := bytes.TrimSpace(b)
	if len(s) > 0 && s[0] == '[' {
		return json.Unmarshal(s, &w.results)
	}
	var wrapper struct {
		Results   []wireSearchResult `json:"results"`
		Documents []wireSearchResult `json:"documents"`
	}
	if err := json.Unmarshal(s, &wrapper); err != nil {
		return err
	}
	if len(wrapper.Results) > 0 {
		w.results = wrapper.Results
	} else {
		w.results = wrapper.Documents
	}
	return nil
}

type wireRouting struct {
	Decision  string `json:"decision"`
	DecisionS string `json:"routing_decision"`
}

type wireUploadFile struct {
	FileID  string       `json:"fileId"`
	FileIDS string       `json:"file_id"`
	Routing *wireRouting `json:"routing"`
}

type wireDeployment struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type wireUploadResponse struct {
	Files       []wireUploadFile `json:"files"`
	Deployment  *wireDeployment  `json:"deploymentInfo"`
	DeploymentS *wireDeployment  `json:"deployment_info"`
}

func (w wireUploadResponse) toReceipt() *models.UploadReceipt {
	receipt := &models.UploadReceipt{}
	if len(w.Files) > 0 {
		f := w.Files[0]
		receipt.FileID = pickString(f.FileID, f.FileIDS)
		if f.Routing != nil {
			receipt.Routing = pickString(f.Routing.Decision, f.Routing.DecisionS)
		}
	}
	dep := w.Deployment
	if dep == nil {
		dep = w.DeploymentS
	}
	if dep != nil {
		receipt.DeploymentInfo = &models.DeploymentInfo{Version: dep.Version, Environment: dep.Environment}
	}
	return receipt
}
