// Package backend implements the REST client for the document-processing
// service. It normalizes the service's inconsistent wire casing at the
// decode boundary and classifies failures into APIError kinds.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/scandesk/scandesk/internal/models"
)

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed-token source, used by tests and by deployments
// with a pre-provisioned API key.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Client talks to the digitization backend.
type Client struct {
	client  *http.Client
	baseURL string
	tokens  TokenSource
}

// New creates a backend client rooted at baseURL. tokens may be nil for
// unauthenticated endpoints.
func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// do executes req and decodes a 2xx JSON body into out. A nil out
// discards the body.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return netError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindUnknown, StatusCode: resp.StatusCode, Message: "could not decode response", cause: err}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	return c.sendJSON(ctx, "POST", path, payload, out)
}

func (c *Client) putJSON(ctx context.Context, path string, payload, out interface{}) error {
	return c.sendJSON(ctx, "PUT", path, payload, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// ListDocuments fetches the full processed-batch listing, every status
// included. This is the snapshot the reconciler merges against the local
// upload journal.
func (c *Client) ListDocuments(ctx context.Context) ([]models.Document, error) {
	req, err := c.newRequest(ctx, "GET", "/batch/processed", nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Add("status", "all")
	req.URL.RawQuery = q.Encode()

	var list wireDocumentList
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	docs := make([]models.Document, 0, len(list.docs))
	for _, wd := range list.docs {
		docs = append(docs, wd.toModel())
	}
	return docs, nil
}

// GetDocument fetches the detailed record for one file, including its
// most recent free-text processing status.
func (c *Client) GetDocument(ctx context.Context, fileID string) (*models.Document, error) {
	return c.getDocument(ctx, fileID, false)
}

// GetFinalizedDocument fetches the finalized variant of a document,
// which carries the locked-in text and its edit history.
func (c *Client) GetFinalizedDocument(ctx context.Context, fileID string) (*models.Document, error) {
	return c.getDocument(ctx, fileID, true)
}

func (c *Client) getDocument(ctx context.Context, fileID string, finalized bool) (*models.Document, error) {
	req, err := c.newRequest(ctx, "GET", "/batch/processed", nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Add("fileId", fileID)
	if finalized {
		q.Add("finalized", "true")
	}
	req.URL.RawQuery = q.Encode()

	var wd wireDocument
	if err := c.do(req, &wd); err != nil {
		return nil, err
	}
	doc := wd.toModel()
	if doc.FileID == "" {
		doc.FileID = fileID
	}
	return &doc, nil
}

// EditOCRText replaces the edited-text layer of a processed document.
func (c *Client) EditOCRText(ctx context.Context, fileID, text string) error {
	payload := struct {
		EditedText string `json:"editedText"`
	}{EditedText: text}
	return c.putJSON(ctx, "/batch/processed/edit?fileId="+fileID, payload, nil)
}

// FinalizeRequest selects which text layer to lock in for a document.
// EditedText and OriginalText ride along when finalizing from the edited
// layer, so the backend records the text as the user last saw it.
type FinalizeRequest struct {
	TextSource   string `json:"textSource"` // "ocr", "formatted" or "edited"
	Notes        string `json:"notes,omitempty"`
	EditedText   string `json:"editedText,omitempty"`
	OriginalText string `json:"originalText,omitempty"`
}

// Finalize locks in the chosen text layer for a document.
func (c *Client) Finalize(ctx context.Context, fileID string, freq FinalizeRequest) error {
	return c.postJSON(ctx, "/batch/processed/finalize/"+fileID, freq, nil)
}

// EditFinalizedRequest rewrites the text of an already finalized document.
type EditFinalizedRequest struct {
	FinalizedText   string `json:"finalizedText"`
	EditReason      string `json:"editReason,omitempty"`
	PreserveHistory bool   `json:"preserveHistory"`
}

// EditFinalized rewrites the finalized text of a document, optionally
// preserving the previous version in the edit history.
func (c *Client) EditFinalized(ctx context.Context, fileID string, freq EditFinalizedRequest) error {
	return c.putJSON(ctx, "/finalized/edit/"+fileID, freq, nil)
}

// Delete moves a document to the recycle bin, or purges it outright when
// permanent is set.
func (c *Client) Delete(ctx context.Context, fileID string, permanent bool) error {
	path := "/batch/delete/" + fileID
	if permanent {
		path += "?permanent=true"
	}
	req, err := c.newRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Restore brings a recycled document back into the processed listing.
func (c *Client) Restore(ctx context.Context, fileID string) error {
	return c.postJSON(ctx, "/batch/restore/"+fileID, nil, nil)
}

// RecycleBin lists soft-deleted documents awaiting restore or purge.
func (c *Client) RecycleBin(ctx context.Context) ([]models.RecycleBinEntry, error) {
	req, err := c.newRequest(ctx, "GET", "/batch/recycle-bin", nil)
	if err != nil {
		return nil, err
	}
	var list wireBinList
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	entries := make([]models.RecycleBinEntry, 0, len(list.entries))
	for _, we := range list.entries {
		entries = append(entries, we.toModel())
	}
	return entries, nil
}

// SearchOptions narrows an archive search. Zero values are omitted from
// the query.
type SearchOptions struct {
	Query          string
	Author         string
	Publication    string
	YearFrom       int
	YearTo         int
	SortByDate     bool
	Limit          int
	Fuzzy          bool
	FuzzyThreshold float64
}

// Search runs a full-text search over the finalized archive.
func (c *Client) Search(ctx context.Context, opts SearchOptions) ([]models.SearchResult, error) {
	req, err := c.newRequest(ctx, "GET", "/batch/search", nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Add("q", opts.Query)
	if opts.Author != "" {
		q.Add("author", opts.Author)
	}
	if opts.Publication != "" {
		q.Add("publication", opts.Publication)
	}
	if opts.YearFrom > 0 {
		q.Add("as_ylo", strconv.Itoa(opts.YearFrom))
	}
	if opts.YearTo > 0 {
		q.Add("as_yhi", strconv.Itoa(opts.YearTo))
	}
	if opts.SortByDate {
		q.Add("scisbd", "1")
	}
	if opts.Limit > 0 {
		q.Add("num", strconv.Itoa(opts.Limit))
	}
	if opts.Fuzzy {
		q.Add("fuzzy", "true")
		if opts.FuzzyThreshold > 0 {
			q.Add("fuzzyThreshold", strconv.FormatFloat(opts.FuzzyThreshold, 'f', -1, 64))
		}
	}
	req.URL.RawQuery = q.Encode()

	var list wireSearchList
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	results := make([]models.SearchResult, 0, len(list.results))
	for _, wr := range list.results {
		results = append(results, wr.toModel())
	}
	return results, nil
}
