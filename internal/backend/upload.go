package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/scandesk/scandesk/internal/models"
)

// UploadRequest carries one file and its metadata block to the backend.
type UploadRequest struct {
	FilePath string
	FileName string // display name; defaults to the base of FilePath
	Metadata *models.DocumentMetadata

	// Progress, when set, receives the send percentage (0-100) as the
	// request body is consumed by the transport.
	Progress func(pct float64)
}

// progressReader reports cumulative read progress against a known total.
type progressReader struct {
	r     *bytes.Reader
	total int64
	read  int64
	cb    func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.cb != nil && p.total > 0 {
		p.read += int64(n)
		pct := float64(p.read) / float64(p.total) * 100
		if pct > 100 {
			pct = 100
		}
		p.cb(pct)
	}
	return n, err
}

// Upload sends one file as a multipart form. The metadata block travels as
// flat form fields next to the file part. Returns the backend's receipt,
// which carries the assigned file ID and the routing decision.
func (c *Client) Upload(ctx context.Context, ureq UploadRequest) (*models.UploadReceipt, error) {
	data, err := os.ReadFile(ureq.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ureq.FilePath, err)
	}

	name := ureq.FileName
	if name == "" {
		name = filepath.Base(ureq.FilePath)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if md := ureq.Metadata; md != nil {
		fields := map[string]string{
			"title":      md.Title,
			"author":     md.Author,
			"date":       md.Date,
			"collection": md.Collection,
			"notes":      md.Notes,
		}
		if len(md.Tags) > 0 {
			fields["tags"] = strings.Join(md.Tags, ",")
		}
		for key, value := range fields {
			if value == "" {
				continue
			}
			if err := writer.WriteField(key, value); err != nil {
				return nil, err
			}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	body := &progressReader{
		r:     bytes.NewReader(buf.Bytes()),
		total: int64(buf.Len()),
		cb:    ureq.Progress,
	}
	req, err := c.newRequest(ctx, "POST", "/batch/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = body.total

	var wresp wireUploadResponse
	if err := c.do(req, &wresp); err != nil {
		return nil, err
	}
	receipt := wresp.toReceipt()
	if receipt.FileID == "" {
		return nil, &APIError{Kind: KindUnknown, Message: "upload response carried no file ID"}
	}
	return receipt, nil
}
