package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadPath is the multipart upload endpoint
const UploadPath = "/api/upload"

// UploadResult describes a stored file
type UploadResult struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name,omitempty"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type,omitempty"`
}

// Upload sends r as a multipart file under field, with extra form fields.
// The body is buffered so it can be replayed after a token refresh; the
// Content-Type is the multipart one, never JSON.
func (c *Client) Upload(ctx context.Context, field, filename string, r io.Reader, extra map[string]string) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range extra {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form field %q: %w", k, err)
		}
	}

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return Do[*UploadResult](ctx, c, UploadPath,
		Method(http.MethodPost),
		rawBody(buf.Bytes(), w.FormDataContentType()),
	)
}
