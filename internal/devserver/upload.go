package devserver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"

	"github.com/devilmonastery/eventdesk/internal/pkg/idgen"
	"github.com/devilmonastery/eventdesk/internal/pkg/metrics"
	"github.com/devilmonastery/eventdesk/internal/pkg/urlutil"
)

type uploadResult struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type,omitempty"`
}

// handleUpload stores the multipart "file" field under the uploads
// directory with a slugged, unique name.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	result, err := s.saveUpload(w, r)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeError(w, err)
		return
	}
	metrics.UploadsTotal.WithLabelValues("stored").Inc()
	s.log.Info("file uploaded",
		slog.String("filename", result.Filename),
		slog.Int64("size", result.Size))
	writeData(w, http.StatusCreated, result)
}

func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request) (*uploadResult, error) {
	cfg := s.cfg.Uploads
	if cfg.Dir == "" {
		return nil, &apiError{status: http.StatusServiceUnavailable, code: "UPLOADS_DISABLED", message: "Uploads are disabled"}
	}

	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &apiError{
				status:  http.StatusRequestEntityTooLarge,
				code:    "FILE_TOO_LARGE",
				message: "File too large",
				details: map[string]int64{"max_bytes": cfg.MaxBytes},
			}
		}
		return nil, validationError("multipart field \"file\" is required")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if len(cfg.AllowedExtensions) > 0 && !slices.Contains(cfg.AllowedExtensions, ext) {
		return nil, &apiError{
			status:  http.StatusBadRequest,
			code:    "INVALID_FILE_TYPE",
			message: fmt.Sprintf("File type %q is not allowed", ext),
			details: map[string][]string{"allowed": cfg.AllowedExtensions},
		}
	}

	base := slug.Make(strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename)))
	if base == "" {
		base = "file"
	}
	name := base + "-" + idgen.GenerateID() + ext

	dst, err := os.OpenFile(filepath.Join(cfg.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload: %w", err)
	}
	size, err := io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst.Name())
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	publicURL := s.cfg.Server.PublicURL
	if publicURL == "" {
		publicURL = "http://" + r.Host
	}
	return &uploadResult{
		Filename:     name,
		OriginalName: header.Filename,
		URL:          urlutil.UploadURL(publicURL, name),
		Size:         size,
		ContentType:  header.Header.Get("Content-Type"),
	}, nil
}
