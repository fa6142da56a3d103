package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxImageSize caps attachments at 10MB; larger files would not fit the
// storage quota anyway.
const MaxImageSize = 10 * 1024 * 1024

// DataURIEncoder reads an upload and returns it as a base64 data URI.
type DataURIEncoder struct {
	MaxSize int64
}

func NewDataURIEncoder() *DataURIEncoder {
	return &DataURIEncoder{MaxSize: MaxImageSize}
}

// Encode resolves once the whole file has been read. Every failure wraps
// ErrEncoding.
func (e *DataURIEncoder) Encode(ctx context.Context, file *ImageFile) (string, error) {
	if file == nil || file.Reader == nil {
		return "", fmt.Errorf("%w: no file", ErrEncoding)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	limit := e.MaxSize
	if limit <= 0 {
		limit = MaxImageSize
	}
	if file.Size > limit {
		return "", fmt.Errorf("%w: %s is larger than %dMB", ErrEncoding, file.Name, limit/(1024*1024))
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file.Reader, limit+1))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrEncoding, file.Name, err)
	}
	if int64(len(fileBytes)) > limit {
		return "", fmt.Errorf("%w: %s is larger than %dMB", ErrEncoding, file.Name, limit/(1024*1024))
	}
	if len(fileBytes) == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrEncoding, file.Name)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(fileBytes)
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s is not an image (%s)", ErrEncoding, file.Name, contentType)
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(fileBytes), nil
}
