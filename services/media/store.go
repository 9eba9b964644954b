// Package media stores uploaded college branding images.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded objects and returns their public URL
type Store interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ImageContentType returns the content type for an image filename and
// whether the extension is accepted.
func ImageContentType(filename string) (string, bool) {
	ct, ok := imageTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// GenerateKey builds a unique storage key under prefix keeping the file extension
func GenerateKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.NewString(), ext)
}
