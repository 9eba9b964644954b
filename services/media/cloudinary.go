package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore stores images in Cloudinary
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore creates a store from a CLOUDINARY_URL
func NewCloudinaryStore(cloudinaryURL, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

// publicID strips the extension; Cloudinary appends the format itself
func publicID(key string) string {
	return strings.TrimSuffix(key, path.Ext(key))
}

// Upload uploads an image and returns its secure URL
func (s *CloudinaryStore) Upload(ctx context.Context, key string, data io.Reader, _ string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: publicID(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload file: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

// Delete destroys an uploaded image
func (s *CloudinaryStore) Delete(ctx context.Context, key string) error {
	id := publicID(key)
	if s.folder != "" {
		id = s.folder + "/" + id
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
