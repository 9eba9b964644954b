package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/services/media"
	"github.com/sahilchouksey/admission-bridge/utils"
)

// MediaUpload is an uploaded image as received from a multipart form
type MediaUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// ProfileMediaService uploads branding images and attaches them to the profile
type ProfileMediaService struct {
	store    media.Store
	profiles *CollegeProfileService
	maxSize  int64
	log      *utils.Logger
}

// NewProfileMediaService creates a new profile media service
func NewProfileMediaService(store media.Store, profiles *CollegeProfileService, maxSize int64, log *utils.Logger) *ProfileMediaService {
	return &ProfileMediaService{store: store, profiles: profiles, maxSize: maxSize, log: log}
}

// Upload stores the image and records it on the college's profile.
// The replaced image is removed from storage on a best-effort basis.
func (s *ProfileMediaService) Upload(ctx context.Context, collegeID uint, kind MediaKind, file MediaUpload) (*model.MediaAsset, error) {
	contentType, ok := media.ImageContentType(file.Filename)
	if !ok {
		return nil, fmt.Errorf("unsupported image type %q: %w", file.Filename, ErrValidation)
	}
	if file.Size <= 0 || (s.maxSize > 0 && file.Size > s.maxSize) {
		return nil, fmt.Errorf("image must be between 1 byte and %d bytes: %w", s.maxSize, ErrValidation)
	}

	// fail before uploading when there is no profile to attach to
	if _, err := s.profiles.ProfileIDForCollege(ctx, collegeID); err != nil {
		return nil, err
	}

	key := media.GenerateKey(fmt.Sprintf("colleges/%d/%s", collegeID, kind), file.Filename)
	url, err := s.store.Upload(ctx, key, file.Body, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", kind, err)
	}

	uploadedAt := time.Now()
	asset := model.MediaAsset{
		URL:        url,
		Key:        key,
		Filename:   file.Filename,
		Size:       file.Size,
		UploadedAt: &uploadedAt,
	}

	previous, err := s.profiles.SetMedia(ctx, collegeID, kind, asset)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to clean up orphaned upload", "key", key, "error", delErr)
		}
		return nil, err
	}

	if previous.Key != "" && previous.Key != key {
		if err := s.store.Delete(ctx, previous.Key); err != nil {
			s.log.Warn("failed to delete replaced media", "key", previous.Key, "error", err)
		}
	}

	return &asset, nil
}
