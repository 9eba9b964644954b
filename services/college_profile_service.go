package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MediaKind selects which branding image of a profile is changed
type MediaKind string

const (
	MediaLogo       MediaKind = "logo"
	MediaCoverPhoto MediaKind = "cover_photo"
)

// ProfileInput is the body for creating a college profile
type ProfileInput struct {
	Name        string             `json:"name" validate:"max=255"`
	Description string             `json:"description" validate:"max=5000"`
	Features    []string           `json:"features"`
	Address     json.RawMessage    `json:"address"`
	Contact     model.ContactBlock `json:"contact"`
	VideoLinks  []string           `json:"videoLinks" validate:"omitempty,dive,url"`
	Courses     []model.Course     `json:"courses" validate:"omitempty,dive"`
}

// ProfileUpdate is a partial update; nil fields are left unchanged
type ProfileUpdate struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Features    *[]string           `json:"features"`
	Address     json.RawMessage     `json:"address"`
	Contact     *model.ContactBlock `json:"contact"`
	VideoLinks  *[]string           `json:"videoLinks"`
	Courses     *[]model.Course     `json:"courses"`
}

// CollegeProfileService manages the single profile a college account owns
type CollegeProfileService struct {
	db        *gorm.DB
	directory *DirectoryService
	log       *utils.Logger
}

// NewCollegeProfileService creates a new college profile service
func NewCollegeProfileService(db *gorm.DB, directory *DirectoryService, log *utils.Logger) *CollegeProfileService {
	return &CollegeProfileService{db: db, directory: directory, log: log}
}

// ProfileIDForCollege resolves the profile owned by a college account
func (s *CollegeProfileService) ProfileIDForCollege(ctx context.Context, collegeID uint) (uint, error) {
	var profile model.CollegeAdminProfile
	if err := s.db.WithContext(ctx).Select("id").Where("college_id = ?", collegeID).Take(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("profile for college %d: %w", collegeID, ErrNotFound)
		}
		return 0, fmt.Errorf("failed to resolve college profile: %w", err)
	}
	return profile.ID, nil
}

// Create stores the college's profile. A second profile for the same college is a conflict.
func (s *CollegeProfileService) Create(ctx context.Context, collegeID uint, in ProfileInput) (*model.CollegeAdminProfile, error) {
	var college model.College
	if err := s.db.WithContext(ctx).Take(&college, collegeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("college %d: %w", collegeID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load college: %w", err)
	}

	address, err := normalizeAddressInput(in.Address)
	if err != nil {
		return nil, err
	}

	profile := model.CollegeAdminProfile{
		CollegeID:   &college.ID,
		Name:        firstNonEmpty(in.Name, college.Name),
		Description: strings.TrimSpace(in.Description),
		Features:    datatypes.JSONSlice[string](nonNilSlice(in.Features)),
		Address:     address,
		Contact:     datatypes.NewJSONType(in.Contact),
		VideoLinks:  datatypes.JSONSlice[string](nonNilSlice(in.VideoLinks)),
		Courses:     datatypes.JSONSlice[model.Course](nonNilSlice(in.Courses)),
	}

	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("college %d already has a profile: %w", collegeID, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.directory.Invalidate(ctx)
	s.log.Info("college profile created", "college", collegeID, "profile", profile.ID)
	return s.Get(ctx, collegeID)
}

// Get returns the college's profile
func (s *CollegeProfileService) Get(ctx context.Context, collegeID uint) (*model.CollegeAdminProfile, error) {
	var profile model.CollegeAdminProfile
	if err := s.db.WithContext(ctx).
		Preload("College").
		Where("college_id = ?", collegeID).
		Take(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile for college %d: %w", collegeID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}

// Update applies a partial update to the college's profile
func (s *CollegeProfileService) Update(ctx context.Context, collegeID uint, in ProfileUpdate) (*model.CollegeAdminProfile, error) {
	profileID, err := s.ProfileIDForCollege(ctx, collegeID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Features != nil {
		updates["features"] = datatypes.JSONSlice[string](nonNilSlice(*in.Features))
	}
	if in.Address != nil {
		address, err := normalizeAddressInput(in.Address)
		if err != nil {
			return nil, err
		}
		updates["address"] = address
	}
	if in.Contact != nil {
		updates["contact"] = datatypes.NewJSONType(*in.Contact)
	}
	if in.VideoLinks != nil {
		updates["video_links"] = datatypes.JSONSlice[string](nonNilSlice(*in.VideoLinks))
	}
	if in.Courses != nil {
		updates["courses"] = datatypes.JSONSlice[model.Course](nonNilSlice(*in.Courses))
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).
			Model(&model.CollegeAdminProfile{}).
			Where("id = ?", profileID).
			Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		s.directory.Invalidate(ctx)
	}

	return s.Get(ctx, collegeID)
}

// SetMedia replaces a branding image and returns the asset it replaced
func (s *CollegeProfileService) SetMedia(ctx context.Context, collegeID uint, kind MediaKind, asset model.MediaAsset) (previous model.MediaAsset, err error) {
	profile, err := s.Get(ctx, collegeID)
	if err != nil {
		return previous, err
	}

	switch kind {
	case MediaLogo:
		previous = profile.Logo.Data()
	case MediaCoverPhoto:
		previous = profile.CoverPhoto.Data()
	default:
		return previous, fmt.Errorf("unknown media kind %q: %w", kind, ErrValidation)
	}

	if err := s.db.WithContext(ctx).
		Model(&model.CollegeAdminProfile{}).
		Where("id = ?", profile.ID).
		Update(string(kind), datatypes.NewJSONType(asset)).Error; err != nil {
		return previous, fmt.Errorf("failed to save %s: %w", kind, err)
	}

	s.directory.Invalidate(ctx)
	return previous, nil
}

// normalizeAddressInput accepts a JSON string, a structured object or null
func normalizeAddressInput(raw json.RawMessage) (datatypes.JSON, error) {
	text, structured, err := model.DecodeAddress(raw)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	switch {
	case structured != nil:
		encoded, err := json.Marshal(structured)
		if err != nil {
			return nil, err
		}
		return datatypes.JSON(encoded), nil
	case text != "":
		encoded, err := json.Marshal(text)
		if err != nil {
			return nil, err
		}
		return datatypes.JSON(encoded), nil
	default:
		return nil, nil
	}
}
