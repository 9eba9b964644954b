package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/sahilchouksey/admission-bridge/utils/cache"
	"gorm.io/gorm"
)

const (
	unnamedCollege       = "Unnamed College"
	featuredNotSpecified = "Not specified"

	directoryCacheKey = "directory:colleges"
	directoryCacheTTL = 5 * time.Minute
)

// JSONCache is the subset of the Redis cache the directory needs
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// DirectoryEntry is the public, flattened view of a college
type DirectoryEntry struct {
	ID             uint     `json:"id"`
	CollegeID      *uint    `json:"collegeId,omitempty"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	ContactNumber  string   `json:"contactNumber"`
	Website        string   `json:"website,omitempty"`
	Description    string   `json:"description"`
	Features       []string `json:"features"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Courses        []string `json:"courses"`
	FeaturedCourse string   `json:"featuredCourse"`
	Logo           string   `json:"logo"`
	CoverPhoto     string   `json:"coverPhoto"`
	VideoLinks     []string `json:"videoLinks"`
}

// DirectoryService projects college profiles into the public directory
type DirectoryService struct {
	db    *gorm.DB
	cache JSONCache
	log   *utils.Logger
}

// NewDirectoryService creates a new directory service. cache may be nil.
func NewDirectoryService(db *gorm.DB, cache JSONCache, log *utils.Logger) *DirectoryService {
	return &DirectoryService{db: db, cache: cache, log: log}
}

// ListDirectory returns every college profile as a directory entry
func (s *DirectoryService) ListDirectory(ctx context.Context) ([]DirectoryEntry, error) {
	if s.cache != nil {
		var cached []DirectoryEntry
		err := s.cache.GetJSON(ctx, directoryCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			s.log.Warn("directory cache read failed", "error", err)
		}
	}

	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.store(ctx, entries)
	return entries, nil
}

// GetEntry returns the directory entry for one college profile
func (s *DirectoryService) GetEntry(ctx context.Context, profileID uint) (*DirectoryEntry, error) {
	var profile model.CollegeAdminProfile
	if err := s.db.WithContext(ctx).Preload("College").Take(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("college %d: %w", profileID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load college: %w", err)
	}

	entry := ProjectProfile(&profile)
	return &entry, nil
}

// Refresh rebuilds the cached directory
func (s *DirectoryService) Refresh(ctx context.Context) (int, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	s.store(ctx, entries)
	return len(entries), nil
}

// Invalidate drops the cached directory after a profile change
func (s *DirectoryService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, directoryCacheKey); err != nil {
		s.log.Warn("directory cache invalidation failed", "error", err)
	}
}

func (s *DirectoryService) load(ctx context.Context) ([]DirectoryEntry, error) {
	var profiles []model.CollegeAdminProfile
	if err := s.db.WithContext(ctx).
		Preload("College").
		Order("id ASC").
		Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list colleges: %w", err)
	}

	entries := make([]DirectoryEntry, 0, len(profiles))
	for i := range profiles {
		entries = append(entries, ProjectProfile(&profiles[i]))
	}
	return entries, nil
}

func (s *DirectoryService) store(ctx context.Context, entries []DirectoryEntry) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, directoryCacheKey, entries, directoryCacheTTL); err != nil {
		s.log.Warn("directory cache write failed", "error", err)
	}
}

// ProjectProfile flattens a profile (with its College preloaded, if linked)
// into a directory entry. Profile values win over the College registration.
func ProjectProfile(p *model.CollegeAdminProfile) DirectoryEntry {
	contact := p.Contact.Data()

	entry := DirectoryEntry{
		ID:            p.ID,
		CollegeID:     p.CollegeID,
		Name:          displayName(p),
		Email:         contactEmail(p),
		ContactNumber: firstNonEmpty(contact.Phone, collegeField(p, func(c *model.College) string { return c.ContactNumber })),
		Website:       contact.Website,
		Description:   p.Description,
		Features:      nonNilSlice([]string(p.Features)),
		Courses:       p.CourseNames(),
		Logo:          logoURL(p),
		CoverPhoto:    firstNonEmpty(p.CoverPhoto.Data().URL, collegeField(p, func(c *model.College) string { return c.CoverPhotoURL })),
		VideoLinks:    nonNilSlice([]string(p.VideoLinks)),
	}

	entry.Address, entry.City, entry.State = NormalizeAddress(p.Address)

	entry.FeaturedCourse = featuredNotSpecified
	if len(entry.Courses) > 0 && strings.TrimSpace(entry.Courses[0]) != "" {
		entry.FeaturedCourse = entry.Courses[0]
	}

	return entry
}

// NormalizeAddress renders a stored address as (full, city, state).
// Free text is split on commas: the first segment is the city and the second
// the state; a single segment serves as both. Objects are joined field by field.
// Malformed values yield empty strings.
func NormalizeAddress(raw []byte) (address, city, state string) {
	text, structured, err := model.DecodeAddress(raw)
	if err != nil {
		return "", "", ""
	}

	if structured != nil {
		return structured.Join(), strings.TrimSpace(structured.City), strings.TrimSpace(structured.State)
	}

	if text == "" {
		return "", "", ""
	}

	segments := make([]string, 0, 4)
	for _, seg := range strings.Split(text, ",") {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}

	switch len(segments) {
	case 0:
		return text, "", ""
	case 1:
		return text, segments[0], segments[0]
	default:
		return text, segments[0], segments[1]
	}
}

func displayName(p *model.CollegeAdminProfile) string {
	return firstNonEmpty(p.Name, collegeField(p, func(c *model.College) string { return c.Name }), unnamedCollege)
}

func contactEmail(p *model.CollegeAdminProfile) string {
	return firstNonEmpty(p.Contact.Data().Email, collegeField(p, func(c *model.College) string { return c.Email }))
}

func logoURL(p *model.CollegeAdminProfile) string {
	return firstNonEmpty(p.Logo.Data().URL, collegeField(p, func(c *model.College) string { return c.LogoURL }))
}

func collegeField(p *model.CollegeAdminProfile, get func(*model.College) string) string {
	if p.College == nil {
		return ""
	}
	return get(p.College)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
