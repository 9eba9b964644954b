package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/utils/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// memoryCache is an in-process JSONCache
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return cache.ErrNotFound
	}
	m.hits++
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func TestListDirectory_NameFallback(t *testing.T) {
	f := newFixture(t)
	svc := NewDirectoryService(f.db, nil, f.log)

	named := f.profile(t, "Profile Name")
	_, fromCollege := f.college(t, "X", strPtr(""))
	orphan := &model.CollegeAdminProfile{}
	require.NoError(t, f.db.Create(orphan).Error)

	entries, err := svc.ListDirectory(f.ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byID := map[uint]DirectoryEntry{}
	for _, e := range entries {
		byID[e.ID] = e
	}
	assert.Equal(t, "Profile Name", byID[named.ID].Name)
	assert.Equal(t, "X", byID[fromCollege.ID].Name)
	assert.Equal(t, "Unnamed College", byID[orphan.ID].Name)
}

func TestProjectProfile(t *testing.T) {
	collegeID := uint(7)
	profile := &model.CollegeAdminProfile{
		ID:          3,
		CollegeID:   &collegeID,
		Description: "About us",
		Address:     datatypes.JSON(`"Pune, Maharashtra, India"`),
		Contact:     datatypes.NewJSONType(model.ContactBlock{Website: "https://c.example.edu"}),
		CoverPhoto:  datatypes.NewJSONType(model.MediaAsset{URL: "https://cdn.example.com/cover.png"}),
		Courses: datatypes.JSONSlice[model.Course]{
			{Name: "B.Tech"},
			{Name: "MBA"},
		},
		College: &model.College{
			ID:            collegeID,
			Name:          "Registered Name",
			Email:         "admissions@c.example.edu",
			ContactNumber: "+91 1234",
			LogoURL:       "https://cdn.example.com/legacy-logo.png",
		},
	}

	entry := ProjectProfile(profile)
	assert.Equal(t, uint(3), entry.ID)
	assert.Equal(t, "Registered Name", entry.Name)
	assert.Equal(t, "admissions@c.example.edu", entry.Email)
	assert.Equal(t, "+91 1234", entry.ContactNumber)
	assert.Equal(t, "https://c.example.edu", entry.Website)
	assert.Equal(t, "https://cdn.example.com/legacy-logo.png", entry.Logo)
	assert.Equal(t, "https://cdn.example.com/cover.png", entry.CoverPhoto)
	assert.Equal(t, []string{"B.Tech", "MBA"}, entry.Courses)
	assert.Equal(t, "B.Tech", entry.FeaturedCourse)
	assert.Equal(t, "Pune, Maharashtra, India", entry.Address)
	assert.Equal(t, "Pune", entry.City)
	assert.Equal(t, "Maharashtra", entry.State)
	assert.NotNil(t, entry.Features)
	assert.NotNil(t, entry.VideoLinks)

	profile.Logo = datatypes.NewJSONType(model.MediaAsset{URL: "https://cdn.example.com/new-logo.png"})
	profile.Contact = datatypes.NewJSONType(model.ContactBlock{Email: "hello@c.example.edu", Phone: "+91 5678"})
	entry = ProjectProfile(profile)
	assert.Equal(t, "https://cdn.example.com/new-logo.png", entry.Logo)
	assert.Equal(t, "hello@c.example.edu", entry.Email)
	assert.Equal(t, "+91 5678", entry.ContactNumber)
}

func TestProjectProfile_NoCourses(t *testing.T) {
	entry := ProjectProfile(&model.CollegeAdminProfile{ID: 1})
	assert.Equal(t, "Unnamed College", entry.Name)
	assert.Equal(t, "Not specified", entry.FeaturedCourse)
	assert.Empty(t, entry.Courses)
	assert.Empty(t, entry.City)
}

func TestNormalizeAddress(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		address string
		city    string
		state   string
	}{
		{"empty", ``, "", "", ""},
		{"null", `null`, "", "", ""},
		{"single segment", `"Delhi"`, "Delhi", "Delhi", "Delhi"},
		{"city and state", `"Jaipur, Rajasthan"`, "Jaipur, Rajasthan", "Jaipur", "Rajasthan"},
		{"blank segments", `" , Mumbai,, Maharashtra "`, ", Mumbai,, Maharashtra", "Mumbai", "Maharashtra"},
		{"object", `{"line1":"12 Road","city":"Pune","state":"MH","pincode":"411001","country":""}`, "12 Road, Pune, MH, 411001", "Pune", "MH"},
		{"malformed", `[1,2]`, "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			address, city, state := NormalizeAddress([]byte(tc.raw))
			assert.Equal(t, tc.address, address)
			assert.Equal(t, tc.city, city)
			assert.Equal(t, tc.state, state)
		})
	}
}

func TestListDirectory_ReadThroughCache(t *testing.T) {
	f := newFixture(t)
	mc := newMemoryCache()
	svc := NewDirectoryService(f.db, mc, f.log)
	f.profile(t, "First")

	entries, err := svc.ListDirectory(f.ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, mc.hits)

	// served from cache even though a new profile exists
	f.profile(t, "Second")
	entries, err = svc.ListDirectory(f.ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, mc.hits)

	svc.Invalidate(f.ctx)
	entries, err = svc.ListDirectory(f.ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	count, err := svc.Refresh(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGetEntry(t *testing.T) {
	f := newFixture(t)
	svc := NewDirectoryService(f.db, nil, f.log)
	p := f.profile(t, "College")

	entry, err := svc.GetEntry(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "College", entry.Name)

	_, err = svc.GetEntry(f.ctx, p.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}
