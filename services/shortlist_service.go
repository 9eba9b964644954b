package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShortlistService manages student interest in colleges and sub-courses.
// The (student, college) unique index is the only consistency mechanism:
// writes never check before acting, and duplicate-key errors mean a
// concurrent request already created the row.
type ShortlistService struct {
	db  *gorm.DB
	log *utils.Logger
}

// NewShortlistService creates a new shortlist service
func NewShortlistService(db *gorm.DB, log *utils.Logger) *ShortlistService {
	return &ShortlistService{db: db, log: log}
}

// CourseSelection is a sub-course a student marks interest in
type CourseSelection struct {
	Parent string `json:"parent" validate:"max=255"`
	Name   string `json:"name" validate:"required,max=255"`
}

// StudentSummary identifies the student behind a shortlist
type StudentSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CollegeSummary identifies the college behind a shortlist
type CollegeSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

// ShortlistRecord is a shortlist row with its participants resolved
type ShortlistRecord struct {
	ID                uint                     `json:"id"`
	StudentID         uint                     `json:"studentId"`
	CollegeID         uint                     `json:"collegeId"`
	Notes             string                   `json:"notes"`
	InterestedCourses []model.InterestedCourse `json:"interestedCourses"`
	IsAdminForwarded  bool                     `json:"isAdminForwarded"`
	ForwardedAt       *time.Time               `json:"forwardedAt,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
	Student           *StudentSummary          `json:"student,omitempty"`
	College           *CollegeSummary          `json:"college,omitempty"`
}

// ToggleResult is the outcome of ToggleInterest
type ToggleResult struct {
	Shortlisted       bool             `json:"shortlisted"`
	Shortlist         *ShortlistRecord `json:"data,omitempty"`
	AggregatedCourses []string         `json:"aggregatedCourses"`
}

// InterestResult is the outcome of AddOrUpdateInterest
type InterestResult struct {
	Created           bool             `json:"-"`
	Shortlist         *ShortlistRecord `json:"data"`
	AggregatedCourses []string         `json:"aggregatedCourses"`
}

// CollegeStats is one row of the admin shortlist aggregate
type CollegeStats struct {
	CollegeAdminID uint      `json:"collegeAdminId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Count          int       `json:"count"`
	Latest         time.Time `json:"latest"`
}

// CollegeInterest is the dashboard view of everyone interested in one college
type CollegeInterest struct {
	College           CollegeSummary    `json:"college"`
	Count             int               `json:"count"`
	Students          []ShortlistRecord `json:"students"`
	AggregatedCourses []string          `json:"aggregatedCourses"`
}

// ForwardedStudent is the contact sheet a college receives for a forwarded student
type ForwardedStudent struct {
	ShortlistID       uint                     `json:"shortlistId"`
	StudentID         uint                     `json:"studentId"`
	Name              string                   `json:"name"`
	Email             string                   `json:"email"`
	Phone             string                   `json:"phone"`
	DateOfBirth       *time.Time               `json:"dateOfBirth,omitempty"`
	Education         []model.Education        `json:"education"`
	CollegeFinalized  string                   `json:"collegeFinalized"`
	CourseFinalized   string                   `json:"courseFinalized"`
	Notes             string                   `json:"notes"`
	InterestedCourses []model.InterestedCourse `json:"interestedCourses"`
	ForwardedAt       *time.Time               `json:"forwardedAt,omitempty"`
}

func stampCourses(courses []CourseSelection, now time.Time) datatypes.JSONSlice[model.InterestedCourse] {
	out := make(datatypes.JSONSlice[model.InterestedCourse], 0, len(courses))
	for _, c := range courses {
		out = append(out, model.InterestedCourse{
			Parent:  strings.TrimSpace(c.Parent),
			Name:    strings.TrimSpace(c.Name),
			AddedAt: now,
		})
	}
	return out
}

func pairScope(studentID, profileID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("student_id = ? AND college_profile_id = ?", studentID, profileID)
	}
}

// ensureParticipants verifies the student and college profile both exist
func (s *ShortlistService) ensureParticipants(ctx context.Context, studentID, profileID uint) error {
	var student model.User
	if err := s.db.WithContext(ctx).
		Select("id").
		Where("id = ? AND role = ?", studentID, model.RoleStudent).
		Take(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("student %d: %w", studentID, ErrNotFound)
		}
		return fmt.Errorf("failed to load student: %w", err)
	}

	return s.ensureProfile(ctx, profileID)
}

func (s *ShortlistService) ensureProfile(ctx context.Context, profileID uint) error {
	var profile model.CollegeAdminProfile
	if err := s.db.WithContext(ctx).Select("id").Take(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("college %d: %w", profileID, ErrNotFound)
		}
		return fmt.Errorf("failed to load college: %w", err)
	}
	return nil
}

// ToggleInterest removes the (student, college) shortlist when present,
// otherwise creates it with the given courses.
func (s *ShortlistService) ToggleInterest(ctx context.Context, studentID, profileID uint, courses []CourseSelection) (*ToggleResult, error) {
	if err := s.ensureParticipants(ctx, studentID, profileID); err != nil {
		return nil, err
	}

	deleted := s.db.WithContext(ctx).Scopes(pairScope(studentID, profileID)).Delete(&model.Shortlist{})
	if deleted.Error != nil {
		return nil, fmt.Errorf("failed to remove shortlist: %w", deleted.Error)
	}

	if deleted.RowsAffected > 0 {
		aggregated, err := s.AggregateCourseInterest(ctx, profileID)
		if err != nil {
			return nil, err
		}
		s.log.Info("shortlist toggled off", "student", studentID, "college", profileID)
		return &ToggleResult{Shortlisted: false, AggregatedCourses: aggregated}, nil
	}

	row := model.Shortlist{
		StudentID:         studentID,
		CollegeProfileID:  profileID,
		InterestedCourses: stampCourses(courses, time.Now()),
	}
	raced := false
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create shortlist: %w", err)
		}
		raced = true
	}

	// a concurrent writer may already have removed the row it inserted
	record, err := s.load(ctx, studentID, profileID)
	if err != nil && !(raced && errors.Is(err, ErrNotFound)) {
		return nil, err
	}

	aggregated, err := s.AggregateCourseInterest(ctx, profileID)
	if err != nil {
		return nil, err
	}

	s.log.Info("shortlist toggled on", "student", studentID, "college", profileID)
	return &ToggleResult{Shortlisted: true, Shortlist: record, AggregatedCourses: aggregated}, nil
}

// AddOrUpdateInterest upserts the (student, college) shortlist in one statement.
// A new row takes notes and courses. An existing row has its courses replaced
// when courses is non-nil and is otherwise left untouched; notes are never overwritten.
func (s *ShortlistService) AddOrUpdateInterest(ctx context.Context, studentID, profileID uint, notes string, courses []CourseSelection) (*InterestResult, error) {
	if err := s.ensureParticipants(ctx, studentID, profileID); err != nil {
		return nil, err
	}

	// microsecond precision survives a round trip through every supported driver
	now := time.Now().Truncate(time.Microsecond)
	row := model.Shortlist{
		StudentID:         studentID,
		CollegeProfileID:  profileID,
		Notes:             strings.TrimSpace(notes),
		InterestedCourses: stampCourses(courses, now),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "college_profile_id"}},
	}
	if courses != nil {
		onConflict.DoUpdates = clause.AssignmentColumns([]string{"interested_courses", "updated_at"})
	} else {
		onConflict.DoNothing = true
	}

	if err := s.db.WithContext(ctx).Clauses(onConflict).Create(&row).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("failed to save shortlist: %w", err)
	}

	record, err := s.load(ctx, studentID, profileID)
	if err != nil {
		return nil, err
	}

	aggregated, err := s.AggregateCourseInterest(ctx, profileID)
	if err != nil {
		return nil, err
	}

	// only a row inserted by this call carries this call's creation time
	created := record.CreatedAt.Equal(now)
	return &InterestResult{Created: created, Shortlist: record, AggregatedCourses: aggregated}, nil
}

// RemoveInterest deletes the (student, college) shortlist
func (s *ShortlistService) RemoveInterest(ctx context.Context, studentID, profileID uint) error {
	result := s.db.WithContext(ctx).Scopes(pairScope(studentID, profileID)).Delete(&model.Shortlist{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove shortlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("shortlist for college %d: %w", profileID, ErrNotFound)
	}
	return nil
}

// ListForStudent returns the student's shortlists, newest first
func (s *ShortlistService) ListForStudent(ctx context.Context, studentID uint) ([]ShortlistRecord, error) {
	var rows []model.Shortlist
	if err := s.db.WithContext(ctx).
		Preload("CollegeProfile.College").
		Where("student_id = ?", studentID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list shortlists: %w", err)
	}

	records := make([]ShortlistRecord, 0, len(rows))
	for i := range rows {
		rec := toRecord(&rows[i])
		rec.College = collegeSummary(&rows[i].CollegeProfile)
		records = append(records, rec)
	}
	return records, nil
}

// ListForCollege returns every shortlist targeting the college, newest first
func (s *ShortlistService) ListForCollege(ctx context.Context, profileID uint) ([]ShortlistRecord, error) {
	rows, err := s.collegeRows(ctx, profileID, false)
	if err != nil {
		return nil, err
	}

	records := make([]ShortlistRecord, 0, len(rows))
	for i := range rows {
		rec := toRecord(&rows[i])
		rec.Student = studentSummary(&rows[i].Student)
		records = append(records, rec)
	}
	return records, nil
}

func (s *ShortlistService) collegeRows(ctx context.Context, profileID uint, forwardedOnly bool) ([]model.Shortlist, error) {
	query := s.db.WithContext(ctx).
		Preload("Student").
		Where("college_profile_id = ?", profileID)
	if forwardedOnly {
		query = query.Where("is_admin_forwarded = ?", true)
	}

	var rows []model.Shortlist
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list college shortlists: %w", err)
	}
	return rows, nil
}

// AggregateCourseInterest returns the distinct, non-blank course names students
// marked for the college, sorted.
func (s *ShortlistService) AggregateCourseInterest(ctx context.Context, profileID uint) ([]string, error) {
	var rows []model.Shortlist
	if err := s.db.WithContext(ctx).
		Select("interested_courses").
		Where("college_profile_id = ?", profileID).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate course interest: %w", err)
	}

	seen := make(map[string]struct{})
	for _, row := range rows {
		for _, c := range row.InterestedCourses {
			if name := strings.TrimSpace(c.Name); name != "" {
				seen[name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CollegeInterest assembles the dashboard for one college
func (s *ShortlistService) CollegeInterest(ctx context.Context, profileID uint) (*CollegeInterest, error) {
	var profile model.CollegeAdminProfile
	if err := s.db.WithContext(ctx).Preload("College").Take(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("college %d: %w", profileID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load college: %w", err)
	}

	var (
		students   []ShortlistRecord
		aggregated []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = s.ListForCollege(gctx, profileID)
		return err
	})
	g.Go(func() error {
		var err error
		aggregated, err = s.AggregateCourseInterest(gctx, profileID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &CollegeInterest{
		College:           *collegeSummary(&profile),
		Count:             len(students),
		Students:          students,
		AggregatedCourses: aggregated,
	}, nil
}

// StatsAcrossColleges counts shortlists per college, most popular first.
// Ties are broken by the most recent shortlist.
func (s *ShortlistService) StatsAcrossColleges(ctx context.Context) ([]CollegeStats, error) {
	var rows []struct {
		CollegeProfileID uint
		CreatedAt        time.Time
	}
	if err := s.db.WithContext(ctx).
		Model(&model.Shortlist{}).
		Select("college_profile_id, created_at").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load shortlist stats: %w", err)
	}

	byCollege := make(map[uint]*CollegeStats)
	ids := make([]uint, 0)
	for _, row := range rows {
		st, ok := byCollege[row.CollegeProfileID]
		if !ok {
			st = &CollegeStats{CollegeAdminID: row.CollegeProfileID}
			byCollege[row.CollegeProfileID] = st
			ids = append(ids, row.CollegeProfileID)
		}
		st.Count++
		if row.CreatedAt.After(st.Latest) {
			st.Latest = row.CreatedAt
		}
	}

	if len(ids) == 0 {
		return []CollegeStats{}, nil
	}

	var profiles []model.CollegeAdminProfile
	if err := s.db.WithContext(ctx).Preload("College").Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to load colleges: %w", err)
	}
	for i := range profiles {
		if st, ok := byCollege[profiles[i].ID]; ok {
			st.Name = displayName(&profiles[i])
			st.Email = contactEmail(&profiles[i])
		}
	}

	stats := make([]CollegeStats, 0, len(byCollege))
	for _, id := range ids {
		st := byCollege[id]
		if st.Name == "" {
			st.Name = unnamedCollege
		}
		stats = append(stats, *st)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		if !stats[i].Latest.Equal(stats[j].Latest) {
			return stats[i].Latest.After(stats[j].Latest)
		}
		return stats[i].CollegeAdminID < stats[j].CollegeAdminID
	})
	return stats, nil
}

// ListForwardedToCollege returns the contact sheets of students an admin forwarded to the college
func (s *ShortlistService) ListForwardedToCollege(ctx context.Context, profileID uint) ([]ForwardedStudent, error) {
	rows, err := s.collegeRows(ctx, profileID, true)
	if err != nil {
		return nil, err
	}

	out := make([]ForwardedStudent, 0, len(rows))
	for _, row := range rows {
		st := row.Student
		out = append(out, ForwardedStudent{
			ShortlistID:       row.ID,
			StudentID:         st.ID,
			Name:              st.Name,
			Email:             st.Email,
			Phone:             st.Phone,
			DateOfBirth:       st.DateOfBirth,
			Education:         nonNilSlice(st.Education),
			CollegeFinalized:  st.CollegeFinalized,
			CourseFinalized:   st.CourseFinalized,
			Notes:             row.Notes,
			InterestedCourses: nonNilSlice(row.InterestedCourses),
			ForwardedAt:       row.ForwardedAt,
		})
	}
	return out, nil
}

// load returns the populated record for a pair
func (s *ShortlistService) load(ctx context.Context, studentID, profileID uint) (*ShortlistRecord, error) {
	var row model.Shortlist
	if err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("CollegeProfile.College").
		Scopes(pairScope(studentID, profileID)).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shortlist for college %d: %w", profileID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load shortlist: %w", err)
	}

	rec := toRecord(&row)
	rec.Student = studentSummary(&row.Student)
	rec.College = collegeSummary(&row.CollegeProfile)
	return &rec, nil
}

func toRecord(row *model.Shortlist) ShortlistRecord {
	return ShortlistRecord{
		ID:                row.ID,
		StudentID:         row.StudentID,
		CollegeID:         row.CollegeProfileID,
		Notes:             row.Notes,
		InterestedCourses: nonNilSlice(row.InterestedCourses),
		IsAdminForwarded:  row.IsAdminForwarded,
		ForwardedAt:       row.ForwardedAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func studentSummary(u *model.User) *StudentSummary {
	return &StudentSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func collegeSummary(p *model.CollegeAdminProfile) *CollegeSummary {
	return &CollegeSummary{
		ID:          p.ID,
		Name:        displayName(p),
		Description: p.Description,
		Logo:        logoURL(p),
	}
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
