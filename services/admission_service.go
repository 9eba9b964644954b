package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/services/messaging"
	"github.com/sahilchouksey/admission-bridge/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdmissionState is where a student is in the admission pipeline
type AdmissionState string

const (
	StateProspecting AdmissionState = "prospecting"
	StateFinalized   AdmissionState = "finalized"
	StateForwarded   AdmissionState = "forwarded"
)

// finalizable fields keyed by every accepted alias
var finalizeColumns = map[string]string{
	"college":          "college_finalized",
	"collegeFinalized": "college_finalized",
	"course":           "course_finalized",
	"courseFinalized":  "course_finalized",
}

// ForwardRequest describes an admin forwarding a finalized student to a college
type ForwardRequest struct {
	StudentID        uint
	CollegeProfileID uint
	Courses          []string
	Notes            string
	ForwardedBy      uint
}

// AdmissionService runs the finalize and forward workflow
type AdmissionService struct {
	db            *gorm.DB
	shortlists    *ShortlistService
	notifications *NotificationService
	publisher     messaging.Publisher
	log           *utils.Logger
}

// NewAdmissionService creates a new admission service
func NewAdmissionService(db *gorm.DB, shortlists *ShortlistService, notifications *NotificationService, publisher messaging.Publisher, log *utils.Logger) *AdmissionService {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &AdmissionService{
		db:            db,
		shortlists:    shortlists,
		notifications: notifications,
		publisher:     publisher,
		log:           log,
	}
}

func (s *AdmissionService) loadStudent(ctx context.Context, studentID uint) (*model.User, error) {
	var student model.User
	if err := s.db.WithContext(ctx).
		Where("id = ? AND role = ?", studentID, model.RoleStudent).
		Take(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student %d: %w", studentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	return &student, nil
}

// Finalize records the student's chosen college or course. The value is not
// checked against any catalog.
func (s *AdmissionService) Finalize(ctx context.Context, studentID uint, field, value string) (*model.User, error) {
	column, ok := finalizeColumns[strings.TrimSpace(field)]
	if !ok {
		return nil, fmt.Errorf("unknown field %q, expected college or course: %w", field, ErrValidation)
	}

	if _, err := s.loadStudent(ctx, studentID); err != nil {
		return nil, err
	}

	value = strings.TrimSpace(value)
	if err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", studentID).
		Update(column, value).Error; err != nil {
		return nil, fmt.Errorf("failed to finalize %s: %w", field, err)
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.SubjectStudentFinalized, messaging.StudentFinalizedEvent{
		StudentID: studentID,
		Field:     column,
		Value:     value,
	})

	s.log.Info("student finalized", "student", studentID, "field", column)
	return student, nil
}

// Forward marks the student's existing shortlist for the college as forwarded.
// The student must have both a finalized college and course. A missing
// shortlist is an error; Forward never creates one.
func (s *AdmissionService) Forward(ctx context.Context, req ForwardRequest) (*model.Shortlist, error) {
	student, err := s.loadStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	if !student.IsFinalized() {
		return nil, fmt.Errorf("student must have a finalized college and course before forwarding: %w", ErrValidation)
	}

	var profile model.CollegeAdminProfile
	if err := s.db.WithContext(ctx).Preload("College").Take(&profile, req.CollegeProfileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("college %d: %w", req.CollegeProfileID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load college: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"is_admin_forwarded": true,
		"forwarded_at":       now,
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		updates["notes"] = notes
	}
	if courses := resolveCourses(&profile, req.Courses, now); len(courses) > 0 {
		updates["interested_courses"] = courses
	}

	result := s.db.WithContext(ctx).
		Model(&model.Shortlist{}).
		Scopes(pairScope(req.StudentID, req.CollegeProfileID)).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to forward student: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("student %d has not shortlisted college %d: %w", req.StudentID, req.CollegeProfileID, ErrNotFound)
	}

	var shortlist model.Shortlist
	if err := s.db.WithContext(ctx).
		Scopes(pairScope(req.StudentID, req.CollegeProfileID)).
		Take(&shortlist).Error; err != nil {
		return nil, fmt.Errorf("failed to reload shortlist: %w", err)
	}

	s.afterForward(ctx, student, &profile, &shortlist, req.ForwardedBy)
	return &shortlist, nil
}

// afterForward notifies the student and announces the event. Both are best-effort.
func (s *AdmissionService) afterForward(ctx context.Context, student *model.User, profile *model.CollegeAdminProfile, shortlist *model.Shortlist, forwardedBy uint) {
	collegeName := displayName(profile)
	courseNames := make([]string, 0, len(shortlist.InterestedCourses))
	for _, c := range shortlist.InterestedCourses {
		courseNames = append(courseNames, c.Name)
	}

	if s.notifications != nil {
		_, err := s.notifications.CreateNotification(ctx, CreateNotificationRequest{
			UserID:   student.ID,
			Type:     model.NotificationTypeSuccess,
			Category: model.NotificationCategoryAdmission,
			Title:    "Application forwarded",
			Message:  fmt.Sprintf("Your application has been forwarded to %s.", collegeName),
			Metadata: &model.NotificationMetadata{
				CollegeProfileID: profile.ID,
				CollegeName:      collegeName,
				Courses:          courseNames,
			},
		})
		if err != nil {
			s.log.Warn("failed to notify forwarded student", "student", student.ID, "error", err)
		}
	}

	forwardedAt := time.Now()
	if shortlist.ForwardedAt != nil {
		forwardedAt = *shortlist.ForwardedAt
	}
	s.publish(ctx, messaging.SubjectStudentForwarded, messaging.StudentForwardedEvent{
		ShortlistID:      shortlist.ID,
		StudentID:        student.ID,
		CollegeProfileID: profile.ID,
		CollegeFinalized: student.CollegeFinalized,
		CourseFinalized:  student.CourseFinalized,
		Courses:          courseNames,
		ForwardedAt:      forwardedAt,
		ForwardedBy:      forwardedBy,
	})

	s.log.Info("student forwarded", "student", student.ID, "college", profile.ID)
}

func (s *AdmissionService) publish(ctx context.Context, subject string, event interface{}) {
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		s.log.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// State reports where the student is in the pipeline. A student is forwarded
// once a forwarded shortlist targets the finalized college, matched by
// profile id or case-insensitive name.
func (s *AdmissionService) State(ctx context.Context, studentID uint) (AdmissionState, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return "", err
	}
	return s.stateOf(ctx, student)
}

func (s *AdmissionService) stateOf(ctx context.Context, student *model.User) (AdmissionState, error) {
	if !student.IsFinalized() {
		return StateProspecting, nil
	}

	var forwarded []model.Shortlist
	if err := s.db.WithContext(ctx).
		Preload("CollegeProfile.College").
		Where("student_id = ? AND is_admin_forwarded = ?", student.ID, true).
		Find(&forwarded).Error; err != nil {
		return "", fmt.Errorf("failed to load forwarded shortlists: %w", err)
	}

	target := strings.TrimSpace(student.CollegeFinalized)
	for i := range forwarded {
		profile := &forwarded[i].CollegeProfile
		if target == strconv.FormatUint(uint64(forwarded[i].CollegeProfileID), 10) ||
			strings.EqualFold(target, displayName(profile)) {
			return StateForwarded, nil
		}
	}
	return StateFinalized, nil
}

// StudentDetail is the admin view of one student
type StudentDetail struct {
	Student    *model.User       `json:"student"`
	State      AdmissionState    `json:"admissionState"`
	Shortlists []ShortlistRecord `json:"shortlists"`
}

// Detail loads a student with their admission state and shortlists
func (s *AdmissionService) Detail(ctx context.Context, studentID uint) (*StudentDetail, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	state, err := s.stateOf(ctx, student)
	if err != nil {
		return nil, err
	}

	records, err := s.shortlists.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &StudentDetail{Student: student, State: state, Shortlists: records}, nil
}

// resolveCourses turns forwarded course names into interested courses, using
// the college catalog to fill in the parent course when the name matches.
func resolveCourses(profile *model.CollegeAdminProfile, names []string, at time.Time) datatypes.JSONSlice[model.InterestedCourse] {
	parents := make(map[string]string)
	for _, c := range profile.Courses {
		parents[strings.ToLower(c.Name)] = c.Name
		for _, sub := range c.SubCourses {
			parents[strings.ToLower(sub.Name)] = c.Name
		}
	}

	out := make(datatypes.JSONSlice[model.InterestedCourse], 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, model.InterestedCourse{
			Parent:  parents[strings.ToLower(name)],
			Name:    name,
			AddedAt: at,
		})
	}
	return out
}
