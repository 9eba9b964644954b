package services

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/services/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	subject string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{subject: subject, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.subject)
	}
	return out
}

type admissionFixture struct {
	*fixture
	shortlists    *ShortlistService
	notifications *NotificationService
	publisher     *recordingPublisher
	admissions    *AdmissionService
}

func newAdmissionFixture(t *testing.T) *admissionFixture {
	f := newFixture(t)
	shortlists := NewShortlistService(f.db, f.log)
	notifications := NewNotificationService(f.db, f.log)
	publisher := &recordingPublisher{}
	return &admissionFixture{
		fixture:       f,
		shortlists:    shortlists,
		notifications: notifications,
		publisher:     publisher,
		admissions:    NewAdmissionService(f.db, shortlists, notifications, publisher, f.log),
	}
}

func TestFinalize(t *testing.T) {
	f := newAdmissionFixture(t)
	student := f.student(t, "Student")

	updated, err := f.admissions.Finalize(f.ctx, student.ID, "college", " College C ")
	require.NoError(t, err)
	assert.Equal(t, "College C", updated.CollegeFinalized)

	updated, err = f.admissions.Finalize(f.ctx, student.ID, "courseFinalized", "CSE")
	require.NoError(t, err)
	assert.Equal(t, "CSE", updated.CourseFinalized)
	assert.Equal(t, "College C", updated.CollegeFinalized)
	assert.True(t, updated.IsFinalized())

	assert.Equal(t, []string{messaging.SubjectStudentFinalized, messaging.SubjectStudentFinalized}, f.publisher.subjects())
}

func TestFinalize_Rejects(t *testing.T) {
	f := newAdmissionFixture(t)
	student := f.student(t, "Student")
	admin := f.user(t, "Admin", model.RoleAdmin)

	_, err := f.admissions.Finalize(f.ctx, student.ID, "counselor", "someone")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.admissions.Finalize(f.ctx, admin.ID, "college", "X")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.admissions.Finalize(f.ctx, student.ID+1000, "course", "X")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, f.publisher.subjects())
}

func TestForward_RequiresFinalizedChoices(t *testing.T) {
	f := newAdmissionFixture(t)
	college := f.profile(t, "College C")

	cases := map[string]*model.User{
		"nothing finalized": f.student(t, "None"),
		"college only":      f.finalizedStudent(t, "CollegeOnly", "College C", ""),
		"course only":       f.finalizedStudent(t, "CourseOnly", "", "CSE"),
	}
	for name, student := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.shortlists.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "", nil)
			require.NoError(t, err)

			_, err = f.admissions.Forward(f.ctx, ForwardRequest{StudentID: student.ID, CollegeProfileID: college.ID})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestForward_WithoutShortlistIsNotFound(t *testing.T) {
	f := newAdmissionFixture(t)
	college := f.profile(t, "C")
	student := f.finalizedStudent(t, "A", "C", "CSE")

	_, err := f.admissions.Forward(f.ctx, ForwardRequest{StudentID: student.ID, CollegeProfileID: college.ID, Courses: []string{"CSE"}})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.EqualValues(t, 0, f.countShortlists(t, student.ID, college.ID))
	assert.Empty(t, f.publisher.subjects())
}

func TestForward_UnknownCollege(t *testing.T) {
	f := newAdmissionFixture(t)
	student := f.finalizedStudent(t, "A", "C", "CSE")

	_, err := f.admissions.Forward(f.ctx, ForwardRequest{StudentID: student.ID, CollegeProfileID: 999})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForward(t *testing.T) {
	f := newAdmissionFixture(t)
	college := f.profile(t, "College C", model.Course{
		Name:       "B.Tech",
		SubCourses: []model.SubCourse{{Name: "CSE"}},
	})
	admin := f.user(t, "Admin", model.RoleAdmin)
	student := f.finalizedStudent(t, "A", "College C", "CSE")

	_, err := f.shortlists.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "original notes", []CourseSelection{{Name: "ECE"}})
	require.NoError(t, err)

	state, err := f.admissions.State(f.ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, StateFinalized, state)

	shortlist, err := f.admissions.Forward(f.ctx, ForwardRequest{
		StudentID:        student.ID,
		CollegeProfileID: college.ID,
		Courses:          []string{"CSE", " "},
		Notes:            "strong candidate",
		ForwardedBy:      admin.ID,
	})
	require.NoError(t, err)
	assert.True(t, shortlist.IsAdminForwarded)
	require.NotNil(t, shortlist.ForwardedAt)
	assert.Equal(t, "strong candidate", shortlist.Notes)
	require.Len(t, shortlist.InterestedCourses, 1)
	assert.Equal(t, "B.Tech", shortlist.InterestedCourses[0].Parent)
	assert.Equal(t, "CSE", shortlist.InterestedCourses[0].Name)

	assert.EqualValues(t, 1, f.countShortlists(t, student.ID, college.ID))

	state, err = f.admissions.State(f.ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, StateForwarded, state)

	forwarded, err := f.shortlists.ListForwardedToCollege(f.ctx, college.ID)
	require.NoError(t, err)
	require.Len(t, forwarded, 1)
	assert.Equal(t, student.ID, forwarded[0].StudentID)
	assert.Equal(t, "CSE", forwarded[0].CourseFinalized)

	notifications, total, err := f.notifications.GetNotificationsByUser(f.ctx, ListNotificationsOptions{UserID: student.ID, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationCategoryAdmission, notifications[0].Category)
	assert.Contains(t, notifications[0].Message, "College C")

	require.Equal(t, []string{messaging.SubjectStudentForwarded}, f.publisher.subjects())
	event, ok := f.publisher.events[0].payload.(messaging.StudentForwardedEvent)
	require.True(t, ok)
	assert.Equal(t, student.ID, event.StudentID)
	assert.Equal(t, college.ID, event.CollegeProfileID)
	assert.Equal(t, admin.ID, event.ForwardedBy)
	assert.Equal(t, []string{"CSE"}, event.Courses)
}

func TestForward_KeepsCoursesWhenNoneGiven(t *testing.T) {
	f := newAdmissionFixture(t)
	college := f.profile(t, "C")
	student := f.finalizedStudent(t, "A", "C", "CSE")

	_, err := f.shortlists.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "keep me", []CourseSelection{{Name: "ECE"}})
	require.NoError(t, err)

	shortlist, err := f.admissions.Forward(f.ctx, ForwardRequest{StudentID: student.ID, CollegeProfileID: college.ID})
	require.NoError(t, err)
	assert.Equal(t, "keep me", shortlist.Notes)
	require.Len(t, shortlist.InterestedCourses, 1)
	assert.Equal(t, "ECE", shortlist.InterestedCourses[0].Name)
}

func TestState(t *testing.T) {
	f := newAdmissionFixture(t)
	college := f.profile(t, "College C")
	other := f.profile(t, "Other")

	t.Run("prospecting until both choices are set", func(t *testing.T) {
		student := f.finalizedStudent(t, "P", "College C", "")
		state, err := f.admissions.State(f.ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, StateProspecting, state)
	})

	t.Run("forwarding elsewhere does not count", func(t *testing.T) {
		student := f.finalizedStudent(t, "Q", "College C", "CSE")
		_, err := f.shortlists.AddOrUpdateInterest(f.ctx, student.ID, other.ID, "", nil)
		require.NoError(t, err)
		_, err = f.admissions.Forward(f.ctx, ForwardRequest{StudentID: student.ID, CollegeProfileID: other.ID})
		require.NoError(t, err)

		state, err := f.admissions.State(f.ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, StateFinalized, state)
	})

	t.Run("finalized college may be recorded by profile id", func(t *testing.T) {
		student := f.finalizedStudent(t, "R", strconv.FormatUint(uint64(college.ID), 10), "CSE")
		_, err := f.shortlists.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "", nil)
		require.NoError(t, err)
		_, err = f.admissions.Forward(f.ctx, ForwardRequest{StudentID: student.ID, CollegeProfileID: college.ID})
		require.NoError(t, err)

		detail, err := f.admissions.Detail(f.ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, StateForwarded, detail.State)
		require.Len(t, detail.Shortlists, 1)
		assert.True(t, detail.Shortlists[0].IsAdminForwarded)
	})
}
