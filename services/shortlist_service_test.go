package services

import (
	"testing"
	"time"

	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortlistScenario(t *testing.T) {
	f := newFixture(t)
	svc := NewShortlistService(f.db, f.log)

	student := f.student(t, "Student A")
	college := f.profile(t, "College C", model.Course{Name: "B.Tech"})

	_, err := svc.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "", []CourseSelection{{Parent: "B.Tech", Name: "CSE"}})
	require.NoError(t, err)

	records, err := svc.ListForStudent(f.ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].College)
	assert.Equal(t, college.ID, records[0].College.ID)
	assert.Equal(t, "College C", records[0].College.Name)
	require.Len(t, records[0].InterestedCourses, 1)
	assert.Equal(t, "B.Tech", records[0].InterestedCourses[0].Parent)
	assert.Equal(t, "CSE", records[0].InterestedCourses[0].Name)

	aggregated, err := svc.AggregateCourseInterest(f.ctx, college.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"CSE"}, aggregated)

	require.NoError(t, svc.RemoveInterest(f.ctx, student.ID, college.ID))

	records, err = svc.ListForStudent(f.ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAddOrUpdateInterest(t *testing.T) {
	f := newFixture(t)
	svc := NewShortlistService(f.db, f.log)
	student := f.student(t, "Student")
	college := f.profile(t, "College")

	t.Run("first add creates the shortlist", func(t *testing.T) {
		result, err := svc.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "call after 5pm", []CourseSelection{{Name: "CSE"}})
		require.NoError(t, err)
		assert.True(t, result.Created)
		assert.Equal(t, "call after 5pm", result.Shortlist.Notes)
		assert.Equal(t, []string{"CSE"}, result.AggregatedCourses)
		require.NotNil(t, result.Shortlist.Student)
		assert.Equal(t, student.ID, result.Shortlist.Student.ID)
	})

	t.Run("re-adding without courses leaves the shortlist untouched", func(t *testing.T) {
		result, err := svc.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "new notes", nil)
		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Equal(t, "call after 5pm", result.Shortlist.Notes)
		require.Len(t, result.Shortlist.InterestedCourses, 1)
		assert.Equal(t, "CSE", result.Shortlist.InterestedCourses[0].Name)
	})

	t.Run("re-adding with courses replaces them but keeps notes", func(t *testing.T) {
		result, err := svc.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "ignored", []CourseSelection{{Name: "ECE"}, {Name: "ME"}})
		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Equal(t, "call after 5pm", result.Shortlist.Notes)
		assert.Equal(t, []string{"ECE", "ME"}, result.AggregatedCourses)
	})

	t.Run("re-adding with an empty list clears the courses", func(t *testing.T) {
		result, err := svc.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "", []CourseSelection{})
		require.NoError(t, err)
		assert.Empty(t, result.Shortlist.InterestedCourses)
		assert.Empty(t, result.AggregatedCourses)
	})

	assert.EqualValues(t, 1, f.countShortlists(t, student.ID, college.ID))
}

func TestAddOrUpdateInterest_UnknownParticipants(t *testing.T) {
	f := newFixture(t)
	svc := NewShortlistService(f.db, f.log)
	student := f.student(t, "Student")
	admin := f.user(t, "Admin", model.RoleAdmin)
	college := f.profile(t, "College")

	_, err := svc.AddOrUpdateInterest(f.ctx, student.ID, college.ID+100, "", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddOrUpdateInterest(f.ctx, admin.ID, college.ID, "", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleInterest_IsInvolution(t *testing.T) {
	f := newFixture(t)
	svc := NewShortlistService(f.db, f.log)
	student := f.student(t, "Student")
	college := f.profile(t, "College")
	courses := []CourseSelection{{Parent: "B.Tech", Name: "AI/ML"}}

	on, err := svc.ToggleInterest(f.ctx, student.ID, college.ID, courses)
	require.NoError(t, err)
	assert.True(t, on.Shortlisted)
	require.NotNil(t, on.Shortlist)
	assert.Equal(t, []string{"AI/ML"}, on.AggregatedCourses)
	assert.EqualValues(t, 1, f.countShortlists(t, student.ID, college.ID))

	off, err := svc.ToggleInterest(f.ctx, student.ID, college.ID, courses)
	require.NoError(t, err)
	assert.False(t, off.Shortlisted)
	assert.Nil(t, off.Shortlist)
	assert.Empty(t, off.AggregatedCourses)
	assert.EqualValues(t, 0, f.countShortlists(t, student.ID, college.ID))

	again, err := svc.ToggleInterest(f.ctx, student.ID, college.ID, nil)
	require.NoError(t, err)
	assert.True(t, again.Shortlisted)
	assert.EqualValues(t, 1, f.countShortlists(t, student.ID, college.ID))
}

func TestUniquenessAcrossOperations(t *testing.T) {
	f := newFixture(t)
	svc := NewShortlistService(f.db, f.log)
	student := f.student(t, "Student")
	college := f.profile(t, "College")

	steps := []func() error{
		func() error { _, err := svc.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "", nil); return err },
		func() error { _, err := svc.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "", nil); return err },
		func() error { _, err := svc.ToggleInterest(f.ctx, student.ID, college.ID, nil); return err },
		func() error { _, err := svc.ToggleInterest(f.ctx, student.ID, college.ID, nil); return err },
		func() error {
			_, err := svc.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "", []CourseSelection{{Name: "CSE"}})
			return err
		},
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		assert.LessOrEqual(t, f.countShortlists(t, student.ID, college.ID), int64(1), "step %d", i)
	}
}

func TestInsertRace_ExistingRowCountsAsShortlisted(t *testing.T) {
	earlier := time.Now().Add(-time.Minute)

	t.Run("toggle", func(t *testing.T) {
		f := newFixture(t)
		svc := NewShortlistService(f.db, f.log)
		student := f.student(t, "Student")
		college := f.profile(t, "College")
		f.interleaveShortlistInsert(t, func() { f.rawShortlist(t, student.ID, college.ID, earlier) }, nil)

		result, err := svc.ToggleInterest(f.ctx, student.ID, college.ID, []CourseSelection{{Name: "CSE"}})
		require.NoError(t, err)
		assert.True(t, result.Shortlisted)
		require.NotNil(t, result.Shortlist)
		assert.Empty(t, result.Shortlist.InterestedCourses)
		assert.EqualValues(t, 1, f.countShortlists(t, student.ID, college.ID))
	})

	t.Run("add without courses", func(t *testing.T) {
		f := newFixture(t)
		svc := NewShortlistService(f.db, f.log)
		student := f.student(t, "Student")
		college := f.profile(t, "College")
		f.interleaveShortlistInsert(t, func() { f.rawShortlist(t, student.ID, college.ID, earlier) }, nil)

		result, err := svc.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "late notes", nil)
		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Empty(t, result.Shortlist.Notes)
		assert.EqualValues(t, 1, f.countShortlists(t, student.ID, college.ID))
	})

	t.Run("add with courses", func(t *testing.T) {
		f := newFixture(t)
		svc := NewShortlistService(f.db, f.log)
		student := f.student(t, "Student")
		college := f.profile(t, "College")
		f.interleaveShortlistInsert(t, func() { f.rawShortlist(t, student.ID, college.ID, earlier) }, nil)

		result, err := svc.AddOrUpdateInterest(f.ctx, student.ID, college.ID, "", []CourseSelection{{Name: "CSE"}})
		require.NoError(t, err)
		assert.False(t, result.Created)
		assert.Equal(t, []string{"CSE"}, result.AggregatedCourses)
		assert.EqualValues(t, 1, f.countShortlists(t, student.ID, college.ID))
	})
}

func TestToggleInterest_RowGoneAfterDuplicate(t *testing.T) {
	f := newFixture(t)
	svc := NewShortlistService(f.db, f.log)
	student := f.student(t, "Student")
	college := f.profile(t, "College")

	f.interleaveShortlistInsert(t,
		func() { f.rawShortlist(t, student.ID, college.ID, time.Now()) },
		func() {
			require.NoError(t, f.db.Exec("DELETE FROM shortlists WHERE student_id = ? AND college_profile_id = ?", student.ID, college.ID).Error)
		},
	)

	result, err := svc.ToggleInterest(f.ctx, student.ID, college.ID, nil)
	require.NoError(t, err)
	assert.True(t, result.Shortlisted)
	assert.Nil(t, result.Shortlist)
	assert.Empty(t, result.AggregatedCourses)
	assert.EqualValues(t, 0, f.countShortlists(t, student.ID, college.ID))
}

func TestRemoveInterest_Missing(t *testing.T) {
	f := newFixture(t)
	svc := NewShortlistService(f.db, f.log)
	student := f.student(t, "Student")
	college := f.profile(t, "College")

	err := svc.RemoveInterest(f.ctx, student.ID, college.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAggregateCourseInterest(t *testing.T) {
	f := newFixture(t)
	svc := NewShortlistService(f.db, f.log)
	college := f.profile(t, "College")
	other := f.profile(t, "Other")

	a := f.student(t, "A")
	b := f.student(t, "B")
	c := f.student(t, "C")

	_, err := svc.AddOrUpdateInterest(f.ctx, a.ID, college.ID, "", []CourseSelection{{Name: "AI/ML"}})
	require.NoError(t, err)
	_, err = svc.AddOrUpdateInterest(f.ctx, b.ID, college.ID, "", []CourseSelection{{Name: "AI/ML"}, {Name: "Data Science"}, {Name: "  "}})
	require.NoError(t, err)
	_, err = svc.AddOrUpdateInterest(f.ctx, c.ID, other.ID, "", []CourseSelection{{Name: "Law"}})
	require.NoError(t, err)

	aggregated, err := svc.AggregateCourseInterest(f.ctx, college.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AI/ML", "Data Science"}, aggregated)

	empty, err := svc.AggregateCourseInterest(f.ctx, college.ID+100)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCollegeInterest(t *testing.T) {
	f := newFixture(t)
	svc := NewShortlistService(f.db, f.log)
	college := f.profile(t, "College")
	a := f.student(t, "A")
	b := f.student(t, "B")

	_, err := svc.AddOrUpdateInterest(f.ctx, a.ID, college.ID, "", []CourseSelection{{Name: "CSE"}})
	require.NoError(t, err)
	_, err = svc.AddOrUpdateInterest(f.ctx, b.ID, college.ID, "", []CourseSelection{{Name: "ECE"}})
	require.NoError(t, err)

	interest, err := svc.CollegeInterest(f.ctx, college.ID)
	require.NoError(t, err)
	assert.Equal(t, "College", interest.College.Name)
	assert.Equal(t, 2, interest.Count)
	assert.Equal(t, []string{"CSE", "ECE"}, interest.AggregatedCourses)

	names := []string{}
	for _, s := range interest.Students {
		require.NotNil(t, s.Student)
		names = append(names, s.Student.Name)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, names)

	_, err = svc.CollegeInterest(f.ctx, college.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsAcrossColleges(t *testing.T) {
	f := newFixture(t)
	svc := NewShortlistService(f.db, f.log)

	popular := f.profile(t, "Popular")
	recent := f.profile(t, "Recent")
	older := f.profile(t, "Older")
	f.profile(t, "Ignored")

	students := []*model.User{f.student(t, "A"), f.student(t, "B")}
	base := time.Now().Add(-time.Hour)
	add := func(studentID, profileID uint, at time.Time) {
		row := model.Shortlist{StudentID: studentID, CollegeProfileID: profileID, CreatedAt: at, UpdatedAt: at}
		require.NoError(t, f.db.Create(&row).Error)
	}
	add(students[0].ID, popular.ID, base)
	add(students[1].ID, popular.ID, base.Add(time.Minute))
	add(students[0].ID, older.ID, base.Add(2*time.Minute))
	add(students[0].ID, recent.ID, base.Add(3*time.Minute))

	stats, err := svc.StatsAcrossColleges(f.ctx)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, popular.ID, stats[0].CollegeAdminID)
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, "Popular", stats[0].Name)
	assert.Equal(t, recent.ID, stats[1].CollegeAdminID)
	assert.Equal(t, older.ID, stats[2].CollegeAdminID)
	assert.True(t, stats[1].Latest.After(stats[2].Latest))
}

func TestStatsAcrossColleges_Empty(t *testing.T) {
	f := newFixture(t)
	stats, err := NewShortlistService(f.db, f.log).StatsAcrossColleges(f.ctx)
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}
