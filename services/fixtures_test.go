package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sahilchouksey/admission-bridge/database/testdb"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	ctx context.Context
	db  *gorm.DB
	log *utils.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		ctx: context.Background(),
		db:  testdb.New(t),
		log: utils.NewNopLogger(),
	}
}

func (f *fixture) user(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Name:         name,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) student(t *testing.T, name string) *model.User {
	return f.user(t, name, model.RoleStudent)
}

func (f *fixture) finalizedStudent(t *testing.T, name, college, course string) *model.User {
	t.Helper()
	u := f.student(t, name)
	require.NoError(t, f.db.Model(u).Updates(map[string]interface{}{
		"college_finalized": college,
		"course_finalized":  course,
	}).Error)
	u.CollegeFinalized, u.CourseFinalized = college, course
	return u
}

// college creates a registered college and, unless profileName is nil, its profile
func (f *fixture) college(t *testing.T, collegeName string, profileName *string, courses ...model.Course) (*model.College, *model.CollegeAdminProfile) {
	t.Helper()
	c := &model.College{
		Name:          collegeName,
		InstituteCode: uuid.NewString()[:12],
		Email:         uuid.NewString() + "@college.example.com",
		PasswordHash:  "x",
	}
	require.NoError(t, f.db.Create(c).Error)
	if profileName == nil {
		return c, nil
	}

	p := &model.CollegeAdminProfile{
		CollegeID: &c.ID,
		Name:      *profileName,
		Courses:   datatypes.JSONSlice[model.Course](courses),
	}
	require.NoError(t, f.db.Create(p).Error)
	return c, p
}

// profile creates a college with a profile of the same name
func (f *fixture) profile(t *testing.T, name string, courses ...model.Course) *model.CollegeAdminProfile {
	t.Helper()
	_, p := f.college(t, name, &name, courses...)
	return p
}

func (f *fixture) countShortlists(t *testing.T, studentID, profileID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Shortlist{}).
		Where("student_id = ? AND college_profile_id = ?", studentID, profileID).
		Count(&n).Error)
	return n
}

// interleaveShortlistInsert runs before just ahead of the next shortlist
// insert opening its transaction, and after once that transaction ends.
func (f *fixture) interleaveShortlistInsert(t *testing.T, before, after func()) {
	t.Helper()
	done := false
	create := f.db.Callback().Create()
	require.NoError(t, create.Before("gorm:begin_transaction").Register("test:before_shortlist_insert", func(tx *gorm.DB) {
		if done || tx.Statement.Table != "shortlists" || before == nil {
			return
		}
		before()
	}))
	require.NoError(t, create.After("gorm:commit_or_rollback_transaction").Register("test:after_shortlist_insert", func(tx *gorm.DB) {
		if done || tx.Statement.Table != "shortlists" {
			return
		}
		done = true
		if after != nil {
			after()
		}
	}))
}

// rawShortlist writes a pair with plain SQL so no create callbacks fire
func (f *fixture) rawShortlist(t *testing.T, studentID, profileID uint, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Exec(
		"INSERT INTO shortlists (student_id, college_profile_id, notes, is_admin_forwarded, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		studentID, profileID, "", false, at, at,
	).Error)
}

func strPtr(s string) *string { return &s }

