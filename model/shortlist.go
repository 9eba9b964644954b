package model

import (
	"time"

	"gorm.io/datatypes"
)

// Shortlist links a student to a college profile they are interested in.
// Rows are hard-deleted so the (student, college) unique index stays exact.
type Shortlist struct {
	ID                uint                                  `gorm:"primaryKey" json:"id"`
	StudentID         uint                                  `gorm:"not null;uniqueIndex:idx_shortlist_student_college" json:"studentId"`
	CollegeProfileID  uint                                  `gorm:"not null;uniqueIndex:idx_shortlist_student_college;index" json:"collegeId"`
	Notes             string                                `gorm:"type:text" json:"notes"`
	InterestedCourses datatypes.JSONSlice[InterestedCourse] `json:"interestedCourses"`
	IsAdminForwarded  bool                                  `gorm:"default:false;index" json:"isAdminForwarded"`
	ForwardedAt       *time.Time                            `json:"forwardedAt,omitempty"`
	CreatedAt         time.Time                             `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time                             `json:"updatedAt"`

	// Relationships
	Student        User                `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	CollegeProfile CollegeAdminProfile `gorm:"foreignKey:CollegeProfileID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Shortlist
func (Shortlist) TableName() string {
	return "shortlists"
}

// InterestedCourse records interest in one sub-course of a college catalog
type InterestedCourse struct {
	Parent  string    `json:"parent"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"addedAt"`
}
