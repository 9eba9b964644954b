package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User represents a student or platform admin account
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         Role           `gorm:"type:varchar(20);default:'student'" json:"role"` // student, admin
	Phone        string         `gorm:"type:varchar(30)" json:"phone"`
	DateOfBirth  *time.Time     `json:"dateOfBirth,omitempty"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	Education datatypes.JSONSlice[Education] `json:"education"`

	// Admission workflow, written by admins only
	Counselor        string `gorm:"type:varchar(255)" json:"counselor"`
	CollegeFinalized string `gorm:"type:varchar(255)" json:"collegeFinalized"`
	CourseFinalized  string `gorm:"type:varchar(255)" json:"courseFinalized"`

	// Relationships
	Shortlists    []Shortlist        `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications []UserNotification `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Education is one entry of a student's academic history
type Education struct {
	Level         string  `json:"level"` // e.g. "10th", "12th", "Diploma"
	Institution   string  `json:"institution"`
	Board         string  `json:"board,omitempty"`
	YearOfPassing int     `json:"yearOfPassing,omitempty"`
	Percentage    float64 `json:"percentage,omitempty"`
}

// IsFinalized reports whether both admission choices have been recorded
func (u *User) IsFinalized() bool {
	return u.CollegeFinalized != "" && u.CourseFinalized != ""
}
