package model

import (
	"time"

	"gorm.io/gorm"
)

// College is the raw registration record an institution signs up with
type College struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Name          string         `gorm:"not null" json:"name"`
	InstituteCode string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"instituteCode"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string         `gorm:"not null" json:"-"`
	ContactNumber string         `gorm:"type:varchar(30)" json:"contactNumber"`
	LogoURL       string         `gorm:"type:text" json:"logoUrl"`       // legacy single-URL logo
	CoverPhotoURL string         `gorm:"type:text" json:"coverPhotoUrl"` // legacy single-URL cover
	TokenVersion  int            `gorm:"default:0" json:"-"`

	// Relationships
	Profile *CollegeAdminProfile `gorm:"foreignKey:CollegeID" json:"profile,omitempty"`
}
