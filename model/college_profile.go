package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CollegeAdminProfile is the editable institutional profile and course catalog.
// At most one profile exists per College.
type CollegeAdminProfile struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	CollegeID   *uint          `gorm:"uniqueIndex" json:"collegeId,omitempty"`
	Name        string         `gorm:"type:varchar(255)" json:"name"`
	Description string         `gorm:"type:text" json:"description"`

	Features   datatypes.JSONSlice[string]      `json:"features"`
	Address    datatypes.JSON                   `json:"address,omitempty"` // free-text string or StructuredAddress
	Contact    datatypes.JSONType[ContactBlock] `json:"contact"`
	VideoLinks datatypes.JSONSlice[string]      `json:"videoLinks"`
	Logo       datatypes.JSONType[MediaAsset]   `json:"logo"`
	CoverPhoto datatypes.JSONType[MediaAsset]   `json:"coverPhoto"`
	Courses    datatypes.JSONSlice[Course]      `json:"courses"`

	// Relationships
	College    *College    `gorm:"foreignKey:CollegeID;constraint:OnDelete:SET NULL" json:"college,omitempty"`
	Shortlists []Shortlist `gorm:"foreignKey:CollegeProfileID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for CollegeAdminProfile
func (CollegeAdminProfile) TableName() string {
	return "college_admin_profiles"
}

// MediaAsset describes an uploaded branding image
type MediaAsset struct {
	URL        string     `json:"url"`
	Key        string     `json:"key,omitempty"` // storage key, used to replace the asset
	Filename   string     `json:"filename"`
	Size       int64      `json:"size"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

// ContactBlock is the public contact information of a college
type ContactBlock struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// StructuredAddress is the object form of a profile address
type StructuredAddress struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// Course is one program in a college catalog
type Course struct {
	Name       string      `json:"name" validate:"required,max=255"`
	SubCourses []SubCourse `json:"subCourses" validate:"omitempty,dive"`
}

// SubCourse is a specialization offered under a Course
type SubCourse struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Fee         float64  `json:"fee" validate:"gte=0"`
	Eligibility []string `json:"eligibility"`
}

// CourseNames returns the catalog course names in order
func (p *CollegeAdminProfile) CourseNames() []string {
	names := make([]string, 0, len(p.Courses))
	for _, c := range p.Courses {
		names = append(names, c.Name)
	}
	return names
}
