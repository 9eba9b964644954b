package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/utils/auth"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedOptions controls what the seeder creates
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Samples adds demo colleges, profiles and students sharing SamplePassword
	Samples        bool
	SamplePassword string
}

// SeedLogger is the logging the seeder needs
type SeedLogger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Seeder handles database seeding operations
type Seeder struct {
	db   *gorm.DB
	opts SeedOptions
	log  SeedLogger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, opts SeedOptions, log SeedLogger) *Seeder {
	return &Seeder{db: db, opts: opts, log: log}
}

// SeedAll runs all seed functions. Every step is idempotent.
func (s *Seeder) SeedAll() error {
	s.log.Info("starting database seeding")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if !s.opts.Samples {
		s.log.Info("database seeding completed")
		return nil
	}

	if len(s.opts.SamplePassword) < 8 {
		return errors.New("sample password must be at least 8 characters")
	}

	if err := s.SeedColleges(); err != nil {
		return fmt.Errorf("failed to seed colleges: %w", err)
	}

	if err := s.SeedStudents(); err != nil {
		return fmt.Errorf("failed to seed students: %w", err)
	}

	s.log.Info("database seeding completed")
	return nil
}

// SeedAdminUser creates the platform admin from the configured credentials
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		s.log.Info("admin user already exists, skipping")
		return nil
	}

	if s.opts.AdminEmail == "" || s.opts.AdminPassword == "" {
		s.log.Warn("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(s.opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        s.opts.AdminEmail,
		PasswordHash: passwordHash,
		Name:         s.opts.AdminName,
		Role:         model.RoleAdmin,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	s.log.Info("created admin user", "id", admin.ID)
	return nil
}

type sampleCollege struct {
	college model.College
	profile model.CollegeAdminProfile
}

func sampleColleges() []sampleCollege {
	return []sampleCollege{
		{
			college: model.College{
				Name:          "Northfield Institute of Technology",
				InstituteCode: "NIT-001",
				Email:         "admissions@northfield.example.edu",
				ContactNumber: "+91 98765 43210",
			},
			profile: model.CollegeAdminProfile{
				Description: "Engineering and applied sciences with strong industry links.",
				Features:    datatypes.JSONSlice[string]{"Hostel", "Placement cell", "Research labs"},
				Address:     datatypes.JSON(`{"line1":"12 College Road","city":"Pune","state":"Maharashtra","pincode":"411001","country":"India"}`),
				Contact: datatypes.NewJSONType(model.ContactBlock{
					Email:   "info@northfield.example.edu",
					Phone:   "+91 20 1234 5678",
					Website: "https://northfield.example.edu",
				}),
				VideoLinks: datatypes.JSONSlice[string]{},
				Courses: datatypes.JSONSlice[model.Course]{
					{Name: "B.Tech", SubCourses: []model.SubCourse{
						{Name: "Computer Science", Fee: 180000, Eligibility: []string{"12th PCM, 60%"}},
						{Name: "Mechanical", Fee: 150000, Eligibility: []string{"12th PCM, 55%"}},
					}},
					{Name: "M.Tech", SubCourses: []model.SubCourse{
						{Name: "Data Science", Fee: 220000, Eligibility: []string{"B.Tech, 60%"}},
					}},
				},
			},
		},
		{
			college: model.College{
				Name:          "Riverside College of Commerce",
				InstituteCode: "RCC-002",
				Email:         "admissions@riverside.example.edu",
				ContactNumber: "+91 91234 56780",
			},
			profile: model.CollegeAdminProfile{
				Name:        "Riverside College",
				Description: "Commerce, management and economics programs.",
				Features:    datatypes.JSONSlice[string]{"Library", "Incubation centre"},
				Address:     datatypes.JSON(`"Jaipur, Rajasthan"`),
				VideoLinks:  datatypes.JSONSlice[string]{"https://videos.example.com/riverside-tour"},
				Courses: datatypes.JSONSlice[model.Course]{
					{Name: "BBA", SubCourses: []model.SubCourse{
						{Name: "Finance", Fee: 90000},
						{Name: "Marketing", Fee: 85000},
					}},
					{Name: "B.Com"},
				},
			},
		},
	}
}

// SeedColleges creates demo college accounts, each with a profile
func (s *Seeder) SeedColleges() error {
	passwordHash, err := auth.HashPassword(s.opts.SamplePassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	created := 0
	for _, sample := range sampleColleges() {
		var existing int64
		if err := s.db.Model(&model.College{}).Where("institute_code = ?", sample.college.InstituteCode).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			continue
		}

		college := sample.college
		college.PasswordHash = passwordHash
		profile := sample.profile

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&college).Error; err != nil {
				return err
			}
			profile.CollegeID = &college.ID
			return tx.Create(&profile).Error
		})
		if err != nil {
			return fmt.Errorf("college %s: %w", college.InstituteCode, err)
		}
		created++
	}

	s.log.Info("seeded colleges", "created", created)
	return nil
}

// SeedStudents creates demo students; the first shortlists every seeded college
func (s *Seeder) SeedStudents() error {
	passwordHash, err := auth.HashPassword(s.opts.SamplePassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	students := []model.User{
		{
			Name:  "Asha Verma",
			Email: "asha.verma@student.example.com",
			Phone: "+91 90000 00001",
			Education: datatypes.JSONSlice[model.Education]{
				{Level: "12th", Institution: "City Senior Secondary School", Board: "CBSE", YearOfPassing: 2025, Percentage: 88.4},
			},
		},
		{
			Name:  "Rohan Iyer",
			Email: "rohan.iyer@student.example.com",
			Phone: "+91 90000 00002",
		},
	}

	var profiles []model.CollegeAdminProfile
	if err := s.db.Order("id ASC").Find(&profiles).Error; err != nil {
		return err
	}

	created := 0
	for i := range students {
		student := students[i]

		var existing int64
		if err := s.db.Model(&model.User{}).Where("email = ?", student.Email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			continue
		}

		student.PasswordHash = passwordHash
		student.Role = model.RoleStudent
		if err := s.db.Create(&student).Error; err != nil {
			return err
		}
		created++

		if i != 0 {
			continue
		}
		now := time.Now()
		for _, p := range profiles {
			shortlist := model.Shortlist{
				StudentID:        student.ID,
				CollegeProfileID: p.ID,
				InterestedCourses: datatypes.JSONSlice[model.InterestedCourse]{
					{Parent: firstCourse(p), Name: firstSubCourse(p), AddedAt: now},
				},
			}
			if err := s.db.Create(&shortlist).Error; err != nil {
				return err
			}
		}
	}

	s.log.Info("seeded students", "created", created)
	return nil
}

func firstCourse(p model.CollegeAdminProfile) string {
	if len(p.Courses) == 0 {
		return ""
	}
	return p.Courses[0].Name
}

func firstSubCourse(p model.CollegeAdminProfile) string {
	if len(p.Courses) == 0 || len(p.Courses[0].SubCourses) == 0 {
		return firstCourse(p)
	}
	return p.Courses[0].SubCourses[0].Name
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB, opts SeedOptions, log SeedLogger) error {
	return NewSeeder(db, opts, log).SeedAll()
}
