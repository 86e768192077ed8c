package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/repository"
)

// ErrSeedCatalogInvalid indicates a course refers to a teacher missing from the catalog.
var ErrSeedCatalogInvalid = errors.New("seed catalog references unknown teacher")

// SeedTeacher describes a demo teacher account.
type SeedTeacher struct {
	Username string
	Email    string
	Password string
	Name     string
}

// SeedCourse describes a demo course taught by the teacher at TeacherIndex.
type SeedCourse struct {
	Name         string
	Code         string
	Description  string
	TeacherIndex int
}

// SeedCatalog is the demo data loaded by the seeder.
type SeedCatalog struct {
	Teachers []SeedTeacher
	Courses  []SeedCourse
}

// SeedReport counts the rows created during a run.
type SeedReport struct {
	TeachersCreated int
	TeachersExisted int
	CoursesCreated  int
	CoursesExisted  int
}

// SeedService loads demo teachers and courses.
type SeedService interface {
	Seed(ctx context.Context, catalog SeedCatalog) (SeedReport, error)
}

type seedService struct {
	users   repository.UserRepository
	courses repository.CourseRepository
	logger  zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, courses repository.CourseRepository, logger zerolog.Logger) SeedService {
	return &seedService{
		users:   users,
		courses: courses,
		logger:  logger.With().Str("component", "seed_service").Logger(),
	}
}

// Seed is idempotent: teachers are matched by email and courses by code and section.
func (s *seedService) Seed(ctx context.Context, catalog SeedCatalog) (SeedReport, error) {
	var report SeedReport

	for _, course := range catalog.Courses {
		if course.TeacherIndex < 0 || course.TeacherIndex >= len(catalog.Teachers) {
			return report, ErrSeedCatalogInvalid
		}
	}

	teacherIDs := make([]uint, 0, len(catalog.Teachers))
	for _, item := range catalog.Teachers {
		email := strings.ToLower(strings.TrimSpace(item.Email))
		existing, err := s.users.FindByEmail(ctx, email)
		if err == nil {
			report.TeachersExisted++
			teacherIDs = append(teacherIDs, existing.ID)
			continue
		}
		if !repository.IsNotFound(err) {
			return report, err
		}

		user := models.User{
			Username: strings.TrimSpace(item.Username),
			Email:    email,
			Name:     strings.TrimSpace(item.Name),
			Role:     models.RoleTeacher,
		}
		if err := user.SetPassword(item.Password); err != nil {
			return report, err
		}
		if err := s.users.Create(ctx, &user); err != nil {
			return report, err
		}
		report.TeachersCreated++
		teacherIDs = append(teacherIDs, user.ID)
		s.logger.Info().Str("email", email).Msg("teacher seeded")
	}

	for _, item := range catalog.Courses {
		code := strings.ToUpper(strings.TrimSpace(item.Code))
		if _, err := s.courses.FindByCodeSection(ctx, code, defaultSection); err == nil {
			report.CoursesExisted++
			continue
		} else if !repository.IsNotFound(err) {
			return report, err
		}

		teacherID := teacherIDs[item.TeacherIndex]
		course := models.Course{
			Name:        strings.TrimSpace(item.Name),
			Code:        code,
			Section:     defaultSection,
			Description: strings.TrimSpace(item.Description),
			TeacherID:   &teacherID,
		}
		if err := s.courses.Create(ctx, &course); err != nil {
			return report, err
		}
		report.CoursesCreated++
		s.logger.Info().Str("code", code).Uint("teacher_id", teacherID).Msg("course seeded")
	}

	return report, nil
}

// DemoCatalog returns five teachers and ten computer science courses.
func DemoCatalog() SeedCatalog {
	return SeedCatalog{
		Teachers: []SeedTeacher{
			{Username: "prof_johnson", Email: "johnson@university.edu", Password: "teacher123", Name: "Dr. Sarah Johnson"},
			{Username: "prof_smith", Email: "smith@university.edu", Password: "teacher123", Name: "Prof. Michael Smith"},
			{Username: "prof_davis", Email: "davis@university.edu", Password: "teacher123", Name: "Dr. Emily Davis"},
			{Username: "prof_wilson", Email: "wilson@university.edu", Password: "teacher123", Name: "Prof. James Wilson"},
			{Username: "prof_brown", Email: "brown@university.edu", Password: "teacher123", Name: "Dr. Lisa Brown"},
		},
		Courses: []SeedCourse{
			{Name: "Introduction to Programming", Code: "CS101", Description: "Programming fundamentals for beginners.", TeacherIndex: 0},
			{Name: "Data Structures", Code: "CS102", Description: "Arrays, linked lists, trees, graphs and hash tables.", TeacherIndex: 1},
			{Name: "Algorithms", Code: "CS201", Description: "Sorting, searching, dynamic programming and analysis.", TeacherIndex: 2},
			{Name: "Database Systems", Code: "CS202", Description: "SQL, schema design, normalization and transactions.", TeacherIndex: 3},
			{Name: "Web Development", Code: "CS301", Description: "Building full-stack web applications.", TeacherIndex: 4},
			{Name: "Operating Systems", Code: "CS302", Description: "Processes, threads, memory management and file systems.", TeacherIndex: 0},
			{Name: "Machine Learning", Code: "CS401", Description: "Learning algorithms and neural networks.", TeacherIndex: 1},
			{Name: "Computer Networks", Code: "CS402", Description: "TCP/IP, HTTP and distributed systems.", TeacherIndex: 2},
			{Name: "Software Engineering", Code: "CS403", Description: "Design patterns, testing and agile methods.", TeacherIndex: 3},
			{Name: "Artificial Intelligence", Code: "CS404", Description: "Search, reasoning and intelligent agents.", TeacherIndex: 4},
		},
	}
}
