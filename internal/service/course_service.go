package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-api/internal/dto"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/repository"
)

var (
	// ErrCourseNotFound indicates the course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrAlreadyEnrolled indicates the student is already in the course.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	// ErrNoSectionAvailable indicates every section letter of a code is taken.
	ErrNoSectionAvailable = errors.New("no section available for this course code")
)

const (
	sectionLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	defaultSection = "A"
)

// CourseService manages courses and enrollments.
type CourseService interface {
	ListAll(ctx context.Context) ([]dto.CourseResponse, error)
	ListMine(ctx context.Context, userID uint, role string) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Enroll(ctx context.Context, studentID uint, payload dto.EnrollRequest) (dto.CourseResponse, error)
	Unenroll(ctx context.Context, studentID, courseID uint) error
	EnrolledStudents(ctx context.Context, teacherID, courseID uint) (dto.CourseStudentsResponse, error)
}

type courseService struct {
	courses     repository.CourseRepository
	assignments repository.TeacherAssignmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(courses repository.CourseRepository, assignments repository.TeacherAssignmentRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:     courses,
		assignments: assignments,
		validator:   validate,
		activity:    activity,
		logger:      logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) ListAll(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) ListMine(ctx context.Context, userID uint, role string) ([]dto.CourseResponse, error) {
	var (
		courses []models.Course
		err     error
	)
	if role == models.RoleTeacher {
		courses, err = s.courses.ListByTeacher(ctx, userID)
	} else {
		courses, err = s.courses.ListByStudent(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.findCourse(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

// Create stores a new course section. When the requested section of the code
// is taken the first free letter is used instead.
func (s *courseService) Create(ctx context.Context, teacherID uint, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	payload.Code = strings.ToUpper(strings.TrimSpace(payload.Code))
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Section = strings.ToUpper(strings.TrimSpace(payload.Section))
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	taken, err := s.courses.SectionsForCode(ctx, payload.Code)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	section, ok := pickSection(payload.Section, taken)
	if !ok {
		return dto.CourseResponse{}, ErrNoSectionAvailable
	}

	course := models.Course{
		Name:        payload.Name,
		Code:        payload.Code,
		Section:     section,
		Description: strings.TrimSpace(payload.Description),
		TeacherID:   uintPtr(teacherID),
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		if repository.IsDuplicate(err) {
			return dto.CourseResponse{}, ErrNoSectionAvailable
		}
		return dto.CourseResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    teacherID,
		ActorRole:  models.RoleTeacher,
		Action:     ActionCourseCreated,
		EntityType: "course",
		EntityID:   uintPtr(course.ID),
		Metadata:   map[string]interface{}{"code": course.Code, "section": course.Section},
	})

	s.logger.Info().Uint("course_id", course.ID).Str("code", course.Code).Str("section", course.Section).Msg("course created")

	created, err := s.courses.FindByID(ctx, course.ID)
	if err != nil {
		return dto.NewCourseResponse(course), nil
	}
	return dto.NewCourseResponse(created), nil
}

func (s *courseService) Enroll(ctx context.Context, studentID uint, payload dto.EnrollRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.findCourse(ctx, payload.CourseID)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	enrolled, err := s.courses.IsEnrolled(ctx, studentID, course.ID)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if enrolled {
		return dto.CourseResponse{}, ErrAlreadyEnrolled
	}

	enrollment := models.Enrollment{StudentID: studentID, CourseID: course.ID}
	if err := s.courses.Enroll(ctx, &enrollment); err != nil {
		if repository.IsDuplicate(err) {
			return dto.CourseResponse{}, ErrAlreadyEnrolled
		}
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Uint("student_id", studentID).Msg("student enrolled")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Unenroll(ctx context.Context, studentID, courseID uint) error {
	return s.courses.Unenroll(ctx, studentID, courseID)
}

func (s *courseService) EnrolledStudents(ctx context.Context, teacherID, courseID uint) (dto.CourseStudentsResponse, error) {
	if _, err := s.findCourse(ctx, courseID); err != nil {
		return dto.CourseStudentsResponse{}, err
	}

	students, err := s.courses.EnrolledStudents(ctx, courseID)
	if err != nil {
		return dto.CourseStudentsResponse{}, err
	}

	assigned, err := s.assignments.StudentIDsForTeacher(ctx, teacherID, courseID)
	if err != nil {
		return dto.CourseStudentsResponse{}, err
	}
	if assigned == nil {
		assigned = []uint{}
	}

	return dto.CourseStudentsResponse{
		Students:           dto.NewUserLiteSlice(students),
		AssignedStudentIDs: assigned,
	}, nil
}

func (s *courseService) findCourse(ctx context.Context, id uint) (models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func pickSection(requested string, taken []string) (string, bool) {
	used := make(map[string]struct{}, len(taken))
	for _, section := range taken {
		used[strings.ToUpper(section)] = struct{}{}
	}

	if requested == "" {
		requested = defaultSection
	}
	if _, busy := used[requested]; !busy {
		return requested, true
	}

	for _, letter := range sectionLetters {
		candidate := string(letter)
		if _, busy := used[candidate]; !busy {
			return candidate, true
		}
	}
	return "", false
}
