package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/campus-api/internal/dto"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/observability"
	"github.com/noah-isme/campus-api/internal/repository"
	"github.com/noah-isme/campus-api/internal/timetable"
)

var (
	// ErrAlreadyAssigned indicates the teacher already teaches this student in the course.
	ErrAlreadyAssigned = errors.New("student already assigned to this teacher for this course")
	// ErrStudentNotFound indicates the target user is missing or not a student.
	ErrStudentNotFound = errors.New("student not found")
	// ErrScheduleNotFound indicates there is no assignment to remove.
	ErrScheduleNotFound = errors.New("assignment not found")
	// ErrScheduleConflict indicates concurrent bookings kept taking the chosen slot.
	ErrScheduleConflict = errors.New("student schedule changed, please retry")
)

const allocationAttempts = 3

// ScheduleService pairs teachers with students on the weekly grid.
type ScheduleService interface {
	Assign(ctx context.Context, teacherID uint, payload dto.AssignStudentRequest) (dto.TeacherAssignmentResponse, error)
	Unassign(ctx context.Context, teacherID uint, payload dto.AssignStudentRequest) error
	Timetable(ctx context.Context, studentID uint) ([]dto.TimetableEntry, error)
}

type scheduleService struct {
	assignments repository.TeacherAssignmentRepository
	courses     repository.CourseRepository
	users       repository.UserRepository
	validator   *validator.Validate
	cache       *redis.Client
	cacheTTL    time.Duration
	events      EventPublisher
	notifier    Notifier
	activity    ActivityRecorder
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// ScheduleDependencies groups the collaborators of the schedule service.
type ScheduleDependencies struct {
	Assignments repository.TeacherAssignmentRepository
	Courses     repository.CourseRepository
	Users       repository.UserRepository
	Validator   *validator.Validate
	Cache       *redis.Client
	CacheTTL    time.Duration
	Events      EventPublisher
	Notifier    Notifier
	Activity    ActivityRecorder
}

// NewScheduleService constructs the schedule service. Cache, events, notifier
// and activity are optional.
func NewScheduleService(deps ScheduleDependencies, logger zerolog.Logger) ScheduleService {
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &scheduleService{
		assignments: deps.Assignments,
		courses:     deps.Courses,
		users:       deps.Users,
		validator:   deps.Validator,
		cache:       deps.Cache,
		cacheTTL:    ttl,
		events:      deps.Events,
		notifier:    deps.Notifier,
		activity:    deps.Activity,
		logger:      logger.With().Str("component", "schedule_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/campus-api/internal/service/schedule"),
	}
}

// Assign books the first free weekly slot of the student for the teacher.
func (s *scheduleService) Assign(ctx context.Context, teacherID uint, payload dto.AssignStudentRequest) (dto.TeacherAssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeacherAssignmentResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "schedule.assign", trace.WithAttributes(
		attribute.Int("schedule.teacher_id", int(teacherID)),
		attribute.Int("schedule.student_id", int(payload.StudentID)),
		attribute.Int("schedule.course_id", int(payload.CourseID)),
	))
	defer span.End()

	student, err := s.users.FindByID(ctx, payload.StudentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.TeacherAssignmentResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		return dto.TeacherAssignmentResponse{}, err
	}
	if student.Role != models.RoleStudent {
		return dto.TeacherAssignmentResponse{}, ErrStudentNotFound
	}

	course, err := s.courses.FindByID(ctx, payload.CourseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.TeacherAssignmentResponse{}, ErrCourseNotFound
		}
		span.RecordError(err)
		return dto.TeacherAssignmentResponse{}, err
	}

	exists, err := s.assignments.Exists(ctx, teacherID, student.ID, course.ID)
	if err != nil {
		span.RecordError(err)
		return dto.TeacherAssignmentResponse{}, err
	}
	if exists {
		observability.SlotAllocations().WithLabelValues("duplicate").Inc()
		return dto.TeacherAssignmentResponse{}, ErrAlreadyAssigned
	}

	model, err := s.allocate(ctx, teacherID, student.ID, course.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.TeacherAssignmentResponse{}, err
	}

	observability.SlotAllocations().WithLabelValues("allocated").Inc()
	span.SetAttributes(
		attribute.String("schedule.day_of_week", model.DayOfWeek),
		attribute.String("schedule.time_slot", model.TimeSlot),
	)

	s.invalidate(ctx, student.ID)

	s.logger.Info().
		Uint("teacher_id", teacherID).
		Uint("student_id", student.ID).
		Uint("course_id", course.ID).
		Str("day_of_week", model.DayOfWeek).
		Str("time_slot", model.TimeSlot).
		Msg("student assigned")

	if s.events != nil {
		s.events.Publish(ctx, DomainEvent{
			Name:    "teacher.assigned",
			ActorID: teacherID,
			Payload: map[string]any{
				"assignment_id": model.ID,
				"student_id":    student.ID,
				"course_id":     course.ID,
				"day_of_week":   model.DayOfWeek,
				"time_slot":     model.TimeSlot,
			},
		})
	}

	if s.notifier != nil {
		message := fmt.Sprintf("You have a new %s session on %s, %s", course.Name, model.DayOfWeek, model.TimeSlot)
		if _, err := s.notifier.Notify(ctx, student.ID, NotificationSchedule, message); err != nil {
			s.logger.Warn().Err(err).Uint("student_id", student.ID).Msg("failed to notify student")
		}
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    teacherID,
		ActorRole:  models.RoleTeacher,
		Action:     ActionStudentAssigned,
		EntityType: "teacher_assignment",
		EntityID:   uintPtr(model.ID),
		Metadata: map[string]interface{}{
			"student_id":  student.ID,
			"course_id":   course.ID,
			"day_of_week": model.DayOfWeek,
			"time_slot":   model.TimeSlot,
		},
	})

	return dto.NewTeacherAssignmentResponse(model), nil
}

// allocate runs the slot allocator against the student's current schedule and
// persists the result. A unique violation on the student's slot means another
// booking won the race, so allocation is retried on fresh data.
func (s *scheduleService) allocate(ctx context.Context, teacherID, studentID, courseID uint) (models.TeacherAssignment, error) {
	for attempt := 0; attempt < allocationAttempts; attempt++ {
		existing, err := s.assignments.ListByStudent(ctx, studentID)
		if err != nil {
			return models.TeacherAssignment{}, err
		}

		occupied := make([]timetable.Slot, 0, len(existing))
		for _, assignment := range existing {
			occupied = append(occupied, assignment.Slot())
		}

		slot, err := timetable.Allocate(occupied)
		if err != nil {
			observability.SlotAllocations().WithLabelValues("full").Inc()
			return models.TeacherAssignment{}, err
		}

		model := models.TeacherAssignment{
			TeacherID: teacherID,
			StudentID: studentID,
			CourseID:  courseID,
			DayOfWeek: slot.Day,
			TimeSlot:  slot.TimeSlot,
		}

		err = s.assignments.Create(ctx, &model)
		if err == nil {
			return model, nil
		}
		if !repository.IsDuplicate(err) {
			return models.TeacherAssignment{}, err
		}

		exists, checkErr := s.assignments.Exists(ctx, teacherID, studentID, courseID)
		if checkErr != nil {
			return models.TeacherAssignment{}, checkErr
		}
		if exists {
			observability.SlotAllocations().WithLabelValues("duplicate").Inc()
			return models.TeacherAssignment{}, ErrAlreadyAssigned
		}

		s.logger.Debug().Uint("student_id", studentID).Int("attempt", attempt+1).Msg("slot taken concurrently, retrying")
	}

	observability.SlotAllocations().WithLabelValues("conflict").Inc()
	return models.TeacherAssignment{}, ErrScheduleConflict
}

func (s *scheduleService) Unassign(ctx context.Context, teacherID uint, payload dto.AssignStudentRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	removed, err := s.assignments.Delete(ctx, teacherID, payload.StudentID, payload.CourseID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrScheduleNotFound
	}

	s.invalidate(ctx, payload.StudentID)

	if s.events != nil {
		s.events.Publish(ctx, DomainEvent{
			Name:    "teacher.unassigned",
			ActorID: teacherID,
			Payload: map[string]any{"student_id": payload.StudentID, "course_id": payload.CourseID},
		})
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    teacherID,
		ActorRole:  models.RoleTeacher,
		Action:     ActionStudentUnassigned,
		EntityType: "teacher_assignment",
		Metadata:   map[string]interface{}{"student_id": payload.StudentID, "course_id": payload.CourseID},
	})

	s.logger.Info().Uint("teacher_id", teacherID).Uint("student_id", payload.StudentID).Uint("course_id", payload.CourseID).Msg("student unassigned")
	return nil
}

// Timetable lists the student's sessions, newest assignment first.
func (s *scheduleService) Timetable(ctx context.Context, studentID uint) ([]dto.TimetableEntry, error) {
	cacheKey := timetableCacheKey(studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var entries []dto.TimetableEntry
			if unmarshalErr := json.Unmarshal([]byte(cached), &entries); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("timetable cache hit")
				return entries, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read timetable cache")
		}
	}

	assignments, err := s.assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	courseIDs := make([]uint, 0, len(assignments))
	seen := make(map[uint]struct{}, len(assignments))
	for _, assignment := range assignments {
		if _, ok := seen[assignment.CourseID]; ok {
			continue
		}
		seen[assignment.CourseID] = struct{}{}
		courseIDs = append(courseIDs, assignment.CourseID)
	}

	courses, err := s.courses.FindByIDs(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Course, len(courses))
	for _, course := range courses {
		byID[course.ID] = course
	}

	entries := make([]dto.TimetableEntry, 0, len(assignments))
	for _, assignment := range assignments {
		var course *models.Course
		if found, ok := byID[assignment.CourseID]; ok {
			course = &found
		}
		entries = append(entries, dto.NewTimetableEntry(assignment, course))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store timetable cache")
			}
		}
	}

	return entries, nil
}

func (s *scheduleService) invalidate(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, timetableCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate timetable cache")
	}
}

func timetableCacheKey(studentID uint) string {
	return fmt.Sprintf("timetable:student:%d", studentID)
}
