package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/campus-api/internal/dto"
	"github.com/noah-isme/campus-api/internal/grading"
	"github.com/noah-isme/campus-api/internal/insights"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/observability"
	"github.com/noah-isme/campus-api/internal/repository"
)

var (
	// ErrAssignmentNotFound indicates the quiz does not exist or is not owned by the caller.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrAlreadySubmitted indicates the student already has a submission for the quiz.
	ErrAlreadySubmitted = errors.New("assignment already submitted")
	// ErrSubmissionNotFound indicates the student has not submitted the quiz yet.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrInvalidDeadline indicates the deadline is malformed or already in the past.
	ErrInvalidDeadline = errors.New("deadline must be a future RFC3339 timestamp")
	// ErrInvalidQuestion indicates a question is inconsistent with its type.
	ErrInvalidQuestion = errors.New("invalid question")
)

const defaultTotalTime = 60

// StudyCoach produces free-form study tips for a graded attempt.
type StudyCoach interface {
	CoachTips(ctx context.Context, attempt insights.Attempt, report insights.Report) ([]string, error)
}

// QuizService manages quizzes and their graded submissions.
type QuizService interface {
	Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	TeacherList(ctx context.Context, teacherID, courseID uint) ([]dto.AssignmentResponse, error)
	StudentList(ctx context.Context, studentID, courseID uint) ([]dto.StudentAssignmentResponse, error)
	GetForAttempt(ctx context.Context, studentID, assignmentID uint) (dto.AssignmentAttemptResponse, error)
	GetForTeacher(ctx context.Context, teacherID, assignmentID uint) (dto.AssignmentResponse, error)
	Submit(ctx context.Context, studentID, assignmentID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error)
	Submissions(ctx context.Context, teacherID, assignmentID uint) (dto.AssignmentSubmissionsResponse, error)
	ExportSubmissions(ctx context.Context, teacherID, assignmentID uint) (Export, error)
	Delete(ctx context.Context, teacherID, assignmentID uint) error
	Insights(ctx context.Context, studentID, assignmentID uint) (dto.InsightsResponse, error)
}

// QuizDependencies groups the collaborators of the quiz service.
type QuizDependencies struct {
	Assignments  repository.AssignmentRepository
	Submissions  repository.SubmissionRepository
	Courses      repository.CourseRepository
	Validator    *validator.Validate
	Events       EventPublisher
	Notifier     Notifier
	Activity     ActivityRecorder
	Coach        StudyCoach
	CoachTimeout time.Duration
}

type quizService struct {
	assignments  repository.AssignmentRepository
	submissions  repository.SubmissionRepository
	courses      repository.CourseRepository
	validator    *validator.Validate
	events       EventPublisher
	notifier     Notifier
	activity     ActivityRecorder
	coach        StudyCoach
	coachTimeout time.Duration
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// NewQuizService constructs the quiz service. Events, notifier, activity and
// coach are optional.
func NewQuizService(deps QuizDependencies, logger zerolog.Logger) QuizService {
	timeout := deps.CoachTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &quizService{
		assignments:  deps.Assignments,
		submissions:  deps.Submissions,
		courses:      deps.Courses,
		validator:    deps.Validator,
		events:       deps.Events,
		notifier:     deps.Notifier,
		activity:     deps.Activity,
		coach:        deps.Coach,
		coachTimeout: timeout,
		logger:       logger.With().Str("component", "quiz_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/campus-api/internal/service/quiz"),
		now:          time.Now,
	}
}

func (s *quizService) Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	deadline, err := payload.ParseDeadline()
	if err != nil || !deadline.After(s.now()) {
		return dto.AssignmentResponse{}, ErrInvalidDeadline
	}

	questions := payload.ToQuestions()
	for i, question := range questions {
		if err := validateQuestion(question); err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("question %d: %w", i, err)
		}
	}

	course, err := s.courses.FindByID(ctx, payload.CourseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.AssignmentResponse{}, ErrCourseNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	kind := payload.Type
	if kind == "" {
		kind = models.AssignmentTypeQuiz
	}
	totalTime := payload.TotalTime
	if totalTime <= 0 {
		totalTime = defaultTotalTime
	}

	assignment := models.Assignment{
		Title:          strings.TrimSpace(payload.Title),
		Description:    strings.TrimSpace(payload.Description),
		CourseID:       course.ID,
		TeacherID:      teacherID,
		Type:           kind,
		Questions:      datatypes.JSONSlice[grading.Question](questions),
		Deadline:       deadline.UTC(),
		TotalTime:      totalTime,
		AllowTabSwitch: payload.AllowTabSwitch,
		Attachments:    datatypes.JSONSlice[models.Attachment](dto.ToAttachments(payload.Attachments)),
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("course_id", course.ID).Int("questions", len(questions)).Msg("assignment created")

	if s.events != nil {
		s.events.Publish(ctx, DomainEvent{
			Name:    "assignment.created",
			ActorID: teacherID,
			Payload: map[string]any{"assignment_id": assignment.ID, "course_id": course.ID, "deadline": assignment.Deadline},
		})
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    teacherID,
		ActorRole:  models.RoleTeacher,
		Action:     ActionAssignmentCreated,
		EntityType: "assignment",
		EntityID:   uintPtr(assignment.ID),
		Metadata:   map[string]interface{}{"course_id": course.ID, "title": assignment.Title},
	})

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *quizService) TeacherList(ctx context.Context, teacherID, courseID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListByTeacher(ctx, teacherID, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

// StudentList returns the course's quizzes with the student's submissions.
// Students outside the course get an empty list.
func (s *quizService) StudentList(ctx context.Context, studentID, courseID uint) ([]dto.StudentAssignmentResponse, error) {
	enrolled, err := s.courses.IsEnrolled(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return []dto.StudentAssignmentResponse{}, nil
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.ID)
	}

	submissions, err := s.submissions.ListByStudent(ctx, studentID, ids)
	if err != nil {
		return nil, err
	}
	byAssignment := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = submission
	}

	responses := make([]dto.StudentAssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		item := dto.StudentAssignmentResponse{AssignmentAttemptResponse: dto.NewAssignmentAttemptResponse(assignment)}
		if submission, ok := byAssignment[assignment.ID]; ok {
			view := dto.NewSubmissionResponse(submission)
			item.Submitted = true
			item.Submission = &view
		}
		responses = append(responses, item)
	}

	return responses, nil
}

func (s *quizService) GetForAttempt(ctx context.Context, studentID, assignmentID uint) (dto.AssignmentAttemptResponse, error) {
	assignment, err := s.findAssignment(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentAttemptResponse{}, err
	}

	submitted, err := s.submissions.Exists(ctx, assignment.ID, studentID)
	if err != nil {
		return dto.AssignmentAttemptResponse{}, err
	}
	if submitted {
		return dto.AssignmentAttemptResponse{}, ErrAlreadySubmitted
	}

	return dto.NewAssignmentAttemptResponse(assignment), nil
}

func (s *quizService) GetForTeacher(ctx context.Context, teacherID, assignmentID uint) (dto.AssignmentResponse, error) {
	assignment, err := s.findOwned(ctx, assignmentID, teacherID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(assignment), nil
}

// Submit grades and stores the student's single attempt at the quiz.
func (s *quizService) Submit(ctx context.Context, studentID, assignmentID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "quiz.submit", trace.WithAttributes(
		attribute.Int("quiz.assignment_id", int(assignmentID)),
		attribute.Int("quiz.student_id", int(studentID)),
		attribute.Int("quiz.answers", len(payload.Answers)),
	))
	defer span.End()

	assignment, err := s.findAssignment(ctx, assignmentID)
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	submitted, err := s.submissions.Exists(ctx, assignment.ID, studentID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmitResponse{}, err
	}
	if submitted {
		observability.QuizSubmissions().WithLabelValues("duplicate").Inc()
		return dto.SubmitResponse{}, ErrAlreadySubmitted
	}

	now := s.now().UTC()
	quiz := assignment.Quiz()
	result := grading.Grade(quiz, payload.ToAnswers(), now)

	submission := models.Submission{
		AssignmentID:        assignment.ID,
		StudentID:           studentID,
		Answers:             datatypes.JSONSlice[grading.GradedAnswer](result.Answers),
		Score:               result.Score,
		Accuracy:            result.Accuracy,
		Status:              string(result.Status),
		TabSwitches:         payload.TabSwitches,
		TabSwitchTimestamps: datatypes.JSONSlice[time.Time](payload.TabSwitchTimestamps),
		TotalTimeTaken:      payload.TotalTimeTaken,
		StartedAt:           payload.StartedAt,
		SubmittedAt:         now,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		if repository.IsDuplicate(err) {
			observability.QuizSubmissions().WithLabelValues("duplicate").Inc()
			return dto.SubmitResponse{}, ErrAlreadySubmitted
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.SubmitResponse{}, err
	}

	observability.QuizSubmissions().WithLabelValues(submission.Status).Inc()
	observability.QuizScores().Observe(submission.Score)
	span.SetAttributes(
		attribute.Float64("quiz.score", submission.Score),
		attribute.String("quiz.status", submission.Status),
	)

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("student_id", studentID).
		Float64("score", submission.Score).
		Str("status", submission.Status).
		Msg("submission graded")

	if s.events != nil {
		s.events.Publish(ctx, DomainEvent{
			Name:    "submission.recorded",
			ActorID: studentID,
			Payload: map[string]any{
				"assignment_id": assignment.ID,
				"submission_id": submission.ID,
				"score":         submission.Score,
				"status":        submission.Status,
			},
		})
	}

	if s.notifier != nil {
		message := fmt.Sprintf("A new %s submission for %q scored %.0f%%", submission.Status, assignment.Title, submission.Score)
		if _, err := s.notifier.Notify(ctx, assignment.TeacherID, NotificationSubmission, message); err != nil {
			s.logger.Warn().Err(err).Uint("teacher_id", assignment.TeacherID).Msg("failed to notify teacher")
		}
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    studentID,
		ActorRole:  models.RoleStudent,
		Action:     ActionSubmissionRecorded,
		EntityType: "submission",
		EntityID:   uintPtr(submission.ID),
		Metadata:   map[string]interface{}{"assignment_id": assignment.ID, "status": submission.Status},
	})

	return dto.SubmitResponse{
		Submission: dto.NewSubmissionResponse(submission),
		Score:      submission.Score,
		Accuracy:   submission.Accuracy,
		Status:     submission.Status,
		Results:    dto.NewQuestionResults(quiz, result.Answers),
	}, nil
}

func (s *quizService) Submissions(ctx context.Context, teacherID, assignmentID uint) (dto.AssignmentSubmissionsResponse, error) {
	assignment, err := s.findOwned(ctx, assignmentID, teacherID)
	if err != nil {
		return dto.AssignmentSubmissionsResponse{}, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentSubmissionsResponse{}, err
	}

	return dto.AssignmentSubmissionsResponse{
		Assignment:  dto.NewAssignmentResponse(assignment),
		Submissions: dto.NewSubmissionResponseSlice(submissions),
	}, nil
}

func (s *quizService) ExportSubmissions(ctx context.Context, teacherID, assignmentID uint) (Export, error) {
	assignment, err := s.findOwned(ctx, assignmentID, teacherID)
	if err != nil {
		return Export{}, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignment.ID)
	if err != nil {
		return Export{}, err
	}

	return buildGradebook(assignment, submissions)
}

func (s *quizService) Delete(ctx context.Context, teacherID, assignmentID uint) error {
	if err := s.assignments.DeleteForTeacher(ctx, assignmentID, teacherID); err != nil {
		if repository.IsNotFound(err) {
			return ErrAssignmentNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    teacherID,
		ActorRole:  models.RoleTeacher,
		Action:     ActionAssignmentDeleted,
		EntityType: "assignment",
		EntityID:   uintPtr(assignmentID),
	})

	s.logger.Info().Uint("assignment_id", assignmentID).Msg("assignment deleted")
	return nil
}

// Insights derives study advice from the student's submission. Coach tips are
// best effort and omitted when the coach fails.
func (s *quizService) Insights(ctx context.Context, studentID, assignmentID uint) (dto.InsightsResponse, error) {
	assignment, err := s.findAssignment(ctx, assignmentID)
	if err != nil {
		return dto.InsightsResponse{}, err
	}

	submission, err := s.submissions.FindByAssignmentAndStudent(ctx, assignment.ID, studentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.InsightsResponse{}, ErrSubmissionNotFound
		}
		return dto.InsightsResponse{}, err
	}

	courseName := dto.UnknownCourse.Name
	if course, err := s.courses.FindByID(ctx, assignment.CourseID); err == nil {
		courseName = course.Name
	}

	attempt := insights.Attempt{
		CourseName:     courseName,
		Score:          submission.Score,
		Accuracy:       submission.Accuracy,
		TotalTimeTaken: submission.TotalTimeTaken,
		TotalTime:      assignment.TotalTime,
		TabSwitches:    submission.TabSwitches,
	}
	report := insights.Build(attempt)

	response := dto.InsightsResponse{
		AssignmentID: assignment.ID,
		Score:        submission.Score,
		Accuracy:     submission.Accuracy,
		Suggestions:  report.Suggestions,
		Motivation:   report.Motivation,
		StudyPlan:    report.StudyPlan,
	}

	if s.coach != nil {
		coachCtx, cancel := context.WithTimeout(ctx, s.coachTimeout)
		defer cancel()
		tips, err := s.coach.CoachTips(coachCtx, attempt, report)
		if err != nil {
			s.logger.Warn().Err(err).Uint("assignment_id", assignment.ID).Msg("study coach unavailable")
		} else {
			response.CoachTips = tips
		}
	}

	return response, nil
}

func (s *quizService) findAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *quizService) findOwned(ctx context.Context, id, teacherID uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetForTeacher(ctx, id, teacherID)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func validateQuestion(question grading.Question) error {
	switch question.Type {
	case grading.QuestionTypeMCQ:
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: multiple choice needs at least two options", ErrInvalidQuestion)
		}
		if !slices.Contains(question.Options, question.CorrectAnswer) {
			return fmt.Errorf("%w: correct answer must be one of the options", ErrInvalidQuestion)
		}
	case grading.QuestionTypeTrueFalse:
		if question.CorrectAnswer != "true" && question.CorrectAnswer != "false" {
			return fmt.Errorf("%w: correct answer must be \"true\" or \"false\"", ErrInvalidQuestion)
		}
	case grading.QuestionTypeMatchColumn:
		if len(question.MatchPairs) == 0 {
			return fmt.Errorf("%w: match-column needs at least one pair", ErrInvalidQuestion)
		}
	case grading.QuestionTypeDescriptive:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, question.Type)
	}
	return nil
}
