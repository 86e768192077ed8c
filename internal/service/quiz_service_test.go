package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/dto"
	"github.com/noah-isme/campus-api/internal/grading"
	"github.com/noah-isme/campus-api/internal/insights"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/repository"
)

type stubCoach struct {
	tips []string
	err  error
}

func (c stubCoach) CoachTips(ctx context.Context, attempt insights.Attempt, report insights.Report) ([]string, error) {
	return c.tips, c.err
}

type quizFixture struct {
	db       *gorm.DB
	svc      QuizService
	notifier *recordingNotifier
	events   *recordingPublisher
	activity *stubActivityRecorder
	teacher  models.User
	student  models.User
	course   models.Course
}

func newQuizFixture(t *testing.T, coach StudyCoach) quizFixture {
	t.Helper()
	db := setupServiceDB(t)
	f := quizFixture{
		db:       db,
		notifier: &recordingNotifier{},
		events:   &recordingPublisher{},
		activity: &stubActivityRecorder{},
	}
	f.svc = NewQuizService(QuizDependencies{
		Assignments: repository.NewAssignmentRepository(db),
		Submissions: repository.NewSubmissionRepository(db),
		Courses:     repository.NewCourseRepository(db),
		Validator:   testValidator(),
		Events:      f.events,
		Notifier:    f.notifier,
		Activity:    f.activity,
		Coach:       coach,
	}, testLogger())
	f.teacher = seedUser(t, db, "teacher", models.RoleTeacher)
	f.student = seedUser(t, db, "student", models.RoleStudent)
	f.course = seedCourse(t, db, "CS101", f.teacher.ID)
	enroll(t, db, f.student.ID, f.course.ID)
	return f
}

func sampleQuizRequest(courseID uint, deadline time.Time) dto.AssignmentCreateRequest {
	return dto.AssignmentCreateRequest{
		Title:       "Basics",
		Description: "Warm-up quiz",
		CourseID:    courseID,
		Deadline:    deadline.UTC().Format(time.RFC3339),
		Questions: []dto.QuestionInput{
			{QuestionText: "2+2", QuestionType: "mcq", Options: []string{"3", "4"}, CorrectAnswer: "4", Explanation: "Arithmetic"},
			{QuestionText: "Go has generics", QuestionType: "true-false", CorrectAnswer: "true"},
			{QuestionText: "Match", QuestionType: "match-column", MatchPairs: []dto.MatchPairInput{{Left: "A", Right: "1"}, {Left: "B", Right: "2"}}},
			{QuestionText: "Explain interfaces", QuestionType: "descriptive"},
		},
	}
}

func TestQuizServiceCreateAppliesDefaults(t *testing.T) {
	f := newQuizFixture(t, nil)

	created, err := f.svc.Create(context.Background(), f.teacher.ID, sampleQuizRequest(f.course.ID, time.Now().Add(24*time.Hour)))
	require.NoError(t, err)
	require.Equal(t, models.AssignmentTypeQuiz, created.Type)
	require.Equal(t, 60, created.TotalTime)
	require.Len(t, created.Questions, 4)
	for _, question := range created.Questions {
		require.Equal(t, 1, question.Points)
	}
	require.Equal(t, []string{"assignment.created"}, f.events.names())
	require.Equal(t, []string{ActionAssignmentCreated}, f.activity.actions())
}

func TestQuizServiceCreateRejectsInvalidInput(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.teacher.ID, sampleQuizRequest(f.course.ID, time.Now().Add(-time.Hour)))
	require.ErrorIs(t, err, ErrInvalidDeadline)

	payload := sampleQuizRequest(f.course.ID, time.Now().Add(time.Hour))
	payload.Questions[0].CorrectAnswer = "5"
	_, err = f.svc.Create(ctx, f.teacher.ID, payload)
	require.ErrorIs(t, err, ErrInvalidQuestion)

	payload = sampleQuizRequest(f.course.ID, time.Now().Add(time.Hour))
	payload.Questions[1].CorrectAnswer = "True"
	_, err = f.svc.Create(ctx, f.teacher.ID, payload)
	require.ErrorIs(t, err, ErrInvalidQuestion)

	payload = sampleQuizRequest(f.course.ID, time.Now().Add(time.Hour))
	payload.Questions[2].MatchPairs = nil
	_, err = f.svc.Create(ctx, f.teacher.ID, payload)
	require.ErrorIs(t, err, ErrInvalidQuestion)

	_, err = f.svc.Create(ctx, f.teacher.ID, sampleQuizRequest(999, time.Now().Add(time.Hour)))
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestQuizServiceSubmitGradesOnce(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.teacher.ID, sampleQuizRequest(f.course.ID, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	attempt, err := f.svc.GetForAttempt(ctx, f.student.ID, created.ID)
	require.NoError(t, err)
	require.Len(t, attempt.Questions, 4)
	require.Equal(t, []string{"A", "B"}, attempt.Questions[2].MatchLeft)

	result, err := f.svc.Submit(ctx, f.student.ID, created.ID, dto.SubmitRequest{
		Answers: []dto.AnswerInput{
			{QuestionIndex: 0, Answer: "4", TimeTaken: 3},
			{QuestionIndex: 1, Answer: "false", TimeTaken: 2},
			{QuestionIndex: 2, Answer: `[{"left":"A","right":"1"},{"left":"B","right":"2"}]`},
			{QuestionIndex: 3, Answer: "They are implicit"},
		},
		TotalTimeTaken: 120,
		TabSwitches:    1,
	})
	require.NoError(t, err)
	require.InDelta(t, 200.0/3.0, result.Score, 1e-9)
	require.Equal(t, result.Score, result.Accuracy)
	require.Equal(t, string(grading.StatusOnTime), result.Status)
	require.Len(t, result.Results, 4)
	require.Equal(t, "Arithmetic", result.Results[0].Explanation)
	require.Equal(t, dto.DefaultExplanation, result.Results[1].Explanation)
	require.False(t, result.Results[3].IsCorrect)

	_, err = f.svc.Submit(ctx, f.student.ID, created.ID, dto.SubmitRequest{Answers: []dto.AnswerInput{{QuestionIndex: 0, Answer: "4"}}})
	require.ErrorIs(t, err, ErrAlreadySubmitted)

	_, err = f.svc.GetForAttempt(ctx, f.student.ID, created.ID)
	require.ErrorIs(t, err, ErrAlreadySubmitted)

	var stored models.Submission
	require.NoError(t, f.db.First(&stored).Error)
	require.InDelta(t, 200.0/3.0, stored.Score, 1e-9)
	require.Len(t, stored.Answers, 4)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	require.Equal(t, f.teacher.ID, sent[0].UserID)
	require.Contains(t, f.events.names(), "submission.recorded")
}

func TestQuizServiceSubmitAfterDeadlineIsLate(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.teacher.ID, sampleQuizRequest(f.course.ID, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	f.svc.(*quizService).now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	result, err := f.svc.Submit(ctx, f.student.ID, created.ID, dto.SubmitRequest{Answers: []dto.AnswerInput{{QuestionIndex: 0, Answer: "4"}}})
	require.NoError(t, err)
	require.Equal(t, string(grading.StatusLate), result.Status)
}

func TestQuizServiceSubmitUnknownAssignment(t *testing.T) {
	f := newQuizFixture(t, nil)

	_, err := f.svc.Submit(context.Background(), f.student.ID, 999, dto.SubmitRequest{Answers: []dto.AnswerInput{{QuestionIndex: 0, Answer: "4"}}})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestQuizServiceStudentListRequiresEnrollment(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()
	outsider := seedUser(t, f.db, "outsider", models.RoleStudent)

	created, err := f.svc.Create(ctx, f.teacher.ID, sampleQuizRequest(f.course.ID, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	list, err := f.svc.StudentList(ctx, outsider.ID, f.course.ID)
	require.NoError(t, err)
	require.Empty(t, list)

	list, err = f.svc.StudentList(ctx, f.student.ID, f.course.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].Submitted)

	_, err = f.svc.Submit(ctx, f.student.ID, created.ID, dto.SubmitRequest{Answers: []dto.AnswerInput{{QuestionIndex: 0, Answer: "4"}}})
	require.NoError(t, err)

	list, err = f.svc.StudentList(ctx, f.student.ID, f.course.ID)
	require.NoError(t, err)
	require.True(t, list[0].Submitted)
	require.NotNil(t, list[0].Submission)
}

func TestQuizServiceTeacherOwnership(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()
	other := seedUser(t, f.db, "other", models.RoleTeacher)

	created, err := f.svc.Create(ctx, f.teacher.ID, sampleQuizRequest(f.course.ID, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	_, err = f.svc.GetForTeacher(ctx, other.ID, created.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
	_, err = f.svc.Submissions(ctx, other.ID, created.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
	require.ErrorIs(t, f.svc.Delete(ctx, other.ID, created.ID), ErrAssignmentNotFound)

	teacherList, err := f.svc.TeacherList(ctx, f.teacher.ID, f.course.ID)
	require.NoError(t, err)
	require.Len(t, teacherList, 1)
}

func TestQuizServiceExportAndDelete(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.teacher.ID, sampleQuizRequest(f.course.ID, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.student.ID, created.ID, dto.SubmitRequest{Answers: []dto.AnswerInput{{QuestionIndex: 0, Answer: "4"}}})
	require.NoError(t, err)

	submissions, err := f.svc.Submissions(ctx, f.teacher.ID, created.ID)
	require.NoError(t, err)
	require.Len(t, submissions.Submissions, 1)
	require.Equal(t, f.student.ID, submissions.Submissions[0].Student.ID)

	export, err := f.svc.ExportSubmissions(ctx, f.teacher.ID, created.ID)
	require.NoError(t, err)
	require.Equal(t, gradebookContentType, export.ContentType)
	require.Contains(t, export.FileName, "basics")

	book, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Submissions")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Student", rows[0][0])
	require.Equal(t, "student", rows[1][0])

	require.NoError(t, f.svc.Delete(ctx, f.teacher.ID, created.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
	require.Contains(t, f.activity.actions(), ActionAssignmentDeleted)
}

func TestQuizServiceInsights(t *testing.T) {
	f := newQuizFixture(t, stubCoach{tips: []string{"Review loops"}})
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.teacher.ID, sampleQuizRequest(f.course.ID, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	_, err = f.svc.Insights(ctx, f.student.ID, created.ID)
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	_, err = f.svc.Submit(ctx, f.student.ID, created.ID, dto.SubmitRequest{Answers: []dto.AnswerInput{{QuestionIndex: 0, Answer: "3"}}})
	require.NoError(t, err)

	report, err := f.svc.Insights(ctx, f.student.ID, created.ID)
	require.NoError(t, err)
	require.Zero(t, report.Score)
	require.NotEmpty(t, report.Suggestions)
	require.Len(t, report.StudyPlan.Tasks, 7)
	require.Equal(t, []string{"Review loops"}, report.CoachTips)
}

func TestQuizServiceInsightsSurvivesCoachFailure(t *testing.T) {
	f := newQuizFixture(t, stubCoach{err: errors.New("upstream down")})
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.teacher.ID, sampleQuizRequest(f.course.ID, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.student.ID, created.ID, dto.SubmitRequest{Answers: []dto.AnswerInput{{QuestionIndex: 0, Answer: "4"}}})
	require.NoError(t, err)

	report, err := f.svc.Insights(ctx, f.student.ID, created.ID)
	require.NoError(t, err)
	require.Empty(t, report.CoachTips)
}

// racingSubmissions hides an earlier submission from the pre-check while the
// insert hits the unique index.
type racingSubmissions struct {
	repository.SubmissionRepository
	creates int
}

func (r *racingSubmissions) Exists(ctx context.Context, assignmentID, studentID uint) (bool, error) {
	return false, nil
}

func (r *racingSubmissions) Create(ctx context.Context, submission *models.Submission) error {
	r.creates++
	return gorm.ErrDuplicatedKey
}

func TestQuizServiceSubmitLostRaceIsAlreadySubmitted(t *testing.T) {
	f := newQuizFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.teacher.ID, sampleQuizRequest(f.course.ID, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	racing := &racingSubmissions{SubmissionRepository: repository.NewSubmissionRepository(f.db)}
	svc := NewQuizService(QuizDependencies{
		Assignments: repository.NewAssignmentRepository(f.db),
		Submissions: racing,
		Courses:     repository.NewCourseRepository(f.db),
		Validator:   testValidator(),
		Events:      f.events,
		Notifier:    f.notifier,
		Activity:    f.activity,
	}, testLogger())

	_, err = svc.Submit(ctx, f.student.ID, created.ID, dto.SubmitRequest{
		Answers: []dto.AnswerInput{{QuestionIndex: 0, Answer: "4"}},
	})
	require.ErrorIs(t, err, ErrAlreadySubmitted)
	require.Equal(t, 1, racing.creates)
	require.NotContains(t, f.events.names(), "submission.recorded")
}
