package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/config"
	"github.com/noah-isme/campus-api/internal/dto"
	"github.com/noah-isme/campus-api/internal/handler"
	"github.com/noah-isme/campus-api/internal/middleware"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/repository"
	"github.com/noah-isme/campus-api/internal/router"
	"github.com/noah-isme/campus-api/internal/service"
)

const testJWTSecret = "handler-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memoryStorage) Upload(_ context.Context, name string, reader io.Reader) (string, string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[name] = data
	return "https://cdn.example.com/" + name, "campus/" + name, nil
}

type testStack struct {
	app           *fiber.App
	db            *gorm.DB
	notifications service.NotificationService
	storage       *memoryStorage
}

// newTestStack wires the full HTTP surface against an in-memory database.
func newTestStack(t *testing.T) *testStack {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	assignments := repository.NewTeacherAssignmentRepository(db)

	activity := service.NewActivityService(repository.NewActivityLogRepository(db), validate, logger)
	events := service.NewEventPublisher(nil, logger)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, validate, logger)

	authService := service.NewAuthService(users, validate, testJWTSecret, time.Hour, logger)
	courseService := service.NewCourseService(courses, assignments, validate, activity, logger)
	scheduleService := service.NewScheduleService(service.ScheduleDependencies{
		Assignments: assignments,
		Courses:     courses,
		Users:       users,
		Validator:   validate,
		Events:      events,
		Notifier:    notifications,
		Activity:    activity,
	}, logger)
	noteService := service.NewNoteService(repository.NewNoteRepository(db), courses, assignments, validate, notifications, activity, logger)
	quizService := service.NewQuizService(service.QuizDependencies{
		Assignments: repository.NewAssignmentRepository(db),
		Submissions: repository.NewSubmissionRepository(db),
		Courses:     courses,
		Validator:   validate,
		Events:      events,
		Notifier:    notifications,
		Activity:    activity,
	}, logger)
	storage := &memoryStorage{}
	uploadService := service.NewUploadService(storage, repository.NewUploadRepository(db), 1024*1024, logger)

	cfg := config.Config{AppName: "campus-api-test", AppEnv: "test", RateLimitMax: 100, RateLimitWindow: time.Minute}

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		CourseHandler:       handler.NewCourseHandler(courseService, logger),
		ScheduleHandler:     handler.NewScheduleHandler(scheduleService, logger),
		NoteHandler:         handler.NewNoteHandler(noteService, logger),
		QuizHandler:         handler.NewQuizHandler(quizService, logger),
		UploadHandler:       handler.NewUploadHandler(uploadService, logger),
		NotificationHandler: handler.NewNotificationHandler(notifications, logger, time.Second),
		ActivityHandler:     handler.NewActivityHandler(activity, logger),
		HealthProbes: map[string]handler.HealthProbe{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
		JWTMiddleware: middleware.JWTProtected(testJWTSecret),
	})

	return &testStack{app: app, db: db, notifications: notifications, storage: storage}
}

// registerUser creates an account through the API and returns its token.
func (s *testStack) registerUser(t *testing.T, username, role string) (string, dto.UserResponse) {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Username: username,
		Email:    username + "@campus.test",
		Password: "secret123",
		Role:     role,
		Name:     username,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var auth dto.AuthResponse
	decodeData(t, resp, &auth)
	require.NotEmpty(t, auth.Token)
	return auth.Token, auth.User
}

func (s *testStack) createCourse(t *testing.T, token, code string) dto.CourseResponse {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/v1/courses", token, dto.CourseCreateRequest{
		Name:        code + " fundamentals",
		Code:        code,
		Description: "introductory course",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var course dto.CourseResponse
	decodeData(t, resp, &course)
	return course
}

func (s *testStack) enroll(t *testing.T, token string, courseID uint) {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/v1/courses/enroll", token, dto.EnrollRequest{CourseID: courseID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func (s *testStack) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target), fmt.Sprintf("body: %s", data))
}

func decodeData(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	var body envelope
	decodeResponse(t, resp, &body)
	require.True(t, body.Success, body.Message)
	require.NoError(t, json.Unmarshal(body.Data, target))
}
