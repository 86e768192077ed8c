package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-api/internal/config"
	"github.com/noah-isme/campus-api/internal/database"
	"github.com/noah-isme/campus-api/internal/handler"
	"github.com/noah-isme/campus-api/internal/middleware"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/repository"
	"github.com/noah-isme/campus-api/internal/router"
	"github.com/noah-isme/campus-api/internal/service"
	"github.com/noah-isme/campus-api/pkg/ai"
	cloud "github.com/noah-isme/campus-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis disabled: timetable cache and cross-node notifications are off")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var coach service.StudyCoach
	if cfg.OpenAIAPIKey != "" {
		openAICoach, err := ai.NewOpenAICoach(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("study coach disabled")
		} else {
			coach = openAICoach
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	teacherAssignmentRepo := repository.NewTeacherAssignmentRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, validate, logger)
	eventPublisher := service.NewEventPublisher(natsConn, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, "campus", natsConn, validate, logger)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.JWTTTL, logger)
	courseService := service.NewCourseService(courseRepo, teacherAssignmentRepo, validate, activityService, logger)
	scheduleService := service.NewScheduleService(service.ScheduleDependencies{
		Assignments: teacherAssignmentRepo,
		Courses:     courseRepo,
		Users:       userRepo,
		Validator:   validate,
		Cache:       redisClient,
		CacheTTL:    cfg.TimetableCacheTTL,
		Events:      eventPublisher,
		Notifier:    notificationService,
		Activity:    activityService,
	}, logger)
	noteService := service.NewNoteService(noteRepo, courseRepo, teacherAssignmentRepo, validate, notificationService, activityService, logger)
	quizService := service.NewQuizService(service.QuizDependencies{
		Assignments: assignmentRepo,
		Submissions: submissionRepo,
		Courses:     courseRepo,
		Validator:   validate,
		Events:      eventPublisher,
		Notifier:    notificationService,
		Activity:    activityService,
		Coach:       coach,
	}, logger)
	uploadService := service.NewUploadService(uploader, uploadRepo, cfg.UploadMaxBytes, logger)

	backgroundCtx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()
	notificationService.Start(backgroundCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.UploadMaxBytes) + 1024*1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		CourseHandler:       handler.NewCourseHandler(courseService, logger),
		ScheduleHandler:     handler.NewScheduleHandler(scheduleService, logger),
		NoteHandler:         handler.NewNoteHandler(noteService, logger),
		QuizHandler:         handler.NewQuizHandler(quizService, logger),
		UploadHandler:       handler.NewUploadHandler(uploadService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, 30*time.Second),
		ActivityHandler:     handler.NewActivityHandler(activityService, logger),
		HealthProbes:        healthProbes(db, redisClient, natsConn),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		LoginLimiter:        middleware.RateLimit("login", cfg.RateLimitMax, cfg.RateLimitWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("campus api started")

	waitForShutdown(app, cancelBackground)
}
