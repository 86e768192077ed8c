package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-api/internal/config"
	"github.com/noah-isme/campus-api/internal/database"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/repository"
	"github.com/noah-isme/campus-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "campus-seed").Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	seeder := service.NewSeedService(repository.NewUserRepository(db), repository.NewCourseRepository(db), logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	report, err := seeder.Seed(ctx, service.DemoCatalog())
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	logger.Info().
		Int("teachers_created", report.TeachersCreated).
		Int("teachers_existing", report.TeachersExisted).
		Int("courses_created", report.CoursesCreated).
		Int("courses_existing", report.CoursesExisted).
		Msg("seed complete")
}
