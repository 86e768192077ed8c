package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/repository"
)

func TestSeedServiceIsIdempotent(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSeedService(repository.NewUserRepository(db), repository.NewCourseRepository(db), testLogger())
	ctx := context.Background()

	first, err := svc.Seed(ctx, DemoCatalog())
	require.NoError(t, err)
	require.Equal(t, SeedReport{TeachersCreated: 5, CoursesCreated: 10}, first)

	second, err := svc.Seed(ctx, DemoCatalog())
	require.NoError(t, err)
	require.Equal(t, SeedReport{TeachersExisted: 5, CoursesExisted: 10}, second)

	var teacher models.User
	require.NoError(t, db.Where("email = ?", "johnson@university.edu").First(&teacher).Error)
	require.Equal(t, models.RoleTeacher, teacher.Role)
	require.True(t, teacher.CheckPassword("teacher123"))

	var taught int64
	require.NoError(t, db.Model(&models.Course{}).Where("teacher_id = ?", teacher.ID).Count(&taught).Error)
	require.EqualValues(t, 2, taught)
}

func TestSeedServiceRejectsDanglingTeacher(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSeedService(repository.NewUserRepository(db), repository.NewCourseRepository(db), testLogger())

	_, err := svc.Seed(context.Background(), SeedCatalog{
		Courses: []SeedCourse{{Name: "Orphan", Code: "CS999", TeacherIndex: 0}},
	})
	require.ErrorIs(t, err, ErrSeedCatalogInvalid)
}
