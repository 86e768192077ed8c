package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/models"
)

// CourseRepository persists courses and their enrollments.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id uint) (models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Course, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Course, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Course, error)
	SectionsForCode(ctx context.Context, code string) ([]string, error)
	FindByCodeSection(ctx context.Context, code, section string) (models.Course, error)

	Enroll(ctx context.Context, enrollment *models.Enrollment) error
	Unenroll(ctx context.Context, studentID, courseID uint) error
	IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error)
	EnrolledStudents(ctx context.Context, courseID uint) ([]models.User, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs a GORM-backed course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("Teacher").First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Order("code ASC, section ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("teacher_id = ?", teacherID).
		Order("code ASC, section ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.student_id = ?", studentID).
		Order("courses.code ASC, courses.section ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	var courses []models.Course
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) SectionsForCode(ctx context.Context, code string) ([]string, error) {
	var sections []string
	if err := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("code = ?", code).
		Pluck("section", &sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *courseRepository) FindByCodeSection(ctx context.Context, code, section string) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Where("code = ? AND section = ?", code, section).First(&course).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Omit("Student", "Course").Create(enrollment).Error
}

func (r *courseRepository) Unenroll(ctx context.Context, studentID, courseID uint) error {
	return r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Delete(&models.Enrollment{}).Error
}

func (r *courseRepository) IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *courseRepository) EnrolledStudents(ctx context.Context, courseID uint) ([]models.User, error) {
	var students []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.student_id = users.id").
		Where("enrollments.course_id = ?", courseID).
		Order("enrollments.created_at ASC").
		Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}
