package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/models"
)

// TeacherAssignmentRepository persists teacher/student slot allocations.
type TeacherAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.TeacherAssignment) error
	Delete(ctx context.Context, teacherID, studentID, courseID uint) (int64, error)
	Exists(ctx context.Context, teacherID, studentID, courseID uint) (bool, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.TeacherAssignment, error)
	StudentIDsForTeacher(ctx context.Context, teacherID, courseID uint) ([]uint, error)
	TeacherIDsForStudent(ctx context.Context, studentID, courseID uint) ([]uint, error)
}

type teacherAssignmentRepository struct {
	db *gorm.DB
}

// NewTeacherAssignmentRepository constructs a GORM-backed repository.
func NewTeacherAssignmentRepository(db *gorm.DB) TeacherAssignmentRepository {
	return &teacherAssignmentRepository{db: db}
}

func (r *teacherAssignmentRepository) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	return r.db.WithContext(ctx).Omit("Teacher").Create(assignment).Error
}

func (r *teacherAssignmentRepository) Delete(ctx context.Context, teacherID, studentID, courseID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("teacher_id = ? AND student_id = ? AND course_id = ?", teacherID, studentID, courseID).
		Delete(&models.TeacherAssignment{})
	return result.RowsAffected, result.Error
}

func (r *teacherAssignmentRepository) Exists(ctx context.Context, teacherID, studentID, courseID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TeacherAssignment{}).
		Where("teacher_id = ? AND student_id = ? AND course_id = ?", teacherID, studentID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByStudent returns every assignment of the student across all courses,
// newest first.
func (r *teacherAssignmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.TeacherAssignment, error) {
	var assignments []models.TeacherAssignment
	if err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *teacherAssignmentRepository) StudentIDsForTeacher(ctx context.Context, teacherID, courseID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.TeacherAssignment{}).
		Where("teacher_id = ? AND course_id = ?", teacherID, courseID).
		Order("id ASC").
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *teacherAssignmentRepository) TeacherIDsForStudent(ctx context.Context, studentID, courseID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.TeacherAssignment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Pluck("teacher_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
