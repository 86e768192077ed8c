package models

import "time"

// Course is a section of a subject taught by a teacher.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Code        string    `gorm:"size:32;not null;uniqueIndex:idx_course_code_section" json:"code"`
	Section     string    `gorm:"size:8;not null;default:A;uniqueIndex:idx_course_code_section" json:"section"`
	Description string    `gorm:"type:text" json:"description"`
	TeacherID   *uint     `gorm:"index" json:"teacher_id"`
	Teacher     *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"teacher,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_course;index" json:"course_id"`
	Student   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Course    Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
	CreatedAt time.Time `json:"created_at"`
}
