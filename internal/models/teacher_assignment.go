package models

import (
	"time"

	"github.com/noah-isme/campus-api/internal/timetable"
)

// TeacherAssignment pins a teacher to a student for a course at a weekly slot.
// Rows are created and deleted, never updated.
type TeacherAssignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeacherID uint      `gorm:"not null;uniqueIndex:idx_teacher_student_course" json:"teacher_id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_teacher_student_course;uniqueIndex:idx_student_slot" json:"student_id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_teacher_student_course;index" json:"course_id"`
	DayOfWeek string    `gorm:"size:16;not null;uniqueIndex:idx_student_slot" json:"day_of_week"`
	TimeSlot  string    `gorm:"size:32;not null;uniqueIndex:idx_student_slot" json:"time_slot"`
	Teacher   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher"`
	CreatedAt time.Time `json:"created_at"`
}

// Slot returns the weekly grid cell occupied by the assignment.
func (a TeacherAssignment) Slot() timetable.Slot {
	return timetable.Slot{Day: a.DayOfWeek, TimeSlot: a.TimeSlot}
}
