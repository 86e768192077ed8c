package dto

import (
	"time"

	"github.com/noah-isme/campus-api/internal/models"
)

// UnknownCourse stands in for a course that no longer exists.
var UnknownCourse = CourseLite{Name: "Unknown Course", Code: "N/A"}

// AssignStudentRequest asks the calling teacher to take on a student.
type AssignStudentRequest struct {
	StudentID uint `json:"student_id" validate:"required,gt=0"`
	CourseID  uint `json:"course_id" validate:"required,gt=0"`
}

// TeacherAssignmentResponse is returned when a slot has been allocated.
type TeacherAssignmentResponse struct {
	ID        uint      `json:"id"`
	TeacherID uint      `json:"teacher_id"`
	StudentID uint      `json:"student_id"`
	CourseID  uint      `json:"course_id"`
	DayOfWeek string    `json:"day_of_week"`
	TimeSlot  string    `json:"time_slot"`
	CreatedAt time.Time `json:"created_at"`
}

// TimetableEntry is one row of a student's weekly timetable.
type TimetableEntry struct {
	ID        uint       `json:"id"`
	Teacher   UserLite   `json:"teacher"`
	Course    CourseLite `json:"course"`
	DayOfWeek string     `json:"day_of_week"`
	TimeSlot  string     `json:"time_slot"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewTeacherAssignmentResponse converts a model into a DTO.
func NewTeacherAssignmentResponse(model models.TeacherAssignment) TeacherAssignmentResponse {
	return TeacherAssignmentResponse{
		ID:        model.ID,
		TeacherID: model.TeacherID,
		StudentID: model.StudentID,
		CourseID:  model.CourseID,
		DayOfWeek: model.DayOfWeek,
		TimeSlot:  model.TimeSlot,
		CreatedAt: model.CreatedAt,
	}
}

// NewTimetableEntry combines an assignment with its course, if still present.
func NewTimetableEntry(model models.TeacherAssignment, course *models.Course) TimetableEntry {
	entry := TimetableEntry{
		ID:        model.ID,
		Teacher:   NewUserLite(model.Teacher),
		Course:    UnknownCourse,
		DayOfWeek: model.DayOfWeek,
		TimeSlot:  model.TimeSlot,
		CreatedAt: model.CreatedAt,
	}
	if course != nil {
		entry.Course = CourseLite{
			ID:          course.ID,
			Name:        course.Name,
			Code:        course.Code,
			Section:     course.Section,
			Description: course.Description,
		}
	}
	return entry
}
