package dto

import (
	"time"

	"github.com/noah-isme/campus-api/internal/models"
)

// CourseCreateRequest is the payload for creating a course section.
type CourseCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Code        string `json:"code" validate:"required,min=2,max=32"`
	Description string `json:"description" validate:"required"`
	Section     string `json:"section" validate:"omitempty,len=1,uppercase"`
}

// EnrollRequest selects the course to join.
type EnrollRequest struct {
	CourseID uint `json:"course_id" validate:"required,gt=0"`
}

// CourseResponse is the public representation of a course.
type CourseResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Section     string    `json:"section"`
	Description string    `json:"description"`
	Teacher     *UserLite `json:"teacher,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CourseLite summarizes a course inside other resources.
type CourseLite struct {
	ID          uint   `json:"id,omitempty"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Section     string `json:"section,omitempty"`
	Description string `json:"description"`
}

// CourseStudentsResponse lists the enrolled students of a course together
// with the students the calling teacher is assigned to.
type CourseStudentsResponse struct {
	Students           []UserLite `json:"students"`
	AssignedStudentIDs []uint     `json:"assigned_student_ids"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	response := CourseResponse{
		ID:          model.ID,
		Name:        model.Name,
		Code:        model.Code,
		Section:     model.Section,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
	}
	if model.Teacher != nil && model.Teacher.ID != 0 {
		teacher := NewUserLite(*model.Teacher)
		response.Teacher = &teacher
	}
	return response
}

// NewCourseResponseSlice converts a slice of courses.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
