package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/campus-api/internal/grading"
)

const (
	AssignmentTypeQuiz        = "quiz"
	AssignmentTypeDescriptive = "descriptive"
)

// Assignment is a quiz or homework set for a course.
type Assignment struct {
	ID             uint                                  `gorm:"primaryKey" json:"id"`
	Title          string                                `gorm:"size:255;not null" json:"title"`
	Description    string                                `gorm:"type:text" json:"description"`
	CourseID       uint                                  `gorm:"not null;index" json:"course_id"`
	TeacherID      uint                                  `gorm:"not null;index" json:"teacher_id"`
	Type           string                                `gorm:"size:16;not null;default:quiz" json:"type"`
	Questions      datatypes.JSONSlice[grading.Question] `gorm:"not null" json:"questions"`
	Deadline       time.Time                             `gorm:"not null" json:"deadline"`
	TotalTime      int                                   `gorm:"not null;default:60" json:"total_time"`
	AllowTabSwitch bool                                  `gorm:"not null;default:false" json:"allow_tab_switch"`
	Attachments    datatypes.JSONSlice[Attachment]       `json:"attachments"`
	Course         Course                                `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Submissions    []Submission                          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt      time.Time                             `json:"created_at"`
	UpdatedAt      time.Time                             `json:"updated_at"`
}

// Quiz returns the grading view of the assignment.
func (a Assignment) Quiz() grading.Quiz {
	return grading.Quiz{Questions: a.Questions, Deadline: a.Deadline}
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.Deadline)
}
