package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/campus-api/internal/grading"
)

// Submission is a student's graded attempt at an assignment. Score and
// accuracy are written once on creation.
type Submission struct {
	ID                  uint                                      `gorm:"primaryKey" json:"id"`
	AssignmentID        uint                                      `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID           uint                                      `gorm:"not null;uniqueIndex:idx_submission_assignment_student;index" json:"student_id"`
	Answers             datatypes.JSONSlice[grading.GradedAnswer] `json:"answers"`
	Score               float64                                   `gorm:"not null;default:0" json:"score"`
	Accuracy            float64                                   `gorm:"not null;default:0" json:"accuracy"`
	Status              string                                    `gorm:"size:16;not null" json:"status"`
	TabSwitches         int                                       `gorm:"not null;default:0" json:"tab_switches"`
	TabSwitchTimestamps datatypes.JSONSlice[time.Time]            `json:"tab_switch_timestamps"`
	TotalTimeTaken      int                                       `gorm:"not null;default:0" json:"total_time_taken"`
	StartedAt           *time.Time                                `json:"started_at"`
	SubmittedAt         time.Time                                 `gorm:"not null" json:"submitted_at"`
	Student             User                                      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	CreatedAt           time.Time                                 `json:"created_at"`
}

// IsLate reports whether the submission arrived after the deadline.
func (s Submission) IsLate() bool {
	return s.Status == string(grading.StatusLate)
}
