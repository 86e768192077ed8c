package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attachment references an uploaded file.
type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
}

// Note is a course note written by a student or teacher. Teachers may share
// notes with the students assigned to them.
type Note struct {
	ID          uint                            `gorm:"primaryKey" json:"id"`
	Title       string                          `gorm:"size:255;not null" json:"title"`
	Content     string                          `gorm:"type:text;not null" json:"content"`
	AuthorID    uint                            `gorm:"not null;index" json:"author_id"`
	CourseID    uint                            `gorm:"not null;index" json:"course_id"`
	IsShared    bool                            `gorm:"not null;default:false" json:"is_shared"`
	SharedWith  datatypes.JSONSlice[uint]       `json:"shared_with"`
	Attachments datatypes.JSONSlice[Attachment] `json:"attachments"`
	Author      User                            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}
