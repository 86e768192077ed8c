package dto

import (
	"time"

	"github.com/noah-isme/campus-api/internal/models"
)

// AttachmentInput references a previously uploaded file.
type AttachmentInput struct {
	Filename string `json:"filename" validate:"required,max=255"`
	URL      string `json:"url" validate:"required,url"`
	MimeType string `json:"mime_type" validate:"omitempty,max=128"`
}

// NoteCreateRequest is the payload for writing a note.
type NoteCreateRequest struct {
	Title       string            `json:"title" validate:"required,max=255"`
	Content     string            `json:"content" validate:"required"`
	CourseID    uint              `json:"course_id" validate:"required,gt=0"`
	IsShared    bool              `json:"is_shared"`
	Attachments []AttachmentInput `json:"attachments" validate:"omitempty,dive"`
}

// NoteUpdateRequest carries optional note changes.
type NoteUpdateRequest struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=255"`
	Content     *string            `json:"content" validate:"omitempty,min=1"`
	Attachments *[]AttachmentInput `json:"attachments" validate:"omitempty,dive"`
}

// ShareNoteRequest lists the students a note is shared with.
type ShareNoteRequest struct {
	StudentIDs []uint `json:"student_ids" validate:"omitempty,dive,gt=0"`
}

// NoteResponse is the public representation of a note.
type NoteResponse struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Content     string              `json:"content"`
	CourseID    uint                `json:"course_id"`
	IsShared    bool                `json:"is_shared"`
	SharedWith  []uint              `json:"shared_with"`
	Attachments []models.Attachment `json:"attachments"`
	Author      UserLite            `json:"author"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CourseNotesResponse splits a course's notes by origin.
type CourseNotesResponse struct {
	MyNotes     []NoteResponse `json:"my_notes"`
	SharedNotes []NoteResponse `json:"shared_notes"`
}

// NewNoteResponse converts a model into a DTO.
func NewNoteResponse(model models.Note) NoteResponse {
	sharedWith := []uint(model.SharedWith)
	if sharedWith == nil {
		sharedWith = []uint{}
	}
	attachments := []models.Attachment(model.Attachments)
	if attachments == nil {
		attachments = []models.Attachment{}
	}

	response := NoteResponse{
		ID:          model.ID,
		Title:       model.Title,
		Content:     model.Content,
		CourseID:    model.CourseID,
		IsShared:    model.IsShared,
		SharedWith:  sharedWith,
		Attachments: attachments,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.Author.ID != 0 {
		response.Author = NewUserLite(model.Author)
	} else {
		response.Author = UserLite{ID: model.AuthorID}
	}
	return response
}

// NewNoteResponseSlice converts a slice of notes.
func NewNoteResponseSlice(notes []models.Note) []NoteResponse {
	responses := make([]NoteResponse, 0, len(notes))
	for _, note := range notes {
		responses = append(responses, NewNoteResponse(note))
	}
	return responses
}

// ToAttachments converts request attachments into their stored form.
func ToAttachments(inputs []AttachmentInput) []models.Attachment {
	attachments := make([]models.Attachment, 0, len(inputs))
	for _, input := range inputs {
		attachments = append(attachments, models.Attachment{
			Filename: input.Filename,
			URL:      input.URL,
			MimeType: input.MimeType,
		})
	}
	return attachments
}
