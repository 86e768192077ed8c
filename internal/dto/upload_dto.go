package dto

import (
	"time"

	"github.com/noah-isme/campus-api/internal/models"
)

// UploadResponse describes a stored file.
type UploadResponse struct {
	ID        uint      `json:"id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUploadResponse converts a model into a DTO.
func NewUploadResponse(model models.UploadRecord) UploadResponse {
	return UploadResponse{
		ID:        model.ID,
		FileName:  model.FileName,
		URL:       model.URL,
		MimeType:  model.MimeType,
		SizeBytes: model.SizeBytes,
		Checksum:  model.Checksum,
		CreatedAt: model.CreatedAt,
	}
}
