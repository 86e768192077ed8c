package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/models"
)

// NoteRepository persists course notes.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	FindForAuthor(ctx context.Context, id, authorID uint) (models.Note, error)
	DeleteForAuthor(ctx context.Context, id, authorID uint) error
	ListByAuthor(ctx context.Context, authorID, courseID uint, sharedOnly bool) ([]models.Note, error)
	ListSharedByAuthors(ctx context.Context, courseID uint, authorIDs []uint) ([]models.Note, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository constructs a GORM-backed note repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Omit("Author").Create(note).Error
}

func (r *noteRepository) Update(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Omit("Author").Save(note).Error
}

func (r *noteRepository) FindForAuthor(ctx context.Context, id, authorID uint) (models.Note, error) {
	var note models.Note
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND author_id = ?", id, authorID).
		First(&note).Error; err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (r *noteRepository) DeleteForAuthor(ctx context.Context, id, authorID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&models.Note{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *noteRepository) ListByAuthor(ctx context.Context, authorID, courseID uint, sharedOnly bool) ([]models.Note, error) {
	query := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id = ? AND course_id = ?", authorID, courseID)
	if sharedOnly {
		query = query.Where("is_shared = ?", true)
	}

	var notes []models.Note
	if err := query.Order("created_at DESC, id DESC").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepository) ListSharedByAuthors(ctx context.Context, courseID uint, authorIDs []uint) ([]models.Note, error) {
	if len(authorIDs) == 0 {
		return []models.Note{}, nil
	}

	var notes []models.Note
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("course_id = ? AND is_shared = ? AND author_id IN ?", courseID, true, authorIDs).
		Order("created_at DESC, id DESC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}
