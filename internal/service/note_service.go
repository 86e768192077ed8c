package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/campus-api/internal/dto"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/repository"
)

var (
	// ErrNoteNotFound indicates the note is missing or owned by someone else.
	ErrNoteNotFound = errors.New("note not found")
	// ErrNoteContentEmpty indicates nothing was left after sanitizing the content.
	ErrNoteContentEmpty = errors.New("note content is empty")
)

// NoteService manages personal and shared course notes.
type NoteService interface {
	Create(ctx context.Context, authorID uint, role string, payload dto.NoteCreateRequest) (dto.NoteResponse, error)
	ListForCourse(ctx context.Context, userID uint, role string, courseID uint) (dto.CourseNotesResponse, error)
	TeacherNotes(ctx context.Context, teacherID, courseID uint) ([]dto.NoteResponse, error)
	Update(ctx context.Context, authorID, noteID uint, payload dto.NoteUpdateRequest) (dto.NoteResponse, error)
	Delete(ctx context.Context, authorID, noteID uint) error
	Share(ctx context.Context, teacherID, noteID uint, payload dto.ShareNoteRequest) (dto.NoteResponse, error)
}

type noteService struct {
	notes       repository.NoteRepository
	courses     repository.CourseRepository
	assignments repository.TeacherAssignmentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	notifier    Notifier
	activity    ActivityRecorder
	logger      zerolog.Logger
}

// NewNoteService constructs the note service.
func NewNoteService(notes repository.NoteRepository, courses repository.CourseRepository, assignments repository.TeacherAssignmentRepository, validate *validator.Validate, notifier Notifier, activity ActivityRecorder, logger zerolog.Logger) NoteService {
	return &noteService{
		notes:       notes,
		courses:     courses,
		assignments: assignments,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		notifier:    notifier,
		activity:    activity,
		logger:      logger.With().Str("component", "note_service").Logger(),
	}
}

func (s *noteService) Create(ctx context.Context, authorID uint, role string, payload dto.NoteCreateRequest) (dto.NoteResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NoteResponse{}, err
	}

	if _, err := s.courses.FindByID(ctx, payload.CourseID); err != nil {
		if repository.IsNotFound(err) {
			return dto.NoteResponse{}, ErrCourseNotFound
		}
		return dto.NoteResponse{}, err
	}

	content, err := s.clean(payload.Content)
	if err != nil {
		return dto.NoteResponse{}, err
	}

	note := models.Note{
		Title:       strings.TrimSpace(payload.Title),
		Content:     content,
		AuthorID:    authorID,
		CourseID:    payload.CourseID,
		IsShared:    payload.IsShared && role == models.RoleTeacher,
		SharedWith:  datatypes.JSONSlice[uint]{},
		Attachments: datatypes.JSONSlice[models.Attachment](dto.ToAttachments(payload.Attachments)),
	}

	if err := s.notes.Create(ctx, &note); err != nil {
		return dto.NoteResponse{}, err
	}

	s.logger.Info().Uint("note_id", note.ID).Uint("author_id", authorID).Bool("shared", note.IsShared).Msg("note created")

	return s.reload(ctx, note)
}

// ListForCourse returns the caller's own notes and, for enrolled students, the
// shared notes of the teachers assigned to them in the course.
func (s *noteService) ListForCourse(ctx context.Context, userID uint, role string, courseID uint) (dto.CourseNotesResponse, error) {
	mine, err := s.notes.ListByAuthor(ctx, userID, courseID, false)
	if err != nil {
		return dto.CourseNotesResponse{}, err
	}

	response := dto.CourseNotesResponse{
		MyNotes:     dto.NewNoteResponseSlice(mine),
		SharedNotes: []dto.NoteResponse{},
	}

	if role != models.RoleStudent {
		return response, nil
	}

	enrolled, err := s.courses.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return dto.CourseNotesResponse{}, err
	}
	if !enrolled {
		return response, nil
	}

	teacherIDs, err := s.assignments.TeacherIDsForStudent(ctx, userID, courseID)
	if err != nil {
		return dto.CourseNotesResponse{}, err
	}

	shared, err := s.notes.ListSharedByAuthors(ctx, courseID, teacherIDs)
	if err != nil {
		return dto.CourseNotesResponse{}, err
	}

	visible := make([]models.Note, 0, len(shared))
	for _, note := range shared {
		if len(note.SharedWith) == 0 || slices.Contains(note.SharedWith, userID) {
			visible = append(visible, note)
		}
	}
	response.SharedNotes = dto.NewNoteResponseSlice(visible)

	return response, nil
}

func (s *noteService) TeacherNotes(ctx context.Context, teacherID, courseID uint) ([]dto.NoteResponse, error) {
	notes, err := s.notes.ListByAuthor(ctx, teacherID, courseID, true)
	if err != nil {
		return nil, err
	}
	return dto.NewNoteResponseSlice(notes), nil
}

func (s *noteService) Update(ctx context.Context, authorID, noteID uint, payload dto.NoteUpdateRequest) (dto.NoteResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NoteResponse{}, err
	}

	note, err := s.findOwned(ctx, noteID, authorID)
	if err != nil {
		return dto.NoteResponse{}, err
	}

	if payload.Title != nil {
		note.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Content != nil {
		content, err := s.clean(*payload.Content)
		if err != nil {
			return dto.NoteResponse{}, err
		}
		note.Content = content
	}
	if payload.Attachments != nil {
		note.Attachments = datatypes.JSONSlice[models.Attachment](dto.ToAttachments(*payload.Attachments))
	}

	if err := s.notes.Update(ctx, &note); err != nil {
		return dto.NoteResponse{}, err
	}

	return dto.NewNoteResponse(note), nil
}

func (s *noteService) Delete(ctx context.Context, authorID, noteID uint) error {
	if err := s.notes.DeleteForAuthor(ctx, noteID, authorID); err != nil {
		if repository.IsNotFound(err) {
			return ErrNoteNotFound
		}
		return err
	}
	return nil
}

// Share marks a teacher's note as shared. An empty student list shares it with
// every student assigned to the teacher in the note's course.
func (s *noteService) Share(ctx context.Context, teacherID, noteID uint, payload dto.ShareNoteRequest) (dto.NoteResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NoteResponse{}, err
	}

	note, err := s.findOwned(ctx, noteID, teacherID)
	if err != nil {
		return dto.NoteResponse{}, err
	}

	recipients := uniqueIDs(payload.StudentIDs)
	note.IsShared = true
	note.SharedWith = datatypes.JSONSlice[uint](recipients)

	if err := s.notes.Update(ctx, &note); err != nil {
		return dto.NoteResponse{}, err
	}

	if len(recipients) == 0 {
		recipients, err = s.assignments.StudentIDsForTeacher(ctx, teacherID, note.CourseID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("note_id", note.ID).Msg("failed to resolve note recipients")
		}
	}

	if s.notifier != nil {
		message := fmt.Sprintf("A new note was shared with you: %s", note.Title)
		for _, studentID := range recipients {
			if _, err := s.notifier.Notify(ctx, studentID, NotificationNote, message); err != nil {
				s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to notify student about note")
			}
		}
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    teacherID,
		ActorRole:  models.RoleTeacher,
		Action:     ActionNoteShared,
		EntityType: "note",
		EntityID:   uintPtr(note.ID),
		Metadata:   map[string]interface{}{"course_id": note.CourseID, "recipients": len(recipients)},
	})

	return dto.NewNoteResponse(note), nil
}

func (s *noteService) findOwned(ctx context.Context, noteID, authorID uint) (models.Note, error) {
	note, err := s.notes.FindForAuthor(ctx, noteID, authorID)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}
	return note, nil
}

func (s *noteService) reload(ctx context.Context, note models.Note) (dto.NoteResponse, error) {
	stored, err := s.notes.FindForAuthor(ctx, note.ID, note.AuthorID)
	if err != nil {
		return dto.NewNoteResponse(note), nil
	}
	return dto.NewNoteResponse(stored), nil
}

func (s *noteService) clean(content string) (string, error) {
	cleaned := strings.TrimSpace(s.sanitizer.Sanitize(content))
	if cleaned == "" {
		return "", ErrNoteContentEmpty
	}
	return cleaned, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
