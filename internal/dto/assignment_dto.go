package dto

import (
	"sort"
	"time"

	"github.com/noah-isme/campus-api/internal/grading"
	"github.com/noah-isme/campus-api/internal/models"
)

const isoLayout = time.RFC3339

// MatchPairInput is one left/right pair of a match-column question.
type MatchPairInput struct {
	Left  string `json:"left" validate:"required"`
	Right string `json:"right" validate:"required"`
}

// QuestionInput describes a single quiz question.
type QuestionInput struct {
	QuestionText  string           `json:"question_text" validate:"required"`
	QuestionType  string           `json:"question_type" validate:"required,oneof=mcq true-false match-column descriptive"`
	Options       []string         `json:"options" validate:"omitempty,dive,required"`
	CorrectAnswer string           `json:"correct_answer"`
	Explanation   string           `json:"explanation"`
	MatchPairs    []MatchPairInput `json:"match_pairs" validate:"omitempty,dive"`
	Points        int              `json:"points" validate:"omitempty,gte=1"`
	TimeLimit     int              `json:"time_limit" validate:"omitempty,gte=0"`
}

// AssignmentCreateRequest describes the payload for creating a quiz.
type AssignmentCreateRequest struct {
	Title          string            `json:"title" validate:"required,max=255"`
	Description    string            `json:"description" validate:"required"`
	CourseID       uint              `json:"course_id" validate:"required,gt=0"`
	Deadline       string            `json:"deadline" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Type           string            `json:"type" validate:"omitempty,oneof=quiz descriptive"`
	Questions      []QuestionInput   `json:"questions" validate:"required,min=1,dive"`
	TotalTime      int               `json:"total_time" validate:"omitempty,gte=1,lte=1440"`
	AllowTabSwitch bool              `json:"allow_tab_switch"`
	Attachments    []AttachmentInput `json:"attachments" validate:"omitempty,dive"`
}

// ParseDeadline converts the request deadline into a timestamp.
func (r AssignmentCreateRequest) ParseDeadline() (time.Time, error) {
	return time.Parse(isoLayout, r.Deadline)
}

// ToQuestions converts the request questions into their stored form.
// Points default to 1.
func (r AssignmentCreateRequest) ToQuestions() []grading.Question {
	questions := make([]grading.Question, 0, len(r.Questions))
	for _, input := range r.Questions {
		points := input.Points
		if points <= 0 {
			points = 1
		}
		var pairs []grading.MatchPair
		for _, pair := range input.MatchPairs {
			pairs = append(pairs, grading.MatchPair{Left: pair.Left, Right: pair.Right})
		}
		questions = append(questions, grading.Question{
			Text:          input.QuestionText,
			Type:          grading.QuestionType(input.QuestionType),
			Options:       input.Options,
			CorrectAnswer: input.CorrectAnswer,
			Explanation:   input.Explanation,
			MatchPairs:    pairs,
			Points:        points,
			TimeLimit:     input.TimeLimit,
		})
	}
	return questions
}

// AssignmentResponse is the teacher view of a quiz, answers included.
type AssignmentResponse struct {
	ID             uint                `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	CourseID       uint                `json:"course_id"`
	TeacherID      uint                `json:"teacher_id"`
	Type           string              `json:"type"`
	Questions      []grading.Question  `json:"questions"`
	Deadline       time.Time           `json:"deadline"`
	TotalTime      int                 `json:"total_time"`
	AllowTabSwitch bool                `json:"allow_tab_switch"`
	Attachments    []models.Attachment `json:"attachments"`
	CreatedAt      time.Time           `json:"created_at"`
}

// QuestionView is a question with its answer key removed.
type QuestionView struct {
	QuestionIndex int      `json:"question_index"`
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"`
	Options       []string `json:"options,omitempty"`
	MatchLeft     []string `json:"match_left,omitempty"`
	MatchRight    []string `json:"match_right,omitempty"`
	Points        int      `json:"points"`
	TimeLimit     int      `json:"time_limit,omitempty"`
}

// AssignmentAttemptResponse is what a student sees while taking a quiz.
type AssignmentAttemptResponse struct {
	ID             uint                `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	CourseID       uint                `json:"course_id"`
	Type           string              `json:"type"`
	Questions      []QuestionView      `json:"questions"`
	Deadline       time.Time           `json:"deadline"`
	TotalTime      int                 `json:"total_time"`
	AllowTabSwitch bool                `json:"allow_tab_switch"`
	Attachments    []models.Attachment `json:"attachments"`
}

// StudentAssignmentResponse lists a quiz together with the caller's submission.
type StudentAssignmentResponse struct {
	AssignmentAttemptResponse
	Submitted  bool                `json:"submitted"`
	Submission *SubmissionResponse `json:"submission"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	questions := []grading.Question(model.Questions)
	if questions == nil {
		questions = []grading.Question{}
	}
	return AssignmentResponse{
		ID:             model.ID,
		Title:          model.Title,
		Description:    model.Description,
		CourseID:       model.CourseID,
		TeacherID:      model.TeacherID,
		Type:           model.Type,
		Questions:      questions,
		Deadline:       model.Deadline,
		TotalTime:      model.TotalTime,
		AllowTabSwitch: model.AllowTabSwitch,
		Attachments:    attachmentsOrEmpty(model.Attachments),
		CreatedAt:      model.CreatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}

// NewAssignmentAttemptResponse hides answer keys and explanations.
func NewAssignmentAttemptResponse(model models.Assignment) AssignmentAttemptResponse {
	views := make([]QuestionView, 0, len(model.Questions))
	for i, question := range model.Questions {
		view := QuestionView{
			QuestionIndex: i,
			QuestionText:  question.Text,
			QuestionType:  string(question.Type),
			Options:       question.Options,
			Points:        question.Points,
			TimeLimit:     question.TimeLimit,
		}
		if question.Type == grading.QuestionTypeMatchColumn {
			for _, pair := range question.MatchPairs {
				view.MatchLeft = append(view.MatchLeft, pair.Left)
				view.MatchRight = append(view.MatchRight, pair.Right)
			}
			sort.Strings(view.MatchRight)
		}
		views = append(views, view)
	}

	return AssignmentAttemptResponse{
		ID:             model.ID,
		Title:          model.Title,
		Description:    model.Description,
		CourseID:       model.CourseID,
		Type:           model.Type,
		Questions:      views,
		Deadline:       model.Deadline,
		TotalTime:      model.TotalTime,
		AllowTabSwitch: model.AllowTabSwitch,
		Attachments:    attachmentsOrEmpty(model.Attachments),
	}
}

func attachmentsOrEmpty(attachments []models.Attachment) []models.Attachment {
	if attachments == nil {
		return []models.Attachment{}
	}
	return attachments
}
