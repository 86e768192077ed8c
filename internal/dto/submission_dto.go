package dto

import (
	"time"

	"github.com/noah-isme/campus-api/internal/grading"
	"github.com/noah-isme/campus-api/internal/insights"
	"github.com/noah-isme/campus-api/internal/models"
)

// DefaultExplanation is reported when a question carries no explanation.
const DefaultExplanation = "No explanation provided"

// AnswerInput is a student's answer to one question.
type AnswerInput struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
	TimeTaken     int    `json:"time_taken" validate:"gte=0"`
}

// SubmitRequest is the payload for submitting a quiz attempt.
type SubmitRequest struct {
	Answers             []AnswerInput `json:"answers" validate:"required,min=1,dive"`
	TotalTimeTaken      int           `json:"total_time_taken" validate:"gte=0"`
	TabSwitches         int           `json:"tab_switches" validate:"gte=0"`
	TabSwitchTimestamps []time.Time   `json:"tab_switch_timestamps"`
	StartedAt           *time.Time    `json:"started_at"`
}

// ToAnswers converts the request answers for grading.
func (r SubmitRequest) ToAnswers() []grading.Answer {
	answers := make([]grading.Answer, 0, len(r.Answers))
	for _, input := range r.Answers {
		answers = append(answers, grading.Answer{
			QuestionIndex: input.QuestionIndex,
			Answer:        input.Answer,
			TimeTaken:     input.TimeTaken,
		})
	}
	return answers
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                  uint                   `json:"id"`
	AssignmentID        uint                   `json:"assignment_id"`
	Student             UserLite               `json:"student"`
	Answers             []grading.GradedAnswer `json:"answers"`
	Score               float64                `json:"score"`
	Accuracy            float64                `json:"accuracy"`
	Status              string                 `json:"status"`
	TabSwitches         int                    `json:"tab_switches"`
	TabSwitchTimestamps []time.Time            `json:"tab_switch_timestamps"`
	TotalTimeTaken      int                    `json:"total_time_taken"`
	StartedAt           *time.Time             `json:"started_at"`
	SubmittedAt         time.Time              `json:"submitted_at"`
}

// QuestionResult explains the outcome of one answer after submission.
type QuestionResult struct {
	QuestionIndex int    `json:"question_index"`
	QuestionText  string `json:"question_text"`
	QuestionType  string `json:"question_type"`
	StudentAnswer string `json:"student_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
	TimeTaken     int    `json:"time_taken"`
}

// SubmitResponse is returned after a quiz has been graded.
type SubmitResponse struct {
	Submission SubmissionResponse `json:"submission"`
	Score      float64            `json:"score"`
	Accuracy   float64            `json:"accuracy"`
	Status     string             `json:"status"`
	Results    []QuestionResult   `json:"results"`
}

// AssignmentSubmissionsResponse lists every submission of a quiz.
type AssignmentSubmissionsResponse struct {
	Assignment  AssignmentResponse   `json:"assignment"`
	Submissions []SubmissionResponse `json:"submissions"`
}

// InsightsResponse carries study advice for a graded submission.
type InsightsResponse struct {
	AssignmentID uint                  `json:"assignment_id"`
	Score        float64               `json:"score"`
	Accuracy     float64               `json:"accuracy"`
	Suggestions  []insights.Suggestion `json:"suggestions"`
	Motivation   insights.Motivation   `json:"motivation"`
	StudyPlan    insights.StudyPlan    `json:"study_plan"`
	CoachTips    []string              `json:"coach_tips,omitempty"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	answers := []grading.GradedAnswer(model.Answers)
	if answers == nil {
		answers = []grading.GradedAnswer{}
	}
	timestamps := []time.Time(model.TabSwitchTimestamps)
	if timestamps == nil {
		timestamps = []time.Time{}
	}

	response := SubmissionResponse{
		ID:                  model.ID,
		AssignmentID:        model.AssignmentID,
		Answers:             answers,
		Score:               model.Score,
		Accuracy:            model.Accuracy,
		Status:              model.Status,
		TabSwitches:         model.TabSwitches,
		TabSwitchTimestamps: timestamps,
		TotalTimeTaken:      model.TotalTimeTaken,
		StartedAt:           model.StartedAt,
		SubmittedAt:         model.SubmittedAt,
	}

	if model.Student.ID != 0 {
		response.Student = NewUserLite(model.Student)
	} else {
		response.Student = UserLite{ID: model.StudentID}
	}

	return response
}

// NewSubmissionResponseSlice converts a slice of submissions.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}

// NewQuestionResults pairs graded answers with their questions.
func NewQuestionResults(quiz grading.Quiz, answers []grading.GradedAnswer) []QuestionResult {
	results := make([]QuestionResult, 0, len(answers))
	for _, answer := range answers {
		result := QuestionResult{
			QuestionIndex: answer.QuestionIndex,
			StudentAnswer: answer.Answer.Answer,
			IsCorrect:     answer.IsCorrect,
			Explanation:   DefaultExplanation,
			TimeTaken:     answer.TimeTaken,
		}
		if question, ok := quiz.Question(answer.QuestionIndex); ok {
			result.QuestionText = question.Text
			result.QuestionType = string(question.Type)
			result.CorrectAnswer = question.CorrectAnswer
			if question.Explanation != "" {
				result.Explanation = question.Explanation
			}
		}
		results = append(results, result)
	}
	return results
}
