package handler_test

import (
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-api/internal/dto"
)

func quizPayload(courseID uint) dto.AssignmentCreateRequest {
	return dto.AssignmentCreateRequest{
		Title:       "Week 1 check-in",
		Description: "Basics of the course",
		CourseID:    courseID,
		Deadline:    time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		Questions: []dto.QuestionInput{
			{QuestionText: "2 + 2 = ?", QuestionType: "mcq", Options: []string{"3", "4", "5"}, CorrectAnswer: "4", Explanation: "Basic addition"},
			{QuestionText: "Go has goroutines", QuestionType: "true-false", CorrectAnswer: "true"},
		},
	}
}

func TestQuizHandler_CreateAttemptSubmitAndExport(t *testing.T) {
	stack := newTestStack(t)
	teacherToken, _ := stack.registerUser(t, "wirth", "teacher")
	studentToken, student := stack.registerUser(t, "kay", "student")
	course := stack.createCourse(t, teacherToken, "CS110")
	stack.enroll(t, studentToken, course.ID)

	resp := stack.do(t, http.MethodPost, "/api/v1/assignments", teacherToken, quizPayload(course.ID))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var quiz dto.AssignmentResponse
	decodeData(t, resp, &quiz)
	require.Len(t, quiz.Questions, 2)
	require.Equal(t, "quiz", quiz.Type)

	quizPath := fmt.Sprintf("/api/v1/assignments/%d", quiz.ID)

	resp = stack.do(t, http.MethodGet, quizPath, studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NotContains(t, string(raw), "correct_answer")
	require.NotContains(t, string(raw), "Basic addition")

	resp = stack.do(t, http.MethodPost, quizPath+"/submit", studentToken, dto.SubmitRequest{
		Answers: []dto.AnswerInput{
			{QuestionIndex: 0, Answer: "4", TimeTaken: 10},
			{QuestionIndex: 1, Answer: "false", TimeTaken: 5},
		},
		TotalTimeTaken: 15,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var result dto.SubmitResponse
	decodeData(t, resp, &result)
	require.InDelta(t, 50, result.Score, 0.001)
	require.Equal(t, "on-time", result.Status)
	require.Len(t, result.Results, 2)
	require.True(t, result.Results[0].IsCorrect)
	require.Equal(t, "Basic addition", result.Results[0].Explanation)
	require.False(t, result.Results[1].IsCorrect)
	require.Equal(t, dto.DefaultExplanation, result.Results[1].Explanation)

	resp = stack.do(t, http.MethodPost, quizPath+"/submit", studentToken, dto.SubmitRequest{
		Answers: []dto.AnswerInput{{QuestionIndex: 0, Answer: "4"}},
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = stack.do(t, http.MethodGet, quizPath, studentToken, nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = stack.do(t, http.MethodGet, quizPath+"/insights", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var report dto.InsightsResponse
	decodeData(t, resp, &report)
	require.Equal(t, quiz.ID, report.AssignmentID)
	require.NotEmpty(t, report.Suggestions)

	resp = stack.do(t, http.MethodGet, quizPath+"/submissions", teacherToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var submissions dto.AssignmentSubmissionsResponse
	decodeData(t, resp, &submissions)
	require.Len(t, submissions.Submissions, 1)
	require.Equal(t, student.ID, submissions.Submissions[0].Student.ID)

	resp = stack.do(t, http.MethodGet, quizPath+"/submissions/export", teacherToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get(fiber.HeaderContentType))
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".xlsx")
	workbook, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, "PK", string(workbook[:2]))
}

func TestQuizHandler_Guards(t *testing.T) {
	stack := newTestStack(t)
	teacherToken, _ := stack.registerUser(t, "ritchie", "teacher")
	otherTeacherToken, _ := stack.registerUser(t, "thompson", "teacher")
	studentToken, _ := stack.registerUser(t, "pike", "student")
	course := stack.createCourse(t, teacherToken, "CS120")

	resp := stack.do(t, http.MethodPost, "/api/v1/assignments", studentToken, quizPayload(course.ID))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	past := quizPayload(course.ID)
	past.Deadline = time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	resp = stack.do(t, http.MethodPost, "/api/v1/assignments", teacherToken, past)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = stack.do(t, http.MethodPost, "/api/v1/assignments", teacherToken, quizPayload(course.ID))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var quiz dto.AssignmentResponse
	decodeData(t, resp, &quiz)

	resp = stack.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assignments/%d/submissions", quiz.ID), otherTeacherToken, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = stack.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/assignments/%d", quiz.ID), otherTeacherToken, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = stack.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assignments/%d/insights", quiz.ID), studentToken, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = stack.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/assignments/%d", quiz.ID), teacherToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = stack.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assignments/%d", quiz.ID), studentToken, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
