package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-api/internal/dto"
)

func compileContract(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)
	return schema
}

func validateContract(t *testing.T, schema *jsonschema.Schema, resp *http.Response) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestTimetableContract(t *testing.T) {
	schema := compileContract(t, "timetable.schema.json")

	stack := newTestStack(t)
	teacherToken, _ := stack.registerUser(t, "codd", "teacher")
	studentToken, student := stack.registerUser(t, "chamberlin", "student")
	course := stack.createCourse(t, teacherToken, "DB101")
	stack.enroll(t, studentToken, course.ID)

	resp := stack.do(t, http.MethodPost, "/api/v1/schedule/assignments", teacherToken, dto.AssignStudentRequest{StudentID: student.ID, CourseID: course.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = stack.do(t, http.MethodGet, "/api/v1/schedule/timetable", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	validateContract(t, schema, resp)
}

func TestSubmitResultContract(t *testing.T) {
	schema := compileContract(t, "submit_result.schema.json")

	stack := newTestStack(t)
	teacherToken, _ := stack.registerUser(t, "hejlsberg", "teacher")
	studentToken, _ := stack.registerUser(t, "stroustrup", "student")
	course := stack.createCourse(t, teacherToken, "PL101")
	stack.enroll(t, studentToken, course.ID)

	resp := stack.do(t, http.MethodPost, "/api/v1/assignments", teacherToken, quizPayload(course.ID))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var quiz dto.AssignmentResponse
	decodeData(t, resp, &quiz)

	resp = stack.do(t, http.MethodPost, fmt.Sprintf("/api/v1/assignments/%d/submit", quiz.ID), studentToken, dto.SubmitRequest{
		Answers: []dto.AnswerInput{
			{QuestionIndex: 0, Answer: "4"},
			{QuestionIndex: 1, Answer: "true"},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	validateContract(t, schema, resp)
}
