// Package grading scores quiz submissions against their quiz definition.
//
// Everything in this package is pure: callers load the quiz and the
// submitted answers, call Grade and persist the Result themselves.
package grading

import (
	"encoding/json"
	"io"
	"strings"
	"time"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "mcq"
	QuestionTypeTrueFalse   QuestionType = "true-false"
	QuestionTypeMatchColumn QuestionType = "match-column"
	QuestionTypeDescriptive QuestionType = "descriptive"
)

// IsGradable reports whether questions of this type count towards the score.
func (t QuestionType) IsGradable() bool {
	return t != QuestionTypeDescriptive
}

// Status reports whether a submission arrived before the deadline.
type Status string

const (
	StatusOnTime Status = "on-time"
	StatusLate   Status = "late"
)

// MatchPair is a single left/right association of a match-column question.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Question is one entry of a quiz. Its position in Quiz.Questions is its index.
type Question struct {
	Text          string       `json:"question_text"`
	Type          QuestionType `json:"question_type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
	MatchPairs    []MatchPair  `json:"match_pairs,omitempty"`
	Points        int          `json:"points"`
	TimeLimit     int          `json:"time_limit,omitempty"`
}

// Quiz is the subset of an assignment the grader needs.
type Quiz struct {
	Questions []Question
	Deadline  time.Time
}

// Answer is a student's response to the question at QuestionIndex.
type Answer struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
	TimeTaken     int    `json:"time_taken"`
}

// GradedAnswer is an Answer annotated with its correctness.
type GradedAnswer struct {
	Answer
	IsCorrect bool `json:"is_correct"`
}

// Result is the outcome of grading one submission.
type Result struct {
	Answers       []GradedAnswer
	Score         float64
	Accuracy      float64
	Status        Status
	CorrectCount  int
	GradableCount int
}

// GradableCount returns the number of non-descriptive questions in the quiz.
func (q Quiz) GradableCount() int {
	count := 0
	for _, question := range q.Questions {
		if question.Type.IsGradable() {
			count++
		}
	}
	return count
}

// Question returns the question at index and whether it exists.
func (q Quiz) Question(index int) (Question, bool) {
	if index < 0 || index >= len(q.Questions) {
		return Question{}, false
	}
	return q.Questions[index], true
}

// Grade scores answers against quiz. Answers pointing at a question that does
// not exist are marked incorrect; the rest of the submission is still graded.
// A question answered correctly more than once still counts once.
func Grade(quiz Quiz, answers []Answer, now time.Time) Result {
	graded := make([]GradedAnswer, 0, len(answers))
	solved := make(map[int]struct{}, len(answers))

	for _, answer := range answers {
		isCorrect := false
		if question, ok := quiz.Question(answer.QuestionIndex); ok {
			isCorrect = IsCorrect(question, answer.Answer)
		}
		if isCorrect {
			solved[answer.QuestionIndex] = struct{}{}
		}
		graded = append(graded, GradedAnswer{Answer: answer, IsCorrect: isCorrect})
	}

	correct := len(solved)
	gradable := quiz.GradableCount()
	score := Percentage(correct, gradable)

	status := StatusOnTime
	if now.After(quiz.Deadline) {
		status = StatusLate
	}

	return Result{
		Answers:       graded,
		Score:         score,
		Accuracy:      score,
		Status:        status,
		CorrectCount:  correct,
		GradableCount: gradable,
	}
}

// Percentage returns correct/total*100, or 0 when total is zero.
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// IsCorrect evaluates a single answer against its question.
func IsCorrect(question Question, answer string) bool {
	switch question.Type {
	case QuestionTypeMCQ, QuestionTypeTrueFalse:
		return answer == question.CorrectAnswer
	case QuestionTypeMatchColumn:
		return matchesPairs(question.MatchPairs, answer)
	default:
		return false
	}
}

// matchesPairs reports whether raw, once parsed and re-serialized, would
// read exactly like the expected pairs serialized as JSON. Every element must
// therefore be an object with string keys "left" then "right"; key case,
// key order and pair order are significant. A repeated key keeps its first
// position and its last value.
func matchesPairs(expected []MatchPair, raw string) bool {
	decoder := json.NewDecoder(strings.NewReader(raw))

	if !expectDelim(decoder, '[') {
		return false
	}
	submitted := make([]MatchPair, 0, len(expected))
	for decoder.More() {
		pair, ok := readPair(decoder)
		if !ok {
			return false
		}
		submitted = append(submitted, pair)
	}
	if !expectDelim(decoder, ']') {
		return false
	}
	if _, err := decoder.Token(); err != io.EOF {
		return false
	}

	if len(submitted) != len(expected) {
		return false
	}
	for i := range expected {
		if submitted[i] != expected[i] {
			return false
		}
	}
	return true
}

func readPair(decoder *json.Decoder) (MatchPair, bool) {
	if !expectDelim(decoder, '{') {
		return MatchPair{}, false
	}

	var keys []string
	values := make(map[string]string, 2)
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return MatchPair{}, false
		}
		key, _ := keyToken.(string)

		valueToken, err := decoder.Token()
		if err != nil {
			return MatchPair{}, false
		}
		value, ok := valueToken.(string)
		if !ok {
			return MatchPair{}, false
		}

		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = value
	}
	if !expectDelim(decoder, '}') {
		return MatchPair{}, false
	}

	if len(keys) != 2 || keys[0] != "left" || keys[1] != "right" {
		return MatchPair{}, false
	}
	return MatchPair{Left: values["left"], Right: values["right"]}, true
}

func expectDelim(decoder *json.Decoder, delim json.Delim) bool {
	token, err := decoder.Token()
	if err != nil {
		return false
	}
	got, ok := token.(json.Delim)
	return ok && got == delim
}
