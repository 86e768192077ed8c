package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/campus-api/internal/models"
)

const gradebookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export is a generated file ready to be streamed to the client.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

var gradebookHeaders = []string{
	"Student", "Email", "Score", "Accuracy", "Status", "Correct", "Answered",
	"Tab Switches", "Time Taken (s)", "Submitted At",
}

// buildGradebook renders one row per submission in a single worksheet.
func buildGradebook(assignment models.Assignment, submissions []models.Submission) (Export, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheetName := "Submissions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return Export{}, fmt.Errorf("failed to create gradebook sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return Export{}, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &gradebookHeaders); err != nil {
		return Export{}, fmt.Errorf("failed to write gradebook header: %w", err)
	}

	for i, submission := range submissions {
		correct := 0
		for _, answer := range submission.Answers {
			if answer.IsCorrect {
				correct++
			}
		}

		row := []interface{}{
			submission.Student.DisplayName(),
			submission.Student.Email,
			submission.Score,
			submission.Accuracy,
			submission.Status,
			correct,
			len(submission.Answers),
			submission.TabSwitches,
			submission.TotalTimeTaken,
			submission.SubmittedAt.UTC().Format(time.RFC3339),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return Export{}, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return Export{}, fmt.Errorf("failed to write gradebook row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Export{}, fmt.Errorf("failed to write gradebook: %w", err)
	}

	return Export{
		FileName:    gradebookFileName(assignment),
		ContentType: gradebookContentType,
		Data:        buf.Bytes(),
	}, nil
}

func gradebookFileName(assignment models.Assignment) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, assignment.Title)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "assignment"
	}
	return fmt.Sprintf("%s-%d-submissions.xlsx", slug, assignment.ID)
}
