package ai

import (
	"context"

	"github.com/noah-isme/campus-api/internal/insights"
)

// Coach turns a graded attempt into short personalised study tips.
type Coach interface {
	CoachTips(ctx context.Context, attempt insights.Attempt, report insights.Report) ([]string, error)
}

type tipsPayload struct {
	Tips []string `json:"tips"`
}
