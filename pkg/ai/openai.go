package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/campus-api/internal/insights"
)

var (
	coachDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "campus",
		Subsystem: "ai",
		Name:      "coach_duration_seconds",
		Help:      "Duration of study coach requests",
	}, []string{"model"})

	coachFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campus",
		Subsystem: "ai",
		Name:      "coach_failures_total",
		Help:      "Number of failed study coach requests",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI coach.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	MaxTips     int
	Logger      zerolog.Logger
}

// OpenAICoach implements Coach against the OpenAI chat completion API.
type OpenAICoach struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAICoach builds a coach using the provided configuration.
func NewOpenAICoach(cfg OpenAIConfig) (*OpenAICoach, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 300
	}

	if cfg.MaxTips <= 0 {
		cfg.MaxTips = 3
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAICoach{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/campus-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "openai_coach").Logger(),
	}, nil
}

// CoachTips asks the model for a few concrete tips and trims the reply to MaxTips.
func (c *OpenAICoach) CoachTips(parent context.Context, attempt insights.Attempt, report insights.Report) ([]string, error) {
	ctx, span := c.tracer.Start(parent, "openai.coach", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.Float64("attempt.score", attempt.Score),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: coachSystemPrompt(c.cfg.MaxTips),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildCoachPrompt(attempt, report),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	coachDuration.WithLabelValues(c.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, c.fail(span, fmt.Errorf("openai coach: %w", err))
	}

	if len(resp.Choices) == 0 {
		return nil, c.fail(span, fmt.Errorf("no choices returned from openai"))
	}

	tips, err := parseTips(resp.Choices[0].Message.Content, c.cfg.MaxTips)
	if err != nil {
		return nil, c.fail(span, err)
	}

	c.logger.Debug().Int("tips", len(tips)).Int("total_tokens", resp.Usage.TotalTokens).Msg("coach tips generated")
	return tips, nil
}

func (c *OpenAICoach) fail(span trace.Span, err error) error {
	coachFailures.WithLabelValues(c.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func coachSystemPrompt(maxTips int) string {
	return fmt.Sprintf("You are a friendly study coach for college students. Respond with a JSON object "+
		"{\"tips\": [...]} holding at most %d short, concrete study tips. Do not repeat the suggestions you are given.", maxTips)
}

func buildCoachPrompt(attempt insights.Attempt, report insights.Report) string {
	builder := strings.Builder{}
	builder.WriteString("# Quiz attempt\n")
	fmt.Fprintf(&builder, "Course: %s\n", attempt.CourseName)
	fmt.Fprintf(&builder, "Score: %.1f%%\n", attempt.Score)
	fmt.Fprintf(&builder, "Time taken: %d seconds of %d minutes\n", attempt.TotalTimeTaken, attempt.TotalTime)
	fmt.Fprintf(&builder, "Tab switches: %d\n", attempt.TabSwitches)
	if len(report.Suggestions) > 0 {
		builder.WriteString("\n## Existing suggestions\n")
		for _, suggestion := range report.Suggestions {
			builder.WriteString("- ")
			builder.WriteString(suggestion.Title)
			builder.WriteString("\n")
		}
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseTips(content string, maxTips int) ([]string, error) {
	var data tipsPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &data); err != nil {
		return nil, fmt.Errorf("parse coach json: %w", err)
	}

	tips := make([]string, 0, len(data.Tips))
	for _, tip := range data.Tips {
		tip = strings.TrimSpace(tip)
		if tip == "" {
			continue
		}
		tips = append(tips, tip)
		if len(tips) == maxTips {
			break
		}
	}
	return tips, nil
}
