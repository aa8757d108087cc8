package ai

import (
	"context"
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
)

var (
	scoringDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bandwise",
		Subsystem: "ai",
		Name:      "scoring_duration_seconds",
		Help:      "Duration of provider scoring requests",
	}, []string{"provider", "model"})

	scoringFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bandwise",
		Subsystem: "ai",
		Name:      "scoring_failures_total",
		Help:      "Number of provider scoring failures",
	}, []string{"provider", "model"})
)

// OpenAIConfig defines configuration options for the OpenAI scorer.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// OpenAIScorer implements Scorer against the OpenAI chat completion API.
type OpenAIScorer struct {
	client    *openai.Client
	cfg       OpenAIConfig
	available bool
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewOpenAIScorer builds the scorer. Availability is decided once here: a
// missing or placeholder key yields an unavailable scorer, not an error, so
// the registry can still be assembled without credentials.
func NewOpenAIScorer(cfg OpenAIConfig) *OpenAIScorer {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	scorer := &OpenAIScorer{
		cfg:       cfg,
		available: credentialUsable(cfg.APIKey),
		tracer:    otel.Tracer("github.com/bandwise/bandwise-go-api/pkg/ai/openai"),
		logger:    logger.With().Str("component", "openai_scorer").Logger(),
	}

	if scorer.available {
		scorer.client = openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey))
	}

	return scorer
}

// Name implements Scorer.
func (s *OpenAIScorer) Name() string { return "openai" }

// Available implements Scorer.
func (s *OpenAIScorer) Available() bool { return s.available }

// Score sends the submission to OpenAI and parses the structured reply.
func (s *OpenAIScorer) Score(parent context.Context, input ScoringInput) (ScoringResult, error) {
	ctx, span := s.tracer.Start(parent, "openai.score", trace.WithAttributes(
		attribute.String("model", s.cfg.Model),
		attribute.String("task_type", string(input.TaskType)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	raw, err := s.complete(ctx, scoringSystemPrompt(input.TaskType), buildScoringPrompt(input), true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ScoringResult{}, &ProviderError{Provider: s.Name(), Err: err}
	}

	result, err := parseScoringResponse(raw, input.TaskType, s.cfg.Model)
	if err != nil {
		scoringFailures.WithLabelValues(s.Name(), s.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ScoringResult{}, &ProviderError{Provider: s.Name(), Err: err}
	}

	return result, nil
}

// GenerateFeedback produces free-text tutoring feedback for a scored text.
func (s *OpenAIScorer) GenerateFeedback(parent context.Context, text string, taskType TaskType, band float64) (string, error) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	raw, err := s.complete(ctx, feedbackSystemPrompt(), buildFeedbackPrompt(text, taskType, band), false)
	if err != nil {
		return "", &ProviderError{Provider: s.Name(), Err: err}
	}
	return strings.TrimSpace(raw), nil
}

func (s *OpenAIScorer) complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	if !s.available || s.client == nil {
		return "", fmt.Errorf("openai scorer is not configured")
	}

	request := openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	if jsonMode {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, request)
	scoringDuration.WithLabelValues(s.Name(), s.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		scoringFailures.WithLabelValues(s.Name(), s.cfg.Model).Inc()
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		scoringFailures.WithLabelValues(s.Name(), s.cfg.Model).Inc()
		return "", fmt.Errorf("no choices returned from openai")
	}

	return resp.Choices[0].Message.Content, nil
}

// credentialUsable filters out empty keys and the placeholder values that
// ship in example env files.
func credentialUsable(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	lowered := strings.ToLower(key)
	return !strings.Contains(lowered, "your-") && !strings.Contains(lowered, "changeme") &&
		!strings.Contains(lowered, "placeholder")
}
