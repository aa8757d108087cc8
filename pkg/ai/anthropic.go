package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AnthropicConfig defines configuration options for the Anthropic scorer.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// AnthropicScorer implements Scorer against the Anthropic Messages API.
type AnthropicScorer struct {
	client    anthropic.Client
	cfg       AnthropicConfig
	available bool
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewAnthropicScorer builds the scorer; availability is fixed at construction.
func NewAnthropicScorer(cfg AnthropicConfig) *AnthropicScorer {
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
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

	scorer := &AnthropicScorer{
		cfg:       cfg,
		available: credentialUsable(cfg.APIKey),
		tracer:    otel.Tracer("github.com/bandwise/bandwise-go-api/pkg/ai/anthropic"),
		logger:    logger.With().Str("component", "anthropic_scorer").Logger(),
	}

	if scorer.available {
		scorer.client = anthropic.NewClient(option.WithAPIKey(strings.TrimSpace(cfg.APIKey)))
	}

	return scorer
}

// Name implements Scorer.
func (s *AnthropicScorer) Name() string { return "anthropic" }

// Available implements Scorer.
func (s *AnthropicScorer) Available() bool { return s.available }

// Score sends the submission to Anthropic and parses the structured reply.
func (s *AnthropicScorer) Score(parent context.Context, input ScoringInput) (ScoringResult, error) {
	ctx, span := s.tracer.Start(parent, "anthropic.score", trace.WithAttributes(
		attribute.String("model", s.cfg.Model),
		attribute.String("task_type", string(input.TaskType)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	raw, err := s.complete(ctx, scoringSystemPrompt(input.TaskType), buildScoringPrompt(input))
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
func (s *AnthropicScorer) GenerateFeedback(parent context.Context, text string, taskType TaskType, band float64) (string, error) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	raw, err := s.complete(ctx, feedbackSystemPrompt(), buildFeedbackPrompt(text, taskType, band))
	if err != nil {
		return "", &ProviderError{Provider: s.Name(), Err: err}
	}
	return strings.TrimSpace(raw), nil
}

func (s *AnthropicScorer) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !s.available {
		return "", fmt.Errorf("anthropic scorer is not configured")
	}

	start := time.Now()
	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.cfg.Model),
		MaxTokens: int64(s.cfg.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	scoringDuration.WithLabelValues(s.Name(), s.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		scoringFailures.WithLabelValues(s.Name(), s.cfg.Model).Inc()
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}

	scoringFailures.WithLabelValues(s.Name(), s.cfg.Model).Inc()
	return "", fmt.Errorf("no text content in anthropic response")
}
