package ai

import (
	"context"
	"errors"
	"fmt"
)

// TaskType identifies the IELTS module/part being scored.
type TaskType string

// Supported task types.
const (
	TaskWritingTask1  TaskType = "writing_task_1"
	TaskWritingTask2  TaskType = "writing_task_2"
	TaskSpeakingPart1 TaskType = "speaking_part_1"
	TaskSpeakingPart2 TaskType = "speaking_part_2"
	TaskSpeakingPart3 TaskType = "speaking_part_3"
)

// Band score limits. IELTS bands run 1.0-9.0 in half-point increments.
const (
	MinBand = 1.0
	MaxBand = 9.0
)

// IELTS assessment criteria keys.
const (
	CriterionTaskAchievement  = "task_achievement"
	CriterionCoherence        = "coherence_cohesion"
	CriterionLexicalResource  = "lexical_resource"
	CriterionGrammaticalRange = "grammatical_range_accuracy"
	CriterionFluency          = "fluency_coherence"
	CriterionPronunciation    = "pronunciation"
)

// Valid reports whether the task type is one of the supported values.
func (t TaskType) Valid() bool {
	switch t {
	case TaskWritingTask1, TaskWritingTask2, TaskSpeakingPart1, TaskSpeakingPart2, TaskSpeakingPart3:
		return true
	}
	return false
}

// IsWriting reports whether the task belongs to the writing module.
func (t TaskType) IsWriting() bool {
	return t == TaskWritingTask1 || t == TaskWritingTask2
}

// Criteria returns the assessment criteria for the task type, in the order
// they appear in scoring responses.
func (t TaskType) Criteria() []string {
	if t.IsWriting() {
		return []string{
			CriterionTaskAchievement,
			CriterionCoherence,
			CriterionLexicalResource,
			CriterionGrammaticalRange,
		}
	}
	return []string{
		CriterionFluency,
		CriterionLexicalResource,
		CriterionGrammaticalRange,
		CriterionPronunciation,
	}
}

// ScoringInput carries a single submission to a provider.
type ScoringInput struct {
	TaskType TaskType
	Text     string
	Prompt   string
	Language string
}

// CriterionScore is one row of an assessment, one per IELTS criterion.
type CriterionScore struct {
	Criterion   string   `json:"criterion"`
	BandScore   float64  `json:"band_score"`
	Confidence  float64  `json:"confidence"`
	Feedback    string   `json:"feedback"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
}

// ScoringResult is the fully populated outcome of one provider call. A scorer
// must either return a complete result or an error, never a partial result.
type ScoringResult struct {
	OverallBand float64          `json:"overall_band_score"`
	Confidence  float64          `json:"confidence"`
	Criteria    []CriterionScore `json:"criteria_scores"`
	Feedback    string           `json:"detailed_feedback"`
	Model       string           `json:"model"`
}

// Scorer is the uniform provider contract. Implementations set availability
// once at construction; the flag is not mutated during request handling.
type Scorer interface {
	Name() string
	Available() bool
	Score(ctx context.Context, input ScoringInput) (ScoringResult, error)
	GenerateFeedback(ctx context.Context, text string, taskType TaskType, band float64) (string, error)
}

// ErrNoProvider indicates the registry could not select any scorer. With the
// mock scorer registered this should be unreachable, but it is guarded
// explicitly.
var ErrNoProvider = errors.New("no scoring provider available")

// ProviderError wraps a failure from a specific provider so callers can
// attribute the cause without string matching.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
