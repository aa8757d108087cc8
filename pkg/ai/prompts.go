package ai

import (
	"fmt"
	"strings"
)

func scoringSystemPrompt(taskType TaskType) string {
	criteria := strings.Join(taskType.Criteria(), ", ")
	return "You are a certified IELTS examiner. Score the submission against the official band " +
		"descriptors and respond with a single JSON object containing overall_band_score (1.0-9.0, " +
		"half-point increments), confidence (0.0-1.0), detailed_feedback, and criteria_scores: an " +
		"array with one entry per criterion (" + criteria + "), each carrying criterion, band_score, " +
		"confidence, feedback, strengths, weaknesses, and suggestions. Return JSON only."
}

func buildScoringPrompt(input ScoringInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Task Type\n")
	builder.WriteString(string(input.TaskType))
	if strings.TrimSpace(input.Prompt) != "" {
		builder.WriteString("\n\n## Task Prompt\n")
		builder.WriteString(input.Prompt)
	}
	builder.WriteString("\n\n## Language\n")
	builder.WriteString(input.Language)
	builder.WriteString("\n\n## Submission\n")
	builder.WriteString(input.Text)
	builder.WriteString("\n\nScore every criterion for this task type. Return JSON.")
	return builder.String()
}

func feedbackSystemPrompt() string {
	return "You are an IELTS tutor. Write concise, encouraging feedback explaining how the " +
		"candidate can move up from their current band. Plain text, no JSON."
}

func buildFeedbackPrompt(text string, taskType TaskType, band float64) string {
	return fmt.Sprintf("Task type: %s\nCurrent band: %.1f\n\nSubmission:\n%s\n\nWrite 3-5 sentences of feedback.",
		taskType, band, text)
}
