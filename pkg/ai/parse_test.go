package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validWritingResponse = `{
  "overall_band_score": 6.4,
  "confidence": 0.85,
  "detailed_feedback": "A solid essay with room to grow.",
  "criteria_scores": [
    {"criterion": "task_achievement", "band_score": 6.0, "confidence": 0.8, "feedback": "Addresses the task."},
    {"criterion": "coherence_cohesion", "band_score": 6.5, "confidence": 0.8, "feedback": "Mostly well organised."},
    {"criterion": "lexical_resource", "band_score": 6.3, "confidence": 0.9, "feedback": "Adequate range."},
    {"criterion": "grammatical_range_accuracy", "band_score": 7.0, "confidence": 0.9, "feedback": "Few errors."}
  ]
}`

func TestParseScoringResponseRoundsAndOrders(t *testing.T) {
	result, err := parseScoringResponse(validWritingResponse, TaskWritingTask2, "gpt-4o-mini")
	require.NoError(t, err)

	require.Equal(t, 6.5, result.OverallBand)
	require.Equal(t, 0.85, result.Confidence)
	require.Equal(t, "gpt-4o-mini", result.Model)
	require.Len(t, result.Criteria, 4)
	require.Equal(t, CriterionTaskAchievement, result.Criteria[0].Criterion)
	require.Equal(t, 6.5, result.Criteria[2].BandScore)
	require.NotNil(t, result.Criteria[0].Strengths)
}

func TestParseScoringResponseStripsMarkdownFence(t *testing.T) {
	fenced := "```json\n" + validWritingResponse + "\n```"

	result, err := parseScoringResponse(fenced, TaskWritingTask2, "claude-3-5-haiku-latest")
	require.NoError(t, err)
	require.Equal(t, 6.5, result.OverallBand)
}

func TestParseScoringResponseExtractsEmbeddedObject(t *testing.T) {
	noisy := "Here is the assessment you asked for:\n" + validWritingResponse + "\nLet me know if you need more."

	result, err := parseScoringResponse(noisy, TaskWritingTask2, "gpt-4o-mini")
	require.NoError(t, err)
	require.Len(t, result.Criteria, 4)
}

func TestParseScoringResponseRejectsMissingCriterion(t *testing.T) {
	partial := `{
	  "overall_band_score": 6.0,
	  "confidence": 0.8,
	  "criteria_scores": [
	    {"criterion": "task_achievement", "band_score": 6.0}
	  ]
	}`

	_, err := parseScoringResponse(partial, TaskWritingTask2, "gpt-4o-mini")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing")
}

func TestParseScoringResponseRejectsNonJSON(t *testing.T) {
	_, err := parseScoringResponse("I cannot score this submission.", TaskWritingTask2, "gpt-4o-mini")
	require.Error(t, err)
}

func TestParseScoringResponseRejectsSchemaViolation(t *testing.T) {
	wrongTypes := `{
	  "overall_band_score": "six",
	  "confidence": 0.8,
	  "criteria_scores": []
	}`

	_, err := parseScoringResponse(wrongTypes, TaskWritingTask2, "gpt-4o-mini")
	require.Error(t, err)
}

func TestParseScoringResponseClampsOutOfRange(t *testing.T) {
	inflated := `{
	  "overall_band_score": 12.0,
	  "confidence": 1.4,
	  "criteria_scores": [
	    {"criterion": "fluency_coherence", "band_score": 0.2, "confidence": -0.1},
	    {"criterion": "lexical_resource", "band_score": 9.8, "confidence": 0.5},
	    {"criterion": "grammatical_range_accuracy", "band_score": 5.0, "confidence": 0.5},
	    {"criterion": "pronunciation", "band_score": 5.0, "confidence": 0.5}
	  ]
	}`

	result, err := parseScoringResponse(inflated, TaskSpeakingPart1, "gpt-4o-mini")
	require.NoError(t, err)
	require.Equal(t, MaxBand, result.OverallBand)
	require.Equal(t, 1.0, result.Confidence)
	require.Equal(t, MinBand, result.Criteria[0].BandScore)
	require.Equal(t, 0.0, result.Criteria[0].Confidence)
	require.Equal(t, MaxBand, result.Criteria[1].BandScore)
}

func TestRoundToBand(t *testing.T) {
	require.Equal(t, 6.5, RoundToBand(6.4))
	require.Equal(t, 6.0, RoundToBand(6.1))
	require.Equal(t, 9.0, RoundToBand(11.0))
	require.Equal(t, 1.0, RoundToBand(0.0))
	require.Equal(t, 7.5, RoundToBand(7.5))
}

func TestTaskTypeValidation(t *testing.T) {
	require.True(t, TaskWritingTask2.Valid())
	require.True(t, TaskSpeakingPart3.Valid())
	require.False(t, TaskType("writing_task_9").Valid())
	require.True(t, TaskWritingTask1.IsWriting())
	require.False(t, TaskSpeakingPart1.IsWriting())
}
