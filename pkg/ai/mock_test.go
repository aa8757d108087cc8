package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockScorerIsDeterministic(t *testing.T) {
	scorer := NewMockScorer()
	input := ScoringInput{
		TaskType: TaskWritingTask2,
		Text:     "Technology has changed education. Many students now learn through online platforms.",
		Language: "en",
	}

	first, err := scorer.Score(context.Background(), input)
	require.NoError(t, err)
	second, err := scorer.Score(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestMockScorerBandBounds(t *testing.T) {
	scorer := NewMockScorer()
	texts := []string{
		"",
		"Short.",
		"I think that modern technology, although sometimes distracting, has fundamentally improved how " +
			"students access information, because resources that once required a library visit are now " +
			"instantly available. However, teachers argue that this convenience reduces deep reading. " +
			"Therefore, a balance between digital tools and traditional study habits remains essential.",
	}

	for _, text := range texts {
		result, err := scorer.Score(context.Background(), ScoringInput{
			TaskType: TaskWritingTask2,
			Text:     text,
			Language: "en",
		})
		require.NoError(t, err)
		require.GreaterOrEqual(t, result.OverallBand, MinBand)
		require.LessOrEqual(t, result.OverallBand, MaxBand)
		require.GreaterOrEqual(t, result.Confidence, 0.0)
		require.LessOrEqual(t, result.Confidence, 1.0)

		for _, criterion := range result.Criteria {
			require.GreaterOrEqual(t, criterion.BandScore, MinBand)
			require.LessOrEqual(t, criterion.BandScore, MaxBand)
			require.GreaterOrEqual(t, criterion.Confidence, 0.0)
			require.LessOrEqual(t, criterion.Confidence, 1.0)
			// Half-point increments only.
			require.Zero(t, int(criterion.BandScore*10)%5)
		}
	}
}

func TestMockScorerCriteriaMatchTaskType(t *testing.T) {
	scorer := NewMockScorer()

	writing, err := scorer.Score(context.Background(), ScoringInput{
		TaskType: TaskWritingTask1,
		Text:     "The chart shows a steady increase in enrollment.",
		Language: "en",
	})
	require.NoError(t, err)
	require.Len(t, writing.Criteria, 4)
	require.Equal(t, CriterionTaskAchievement, writing.Criteria[0].Criterion)

	speaking, err := scorer.Score(context.Background(), ScoringInput{
		TaskType: TaskSpeakingPart1,
		Text:     "I really enjoy spending weekends with my family in my hometown.",
		Language: "en",
	})
	require.NoError(t, err)
	require.Len(t, speaking.Criteria, 4)
	require.Equal(t, CriterionFluency, speaking.Criteria[0].Criterion)
	require.Equal(t, CriterionPronunciation, speaking.Criteria[3].Criterion)
}

func TestMockScorerFeedbackVariesByBand(t *testing.T) {
	scorer := NewMockScorer()

	high, err := scorer.GenerateFeedback(context.Background(), "text", TaskWritingTask2, 7.5)
	require.NoError(t, err)
	low, err := scorer.GenerateFeedback(context.Background(), "text", TaskWritingTask2, 4.0)
	require.NoError(t, err)

	require.NotEqual(t, high, low)
}
