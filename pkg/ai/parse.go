package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Providers occasionally wrap JSON in markdown fences or prose despite the
// response-format instruction; the payload is cleaned and schema-checked
// before it is accepted.
const scoringResponseSchema = `{
  "type": "object",
  "required": ["overall_band_score", "confidence", "criteria_scores"],
  "properties": {
    "overall_band_score": {"type": "number"},
    "confidence": {"type": "number"},
    "detailed_feedback": {"type": "string"},
    "criteria_scores": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["criterion", "band_score"],
        "properties": {
          "criterion": {"type": "string"},
          "band_score": {"type": "number"},
          "confidence": {"type": "number"},
          "feedback": {"type": "string"},
          "strengths": {"type": "array", "items": {"type": "string"}},
          "weaknesses": {"type": "array", "items": {"type": "string"}},
          "suggestions": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var scoringSchema = jsonschema.MustCompileString("scoring_response.json", scoringResponseSchema)

// cleanModelJSON strips markdown fences and surrounding prose, returning the
// outermost JSON object.
func cleanModelJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if json.Valid([]byte(cleaned)) {
		return cleaned, nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		candidate := cleaned[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("response contains no valid JSON object")
}

// parseScoringResponse turns a raw model reply into a validated result for
// the given task type. Missing criteria fail the parse: the scorer contract
// forbids partially populated results.
func parseScoringResponse(raw string, taskType TaskType, model string) (ScoringResult, error) {
	payload, err := cleanModelJSON(raw)
	if err != nil {
		return ScoringResult{}, err
	}

	var generic interface{}
	if err := json.Unmarshal([]byte(payload), &generic); err != nil {
		return ScoringResult{}, fmt.Errorf("parse scoring json: %w", err)
	}
	if err := scoringSchema.Validate(generic); err != nil {
		return ScoringResult{}, fmt.Errorf("scoring response schema: %w", err)
	}

	var result ScoringResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return ScoringResult{}, fmt.Errorf("parse scoring json: %w", err)
	}

	expected := taskType.Criteria()
	byName := make(map[string]CriterionScore, len(result.Criteria))
	for _, criterion := range result.Criteria {
		byName[strings.ToLower(strings.TrimSpace(criterion.Criterion))] = criterion
	}

	ordered := make([]CriterionScore, 0, len(expected))
	for _, name := range expected {
		criterion, ok := byName[name]
		if !ok {
			return ScoringResult{}, fmt.Errorf("criterion %q missing from scoring response", name)
		}
		criterion.Criterion = name
		criterion.BandScore = RoundToBand(criterion.BandScore)
		criterion.Confidence = clampUnit(criterion.Confidence)
		if criterion.Strengths == nil {
			criterion.Strengths = []string{}
		}
		if criterion.Weaknesses == nil {
			criterion.Weaknesses = []string{}
		}
		if criterion.Suggestions == nil {
			criterion.Suggestions = []string{}
		}
		ordered = append(ordered, criterion)
	}

	result.Criteria = ordered
	result.OverallBand = RoundToBand(result.OverallBand)
	result.Confidence = clampUnit(result.Confidence)
	result.Model = model
	return result, nil
}

// RoundToBand snaps a score to the nearest half band and clamps it to the
// 1.0-9.0 range.
func RoundToBand(score float64) float64 {
	rounded := math.Round(score*2) / 2
	if rounded < MinBand {
		return MinBand
	}
	if rounded > MaxBand {
		return MaxBand
	}
	return rounded
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
