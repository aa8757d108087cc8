package textstat

import "strings"

var connectors = map[string]struct{}{
	"however": {}, "therefore": {}, "furthermore": {}, "moreover": {},
	"consequently": {}, "nevertheless": {}, "although": {}, "because": {},
	"additionally": {}, "firstly": {}, "secondly": {}, "finally": {},
	"thus": {}, "hence": {}, "meanwhile": {}, "similarly": {},
	"instead": {}, "besides": {}, "overall": {}, "whereas": {},
}

// coherenceScore averages the factors that could actually be computed:
// connector density, lexical-repetition concentration, and sentence-length
// variation. Factors that cannot be computed (single sentence, no content
// words) are excluded from the average rather than zero-filled.
func coherenceScore(sentences []string, words []string) float64 {
	factors := make([]float64, 0, 3)

	if len(sentences) > 0 {
		var hits int
		for _, w := range words {
			if _, ok := connectors[w]; ok {
				hits++
			}
		}
		density := float64(hits) / float64(len(sentences))
		if density > 1 {
			density = 1
		}
		factors = append(factors, density)
	}

	if repetition, ok := repetitionConcentration(words); ok {
		factors = append(factors, repetition)
	}

	if len(sentences) >= 2 {
		factors = append(factors, lengthVariationFactor(sentences))
	}

	if len(factors) == 0 {
		return NeutralScore
	}

	var sum float64
	for _, f := range factors {
		sum += f
	}
	return sum / float64(len(factors))
}

// repetitionConcentration rewards moderate reuse of content words. Zero reuse
// reads as disconnected; a single word dominating reads as circular.
func repetitionConcentration(words []string) (float64, bool) {
	counts := map[string]int{}
	total := 0
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		counts[w]++
		total++
	}
	if total == 0 {
		return 0, false
	}

	var max int
	for _, c := range counts {
		if c > max {
			max = c
		}
	}

	concentration := float64(max) / float64(total)
	switch {
	case concentration <= 0.1:
		return 0.4 + concentration*4, true
	case concentration <= 0.3:
		return 0.8, true
	default:
		score := 0.8 - (concentration-0.3)*1.5
		if score < 0.2 {
			score = 0.2
		}
		return score, true
	}
}

// lengthVariationFactor maps sentence-length variance into 0-1, where some
// variation scores higher than monotone or wildly uneven sentences.
func lengthVariationFactor(sentences []string) float64 {
	variance := sentenceLengthVariance(sentences)
	switch {
	case variance < 2:
		return 0.4
	case variance < 30:
		return 0.8
	default:
		return 0.5
	}
}

var writingVocabulary = []string{
	"argue", "argument", "claim", "conclusion", "evidence", "opinion",
	"advantage", "disadvantage", "benefit", "drawback", "trend", "increase",
	"decrease", "percentage", "proportion", "data", "figure", "chart",
	"graph", "agree", "disagree", "discuss", "issue", "problem", "solution",
	"society", "government", "development",
}

var speakingVocabulary = []string{
	"think", "feel", "believe", "like", "enjoy", "prefer", "usually",
	"sometimes", "often", "really", "actually", "experience", "remember",
	"favourite", "favorite", "hometown", "family", "friend", "hobby",
}

// taskRelevance is the ratio of task-specific vocabulary hits to total
// tokens, scaled up for writing tasks where topical vocabulary is sparser
// relative to essay length.
func taskRelevance(words []string, taskType string) float64 {
	vocabulary := speakingVocabulary
	scale := 8.0
	if strings.HasPrefix(taskType, "writing") {
		vocabulary = writingVocabulary
		scale = 12.0
	}

	lookup := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		lookup[v] = struct{}{}
	}

	var hits int
	for _, w := range words {
		if _, ok := lookup[w]; ok {
			hits++
		}
	}

	score := float64(hits) / float64(len(words)) * scale
	if score > 1 {
		score = 1
	}
	if hits == 0 {
		return 0.3
	}
	return score
}
