package textstat

import (
	"strings"
	"unicode"
)

// NeutralScore is the documented default for 0-1 scaled scores when a factor
// cannot be computed (empty input, analysis failure). Feature analysis is
// advisory, so Extract degrades to neutral values instead of failing.
const NeutralScore = 0.5

// NeutralReadability is the mid-point of the 0-100 reading-ease scale.
const NeutralReadability = 50.0

// GrammarIssue flags a sentence that matched one of the heuristic checks.
// The checks are approximate pattern cues, not a grammar engine.
type GrammarIssue struct {
	SentenceIndex int    `json:"sentence_index"`
	Severity      string `json:"severity"`
	Description   string `json:"description"`
}

// Analysis is the read-only feature bundle derived from a submission.
// It is computed once per request and never mutated afterwards.
type Analysis struct {
	WordCount           int                `json:"word_count"`
	SentenceCount       int                `json:"sentence_count"`
	AvgSentenceLength   float64            `json:"avg_sentence_length"`
	ReadabilityScore    float64            `json:"readability_score"`
	VocabularyDiversity float64            `json:"vocabulary_diversity"`
	GrammarIssues       []GrammarIssue     `json:"grammar_issues"`
	CoherenceScore      float64            `json:"coherence_score"`
	TaskRelevanceScore  float64            `json:"task_relevance_score"`
	ComplexityMetrics   map[string]float64 `json:"complexity_metrics"`
}

// Extractor computes linguistic features from submitted text. It is pure and
// deterministic; the zero value is ready to use.
type Extractor struct{}

// NewExtractor returns a feature extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract analyses text for the given task type. It never returns an error:
// on empty or degenerate input every count is zero and every score sits at
// its neutral default.
func (e *Extractor) Extract(text string, taskType string) Analysis {
	sentences := SplitSentences(text)
	words := Tokenize(text)

	analysis := Analysis{
		WordCount:           len(words),
		SentenceCount:       len(sentences),
		ReadabilityScore:    NeutralReadability,
		VocabularyDiversity: NeutralScore,
		GrammarIssues:       []GrammarIssue{},
		CoherenceScore:      NeutralScore,
		TaskRelevanceScore:  NeutralScore,
		ComplexityMetrics:   map[string]float64{},
	}

	// Empty input keeps counts at zero and every score at its neutral default.
	if len(words) == 0 {
		return analysis
	}

	if len(sentences) > 0 {
		analysis.AvgSentenceLength = float64(len(words)) / float64(len(sentences))
	}

	analysis.ReadabilityScore = fleschReadingEase(words, sentences)
	analysis.VocabularyDiversity = typeTokenRatio(words)
	analysis.GrammarIssues = detectGrammarIssues(sentences)
	analysis.CoherenceScore = coherenceScore(sentences, words)
	analysis.TaskRelevanceScore = taskRelevance(words, taskType)
	analysis.ComplexityMetrics = complexityMetrics(words, sentences)

	return analysis
}

// SplitSentences breaks text on terminal punctuation, dropping empties.
func SplitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		trimmed := strings.TrimSpace(s)
		if trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// Tokenize lowercases and strips punctuation, returning word tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		token := strings.ToLower(strings.Trim(f, "'"))
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {},
	"she": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "they": {}, "their": {}, "i": {},
	"you": {}, "we": {}, "not": {}, "but": {}, "his": {}, "her": {},
}

// typeTokenRatio measures vocabulary diversity after stop-word removal.
func typeTokenRatio(words []string) float64 {
	content := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; !stop {
			content = append(content, w)
		}
	}
	if len(content) == 0 {
		return NeutralScore
	}

	unique := make(map[string]struct{}, len(content))
	for _, w := range content {
		unique[w] = struct{}{}
	}
	return float64(len(unique)) / float64(len(content))
}

func complexityMetrics(words []string, sentences []string) map[string]float64 {
	metrics := map[string]float64{}

	var longWords int
	var totalSyllables int
	for _, w := range words {
		if len(w) >= 7 {
			longWords++
		}
		totalSyllables += countSyllables(w)
	}

	metrics["long_word_ratio"] = float64(longWords) / float64(len(words))
	metrics["syllables_per_word"] = float64(totalSyllables) / float64(len(words))
	if len(sentences) > 0 {
		metrics["words_per_sentence"] = float64(len(words)) / float64(len(sentences))
		metrics["sentence_length_variance"] = sentenceLengthVariance(sentences)
	}

	var subordinators int
	for _, w := range words {
		switch w {
		case "although", "because", "since", "unless", "whereas", "while", "if", "when":
			subordinators++
		}
	}
	metrics["subordination_density"] = float64(subordinators) / float64(len(words))

	return metrics
}

func sentenceLengthVariance(sentences []string) float64 {
	if len(sentences) < 2 {
		return 0
	}

	lengths := make([]float64, len(sentences))
	var sum float64
	for i, s := range sentences {
		lengths[i] = float64(len(Tokenize(s)))
		sum += lengths[i]
	}
	mean := sum / float64(len(lengths))

	var variance float64
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}
	return variance / float64(len(lengths))
}
