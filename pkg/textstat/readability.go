package textstat

import "strings"

// fleschReadingEase applies the standard reading-ease formula over syllable
// and sentence counts, clamped to the 0-100 scale.
func fleschReadingEase(words []string, sentences []string) float64 {
	if len(words) == 0 || len(sentences) == 0 {
		return NeutralReadability
	}

	var syllables int
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(len(sentences))
	syllablesPerWord := float64(syllables) / float64(len(words))

	score := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// countSyllables approximates syllables by counting vowel groups, discounting
// a trailing silent e. Every word counts as at least one syllable.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	if word == "" {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
