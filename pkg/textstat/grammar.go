package textstat

import "strings"

// Severity tags for grammar issues.
const (
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
)

var agreementCues = []string{
	" he have ", " she have ", " it have ",
	" he do ", " she do ", " it do ",
	" they has ", " they is ", " they was ",
	" i is ", " i has ", " i were ",
	" we is ", " we has ", " you is ", " you has ",
}

var pastMarkers = []string{"yesterday", "ago", "last week", "last year", "last month"}

// detectGrammarIssues runs the pattern-based checks over each sentence. The
// cues are explicitly approximate: a flagged sentence is a candidate for
// review, not a confirmed error.
func detectGrammarIssues(sentences []string) []GrammarIssue {
	issues := []GrammarIssue{}

	for idx, sentence := range sentences {
		padded := " " + strings.ToLower(sentence) + " "

		for _, cue := range agreementCues {
			if strings.Contains(padded, cue) {
				issues = append(issues, GrammarIssue{
					SentenceIndex: idx,
					Severity:      SeverityModerate,
					Description:   "possible subject-verb agreement error near \"" + strings.TrimSpace(cue) + "\"",
				})
				break
			}
		}

		if hasArticleVowelIssue(padded) {
			issues = append(issues, GrammarIssue{
				SentenceIndex: idx,
				Severity:      SeverityMinor,
				Description:   "article \"a\" used before a vowel sound",
			})
		}

		if hasTenseMixing(padded) {
			issues = append(issues, GrammarIssue{
				SentenceIndex: idx,
				Severity:      SeverityMinor,
				Description:   "past time marker combined with future tense",
			})
		}
	}

	return issues
}

// hasArticleVowelIssue flags "a" directly followed by a word starting with a
// vowel letter. "a university" style exceptions are ignored on purpose; the
// cue stays cheap.
func hasArticleVowelIssue(padded string) bool {
	tokens := strings.Fields(padded)
	for i := 0; i < len(tokens)-1; i++ {
		if tokens[i] != "a" {
			continue
		}
		next := tokens[i+1]
		if next != "" && strings.ContainsRune("aeio", rune(next[0])) {
			return true
		}
	}
	return false
}

func hasTenseMixing(padded string) bool {
	if !strings.Contains(padded, " will ") {
		return false
	}
	for _, marker := range pastMarkers {
		if strings.Contains(padded, marker) {
			return true
		}
	}
	return false
}
