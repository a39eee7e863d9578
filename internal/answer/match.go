package answer

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MatchType tags which strategy accepted (or last rejected) an answer.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
	MatchFuzzy   MatchType = "fuzzy"
)

const (
	// PartialThreshold is the minimum length ratio for a substring match.
	PartialThreshold = 0.7

	// FuzzyThreshold is the minimum edit-distance similarity for a fuzzy match.
	FuzzyThreshold = 0.8
)

// Result is the outcome of validating one answer.
type Result struct {
	Correct    bool      `json:"is_correct"`
	Normalized string    `json:"normalized_answer"`
	MatchType  MatchType `json:"match_type"`
	Confidence float64   `json:"confidence"`
}

// Validate decides whether userAnswer matches correctAnswer.
// Strategies are tried in order and the first that accepts wins:
// exact (after Normalize), substring with a length ratio >= PartialThreshold,
// then Levenshtein similarity >= FuzzyThreshold. A rejected answer is tagged
// MatchExact with zero confidence.
func Validate(userAnswer, correctAnswer string) Result {
	user := Normalize(userAnswer)
	correct := Normalize(correctAnswer)

	if user == correct {
		return Result{Correct: true, Normalized: user, MatchType: MatchExact, Confidence: 1}
	}

	userLen := utf8.RuneCountInString(user)
	correctLen := utf8.RuneCountInString(correct)

	if userLen > 0 && correctLen > 0 &&
		(strings.Contains(correct, user) || strings.Contains(user, correct)) {
		confidence := min(
			float64(userLen)/float64(correctLen),
			float64(correctLen)/float64(userLen),
		)
		if confidence >= PartialThreshold {
			return Result{Correct: true, Normalized: user, MatchType: MatchPartial, Confidence: confidence}
		}
	}

	if max(userLen, correctLen) > 0 {
		similarity := Similarity(user, correct)
		if similarity >= FuzzyThreshold {
			return Result{Correct: true, Normalized: user, MatchType: MatchFuzzy, Confidence: similarity}
		}
	}

	return Result{Correct: false, Normalized: user, MatchType: MatchExact, Confidence: 0}
}

// ResolveChoice maps a 1-based option index typed by the user to the option
// text. Any other input is returned trimmed and unchanged.
func ResolveChoice(input string, options []string) string {
	input = strings.TrimSpace(input)
	if idx, err := strconv.Atoi(input); err == nil && idx >= 1 && idx <= len(options) {
		return options[idx-1]
	}
	return input
}
