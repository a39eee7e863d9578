package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/birdquiz/birdquiz/internal/quiz"
)

// Policy selects how a session score is derived from its answers.
type Policy string

const (
	// PolicySimple scores one point per correct answer.
	PolicySimple Policy = "simple"

	// PolicyWeighted awards difficulty-based points plus a time bonus,
	// then applies an accuracy multiplier.
	PolicyWeighted Policy = "weighted"
)

// DefaultPolicy is the policy used when none is configured.
const DefaultPolicy = PolicySimple

// Weighted policy constants.
const (
	// BonusWindow is the answer time within which a time bonus is awarded.
	BonusWindow = 30 * time.Second

	// MaxTimeBonus is the bonus for an instant answer; it decays linearly to 0 at BonusWindow.
	MaxTimeBonus = 5.0
)

// basePoints maps a question difficulty to its weighted-policy points.
var basePoints = map[quiz.Difficulty]float64{
	quiz.DifficultyEasy:   10,
	quiz.DifficultyMedium: 15,
	quiz.DifficultyHard:   20,
}

// ParsePolicy parses a policy name; the empty string yields DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return DefaultPolicy, nil
	case PolicySimple, PolicyWeighted:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown scoring policy %q", s)
}

// Calculate computes the session score for answers against questions.
// An empty answer list scores 0 under every policy.
func Calculate(p Policy, answers []quiz.Answer, questions []quiz.Question) int {
	if len(answers) == 0 {
		return 0
	}
	if p == PolicyWeighted {
		return weighted(answers, questions)
	}
	return CountCorrect(answers)
}

// CountCorrect returns the number of correct answers.
func CountCorrect(answers []quiz.Answer) int {
	n := 0
	for _, a := range answers {
		if a.Correct {
			n++
		}
	}
	return n
}

func weighted(answers []quiz.Answer, questions []quiz.Question) int {
	byID := make(map[string]quiz.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var total float64
	for _, a := range answers {
		if !a.Correct {
			continue
		}
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		points, ok := basePoints[q.Difficulty]
		if !ok {
			points = basePoints[quiz.DifficultyEasy]
		}
		total += points + TimeBonus(a.TimeTaken)
	}

	return int(math.Round(total * AccuracyMultiplier(CountCorrect(answers), len(questions))))
}

// TimeBonus returns max(0, (30 - t)/30 * 5) for answers within BonusWindow, else 0.
func TimeBonus(taken time.Duration) float64 {
	if taken < 0 {
		taken = 0
	}
	if taken > BonusWindow {
		return 0
	}
	secs := taken.Seconds()
	window := BonusWindow.Seconds()
	return math.Max(0, (window-secs)/window*MaxTimeBonus)
}

// AccuracyMultiplier returns 1.2 at >= 90% accuracy, 1.1 at >= 80%, else 1.0.
// total == 0 yields 1.0.
func AccuracyMultiplier(correct, total int) float64 {
	if total == 0 {
		return 1
	}
	accuracy := float64(correct) / float64(total)
	switch {
	case accuracy >= 0.9:
		return 1.2
	case accuracy >= 0.8:
		return 1.1
	default:
		return 1
	}
}
