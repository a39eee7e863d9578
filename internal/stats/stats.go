// Package stats derives user statistics from answer and quiz history.
package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/birdquiz/birdquiz/internal/quiz"
)

// RecentResultsWindow is the number of newest quiz results listed in a Summary.
const RecentResultsWindow = 20

// TrendWindow is the number of results compared on each side of the trend.
const TrendWindow = 5

// TrendMargin is the accuracy difference needed before a trend is reported.
const TrendMargin = 0.05

// Trend describes recent accuracy relative to the results before it.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// AnswerStats summarises individual answers.
type AnswerStats struct {
	TotalAnswers   int `json:"total_answers"`
	CorrectAnswers int `json:"correct_answers"`
	Accuracy       int `json:"accuracy"` // percent, rounded
}

// FromAnswers computes AnswerStats.
func FromAnswers(answers []quiz.Answer) AnswerStats {
	s := AnswerStats{TotalAnswers: len(answers)}
	for _, a := range answers {
		if a.Correct {
			s.CorrectAnswers++
		}
	}
	s.Accuracy = percent(s.CorrectAnswers, s.TotalAnswers)
	return s
}

// QuizStats summarises completed quizzes.
type QuizStats struct {
	TotalQuizzes   int           `json:"total_quizzes"`
	AverageScore   int           `json:"average_score"` // percent of all questions answered correctly
	BestScore      int           `json:"best_score"`    // best single-quiz percent
	MeanScore      float64       `json:"mean_score"`    // mean of Result.Score, two decimals
	TotalStudyTime time.Duration `json:"-"`
	AverageTime    time.Duration `json:"-"`
	CorrectAnswers int           `json:"correct_answers"`
	TotalAnswers   int           `json:"total_answers"`
	RecentTrend    Trend         `json:"recent_trend"`

	ByDifficulty map[string]DifficultyStats `json:"by_difficulty"`
}

// DifficultyStats aggregates the quizzes played at one difficulty level.
type DifficultyStats struct {
	Count           int           `json:"count"`
	AverageScore    float64       `json:"average_score"`    // mean of Result.Score
	AverageAccuracy float64       `json:"average_accuracy"` // percent
	AverageTime     time.Duration `json:"-"`
	CorrectAnswers  int           `json:"correct_answers"`
	TotalQuestions  int           `json:"total_questions"`
}

// FromResults computes QuizStats over all the given results, ordered newest
// first. RecentTrend only looks at the newest 2*TrendWindow of them.
func FromResults(results []quiz.Result) QuizStats {
	s := QuizStats{
		TotalQuizzes: len(results),
		RecentTrend:  TrendStable,
		ByDifficulty: make(map[string]DifficultyStats),
	}

	type acc struct {
		count, score, correct, total int
		time                         time.Duration
	}
	levels := make(map[string]*acc)

	var scoreSum int
	for _, r := range results {
		s.CorrectAnswers += r.CorrectAnswers
		s.TotalAnswers += r.TotalQuestions
		s.TotalStudyTime += r.TimeTaken
		s.BestScore = max(s.BestScore, percent(r.CorrectAnswers, r.TotalQuestions))
		scoreSum += r.Score

		level := r.DifficultyLevel
		if level == "" {
			level = string(quiz.DifficultyMixed)
		}
		a := levels[level]
		if a == nil {
			a = &acc{}
			levels[level] = a
		}
		a.count++
		a.score += r.Score
		a.correct += r.CorrectAnswers
		a.total += r.TotalQuestions
		a.time += r.TimeTaken
	}

	s.AverageScore = percent(s.CorrectAnswers, s.TotalAnswers)
	if n := len(results); n > 0 {
		s.MeanScore = round2(float64(scoreSum) / float64(n))
		s.AverageTime = (s.TotalStudyTime / time.Duration(n)).Round(time.Second)
	}
	for level, a := range levels {
		d := DifficultyStats{
			Count:          a.count,
			AverageScore:   round2(float64(a.score) / float64(a.count)),
			AverageTime:    (a.time / time.Duration(a.count)).Round(time.Second),
			CorrectAnswers: a.correct,
			TotalQuestions: a.total,
		}
		if a.total > 0 {
			d.AverageAccuracy = round2(float64(a.correct) / float64(a.total) * 100)
		}
		s.ByDifficulty[level] = d
	}
	s.RecentTrend = RecentTrend(results)
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecentTrend compares the mean accuracy of the newest TrendWindow results
// with the TrendWindow before them. Fewer than TrendWindow+1 results is stable.
func RecentTrend(results []quiz.Result) Trend {
	if len(results) <= TrendWindow {
		return TrendStable
	}
	recent := meanAccuracy(results[:TrendWindow])
	previous := meanAccuracy(results[TrendWindow:min(len(results), 2*TrendWindow)])
	switch {
	case recent > previous+TrendMargin:
		return TrendUp
	case recent < previous-TrendMargin:
		return TrendDown
	}
	return TrendStable
}

func meanAccuracy(results []quiz.Result) float64 {
	var sum float64
	for _, r := range results {
		sum += r.Accuracy()
	}
	return sum / float64(len(results))
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// HistoryReader is the read side of quiz.DataService.
type HistoryReader interface {
	AnswerHistory(ctx context.Context, userID string, limit int) ([]quiz.Answer, error)
	QuizHistory(ctx context.Context, userID string, limit int) ([]quiz.Result, error)
}

// Summary is everything the stats screen shows.
type Summary struct {
	Answers AnswerStats   `json:"answers"`
	Quizzes QuizStats     `json:"quizzes"`
	Streaks Streaks       `json:"streaks"`
	Recent  []quiz.Result `json:"recent_results"`
}

// Compute loads the user's history and builds a Summary. Quiz aggregates
// cover every stored result; Recent holds the newest RecentResultsWindow.
// now anchors the study-day streak.
func Compute(ctx context.Context, r HistoryReader, userID string, now time.Time) (*Summary, error) {
	answers, err := r.AnswerHistory(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("answer history: %w", err)
	}
	results, err := r.QuizHistory(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("quiz history: %w", err)
	}

	return &Summary{
		Answers: FromAnswers(answers),
		Quizzes: FromResults(results),
		Streaks: ComputeStreaks(answers, now),
		Recent:  results[:min(len(results), RecentResultsWindow)],
	}, nil
}
