package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/birdquiz/birdquiz/internal/quiz"
)

func answersOf(correct ...bool) []quiz.Answer {
	out := make([]quiz.Answer, len(correct))
	for i, c := range correct {
		out[i] = quiz.Answer{Correct: c}
	}
	return out
}

func result(correct, total int) quiz.Result {
	return quiz.Result{CorrectAnswers: correct, TotalQuestions: total, TimeTaken: time.Minute}
}

func TestFromAnswers(t *testing.T) {
	tests := []struct {
		name    string
		answers []quiz.Answer
		want    AnswerStats
	}{
		{"empty", nil, AnswerStats{}},
		{"all correct", answersOf(true, true), AnswerStats{2, 2, 100}},
		{"two of three", answersOf(true, false, true), AnswerStats{3, 2, 67}},
		{"none correct", answersOf(false), AnswerStats{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromAnswers(tt.answers); got != tt.want {
				t.Errorf("FromAnswers = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromResults(t *testing.T) {
	s := FromResults([]quiz.Result{result(8, 10), result(3, 10), result(5, 5)})

	if s.TotalQuizzes != 3 || s.CorrectAnswers != 16 || s.TotalAnswers != 25 {
		t.Errorf("totals = %+v", s)
	}
	if s.AverageScore != 64 {
		t.Errorf("AverageScore = %d, want 64", s.AverageScore)
	}
	if s.BestScore != 100 {
		t.Errorf("BestScore = %d, want 100", s.BestScore)
	}
	if s.TotalStudyTime != 3*time.Minute {
		t.Errorf("TotalStudyTime = %v", s.TotalStudyTime)
	}
	if s.RecentTrend != TrendStable {
		t.Errorf("RecentTrend = %q, want stable with few results", s.RecentTrend)
	}

	empty := FromResults(nil)
	if empty.AverageScore != 0 || empty.BestScore != 0 || empty.RecentTrend != TrendStable {
		t.Errorf("empty = %+v", empty)
	}
}

func TestFromResultsByDifficulty(t *testing.T) {
	level := func(d string, score, correct, total int, taken time.Duration) quiz.Result {
		return quiz.Result{DifficultyLevel: d, Score: score, CorrectAnswers: correct, TotalQuestions: total, TimeTaken: taken}
	}
	s := FromResults([]quiz.Result{
		level("easy", 8, 8, 10, 60*time.Second),
		level("easy", 5, 5, 10, 90*time.Second),
		level("hard", 3, 3, 4, 40*time.Second),
		level("", 1, 1, 3, 30*time.Second),
	})

	if s.MeanScore != 4.25 {
		t.Errorf("MeanScore = %v, want 4.25", s.MeanScore)
	}
	if s.AverageTime != 55*time.Second {
		t.Errorf("AverageTime = %v, want 55s", s.AverageTime)
	}

	tests := []struct {
		level string
		want  DifficultyStats
	}{
		{"easy", DifficultyStats{Count: 2, AverageScore: 6.5, AverageAccuracy: 65, AverageTime: 75 * time.Second, CorrectAnswers: 13, TotalQuestions: 20}},
		{"hard", DifficultyStats{Count: 1, AverageScore: 3, AverageAccuracy: 75, AverageTime: 40 * time.Second, CorrectAnswers: 3, TotalQuestions: 4}},
		{"mixed", DifficultyStats{Count: 1, AverageScore: 1, AverageAccuracy: 33.33, AverageTime: 30 * time.Second, CorrectAnswers: 1, TotalQuestions: 3}},
	}
	if len(s.ByDifficulty) != len(tests) {
		t.Errorf("ByDifficulty has %d levels, want %d: %+v", len(s.ByDifficulty), len(tests), s.ByDifficulty)
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := s.ByDifficulty[tt.level]; got != tt.want {
				t.Errorf("ByDifficulty[%s] = %+v, want %+v", tt.level, got, tt.want)
			}
		})
	}

	if empty := FromResults(nil); empty.MeanScore != 0 || empty.AverageTime != 0 || len(empty.ByDifficulty) != 0 {
		t.Errorf("empty = %+v", empty)
	}
}

func TestRecentTrend(t *testing.T) {
	repeat := func(r quiz.Result, n int) []quiz.Result {
		out := make([]quiz.Result, n)
		for i := range out {
			out[i] = r
		}
		return out
	}

	tests := []struct {
		name    string
		results []quiz.Result
		want    Trend
	}{
		{"five results", repeat(result(10, 10), 5), TrendStable},
		{"improving", append(repeat(result(9, 10), 5), repeat(result(6, 10), 5)...), TrendUp},
		{"declining", append(repeat(result(6, 10), 5), repeat(result(9, 10), 5)...), TrendDown},
		{"within margin", append(repeat(result(8, 10), 5), repeat(result(8, 10), 5)...), TrendStable},
		{"six results", append(repeat(result(10, 10), 5), result(5, 10)), TrendUp},
		{"older results ignored", append(append(repeat(result(7, 10), 5), repeat(result(7, 10), 5)...), repeat(result(0, 10), 5)...), TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecentTrend(tt.results); got != tt.want {
				t.Errorf("RecentTrend = %q, want %q", got, tt.want)
			}
		})
	}
}

type fakeHistory struct {
	answers []quiz.Answer
	results []quiz.Result
	err     error
	limit   int
}

func (f *fakeHistory) AnswerHistory(context.Context, string, int) ([]quiz.Answer, error) {
	return f.answers, f.err
}

// QuizHistory honours limit the way the store does.
func (f *fakeHistory) QuizHistory(_ context.Context, _ string, limit int) ([]quiz.Result, error) {
	f.limit = limit
	if limit > 0 && limit < len(f.results) {
		return f.results[:limit], f.err
	}
	return f.results, f.err
}

func TestCompute(t *testing.T) {
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	h := &fakeHistory{
		answers: []quiz.Answer{
			{Correct: true, AnsweredAt: now},
			{Correct: true, AnsweredAt: now.Add(-24 * time.Hour)},
			{Correct: false, AnsweredAt: now.Add(-48 * time.Hour)},
		},
		results: []quiz.Result{result(2, 3)},
	}

	s, err := Compute(context.Background(), h, "u1", now)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if s.Answers.Accuracy != 67 || s.Quizzes.TotalQuizzes != 1 || len(s.Recent) != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.Streaks.CurrentCorrect != 2 || s.Streaks.StudyDays != 3 {
		t.Errorf("streaks = %+v", s.Streaks)
	}

	h.err = errors.New("db down")
	if _, err := Compute(context.Background(), h, "u1", now); err == nil {
		t.Error("expected error")
	}
}

func TestComputeCoversAllResults(t *testing.T) {
	h := &fakeHistory{}
	for range RecentResultsWindow + 5 {
		h.results = append(h.results, result(1, 2))
	}

	s, err := Compute(context.Background(), h, "u1", time.Now())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if s.Quizzes.TotalQuizzes != 25 {
		t.Errorf("TotalQuizzes = %d, want 25", s.Quizzes.TotalQuizzes)
	}
	if s.Quizzes.TotalStudyTime != 25*time.Minute {
		t.Errorf("TotalStudyTime = %v, want 25m", s.Quizzes.TotalStudyTime)
	}
	if s.Quizzes.TotalAnswers != 50 {
		t.Errorf("TotalAnswers = %d, want 50", s.Quizzes.TotalAnswers)
	}
	if len(s.Recent) != RecentResultsWindow {
		t.Errorf("len(Recent) = %d, want %d", len(s.Recent), RecentResultsWindow)
	}
}
