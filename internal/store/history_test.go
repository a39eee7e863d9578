package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/birdquiz/birdquiz/internal/quiz"
)

type answerRow struct {
	question string
	correct  bool
}

func saveAnswers(t *testing.T, s *Store, userID string, specs ...answerRow) []quiz.Answer {
	t.Helper()
	var saved []quiz.Answer
	for i, sp := range specs {
		a, err := s.Answers().Insert(context.Background(), quiz.Answer{
			UserID:        userID,
			SessionID:     "s1",
			QuestionID:    sp.question,
			Submitted:     "スズメ",
			CorrectAnswer: "スズメ",
			Correct:       sp.correct,
			TimeTaken:     time.Duration(i+1) * 1500 * time.Millisecond,
			// Same second on purpose: ordering must come from the sequence.
			AnsweredAt: fixedNow,
		})
		if err != nil {
			t.Fatalf("insert answer %d: %v", i, err)
		}
		saved = append(saved, a)
	}
	return saved
}

func TestAnswerInsertAndHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved := saveAnswers(t, s, "u1",
		answerRow{"q1", true},
		answerRow{"q2", false},
		answerRow{"q3", true},
	)
	saveAnswers(t, s, "u2", answerRow{"q1", false})

	if saved[0].ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.Answers().History(ctx, "u1", QueryOpts{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"q3", "q2", "q1"} {
		if got[i].QuestionID != want {
			t.Errorf("history[%d] = %s, want %s (newest first)", i, got[i].QuestionID, want)
		}
	}
	if got[2].TimeTaken != 1500*time.Millisecond {
		t.Errorf("TimeTaken = %v, want 1.5s", got[2].TimeTaken)
	}
	if !got[0].AnsweredAt.Equal(fixedNow) {
		t.Errorf("AnsweredAt = %v, want %v", got[0].AnsweredAt, fixedNow)
	}
	if got[1].Correct || !got[0].Correct {
		t.Errorf("correct flags not round-tripped: %+v", got)
	}

	limited, err := s.Answers().History(ctx, "u1", QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(limited) != 2 || limited[0].QuestionID != "q3" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestAnswerHistoryPaging(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := range 5 {
		saveAnswers(t, s, "u1", answerRow{fmt.Sprintf("q%d", i), true})
	}

	// Sequences start at 1, so Before: 3 returns q1 and q0.
	page, err := s.Answers().History(ctx, "u1", QueryOpts{Before: 3})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page) != 2 || page[0].QuestionID != "q1" || page[1].QuestionID != "q0" {
		t.Errorf("page = %+v", page)
	}
}

func TestAnswerInsertRequiresUser(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Answers().Insert(context.Background(), quiz.Answer{QuestionID: "q1"}); err == nil {
		t.Error("expected error for anonymous answer")
	}
}

func TestIncorrectDeduplicated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saveAnswers(t, s, "u1",
		answerRow{"q1", false},
		answerRow{"q2", false},
		answerRow{"q1", false},
		answerRow{"q3", true},
		answerRow{"q4", false},
	)

	got, err := s.Answers().Incorrect(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("incorrect: %v", err)
	}
	want := []string{"q4", "q1", "q2"}
	if len(got) != len(want) {
		t.Fatalf("got %d answers, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].QuestionID != want[i] {
			t.Errorf("incorrect[%d] = %s, want %s", i, got[i].QuestionID, want[i])
		}
	}

	limited, err := s.Answers().Incorrect(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("incorrect: %v", err)
	}
	if len(limited) != 1 || limited[0].QuestionID != "q4" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestResultInsertAndHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := range 3 {
		_, err := s.Results().Insert(ctx, quiz.Result{
			UserID:          "u1",
			SessionID:       fmt.Sprintf("s%d", i),
			TotalQuestions:  10,
			CorrectAnswers:  5 + i,
			Score:           5 + i,
			TimeTaken:       time.Duration(60+i) * time.Second,
			DifficultyLevel: "mixed",
			Category:        "野鳥",
			Metadata: quiz.ResultMetadata{
				DifficultyDistribution: quiz.DifficultyDistribution{Easy: 3, Medium: 4, Hard: 3},
				Policy:                 "simple",
			},
			CreatedAt: fixedNow.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("insert result %d: %v", i, err)
		}
	}

	got, err := s.Results().History(ctx, "u1", QueryOpts{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	newest := got[0]
	if newest.SessionID != "s2" || newest.Score != 7 || newest.TimeTaken != 62*time.Second {
		t.Errorf("newest = %+v", newest)
	}
	if newest.Metadata.DifficultyDistribution.Medium != 4 || newest.Metadata.Policy != "simple" {
		t.Errorf("metadata = %+v", newest.Metadata)
	}

	window, err := s.Results().History(ctx, "u1", QueryOpts{From: fixedNow.Add(time.Minute)})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(window) != 2 {
		t.Errorf("len(window) = %d, want 2", len(window))
	}

	other, err := s.Results().History(ctx, "nobody", QueryOpts{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("unexpected results for other user: %+v", other)
	}
}

func TestResultInsertDefaults(t *testing.T) {
	s := openTestStore(t)

	res, err := s.Results().Insert(context.Background(), quiz.Result{UserID: "u1", TotalQuestions: 1})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if res.ID == "" || res.CreatedAt.IsZero() || res.DifficultyLevel != "mixed" {
		t.Errorf("defaults not applied: %+v", res)
	}
}
