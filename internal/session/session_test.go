package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/birdquiz/birdquiz/internal/answer"
	"github.com/birdquiz/birdquiz/internal/quiz"
	"github.com/birdquiz/birdquiz/internal/scoring"
)

type fakeData struct {
	questions []quiz.Question
	fetchErr  error

	userID string

	answerErr error
	resultErr error

	fetches int
	answers []quiz.Answer
	results []quiz.Result
}

func (f *fakeData) FetchQuestions(_ context.Context, count int, _ quiz.Filter) ([]quiz.Question, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.questions[:min(count, len(f.questions))], nil
}

func (f *fakeData) InsertAnswer(_ context.Context, a quiz.Answer) (quiz.Answer, error) {
	f.answers = append(f.answers, a)
	if f.answerErr != nil {
		return quiz.Answer{}, f.answerErr
	}
	return a, nil
}

func (f *fakeData) InsertQuizResult(_ context.Context, r quiz.Result) (quiz.Result, error) {
	f.results = append(f.results, r)
	if f.resultErr != nil {
		return quiz.Result{}, f.resultErr
	}
	r.ID = fmt.Sprintf("result-%d", len(f.results))
	return r, nil
}

func (f *fakeData) UserIdentity(context.Context) (string, bool) {
	return f.userID, f.userID != ""
}

func (f *fakeData) AnswerHistory(context.Context, string, int) ([]quiz.Answer, error) {
	return f.answers, nil
}

func (f *fakeData) QuizHistory(context.Context, string, int) ([]quiz.Result, error) {
	return f.results, nil
}

func birdQuestions(names ...string) []quiz.Question {
	qs := make([]quiz.Question, len(names))
	for i, n := range names {
		qs[i] = quiz.Question{
			ID:            fmt.Sprintf("b%d:i%d", i, i),
			CorrectAnswer: n,
			Options:       names,
			Difficulty:    quiz.DifficultyEasy,
			Category:      "野鳥",
		}
	}
	return qs
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newLoaded(t *testing.T, ds *fakeData, opts Options) *Session {
	t.Helper()
	if opts.NewID == nil {
		opts.NewID = seqIDs()
	}
	s := New(ds, opts)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestSession_ThreeQuestionRun(t *testing.T) {
	ds := &fakeData{questions: birdQuestions("スズメ", "ツバメ", "カラス"), userID: "u1"}
	s := newLoaded(t, ds, Options{Count: 3})

	if s.Phase() != PhaseInProgress {
		t.Fatalf("Phase = %v, want in_progress", s.Phase())
	}

	wantCorrect := []bool{true, false, true}
	var last *Outcome
	for i, text := range []string{"スズメ", "スズメ", "カラス"} {
		out, err := s.Submit(context.Background(), text)
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		if out.Answer.Correct != wantCorrect[i] {
			t.Errorf("answer %d correct = %v, want %v", i, out.Answer.Correct, wantCorrect[i])
		}
		if len(s.Answers()) != s.Index() {
			t.Errorf("len(answers) = %d, index = %d", len(s.Answers()), s.Index())
		}
		last = out
	}

	if s.Phase() != PhaseCompleted {
		t.Fatalf("Phase = %v, want completed", s.Phase())
	}
	if !last.Completed || last.Result == nil {
		t.Fatal("last outcome should carry the result")
	}
	res := s.Result()
	if res.CorrectAnswers != 2 || res.Score != 2 || res.TotalQuestions != 3 {
		t.Errorf("result = %+v, want 2 correct, score 2 of 3", res)
	}
	if res.ID != "result-1" || res.UserID != "u1" {
		t.Errorf("saved result id/user = %q/%q", res.ID, res.UserID)
	}
	if res.DifficultyLevel != "mixed" {
		t.Errorf("DifficultyLevel = %q, want mixed", res.DifficultyLevel)
	}
	if len(ds.answers) != 3 || len(ds.results) != 1 {
		t.Errorf("persisted %d answers, %d results", len(ds.answers), len(ds.results))
	}
	if _, ok := s.Current(); ok {
		t.Error("Current should report nothing after completion")
	}
	if _, err := s.Submit(context.Background(), "スズメ"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("submit after completion err = %v", err)
	}
}

func TestSession_BlankAnswerRejected(t *testing.T) {
	ds := &fakeData{questions: birdQuestions("スズメ", "ツバメ")}
	s := newLoaded(t, ds, Options{})

	for _, raw := range []string{"", "   ", "\t\n"} {
		if _, err := s.Submit(context.Background(), raw); !errors.Is(err, ErrBlankAnswer) {
			t.Errorf("Submit(%q) err = %v, want ErrBlankAnswer", raw, err)
		}
	}
	if s.Index() != 0 || len(s.Answers()) != 0 {
		t.Errorf("blank submissions changed state: index %d, answers %d", s.Index(), len(s.Answers()))
	}
}

func TestSession_SubmitBeforeLoad(t *testing.T) {
	s := New(&fakeData{questions: birdQuestions("スズメ")}, Options{})
	if _, err := s.Submit(context.Background(), "スズメ"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("err = %v, want ErrInvalidPhase", err)
	}
}

func TestSession_LoadErrorAndRetry(t *testing.T) {
	ds := &fakeData{fetchErr: errors.New("connection refused")}
	s := New(ds, Options{})

	err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected load error")
	}
	if s.Phase() != PhaseError || s.Err() == nil {
		t.Fatalf("Phase = %v, Err = %v", s.Phase(), s.Err())
	}

	ds.fetchErr = nil
	ds.questions = birdQuestions("スズメ")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if s.Phase() != PhaseInProgress || s.Err() != nil {
		t.Errorf("after retry Phase = %v, Err = %v", s.Phase(), s.Err())
	}
	if ds.fetches != 2 {
		t.Errorf("fetches = %d, want 2", ds.fetches)
	}
	if err := s.Load(context.Background()); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("load while in progress err = %v", err)
	}
}

func TestSession_NoQuestions(t *testing.T) {
	tests := []struct {
		name string
		ds   *fakeData
	}{
		{"empty set", &fakeData{}},
		{"not found", &fakeData{fetchErr: fmt.Errorf("none: %w", quiz.ErrNotFound)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.ds, Options{})
			err := s.Load(context.Background())
			if !errors.Is(err, ErrNoQuestions) {
				t.Errorf("err = %v, want ErrNoQuestions", err)
			}
			if s.Phase() != PhaseError {
				t.Errorf("Phase = %v, want error", s.Phase())
			}
		})
	}
}

func TestSession_AnonymousDoesNotPersist(t *testing.T) {
	ds := &fakeData{questions: birdQuestions("スズメ", "ツバメ")}
	s := newLoaded(t, ds, Options{})

	for _, text := range []string{"スズメ", "ツバメ"} {
		out, err := s.Submit(context.Background(), text)
		if err != nil {
			t.Fatal(err)
		}
		if out.Answer.UserID != "" {
			t.Errorf("anonymous answer has user %q", out.Answer.UserID)
		}
	}
	if len(ds.answers) != 0 || len(ds.results) != 0 {
		t.Errorf("anonymous session persisted %d answers, %d results", len(ds.answers), len(ds.results))
	}
	if s.Result() == nil || s.Result().Score != 2 {
		t.Errorf("Result = %+v", s.Result())
	}
}

func TestSession_PersistenceFailureDoesNotBlock(t *testing.T) {
	ds := &fakeData{
		questions: birdQuestions("スズメ", "ツバメ"),
		userID:    "u1",
		answerErr: errors.New("disk full"),
		resultErr: errors.New("disk full"),
	}
	s := newLoaded(t, ds, Options{})

	out, err := s.Submit(context.Background(), "スズメ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.AnswerSaveErr == nil || out.Persisted() {
		t.Error("expected AnswerSaveErr")
	}
	if s.Index() != 1 {
		t.Errorf("Index = %d, want 1 despite save failure", s.Index())
	}

	out, err = s.Submit(context.Background(), "ツバメ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.ResultSaveErr == nil {
		t.Error("expected ResultSaveErr")
	}
	if s.Phase() != PhaseCompleted || s.Result() == nil || s.Result().CorrectAnswers != 2 {
		t.Errorf("Phase = %v, Result = %+v", s.Phase(), s.Result())
	}
}

func TestSession_TimeTakenIsPerQuestion(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
	ds := &fakeData{questions: birdQuestions("スズメ", "ツバメ", "カラス")}
	s := newLoaded(t, ds, Options{Now: clock.Now})

	steps := []time.Duration{4 * time.Second, 12 * time.Second, 1500 * time.Millisecond}
	for i, d := range steps {
		clock.Advance(d)
		out, err := s.Submit(context.Background(), "スズメ")
		if err != nil {
			t.Fatal(err)
		}
		if out.Answer.TimeTaken != d {
			t.Errorf("answer %d TimeTaken = %v, want %v", i, out.Answer.TimeTaken, d)
		}
	}
	if got, want := s.Result().TimeTaken, 17500*time.Millisecond; got != want {
		t.Errorf("result TimeTaken = %v, want %v", got, want)
	}
}

func TestSession_WeightedPolicy(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
	qs := birdQuestions("スズメ", "ツバメ")
	qs[1].Difficulty = quiz.DifficultyHard
	ds := &fakeData{questions: qs}
	s := newLoaded(t, ds, Options{Now: clock.Now, Policy: scoring.PolicyWeighted})

	// 10 + 5 bonus, then 20 + 0 bonus, times 1.2 for full accuracy.
	if _, err := s.Submit(context.Background(), "スズメ"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(45 * time.Second)
	if _, err := s.Submit(context.Background(), "ツバメ"); err != nil {
		t.Fatal(err)
	}

	res := s.Result()
	if res.Score != 42 {
		t.Errorf("Score = %d, want 42", res.Score)
	}
	if res.Metadata.Policy != string(scoring.PolicyWeighted) {
		t.Errorf("Metadata.Policy = %q", res.Metadata.Policy)
	}
	if res.Metadata.DifficultyDistribution.Easy != 1 || res.Metadata.DifficultyDistribution.Hard != 1 {
		t.Errorf("distribution = %+v", res.Metadata.DifficultyDistribution)
	}
}

func TestSession_ValidationIsReported(t *testing.T) {
	ds := &fakeData{questions: birdQuestions("ハシブトガラス")}
	s := newLoaded(t, ds, Options{})

	out, err := s.Submit(context.Background(), "ブトガラス")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Validation.Correct || out.Validation.MatchType != answer.MatchPartial {
		t.Errorf("Validation = %+v, want correct partial", out.Validation)
	}
}

func TestSession_Close(t *testing.T) {
	ds := &fakeData{questions: birdQuestions("スズメ", "ツバメ")}
	s := newLoaded(t, ds, Options{})
	s.Close()

	if _, err := s.Submit(context.Background(), "スズメ"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("submit after close err = %v", err)
	}
	if err := s.Load(context.Background()); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("load after close err = %v", err)
	}
}

func TestSession_Progress(t *testing.T) {
	ds := &fakeData{questions: birdQuestions("スズメ", "ツバメ", "カラス", "ハト")}
	s := newLoaded(t, ds, Options{})

	for _, text := range []string{"スズメ", "メジロ"} {
		if _, err := s.Submit(context.Background(), text); err != nil {
			t.Fatal(err)
		}
	}
	p := s.Progress()
	if p.Answered != 2 || p.Correct != 1 || p.Total != 4 || p.Remaining() != 2 {
		t.Errorf("Progress = %+v", p)
	}
	if p.Accuracy != 0.5 {
		t.Errorf("Accuracy = %v, want 0.5", p.Accuracy)
	}
}

func TestBuildResult_Labels(t *testing.T) {
	qs := birdQuestions("スズメ")
	tests := []struct {
		name         string
		filter       quiz.Filter
		wantLevel    string
		wantCategory string
	}{
		{"mixed default", quiz.Filter{}, "mixed", "野鳥"},
		{"concrete difficulty", quiz.Filter{Difficulty: quiz.DifficultyHard}, "hard", "野鳥"},
		{"category filter", quiz.Filter{Category: "カラス科"}, "mixed", "カラス科"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := BuildResult("s1", qs, nil, scoring.PolicySimple, tt.filter, -time.Second)
			if r.DifficultyLevel != tt.wantLevel || r.Category != tt.wantCategory {
				t.Errorf("got level %q category %q", r.DifficultyLevel, r.Category)
			}
			if r.TimeTaken != 0 || r.Score != 0 || r.SessionID != "s1" {
				t.Errorf("got %+v", r)
			}
		})
	}
}
