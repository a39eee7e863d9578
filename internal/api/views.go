package api

import (
	"time"

	"github.com/birdquiz/birdquiz/internal/answer"
	"github.com/birdquiz/birdquiz/internal/quiz"
	"github.com/birdquiz/birdquiz/internal/session"
)

// questionView is a question as shown to a player mid-session: the correct
// answer is withheld.
type questionView struct {
	ID         string          `json:"id"`
	Prompt     string          `json:"question_text"`
	ImageURL   string          `json:"image_url,omitempty"`
	Options    []string        `json:"options"`
	Difficulty quiz.Difficulty `json:"difficulty"`
	Category   string          `json:"category"`
}

func newQuestionView(q quiz.Question) *questionView {
	return &questionView{
		ID:         q.ID,
		Prompt:     q.Prompt,
		ImageURL:   q.ImageURL,
		Options:    q.Options,
		Difficulty: q.Difficulty,
		Category:   q.Category,
	}
}

type answerView struct {
	quiz.Answer
	TimeTaken float64 `json:"time_taken"`
}

func newAnswerViews(as []quiz.Answer) []answerView {
	out := make([]answerView, len(as))
	for i, a := range as {
		out[i] = answerView{Answer: a, TimeTaken: a.TimeTaken.Seconds()}
	}
	return out
}

type resultView struct {
	quiz.Result
	TimeTaken int     `json:"time_taken"`
	Accuracy  float64 `json:"accuracy"`
}

func newResultView(r *quiz.Result) *resultView {
	if r == nil {
		return nil
	}
	return &resultView{Result: *r, TimeTaken: int(r.TimeTaken / time.Second), Accuracy: r.Accuracy()}
}

func newResultViews(rs []quiz.Result) []resultView {
	out := make([]resultView, len(rs))
	for i := range rs {
		out[i] = *newResultView(&rs[i])
	}
	return out
}

type progressView struct {
	Answered  int     `json:"answered"`
	Correct   int     `json:"correct"`
	Total     int     `json:"total"`
	Remaining int     `json:"remaining"`
	Accuracy  float64 `json:"accuracy"`
}

type sessionView struct {
	ID        string        `json:"id"`
	Phase     string        `json:"phase"`
	Index     int           `json:"index"`
	Total     int           `json:"total"`
	Question  *questionView `json:"question,omitempty"`
	Progress  progressView  `json:"progress"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   int           `json:"elapsed"`
	Result    *resultView   `json:"result,omitempty"`
}

func newSessionView(s *session.Session, now time.Time) sessionView {
	p := s.Progress()
	v := sessionView{
		ID:    s.ID(),
		Phase: s.Phase().String(),
		Index: s.Index(),
		Total: s.Total(),
		Progress: progressView{
			Answered:  p.Answered,
			Correct:   p.Correct,
			Total:     p.Total,
			Remaining: p.Remaining(),
			Accuracy:  p.Accuracy,
		},
		StartedAt: s.StartedAt(),
		Result:    newResultView(s.Result()),
	}
	if q, ok := s.Current(); ok {
		v.Question = newQuestionView(q)
	}
	if r := s.Result(); r != nil {
		v.Elapsed = int(r.TimeTaken / time.Second)
	} else if !v.StartedAt.IsZero() {
		v.Elapsed = int(now.Sub(v.StartedAt) / time.Second)
	}
	return v
}

type outcomeView struct {
	Correct       bool             `json:"is_correct"`
	MatchType     answer.MatchType `json:"match_type"`
	Confidence    float64          `json:"confidence"`
	CorrectAnswer string           `json:"correct_answer"`
	Completed     bool             `json:"completed"`
	Result        *resultView      `json:"result,omitempty"`
	Next          *questionView    `json:"next,omitempty"`
	Progress      progressView     `json:"progress"`
	Persisted     bool             `json:"persisted"`
	Warnings      []string         `json:"warnings,omitempty"`
	Answer        answerView       `json:"answer"`
}

func newOutcomeView(s *session.Session, out *session.Outcome, now time.Time) outcomeView {
	sv := newSessionView(s, now)
	v := outcomeView{
		Correct:       out.Validation.Correct,
		MatchType:     out.Validation.MatchType,
		Confidence:    out.Validation.Confidence,
		CorrectAnswer: out.Answer.CorrectAnswer,
		Completed:     out.Completed,
		Result:        newResultView(out.Result),
		Next:          sv.Question,
		Progress:      sv.Progress,
		Persisted:     out.Persisted(),
		Answer:        newAnswerViews([]quiz.Answer{out.Answer})[0],
	}
	for _, err := range []error{out.AnswerSaveErr, out.ResultSaveErr} {
		if err != nil {
			v.Warnings = append(v.Warnings, err.Error())
		}
	}
	return v
}
