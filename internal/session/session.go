package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/birdquiz/birdquiz/internal/answer"
	"github.com/birdquiz/birdquiz/internal/quiz"
	"github.com/birdquiz/birdquiz/internal/scoring"
	"go.uber.org/zap"
)

// Session drives one quiz attempt: Loading -> InProgress -> Completed, with
// Error reachable from Loading. A Session has a single writer; only the
// timer goroutine runs alongside it and it touches nothing but its counter.
type Session struct {
	id   string
	ds   quiz.DataService
	opts Options
	log  *zap.Logger

	phase Phase
	err   error

	questions []quiz.Question
	answers   []quiz.Answer
	index     int

	startedAt         time.Time
	completedAt       time.Time
	questionStartedAt time.Time

	result *quiz.Result
	timer  *Timer
	closed bool
}

// New creates a session in PhaseLoading. Call Load to fetch its questions.
func New(ds quiz.DataService, opts Options) *Session {
	opts = opts.withDefaults()
	id := opts.NewID()
	return &Session{
		id:    id,
		ds:    ds,
		opts:  opts,
		log:   opts.Logger.With(zap.String("session_id", id)),
		phase: PhaseLoading,
	}
}

// Load fetches the question set and enters PhaseInProgress. On failure the
// session enters PhaseError; calling Load again retries.
func (s *Session) Load(ctx context.Context) error {
	if s.closed || (s.phase != PhaseLoading && s.phase != PhaseError) {
		return ErrInvalidPhase
	}
	s.phase = PhaseLoading

	qs, err := s.ds.FetchQuestions(ctx, s.opts.Count, s.opts.Filter)
	switch {
	case err != nil && errors.Is(err, quiz.ErrNotFound):
		err = fmt.Errorf("%w: %w", ErrNoQuestions, err)
	case err == nil && len(qs) == 0:
		err = ErrNoQuestions
	}
	if err != nil {
		s.phase = PhaseError
		s.err = fmt.Errorf("load questions: %w", err)
		s.log.Warn("question load failed", zap.Error(err))
		return s.err
	}

	now := s.opts.Now()
	s.questions = slices.Clone(qs)
	s.answers = make([]quiz.Answer, 0, len(qs))
	s.index = 0
	s.startedAt = now
	s.questionStartedAt = now
	s.err = nil
	s.phase = PhaseInProgress
	return nil
}

// Submit answers the current question with raw text.
//
// Blank text and calls outside PhaseInProgress are rejected without any
// state change. Otherwise the answer is validated, recorded and, when the
// caller has a user identity, persisted. Persistence failures are logged and
// reported in the Outcome; they never roll back the in-memory state.
// Answering the last question completes the session.
func (s *Session) Submit(ctx context.Context, raw string) (*Outcome, error) {
	if s.closed || s.phase != PhaseInProgress {
		return nil, ErrInvalidPhase
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrBlankAnswer
	}

	q := s.questions[s.index]
	now := s.opts.Now()
	taken := now.Sub(s.questionStartedAt)
	if taken < 0 {
		taken = 0
	}

	v := answer.Validate(raw, q.CorrectAnswer)
	userID, identified := s.ds.UserIdentity(ctx)

	a := quiz.Answer{
		ID:            s.opts.NewID(),
		SessionID:     s.id,
		QuestionID:    q.ID,
		BirdID:        q.BirdID,
		ImageID:       q.ImageID,
		Submitted:     raw,
		CorrectAnswer: q.CorrectAnswer,
		Correct:       v.Correct,
		TimeTaken:     taken,
		AnsweredAt:    now,
	}
	if identified {
		a.UserID = userID
	}

	s.answers = append(s.answers, a)
	s.index++
	s.questionStartedAt = now

	out := &Outcome{Answer: a, Validation: v}

	if identified {
		if _, err := s.ds.InsertAnswer(ctx, a); err != nil {
			out.AnswerSaveErr = fmt.Errorf("save answer: %w", err)
			s.log.Warn("answer not saved",
				zap.String("answer_id", a.ID),
				zap.String("question_id", a.QuestionID),
				zap.Error(err))
		}
	}

	if s.index == len(s.questions) {
		s.complete(ctx, now, userID, identified, out)
	}
	return out, nil
}

func (s *Session) complete(ctx context.Context, now time.Time, userID string, identified bool, out *Outcome) {
	s.completedAt = now
	s.phase = PhaseCompleted
	s.stopTimer()

	res := BuildResult(s.id, s.questions, s.answers, s.opts.Policy, s.opts.Filter, now.Sub(s.startedAt))
	res.CreatedAt = now
	if identified {
		res.UserID = userID
		saved, err := s.ds.InsertQuizResult(ctx, res)
		if err != nil {
			out.ResultSaveErr = fmt.Errorf("save result: %w", err)
			s.log.Warn("quiz result not saved", zap.Int("score", res.Score), zap.Error(err))
		} else {
			res = saved
		}
	}

	s.result = &res
	out.Completed = true
	out.Result = &res
}

// Close tears the session down. The timer stops and further calls to Load
// and Submit fail with ErrInvalidPhase.
func (s *Session) Close() {
	s.closed = true
	s.stopTimer()
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Err returns the load error while in PhaseError.
func (s *Session) Err() error { return s.err }

// Index returns the number of answered questions, which is also the index
// of the current question.
func (s *Session) Index() int { return s.index }

// Total returns the number of questions in the session.
func (s *Session) Total() int { return len(s.questions) }

// Current returns the question awaiting an answer.
func (s *Session) Current() (quiz.Question, bool) {
	if s.phase != PhaseInProgress || s.index >= len(s.questions) {
		return quiz.Question{}, false
	}
	return s.questions[s.index], true
}

// Questions returns a copy of the session's questions.
func (s *Session) Questions() []quiz.Question { return slices.Clone(s.questions) }

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() []quiz.Answer { return slices.Clone(s.answers) }

// Result returns the completed session's result, or nil before completion.
func (s *Session) Result() *quiz.Result { return s.result }

// StartedAt returns when the question set was loaded.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Policy returns the scoring policy applied at completion.
func (s *Session) Policy() scoring.Policy { return s.opts.Policy }
