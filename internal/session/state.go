package session

import (
	"errors"
	"time"

	"github.com/birdquiz/birdquiz/internal/answer"
	"github.com/birdquiz/birdquiz/internal/quiz"
	"github.com/birdquiz/birdquiz/internal/scoring"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Phase represents the current phase of the session.
type Phase int

const (
	PhaseLoading    Phase = iota // Waiting for the question set
	PhaseInProgress              // Serving questions
	PhaseCompleted               // All questions answered, result computed
	PhaseError                   // Question fetch failed; Load may be retried
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

var (
	// ErrBlankAnswer rejects a submission whose text is empty or whitespace.
	ErrBlankAnswer = errors.New("answer is blank")

	// ErrInvalidPhase rejects an operation not allowed in the current phase.
	ErrInvalidPhase = errors.New("operation not allowed in current session phase")

	// ErrNoQuestions is reported when the question source returned nothing.
	ErrNoQuestions = errors.New("no questions available")
)

// DefaultQuestionCount is the number of questions requested when Options.Count <= 0.
const DefaultQuestionCount = 10

// Options configures a Session.
type Options struct {
	// Count is the number of questions to request.
	Count int

	// Filter narrows the requested questions.
	Filter quiz.Filter

	// Policy selects the scoring policy applied at completion.
	Policy scoring.Policy

	// Logger receives persistence failures. Defaults to a no-op logger.
	Logger *zap.Logger

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// NewID generates session and answer ids. Defaults to uuid.NewString.
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.Count <= 0 {
		o.Count = DefaultQuestionCount
	}
	if o.Policy == "" {
		o.Policy = scoring.DefaultPolicy
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Outcome reports the effect of one accepted submission.
type Outcome struct {
	// Answer is the recorded answer.
	Answer quiz.Answer

	// Validation is the matcher's verdict.
	Validation answer.Result

	// Completed is true when this submission answered the last question.
	Completed bool

	// Result is the session result, set when Completed.
	Result *quiz.Result

	// AnswerSaveErr is non-nil when persisting the answer failed.
	AnswerSaveErr error

	// ResultSaveErr is non-nil when persisting the result failed.
	ResultSaveErr error
}

// Persisted reports whether every attempted save succeeded.
func (o *Outcome) Persisted() bool {
	return o.AnswerSaveErr == nil && o.ResultSaveErr == nil
}
