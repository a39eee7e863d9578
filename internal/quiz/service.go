package quiz

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a lookup or a question fetch yields nothing.
var ErrNotFound = errors.New("not found")

// DataService is the storage and identity contract the quiz core runs against.
// Implementations must be safe to call from the goroutine driving a session.
type DataService interface {
	// FetchQuestions returns up to count questions matching f.
	// It returns an error wrapping ErrNotFound when no question can be built.
	FetchQuestions(ctx context.Context, count int, f Filter) ([]Question, error)

	// InsertAnswer persists a, assigning ID and AnsweredAt when they are zero.
	InsertAnswer(ctx context.Context, a Answer) (Answer, error)

	// InsertQuizResult persists r, assigning ID and CreatedAt when they are zero.
	InsertQuizResult(ctx context.Context, r Result) (Result, error)

	// UserIdentity resolves the current actor. ok is false for anonymous callers,
	// in which case nothing is persisted.
	UserIdentity(ctx context.Context) (userID string, ok bool)

	// AnswerHistory returns the user's answers newest first. limit <= 0 means all.
	AnswerHistory(ctx context.Context, userID string, limit int) ([]Answer, error)

	// QuizHistory returns the user's results newest first. limit <= 0 means all.
	QuizHistory(ctx context.Context, userID string, limit int) ([]Result, error)
}
