package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/birdquiz/birdquiz/internal/questiongen"
	"github.com/birdquiz/birdquiz/internal/quiz"
)

// IdentityFunc resolves the user behind a request context.
type IdentityFunc func(ctx context.Context) (userID string, ok bool)

// Anonymous is an IdentityFunc that never identifies anyone.
func Anonymous(context.Context) (string, bool) { return "", false }

// Service is the SQLite-backed quiz.DataService. Questions are sampled from
// the stored dataset; answers and results are written to their tables.
type Service struct {
	store    *Store
	gen      *questiongen.Generator
	identity IdentityFunc
	log      *zap.Logger
}

var _ quiz.DataService = (*Service)(nil)

// NewService wires a Service. A nil identity makes every caller anonymous;
// a nil logger discards output.
func NewService(s *Store, gen *questiongen.Generator, identity IdentityFunc, log *zap.Logger) *Service {
	if identity == nil {
		identity = Anonymous
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: s, gen: gen, identity: identity, log: log.Named("store")}
}

func (s *Service) FetchQuestions(ctx context.Context, count int, f quiz.Filter) ([]quiz.Question, error) {
	qs, err := s.gen.Generate(ctx, count, f)
	if err != nil {
		return nil, err
	}
	s.log.Debug("questions generated",
		zap.Int("requested", count),
		zap.Int("generated", len(qs)),
		zap.String("category", f.Category),
		zap.String("difficulty", string(f.Difficulty)))
	return qs, nil
}

func (s *Service) InsertAnswer(ctx context.Context, a quiz.Answer) (quiz.Answer, error) {
	return s.store.Answers().Insert(ctx, a)
}

func (s *Service) InsertQuizResult(ctx context.Context, r quiz.Result) (quiz.Result, error) {
	saved, err := s.store.Results().Insert(ctx, r)
	if err != nil {
		return quiz.Result{}, err
	}
	s.log.Info("quiz result saved",
		zap.String("user_id", saved.UserID),
		zap.String("session_id", saved.SessionID),
		zap.Int("score", saved.Score),
		zap.Int("correct", saved.CorrectAnswers),
		zap.Int("total", saved.TotalQuestions))
	return saved, nil
}

func (s *Service) UserIdentity(ctx context.Context) (string, bool) {
	return s.identity(ctx)
}

func (s *Service) AnswerHistory(ctx context.Context, userID string, limit int) ([]quiz.Answer, error) {
	return s.store.Answers().History(ctx, userID, QueryOpts{Limit: limit})
}

func (s *Service) QuizHistory(ctx context.Context, userID string, limit int) ([]quiz.Result, error) {
	return s.store.Results().History(ctx, userID, QueryOpts{Limit: limit})
}

// IncorrectQuestions returns the user's most recent miss per question,
// newest first.
func (s *Service) IncorrectQuestions(ctx context.Context, userID string, limit int) ([]quiz.Answer, error) {
	return s.store.Answers().Incorrect(ctx, userID, limit)
}

// Families lists the bird families available as question categories.
func (s *Service) Families(ctx context.Context) ([]string, error) {
	return s.store.Birds().Families(ctx)
}

// Orders lists the bird orders in the dataset.
func (s *Service) Orders(ctx context.Context) ([]string, error) {
	return s.store.Birds().Orders(ctx)
}

// QuestionByID rebuilds a previously issued question, for review.
func (s *Service) QuestionByID(ctx context.Context, id string) (quiz.Question, error) {
	q, err := s.gen.QuestionByID(ctx, id)
	if err != nil {
		return quiz.Question{}, fmt.Errorf("question %s: %w", id, err)
	}
	return q, nil
}
