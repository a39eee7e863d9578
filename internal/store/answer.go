package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/birdquiz/birdquiz/internal/quiz"
)

var answerColumns = []string{
	"id", "sequence", "user_id", "session_id", "question_id", "bird_id", "image_id",
	"selected_answer", "correct_answer", "is_correct", "time_taken_ms", "answered_at",
}

// AnswerRepo records answers. Each row gets a global sequence number.
type AnswerRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Insert stores a, assigning ID and AnsweredAt when they are zero.
func (r *AnswerRepo) Insert(ctx context.Context, a quiz.Answer) (quiz.Answer, error) {
	if a.UserID == "" {
		return quiz.Answer{}, fmt.Errorf("insert answer: missing user id")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AnsweredAt.IsZero() {
		a.AnsweredAt = time.Now()
	}
	a.AnsweredAt = a.AnsweredAt.UTC()

	seq, err := r.seq.Next(ctx)
	if err != nil {
		return quiz.Answer{}, err
	}

	ins := builder().Insert(AnswersTable.Name).
		Columns(answerColumns...).
		Values(a.ID, seq, a.UserID, a.SessionID, a.QuestionID, a.BirdID, a.ImageID,
			a.Submitted, a.CorrectAnswer, a.Correct, a.TimeTaken.Milliseconds(), a.AnsweredAt)
	if err := exec(ctx, r.db, ins); err != nil {
		return quiz.Answer{}, fmt.Errorf("save answer: %w", err)
	}
	return a, nil
}

// History returns the user's answers newest first.
func (r *AnswerRepo) History(ctx context.Context, userID string, opts QueryOpts) ([]quiz.Answer, error) {
	s := builder().Select(answerColumns...).From(builder().Table(AnswersTable.Name)).
		Where(entsql.EQ("user_id", userID))
	answers, err := queryAll(ctx, r.db, opts.apply(s, "answered_at"), scanAnswer)
	if err != nil {
		return nil, fmt.Errorf("query answer history: %w", err)
	}
	return answers, nil
}

// Incorrect returns the user's wrong answers newest first, keeping only the
// most recent miss per question. limit <= 0 means all.
func (r *AnswerRepo) Incorrect(ctx context.Context, userID string, limit int) ([]quiz.Answer, error) {
	s := builder().Select(answerColumns...).From(builder().Table(AnswersTable.Name)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("is_correct", false))).
		OrderBy(entsql.Desc("sequence"))
	misses, err := queryAll(ctx, r.db, s, scanAnswer)
	if err != nil {
		return nil, fmt.Errorf("query incorrect answers: %w", err)
	}
	return dedupByQuestion(misses, limit), nil
}

// dedupByQuestion keeps the first answer seen per question id.
func dedupByQuestion(answers []quiz.Answer, limit int) []quiz.Answer {
	seen := make(map[string]bool, len(answers))
	out := make([]quiz.Answer, 0, len(answers))
	for _, a := range answers {
		if seen[a.QuestionID] {
			continue
		}
		seen[a.QuestionID] = true
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func scanAnswer(r rowScanner) (quiz.Answer, error) {
	var (
		a   quiz.Answer
		seq int64
		ms  int64
	)
	err := r.Scan(&a.ID, &seq, &a.UserID, &a.SessionID, &a.QuestionID, &a.BirdID, &a.ImageID,
		&a.Submitted, &a.CorrectAnswer, &a.Correct, &ms, &a.AnsweredAt)
	a.TimeTaken = time.Duration(ms) * time.Millisecond
	return a, err
}
