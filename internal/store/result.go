package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/birdquiz/birdquiz/internal/quiz"
)

var resultColumns = []string{
	"id", "sequence", "user_id", "session_id", "total_questions", "correct_answers",
	"score", "time_taken_ms", "difficulty_level", "category", "metadata", "created_at",
}

// ResultRepo records completed quiz results.
type ResultRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Insert stores res, assigning ID and CreatedAt when they are zero.
func (r *ResultRepo) Insert(ctx context.Context, res quiz.Result) (quiz.Result, error) {
	if res.UserID == "" {
		return quiz.Result{}, fmt.Errorf("insert quiz result: missing user id")
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	res.CreatedAt = res.CreatedAt.UTC()
	if res.DifficultyLevel == "" {
		res.DifficultyLevel = string(quiz.DifficultyMixed)
	}

	meta, err := json.Marshal(res.Metadata)
	if err != nil {
		return quiz.Result{}, fmt.Errorf("marshal metadata: %w", err)
	}

	seq, err := r.seq.Next(ctx)
	if err != nil {
		return quiz.Result{}, err
	}

	ins := builder().Insert(QuizResultsTable.Name).
		Columns(resultColumns...).
		Values(res.ID, seq, res.UserID, res.SessionID, res.TotalQuestions, res.CorrectAnswers,
			res.Score, res.TimeTaken.Milliseconds(), res.DifficultyLevel, res.Category, string(meta), res.CreatedAt)
	if err := exec(ctx, r.db, ins); err != nil {
		return quiz.Result{}, fmt.Errorf("save quiz result: %w", err)
	}
	return res, nil
}

// History returns the user's results newest first.
func (r *ResultRepo) History(ctx context.Context, userID string, opts QueryOpts) ([]quiz.Result, error) {
	s := builder().Select(resultColumns...).From(builder().Table(QuizResultsTable.Name)).
		Where(entsql.EQ("user_id", userID))
	results, err := queryAll(ctx, r.db, opts.apply(s, "created_at"), scanResult)
	if err != nil {
		return nil, fmt.Errorf("query quiz history: %w", err)
	}
	return results, nil
}

func scanResult(r rowScanner) (quiz.Result, error) {
	var (
		res  quiz.Result
		seq  int64
		ms   int64
		meta sql.NullString
	)
	err := r.Scan(&res.ID, &seq, &res.UserID, &res.SessionID, &res.TotalQuestions, &res.CorrectAnswers,
		&res.Score, &ms, &res.DifficultyLevel, &res.Category, &meta, &res.CreatedAt)
	if err != nil {
		return res, err
	}
	res.TimeTaken = time.Duration(ms) * time.Millisecond
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &res.Metadata); err != nil {
			return res, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return res, nil
}
