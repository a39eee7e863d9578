package quiz

import (
	"fmt"
	"time"
)

// Difficulty is the difficulty level of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"

	// DifficultyMixed is only valid as a filter or a result summary label.
	DifficultyMixed Difficulty = "mixed"
)

// Difficulties lists the concrete question difficulties in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty parses a difficulty name. The empty string and "mixed"
// both yield DifficultyMixed.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	case "", DifficultyMixed:
		return DifficultyMixed, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Question is a single quiz item. Questions are immutable once issued to a session.
type Question struct {
	ID            string     `json:"id"`
	Prompt        string     `json:"question_text"`
	ImageURL      string     `json:"image_url,omitempty"`
	CorrectAnswer string     `json:"correct_answer"`
	Options       []string   `json:"options"`
	Difficulty    Difficulty `json:"difficulty"`
	Category      string     `json:"category"`
	BirdID        string     `json:"bird_id,omitempty"`
	ImageID       string     `json:"image_id,omitempty"`
}

// Answer is a user's response to one question within one session.
type Answer struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id,omitempty"`
	SessionID     string        `json:"session_id,omitempty"`
	QuestionID    string        `json:"question_id"`
	BirdID        string        `json:"bird_id,omitempty"`
	ImageID       string        `json:"image_id,omitempty"`
	Submitted     string        `json:"selected_answer"`
	CorrectAnswer string        `json:"correct_answer"`
	Correct       bool          `json:"is_correct"`
	TimeTaken     time.Duration `json:"-"`
	AnsweredAt    time.Time     `json:"answered_at"`
}

// DifficultyDistribution counts the questions of a session per difficulty.
type DifficultyDistribution struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// ResultMetadata is free-form summary data stored alongside a Result.
type ResultMetadata struct {
	DifficultyDistribution DifficultyDistribution `json:"difficulty_distribution"`
	Policy                 string                 `json:"policy,omitempty"`
}

// Result is the persisted summary of a completed session.
type Result struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id,omitempty"`
	SessionID       string         `json:"session_id,omitempty"`
	TotalQuestions  int            `json:"total_questions"`
	CorrectAnswers  int            `json:"correct_answers"`
	Score           int            `json:"score"`
	TimeTaken       time.Duration  `json:"-"`
	DifficultyLevel string         `json:"difficulty_level"`
	Category        string         `json:"category,omitempty"`
	Metadata        ResultMetadata `json:"metadata"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Accuracy returns CorrectAnswers / TotalQuestions, or 0 for an empty result.
func (r Result) Accuracy() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.CorrectAnswers) / float64(r.TotalQuestions)
}

// Filter narrows the questions fetched for a session.
type Filter struct {
	Category   string
	Difficulty Difficulty
}

// Distribution counts questions per difficulty.
func Distribution(questions []Question) DifficultyDistribution {
	var d DifficultyDistribution
	for _, q := range questions {
		switch q.Difficulty {
		case DifficultyEasy:
			d.Easy++
		case DifficultyMedium:
			d.Medium++
		case DifficultyHard:
			d.Hard++
		}
	}
	return d
}
