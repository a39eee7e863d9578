package session

import (
	"time"

	"github.com/birdquiz/birdquiz/internal/quiz"
	"github.com/birdquiz/birdquiz/internal/scoring"
)

// BuildResult scores a finished question set. The result id is left empty;
// the store assigns it on insert.
func BuildResult(sessionID string, questions []quiz.Question, answers []quiz.Answer, policy scoring.Policy, f quiz.Filter, elapsed time.Duration) quiz.Result {
	level := string(quiz.DifficultyMixed)
	switch f.Difficulty {
	case quiz.DifficultyEasy, quiz.DifficultyMedium, quiz.DifficultyHard:
		level = string(f.Difficulty)
	}

	category := f.Category
	if category == "" && len(questions) > 0 {
		category = questions[0].Category
	}

	if elapsed < 0 {
		elapsed = 0
	}

	return quiz.Result{
		SessionID:       sessionID,
		TotalQuestions:  len(questions),
		CorrectAnswers:  scoring.CountCorrect(answers),
		Score:           scoring.Calculate(policy, answers, questions),
		TimeTaken:       elapsed,
		DifficultyLevel: level,
		Category:        category,
		Metadata: quiz.ResultMetadata{
			DifficultyDistribution: quiz.Distribution(questions),
			Policy:                 string(policy),
		},
	}
}

// Progress is the running tally shown between questions.
type Progress struct {
	Answered int
	Correct  int
	Total    int
	Accuracy float64 // Correct / Answered
}

// Remaining returns the number of unanswered questions.
func (p Progress) Remaining() int { return p.Total - p.Answered }

// Progress returns the session's running tally.
func (s *Session) Progress() Progress {
	p := Progress{
		Answered: len(s.answers),
		Correct:  scoring.CountCorrect(s.answers),
		Total:    len(s.questions),
	}
	if p.Answered > 0 {
		p.Accuracy = float64(p.Correct) / float64(p.Answered)
	}
	return p
}
