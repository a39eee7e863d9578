package stats

import (
	"time"

	"github.com/birdquiz/birdquiz/internal/quiz"
)

// Streaks holds the user's running streaks.
type Streaks struct {
	CurrentCorrect int `json:"current_correct"`
	LongestCorrect int `json:"longest_correct"`
	NextMilestone  int `json:"next_milestone"`
	StudyDays      int `json:"study_days"`
}

// ComputeStreaks derives streaks from answers ordered newest first.
func ComputeStreaks(answers []quiz.Answer, now time.Time) Streaks {
	cur, longest := CorrectStreaks(answers)
	return Streaks{
		CurrentCorrect: cur,
		LongestCorrect: longest,
		NextMilestone:  NextMilestone(cur),
		StudyDays:      StudyDayStreak(answers, now),
	}
}

// CorrectStreaks returns the run of correct answers ending at the newest
// answer and the longest run overall. answers are ordered newest first.
func CorrectStreaks(answers []quiz.Answer) (current, longest int) {
	run := 0
	counting := true
	for _, a := range answers {
		if !a.Correct {
			counting = false
			run = 0
			continue
		}
		run++
		if counting {
			current = run
		}
		longest = max(longest, run)
	}
	return current, longest
}

// NextMilestone returns the next streak milestone above current.
func NextMilestone(current int) int {
	milestones := []int{5, 10, 15, 20}
	for _, m := range milestones {
		if m > current {
			return m
		}
	}
	// Beyond 20, every 5.
	return ((current / 5) + 1) * 5
}

// StudyDayStreak counts consecutive calendar days, in now's location, with at
// least one answer. The streak is still alive when the last study day was
// yesterday.
func StudyDayStreak(answers []quiz.Answer, now time.Time) int {
	if len(answers) == 0 {
		return 0
	}
	loc := now.Location()
	days := make(map[time.Time]bool, len(answers))
	for _, a := range answers {
		days[dayOf(a.AnsweredAt.In(loc))] = true
	}

	day := dayOf(now)
	if !days[day] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for days[day] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
