package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/birdquiz/birdquiz/internal/stats"
	"github.com/birdquiz/birdquiz/internal/ui/components"
	"github.com/birdquiz/birdquiz/internal/ui/layout"
	"github.com/birdquiz/birdquiz/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a user's accuracy, streaks and recent quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}
		rt, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		sum, err := stats.Compute(cmd.Context(), rt.service(nil), user, time.Now())
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), sum)
		return nil
	},
}

func init() {
	statsCmd.Flags().String("user", "", "User id")
}

func printSummary(out io.Writer, s *stats.Summary) {
	fmt.Fprintln(out, theme.Title.Render("Answers"))
	fmt.Fprintln(out, layout.RenderRow("Answered", s.Answers.TotalAnswers))
	fmt.Fprintln(out, layout.RenderRow("Correct", s.Answers.CorrectAnswers))
	fmt.Fprintln(out, components.NewProgressBar("Accuracy", float64(s.Answers.Accuracy)/100, true, layout.DefaultWidth).View())
	fmt.Fprintln(out)

	fmt.Fprintln(out, theme.Title.Render("Quizzes"))
	fmt.Fprintln(out, layout.RenderRow("Completed", s.Quizzes.TotalQuizzes))
	fmt.Fprintln(out, layout.RenderRow("Average score", fmt.Sprintf("%d%%", s.Quizzes.AverageScore)))
	fmt.Fprintln(out, layout.RenderRow("Best score", fmt.Sprintf("%d%%", s.Quizzes.BestScore)))
	fmt.Fprintln(out, layout.RenderRow("Mean score", fmt.Sprintf("%.2f", s.Quizzes.MeanScore)))
	fmt.Fprintln(out, layout.RenderRow("Study time", stats.FormatDuration(s.Quizzes.TotalStudyTime)))
	fmt.Fprintln(out, layout.RenderRow("Average time", stats.FormatDuration(s.Quizzes.AverageTime)))
	fmt.Fprintln(out, layout.RenderRow("Trend", s.Quizzes.RecentTrend))
	fmt.Fprintln(out)

	if len(s.Quizzes.ByDifficulty) > 0 {
		fmt.Fprintln(out, theme.Title.Render("By difficulty"))
		for _, level := range slices.Sorted(maps.Keys(s.Quizzes.ByDifficulty)) {
			d := s.Quizzes.ByDifficulty[level]
			fmt.Fprintln(out, layout.RenderRow(level, fmt.Sprintf("%d quizzes, score %.2f, accuracy %.2f%%, %s avg",
				d.Count, d.AverageScore, d.AverageAccuracy, stats.FormatDuration(d.AverageTime))))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, theme.Title.Render("Streaks"))
	fmt.Fprintln(out, layout.RenderRow("Current", s.Streaks.CurrentCorrect))
	fmt.Fprintln(out, layout.RenderRow("Longest", s.Streaks.LongestCorrect))
	fmt.Fprintln(out, layout.RenderRow("Next milestone", s.Streaks.NextMilestone))
	fmt.Fprintln(out, layout.RenderRow("Study days", s.Streaks.StudyDays))
}
