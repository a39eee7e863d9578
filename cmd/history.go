package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/birdquiz/birdquiz/internal/stats"
	"github.com/birdquiz/birdquiz/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List a user's completed quizzes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		results, err := rt.service(nil).QuizHistory(cmd.Context(), user, limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, theme.Hint.Render("No quizzes yet."))
			return nil
		}
		for _, r := range results {
			line := fmt.Sprintf("%s  %2d/%-2d  score %-4d %7s  %-6s %s",
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.CorrectAnswers, r.TotalQuestions, r.Score,
				stats.FormatDuration(r.TimeTaken), r.DifficultyLevel, r.Category)
			fmt.Fprintln(out, theme.Body.Render(line))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().String("user", "", "User id")
	historyCmd.Flags().Int("limit", stats.RecentResultsWindow, "Maximum number of quizzes to list")
}
