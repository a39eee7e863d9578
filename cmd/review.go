package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/birdquiz/birdquiz/internal/quiz"
	"github.com/birdquiz/birdquiz/internal/ui/theme"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List the birds a user most recently got wrong",
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

		ctx := cmd.Context()
		svc := rt.service(nil)
		misses, err := svc.IncorrectQuestions(ctx, user, limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(misses) == 0 {
			fmt.Fprintln(out, theme.Correct.Render("Nothing to review."))
			return nil
		}
		for _, a := range misses {
			fmt.Fprintln(out, theme.Title.Render(a.CorrectAnswer))
			fmt.Fprintln(out, theme.Incorrect.Render("  your answer: "+a.Submitted))
			q, err := svc.QuestionByID(ctx, a.QuestionID)
			switch {
			case err == nil && q.ImageURL != "":
				fmt.Fprintln(out, theme.Hint.Render("  "+q.ImageURL))
			case err != nil && !errors.Is(err, quiz.ErrNotFound):
				rt.log.Warn("review question unavailable", zap.String("question_id", a.QuestionID), zap.Error(err))
			}
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().String("user", "", "User id")
	reviewCmd.Flags().Int("limit", 20, "Maximum number of birds to list")
}
