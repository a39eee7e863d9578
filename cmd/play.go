package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/birdquiz/birdquiz/internal/answer"
	"github.com/birdquiz/birdquiz/internal/quiz"
	"github.com/birdquiz/birdquiz/internal/session"
	"github.com/birdquiz/birdquiz/internal/stats"
	"github.com/birdquiz/birdquiz/internal/ui/components"
	"github.com/birdquiz/birdquiz/internal/ui/layout"
	"github.com/birdquiz/birdquiz/internal/ui/theme"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a quiz session in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		user, _ := cmd.Flags().GetString("user")
		count, _ := cmd.Flags().GetInt("count")
		category, _ := cmd.Flags().GetString("category")
		diffFlag, _ := cmd.Flags().GetString("difficulty")

		if count <= 0 {
			count = rt.cfg.Quiz.QuestionCount
		}
		if diffFlag == "" {
			diffFlag = rt.cfg.Quiz.Difficulty
		}
		diff, err := quiz.ParseDifficulty(diffFlag)
		if err != nil {
			return err
		}

		sess := session.New(rt.service(fixedUser(user)), session.Options{
			Count:  count,
			Filter: quiz.Filter{Category: category, Difficulty: diff},
			Policy: rt.cfg.Quiz.Policy(),
			Logger: rt.log,
		})
		defer sess.Close()

		ctx := cmd.Context()
		if err := sess.Load(ctx); err != nil {
			if errors.Is(err, session.ErrNoQuestions) {
				return fmt.Errorf("no questions available; import a dataset with `birdquiz import`: %w", err)
			}
			return err
		}
		if err := sess.StartTimer(ctx, session.DefaultTickInterval); err != nil {
			return err
		}
		return playLoop(ctx, sess, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	playCmd.Flags().Int("count", 0, "Number of questions (default quiz.question_count)")
	playCmd.Flags().String("category", "", "Only birds of this family")
	playCmd.Flags().String("difficulty", "", "easy, medium, hard or mixed")
	playCmd.Flags().String("user", "", "Save answers and results under this user id")
}

var playHints = []layout.KeyHint{
	{Key: "1-4", Description: "pick an option"},
	{Key: "text", Description: "type the name"},
	{Key: "q", Description: "quit"},
}

// playLoop asks every question on out, reading answers line by line from in.
// It returns nil when the session completes or the player quits.
func playLoop(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		q, ok := sess.Current()
		if !ok {
			break
		}

		header := fmt.Sprintf("%d / %d", sess.Index()+1, sess.Total())
		fmt.Fprintln(out, layout.RenderHeader(header, stats.FormatDuration(sess.Elapsed()), layout.DefaultWidth))
		if q.ImageURL != "" {
			fmt.Fprintln(out, theme.Hint.Render("  "+q.ImageURL))
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, components.Choices{Prompt: q.Prompt, Options: q.Options}.View())
		fmt.Fprintln(out, layout.RenderFooter(playHints))

		var outcome *session.Outcome
		for outcome == nil {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return err
				}
				fmt.Fprintln(out)
				return nil
			}
			line := strings.TrimSpace(scanner.Text())
			if strings.EqualFold(line, "q") {
				fmt.Fprintln(out, theme.Hint.Render("Quiz abandoned."))
				return nil
			}

			var err error
			outcome, err = sess.Submit(ctx, answer.ResolveChoice(line, q.Options))
			switch {
			case errors.Is(err, session.ErrBlankAnswer):
				fmt.Fprintln(out, theme.Hint.Render("Type an answer or an option number."))
			case err != nil:
				return err
			}
		}
		printFeedback(out, q, outcome)
	}

	if res := sess.Result(); res != nil {
		printResult(out, res)
	}
	return nil
}

func printFeedback(out io.Writer, q quiz.Question, o *session.Outcome) {
	fmt.Fprintln(out)
	fmt.Fprint(out, components.Choices{
		Prompt:   q.Prompt,
		Options:  q.Options,
		Revealed: true,
		Correct:  q.CorrectAnswer,
		Chosen:   o.Answer.Submitted,
	}.View())

	v := o.Validation
	switch {
	case v.Correct && v.MatchType == answer.MatchExact:
		fmt.Fprintln(out, theme.Correct.Render("正解!"))
	case v.Correct:
		fmt.Fprintln(out, theme.Correct.Render(fmt.Sprintf("正解! (%s match, %.0f%%)", v.MatchType, v.Confidence*100)))
		fmt.Fprintln(out, theme.Hint.Render("  正しい名前: "+q.CorrectAnswer))
	default:
		fmt.Fprintln(out, theme.Incorrect.Render("不正解"))
		fmt.Fprintln(out, theme.Hint.Render("  正解は "+q.CorrectAnswer))
	}
	for _, err := range []error{o.AnswerSaveErr, o.ResultSaveErr} {
		if err != nil {
			fmt.Fprintln(out, theme.Warning.Render("  warning: "+err.Error()))
		}
	}
	fmt.Fprintln(out)
}

func printResult(out io.Writer, r *quiz.Result) {
	fmt.Fprintln(out, theme.Title.Render("Quiz complete"))
	bar := components.NewProgressBar("Accuracy", r.Accuracy(), true, layout.DefaultWidth)
	fmt.Fprintln(out, bar.View())
	fmt.Fprintln(out, layout.RenderRow("Correct", fmt.Sprintf("%d / %d", r.CorrectAnswers, r.TotalQuestions)))
	fmt.Fprintln(out, layout.RenderRow("Score", r.Score))
	fmt.Fprintln(out, layout.RenderRow("Time", stats.FormatDuration(r.TimeTaken)))
	fmt.Fprintln(out, layout.RenderRow("Difficulty", r.DifficultyLevel))
	if r.Category != "" {
		fmt.Fprintln(out, layout.RenderRow("Category", r.Category))
	}
}
