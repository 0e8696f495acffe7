package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quizapp-service/internal/app"
	"quizapp-service/internal/client"
)

// NewPlayCmd runs a quiz attempt in the terminal against a running server.
func NewPlayCmd() *cobra.Command {
	var (
		serverURL string
		userID    int64
		quizID    int64
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a quiz interactively from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, serverURL, userID, quizID)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "base URL of the quiz server")
	cmd.Flags().Int64Var(&userID, "user", 0, "user id taking the quiz")
	cmd.Flags().Int64Var(&quizID, "quiz", 0, "quiz id to play")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}

func runPlay(cmd *cobra.Command, serverURL string, userID, quizID int64) error {
	ctx := cmd.Context()
	api := client.NewHTTPClient(serverURL, nil)

	quiz, err := api.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s — %s [%s]\n", quiz.Title, quiz.Description, quiz.Status)

	session := app.NewSession(userID, quizID, api, api, app.NewRemoteGrader(api))
	if err := session.Start(ctx); err != nil {
		return err
	}
	if prior, ok := session.Prior(); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "previous score: %d (played %s)\n", prior.Score, prior.PlayedAt.Format("2006-01-02"))
	}

	reader := bufio.NewScanner(cmd.InOrStdin())
	for _, q := range session.Questions() {
		options := session.Options(q.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", q.Text)
		for i, opt := range options {
			fmt.Fprintf(cmd.OutOrStdout(), "  %d) %s\n", i+1, opt)
		}
		for {
			fmt.Fprint(cmd.OutOrStdout(), "answer> ")
			if !reader.Scan() {
				return fmt.Errorf("input closed before quiz was finished")
			}
			choice, err := strconv.Atoi(strings.TrimSpace(reader.Text()))
			if err != nil || choice < 1 || choice > len(options) {
				fmt.Fprintf(cmd.OutOrStdout(), "enter a number between 1 and %d\n", len(options))
				continue
			}
			if err := session.Select(q.ID, options[choice-1]); err != nil {
				return err
			}
			break
		}
	}

	result, err := session.Submit(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nscore: %d/%d\n", result.Score, result.TotalQuestions)
	for _, fb := range result.Feedback {
		mark := "✗"
		if fb.IsCorrect {
			mark = "✓"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s question %d: you said %q", mark, fb.QuestionID, fb.UserAnswer)
		if !fb.IsCorrect {
			fmt.Fprintf(cmd.OutOrStdout(), " (correct: %q)", fb.CorrectAnswer)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}
