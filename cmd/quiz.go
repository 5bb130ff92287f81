package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"ace/internal/quiz"
)

var (
	quizFile string
	quizJSON bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate a multiple-choice quiz from study material",
	RunE:  runQuiz,
}

func init() {
	quizCmd.Flags().StringVarP(&quizFile, "file", "f", "", "Read study material from a file")
	quizCmd.Flags().BoolVar(&quizJSON, "json", false, "Print the quiz as JSON instead of running it")
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	interactive := stdinIsTerminal()

	text, err := readStudyText(ctx, quizFile, cmd.InOrStdin(), interactive)
	if err != nil {
		return err
	}

	svc, session, err := openSession(ctx, interactive && !quizJSON)
	if err != nil {
		return err
	}
	defer closeSession(svc, session)

	var q *quiz.Quiz
	err = runWithSpinner(ctx, "Writing your quiz...", func() error {
		var err error
		q, err = session.Quiz(ctx, text)
		return err
	})
	if err != nil {
		fmt.Println(describeFailure(err))
		return err
	}

	if quizJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	}

	if !interactive {
		printQuiz(q)
		return nil
	}
	return takeQuiz(ctx, q)
}

func printQuiz(q *quiz.Quiz) {
	fmt.Println(titleStyle.Render(q.Title))
	for i, question := range q.Questions {
		fmt.Printf("%d. %s\n", i+1, question.Question)
		for j, option := range question.Options {
			marker := " "
			if question.IsCorrect(option) {
				marker = "*"
			}
			fmt.Printf("   %s %c) %s\n", marker, 'a'+j, option)
		}
		fmt.Println()
	}
}

// takeQuiz asks each question in turn and reveals the answer after each pick.
func takeQuiz(ctx context.Context, q *quiz.Quiz) error {
	fmt.Println(titleStyle.Render(q.Title))

	score := 0
	for i, question := range q.Questions {
		options := make([]huh.Option[string], len(question.Options))
		for j, option := range question.Options {
			options[j] = huh.NewOption(option, option)
		}

		var choice string
		field := huh.NewSelect[string]().
			Title(fmt.Sprintf("%d/%d  %s", i+1, len(q.Questions), question.Question)).
			Options(options...).
			Value(&choice)
		if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
			return err
		}

		if question.IsCorrect(choice) {
			score++
			fmt.Println(successStyle.Render("✓ Correct!"))
		} else {
			fmt.Println(errorStyle.Render("✗ Not quite. The answer is: " + question.CorrectAnswer))
		}
	}

	fmt.Println()
	fmt.Println(titleStyle.Render(fmt.Sprintf("Score: %d/%d", score, len(q.Questions))))
	return nil
}
