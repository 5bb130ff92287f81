package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ace/internal/failure"
	"ace/internal/tutor"
)

var tutorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

const quitCommand = "/quit"

var tutorCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Chat with Ace, a friendly study tutor",
	Long:  `Start a tutoring conversation. Type /quit to leave.`,
	RunE:  runTutor,
}

func init() {
	rootCmd.AddCommand(tutorCmd)
}

func runTutor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	interactive := stdinIsTerminal()

	svc, session, err := openSession(ctx, interactive)
	if err != nil {
		return err
	}
	defer closeSession(svc, session)

	t := session.Tutor()
	for _, m := range t.History() {
		printTurn(m)
	}

	next := promptLine
	if !interactive {
		next = scanLines(cmd.InOrStdin())
	}

	for {
		line, err := next(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == quitCommand {
			return nil
		}
		if !interactive {
			printTurn(tutor.Message{Role: tutor.RoleUser, Text: line})
		}

		var reply string
		err = runWithSpinner(ctx, "Ace is thinking...", func() error {
			var err error
			reply, err = t.Send(ctx, line)
			return err
		})
		if err != nil {
			fmt.Println(describeFailure(err))
			if failure.Is(err, failure.Configuration) {
				return err
			}
			continue
		}
		printTurn(tutor.Message{Role: tutor.RoleModel, Text: reply})
	}
}

func printTurn(m tutor.Message) {
	if m.Role == tutor.RoleModel {
		fmt.Println(tutorStyle.Render("Ace: ") + m.Text)
		return
	}
	fmt.Println(infoStyle.Render("You: ") + m.Text)
}

func promptLine(ctx context.Context) (string, error) {
	var line string
	field := huh.NewInput().
		Title("You").
		Placeholder("Ask a question, or /quit").
		Value(&line)
	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		return "", err
	}
	printTurn(tutor.Message{Role: tutor.RoleUser, Text: line})
	return line, nil
}

func scanLines(r io.Reader) func(context.Context) (string, error) {
	scanner := bufio.NewScanner(r)
	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return scanner.Text(), nil
	}
}
