package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"

	"ace/internal/app"
	"ace/internal/failure"
	"ace/pkg/config"
)

const maxInputBytes = 1 << 20

// readStudyText takes the text from a file, piped stdin, or an editor prompt,
// in that order.
func readStudyText(ctx context.Context, path string, stdin io.Reader, interactive bool) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if !interactive {
		data, err := io.ReadAll(io.LimitReader(stdin, maxInputBytes))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	var text string
	field := huh.NewText().
		Title("Study material").
		Description("Paste your notes, a chapter, or lecture transcript.").
		CharLimit(0).
		Value(&text).
		Validate(required("Study material"))
	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// openSession loads configuration, builds the service and starts a session with
// a selected key. A failed selection is reported but not fatal: commands that
// need the key fail with a clear message later.
func openSession(ctx context.Context, interactive bool) (*app.Service, *app.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	svc, err := app.BuildService(ctx, cfg, app.BuildOptions{Interactive: interactive})
	if err != nil {
		return nil, nil, err
	}

	session := svc.NewSession()
	if ok, problem := session.SelectKey(ctx); !ok {
		fmt.Println(warnStyle.Render("⚠ " + problem))
		fmt.Println(infoStyle.Render("  Set GEMINI_API_KEY in .env or run: ace auth key"))
	}

	return svc, session, nil
}

func closeSession(svc *app.Service, session *app.Session) {
	_ = session.Close()
	_ = svc.Close()
}

// runWithSpinner shows a spinner while fn runs. Without a terminal the title
// goes to stderr and fn runs directly.
func runWithSpinner(ctx context.Context, title string, fn func() error) error {
	if !stdinIsTerminal() {
		fmt.Fprintln(os.Stderr, infoStyle.Render(title))
		return fn()
	}

	var err error
	if spinErr := spinner.New().
		Title(title).
		Context(ctx).
		Action(func() { err = fn() }).
		Run(); spinErr != nil && err == nil {
		err = spinErr
	}
	return err
}

// describeFailure renders an error for the terminal. Classified failures show
// their message verbatim.
func describeFailure(err error) string {
	var fe *failure.Error
	if errors.As(err, &fe) {
		return errorStyle.Render("✗ " + fe.Message)
	}
	return errorStyle.Render("✗ " + err.Error())
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
