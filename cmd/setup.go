package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ace/pkg/config"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const envFile = ".env"

// envOrder is the order keys are written to .env.
var envOrder = []string{
	"GEMINI_API_KEY",
	"GEMINI_API_KEY_SECRET",
	"GROQ_API_KEY",
	"GCS_BUCKET",
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Ace",
	Long:  `Configure API keys, create the output directory, and write a .env file for Ace.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fmt.Println(titleStyle.Render("📚 Ace Setup"))

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Creating directories", createDirectories},
		{"Configuring environment", configureEnv},
	}

	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return nil
}

func createDirectories(_ context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Video.OutputDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", cfg.Video.OutputDir, err)
	}
	fmt.Println(successStyle.Render("✓ Created " + cfg.Video.OutputDir))
	return nil
}

func configureEnv(ctx context.Context) error {
	if _, err := os.Stat(envFile); err == nil {
		var overwrite bool
		field := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite)
		if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return nil
		}
	}

	env := make(map[string]string)

	if err := configureRequiredKeys(ctx, env); err != nil {
		return err
	}

	if err := configureOptionalKeys(ctx, env); err != nil {
		return err
	}

	if err := writeEnvFile(envFile, env); err != nil {
		return err
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	printNextSteps()
	return nil
}

func configureRequiredKeys(ctx context.Context, env map[string]string) error {
	var geminiKey string

	fmt.Println(infoStyle.Render(`
Video generation needs a Gemini API key from a project with billing enabled.
Create one at https://aistudio.google.com/apikey
`))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Gemini API Key").
				EchoMode(huh.EchoModePassword).
				Value(&geminiKey).
				Validate(required("Gemini API Key")),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return err
	}

	env["GEMINI_API_KEY"] = strings.TrimSpace(geminiKey)
	return nil
}

func configureOptionalKeys(ctx context.Context, env map[string]string) error {
	var groqKey, bucket, secret string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Groq API Key (optional)").
				Description("Use Groq for summaries, quizzes and the tutor. https://console.groq.com/keys").
				EchoMode(huh.EchoModePassword).
				Value(&groqKey),
			huh.NewInput().
				Title("GCS bucket (optional)").
				Description("Enables sharing videos with a signed link").
				Value(&bucket),
			huh.NewInput().
				Title("Secret Manager secret (optional)").
				Description("projects/<project>/secrets/<name> holding the Gemini key").
				Value(&secret),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return err
	}

	setIfPresent(env, "GROQ_API_KEY", groqKey)
	setIfPresent(env, "GCS_BUCKET", bucket)
	setIfPresent(env, "GEMINI_API_KEY_SECRET", secret)
	return nil
}

func setIfPresent(env map[string]string, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		env[key] = value
	}
}

// writeEnvFile writes the known keys in envOrder, skipping empty values.
func writeEnvFile(path string, env map[string]string) error {
	out := make(map[string]string, len(env))
	for _, key := range envOrder {
		if val, ok := env[key]; ok && val != "" {
			out[key] = val
		}
	}
	if err := godotenv.Write(out, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Check credentials: ace auth status")
	fmt.Println("  2. Summarize notes:   ace summarize -f notes.txt")
	fmt.Println("  3. Make a video:      ace video -f notes.txt")
}
