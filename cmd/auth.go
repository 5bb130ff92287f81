package cmd

import (
	"fmt"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2/google"

	"ace/pkg/config"
)

const (
	apiKeyURL  = "https://aistudio.google.com/apikey"
	billingURL = "https://ai.google.dev/gemini-api/docs/billing"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API keys and cloud credentials",
	Long:  `Check which credentials are configured and get a Gemini API key for video generation.`,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check authentication status for all services",
	Long:  `Verify which services are configured and authenticated.`,
	RunE:  runAuthStatus,
}

var authKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Open the page to create a billing-enabled Gemini API key",
	RunE:  runAuthKey,
}

func init() {
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authKeyCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(infoStyle.Render("\nService Authentication Status:\n"))

	switch {
	case cfg.GeminiAPIKey != "":
		fmt.Println(successStyle.Render("✓ Gemini: API key configured"))
	case cfg.GeminiKeySecret != "":
		fmt.Println(successStyle.Render("✓ Gemini: key read from " + cfg.GeminiKeySecret))
	default:
		fmt.Println(errorStyle.Render("✗ Gemini: missing GEMINI_API_KEY"))
		fmt.Println(infoStyle.Render("  Run: ace auth key"))
	}

	if cfg.LLM.Provider == config.ProviderGroq {
		if cfg.GroqAPIKey != "" {
			fmt.Println(successStyle.Render("✓ Groq: API key configured"))
		} else {
			fmt.Println(errorStyle.Render("✗ Groq: provider is groq but GROQ_API_KEY is missing"))
		}
	} else if cfg.GroqAPIKey != "" {
		fmt.Println(infoStyle.Render("○ Groq: key set, provider is " + cfg.LLM.Provider))
	}

	if cfg.GCSBucket != "" {
		fmt.Println(successStyle.Render("✓ Sharing: bucket " + cfg.GCSBucket))
	} else {
		fmt.Println(infoStyle.Render("○ Sharing: not configured (optional)"))
	}

	if cfg.GCSBucket != "" || cfg.GeminiKeySecret != "" {
		if _, err := google.FindDefaultCredentials(ctx); err == nil {
			fmt.Println(successStyle.Render("✓ Google Cloud: application default credentials found"))
		} else {
			fmt.Println(errorStyle.Render("✗ Google Cloud: no application default credentials"))
			fmt.Println(infoStyle.Render("  Run: gcloud auth application-default login"))
		}
	}

	fmt.Println()
	return nil
}

func runAuthKey(cmd *cobra.Command, args []string) error {
	fmt.Println(infoStyle.Render(`
Video generation requires a Gemini API key from a Google Cloud project
with billing enabled. Billing details: ` + billingURL + `

1. Create or copy a key on the page that opens
2. Add it to .env as GEMINI_API_KEY=<key>, or run: ace setup
`))

	if err := browser.OpenURL(apiKeyURL); err != nil {
		fmt.Println(warnStyle.Render("Could not open a browser. Visit: " + apiKeyURL))
	}
	return nil
}
