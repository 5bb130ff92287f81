package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var summaryBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("212")).
	Padding(0, 1).
	Width(80)

var summarizeFile string

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize study material into key points",
	Long:  `Condense study material into the short, engaging key points used as a video script.`,
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeFile, "file", "f", "", "Read study material from a file")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	interactive := stdinIsTerminal()

	text, err := readStudyText(ctx, summarizeFile, cmd.InOrStdin(), interactive)
	if err != nil {
		return err
	}

	svc, session, err := openSession(ctx, interactive)
	if err != nil {
		return err
	}
	defer closeSession(svc, session)

	var summary string
	err = runWithSpinner(ctx, "Summarizing...", func() error {
		var err error
		summary, err = session.Summarize(ctx, text)
		return err
	})
	if err != nil {
		fmt.Println(describeFailure(err))
		return err
	}

	fmt.Println(titleStyle.Render("Summary"))
	fmt.Println(summaryBoxStyle.Render(summary))
	return nil
}
