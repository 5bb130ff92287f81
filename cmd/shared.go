package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ace/internal/app"
	"ace/internal/storage"
	"ace/pkg/config"
)

var sharedCmd = &cobra.Command{
	Use:   "shared",
	Short: "List videos shared to the GCS bucket",
	Long:  `List previously shared videos with a fresh link for each.`,
	RunE:  runShared,
}

func init() {
	rootCmd.AddCommand(sharedCmd)
}

func runShared(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc, err := app.BuildService(ctx, cfg, app.BuildOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	var videos []storage.SharedVideo
	err = runWithSpinner(ctx, "Listing shared videos...", func() error {
		var err error
		videos, err = svc.ListShared(ctx)
		return err
	})
	if err != nil {
		fmt.Println(describeFailure(err))
		return err
	}

	printShared(videos)
	return nil
}

func printShared(videos []storage.SharedVideo) {
	if len(videos) == 0 {
		fmt.Println(infoStyle.Render("No shared videos yet."))
		return
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Shared videos (%d)", len(videos))))
	for _, v := range videos {
		fmt.Printf("  %s  %s  %d KB\n", v.Updated.Format("2006-01-02 15:04"), v.Name, v.Size/1024)
		fmt.Println(infoStyle.Render("    " + v.Link))
	}
}
