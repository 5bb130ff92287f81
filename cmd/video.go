package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"ace/internal/app"
	"ace/internal/bookmark"
	"ace/internal/failure"
	"ace/internal/video"
)

var (
	videoFile           string
	videoImage          string
	videoOutput         string
	videoShare          bool
	videoNoInteractive  bool
	videoProgressPeriod = 10 * time.Second
)

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Generate an explainer video from study material",
	Long: `Summarize study material and turn the summary into a short generated video.
Generation is an experimental feature and usually takes a few minutes.`,
	RunE: runVideo,
}

func init() {
	videoCmd.Flags().StringVarP(&videoFile, "file", "f", "", "Read study material from a file")
	videoCmd.Flags().StringVar(&videoImage, "image", "", "Optional starting image for the video")
	videoCmd.Flags().StringVarP(&videoOutput, "output", "o", "", "Save the video to this path")
	videoCmd.Flags().BoolVar(&videoShare, "share", false, "Upload the video and print a share link")
	videoCmd.Flags().BoolVar(&videoNoInteractive, "no-interactive", false, "Skip the menu after generation")
	rootCmd.AddCommand(videoCmd)
}

const (
	actionPlay           = "play"
	actionAddBookmark    = "bookmark-add"
	actionListBookmarks  = "bookmark-list"
	actionRemoveBookmark = "bookmark-remove"
	actionDownload       = "download"
	actionShare          = "share"
	actionCopyLink       = "link"
	actionRegenerate     = "regenerate"
	actionSelectKey      = "select-key"
	actionQuit           = "quit"
)

func runVideo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	interactive := stdinIsTerminal() && !videoNoInteractive

	text, err := readStudyText(ctx, videoFile, cmd.InOrStdin(), stdinIsTerminal())
	if err != nil {
		return err
	}

	var image *video.Image
	if videoImage != "" {
		image, err = video.LoadImage(videoImage)
		if err != nil {
			return err
		}
	}

	svc, session, err := openSession(ctx, interactive)
	if err != nil {
		return err
	}
	defer closeSession(svc, session)

	result, err := generateVideo(ctx, interactive, func(hook func(video.State, *video.Operation)) (*app.VideoResult, error) {
		return session.GenerateVideo(ctx, text, image, hook)
	})
	if err != nil {
		fmt.Println(describeFailure(err))
		if !interactive {
			return err
		}
	} else {
		printVideoResult(result)
	}

	if videoOutput != "" && session.Asset() != nil {
		if path, err := session.Download(videoOutput); err != nil {
			fmt.Println(describeFailure(err))
		} else {
			fmt.Println(successStyle.Render("✓ Saved to " + path))
		}
	}

	if videoShare && session.Asset() != nil {
		shareVideo(ctx, session)
	}

	if !interactive {
		return nil
	}
	return videoMenu(ctx, svc, session, image)
}

// generateVideo runs one generation. Interactive runs show a spinner; others
// print a status line per state change and rotating progress messages.
func generateVideo(ctx context.Context, interactive bool, run func(func(video.State, *video.Operation)) (*app.VideoResult, error)) (*app.VideoResult, error) {
	if interactive {
		var result *app.VideoResult
		err := runWithSpinner(ctx, video.LoadingMessage(0)+" (this can take a few minutes)", func() error {
			var err error
			result, err = run(func(state video.State, op *video.Operation) {
				slog.Debug("Video job state", "state", state, "operation", operationName(op))
			})
			return err
		})
		return result, err
	}

	done := make(chan struct{})
	defer close(done)
	go printProgress(done)

	return run(func(state video.State, op *video.Operation) {
		slog.Info("Video job state", "state", state, "operation", operationName(op))
	})
}

func printProgress(done <-chan struct{}) {
	ticker := time.NewTicker(videoProgressPeriod)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-done:
			return
		case <-ticker.C:
			fmt.Println(infoStyle.Render(video.LoadingMessage(n)))
		}
	}
}

func operationName(op *video.Operation) string {
	if op == nil {
		return ""
	}
	return op.Name
}

func printVideoResult(result *app.VideoResult) {
	fmt.Println(successStyle.Render("✓ Your video is ready"))
	fmt.Println(titleStyle.Render("Summary"))
	fmt.Println(summaryBoxStyle.Render(result.Summary))
	fmt.Println(infoStyle.Render("  " + result.Asset.PlayableURL))
}

func videoMenu(ctx context.Context, svc *app.Service, session *app.Session, image *video.Image) error {
	for {
		action, err := chooseAction(ctx, svc, session)
		if err != nil {
			return err
		}

		switch action {
		case actionQuit:
			return nil
		case actionPlay:
			if err := browser.OpenURL(session.Asset().PlayableURL); err != nil {
				fmt.Println(warnStyle.Render("Could not open a player: " + err.Error()))
				fmt.Println(infoStyle.Render("  " + session.Asset().PlayableURL))
			}
		case actionAddBookmark:
			addBookmark(ctx, session.Bookmarks())
		case actionListBookmarks:
			printBookmarks(session.Bookmarks())
		case actionRemoveBookmark:
			removeBookmark(ctx, session.Bookmarks())
		case actionDownload:
			if path, err := session.Download(""); err != nil {
				fmt.Println(describeFailure(err))
			} else {
				fmt.Println(successStyle.Render("✓ Saved to " + path))
			}
		case actionShare:
			shareVideo(ctx, session)
		case actionCopyLink:
			fmt.Println(session.Asset().PlayableURL)
		case actionSelectKey:
			if ok, problem := session.SelectKey(ctx); ok {
				fmt.Println(successStyle.Render("✓ API key selected"))
			} else {
				fmt.Println(warnStyle.Render("⚠ " + problem))
			}
		case actionRegenerate:
			result, err := generateVideo(ctx, true, func(hook func(video.State, *video.Operation)) (*app.VideoResult, error) {
				return session.Regenerate(ctx, image, hook)
			})
			if err != nil {
				fmt.Println(describeFailure(err))
				if failure.Is(err, failure.CredentialInvalid) {
					fmt.Println(infoStyle.Render("  Choose \"Select API key\" to try another key."))
				}
				continue
			}
			printVideoResult(result)
		}
	}
}

func chooseAction(ctx context.Context, svc *app.Service, session *app.Session) (string, error) {
	hasVideo := session.Asset() != nil

	var options []huh.Option[string]
	if hasVideo {
		options = append(options,
			huh.NewOption("Play video", actionPlay),
			huh.NewOption("Add bookmark", actionAddBookmark),
			huh.NewOption(fmt.Sprintf("List bookmarks (%d)", session.Bookmarks().Len()), actionListBookmarks),
		)
		if session.Bookmarks().Len() > 0 {
			options = append(options, huh.NewOption("Remove bookmark", actionRemoveBookmark))
		}
		options = append(options, huh.NewOption("Download", actionDownload))
		if svc.CanShare() {
			options = append(options, huh.NewOption("Share", actionShare))
		}
		options = append(options, huh.NewOption("Copy link", actionCopyLink))
	}
	if !session.Credential().IsSelected() {
		options = append(options, huh.NewOption("Select API key", actionSelectKey))
	}
	if session.Summary() != "" {
		options = append(options, huh.NewOption("Regenerate video", actionRegenerate))
	}
	options = append(options, huh.NewOption("Quit", actionQuit))

	var action string
	field := huh.NewSelect[string]().
		Title("What next?").
		Options(options...).
		Value(&action)
	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		return "", err
	}
	return action, nil
}

func addBookmark(ctx context.Context, list *bookmark.List) {
	var at, label string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Time").
				Description("Seconds or mm:ss").
				Placeholder("1:15").
				Value(&at).
				Validate(func(s string) error {
					_, err := bookmark.ParseOffset(s)
					return err
				}),
			huh.NewInput().
				Title("Label").
				Value(&label).
				Validate(required("Label")),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return
	}

	offset, _ := bookmark.ParseOffset(at)
	b, err := list.Add(offset, label)
	if err != nil {
		fmt.Println(warnStyle.Render(err.Error()))
		return
	}
	fmt.Println(successStyle.Render("✓ Bookmarked " + b.String()))
}

func printBookmarks(list *bookmark.List) {
	items := list.Items()
	if len(items) == 0 {
		fmt.Println(infoStyle.Render("No bookmarks yet."))
		return
	}
	fmt.Println(titleStyle.Render("Bookmarks"))
	for i, b := range items {
		fmt.Printf("  %d. %s\n", i+1, b.String())
	}
}

func removeBookmark(ctx context.Context, list *bookmark.List) {
	items := list.Items()
	if len(items) == 0 {
		return
	}

	options := make([]huh.Option[string], len(items))
	for i, b := range items {
		options[i] = huh.NewOption(b.String(), strconv.Itoa(i))
	}

	var choice string
	field := huh.NewSelect[string]().Title("Remove which bookmark?").Options(options...).Value(&choice)
	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		return
	}

	index, _ := strconv.Atoi(choice)
	if err := list.Remove(index); err != nil {
		fmt.Println(warnStyle.Render(err.Error()))
	}
}

func shareVideo(ctx context.Context, session *app.Session) {
	var link string
	err := runWithSpinner(ctx, "Uploading...", func() error {
		var err error
		link, err = session.Share(ctx)
		return err
	})
	if err != nil {
		fmt.Println(describeFailure(err))
		return
	}
	fmt.Println(successStyle.Render("✓ Share link:"))
	fmt.Println("  " + link)
}
