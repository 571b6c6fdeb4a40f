package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmonteir/handyspeech/internal/adapters/cli/tui"
	"github.com/lmonteir/handyspeech/internal/domain"
)

var addFromFileFlag string

// NewAddCmd creates the add subcommand
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <project> [source...]",
		Short: "Add audio to a project from URLs or local files",
		Long: `Add audio sources to a project. Sources are remote URLs (downloaded
and converted to mp3 via yt-dlp) or local media file paths (copied in).
Adding marks the project for processing; run 'handyspeech process' after.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := args[1:]
			if addFromFileFlag != "" {
				fromFile, err := ParseSourcesFile(addFromFileFlag)
				if err != nil {
					return err
				}
				sources = append(sources, fromFile...)
			}
			if len(sources) == 0 {
				return fmt.Errorf("no sources given (pass them as arguments or via --file)")
			}
			return runAdd(args[0], sources)
		},
	}

	cmd.Flags().StringVarP(&addFromFileFlag, "file", "f", "", "Read sources from a file, one per line")
	return cmd
}

func runAdd(project string, sources []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	hasRemote := false
	for _, s := range sources {
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			hasRemote = true
		}
	}
	if hasRemote {
		if err := ensureDownloader(app); err != nil {
			return err
		}
	}

	ctx := context.Background()
	progress := tui.NewBatchProgress("sources", len(sources), quietFlag)

	for _, source := range sources {
		start := time.Now()
		result, err := app.IngestSvc.AddSource(ctx, project, source)
		if err != nil {
			progress.AddResult(source, false, err.Error(), time.Since(start))
			continue
		}
		progress.AddResult(result.Filename, true, "", time.Since(start))
	}

	progress.Complete()

	if progress.GetSuccessCount() > 0 {
		fmt.Printf("\nRun 'handyspeech process %s' to transcribe and index\n", project)
	}
	if progress.GetFailureCount() > 0 {
		return fmt.Errorf("%d source(s) failed", progress.GetFailureCount())
	}
	return nil
}

// ensureDownloader installs yt-dlp on first use and checks for ffmpeg.
func ensureDownloader(app *App) error {
	if !app.Downloader.IsAvailable() {
		fmt.Println("Installing yt-dlp...")
		err := app.Downloader.Install(context.Background(), func(downloaded, total int64) {
			if !quietFlag && total > 0 {
				pct := float64(downloaded) / float64(total) * 100
				fmt.Printf("\rProgress: %.1f%%", pct)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to install yt-dlp: %w", err)
		}
		fmt.Println("\nyt-dlp installed")
	}

	if !app.Downloader.IsFFmpegAvailable() {
		return fmt.Errorf("%w: %s", domain.ErrFFmpegNotFound, app.Downloader.FFmpegInstructions())
	}
	return nil
}
