package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmonteir/handyspeech/internal/adapters/cli/tui"
	"github.com/lmonteir/handyspeech/internal/application"
)

type processFlags struct {
	skipTranscribe bool
	skipIndex      bool
	srt            bool
}

// NewProcessCmd creates the process subcommand
func NewProcessCmd() *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:   "process <project>",
		Short: "Transcribe the project's audio and rebuild its index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.skipTranscribe, "skip-transcribe", false, "Only rebuild the index from existing transcripts")
	cmd.Flags().BoolVar(&flags.skipIndex, "skip-index", false, "Only transcribe, leave the index untouched")
	cmd.Flags().BoolVar(&flags.srt, "srt", false, "Also write .srt subtitle files")
	return cmd
}

func runProcess(project string, flags processFlags) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	steps := []string{"Checking dependencies"}
	transcribeStep, indexStep := -1, -1
	if !flags.skipTranscribe {
		transcribeStep = len(steps)
		steps = append(steps, "Transcribing")
	}
	if !flags.skipIndex {
		indexStep = len(steps)
		steps = append(steps, "Building index")
	}

	progress := tui.NewProgressDisplay(steps, quietFlag)

	progress.StartStep(0)
	if !flags.skipTranscribe {
		settings, err := app.Store.LoadSettings(project)
		if err != nil {
			progress.FailStep(0, err.Error())
			return err
		}
		model := settings.Model
		if model == "" {
			model = app.AppConfig.UserConfig.Model
		}
		if !app.Transcriber.IsModelDownloaded(model) {
			if err := app.Transcriber.DownloadModel(context.Background(), model, func(d, t int64) {
				progress.UpdateProgress(0, d, t)
			}); err != nil {
				progress.FailStep(0, err.Error())
				return fmt.Errorf("failed to download model: %w", err)
			}
		}
	}
	progress.CompleteStep(0)

	audios, err := app.Store.ListAudioFiles(project)
	if err != nil {
		return err
	}

	batch := tui.NewBatchProgress("files", len(audios), quietFlag || flags.skipTranscribe)
	fileStart := time.Now()

	if transcribeStep >= 0 {
		progress.StartStep(transcribeStep)
	}

	spinnerDone := progress.StartSpinner()

	report, err := app.IngestSvc.Process(context.Background(), project, application.ProcessOptions{
		SkipTranscribe: flags.skipTranscribe,
		SkipIndex:      flags.skipIndex,
		SRT:            flags.srt,
		FileDone: func(outcome application.FileOutcome) {
			errMsg := ""
			if outcome.Err != nil {
				errMsg = outcome.Err.Error()
			}
			batch.AddResult(outcome.File, outcome.Err == nil, errMsg, time.Since(fileStart))
		},
	})

	close(spinnerDone)

	if err != nil {
		if transcribeStep >= 0 {
			progress.FailStep(transcribeStep, err.Error())
		} else if indexStep >= 0 {
			progress.FailStep(indexStep, err.Error())
		}
		return err
	}

	if transcribeStep >= 0 {
		progress.CompleteStep(transcribeStep)
	}
	if indexStep >= 0 {
		progress.CompleteStep(indexStep)
	}

	if !quietFlag {
		fmt.Println()
		fmt.Printf("Run %s finished in %.1fs\n", report.RunID, report.Duration.Seconds())
		if len(report.Transcribed) > 0 {
			fmt.Printf("  Transcribed: %d ok, %d failed\n", len(report.Transcribed)-report.Failed(), report.Failed())
		}
		if report.ChunkCount > 0 {
			fmt.Printf("  Indexed: %d chunks from %d transcripts\n", report.ChunkCount, report.IndexedFiles)
		}
		for _, outcome := range report.Transcribed {
			if outcome.Err != nil {
				fmt.Printf("  ✗ %s: %v\n", outcome.File, outcome.Err)
			}
		}
	}

	return nil
}
