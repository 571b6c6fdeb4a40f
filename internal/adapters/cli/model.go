package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmonteir/handyspeech/internal/adapters/cli/tui"
)

// NewModelCmd creates the model subcommand
func NewModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage whisper models",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available models",
		RunE:  runModelList,
	}

	downloadCmd := &cobra.Command{
		Use:   "download <model>",
		Short: "Download a model into the shared cache",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelDownload,
	}

	removeCmd := &cobra.Command{
		Use:     "remove <model>",
		Aliases: []string{"delete"},
		Short:   "Remove a downloaded model",
		Args:    cobra.ExactArgs(1),
		RunE:    runModelRemove,
	}

	cmd.AddCommand(listCmd, downloadCmd, removeCmd)
	return cmd
}

func runModelList(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	models := app.Transcriber.AvailableModels()

	fmt.Println()
	fmt.Printf("  %-10s %-12s %s\n", "Model", "Size", "Status")
	fmt.Println("  " + strings.Repeat("-", 44))

	for _, m := range models {
		status := "not downloaded"
		if m.Downloaded {
			status = "downloaded"
		}
		if m.Name == app.AppConfig.UserConfig.Model {
			status += " (default)"
		}

		fmt.Printf("  %-10s %-12s %s\n", m.Name, tui.FormatSize(m.Size), status)
	}
	fmt.Println()

	return nil
}

func runModelDownload(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	model := args[0]

	if app.Transcriber.IsModelDownloaded(model) {
		fmt.Printf("Model '%s' is already downloaded\n", model)
		return nil
	}

	fmt.Printf("Downloading model '%s'...\n", model)

	err = app.Transcriber.DownloadModel(context.Background(), model, func(downloaded, total int64) {
		if total > 0 {
			pct := float64(downloaded) / float64(total) * 100
			fmt.Printf("\rProgress: %.1f%% (%s / %s)", pct, tui.FormatSize(downloaded), tui.FormatSize(total))
		}
	})

	if err != nil {
		return err
	}

	fmt.Println("\nModel downloaded successfully")
	return nil
}

func runModelRemove(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	model := args[0]

	if !app.Transcriber.IsModelDownloaded(model) {
		fmt.Printf("Model '%s' is not downloaded\n", model)
		return nil
	}

	if err := app.Transcriber.DeleteModel(model); err != nil {
		return err
	}

	fmt.Printf("Model '%s' removed\n", model)
	return nil
}

// runModelMenu is the interactive model management flow.
func runModelMenu() error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	options := make([]tui.MenuOption, 0, len(app.Transcriber.AvailableModels()))
	for _, m := range app.Transcriber.AvailableModels() {
		hint := tui.FormatSize(m.Size)
		if m.Downloaded {
			hint += ", downloaded"
		}
		options = append(options, tui.MenuOption{Label: m.Name, Value: m.Name, Hint: hint})
	}

	model, err := tui.RunMenu("Download or remove which model?", options)
	if err != nil || model == "" {
		return err
	}

	if app.Transcriber.IsModelDownloaded(model) {
		return runModelRemove(nil, []string{model})
	}
	return runModelDownload(nil, []string{model})
}
