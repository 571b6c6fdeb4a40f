package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lmonteir/handyspeech/internal/adapters/cli/tui"
	"github.com/lmonteir/handyspeech/internal/config"
)

// NewSettingsCmd creates the settings subcommand
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change transcription settings",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE:  runSettingsShow,
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change a setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _ := cmd.Flags().GetString("model")
			computeType, _ := cmd.Flags().GetString("compute-type")
			threads, _ := cmd.Flags().GetInt("cpu-threads")
			return runSettingsSet(config.UserConfig{
				Model:       model,
				ComputeType: computeType,
				CPUThreads:  threads,
			})
		},
	}
	setCmd.Flags().String("model", "", "Default whisper model")
	setCmd.Flags().String("compute-type", "", "Whisper compute type")
	setCmd.Flags().Int("cpu-threads", 0, "CPU threads used for transcription")

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	uc := app.AppConfig.UserConfig
	fmt.Println()
	fmt.Printf("  Model:        %s\n", uc.Model)
	fmt.Printf("  Compute type: %s\n", uc.ComputeType)
	fmt.Printf("  CPU threads:  %d\n", uc.CPUThreads)
	fmt.Println()
	fmt.Printf("Config file: %s\n", config.AppConfigPath())

	return nil
}

func runSettingsSet(update config.UserConfig) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	if update.Model == "" && update.ComputeType == "" && update.CPUThreads <= 0 {
		return fmt.Errorf("nothing to change (use --model, --compute-type or --cpu-threads)")
	}

	if err := app.AppConfig.UpdateUserConfig(config.AppConfigPath(), update); err != nil {
		return err
	}

	fmt.Println("Settings saved")
	return runSettingsShow(nil, nil)
}

// runSettingsInteractive walks through the tunable settings with menus.
func runSettingsInteractive() error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	for {
		uc := app.AppConfig.UserConfig
		choice, err := tui.RunMenu("Settings", []tui.MenuOption{
			{Label: "Default model", Value: "model", Hint: uc.Model},
			{Label: "Compute type", Value: "compute", Hint: uc.ComputeType},
			{Label: "CPU threads", Value: "threads", Hint: strconv.Itoa(uc.CPUThreads)},
			{Label: "Back", Value: "back"},
		})
		if err != nil {
			return err
		}

		switch choice {
		case "model":
			options := make([]tui.MenuOption, 0, len(app.AppConfig.Models))
			for _, m := range app.Transcriber.AvailableModels() {
				options = append(options, tui.MenuOption{Label: m.Name, Value: m.Name, Hint: tui.FormatSize(m.Size)})
			}
			model, err := tui.RunMenu("Default whisper model", options)
			if err != nil || model == "" {
				continue
			}
			if err := runSettingsSet(config.UserConfig{Model: model}); err != nil {
				fmt.Println("Error:", err)
			}
		case "compute":
			options := make([]tui.MenuOption, 0, len(app.AppConfig.ComputeTypes))
			for _, ct := range app.AppConfig.ComputeTypes {
				options = append(options, tui.MenuOption{Label: ct, Value: ct})
			}
			computeType, err := tui.RunMenu("Compute type", options)
			if err != nil || computeType == "" {
				continue
			}
			if err := runSettingsSet(config.UserConfig{ComputeType: computeType}); err != nil {
				fmt.Println("Error:", err)
			}
		case "threads":
			raw := promptLine("CPU threads: ")
			if raw == "" {
				continue
			}
			threads, err := strconv.Atoi(raw)
			if err != nil || threads <= 0 {
				fmt.Println("Enter a positive number")
				continue
			}
			if err := runSettingsSet(config.UserConfig{CPUThreads: threads}); err != nil {
				fmt.Println("Error:", err)
			}
		case "back", "":
			return nil
		}
	}
}
