package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmonteir/handyspeech/internal/adapters/cli/tui"
	"github.com/lmonteir/handyspeech/internal/logging"
)

var (
	// Global flags
	quietFlag   bool
	verboseFlag bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "handyspeech",
		Short: "Transcribe audio collections and ask questions about them",
		Long: `handyspeech organizes audio and video into projects, transcribes them
with whisper.cpp, and answers questions grounded on the transcripts.

Run without arguments for an interactive menu.`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verboseFlag)
		},
		RunE: runRoot,
	}

	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose console logging")

	rootCmd.AddCommand(NewProjectCmd())
	rootCmd.AddCommand(NewAddCmd())
	rootCmd.AddCommand(NewProcessCmd())
	rootCmd.AddCommand(NewAskCmd())
	rootCmd.AddCommand(NewModelCmd())
	rootCmd.AddCommand(NewDepsCmd())
	rootCmd.AddCommand(NewSettingsCmd())

	return rootCmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	return runInteractiveMenu()
}

func runInteractiveMenu() error {
	options := []tui.MenuOption{
		{Label: "Create a project", Value: "create"},
		{Label: "Open a project", Value: "open"},
		{Label: "Manage whisper models", Value: "models"},
		{Label: "Settings", Value: "settings"},
	}

	selected, err := tui.RunMenu("What would you like to do?", options)
	if err != nil {
		return err
	}

	switch selected {
	case "create":
		return runProjectCreateInteractive()
	case "open":
		return runProjectMenu()
	case "models":
		return runModelMenu()
	case "settings":
		return runSettingsInteractive()
	case "":
		fmt.Println("Cancelled")
	}

	return nil
}

// runProjectMenu picks a project, then loops over per-project actions.
func runProjectMenu() error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	infos, err := app.ProjectSvc.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No projects yet. Create one first.")
		return nil
	}

	options := make([]tui.MenuOption, 0, len(infos))
	for _, info := range infos {
		hint := fmt.Sprintf("%d audio, %d txt", info.Stats.AudioCount, info.Stats.TextCount)
		if info.Settings.NeedsProcessing {
			hint += ", needs processing"
		}
		options = append(options, tui.MenuOption{
			Label: info.Settings.Name,
			Value: info.Settings.Name,
			Hint:  hint,
		})
	}

	project, err := tui.RunMenu("Open which project?", options)
	if err != nil || project == "" {
		return err
	}

	for {
		action, err := tui.RunMenu("Project "+project, []tui.MenuOption{
			{Label: "Add audio (URL or file)", Value: "add"},
			{Label: "Process (transcribe + index)", Value: "process"},
			{Label: "Ask a question", Value: "ask"},
			{Label: "Remove files", Value: "remove"},
			{Label: "Delete project", Value: "delete"},
			{Label: "Back", Value: "back"},
		})
		if err != nil {
			return err
		}

		switch action {
		case "add":
			source := promptLine("Enter a URL or file path: ")
			if source == "" {
				continue
			}
			if err := runAdd(project, []string{source}); err != nil {
				fmt.Println("Error:", err)
			}
		case "process":
			if err := runProcess(project, processFlags{}); err != nil {
				fmt.Println("Error:", err)
			}
		case "ask":
			if err := runAskLoop(project); err != nil {
				fmt.Println("Error:", err)
			}
		case "remove":
			if err := runRemoveFiles(project); err != nil {
				fmt.Println("Error:", err)
			}
		case "delete":
			confirm := promptLine(fmt.Sprintf("Delete project %q and all its files? [y/N] ", project))
			if strings.EqualFold(confirm, "y") {
				if err := app.ProjectSvc.Delete(project); err != nil {
					return err
				}
				fmt.Println("Project deleted")
				return nil
			}
		case "back", "":
			return nil
		}
	}
}

func runRemoveFiles(project string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	files, err := app.Store.ListAudioFiles(project)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No audio files in this project")
		return nil
	}

	options := make([]tui.CheckboxOption, 0, len(files))
	for _, file := range files {
		options = append(options, tui.CheckboxOption{Label: file, Value: file})
	}
	selected, err := tui.RunCheckbox("Remove which files?", options, 0)
	if err != nil {
		return err
	}

	for _, file := range selected {
		if err := app.IngestSvc.RemoveAsset(project, file); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", file)
	}
	if len(selected) > 0 {
		fmt.Println("Run process to rebuild the index without them")
	}
	return nil
}

func promptLine(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
