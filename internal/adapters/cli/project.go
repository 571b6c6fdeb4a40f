package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmonteir/handyspeech/internal/adapters/cli/tui"
)

var projectDescriptionFlag string

// NewProjectCmd creates the project subcommand
func NewProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectCreate(args[0], projectDescriptionFlag)
		},
	}
	createCmd.Flags().StringVarP(&projectDescriptionFlag, "description", "d", "", "Project description")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectList()
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a project and all its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectDelete(args[0])
		},
	}

	cmd.AddCommand(createCmd, listCmd, deleteCmd)
	return cmd
}

func runProjectCreate(name, description string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	settings, err := app.ProjectSvc.Create(name, description)
	if err != nil {
		return err
	}

	fmt.Printf("Created project %q\n", settings.Name)
	if settings.Name != name {
		fmt.Printf("(name sanitized from %q)\n", name)
	}
	return nil
}

func runProjectCreateInteractive() error {
	name := promptLine("Project name: ")
	if name == "" {
		fmt.Println("Cancelled")
		return nil
	}
	description := promptLine("Description (optional): ")
	return runProjectCreate(name, description)
}

func runProjectList() error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	infos, err := app.ProjectSvc.List()
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No projects")
		return nil
	}

	fmt.Println()
	for _, info := range infos {
		fmt.Println("  " + tui.FormatProjectLine(
			info.Settings.Name,
			info.Stats.AudioCount,
			info.Stats.TextCount,
			info.Stats.HasIndex,
			info.Settings.NeedsProcessing,
			info.Settings.CreatedAt,
		))
		if info.Settings.Description != "" {
			fmt.Printf("      %s\n", tui.Truncate(info.Settings.Description, 70))
		}
	}
	fmt.Println()
	return nil
}

func runProjectDelete(name string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	confirm := promptLine(fmt.Sprintf("Delete project %q and all its files? [y/N] ", name))
	if !strings.EqualFold(confirm, "y") {
		fmt.Println("Cancelled")
		return nil
	}

	if err := app.ProjectSvc.Delete(name); err != nil {
		return err
	}
	fmt.Println("Project deleted")
	return nil
}
