package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmonteir/handyspeech/internal/domain"
)

var askShowSourcesFlag bool

// NewAskCmd creates the ask subcommand
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <project> [question...]",
		Short: "Ask a question about a project's transcripts",
		Long: `Ask a question answered from the project's indexed transcripts.
With no question, starts an interactive loop.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := args[0]
			if len(args) == 1 {
				return runAskLoop(project)
			}
			return runAsk(project, strings.Join(args[1:], " "))
		},
	}

	cmd.Flags().BoolVar(&askShowSourcesFlag, "sources", false, "Show the retrieved transcript excerpts")
	return cmd
}

func runAsk(project, question string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	answer, err := app.QuerySvc.Ask(context.Background(), project, question)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotFound) {
			return fmt.Errorf("project %q has no index yet, run 'handyspeech process %s' first", project, project)
		}
		return err
	}

	fmt.Println(answer.Text)

	if askShowSourcesFlag && len(answer.Chunks) > 0 {
		fmt.Println("\nSources:")
		for _, sc := range answer.Chunks {
			fmt.Printf("  [%.3f] %s: %s\n", sc.Score, sc.Chunk.SourceFile, firstWords(sc.Chunk.Text, 12))
		}
	}

	return nil
}

func runAskLoop(project string) error {
	fmt.Printf("Asking %s. Empty line to quit.\n", project)

	for {
		question := promptLine("\n> ")
		if question == "" {
			return nil
		}
		if err := runAsk(project, question); err != nil {
			fmt.Println("Error:", err)
		}
	}
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
