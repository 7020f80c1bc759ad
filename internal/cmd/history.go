package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/afelipfo/informes-med/internal/config"
	"github.com/afelipfo/informes-med/internal/output"
	"github.com/afelipfo/informes-med/internal/store"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived analysis runs",
	Long: `List the analysis runs archived with 'informes analyze --save',
newest first.

Examples:
  informes history
  informes history --format json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Re-render an archived insight report",
	Long: `Retrieve an archived analysis run by ID and print its full insight
report. The stored report is rendered as-is; no statistics are
re-derived.

Examples:
  informes show 2f1c9ab4-...
  informes show 2f1c9ab4-... --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
}

func openArchive() (*store.Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	dir, err := config.FindConfigDir(wd)
	if err != nil {
		return nil, fmt.Errorf("no archive found (run 'informes analyze --save' first): %w", err)
	}
	return store.Open(dir)
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns()
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(outputFormat)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(os.Stdout, runs)
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.GetReport(args[0])
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(outputFormat)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(os.Stdout, report)
}
