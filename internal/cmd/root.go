// Package cmd contains all CLI commands for informes.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/afelipfo/informes-med/internal/config"
)

var (
	// Version is the current version of informes
	Version = "0.1.0"

	// Global flags
	verbose      bool
	configPath   string
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "informes",
	Short: "Insight generation engine for Survey123 field-operations data",
	Long: `informes analyzes municipal infrastructure field-operation records
exported from Survey123 and produces structured analytical reports.

The engine classifies the 78 export columns into semantic categories,
computes per-category statistics, detects correlations and temporal
trends, extracts signals from free-text observations, and synthesizes
everything into an ordered list of natural-language insights with
recommendations.

Output Format:
  All commands output YAML by default. Use --format json to switch.

Main capabilities:
  - Analyze a CSV export end to end and print the insight report
  - Inspect how columns map to semantic categories
  - Archive analysis runs and re-render stored reports

Examples:
  informes analyze export.csv              # Full analysis of an export
  informes analyze export.csv --save       # Analyze and archive the run
  informes classify export.csv             # Show the column classification
  informes history                         # List archived runs
  informes show <run-id>                   # Re-render an archived report

See 'informes <command> --help' for command-specific options.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .informes/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "yaml", "Output format: yaml | json")
}

// loadConfig resolves the engine configuration from --config or by
// searching upward from the working directory.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	return config.Load(wd)
}

// newLogger builds the CLI logger. Verbose mode enables debug output;
// otherwise only warnings and errors reach the terminal.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}
