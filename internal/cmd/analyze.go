package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/afelipfo/informes-med/internal/config"
	"github.com/afelipfo/informes-med/internal/ingest"
	"github.com/afelipfo/informes-med/internal/insight"
	"github.com/afelipfo/informes-med/internal/output"
	"github.com/afelipfo/informes-med/internal/store"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <export.csv>",
	Short: "Run the full insight analysis over a Survey123 CSV export",
	Long: `Load a Survey123 CSV export, classify its columns, compute metrics,
detect correlations and temporal trends, extract text signals, and print
the synthesized insight report.

A dataset missing required columns is still analyzed: the affected
categories are skipped and the rest of the report is produced. When the
wall-clock budget set with --timeout expires, a partial report is
returned with the trend and correlation sections omitted.

Examples:
  informes analyze export.csv                     # Analyze and print
  informes analyze export.csv --save              # Archive the run
  informes analyze export.csv --granularity daily # Daily trend buckets
  informes analyze export.csv --timeout 5s        # Interactive budget
  informes analyze export.csv --format json       # JSON output`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeSave        bool
	analyzeTimeout     time.Duration
	analyzeGranularity string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Archive the run in .informes/informes.db")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "Wall-clock budget; exceeding it degrades to a partial report")
	analyzeCmd.Flags().StringVar(&analyzeGranularity, "granularity", "", "Trend bucket width: daily | weekly | monthly")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if analyzeGranularity != "" {
		if !config.IsValidGranularity(analyzeGranularity) {
			return fmt.Errorf("unknown granularity %q", analyzeGranularity)
		}
		cfg.Trends.Granularity = analyzeGranularity
	}

	log := newLogger()

	ds, err := ingest.LoadCSV(args[0], log)
	if err != nil {
		return err
	}

	var schemaErr *ingest.SchemaError
	if err := ingest.ValidateSchema(ds); errors.As(err, &schemaErr) {
		log.WithField("missing", schemaErr.Missing).
			Warn("schema mismatch, affected categories will be skipped")
	}

	ctx := context.Background()
	if analyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, analyzeTimeout)
		defer cancel()
	}

	report, err := insight.New(cfg, log).Analyze(ctx, ds)
	if err != nil {
		return err
	}

	if analyzeSave {
		dbPath, err := saveReport(report)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "run %s archived in %s\n", report.ID, dbPath)
	}

	formatter, err := output.NewFormatter(outputFormat)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(os.Stdout, report)
}

// saveReport archives the report and returns the database path it went to.
func saveReport(report *insight.Report) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	dir, err := config.EnsureConfigDir(wd)
	if err != nil {
		return "", err
	}
	s, err := store.Open(dir)
	if err != nil {
		return "", err
	}
	defer s.Close()
	if err := s.SaveReport(report); err != nil {
		return "", err
	}
	return s.Path(), nil
}
