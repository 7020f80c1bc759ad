package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/afelipfo/informes-med/internal/classify"
	"github.com/afelipfo/informes-med/internal/ingest"
	"github.com/afelipfo/informes-med/internal/output"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <export.csv>",
	Short: "Show how export columns map to semantic categories",
	Long: `Classify the columns of a Survey123 CSV export without running the
analysis pipeline. Useful for checking which columns an analysis will
aggregate under each category and which remain unclassified.

Examples:
  informes classify export.csv
  informes classify export.csv --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

// columnCategory is one classified column in the command's output.
type columnCategory struct {
	Column   string `yaml:"column" json:"column"`
	Category string `yaml:"category" json:"category"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	ds, err := ingest.LoadCSV(args[0], newLogger())
	if err != nil {
		return err
	}

	cls := classify.Classify(ds.Columns())
	out := make([]columnCategory, 0, cls.Len())
	for _, col := range cls.Columns() {
		out = append(out, columnCategory{
			Column:   col,
			Category: string(cls.Category(col)),
		})
	}

	formatter, err := output.NewFormatter(outputFormat)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(os.Stdout, out)
}
