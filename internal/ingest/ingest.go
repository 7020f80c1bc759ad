// Package ingest loads Survey123 CSV exports into the typed dataset model.
// It validates the presence of the essential schema columns, coerces cells
// to numbers and dates where possible, and normalizes empty or malformed
// cells to the explicit missing marker, never to zero or the empty string.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/afelipfo/informes-med/internal/dataset"
)

// RequiredColumns are the essential Survey123 export columns. A dataset
// missing some of them still loads: the affected categories are skipped
// downstream rather than aborting the run.
var RequiredColumns = []string{
	"X", "Y", "id_punto", "estado_obr", "fecha_dilig",
}

// SchemaError reports required columns absent from a loaded dataset.
// It is a degradation signal, not a fatal condition.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset missing required columns: %s", strings.Join(e.Missing, ", "))
}

// missingMarkers are cell spellings normalized to the missing value.
var missingMarkers = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "null": {}, "nan": {}, "none": {}, "-": {},
}

// dateLayouts are the accepted textual date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02-01-2006",
}

// dateColumn reports whether a column name marks a date-bearing field,
// so its textual values are coerced to dates rather than left as text.
func dateColumn(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "fecha_") || lower == "start" || lower == "end"
}

// coordinateColumn reports whether a column holds geographic coordinates,
// which get a plausibility check on top of numeric coercion.
func coordinateColumn(name string) bool {
	return name == "X" || name == "Y"
}

// LoadCSV reads a Survey123 CSV export from path. The first row is the
// header; every subsequent row becomes one Record. Rows with a deviating
// field count violate the shared-column-set invariant and fail the load.
func LoadCSV(path string, log *logrus.Logger) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv file %s is empty", path)
	}

	ds, err := FromRows(rows[0], rows[1:], log)
	if err != nil {
		return nil, err
	}

	if log != nil {
		log.WithFields(logrus.Fields{
			"path":    path,
			"records": ds.Len(),
			"columns": len(ds.Columns()),
		}).Info("csv loaded")
	}
	return ds, nil
}

// FromRows builds a typed Dataset from a header and raw string rows.
func FromRows(header []string, rows [][]string, log *logrus.Logger) (*dataset.Dataset, error) {
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	records := make([]dataset.Record, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(row), len(columns))
		}
		rec := make(dataset.Record, len(columns))
		for j, cell := range row {
			rec[columns[j]] = coerce(columns[j], cell, i, log)
		}
		records = append(records, rec)
	}

	return dataset.New(columns, records)
}

// ValidateSchema checks the dataset against RequiredColumns. A non-nil
// result is a *SchemaError listing what is absent; callers log it and
// continue with the categories that remain analyzable.
func ValidateSchema(ds *dataset.Dataset) error {
	if missing := ds.MissingColumns(RequiredColumns); len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// coerce converts one raw cell to a typed value. Unparseable values in
// typed columns are treated as missing for the affected metric and logged;
// the run continues.
func coerce(column, cell string, row int, log *logrus.Logger) dataset.Value {
	s := strings.TrimSpace(cell)
	if _, ok := missingMarkers[strings.ToLower(s)]; ok {
		return dataset.Missing()
	}

	if dateColumn(column) {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return dataset.Date(t)
			}
		}
		warnMalformed(log, column, row, s, "unparseable date")
		return dataset.Missing()
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if coordinateColumn(column) && !plausibleCoordinate(column, n) {
			warnMalformed(log, column, row, s, "coordinate out of range")
			return dataset.Missing()
		}
		return dataset.Number(n)
	}

	if coordinateColumn(column) {
		warnMalformed(log, column, row, s, "non-numeric coordinate")
		return dataset.Missing()
	}

	return dataset.Text(s)
}

// plausibleCoordinate bounds X to longitude range and Y to latitude range.
func plausibleCoordinate(column string, n float64) bool {
	if column == "Y" {
		return n >= -90 && n <= 90
	}
	return n >= -180 && n <= 180
}

func warnMalformed(log *logrus.Logger, column string, row int, value, reason string) {
	if log == nil {
		return
	}
	log.WithFields(logrus.Fields{
		"column": column,
		"row":    row,
		"value":  value,
	}).Warn(reason + ", treated as missing")
}
