// Package dataset defines the in-memory tabular model the analysis engine
// operates on: an ordered sequence of records sharing one column set, with
// explicitly typed cell values and an explicit missing-value marker.
package dataset

import (
	"fmt"
	"sort"
)

// Record maps column names to typed cell values for one surveyed intervention.
type Record map[string]Value

// Dataset is an immutable ordered collection of Records. All records share
// the identical column set; New enforces this structural invariant.
type Dataset struct {
	columns []string
	records []Record
}

// ErrColumnMismatch is returned by New when a record's column set differs
// from the dataset's declared columns. This is a structural violation and
// stops the pipeline before any computation.
type ErrColumnMismatch struct {
	RecordIndex int
	Column      string
}

func (e *ErrColumnMismatch) Error() string {
	return fmt.Sprintf("record %d: column set mismatch at %q", e.RecordIndex, e.Column)
}

// New builds a Dataset from column names and records, validating that every
// record carries exactly the declared columns. Cells absent from a record's
// map are not tolerated; callers normalize them to Missing() beforehand.
func New(columns []string, records []Record) (*Dataset, error) {
	cols := make([]string, len(columns))
	copy(cols, columns)

	colSet := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		colSet[c] = struct{}{}
	}

	for i, rec := range records {
		for _, c := range cols {
			if _, ok := rec[c]; !ok {
				return nil, &ErrColumnMismatch{RecordIndex: i, Column: c}
			}
		}
		if len(rec) != len(cols) {
			for k := range rec {
				if _, ok := colSet[k]; !ok {
					return nil, &ErrColumnMismatch{RecordIndex: i, Column: k}
				}
			}
		}
	}

	return &Dataset{columns: cols, records: records}, nil
}

// Columns returns the dataset's column names in their original order.
func (d *Dataset) Columns() []string {
	cols := make([]string, len(d.columns))
	copy(cols, d.columns)
	return cols
}

// HasColumn reports whether the dataset contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Value returns the cell at record index i for the named column.
// Unknown columns read as missing.
func (d *Dataset) Value(i int, column string) Value {
	if i < 0 || i >= len(d.records) {
		return Missing()
	}
	v, ok := d.records[i][column]
	if !ok {
		return Missing()
	}
	return v
}

// Column returns all values of the named column in record order.
func (d *Dataset) Column(name string) []Value {
	out := make([]Value, len(d.records))
	for i := range d.records {
		out[i] = d.Value(i, name)
	}
	return out
}

// MissingColumns returns the subset of required that the dataset lacks,
// sorted alphabetically. An empty result means the schema requirement is met.
func (d *Dataset) MissingColumns(required []string) []string {
	var missing []string
	for _, c := range required {
		if !d.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}
