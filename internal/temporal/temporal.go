// Package temporal detects activity trends over the dataset's canonical
// temporal column. Records are bucketed at a configurable granularity and
// the resulting series is contiguous: intermediate buckets with no records
// are emitted with a zero count so delta computation stays well-defined.
package temporal

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/afelipfo/informes-med/internal/classify"
	"github.com/afelipfo/informes-med/internal/dataset"
)

// Granularity is the time-bucket width used for trend analysis.
type Granularity string

const (
	// Daily buckets records by calendar day.
	Daily Granularity = "daily"
	// Weekly buckets records by ISO week starting Monday. The default.
	Weekly Granularity = "weekly"
	// Monthly buckets records by calendar month.
	Monthly Granularity = "monthly"
)

// Trend is one chronological bucket with its activity count and the delta
// versus the previous bucket. The first bucket's delta is zero.
type Trend struct {
	Start time.Time `yaml:"start" json:"start"`
	Count int       `yaml:"count" json:"count"`
	Delta int       `yaml:"delta" json:"delta"`
}

// dateLayouts are the accepted textual date formats, tried in order.
// Day-first layouts come after ISO since Survey123 exports ISO dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02-01-2006",
}

// Analyze locates the canonical temporal column (the first column
// classified temporal that holds at least one parseable date) and returns
// its gap-filled trend series. An absent temporal column or one without
// parseable dates yields an empty series, not an error; textual values
// that fail date parsing are logged and treated as missing.
func Analyze(ds *dataset.Dataset, cls *classify.Classification, g Granularity, log *logrus.Logger) []Trend {
	col, dates := canonicalColumn(ds, cls, log)
	if col == "" {
		return nil
	}
	return buildSeries(dates, g)
}

// canonicalColumn scans temporal columns in dataset order and returns the
// first with parseable dates, along with those dates.
func canonicalColumn(ds *dataset.Dataset, cls *classify.Classification, log *logrus.Logger) (string, []time.Time) {
	for _, col := range cls.ColumnsFor(classify.Temporal) {
		var dates []time.Time
		for i, v := range ds.Column(col) {
			switch {
			case v.IsMissing():
			default:
				t, ok := parseDate(v)
				if !ok {
					if log != nil {
						log.WithFields(logrus.Fields{
							"column": col,
							"record": i,
							"value":  v.String(),
						}).Warn("unparseable date treated as missing")
					}
					continue
				}
				dates = append(dates, t)
			}
		}
		if len(dates) > 0 {
			return col, dates
		}
	}
	return "", nil
}

func parseDate(v dataset.Value) (time.Time, bool) {
	if t, ok := v.Date(); ok {
		return t, true
	}
	s, ok := v.Text()
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func buildSeries(dates []time.Time, g Granularity) []Trend {
	counts := make(map[time.Time]int)
	var min, max time.Time
	for _, d := range dates {
		b := bucketStart(d, g)
		counts[b]++
		if min.IsZero() || b.Before(min) {
			min = b
		}
		if max.IsZero() || b.After(max) {
			max = b
		}
	}

	var series []Trend
	prev := 0
	for b := min; !b.After(max); b = nextBucket(b, g) {
		count := counts[b]
		delta := count - prev
		if len(series) == 0 {
			delta = 0
		}
		series = append(series, Trend{Start: b, Count: count, Delta: delta})
		prev = count
	}
	return series
}

// bucketStart truncates a timestamp to its bucket's first instant in UTC.
func bucketStart(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	switch g {
	case Daily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default: // Weekly
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	}
}

func nextBucket(t time.Time, g Granularity) time.Time {
	switch g {
	case Daily:
		return t.AddDate(0, 0, 1)
	case Monthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 7)
	}
}

// Period returns the first and last parseable dates of the canonical
// temporal column. The third result is false when no temporal data exists.
func Period(ds *dataset.Dataset, cls *classify.Classification) (time.Time, time.Time, bool) {
	_, dates := canonicalColumn(ds, cls, nil)
	if len(dates) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	return min, max, true
}
