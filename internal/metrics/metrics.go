// Package metrics computes per-category aggregate statistics from a
// classified dataset and detects statistical associations between the
// resulting numeric metrics. All computations are pure functions of their
// inputs: missing values are excluded from averages (never coerced to zero)
// and counted separately as a per-category completeness metric.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/afelipfo/informes-med/internal/classify"
	"github.com/afelipfo/informes-med/internal/dataset"
)

// Result is a named scalar or small distribution derived from one semantic
// category. A Result is immutable after Compute returns it.
type Result struct {
	// Name is the metric identifier, in <category>.<metric> form.
	Name string `yaml:"name" json:"name"`

	// Category is the semantic category the metric was derived from.
	Category classify.Category `yaml:"category" json:"category"`

	// Columns lists the source columns that fed the metric.
	Columns []string `yaml:"columns,omitempty" json:"columns,omitempty"`

	// Value is the scalar payload. Meaningful only when Defined is true.
	Value float64 `yaml:"value" json:"value"`

	// Defined is false when the metric is undefined, such as an average
	// over a zero-size group. An undefined Result is never a fault.
	Defined bool `yaml:"defined" json:"defined"`

	// Distribution maps categorical values (or sub-columns) to counts or
	// sums. Nil for pure scalar metrics.
	Distribution map[string]float64 `yaml:"distribution,omitempty" json:"distribution,omitempty"`

	// series holds the per-record numeric values backing the metric, with
	// NaN marking missing records. Only series-bearing metrics participate
	// in correlation detection. Kept out of the serialized report.
	series []float64
}

// HasSeries reports whether the metric carries a per-record numeric series
// and is therefore eligible for correlation detection.
func (r Result) HasSeries() bool {
	return len(r.series) > 0
}

// Results maps metric names to computed Results.
type Results map[string]Result

// Names returns all metric names sorted alphabetically.
func (rs Results) Names() []string {
	names := make([]string, 0, len(rs))
	for n := range rs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Compute derives the full metric set for a classified dataset. Categories
// with no columns in the dataset are skipped silently; a failure to compute
// one category never affects the others.
func Compute(ds *dataset.Dataset, cls *classify.Classification) Results {
	rs := make(Results)

	computeHumanResources(rs, ds, cls)
	computeMachinery(rs, ds, cls)
	computeCategorical(rs, ds, cls, classify.Activities)
	computeCategorical(rs, ds, cls, classify.Status)
	computeLocation(rs, ds, cls)

	for _, cat := range []classify.Category{
		classify.HumanResources,
		classify.Machinery,
		classify.Activities,
		classify.Status,
		classify.Location,
		classify.Observations,
	} {
		computeCompleteness(rs, ds, cls, cat)
	}

	return rs
}

func computeHumanResources(rs Results, ds *dataset.Dataset, cls *classify.Classification) {
	cols := cls.ColumnsFor(classify.HumanResources)
	if len(cols) == 0 {
		return
	}

	var countCols, hourCols []string
	for _, c := range cols {
		lower := strings.ToLower(c)
		switch {
		case strings.HasPrefix(lower, "total_hora") || strings.HasPrefix(lower, "hora_traba"):
			hourCols = append(hourCols, c)
		case lower == "num_cuadri":
			// Crew identifier, not a headcount.
		case strings.HasPrefix(lower, "num_") || strings.HasPrefix(lower, "cant_"):
			countCols = append(countCols, c)
		}
	}

	if len(countCols) > 0 {
		total, defined, cells := 0.0, 0, 0
		dist := make(map[string]float64)
		personnel := rowSums(ds, countCols)
		for _, c := range countCols {
			for _, v := range ds.Column(c) {
				cells++
				if n, ok := v.Number(); ok {
					total += n
					defined++
					dist[c] += n
				}
			}
			rs[seriesName(classify.HumanResources, c)] = seriesResult(classify.HumanResources, c, numericSeries(ds, c))
		}

		rs["human_resources.total"] = Result{
			Name:     "human_resources.total",
			Category: classify.HumanResources,
			Columns:  countCols,
			Value:    total,
			Defined:  true,
		}
		rs["human_resources.average"] = averageResult("human_resources.average", classify.HumanResources, countCols, total, defined)
		rs["human_resources.distribution"] = Result{
			Name:         "human_resources.distribution",
			Category:     classify.HumanResources,
			Columns:      countCols,
			Defined:      true,
			Distribution: dist,
		}
		rs["human_resources.personnel"] = Result{
			Name:     "human_resources.personnel",
			Category: classify.HumanResources,
			Columns:  countCols,
			Defined:  true,
			series:   personnel,
		}
	}

	if len(hourCols) > 0 {
		total, defined := 0.0, 0
		for _, c := range hourCols {
			for _, v := range ds.Column(c) {
				if n, ok := v.Number(); ok {
					total += n
					defined++
				}
			}
			rs[seriesName(classify.HumanResources, c)] = seriesResult(classify.HumanResources, c, numericSeries(ds, c))
		}
		rs["human_resources.total_hours"] = Result{
			Name:     "human_resources.total_hours",
			Category: classify.HumanResources,
			Columns:  hourCols,
			Value:    total,
			Defined:  true,
		}
		rs["human_resources.average_hours"] = averageResult("human_resources.average_hours", classify.HumanResources, hourCols, total, defined)
		rs["human_resources.hours"] = Result{
			Name:     "human_resources.hours",
			Category: classify.HumanResources,
			Columns:  hourCols,
			Defined:  true,
			series:   rowSums(ds, hourCols),
		}
	}
}

func computeMachinery(rs Results, ds *dataset.Dataset, cls *classify.Classification) {
	cols := cls.ColumnsFor(classify.Machinery)
	if len(cols) == 0 {
		return
	}

	var typeCols, hourCols []string
	for _, c := range cols {
		lower := strings.ToLower(c)
		if strings.HasPrefix(lower, "horas_") {
			hourCols = append(hourCols, c)
		} else if strings.HasPrefix(lower, "tipo_maq") || lower == "maquinaria" {
			typeCols = append(typeCols, c)
		}
	}

	if len(typeCols) > 0 {
		types := make(map[string]float64)
		usage := 0
		for _, c := range typeCols {
			for _, v := range ds.Column(c) {
				if s, ok := v.Text(); ok {
					s = strings.TrimSpace(s)
					if s != "" {
						types[s]++
						usage++
					}
				}
			}
		}
		rs["machinery.types"] = Result{
			Name:         "machinery.types",
			Category:     classify.Machinery,
			Columns:      typeCols,
			Defined:      true,
			Distribution: types,
		}
		rs["machinery.usage_count"] = Result{
			Name:     "machinery.usage_count",
			Category: classify.Machinery,
			Columns:  typeCols,
			Value:    float64(usage),
			Defined:  true,
		}
	}

	if len(hourCols) > 0 {
		total, defined := 0.0, 0
		dist := make(map[string]float64)
		for _, c := range hourCols {
			for _, v := range ds.Column(c) {
				if n, ok := v.Number(); ok {
					total += n
					defined++
					dist[c] += n
				}
			}
			rs[seriesName(classify.Machinery, c)] = seriesResult(classify.Machinery, c, numericSeries(ds, c))
		}
		rs["machinery.total_hours"] = Result{
			Name:     "machinery.total_hours",
			Category: classify.Machinery,
			Columns:  hourCols,
			Value:    total,
			Defined:  true,
		}
		rs["machinery.average_hours"] = averageResult("machinery.average_hours", classify.Machinery, hourCols, total, defined)
		rs["machinery.hours_by_type"] = Result{
			Name:         "machinery.hours_by_type",
			Category:     classify.Machinery,
			Columns:      hourCols,
			Defined:      true,
			Distribution: dist,
		}
		rs["machinery.hours"] = Result{
			Name:     "machinery.hours",
			Category: classify.Machinery,
			Columns:  hourCols,
			Defined:  true,
			series:   rowSums(ds, hourCols),
		}
	}
}

// computeCategorical builds the value-frequency distribution for a category
// whose columns hold categorical text (activities, status). Numeric columns
// in the category additionally contribute per-column series metrics.
func computeCategorical(rs Results, ds *dataset.Dataset, cls *classify.Classification, cat classify.Category) {
	cols := cls.ColumnsFor(cat)
	if len(cols) == 0 {
		return
	}

	dist := make(map[string]float64)
	var textCols []string
	for _, c := range cols {
		numeric := false
		for _, v := range ds.Column(c) {
			if _, ok := v.Number(); ok {
				numeric = true
				break
			}
		}
		if numeric {
			rs[seriesName(cat, c)] = seriesResult(cat, c, numericSeries(ds, c))
			continue
		}
		textCols = append(textCols, c)
		for _, v := range ds.Column(c) {
			if s, ok := v.Text(); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					dist[s]++
				}
			}
		}
	}

	if len(textCols) > 0 {
		name := fmt.Sprintf("%s.distribution", cat)
		rs[name] = Result{
			Name:         name,
			Category:     cat,
			Columns:      textCols,
			Defined:      true,
			Distribution: dist,
		}
	}
}

func computeLocation(rs Results, ds *dataset.Dataset, cls *classify.Classification) {
	cols := cls.ColumnsFor(classify.Location)
	if len(cols) == 0 {
		return
	}

	if ds.HasColumn("X") && ds.HasColumn("Y") {
		xs, ys := ds.Column("X"), ds.Column("Y")
		points := make(map[[2]float64]struct{})
		minX, maxX := math.Inf(1), math.Inf(-1)
		minY, maxY := math.Inf(1), math.Inf(-1)
		for i := range xs {
			x, okX := xs[i].Number()
			y, okY := ys[i].Number()
			if !okX || !okY {
				continue
			}
			points[[2]float64{x, y}] = struct{}{}
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
		rs["location.distinct_points"] = Result{
			Name:     "location.distinct_points",
			Category: classify.Location,
			Columns:  []string{"X", "Y"},
			Value:    float64(len(points)),
			Defined:  true,
		}
		if len(points) > 0 {
			rs["location.bounding_box"] = Result{
				Name:     "location.bounding_box",
				Category: classify.Location,
				Columns:  []string{"X", "Y"},
				Defined:  true,
				Distribution: map[string]float64{
					"min_x": minX, "max_x": maxX,
					"min_y": minY, "max_y": maxY,
				},
			}
		}
	}

	if ds.HasColumn("comuna") {
		dist := make(map[string]float64)
		for _, v := range ds.Column("comuna") {
			switch {
			case v.IsMissing():
			default:
				dist[v.String()]++
			}
		}
		if len(dist) > 0 {
			rs["location.communes"] = Result{
				Name:         "location.communes",
				Category:     classify.Location,
				Columns:      []string{"comuna"},
				Defined:      true,
				Distribution: dist,
			}
		}
	}
}

// computeCompleteness records the fraction of non-missing cells across the
// category's columns. Categories with no columns are skipped, matching the
// schema-mismatch policy of degrading per category instead of failing.
func computeCompleteness(rs Results, ds *dataset.Dataset, cls *classify.Classification, cat classify.Category) {
	cols := cls.ColumnsFor(cat)
	if len(cols) == 0 || ds.Len() == 0 {
		return
	}

	present, cells := 0, 0
	for _, c := range cols {
		for _, v := range ds.Column(c) {
			cells++
			if !v.IsMissing() {
				present++
			}
		}
	}

	name := fmt.Sprintf("%s.completeness", cat)
	rs[name] = Result{
		Name:     name,
		Category: cat,
		Columns:  cols,
		Value:    float64(present) / float64(cells),
		Defined:  true,
	}
}

func averageResult(name string, cat classify.Category, cols []string, total float64, defined int) Result {
	r := Result{Name: name, Category: cat, Columns: cols}
	if defined > 0 {
		r.Value = total / float64(defined)
		r.Defined = true
	}
	return r
}

func seriesName(cat classify.Category, col string) string {
	return fmt.Sprintf("%s.%s", cat, col)
}

func seriesResult(cat classify.Category, col string, series []float64) Result {
	total, defined := 0.0, 0
	for _, v := range series {
		if !math.IsNaN(v) {
			total += v
			defined++
		}
	}
	r := Result{
		Name:     seriesName(cat, col),
		Category: cat,
		Columns:  []string{col},
		series:   series,
	}
	if defined > 0 {
		r.Value = total
		r.Defined = true
	}
	return r
}

// numericSeries extracts a column's numeric values in record order,
// with NaN marking missing or non-numeric cells.
func numericSeries(ds *dataset.Dataset, col string) []float64 {
	out := make([]float64, ds.Len())
	for i, v := range ds.Column(col) {
		if n, ok := v.Number(); ok {
			out[i] = n
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// rowSums sums each record's defined numeric values across the given
// columns. Records where every column is missing map to NaN.
func rowSums(ds *dataset.Dataset, cols []string) []float64 {
	out := make([]float64, ds.Len())
	for i := range out {
		sum, any := 0.0, false
		for _, c := range cols {
			if n, ok := ds.Value(i, c).Number(); ok {
				sum += n
				any = true
			}
		}
		if any {
			out[i] = sum
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
