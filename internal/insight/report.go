// Package insight composes computed metrics, correlations, temporal trends
// and text signals into an ordered, human-readable InsightReport. Rendering
// is deterministic template substitution: every statement references a
// concrete numeric fact produced upstream and no statement is fabricated.
package insight

import (
	"sort"
	"time"

	"github.com/afelipfo/informes-med/internal/metrics"
	"github.com/afelipfo/informes-med/internal/temporal"
	"github.com/afelipfo/informes-med/internal/textsig"
)

// Kind identifies the type of statement an Insight makes.
type Kind string

const (
	// KindAnomaly flags an unusual concentration or outlier.
	KindAnomaly Kind = "anomaly"
	// KindCorrelation reports a detected metric association.
	KindCorrelation Kind = "correlation"
	// KindTrend reports a significant bucket-to-bucket change.
	KindTrend Kind = "trend"
	// KindPattern reports a structural regularity in the data.
	KindPattern Kind = "pattern"
	// KindRecommendation derives an action from a backing pattern.
	KindRecommendation Kind = "recommendation"
)

// kindPrecedence orders kinds for tie-breaking: anomaly > correlation >
// trend > pattern > recommendation.
var kindPrecedence = map[Kind]int{
	KindAnomaly:        5,
	KindCorrelation:    4,
	KindTrend:          3,
	KindPattern:        2,
	KindRecommendation: 1,
}

// Priority levels for insights. Higher sorts first.
const (
	PriorityHigh   = 3
	PriorityMedium = 2
	PriorityLow    = 1
)

// Insight is one rendered analytical statement. Insights are immutable
// value objects.
type Insight struct {
	// Kind is the statement type.
	Kind Kind `yaml:"kind" json:"kind"`

	// Category names the semantic category the insight derives from.
	Category string `yaml:"category" json:"category"`

	// Priority ranks the insight: 3 high, 2 medium, 1 low.
	Priority int `yaml:"priority" json:"priority"`

	// Strength is the backing statistic used for ordering within a kind.
	Strength float64 `yaml:"strength" json:"strength"`

	// Text is the rendered natural-language statement.
	Text string `yaml:"text" json:"text"`

	// Fact is the key backing number in compact form, for traceability.
	Fact string `yaml:"fact" json:"fact"`
}

// Report is the terminal artifact of one analysis run: the ordered insight
// sequence plus the full metric mapping and intermediate findings for
// traceability. A Report has no further lifecycle after creation.
type Report struct {
	// ID uniquely identifies the analysis run.
	ID string `yaml:"id" json:"id"`

	// GeneratedAt is the report creation time in UTC.
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`

	// RecordCount and ColumnCount describe the analyzed dataset.
	RecordCount int `yaml:"record_count" json:"record_count"`
	ColumnCount int `yaml:"column_count" json:"column_count"`

	// PeriodStart and PeriodEnd bound the dataset's temporal coverage.
	// Nil when no parseable temporal data exists.
	PeriodStart *time.Time `yaml:"period_start,omitempty" json:"period_start,omitempty"`
	PeriodEnd   *time.Time `yaml:"period_end,omitempty" json:"period_end,omitempty"`

	// Partial is true when the analysis deadline expired and the trend and
	// correlation sections were omitted.
	Partial bool `yaml:"partial,omitempty" json:"partial,omitempty"`

	// Insights is the ordered statement sequence.
	Insights []Insight `yaml:"insights" json:"insights"`

	// Metrics is the full metric mapping the insights were derived from.
	Metrics metrics.Results `yaml:"metrics" json:"metrics"`

	// Correlations, Trends and Signals carry the intermediate findings so
	// renderers never re-derive statistics.
	Correlations []metrics.Finding `yaml:"correlations,omitempty" json:"correlations,omitempty"`
	Trends       []temporal.Trend  `yaml:"trends,omitempty" json:"trends,omitempty"`
	Signals      []textsig.Signal  `yaml:"signals,omitempty" json:"signals,omitempty"`
}

// sortInsights orders insights by priority descending, then kind precedence
// (anomaly > correlation > trend > pattern > recommendation), then backing
// strength descending, then text for full determinism.
func sortInsights(insights []Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		a, b := insights[i], insights[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if kindPrecedence[a.Kind] != kindPrecedence[b.Kind] {
			return kindPrecedence[a.Kind] > kindPrecedence[b.Kind]
		}
		if a.Strength != b.Strength {
			return a.Strength > b.Strength
		}
		return a.Text < b.Text
	})
}
