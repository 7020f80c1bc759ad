package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afelipfo/informes-med/internal/classify"
	"github.com/afelipfo/informes-med/internal/config"
	"github.com/afelipfo/informes-med/internal/metrics"
	"github.com/afelipfo/informes-med/internal/temporal"
	"github.com/afelipfo/informes-med/internal/textsig"
)

func newSynthesizer() *synthesizer {
	return &synthesizer{cfg: config.DefaultConfig()}
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestSortInsightsPrecedence(t *testing.T) {
	insights := []Insight{
		{Kind: KindPattern, Priority: PriorityLow, Text: "b"},
		{Kind: KindRecommendation, Priority: PriorityHigh, Text: "rec"},
		{Kind: KindPattern, Priority: PriorityMedium, Strength: 0.2, Text: "weak pattern"},
		{Kind: KindAnomaly, Priority: PriorityHigh, Text: "anomaly"},
		{Kind: KindPattern, Priority: PriorityLow, Text: "a"},
		{Kind: KindTrend, Priority: PriorityMedium, Text: "trend"},
		{Kind: KindPattern, Priority: PriorityMedium, Strength: 0.9, Text: "strong pattern"},
		{Kind: KindCorrelation, Priority: PriorityHigh, Text: "correlation"},
	}
	sortInsights(insights)

	want := []string{
		"anomaly", "correlation", "rec",
		"trend", "strong pattern", "weak pattern",
		"a", "b",
	}
	got := make([]string, len(insights))
	for i, ins := range insights {
		got[i] = ins.Text
	}
	assert.Equal(t, want, got)
}

func TestAnomalyInsightsConcentrationThreshold(t *testing.T) {
	s := newSynthesizer()

	// 7 of 10 records in one bucket crosses the 30% default.
	trends := []temporal.Trend{
		{Start: day(4), Count: 3},
		{Start: day(11), Count: 7, Delta: 4},
	}
	out := s.anomalyInsights(10, trends, nil)
	require.Len(t, out, 1)
	assert.Equal(t, KindAnomaly, out[0].Kind)
	assert.Equal(t, PriorityHigh, out[0].Priority)
	assert.InDelta(t, 0.7, out[0].Strength, 1e-12)

	// An even split stays below the threshold.
	even := []temporal.Trend{
		{Start: day(4), Count: 3},
		{Start: day(11), Count: 3},
	}
	assert.Empty(t, s.anomalyInsights(10, even, nil))
}

func TestAnomalyInsightsNegativeObservations(t *testing.T) {
	s := newSynthesizer()

	negative := []textsig.Signal{{Column: "observacio", Polarity: -0.6}}
	out := s.anomalyInsights(0, nil, negative)
	require.Len(t, out, 1)
	assert.Equal(t, string(classify.Observations), out[0].Category)
	assert.Equal(t, PriorityMedium, out[0].Priority)

	mild := []textsig.Signal{{Column: "observacio", Polarity: -0.4}}
	assert.Empty(t, s.anomalyInsights(0, nil, mild))
}

func TestCorrelationInsightsTierGating(t *testing.T) {
	s := newSynthesizer()
	findings := []metrics.Finding{
		{MetricA: "a", MetricB: "b", Strength: 0.95, Tier: metrics.TierStrong, Samples: 8},
		{MetricA: "c", MetricB: "d", Strength: -0.55, Tier: metrics.TierModerate, Samples: 8},
		{MetricA: "e", MetricB: "f", Strength: 0.25, Tier: metrics.TierWeak, Samples: 8},
	}
	out := s.correlationInsights(findings)
	require.Len(t, out, 2)
	assert.Equal(t, PriorityHigh, out[0].Priority)
	assert.Equal(t, PriorityMedium, out[1].Priority)
	assert.InDelta(t, 0.55, out[1].Strength, 1e-12)
}

func TestCorrelationInsightsCapped(t *testing.T) {
	s := newSynthesizer()
	var findings []metrics.Finding
	for i := 0; i < 8; i++ {
		findings = append(findings, metrics.Finding{
			MetricA: "a", MetricB: "b", Strength: 0.9, Tier: metrics.TierStrong, Samples: 5,
		})
	}
	assert.Len(t, s.correlationInsights(findings), maxCorrelationInsights)
}

func TestTrendInsightsDeltaThreshold(t *testing.T) {
	s := newSynthesizer()

	// +25% stays below the 50% default threshold.
	flat := []temporal.Trend{
		{Start: day(4), Count: 4},
		{Start: day(11), Count: 5, Delta: 1},
	}
	assert.Empty(t, s.trendInsights(flat))

	// A doubling is reported as an increase.
	up := []temporal.Trend{
		{Start: day(4), Count: 4},
		{Start: day(11), Count: 8, Delta: 4},
	}
	out := s.trendInsights(up)
	require.Len(t, out, 1)
	assert.Equal(t, KindTrend, out[0].Kind)
	assert.Contains(t, out[0].Text, "aumentaron")

	// A zero-count predecessor yields no ratio and no statement.
	fromZero := []temporal.Trend{
		{Start: day(4), Count: 0},
		{Start: day(11), Count: 6, Delta: 6},
	}
	assert.Empty(t, s.trendInsights(fromZero))
}

func resultsWith(entries map[string]metrics.Result) metrics.Results {
	rs := make(metrics.Results, len(entries))
	for k, v := range entries {
		v.Name = k
		rs[k] = v
	}
	return rs
}

func TestProductivityBands(t *testing.T) {
	cases := []struct {
		name     string
		hours    float64
		workers  float64
		label    string
		priority int
	}{
		{"alta", 90, 10, "alta", PriorityHigh},
		{"media", 70, 10, "media", PriorityMedium},
		{"baja", 20, 10, "baja", PriorityHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newSynthesizer()
			rs := resultsWith(map[string]metrics.Result{
				"human_resources.completeness": {Category: classify.HumanResources, Value: 1, Defined: true},
				"human_resources.total_hours":  {Category: classify.HumanResources, Value: tc.hours, Defined: true},
				"human_resources.total":        {Category: classify.HumanResources, Value: tc.workers, Defined: true},
			})
			out := s.patternInsights(0, rs, nil)
			require.Len(t, out, 1)
			assert.Contains(t, out[0].Text, tc.label)
			assert.Equal(t, tc.priority, out[0].Priority)
		})
	}
}

func TestMachineryUsagePattern(t *testing.T) {
	s := newSynthesizer()
	rs := resultsWith(map[string]metrics.Result{
		"machinery.completeness": {Category: classify.Machinery, Value: 0.8, Defined: true},
		"machinery.types": {
			Category: classify.Machinery, Defined: true,
			Distribution: map[string]float64{"Retroexcavadora": 2, "Volqueta": 1},
		},
	})
	out := s.patternInsights(0, rs, nil)
	require.Len(t, out, 1)
	assert.Equal(t, KindPattern, out[0].Kind)
	assert.Equal(t, string(classify.Machinery), out[0].Category)
	assert.Contains(t, out[0].Text, "Retroexcavadora")
	assert.Contains(t, out[0].Text, "2 tipo(s)")
	assert.InDelta(t, 2.0/3.0, out[0].Strength, 1e-12)

	// Incomplete machinery data produces no equipment statement.
	incomplete := resultsWith(map[string]metrics.Result{
		"machinery.completeness": {Category: classify.Machinery, Value: 0.1, Defined: true},
		"machinery.types": {
			Category: classify.Machinery, Defined: true,
			Distribution: map[string]float64{"Retroexcavadora": 2},
		},
	})
	assert.Empty(t, s.patternInsights(0, incomplete, nil))
}

func TestTeamCompositionPattern(t *testing.T) {
	s := newSynthesizer()
	rs := resultsWith(map[string]metrics.Result{
		"human_resources.completeness": {Category: classify.HumanResources, Value: 1, Defined: true},
		"human_resources.distribution": {
			Category: classify.HumanResources, Defined: true,
			Distribution: map[string]float64{"num_obreros": 8, "num_ayudan": 2},
		},
	})
	out := s.patternInsights(0, rs, nil)
	require.Len(t, out, 1)
	assert.Equal(t, string(classify.HumanResources), out[0].Category)
	assert.Equal(t, PriorityMedium, out[0].Priority)
	assert.Contains(t, out[0].Text, "num_obreros")
	assert.InDelta(t, 0.8, out[0].Strength, 1e-12)

	// An even role split is a low-priority observation.
	even := resultsWith(map[string]metrics.Result{
		"human_resources.completeness": {Category: classify.HumanResources, Value: 1, Defined: true},
		"human_resources.distribution": {
			Category: classify.HumanResources, Defined: true,
			Distribution: map[string]float64{"num_obreros": 5, "num_ayudan": 5},
		},
	})
	out = s.patternInsights(0, even, nil)
	require.Len(t, out, 1)
	assert.Equal(t, PriorityLow, out[0].Priority)
}

func TestPatternInsightsGatedOnCompleteness(t *testing.T) {
	s := newSynthesizer()
	rs := resultsWith(map[string]metrics.Result{
		"activities.completeness": {Category: classify.Activities, Value: 0.1, Defined: true},
		"activities.distribution": {
			Category: classify.Activities, Defined: true,
			Distribution: map[string]float64{"Limpieza": 9, "Poda": 1},
		},
	})
	assert.Empty(t, s.patternInsights(0, rs, nil))

	complete := resultsWith(map[string]metrics.Result{
		"activities.completeness": {Category: classify.Activities, Value: 0.9, Defined: true},
		"activities.distribution": {
			Category: classify.Activities, Defined: true,
			Distribution: map[string]float64{"Limpieza": 9, "Poda": 1},
		},
	})
	out := s.patternInsights(0, complete, nil)
	require.Len(t, out, 1)
	assert.Equal(t, PriorityHigh, out[0].Priority)
	assert.Contains(t, out[0].Text, "Limpieza")
}

func TestGeoDiversifyRecommendation(t *testing.T) {
	s := newSynthesizer()

	concentrated := resultsWith(map[string]metrics.Result{
		"location.communes": {
			Category: classify.Location, Defined: true,
			Distribution: map[string]float64{"10": 7, "12": 3},
		},
	})
	out := s.recommendations(10, concentrated, nil, nil)
	require.Len(t, out, 1)
	assert.Equal(t, KindRecommendation, out[0].Kind)
	assert.Contains(t, out[0].Text, "redistribución")

	// A single commune has nowhere to diversify to.
	single := resultsWith(map[string]metrics.Result{
		"location.communes": {
			Category: classify.Location, Defined: true,
			Distribution: map[string]float64{"10": 10},
		},
	})
	assert.Empty(t, s.recommendations(10, single, nil, nil))
}

func TestStrongCorrelationRecommendation(t *testing.T) {
	s := newSynthesizer()

	findings := []metrics.Finding{
		{MetricA: "machinery.horas_retr", MetricB: "machinery.usage_count", Strength: 0.9, Tier: metrics.TierStrong, Samples: 6},
		{MetricA: "a", MetricB: "b", Strength: 0.85, Tier: metrics.TierStrong, Samples: 6},
	}
	out := s.recommendations(0, metrics.Results{}, findings, nil)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Text, "maquinaria")

	generic := []metrics.Finding{
		{MetricA: "human_resources.total", MetricB: "status.porcentaje", Strength: 0.8, Tier: metrics.TierStrong, Samples: 6},
	}
	out = s.recommendations(0, metrics.Results{}, generic, nil)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Text, "conjunta")
}

func TestDataQualityRecommendation(t *testing.T) {
	s := newSynthesizer()
	rs := resultsWith(map[string]metrics.Result{
		"machinery.completeness":       {Category: classify.Machinery, Value: 0.1, Defined: true},
		"observations.completeness":    {Category: classify.Observations, Value: 0.05, Defined: true},
		"human_resources.completeness": {Category: classify.HumanResources, Value: 0.9, Defined: true},
	})
	out := s.recommendations(0, rs, nil, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "data_quality", out[0].Category)
	assert.Contains(t, out[0].Text, "machinery, observations")
}
