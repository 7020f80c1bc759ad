package metrics

import (
	"math"
	"testing"
)

func seriesMetric(name string, values []float64) Result {
	return Result{Name: name, series: values, Defined: true}
}

func TestClassifyStrength(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		r        float64
		expected Tier
	}{
		{1.00, TierStrong},
		{0.70, TierStrong},
		{-0.85, TierStrong},
		{0.69, TierModerate},
		{0.40, TierModerate},
		{-0.50, TierModerate},
		{0.39, TierWeak},
		{0.20, TierWeak},
		{0.19, TierNone},
		{0.00, TierNone},
	}

	for _, tt := range tests {
		if got := ClassifyStrength(tt.r, th); got != tt.expected {
			t.Errorf("ClassifyStrength(%f) = %s, expected %s", tt.r, got, tt.expected)
		}
	}
}

func TestPerfectLinearCorrelation(t *testing.T) {
	rs := Results{
		"a": seriesMetric("a", []float64{1, 2, 3, 4}),
		"b": seriesMetric("b", []float64{2, 4, 6, 8}),
	}

	findings := DetectCorrelations(rs, DefaultThresholds())
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if math.Abs(f.Strength-1.0) > 1e-12 {
		t.Errorf("strength = %g, expected 1.0", f.Strength)
	}
	if f.Tier != TierStrong {
		t.Errorf("tier = %s, expected strong", f.Tier)
	}
	if f.Samples != 4 {
		t.Errorf("samples = %d, expected 4", f.Samples)
	}
}

func TestPairCanonicalization(t *testing.T) {
	// The unordered pair appears once, with MetricA < MetricB, regardless
	// of map iteration order.
	rs := Results{
		"zeta":  seriesMetric("zeta", []float64{1, 2, 3, 4}),
		"alpha": seriesMetric("alpha", []float64{4, 3, 2, 1}),
	}

	for i := 0; i < 10; i++ {
		findings := DetectCorrelations(rs, DefaultThresholds())
		if len(findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(findings))
		}
		if findings[0].MetricA != "alpha" || findings[0].MetricB != "zeta" {
			t.Errorf("pair not canonical: (%s, %s)", findings[0].MetricA, findings[0].MetricB)
		}
		if math.Abs(findings[0].Strength+1.0) > 1e-12 {
			t.Errorf("strength = %g, expected -1.0", findings[0].Strength)
		}
	}
}

func TestZeroVarianceYieldsNoFinding(t *testing.T) {
	rs := Results{
		"constant": seriesMetric("constant", []float64{5, 5, 5, 5}),
		"varying":  seriesMetric("varying", []float64{1, 2, 3, 4}),
	}

	findings := DetectCorrelations(rs, DefaultThresholds())
	if len(findings) != 0 {
		t.Errorf("zero-variance metric produced findings: %+v", findings)
	}
}

func TestMinimumSampleSize(t *testing.T) {
	nan := math.NaN()
	rs := Results{
		// Only two jointly-defined observations.
		"a": seriesMetric("a", []float64{1, 2, nan, nan}),
		"b": seriesMetric("b", []float64{2, 4, 6, 8}),
	}

	if findings := DetectCorrelations(rs, DefaultThresholds()); len(findings) != 0 {
		t.Errorf("pair below min samples produced findings: %+v", findings)
	}

	// Lowering the minimum admits the pair.
	th := DefaultThresholds()
	th.MinSamples = 2
	if findings := DetectCorrelations(rs, th); len(findings) != 1 {
		t.Errorf("expected 1 finding with min_samples=2, got %d", len(findings))
	}
}

func TestMissingPairsExcluded(t *testing.T) {
	nan := math.NaN()
	rs := Results{
		"a": seriesMetric("a", []float64{1, nan, 3, 4, 5}),
		"b": seriesMetric("b", []float64{2, 100, 6, 8, nan}),
	}

	findings := DetectCorrelations(rs, DefaultThresholds())
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	// Records 1 and 4 are excluded; the rest are perfectly linear.
	if findings[0].Samples != 3 {
		t.Errorf("samples = %d, expected 3", findings[0].Samples)
	}
	if math.Abs(findings[0].Strength-1.0) > 1e-12 {
		t.Errorf("strength = %g, expected 1.0", findings[0].Strength)
	}
}

func TestWeakTierRetainedNoneDiscarded(t *testing.T) {
	// Mildly associated series: r lands between weak and moderate.
	rs := Results{
		"a": seriesMetric("a", []float64{1, 2, 3, 4, 5, 6}),
		"b": seriesMetric("b", []float64{2, 9, 1, 8, 4, 7}),
	}

	th := DefaultThresholds()
	findings := DetectCorrelations(rs, th)
	for _, f := range findings {
		if f.Tier == TierNone {
			t.Errorf("none-tier finding retained: %+v", f)
		}
	}

	// Raising the weak cutoff above |r| discards the pair entirely.
	th.Weak = 0.99
	th.Moderate = 0.995
	th.Strong = 0.999
	if leftover := DetectCorrelations(rs, th); len(leftover) != 0 {
		t.Errorf("expected all findings filtered, got %+v", leftover)
	}
}

func TestFindingsOrderedByAbsoluteStrength(t *testing.T) {
	rs := Results{
		"a": seriesMetric("a", []float64{1, 2, 3, 4}),
		"b": seriesMetric("b", []float64{2, 4, 6, 8}),     // |r|=1 with a
		"c": seriesMetric("c", []float64{1, 3, 2, 5}),     // weaker with both
	}

	findings := DetectCorrelations(rs, DefaultThresholds())
	for i := 1; i < len(findings); i++ {
		if math.Abs(findings[i-1].Strength) < math.Abs(findings[i].Strength) {
			t.Errorf("findings not ordered by |strength|: %+v", findings)
		}
	}
}
