package metrics

import (
	"math"
	"sort"
)

// Tier classifies the absolute strength of a correlation coefficient.
type Tier string

const (
	// TierStrong: |r| >= 0.70
	TierStrong Tier = "strong"
	// TierModerate: |r| >= 0.40
	TierModerate Tier = "moderate"
	// TierWeak: |r| >= 0.20
	TierWeak Tier = "weak"
	// TierNone: |r| < 0.20, filtered out of findings.
	TierNone Tier = "none"
)

// Thresholds contains the tunable correlation detection parameters.
// The tier cutoffs and minimum sample size are calibration constants,
// not invariants; callers may override them through configuration.
type Thresholds struct {
	Strong     float64 // Default: 0.70
	Moderate   float64 // Default: 0.40
	Weak       float64 // Default: 0.20
	MinSamples int     // Default: 3
}

// DefaultThresholds returns the default correlation thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Strong:     0.70,
		Moderate:   0.40,
		Weak:       0.20,
		MinSamples: 3,
	}
}

// ClassifyStrength returns the tier for a correlation coefficient.
// Classification uses the absolute value, so strong negative association
// ranks the same as strong positive association.
func ClassifyStrength(r float64, t Thresholds) Tier {
	abs := math.Abs(r)
	switch {
	case abs >= t.Strong:
		return TierStrong
	case abs >= t.Moderate:
		return TierModerate
	case abs >= t.Weak:
		return TierWeak
	default:
		return TierNone
	}
}

// Finding is one detected association between two metrics. MetricA sorts
// before MetricB, which canonicalizes the unordered pair: the finding for
// (A, B) is the finding for (B, A).
type Finding struct {
	MetricA  string  `yaml:"metric_a" json:"metric_a"`
	MetricB  string  `yaml:"metric_b" json:"metric_b"`
	Strength float64 `yaml:"strength" json:"strength"`
	Tier     Tier    `yaml:"tier" json:"tier"`
	Samples  int     `yaml:"samples" json:"samples"`
}

// DetectCorrelations computes pairwise Pearson correlation between all
// series-bearing metrics and returns the findings classified weak or above,
// ordered by absolute strength descending. Pairs with fewer than
// t.MinSamples jointly-defined values are skipped, as are pairs where
// either series has zero variance (their correlation is defined as none).
func DetectCorrelations(results Results, t Thresholds) []Finding {
	var names []string
	for _, n := range results.Names() {
		if results[n].HasSeries() {
			names = append(names, n)
		}
	}

	var findings []Finding
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := results[names[i]], results[names[j]]
			xs, ys := pairedSamples(a.series, b.series)
			if len(xs) < t.MinSamples {
				continue
			}
			r, ok := pearson(xs, ys)
			if !ok {
				continue
			}
			tier := ClassifyStrength(r, t)
			if tier == TierNone {
				continue
			}
			findings = append(findings, Finding{
				MetricA:  names[i],
				MetricB:  names[j],
				Strength: r,
				Tier:     tier,
				Samples:  len(xs),
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		ai, aj := math.Abs(findings[i].Strength), math.Abs(findings[j].Strength)
		if ai != aj {
			return ai > aj
		}
		if findings[i].MetricA != findings[j].MetricA {
			return findings[i].MetricA < findings[j].MetricA
		}
		return findings[i].MetricB < findings[j].MetricB
	})
	return findings
}

// pairedSamples keeps the observations where both series are defined.
func pairedSamples(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var xs, ys []float64
	for i := 0; i < n; i++ {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	return xs, ys
}

// pearson computes the Pearson correlation coefficient. The second result
// is false when either input has zero variance, where the coefficient is
// undefined and must not propagate as a numeric fault.
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	if n == 0 {
		return 0, false
	}

	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}
