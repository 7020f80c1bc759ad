package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/afelipfo/informes-med/internal/classify"
	"github.com/afelipfo/informes-med/internal/config"
	"github.com/afelipfo/informes-med/internal/metrics"
	"github.com/afelipfo/informes-med/internal/temporal"
	"github.com/afelipfo/informes-med/internal/textsig"
)

// maxTrendInsights caps how many bucket-change statements one report makes.
const maxTrendInsights = 3

// maxCorrelationInsights caps how many associations are rendered.
const maxCorrelationInsights = 5

// synthesizer selects insight-worthy facts by fixed thresholds and renders
// them through the template table.
type synthesizer struct {
	cfg *config.Config
}

// synthesize builds the ordered insight sequence from the computed partial
// results. Empty inputs simply produce no insights of the matching kind.
func (s *synthesizer) synthesize(recordCount int, results metrics.Results, findings []metrics.Finding, trends []temporal.Trend, signals []textsig.Signal) []Insight {
	var insights []Insight

	insights = append(insights, s.anomalyInsights(recordCount, trends, signals)...)
	insights = append(insights, s.correlationInsights(findings)...)
	insights = append(insights, s.trendInsights(trends)...)
	insights = append(insights, s.patternInsights(recordCount, results, signals)...)
	insights = append(insights, s.recommendations(recordCount, results, findings, trends)...)

	sortInsights(insights)
	return insights
}

// anomalyInsights flags unusual temporal concentration and strongly
// negative field observations.
func (s *synthesizer) anomalyInsights(recordCount int, trends []temporal.Trend, signals []textsig.Signal) []Insight {
	var out []Insight

	if bucket, ok := busiestBucket(trends); ok && recordCount > 0 {
		share := float64(bucket.Count) / float64(recordCount)
		if share > s.cfg.Analysis.ConcentrationAnomaly {
			day := bucket.Start.Format("2006-01-02")
			out = append(out, Insight{
				Kind:     KindAnomaly,
				Category: string(classify.Temporal),
				Priority: PriorityHigh,
				Strength: share,
				Text:     fmt.Sprintf(tmplTemporalConcentration, day, bucket.Count, share*100),
				Fact:     fact("%s: %d/%d", day, bucket.Count, recordCount),
			})
		}
	}

	for _, sig := range signals {
		if sig.Polarity <= -0.5 {
			out = append(out, Insight{
				Kind:     KindAnomaly,
				Category: string(classify.Observations),
				Priority: PriorityMedium,
				Strength: -sig.Polarity,
				Text:     fmt.Sprintf(tmplNegativeObservations, sig.Column, sig.Polarity),
				Fact:     fact("%s: polaridad %.2f", sig.Column, sig.Polarity),
			})
		}
	}
	return out
}

// correlationInsights renders moderate-or-stronger findings. Weak findings
// stay in the report's traceability section but produce no statement.
func (s *synthesizer) correlationInsights(findings []metrics.Finding) []Insight {
	var out []Insight
	for _, f := range findings {
		if f.Tier != metrics.TierStrong && f.Tier != metrics.TierModerate {
			continue
		}
		priority := PriorityMedium
		if f.Tier == metrics.TierStrong {
			priority = PriorityHigh
		}
		out = append(out, Insight{
			Kind:     KindCorrelation,
			Category: "patterns",
			Priority: priority,
			Strength: abs(f.Strength),
			Text: fmt.Sprintf(tmplCorrelation, tierLabel(string(f.Tier)),
				correlationDirection(f.Strength), f.Strength, f.MetricA, f.MetricB, f.Samples),
			Fact: fact("corr(%s, %s) = %.3f", f.MetricA, f.MetricB, f.Strength),
		})
		if len(out) == maxCorrelationInsights {
			break
		}
	}
	return out
}

// trendInsights reports buckets whose relative change against the previous
// bucket exceeds the configured threshold.
func (s *synthesizer) trendInsights(trends []temporal.Trend) []Insight {
	var out []Insight
	for i := 1; i < len(trends); i++ {
		prev := trends[i-1].Count
		if prev == 0 {
			continue
		}
		change := float64(trends[i].Delta) / float64(prev)
		if abs(change) < s.cfg.Trends.DeltaThreshold {
			continue
		}
		day := trends[i].Start.Format("2006-01-02")
		tmpl := tmplTrendIncrease
		if change < 0 {
			tmpl = tmplTrendDecrease
		}
		out = append(out, Insight{
			Kind:     KindTrend,
			Category: string(classify.Temporal),
			Priority: PriorityMedium,
			Strength: abs(change),
			Text:     fmt.Sprintf(tmpl, abs(change)*100, day, prev, trends[i].Count),
			Fact:     fact("%s: %+d", day, trends[i].Delta),
		})
		if len(out) == maxTrendInsights {
			break
		}
	}
	return out
}

// patternInsights reports structural regularities: operating volume,
// activity specialization, equipment utilization, territorial coverage,
// team composition, labor productivity and observation keyword focus.
// Category patterns are gated on completeness.
func (s *synthesizer) patternInsights(recordCount int, results metrics.Results, signals []textsig.Signal) []Insight {
	var out []Insight

	if recordCount > 0 {
		out = append(out, Insight{
			Kind:     KindPattern,
			Category: "context",
			Priority: PriorityLow,
			Strength: float64(recordCount),
			Text:     fmt.Sprintf(tmplVolume, recordCount, volumeLabel(recordCount)),
			Fact:     fact("registros: %d", recordCount),
		})
	}

	if s.completenessOK(results, classify.Activities) {
		if dist, ok := results["activities.distribution"]; ok && len(dist.Distribution) > 0 {
			top, count := topEntry(dist.Distribution)
			total := distributionTotal(dist.Distribution)
			share := count / total
			priority := PriorityMedium
			if share > 0.50 {
				priority = PriorityHigh
			}
			out = append(out, Insight{
				Kind:     KindPattern,
				Category: string(classify.Activities),
				Priority: priority,
				Strength: share,
				Text:     fmt.Sprintf(tmplActivityFocus, focusLabel(share), top, share*100, int(count)),
				Fact:     fact("%s: %.1f%%", top, share*100),
			})
		}
	}

	if s.completenessOK(results, classify.Machinery) {
		if types, ok := results["machinery.types"]; ok && len(types.Distribution) > 0 {
			top, count := topEntry(types.Distribution)
			usage := distributionTotal(types.Distribution)
			out = append(out, Insight{
				Kind:     KindPattern,
				Category: string(classify.Machinery),
				Priority: PriorityLow,
				Strength: count / usage,
				Text: fmt.Sprintf(tmplMachineryUsage, len(types.Distribution),
					top, int(count), int(usage)),
				Fact: fact("%s: %d/%d usos", top, int(count), int(usage)),
			})
		}
	}

	if s.completenessOK(results, classify.Location) {
		if dist, ok := results["location.communes"]; ok && len(dist.Distribution) > 0 {
			top, count := topEntry(dist.Distribution)
			total := distributionTotal(dist.Distribution)
			share := count / total
			out = append(out, Insight{
				Kind:     KindPattern,
				Category: string(classify.Location),
				Priority: PriorityMedium,
				Strength: share,
				Text: fmt.Sprintf(tmplGeoCoverage, coverageLabel(len(dist.Distribution)),
					len(dist.Distribution), share*100, top),
				Fact: fact("comuna %s: %.1f%%", top, share*100),
			})
		}
	}

	if s.completenessOK(results, classify.HumanResources) {
		if dist, ok := results["human_resources.distribution"]; ok && len(dist.Distribution) > 0 {
			top, count := topEntry(dist.Distribution)
			total := distributionTotal(dist.Distribution)
			if total > 0 {
				share := count / total
				priority := PriorityLow
				if share > 0.50 {
					priority = PriorityMedium
				}
				out = append(out, Insight{
					Kind:     KindPattern,
					Category: string(classify.HumanResources),
					Priority: priority,
					Strength: share,
					Text:     fmt.Sprintf(tmplTeamComposition, top, share*100, int(count)),
					Fact:     fact("%s: %.1f%%", top, share*100),
				})
			}
		}

		hours, okH := results["human_resources.total_hours"]
		workers, okW := results["human_resources.total"]
		if okH && okW && hours.Defined && workers.Defined && workers.Value > 0 {
			perWorker := hours.Value / workers.Value
			label, priority := productivityLabel(perWorker)
			out = append(out, Insight{
				Kind:     KindPattern,
				Category: string(classify.HumanResources),
				Priority: priority,
				Strength: perWorker,
				Text:     fmt.Sprintf(tmplProductivity, perWorker, label),
				Fact:     fact("%.2f h/trabajador", perWorker),
			})
		}
	}

	for _, sig := range signals {
		if len(sig.Keywords) == 0 {
			continue
		}
		words := make([]string, 0, len(sig.Keywords))
		for _, kw := range sig.Keywords {
			words = append(words, kw.Word)
		}
		out = append(out, Insight{
			Kind:     KindPattern,
			Category: string(classify.Observations),
			Priority: PriorityLow,
			Strength: float64(sig.Keywords[0].Count),
			Text:     fmt.Sprintf(tmplKeywordFocus, sig.Column, strings.Join(words, ", ")),
			Fact:     fact("%s: %s (%d)", sig.Column, sig.Keywords[0].Word, sig.Keywords[0].Count),
		})
	}

	return out
}

// recommendations derives actions from backing facts. Every recommendation
// cites the pattern that triggered it; none is emitted without one.
func (s *synthesizer) recommendations(recordCount int, results metrics.Results, findings []metrics.Finding, trends []temporal.Trend) []Insight {
	var out []Insight

	if bucket, ok := busiestBucket(trends); ok && recordCount > 0 {
		share := float64(bucket.Count) / float64(recordCount)
		if share > s.cfg.Analysis.ConcentrationAnomaly {
			day := bucket.Start.Format("2006-01-02")
			out = append(out, Insight{
				Kind:     KindRecommendation,
				Category: "planning",
				Priority: PriorityMedium,
				Strength: share,
				Text:     fmt.Sprintf(tmplRecSchedule, day, bucket.Count),
				Fact:     fact("%s: %d intervenciones", day, bucket.Count),
			})
		}
	}

	if dist, ok := results["location.communes"]; ok && len(dist.Distribution) > 1 {
		top, count := topEntry(dist.Distribution)
		share := count / distributionTotal(dist.Distribution)
		if share > s.cfg.Analysis.GeoConcentration {
			out = append(out, Insight{
				Kind:     KindRecommendation,
				Category: string(classify.Location),
				Priority: PriorityMedium,
				Strength: share,
				Text:     fmt.Sprintf(tmplRecGeoDiversify, share*100, top),
				Fact:     fact("comuna %s: %.1f%%", top, share*100),
			})
		}
	}

	for _, f := range findings {
		if f.Tier != metrics.TierStrong {
			continue
		}
		tmpl := tmplRecStrongCorrelation
		if machineryHoursPair(f) {
			tmpl = tmplRecMachineryHours
		}
		out = append(out, Insight{
			Kind:     KindRecommendation,
			Category: "patterns",
			Priority: PriorityMedium,
			Strength: abs(f.Strength),
			Text:     fmt.Sprintf(tmpl, f.Strength, f.MetricA, f.MetricB),
			Fact:     fact("corr(%s, %s) = %.3f", f.MetricA, f.MetricB, f.Strength),
		})
		break // one correlation-backed recommendation is enough
	}

	if low := s.lowCompleteness(results); len(low) > 0 {
		out = append(out, Insight{
			Kind:     KindRecommendation,
			Category: "data_quality",
			Priority: PriorityLow,
			Strength: float64(len(low)),
			Text:     fmt.Sprintf(tmplRecDataQuality, strings.Join(low, ", ")),
			Fact:     fact("categorías incompletas: %d", len(low)),
		})
	}

	return out
}

// machineryHoursPair reports whether a finding links machinery usage with
// worked hours, the pairing that warrants the machinery planning template.
func machineryHoursPair(f metrics.Finding) bool {
	isMachinery := strings.HasPrefix(f.MetricA, "machinery.") || strings.HasPrefix(f.MetricB, "machinery.")
	hasHours := strings.Contains(f.MetricA, "hours") || strings.Contains(f.MetricB, "hours") ||
		strings.Contains(f.MetricA, "hora") || strings.Contains(f.MetricB, "hora")
	return isMachinery && hasHours
}

func (s *synthesizer) completenessOK(results metrics.Results, cat classify.Category) bool {
	r, ok := results[fmt.Sprintf("%s.completeness", cat)]
	if !ok {
		return false
	}
	return r.Value >= s.cfg.Analysis.MinCompleteness
}

// lowCompleteness returns category names below the completeness minimum,
// sorted for determinism.
func (s *synthesizer) lowCompleteness(results metrics.Results) []string {
	var low []string
	for name, r := range results {
		if !strings.HasSuffix(name, ".completeness") {
			continue
		}
		if r.Value < s.cfg.Analysis.MinCompleteness {
			low = append(low, string(r.Category))
		}
	}
	sort.Strings(low)
	return low
}

// busiestBucket returns the trend bucket with the highest count, ties
// resolved by earliest start.
func busiestBucket(trends []temporal.Trend) (temporal.Trend, bool) {
	if len(trends) == 0 {
		return temporal.Trend{}, false
	}
	best := trends[0]
	for _, t := range trends[1:] {
		if t.Count > best.Count {
			best = t
		}
	}
	return best, true
}

// topEntry returns the distribution entry with the highest value, ties
// resolved alphabetically.
func topEntry(dist map[string]float64) (string, float64) {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	topKey, topVal := "", 0.0
	for _, k := range keys {
		if dist[k] > topVal {
			topKey, topVal = k, dist[k]
		}
	}
	return topKey, topVal
}

func distributionTotal(dist map[string]float64) float64 {
	total := 0.0
	for _, v := range dist {
		total += v
	}
	return total
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
