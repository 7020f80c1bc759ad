package insight

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/afelipfo/informes-med/internal/classify"
	"github.com/afelipfo/informes-med/internal/config"
	"github.com/afelipfo/informes-med/internal/dataset"
	"github.com/afelipfo/informes-med/internal/metrics"
	"github.com/afelipfo/informes-med/internal/temporal"
	"github.com/afelipfo/informes-med/internal/textsig"
)

// ErrNilDataset is returned when Analyze is called without a dataset.
var ErrNilDataset = errors.New("nil dataset")

// Engine runs the one-shot analysis pipeline:
// Classify -> {Metrics, Trends, TextSignals} -> Correlate -> Synthesize.
// It holds no per-run state; a single Engine is safe for concurrent use.
type Engine struct {
	cfg *config.Config
	log *logrus.Logger
}

// New creates an Engine. A nil config falls back to defaults; a nil logger
// discards log output.
func New(cfg *config.Config, log *logrus.Logger) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Engine{cfg: cfg, log: log}
}

// Analyze classifies the dataset's columns and runs the full pipeline.
func (e *Engine) Analyze(ctx context.Context, ds *dataset.Dataset) (*Report, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	return e.AnalyzeClassified(ctx, ds, classify.Classify(ds.Columns()))
}

// AnalyzeClassified runs the pipeline with a caller-provided classification.
// The metric, trend and text branches are mutually independent and run
// concurrently over the read-only dataset; correlation and synthesis wait
// for their inputs. When ctx expires mid-run the engine degrades gracefully:
// it returns a partial report with the trend and correlation sections
// omitted instead of failing.
func (e *Engine) AnalyzeClassified(ctx context.Context, ds *dataset.Dataset, cls *classify.Classification) (*Report, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if cls == nil {
		cls = classify.Classify(ds.Columns())
	}

	e.log.WithFields(logrus.Fields{
		"records": ds.Len(),
		"columns": len(ds.Columns()),
	}).Info("starting analysis run")

	metsCh := make(chan metrics.Results, 1)
	trendsCh := make(chan []temporal.Trend, 1)
	signalsCh := make(chan []textsig.Signal, 1)

	go func() { metsCh <- metrics.Compute(ds, cls) }()
	go func() { trendsCh <- temporal.Analyze(ds, cls, e.granularity(), e.log) }()
	go func() { signalsCh <- textsig.Extract(ds, cls, e.cfg.Text.TopKeywords) }()

	// Metrics are required even for a degraded report.
	mets := <-metsCh

	partial := false
	var trends []temporal.Trend
	var signals []textsig.Signal

	// An already-expired context degrades immediately.
	select {
	case <-ctx.Done():
		partial = true
	default:
	}

	if !partial {
		select {
		case trends = <-trendsCh:
		case <-ctx.Done():
			partial = true
		}
	}
	if !partial {
		select {
		case signals = <-signalsCh:
		case <-ctx.Done():
			partial = true
		}
	}

	var findings []metrics.Finding
	if !partial {
		findings = metrics.DetectCorrelations(mets, metrics.Thresholds{
			Strong:     e.cfg.Correlation.Strong,
			Moderate:   e.cfg.Correlation.Moderate,
			Weak:       e.cfg.Correlation.Weak,
			MinSamples: e.cfg.Correlation.MinSamples,
		})
	} else {
		trends = nil
		signals = nil
		e.log.Warn("analysis deadline exceeded, returning partial report")
	}

	syn := &synthesizer{cfg: e.cfg}
	report := &Report{
		ID:           uuid.NewString(),
		GeneratedAt:  time.Now().UTC(),
		RecordCount:  ds.Len(),
		ColumnCount:  len(ds.Columns()),
		Partial:      partial,
		Insights:     syn.synthesize(ds.Len(), mets, findings, trends, signals),
		Metrics:      mets,
		Correlations: findings,
		Trends:       trends,
		Signals:      signals,
	}

	if start, end, ok := temporal.Period(ds, cls); ok {
		report.PeriodStart = &start
		report.PeriodEnd = &end
	}

	e.log.WithFields(logrus.Fields{
		"insights": len(report.Insights),
		"metrics":  len(report.Metrics),
		"partial":  partial,
	}).Info("analysis run complete")

	return report, nil
}

func (e *Engine) granularity() temporal.Granularity {
	switch e.cfg.Trends.Granularity {
	case "daily":
		return temporal.Daily
	case "monthly":
		return temporal.Monthly
	default:
		return temporal.Weekly
	}
}
