package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/erraggy/apicatalog/catalog"
)

// Metrics are the build counters.
type Metrics struct {
	builds     metric.Int64Counter
	collisions metric.Int64Counter
	repairs    metric.Int64Counter
	skipped    metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewMetrics registers the build instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.builds, err = meter.Int64Counter("apicatalog.builds",
		metric.WithDescription("Catalog builds by outcome")); err != nil {
		return nil, err
	}
	if m.collisions, err = meter.Int64Counter("apicatalog.collisions",
		metric.WithDescription("Name collisions by kind and resolution")); err != nil {
		return nil, err
	}
	if m.repairs, err = meter.Int64Counter("apicatalog.repairs",
		metric.WithDescription("Known irregularities repaired by kind")); err != nil {
		return nil, err
	}
	if m.skipped, err = meter.Int64Counter("apicatalog.skipped_documents",
		metric.WithDescription("Error pages skipped")); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram("apicatalog.build.duration",
		metric.WithDescription("Build wall time"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordBuild records one build. report may be nil when the build failed.
func (m *Metrics) RecordBuild(ctx context.Context, report *catalog.Report, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.builds.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
	if report == nil {
		return
	}
	for _, ev := range append(append([]catalog.CollisionEvent(nil), report.Collisions...), report.Enums...) {
		m.collisions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", ev.Kind),
			attribute.String("resolution", ev.Resolution),
		))
	}
	repairs := make(map[string]int64)
	for _, r := range report.Repairs {
		repairs[r.Kind]++
	}
	for kind, n := range repairs {
		m.repairs.Add(ctx, n, metric.WithAttributes(attribute.String("kind", kind)))
	}
	if n := len(report.Skipped); n > 0 {
		m.skipped.Add(ctx, int64(n))
	}
}
