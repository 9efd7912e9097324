package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCommitsTotal    = "gitstats.collect.commits.total"
	metricRunsTotal       = "gitstats.collect.runs.total"
	metricCollectDuration = "gitstats.collect.duration.seconds"

	attrBackend = "backend"
)

// CollectMetrics holds OTel instruments for commit collection runs.
type CollectMetrics struct {
	commitsTotal metric.Int64Counter
	runsTotal    metric.Int64Counter
	duration     metric.Float64Histogram
}

// CollectStats describes one finished collection run.
type CollectStats struct {
	// Backend is the extraction backend, "cli" or "libgit2".
	Backend  string
	Commits  int
	Duration time.Duration
	Err      error
}

// NewCollectMetrics creates collection metric instruments from the given meter.
func NewCollectMetrics(mt metric.Meter) (*CollectMetrics, error) {
	commits, err := mt.Int64Counter(metricCommitsTotal,
		metric.WithDescription("Total commit details extracted"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitsTotal, err)
	}

	runs, err := mt.Int64Counter(metricRunsTotal,
		metric.WithDescription("Collection runs by status"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricCollectDuration,
		metric.WithDescription("Collection run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCollectDuration, err)
	}

	return &CollectMetrics{
		commitsTotal: commits,
		runsTotal:    runs,
		duration:     duration,
	}, nil
}

// RecordRun records a completed collection run. Failed runs add no commits.
// Safe to call on a nil receiver (no-op).
func (cm *CollectMetrics) RecordRun(ctx context.Context, stats CollectStats) {
	if cm == nil {
		return
	}

	backend := attribute.String(attrBackend, stats.Backend)

	cm.runsTotal.Add(ctx, 1, metric.WithAttributes(backend, attribute.String(attrStatus, StatusOf(stats.Err))))
	cm.duration.Record(ctx, stats.Duration.Seconds(), metric.WithAttributes(backend))

	if stats.Err == nil {
		cm.commitsTotal.Add(ctx, int64(stats.Commits), metric.WithAttributes(backend))
	}
}
