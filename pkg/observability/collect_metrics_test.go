package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/gitstats/pkg/observability"
)

func TestCollectMetrics_RecordRun(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	cm, err := observability.NewCollectMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()

	cm.RecordRun(ctx, observability.CollectStats{Backend: "cli", Commits: 120, Duration: 2 * time.Second})
	cm.RecordRun(ctx, observability.CollectStats{Backend: "cli", Commits: 7, Err: errors.New("boom")})

	rm := collectMetrics(t, reader)

	commits := findMetric(rm, "gitstats.collect.commits.total")
	require.NotNil(t, commits)

	sum, ok := commits.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(120), sum.DataPoints[0].Value, "failed runs add no commits")

	runs := findMetric(rm, "gitstats.collect.runs.total")
	require.NotNil(t, runs)

	runSum, ok := runs.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, runSum.DataPoints, 2, "one series per status")

	require.NotNil(t, findMetric(rm, "gitstats.collect.duration.seconds"))
}

func TestCollectMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var cm *observability.CollectMetrics

	cm.RecordRun(context.Background(), observability.CollectStats{Backend: "libgit2", Commits: 1})
}
