package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gitstats/pkg/observability"
)

func newTestProvider() (*tracetest.InMemoryExporter, trace.TracerProvider) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	return exporter, tp
}

func TestFilteringProvider_SuppressesCommitDetail(t *testing.T) {
	t.Parallel()

	exporter, base := newTestProvider()
	tracer := observability.NewFilteringTracerProvider(base).Tracer("gitstats")

	ctx, collectSpan := tracer.Start(context.Background(), "gitstats.collect")

	_, hot := tracer.Start(ctx, observability.SpanCommitDetail)
	hot.End()
	collectSpan.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1, "only the structural span is exported")
	assert.Equal(t, "gitstats.collect", spans[0].Name)
}

func TestFilteringProvider_ChildOfSuppressedJoinsTrace(t *testing.T) {
	t.Parallel()

	exporter, base := newTestProvider()
	tracer := observability.NewFilteringTracerProvider(base).Tracer("gitstats")

	ctx, root := tracer.Start(context.Background(), "gitstats.collect")
	hotCtx, hot := tracer.Start(ctx, observability.SpanCommitDetail)
	_, child := tracer.Start(hotCtx, "gitstats.child")

	child.End()
	hot.End()
	root.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	byName := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = s
	}

	assert.Equal(t, byName["gitstats.collect"].SpanContext.TraceID(), byName["gitstats.child"].SpanContext.TraceID())
}
