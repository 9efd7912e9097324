package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
)

// SpanCommitDetail is the per-commit extraction span. It is dropped unless
// Config.TraceVerbose is set.
const SpanCommitDetail = "gitstats.commit_detail"

// filteringTracerProvider wraps a real TracerProvider and turns hot-path
// spans into non-recording spans.
type filteringTracerProvider struct {
	embedded.TracerProvider

	delegate trace.TracerProvider
	suppress map[string]bool
}

// NewFilteringTracerProvider wraps delegate so that per-commit spans are
// dropped while the list and collect spans are kept.
func NewFilteringTracerProvider(delegate trace.TracerProvider) trace.TracerProvider {
	return &filteringTracerProvider{
		delegate: delegate,
		suppress: map[string]bool{
			SpanCommitDetail: true,
		},
	}
}

// Tracer returns a tracer for the given name that drops suppressed spans.
func (f *filteringTracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return &filteringTracer{
		delegate: f.delegate.Tracer(name, opts...),
		suppress: f.suppress,
	}
}

type filteringTracer struct {
	embedded.Tracer

	delegate trace.Tracer
	suppress map[string]bool
}

// Start creates a span. Suppressed names get a non-recording span that
// carries the parent span context, so children still join the trace.
func (f *filteringTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !f.suppress[name] {
		return f.delegate.Start(ctx, name, opts...)
	}

	parent := trace.SpanContextFromContext(ctx)
	span := trace.SpanFromContext(trace.ContextWithSpanContext(context.Background(), parent))

	return trace.ContextWithSpan(ctx, span), span
}
