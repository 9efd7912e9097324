// Package collect turns commit hashes into commit details using a bounded
// pool of concurrent extractions.
package collect

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
)

// Span names.
const (
	SpanListCommits  = "gitstats.list_commits"
	SpanCollect      = "gitstats.collect"
	SpanCommitDetail = "gitstats.commit_detail"
)

const (
	attrCommits = "gitstats.commits"
	attrCommit  = "gitstats.commit"
	attrWorkers = "gitstats.workers"
	attrFilter  = "gitstats.filter"
)

// Extractor reads the detail of a single commit.
// Implementations must be safe for concurrent use.
type Extractor interface {
	CommitDetail(ctx context.Context, hash commits.CommitHash) (commits.CommitDetail, error)
}

// Source lists commits and extracts their details.
type Source interface {
	Extractor
	ListCommits(ctx context.Context, filter commits.Filter) ([]commits.CommitHash, error)
}

// Options tunes a collection run. The zero value is usable.
type Options struct {
	// Workers bounds concurrent extractions. Zero or less uses the CPU count.
	Workers int

	// Tracer records the collection spans. Nil disables tracing.
	Tracer trace.Tracer

	// Logger receives debug events. Nil uses slog.Default().
	Logger *slog.Logger

	// OnProgress is called after each extraction with the number of finished
	// and total commits. It is called from several goroutines at once.
	OnProgress func(done, total int)
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}

	return o.Workers
}

func (o Options) tracer() trace.Tracer {
	if o.Tracer == nil {
		return nooptrace.NewTracerProvider().Tracer("")
	}

	return o.Tracer
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}

	return o.Logger
}

// Details extracts every hash concurrently. The result has the order of
// hashes. The first failing extraction cancels the others and its error is
// returned with no partial result.
func Details(
	ctx context.Context, extractor Extractor, hashes []commits.CommitHash, opts Options,
) ([]commits.CommitDetail, error) {
	tracer := opts.tracer()
	workers := opts.workers()

	ctx, span := tracer.Start(ctx, SpanCollect, trace.WithAttributes(
		attribute.Int(attrCommits, len(hashes)),
		attribute.Int(attrWorkers, workers),
	))
	defer span.End()

	results := make([]commits.CommitDetail, len(hashes))
	total := len(hashes)

	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, hash := range hashes {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			detail, err := extractOne(gctx, tracer, extractor, hash)
			if err != nil {
				return err
			}

			results[i] = detail

			if opts.OnProgress != nil {
				opts.OnProgress(int(done.Add(1)), total)
			}

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collect failed")

		return nil, err
	}

	// The loop can stop early on a parent cancellation that no worker saw.
	if ctxErr := ctx.Err(); ctxErr != nil {
		span.SetStatus(codes.Error, "canceled")

		return nil, ctxErr
	}

	opts.logger().DebugContext(ctx, "collected commit details", "commits", total, "workers", workers)

	return results, nil
}

func extractOne(
	ctx context.Context, tracer trace.Tracer, extractor Extractor, hash commits.CommitHash,
) (commits.CommitDetail, error) {
	ctx, span := tracer.Start(ctx, SpanCommitDetail, trace.WithAttributes(attribute.String(attrCommit, string(hash))))
	defer span.End()

	detail, err := extractor.CommitDetail(ctx, hash)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract failed")

		return commits.CommitDetail{}, err
	}

	return detail, nil
}

// History lists the commits selected by filter, oldest first, and extracts
// their details.
func History(ctx context.Context, source Source, filter commits.Filter, opts Options) ([]commits.CommitDetail, error) {
	tracer := opts.tracer()

	listCtx, span := tracer.Start(ctx, SpanListCommits, trace.WithAttributes(attribute.String(attrFilter, filter.String())))

	hashes, err := source.ListCommits(listCtx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		span.End()

		return nil, err
	}

	span.SetAttributes(attribute.Int(attrCommits, len(hashes)))
	span.End()

	opts.logger().DebugContext(ctx, "listed commits", "commits", len(hashes), "filter", filter.String())

	return Details(ctx, source, hashes, opts)
}
