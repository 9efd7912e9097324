// Package report bundles every grouping of a commit history into a single
// Report and renders it as text tables, JSON, YAML or an HTML chart page.
package report

import (
	"cmp"
	"context"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/gitstats/pkg/aggregate"
	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
)

// SpanAggregate wraps the grouping of a collected history.
const SpanAggregate = "gitstats.aggregate"

// Options tunes Build. The zero value sorts by commits and keeps every author.
type Options struct {
	// SortBy orders the author totals, descending.
	SortBy aggregate.SortStatsBy

	// Top keeps only the first Top author totals. Zero or less keeps all.
	Top int

	// RepositorySize is reported in Detail.Size.
	RepositorySize uint64

	// Tracer records the aggregate span. Nil disables tracing.
	Tracer trace.Tracer
}

// Report is every grouping of one history with its rollups.
type Report struct {
	Detail       commits.Detail         `json:"detail"        yaml:"detail"`
	SortBy       string                 `json:"sort_by"       yaml:"sort_by"`
	Total        aggregate.SimpleStat   `json:"total"         yaml:"total"`
	AuthorsCount int                    `json:"authors_count" yaml:"authors_count"`
	Authors      []aggregate.GlobalStat `json:"authors"       yaml:"authors"`

	Months   aggregate.CommitsPerMonth   `json:"months"   yaml:"months"`
	Weekdays aggregate.CommitsPerWeekday `json:"weekdays" yaml:"weekdays"`
	Hours    aggregate.CommitsPerDayHour `json:"hours"    yaml:"hours"`

	// HeatMap is the weekday x hour total, weekdays starting on Monday.
	HeatMap        aggregate.Matrix         `json:"heatmap"         yaml:"heatmap"`
	AuthorHeatMaps aggregate.CommitsHeatMap `json:"author_heatmaps" yaml:"author_heatmaps"`
}

// Build groups details. Backends list commits by committer date, so Build
// reorders a copy by author date for the month windows and Detail.
func Build(ctx context.Context, details []commits.CommitDetail, opts Options) Report {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	_, span := tracer.Start(ctx, SpanAggregate)
	defer span.End()

	perAuthor := aggregate.CommitsPerAuthorOf(details)
	authors := perAuthor.GlobalStats(opts.SortBy)
	heatMap := aggregate.CommitsHeatMapOf(details)
	byAuthorTime := sortedByAuthorTime(details)

	r := Report{
		Detail:         commits.DetailOf(byAuthorTime, opts.RepositorySize),
		SortBy:         opts.SortBy.String(),
		Total:          perAuthor.Total(),
		AuthorsCount:   len(authors),
		Authors:        authors,
		Months:         aggregate.CommitsPerMonthOf(byAuthorTime),
		Weekdays:       aggregate.CommitsPerWeekdayOf(details),
		Hours:          aggregate.CommitsPerDayHourOf(details),
		HeatMap:        heatMap.GlobalStats(),
		AuthorHeatMaps: heatMap,
	}

	if opts.Top > 0 && len(r.Authors) > opts.Top {
		r.Authors = r.Authors[:opts.Top]
	}

	span.SetAttributes(
		attribute.Int("gitstats.commits", len(details)),
		attribute.Int("gitstats.authors", r.AuthorsCount),
		attribute.Int("gitstats.months", len(r.Months)),
		attribute.String("report.sort_by", r.SortBy),
	)

	return r
}

// sortedByAuthorTime returns a copy of details ordered oldest to newest by
// author timestamp, keeping the collected order for equal timestamps.
func sortedByAuthorTime(details []commits.CommitDetail) []commits.CommitDetail {
	sorted := slices.Clone(details)
	slices.SortStableFunc(sorted, func(a, b commits.CommitDetail) int {
		return cmp.Compare(a.AuthorTimestamp, b.AuthorTimestamp)
	})

	return sorted
}

// Truncated reports whether Authors lists fewer identities than the history
// has.
func (r Report) Truncated() bool {
	return len(r.Authors) < r.AuthorsCount
}
