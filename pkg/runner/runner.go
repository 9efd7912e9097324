// Package runner opens a repository with the selected backend and turns its
// history into a report. The CLI and the MCP server both go through it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gitstats/pkg/aggregate"
	"github.com/Sumatoshi-tech/gitstats/pkg/collect"
	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
	"github.com/Sumatoshi-tech/gitstats/pkg/gitcli"
	"github.com/Sumatoshi-tech/gitstats/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitstats/pkg/observability"
	"github.com/Sumatoshi-tech/gitstats/pkg/report"
)

// ErrUnknownBackend is returned for a backend name other than BackendCLI or
// BackendLibgit2.
var ErrUnknownBackend = errors.New("unknown backend")

// Backend names.
const (
	BackendCLI     = "cli"
	BackendLibgit2 = "libgit2"
)

// Repository is what a backend offers once opened.
type Repository interface {
	collect.Source
	Detail(ctx context.Context, filter commits.Filter) (commits.Detail, error)
	Path() string
	Close() error
}

// cliRepository adapts gitcli, which holds no resources, to Repository.
type cliRepository struct {
	*gitcli.Repository
}

func (cliRepository) Close() error { return nil }

// Runner carries the dependencies shared by every run. The zero value works.
type Runner struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.CollectMetrics

	// GitBinary overrides the git executable of the cli backend and of fetches.
	GitBinary string

	// Cache keeps extracted commit details across runs. Nil disables it.
	Cache *DetailCache
}

// Request describes one run.
type Request struct {
	Path    string
	Backend string
	Filter  commits.Filter

	// Fetch runs git fetch --all before reading the history.
	Fetch bool

	Workers    int
	SortBy     aggregate.SortStatsBy
	Top        int
	OnProgress func(done, total int)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}

	return r.Logger
}

func (r *Runner) cliOptions() []gitcli.Option {
	opts := []gitcli.Option{gitcli.WithLogger(r.logger())}
	if r.GitBinary != "" {
		opts = append(opts, gitcli.WithGitBinary(r.GitBinary))
	}

	return opts
}

// Open opens path with backend. An empty backend selects the cli backend.
func (r *Runner) Open(ctx context.Context, backend, path string) (Repository, error) {
	switch backend {
	case "", BackendCLI:
		repo, err := gitcli.Open(ctx, path, r.cliOptions()...)
		if err != nil {
			return nil, err
		}

		return cliRepository{repo}, nil
	case BackendLibgit2:
		repo, err := gitlib.OpenRepository(path, gitlib.WithLogger(r.logger()))
		if err != nil {
			return nil, err
		}

		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownBackend, backend, BackendCLI, BackendLibgit2)
	}
}

func (r *Runner) open(ctx context.Context, req Request) (Repository, error) {
	if req.Fetch {
		fetcher, err := gitcli.Open(ctx, req.Path, r.cliOptions()...)
		if err != nil {
			return nil, err
		}

		err = fetcher.FetchAll(ctx)
		if err != nil {
			return nil, err
		}

		r.logger().InfoContext(ctx, "fetched remotes", "path", fetcher.Path())
	}

	return r.Open(ctx, req.Backend, req.Path)
}

// Report collects the history selected by req and builds its report.
func (r *Runner) Report(ctx context.Context, req Request) (report.Report, error) {
	repo, err := r.open(ctx, req)
	if err != nil {
		return report.Report{}, err
	}

	defer func() {
		closeErr := repo.Close()
		if closeErr != nil {
			r.logger().WarnContext(ctx, "close repository", "error", closeErr)
		}
	}()

	backend := req.Backend
	if backend == "" {
		backend = BackendCLI
	}

	start := time.Now()

	details, err := collect.History(ctx, r.Cache.wrap(repo, backend), req.Filter, collect.Options{
		Workers:    req.Workers,
		Tracer:     r.Tracer,
		Logger:     r.logger(),
		OnProgress: req.OnProgress,
	})

	r.Metrics.RecordRun(ctx, observability.CollectStats{
		Backend:  backend,
		Commits:  len(details),
		Duration: time.Since(start),
		Err:      err,
	})

	if err != nil {
		return report.Report{}, fmt.Errorf("collect %s: %w", repo.Path(), err)
	}

	detail, err := repo.Detail(ctx, req.Filter)
	if err != nil {
		return report.Report{}, err
	}

	r.logger().DebugContext(ctx, "collected history",
		"backend", backend, "commits", len(details), "elapsed", time.Since(start))

	if r.Cache != nil {
		stats := r.Cache.Stats()
		r.logger().DebugContext(ctx, "commit detail cache",
			"entries", stats.Entries, "hits", stats.Hits, "misses", stats.Misses, "evictions", stats.Evictions)
	}

	return report.Build(ctx, details, report.Options{
		SortBy:         req.SortBy,
		Top:            req.Top,
		RepositorySize: detail.Size,
		Tracer:         r.Tracer,
	}), nil
}

// Detail summarises the history selected by req without extracting commit
// details.
func (r *Runner) Detail(ctx context.Context, req Request) (commits.Detail, error) {
	repo, err := r.open(ctx, req)
	if err != nil {
		return commits.Detail{}, err
	}

	defer func() {
		closeErr := repo.Close()
		if closeErr != nil {
			r.logger().WarnContext(ctx, "close repository", "error", closeErr)
		}
	}()

	return repo.Detail(ctx, req.Filter)
}
