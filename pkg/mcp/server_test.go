package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/gitstats/pkg/aggregate"
	"github.com/Sumatoshi-tech/gitstats/pkg/observability"
	"github.com/Sumatoshi-tech/gitstats/pkg/report"
)

func TestServer_ListToolNames(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	assert.Equal(t, []string{ToolNameReport}, srv.ListToolNames())
	assert.NotNil(t, srv.runner)
}

func TestValidateRepoPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "empty", path: "", want: ErrEmptyRepoPath},
		{name: "relative", path: "repo", want: ErrRepoPathNotAbsolute},
		{name: "missing", path: filepath.Join(dir, "missing"), want: ErrRepoNotFound},
		{name: "file", path: file, want: ErrRepoNotFound},
		{name: "dir", path: dir},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := validateRepoPath(tc.path)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestReportRequest(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{Workers: 3})
	dir := t.TempDir()

	req, section, err := srv.reportRequest(ReportInput{
		RepoPath:      dir,
		Section:       "authors",
		SortBy:        "lines_added",
		Top:           5,
		Since:         "2024-01-01",
		Author:        "Alice",
		ExcludeMerges: true,
		Backend:       "libgit2",
	})
	require.NoError(t, err)

	assert.Equal(t, report.SectionAuthors, section)
	assert.Equal(t, dir, req.Path)
	assert.Equal(t, "libgit2", req.Backend)
	assert.Equal(t, 3, req.Workers)
	assert.Equal(t, aggregate.SortByLinesAdded, req.SortBy)
	assert.Equal(t, 5, req.Top)
	assert.True(t, req.Filter.ExcludeMerges)
	require.NotNil(t, req.Filter.Since)
	require.NotNil(t, req.Filter.Author)
	assert.Equal(t, "Alice", req.Filter.Author.Name)

	req, section, err = srv.reportRequest(ReportInput{RepoPath: dir})
	require.NoError(t, err)
	assert.Equal(t, report.SectionAll, section)
	assert.Equal(t, aggregate.SortByCommits, req.SortBy)
}

func TestReportRequest_Errors(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})
	dir := t.TempDir()

	tests := []struct {
		name  string
		input ReportInput
		want  error
	}{
		{name: "no path", input: ReportInput{}, want: ErrEmptyRepoPath},
		{name: "negative top", input: ReportInput{RepoPath: dir, Top: -1}, want: ErrNegativeTop},
		{name: "section", input: ReportInput{RepoPath: dir, Section: "files"}, want: report.ErrUnknownSection},
		{name: "sort", input: ReportInput{RepoPath: dir, SortBy: "size"}, want: aggregate.ErrUnknownSortKey},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := srv.reportRequest(tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, _, err := srv.reportRequest(ReportInput{RepoPath: dir, Since: "last tuesday"})
	assert.ErrorContains(t, err, "filter")
}

func TestErrorResult(t *testing.T) {
	t.Parallel()

	result, output, err := errorResult(errors.New("boom"))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Nil(t, output.Data)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "boom", result.Content[0].(*mcpsdk.TextContent).Text)
}

func TestJSONResult(t *testing.T) {
	t.Parallel()

	result, output, err := jsonResult(map[string]int{"commits": 3})
	require.NoError(t, err)

	assert.False(t, result.IsError)
	assert.Equal(t, map[string]int{"commits": 3}, output.Data)
	assert.JSONEq(t, `{"commits": 3}`, result.Content[0].(*mcpsdk.TextContent).Text)
}

type echoInput struct {
	Fail bool
}

func echoHandler(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input echoInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Fail {
		return errorResult(errors.New("failed"))
	}

	return jsonResult("ok")
}

func TestWithTracing(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	handler := withTracing(tp.Tracer("test"), "echo", echoHandler)

	result, _, err := handler(context.Background(), nil, echoInput{})
	require.NoError(t, err)

	require.Len(t, result.Content, 2)
	assert.Contains(t, result.Content[1].(*mcpsdk.TextContent).Text, traceIDMetaKey+"=")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "mcp.echo", spans[0].Name)
}

func TestWithTracing_NilTracer(t *testing.T) {
	t.Parallel()

	handler := withTracing(nil, "echo", echoHandler)

	result, _, err := handler(context.Background(), nil, echoInput{})
	require.NoError(t, err)
	assert.Len(t, result.Content, 1)
}

func TestWithMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	handler := withMetrics(red, "echo", echoHandler)

	_, _, err = handler(context.Background(), nil, echoInput{})
	require.NoError(t, err)

	_, _, err = handler(context.Background(), nil, echoInput{Fail: true})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	statuses := map[string]int64{}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "gitstats.requests.total" {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value("status")
				statuses[status.AsString()] += dp.Value
			}
		}
	}

	assert.Equal(t, map[string]int64{observability.StatusOK: 1, observability.StatusError: 1}, statuses)
}
