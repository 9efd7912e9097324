package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitstats/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gitstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfig_FromFile(t *testing.T) {
	t.Parallel()

	content := `
report:
  format: json
  sort_by: lines-added
  top: 10
collect:
  workers: 4
  backend: libgit2
  fetch: true
  cache_entries: 500
filter:
  since: "2024-01-01"
  until: "2024-06-30"
  exclude_author: "bot"
  exclude_merges: true
  branch: main
logging:
  level: debug
  json: true
telemetry:
  otlp_endpoint: "localhost:4317"
  otlp_insecure: true
  metrics_addr: ":9464"
`

	cfg, err := config.LoadConfig(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, config.ReportConfig{Format: "json", SortBy: "lines-added", Top: 10}, cfg.Report)
	assert.Equal(t, 4, cfg.Collect.Workers)
	assert.Equal(t, config.BackendLibgit2, cfg.Collect.Backend)
	assert.True(t, cfg.Collect.Fetch)
	assert.Equal(t, "git", cfg.Collect.GitBinary)
	assert.Equal(t, 500, cfg.Collect.CacheEntries)
	assert.Equal(t, "2024-01-01", cfg.Filter.Since)
	assert.Equal(t, "bot", cfg.Filter.ExcludeAuthor)
	assert.True(t, cfg.Filter.ExcludeMerges)
	assert.Equal(t, "main", cfg.Filter.Branch)
	assert.Equal(t, config.LoggingConfig{Level: "debug", JSON: true}, cfg.Logging)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
	assert.Equal(t, ":9464", cfg.Telemetry.MetricsAddr)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("GITSTATS_REPORT_TOP", "3")
	t.Setenv("GITSTATS_COLLECT_BACKEND", "libgit2")
	t.Setenv("GITSTATS_FILTER_AUTHOR", "Jane Doe")

	cfg, err := config.LoadConfig(writeConfig(t, "report:\n  top: 20\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Report.Top)
	assert.Equal(t, config.BackendLibgit2, cfg.Collect.Backend)
	assert.Equal(t, "Jane Doe", cfg.Filter.Author)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "negative_top", content: "report:\n  top: -1\n"},
		{name: "unknown_format", content: "report:\n  format: csv\n"},
		{name: "unknown_sort", content: "report:\n  sort_by: stars\n"},
		{name: "unknown_backend", content: "collect:\n  backend: jgit\n"},
		{name: "too_many_workers", content: "collect:\n  workers: 5000\n"},
		{name: "negative_cache", content: "collect:\n  cache_entries: -1\n"},
		{name: "bad_level", content: "logging:\n  level: loud\n"},
		{name: "bad_since", content: "filter:\n  since: yesterday\n"},
		{name: "conflicting_authors", content: "filter:\n  author: Jane\n  exclude_author: bot\n"},
		{name: "bad_endpoint", content: "telemetry:\n  otlp_endpoint: \"not an endpoint\"\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tc.content))
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.Default().Validate())
}

func TestFilterConfig_ToFilter(t *testing.T) {
	t.Parallel()

	f, err := config.FilterConfig{
		Since:         "2024-01-01",
		Until:         "2024-01-31T12:00:00Z",
		Author:        "Jane Doe <jane@example.org>",
		ExcludeMerges: true,
		Branch:        "main",
	}.ToFilter()
	require.NoError(t, err)

	require.NotNil(t, f.Since)
	require.NotNil(t, f.Until)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix(), *f.Since)
	assert.Equal(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC).Unix(), *f.Until)
	require.NotNil(t, f.Author)
	assert.Equal(t, "Jane Doe", f.Author.Name)
	assert.Equal(t, "jane@example.org", f.Author.Email)
	assert.True(t, f.ExcludeMerges)
	assert.Equal(t, "main", f.TargetBranch)
}

func TestFilterConfig_ToFilterRelative(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-24 * time.Hour).Unix()

	f, err := config.FilterConfig{Since: "24h"}.ToFilter()
	require.NoError(t, err)
	require.NotNil(t, f.Since)

	assert.InDelta(t, before, *f.Since, 5)
	assert.Nil(t, f.Until)
	assert.Nil(t, f.Author)
}

func TestParseAuthor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		wantName  string
		wantEmail string
	}{
		{in: "Jane Doe", wantName: "Jane Doe"},
		{in: "  Jane  ", wantName: "Jane"},
		{in: "Jane Doe <jane@example.org>", wantName: "Jane Doe", wantEmail: "jane@example.org"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			got, err := config.ParseAuthor(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.wantName, got.Name)
			assert.Equal(t, tc.wantEmail, got.Email)
		})
	}
}
