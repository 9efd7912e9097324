// Package commands implements CLI command handlers for gitstats.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitstats/pkg/config"
	"github.com/Sumatoshi-tech/gitstats/pkg/observability"
	"github.com/Sumatoshi-tech/gitstats/pkg/report"
	"github.com/Sumatoshi-tech/gitstats/pkg/version"
)

// Flag names shared by the report commands and the config overrides.
const (
	flagConfig        = "config"
	flagVerbose       = "verbose"
	flagQuiet         = "quiet"
	flagNoColor       = "no-color"
	flagOutput        = "output"
	flagFormat        = "format"
	flagSortBy        = "sort-by"
	flagTop           = "top"
	flagWorkers       = "workers"
	flagBackend       = "backend"
	flagFetch         = "fetch"
	flagSince         = "since"
	flagUntil         = "until"
	flagAuthor        = "author"
	flagExcludeAuthor = "exclude-author"
	flagExcludeMerges = "exclude-merges"
	flagBranch        = "branch"
)

// envOTLPEndpoint and friends are read when the config file sets no endpoint.
const (
	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
	envOTLPInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
)

// options holds the persistent flags of the root command.
type options struct {
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool
	output     string

	format  string
	sortBy  string
	top     int
	workers int
	backend string
	fetch   bool

	since         string
	until         string
	author        string
	excludeAuthor string
	excludeMerges bool
	branch        string
}

// NewRootCommand builds the gitstats command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{})
}

func newRootCommand(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitstats",
		Short: "gitstats - commit statistics for Git repositories",
		Long: `gitstats summarises the commit history of a Git repository.

Commands:
  report    Every section below in one run
  detail    Repository summary
  authors   Commits and line changes per author
  months    Commits per month window, by author
  weekdays  Commits per weekday, by author
  hours     Commits per hour of day, by author
  heatmap   Weekday by hour commit heat map
  mcp       Serve the report as an MCP tool on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, flagConfig, "", "Config file (default: ./gitstats.yaml, then the user config dir)")
	flags.BoolVarP(&opts.verbose, flagVerbose, "v", false, "Verbose output (debug logging)")
	flags.BoolVarP(&opts.quiet, flagQuiet, "q", false, "Suppress progress and log output")
	flags.BoolVar(&opts.noColor, flagNoColor, false, "Disable colored text output")
	flags.StringVarP(&opts.output, flagOutput, "o", "", "Write the report to this file instead of stdout")

	flags.StringVarP(&opts.format, flagFormat, "f", config.DefaultReportFormat, "Output format: text, json, yaml, plot")
	flags.StringVarP(&opts.sortBy, flagSortBy, "s", config.DefaultReportSortBy,
		"Author order: commits, files-changed, lines-added, lines-deleted")
	flags.IntVarP(&opts.top, flagTop, "n", config.DefaultReportTop, "Keep only the first N authors (0 = all)")
	flags.IntVar(&opts.workers, flagWorkers, config.DefaultCollectWorkers, "Number of parallel workers (0 = use CPU count)")
	flags.StringVar(&opts.backend, flagBackend, config.DefaultCollectBackend, "Git backend: cli or libgit2")
	flags.BoolVar(&opts.fetch, flagFetch, false, "Run git fetch --all before reading the history")

	flags.StringVar(&opts.since, flagSince, "", "Only commits after this time (e.g., '720h', '2024-01-01', RFC3339)")
	flags.StringVar(&opts.until, flagUntil, "", "Only commits before this time (e.g., '2024-12-31', RFC3339)")
	flags.StringVar(&opts.author, flagAuthor, "", "Only commits by this author ('Name' or 'Name <email>')")
	flags.StringVar(&opts.excludeAuthor, flagExcludeAuthor, "", "Drop commits whose author starts with this pattern")
	flags.BoolVar(&opts.excludeMerges, flagExcludeMerges, false, "Drop merge commits")
	flags.StringVarP(&opts.branch, flagBranch, "b", "", "Walk only this branch (default: every ref)")

	for _, sc := range sectionCommands {
		rootCmd.AddCommand(newSectionCommand(opts, sc.section, sc.use, sc.short))
	}

	rootCmd.AddCommand(newMCPCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// loadConfig reads the config file and applies the flags the user set.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	o.apply(cmd, cfg)

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// apply copies explicitly set flags over cfg.
func (o *options) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	overrides := []struct {
		name string
		set  func()
	}{
		{flagFormat, func() { cfg.Report.Format = o.format }},
		{flagSortBy, func() { cfg.Report.SortBy = o.sortBy }},
		{flagTop, func() { cfg.Report.Top = o.top }},
		{flagWorkers, func() { cfg.Collect.Workers = o.workers }},
		{flagBackend, func() { cfg.Collect.Backend = o.backend }},
		{flagFetch, func() { cfg.Collect.Fetch = o.fetch }},
		{flagSince, func() { cfg.Filter.Since = o.since }},
		{flagUntil, func() { cfg.Filter.Until = o.until }},
		{flagAuthor, func() { cfg.Filter.Author = o.author }},
		{flagExcludeAuthor, func() { cfg.Filter.ExcludeAuthor = o.excludeAuthor }},
		{flagExcludeMerges, func() { cfg.Filter.ExcludeMerges = o.excludeMerges }},
		{flagBranch, func() { cfg.Filter.Branch = o.branch }},
	}

	for _, ov := range overrides {
		if flags.Changed(ov.name) {
			ov.set()
		}
	}
}

// observabilityConfig maps the loaded settings onto an observability.Config.
func (o *options) observabilityConfig(
	cmd *cobra.Command,
	cfg *config.Config,
	mode observability.AppMode,
) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogOutput = cmd.ErrOrStderr()

	level, err := observability.ParseLogLevel(cfg.Logging.Level)
	if err == nil {
		obsCfg.LogLevel = level
	}

	switch {
	case o.verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case o.quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure

	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = os.Getenv(envOTLPEndpoint)
		obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv(envOTLPHeaders))
		obsCfg.OTLPInsecure = os.Getenv(envOTLPInsecure) == "true"
	}

	return obsCfg
}

// shutdown flushes telemetry, logging instead of failing the command.
func shutdown(providers observability.Providers) {
	err := providers.Shutdown(context.Background())
	if err != nil {
		providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String("gitstats"))
		},
	}
}

var sectionCommands = []struct {
	section report.Section
	use     string
	short   string
}{
	{report.SectionAll, "report", "Print every report section"},
	{report.SectionDetail, "detail", "Summarise the repository"},
	{report.SectionAuthors, "authors", "Commits and line changes per author"},
	{report.SectionMonths, "months", "Commits per month window, by author"},
	{report.SectionWeekdays, "weekdays", "Commits per weekday, by author"},
	{report.SectionHours, "hours", "Commits per hour of day, by author"},
	{report.SectionHeatMap, "heatmap", "Weekday by hour commit heat map"},
}
