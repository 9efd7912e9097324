package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitstats/pkg/aggregate"
	"github.com/Sumatoshi-tech/gitstats/pkg/config"
	"github.com/Sumatoshi-tech/gitstats/pkg/observability"
	"github.com/Sumatoshi-tech/gitstats/pkg/report"
	"github.com/Sumatoshi-tech/gitstats/pkg/runner"
	"github.com/Sumatoshi-tech/gitstats/pkg/terminal"
)

func newSectionCommand(opts *options, section report.Section, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [path]",
		Short: short,
		Long: short + `.

The repository defaults to the working directory. Filters, sorting and the
output format come from the config file and the global flags, flags winning.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			return opts.runReport(cmd, path, section)
		},
	}
}

func (o *options) runReport(cmd *cobra.Command, path string, section report.Section) error {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Validate has already parsed these.
	format, _ := report.ParseFormat(cfg.Report.Format)
	sortBy, _ := aggregate.ParseSortStatsBy(cfg.Report.SortBy)

	filter, err := cfg.Filter.ToFilter()
	if err != nil {
		return err
	}

	providers, err := observability.Init(o.observabilityConfig(cmd, cfg, observability.ModeCLI))
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer shutdown(providers)

	collectMetrics, err := observability.NewCollectMetrics(providers.Meter)
	if err != nil {
		return err
	}

	run := &runner.Runner{
		Logger:    providers.Logger,
		Tracer:    providers.Tracer,
		Metrics:   collectMetrics,
		GitBinary: cfg.Collect.GitBinary,
	}

	bar := newProgress(cmd.ErrOrStderr(), !o.quiet)

	rep, err := run.Report(cmd.Context(), runner.Request{
		Path:       path,
		Backend:    cfg.Collect.Backend,
		Filter:     filter,
		Fetch:      cfg.Collect.Fetch,
		Workers:    cfg.Collect.Workers,
		SortBy:     sortBy,
		Top:        cfg.Report.Top,
		OnProgress: bar.update,
	})

	bar.finish()

	if err != nil {
		return err
	}

	return o.write(cmd, cfg, rep, section, format)
}

// write renders rep to --output or stdout.
func (o *options) write(
	cmd *cobra.Command,
	cfg *config.Config,
	rep report.Report,
	section report.Section,
	format report.Format,
) error {
	var w io.Writer = cmd.OutOrStdout()

	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()

		w = f
	}

	termCfg := terminal.NewConfig()
	if o.noColor || !terminal.IsTerminal(w) {
		termCfg.NoColor = true
	}

	err := report.Write(w, rep, section, format, termCfg)
	if err != nil {
		return err
	}

	if o.output != "" && !o.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s report to %s\n", cfg.Report.Format, o.output)
	}

	return nil
}
