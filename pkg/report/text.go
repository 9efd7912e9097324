package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	prettytext "github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/gitstats/pkg/aggregate"
	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
	"github.com/Sumatoshi-tech/gitstats/pkg/terminal"
)

const (
	msgNoCommits = "No commits matched the filter."

	reportTitle     = "GITSTATS"
	authorNameWidth = 48
	barWidth        = 20
	heatCellWidth   = 3
	heatLabelWidth  = 5
)

// Heat map glyphs, coldest first.
var heatGlyphs = []string{"·", "░", "▒", "▓", "█"}

// TextRenderer draws a Report as terminal tables.
type TextRenderer struct {
	w   io.Writer
	cfg terminal.Config
}

// NewTextRenderer returns a renderer writing to w.
func NewTextRenderer(w io.Writer, cfg terminal.Config) *TextRenderer {
	if cfg.Width <= 0 {
		cfg.Width = terminal.DefaultWidth
	}

	return &TextRenderer{w: w, cfg: cfg}
}

// Render writes section of r.
func (t *TextRenderer) Render(r Report, section Section) error {
	var b strings.Builder

	switch section {
	case SectionDetail:
		t.detail(&b, r)
	case SectionAuthors:
		t.authors(&b, r)
	case SectionMonths:
		t.months(&b, r)
	case SectionWeekdays:
		t.weekdays(&b, r)
	case SectionHours:
		t.hours(&b, r)
	case SectionHeatMap:
		t.heatMap(&b, r)
	default:
		t.all(&b, r)
	}

	_, err := io.WriteString(t.w, b.String())
	if err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	return nil
}

func (t *TextRenderer) all(b *strings.Builder, r Report) {
	summary := fmt.Sprintf("%s commits, %s authors",
		humanize.Comma(int64(r.Total.CommitsCount)), humanize.Comma(int64(r.AuthorsCount)))
	b.WriteString(terminal.DrawHeader(reportTitle, summary, t.cfg.Width))
	b.WriteString("\n\n")

	t.detail(b, r)

	if r.Total.CommitsCount == 0 {
		return
	}

	for _, render := range []func(*strings.Builder, Report){t.authors, t.months, t.weekdays, t.hours, t.heatMap} {
		b.WriteString("\n")
		render(b, r)
	}
}

func (t *TextRenderer) heading(b *strings.Builder, title, note string) {
	b.WriteString(t.cfg.Heading(title))

	if note != "" {
		b.WriteString(" ")
		b.WriteString(t.cfg.Colorize("("+note+")", color.Faint))
	}

	b.WriteString("\n")
}

func (t *TextRenderer) detail(b *strings.Builder, r Report) {
	t.heading(b, "Repository", "")

	tbl := newTable()
	tbl.AppendRow(table.Row{"Commits", comma(r.Detail.CommitsCount)})
	tbl.AppendRow(table.Row{"Authors", comma(r.AuthorsCount)})

	if r.Detail.FirstCommit != nil {
		tbl.AppendRow(table.Row{"First commit", formatTimestamp(*r.Detail.FirstCommit)})
	}

	if r.Detail.LastCommit != nil {
		tbl.AppendRow(table.Row{"Last commit", formatTimestamp(*r.Detail.LastCommit)})
	}

	if r.Detail.Size > 0 {
		tbl.AppendRow(table.Row{"Repository size", humanize.IBytes(r.Detail.Size)})
	}

	tbl.AppendRow(table.Row{"Files changed", commaU(r.Total.Stats.FilesChanged)})
	tbl.AppendRow(table.Row{"Lines added", commaU(r.Total.Stats.LinesAdded)})
	tbl.AppendRow(table.Row{"Lines deleted", commaU(r.Total.Stats.LinesDeleted)})

	b.WriteString(tbl.Render())
	b.WriteString("\n")
}

func (t *TextRenderer) authors(b *strings.Builder, r Report) {
	note := "sorted by " + r.SortBy
	if r.Truncated() {
		note = fmt.Sprintf("top %d of %d, %s", len(r.Authors), r.AuthorsCount, note)
	}

	t.heading(b, "Authors", note)

	if len(r.Authors) == 0 {
		b.WriteString(msgNoCommits + "\n")

		return
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"#", "Author", "Commits", "Share", "Files", "Added", "Deleted"})

	for i, g := range r.Authors {
		tbl.AppendRow(table.Row{
			i + 1,
			terminal.TruncateWithEllipsis(g.Author.String(), authorNameWidth),
			comma(g.CommitsCount),
			terminal.Percent(terminal.Share(g.CommitsCount, r.Total.CommitsCount)),
			commaU(g.Stats.FilesChanged),
			t.cfg.Colorize("+"+commaU(g.Stats.LinesAdded), color.FgGreen),
			t.cfg.Colorize("-"+commaU(g.Stats.LinesDeleted), color.FgRed),
		})
	}

	tbl.AppendFooter(table.Row{
		"", "Total", comma(r.Total.CommitsCount), "",
		commaU(r.Total.Stats.FilesChanged), "+" + commaU(r.Total.Stats.LinesAdded), "-" + commaU(r.Total.Stats.LinesDeleted),
	})
	alignNumbers(tbl, 3, 4, 5, 6, 7)

	b.WriteString(tbl.Render())
	b.WriteString("\n")
}

func (t *TextRenderer) months(b *strings.Builder, r Report) {
	t.heading(b, "Commits per month", "")

	months := r.Months.Months()
	if len(months) == 0 {
		b.WriteString(msgNoCommits + "\n")

		return
	}

	totals := r.Months.GlobalStats()

	peak := 0
	for _, m := range months {
		peak = max(peak, totals[m].CommitsCount)
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Month", "Commits", "Authors", "Files", "Added", "Deleted", ""})

	for _, m := range months {
		total := totals[m]
		tbl.AppendRow(table.Row{
			m,
			comma(total.CommitsCount),
			len(r.Months[m]),
			commaU(total.Stats.FilesChanged),
			commaU(total.Stats.LinesAdded),
			commaU(total.Stats.LinesDeleted),
			t.bar(total.CommitsCount, peak),
		})
	}

	alignNumbers(tbl, 2, 3, 4, 5, 6)

	b.WriteString(tbl.Render())
	b.WriteString("\n")
}

func (t *TextRenderer) weekdays(b *strings.Builder, r Report) {
	t.heading(b, "Commits per weekday", "UTC")

	totals := r.Weekdays.GlobalStats()
	days := r.Weekdays.Weekdays()

	rows := make([]bucketRow, len(days))
	for i, d := range days {
		rows[i] = bucketRow{label: d.String(), authors: len(r.Weekdays[d]), stat: totals[d]}
	}

	t.buckets(b, "Weekday", rows, r.Total.CommitsCount)
}

func (t *TextRenderer) hours(b *strings.Builder, r Report) {
	t.heading(b, "Commits per hour", "UTC")

	totals := r.Hours.GlobalStats()
	hours := r.Hours.Hours()

	rows := make([]bucketRow, len(hours))
	for i, h := range hours {
		rows[i] = bucketRow{label: fmt.Sprintf("%02d:00", h), authors: len(r.Hours[h]), stat: totals[h]}
	}

	t.buckets(b, "Hour", rows, r.Total.CommitsCount)
}

type bucketRow struct {
	label   string
	authors int
	stat    aggregate.SimpleStat
}

func (t *TextRenderer) buckets(b *strings.Builder, label string, rows []bucketRow, total int) {
	peak := 0
	for _, row := range rows {
		peak = max(peak, row.stat.CommitsCount)
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{label, "Commits", "Share", "Authors", "Added", "Deleted", ""})

	for _, row := range rows {
		tbl.AppendRow(table.Row{
			row.label,
			comma(row.stat.CommitsCount),
			terminal.Percent(terminal.Share(row.stat.CommitsCount, total)),
			row.authors,
			commaU(row.stat.Stats.LinesAdded),
			commaU(row.stat.Stats.LinesDeleted),
			t.bar(row.stat.CommitsCount, peak),
		})
	}

	alignNumbers(tbl, 2, 3, 4, 5, 6)

	b.WriteString(tbl.Render())
	b.WriteString("\n")
}

func (t *TextRenderer) heatMap(b *strings.Builder, r Report) {
	t.heading(b, "Weekday x hour", "UTC")

	peak, peakDay, peakHour := 0, 0, 0

	for d := range aggregate.DaysPerWeek {
		for h := range aggregate.HoursPerDay {
			if n := r.HeatMap[d][h].CommitsCount; n > peak {
				peak, peakDay, peakHour = n, d, h
			}
		}
	}

	b.WriteString(strings.Repeat(" ", heatLabelWidth))

	for h := range aggregate.HoursPerDay {
		b.WriteString(terminal.PadLeft(strconv.Itoa(h), heatCellWidth))
	}

	b.WriteString("\n")

	for i, d := range r.Weekdays.Weekdays() {
		b.WriteString(terminal.PadRight(d.String()[:3], heatLabelWidth))

		for h := range aggregate.HoursPerDay {
			intensity := terminal.Share(r.HeatMap[i][h].CommitsCount, peak)
			glyph := t.cfg.Colorize(heatGlyph(intensity), terminal.HeatColor(intensity)...)
			b.WriteString(strings.Repeat(" ", heatCellWidth-1) + glyph)
		}

		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(strings.Join(heatGlyphs, " "))
	fmt.Fprintf(b, "  0 to %s commits per cell", comma(peak))

	if peak > 0 {
		day := r.Weekdays.Weekdays()[peakDay]
		fmt.Fprintf(b, ", busiest %s %02d:00", day, peakHour)
	}

	b.WriteString("\n")
}

func (t *TextRenderer) bar(value, peak int) string {
	return t.cfg.Colorize(terminal.DrawBar(terminal.Share(value, peak), barWidth), color.FgCyan)
}

func heatGlyph(intensity float64) string {
	switch {
	case intensity <= 0:
		return heatGlyphs[0]
	case intensity < terminal.HeatLow:
		return heatGlyphs[1]
	case intensity < terminal.HeatMedium:
		return heatGlyphs[2]
	case intensity < terminal.HeatHigh:
		return heatGlyphs[3]
	default:
		return heatGlyphs[4]
	}
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

// alignNumbers right-aligns the given 1-based columns.
func alignNumbers(tbl table.Writer, columns ...int) {
	configs := make([]table.ColumnConfig, len(columns))
	for i, n := range columns {
		configs[i] = table.ColumnConfig{Number: n, Align: prettytext.AlignRight, AlignFooter: prettytext.AlignRight}
	}

	tbl.SetColumnConfigs(configs)
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

func commaU(n uint32) string {
	return humanize.Comma(int64(n))
}

func formatTimestamp(ts int64) string {
	at := time.Unix(ts, 0).UTC()

	return fmt.Sprintf("%s (%s)", at.Format(commits.DateTimeLayout), humanize.Time(at))
}
