package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gitstats/pkg/aggregate"
	"github.com/Sumatoshi-tech/gitstats/pkg/terminal"
)

// Sentinel errors for format and section parsing.
var (
	ErrUnknownFormat  = errors.New("unknown output format")
	ErrUnknownSection = errors.New("unknown report section")
)

// Format selects the output encoding.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPlot Format = "plot"
)

// Formats lists the accepted format names.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML), string(FormatPlot)}
}

// ParseFormat parses a format name, ignoring case. "yml" and "html" are
// accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "plot", "html":
		return FormatPlot, nil
	default:
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, s, strings.Join(Formats(), ", "))
	}
}

// Section selects the part of a Report to render.
type Section string

// Report sections.
const (
	SectionAll      Section = "all"
	SectionDetail   Section = "detail"
	SectionAuthors  Section = "authors"
	SectionMonths   Section = "months"
	SectionWeekdays Section = "weekdays"
	SectionHours    Section = "hours"
	SectionHeatMap  Section = "heatmap"
)

var sections = []Section{
	SectionAll, SectionDetail, SectionAuthors, SectionMonths, SectionWeekdays, SectionHours, SectionHeatMap,
}

// Sections lists the accepted section names.
func Sections() []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = string(s)
	}

	return names
}

// ParseSection parses a section name, ignoring case.
func ParseSection(s string) (Section, error) {
	normalized := Section(strings.ToLower(strings.TrimSpace(s)))
	if normalized == "" {
		return SectionAll, nil
	}

	for _, section := range sections {
		if section == normalized {
			return section, nil
		}
	}

	return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownSection, s, strings.Join(Sections(), ", "))
}

// authorsView is the serialised form of SectionAuthors.
type authorsView struct {
	SortBy       string                 `json:"sort_by"       yaml:"sort_by"`
	Total        aggregate.SimpleStat   `json:"total"         yaml:"total"`
	AuthorsCount int                    `json:"authors_count" yaml:"authors_count"`
	Authors      []aggregate.GlobalStat `json:"authors"       yaml:"authors"`
}

// heatMapView is the serialised form of SectionHeatMap.
type heatMapView struct {
	Total   aggregate.Matrix         `json:"total"   yaml:"total"`
	Authors aggregate.CommitsHeatMap `json:"authors" yaml:"authors"`
}

// Value returns the serialisable part of r selected by section.
func (r Report) Value(section Section) any {
	switch section {
	case SectionDetail:
		return r.Detail
	case SectionAuthors:
		return authorsView{SortBy: r.SortBy, Total: r.Total, AuthorsCount: r.AuthorsCount, Authors: r.Authors}
	case SectionMonths:
		return r.Months
	case SectionWeekdays:
		return r.Weekdays
	case SectionHours:
		return r.Hours
	case SectionHeatMap:
		return heatMapView{Total: r.HeatMap, Authors: r.AuthorHeatMaps}
	default:
		return r
	}
}

// Write renders section of r to w in format. cfg only affects text output.
func Write(w io.Writer, r Report, section Section, format Format, cfg terminal.Config) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, r.Value(section))
	case FormatYAML:
		return WriteYAML(w, r.Value(section))
	case FormatPlot:
		return WritePlot(w, r, section)
	case FormatText:
		return NewTextRenderer(w, cfg).Render(r, section)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}

	return nil
}
