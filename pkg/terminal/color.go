package terminal

import "github.com/fatih/color"

// Heat thresholds, as a share of the largest cell.
const (
	HeatLow    = 0.25
	HeatMedium = 0.5
	HeatHigh   = 0.75
)

// Colorize renders text with attrs unless NoColor is set. The escapes are
// emitted even when stdout is not a terminal.
func (c Config) Colorize(text string, attrs ...color.Attribute) string {
	if c.NoColor || len(attrs) == 0 {
		return text
	}

	col := color.New(attrs...)
	col.EnableColor()

	return col.Sprint(text)
}

// Heading renders a section title.
func (c Config) Heading(text string) string {
	return c.Colorize(text, color.FgCyan, color.Bold)
}

// HeatColor maps a 0-1 intensity to a colour, cold to hot.
func HeatColor(intensity float64) []color.Attribute {
	switch {
	case intensity <= 0:
		return []color.Attribute{color.FgHiBlack}
	case intensity < HeatLow:
		return []color.Attribute{color.FgBlue}
	case intensity < HeatMedium:
		return []color.Attribute{color.FgGreen}
	case intensity < HeatHigh:
		return []color.Attribute{color.FgYellow}
	default:
		return []color.Attribute{color.FgRed, color.Bold}
	}
}
