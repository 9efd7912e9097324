// Package terminal provides the width, colour and text helpers used by the
// text report.
package terminal

import (
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

// Default width constants.
const (
	DefaultWidth = 80
	MinWidth     = 60
	MaxWidth     = 160
)

// Config holds terminal rendering configuration.
type Config struct {
	Width   int
	NoColor bool
}

// NewConfig reads the width from COLUMNS or the attached terminal, and
// disables colour when NO_COLOR is set.
func NewConfig() Config {
	return Config{
		Width:   DetectWidth(),
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// DetectWidth returns the width from COLUMNS, else the size of the terminal
// on stdout, else DefaultWidth. The result is clamped to [MinWidth, MaxWidth].
func DetectWidth() int {
	if columns := os.Getenv("COLUMNS"); columns != "" {
		width, err := strconv.Atoi(columns)
		if err == nil {
			return clampWidth(width)
		}

		return DefaultWidth
	}

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}

	return clampWidth(width)
}

func clampWidth(width int) int {
	return min(max(width, MinWidth), MaxWidth)
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
