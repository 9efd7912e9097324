package terminal

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended to truncated strings.
const Ellipsis = "..."

// TruncateWithEllipsis shortens s to at most maxWidth display columns.
func TruncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	if maxWidth <= len(Ellipsis) {
		return strings.Repeat(".", maxWidth)
	}

	return runewidth.Truncate(s, maxWidth, Ellipsis)
}

// PadRight pads s with spaces on the right to width display columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// PadLeft pads s with spaces on the left to width display columns.
func PadLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
