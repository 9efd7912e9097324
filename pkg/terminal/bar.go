package terminal

import (
	"fmt"
	"strings"
)

// Bar characters.
const (
	BarFilled = "█"
	BarEmpty  = "░"
)

// PercentMultiplier converts 0-1 to 0-100.
const PercentMultiplier = 100

// DrawBar draws a bar of width cells, value clamped to [0, 1].
func DrawBar(value float64, width int) string {
	if width <= 0 {
		return ""
	}

	value = min(max(value, 0), 1)
	filled := int(value * float64(width))

	return strings.Repeat(BarFilled, filled) + strings.Repeat(BarEmpty, width-filled)
}

// Percent formats a 0-1 share as "42.0%".
func Percent(share float64) string {
	return fmt.Sprintf("%.1f%%", share*PercentMultiplier)
}

// Share returns part/total, or 0 when total is 0.
func Share(part, total int) float64 {
	if total <= 0 {
		return 0
	}

	return float64(part) / float64(total)
}
