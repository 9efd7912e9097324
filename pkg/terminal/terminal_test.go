package terminal_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitstats/pkg/terminal"
)

func TestDetectWidth(t *testing.T) {
	tests := []struct {
		name    string
		columns string
		want    int
	}{
		{name: "from_env", columns: "120", want: 120},
		{name: "invalid", columns: "wide", want: terminal.DefaultWidth},
		{name: "clamped_low", columns: "10", want: terminal.MinWidth},
		{name: "clamped_high", columns: "1000", want: terminal.MaxWidth},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("COLUMNS", tc.columns)

			assert.Equal(t, tc.want, terminal.DetectWidth())
		})
	}
}

func TestNewConfig_NoColorFromEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("COLUMNS", "100")

	cfg := terminal.NewConfig()

	assert.True(t, cfg.NoColor)
	assert.Equal(t, 100, cfg.Width)
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, terminal.IsTerminal(&bytes.Buffer{}))
	assert.False(t, terminal.IsTerminal(f))
}

func TestColorize(t *testing.T) {
	t.Parallel()

	colored := terminal.Config{}.Colorize("hot", color.FgRed)
	assert.Contains(t, colored, "\x1b[31m")
	assert.Contains(t, colored, "hot")

	assert.Equal(t, "hot", terminal.Config{NoColor: true}.Colorize("hot", color.FgRed))
	assert.Equal(t, "plain", terminal.Config{}.Colorize("plain"))
}

func TestHeatColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		intensity float64
		want      color.Attribute
	}{
		{intensity: 0, want: color.FgHiBlack},
		{intensity: 0.1, want: color.FgBlue},
		{intensity: 0.3, want: color.FgGreen},
		{intensity: 0.6, want: color.FgYellow},
		{intensity: 1, want: color.FgRed},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, terminal.HeatColor(tc.intensity)[0], "intensity %v", tc.intensity)
	}
}

func TestDrawBar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value float64
		width int
		want  string
	}{
		{name: "empty", value: 0, width: 4, want: "░░░░"},
		{name: "half", value: 0.5, width: 4, want: "██░░"},
		{name: "full", value: 1, width: 4, want: "████"},
		{name: "clamped_high", value: 2, width: 2, want: "██"},
		{name: "clamped_low", value: -1, width: 2, want: "░░"},
		{name: "zero_width", value: 1, width: 0, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, terminal.DrawBar(tc.value, tc.width))
		})
	}
}

func TestShareAndPercent(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.25, terminal.Share(1, 4), 1e-9)
	assert.Zero(t, terminal.Share(3, 0))
	assert.Equal(t, "25.0%", terminal.Percent(0.25))
}

func TestTruncateWithEllipsis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits", in: "Alice", width: 10, want: "Alice"},
		{name: "truncated", in: "Bartholomew", width: 8, want: "Barth..."},
		{name: "tiny", in: "Bartholomew", width: 2, want: ".."},
		{name: "zero", in: "Alice", width: 0, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, terminal.TruncateWithEllipsis(tc.in, tc.width))
		})
	}
}

func TestPad(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab  ", terminal.PadRight("ab", 4))
	assert.Equal(t, "  ab", terminal.PadLeft("ab", 4))
	assert.Equal(t, "abcdef", terminal.PadRight("abcdef", 4))
}

func TestDrawHeader(t *testing.T) {
	t.Parallel()

	header := terminal.DrawHeader("GITSTATS", "42 commits", 40)
	lines := strings.Split(header, "\n")

	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], terminal.BoxHeavyTopLeft))
	assert.Contains(t, lines[1], "GITSTATS")
	assert.Contains(t, lines[1], "42 commits")
	assert.Equal(t, 40, len([]rune(lines[1])))

	narrow := terminal.DrawHeader("GITSTATS", "", 4)
	assert.Contains(t, narrow, "GITSTATS")
}
