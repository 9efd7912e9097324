package commits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "duration", input: "48h", want: time.Date(2024, time.April, 29, 10, 0, 0, 0, time.UTC)},
		{name: "rfc3339", input: "2024-01-01T08:30:00Z", want: time.Date(2024, time.January, 1, 8, 30, 0, 0, time.UTC)},
		{name: "date_only", input: "2023-12-24", want: time.Date(2023, time.December, 24, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseTimeAt(tc.input, now)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseTime_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseTime("last tuesday")
	require.ErrorIs(t, err, ErrInvalidTimeFormat)
}
