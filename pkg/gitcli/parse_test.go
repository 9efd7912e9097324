package gitcli

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
	"github.com/Sumatoshi-tech/gitstats/pkg/identity"
)

func TestParseShow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
		want   commits.CommitDetail
	}{
		{
			name: "full_shortstat",
			output: "a1b2c3\nAlessandro Crugnola\nalessandro@gmail.com\n1700000000\nFix build\n" +
				" 3 files changed, 25 insertions(+), 7 deletions(-)\n",
			want: commits.CommitDetail{
				Hash:            "a1b2c3",
				Author:          identity.NewWithEmail("Alessandro Crugnola", "alessandro@gmail.com"),
				Subject:         "Fix build",
				AuthorTimestamp: 1700000000,
				Stats:           commits.CommitStats{FilesChanged: 3, LinesAdded: 25, LinesDeleted: 7},
			},
		},
		{
			name:   "insertions_only",
			output: "a1\nJane\njane@x.com\n1\nAdd\n 1 file changed, 1 insertion(+)\n",
			want: commits.CommitDetail{
				Hash:            "a1",
				Author:          identity.NewWithEmail("Jane", "jane@x.com"),
				Subject:         "Add",
				AuthorTimestamp: 1,
				Stats:           commits.CommitStats{FilesChanged: 1, LinesAdded: 1},
			},
		},
		{
			name:   "deletions_only",
			output: "a1\nJane\njane@x.com\n1\nRemove\n 2 files changed, 9 deletions(-)\n",
			want: commits.CommitDetail{
				Hash:            "a1",
				Author:          identity.NewWithEmail("Jane", "jane@x.com"),
				Subject:         "Remove",
				AuthorTimestamp: 1,
				Stats:           commits.CommitStats{FilesChanged: 2, LinesDeleted: 9},
			},
		},
		{
			name:   "no_shortstat",
			output: "a1\nJane\n\n1\nMerge branch 'x'",
			want: commits.CommitDetail{
				Hash:            "a1",
				Author:          identity.New("Jane"),
				Subject:         "Merge branch 'x'",
				AuthorTimestamp: 1,
			},
		},
		{
			name:   "empty_subject",
			output: "a1\nJane\njane@x.com\n1\n",
			want: commits.CommitDetail{
				Hash:            "a1",
				Author:          identity.NewWithEmail("Jane", "jane@x.com"),
				AuthorTimestamp: 1,
			},
		},
		{
			name:   "subject_looks_like_shortstat",
			output: "a1\nJane\njane@x.com\n1\n3 files changed",
			want: commits.CommitDetail{
				Hash:            "a1",
				Author:          identity.NewWithEmail("Jane", "jane@x.com"),
				Subject:         "3 files changed",
				AuthorTimestamp: 1,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseShow([]byte(tc.output))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseShow_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		output  string
		wantErr error
	}{
		{name: "empty", output: "", wantErr: ErrMissingField},
		{name: "truncated", output: "a1\nJane\njane@x.com", wantErr: ErrMissingField},
		{name: "blank_hash", output: "\nJane\njane@x.com\n1\nsubject", wantErr: ErrMissingField},
		{name: "blank_name", output: "a1\n\njane@x.com\n1\nsubject", wantErr: ErrMissingField},
		{name: "bad_timestamp", output: "a1\nJane\njane@x.com\nyesterday\nsubject", wantErr: ErrMalformedOutput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := parseShow([]byte(tc.output))
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestParseShortStat_Saturates(t *testing.T) {
	t.Parallel()

	stats, err := parseShortStat([]string{" 1 file changed, 99999999999 insertions(+)"})
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), stats.LinesAdded)
}

func TestParseHashes(t *testing.T) {
	t.Parallel()

	got := parseHashes([]byte("aaa\n\nbbb\nccc\n"))
	assert.Equal(t, []commits.CommitHash{"aaa", "bbb", "ccc"}, got)
	assert.Empty(t, parseHashes(nil))
}

func TestParseTimestamps(t *testing.T) {
	t.Parallel()

	detail, err := parseTimestamps([]byte("100\n200\n300"))
	require.NoError(t, err)
	assert.Equal(t, 3, detail.CommitsCount)
	require.NotNil(t, detail.FirstCommit)
	require.NotNil(t, detail.LastCommit)
	assert.Equal(t, int64(100), *detail.FirstCommit)
	assert.Equal(t, int64(300), *detail.LastCommit)

	_, err = parseTimestamps([]byte("100\nnow"))
	require.ErrorIs(t, err, ErrMalformedOutput)
}

func TestParseObjectSize(t *testing.T) {
	t.Parallel()

	out := "count: 12\nsize: 48\nin-pack: 300\npacks: 1\nsize-pack: 152\nprune-packable: 0\ngarbage: 0\nsize-garbage: 0\n"

	size, err := parseObjectSize([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, uint64(200*1024), size)

	_, err = parseObjectSize([]byte("size: lots\n"))
	require.ErrorIs(t, err, ErrMalformedOutput)
}
