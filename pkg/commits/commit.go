// Package commits holds the commit data model shared by the extraction
// backends and the aggregation engine.
package commits

import (
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/gitstats/pkg/identity"
	"github.com/Sumatoshi-tech/gitstats/pkg/safeconv"
)

// DateTimeLayout is the layout used when a timestamp is shown to a user.
const DateTimeLayout = "2006-01-02 15:04:05 UTC"

// CommitHash is a commit id as printed by git. It is only compared and shown.
type CommitHash string

// String returns the hash text.
func (h CommitHash) String() string {
	return string(h)
}

// Short returns the first n characters of the hash.
func (h CommitHash) Short(n int) string {
	if len(h) <= n {
		return string(h)
	}

	return string(h[:n])
}

// CommitStats counts the changes introduced by one or more commits.
// The zero value is the neutral element of Add.
type CommitStats struct {
	FilesChanged uint32 `json:"files_changed" yaml:"files_changed"`
	LinesAdded   uint32 `json:"lines_added"   yaml:"lines_added"`
	LinesDeleted uint32 `json:"lines_deleted" yaml:"lines_deleted"`
}

// Add returns the field-wise sum of s and other, saturating at math.MaxUint32.
func (s CommitStats) Add(other CommitStats) CommitStats {
	return CommitStats{
		FilesChanged: safeconv.SaturatingAddUint32(s.FilesChanged, other.FilesChanged),
		LinesAdded:   safeconv.SaturatingAddUint32(s.LinesAdded, other.LinesAdded),
		LinesDeleted: safeconv.SaturatingAddUint32(s.LinesDeleted, other.LinesDeleted),
	}
}

// IsZero reports whether no change is recorded.
func (s CommitStats) IsZero() bool {
	return s == CommitStats{}
}

func (s CommitStats) String() string {
	return fmt.Sprintf("files changed: %d, lines added: %d, lines deleted: %d",
		s.FilesChanged, s.LinesAdded, s.LinesDeleted)
}

// CommitDetail is everything extracted from a single commit.
type CommitDetail struct {
	Hash            CommitHash      `json:"hash"             yaml:"hash"`
	Author          identity.Author `json:"author"           yaml:"author"`
	Subject         string          `json:"subject"          yaml:"subject"`
	AuthorTimestamp int64           `json:"author_timestamp" yaml:"author_timestamp"`
	Stats           CommitStats     `json:"stats"            yaml:"stats"`
}

// AuthorTime returns the author timestamp in UTC.
func (c CommitDetail) AuthorTime() time.Time {
	return time.Unix(c.AuthorTimestamp, 0).UTC()
}

// Minimal drops the author and subject.
func (c CommitDetail) Minimal() MinimalCommitDetail {
	return MinimalCommitDetail{
		Hash:            c.Hash,
		AuthorTimestamp: c.AuthorTimestamp,
		Stats:           c.Stats,
	}
}

func (c CommitDetail) String() string {
	return fmt.Sprintf("%s, author: %s, %s, %s",
		c.Hash, c.Author, c.AuthorTime().Format(DateTimeLayout), c.Stats)
}

// MinimalCommitDetail is a CommitDetail stored under its author.
type MinimalCommitDetail struct {
	Hash            CommitHash  `json:"hash"             yaml:"hash"`
	AuthorTimestamp int64       `json:"author_timestamp" yaml:"author_timestamp"`
	Stats           CommitStats `json:"stats"            yaml:"stats"`
}

// AuthorTime returns the author timestamp in UTC.
func (m MinimalCommitDetail) AuthorTime() time.Time {
	return time.Unix(m.AuthorTimestamp, 0).UTC()
}

func (m MinimalCommitDetail) String() string {
	return fmt.Sprintf("%s %s", m.Hash, m.Stats)
}
