package commits

import (
	"strconv"
	"strings"
	"time"
)

// Detail summarises a repository.
type Detail struct {
	// Size is the on-disk size of the object database in bytes.
	Size         uint64 `json:"size"                   yaml:"size"`
	CommitsCount int    `json:"commits_count"          yaml:"commits_count"`
	FirstCommit  *int64 `json:"first_commit,omitempty" yaml:"first_commit,omitempty"`
	LastCommit   *int64 `json:"last_commit,omitempty"  yaml:"last_commit,omitempty"`
}

// DetailOf builds a Detail from commits ordered oldest to newest.
func DetailOf(details []CommitDetail, size uint64) Detail {
	d := Detail{Size: size, CommitsCount: len(details)}

	if len(details) > 0 {
		first := details[0].AuthorTimestamp
		last := details[len(details)-1].AuthorTimestamp
		d.FirstCommit = &first
		d.LastCommit = &last
	}

	return d
}

func (d Detail) String() string {
	parts := []string{
		"size=" + strconv.FormatUint(d.Size, 10),
		"commits_count=" + strconv.Itoa(d.CommitsCount),
	}

	if d.FirstCommit != nil {
		parts = append(parts, "first_commit="+time.Unix(*d.FirstCommit, 0).UTC().Format(DateTimeLayout))
	}

	if d.LastCommit != nil {
		parts = append(parts, "last_commit="+time.Unix(*d.LastCommit, 0).UTC().Format(DateTimeLayout))
	}

	return strings.Join(parts, ", ")
}
