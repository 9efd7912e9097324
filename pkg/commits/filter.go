package commits

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/gitstats/pkg/identity"
)

// Filter validation errors.
var (
	ErrConflictingAuthorFilter = errors.New("cannot specify both author and exclude_author")
	ErrInvalidTimestamp        = errors.New("invalid timestamp")
)

// Calendar range accepted for since/until. Timestamps are rendered as
// YYYY-MM-DD, which needs a four digit year.
const (
	minFilterYear = 0
	maxFilterYear = 9999
)

// Filter selects the commits to extract.
// Use NewFilterBuilder to obtain a validated Filter.
type Filter struct {
	Since         *int64           `json:"since,omitempty"          yaml:"since,omitempty"`
	Until         *int64           `json:"until,omitempty"          yaml:"until,omitempty"`
	Author        *identity.Author `json:"author,omitempty"         yaml:"author,omitempty"`
	ExcludeAuthor string           `json:"exclude_author,omitempty" yaml:"exclude_author,omitempty"`
	ExcludeMerges bool             `json:"exclude_merges,omitempty" yaml:"exclude_merges,omitempty"`
	TargetBranch  string           `json:"target_branch,omitempty"  yaml:"target_branch,omitempty"`
}

// Validate checks that the filter can be turned into git arguments.
func (f Filter) Validate() error {
	if f.Author != nil && f.ExcludeAuthor != "" {
		return ErrConflictingAuthorFilter
	}

	if f.Since != nil && !validTimestamp(*f.Since) {
		return fmt.Errorf("%w for since: %d", ErrInvalidTimestamp, *f.Since)
	}

	if f.Until != nil && !validTimestamp(*f.Until) {
		return fmt.Errorf("%w for until: %d", ErrInvalidTimestamp, *f.Until)
	}

	return nil
}

// Args renders the filter as git log arguments. The output assumes a valid
// filter.
func (f Filter) Args() []string {
	args := make([]string, 0, 8)

	if f.TargetBranch != "" {
		args = append(args, f.TargetBranch)
	} else {
		args = append(args, "--all")
	}

	args = append(args, "--pretty=%H")

	if f.Since != nil {
		args = append(args, "--since="+formatDate(*f.Since))
	}

	if f.Until != nil {
		args = append(args, "--until="+formatDate(*f.Until))
	}

	if f.Author != nil {
		args = append(args, "--author="+f.Author.Name)
	}

	if f.ExcludeMerges {
		args = append(args, "--no-merges")
	}

	if f.ExcludeAuthor != "" {
		args = append(args, "--perl-regexp", "--author=^((?!"+f.ExcludeAuthor+").*)$")
	}

	return args
}

// Contains reports whether a commit dated when falls inside the since/until
// window. Git compares dates at day granularity, so since is the start of its
// day and until the end of its day. Days are UTC days.
func (f Filter) Contains(when time.Time) bool {
	if f.Since != nil && when.Before(dayStart(*f.Since)) {
		return false
	}

	if f.Until != nil && !when.Before(dayStart(*f.Until).AddDate(0, 0, 1)) {
		return false
	}

	return true
}

func (f Filter) String() string {
	parts := make([]string, 0, 6)

	if f.Author != nil {
		parts = append(parts, "author:"+f.Author.String())
	}

	if f.ExcludeAuthor != "" {
		parts = append(parts, "exclude author:"+f.ExcludeAuthor)
	}

	if f.ExcludeMerges {
		parts = append(parts, "exclude_merges:true")
	}

	if f.TargetBranch != "" {
		parts = append(parts, "target_branch:"+f.TargetBranch)
	}

	if f.Since != nil {
		parts = append(parts, "since="+formatDate(*f.Since))
	}

	if f.Until != nil {
		parts = append(parts, "until:"+formatDate(*f.Until))
	}

	return strings.Join(parts, ", ")
}

// FilterBuilder assembles a Filter step by step.
type FilterBuilder struct {
	filter Filter
}

// NewFilterBuilder starts an empty filter: all branches, no restriction.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{}
}

// Since keeps commits authored on or after the day of ts (epoch seconds).
func (b *FilterBuilder) Since(ts int64) *FilterBuilder {
	b.filter.Since = &ts

	return b
}

// Until keeps commits authored on or before the day of ts (epoch seconds).
func (b *FilterBuilder) Until(ts int64) *FilterBuilder {
	b.filter.Until = &ts

	return b
}

// Author keeps commits whose author name matches.
func (b *FilterBuilder) Author(author identity.Author) *FilterBuilder {
	b.filter.Author = &author

	return b
}

// ExcludeAuthor drops commits whose author matches the pattern.
func (b *FilterBuilder) ExcludeAuthor(pattern string) *FilterBuilder {
	b.filter.ExcludeAuthor = pattern

	return b
}

// ExcludeMerges drops merge commits.
func (b *FilterBuilder) ExcludeMerges(exclude bool) *FilterBuilder {
	b.filter.ExcludeMerges = exclude

	return b
}

// TargetBranch restricts the walk to one branch instead of all refs.
func (b *FilterBuilder) TargetBranch(branch string) *FilterBuilder {
	b.filter.TargetBranch = branch

	return b
}

// Build validates and returns the filter.
func (b *FilterBuilder) Build() (Filter, error) {
	err := b.filter.Validate()
	if err != nil {
		return Filter{}, err
	}

	return b.filter, nil
}

func validTimestamp(ts int64) bool {
	year := time.Unix(ts, 0).UTC().Year()

	return year >= minFilterYear && year <= maxFilterYear
}

func formatDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.DateOnly)
}

func dayStart(ts int64) time.Time {
	t := time.Unix(ts, 0).UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
