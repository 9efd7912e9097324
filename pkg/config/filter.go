package config

import (
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
	"github.com/Sumatoshi-tech/gitstats/pkg/identity"
)

// ToFilter converts the filter section into a validated commits.Filter.
func (f FilterConfig) ToFilter() (commits.Filter, error) {
	builder := commits.NewFilterBuilder()

	if f.Since != "" {
		since, err := commits.ParseTime(f.Since)
		if err != nil {
			return commits.Filter{}, fmt.Errorf("since: %w", err)
		}

		builder.Since(since.Unix())
	}

	if f.Until != "" {
		until, err := commits.ParseTime(f.Until)
		if err != nil {
			return commits.Filter{}, fmt.Errorf("until: %w", err)
		}

		builder.Until(until.Unix())
	}

	if f.Author != "" {
		author, err := ParseAuthor(f.Author)
		if err != nil {
			return commits.Filter{}, fmt.Errorf("author: %w", err)
		}

		builder.Author(author)
	}

	return builder.
		ExcludeAuthor(f.ExcludeAuthor).
		ExcludeMerges(f.ExcludeMerges).
		TargetBranch(f.Branch).
		Build()
}

// ParseAuthor reads an author selector. A bare value is a name; a value
// with an email in angle brackets is parsed as "Name <email>".
func ParseAuthor(s string) (identity.Author, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "<") {
		return identity.New(s), nil
	}

	return identity.Parse(s)
}
