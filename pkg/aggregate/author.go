package aggregate

import (
	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
	"github.com/Sumatoshi-tech/gitstats/pkg/identity"
)

// AuthorCommits is the commit list of one identity, in input order.
type AuthorCommits struct {
	Author  identity.Author               `json:"author"  yaml:"author"`
	Commits []commits.MinimalCommitDetail `json:"commits" yaml:"commits"`
}

// Total sums the commits of the author.
func (a AuthorCommits) Total() SimpleStat {
	total := SimpleStat{}
	for _, c := range a.Commits {
		total = total.Add(SimpleStat{CommitsCount: 1, Stats: c.Stats})
	}

	return total
}

// CommitsPerAuthor groups commits by identity. Authors appear in first-seen
// order and each is represented by its first-seen spelling.
type CommitsPerAuthor []AuthorCommits

// CommitsPerAuthorOf groups commits by author identity.
func CommitsPerAuthorOf(details []commits.CommitDetail) CommitsPerAuthor {
	resolver := resolverOf(details)
	groups := make(CommitsPerAuthor, resolver.Len())

	for id := range groups {
		groups[id].Author = resolver.Representative(id)
	}

	for _, c := range details {
		id := canonical(resolver, c.Author)
		groups[id].Commits = append(groups[id].Commits, c.Minimal())
	}

	return groups
}

// Find returns the commits of the identity equal to author.
func (c CommitsPerAuthor) Find(author identity.Author) ([]commits.MinimalCommitDetail, bool) {
	for _, group := range c {
		if group.Author.Equal(author) {
			return group.Commits, true
		}
	}

	return nil, false
}

// Authors returns the representatives in first-seen order.
func (c CommitsPerAuthor) Authors() []identity.Author {
	authors := make([]identity.Author, len(c))
	for i, group := range c {
		authors[i] = group.Author
	}

	return authors
}
