// Package aggregate groups extracted commits by author, calendar month,
// weekday, hour of day and weekday x hour, and rolls the groups up into
// totals.
//
// Every function here is pure: the input slice is only read, and calling the
// same function twice on the same input yields equal results.
package aggregate

import (
	"fmt"

	"github.com/Sumatoshi-tech/gitstats/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
	"github.com/Sumatoshi-tech/gitstats/pkg/identity"
	"github.com/Sumatoshi-tech/gitstats/pkg/safeconv"
)

// SimpleStat is a commit count plus the summed change stats of those commits.
// The zero value is the neutral element of Add.
type SimpleStat struct {
	CommitsCount int                 `json:"commits_count" yaml:"commits_count"`
	Stats        commits.CommitStats `json:"stats"         yaml:"stats"`
}

// FromCommit returns the stat of a single commit.
func FromCommit(c commits.CommitDetail) SimpleStat {
	return SimpleStat{CommitsCount: 1, Stats: c.Stats}
}

// Add returns the saturating sum of s and other.
func (s SimpleStat) Add(other SimpleStat) SimpleStat {
	return SimpleStat{
		CommitsCount: safeconv.SaturatingAddInt(s.CommitsCount, other.CommitsCount),
		Stats:        s.Stats.Add(other.Stats),
	}
}

func (s SimpleStat) String() string {
	return fmt.Sprintf("total commits: %d, %s", s.CommitsCount, s.Stats)
}

// GlobalStat is the total of one author over the whole history.
type GlobalStat struct {
	Author       identity.Author     `json:"author"        yaml:"author"`
	CommitsCount int                 `json:"commits_count" yaml:"commits_count"`
	Stats        commits.CommitStats `json:"stats"         yaml:"stats"`
}

func (g GlobalStat) String() string {
	return fmt.Sprintf("author: %s, total commits: %d, %s", g.Author, g.CommitsCount, g.Stats)
}

// AuthorStat is the stat of one author inside a bucket.
type AuthorStat struct {
	Author     identity.Author `json:"author" yaml:"author"`
	SimpleStat `yaml:",inline"`
}

// AuthorStats lists the authors of a bucket in first-seen order. No two
// entries belong to the same identity.
type AuthorStats []AuthorStat

// Total sums every entry.
func (a AuthorStats) Total() SimpleStat {
	var total SimpleStat
	for _, entry := range a {
		total = total.Add(entry.SimpleStat)
	}

	return total
}

// Find returns the stat of the entry equal to author.
func (a AuthorStats) Find(author identity.Author) (SimpleStat, bool) {
	for _, entry := range a {
		if entry.Author.Equal(author) {
			return entry.SimpleStat, true
		}
	}

	return SimpleStat{}, false
}

// bucket accumulates AuthorStats keyed by canonical identity.
type bucket struct {
	resolver *identity.Resolver
	slots    map[int]int
	entries  AuthorStats
}

func newBucket(resolver *identity.Resolver) *bucket {
	return &bucket{resolver: resolver, slots: make(map[int]int)}
}

func (b *bucket) add(c commits.CommitDetail) {
	id := canonical(b.resolver, c.Author)

	slot, ok := b.slots[id]
	if !ok {
		slot = len(b.entries)
		b.slots[id] = slot
		b.entries = append(b.entries, AuthorStat{Author: b.resolver.Representative(id)})
	}

	b.entries[slot].SimpleStat = b.entries[slot].SimpleStat.Add(FromCommit(c))
}

// stats returns the entries ordered by identity, so that every bucket lists
// authors in the same global first-seen order.
func (b *bucket) stats() AuthorStats {
	out := make(AuthorStats, len(b.entries))

	for i, id := range mapx.SortedKeys(b.slots) {
		out[i] = b.entries[b.slots[id]]
	}

	return out
}

// resolverOf registers every author of the input in order.
func resolverOf(details []commits.CommitDetail) *identity.Resolver {
	r := identity.NewResolver()
	for _, c := range details {
		r.Add(c.Author)
	}

	return r
}

func canonical(r *identity.Resolver, a identity.Author) int {
	id, ok := r.Canonical(a)
	if !ok {
		// Every author is registered by resolverOf before grouping.
		panic(fmt.Sprintf("aggregate: unregistered author %s", a))
	}

	return id
}
