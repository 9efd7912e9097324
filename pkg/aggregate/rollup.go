package aggregate

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrUnknownSortKey is returned by ParseSortStatsBy for an unknown key.
var ErrUnknownSortKey = errors.New("unknown sort key")

// SortStatsBy selects the field GlobalStats sorts on, descending.
type SortStatsBy int

// Sort keys.
const (
	SortByCommits SortStatsBy = iota
	SortByFilesChanged
	SortByLinesAdded
	SortByLinesDeleted
)

var sortKeyNames = map[SortStatsBy]string{
	SortByCommits:      "commits",
	SortByFilesChanged: "files-changed",
	SortByLinesAdded:   "lines-added",
	SortByLinesDeleted: "lines-deleted",
}

// SortKeys lists the accepted sort key names.
func SortKeys() []string {
	return []string{"commits", "files-changed", "lines-added", "lines-deleted"}
}

func (s SortStatsBy) String() string {
	if name, ok := sortKeyNames[s]; ok {
		return name
	}

	return fmt.Sprintf("SortStatsBy(%d)", int(s))
}

// ParseSortStatsBy parses a sort key name. Underscores are accepted in place
// of dashes, and case is ignored.
func ParseSortStatsBy(s string) (SortStatsBy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")

	for key, name := range sortKeyNames {
		if name == normalized {
			return key, nil
		}
	}

	return SortByCommits, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownSortKey, s, strings.Join(SortKeys(), ", "))
}

func (s SortStatsBy) value(g GlobalStat) uint64 {
	switch s {
	case SortByFilesChanged:
		return uint64(g.Stats.FilesChanged)
	case SortByLinesAdded:
		return uint64(g.Stats.LinesAdded)
	case SortByLinesDeleted:
		return uint64(g.Stats.LinesDeleted)
	default:
		return uint64(g.CommitsCount)
	}
}

// GlobalStats totals every author and sorts the totals descending by sortBy.
// Ties are ordered by author name ignoring case, then by first-seen order.
func (c CommitsPerAuthor) GlobalStats(sortBy SortStatsBy) []GlobalStat {
	stats := make([]GlobalStat, 0, len(c))

	for _, group := range c {
		if len(group.Commits) == 0 {
			panic(fmt.Sprintf("aggregate: author %s has no commits", group.Author))
		}

		total := group.Total()
		stats = append(stats, GlobalStat{
			Author:       group.Author,
			CommitsCount: total.CommitsCount,
			Stats:        total.Stats,
		})
	}

	slices.SortStableFunc(stats, func(a, b GlobalStat) int {
		if byValue := cmp.Compare(sortBy.value(b), sortBy.value(a)); byValue != 0 {
			return byValue
		}

		return cmp.Compare(strings.ToLower(a.Author.Name), strings.ToLower(b.Author.Name))
	})

	return stats
}

// Total sums every author of every commit.
func (c CommitsPerAuthor) Total() SimpleStat {
	var total SimpleStat
	for _, group := range c {
		total = total.Add(group.Total())
	}

	return total
}

// GlobalStats sums the authors of each month.
func (c CommitsPerMonth) GlobalStats() map[string]SimpleStat {
	return rollup(c)
}

// GlobalStats sums the authors of each weekday.
func (c CommitsPerWeekday) GlobalStats() map[time.Weekday]SimpleStat {
	return rollup(c)
}

// GlobalStats sums the authors of each hour.
func (c CommitsPerDayHour) GlobalStats() map[int]SimpleStat {
	return rollup(c)
}

// GlobalStats sums the matrices of every author.
func (h CommitsHeatMap) GlobalStats() Matrix {
	var total Matrix
	for _, entry := range h {
		total = total.Add(entry.Matrix)
	}

	return total
}

func rollup[K comparable](buckets map[K]AuthorStats) map[K]SimpleStat {
	totals := make(map[K]SimpleStat, len(buckets))
	for key, entries := range buckets {
		totals[key] = entries.Total()
	}

	return totals
}
