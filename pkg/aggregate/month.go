package aggregate

import (
	"time"

	"github.com/Sumatoshi-tech/gitstats/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
)

// MonthLayout formats a month bucket key.
const MonthLayout = "2006-01"

// CommitsPerMonth maps "YYYY-MM" to the authors that committed in that month.
// Months between the first and the last commit are present even when empty.
type CommitsPerMonth map[string]AuthorStats

// CommitsPerMonthOf buckets commits ordered oldest to newest by calendar month.
//
// A window starts on the month of the first commit, at the day of month of
// the last commit, and advances one month at a time until it passes the last
// commit. Each window takes the leading commits whose year and month are both
// not greater than its own. Inputs with fewer than two commits yield an empty
// result.
func CommitsPerMonthOf(details []commits.CommitDetail) CommitsPerMonth {
	result := make(CommitsPerMonth)
	if len(details) < 2 {
		return result
	}

	resolver := resolverOf(details)

	first := details[0].AuthorTime()
	last := details[len(details)-1].AuthorTime()
	anchorDay := last.Day()
	month := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)

	next := 0
	for next < len(details) {
		window := monthWindow(month, anchorDay)
		b := newBucket(resolver)

		for ; next < len(details); next++ {
			at := details[next].AuthorTime()
			if at.Year() > window.Year() || at.Month() > window.Month() {
				break
			}

			b.add(details[next])
		}

		result[window.Format(MonthLayout)] = b.stats()

		month = month.AddDate(0, 1, 0)
		if monthWindow(month, anchorDay).After(last) {
			break
		}
	}

	return result
}

// Months returns the keys in chronological order.
func (c CommitsPerMonth) Months() []string {
	return mapx.SortedKeys(c)
}

// monthWindow returns day anchorDay of month at midnight UTC, clamped to the
// last day of short months.
func monthWindow(month time.Time, anchorDay int) time.Time {
	day := min(anchorDay, daysIn(month.Year(), month.Month()))

	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
