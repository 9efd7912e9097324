package aggregate

import (
	"slices"
	"time"

	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
	"github.com/Sumatoshi-tech/gitstats/pkg/identity"
)

// Calendar dimensions.
const (
	DaysPerWeek = 7
	HoursPerDay = 24
)

// weekdays lists the weekdays starting on Monday.
var weekdays = [DaysPerWeek]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// WeekdayIndex returns the position of d in a week starting on Monday.
func WeekdayIndex(d time.Weekday) int {
	return (int(d) + DaysPerWeek - 1) % DaysPerWeek
}

// CommitsPerWeekday maps every weekday to the authors that committed on it.
// All seven weekdays are present, possibly with no authors.
type CommitsPerWeekday map[time.Weekday]AuthorStats

// CommitsPerWeekdayOf buckets commits by the UTC weekday of their author time.
func CommitsPerWeekdayOf(details []commits.CommitDetail) CommitsPerWeekday {
	resolver := resolverOf(details)

	buckets := make(map[time.Weekday]*bucket, DaysPerWeek)
	for _, d := range weekdays {
		buckets[d] = newBucket(resolver)
	}

	for _, c := range details {
		buckets[c.AuthorTime().Weekday()].add(c)
	}

	result := make(CommitsPerWeekday, DaysPerWeek)
	for d, b := range buckets {
		result[d] = b.stats()
	}

	return result
}

// Weekdays returns Monday to Sunday.
func (CommitsPerWeekday) Weekdays() []time.Weekday {
	return slices.Clone(weekdays[:])
}

// CommitsPerDayHour maps every hour of the day (0-23) to the authors that
// committed during it. All 24 hours are present.
type CommitsPerDayHour map[int]AuthorStats

// CommitsPerDayHourOf buckets commits by the UTC hour of their author time.
func CommitsPerDayHourOf(details []commits.CommitDetail) CommitsPerDayHour {
	resolver := resolverOf(details)

	var buckets [HoursPerDay]*bucket
	for h := range buckets {
		buckets[h] = newBucket(resolver)
	}

	for _, c := range details {
		buckets[c.AuthorTime().Hour()].add(c)
	}

	result := make(CommitsPerDayHour, HoursPerDay)
	for h, b := range buckets {
		result[h] = b.stats()
	}

	return result
}

// Hours returns 0 to 23.
func (CommitsPerDayHour) Hours() []int {
	hours := make([]int, HoursPerDay)
	for h := range hours {
		hours[h] = h
	}

	return hours
}

// Matrix is a weekday x hour grid; the weekday index starts on Monday.
type Matrix [DaysPerWeek][HoursPerDay]SimpleStat

// Add returns the cell-wise sum of m and other.
func (m Matrix) Add(other Matrix) Matrix {
	for day := range m {
		for hour := range m[day] {
			m[day][hour] = m[day][hour].Add(other[day][hour])
		}
	}

	return m
}

// At returns the cell of weekday d and hour h.
func (m Matrix) At(d time.Weekday, h int) SimpleStat {
	return m[WeekdayIndex(d)][h]
}

// AuthorHeatMap is the weekday x hour matrix of one identity.
type AuthorHeatMap struct {
	Author identity.Author `json:"author" yaml:"author"`
	Matrix Matrix          `json:"matrix" yaml:"matrix"`
}

// CommitsHeatMap holds one matrix per identity, in first-seen order.
type CommitsHeatMap []AuthorHeatMap

// CommitsHeatMapOf builds the weekday x hour matrix of every author.
func CommitsHeatMapOf(details []commits.CommitDetail) CommitsHeatMap {
	resolver := resolverOf(details)
	result := make(CommitsHeatMap, resolver.Len())

	for id := range result {
		result[id].Author = resolver.Representative(id)
	}

	for _, c := range details {
		at := c.AuthorTime()
		cell := &result[canonical(resolver, c.Author)].Matrix[WeekdayIndex(at.Weekday())][at.Hour()]
		*cell = cell.Add(FromCommit(c))
	}

	return result
}

// Authors returns the representatives in first-seen order.
func (h CommitsHeatMap) Authors() []identity.Author {
	authors := make([]identity.Author, len(h))
	for i, entry := range h {
		authors[i] = entry.Author
	}

	return authors
}

// Find returns the matrix of the identity equal to author.
func (h CommitsHeatMap) Find(author identity.Author) (Matrix, bool) {
	for _, entry := range h {
		if entry.Author.Equal(author) {
			return entry.Matrix, true
		}
	}

	return Matrix{}, false
}
