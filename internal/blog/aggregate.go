package blog

import (
	"sort"
	"time"
)

// TagCounts maps each non-empty category to the number of published posts
// carrying it. Posts without a category are skipped.
func TagCounts(published []*Post) map[string]int {
	tags := make(map[string]int)
	for _, p := range published {
		if p.Category == "" {
			continue
		}
		tags[p.Category]++
	}
	return tags
}

// MonthCounts groups published posts by (year, month) of their publish
// time and returns the buckets sorted descending, newest month first.
func MonthCounts(published []*Post) []ArchiveMonth {
	type ym struct {
		year  int
		month int
	}
	counts := make(map[ym]int)
	for _, p := range published {
		if p.PublishedAt == nil {
			continue
		}
		counts[ym{p.PublishedAt.Year(), int(p.PublishedAt.Month())}]++
	}

	months := make([]ArchiveMonth, 0, len(counts))
	for k, n := range counts {
		months = append(months, ArchiveMonth{
			Year:  k.year,
			Month: time.Month(k.month),
			Count: n,
		})
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return months[i].Month > months[j].Month
	})
	return months
}
