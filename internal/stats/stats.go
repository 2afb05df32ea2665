// Package stats summarizes how many units were added and consumed over
// time.
package stats

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/pantry/internal/model"
)

// Filter narrows the assignments that are counted. Zero fields match
// everything.
type Filter struct {
	// Year selects a monthly breakdown of one year ("2024"). When empty
	// the breakdown is per year.
	Year string

	LocationID uint32
	ArticleID  uint32
}

// Period holds the units added and consumed in one month or year.
type Period struct {
	Period   string `json:"period"`
	Added    uint32 `json:"added"`
	Consumed uint32 `json:"consumed"`
}

// Years returns every year in which an assignment was added or consumed,
// newest first.
func Years(assignments []model.Assignment) []string {
	seen := map[string]struct{}{}
	for _, a := range assignments {
		for _, d := range []string{a.AddedDate, a.ConsumedDate} {
			if len(d) >= 4 {
				seen[d[:4]] = struct{}{}
			}
		}
	}
	years := slices.Collect(maps.Keys(seen))
	slices.SortFunc(years, func(a, b string) int { return cmp.Compare(b, a) })
	return years
}

// Compute buckets added and consumed amounts by period.
//
// With f.Year set, buckets are the twelve months "YYYY-MM" of that year,
// all present even when empty. Otherwise buckets are years that have at
// least one event. The result is ordered by period.
func Compute(assignments []model.Assignment, f Filter) ([]Period, error) {
	buckets := map[string]*Period{}
	if f.Year != "" {
		year, err := strconv.Atoi(f.Year)
		if err != nil || len(f.Year) != 4 || year < 0 {
			return nil, fmt.Errorf("stats: invalid year %q", f.Year)
		}
		for m := 1; m <= 12; m++ {
			key := fmt.Sprintf("%04d-%02d", year, m)
			buckets[key] = &Period{Period: key}
		}
	}

	bucket := func(date string) *Period {
		key, ok := periodKey(date, f.Year)
		if !ok {
			return nil
		}
		p, ok := buckets[key]
		if !ok {
			p = &Period{Period: key}
			buckets[key] = p
		}
		return p
	}

	for _, a := range assignments {
		if f.LocationID != 0 && a.LocationID != f.LocationID {
			continue
		}
		if f.ArticleID != 0 && a.ArticleID != f.ArticleID {
			continue
		}
		if p := bucket(a.AddedDate); p != nil {
			p.Added += a.Amount
		}
		if p := bucket(a.ConsumedDate); p != nil {
			p.Consumed += a.Amount
		}
	}

	out := make([]Period, 0, len(buckets))
	for _, p := range buckets {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b Period) int { return cmp.Compare(a.Period, b.Period) })
	return out, nil
}

// periodKey maps a date to its bucket key. Dates outside year, or too
// short to hold the key, are skipped.
func periodKey(date, year string) (string, bool) {
	if year == "" {
		if len(date) < 4 {
			return "", false
		}
		return date[:4], true
	}
	if len(date) < 7 || !strings.HasPrefix(date, year) {
		return "", false
	}
	return date[:7], true
}
