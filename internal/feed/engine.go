// Package feed implements the jobs-browse pipeline: page loading with
// de-duplicating accumulation, origin resolution, and the pure filter/sort
// engine that produces the visible job list.
package feed

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gigboard/feed-service/internal/geo"
	"gigboard/feed-service/internal/model"
)

// SortMode selects the feed ordering.
type SortMode string

const (
	SortNewest   SortMode = "newest"
	SortTipHigh  SortMode = "tipHigh"
	SortTipLow   SortMode = "tipLow"
	SortDistance SortMode = "distance"
)

// ParseSortMode converts a raw string to a SortMode. The empty string maps
// to SortNewest, the default feed order.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(s); m {
	case "":
		return SortNewest, nil
	case SortNewest, SortTipHigh, SortTipLow, SortDistance:
		return m, nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Filters holds the browse-screen filter state.
type Filters struct {
	// Zip keeps only jobs whose trimmed zip exactly equals this trimmed
	// value. Case-sensitive, no format normalization.
	Zip string
	// Query keeps jobs whose title or description contains this text,
	// case-insensitively.
	Query string
	// RadiusEnabled turns on the radius filter; RadiusMiles is the cutoff.
	RadiusEnabled bool
	RadiusMiles   float64
}

// distanceTo computes the origin-to-job distance, reporting false when the
// job has no resolvable coordinates, the origin is unset, or the result is
// not finite.
func distanceTo(origin *geo.LatLng, j *model.Job) (float64, bool) {
	if origin == nil {
		return 0, false
	}
	coord := model.ExtractCoords(&j.Doc)
	if coord == nil {
		return 0, false
	}
	d := geo.DistanceMiles(*origin, *coord)
	if !geo.Finite(d) {
		return 0, false
	}
	return d, true
}

// ComputeFeed applies the browse filters and sort to jobs and returns the
// visible list. It is a pure function of its inputs and never mutates jobs.
//
// Stages run in fixed order: activity, zip, text, radius, sort. The radius
// filter is fail-closed: enabling it with no origin yields an empty feed
// rather than an unfiltered one, so the user is prompted to set a reference
// point instead of silently seeing everything.
func ComputeFeed(now time.Time, jobs []model.Job, origin *geo.LatLng, f Filters, mode SortMode) []model.Job {
	out := make([]model.Job, 0, len(jobs))
	for i := range jobs {
		if jobs[i].Doc.IsActive(now) {
			out = append(out, jobs[i])
		}
	}

	if zip := strings.TrimSpace(f.Zip); zip != "" {
		kept := out[:0]
		for _, j := range out {
			if strings.TrimSpace(j.Doc.Zip) == zip {
				kept = append(kept, j)
			}
		}
		out = kept
	}

	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		kept := out[:0]
		for _, j := range out {
			title := strings.ToLower(strings.TrimSpace(j.Doc.Title))
			desc := strings.ToLower(strings.TrimSpace(j.Doc.Description))
			if strings.Contains(title, q) || strings.Contains(desc, q) {
				kept = append(kept, j)
			}
		}
		out = kept
	}

	if f.RadiusEnabled {
		if origin == nil {
			return []model.Job{}
		}
		kept := out[:0]
		for _, j := range out {
			if d, ok := distanceTo(origin, &j); ok && d <= f.RadiusMiles {
				kept = append(kept, j)
			}
		}
		out = kept
	}

	sortJobs(out, origin, mode)
	return out
}

// sortJobs orders jobs in place, stably, by the selected mode.
func sortJobs(jobs []model.Job, origin *geo.LatLng, mode SortMode) {
	switch mode {
	case SortTipHigh:
		sort.SliceStable(jobs, func(i, k int) bool {
			return jobs[i].Doc.TipAmount() > jobs[k].Doc.TipAmount()
		})
	case SortTipLow:
		sort.SliceStable(jobs, func(i, k int) bool {
			return jobs[i].Doc.TipAmount() < jobs[k].Doc.TipAmount()
		})
	case SortDistance:
		sort.SliceStable(jobs, func(i, k int) bool {
			// Jobs without a computable distance sort last.
			di, oki := distanceTo(origin, &jobs[i])
			dk, okk := distanceTo(origin, &jobs[k])
			if oki != okk {
				return oki
			}
			return di < dk
		})
	default: // SortNewest — a missing creation date (zero time) sorts last
		sort.SliceStable(jobs, func(i, k int) bool {
			return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
		})
	}
}

// FeedStats is the data-quality summary shown alongside the feed: how many
// visible jobs carry resolvable coordinates and how many do not.
type FeedStats struct {
	Total         int `json:"total"`
	WithCoords    int `json:"withCoords"`
	WithoutCoords int `json:"withoutCoords"`
}

// Stats computes FeedStats over jobs.
func Stats(jobs []model.Job) FeedStats {
	s := FeedStats{Total: len(jobs)}
	for i := range jobs {
		if model.ExtractCoords(&jobs[i].Doc) != nil {
			s.WithCoords++
		} else {
			s.WithoutCoords++
		}
	}
	return s
}
