// Package matcher selects which catalog items should be mosaicked together
// for each window. Matching is a pure function of the window, the query
// policy, and the candidate list, so re-running it with an unchanged catalog
// reproduces the same item groups.
package matcher

import (
	"fmt"
	"sort"
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/catalog"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
	"github.com/paulmach/orb"
)

type SpaceMode string

const (
	Mosaic          SpaceMode = "MOSAIC"
	PerPeriodMosaic SpaceMode = "PER_PERIOD_MOSAIC"
)

type TimeMode string

const (
	Within  TimeMode = "WITHIN"
	Nearest TimeMode = "NEAREST"
)

// QueryConfig is the query policy for one layer's data source.
type QueryConfig struct {
	SpaceMode      SpaceMode
	TimeMode       TimeMode
	PeriodDuration time.Duration // 0 disables period bucketing
	MaxMatches     int           // max item groups; 0 means 1
	SortBy         string        // item metric, default cloud_cover
	Ascending      bool
}

func ParseSpaceMode(s string) (SpaceMode, error) {
	switch SpaceMode(s) {
	case Mosaic, PerPeriodMosaic:
		return SpaceMode(s), nil
	case "":
		return Mosaic, nil
	}
	return "", fmt.Errorf("unknown space mode %q", s)
}

func ParseTimeMode(s string) (TimeMode, error) {
	switch TimeMode(s) {
	case Within, Nearest:
		return TimeMode(s), nil
	case "":
		return Within, nil
	}
	return "", fmt.Errorf("unknown time mode %q", s)
}

// ItemGroup is an ordered list of items assigned to one window for one
// layer; order is compositing order for the materializer.
type ItemGroup struct {
	Items []catalog.Item `json:"items"`
}

// coverageSamples is the side length of the point grid used to decide when a
// window footprint is fully covered by the accumulated item footprints.
const coverageSamples = 8

// Match produces item groups for a window. Candidates must be in stable
// catalog order; ties in the sort metric keep that order, which is what makes
// matching deterministic.
func Match(w *window.Window, cfg QueryConfig, candidates []catalog.Item) []ItemGroup {
	bound := w.LatLonBound()
	maxMatches := cfg.MaxMatches
	if maxMatches <= 0 {
		maxMatches = 1
	}

	var inRange []catalog.Item
	for _, it := range candidates {
		if it.Footprint != nil && !bound.Intersects(it.Bound()) {
			continue
		}
		if cfg.TimeMode == Within {
			if it.Time.Before(w.TimeRange.Start) || !it.Time.Before(w.TimeRange.End) {
				continue
			}
		}
		inRange = append(inRange, it)
	}
	if len(inRange) == 0 {
		return nil
	}

	if cfg.PeriodDuration > 0 {
		return matchPeriods(w, cfg, bound, inRange, maxMatches)
	}

	sortCandidates(inRange, cfg)
	group := greedyCover(bound, inRange)
	if len(group.Items) == 0 {
		return nil
	}
	return []ItemGroup{group}
}

// matchPeriods buckets the window time range into consecutive periods and
// builds one mosaic group per period, keeping at most maxMatches non-empty
// periods.
func matchPeriods(w *window.Window, cfg QueryConfig, bound orb.Bound, candidates []catalog.Item, maxMatches int) []ItemGroup {
	var groups []ItemGroup
	for start := w.TimeRange.Start; start.Before(w.TimeRange.End); start = start.Add(cfg.PeriodDuration) {
		end := start.Add(cfg.PeriodDuration)
		if end.After(w.TimeRange.End) {
			end = w.TimeRange.End
		}
		var bucket []catalog.Item
		for _, it := range candidates {
			t := clampTime(it.Time, w.TimeRange.Start, w.TimeRange.End, cfg.TimeMode)
			if t.Before(start) || !t.Before(end) {
				continue
			}
			bucket = append(bucket, it)
		}
		if len(bucket) == 0 {
			continue
		}
		sortCandidates(bucket, cfg)
		group := greedyCover(bound, bucket)
		if len(group.Items) == 0 {
			continue
		}
		groups = append(groups, group)
		if len(groups) == maxMatches {
			break
		}
	}
	return groups
}

// clampTime snaps out-of-range acquisition times into the window range under
// NEAREST so they land in the closest period bucket.
func clampTime(t, start, end time.Time, mode TimeMode) time.Time {
	if mode != Nearest {
		return t
	}
	if t.Before(start) {
		return start
	}
	if !t.Before(end) {
		return end.Add(-time.Nanosecond)
	}
	return t
}

func sortCandidates(items []catalog.Item, cfg QueryConfig) {
	sort.SliceStable(items, func(i, j int) bool {
		a, _ := items[i].Property(cfg.SortBy)
		b, _ := items[j].Property(cfg.SortBy)
		if cfg.Ascending {
			return a < b
		}
		return a > b
	})
}

// greedyCover includes items in sort order until the window bound is fully
// covered. Coverage is decided on a coverageSamples^2 grid of pixel-center
// sample points, which keeps the check deterministic without polygon
// boolean operations.
func greedyCover(bound orb.Bound, items []catalog.Item) ItemGroup {
	covered := make([]bool, coverageSamples*coverageSamples)
	remaining := len(covered)
	var group ItemGroup

	for _, it := range items {
		added := false
		for si := 0; si < coverageSamples; si++ {
			for sj := 0; sj < coverageSamples; sj++ {
				idx := si*coverageSamples + sj
				if covered[idx] {
					continue
				}
				pt := samplePoint(bound, sj, si)
				if it.Contains(pt) {
					covered[idx] = true
					remaining--
					added = true
				}
			}
		}
		if added {
			group.Items = append(group.Items, it)
		}
		if remaining == 0 {
			break
		}
	}
	return group
}

func samplePoint(bound orb.Bound, col, row int) orb.Point {
	fx := (float64(col) + 0.5) / coverageSamples
	fy := (float64(row) + 0.5) / coverageSamples
	return orb.Point{
		bound.Min[0] + fx*(bound.Max[0]-bound.Min[0]),
		bound.Min[1] + fy*(bound.Max[1]-bound.Min[1]),
	}
}
