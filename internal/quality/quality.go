// Package quality implements label-quality checks run before committing to a
// training dataset: how spatially clustered the labels are, and how classes
// distribute across splits.
package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/earth-window/earth-window-dataset-poc/internal/window"
)

type LabeledPoint struct {
	Lat   float64
	Lon   float64
	Label string
}

// SpatialClusteringScore runs a leave-one-out KNN over label centroids using
// great-circle distance and reports the majority-vote accuracy. Scores near
// 1.0 mean labels of the same class sit next to each other; random spatial
// splits would leak badly on such a dataset and a spatial splitter is needed.
func SpatialClusteringScore(points []LabeledPoint, k int) (float64, error) {
	if k <= 0 {
		return 0, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(points) <= k {
		return 0, fmt.Errorf("need more than k=%d points, got %d", k, len(points))
	}

	correct := 0
	for i := range points {
		type neighbor struct {
			dist float64
			idx  int
		}
		neighbors := make([]neighbor, 0, len(points)-1)
		for j := range points {
			if j == i {
				continue
			}
			neighbors = append(neighbors, neighbor{dist: haversine(points[i], points[j]), idx: j})
		}
		sort.Slice(neighbors, func(a, b int) bool {
			if neighbors[a].dist != neighbors[b].dist {
				return neighbors[a].dist < neighbors[b].dist
			}
			return neighbors[a].idx < neighbors[b].idx
		})

		votes := map[string]int{}
		for _, n := range neighbors[:k] {
			votes[points[n.idx].Label]++
		}
		if majority(votes) == points[i].Label {
			correct++
		}
	}
	return float64(correct) / float64(len(points)), nil
}

func majority(votes map[string]int) string {
	best, bestCount := "", -1
	keys := make([]string, 0, len(votes))
	for k := range votes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if votes[k] > bestCount {
			best, bestCount = k, votes[k]
		}
	}
	return best
}

// haversine in relative units; only the ordering matters for KNN.
func haversine(a, b LabeledPoint) float64 {
	lat1, lon1 := a.Lat*math.Pi/180, a.Lon*math.Pi/180
	lat2, lon2 := b.Lat*math.Pi/180, b.Lon*math.Pi/180
	dlat := lat2 - lat1
	dlon := lon2 - lon1
	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	return math.Asin(math.Sqrt(h))
}

// ClassSplitCount is one row of the per-class split distribution table.
type ClassSplitCount struct {
	Category string `csv:"category"`
	Train    int    `csv:"train"`
	Val      int    `csv:"val"`
	Test     int    `csv:"test"`
	None     int    `csv:"none"`
}

// CountsByClassSplit tallies windows per label class per split, reading the
// class from the window's category option.
func CountsByClassSplit(windows []*window.Window) []ClassSplitCount {
	byCategory := map[string]*ClassSplitCount{}
	for _, w := range windows {
		category := "unknown"
		if v, ok := w.Options["category"]; ok {
			category = fmt.Sprintf("%v", v)
		}
		row, ok := byCategory[category]
		if !ok {
			row = &ClassSplitCount{Category: category}
			byCategory[category] = row
		}
		switch w.Split {
		case window.SplitTrain:
			row.Train++
		case window.SplitVal:
			row.Val++
		case window.SplitTest:
			row.Test++
		default:
			row.None++
		}
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	out := make([]ClassSplitCount, 0, len(categories))
	for _, c := range categories {
		out = append(out, *byCategory[c])
	}
	return out
}
