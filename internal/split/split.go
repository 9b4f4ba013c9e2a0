// Package split assigns windows to train/val/test. The spatial splitter
// hashes coarse grid cells so windows that are geographic neighbors always
// land in the same split, which is what keeps evaluation free of spatial
// leakage.
package split

import (
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/earth-window/earth-window-dataset-poc/internal/window"
)

// ErrBadProportions is returned when train+val+test is not ~1.
var ErrBadProportions = errors.New("split proportions must sum to 1")

const proportionTolerance = 1e-6

// Splitter chooses a split for one window. Both implementations are
// deterministic: the same windows and configuration always reproduce the
// same assignment.
type Splitter interface {
	Choose(w *window.Window) string
}

// SpatialSplitter buckets window centroids into GridSize-pixel cells and
// hashes the cell, so every window in a cell shares a split.
type SpatialSplitter struct {
	GridSize  int
	TrainProp float64
	ValProp   float64
	TestProp  float64
}

func NewSpatialSplitter(gridSize int, trainProp, valProp, testProp float64) (*SpatialSplitter, error) {
	if gridSize <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %d", gridSize)
	}
	if err := checkProportions(trainProp, valProp, testProp); err != nil {
		return nil, err
	}
	return &SpatialSplitter{GridSize: gridSize, TrainProp: trainProp, ValProp: valProp, TestProp: testProp}, nil
}

func (s *SpatialSplitter) Choose(w *window.Window) string {
	cx, cy := w.Centroid()
	// Centroid in pixel units, then in grid cells.
	col := int(math.Floor(cx / math.Abs(w.Projection.XResolution)))
	row := int(math.Floor(cy / math.Abs(w.Projection.YResolution)))
	cellX := floorDiv(col, s.GridSize)
	cellY := floorDiv(row, s.GridSize)
	key := fmt.Sprintf("%d_%d_%d", w.Projection.EPSG, cellX, cellY)
	return pick(hashUnit(key), s.TrainProp, s.ValProp)
}

// RandomSplitter assigns splits per window rather than per cell. It hashes
// the window name instead of drawing from an RNG so repeated runs agree.
type RandomSplitter struct {
	TrainProp float64
	ValProp   float64
	TestProp  float64
}

func NewRandomSplitter(trainProp, valProp, testProp float64) (*RandomSplitter, error) {
	if err := checkProportions(trainProp, valProp, testProp); err != nil {
		return nil, err
	}
	return &RandomSplitter{TrainProp: trainProp, ValProp: valProp, TestProp: testProp}, nil
}

func (s *RandomSplitter) Choose(w *window.Window) string {
	return pick(hashUnit(w.Key()), s.TrainProp, s.ValProp)
}

// Assign computes the split for every window without persisting anything.
func Assign(windows []*window.Window, splitter Splitter) map[string]string {
	out := make(map[string]string, len(windows))
	for _, w := range windows {
		out[w.Key()] = splitter.Choose(w)
	}
	return out
}

// Reassign re-splits only windows currently tagged train or val, persisting
// through the registry. Test windows keep their provided split: they were
// held out upstream and must never migrate into training.
func Reassign(reg *window.Registry, windows []*window.Window, splitter Splitter) (int, error) {
	changed := 0
	for _, w := range windows {
		if w.Split != window.SplitTrain && w.Split != window.SplitVal && w.Split != window.SplitNone {
			continue
		}
		next := splitter.Choose(w)
		if next == w.Split {
			continue
		}
		if err := reg.TagSplit(w, next); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

func checkProportions(train, val, test float64) error {
	sum := train + val + test
	if math.Abs(sum-1) > proportionTolerance {
		return fmt.Errorf("%w: got %g", ErrBadProportions, sum)
	}
	if train < 0 || val < 0 || test < 0 {
		return fmt.Errorf("%w: negative proportion", ErrBadProportions)
	}
	return nil
}

// hashUnit maps a key to [0,1) via sha1, the same digest the rest of the
// pipeline keys caches with.
func hashUnit(key string) float64 {
	h := sha1.Sum([]byte(key))
	v := binary.BigEndian.Uint64(h[:8])
	return float64(v) / float64(math.MaxUint64)
}

func pick(u, trainProp, valProp float64) string {
	switch {
	case u < trainProp:
		return window.SplitTrain
	case u < trainProp+valProp:
		return window.SplitVal
	default:
		return window.SplitTest
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
