package split

import (
	"fmt"
	"testing"
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/geo"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridWindow(name string, minX, minY float64) *window.Window {
	return &window.Window{
		Name:       name,
		Group:      "g",
		Projection: geo.Projection{EPSG: 32722, XResolution: 10, YResolution: -10},
		Bounds:     [4]float64{minX, minY, minX + 1280, minY + 1280},
	}
}

func TestNewSpatialSplitterValidation(t *testing.T) {
	_, err := NewSpatialSplitter(0, 0.8, 0.1, 0.1)
	assert.Error(t, err)

	_, err = NewSpatialSplitter(512, 0.5, 0.1, 0.1)
	assert.ErrorIs(t, err, ErrBadProportions)

	_, err = NewSpatialSplitter(512, 1.2, -0.1, -0.1)
	assert.ErrorIs(t, err, ErrBadProportions)

	_, err = NewSpatialSplitter(512, 0.8, 0.1, 0.1)
	assert.NoError(t, err)
}

func TestSpatialSplitterSameCellSameSplit(t *testing.T) {
	s, err := NewSpatialSplitter(1024, 0.5, 0.25, 0.25)
	require.NoError(t, err)

	// Two windows inside the same 1024-pixel cell.
	a := gridWindow("a", 500000, 7000000)
	b := gridWindow("b", 500100, 7000200)
	assert.Equal(t, s.Choose(a), s.Choose(b))
}

func TestSpatialSplitterDeterministic(t *testing.T) {
	s, err := NewSpatialSplitter(512, 0.8, 0.1, 0.1)
	require.NoError(t, err)

	windows := make([]*window.Window, 0, 50)
	for i := 0; i < 50; i++ {
		windows = append(windows, gridWindow(fmt.Sprintf("w%d", i), float64(i)*20000, float64(i%7)*30000))
	}
	first := Assign(windows, s)
	assert.Equal(t, first, Assign(windows, s))

	counts := map[string]int{}
	for _, sp := range first {
		counts[sp]++
	}
	// With 80/10/10 proportions train must dominate.
	assert.Greater(t, counts[window.SplitTrain], counts[window.SplitVal])
	assert.Greater(t, counts[window.SplitTrain], counts[window.SplitTest])
}

func TestRandomSplitterHashesWindowNames(t *testing.T) {
	s, err := NewRandomSplitter(0.5, 0.25, 0.25)
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		w := gridWindow(fmt.Sprintf("w%d", i), 0, 0)
		split := s.Choose(w)
		assert.Equal(t, split, s.Choose(w))
		seen[split] = true
	}
	// Same location, different names: assignments must vary.
	assert.True(t, len(seen) > 1)
}

func TestReassignKeepsTestWindows(t *testing.T) {
	reg := window.NewRegistry(t.TempDir())
	s, err := NewRandomSplitter(0.5, 0.5, 0)
	require.NoError(t, err)

	var windows []*window.Window
	for i, split := range []string{window.SplitTrain, window.SplitVal, window.SplitTest, window.SplitNone} {
		w, err := reg.Create(window.CreateParams{
			Name:       fmt.Sprintf("w%d", i),
			Group:      "g",
			Projection: geo.Projection{EPSG: 32722, XResolution: 10, YResolution: -10},
			Bounds:     [4]float64{0, 0, 1280, 1280},
			Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.NoError(t, reg.TagSplit(w, split))
		windows = append(windows, w)
	}

	_, err = Reassign(reg, windows, s)
	require.NoError(t, err)

	kept, err := reg.Get("g", "w2")
	require.NoError(t, err)
	assert.Equal(t, window.SplitTest, kept.Split)

	for _, name := range []string{"w0", "w1", "w3"} {
		w, err := reg.Get("g", name)
		require.NoError(t, err)
		assert.Contains(t, []string{window.SplitTrain, window.SplitVal}, w.Split)
	}
}
