package raster

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNoData(t *testing.T) {
	assert.True(t, math.IsNaN(DefaultNoData(Float32)))
	assert.True(t, math.IsNaN(DefaultNoData(Float64)))
	assert.Equal(t, 0.0, DefaultNoData(UInt8))
	assert.Equal(t, 0.0, DefaultNoData(Int32))
}

func TestParseDType(t *testing.T) {
	dt, err := ParseDType("")
	require.NoError(t, err)
	assert.Equal(t, Float32, dt)

	_, err = ParseDType("complex128")
	assert.Error(t, err)
}

func TestNewPrefillsNoData(t *testing.T) {
	r := New(4, 3, 2, -9999)
	assert.Equal(t, -9999.0, r.At(0, 0, 0))
	assert.Equal(t, -9999.0, r.At(1, 3, 2))
	assert.False(t, r.ValidAt(2, 1))

	r.Set(1, 2, 1, 42)
	assert.True(t, r.ValidAt(2, 1))
}

func TestIsNoDataNaN(t *testing.T) {
	r := New(2, 2, 1, math.NaN())
	assert.True(t, r.IsNoData(r.At(0, 0, 0)))
	r.Set(0, 0, 0, 7)
	assert.False(t, r.IsNoData(r.At(0, 0, 0)))
}

func TestCompositeFirstValidWins(t *testing.T) {
	dst := New(2, 2, 1, 0)
	first := New(2, 2, 1, 0)
	first.Set(0, 0, 0, 10)
	second := New(2, 2, 1, 0)
	second.Set(0, 0, 0, 20) // overlaps first
	second.Set(0, 1, 0, 30)

	require.NoError(t, Composite(dst, first))
	require.NoError(t, Composite(dst, second))

	assert.Equal(t, 10.0, dst.At(0, 0, 0))
	assert.Equal(t, 30.0, dst.At(0, 1, 0))
	assert.Equal(t, 0.0, dst.At(0, 0, 1))
}

func TestCompositeSizeMismatch(t *testing.T) {
	assert.Error(t, Composite(New(2, 2, 1, 0), New(3, 2, 1, 0)))
	assert.Error(t, Composite(New(2, 2, 1, 0), New(2, 2, 2, 0)))
}

func TestMosaicOrder(t *testing.T) {
	a := New(1, 1, 1, 0)
	a.Set(0, 0, 0, 1)
	b := New(1, 1, 1, 0)
	b.Set(0, 0, 0, 2)

	out, err := Mosaic(1, 1, 1, 0, []*Raster{a, b})
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.At(0, 0, 0))

	out, err = Mosaic(1, 1, 1, 0, []*Raster{b, a})
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.At(0, 0, 0))
}

func TestUpsampleNearest(t *testing.T) {
	r := New(2, 1, 1, 0)
	r.Set(0, 0, 0, 5)
	r.Set(0, 1, 0, 9)

	up := UpsampleNearest(r, 2)
	assert.Equal(t, 4, up.Width)
	assert.Equal(t, 2, up.Height)
	assert.Equal(t, 5.0, up.At(0, 0, 0))
	assert.Equal(t, 5.0, up.At(0, 1, 1))
	assert.Equal(t, 9.0, up.At(0, 2, 0))
	assert.Equal(t, 9.0, up.At(0, 3, 1))

	assert.Same(t, r, UpsampleNearest(r, 1))
}

func TestPNGRoundTrip(t *testing.T) {
	r := New(3, 2, 1, 0)
	r.Set(0, 0, 0, 1)
	r.Set(0, 2, 1, 255)

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, r))

	back, err := DecodePNG(&buf)
	require.NoError(t, err)
	assert.Equal(t, r.Width, back.Width)
	assert.Equal(t, r.Height, back.Height)
	assert.Equal(t, 1.0, back.At(0, 0, 0))
	assert.Equal(t, 255.0, back.At(0, 2, 1))
	assert.Equal(t, 0.0, back.At(0, 1, 0))
}

func TestEncodePNGRejectsMultiBand(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, EncodePNG(&buf, New(2, 2, 3, 0)))
}
