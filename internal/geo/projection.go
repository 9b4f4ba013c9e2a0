package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

const WGS84 = 4326

// Projection pairs a coordinate reference system with the pixel size used to
// rasterize data in that CRS. YResolution is negative for north-up grids.
type Projection struct {
	EPSG        int     `json:"epsg"`
	XResolution float64 `json:"x_resolution"`
	YResolution float64 `json:"y_resolution"`
}

func (p Projection) String() string {
	return fmt.Sprintf("EPSG:%d@%gx%g", p.EPSG, p.XResolution, p.YResolution)
}

// PixelGrid is the integer raster grid implied by a projected bound and a
// resolution. Transform is a GDAL-style geotransform mapping pixel (col,row)
// to projected coordinates.
type PixelGrid struct {
	Width     int
	Height    int
	Transform [6]float64
}

// Grid computes the pixel grid for bounds in projected units. Width and
// height are the bound extents divided by the resolution, rounded to the
// nearest integer; fractional grids are never produced.
func (p Projection) Grid(bounds orb.Bound) (PixelGrid, error) {
	if p.XResolution == 0 || p.YResolution == 0 {
		return PixelGrid{}, fmt.Errorf("projection %s has zero resolution", p)
	}
	width := int(math.Round((bounds.Max[0] - bounds.Min[0]) / math.Abs(p.XResolution)))
	height := int(math.Round((bounds.Max[1] - bounds.Min[1]) / math.Abs(p.YResolution)))
	if width <= 0 || height <= 0 {
		return PixelGrid{}, fmt.Errorf("bounds %v yield empty %dx%d grid", bounds, width, height)
	}
	return PixelGrid{
		Width:  width,
		Height: height,
		// North-up: row 0 is the top edge.
		Transform: [6]float64{bounds.Min[0], math.Abs(p.XResolution), 0, bounds.Max[1], 0, -math.Abs(p.YResolution)},
	}, nil
}

// ToPixel maps projected coordinates to (col,row) on the grid.
func (g PixelGrid) ToPixel(x, y float64) (int, int) {
	col := int(math.Floor((x - g.Transform[0]) / g.Transform[1]))
	row := int(math.Floor((y - g.Transform[3]) / g.Transform[5]))
	return col, row
}

// PixelCenter maps (col,row) back to the projected coordinates of the pixel
// center.
func (g PixelGrid) PixelCenter(col, row int) (float64, float64) {
	x := g.Transform[0] + g.Transform[1]*(float64(col)+0.5)
	y := g.Transform[3] + g.Transform[5]*(float64(row)+0.5)
	return x, y
}

// UTMEPSG picks the UTM zone CRS containing lon/lat, falling back to the
// polar stereographic CRSs above 84N / below 80S where UTM is undefined.
func UTMEPSG(lon, lat float64) int {
	if lat > 84 {
		return 5041
	}
	if lat < -80 {
		return 5042
	}
	zone := int(math.Floor((lon+180)/6))%60 + 1
	if lat >= 0 {
		return 32600 + zone
	}
	return 32700 + zone
}

// SquareBounds builds the projected bounds of a size x size pixel window
// around a projected point. Even sizes center the point on a pixel corner,
// odd sizes on a pixel, matching how point labels are windowed upstream.
func SquareBounds(x, y float64, resolution float64, size int) (orb.Bound, error) {
	if size <= 0 {
		return orb.Bound{}, fmt.Errorf("window size must be greater than 0, got %d", size)
	}
	col := int(x / resolution)
	row := int(y / resolution)
	var minCol, minRow, maxCol, maxRow int
	if size%2 == 0 {
		minCol, minRow = col-size/2, row-size/2
		maxCol, maxRow = col+size/2, row+size/2
	} else {
		minCol, minRow = col-size/2, row-size/2-1
		maxCol, maxRow = col+size/2+1, row+size/2
	}
	return orb.Bound{
		Min: orb.Point{float64(minCol) * resolution, float64(minRow) * resolution},
		Max: orb.Point{float64(maxCol) * resolution, float64(maxRow) * resolution},
	}, nil
}
