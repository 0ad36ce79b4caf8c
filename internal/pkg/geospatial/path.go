package geospatial

import (
	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// Zoom levels picked by SuggestZoom.
const (
	ZoomWorld  = 3
	ZoomRegion = 5
	ZoomLocal  = 12
)

// LineString converts a path to an XY line string (X = longitude, Y = latitude).
// Paths with fewer than two points yield an empty line string.
func LineString(p domain.Path) geom.LineString {
	if len(p) < 2 {
		return geom.LineString{}
	}
	flat := make([]float64, 0, len(p)*2)
	for _, w := range p {
		flat = append(flat, w.Longitude, w.Latitude)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
}

// Bounds returns the bounding box of the path. An empty path is bounded by the
// default position.
func Bounds(p domain.Path) domain.Bounds {
	if len(p) == 0 {
		d := domain.DefaultPosition
		return domain.Bounds{MinLat: d.Lat, MinLon: d.Lon, MaxLat: d.Lat, MaxLon: d.Lon}
	}
	if len(p) == 1 {
		return domain.Bounds{MinLat: p[0].Latitude, MinLon: p[0].Longitude, MaxLat: p[0].Latitude, MaxLon: p[0].Longitude}
	}

	seq := LineString(p).Coordinates()
	first := seq.GetXY(0)
	b := domain.Bounds{MinLat: first.Y, MinLon: first.X, MaxLat: first.Y, MaxLon: first.X}
	for i := 1; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		b.MinLat = min(b.MinLat, xy.Y)
		b.MaxLat = max(b.MaxLat, xy.Y)
		b.MinLon = min(b.MinLon, xy.X)
		b.MaxLon = max(b.MaxLon, xy.X)
	}
	return b
}

// Length is the sum of great-circle distances between consecutive waypoints, in meters.
func Length(p domain.Path) float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += Haversine(p[i-1].Latitude, p[i-1].Longitude, p[i].Latitude, p[i].Longitude)
	}
	return total
}

// SuggestZoom picks a map zoom from the bounding box diagonal in meters.
func SuggestZoom(diagonalM float64) int {
	switch {
	case diagonalM > 1_000_000:
		return ZoomWorld
	case diagonalM > 500_000:
		return ZoomRegion
	default:
		return ZoomLocal
	}
}

// Viewport computes the map view that fits the whole path.
func Viewport(p domain.Path) domain.Viewport {
	b := Bounds(p)
	diag := Haversine(b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
	return domain.Viewport{
		Bounds:    b,
		Center:    b.Center(),
		DiagonalM: diag,
		Zoom:      SuggestZoom(diag),
	}
}
