package geospatial

import (
	"math"
	"testing"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Pune to Mumbai is roughly 120 km.
	d := Haversine(18.5204, 73.8567, 19.0760, 72.8777)
	if d < 115_000 || d > 125_000 {
		t.Errorf("expected ~120km, got %.0fm", d)
	}
	if Haversine(1, 2, 1, 2) != 0 {
		t.Error("expected zero distance for identical points")
	}
}

func TestBounds(t *testing.T) {
	p := domain.Path{
		{Latitude: 10, Longitude: 20},
		{Latitude: -5, Longitude: 25},
		{Latitude: 3, Longitude: 15},
	}
	b := Bounds(p)
	want := domain.Bounds{MinLat: -5, MinLon: 15, MaxLat: 10, MaxLon: 25}
	if b != want {
		t.Errorf("expected %+v, got %+v", want, b)
	}
}

func TestBounds_EmptyUsesDefault(t *testing.T) {
	b := Bounds(domain.Path{})
	if b.MinLat != domain.DefaultPosition.Lat || b.MaxLon != domain.DefaultPosition.Lon {
		t.Errorf("expected default position bounds, got %+v", b)
	}
}

func TestLineString(t *testing.T) {
	ls := LineString(domain.DefaultPath())
	if ls.IsEmpty() {
		t.Fatal("expected non-empty line string")
	}
	if n := ls.Coordinates().Length(); n != 2 {
		t.Errorf("expected 2 coordinates, got %d", n)
	}
	if !LineString(domain.Path{{Latitude: 1, Longitude: 1}}).IsEmpty() {
		t.Error("single point must give an empty line string")
	}
}

func TestLength(t *testing.T) {
	p := domain.DefaultPath()
	want := Haversine(p[0].Latitude, p[0].Longitude, p[1].Latitude, p[1].Longitude)
	if got := Length(p); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, got)
	}
	if Length(domain.Path{}) != 0 {
		t.Error("empty path has zero length")
	}
}

func TestSuggestZoom(t *testing.T) {
	tests := []struct {
		diag float64
		want int
	}{
		{0, ZoomLocal},
		{500_000, ZoomLocal},
		{500_001, ZoomRegion},
		{1_000_000, ZoomRegion},
		{1_000_001, ZoomWorld},
	}
	for _, tt := range tests {
		if got := SuggestZoom(tt.diag); got != tt.want {
			t.Errorf("SuggestZoom(%.0f) = %d, want %d", tt.diag, got, tt.want)
		}
	}
}

func TestViewport_LongPath(t *testing.T) {
	v := Viewport(domain.Path{
		{Latitude: 18.52, Longitude: 73.85},
		{Latitude: 51.50, Longitude: -0.12},
	})
	if v.Zoom != ZoomWorld {
		t.Errorf("expected world zoom, got %d", v.Zoom)
	}
	if v.Center.Lat != (18.52+51.50)/2 {
		t.Errorf("unexpected center %+v", v.Center)
	}
}
