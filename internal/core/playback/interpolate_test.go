package playback_test

import (
	"math"
	"testing"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/core/playback"
)

const eps = 1e-9

func near(a, b domain.GeoPoint) bool {
	return math.Abs(a.Lat-b.Lat) < eps && math.Abs(a.Lon-b.Lon) < eps
}

func TestLerp(t *testing.T) {
	start := domain.GeoPoint{Lat: 18.5204, Lon: 73.8567}
	end := domain.GeoPoint{Lat: 18.5210, Lon: 73.8570}

	tests := []struct {
		name string
		step int
		want domain.GeoPoint
	}{
		{"step 0 is start", 0, start},
		{"step 25 is midpoint", 25, domain.GeoPoint{Lat: 18.5207, Lon: 73.85685}},
		{"step 50 is end", 50, end},
		{"past the end clamps", 75, end},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := playback.Lerp(start, end, tt.step, 50)
			if !near(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestLerp_EndIsExact(t *testing.T) {
	start := domain.GeoPoint{Lat: 0.1, Lon: 0.2}
	end := domain.GeoPoint{Lat: 0.3, Lon: 0.7}
	if got := playback.Lerp(start, end, 50, 50); got != end {
		t.Errorf("expected exactly %+v, got %+v", end, got)
	}
}
