package pathfile_test

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/pathfile"
)

func TestToGeoJSON(t *testing.T) {
	fc := pathfile.ToGeoJSON(domain.DefaultPath())
	if len(fc.Features) != 3 {
		t.Fatalf("expected line + 2 points, got %d features", len(fc.Features))
	}

	line, ok := fc.Features[0].Geometry.(orb.LineString)
	if !ok {
		t.Fatalf("expected first feature to be a LineString, got %T", fc.Features[0].Geometry)
	}
	if line[0] != (orb.Point{73.8567, 18.5204}) {
		t.Errorf("expected lon/lat ordering, got %v", line[0])
	}

	pt, ok := fc.Features[2].Geometry.(orb.Point)
	if !ok {
		t.Fatalf("expected Point, got %T", fc.Features[2].Geometry)
	}
	if pt != (orb.Point{73.8570, 18.5210}) {
		t.Errorf("unexpected point %v", pt)
	}
	if fc.Features[2].Properties["index"] != 1 {
		t.Errorf("expected index property 1, got %v", fc.Features[2].Properties["index"])
	}
}

func TestToGeoJSON_SinglePointHasNoLine(t *testing.T) {
	fc := pathfile.ToGeoJSON(domain.Path{{Latitude: 1, Longitude: 2, Timestamp: 3}})
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	if _, ok := fc.Features[0].Geometry.(orb.Point); !ok {
		t.Errorf("expected Point geometry, got %T", fc.Features[0].Geometry)
	}
}
