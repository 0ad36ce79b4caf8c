package pathfile

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// ToGeoJSON renders a path as a FeatureCollection: one LineString for the
// route (when there are at least two points) and one Point per waypoint.
func ToGeoJSON(p domain.Path) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(p) >= 2 {
		line := make(orb.LineString, 0, len(p))
		for _, w := range p {
			line = append(line, orb.Point{w.Longitude, w.Latitude})
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "path"
		f.Properties["points"] = len(p)
		fc.Append(f)
	}

	for i, w := range p {
		f := geojson.NewFeature(orb.Point{w.Longitude, w.Latitude})
		f.Properties["kind"] = "waypoint"
		f.Properties["index"] = i
		f.Properties["timestamp"] = w.Timestamp
		fc.Append(f)
	}
	return fc
}
