package pathfile

import (
	"fmt"
	"math"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// ParseGPX reads a GPX document. Track points are preferred, then route
// points, then bare waypoints. Points without a time get timestamp 0.
func ParseGPX(data []byte) (domain.Path, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: read GPX: %v", domain.ErrMalformedUpload, err)
	}

	var path domain.Path
	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				path = append(path, fromGPXPoint(p))
			}
		}
	}
	if len(path) == 0 {
		for _, route := range doc.Routes {
			for _, p := range route.Points {
				path = append(path, fromGPXPoint(p))
			}
		}
	}
	if len(path) == 0 {
		for _, p := range doc.Waypoints {
			path = append(path, fromGPXPoint(p))
		}
	}
	for i, w := range path {
		if !isFinite(w.Latitude) || !isFinite(w.Longitude) {
			return nil, fmt.Errorf("%w: point %d has a non-finite coordinate", domain.ErrMalformedUpload, i)
		}
	}
	if path == nil {
		path = domain.Path{}
	}
	return path, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func fromGPXPoint(p gpx.GPXPoint) domain.Waypoint {
	w := domain.Waypoint{Latitude: p.Latitude, Longitude: p.Longitude}
	if !p.Timestamp.IsZero() {
		w.Timestamp = p.Timestamp.Unix()
	}
	return w
}
