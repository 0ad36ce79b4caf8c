package playback

import "github.com/samirrijal/dronepath/internal/core/domain"

// Lerp returns the drawn position at step of steps along the segment
// start -> end. Step 0 is start; step >= steps is exactly end.
func Lerp(start, end domain.GeoPoint, step, steps int) domain.GeoPoint {
	if steps <= 0 || step >= steps {
		return end
	}
	if step <= 0 {
		return start
	}
	t := float64(step) / float64(steps)
	return domain.GeoPoint{
		Lat: start.Lat + t*(end.Lat-start.Lat),
		Lon: start.Lon + t*(end.Lon-start.Lon),
	}
}
