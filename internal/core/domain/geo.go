package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Center returns the midpoint of the box.
func (b Bounds) Center() GeoPoint {
	return GeoPoint{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// DefaultPosition is where the marker sits when there is nothing to draw (Pune).
var DefaultPosition = GeoPoint{Lat: 18.5204, Lon: 73.8567}

// DefaultPath returns the two-point path installed by a reset.
func DefaultPath() Path {
	return Path{
		{Latitude: 18.5204, Longitude: 73.8567, Timestamp: 1609459200},
		{Latitude: 18.5210, Longitude: 73.8570, Timestamp: 1609459260},
	}
}
