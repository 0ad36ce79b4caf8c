package domain

import (
	"time"
)

// Waypoint is a single sample on a drone path.
type Waypoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// Point returns the waypoint's coordinate.
func (w Waypoint) Point() GeoPoint {
	return GeoPoint{Lat: w.Latitude, Lon: w.Longitude}
}

// Path is an ordered sequence of waypoints. Insertion order is the flight order.
type Path []Waypoint

// Clone returns a copy that does not share the backing array.
func (p Path) Clone() Path {
	if p == nil {
		return Path{}
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Coordinates returns the [lat, lon] pairs drawn as the path polyline.
// An empty path renders as the single default point.
func (p Path) Coordinates() [][2]float64 {
	if len(p) == 0 {
		return [][2]float64{{DefaultPosition.Lat, DefaultPosition.Lon}}
	}
	coords := make([][2]float64, len(p))
	for i, w := range p {
		coords[i] = [2]float64{w.Latitude, w.Longitude}
	}
	return coords
}

// PlaybackState is the mutable cursor over a path.
type PlaybackState struct {
	CurrentIndex int    `json:"current_index"`
	IsPaused     bool   `json:"is_paused"`
	Generation   uint64 `json:"generation"`
}

// PlaybackStatus names the engine state.
type PlaybackStatus string

const (
	StatusPaused  PlaybackStatus = "paused"
	StatusRunning PlaybackStatus = "running"
)

// Snapshot is a consistent copy of a store.
type Snapshot struct {
	Path  Path          `json:"path"`
	State PlaybackState `json:"state"`
}

// Running reports whether an engine observing this snapshot should animate.
func (s Snapshot) Running() bool {
	return !s.State.IsPaused && len(s.Path) >= 2 && s.State.CurrentIndex < len(s.Path)-1
}

// Status derives the engine state from the snapshot.
func (s Snapshot) Status() PlaybackStatus {
	if s.Running() {
		return StatusRunning
	}
	return StatusPaused
}

// AtEnd reports whether the cursor sits on the last waypoint of a non-trivial path.
func (s Snapshot) AtEnd() bool {
	return len(s.Path) >= 2 && s.State.CurrentIndex == len(s.Path)-1
}

// Frame is what the map client draws: the marker position and the polyline.
type Frame struct {
	SessionID  string         `json:"session_id"`
	Generation uint64         `json:"generation"`
	Index      int            `json:"index"`
	Step       int            `json:"step"`
	Steps      int            `json:"steps"`
	Position   GeoPoint       `json:"position"`
	Path       [][2]float64   `json:"path"`
	Status     PlaybackStatus `json:"state"`
	Paused     bool           `json:"paused"`
	AtEnd      bool           `json:"at_end"`
	Time       time.Time      `json:"time"`
}

// Session describes one playback session.
type Session struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Points    int            `json:"points"`
	State     PlaybackState  `json:"state"`
	Status    PlaybackStatus `json:"status"`
}

// SessionEvent is a lifecycle notification published for external consumers.
type SessionEvent struct {
	SessionID string    `json:"session_id"`
	Type      string    `json:"type"` // created | deleted | path_set | reset
	Points    int       `json:"points"`
	Time      time.Time `json:"time"`
}

// SavedPath is a named path kept in the path library.
type SavedPath struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Waypoints  Path      `json:"waypoints"`
	PointCount int       `json:"point_count"`
	LengthM    float64   `json:"length_m"`
	Bounds     *Bounds   `json:"bounds,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Viewport is the suggested map view for a path.
type Viewport struct {
	Bounds    Bounds   `json:"bounds"`
	Center    GeoPoint `json:"center"`
	DiagonalM float64  `json:"diagonal_m"`
	Zoom      int      `json:"zoom"`
}
