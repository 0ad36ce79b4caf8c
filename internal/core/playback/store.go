// Package playback holds the path store and the engine that animates a
// marker along it.
package playback

import (
	"fmt"
	"math"
	"sync"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// Store is the state container for one session: the waypoint path, the
// playback cursor and the pause flag. All methods are safe for concurrent use.
//
// Every mutation that invalidates an in-flight segment bumps the generation.
// Callers that captured an older generation (a segment task that outlived a
// path replacement) are ignored by Advance.
type Store struct {
	mu         sync.Mutex
	path       domain.Path
	index      int
	paused     bool
	generation uint64
	pauseAtEnd bool

	watchers map[chan struct{}]struct{}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPauseAtEnd controls whether reaching the last waypoint sets the pause flag.
func WithPauseAtEnd(on bool) StoreOption {
	return func(s *Store) { s.pauseAtEnd = on }
}

// NewStore returns an empty, paused store at index 0.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		path:       domain.Path{},
		paused:     true,
		pauseAtEnd: true,
		watchers:   make(map[chan struct{}]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ValidateWaypoint checks that latitude and longitude are finite numbers.
func ValidateWaypoint(w domain.Waypoint) error {
	if math.IsNaN(w.Latitude) || math.IsInf(w.Latitude, 0) {
		return fmt.Errorf("%w: latitude is not a finite number", domain.ErrInvalidManualEntry)
	}
	if math.IsNaN(w.Longitude) || math.IsInf(w.Longitude, 0) {
		return fmt.Errorf("%w: longitude is not a finite number", domain.ErrInvalidManualEntry)
	}
	return nil
}

// SetPath replaces the path and rewinds to index 0.
func (s *Store) SetPath(p domain.Path) {
	s.mu.Lock()
	s.path = p.Clone()
	s.index = 0
	s.generation++
	s.mu.Unlock()
	s.notify()
}

// AppendPoint adds a waypoint at the end of the path. The cursor and any
// in-flight segment are left alone.
func (s *Store) AppendPoint(w domain.Waypoint) error {
	if err := ValidateWaypoint(w); err != nil {
		return err
	}
	s.mu.Lock()
	s.path = append(s.path, w)
	s.mu.Unlock()
	s.notify()
	return nil
}

// RemovePoint deletes the waypoint at index and clamps the cursor.
func (s *Store) RemovePoint(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.path) {
		n := len(s.path)
		s.mu.Unlock()
		return fmt.Errorf("%w: %d not in [0, %d)", domain.ErrIndexOutOfRange, index, n)
	}
	next := make(domain.Path, 0, len(s.path)-1)
	next = append(next, s.path[:index]...)
	next = append(next, s.path[index+1:]...)
	s.path = next
	if s.index > lastIndex(s.path) {
		s.index = lastIndex(s.path)
	}
	s.generation++
	s.mu.Unlock()
	s.notify()
	return nil
}

// TogglePause flips the pause flag and returns the new value.
func (s *Store) TogglePause() bool {
	s.mu.Lock()
	s.paused = !s.paused
	s.generation++
	paused := s.paused
	s.mu.Unlock()
	s.notify()
	return paused
}

// Reset installs the default two-point path, paused at index 0.
func (s *Store) Reset() {
	s.mu.Lock()
	s.path = domain.DefaultPath()
	s.index = 0
	s.paused = true
	s.generation++
	s.mu.Unlock()
	s.notify()
}

// Seek moves the cursor to index, which must address an existing waypoint.
func (s *Store) Seek(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.path) {
		n := len(s.path)
		s.mu.Unlock()
		return fmt.Errorf("%w: %d not in [0, %d)", domain.ErrIndexOutOfRange, index, n)
	}
	s.index = index
	s.generation++
	s.mu.Unlock()
	s.notify()
	return nil
}

// Advance is the coarse tick: it moves the cursor from `from` to from+1.
// It does nothing and returns false when the caller is stale (different
// generation or cursor), when paused, or when the cursor is already on the
// last waypoint.
func (s *Store) Advance(generation uint64, from int) bool {
	s.mu.Lock()
	if generation != s.generation || from != s.index || s.paused || s.index >= lastIndex(s.path) {
		s.mu.Unlock()
		return false
	}
	s.index++
	if s.pauseAtEnd && s.index == lastIndex(s.path) {
		s.paused = true
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// Snapshot returns a consistent copy of the path and playback state.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Snapshot{
		Path: s.path.Clone(),
		State: domain.PlaybackState{
			CurrentIndex: s.index,
			IsPaused:     s.paused,
			Generation:   s.generation,
		},
	}
}

// Subscribe returns a channel that receives a value after every mutation.
// Notifications coalesce: a slow reader sees at most one pending signal and
// should re-read the Snapshot.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, ch)
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func lastIndex(p domain.Path) int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}
