package main

import (
	"sort"
	"sync"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/core/usecases"
)

// sessionStats is what the monitor knows about one session.
type sessionStats struct {
	SessionID string
	Frames    int
	Waypoints int
	LastIndex int
	Status    domain.PlaybackStatus
}

// tracker aggregates frames per session. NATS delivers on its own goroutines.
type tracker struct {
	mu       sync.Mutex
	sessions map[string]*sessionStats
}

func newTracker() *tracker {
	return &tracker{sessions: make(map[string]*sessionStats)}
}

// frame records f and reports whether it completes a segment, i.e. the
// marker has just arrived on a waypoint.
func (t *tracker) frame(f *domain.Frame) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.get(f.SessionID)
	s.Frames++
	s.LastIndex = f.Index
	s.Status = f.Status

	reached := f.Steps > 0 && f.Step == f.Steps
	if reached {
		s.Waypoints++
	}
	return reached
}

// event applies a lifecycle event. Deleted sessions are forgotten.
func (t *tracker) event(ev *domain.SessionEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Type {
	case usecases.EventDeleted:
		delete(t.sessions, ev.SessionID)
	case usecases.EventPathSet, usecases.EventReset:
		s := t.get(ev.SessionID)
		s.Waypoints = 0
		s.LastIndex = 0
	default:
		t.get(ev.SessionID)
	}
}

func (t *tracker) get(id string) *sessionStats {
	s, ok := t.sessions[id]
	if !ok {
		s = &sessionStats{SessionID: id, Status: domain.StatusPaused}
		t.sessions[id] = s
	}
	return s
}

// summary returns a copy of all stats ordered by session ID.
func (t *tracker) summary() []sessionStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]sessionStats, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}
