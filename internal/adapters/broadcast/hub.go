package broadcast

import (
	"context"
	"sync"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/core/ports"
	"github.com/samirrijal/dronepath/internal/pkg/metrics"
)

const defaultBuffer = 16

// Hub fans frames out to in-process subscribers, keyed by session.
// It implements ports.FramePublisher and never blocks the publisher: a
// subscriber that falls behind loses its oldest buffered frame.
type Hub struct {
	buffer int

	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// Subscription receives the frames of one session on C. C is closed when the
// subscription is closed or its session is dropped from the hub.
type Subscription struct {
	C <-chan domain.Frame

	ch      chan domain.Frame
	session string
	hub     *Hub
	once    sync.Once
}

// NewHub creates a hub whose subscribers buffer up to buffer frames.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{buffer: buffer, subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a subscriber for sessionID.
func (h *Hub) Subscribe(sessionID string) *Subscription {
	ch := make(chan domain.Frame, h.buffer)
	sub := &Subscription{C: ch, ch: ch, session: sessionID, hub: h}

	h.mu.Lock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.closeLocked()
}

func (s *Subscription) closeLocked() {
	s.once.Do(func() {
		if set, ok := s.hub.subs[s.session]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.subs, s.session)
			}
		}
		close(s.ch)
	})
}

// Subscribers returns the number of subscribers of sessionID.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// CloseSession closes every subscription of sessionID.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[sessionID] {
		sub.closeLocked()
	}
}

// PublishFrame delivers f to the subscribers of its session.
func (h *Hub) PublishFrame(_ context.Context, f *domain.Frame) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[f.SessionID] {
		select {
		case sub.ch <- *f:
			continue
		default:
		}
		// Full: drop the oldest frame so the newest position wins.
		select {
		case <-sub.ch:
			metrics.FramesDropped.Inc()
		default:
		}
		select {
		case sub.ch <- *f:
		default:
			metrics.FramesDropped.Inc()
		}
	}
	return nil
}

var _ ports.FramePublisher = (*Hub)(nil)
