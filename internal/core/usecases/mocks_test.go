package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// --- Mock SavedPathRepository ---

type mockPathRepo struct {
	createFn  func(ctx context.Context, p *domain.SavedPath) error
	getByIDFn func(ctx context.Context, id string) (*domain.SavedPath, error)
	listFn    func(ctx context.Context, limit int) ([]domain.SavedPath, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockPathRepo) Create(ctx context.Context, p *domain.SavedPath) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockPathRepo) GetByID(ctx context.Context, id string) (*domain.SavedPath, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrPathNotFound
}

func (m *mockPathRepo) List(ctx context.Context, limit int) ([]domain.SavedPath, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockPathRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (c *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mockCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// --- Recording publishers ---

type recordingEvents struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (r *recordingEvents) PublishSessionEvent(ctx context.Context, ev *domain.SessionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *ev)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type recordingFrames struct {
	mu     sync.Mutex
	frames []domain.Frame
}

func (r *recordingFrames) PublishFrame(ctx context.Context, f *domain.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, *f)
	return nil
}

func (r *recordingFrames) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}
