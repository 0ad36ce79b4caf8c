package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/core/ports"
	"github.com/samirrijal/dronepath/internal/pkg/geospatial"
	"github.com/samirrijal/dronepath/internal/pkg/metrics"
)

const savedPathTTL = 600 // seconds

// LibraryService keeps named paths. Playback state is never saved.
type LibraryService struct {
	paths ports.SavedPathRepository
	cache ports.CacheService
}

// NewLibraryService creates a new LibraryService. paths may be nil, in which
// case every operation fails with domain.ErrLibraryUnavailable.
func NewLibraryService(paths ports.SavedPathRepository, cache ports.CacheService) *LibraryService {
	return &LibraryService{paths: paths, cache: cache}
}

// Available reports whether a repository is configured.
func (s *LibraryService) Available() bool {
	return s != nil && s.paths != nil
}

// Save stores a copy of path under name.
func (s *LibraryService) Save(ctx context.Context, name string, path domain.Path) (*domain.SavedPath, error) {
	if !s.Available() {
		return nil, domain.ErrLibraryUnavailable
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyPathName
	}

	sp := &domain.SavedPath{
		ID:         uuid.NewString(),
		Name:       name,
		Waypoints:  path.Clone(),
		PointCount: len(path),
		LengthM:    geospatial.Length(path),
		CreatedAt:  time.Now().UTC(),
	}
	if len(path) > 0 {
		b := geospatial.Bounds(path)
		sp.Bounds = &b
	}

	if err := s.paths.Create(ctx, sp); err != nil {
		return nil, fmt.Errorf("create saved path: %w", err)
	}
	return sp, nil
}

// GetByID returns a saved path, served from cache when possible.
func (s *LibraryService) GetByID(ctx context.Context, id string) (*domain.SavedPath, error) {
	if !s.Available() {
		return nil, domain.ErrLibraryUnavailable
	}

	if err := validPathID(id); err != nil {
		return nil, err
	}

	cacheKey := "paths:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var sp domain.SavedPath
			if err := json.Unmarshal(data, &sp); err == nil {
				metrics.CacheHits.WithLabelValues("saved_path").Inc()
				return &sp, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("saved_path").Inc()
	}

	sp, err := s.paths.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(sp); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, savedPathTTL)
		}
	}

	return sp, nil
}

// List returns the most recent saved paths.
func (s *LibraryService) List(ctx context.Context, limit int) ([]domain.SavedPath, error) {
	if !s.Available() {
		return nil, domain.ErrLibraryUnavailable
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.paths.List(ctx, limit)
}

// Delete removes a saved path and its cache entry.
func (s *LibraryService) Delete(ctx context.Context, id string) error {
	if !s.Available() {
		return domain.ErrLibraryUnavailable
	}
	if err := validPathID(id); err != nil {
		return err
	}
	if err := s.paths.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "paths:id:"+id)
	}
	return nil
}

// validPathID rejects IDs that cannot name a saved path.
func validPathID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrPathNotFound, id)
	}
	return nil
}
