package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/dronepath/internal/core/domain"
	"github.com/samirrijal/dronepath/internal/core/usecases"
)

func TestLibraryService_Save(t *testing.T) {
	var stored *domain.SavedPath
	repo := &mockPathRepo{
		createFn: func(ctx context.Context, p *domain.SavedPath) error {
			stored = p
			return nil
		},
	}

	svc := usecases.NewLibraryService(repo, nil)
	sp, err := svc.Save(context.Background(), "  survey  ", domain.DefaultPath())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil || stored.ID != sp.ID {
		t.Fatal("repo did not receive the saved path")
	}
	if sp.Name != "survey" {
		t.Errorf("expected trimmed name, got %q", sp.Name)
	}
	if sp.PointCount != 2 || sp.LengthM <= 0 {
		t.Errorf("unexpected stats: count=%d length=%f", sp.PointCount, sp.LengthM)
	}
	if sp.Bounds == nil {
		t.Error("expected bounds for non-empty path")
	}
}

func TestLibraryService_Save_EmptyName(t *testing.T) {
	svc := usecases.NewLibraryService(&mockPathRepo{}, nil)
	_, err := svc.Save(context.Background(), "   ", domain.DefaultPath())
	if !errors.Is(err, domain.ErrEmptyPathName) {
		t.Errorf("expected ErrEmptyPathName, got %v", err)
	}
}

func TestLibraryService_Unavailable(t *testing.T) {
	svc := usecases.NewLibraryService(nil, nil)
	if svc.Available() {
		t.Fatal("expected library to be unavailable")
	}
	if _, err := svc.GetByID(context.Background(), "x"); !errors.Is(err, domain.ErrLibraryUnavailable) {
		t.Errorf("expected ErrLibraryUnavailable, got %v", err)
	}
	if err := svc.Delete(context.Background(), "x"); !errors.Is(err, domain.ErrLibraryUnavailable) {
		t.Errorf("expected ErrLibraryUnavailable, got %v", err)
	}
}

const pathID = "0d6c2f5a-7b1e-4c3a-9f42-1a2b3c4d5e6f"

func TestLibraryService_GetByID_ReadThrough(t *testing.T) {
	calls := 0
	repo := &mockPathRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.SavedPath, error) {
			calls++
			return &domain.SavedPath{ID: id, Name: "loop", Waypoints: domain.DefaultPath(), PointCount: 2}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewLibraryService(repo, cache)

	for i := 0; i < 3; i++ {
		sp, err := svc.GetByID(context.Background(), pathID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sp.Name != "loop" || len(sp.Waypoints) != 2 {
			t.Fatalf("unexpected saved path %+v", sp)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 repo call, got %d", calls)
	}
}

func TestLibraryService_GetByID_NotFound(t *testing.T) {
	svc := usecases.NewLibraryService(&mockPathRepo{}, newMockCache())
	_, err := svc.GetByID(context.Background(), "6f1c1d1e-0000-4000-8000-000000000000")
	if !errors.Is(err, domain.ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
}

func TestLibraryService_RejectsMalformedID(t *testing.T) {
	repo := &mockPathRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.SavedPath, error) {
			t.Errorf("repo must not be queried for %q", id)
			return nil, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			t.Errorf("repo must not be asked to delete %q", id)
			return nil
		},
	}
	svc := usecases.NewLibraryService(repo, newMockCache())

	for _, id := range []string{"abc", "", "1234", "6f1c1d1e-0000-4000-8000"} {
		if _, err := svc.GetByID(context.Background(), id); !errors.Is(err, domain.ErrPathNotFound) {
			t.Errorf("GetByID(%q): expected ErrPathNotFound, got %v", id, err)
		}
		if err := svc.Delete(context.Background(), id); !errors.Is(err, domain.ErrPathNotFound) {
			t.Errorf("Delete(%q): expected ErrPathNotFound, got %v", id, err)
		}
	}
}

func TestLibraryService_List_ClampLimit(t *testing.T) {
	called := false
	repo := &mockPathRepo{
		listFn: func(ctx context.Context, limit int) ([]domain.SavedPath, error) {
			called = true
			if limit != 50 {
				t.Errorf("expected limit clamped to 50, got %d", limit)
			}
			return nil, nil
		},
	}

	svc := usecases.NewLibraryService(repo, nil)
	_, _ = svc.List(context.Background(), 999)
	if !called {
		t.Error("repo was not called")
	}
}

func TestLibraryService_Delete_EvictsCache(t *testing.T) {
	repo := &mockPathRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.SavedPath, error) {
			return &domain.SavedPath{ID: id}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewLibraryService(repo, cache)

	if _, err := svc.GetByID(context.Background(), pathID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cache.has("paths:id:" + pathID) {
		t.Fatal("expected cache entry after read")
	}
	if err := svc.Delete(context.Background(), pathID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.has("paths:id:" + pathID) {
		t.Error("expected cache entry evicted")
	}
}
