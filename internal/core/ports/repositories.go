package ports

import (
	"context"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// SavedPathRepository persists named paths.
type SavedPathRepository interface {
	Create(ctx context.Context, p *domain.SavedPath) error
	GetByID(ctx context.Context, id string) (*domain.SavedPath, error)
	List(ctx context.Context, limit int) ([]domain.SavedPath, error)
	Delete(ctx context.Context, id string) error
}
