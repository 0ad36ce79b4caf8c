package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// SavedPathRepo implements ports.SavedPathRepository with pgx.
// Waypoints and bounds are stored as JSONB.
type SavedPathRepo struct {
	db *DB
}

// NewSavedPathRepo creates a new SavedPathRepo.
func NewSavedPathRepo(db *DB) *SavedPathRepo {
	return &SavedPathRepo{db: db}
}

// Create inserts a saved path.
func (r *SavedPathRepo) Create(ctx context.Context, p *domain.SavedPath) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO saved_paths (id, name, waypoints, point_count, length_m, bounds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Name, p.Waypoints, p.PointCount, p.LengthM, p.Bounds, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert saved path: %w", err)
	}
	return nil
}

// GetByID returns a saved path with its waypoints.
func (r *SavedPathRepo) GetByID(ctx context.Context, id string) (*domain.SavedPath, error) {
	var p domain.SavedPath
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, waypoints, point_count, length_m, bounds, created_at
		FROM saved_paths WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Waypoints, &p.PointCount, &p.LengthM, &p.Bounds, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPathNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Waypoints == nil {
		p.Waypoints = domain.Path{}
	}
	return &p, nil
}

// List returns the newest saved paths without their waypoints.
func (r *SavedPathRepo) List(ctx context.Context, limit int) ([]domain.SavedPath, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, point_count, length_m, bounds, created_at
		FROM saved_paths
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := []domain.SavedPath{}
	for rows.Next() {
		var p domain.SavedPath
		if err := rows.Scan(&p.ID, &p.Name, &p.PointCount, &p.LengthM, &p.Bounds, &p.CreatedAt); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Delete removes a saved path.
func (r *SavedPathRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM saved_paths WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPathNotFound
	}
	return nil
}
