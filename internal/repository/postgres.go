package repository

import (
	"context"
	"errors"
	"fmt"

	"mapcal-api/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the map_calibrations table.
const Schema = `
	CREATE TABLE IF NOT EXISTS map_calibrations (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS map_calibrations_updated_at_idx ON map_calibrations (updated_at DESC);
`

// Repository implements calibration storage on PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the tables the repository needs if they are missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

// SaveCalibration inserts or replaces a map calibration and fills in its timestamps
func (r *Repository) SaveCalibration(ctx context.Context, m *models.MapCalibration) error {
	sql := `
		INSERT INTO map_calibrations (id, name, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			content = EXCLUDED.content,
			updated_at = now()
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, sql, m.ID, m.Name, m.Content).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to save calibration: %w", err)
	}
	return nil
}

// GetCalibration loads a single map calibration by id
func (r *Repository) GetCalibration(ctx context.Context, id uuid.UUID) (*models.MapCalibration, error) {
	sql := `
		SELECT id, name, content, created_at, updated_at
		FROM map_calibrations
		WHERE id = $1
	`

	var m models.MapCalibration
	err := r.db.QueryRow(ctx, sql, id).Scan(&m.ID, &m.Name, &m.Content, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to load calibration: %w", err)
	}
	return &m, nil
}

// ListCalibrations returns the most recently updated calibrations first
func (r *Repository) ListCalibrations(ctx context.Context, limit int) ([]models.MapCalibration, error) {
	sql := `
		SELECT id, name, content, created_at, updated_at
		FROM map_calibrations
		ORDER BY updated_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute list query: %w", err)
	}

	calibrations, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.MapCalibration])
	if err != nil {
		return nil, fmt.Errorf("repository: failed to scan calibrations: %w", err)
	}
	return calibrations, nil
}

// DeleteCalibration removes a calibration; deleting an unknown id is ErrNotFound
func (r *Repository) DeleteCalibration(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM map_calibrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete calibration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
