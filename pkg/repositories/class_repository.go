package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/database"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
)

// ClassRepository provides data access for discovered classes.
// Upsert is keyed on (dataset, uri) and replaces the instance count, so
// re-running detection never duplicates or double counts.
type ClassRepository interface {
	Upsert(ctx context.Context, class *models.Class) error
	Get(ctx context.Context, key models.ClassKey) (*models.Class, error)
	ListByDataset(ctx context.Context, datasetID string) ([]*models.Class, error)
	Delete(ctx context.Context, key models.ClassKey) error
}

type classRepository struct{}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository() ClassRepository {
	return &classRepository{}
}

var _ ClassRepository = (*classRepository)(nil)

func (r *classRepository) Upsert(ctx context.Context, class *models.Class) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()
	err := scope.Conn.QueryRow(ctx, `
		INSERT INTO classes (dataset_id, uri, label, instance_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (dataset_id, uri) DO UPDATE SET
			label = EXCLUDED.label,
			instance_count = EXCLUDED.instance_count,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`,
		class.DatasetID, class.URI, class.Label, class.InstanceCount, now,
	).Scan(&class.CreatedAt, &class.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert class %s: %w", class.URI, err)
	}
	return nil
}

func (r *classRepository) Get(ctx context.Context, key models.ClassKey) (*models.Class, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	var c models.Class
	err := scope.Conn.QueryRow(ctx, `
		SELECT dataset_id, uri, label, instance_count, created_at, updated_at
		FROM classes
		WHERE dataset_id = $1 AND uri = $2`,
		key.DatasetID, key.URI,
	).Scan(&c.DatasetID, &c.URI, &c.Label, &c.InstanceCount, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("class %s: %w", key.URI, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return &c, nil
}

// ListByDataset returns classes with the most instances first.
func (r *classRepository) ListByDataset(ctx context.Context, datasetID string) ([]*models.Class, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Conn.Query(ctx, `
		SELECT dataset_id, uri, label, instance_count, created_at, updated_at
		FROM classes
		WHERE dataset_id = $1
		ORDER BY instance_count DESC, uri`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	defer rows.Close()

	var classes []*models.Class
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.DatasetID, &c.URI, &c.Label, &c.InstanceCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, &c)
	}
	return classes, rows.Err()
}

func (r *classRepository) Delete(ctx context.Context, key models.ClassKey) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	tag, err := scope.Conn.Exec(ctx,
		`DELETE FROM classes WHERE dataset_id = $1 AND uri = $2`, key.DatasetID, key.URI)
	if err != nil {
		return fmt.Errorf("failed to delete class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("class %s: %w", key.URI, apperrors.ErrNotFound)
	}
	return nil
}
