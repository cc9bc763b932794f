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

// RangeRepository provides data access for facet ranges, keyed on
// (dataset, class uri, facet uri, range uri).
type RangeRepository interface {
	// Upsert replaces the counts of an existing range.
	Upsert(ctx context.Context, rng *models.Range) error
	Get(ctx context.Context, key models.RangeKey) (*models.Range, error)
}

type rangeRepository struct{}

// NewRangeRepository creates a new RangeRepository.
func NewRangeRepository() RangeRepository {
	return &rangeRepository{}
}

var _ RangeRepository = (*rangeRepository)(nil)

func (r *rangeRepository) Upsert(ctx context.Context, rng *models.Range) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	key := rng.Key()
	now := time.Now()
	err := scope.Conn.QueryRow(ctx, `
		INSERT INTO ranges (
			dataset_id, class_uri, facet_uri, uri, label,
			uses, distinct_values, all_literal, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (dataset_id, class_uri, facet_uri, uri) DO UPDATE SET
			label = EXCLUDED.label,
			uses = EXCLUDED.uses,
			distinct_values = EXCLUDED.distinct_values,
			all_literal = EXCLUDED.all_literal,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`,
		key.Facet.Class.DatasetID, key.Facet.Class.URI, key.Facet.PropertyURI, key.URI, rng.Label,
		rng.Uses, rng.Values, rng.AllLiteral, now,
	).Scan(&rng.CreatedAt, &rng.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert range %s: %w", rng.URI, err)
	}
	return nil
}

func (r *rangeRepository) Get(ctx context.Context, key models.RangeKey) (*models.Range, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rng := models.Range{Facet: key.Facet, URI: key.URI}
	err := scope.Conn.QueryRow(ctx, `
		SELECT label, uses, distinct_values, all_literal, created_at, updated_at
		FROM ranges
		WHERE dataset_id = $1 AND class_uri = $2 AND facet_uri = $3 AND uri = $4`,
		key.Facet.Class.DatasetID, key.Facet.Class.URI, key.Facet.PropertyURI, key.URI,
	).Scan(&rng.Label, &rng.Uses, &rng.Values, &rng.AllLiteral, &rng.CreatedAt, &rng.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("range %s: %w", key.URI, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get range: %w", err)
	}
	return &rng, nil
}
