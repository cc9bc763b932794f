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

// FacetRepository provides data access for class facets, keyed on
// (dataset, class uri, property uri).
type FacetRepository interface {
	Upsert(ctx context.Context, facet *models.Facet) error
	Get(ctx context.Context, key models.FacetKey) (*models.Facet, error)
	// ListByClass returns the class facets with their ranges loaded.
	ListByClass(ctx context.Context, key models.ClassKey) ([]*models.Facet, error)
}

type facetRepository struct{}

// NewFacetRepository creates a new FacetRepository.
func NewFacetRepository() FacetRepository {
	return &facetRepository{}
}

var _ FacetRepository = (*facetRepository)(nil)

func (r *facetRepository) Upsert(ctx context.Context, facet *models.Facet) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()
	err := scope.Conn.QueryRow(ctx, `
		INSERT INTO facets (dataset_id, class_uri, uri, label, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (dataset_id, class_uri, uri) DO UPDATE SET
			label = EXCLUDED.label,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`,
		facet.Class.DatasetID, facet.Class.URI, facet.URI, facet.Label, now,
	).Scan(&facet.CreatedAt, &facet.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert facet %s: %w", facet.URI, err)
	}
	return nil
}

func (r *facetRepository) Get(ctx context.Context, key models.FacetKey) (*models.Facet, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	f := models.Facet{Class: key.Class}
	err := scope.Conn.QueryRow(ctx, `
		SELECT uri, label, created_at, updated_at
		FROM facets
		WHERE dataset_id = $1 AND class_uri = $2 AND uri = $3`,
		key.Class.DatasetID, key.Class.URI, key.PropertyURI,
	).Scan(&f.URI, &f.Label, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("facet %s: %w", key.PropertyURI, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get facet: %w", err)
	}
	return &f, nil
}

func (r *facetRepository) ListByClass(ctx context.Context, key models.ClassKey) ([]*models.Facet, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Conn.Query(ctx, `
		SELECT f.uri, f.label, f.created_at, f.updated_at,
		       r.uri, r.label, r.uses, r.distinct_values, r.all_literal, r.created_at, r.updated_at
		FROM facets f
		LEFT JOIN ranges r
		  ON r.dataset_id = f.dataset_id AND r.class_uri = f.class_uri AND r.facet_uri = f.uri
		WHERE f.dataset_id = $1 AND f.class_uri = $2
		ORDER BY f.uri, r.uses DESC NULLS LAST, r.uri`,
		key.DatasetID, key.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to list facets: %w", err)
	}
	defer rows.Close()

	var facets []*models.Facet
	var current *models.Facet
	for rows.Next() {
		var f models.Facet
		var (
			rangeURI, rangeLabel *string
			uses, values         *int64
			allLiteral           *bool
			rangeCreated         *time.Time
			rangeUpdated         *time.Time
		)
		if err := rows.Scan(&f.URI, &f.Label, &f.CreatedAt, &f.UpdatedAt,
			&rangeURI, &rangeLabel, &uses, &values, &allLiteral, &rangeCreated, &rangeUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan facet: %w", err)
		}

		if current == nil || current.URI != f.URI {
			f.Class = key
			current = &f
			facets = append(facets, current)
		}
		if rangeURI == nil {
			continue
		}
		current.AddRange(&models.Range{
			Facet:      current.Key(),
			URI:        *rangeURI,
			Label:      *rangeLabel,
			Uses:       *uses,
			Values:     *values,
			AllLiteral: *allLiteral,
			CreatedAt:  *rangeCreated,
			UpdatedAt:  *rangeUpdated,
		})
	}
	return facets, rows.Err()
}
