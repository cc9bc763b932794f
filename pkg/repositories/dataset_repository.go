package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/database"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
)

// DatasetRepository defines data access for datasets.
// Endpoints and classes are loaded through their own repositories.
type DatasetRepository interface {
	// Create inserts a new dataset. Returns ErrConflict if the id exists.
	Create(ctx context.Context, ds *models.Dataset) error
	GetByID(ctx context.Context, id string) (*models.Dataset, error)
	List(ctx context.Context) ([]*models.Dataset, error)
	// Update stores settings and the loaded ontologies list.
	Update(ctx context.Context, ds *models.Dataset) error
	Delete(ctx context.Context, id string) error
}

type datasetRepository struct{}

// NewDatasetRepository creates a new DatasetRepository.
func NewDatasetRepository() DatasetRepository {
	return &datasetRepository{}
}

var _ DatasetRepository = (*datasetRepository)(nil)

const datasetColumns = `id, query_type, sample_size, coverage, inference_enabled,
	inference_graph, ontologies_graph, ontologies, created_at, updated_at`

func (r *datasetRepository) Create(ctx context.Context, ds *models.Dataset) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()
	ds.CreatedAt = now
	ds.UpdatedAt = now
	if ds.QueryType == "" {
		ds.QueryType = models.QueryTypeOptimized
	}

	query := `
		INSERT INTO datasets (` + datasetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := scope.Conn.Exec(ctx, query,
		ds.ID, string(ds.QueryType), ds.SampleSize, ds.Coverage, ds.InferenceEnabled,
		ds.InferenceGraph, ds.OntologiesGraph, nonNil(ds.Ontologies), ds.CreatedAt, ds.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("dataset %s: %w", ds.ID, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

func (r *datasetRepository) GetByID(ctx context.Context, id string) (*models.Dataset, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	row := scope.Conn.QueryRow(ctx, `SELECT `+datasetColumns+` FROM datasets WHERE id = $1`, id)
	ds, err := scanDataset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("dataset %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return ds, nil
}

func (r *datasetRepository) List(ctx context.Context) ([]*models.Dataset, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Conn.Query(ctx, `SELECT `+datasetColumns+` FROM datasets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*models.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

func (r *datasetRepository) Update(ctx context.Context, ds *models.Dataset) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	ds.UpdatedAt = time.Now()
	tag, err := scope.Conn.Exec(ctx, `
		UPDATE datasets
		SET query_type = $2, sample_size = $3, coverage = $4, inference_enabled = $5,
		    inference_graph = $6, ontologies_graph = $7, ontologies = $8, updated_at = $9
		WHERE id = $1`,
		ds.ID, string(ds.QueryType), ds.SampleSize, ds.Coverage, ds.InferenceEnabled,
		ds.InferenceGraph, ds.OntologiesGraph, nonNil(ds.Ontologies), ds.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update dataset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dataset %s: %w", ds.ID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *datasetRepository) Delete(ctx context.Context, id string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	tag, err := scope.Conn.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dataset %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func scanDataset(row pgx.Row) (*models.Dataset, error) {
	var ds models.Dataset
	var queryType string
	err := row.Scan(&ds.ID, &queryType, &ds.SampleSize, &ds.Coverage, &ds.InferenceEnabled,
		&ds.InferenceGraph, &ds.OntologiesGraph, &ds.Ontologies, &ds.CreatedAt, &ds.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ds.QueryType = models.QueryType(queryType)
	return &ds, nil
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
