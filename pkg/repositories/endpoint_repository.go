package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/crypto"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/database"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
)

// EndpointRepository defines data access for dataset endpoints.
// Passwords are sealed on write and opened on read; callers only see plaintext.
type EndpointRepository interface {
	Create(ctx context.Context, ep *models.Endpoint) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Endpoint, error)
	// ListByDataset returns endpoints in creation order.
	ListByDataset(ctx context.Context, datasetID string) ([]*models.Endpoint, error)
	Update(ctx context.Context, ep *models.Endpoint) error
	// UpdateGraphs replaces only the endpoint's named graph list.
	UpdateGraphs(ctx context.Context, id uuid.UUID, graphs []string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type endpointRepository struct {
	encryptor *crypto.CredentialEncryptor
}

// NewEndpointRepository creates a new EndpointRepository sealing passwords
// with encryptor.
func NewEndpointRepository(encryptor *crypto.CredentialEncryptor) EndpointRepository {
	return &endpointRepository{encryptor: encryptor}
}

var _ EndpointRepository = (*endpointRepository)(nil)

const endpointColumns = `id, dataset_id, type, query_url, update_url,
	query_username, query_password_encrypted, update_username, update_password_encrypted,
	key_fingerprint, writable, graphs, created_at, updated_at`

type sealedPasswords struct {
	query, update, fingerprint string
}

func (r *endpointRepository) seal(ep *models.Endpoint) (sealedPasswords, error) {
	owner := ep.ID.String()
	query, err := r.encryptor.Seal(ep.QueryPassword, owner)
	if err != nil {
		return sealedPasswords{}, fmt.Errorf("failed to encrypt query password: %w", err)
	}
	update, err := r.encryptor.Seal(ep.UpdatePassword, owner)
	if err != nil {
		return sealedPasswords{}, fmt.Errorf("failed to encrypt update password: %w", err)
	}
	return sealedPasswords{query: query, update: update, fingerprint: r.encryptor.Fingerprint()}, nil
}

func (r *endpointRepository) Create(ctx context.Context, ep *models.Endpoint) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()
	ep.CreatedAt = now
	ep.UpdatedAt = now
	if ep.ID == uuid.Nil {
		ep.ID = uuid.New()
	}

	sealed, err := r.seal(ep)
	if err != nil {
		return err
	}

	_, err = scope.Conn.Exec(ctx, `
		INSERT INTO endpoints (`+endpointColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		ep.ID, ep.DatasetID, ep.Type, ep.QueryURL, ep.UpdateURL,
		ep.QueryUsername, sealed.query, ep.UpdateUsername, sealed.update,
		sealed.fingerprint, ep.Writable, nonNil(ep.Graphs), ep.CreatedAt, ep.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create endpoint: %w", err)
	}
	return nil
}

func (r *endpointRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Endpoint, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	row := scope.Conn.QueryRow(ctx, `SELECT `+endpointColumns+` FROM endpoints WHERE id = $1`, id)
	ep, err := r.scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("endpoint %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get endpoint: %w", err)
	}
	return ep, nil
}

func (r *endpointRepository) ListByDataset(ctx context.Context, datasetID string) ([]*models.Endpoint, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Conn.Query(ctx, `
		SELECT `+endpointColumns+`
		FROM endpoints
		WHERE dataset_id = $1
		ORDER BY created_at, id`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []*models.Endpoint
	for rows.Next() {
		ep, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan endpoint: %w", err)
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, rows.Err()
}

func (r *endpointRepository) Update(ctx context.Context, ep *models.Endpoint) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	sealed, err := r.seal(ep)
	if err != nil {
		return err
	}

	ep.UpdatedAt = time.Now()
	tag, err := scope.Conn.Exec(ctx, `
		UPDATE endpoints
		SET type = $2, query_url = $3, update_url = $4,
		    query_username = $5, query_password_encrypted = $6,
		    update_username = $7, update_password_encrypted = $8,
		    key_fingerprint = $9, writable = $10, graphs = $11, updated_at = $12
		WHERE id = $1`,
		ep.ID, ep.Type, ep.QueryURL, ep.UpdateURL,
		ep.QueryUsername, sealed.query, ep.UpdateUsername, sealed.update,
		sealed.fingerprint, ep.Writable, nonNil(ep.Graphs), ep.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update endpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("endpoint %s: %w", ep.ID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *endpointRepository) UpdateGraphs(ctx context.Context, id uuid.UUID, graphs []string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	tag, err := scope.Conn.Exec(ctx,
		`UPDATE endpoints SET graphs = $2, updated_at = $3 WHERE id = $1`,
		id, nonNil(graphs), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update endpoint graphs: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("endpoint %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *endpointRepository) Delete(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	tag, err := scope.Conn.Exec(ctx, `DELETE FROM endpoints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete endpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("endpoint %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *endpointRepository) scan(row pgx.Row) (*models.Endpoint, error) {
	var ep models.Endpoint
	var queryPassword, updatePassword, fingerprint string
	err := row.Scan(&ep.ID, &ep.DatasetID, &ep.Type, &ep.QueryURL, &ep.UpdateURL,
		&ep.QueryUsername, &queryPassword, &ep.UpdateUsername, &updatePassword,
		&fingerprint, &ep.Writable, &ep.Graphs, &ep.CreatedAt, &ep.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if (queryPassword != "" || updatePassword != "") && fingerprint != r.encryptor.Fingerprint() {
		return nil, fmt.Errorf("endpoint %s: %w", ep.ID, apperrors.ErrCredentialsKeyMismatch)
	}

	owner := ep.ID.String()
	if ep.QueryPassword, err = r.encryptor.Open(queryPassword, owner); err != nil {
		return nil, fmt.Errorf("endpoint %s query password: %w", ep.ID, err)
	}
	if ep.UpdatePassword, err = r.encryptor.Open(updatePassword, owner); err != nil {
		return nil, fmt.Errorf("endpoint %s update password: %w", ep.ID, err)
	}
	return &ep, nil
}
