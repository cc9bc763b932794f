package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/repositories"
)

// memoryStore keeps profile entities by composite key, the way the
// Postgres upserts do.
type memoryStore struct {
	mu      sync.Mutex
	classes map[models.ClassKey]models.Class
	facets  map[models.FacetKey]models.Facet
	ranges  map[models.RangeKey]models.Range
	upserts int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		classes: make(map[models.ClassKey]models.Class),
		facets:  make(map[models.FacetKey]models.Facet),
		ranges:  make(map[models.RangeKey]models.Range),
	}
}

type memoryClassRepo struct{ s *memoryStore }

var _ repositories.ClassRepository = memoryClassRepo{}

func (r memoryClassRepo) Upsert(ctx context.Context, class *models.Class) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.upserts++
	stored := *class
	stored.Facets = nil
	r.s.classes[class.Key()] = stored
	return nil
}

func (r memoryClassRepo) Get(ctx context.Context, key models.ClassKey) (*models.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.classes[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (r memoryClassRepo) ListByDataset(ctx context.Context, datasetID string) ([]*models.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Class
	for key, c := range r.s.classes {
		if key.DatasetID == datasetID {
			c := c
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memoryClassRepo) Delete(ctx context.Context, key models.ClassKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.classes, key)
	return nil
}

type memoryFacetRepo struct{ s *memoryStore }

var _ repositories.FacetRepository = memoryFacetRepo{}

func (r memoryFacetRepo) Upsert(ctx context.Context, facet *models.Facet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.upserts++
	stored := *facet
	stored.Ranges = nil
	r.s.facets[facet.Key()] = stored
	return nil
}

func (r memoryFacetRepo) Get(ctx context.Context, key models.FacetKey) (*models.Facet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.facets[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &f, nil
}

func (r memoryFacetRepo) ListByClass(ctx context.Context, key models.ClassKey) ([]*models.Facet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Facet
	for fk, f := range r.s.facets {
		if fk.Class == key {
			f := f
			out = append(out, &f)
		}
	}
	return out, nil
}

type memoryRangeRepo struct{ s *memoryStore }

var _ repositories.RangeRepository = memoryRangeRepo{}

func (r memoryRangeRepo) Upsert(ctx context.Context, rng *models.Range) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.upserts++
	r.s.ranges[rng.Key()] = *rng
	return nil
}

func (r memoryRangeRepo) Get(ctx context.Context, key models.RangeKey) (*models.Range, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rng, ok := r.s.ranges[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rng, nil
}

// memoryEndpointRepo serves a fixed endpoint list and records graph updates.
type memoryEndpointRepo struct {
	endpoints     []*models.Endpoint
	updatedGraphs map[uuid.UUID][]string
}

var _ repositories.EndpointRepository = (*memoryEndpointRepo)(nil)

func (r *memoryEndpointRepo) Create(ctx context.Context, ep *models.Endpoint) error {
	r.endpoints = append(r.endpoints, ep)
	return nil
}

func (r *memoryEndpointRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Endpoint, error) {
	for _, ep := range r.endpoints {
		if ep.ID == id {
			return ep, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memoryEndpointRepo) ListByDataset(ctx context.Context, datasetID string) ([]*models.Endpoint, error) {
	var out []*models.Endpoint
	for _, ep := range r.endpoints {
		if ep.DatasetID == datasetID {
			out = append(out, ep)
		}
	}
	return out, nil
}

func (r *memoryEndpointRepo) Update(ctx context.Context, ep *models.Endpoint) error {
	return nil
}

func (r *memoryEndpointRepo) UpdateGraphs(ctx context.Context, id uuid.UUID, graphs []string) error {
	if r.updatedGraphs == nil {
		r.updatedGraphs = make(map[uuid.UUID][]string)
	}
	r.updatedGraphs[id] = append([]string(nil), graphs...)
	return nil
}

func (r *memoryEndpointRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

// memoryDatasetRepo records the last dataset passed to Update.
type memoryDatasetRepo struct {
	updated *models.Dataset
}

var _ repositories.DatasetRepository = (*memoryDatasetRepo)(nil)

func (r *memoryDatasetRepo) Create(ctx context.Context, ds *models.Dataset) error { return nil }

func (r *memoryDatasetRepo) GetByID(ctx context.Context, id string) (*models.Dataset, error) {
	if r.updated != nil && r.updated.ID == id {
		return r.updated, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *memoryDatasetRepo) List(ctx context.Context) ([]*models.Dataset, error) { return nil, nil }

func (r *memoryDatasetRepo) Update(ctx context.Context, ds *models.Dataset) error {
	r.updated = ds
	return nil
}

func (r *memoryDatasetRepo) Delete(ctx context.Context, id string) error { return nil }
