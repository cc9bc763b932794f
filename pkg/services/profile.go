package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/adapters/endpoint"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/metrics"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/queries"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/repositories"
)

const (
	opDetectClasses = "detect_classes"
	opDetectFacets  = "detect_facets"
	opInferTypes    = "infer_types"
)

// Labeler derives display forms for URIs. *curie.Abbreviator implements it.
type Labeler interface {
	// Abbreviate returns a CURIE, or ok=false when the URI has no known prefix.
	Abbreviate(uri string) (string, bool)
	LocalName(uri string) string
}

// ProfileService discovers the classes, facets and ranges of a dataset.
type ProfileService interface {
	// DetectClasses queries every endpoint of the dataset and upserts one
	// Class per distinct class URI with the instance counts summed across
	// endpoints. The detected classes are returned in first-seen order and
	// merged into dataset.Classes.
	DetectClasses(ctx context.Context, dataset *models.Dataset) ([]*models.Class, error)

	// DetectFacets queries every endpoint for the properties used by
	// instances of class and upserts its facets and their ranges.
	// Detected facets are merged into class.Facets and returned.
	DetectFacets(ctx context.Context, dataset *models.Dataset, class *models.Class) ([]*models.Facet, error)
}

type profileService struct {
	endpointRepo repositories.EndpointRepository
	classRepo    repositories.ClassRepository
	facetRepo    repositories.FacetRepository
	rangeRepo    repositories.RangeRepository
	runner       *EndpointRunner
	blacklist    Blacklist
	labels       Labeler
	metrics      *metrics.EndpointMetrics
	logger       *zap.Logger
}

// NewProfileService creates a new profile service with dependencies.
func NewProfileService(
	endpointRepo repositories.EndpointRepository,
	classRepo repositories.ClassRepository,
	facetRepo repositories.FacetRepository,
	rangeRepo repositories.RangeRepository,
	runner *EndpointRunner,
	blacklist Blacklist,
	labels Labeler,
	m *metrics.EndpointMetrics,
	logger *zap.Logger,
) ProfileService {
	return &profileService{
		endpointRepo: endpointRepo,
		classRepo:    classRepo,
		facetRepo:    facetRepo,
		rangeRepo:    rangeRepo,
		runner:       runner,
		blacklist:    blacklist,
		labels:       labels,
		metrics:      m,
		logger:       logger.Named("profile"),
	}
}

var _ ProfileService = (*profileService)(nil)

// classCount is one endpoint's report for a class.
type classCount struct {
	uri   string
	count int64
}

func (s *profileService) DetectClasses(ctx context.Context, dataset *models.Dataset) ([]*models.Class, error) {
	endpoints, err := datasetEndpoints(ctx, s.endpointRepo, dataset)
	if err != nil {
		return nil, err
	}

	strategy := queries.ForType(dataset.QueryType)
	inferenceGraph := ""
	if dataset.InferenceEnabled {
		inferenceGraph = dataset.InferenceGraph
	}

	partials := make([][]classCount, len(endpoints))
	err = s.runner.Run(ctx, opDetectClasses, endpoints, func(ctx context.Context, i int, ep *models.Endpoint, client endpoint.Client) error {
		if inferenceGraph != "" {
			start := time.Now()
			err := client.Update(ctx, endpoint.UpdateScope(ep), queries.InferTypesUpdate(inferenceGraph, ep.Graphs))
			s.metrics.Observe(opInferTypes, start, err)
			if err != nil {
				return fmt.Errorf("failed to materialize inferred types: %w", err)
			}
		}

		rows, err := client.Select(ctx, endpoint.QueryScope(ep, inferenceGraph), strategy.ClassesQuery())
		if err != nil {
			return err
		}

		skip := rowSkipper{operation: opDetectClasses, endpoint: ep, metrics: s.metrics, logger: s.logger}
		return eachBinding(rows, func(b endpoint.Binding) {
			uri, present, err := iriTerm(b, "class")
			if !present {
				return
			}
			if err != nil {
				skip.malformed(uri, err)
				return
			}
			if s.blacklist.ExcludesClass(uri) {
				skip.blacklisted(uri)
				return
			}
			n, err := intTerm(b, "n")
			if err != nil {
				skip.malformed(uri, err)
				return
			}
			partials[i] = append(partials[i], classCount{uri: uri, count: n})
		})
	})
	if err != nil {
		return nil, err
	}

	counts := foldClassCounts(partials)
	detected := make([]*models.Class, 0, len(counts))
	for _, c := range counts {
		class, ok := dataset.ClassByURI(c.uri)
		if !ok {
			class = &models.Class{DatasetID: dataset.ID, URI: c.uri}
		}
		class.Label = s.labels.LocalName(c.uri)
		class.InstanceCount = c.count

		if err := s.classRepo.Upsert(ctx, class); err != nil {
			return nil, fmt.Errorf("failed to save class: %w", err)
		}
		dataset.AddClass(class)
		detected = append(detected, class)

		s.logger.Info("Detected class",
			zap.String("dataset_id", dataset.ID),
			zap.String("class", c.uri),
			zap.Int64("instances", c.count))
	}

	return detected, nil
}

// foldClassCounts sums counts per class URI, keeping first-seen order.
func foldClassCounts(partials [][]classCount) []classCount {
	index := make(map[string]int)
	var out []classCount
	for _, partial := range partials {
		for _, c := range partial {
			if i, ok := index[c.uri]; ok {
				out[i].count += c.count
				continue
			}
			index[c.uri] = len(out)
			out = append(out, c)
		}
	}
	return out
}

// rangeStats is one endpoint's report for a property/range pair.
type rangeStats struct {
	property   string
	rangeURI   string
	uses       int64
	values     int64
	allLiteral bool
}

func (s *profileService) DetectFacets(ctx context.Context, dataset *models.Dataset, class *models.Class) ([]*models.Facet, error) {
	endpoints, err := datasetEndpoints(ctx, s.endpointRepo, dataset)
	if err != nil {
		return nil, err
	}

	query := queries.ForType(dataset.QueryType).
		ClassFacetsQuery(class.URI, dataset.SampleSize, class.InstanceCount, dataset.Coverage)

	partials := make([][]rangeStats, len(endpoints))
	err = s.runner.Run(ctx, opDetectFacets, endpoints, func(ctx context.Context, i int, ep *models.Endpoint, client endpoint.Client) error {
		rows, err := client.Select(ctx, endpoint.QueryScope(ep), query)
		if err != nil {
			return err
		}

		skip := rowSkipper{operation: opDetectFacets, endpoint: ep, metrics: s.metrics, logger: s.logger}
		return eachBinding(rows, func(b endpoint.Binding) {
			stats, ok := s.decodeFacetRow(b, skip)
			if ok {
				partials[i] = append(partials[i], stats)
			}
		})
	})
	if err != nil {
		return nil, err
	}

	var detected []*models.Facet
	for _, group := range foldRangeStats(partials) {
		facet, err := s.saveFacet(ctx, class, group)
		if err != nil {
			return nil, err
		}
		detected = append(detected, facet)
	}

	s.logger.Info("Detected facets",
		zap.String("dataset_id", dataset.ID),
		zap.String("class", class.URI),
		zap.Int("facets", len(detected)))

	return detected, nil
}

func (s *profileService) decodeFacetRow(b endpoint.Binding, skip rowSkipper) (rangeStats, bool) {
	property, present, err := iriTerm(b, "property")
	if !present {
		return rangeStats{}, false
	}
	if err != nil {
		skip.malformed(property, err)
		return rangeStats{}, false
	}
	if s.blacklist.ExcludesProperty(property) {
		skip.blacklisted(property)
		return rangeStats{}, false
	}

	rangeURI, present, err := iriTerm(b, "range")
	if err != nil {
		skip.malformed(rangeURI, err)
		return rangeStats{}, false
	}
	if !present {
		rangeURI = rdf.XSDString
	}

	uses, err := intTerm(b, "uses")
	if err != nil {
		skip.malformed(property, err)
		return rangeStats{}, false
	}
	values, err := intTerm(b, "values")
	if err != nil {
		skip.malformed(property, err)
		return rangeStats{}, false
	}

	allLiteral := false
	if v, ok := b["allLiteral"]; ok && v != nil {
		allLiteral, err = rdf.Bool(v)
		if err != nil {
			skip.malformed(property, err)
			return rangeStats{}, false
		}
	}

	return rangeStats{
		property:   property,
		rangeURI:   rangeURI,
		uses:       uses,
		values:     values,
		allLiteral: allLiteral,
	}, true
}

// facetGroup is the folded ranges of one property in first-seen order.
type facetGroup struct {
	property string
	ranges   []rangeStats
}

// foldRangeStats merges reports for the same property/range pair: counts
// are summed and the range is all-literal only if every report says so.
func foldRangeStats(partials [][]rangeStats) []*facetGroup {
	byProperty := make(map[string]*facetGroup)
	var groups []*facetGroup
	for _, partial := range partials {
		for _, r := range partial {
			g, ok := byProperty[r.property]
			if !ok {
				g = &facetGroup{property: r.property}
				byProperty[r.property] = g
				groups = append(groups, g)
			}
			g.merge(r)
		}
	}
	return groups
}

func (g *facetGroup) merge(r rangeStats) {
	for i := range g.ranges {
		existing := &g.ranges[i]
		if existing.rangeURI == r.rangeURI {
			existing.uses += r.uses
			existing.values += r.values
			existing.allLiteral = existing.allLiteral && r.allLiteral
			return
		}
	}
	g.ranges = append(g.ranges, r)
}

func (s *profileService) saveFacet(ctx context.Context, class *models.Class, group *facetGroup) (*models.Facet, error) {
	facet, ok := class.FacetByURI(group.property)
	if !ok {
		facet = &models.Facet{Class: class.Key(), URI: group.property}
	}
	facet.Label = s.labels.LocalName(group.property)

	if err := s.facetRepo.Upsert(ctx, facet); err != nil {
		return nil, fmt.Errorf("failed to save facet: %w", err)
	}

	for _, r := range group.ranges {
		rng := &models.Range{
			Facet:      facet.Key(),
			URI:        r.rangeURI,
			Label:      s.labels.LocalName(r.rangeURI),
			Uses:       r.uses,
			Values:     r.values,
			AllLiteral: r.allLiteral,
		}
		if err := s.rangeRepo.Upsert(ctx, rng); err != nil {
			return nil, fmt.Errorf("failed to save range: %w", err)
		}
		facet.AddRange(rng)
	}

	class.AddFacet(facet)
	return facet, nil
}

// datasetEndpoints loads the dataset's endpoints on first use.
func datasetEndpoints(ctx context.Context, repo repositories.EndpointRepository, dataset *models.Dataset) ([]*models.Endpoint, error) {
	if dataset.Endpoints != nil {
		return dataset.Endpoints, nil
	}
	endpoints, err := repo.ListByDataset(ctx, dataset.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list endpoints: %w", err)
	}
	dataset.Endpoints = endpoints
	return endpoints, nil
}
