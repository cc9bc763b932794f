package services

import (
	"context"
	"fmt"
	"io"

	"github.com/cayleygraph/quad"
	"go.uber.org/zap"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/adapters/endpoint"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/metrics"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/queries"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/repositories"
)

const (
	opRetrieveValues           = "retrieve_values"
	opRetrieveValuesContaining = "retrieve_values_containing"
	opRetrieveInstances        = "retrieve_instances"
	opRetrieveInstanceLabels   = "retrieve_instance_labels"
	opCountInstances           = "count_instances"
	opDescribeResource         = "describe_resource"
)

// GraphWriter serializes a graph. *rdf.Serializer implements it.
type GraphWriter interface {
	Write(w io.Writer, graph []quad.Quad, format rdf.Format) error
}

// RetrievalService serves facet values, instances and resource descriptions.
// Results from several endpoints are concatenated in endpoint order and never
// merged or deduplicated.
type RetrievalService interface {
	// RetrieveValues returns one page of values for a range. Each endpoint
	// is asked for size values starting at page*size.
	RetrieveValues(ctx context.Context, dataset *models.Dataset, rng *models.Range, filters models.Filters, page, size int) ([]*models.Value, error)

	// RetrieveValuesContaining returns up to top values per endpoint whose
	// lexical form or label contains substring, ignoring case. Counts are zero.
	RetrieveValuesContaining(ctx context.Context, dataset *models.Dataset, rng *models.Range, filters models.Filters, substring string, top int) ([]*models.Value, error)

	// RetrieveInstances writes one page of class instances, one graph per endpoint.
	RetrieveInstances(ctx context.Context, w io.Writer, dataset *models.Dataset, classURI string, filters models.Filters, page, size int, format rdf.Format) error

	// RetrieveInstanceLabels writes the labels of resources linked from one
	// page of class instances, one graph per endpoint.
	RetrieveInstanceLabels(ctx context.Context, w io.Writer, dataset *models.Dataset, classURI string, filters models.Filters, page, size int, format rdf.Format) error

	// CountInstances sums the matching instance counts of every endpoint.
	CountInstances(ctx context.Context, dataset *models.Dataset, classURI string, filters models.Filters) (int64, error)

	// DescribeResource writes, per endpoint, the union of the resource's
	// description and the labels of what it links to.
	DescribeResource(ctx context.Context, w io.Writer, dataset *models.Dataset, uri string, format rdf.Format) error

	// BrowseURI dereferences uri directly, bypassing the dataset endpoints.
	// Fetch or parse failures are logged and produce an empty graph.
	BrowseURI(ctx context.Context, w io.Writer, uri string, format rdf.Format) error
}

type retrievalService struct {
	endpointRepo repositories.EndpointRepository
	runner       *EndpointRunner
	labels       Labeler
	writer       GraphWriter
	dereferencer Dereferencer
	metrics      *metrics.EndpointMetrics
	logger       *zap.Logger
}

// NewRetrievalService creates a new retrieval service with dependencies.
func NewRetrievalService(
	endpointRepo repositories.EndpointRepository,
	runner *EndpointRunner,
	labels Labeler,
	writer GraphWriter,
	dereferencer Dereferencer,
	m *metrics.EndpointMetrics,
	logger *zap.Logger,
) RetrievalService {
	return &retrievalService{
		endpointRepo: endpointRepo,
		runner:       runner,
		labels:       labels,
		writer:       writer,
		dereferencer: dereferencer,
		metrics:      m,
		logger:       logger.Named("retrieval"),
	}
}

var _ RetrievalService = (*retrievalService)(nil)

func (s *retrievalService) RetrieveValues(ctx context.Context, dataset *models.Dataset, rng *models.Range, filters models.Filters, page, size int) ([]*models.Value, error) {
	if err := validatePage(page, size); err != nil {
		return nil, err
	}
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	query := queries.ForType(dataset.QueryType).FacetRangeValuesQuery(
		rng.ClassURI(), rng.FacetURI(), rng.URI, filters, rng.AllLiteral, size, page*size)
	return s.selectValues(ctx, opRetrieveValues, dataset, query, true)
}

func (s *retrievalService) RetrieveValuesContaining(ctx context.Context, dataset *models.Dataset, rng *models.Range, filters models.Filters, substring string, top int) ([]*models.Value, error) {
	if top <= 0 {
		return nil, fmt.Errorf("%w: top must be positive, got %d", apperrors.ErrInvalidArgument, top)
	}
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	query := queries.ForType(dataset.QueryType).FacetRangeValuesContainingQuery(
		rng.ClassURI(), rng.FacetURI(), rng.URI, filters, rng.AllLiteral, substring, top)
	return s.selectValues(ctx, opRetrieveValuesContaining, dataset, query, false)
}

func (s *retrievalService) selectValues(ctx context.Context, operation string, dataset *models.Dataset, query string, counted bool) ([]*models.Value, error) {
	endpoints, err := datasetEndpoints(ctx, s.endpointRepo, dataset)
	if err != nil {
		return nil, err
	}

	partials := make([][]*models.Value, len(endpoints))
	err = s.runner.Run(ctx, operation, endpoints, func(ctx context.Context, i int, ep *models.Endpoint, client endpoint.Client) error {
		rows, err := client.Select(ctx, endpoint.QueryScope(ep), query)
		if err != nil {
			return err
		}

		skip := rowSkipper{operation: operation, endpoint: ep, metrics: s.metrics, logger: s.logger}
		return eachBinding(rows, func(b endpoint.Binding) {
			if v, ok := s.decodeValue(b, counted, skip); ok {
				partials[i] = append(partials[i], v)
			}
		})
	})
	if err != nil {
		return nil, err
	}

	var values []*models.Value
	for _, partial := range partials {
		values = append(values, partial...)
	}
	return values, nil
}

func (s *retrievalService) decodeValue(b endpoint.Binding, counted bool, skip rowSkipper) (*models.Value, bool) {
	term, ok := b["value"]
	if !ok || term == nil {
		return nil, false
	}

	v := &models.Value{Value: rdf.Lexical(term)}
	if uri, isIRI := rdf.IRI(term); isIRI {
		v.URI = uri
		if curie, ok := s.labels.Abbreviate(uri); ok {
			v.Curie = curie
		}
	}
	if label, ok := b["label"]; ok && label != nil {
		v.Label = rdf.Lexical(label)
	}

	if counted {
		if _, ok := b["count"]; ok {
			n, err := intTerm(b, "count")
			if err != nil {
				skip.malformed(v.Value, err)
				return nil, false
			}
			v.Count = n
		}
	}
	return v, true
}

func (s *retrievalService) RetrieveInstances(ctx context.Context, w io.Writer, dataset *models.Dataset, classURI string, filters models.Filters, page, size int, format rdf.Format) error {
	if err := validateInstancesRequest(classURI, filters, page, size, format); err != nil {
		return err
	}
	query := queries.ForType(dataset.QueryType).ClassInstancesQuery(classURI, filters, size, page*size)
	return s.writeGraphs(ctx, w, opRetrieveInstances, dataset, format, query)
}

func (s *retrievalService) RetrieveInstanceLabels(ctx context.Context, w io.Writer, dataset *models.Dataset, classURI string, filters models.Filters, page, size int, format rdf.Format) error {
	if err := validateInstancesRequest(classURI, filters, page, size, format); err != nil {
		return err
	}
	query := queries.ForType(dataset.QueryType).ClassInstancesLabelsQuery(classURI, filters, size, page*size)
	return s.writeGraphs(ctx, w, opRetrieveInstanceLabels, dataset, format, query)
}

func (s *retrievalService) CountInstances(ctx context.Context, dataset *models.Dataset, classURI string, filters models.Filters) (int64, error) {
	if _, err := rdf.ParseURI(classURI); err != nil {
		return 0, err
	}
	if err := validateFilters(filters); err != nil {
		return 0, err
	}
	endpoints, err := datasetEndpoints(ctx, s.endpointRepo, dataset)
	if err != nil {
		return 0, err
	}

	query := queries.ForType(dataset.QueryType).ClassInstancesCountQuery(classURI, filters)
	counts := make([]int64, len(endpoints))
	err = s.runner.Run(ctx, opCountInstances, endpoints, func(ctx context.Context, i int, ep *models.Endpoint, client endpoint.Client) error {
		rows, err := client.Select(ctx, endpoint.QueryScope(ep), query)
		if err != nil {
			return err
		}

		skip := rowSkipper{operation: opCountInstances, endpoint: ep, metrics: s.metrics, logger: s.logger}
		return eachBinding(rows, func(b endpoint.Binding) {
			n, err := intTerm(b, "n")
			if err != nil {
				skip.malformed(rdf.Lexical(b["n"]), err)
				return
			}
			counts[i] += n
		})
	})
	if err != nil {
		return 0, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return total, nil
}

func (s *retrievalService) DescribeResource(ctx context.Context, w io.Writer, dataset *models.Dataset, uri string, format rdf.Format) error {
	if _, err := rdf.ParseURI(uri); err != nil {
		return err
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	strategy := queries.ForType(dataset.QueryType)
	return s.writeGraphs(ctx, w, opDescribeResource, dataset, format,
		strategy.DescribeResourceQuery(uri),
		strategy.DescribeResourceLabelsQuery(uri))
}

// writeGraphs runs the graph queries on every endpoint and writes each
// endpoint's union once, in endpoint order.
func (s *retrievalService) writeGraphs(ctx context.Context, w io.Writer, operation string, dataset *models.Dataset, format rdf.Format, graphQueries ...string) error {
	endpoints, err := datasetEndpoints(ctx, s.endpointRepo, dataset)
	if err != nil {
		return err
	}

	graphs := make([][]quad.Quad, len(endpoints))
	err = s.runner.Run(ctx, operation, endpoints, func(ctx context.Context, i int, ep *models.Endpoint, client endpoint.Client) error {
		parts := make([][]quad.Quad, 0, len(graphQueries))
		for _, query := range graphQueries {
			graph, err := client.Describe(ctx, endpoint.QueryScope(ep), query)
			if err != nil {
				return err
			}
			parts = append(parts, graph)
		}
		if len(parts) == 1 {
			graphs[i] = parts[0]
		} else {
			graphs[i] = rdf.Union(parts...)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, graph := range graphs {
		if err := s.writer.Write(w, graph, format); err != nil {
			return fmt.Errorf("failed to write graph: %w", err)
		}
	}
	return nil
}

func (s *retrievalService) BrowseURI(ctx context.Context, w io.Writer, uri string, format rdf.Format) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	graph, err := s.dereferencer.Dereference(ctx, uri)
	if err != nil {
		s.logger.Info("Failed to browse URI, returning empty graph",
			zap.String("uri", uri),
			zap.Error(err))
		graph = nil
	}

	if err := s.writer.Write(w, graph, format); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return nil
}

func validatePage(page, size int) error {
	if page < 0 {
		return fmt.Errorf("%w: page must not be negative, got %d", apperrors.ErrInvalidArgument, page)
	}
	if size <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", apperrors.ErrInvalidArgument, size)
	}
	return nil
}

// validateFilters checks that every constrained facet is a usable IRI.
func validateFilters(filters models.Filters) error {
	for _, facet := range filters.FacetURIs() {
		if _, err := rdf.ParseURI(facet); err != nil {
			return fmt.Errorf("invalid filter facet: %w", err)
		}
	}
	return nil
}

func validateFormat(format rdf.Format) error {
	if _, ok := rdf.GetFormatInfo(format); !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, format)
	}
	return nil
}

func validateInstancesRequest(classURI string, filters models.Filters, page, size int, format rdf.Format) error {
	if _, err := rdf.ParseURI(classURI); err != nil {
		return err
	}
	if err := validatePage(page, size); err != nil {
		return err
	}
	if err := validateFilters(filters); err != nil {
		return err
	}
	return validateFormat(format)
}
