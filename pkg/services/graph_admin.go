package services

import (
	"bytes"
	"context"
	"fmt"

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
	opListGraphs        = "list_graphs"
	opCountGraphTriples = "count_graph_triples"
	opClearGraph        = "clear_graph"
	opDropGraph         = "drop_graph"
	opLoadModel         = "load_model"
	opLoadOntologies    = "load_ontologies"
	opClearOntologies   = "clear_ontologies"
)

// GraphAdminService manages the named graphs of a single endpoint during
// dataset setup. Queries use the endpoint's query credentials, updates its
// update credentials. Updates are refused on endpoints not marked writable.
type GraphAdminService interface {
	// ListGraphs returns every named graph on the server, not only the
	// graphs configured on the endpoint.
	ListGraphs(ctx context.Context, dataset *models.Dataset, ep *models.Endpoint) ([]string, error)
	CountGraphTriples(ctx context.Context, ep *models.Endpoint, graph string) (int64, error)
	ClearGraph(ctx context.Context, ep *models.Endpoint, graph string) error
	DropGraph(ctx context.Context, ep *models.Endpoint, graph string) error

	// LoadModel inserts the model into graph and records graph on the endpoint.
	LoadModel(ctx context.Context, ep *models.Endpoint, graph string, model []quad.Quad) error

	// LoadOntologies loads each ontology document into the dataset's
	// ontologies graph and records it on the dataset.
	LoadOntologies(ctx context.Context, dataset *models.Dataset, ep *models.Endpoint, ontologies []string) error

	// ClearOntologies empties the dataset's ontologies graph.
	ClearOntologies(ctx context.Context, dataset *models.Dataset, ep *models.Endpoint) error
}

type graphAdminService struct {
	datasetRepo  repositories.DatasetRepository
	endpointRepo repositories.EndpointRepository
	runner       *EndpointRunner
	serializer   GraphWriter
	metrics      *metrics.EndpointMetrics
	logger       *zap.Logger
}

// NewGraphAdminService creates a new graph administration service.
func NewGraphAdminService(
	datasetRepo repositories.DatasetRepository,
	endpointRepo repositories.EndpointRepository,
	runner *EndpointRunner,
	serializer GraphWriter,
	m *metrics.EndpointMetrics,
	logger *zap.Logger,
) GraphAdminService {
	return &graphAdminService{
		datasetRepo:  datasetRepo,
		endpointRepo: endpointRepo,
		runner:       runner,
		serializer:   serializer,
		metrics:      m,
		logger:       logger.Named("graph-admin"),
	}
}

var _ GraphAdminService = (*graphAdminService)(nil)

// run executes fn against a single endpoint with the runner's error and
// metrics handling.
func (s *graphAdminService) run(ctx context.Context, operation string, ep *models.Endpoint, fn func(ctx context.Context, client endpoint.Client) error) error {
	return s.runner.Run(ctx, operation, []*models.Endpoint{ep}, func(ctx context.Context, _ int, _ *models.Endpoint, client endpoint.Client) error {
		return fn(ctx, client)
	})
}

func (s *graphAdminService) ListGraphs(ctx context.Context, dataset *models.Dataset, ep *models.Endpoint) ([]string, error) {
	scope := endpoint.QueryScope(ep)
	scope.Graphs = nil
	query := queries.ForType(dataset.QueryType).GraphsQuery()

	var graphs []string
	err := s.run(ctx, opListGraphs, ep, func(ctx context.Context, client endpoint.Client) error {
		rows, err := client.Select(ctx, scope, query)
		if err != nil {
			return err
		}
		skip := rowSkipper{operation: opListGraphs, endpoint: ep, metrics: s.metrics, logger: s.logger}
		return eachBinding(rows, func(b endpoint.Binding) {
			graph, present, err := iriTerm(b, "graph")
			if !present {
				return
			}
			if err != nil {
				skip.malformed(graph, err)
				return
			}
			graphs = append(graphs, graph)
		})
	})
	if err != nil {
		return nil, err
	}
	return graphs, nil
}

func (s *graphAdminService) CountGraphTriples(ctx context.Context, ep *models.Endpoint, graph string) (int64, error) {
	if _, err := rdf.ParseURI(graph); err != nil {
		return 0, err
	}
	scope := endpoint.QueryScope(ep)
	scope.Graphs = nil

	var total int64
	err := s.run(ctx, opCountGraphTriples, ep, func(ctx context.Context, client endpoint.Client) error {
		rows, err := client.Select(ctx, scope, queries.CountGraphTriplesQuery(graph))
		if err != nil {
			return err
		}
		var decodeErr error
		err = eachBinding(rows, func(b endpoint.Binding) {
			n, err := intTerm(b, "n")
			if err != nil {
				decodeErr = err
				return
			}
			total += n
		})
		if err != nil {
			return err
		}
		return decodeErr
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *graphAdminService) ClearGraph(ctx context.Context, ep *models.Endpoint, graph string) error {
	return s.update(ctx, opClearGraph, ep, graph, queries.ClearGraphUpdate(graph))
}

func (s *graphAdminService) DropGraph(ctx context.Context, ep *models.Endpoint, graph string) error {
	return s.update(ctx, opDropGraph, ep, graph, queries.DropGraphUpdate(graph))
}

func (s *graphAdminService) update(ctx context.Context, operation string, ep *models.Endpoint, graph, update string) error {
	if err := checkUpdatable(ep, graph); err != nil {
		return err
	}
	err := s.run(ctx, operation, ep, func(ctx context.Context, client endpoint.Client) error {
		return client.Update(ctx, endpoint.UpdateScope(ep), update)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Graph updated",
		zap.String("operation", operation),
		zap.String("endpoint_id", ep.ID.String()),
		zap.String("graph", graph))
	return nil
}

func (s *graphAdminService) LoadModel(ctx context.Context, ep *models.Endpoint, graph string, model []quad.Quad) error {
	if err := checkUpdatable(ep, graph); err != nil {
		return err
	}

	if len(model) > 0 {
		var buf bytes.Buffer
		if err := s.serializer.Write(&buf, model, rdf.FormatNTriples); err != nil {
			return fmt.Errorf("failed to serialize model: %w", err)
		}
		update := queries.InsertDataUpdate(graph, buf.String())
		err := s.run(ctx, opLoadModel, ep, func(ctx context.Context, client endpoint.Client) error {
			return client.Update(ctx, endpoint.UpdateScope(ep), update)
		})
		if err != nil {
			return err
		}
	}

	ep.AddGraph(graph)
	if err := s.endpointRepo.UpdateGraphs(ctx, ep.ID, ep.Graphs); err != nil {
		return fmt.Errorf("failed to record graph on endpoint: %w", err)
	}

	s.logger.Info("Loaded model",
		zap.String("endpoint_id", ep.ID.String()),
		zap.String("graph", graph),
		zap.Int("quads", len(model)))
	return nil
}

func (s *graphAdminService) LoadOntologies(ctx context.Context, dataset *models.Dataset, ep *models.Endpoint, ontologies []string) error {
	graph, err := ontologiesGraph(dataset)
	if err != nil {
		return err
	}
	if err := checkUpdatable(ep, graph); err != nil {
		return err
	}
	for _, ontology := range ontologies {
		if _, err := rdf.ParseURI(ontology); err != nil {
			return fmt.Errorf("invalid ontology: %w", err)
		}
	}

	for _, ontology := range ontologies {
		update := queries.LoadURIUpdate(ontology, graph)
		err := s.run(ctx, opLoadOntologies, ep, func(ctx context.Context, client endpoint.Client) error {
			return client.Update(ctx, endpoint.UpdateScope(ep), update)
		})
		if err != nil {
			return err
		}
		dataset.AddOntology(ontology)
		s.logger.Info("Loaded ontology",
			zap.String("dataset_id", dataset.ID),
			zap.String("ontology", ontology))
	}

	if err := s.datasetRepo.Update(ctx, dataset); err != nil {
		return fmt.Errorf("failed to record ontologies on dataset: %w", err)
	}
	return nil
}

func (s *graphAdminService) ClearOntologies(ctx context.Context, dataset *models.Dataset, ep *models.Endpoint) error {
	graph, err := ontologiesGraph(dataset)
	if err != nil {
		return err
	}
	return s.update(ctx, opClearOntologies, ep, graph, queries.ClearGraphUpdate(graph))
}

func ontologiesGraph(dataset *models.Dataset) (string, error) {
	if dataset.OntologiesGraph == "" {
		return "", fmt.Errorf("%w: dataset %s has no ontologies graph", apperrors.ErrInvalidArgument, dataset.ID)
	}
	return dataset.OntologiesGraph, nil
}

func checkUpdatable(ep *models.Endpoint, graph string) error {
	if !ep.Writable {
		return fmt.Errorf("%w: endpoint %s is not writable", apperrors.ErrInvalidArgument, ep.ID)
	}
	if _, err := rdf.ParseURI(graph); err != nil {
		return err
	}
	return nil
}
