package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/adapters/endpoint"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/logging"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/metrics"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
)

// endpointFunc runs one endpoint's share of an operation. i is the
// endpoint's position; implementations store their partial result in slot i
// of a caller-owned slice so no locking is needed.
type endpointFunc func(ctx context.Context, i int, ep *models.Endpoint, client endpoint.Client) error

// EndpointRunner fans an operation out to every endpoint of a dataset and
// joins before returning.
type EndpointRunner struct {
	clients        endpoint.ClientFactory
	maxConcurrency int
	metrics        *metrics.EndpointMetrics
	logger         *zap.Logger
}

// NewEndpointRunner creates a runner. maxConcurrency <= 0 means unbounded.
func NewEndpointRunner(clients endpoint.ClientFactory, maxConcurrency int, m *metrics.EndpointMetrics, logger *zap.Logger) *EndpointRunner {
	return &EndpointRunner{
		clients:        clients,
		maxConcurrency: maxConcurrency,
		metrics:        m,
		logger:         logger.Named("endpoint-runner"),
	}
}

// Run calls fn once per endpoint with a fresh client. The first failure
// cancels the endpoints still running and is returned as an
// *apperrors.EndpointError naming the endpoint and operation.
func (r *EndpointRunner) Run(ctx context.Context, operation string, endpoints []*models.Endpoint, fn endpointFunc) error {
	g, gctx := errgroup.WithContext(ctx)
	if r.maxConcurrency > 0 {
		g.SetLimit(r.maxConcurrency)
	}

	for i, ep := range endpoints {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			err := r.runOne(gctx, i, ep, fn)
			r.metrics.Observe(operation, start, err)
			if err != nil {
				return r.endpointError(operation, ep, err)
			}
			return nil
		})
	}

	return g.Wait()
}

func (r *EndpointRunner) runOne(ctx context.Context, i int, ep *models.Endpoint, fn endpointFunc) error {
	client, err := r.clients.NewClient(ctx, ep.Type)
	if err != nil {
		return err
	}
	return fn(ctx, i, ep, client)
}

func (r *EndpointRunner) endpointError(operation string, ep *models.Endpoint, err error) error {
	if _, ok := apperrors.AsEndpointError(err); ok {
		return err
	}

	url := logging.SanitizeURL(ep.QueryURL)
	r.logger.Error("Endpoint operation failed",
		zap.String("operation", operation),
		zap.String("endpoint_id", ep.ID.String()),
		zap.String("url", url),
		zap.String("error", logging.SanitizeError(err)))

	return &apperrors.EndpointError{
		EndpointID: ep.ID.String(),
		URL:        url,
		Operation:  operation,
		Err:        err,
	}
}
