package endpoint

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
)

// ClientFactory creates clients from the registry.
type ClientFactory interface {
	// NewClient creates a client for the given endpoint type, wrapped with
	// the configured timeout, retry and rate-limit policy.
	NewClient(ctx context.Context, clientType string) (Client, error)

	// ListTypes returns info for all registered client types.
	ListTypes() []ClientInfo
}

type registryFactory struct {
	cfg      ClientConfig
	limiters *limiterSet
	logger   *zap.Logger
}

// NewClientFactory returns a factory that uses the global registry.
// Rate limits are shared by every client the factory creates.
func NewClientFactory(cfg ClientConfig, logger *zap.Logger) ClientFactory {
	return &registryFactory{
		cfg:      cfg,
		limiters: newLimiterSet(cfg.RequestsPerSecond, cfg.Burst),
		logger:   logger.Named("endpoint-client"),
	}
}

func (f *registryFactory) NewClient(ctx context.Context, clientType string) (Client, error) {
	if clientType == "" {
		clientType = DefaultType
	}
	factory := GetFactory(clientType)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s (not compiled in)", apperrors.ErrUnsupportedEndpointType, clientType)
	}

	inner, err := factory(ctx, f.cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", clientType, err)
	}
	return newPolicyClient(inner, f.cfg, f.limiters, f.logger), nil
}

func (f *registryFactory) ListTypes() []ClientInfo {
	return RegisteredClients()
}

// Ensure registryFactory implements ClientFactory at compile time.
var _ ClientFactory = (*registryFactory)(nil)
