package endpoint

import (
	"context"
	"sync"
	"time"

	"github.com/cayleygraph/quad"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/logging"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/retry"
)

// policyClient applies timeout, retry and rate limiting around a Client.
type policyClient struct {
	inner    Client
	timeout  time.Duration
	retry    *retry.Config
	limiters *limiterSet
	logger   *zap.Logger
}

func newPolicyClient(inner Client, cfg ClientConfig, limiters *limiterSet, logger *zap.Logger) *policyClient {
	return &policyClient{
		inner:    inner,
		timeout:  cfg.Timeout,
		retry:    cfg.Retry,
		limiters: limiters,
		logger:   logger,
	}
}

func (c *policyClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Select keeps the call's deadline alive until the rows are closed.
func (c *policyClient) Select(ctx context.Context, scope Scope, query string) (Rows, error) {
	ctx, cancel := c.withTimeout(ctx)
	rows, err := retry.Do(ctx, c.retry, func(ctx context.Context) (Rows, error) {
		if err := c.limiters.wait(ctx, scope.URL); err != nil {
			return nil, err
		}
		return c.inner.Select(ctx, scope, query)
	})
	if err != nil {
		cancel()
		c.logFailure("select", scope, query, err)
		return nil, err
	}
	return &cancelRows{Rows: rows, cancel: cancel}, nil
}

func (c *policyClient) Describe(ctx context.Context, scope Scope, query string) ([]quad.Quad, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	graph, err := retry.Do(ctx, c.retry, func(ctx context.Context) ([]quad.Quad, error) {
		if err := c.limiters.wait(ctx, scope.URL); err != nil {
			return nil, err
		}
		return c.inner.Describe(ctx, scope, query)
	})
	if err != nil {
		c.logFailure("describe", scope, query, err)
	}
	return graph, err
}

func (c *policyClient) Update(ctx context.Context, scope Scope, update string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := retry.Do(ctx, c.retry, func(ctx context.Context) (struct{}, error) {
		if err := c.limiters.wait(ctx, scope.URL); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, c.inner.Update(ctx, scope, update)
	})
	if err != nil {
		c.logFailure("update", scope, update, err)
	}
	return err
}

func (c *policyClient) logFailure(op string, scope Scope, text string, err error) {
	c.logger.Debug("Endpoint call failed",
		zap.String("operation", op),
		zap.String("url", logging.SanitizeURL(scope.URL)),
		zap.String("query", logging.SanitizeQuery(text)),
		zap.String("error", logging.SanitizeError(err)))
}

type cancelRows struct {
	Rows
	cancel context.CancelFunc
}

func (r *cancelRows) Close() error {
	err := r.Rows.Close()
	r.cancel()
	return err
}

// limiterSet holds one token bucket per endpoint URL.
type limiterSet struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	byURL map[string]*rate.Limiter
}

func newLimiterSet(perSecond float64, burst int) *limiterSet {
	if burst < 1 {
		burst = 1
	}
	return &limiterSet{
		limit: rate.Limit(perSecond),
		burst: burst,
		byURL: make(map[string]*rate.Limiter),
	}
}

func (s *limiterSet) wait(ctx context.Context, url string) error {
	if s == nil || s.limit <= 0 {
		return nil
	}
	return s.get(url).Wait(ctx)
}

func (s *limiterSet) get(url string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.byURL[url]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.byURL[url] = l
	}
	return l
}

var _ Client = (*policyClient)(nil)
