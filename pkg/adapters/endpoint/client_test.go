package endpoint

import (
	"context"
	"errors"
	"sync"

	"github.com/cayleygraph/quad"
)

// scriptedClient replays queued results and records every call.
type scriptedClient struct {
	mu      sync.Mutex
	calls   int
	selects []func(ctx context.Context) (Rows, error)
	lastCtx context.Context
	updates []string
}

func (c *scriptedClient) Select(ctx context.Context, scope Scope, query string) (Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	c.lastCtx = ctx
	if len(c.selects) == 0 {
		return nil, errors.New("no scripted result")
	}
	next := c.selects[0]
	if len(c.selects) > 1 {
		c.selects = c.selects[1:]
	}
	return next(ctx)
}

// Describe blocks until the call's context is done.
func (c *scriptedClient) Describe(ctx context.Context, scope Scope, query string) ([]quad.Quad, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *scriptedClient) Update(ctx context.Context, scope Scope, update string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	c.updates = append(c.updates, update)
	return nil
}

func rowsResult(bindings ...Binding) func(context.Context) (Rows, error) {
	return func(context.Context) (Rows, error) { return NewRows(bindings), nil }
}

func errResult(err error) func(context.Context) (Rows, error) {
	return func(context.Context) (Rows, error) { return nil, err }
}
