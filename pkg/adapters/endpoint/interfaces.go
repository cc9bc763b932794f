// Package endpoint defines the client contract for remote RDF query
// endpoints and the registry through which implementations are selected.
package endpoint

import (
	"context"

	"github.com/cayleygraph/quad"
)

// Binding is one result row of a select query, keyed by variable name.
// Unbound variables are absent from the map.
type Binding map[string]quad.Value

// Rows iterates over the bindings of a select query.
// Callers must Close rows when done, including after an error.
type Rows interface {
	Next() bool
	Binding() Binding
	Err() error
	Close() error
}

// Client executes query and update text against a remote endpoint.
// Implementations own the wire protocol; every call is scoped to a single
// URL, graph set and optional credential pair.
type Client interface {
	// Select runs a tabular query and returns its rows lazily.
	Select(ctx context.Context, scope Scope, query string) (Rows, error)

	// Describe runs a graph-shaped query (CONSTRUCT or DESCRIBE).
	Describe(ctx context.Context, scope Scope, query string) ([]quad.Quad, error)

	// Update runs an update request (INSERT, LOAD, CLEAR, DROP).
	Update(ctx context.Context, scope Scope, update string) error
}

// Credentials authenticate a single request.
type Credentials struct {
	Username string
	Password string
}

// Scope is the per-call target of a client request.
// Graphs restricts a query to the named graphs; empty means the default graph.
type Scope struct {
	URL         string
	Graphs      []string
	Credentials *Credentials
}

// Authenticated reports whether the scope carries credentials.
func (s Scope) Authenticated() bool {
	return s.Credentials != nil
}
