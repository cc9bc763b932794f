package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/cayleygraph/quad"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/adapters/endpoint"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
)

// fakeServer is the scripted content of one endpoint URL.
type fakeServer struct {
	rows      []endpoint.Binding
	graph     []quad.Quad
	err       error
	updateErr error
}

type recordedCall struct {
	kind  string
	scope endpoint.Scope
	text  string
}

// fakeClient answers every call from the fakeServer registered for the
// scope URL and records what it was asked.
type fakeClient struct {
	mu      sync.Mutex
	servers map[string]*fakeServer
	calls   []recordedCall
}

func newFakeClient() *fakeClient {
	return &fakeClient{servers: make(map[string]*fakeServer)}
}

func (c *fakeClient) serve(url string, s *fakeServer) {
	c.servers[url] = s
}

func (c *fakeClient) record(kind string, scope endpoint.Scope, text string) (*fakeServer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, recordedCall{kind: kind, scope: scope, text: text})
	s, ok := c.servers[scope.URL]
	if !ok {
		return nil, errors.New("connection refused: " + scope.URL)
	}
	return s, nil
}

func (c *fakeClient) Select(ctx context.Context, scope endpoint.Scope, query string) (endpoint.Rows, error) {
	s, err := c.record("select", scope, query)
	if err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return endpoint.NewRows(s.rows), nil
}

func (c *fakeClient) Describe(ctx context.Context, scope endpoint.Scope, query string) ([]quad.Quad, error) {
	s, err := c.record("describe", scope, query)
	if err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.graph, nil
}

func (c *fakeClient) Update(ctx context.Context, scope endpoint.Scope, update string) error {
	s, err := c.record("update", scope, update)
	if err != nil {
		return err
	}
	return s.updateErr
}

// callsOf returns the recorded calls of one kind, optionally restricted to a URL.
func (c *fakeClient) callsOf(kind, url string) []recordedCall {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []recordedCall
	for _, call := range c.calls {
		if call.kind == kind && (url == "" || call.scope.URL == url) {
			out = append(out, call)
		}
	}
	return out
}

// fakeFactory hands out the same fakeClient for every endpoint type.
type fakeFactory struct {
	client *fakeClient
}

func (f fakeFactory) NewClient(ctx context.Context, clientType string) (endpoint.Client, error) {
	return f.client, nil
}

func (f fakeFactory) ListTypes() []endpoint.ClientInfo {
	return nil
}

func newTestRunner(client *fakeClient) *EndpointRunner {
	return NewEndpointRunner(fakeFactory{client: client}, 4, nil, zap.NewNop())
}

// stubLabels abbreviates the ex: namespace only.
type stubLabels struct{}

func (stubLabels) Abbreviate(uri string) (string, bool) {
	if strings.HasPrefix(uri, exNS) {
		return "ex:" + strings.TrimPrefix(uri, exNS), true
	}
	return "", false
}

func (stubLabels) LocalName(uri string) string {
	return rdf.LocalName(uri)
}

const exNS = "http://example.org/"

func ex(local string) string {
	return exNS + local
}

func newTestEndpoint(datasetID, url string) *models.Endpoint {
	return &models.Endpoint{
		ID:        uuid.New(),
		DatasetID: datasetID,
		Type:      endpoint.DefaultType,
		QueryURL:  url,
		Writable:  true,
		Graphs:    []string{ex("graph")},
	}
}

func newTestDataset(urls ...string) *models.Dataset {
	ds := &models.Dataset{
		ID:         "people",
		QueryType:  models.QueryTypeOptimized,
		SampleSize: 100,
		Coverage:   0.5,
	}
	ds.Endpoints = []*models.Endpoint{}
	for _, url := range urls {
		ds.Endpoints = append(ds.Endpoints, newTestEndpoint(ds.ID, url))
	}
	return ds
}

func integer(n string) quad.Value {
	return quad.TypedString{Value: quad.String(n), Type: quad.IRI(rdf.XSDInteger)}
}

func classRow(uri string, n string) endpoint.Binding {
	return endpoint.Binding{"class": quad.IRI(uri), "n": integer(n)}
}

func facetRow(property, rng, uses, values string, allLiteral quad.Value) endpoint.Binding {
	b := endpoint.Binding{
		"property": quad.IRI(property),
		"uses":     integer(uses),
		"values":   integer(values),
	}
	if rng != "" {
		b["range"] = quad.IRI(rng)
	}
	if allLiteral != nil {
		b["allLiteral"] = allLiteral
	}
	return b
}
