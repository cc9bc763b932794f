package services

import (
	"context"
	"errors"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/adapters/endpoint"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
)

type graphAdminFixture struct {
	client       *fakeClient
	datasetRepo  *memoryDatasetRepo
	endpointRepo *memoryEndpointRepo
	svc          GraphAdminService
}

func newGraphAdminFixture() *graphAdminFixture {
	f := &graphAdminFixture{
		client:       newFakeClient(),
		datasetRepo:  &memoryDatasetRepo{},
		endpointRepo: &memoryEndpointRepo{},
	}
	f.svc = NewGraphAdminService(f.datasetRepo, f.endpointRepo, newTestRunner(f.client), rdf.NewSerializer(nil), nil, zap.NewNop())
	return f
}

func TestListGraphs_UnrestrictedScope(t *testing.T) {
	f := newGraphAdminFixture()
	f.client.serve("http://a/sparql", &fakeServer{rows: []endpoint.Binding{
		{"graph": quad.IRI(ex("g1"))},
		{"graph": quad.IRI("bad graph")},
		{"graph": quad.IRI(ex("g2"))},
	}})
	ds := newTestDataset("http://a/sparql")

	graphs, err := f.svc.ListGraphs(context.Background(), ds, ds.Endpoints[0])
	require.NoError(t, err)
	assert.Equal(t, []string{ex("g1"), ex("g2")}, graphs)

	selects := f.client.callsOf("select", "")
	require.Len(t, selects, 1)
	assert.Empty(t, selects[0].scope.Graphs)
}

func TestCountGraphTriples(t *testing.T) {
	f := newGraphAdminFixture()
	f.client.serve("http://a/sparql", &fakeServer{rows: []endpoint.Binding{{"n": integer("1234")}}})
	ds := newTestDataset("http://a/sparql")

	n, err := f.svc.CountGraphTriples(context.Background(), ds.Endpoints[0], ex("g1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1234), n)

	selects := f.client.callsOf("select", "")
	require.Len(t, selects, 1)
	assert.Contains(t, selects[0].text, "GRAPH <"+ex("g1")+">")
}

func TestClearAndDropGraph_UseUpdateScope(t *testing.T) {
	f := newGraphAdminFixture()
	f.client.serve("http://a/update", &fakeServer{})
	ds := newTestDataset("http://a/sparql")
	ep := ds.Endpoints[0]
	ep.UpdateURL = "http://a/update"
	ep.UpdateUsername = "admin"
	ep.UpdatePassword = "secret"

	require.NoError(t, f.svc.ClearGraph(context.Background(), ep, ex("g1")))
	require.NoError(t, f.svc.DropGraph(context.Background(), ep, ex("g1")))

	updates := f.client.callsOf("update", "http://a/update")
	require.Len(t, updates, 2)
	assert.Equal(t, "CLEAR SILENT GRAPH <"+ex("g1")+">", updates[0].text)
	assert.Equal(t, "DROP SILENT GRAPH <"+ex("g1")+">", updates[1].text)
	require.NotNil(t, updates[0].scope.Credentials)
	assert.Equal(t, "admin", updates[0].scope.Credentials.Username)
}

func TestClearGraph_ReadOnlyEndpoint(t *testing.T) {
	f := newGraphAdminFixture()
	ds := newTestDataset("http://a/sparql")
	ds.Endpoints[0].Writable = false

	err := f.svc.ClearGraph(context.Background(), ds.Endpoints[0], ex("g1"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
	assert.Empty(t, f.client.callsOf("update", ""))
}

func TestLoadModel_RecordsGraph(t *testing.T) {
	f := newGraphAdminFixture()
	f.client.serve("http://a/sparql", &fakeServer{})
	ds := newTestDataset("http://a/sparql")
	ep := ds.Endpoints[0]
	model := []quad.Quad{{Subject: quad.IRI(ex("alice")), Predicate: quad.IRI(rdf.RDFSLabel), Object: quad.String("Alice")}}

	require.NoError(t, f.svc.LoadModel(context.Background(), ep, ex("people"), model))

	updates := f.client.callsOf("update", "")
	require.Len(t, updates, 1)
	assert.Contains(t, updates[0].text, "INSERT DATA { GRAPH <"+ex("people")+">")
	assert.Contains(t, updates[0].text, `<`+ex("alice")+`> <`+rdf.RDFSLabel+`> "Alice" .`)

	assert.Equal(t, []string{ex("graph"), ex("people")}, ep.Graphs)
	assert.Equal(t, ep.Graphs, f.endpointRepo.updatedGraphs[ep.ID])
}

func TestLoadModel_UpdateFailureLeavesEndpoint(t *testing.T) {
	f := newGraphAdminFixture()
	f.client.serve("http://a/sparql", &fakeServer{updateErr: errors.New("HTTP 403")})
	ds := newTestDataset("http://a/sparql")
	ep := ds.Endpoints[0]
	model := []quad.Quad{{Subject: quad.IRI(ex("alice")), Predicate: quad.IRI(rdf.RDFSLabel), Object: quad.String("Alice")}}

	err := f.svc.LoadModel(context.Background(), ep, ex("people"), model)
	_, ok := apperrors.AsEndpointError(err)
	require.True(t, ok)
	assert.Equal(t, []string{ex("graph")}, ep.Graphs)
	assert.Nil(t, f.endpointRepo.updatedGraphs)
}

func TestLoadOntologies(t *testing.T) {
	f := newGraphAdminFixture()
	f.client.serve("http://a/sparql", &fakeServer{})
	ds := newTestDataset("http://a/sparql")
	ds.OntologiesGraph = ex("ontologies")
	ontologies := []string{"http://xmlns.com/foaf/0.1/", "http://schema.org/"}

	require.NoError(t, f.svc.LoadOntologies(context.Background(), ds, ds.Endpoints[0], ontologies))

	updates := f.client.callsOf("update", "")
	require.Len(t, updates, 2)
	assert.Equal(t, "LOAD SILENT <http://xmlns.com/foaf/0.1/> INTO GRAPH <"+ex("ontologies")+">", updates[0].text)
	assert.Equal(t, ontologies, ds.Ontologies)
	assert.Same(t, ds, f.datasetRepo.updated)
}

func TestLoadOntologies_RequiresOntologiesGraph(t *testing.T) {
	f := newGraphAdminFixture()
	ds := newTestDataset("http://a/sparql")

	err := f.svc.LoadOntologies(context.Background(), ds, ds.Endpoints[0], []string{"http://schema.org/"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
}

func TestClearOntologies(t *testing.T) {
	f := newGraphAdminFixture()
	f.client.serve("http://a/sparql", &fakeServer{})
	ds := newTestDataset("http://a/sparql")
	ds.OntologiesGraph = ex("ontologies")

	require.NoError(t, f.svc.ClearOntologies(context.Background(), ds, ds.Endpoints[0]))

	updates := f.client.callsOf("update", "")
	require.Len(t, updates, 1)
	assert.Equal(t, "CLEAR SILENT GRAPH <"+ex("ontologies")+">", updates[0].text)
}
