package queries

import (
	"fmt"
	"strings"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
)

// CountGraphTriplesQuery counts the triples in a named graph as ?n.
func CountGraphTriplesQuery(graph string) string {
	return fmt.Sprintf("SELECT (COUNT(*) AS ?n)\nWHERE { GRAPH %s { ?s ?p ?o } }\n", iri(graph))
}

func ClearGraphUpdate(graph string) string {
	return "CLEAR SILENT GRAPH " + iri(graph)
}

func DropGraphUpdate(graph string) string {
	return "DROP SILENT GRAPH " + iri(graph)
}

// LoadURIUpdate asks the endpoint to fetch a remote document into a graph.
func LoadURIUpdate(document, graph string) string {
	return fmt.Sprintf("LOAD SILENT %s INTO GRAPH %s", iri(document), iri(graph))
}

// InsertDataUpdate inserts N-Triples text into a graph.
func InsertDataUpdate(graph, ntriples string) string {
	return fmt.Sprintf("INSERT DATA { GRAPH %s {\n%s} }", iri(graph), ntriples)
}

// InferTypesUpdate materializes super-class memberships of every typed
// instance in the source graphs into the inference graph.
func InferTypesUpdate(inferenceGraph string, sourceGraphs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT { GRAPH %s { ?instance a ?super } }\n", iri(inferenceGraph))
	for _, g := range sourceGraphs {
		fmt.Fprintf(&b, "USING %s\n", iri(g))
	}
	fmt.Fprintf(&b, "WHERE {\n  ?instance a ?class .\n  ?class %s+ ?super .\n  FILTER(isIRI(?super))\n}", iri(rdf.RDFSSubClassOf))
	return b.String()
}
