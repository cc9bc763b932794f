package queries

import (
	"fmt"
	"strings"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
)

// Detailed scans every instance and counts distinct instances. Sampling
// parameters are accepted and ignored.
type Detailed struct{}

func (Detailed) ClassesQuery() string {
	return `SELECT ?class (COUNT(DISTINCT ?instance) AS ?n)
WHERE { ?instance a ?class . FILTER(isIRI(?class)) }
GROUP BY ?class
`
}

func (Detailed) ClassFacetsQuery(classURI string, _ int, _ int64, _ float64) string {
	var b strings.Builder
	b.WriteString("SELECT ?property ?range (COUNT(DISTINCT ?instance) AS ?uses) (COUNT(DISTINCT ?object) AS ?values)")
	b.WriteString(" (IF(SUM(IF(isLiteral(?object), 0, 1)) = 0, true, false) AS ?allLiteral)\nWHERE {\n")
	fmt.Fprintf(&b, "  ?instance a %s ; ?property ?object .\n", iri(classURI))
	b.WriteString("  OPTIONAL { ?object a ?type }\n")
	fmt.Fprintf(&b, "  BIND(IF(isLiteral(?object), datatype(?object), COALESCE(?type, %s)) AS ?range)\n", iri(rdf.RDFSResource))
	b.WriteString("}\nGROUP BY ?property ?range\n")
	return b.String()
}

func (Detailed) FacetRangeValuesQuery(classURI, facetURI, rangeURI string, filters models.Filters, allLiteral bool, limit, offset int) string {
	return valuesQuery(classURI, facetURI, rangeURI, filters, allLiteral, true, limit, offset)
}

func (Detailed) FacetRangeValuesContainingQuery(classURI, facetURI, rangeURI string, filters models.Filters, allLiteral bool, substring string, top int) string {
	return valuesContainingQuery(classURI, facetURI, rangeURI, filters, allLiteral, substring, top)
}

func (Detailed) GraphsQuery() string {
	return graphsQuery
}

func (Detailed) ClassInstancesQuery(classURI string, filters models.Filters, limit, offset int) string {
	return "DESCRIBE ?instance\nWHERE {\n" +
		instancesSubquery(classURI, filters, true, limit, offset) +
		"}\n"
}

// ClassInstancesLabelsQuery also labels the properties used by the page.
func (Detailed) ClassInstancesLabelsQuery(classURI string, filters models.Filters, limit, offset int) string {
	label := iri(rdf.RDFSLabel)
	return "CONSTRUCT { ?x " + label + " ?label }\nWHERE {\n" +
		instancesSubquery(classURI, filters, true, limit, offset) +
		"  { ?instance ?x ?o } UNION { ?instance ?p ?x FILTER(isIRI(?x)) }\n" +
		"  ?x " + label + " ?label .\n}\n"
}

func (Detailed) ClassInstancesCountQuery(classURI string, filters models.Filters) string {
	return instancesCountQuery(classURI, filters)
}

func (Detailed) DescribeResourceQuery(uri string) string {
	return describeQuery(uri)
}

func (Detailed) DescribeResourceLabelsQuery(uri string) string {
	return describeLabelsQuery(uri)
}
