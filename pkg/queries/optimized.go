package queries

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
)

// Optimized favours response time: facet statistics come from a sample of
// instances and are extrapolated, and instance pages are not ordered.
type Optimized struct{}

func (Optimized) ClassesQuery() string {
	return `SELECT ?class (COUNT(?instance) AS ?n)
WHERE { ?instance a ?class . FILTER(isIRI(?class)) }
GROUP BY ?class
`
}

// SampleLimit returns how many instances are inspected for facet detection,
// or 0 when every instance is. Classes no larger than sampleSize are scanned
// fully; larger ones are sampled at max(sampleSize, coverage × count).
func SampleLimit(sampleSize int, instanceCount int64, coverage float64) int64 {
	if sampleSize <= 0 || instanceCount <= int64(sampleSize) {
		return 0
	}
	limit := int64(sampleSize)
	if coverage > 0 {
		if byCoverage := int64(math.Ceil(float64(instanceCount) * coverage)); byCoverage > limit {
			limit = byCoverage
		}
	}
	if limit >= instanceCount {
		return 0
	}
	return limit
}

func (Optimized) ClassFacetsQuery(classURI string, sampleSize int, instanceCount int64, coverage float64) string {
	limit := SampleLimit(sampleSize, instanceCount, coverage)

	uses := "COUNT(DISTINCT ?instance)"
	if limit > 0 {
		factor := float64(instanceCount) / float64(limit)
		uses = fmt.Sprintf("xsd:integer(ROUND(COUNT(DISTINCT ?instance) * %s))", strconv.FormatFloat(factor, 'f', 6, 64))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PREFIX xsd: <%s>\n", rdf.XSDNamespace)
	fmt.Fprintf(&b, "SELECT ?property ?range (%s AS ?uses) (COUNT(DISTINCT ?object) AS ?values) (MIN(?literal) AS ?allLiteral)\nWHERE {\n", uses)
	if limit > 0 {
		fmt.Fprintf(&b, "  { SELECT ?instance WHERE { ?instance a %s } LIMIT %d }\n", iri(classURI), limit)
	} else {
		fmt.Fprintf(&b, "  ?instance a %s .\n", iri(classURI))
	}
	b.WriteString("  ?instance ?property ?object .\n")
	b.WriteString("  BIND(IF(isLiteral(?object), 1, 0) AS ?literal)\n")
	b.WriteString("  OPTIONAL { ?object a ?type }\n")
	fmt.Fprintf(&b, "  BIND(IF(isLiteral(?object), datatype(?object), COALESCE(?type, %s)) AS ?range)\n", iri(rdf.RDFSResource))
	b.WriteString("}\nGROUP BY ?property ?range\n")
	return b.String()
}

func (Optimized) FacetRangeValuesQuery(classURI, facetURI, rangeURI string, filters models.Filters, allLiteral bool, limit, offset int) string {
	return valuesQuery(classURI, facetURI, rangeURI, filters, allLiteral, false, limit, offset)
}

func (Optimized) FacetRangeValuesContainingQuery(classURI, facetURI, rangeURI string, filters models.Filters, allLiteral bool, substring string, top int) string {
	return valuesContainingQuery(classURI, facetURI, rangeURI, filters, allLiteral, substring, top)
}

func (Optimized) GraphsQuery() string {
	return graphsQuery
}

func (Optimized) ClassInstancesQuery(classURI string, filters models.Filters, limit, offset int) string {
	return "CONSTRUCT { ?instance ?p ?o }\nWHERE {\n" +
		instancesSubquery(classURI, filters, false, limit, offset) +
		"  ?instance ?p ?o .\n}\n"
}

func (Optimized) ClassInstancesLabelsQuery(classURI string, filters models.Filters, limit, offset int) string {
	label := iri(rdf.RDFSLabel)
	return "CONSTRUCT { ?o " + label + " ?label }\nWHERE {\n" +
		instancesSubquery(classURI, filters, false, limit, offset) +
		"  ?instance ?p ?o .\n  ?o " + label + " ?label .\n}\n"
}

func (Optimized) ClassInstancesCountQuery(classURI string, filters models.Filters) string {
	return instancesCountQuery(classURI, filters)
}

func (Optimized) DescribeResourceQuery(uri string) string {
	return describeQuery(uri)
}

func (Optimized) DescribeResourceLabelsQuery(uri string) string {
	return describeLabelsQuery(uri)
}
