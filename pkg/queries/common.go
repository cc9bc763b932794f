package queries

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
)

const graphsQuery = `SELECT DISTINCT ?graph
WHERE { GRAPH ?graph { ?s ?p ?o } }
`

var lower = cases.Lower(language.Und)

func countAggregate(distinct bool, v string) string {
	if distinct {
		return "COUNT(DISTINCT " + v + ")"
	}
	return "COUNT(" + v + ")"
}

// valuesQuery groups values in an inner select so that multiple labels per
// value cannot inflate the counts.
func valuesQuery(classURI, facetURI, rangeURI string, filters models.Filters, allLiteral bool, distinct bool, limit, offset int) string {
	var b strings.Builder
	b.WriteString("SELECT ?value ?count (SAMPLE(?l) AS ?label)\nWHERE {\n")
	fmt.Fprintf(&b, "  { SELECT ?value (%s AS ?count)\n  WHERE {\n", countAggregate(distinct, "?instance"))
	fmt.Fprintf(&b, "  ?instance a %s ; %s ?value .\n", iri(classURI), iri(facetURI))
	b.WriteString(rangePattern(rangeURI, allLiteral))
	b.WriteString(filterPatterns("?instance", filters))
	b.WriteString("  }\n  GROUP BY ?value\n  ORDER BY DESC(?count)\n")
	b.WriteString(pagination(limit, offset))
	b.WriteString("  }\n")
	if !allLiteral {
		fmt.Fprintf(&b, "  OPTIONAL { ?value %s ?l }\n", iri(rdf.RDFSLabel))
	}
	b.WriteString("}\nGROUP BY ?value ?count\nORDER BY DESC(?count)\n")
	return b.String()
}

func valuesContainingQuery(classURI, facetURI, rangeURI string, filters models.Filters, allLiteral bool, substring string, top int) string {
	needle := literal(lower.String(substring))

	var b strings.Builder
	if allLiteral {
		b.WriteString("SELECT DISTINCT ?value\nWHERE {\n")
	} else {
		b.WriteString("SELECT ?value (SAMPLE(?l) AS ?label)\nWHERE {\n")
	}
	fmt.Fprintf(&b, "  ?instance a %s ; %s ?value .\n", iri(classURI), iri(facetURI))
	b.WriteString(rangePattern(rangeURI, allLiteral))
	b.WriteString(filterPatterns("?instance", filters))
	if allLiteral {
		fmt.Fprintf(&b, "  FILTER(CONTAINS(LCASE(STR(?value)), %s))\n}\n", needle)
	} else {
		fmt.Fprintf(&b, "  OPTIONAL { ?value %s ?l }\n", iri(rdf.RDFSLabel))
		fmt.Fprintf(&b, "  FILTER(CONTAINS(LCASE(STR(?value)), %s) || CONTAINS(LCASE(STR(?l)), %s))\n}\n", needle, needle)
		b.WriteString("GROUP BY ?value\n")
	}
	b.WriteString(pagination(top, 0))
	return b.String()
}

func instancesCountQuery(classURI string, filters models.Filters) string {
	var b strings.Builder
	b.WriteString("SELECT (COUNT(DISTINCT ?instance) AS ?n)\nWHERE {\n")
	fmt.Fprintf(&b, "  ?instance a %s .\n", iri(classURI))
	b.WriteString(filterPatterns("?instance", filters))
	b.WriteString("}\n")
	return b.String()
}

func describeQuery(uri string) string {
	return "DESCRIBE " + iri(uri) + "\n"
}

// describeLabelsQuery collects labels of the resource's properties and of
// the resources it links to.
func describeLabelsQuery(uri string) string {
	label := iri(rdf.RDFSLabel)
	return fmt.Sprintf(`CONSTRUCT { ?x %[2]s ?label }
WHERE {
  { %[1]s ?x ?o } UNION { %[1]s ?p ?x FILTER(isIRI(?x)) }
  ?x %[2]s ?label .
}
`, iri(uri), label)
}
