package queries

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
)

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func iri(uri string) string {
	return "<" + uri + ">"
}

func literal(s string) string {
	return `"` + literalEscaper.Replace(s) + `"`
}

// filterTerm renders an accepted filter value. "<...>" is an IRI, a double
// quoted value is always a literal, anything else is an IRI when it parses
// as one.
func filterTerm(v string) (term string, isIRI bool) {
	if len(v) >= 2 && strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") {
		if inner := v[1 : len(v)-1]; rdf.IsURI(inner) {
			return iri(inner), true
		}
	}
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return literal(v[1 : len(v)-1]), false
	}
	if rdf.IsURI(v) {
		return iri(v), true
	}
	return literal(v), false
}

// filterPatterns constrains subject to the accepted values of every filtered
// facet. Values within a facet are alternatives; facets are conjunctive.
func filterPatterns(subject string, filters models.Filters) string {
	var b strings.Builder
	for i, facet := range filters.FacetURIs() {
		v := fmt.Sprintf("?f%d", i)
		fmt.Fprintf(&b, "  %s %s %s .\n", subject, iri(facet), v)

		alternatives := make([]string, 0, len(filters[facet]))
		for _, value := range filters[facet] {
			term, isIRI := filterTerm(value)
			if isIRI {
				alternatives = append(alternatives, v+" = "+term)
			} else {
				alternatives = append(alternatives, "STR("+v+") = "+term)
			}
		}
		fmt.Fprintf(&b, "  FILTER(%s)\n", strings.Join(alternatives, " || "))
	}
	return b.String()
}

// rangePattern restricts ?value to the range: a datatype for literal
// ranges, a class membership otherwise. rdfs:Resource is the range facet
// detection assigns to resources without any other type, so it matches
// those instead of an asserted rdfs:Resource type.
func rangePattern(rangeURI string, allLiteral bool) string {
	if allLiteral {
		return fmt.Sprintf("  FILTER(datatype(?value) = %s)\n", iri(rangeURI))
	}
	if rangeURI == rdf.RDFSResource {
		return "  FILTER(!isLiteral(?value))\n" +
			fmt.Sprintf("  FILTER NOT EXISTS { ?value a ?valueType FILTER(?valueType != %s) }\n", iri(rdf.RDFSResource))
	}
	return fmt.Sprintf("  ?value a %s .\n", iri(rangeURI))
}

func pagination(limit, offset int) string {
	var b strings.Builder
	if limit > 0 {
		b.WriteString("LIMIT " + strconv.Itoa(limit) + "\n")
	}
	if offset > 0 {
		b.WriteString("OFFSET " + strconv.Itoa(offset) + "\n")
	}
	return b.String()
}

func instancesSubquery(classURI string, filters models.Filters, ordered bool, limit, offset int) string {
	var b strings.Builder
	b.WriteString("  { SELECT DISTINCT ?instance WHERE {\n")
	fmt.Fprintf(&b, "  ?instance a %s .\n", iri(classURI))
	b.WriteString(filterPatterns("?instance", filters))
	b.WriteString("  }\n")
	if ordered {
		b.WriteString("  ORDER BY ?instance\n")
	}
	b.WriteString(pagination(limit, offset))
	b.WriteString("  }\n")
	return b.String()
}
