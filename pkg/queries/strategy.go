// Package queries builds the SPARQL text issued against dataset endpoints.
//
// Two strategies share one contract. Optimized samples instances and skips
// ordering where it can; Detailed scans every instance exhaustively. Both
// produce rows with the same variable names so decoding is strategy-agnostic:
//
//	classes:  ?class ?n
//	facets:   ?property ?range ?uses ?values ?allLiteral
//	values:   ?value ?count ?label
//	counts:   ?n
//	graphs:   ?graph
package queries

import "github.com/DariaPPPPPP/rhizomerAPI/pkg/models"

// Strategy produces query text for profiling and retrieval.
// URIs passed in must already be validated; filter values may be either
// IRIs or lexical literal forms.
type Strategy interface {
	// ClassesQuery lists every class with its instance count.
	ClassesQuery() string

	// ClassFacetsQuery lists the properties used by instances of a class with
	// the range, usage count, distinct-value count and all-literal flag of each.
	ClassFacetsQuery(classURI string, sampleSize int, instanceCount int64, coverage float64) string

	// FacetRangeValuesQuery lists distinct values of a property/range pair,
	// most used first.
	FacetRangeValuesQuery(classURI, facetURI, rangeURI string, filters models.Filters, allLiteral bool, limit, offset int) string

	// FacetRangeValuesContainingQuery lists up to top values whose lexical
	// form (or label) contains substring, ignoring case. No counts.
	FacetRangeValuesContainingQuery(classURI, facetURI, rangeURI string, filters models.Filters, allLiteral bool, substring string, top int) string

	GraphsQuery() string
	ClassInstancesQuery(classURI string, filters models.Filters, limit, offset int) string
	ClassInstancesLabelsQuery(classURI string, filters models.Filters, limit, offset int) string
	ClassInstancesCountQuery(classURI string, filters models.Filters) string
	DescribeResourceQuery(uri string) string
	DescribeResourceLabelsQuery(uri string) string
}

// ForType resolves the strategy for a dataset's query type.
// Unknown types fall back to Optimized.
func ForType(t models.QueryType) Strategy {
	if t == models.QueryTypeDetailed {
		return Detailed{}
	}
	return Optimized{}
}

var (
	_ Strategy = Optimized{}
	_ Strategy = Detailed{}
)
