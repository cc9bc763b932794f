package models

import "sort"

// Filters constrains instances by facet values. Each facet maps to the ordered
// set of accepted lexical values; facets are combined conjunctively and a facet
// missing from the map is unconstrained.
type Filters map[string][]string

// Add appends a value to a facet's accepted set, keeping it duplicate-free.
func (f Filters) Add(facetURI, value string) {
	for _, v := range f[facetURI] {
		if v == value {
			return
		}
	}
	f[facetURI] = append(f[facetURI], value)
}

// FacetURIs returns the constrained facets in a stable order.
// Facets with no accepted values are skipped.
func (f Filters) FacetURIs() []string {
	uris := make([]string, 0, len(f))
	for uri, values := range f {
		if len(values) == 0 {
			continue
		}
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
