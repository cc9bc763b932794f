package models

import "time"

// ClassKey identifies a class within a dataset.
type ClassKey struct {
	DatasetID string
	URI       string
}

// FacetKey identifies a facet within a class.
type FacetKey struct {
	Class       ClassKey
	PropertyURI string
}

// RangeKey identifies a range within a facet.
type RangeKey struct {
	Facet FacetKey
	URI   string
}

// Class is an RDF class discovered in a dataset.
type Class struct {
	DatasetID     string    `json:"dataset_id"`
	URI           string    `json:"uri"`
	Label         string    `json:"label"`
	InstanceCount int64     `json:"instance_count"`
	Facets        []*Facet  `json:"facets,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (c *Class) Key() ClassKey {
	return ClassKey{DatasetID: c.DatasetID, URI: c.URI}
}

// AddFacet inserts the facet or replaces the one with the same key.
func (c *Class) AddFacet(f *Facet) {
	for i, existing := range c.Facets {
		if existing.Key() == f.Key() {
			c.Facets[i] = f
			return
		}
	}
	c.Facets = append(c.Facets, f)
}

// FacetByURI returns the loaded facet for a property URI.
func (c *Class) FacetByURI(propertyURI string) (*Facet, bool) {
	for _, f := range c.Facets {
		if f.URI == propertyURI {
			return f, true
		}
	}
	return nil, false
}

// Facet is a property used by instances of a class.
type Facet struct {
	Class     ClassKey  `json:"-"`
	URI       string    `json:"uri"`
	Label     string    `json:"label"`
	Ranges    []*Range  `json:"ranges,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *Facet) Key() FacetKey {
	return FacetKey{Class: f.Class, PropertyURI: f.URI}
}

// AddRange inserts the range or replaces the one with the same key.
func (f *Facet) AddRange(r *Range) {
	for i, existing := range f.Ranges {
		if existing.Key() == r.Key() {
			f.Ranges[i] = r
			return
		}
	}
	f.Ranges = append(f.Ranges, r)
}

// Range is a datatype or class observed as the value type of a facet.
type Range struct {
	Facet      FacetKey  `json:"-"`
	URI        string    `json:"uri"`
	Label      string    `json:"label"`
	Uses       int64     `json:"uses"`
	Values     int64     `json:"values"`
	AllLiteral bool      `json:"all_literal"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (r *Range) Key() RangeKey {
	return RangeKey{Facet: r.Facet, URI: r.URI}
}

// ClassURI is the URI of the class owning the range's facet.
func (r *Range) ClassURI() string {
	return r.Facet.Class.URI
}

// FacetURI is the property URI of the range's facet.
func (r *Range) FacetURI() string {
	return r.Facet.PropertyURI
}
