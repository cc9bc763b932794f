package models

import (
	"time"

	"github.com/google/uuid"
)

// QueryType selects the query strategy used against a dataset's endpoints.
type QueryType string

const (
	// QueryTypeOptimized samples instances and extrapolates facet statistics.
	QueryTypeOptimized QueryType = "optimized"
	// QueryTypeDetailed scans every instance.
	QueryTypeDetailed QueryType = "detailed"
)

// Valid reports whether the query type is one of the known strategies.
func (q QueryType) Valid() bool {
	return q == QueryTypeOptimized || q == QueryTypeDetailed
}

// Dataset is the unit of profiling. It owns its endpoints and discovered classes.
type Dataset struct {
	ID               string      `json:"id"`
	QueryType        QueryType   `json:"query_type"`
	SampleSize       int         `json:"sample_size"`
	Coverage         float64     `json:"coverage"` // 0..1, fraction of instances sampled by the optimized strategy
	InferenceEnabled bool        `json:"inference_enabled"`
	InferenceGraph   string      `json:"inference_graph,omitempty"`
	OntologiesGraph  string      `json:"ontologies_graph,omitempty"`
	Ontologies       []string    `json:"ontologies,omitempty"`
	Endpoints        []*Endpoint `json:"endpoints,omitempty"` // populated on demand
	Classes          []*Class    `json:"classes,omitempty"`   // populated on demand
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// AddClass inserts the class or replaces the one with the same key.
func (d *Dataset) AddClass(c *Class) {
	for i, existing := range d.Classes {
		if existing.Key() == c.Key() {
			d.Classes[i] = c
			return
		}
	}
	d.Classes = append(d.Classes, c)
}

// ClassByURI returns the dataset class with the given URI, if loaded.
func (d *Dataset) ClassByURI(uri string) (*Class, bool) {
	for _, c := range d.Classes {
		if c.URI == uri {
			return c, true
		}
	}
	return nil, false
}

// AddOntology records a loaded ontology document, ignoring duplicates.
func (d *Dataset) AddOntology(uri string) {
	for _, o := range d.Ontologies {
		if o == uri {
			return
		}
	}
	d.Ontologies = append(d.Ontologies, uri)
}

// Endpoint is a query service backing a dataset.
// Passwords are decrypted by the repository and never serialized.
type Endpoint struct {
	ID             uuid.UUID `json:"id"`
	DatasetID      string    `json:"dataset_id"`
	Type           string    `json:"type"` // registered endpoint client type
	QueryURL       string    `json:"query_url"`
	UpdateURL      string    `json:"update_url,omitempty"`
	QueryUsername  string    `json:"query_username,omitempty"`
	QueryPassword  string    `json:"-"`
	UpdateUsername string    `json:"update_username,omitempty"`
	UpdatePassword string    `json:"-"`
	Writable       bool      `json:"writable"`
	Graphs         []string  `json:"graphs,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UpdateTarget returns the update URL, falling back to the query URL.
func (e *Endpoint) UpdateTarget() string {
	if e.UpdateURL != "" {
		return e.UpdateURL
	}
	return e.QueryURL
}

// AddGraph records a named graph, ignoring duplicates.
func (e *Endpoint) AddGraph(graph string) {
	for _, g := range e.Graphs {
		if g == graph {
			return
		}
	}
	e.Graphs = append(e.Graphs, graph)
}
