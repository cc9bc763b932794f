package models

// Value is a facet value returned by value retrieval. It is not persisted.
// Count is zero when the query variant does not compute counts.
type Value struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
	URI   string `json:"uri,omitempty"`
	Curie string `json:"curie,omitempty"`
	Label string `json:"label,omitempty"`
}
