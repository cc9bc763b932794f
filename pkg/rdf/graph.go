package rdf

import (
	"fmt"
	"io"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/jsonld"
	"github.com/cayleygraph/quad/nquads"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
)

// Serializer writes graphs in any supported format.
type Serializer struct {
	prefixes PrefixMapper
}

// NewSerializer creates a serializer. prefixes is used to abbreviate IRIs in
// Turtle output and may be nil.
func NewSerializer(prefixes PrefixMapper) *Serializer {
	return &Serializer{prefixes: prefixes}
}

// Write serializes graph to w. An empty graph produces a valid empty document.
// Native values such as quad.Int and quad.Bool are written as XSD typed
// literals with full datatype IRIs.
func (s *Serializer) Write(w io.Writer, graph []quad.Quad, format Format) error {
	graph = canonicalGraph(graph)
	switch format {
	case FormatTurtle:
		return newTurtleWriter(s.prefixes).write(w, graph)
	case FormatNTriples:
		return writeLines(w, StripGraphs(graph))
	case FormatNQuads:
		return writeLines(w, graph)
	case FormatJSONLD:
		jw := jsonld.NewWriter(w)
		for _, q := range graph {
			if err := jw.WriteQuad(q); err != nil {
				return fmt.Errorf("failed to encode JSON-LD: %w", err)
			}
		}
		return jw.Close()
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, format)
	}
}

func writeLines(w io.Writer, graph []quad.Quad) error {
	nw := nquads.NewWriter(w)
	for _, q := range graph {
		if err := nw.WriteQuad(q); err != nil {
			return fmt.Errorf("failed to encode quad: %w", err)
		}
	}
	if err := nw.Close(); err != nil {
		return fmt.Errorf("failed to flush quads: %w", err)
	}
	return nil
}

// StripGraphs drops the graph label of every quad.
func StripGraphs(graph []quad.Quad) []quad.Quad {
	out := make([]quad.Quad, len(graph))
	for i, q := range graph {
		q.Label = nil
		out[i] = q
	}
	return out
}

// Union merges graphs, dropping duplicate triples. Order of first appearance is kept.
func Union(graphs ...[]quad.Quad) []quad.Quad {
	var out []quad.Quad
	seen := make(map[string]struct{})
	for _, g := range graphs {
		for _, q := range g {
			key := tripleKey(q)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, q)
		}
	}
	return out
}

func tripleKey(q quad.Quad) string {
	return termKey(q.Subject) + " " + termKey(q.Predicate) + " " + termKey(q.Object)
}

func termKey(v quad.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}
