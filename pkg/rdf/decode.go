package rdf

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cayleygraph/quad"
	knakk "github.com/knakk/rdf"
)

// ReadTurtle parses a Turtle document into triples without graph labels.
func ReadTurtle(r io.Reader) ([]quad.Quad, error) {
	return readTriples(r, knakk.Turtle)
}

// ReadRDFXML parses an RDF/XML document into triples without graph labels.
func ReadRDFXML(r io.Reader) ([]quad.Quad, error) {
	return readTriples(r, knakk.RDFXML)
}

func readTriples(r io.Reader, format knakk.Format) ([]quad.Quad, error) {
	dec := knakk.NewTripleDecoder(r, format)

	var graph []quad.Quad
	for {
		t, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return graph, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse graph: %w", err)
		}

		q, err := fromTriple(t)
		if err != nil {
			return nil, err
		}
		graph = append(graph, q)
	}
}

func fromTriple(t knakk.Triple) (quad.Quad, error) {
	s, err := fromTerm(t.Subj)
	if err != nil {
		return quad.Quad{}, err
	}
	p, err := fromTerm(t.Pred)
	if err != nil {
		return quad.Quad{}, err
	}
	o, err := fromTerm(t.Obj)
	if err != nil {
		return quad.Quad{}, err
	}
	return quad.Quad{Subject: s, Predicate: p, Object: o}, nil
}

func fromTerm(t knakk.Term) (quad.Value, error) {
	switch v := t.(type) {
	case knakk.IRI:
		return quad.IRI(v.String()), nil
	case knakk.Blank:
		return quad.BNode(strings.TrimPrefix(v.String(), "_:")), nil
	case knakk.Literal:
		if lang := v.Lang(); lang != "" {
			return quad.LangString{Value: quad.String(v.String()), Lang: lang}, nil
		}
		return Canonical(quad.TypedString{Value: quad.String(v.String()), Type: quad.IRI(v.DataType.String())}), nil
	default:
		return nil, fmt.Errorf("unexpected RDF term %T", t)
	}
}
