// Package rdf holds RDF term helpers and graph serialization on top of cayleygraph/quad.
package rdf

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
)

const (
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"

	XSDString  = XSDNamespace + "string"
	XSDBoolean = XSDNamespace + "boolean"
	XSDInteger = XSDNamespace + "integer"

	RDFType        = RDFNamespace + "type"
	RDFSLabel      = RDFSNamespace + "label"
	RDFSSubClassOf = RDFSNamespace + "subClassOf"
	RDFSResource   = RDFSNamespace + "Resource"
	RDFLangString  = RDFNamespace + "langString"
)

// iriForbidden are the characters SPARQL does not allow inside an IRIREF.
const iriForbidden = "<>\"{}|^`\\"

// ParseURI validates that s is an absolute URI that can be written as an IRI
// reference in query text.
func ParseURI(s string) (*url.URL, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", apperrors.ErrMalformedURI)
	}
	for _, r := range s {
		if r <= 0x20 || strings.ContainsRune(iriForbidden, r) {
			return nil, fmt.Errorf("%w: %q contains %q", apperrors.ErrMalformedURI, s, r)
		}
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedURI, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", apperrors.ErrMalformedURI, s)
	}
	return u, nil
}

// IsURI reports whether s passes ParseURI.
func IsURI(s string) bool {
	_, err := ParseURI(s)
	return err == nil
}

// IRI returns the IRI held by v.
func IRI(v quad.Value) (string, bool) {
	iri, ok := v.(quad.IRI)
	return string(iri), ok
}

// IsLiteral reports whether v is a literal term.
func IsLiteral(v quad.Value) bool {
	switch v.(type) {
	case quad.String, quad.TypedString, quad.LangString, quad.Int, quad.Float, quad.Bool, quad.Time:
		return true
	}
	return false
}

// Lexical returns the lexical form of a term: the IRI for identifiers, the
// label for blank nodes and the literal text without datatype or language.
func Lexical(v quad.Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case quad.IRI:
		return string(t)
	case quad.BNode:
		return string(t)
	case quad.String:
		return string(t)
	case quad.TypedString:
		return string(t.Value)
	case quad.LangString:
		return string(t.Value)
	default:
		return fmt.Sprint(v.Native())
	}
}

// Canonical rewrites native and short-typed literals as typed strings with a
// full datatype IRI and a valid lexical form. xsd:string and untyped
// literals become plain strings. Other terms are returned unchanged.
func Canonical(v quad.Value) quad.Value {
	switch t := v.(type) {
	case quad.Bool:
		return quad.TypedString{Value: quad.String(strconv.FormatBool(bool(t))), Type: quad.IRI(XSDBoolean)}
	case quad.TypedString:
		typ := t.Type.Full()
		if typ == "" || string(typ) == XSDString {
			return t.Value
		}
		return quad.TypedString{Value: t.Value, Type: typ}
	case quad.TypedStringer:
		return Canonical(t.TypedString())
	}
	return v
}

func canonicalGraph(graph []quad.Quad) []quad.Quad {
	out := make([]quad.Quad, len(graph))
	for i, q := range graph {
		q.Subject = Canonical(q.Subject)
		q.Predicate = Canonical(q.Predicate)
		q.Object = Canonical(q.Object)
		out[i] = q
	}
	return out
}

// Int64 reads an integer from a numeric term.
func Int64(v quad.Value) (int64, error) {
	switch t := v.(type) {
	case quad.Int:
		return int64(t), nil
	case quad.Float:
		return int64(t), nil
	case quad.TypedString:
		return parseInt(string(t.Value))
	case quad.String:
		return parseInt(string(t))
	case nil:
		return 0, fmt.Errorf("missing numeric value")
	}
	return 0, fmt.Errorf("not a numeric literal: %s", v.String())
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	// Aggregates over decimals come back as xsd:decimal on some stores.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int64(f), nil
}

// Bool reads a flag from a boolean-typed or integer-typed term. Integers are
// true when nonzero.
func Bool(v quad.Value) (bool, error) {
	switch t := v.(type) {
	case quad.Bool:
		return bool(t), nil
	case quad.TypedString:
		if string(t.Type) == XSDBoolean {
			return strconv.ParseBool(strings.TrimSpace(string(t.Value)))
		}
	}
	n, err := Int64(v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// LocalName returns the part of a URI after the last '#', '/' or ':'.
func LocalName(uri string) string {
	trimmed := strings.TrimRight(uri, "/#")
	if i := strings.LastIndexAny(trimmed, "#/:"); i >= 0 && i < len(trimmed)-1 {
		return trimmed[i+1:]
	}
	return trimmed
}
