package rdf

import (
	"errors"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"http IRI", "http://xmlns.com/foaf/0.1/name", true},
		{"urn", "urn:isbn:0451450523", true},
		{"empty", "", false},
		{"relative", "foaf/name", false},
		{"space", "http://example.org/a b", false},
		{"angle bracket", "http://example.org/a>b", false},
		{"quote", "http://example.org/\"x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURI(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrMalformedURI))
			}
		})
	}
}

func TestBool_AllLiteralCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value quad.Value
		want  bool
	}{
		{"integer zero", quad.TypedString{Value: "0", Type: quad.IRI(XSDInteger)}, false},
		{"integer one", quad.TypedString{Value: "1", Type: quad.IRI(XSDInteger)}, true},
		{"integer seven", quad.TypedString{Value: "7", Type: quad.IRI(XSDInteger)}, true},
		{"boolean true", quad.TypedString{Value: "true", Type: quad.IRI(XSDBoolean)}, true},
		{"boolean false", quad.TypedString{Value: "false", Type: quad.IRI(XSDBoolean)}, false},
		{"native bool", quad.Bool(true), true},
		{"native int zero", quad.Int(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bool(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBool_NotANumber(t *testing.T) {
	_, err := Bool(quad.String("maybe"))
	assert.Error(t, err)
}

func TestInt64(t *testing.T) {
	n, err := Int64(quad.TypedString{Value: "50", Type: quad.IRI(XSDInteger)})
	require.NoError(t, err)
	assert.Equal(t, int64(50), n)

	n, err = Int64(quad.TypedString{Value: "12.0", Type: quad.IRI(XSDNamespace + "decimal")})
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = Int64(quad.IRI("http://example.org/x"))
	assert.Error(t, err)

	_, err = Int64(nil)
	assert.Error(t, err)
}

func TestLexical(t *testing.T) {
	assert.Equal(t, "http://example.org/a", Lexical(quad.IRI("http://example.org/a")))
	assert.Equal(t, "Alice", Lexical(quad.LangString{Value: "Alice", Lang: "en"}))
	assert.Equal(t, "48", Lexical(quad.TypedString{Value: "48", Type: quad.IRI(XSDInteger)}))
	assert.Equal(t, "", Lexical(nil))
}

func TestIsLiteral(t *testing.T) {
	assert.True(t, IsLiteral(quad.String("x")))
	assert.True(t, IsLiteral(quad.TypedString{Value: "1", Type: quad.IRI(XSDInteger)}))
	assert.False(t, IsLiteral(quad.IRI("http://example.org/x")))
	assert.False(t, IsLiteral(quad.BNode("b0")))
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "name", LocalName("http://xmlns.com/foaf/0.1/name"))
	assert.Equal(t, "string", LocalName(XSDString))
	assert.Equal(t, "Person", LocalName("http://example.org/Person/"))
	assert.Equal(t, "0451450523", LocalName("urn:isbn:0451450523"))
	assert.Equal(t, "plain", LocalName("plain"))
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   quad.Value
		want quad.Value
	}{
		{"int", quad.Int(3), quad.TypedString{Value: "3", Type: quad.IRI(XSDInteger)}},
		{"bool true", quad.Bool(true), quad.TypedString{Value: "true", Type: quad.IRI(XSDBoolean)}},
		{"bool false", quad.Bool(false), quad.TypedString{Value: "false", Type: quad.IRI(XSDBoolean)}},
		{"short datatype", quad.TypedString{Value: "3", Type: "xsd:integer"}, quad.TypedString{Value: "3", Type: quad.IRI(XSDInteger)}},
		{"xsd string", quad.TypedString{Value: "Alice", Type: quad.IRI(XSDString)}, quad.String("Alice")},
		{"untyped", quad.TypedString{Value: "Alice"}, quad.String("Alice")},
		{"iri", quad.IRI("http://example.org/alice"), quad.IRI("http://example.org/alice")},
		{"lang", quad.LangString{Value: "Alicia", Lang: "es"}, quad.LangString{Value: "Alicia", Lang: "es"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.in))
		})
	}
}
