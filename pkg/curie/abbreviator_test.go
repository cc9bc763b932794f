package curie

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbbreviate(t *testing.T) {
	a := New(map[string]string{"ex": "http://example.org/ns#"})

	tests := []struct {
		name   string
		uri    string
		want   string
		wantOK bool
	}{
		{"default prefix", "http://xmlns.com/foaf/0.1/name", "foaf:name", true},
		{"configured prefix", "http://example.org/ns#Person", "ex:Person", true},
		{"unknown namespace", "http://unknown.example.com/thing", "", false},
		{"not a URL", "urn:isbn:0451450523", "", false},
		{"garbage", "::not a uri", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := a.Abbreviate(tt.uri)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplit(t *testing.T) {
	a := New(nil)

	prefix, ns, local, ok := a.Split("http://www.w3.org/2001/XMLSchema#string")
	require.True(t, ok)
	assert.Equal(t, "xsd", prefix)
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#", ns)
	assert.Equal(t, "string", local)
}

func TestExpand(t *testing.T) {
	a := New(nil)
	assert.Equal(t, "http://xmlns.com/foaf/0.1/name", a.Expand("foaf:name"))
}

func TestLocalName(t *testing.T) {
	a := New(nil)
	assert.Equal(t, "string", a.LocalName("http://www.w3.org/2001/XMLSchema#string"))
	assert.Equal(t, "Thing", a.LocalName("http://unknown.example.com/Thing"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefixes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ex: http://example.org/\n\"lib:\": http://library.example.com/\n"), 0o600))

	a, err := LoadFile(path)
	require.NoError(t, err)

	got, ok := a.Abbreviate("http://example.org/Book")
	require.True(t, ok)
	assert.Equal(t, "ex:Book", got)

	got, ok = a.Abbreviate("http://library.example.com/Loan")
	require.True(t, ok)
	assert.Equal(t, "lib:Loan", got)

	assert.Contains(t, a.Prefixes(), "foaf")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
