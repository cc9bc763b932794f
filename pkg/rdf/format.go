package rdf

import (
	"fmt"
	"strings"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
)

// Format names a graph serialization.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
	FormatNQuads   Format = "nquads"
	FormatJSONLD   Format = "jsonld"
)

// FormatInfo provides metadata about a serialization.
type FormatInfo struct {
	Name        Format
	MIMEType    string
	Extension   string
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatNQuads: {
		Name:        FormatNQuads,
		MIMEType:    "application/n-quads",
		Extension:   ".nq",
		Description: "N-Quads - N-Triples with named graphs",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

var formatAliases = map[string]Format{
	"ttl":       FormatTurtle,
	"nt":        FormatNTriples,
	"n-triples": FormatNTriples,
	"nq":        FormatNQuads,
	"n-quads":   FormatNQuads,
	"json-ld":   FormatJSONLD,
}

// ParseFormat resolves a format from its name, an alias, a file extension or a
// MIME type (parameters such as charset are ignored).
func ParseFormat(s string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(key, ';'); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}
	key = strings.TrimPrefix(key, ".")

	if _, ok := FormatRegistry[Format(key)]; ok {
		return Format(key), nil
	}
	if f, ok := formatAliases[key]; ok {
		return f, nil
	}
	for name, info := range FormatRegistry {
		if info.MIMEType == key || strings.TrimPrefix(info.Extension, ".") == key {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, s)
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}
