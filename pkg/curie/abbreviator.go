// Package curie abbreviates URIs into prefixed names (CURIEs) for display.
package curie

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/cayleygraph/quad/voc"
	"gopkg.in/yaml.v3"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
)

// DefaultPrefixes are always registered, before any configured prefix file.
var DefaultPrefixes = map[string]string{
	"rdf":     rdf.RDFNamespace,
	"rdfs":    rdf.RDFSNamespace,
	"xsd":     rdf.XSDNamespace,
	"owl":     "http://www.w3.org/2002/07/owl#",
	"skos":    "http://www.w3.org/2004/02/skos/core#",
	"dc":      "http://purl.org/dc/elements/1.1/",
	"dcterms": "http://purl.org/dc/terms/",
	"foaf":    "http://xmlns.com/foaf/0.1/",
	"schema":  "http://schema.org/",
	"geo":     "http://www.w3.org/2003/01/geo/wgs84_pos#",
	"prov":    "http://www.w3.org/ns/prov#",
	"dbo":     "http://dbpedia.org/ontology/",
	"dbr":     "http://dbpedia.org/resource/",
}

// Abbreviator maps namespaces to prefixes. It is safe for concurrent use.
type Abbreviator struct {
	mu         sync.RWMutex
	ns         voc.Namespaces
	namespaces map[string]string
}

// New creates an abbreviator with the default prefixes plus the given ones.
// Entries in prefixes override defaults with the same prefix.
func New(prefixes map[string]string) *Abbreviator {
	a := &Abbreviator{
		namespaces: make(map[string]string),
	}
	for p, full := range DefaultPrefixes {
		a.register(p, full)
	}
	for p, full := range prefixes {
		a.register(p, full)
	}
	return a
}

// LoadFile reads a YAML mapping of prefix to namespace IRI and returns an
// abbreviator with those prefixes on top of the defaults.
func LoadFile(path string) (*Abbreviator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prefix file: %w", err)
	}
	prefixes := make(map[string]string)
	if err := yaml.Unmarshal(data, &prefixes); err != nil {
		return nil, fmt.Errorf("failed to parse prefix file %s: %w", path, err)
	}
	return New(prefixes), nil
}

func (a *Abbreviator) register(prefix, full string) {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" || full == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.namespaces[prefix] = full
	a.ns.Register(voc.Namespace{Full: full, Prefix: prefix + ":"})
}

// Abbreviate returns the CURIE for an http(s) URI whose namespace is registered.
// It never fails loudly: anything it cannot abbreviate yields ok=false.
func (a *Abbreviator) Abbreviate(uri string) (string, bool) {
	u, err := url.Parse(uri)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	prefix, _, local, ok := a.Split(uri)
	if !ok {
		return "", false
	}
	return prefix + ":" + local, true
}

// Split returns the prefix, its namespace and the local part of an IRI.
func (a *Abbreviator) Split(iri string) (prefix, namespace, local string, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	short := a.ns.ShortIRI(iri)
	if short == iri {
		return "", "", "", false
	}
	i := strings.IndexByte(short, ':')
	if i <= 0 {
		return "", "", "", false
	}
	prefix = short[:i]
	namespace, ok = a.namespaces[prefix]
	if !ok || !strings.HasPrefix(iri, namespace) {
		return "", "", "", false
	}
	return prefix, namespace, short[i+1:], true
}

// Expand turns a CURIE back into a full IRI; unknown prefixes are returned unchanged.
func (a *Abbreviator) Expand(curie string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ns.FullIRI(curie)
}

// LocalName returns a human label for a URI: its local part after the namespace
// when abbreviable, otherwise the segment after the last separator.
func (a *Abbreviator) LocalName(uri string) string {
	if _, _, local, ok := a.Split(uri); ok && local != "" {
		return local
	}
	return rdf.LocalName(uri)
}

// Prefixes lists the registered prefixes in alphabetical order.
func (a *Abbreviator) Prefixes() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]string, 0, len(a.namespaces))
	for p := range a.namespaces {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
