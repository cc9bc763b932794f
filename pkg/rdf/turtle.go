package rdf

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"
)

// PrefixMapper splits an IRI into a registered prefix and a local part.
type PrefixMapper interface {
	Split(iri string) (prefix, namespace, local string, ok bool)
}

// localPart matches the local names that can be written unescaped after a prefix.
var localPart = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*$`)

// turtleWriter writes a graph as Turtle, grouping triples by subject and predicate.
type turtleWriter struct {
	prefixes PrefixMapper
	used     map[string]string
	sb       strings.Builder
}

func newTurtleWriter(prefixes PrefixMapper) *turtleWriter {
	return &turtleWriter{
		prefixes: prefixes,
		used:     make(map[string]string),
	}
}

type predicateObjects struct {
	predicate quad.Value
	objects   []quad.Value
}

type subjectBlock struct {
	subject    quad.Value
	predicates []*predicateObjects
}

func (w *turtleWriter) write(out io.Writer, graph []quad.Quad) error {
	blocks := groupBySubject(graph)

	var body strings.Builder
	for _, b := range blocks {
		body.WriteString(w.term(b.subject))
		body.WriteString("\n")
		for i, po := range b.predicates {
			body.WriteString("    ")
			body.WriteString(w.predicate(po.predicate))
			body.WriteString(" ")
			for j, o := range po.objects {
				if j > 0 {
					body.WriteString(", ")
				}
				body.WriteString(w.term(o))
			}
			if i < len(b.predicates)-1 {
				body.WriteString(" ;\n")
			} else {
				body.WriteString(" .\n")
			}
		}
		body.WriteString("\n")
	}

	w.writePrefixes()
	w.sb.WriteString(body.String())

	_, err := io.WriteString(out, w.sb.String())
	return err
}

// writePrefixes writes prefix declarations for every prefix used in the body.
func (w *turtleWriter) writePrefixes() {
	if len(w.used) == 0 {
		return
	}
	keys := make([]string, 0, len(w.used))
	for k := range w.used {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		w.sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", prefix, w.used[prefix]))
	}
	w.sb.WriteString("\n")
}

func (w *turtleWriter) predicate(v quad.Value) string {
	if iri, ok := v.(quad.IRI); ok && string(iri) == RDFType {
		return "a"
	}
	return w.term(v)
}

func (w *turtleWriter) term(v quad.Value) string {
	iri, ok := v.(quad.IRI)
	if !ok {
		switch t := v.(type) {
		case nil:
			return "[]"
		case quad.TypedString:
			return t.Value.String() + "^^" + w.term(t.Type)
		}
		return v.String()
	}
	if w.prefixes != nil {
		if prefix, ns, local, ok := w.prefixes.Split(string(iri)); ok && localPart.MatchString(local) {
			w.used[prefix] = ns
			return prefix + ":" + local
		}
	}
	return "<" + string(iri) + ">"
}

func groupBySubject(graph []quad.Quad) []*subjectBlock {
	var blocks []*subjectBlock
	bySubject := make(map[string]*subjectBlock)
	seen := make(map[string]struct{})

	for _, q := range graph {
		key := tripleKey(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		sk := termKey(q.Subject)
		b, ok := bySubject[sk]
		if !ok {
			b = &subjectBlock{subject: q.Subject}
			bySubject[sk] = b
			blocks = append(blocks, b)
		}

		var po *predicateObjects
		for _, existing := range b.predicates {
			if termKey(existing.predicate) == termKey(q.Predicate) {
				po = existing
				break
			}
		}
		if po == nil {
			po = &predicateObjects{predicate: q.Predicate}
			b.predicates = append(b.predicates, po)
		}
		po.objects = append(po.objects, q.Object)
	}
	return blocks
}
