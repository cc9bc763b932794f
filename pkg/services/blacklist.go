package services

import "strings"

// Blacklist excludes classes and properties from discovery. A URI is
// excluded when it contains any listed substring. Retrieval is unaffected.
type Blacklist struct {
	Classes    []string
	Properties []string
}

func (b Blacklist) ExcludesClass(uri string) bool {
	return containsAny(uri, b.Classes)
}

func (b Blacklist) ExcludesProperty(uri string) bool {
	return containsAny(uri, b.Properties)
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
