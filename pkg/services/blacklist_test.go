package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlacklist(t *testing.T) {
	b := Blacklist{
		Classes:    []string{"http://www.w3.org/2002/07/owl#", ""},
		Properties: []string{"http://www.w3.org/1999/02/22-rdf-syntax-ns#type"},
	}

	assert.True(t, b.ExcludesClass("http://www.w3.org/2002/07/owl#Thing"))
	assert.False(t, b.ExcludesClass("http://xmlns.com/foaf/0.1/Person"), "empty entries match nothing")
	assert.True(t, b.ExcludesProperty("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"))
	assert.False(t, b.ExcludesProperty("http://xmlns.com/foaf/0.1/name"))
	assert.False(t, Blacklist{}.ExcludesClass("http://xmlns.com/foaf/0.1/Person"))
}
