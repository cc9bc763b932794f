package rdf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"turtle", FormatTurtle},
		{"TTL", FormatTurtle},
		{"text/turtle; charset=utf-8", FormatTurtle},
		{"application/n-triples", FormatNTriples},
		{".nt", FormatNTriples},
		{"nquads", FormatNQuads},
		{"json-ld", FormatJSONLD},
		{"application/ld+json", FormatJSONLD},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat_Unsupported(t *testing.T) {
	_, err := ParseFormat("application/rdf+xml")
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedFormat))
}

func TestGetFormatInfo(t *testing.T) {
	info, ok := GetFormatInfo(FormatTurtle)
	assert.True(t, ok)
	assert.Equal(t, "text/turtle", info.MIMEType)

	_, ok = GetFormatInfo(Format("trig"))
	assert.False(t, ok)
}
