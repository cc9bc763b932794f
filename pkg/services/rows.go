package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/adapters/endpoint"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/metrics"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
)

// eachBinding calls fn for every row and closes the rows.
func eachBinding(rows endpoint.Rows, fn func(endpoint.Binding)) error {
	defer rows.Close()
	for rows.Next() {
		fn(rows.Binding())
	}
	return rows.Err()
}

// iriTerm reads a validated IRI. present is false when the variable is unbound.
func iriTerm(b endpoint.Binding, name string) (uri string, present bool, err error) {
	v, ok := b[name]
	if !ok || v == nil {
		return "", false, nil
	}
	iri, isIRI := rdf.IRI(v)
	if !isIRI {
		return rdf.Lexical(v), true, fmt.Errorf("%w: ?%s is not an IRI", apperrors.ErrMalformedURI, name)
	}
	if _, err := rdf.ParseURI(iri); err != nil {
		return iri, true, err
	}
	return iri, true, nil
}

func intTerm(b endpoint.Binding, name string) (int64, error) {
	n, err := rdf.Int64(b[name])
	if err != nil {
		return 0, fmt.Errorf("?%s: %w", name, err)
	}
	return n, nil
}

// rowSkipper logs and counts result rows dropped during decoding.
type rowSkipper struct {
	operation string
	endpoint  *models.Endpoint
	metrics   *metrics.EndpointMetrics
	logger    *zap.Logger
}

func (s rowSkipper) malformed(term string, err error) {
	s.logger.Warn("Skipping result row with malformed term",
		zap.String("operation", s.operation),
		zap.String("endpoint_id", s.endpoint.ID.String()),
		zap.String("term", term),
		zap.Error(err))
	s.metrics.SkippedRow(s.operation, "malformed")
}

func (s rowSkipper) blacklisted(uri string) {
	s.logger.Debug("Skipping blacklisted URI",
		zap.String("operation", s.operation),
		zap.String("uri", uri))
	s.metrics.SkippedRow(s.operation, "blacklisted")
}
