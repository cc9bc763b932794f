package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/jsonld"
	"github.com/cayleygraph/quad/nquads"
	"go.uber.org/zap"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/apperrors"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/logging"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
)

// Dereferencer fetches the RDF description published at a URI.
type Dereferencer interface {
	Dereference(ctx context.Context, uri string) ([]quad.Quad, error)
}

// DereferenceConfig tunes the HTTP dereferencer.
type DereferenceConfig struct {
	Timeout   time.Duration
	MaxBytes  int64 // 0 means unlimited
	UserAgent string
}

const dereferenceAccept = "text/turtle, application/n-triples, application/n-quads;q=0.9, application/ld+json;q=0.9, application/rdf+xml;q=0.8, text/html;q=0.5"

type httpDereferencer struct {
	client *http.Client
	cfg    DereferenceConfig
	logger *zap.Logger
}

// NewHTTPDereferencer creates a Dereferencer that negotiates Turtle,
// N-Triples, N-Quads, JSON-LD or RDF/XML, and falls back to JSON-LD scripts
// embedded in HTML.
func NewHTTPDereferencer(cfg DereferenceConfig, logger *zap.Logger) Dereferencer {
	return &httpDereferencer{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logger.Named("dereferencer"),
	}
}

func (d *httpDereferencer) Dereference(ctx context.Context, uri string) ([]quad.Quad, error) {
	u, err := rdf.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: cannot dereference %s URIs", apperrors.ErrMalformedURI, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", dereferenceAccept)
	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", logging.SanitizeURL(uri), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: status %d", logging.SanitizeURL(uri), resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if d.cfg.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, d.cfg.MaxBytes)
	}

	mediaType := "application/n-triples"
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			mediaType = mt
		}
	}

	graph, err := parseGraph(body, mediaType)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("Dereferenced URI",
		zap.String("uri", logging.SanitizeURL(uri)),
		zap.String("media_type", mediaType),
		zap.Int("quads", len(graph)))
	return graph, nil
}

func parseGraph(r io.Reader, mediaType string) ([]quad.Quad, error) {
	switch mediaType {
	case "application/n-triples", "application/n-quads", "text/plain":
		return readQuads(nquads.NewReader(r, false))
	case "text/turtle", "application/x-turtle":
		return rdf.ReadTurtle(r)
	case "application/rdf+xml":
		return rdf.ReadRDFXML(r)
	case "application/ld+json", "application/json":
		return readQuads(jsonld.NewReader(r))
	case "text/html", "application/xhtml+xml":
		return embeddedJSONLD(r)
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, mediaType)
	}
}

func readQuads(r quad.Reader) ([]quad.Quad, error) {
	graph, err := quad.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}
	return graph, nil
}

// embeddedJSONLD collects the quads of every JSON-LD script in an HTML page.
func embeddedJSONLD(r io.Reader) ([]quad.Quad, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var (
		graph    []quad.Quad
		parseErr error
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		quads, err := readQuads(jsonld.NewReader(strings.NewReader(sel.Text())))
		if err != nil {
			parseErr = err
			return false
		}
		graph = append(graph, quads...)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return graph, nil
}
