// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the arXiv paper index and normalizes its Atom feed
// into a types.SearchResult. The source is fail-soft: every failure is
// returned as the {error} shape, never as a Go error or panic.
package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/internal/logging"
	"github.com/pdiddy/research-digest/internal/metrics"
	"github.com/pdiddy/research-digest/internal/tracing"
	"github.com/pdiddy/research-digest/pkg/types"
)

const (
	// DefaultBaseURL is the arXiv query endpoint.
	DefaultBaseURL = "http://export.arxiv.org/api/query"

	// DefaultTimeout bounds a single arXiv request.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent identifies the client with a contact, as arXiv requests.
	DefaultUserAgent = "research-digest/0.1 (+https://github.com/pdiddy/research-digest)"

	resultsFloor   = 1
	resultsCeiling = 25
)

// ClampMaxResults bounds a requested result count to [1, 25].
func ClampMaxResults(n int) int {
	if n < resultsFloor {
		return resultsFloor
	}
	if n > resultsCeiling {
		return resultsCeiling
	}
	return n
}

// ArxivSource queries the arXiv API.
type ArxivSource struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewArxivSource builds a source from configuration, filling defaults.
func NewArxivSource(cfg types.SearchConfig, logger *zap.Logger) *ArxivSource {
	s := &ArxivSource{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Logger:    logging.OrNop(logger),
	}
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.UserAgent == "" {
		s.UserAgent = DefaultUserAgent
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	s.Client = &http.Client{Timeout: s.Timeout}
	return s
}

// Search runs one relevance-ranked query and returns either
// {query, count, papers} or {error}. It makes exactly one request.
func (s *ArxivSource) Search(ctx context.Context, query string, maxResults int) (result types.SearchResult) {
	n := ClampMaxResults(maxResults)
	logger := logging.OrNop(s.Logger)
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "arxiv.search",
		attribute.String("query", query),
		attribute.Int("max_results", n),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			result = types.SearchFailure(fmt.Sprintf("arXiv error: %v", r))
		}

		metrics.SearchDuration.Observe(time.Since(start).Seconds())
		if result.Failed() {
			metrics.SearchRequests.WithLabelValues("error").Inc()
			tracing.RecordError(span, result.Error)
			logger.Warn("arXiv search failed",
				zap.String("query", query),
				zap.Int("max_results", n),
				zap.String("error", result.Error),
			)
			return
		}
		metrics.SearchRequests.WithLabelValues("ok").Inc()
		metrics.SearchPapers.Observe(float64(result.Count))
		span.SetAttributes(attribute.Int("count", result.Count))
		logger.Debug("arXiv search completed",
			zap.String("query", query),
			zap.Int("count", result.Count),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()

	papers, err := s.fetch(ctx, query, n)
	if err != nil {
		return types.SearchFailure(fmt.Sprintf("arXiv error: %v", err))
	}
	return types.NewSearchResult(query, papers)
}

func (s *ArxivSource) fetch(ctx context.Context, query string, n int) ([]types.PaperRecord, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	reqURL := base + "?" + buildArxivParams(query, n).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	ua := s.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	body, err := httputil.Do(s.Client, req)
	if err != nil {
		return nil, err
	}
	return parseFeed(body)
}

// buildArxivParams returns the query string parameters for one search.
func buildArxivParams(query string, n int) url.Values {
	return url.Values{
		"search_query": {"all:" + query},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(n)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}
}

// arXiv Atom feed XML structures. Tags are namespace-qualified so a feed
// in another namespace does not decode as an empty result.
type arxivFeed struct {
	XMLName xml.Name     `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []arxivEntry `xml:"http://www.w3.org/2005/Atom entry"`
}

type arxivEntry struct {
	Title     string        `xml:"http://www.w3.org/2005/Atom title"`
	Published string        `xml:"http://www.w3.org/2005/Atom published"`
	Authors   []arxivAuthor `xml:"http://www.w3.org/2005/Atom author"`
	Links     []arxivLink   `xml:"http://www.w3.org/2005/Atom link"`
}

type arxivAuthor struct {
	Name string `xml:"http://www.w3.org/2005/Atom name"`
}

type arxivLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// parseFeed decodes an Atom feed into paper records in document order.
func parseFeed(data []byte) ([]types.PaperRecord, error) {
	var feed arxivFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	papers := make([]types.PaperRecord, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		papers = append(papers, e.record())
	}
	return papers, nil
}

func (e arxivEntry) record() types.PaperRecord {
	p := types.PaperRecord{
		Title:   strings.TrimSpace(e.Title),
		Authors: make([]string, 0, len(e.Authors)),
		Year:    yearOf(e.Published),
	}
	for _, a := range e.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
	}
	for _, l := range e.Links {
		if l.Rel == "alternate" {
			p.Link = l.Href
			break
		}
	}
	return p
}

// yearOf returns the first four characters of an ISO timestamp, or the
// whole string if it is shorter.
func yearOf(published string) string {
	if len(published) <= 4 {
		return published
	}
	return published[:4]
}
