// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-digest pipeline.
//
// Every result object crossing a component boundary is a keyed JSON object,
// never a bare array. Failures are carried as data in an "error" field.
package types

import "encoding/json"

// PaperRecord is one entry of the paper index, normalized.
type PaperRecord struct {
	// Title is the entry title trimmed of surrounding whitespace.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in document order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the first four characters of the publication timestamp, or empty.
	Year string `json:"year" yaml:"year"`

	// Link is the canonical alternate link, or empty.
	Link string `json:"link" yaml:"link"`
}

// MarshalJSON encodes a nil author list as an empty array.
func (p PaperRecord) MarshalJSON() ([]byte, error) {
	type plain PaperRecord
	if p.Authors == nil {
		p.Authors = []string{}
	}
	return json.Marshal(plain(p))
}

// SearchResult is the output of the paper source. It has exactly one of two
// shapes: {query, count, papers} on success or {error} on failure.
type SearchResult struct {
	Query  string        `json:"query" yaml:"query,omitempty"`
	Count  int           `json:"count" yaml:"count,omitempty"`
	Papers []PaperRecord `json:"papers" yaml:"papers,omitempty"`
	Error  string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewSearchResult builds a success result. Count always equals len(papers).
func NewSearchResult(query string, papers []PaperRecord) SearchResult {
	if papers == nil {
		papers = []PaperRecord{}
	}
	return SearchResult{Query: query, Count: len(papers), Papers: papers}
}

// SearchFailure builds the error-only shape.
func SearchFailure(msg string) SearchResult {
	return SearchResult{Error: msg}
}

// Failed reports whether r is the error shape.
func (r SearchResult) Failed() bool { return r.Error != "" }

// MarshalJSON never mixes the two shapes: an error result carries no papers key.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	papers := r.Papers
	if papers == nil {
		papers = []PaperRecord{}
	}
	return json.Marshal(struct {
		Query  string        `json:"query"`
		Count  int           `json:"count"`
		Papers []PaperRecord `json:"papers"`
	}{r.Query, len(papers), papers})
}

// MarshalYAML mirrors MarshalJSON for the CLI's YAML output.
func (r SearchResult) MarshalYAML() (any, error) {
	if r.Failed() {
		return struct {
			Error string `yaml:"error"`
		}{r.Error}, nil
	}
	return struct {
		Query  string        `yaml:"query"`
		Count  int           `yaml:"count"`
		Papers []PaperRecord `yaml:"papers"`
	}{r.Query, len(r.Papers), r.Papers}, nil
}
