// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// SummaryItem holds the bullet summary of one paper.
type SummaryItem struct {
	Title   string   `json:"title" yaml:"title"`
	Bullets []string `json:"bullets" yaml:"bullets"`
	Link    string   `json:"link" yaml:"link"`
}

// SummaryResult is the output of the summarizer: {count, items, error?}, or
// {error} alone when the input was rejected before any model call.
type SummaryResult struct {
	Count int           `json:"count" yaml:"count"`
	Items []SummaryItem `json:"items" yaml:"items"`

	// Error is advisory when Items is populated (a fallback occurred) and
	// fatal when the result is an input rejection.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	rejected bool
}

// NewSummaryResult builds a result whose Count is recomputed from items.
func NewSummaryResult(items []SummaryItem, errMsg string) SummaryResult {
	if items == nil {
		items = []SummaryItem{}
	}
	return SummaryResult{Count: len(items), Items: items, Error: errMsg}
}

// InvalidSummaryInput builds the error-only shape used for input rejection.
func InvalidSummaryInput(msg string) SummaryResult {
	return SummaryResult{Error: msg, rejected: true}
}

// Rejected reports whether the input was refused without a model call.
func (r SummaryResult) Rejected() bool { return r.rejected }

// MarshalJSON keeps the rejection shape free of count and items.
func (r SummaryResult) MarshalJSON() ([]byte, error) {
	if r.rejected {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	items := make([]SummaryItem, len(r.Items))
	for i, it := range r.Items {
		if it.Bullets == nil {
			it.Bullets = []string{}
		}
		items[i] = it
	}
	return json.Marshal(struct {
		Count int           `json:"count"`
		Items []SummaryItem `json:"items"`
		Error string        `json:"error,omitempty"`
	}{len(items), items, r.Error})
}

// MarshalYAML mirrors MarshalJSON for the CLI's YAML output.
func (r SummaryResult) MarshalYAML() (any, error) {
	if r.rejected {
		return struct {
			Error string `yaml:"error"`
		}{r.Error}, nil
	}
	return struct {
		Count int           `yaml:"count"`
		Items []SummaryItem `yaml:"items"`
		Error string        `yaml:"error,omitempty"`
	}{len(r.Items), r.Items, r.Error}, nil
}
