// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the language model so callers depend on a single
// function-shaped capability that tests can replace with a deterministic stub.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Model turns a system directive plus a prompt into text. Output may be
// non-deterministic; callers validate it.
type Model interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(ctx context.Context, system, prompt string) (string, error)

// Complete calls f.
func (f ModelFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

const (
	// ProviderAnthropic selects the Anthropic Messages API.
	ProviderAnthropic = "anthropic"

	defaultModel     = "claude-3-5-sonnet-20241022"
	defaultMaxTokens = 2000
	defaultTimeout   = 60 * time.Second
)

// New builds the Model selected by cfg.Provider.
func New(cfg types.ModelConfig) (Model, error) {
	switch cfg.Provider {
	case "", ProviderAnthropic:
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		m := &ClaudeModel{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			BaseURL:     cfg.BaseURL,
			Client:      &http.Client{Timeout: timeout},
		}
		if m.Model == "" {
			m.Model = defaultModel
		}
		if m.MaxTokens <= 0 {
			m.MaxTokens = defaultMaxTokens
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
