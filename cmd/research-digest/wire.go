// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/pdiddy/research-digest/internal/llm"
	"github.com/pdiddy/research-digest/internal/pipeline"
	"github.com/pdiddy/research-digest/internal/search"
	"github.com/pdiddy/research-digest/internal/summarize"
	"github.com/pdiddy/research-digest/pkg/types"
)

func newSummarizer(c types.Config) (*summarize.Summarizer, llm.Model, error) {
	model, err := llm.New(c.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("configuring model: %w", err)
	}
	return summarize.New(model, logger), model, nil
}

func newPipeline(c types.Config) (*pipeline.Pipeline, error) {
	summarizer, model, err := newSummarizer(c)
	if err != nil {
		return nil, err
	}
	renderer, err := pipeline.NewRenderer(c.Render, model, logger)
	if err != nil {
		return nil, err
	}
	return pipeline.New(search.NewArxivSource(c.Search, logger), summarizer, renderer, logger), nil
}
