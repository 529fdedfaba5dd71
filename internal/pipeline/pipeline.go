// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the digest flow: search the paper index, forward the
// search object verbatim to the summarizer, then render a readable answer.
// The sequence is fixed in code; a model is only ever used for the final
// prose, never to decide which step runs next.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/logging"
	"github.com/pdiddy/research-digest/internal/tracing"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Searcher returns papers for a query. Implementations are fail-soft.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) types.SearchResult
}

// Summarizer condenses a search result into bullet summaries. Implementations
// are fail-soft.
type Summarizer interface {
	SummarizeSearch(ctx context.Context, sr types.SearchResult, maxPerPaper int) types.SummaryResult
}

// Renderer turns a finished report into the final answer text.
type Renderer interface {
	Render(ctx context.Context, r Report) (string, error)
}

// Task is one user request.
type Task struct {
	Query      string `json:"query" yaml:"query"`
	MaxResults int    `json:"max_results" yaml:"max_results"`
	Bullets    int    `json:"bullets" yaml:"bullets"`
}

// Describe returns the natural-language description of the task.
func (t Task) Describe() string {
	return fmt.Sprintf("Find %d papers on '%s'. Summarize each in %d bullets. Then render a neat human-readable summary.",
		t.MaxResults, t.Query, t.Bullets)
}

// Report carries every intermediate object of one run.
type Report struct {
	Task    Task                `json:"task" yaml:"task"`
	Search  types.SearchResult  `json:"search" yaml:"search"`
	Summary types.SummaryResult `json:"summary" yaml:"summary"`
	Answer  string              `json:"answer" yaml:"answer"`
}

// Pipeline wires the three steps together.
type Pipeline struct {
	Search    Searcher
	Summarize Summarizer
	Render    Renderer
	Logger    *zap.Logger
}

// New creates a Pipeline. A nil renderer selects the template renderer.
func New(search Searcher, summarize Summarizer, render Renderer, logger *zap.Logger) *Pipeline {
	if render == nil {
		render = TemplateRenderer{}
	}
	return &Pipeline{
		Search:    search,
		Summarize: summarize,
		Render:    render,
		Logger:    logging.OrNop(logger),
	}
}

// Run executes search, summarize and render in that order. Search and
// summary failures are carried inside the report; only a cancelled context
// or a rendering failure returns an error.
func (p *Pipeline) Run(ctx context.Context, task Task) (Report, error) {
	logger := logging.OrNop(p.Logger)
	start := time.Now()
	report := Report{Task: task}

	ctx, span := tracing.StartSpan(ctx, "pipeline.run",
		attribute.String("query", task.Query),
		attribute.Int("max_results", task.MaxResults),
		attribute.Int("bullets", task.Bullets),
	)
	defer span.End()

	report.Search = p.Search.Search(ctx, task.Query, task.MaxResults)
	if err := ctx.Err(); err != nil {
		tracing.RecordError(span, err.Error())
		return report, fmt.Errorf("searching: %w", err)
	}

	report.Summary = p.Summarize.SummarizeSearch(ctx, report.Search, task.Bullets)
	if err := ctx.Err(); err != nil {
		tracing.RecordError(span, err.Error())
		return report, fmt.Errorf("summarizing: %w", err)
	}

	render := p.Render
	if render == nil {
		render = TemplateRenderer{}
	}
	answer, err := render.Render(ctx, report)
	if err != nil {
		tracing.RecordError(span, err.Error())
		return report, fmt.Errorf("rendering answer: %w", err)
	}
	report.Answer = answer

	logger.Info("digest completed",
		zap.String("query", task.Query),
		zap.Int("papers", report.Search.Count),
		zap.Int("summaries", report.Summary.Count),
		zap.String("search_error", report.Search.Error),
		zap.String("summary_error", report.Summary.Error),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}
