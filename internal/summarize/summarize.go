// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns a search result into short bullet summaries using a
// language model. The summarizer validates the model's JSON and repairs it
// where possible; it always returns a well-formed types.SummaryResult.
package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/llm"
	"github.com/pdiddy/research-digest/internal/logging"
	"github.com/pdiddy/research-digest/internal/metrics"
	"github.com/pdiddy/research-digest/internal/tracing"
	"github.com/pdiddy/research-digest/pkg/types"
)

const (
	// MaxPapers is the most papers forwarded to the model per call.
	MaxPapers = 10

	// DefaultBullets is the bullet limit used by callers with no preference.
	DefaultBullets = 5

	// InputError is returned, without a model call, for input that is not an
	// object with a "papers" key.
	InputError = "Expected object with key 'papers'."
)

// Outcome labels for metrics and logs.
const (
	outcomeOK           = "ok"
	outcomeFallback     = "fallback"
	outcomeInvalidInput = "invalid_input"
	outcomeError        = "error"
)

// Summarizer summarizes papers with an injected model.
type Summarizer struct {
	Model  llm.Model
	Logger *zap.Logger
}

// New returns a Summarizer using model.
func New(model llm.Model, logger *zap.Logger) *Summarizer {
	return &Summarizer{Model: model, Logger: logging.OrNop(logger)}
}

// SummarizeSearch forwards a search result verbatim: a failed search encodes
// as {error} and is rejected as input.
func (s *Summarizer) SummarizeSearch(ctx context.Context, sr types.SearchResult, maxPerPaper int) types.SummaryResult {
	data, err := json.Marshal(sr)
	if err != nil {
		return types.NewSummaryResult(nil, fmt.Sprintf("summarize error: %v", err))
	}
	return s.Summarize(ctx, data, maxPerPaper)
}

// Summarize accepts a JSON object with a "papers" key and returns a
// SummaryResult whose count always equals len(items) and whose model items
// never carry more than maxPerPaper bullets. A negative maxPerPaper counts as
// 0. Fallback items always carry their single placeholder bullet.
func (s *Summarizer) Summarize(ctx context.Context, input []byte, maxPerPaper int) (result types.SummaryResult) {
	logger := logging.OrNop(s.Logger)
	if maxPerPaper < 0 {
		maxPerPaper = 0
	}

	ctx, span := tracing.StartSpan(ctx, "summarize.papers", attribute.Int("max_per_paper", maxPerPaper))
	defer span.End()

	outcome := outcomeOK
	defer func() {
		if r := recover(); r != nil {
			outcome = outcomeError
			result = types.NewSummaryResult(nil, fmt.Sprintf("summarize error: %v", r))
		}
		metrics.SummaryOutcomes.WithLabelValues(outcome).Inc()
		span.SetAttributes(attribute.String("outcome", outcome), attribute.Int("count", result.Count))
		if result.Error != "" {
			tracing.RecordError(span, result.Error)
			logger.Warn("Summarization degraded",
				zap.String("outcome", outcome),
				zap.Int("count", result.Count),
				zap.String("error", result.Error),
			)
			return
		}
		logger.Debug("Summarization completed", zap.Int("count", result.Count))
	}()

	papers, ok, err := decodeInput(input)
	if !ok {
		outcome = outcomeInvalidInput
		return types.InvalidSummaryInput(InputError)
	}
	if err != nil {
		outcome = outcomeError
		return types.NewSummaryResult(nil, fmt.Sprintf("summarize error: %v", err))
	}
	if len(papers) > MaxPapers {
		papers = papers[:MaxPapers]
	}

	raw, err := s.complete(ctx, papers, maxPerPaper)
	if err != nil {
		outcome = outcomeError
		return types.NewSummaryResult(nil, fmt.Sprintf("summarize error: %v", err))
	}

	items, err := parseModelOutput(raw, maxPerPaper)
	if err != nil {
		outcome = outcomeFallback
		return types.NewSummaryResult(fallbackItems(papers), fmt.Sprintf("JSON parse error: %v", err))
	}
	return types.NewSummaryResult(items, "")
}

func (s *Summarizer) complete(ctx context.Context, papers []types.PaperRecord, maxPerPaper int) (string, error) {
	if s.Model == nil {
		return "", errors.New("no model configured")
	}
	prompt, err := renderPrompt(papers, maxPerPaper)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	start := time.Now()
	raw, err := s.Model.Complete(ctx, systemPrompt(maxPerPaper), prompt)
	metrics.ModelCallDuration.WithLabelValues("summarize").Observe(time.Since(start).Seconds())
	return raw, err
}

// decodeInput checks the input shape. ok is false when input is not a JSON
// object with a "papers" key; err reports a "papers" value that is not a
// list of paper objects. A null "papers" is an empty list.
func decodeInput(input []byte) (papers []types.PaperRecord, ok bool, err error) {
	var obj map[string]json.RawMessage
	if jsonErr := json.Unmarshal(input, &obj); jsonErr != nil || obj == nil {
		return nil, false, nil
	}
	raw, present := obj["papers"]
	if !present {
		return nil, false, nil
	}
	if err := json.Unmarshal(raw, &papers); err != nil {
		return nil, true, fmt.Errorf("decoding papers: %w", err)
	}
	if papers == nil {
		papers = []types.PaperRecord{}
	}
	return papers, true, nil
}
