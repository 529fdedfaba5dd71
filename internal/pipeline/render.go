// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/llm"
	"github.com/pdiddy/research-digest/internal/logging"
	"github.com/pdiddy/research-digest/internal/metrics"
	"github.com/pdiddy/research-digest/pkg/types"
)

// answerTmpl renders a report as plain text. Entries come from the summary
// when it has items, otherwise from the bare search results.
var answerTmpl = template.Must(template.New("answer").Parse(
	`{{- if .SearchError -}}
No papers could be retrieved for "{{.Query}}": {{.SearchError}}
{{- else if not .Entries -}}
No papers found for "{{.Query}}".
{{- else -}}
{{len .Entries}} paper(s) on "{{.Query}}":
{{range .Entries}}
{{.Index}}. {{.Title}}{{if .Year}} ({{.Year}}){{end}}
{{- if .Authors}}
   {{.Authors}}{{end}}
{{- range .Bullets}}
   - {{.}}{{end}}
{{- if .Link}}
   {{.Link}}{{end}}
{{end}}
{{- end}}
{{- if .SummaryError}}
Note: {{.SummaryError}}{{end}}
`))

type answerEntry struct {
	Index   int
	Title   string
	Year    string
	Authors string
	Link    string
	Bullets []string
}

type answerView struct {
	Query        string
	SearchError  string
	SummaryError string
	Entries      []answerEntry
}

// TemplateRenderer renders reports deterministically without a model.
type TemplateRenderer struct{}

// Render implements Renderer.
func (TemplateRenderer) Render(_ context.Context, r Report) (string, error) {
	var b strings.Builder
	if err := answerTmpl.Execute(&b, newAnswerView(r)); err != nil {
		return "", fmt.Errorf("executing answer template: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

func newAnswerView(r Report) answerView {
	v := answerView{Query: r.Task.Query}
	if r.Search.Failed() {
		v.SearchError = r.Search.Error
		return v
	}
	v.SummaryError = r.Summary.Error

	if len(r.Summary.Items) > 0 {
		for i, it := range r.Summary.Items {
			e := answerEntry{Index: i + 1, Title: it.Title, Link: it.Link, Bullets: it.Bullets}
			if p, ok := matchPaper(r.Search.Papers, it, i); ok {
				e.Year = p.Year
				e.Authors = strings.Join(p.Authors, ", ")
				if e.Link == "" {
					e.Link = p.Link
				}
			}
			v.Entries = append(v.Entries, e)
		}
		return v
	}

	for i, p := range r.Search.Papers {
		v.Entries = append(v.Entries, answerEntry{
			Index:   i + 1,
			Title:   p.Title,
			Year:    p.Year,
			Authors: strings.Join(p.Authors, ", "),
			Link:    p.Link,
		})
	}
	return v
}

// matchPaper finds the search record a summary item describes: by link, then
// by title, then by position when the position's title agrees or is blank.
func matchPaper(papers []types.PaperRecord, it types.SummaryItem, i int) (types.PaperRecord, bool) {
	if it.Link != "" {
		for _, p := range papers {
			if p.Link == it.Link {
				return p, true
			}
		}
	}
	if it.Title != "" {
		for _, p := range papers {
			if strings.EqualFold(p.Title, it.Title) {
				return p, true
			}
		}
	}
	if i < len(papers) && it.Title == "" && it.Link == "" {
		return papers[i], true
	}
	return types.PaperRecord{}, false
}

// renderDirective is the fixed system directive for prose rendering.
const renderDirective = `You are an assistant that presents research paper summaries.
You are given the papers found for a query and their bullet summaries as JSON.
Render a neat, human-readable summary with titles and bullet lists.
Use only the information provided. Do not add papers or facts.`

// ModelRenderer asks the model for the final prose and falls back to another
// renderer when the model fails or returns nothing.
type ModelRenderer struct {
	Model    llm.Model
	Fallback Renderer
	Logger   *zap.Logger
}

// Render implements Renderer.
func (m ModelRenderer) Render(ctx context.Context, r Report) (string, error) {
	fallback := m.Fallback
	if fallback == nil {
		fallback = TemplateRenderer{}
	}
	if m.Model == nil || r.Search.Failed() {
		return fallback.Render(ctx, r)
	}
	logger := logging.OrNop(m.Logger)

	prompt, err := buildRenderPrompt(r)
	if err != nil {
		logger.Warn("encoding render input failed, using template", zap.Error(err))
		return fallback.Render(ctx, r)
	}

	start := time.Now()
	text, err := m.Model.Complete(ctx, renderDirective, prompt)
	metrics.ModelCallDuration.WithLabelValues("render").Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Warn("model rendering failed, using template", zap.Error(err))
		return fallback.Render(ctx, r)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Warn("model returned empty answer, using template")
		return fallback.Render(ctx, r)
	}
	return text, nil
}

// buildRenderPrompt is a package variable so tests can force encoding failures.
var buildRenderPrompt = renderPrompt

func renderPrompt(r Report) (string, error) {
	payload, err := json.MarshalIndent(struct {
		Papers  []types.PaperRecord `json:"papers"`
		Summary types.SummaryResult `json:"summary"`
	}{r.Search.Papers, r.Summary}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding render input: %w", err)
	}
	return r.Task.Describe() + "\n\n" + string(payload), nil
}

// NewRenderer selects a renderer by mode. The model renderer requires a model.
func NewRenderer(cfg types.RenderConfig, model llm.Model, logger *zap.Logger) (Renderer, error) {
	switch cfg.Mode {
	case "", types.RenderTemplate:
		return TemplateRenderer{}, nil
	case types.RenderModel:
		if model == nil {
			return nil, fmt.Errorf("render mode %q requires a model", cfg.Mode)
		}
		return ModelRenderer{Model: model, Fallback: TemplateRenderer{}, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown render mode %q", cfg.Mode)
	}
}
