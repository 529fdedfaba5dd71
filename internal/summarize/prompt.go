// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/pdiddy/research-digest/pkg/types"
)

// systemDirective frames the model as a precise summarizer that answers in JSON only.
const systemDirective = `You are a precise research summarizer. For each paper, produce up to %d short, factual bullets (no fluff). Avoid speculation. If info is missing, say 'Not stated'. Return ONLY valid JSON matching the schema you are instructed to use.`

// summaryPromptTmpl is the user prompt: instruction, schema, expected shape
// and the bounded paper list.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`Return ONLY JSON. The output must be a single valid JSON object, with no text before or after it.

Instruction: Summarize each paper in up to {{.MaxBullets}} bullets. Use ONLY information inferable from title/authors/year and avoid claims you cannot verify.

JSON schema of the output:
{{.Schema}}

Expected output shape:
{{.Shape}}

Here are the papers:
{{.Papers}}
`))

// outputSchema describes {count, items:[{title, bullets, link}]} with the
// bullet limit as maxItems.
func outputSchema(maxBullets int) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"count": map[string]any{"type": "number"},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
						"bullets": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"maxItems": maxBullets,
						},
						"link": map[string]any{"type": "string"},
					},
					"required": []string{"title", "bullets", "link"},
				},
			},
		},
		"required": []string{"count", "items"},
	}
}

func systemPrompt(maxBullets int) string {
	return fmt.Sprintf(systemDirective, maxBullets)
}

// renderPrompt executes the summary prompt template for papers.
func renderPrompt(papers []types.PaperRecord, maxBullets int) (string, error) {
	schema, err := json.Marshal(outputSchema(maxBullets))
	if err != nil {
		return "", fmt.Errorf("marshaling schema: %w", err)
	}
	shape, err := json.Marshal(map[string]any{
		"count": len(papers),
		"items": []map[string]any{
			{"title": "<string>", "bullets": []string{"<string>"}, "link": "<string>"},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling shape: %w", err)
	}
	list, err := json.Marshal(papers)
	if err != nil {
		return "", fmt.Errorf("marshaling papers: %w", err)
	}

	var buf bytes.Buffer
	err = summaryPromptTmpl.Execute(&buf, struct {
		MaxBullets int
		Schema     string
		Shape      string
		Papers     string
	}{maxBullets, string(schema), string(shape), string(list)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
