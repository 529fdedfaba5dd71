// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/research-digest/pkg/types"
)

// fallbackBullet is the placeholder used when the model output cannot be parsed.
const fallbackBullet = "Summary unavailable (parse error)."

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n(.*?)\n?```")

// extractJSON strips a markdown code fence or prose around the JSON object.
// Text that already starts as JSON, or has no braces, is only trimmed so its
// parse error stays visible.
func extractJSON(raw string) string {
	if m := codeFenceRe.FindStringSubmatch(raw); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed
	}
	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start < 0 || end < start {
		return trimmed
	}
	return trimmed[start : end+1]
}

// parseModelOutput validates the model reply and repairs what can be
// repaired. Only a reply that is not a JSON object, an "items" value that is
// not an array, or an item that is not an object fails. Item fields are
// lenient: a field that is missing or of the wrong type becomes its zero
// value. Bullets are truncated to maxBullets and items beyond MaxPapers are
// dropped; the caller recomputes the count from the items kept.
func parseModelOutput(raw string, maxBullets int) ([]types.SummaryItem, error) {
	text := extractJSON(raw)

	var top any
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, err
	}
	if _, ok := top.(map[string]any); !ok {
		return nil, errors.New("model returned non-object JSON")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, err
	}
	itemsRaw, ok := obj["items"]
	if !ok || string(itemsRaw) == "null" {
		return []types.SummaryItem{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(itemsRaw, &entries); err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}
	if len(entries) > MaxPapers {
		entries = entries[:MaxPapers]
	}

	items := make([]types.SummaryItem, 0, len(entries))
	for i, entry := range entries {
		it, err := decodeItem(entry, maxBullets)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func decodeItem(raw json.RawMessage, maxBullets int) (types.SummaryItem, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return types.SummaryItem{}, errors.New("item is not an object")
	}

	bullets := stringList(fields["bullets"])
	if maxBullets < 0 {
		maxBullets = 0
	}
	if len(bullets) > maxBullets {
		bullets = bullets[:maxBullets:maxBullets]
	}
	return types.SummaryItem{
		Title:   stringValue(fields["title"]),
		Bullets: bullets,
		Link:    stringValue(fields["link"]),
	}, nil
}

// stringValue decodes a JSON string, or returns "" for anything else.
func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// stringList decodes a JSON array keeping its string entries. Anything that
// is not an array yields an empty list.
func stringList(raw json.RawMessage) []string {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		var s string
		if err := json.Unmarshal(e, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// fallbackItems synthesizes one placeholder item per paper, keeping title and
// link. The placeholder is kept even when the bullet limit is 0.
func fallbackItems(papers []types.PaperRecord) []types.SummaryItem {
	items := make([]types.SummaryItem, 0, len(papers))
	for _, p := range papers {
		items = append(items, types.SummaryItem{
			Title:   p.Title,
			Bullets: []string{fallbackBullet},
			Link:    p.Link,
		})
	}
	return items
}
