// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

func newTestClaude(t *testing.T, handler http.HandlerFunc) *ClaudeModel {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return &ClaudeModel{
		APIKey:      "test-key",
		Model:       "test-model",
		MaxTokens:   128,
		Temperature: 0.2,
		BaseURL:     ts.URL,
		Client:      ts.Client(),
	}
}

func TestClaudeModelComplete(t *testing.T) {
	var got claudeRequest
	var headers http.Header
	var path string
	m := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		headers = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"content":[{"type":"text","text":"{\"count\":"},{"type":"tool_use"},{"type":"text","text":"0}"}],"stop_reason":"end_turn"}`)
	})

	out, err := m.Complete(context.Background(), "be precise", "summarize this")
	require.NoError(t, err)
	assert.Equal(t, `{"count":0}`, out)

	assert.Equal(t, "/v1/messages", path)
	assert.Equal(t, "test-key", headers.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, headers.Get("anthropic-version"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 128, got.MaxTokens)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
	assert.Equal(t, "be precise", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "summarize this", got.Messages[0].Content)
}

func TestClaudeModelComplete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error":"overloaded"}`, 529)
			},
			want: "calling Claude API: HTTP 529",
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `not json`)
			},
			want: "decoding Claude response",
		},
		{
			name: "no text blocks",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"content":[]}`)
			},
			want: "no text content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestClaude(t, tt.handler)
			_, err := m.Complete(context.Background(), "sys", "prompt")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClaudeModelComplete_NoAPIKey(t *testing.T) {
	called := false
	m := newTestClaude(t, func(http.ResponseWriter, *http.Request) { called = true })
	m.APIKey = ""

	_, err := m.Complete(context.Background(), "sys", "prompt")
	assert.ErrorContains(t, err, "no Anthropic API key")
	assert.False(t, called)
}

func TestClaudeModelComplete_ContextCancelled(t *testing.T) {
	m := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := m.Complete(ctx, "sys", "prompt")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	m, err := New(types.ModelConfig{Provider: ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	cm, ok := m.(*ClaudeModel)
	require.True(t, ok)
	assert.Equal(t, defaultModel, cm.Model)
	assert.Equal(t, defaultMaxTokens, cm.MaxTokens)
	assert.Equal(t, defaultTimeout, cm.Client.Timeout)

	m, err = New(types.ModelConfig{Model: "custom", MaxTokens: 10, Timeout: time.Second})
	require.NoError(t, err)
	cm = m.(*ClaudeModel)
	assert.Equal(t, "custom", cm.Model)
	assert.Equal(t, 10, cm.MaxTokens)
	assert.Equal(t, time.Second, cm.Client.Timeout)

	_, err = New(types.ModelConfig{Provider: "bedrock"})
	assert.ErrorContains(t, err, `unknown model provider "bedrock"`)
}

func TestModelFunc(t *testing.T) {
	var m Model = ModelFunc(func(_ context.Context, system, prompt string) (string, error) {
		return system + "|" + prompt, nil
	})
	out, err := m.Complete(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a|b", out)
}
