// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

const sampleArxivSearchXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title type="html">ArXiv Query: search_query=all:federated learning privacy</title>
  <entry>
    <id>http://arxiv.org/abs/1912.04977v3</id>
    <published>2019-12-10T18:59:23Z</published>
    <title>
      Advances and Open Problems in Federated Learning
    </title>
    <summary>Federated learning (FL) is a machine learning setting.</summary>
    <author><name> Peter Kairouz </name></author>
    <author><name>H. Brendan McMahan</name></author>
    <link title="doi" href="http://dx.doi.org/10.1561/2200000083" rel="related"/>
    <link href="http://arxiv.org/abs/1912.04977v3" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1912.04977v3" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2003.02133v1</id>
    <published>2020-03-04T15:38:02Z</published>
    <title>Threats to Federated Learning: A Survey</title>
    <author><name>Lingjuan Lyu</name></author>
    <link title="pdf" href="http://arxiv.org/pdf/2003.02133v1" rel="related"/>
    <link href="http://arxiv.org/abs/2003.02133v1" rel="alternate"/>
    <link href="http://example.org/second-alternate" rel="alternate"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/0000.00000v1</id>
  </entry>
</feed>`

// newTestSource points an ArxivSource at handler.
func newTestSource(t *testing.T, handler http.HandlerFunc) *ArxivSource {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return &ArxivSource{
		Client:    ts.Client(),
		BaseURL:   ts.URL,
		UserAgent: "test/0.1 (mailto:test@example.com)",
		Timeout:   5 * time.Second,
	}
}

func TestClampMaxResults(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-10, 1},
		{0, 1},
		{1, 1},
		{3, 3},
		{25, 25},
		{26, 25},
		{1000, 25},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.in), func(t *testing.T) {
			got := ClampMaxResults(tt.in)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 1)
			assert.LessOrEqual(t, got, 25)
		})
	}
}

func TestArxivSourceSearch(t *testing.T) {
	var gotQuery map[string][]string
	var gotUA string
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, sampleArxivSearchXML)
	})

	res := src.Search(context.Background(), "federated learning privacy", 3)
	require.False(t, res.Failed(), "unexpected error: %s", res.Error)

	assert.Equal(t, "federated learning privacy", res.Query)
	assert.Equal(t, 3, res.Count)
	require.Len(t, res.Papers, 3)
	assert.Equal(t, res.Count, len(res.Papers))

	p := res.Papers[0]
	assert.Equal(t, "Advances and Open Problems in Federated Learning", p.Title)
	assert.Equal(t, []string{"Peter Kairouz", "H. Brendan McMahan"}, p.Authors)
	assert.Equal(t, "2019", p.Year)
	assert.Equal(t, "http://arxiv.org/abs/1912.04977v3", p.Link)

	// The first alternate link wins.
	assert.Equal(t, "http://arxiv.org/abs/2003.02133v1", res.Papers[1].Link)

	// Missing fields become empty values, never nil.
	empty := res.Papers[2]
	assert.Equal(t, "", empty.Title)
	assert.Equal(t, "", empty.Year)
	assert.Equal(t, "", empty.Link)
	assert.NotNil(t, empty.Authors)
	assert.Empty(t, empty.Authors)

	assert.Equal(t, []string{"all:federated learning privacy"}, gotQuery["search_query"])
	assert.Equal(t, []string{"0"}, gotQuery["start"])
	assert.Equal(t, []string{"3"}, gotQuery["max_results"])
	assert.Equal(t, []string{"relevance"}, gotQuery["sortBy"])
	assert.Equal(t, []string{"descending"}, gotQuery["sortOrder"])
	assert.Equal(t, "test/0.1 (mailto:test@example.com)", gotUA)
}

func TestArxivSourceSearch_ClampsUpstreamCount(t *testing.T) {
	tests := []struct {
		requested int
		want      string
	}{
		{-5, "1"},
		{0, "1"},
		{7, "7"},
		{99, "25"},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.requested), func(t *testing.T) {
			var got string
			src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Query().Get("max_results")
				fmt.Fprint(w, `<feed xmlns="http://www.w3.org/2005/Atom"></feed>`)
			})
			res := src.Search(context.Background(), "q", tt.requested)
			require.False(t, res.Failed(), res.Error)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArxivSourceSearch_EmptyFeed(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<feed xmlns="http://www.w3.org/2005/Atom"><title>none</title></feed>`)
	})

	res := src.Search(context.Background(), "nothing matches", 5)
	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Papers)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"nothing matches","count":0,"papers":[]}`, string(data))
}

func TestArxivSourceSearch_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: "arXiv error: HTTP 500",
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "gone", http.StatusNotFound)
			},
			want: "arXiv error: HTTP 404: gone",
		},
		{
			name: "truncated xml",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `<feed xmlns="http://www.w3.org/2005/Atom"><entry><title>half`)
			},
			want: "arXiv error: parsing response:",
		},
		{
			name: "not xml",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "rate limit exceeded, slow down")
			},
			want: "arXiv error: parsing response:",
		},
		{
			name: "wrong namespace",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `<feed><entry><title>x</title></entry></feed>`)
			},
			want: "arXiv error: parsing response:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestSource(t, tt.handler)
			res := src.Search(context.Background(), "q", 3)

			require.True(t, res.Failed())
			assert.Contains(t, res.Error, tt.want)
			assert.Nil(t, res.Papers)

			// The error shape carries nothing but the error key.
			data, err := json.Marshal(res)
			require.NoError(t, err)
			var obj map[string]any
			require.NoError(t, json.Unmarshal(data, &obj))
			assert.Len(t, obj, 1)
			assert.Contains(t, obj, "error")
		})
	}
}

func TestArxivSourceSearch_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := ts.URL
	ts.Close()

	src := &ArxivSource{Client: &http.Client{Timeout: time.Second}, BaseURL: base}
	res := src.Search(context.Background(), "q", 3)
	require.True(t, res.Failed())
	assert.Contains(t, res.Error, "arXiv error:")
}

func TestArxivSourceSearch_Timeout(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	src.Timeout = 50 * time.Millisecond

	res := src.Search(context.Background(), "slow", 3)
	require.True(t, res.Failed())
	assert.Contains(t, res.Error, "arXiv error:")
}

func TestArxivSourceSearch_SingleRequest(t *testing.T) {
	var calls int32
	src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	res := src.Search(context.Background(), "q", 3)
	assert.True(t, res.Failed())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestArxivSourceSearch_Idempotent(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sampleArxivSearchXML)
	})

	first := src.Search(context.Background(), "federated learning privacy", 3)
	second := src.Search(context.Background(), "federated learning privacy", 3)
	require.False(t, first.Failed())
	assert.Equal(t, first.Count, second.Count)
	for i := range first.Papers {
		assert.Equal(t, first.Papers[i].Title, second.Papers[i].Title)
	}
}

func TestNewArxivSourceDefaults(t *testing.T) {
	src := NewArxivSource(types.SearchConfig{}, nil)
	assert.Equal(t, DefaultBaseURL, src.BaseURL)
	assert.Equal(t, DefaultUserAgent, src.UserAgent)
	assert.Equal(t, DefaultTimeout, src.Timeout)
	require.NotNil(t, src.Client)
	assert.Equal(t, DefaultTimeout, src.Client.Timeout)
	assert.NotNil(t, src.Logger)
}

func TestYearOf(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2019-12-10T18:59:23Z", "2019"},
		{"2020", "2020"},
		{"20", "20"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, yearOf(tt.in))
		})
	}
}
