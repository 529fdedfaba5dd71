// Package metrics declares the Prometheus collectors for research-digest.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Paper source metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_digest_search_requests_total",
			Help: "Paper index queries by outcome",
		},
		[]string{"status"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_digest_search_duration_seconds",
			Help:    "Paper index query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SearchPapers = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_digest_search_papers",
			Help:    "Number of papers returned per successful query",
			Buckets: []float64{0, 1, 3, 5, 10, 25},
		},
	)

	// Summarizer metrics
	SummaryOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_digest_summary_outcomes_total",
			Help: "Summarizer results by outcome (ok, fallback, invalid_input, error)",
		},
		[]string{"outcome"},
	)

	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_digest_model_call_duration_seconds",
			Help:    "Language model call duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"purpose"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_digest_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_digest_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"route"},
	)
)
