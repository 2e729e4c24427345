// Package metrics provides centralized Prometheus metrics for the
// thread-generation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track request patterns at the API boundary.
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// Fetch metrics observe the bounded fetcher.
var (
	// FetchDuration measures the wall-clock duration of the whole
	// multi-hop fetch operation in seconds.
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "article_fetch_duration_seconds",
			Help:    "Duration of bounded article fetches including redirects",
			Buckets: prometheus.DefBuckets,
		},
	)

	// FetchBytes measures the size of successfully fetched HTML bodies.
	FetchBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "article_fetch_bytes",
			Help:    "Size in bytes of fetched HTML bodies",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)
)

// Pipeline metrics observe terminal outcomes and the LLM stage.
var (
	// PipelineOutcomesTotal counts terminal pipeline results by error code
	// ("ok" for success).
	PipelineOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generate_outcomes_total",
			Help: "Terminal outcomes of generate requests by error code",
		},
		[]string{"code"},
	)

	// ThreadWriterDuration measures LLM call durations by provider and stage.
	ThreadWriterDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thread_writer_duration_seconds",
			Help:    "Duration of thread writer calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "stage"},
	)
)

// Abuse-control metrics observe admission decisions.
var (
	// AbuseDecisionsTotal counts admission decisions by result
	// ("allowed", "rate_limit", "cooldown", "bypass").
	AbuseDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abuse_decisions_total",
			Help: "Abuse-control admission decisions",
		},
		[]string{"decision"},
	)
)
