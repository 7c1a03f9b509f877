package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vehiclesearch_searches_total",
		Help: "Total number of search requests, labeled by outcome.",
	}, []string{"outcome"})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vehiclesearch_search_duration_seconds",
		Help:    "Latency of the full parse-filter-rank pipeline.",
		Buckets: prometheus.DefBuckets,
	})

	skippedCandidatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vehiclesearch_skipped_candidates_total",
		Help: "Candidates dropped during scoring due to recovered failures.",
	})

	suggestionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vehiclesearch_suggestions_total",
		Help: "Total number of suggestion requests served.",
	})
)
