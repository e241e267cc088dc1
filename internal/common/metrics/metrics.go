// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_queries_total",
			Help: "Total number of questions answered, by route and status",
		},
		[]string{"route", "status"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	AnswerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "engine_answer_duration_seconds",
			Help: "Duration of answer production in seconds",
		},
		[]string{"route"},
	)

	RetrievalSourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_retrieval_source_errors_total",
			Help: "Retrieval source failures, by origin",
		},
		[]string{"origin"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_active_requests",
			Help: "Number of questions currently being answered",
		},
	)
)
