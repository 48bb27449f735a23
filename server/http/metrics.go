package cayleyhttp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kgl_http_queries_total",
		Help: "Number of queries served over the HTTP query endpoint, by outcome.",
	}, []string{"outcome"})

	mQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "kgl_http_query_duration_seconds",
		Help: "Time spent evaluating a query submitted over HTTP.",
	})

	mAutocompleteTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgl_http_autocomplete_total",
		Help: "Number of autocomplete requests served.",
	})
)
