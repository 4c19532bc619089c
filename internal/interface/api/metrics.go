package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gptwrapped",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gptwrapped",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	archivesAnalyzed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gptwrapped",
			Name:      "archives_analyzed_total",
			Help:      "Archives turned into a report.",
		},
	)

	messagesAnalyzed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gptwrapped",
			Name:      "messages_analyzed_total",
			Help:      "In-year messages counted across all reports.",
		},
	)
)
