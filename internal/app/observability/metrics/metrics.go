// Package metrics holds the application's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_http_requests_total",
		Help: "HTTP requests completed, by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voyago_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_llm_requests_total",
		Help: "Chat-completion calls, by outcome (ok, malformed, error).",
	}, []string{"outcome"})

	LLMRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voyago_llm_request_duration_seconds",
		Help:    "Chat-completion call latency.",
		Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 90},
	})

	GeocodeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_geocode_requests_total",
		Help: "Geocoding lookups, by outcome (ok, miss, error).",
	}, []string{"outcome"})

	RoutePlansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_route_plans_total",
		Help: "Route planning requests, by outcome (ok, fallback, cached, error).",
	}, []string{"outcome"})

	ASRSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyago_asr_sessions_total",
		Help: "Speech recognition sessions, by outcome (ok, no_speech, error).",
	}, []string{"outcome"})

	ASRSessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voyago_asr_session_duration_seconds",
		Help:    "Speech recognition session length.",
		Buckets: []float64{1, 2, 5, 10, 20, 40, 60},
	})
)
