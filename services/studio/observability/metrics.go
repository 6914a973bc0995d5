// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides metrics and instrumentation for the
// studio service.
//
// # Description
//
// This package implements Prometheus metrics for monitoring the HTTP
// surface and the AI generation boundary. Metrics include:
//   - Request counters (by route, method, status)
//   - Request latency histograms
//   - Active websocket gauge
//   - AI generation counters and latency (by operation, outcome)
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal
// locking.
package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "studioloom"

// Subsystem for HTTP metrics
const httpSubsystem = "http"

// Subsystem for AI boundary metrics
const aiSubsystem = "ai"

// HTTPMetrics holds the Prometheus metrics for the studio's HTTP and
// AI surfaces. Initialize once at startup via InitMetrics().
type HTTPMetrics struct {
	// RequestsTotal counts HTTP requests by route, method and status.
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures request latency by route.
	RequestDurationSeconds *prometheus.HistogramVec

	// ActiveWebsockets tracks open event-push websocket connections.
	ActiveWebsockets prometheus.Gauge

	// GenerationsTotal counts AI generation calls by operation and
	// outcome. Labels: operation (plan, caption, trends, image),
	// outcome (success, transient_error, permanent_error)
	GenerationsTotal *prometheus.CounterVec

	// GenerationDurationSeconds measures AI call latency by operation.
	GenerationDurationSeconds *prometheus.HistogramVec
}

// DefaultMetrics is the singleton instance of HTTPMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *HTTPMetrics

// InitMetrics creates and registers all metrics with the default
// Prometheus registry. Call once at startup; panics if called twice.
func InitMetrics() *HTTPMetrics {
	DefaultMetrics = newMetrics(prometheus.DefaultRegisterer)
	return DefaultMetrics
}

// NewMetricsWithRegistry creates metrics bound to a custom registry.
// Intended for tests, which need isolation from the global registry.
func NewMetricsWithRegistry(reg prometheus.Registerer) *HTTPMetrics {
	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)

	return &HTTPMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "Total HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),

		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds by route",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"route"},
		),

		ActiveWebsockets: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "active_websockets",
				Help:      "Number of open event-push websocket connections",
			},
		),

		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: aiSubsystem,
				Name:      "generations_total",
				Help:      "Total AI generation calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),

		GenerationDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: aiSubsystem,
				Name:      "generation_duration_seconds",
				Help:      "AI generation call latency in seconds by operation",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
	}
}

// ObserveGeneration records one AI generation call.
func (m *HTTPMetrics) ObserveGeneration(operation, outcome string, elapsed time.Duration) {
	m.GenerationsTotal.WithLabelValues(operation, outcome).Inc()
	m.GenerationDurationSeconds.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Middleware returns a gin middleware recording request count and
// latency per route. Uses the route template (not the raw path) so
// parameterized routes share a label.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(route, c.Request.Method, status).Inc()
		m.RequestDurationSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
