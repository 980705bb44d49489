// Package metrics exposes Prometheus counters for the platform: HTTP
// traffic, generation outcomes per provider, fallback reroutes, and credit
// spend. Scraped from GET /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nevis"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Generation requests by kind, provider, model and outcome",
		},
		[]string{"kind", "provider", "model", "outcome"},
	)

	fallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "fallbacks_total",
			Help:      "Requests that were rerouted away from the first provider",
		},
	)

	creditsSpentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "credits",
			Name:      "spent_total",
			Help:      "Credits spent by reason",
		},
		[]string{"reason"},
	)
)

// Middleware records a counter and latency observation for every request.
// The route template is used as the label, so path parameters stay bounded.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		requestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the Prometheus exposition endpoint.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// ObserveGeneration records one finished (or failed) generation.
func ObserveGeneration(kind, provider, model, outcome string) {
	generationsTotal.WithLabelValues(kind, provider, model, outcome).Inc()
}

// ObserveFallback records a reroute to the failover provider.
func ObserveFallback() {
	fallbacksTotal.Inc()
}

// AddCreditsSpent records amount credits leaving a balance.
func AddCreditsSpent(reason string, amount int) {
	creditsSpentTotal.WithLabelValues(reason).Add(float64(amount))
}
