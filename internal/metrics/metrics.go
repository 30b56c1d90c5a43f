// Package metrics exposes Prometheus collectors fed from the event bus.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	eventbus "github.com/graphmount/graphmount/internal/eventbus"
	events "github.com/graphmount/graphmount/internal/events"
)

var (
	// Registry holds the kit's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "graphmount",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight transport requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphmount",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of transport requests handled.",
		},
		[]string{"adapter", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "graphmount",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of transport requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"adapter", "method"},
	)

	gqlOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphmount",
			Subsystem: "graphql",
			Name:      "operations_total",
			Help:      "Total number of GraphQL operations executed.",
		},
		[]string{"type"},
	)

	gqlErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphmount",
			Subsystem: "graphql",
			Name:      "operation_errors_total",
			Help:      "Total number of GraphQL operations that returned errors.",
		},
		[]string{"type"},
	)

	gqlDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "graphmount",
			Subsystem: "graphql",
			Name:      "operation_duration_seconds",
			Help:      "Duration of GraphQL operation execution.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"type"},
	)

	drainHookDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "graphmount",
			Subsystem: "lifecycle",
			Name:      "drain_hook_duration_seconds",
			Help:      "Duration of the last run of each drain hook.",
		},
		[]string{"hook", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		gqlOperations,
		gqlErrors,
		gqlDuration,
		drainHookDuration,
	)
}

// Register attaches the metric subscribers to the global event bus.
func Register() {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPStart) {
		httpInFlight.Inc()
	})
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		httpInFlight.Dec()
		httpRequests.WithLabelValues(e.Adapter, e.Method, strconv.Itoa(e.Status)).Inc()
		httpDuration.WithLabelValues(e.Adapter, e.Method).Observe(e.Duration.Seconds())
	})
	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		gqlOperations.WithLabelValues(e.OperationType).Inc()
		gqlDuration.WithLabelValues(e.OperationType).Observe(e.Duration.Seconds())
		if len(e.Errors) > 0 {
			gqlErrors.WithLabelValues(e.OperationType).Inc()
		}
	})
	eventbus.Subscribe(func(ctx context.Context, e events.DrainHookDone) {
		outcome := "ok"
		if e.Err != nil {
			outcome = "error"
		}
		drainHookDuration.WithLabelValues(e.Name, outcome).Set(e.Duration.Seconds())
	})
}

// Handler serves the registry in Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
