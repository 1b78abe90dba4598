// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "funding"

// StateTransitions counts every coordinator state an operation enters.
var StateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "coordinator",
	Name:      "state_transitions_total",
	Help:      "Total coordinator state transitions by kind and state.",
}, []string{"kind", "state"})

// Operations counts finished operations by outcome.
var Operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "coordinator",
	Name:      "operations_total",
	Help:      "Total balance operations by kind and outcome.",
}, []string{"kind", "outcome"})

// OperationDuration observes end-to-end operation latency.
var OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "coordinator",
	Name:      "operation_duration_seconds",
	Help:      "Balance operation latency in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"kind"})

// LockWait observes time spent waiting for the per-account lock.
var LockWait = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "coordinator",
	Name:      "lock_wait_seconds",
	Help:      "Time spent acquiring the per-account lock.",
	Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
})

// Notifications counts notification deliveries by outcome.
var Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "notifier",
	Name:      "notifications_total",
	Help:      "Notification deliveries by outcome (delivered, retried, failed, dropped).",
}, []string{"outcome"})

// NotificationQueueDepth tracks pending notifications.
var NotificationQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "notifier",
	Name:      "queue_depth",
	Help:      "Current number of notifications waiting for delivery.",
})

// Compensations counts refunds issued after a failed resource creation.
var Compensations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "provisioner",
	Name:      "compensations_total",
	Help:      "Refunds issued after failed resource creation, by outcome.",
}, []string{"outcome"})

// AuditMismatches counts accounts whose log replay disagreed with the balance.
var AuditMismatches = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "audit",
	Name:      "mismatches_total",
	Help:      "Accounts whose replayed ledger did not match the stored balance.",
})

// HTTPRequests counts served requests by route pattern and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by method, route and status code.",
}, []string{"method", "route", "status"})
