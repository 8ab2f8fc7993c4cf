// Package metrics defines and registers all custom Prometheus metrics for the
// parcel tracking engine. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics register with the default Prometheus registry at package init,
// so importing the package is enough; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parcel"

// ── Event pipeline metrics ────────────────────────────────────────────────────

// EventsProcessedTotal counts position events that completed processing.
// Label:
//   - status: the shipment status carried by the event (e.g. "in-transit")
var EventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_processed_total",
		Help:      "Total number of position events successfully processed.",
	},
	[]string{"status"},
)

// EventsErrorsTotal counts position events that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "shipment_not_found", "persist_failed")
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_errors_total",
		Help:      "Total number of position events that failed processing.",
	},
	[]string{"reason"},
)

// EventsDroppedTotal counts events discarded because the queue was full.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of position events dropped due to a full queue.",
	},
)

// EventsQueueDepth tracks the current number of events waiting in the queue.
var EventsQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of position events pending in the queue.",
	},
)

// StatusMismatchesTotal counts checkpoint events whose reported status did not
// match the route plan.
var StatusMismatchesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_mismatches_total",
		Help:      "Total number of consistency checks that flagged a status mismatch.",
	},
)

// ── Simulator metrics ─────────────────────────────────────────────────────────

// ActiveSimulators tracks the number of shipments currently being simulated.
var ActiveSimulators = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_simulators",
		Help:      "Current number of running shipment simulators.",
	},
)

// ── Fan-out metrics ───────────────────────────────────────────────────────────

// ActiveSubscribers tracks the number of live WebSocket subscriptions.
// Label:
//   - tracking_code: the shipment being watched
var ActiveSubscribers = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_subscribers",
		Help:      "Current number of live subscriptions, by tracking code.",
	},
	[]string{"tracking_code"},
)

// FanoutFailuresTotal counts deliveries that failed on a subscriber connection.
var FanoutFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fanout_failures_total",
		Help:      "Total number of event deliveries that failed on a subscriber connection.",
	},
)
