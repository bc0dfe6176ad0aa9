// Package metrics defines and registers the custom Prometheus metrics of the
// platform API. Metric names, labels and help strings live here and nowhere
// else.
//
// All metrics are registered on the default registry through promauto, so
// importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "platform"

// ── Module registry ───────────────────────────────────────────────────────────

// ModuleLoadsTotal counts bulk registry loads.
// Label:
//   - result: "ok" or "error"
var ModuleLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "module_loads_total",
		Help:      "Total number of module registry bulk loads, by result.",
	},
	[]string{"result"},
)

// ModuleLoadDuration measures a single fetch-and-swap of the registry.
var ModuleLoadDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "module_load_duration_seconds",
		Help:      "Duration of module registry bulk loads.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ModulesRegistered tracks how many descriptors the registry currently holds.
var ModulesRegistered = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "modules_registered",
		Help:      "Number of module descriptors currently registered.",
	},
)

// ── Tenant isolation ──────────────────────────────────────────────────────────

// TenantStampsTotal counts tenant interceptor decisions.
// Label:
//   - decision: "stamped", "super_admin", "skipped", "anonymous"
var TenantStampsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tenant_stamps_total",
		Help:      "Tenant interceptor decisions, by outcome.",
	},
	[]string{"decision"},
)

// ── Notifications ─────────────────────────────────────────────────────────────

// NotificationsCreatedTotal counts persisted notifications.
// Label:
//   - type: info, success, warning, error
var NotificationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Total number of notifications persisted, by type.",
	},
	[]string{"type"},
)

// NotificationsErrorsTotal counts notifications the dispatcher failed to persist.
var NotificationsErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_errors_total",
		Help:      "Total number of notifications that failed to persist.",
	},
)

// NotificationsQueueDepth tracks pending notifications per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── WebSocket ────────────────────────────────────────────────────────────────

// WSConnections tracks open gateway connections.
// Label:
//   - namespace: gateway namespace, e.g. "whatsapp"
var WSConnections = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Currently open WebSocket connections, by namespace.",
	},
	[]string{"namespace"},
)
