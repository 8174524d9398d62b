// Package metrics defines and registers the custom Prometheus metrics of the
// CultureCart accounts API. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics register with the default Prometheus registry at package init
// through promauto, and are exposed on /metrics next to the HTTP metrics
// collected by the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "culturecart"

// ── Auth gate ────────────────────────────────────────────────────────────────

// GateRejectionsTotal counts requests refused by the auth gate.
// Label:
//   - reason: "no_token", "invalid_token", "expired_token", "user_not_found",
//     "suspended", "insufficient_role", "error"
var GateRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_gate_rejections_total",
		Help:      "Total number of requests rejected by the auth gate.",
	},
	[]string{"reason"},
)

// ── Account flows ────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts credential checks.
// Labels:
//   - flow: "login", "admin_login", "login_or_register"
//   - result: "success", "invalid_credentials", "suspended", "throttled"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts by flow and result.",
	},
	[]string{"flow", "result"},
)

// RegistrationsTotal counts created accounts.
// Labels:
//   - source: "register", "login_or_register", "admin", "bootstrap"
//   - role: the persisted role
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts created, by source and role.",
	},
	[]string{"source", "role"},
)

// PasswordHashDuration measures bcrypt work including time spent waiting for
// a hashing slot.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hashing and verification.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
	},
	[]string{"op"},
)

// ── Session audit ────────────────────────────────────────────────────────────

// SessionsRecordedTotal counts audit writes.
// Labels:
//   - type: the session type
//   - result: "ok", "error", "dropped"
var SessionsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_recorded_total",
		Help:      "Total number of session audit entries by type and outcome.",
	},
	[]string{"type", "result"},
)

// SessionQueueDepth tracks audit entries waiting for a worker.
var SessionQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_queue_depth",
		Help:      "Current number of session audit entries waiting to be written.",
	},
)

// ── Uploads ──────────────────────────────────────────────────────────────────

// UploadsTotal counts stored profile images.
// Labels:
//   - kind: "avatar" or "gallery"
//   - result: "ok" or "error"
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of uploaded profile images, by kind and result.",
	},
	[]string{"kind", "result"},
)
