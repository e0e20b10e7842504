// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for dispatch and completion metrics.
const (
	StatusSuccess           = "success"
	StatusError             = "error"
	StatusUnresolved        = "unresolved"
	StatusPermissionDenied  = "permission_denied"
	StatusContextRestricted = "context_restricted"
	StatusRateLimited       = "rate_limited"
)

// Registration outcomes.
const (
	RegistrationAccepted = "accepted"
	RegistrationRejected = "rejected"
)

// CommandDispatches counts dispatches by matched label and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandDispatches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cmdtree_command_dispatches_total",
		Help: "Total number of command dispatches",
	},
	[]string{"label", "namespace", "status"},
)

// CommandDuration observes how long dispatches take, gating included.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "cmdtree_command_duration_seconds",
		Help:    "Command dispatch duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"label", "namespace"},
)

// Completions counts completion requests by matched label and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Completions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cmdtree_completions_total",
		Help: "Total number of tab completion requests",
	},
	[]string{"label", "namespace", "status"},
)

// Registrations counts registration attempts by kind and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cmdtree_registrations_total",
		Help: "Total number of command and completer registrations",
	},
	[]string{"kind", "status"},
)

// RegisterMetrics registers command package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CommandDispatches)
	reg.MustRegister(CommandDuration)
	reg.MustRegister(Completions)
	reg.MustRegister(Registrations)
}

// RecordDispatch increments the dispatch counter.
func RecordDispatch(label, namespace, status string) {
	CommandDispatches.WithLabelValues(label, namespace, status).Inc()
}

// RecordDispatchDuration observes a dispatch duration.
func RecordDispatchDuration(label, namespace string, duration time.Duration) {
	CommandDuration.WithLabelValues(label, namespace).Observe(duration.Seconds())
}

// RecordCompletion increments the completion counter.
func RecordCompletion(label, namespace, status string) {
	Completions.WithLabelValues(label, namespace, status).Inc()
}

// RecordRegistration increments the registration counter.
// kind is "command" or "completer".
func RecordRegistration(kind, status string) {
	Registrations.WithLabelValues(kind, status).Inc()
}
