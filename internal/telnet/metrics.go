// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package telnet

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Connections counts accepted connections.
var Connections = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "cmdtree_telnet_connections_total",
	Help: "Total number of accepted telnet connections",
})

// Sessions tracks connections that completed login.
var Sessions = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "cmdtree_telnet_sessions",
	Help: "Number of logged-in telnet sessions",
})

// RegisterMetrics registers telnet metrics with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Connections)
	reg.MustRegister(Sessions)
}
