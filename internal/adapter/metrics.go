// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package adapter

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Delivery status values for DeliveriesTotal.
const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// Binding state values for BindingState.
const (
	StateIncapable = "incapable"
	StateChat      = "chat"
	StateTitle     = "title"
)

// BindingState reports the most recently built binding: the gauge for the
// current state is 1 and the others are 0.
// Use RegisterMetrics to register this with a Prometheus registry.
var BindingState = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "textbridge_binding_state",
		Help: "Capability of the host binding (incapable, chat, title)",
	},
	[]string{"state"},
)

// PacketsBuilt counts packets constructed, by packet kind.
var PacketsBuilt = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "textbridge_packets_built_total",
		Help: "Total number of packets constructed",
	},
	[]string{"kind"},
)

// DeliveriesTotal counts per-recipient delivery attempts.
var DeliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "textbridge_deliveries_total",
		Help: "Total number of packet deliveries by kind and status",
	},
	[]string{"kind", "status"},
)

// RegisterMetrics registers adapter metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(BindingState)
	reg.MustRegister(PacketsBuilt)
	reg.MustRegister(DeliveriesTotal)
}

func recordBinding(b *Binding) {
	state := StateIncapable
	switch {
	case b.CanMakeTitle():
		state = StateTitle
	case b.Capable():
		state = StateChat
	}
	for _, s := range []string{StateIncapable, StateChat, StateTitle} {
		v := 0.0
		if s == state {
			v = 1
		}
		BindingState.WithLabelValues(s).Set(v)
	}
}

func recordPacket(kind string) {
	PacketsBuilt.WithLabelValues(kind).Inc()
}

func recordDelivery(kind, status string) {
	DeliveriesTotal.WithLabelValues(kind, status).Inc()
}
