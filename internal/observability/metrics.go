// Package observability exposes Prometheus instrumentation for the ticket
// workflow. Label cardinality is kept bounded: outcomes are labeled by a
// small fixed reason set, never by guild or user identifiers.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons for the tickets_rejected_total counter.
const (
	ReasonUnknownInbox = "unknown_inbox"
	ReasonQuota        = "quota"
	ReasonRateLimited  = "rate_limited"
)

// Metrics bundles the ticket workflow collectors. Construct with New; a nil
// *Metrics is valid and records nothing, so tests can pass it freely.
type Metrics struct {
	ticketsCreated  prometheus.Counter
	ticketsRejected *prometheus.CounterVec
	ticketsFailed   prometheus.Counter
}

// New registers the ticket workflow collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ticketsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Total number of tickets successfully created.",
		}),
		ticketsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tickets_rejected_total",
			Help: "Total number of ticket attempts rejected before creation.",
		}, []string{"reason"}),
		ticketsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "tickets_failed_total",
			Help: "Total number of ticket attempts failed during creation.",
		}),
	}
}

// TicketCreated records a successful ticket creation.
func (m *Metrics) TicketCreated() {
	if m != nil {
		m.ticketsCreated.Inc()
	}
}

// TicketRejected records an attempt turned away by a pre-creation check.
func (m *Metrics) TicketRejected(reason string) {
	if m != nil {
		m.ticketsRejected.WithLabelValues(reason).Inc()
	}
}

// TicketFailed records an attempt that failed after checks passed.
func (m *Metrics) TicketFailed() {
	if m != nil {
		m.ticketsFailed.Inc()
	}
}
