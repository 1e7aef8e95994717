package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the register engine collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	operations     *prometheus.CounterVec
	retries        prometheus.Counter
	staleRevisions prometheus.Counter
	items          *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docregister_operations_total",
				Help: "Register operations by name and result.",
			},
			[]string{"operation", "result"},
		),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docregister_tx_retries_total",
			Help: "Transactions retried after a write conflict.",
		}),
		staleRevisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docregister_stale_revisions_total",
			Help: "Revisions appended whose origin predates the revision they follow.",
		}),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docregister_transmittal_items_total",
				Help: "Transmittal items processed by outcome.",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.operations, m.retries, m.staleRevisions, m.items)
	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, resultLabel(err)).Inc()
}

func (m *Metrics) retried() {
	if m != nil {
		m.retries.Inc()
	}
}

func (m *Metrics) stale() {
	if m != nil {
		m.staleRevisions.Inc()
	}
}

func (m *Metrics) item(outcome string) {
	if m != nil {
		m.items.WithLabelValues(outcome).Inc()
	}
}

func resultLabel(err error) string {
	var partial *PartialTransmittalFailure
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &partial):
		return "partial"
	case errors.Is(err, ErrStorageUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
