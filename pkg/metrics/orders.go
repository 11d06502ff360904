package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// OrderMetrics tracks order store activity.
type OrderMetrics struct {
	committed *prometheus.CounterVec
	amount    prometheus.Histogram
	lines     prometheus.Histogram
	conflicts prometheus.Counter
}

// NewOrderMetrics registers the order metrics on reg. A nil registerer yields
// a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		committed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "events_total",
			Help:      "Order store writes by kind.",
		}, []string{"kind"}),
		amount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "commit_amount",
			Help:      "Total amount of committed orders.",
			Buckets:   []float64{50, 100, 200, 300, 500, 750, 1000, 2000, 5000},
		}),
		lines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "commit_lines",
			Help:      "Number of line items per committed order.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "sequence_conflicts_total",
			Help:      "Commits rejected by the daily sequence unique index.",
		}),
	}
	reg.MustRegister(m.committed, m.amount, m.lines, m.conflicts)
	return m
}

// ObserveCommit records a freshly committed order.
func (m *OrderMetrics) ObserveCommit(total decimal.Decimal, lines int) {
	if m == nil || m.committed == nil {
		return
	}
	m.committed.WithLabelValues("created").Inc()
	m.amount.Observe(total.InexactFloat64())
	m.lines.Observe(float64(lines))
}

// IncEvent counts a non-create order write such as "amended" or "deleted".
func (m *OrderMetrics) IncEvent(kind string) {
	if m == nil || m.committed == nil {
		return
	}
	m.committed.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncSequenceConflict counts a lost daily-number race.
func (m *OrderMetrics) IncSequenceConflict() {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.Inc()
}
