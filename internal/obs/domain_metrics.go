package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersCommittedTotal counts successfully committed orders by price basis.
	OrdersCommittedTotal *prometheus.CounterVec
	// StockConflictsTotal counts commit attempts aborted by the authoritative stock re-check.
	StockConflictsTotal prometheus.Counter
	// QuantityAdjustmentsTotal counts draft quantity shrinks forced by stock notifications.
	QuantityAdjustmentsTotal *prometheus.CounterVec
	// StockDecrementFailuresTotal counts post-commit stock decrements that failed.
	StockDecrementFailuresTotal prometheus.Counter
	// CommitDuration records end-to-end commit latency in milliseconds.
	CommitDuration prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers order-domain Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersCommittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_committed_total",
			Help:      "Count of committed orders by price basis.",
		}, []string{"basis"})
		StockConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_conflicts_total",
			Help:      "Count of commits aborted because authoritative stock fell below a requested quantity.",
		})
		QuantityAdjustmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantity_adjustments_total",
			Help:      "Count of draft quantities shrunk by external stock changes.",
		}, []string{"reason"})
		StockDecrementFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_decrement_failures_total",
			Help:      "Count of post-commit stock decrement attempts that failed.",
		})
		CommitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_commit_duration_ms",
			Help:      "Order commit latency in milliseconds, including the stock re-check.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		})

		registerOrReuse(reg, OrdersCommittedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrdersCommittedTotal = v
			}
		})
		registerOrReuse(reg, StockConflictsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				StockConflictsTotal = v
			}
		})
		registerOrReuse(reg, QuantityAdjustmentsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuantityAdjustmentsTotal = v
			}
		})
		registerOrReuse(reg, StockDecrementFailuresTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				StockDecrementFailuresTotal = v
			}
		})
		registerOrReuse(reg, CommitDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CommitDuration = v
			}
		})
	})
}
