package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	executions     *prometheus.CounterVec
	submitDuration *prometheus.HistogramVec
	reconcile      *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		executions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "titledeed_ledger_executions_total",
			Help: "Ledger actions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		submitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "titledeed_ledger_submit_seconds",
			Help:    "Time spent waiting on ledger submits.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"kind"}),
		reconcile: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "titledeed_reconciliations_total",
			Help: "Reconciliation rows by event (parked, resolved, failed).",
		}, []string{"event"}),
	}
}
