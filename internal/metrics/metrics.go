// Package metrics объявляет prometheus-метрики денежного контура.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransfersTotal исходы работы движка переводов: committed, rejected, duplicate.
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_transfers_total",
		Help: "Transfer engine outcomes",
	}, []string{"outcome"})

	TransferRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_transfer_rejections_total",
		Help: "Rejected transfers by error kind",
	}, []string{"kind"})

	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_settlements_total",
		Help: "payOrder outcomes",
	}, []string{"outcome"})

	ReconciliationRepairedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_reconciliation_repaired_total",
		Help: "Orders repaired by the reconciliation sweep",
	})

	ReconciliationSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wallet_reconciliation_sweep_duration_seconds",
		Help:    "Latency distribution of reconciliation sweeps",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"
	OutcomePaid      = "paid"
	OutcomeNoop      = "noop"
	OutcomeFailed    = "failed"
)
