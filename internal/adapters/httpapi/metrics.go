package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// obligationsGenerated は生成された支払予定の累計件数です。
var obligationsGenerated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "payroll",
	Subsystem: "generation",
	Name:      "obligations_created_total",
	Help:      "Total payment obligations created by generation runs.",
})

// obligationsSkipped は生成時にスキップされた候補の累計件数です。
var obligationsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "payroll",
	Subsystem: "generation",
	Name:      "obligations_skipped_total",
	Help:      "Total generation candidates skipped, by reason.",
}, []string{"reason"})

// paymentsMarkedPaid は支払済みへ遷移した支払予定の累計件数です。
var paymentsMarkedPaid = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "payroll",
	Subsystem: "payments",
	Name:      "marked_paid_total",
	Help:      "Total obligations transitioned to paid, by method.",
}, []string{"method"})

// paymentsReversed は追記された取消エントリの累計件数です。
var paymentsReversed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "payroll",
	Subsystem: "payments",
	Name:      "reversals_total",
	Help:      "Total reversal entries appended to the ledger.",
})
