package seckill

import "github.com/prometheus/client_golang/prometheus"

var (
	// admitResults 按结果统计准入判定次数。
	admitResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seckill_admit_total",
			Help: "Seckill admission outcomes.",
		},
		[]string{"result"},
	)

	// orderPersisted 异步落单成功数。
	orderPersisted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "seckill_order_persisted_total",
			Help: "Orders durably persisted by the ingestion worker.",
		},
	)

	// orderDropped 因权威库存耗尽被丢弃的意向数（准入/权威计数漂移信号）。
	orderDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "seckill_order_dropped_total",
			Help: "Admitted intents dropped because authoritative stock was exhausted.",
		},
	)

	// stockDrift 审计测得的准入计数器与权威库存差值。
	stockDrift = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "seckill_stock_drift",
			Help: "Redis admission counter minus authoritative stock, per voucher.",
		},
		[]string{"voucher_id"},
	)
)

func init() {
	prometheus.MustRegister(admitResults, orderPersisted, orderDropped, stockDrift)
}
