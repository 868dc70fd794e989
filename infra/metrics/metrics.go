// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersPlacedTotal    = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_placed_total", Help: "Orders admitted to the engine"})
	OrdersRejectedTotal  = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_rejected_total", Help: "Orders rejected by validation"})
	OrdersCancelledTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_cancelled_total", Help: "Orders cancelled"})
	TradesMatchedTotal   = prometheus.NewCounter(prometheus.CounterOpts{Name: "trades_matched_total", Help: "Trades generated by the matching loop"})
	TradeVolumeTotal     = prometheus.NewCounter(prometheus.CounterOpts{Name: "trade_volume_total", Help: "Total matched quantity"})
	TradeEventsDropped   = prometheus.NewCounter(prometheus.CounterOpts{Name: "trade_events_dropped_total", Help: "Trade events dropped because a sink queue was full"})
	MatchLatencySeconds  = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "match_latency_seconds", Help: "Latency of one add-order call", Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12)})
	RestingOrders        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "resting_orders", Help: "Orders currently resting on the book"})
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		OrdersPlacedTotal,
		OrdersRejectedTotal,
		OrdersCancelledTotal,
		TradesMatchedTotal,
		TradeVolumeTotal,
		TradeEventsDropped,
		MatchLatencySeconds,
		RestingOrders,
	)
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
