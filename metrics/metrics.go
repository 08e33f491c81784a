// Package metrics exposes the gauges and counters served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	Capital       prometheus.Gauge
	PeakCapital   prometheus.Gauge
	Drawdown      prometheus.Gauge
	OpenPositions prometheus.Gauge
	BreakerHalted prometheus.Gauge

	Decisions    *prometheus.CounterVec
	Orders       *prometheus.CounterVec
	TradesClosed *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Capital: factory.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_capital_usd",
			Help: "Current account capital in USD.",
		}),
		PeakCapital: factory.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_peak_capital_usd",
			Help: "Peak account capital in USD.",
		}),
		Drawdown: factory.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_drawdown",
			Help: "Current peak-to-capital drawdown fraction.",
		}),
		OpenPositions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_open_positions",
			Help: "Number of open positions.",
		}),
		BreakerHalted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_breaker_halted",
			Help: "1 when the circuit breaker is HALTED.",
		}),
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_decisions_total",
			Help: "Trade decisions by outcome and rejection reason.",
		}, []string{"outcome", "reason"}),
		Orders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_orders_total",
			Help: "Entry order placements by result.",
		}, []string{"result"}),
		TradesClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_trades_closed_total",
			Help: "Closed positions by terminal state.",
		}, []string{"state"}),
	}
}
