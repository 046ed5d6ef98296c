package trade

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	PendingRequests prometheus.Gauge
	ActiveSessions  prometheus.Gauge
	TradesCompleted prometheus.Counter
	TradesCancelled prometheus.Counter
	TradesFailed    prometheus.Counter
	RateLimited     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradehall_pending_requests",
			Help: "Outstanding trade invitations.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradehall_active_sessions",
			Help: "Negotiation sessions currently registered.",
		}),
		TradesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradehall_trades_completed_total",
			Help: "Trades that executed and committed.",
		}),
		TradesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradehall_trades_cancelled_total",
			Help: "Sessions cancelled by a participant, disconnect or idle sweep.",
		}),
		TradesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradehall_trades_failed_total",
			Help: "Sessions that reached execution and failed.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradehall_rate_limited_total",
			Help: "Calls rejected by the rate limiter.",
		}),
	}
	reg.MustRegister(m.PendingRequests, m.ActiveSessions, m.TradesCompleted, m.TradesCancelled, m.TradesFailed, m.RateLimited)
	return m
}
