package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the loyalty engine counters
type Metrics struct {
	TransactionsRecorded prometheus.Counter
	VouchersIssued       *prometheus.CounterVec
	VoucherTransitions   *prometheus.CounterVec
	DrawsRun             prometheus.Counter
	WinnersDrawn         prometheus.Counter
	PrizesChosen         prometheus.Counter
	PrizesCollected      prometheus.Counter
	Conflicts            *prometheus.CounterVec
	JobRuns              *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// New registers the counters on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TransactionsRecorded: f.NewCounter(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "transactions_recorded_total",
			Help:      "Purchase transactions recorded.",
		}),
		VouchersIssued: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "vouchers_issued_total",
			Help:      "Vouchers issued, by rule kind.",
		}, []string{"rule_kind"}),
		VoucherTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "voucher_transitions_total",
			Help:      "Voucher status transitions, by action.",
		}, []string{"action"}),
		DrawsRun: f.NewCounter(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "draws_run_total",
			Help:      "Lottery draws executed.",
		}),
		WinnersDrawn: f.NewCounter(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "winners_drawn_total",
			Help:      "Winners selected across all draws.",
		}),
		PrizesChosen: f.NewCounter(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "prizes_chosen_total",
			Help:      "Prizes assigned to winners.",
		}),
		PrizesCollected: f.NewCounter(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "prizes_collected_total",
			Help:      "Prizes handed over to winners.",
		}),
		Conflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "conflicts_total",
			Help:      "Operations rejected by a concurrent update, by operation.",
		}, []string{"operation"}),
		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "job_runs_total",
			Help:      "Scheduled job runs, by job and result.",
		}, []string{"job", "result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loyalty",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}
