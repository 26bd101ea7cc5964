package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type LedgerMetrics struct {
	Proposals metrics.Gauge
	Members   metrics.Gauge

	VotesTotal        metrics.Counter
	ExecutionsTotal   metrics.Counter
	ExecutionFailures metrics.Counter
}

func (l *LedgerMetrics) SetProposals(total uint64) {
	l.Proposals.Set(float64(total))
}
func (l *LedgerMetrics) SetMembers(num int) {
	l.Members.Set(float64(num))
}
func (l *LedgerMetrics) AddVote() {
	l.VotesTotal.Add(1)
}
func (l *LedgerMetrics) AddExecution() {
	l.ExecutionsTotal.Add(1)
}
func (l *LedgerMetrics) AddExecutionFailure() {
	l.ExecutionFailures.Add(1)
}

func PromLedgerMetrics() *LedgerMetrics {
	return &LedgerMetrics{
		Proposals: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "proposals",
			Help:      "Number of proposals in the ledger.",
		}, []string{}),
		Members: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "members",
			Help:      "Size of the membership registry.",
		}, []string{}),
		VotesTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "votes_total",
			Help:      "Total number of votes recorded.",
		}, []string{}),
		ExecutionsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "executions_total",
			Help:      "Total number of executed proposals.",
		}, []string{}),
		ExecutionFailures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "execution_failures_total",
			Help:      "Total number of failed execution attempts.",
		}, []string{}),
	}
}

func NopLedgerMetrics() *LedgerMetrics {
	return &LedgerMetrics{
		Proposals: discard.NewGauge(),
		Members:   discard.NewGauge(),

		VotesTotal:        discard.NewCounter(),
		ExecutionsTotal:   discard.NewCounter(),
		ExecutionFailures: discard.NewCounter(),
	}
}
