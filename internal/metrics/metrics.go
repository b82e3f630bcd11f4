// Package metrics exposes Prometheus instrumentation for the automation
// engine. Counters are registered on the default registry and served by
// the HTTP adapter on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EvaluationsTotal *prometheus.CounterVec
	RulesTriggered   *prometheus.CounterVec
	ScheduleFirings  *prometheus.CounterVec
	ActionsResolved  *prometheus.CounterVec
	EntryErrors      *prometheus.CounterVec
	PendingActions   prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		EvaluationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automation_evaluations_total",
				Help: "Total number of metrics evaluations run per campaign outcome",
			},
			[]string{"outcome"},
		),
		RulesTriggered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automation_rules_triggered_total",
				Help: "Total number of rule triggers by metric and action type",
			},
			[]string{"metric", "action"},
		),
		ScheduleFirings: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automation_schedule_firings_total",
				Help: "Total number of schedule window firings by action type",
			},
			[]string{"action"},
		),
		ActionsResolved: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automation_actions_resolved_total",
				Help: "Total number of pending actions resolved by decision",
			},
			[]string{"decision"},
		),
		EntryErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automation_entry_errors_total",
				Help: "Total number of isolated per-entry evaluation failures",
			},
			[]string{"source"},
		),
		PendingActions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "automation_pending_actions",
				Help: "Number of actions currently awaiting resolution",
			},
		),
	}
}

func (m *Metrics) RecordEvaluation(outcome string) {
	m.EvaluationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRuleTrigger(metric, action string) {
	m.RulesTriggered.WithLabelValues(metric, action).Inc()
	m.PendingActions.Inc()
}

func (m *Metrics) RecordScheduleFiring(action string) {
	m.ScheduleFirings.WithLabelValues(action).Inc()
	m.PendingActions.Inc()
}

func (m *Metrics) RecordResolution(decision string) {
	m.ActionsResolved.WithLabelValues(decision).Inc()
	m.PendingActions.Dec()
}

func (m *Metrics) RecordEntryError(source string) {
	m.EntryErrors.WithLabelValues(source).Inc()
}
