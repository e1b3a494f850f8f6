// Package metrics exposes Prometheus collectors for the watcher.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	watcherRunsTotal      *prometheus.CounterVec
	acquireAttemptsTotal  *prometheus.CounterVec
	notifyFailuresTotal   prometheus.Counter
	lastChangeUnixSeconds prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		watcherRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watcher_runs_total",
				Help: "Total watcher runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		acquireAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watcher_acquire_attempts_total",
				Help: "Total acquisition attempts, labeled by result.",
			},
			[]string{"result"},
		)

		notifyFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "watcher_notify_failures_total",
				Help: "Total failed notification pushes.",
			},
		)

		lastChangeUnixSeconds = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "watcher_last_change_unix_seconds",
				Help: "Unix time of the last persisted round change.",
			},
		)
	})
}

// RecordRun counts one finished run under its outcome label.
func RecordRun(outcome string) {
	if watcherRunsTotal != nil {
		watcherRunsTotal.WithLabelValues(outcome).Inc()
	}
}

// RecordAttempt counts one acquisition attempt result ("ok" or "failed").
func RecordAttempt(result string) {
	if acquireAttemptsTotal != nil {
		acquireAttemptsTotal.WithLabelValues(result).Inc()
	}
}

// RecordNotifyFailure counts one failed notification push.
func RecordNotifyFailure() {
	if notifyFailuresTotal != nil {
		notifyFailuresTotal.Inc()
	}
}

// RecordChange marks the time a round change was durably recorded.
func RecordChange(unixSeconds float64) {
	if lastChangeUnixSeconds != nil {
		lastChangeUnixSeconds.Set(unixSeconds)
	}
}
