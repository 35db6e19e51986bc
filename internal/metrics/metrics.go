package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	saves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollcall",
			Subsystem: "process",
			Name:      "saves_total",
			Help:      "Number of successful checklist saves.",
		}, []string{"name"},
	)
	saveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollcall",
			Subsystem: "process",
			Name:      "save_failures_total",
			Help:      "Number of saves that failed to persist.",
		}, []string{"name"},
	)
	toggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollcall",
			Subsystem: "process",
			Name:      "toggles_total",
			Help:      "Number of participant status toggles.",
		}, []string{"name"},
	)
	participants = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "rollcall",
			Subsystem: "process",
			Name:      "participants",
			Help:      "Participants per process and state at the last save.",
		}, []string{"name", "state"},
	)
	notificationAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rollcall",
			Subsystem: "notify",
			Name:      "attempts_total",
			Help:      "Webhook delivery attempts including retries.",
		},
	)
	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollcall",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Completed webhook deliveries by outcome.",
		}, []string{"outcome"},
	)
	historyExportFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollcall",
			Subsystem: "history",
			Name:      "export_failures_total",
			Help:      "History events that could not be exported.",
		}, []string{"sink"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{saves, saveFailures, toggles, participants, notificationAttempts, notifications, historyExportFailures}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
// The caller is responsible for starting an HTTP server and wiring the route.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncSave(name string) {
	if regOK.Load() {
		saves.WithLabelValues(name).Inc()
	}
}

func IncSaveFailure(name string) {
	if regOK.Load() {
		saveFailures.WithLabelValues(name).Inc()
	}
}

func IncToggle(name string) {
	if regOK.Load() {
		toggles.WithLabelValues(name).Inc()
	}
}

func SetParticipants(name string, finished, unfinished int) {
	if regOK.Load() {
		participants.WithLabelValues(name, "finished").Set(float64(finished))
		participants.WithLabelValues(name, "unfinished").Set(float64(unfinished))
	}
}

func IncNotificationAttempt() {
	if regOK.Load() {
		notificationAttempts.Inc()
	}
}

func IncNotification(outcome string) {
	if regOK.Load() {
		notifications.WithLabelValues(outcome).Inc()
	}
}

func IncHistoryExportFailure(sink string) {
	if regOK.Load() {
		historyExportFailures.WithLabelValues(sink).Inc()
	}
}
