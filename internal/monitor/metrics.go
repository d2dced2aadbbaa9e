package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments of a manager.
type Metrics struct {
	registrations   prometheus.Gauge
	registerTotal   *prometheus.CounterVec
	eventsDelivered *prometheus.CounterVec
	eventsIgnored   *prometheus.CounterVec
	eventsDropped   prometheus.Counter
	callbackPanics  prometheus.Counter
	hooksInstalled  prometheus.Gauge
	partialInstalls prometheus.Counter
	pruned          prometheus.Counter
}

// NewMetrics creates the manager instruments and registers them with reg.
// A nil reg leaves the instruments unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registrations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "winmon",
			Subsystem: "registry",
			Name:      "registrations",
			Help:      "Number of currently monitored windows",
		}),
		registerTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "winmon",
			Subsystem: "registry",
			Name:      "register_total",
			Help:      "Register calls by result code",
		}, []string{"code"}),
		eventsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "winmon",
			Subsystem: "events",
			Name:      "delivered_total",
			Help:      "Semantic events delivered to consumers",
		}, []string{"event"}),
		eventsIgnored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "winmon",
			Subsystem: "events",
			Name:      "ignored_total",
			Help:      "Raw events dropped by the classifier",
		}, []string{"raw"}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "winmon",
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events dropped because the delivery queue was full",
		}),
		callbackPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "winmon",
			Subsystem: "events",
			Name:      "callback_panics_total",
			Help:      "Consumer callbacks that panicked",
		}),
		hooksInstalled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "winmon",
			Subsystem: "hooks",
			Name:      "installed",
			Help:      "Native hooks currently installed",
		}),
		partialInstalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "winmon",
			Subsystem: "hooks",
			Name:      "partial_installs_total",
			Help:      "Registrations that installed only some hook classes",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "winmon",
			Subsystem: "registry",
			Name:      "pruned_total",
			Help:      "Registrations removed because their window disappeared",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.registrations,
			m.registerTotal,
			m.eventsDelivered,
			m.eventsIgnored,
			m.eventsDropped,
			m.callbackPanics,
			m.hooksInstalled,
			m.partialInstalls,
			m.pruned,
		)
	}

	return m
}
