// Package metrics exposes prometheus collectors for the chartflow engine.
//
// Collectors satisfies event.Observer and schedule.Observer, so a single
// value can be handed to chart.WithObserver.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chartflow"

// Collectors holds the engine metrics.
type Collectors struct {
	gatherer prometheus.Gatherer

	eventsDispatched *prometheus.CounterVec // by event type
	listenerPanics   *prometheus.CounterVec // by event type

	throttleFlushes   prometheus.Counter
	throttleCallbacks prometheus.Counter
	debounceFires     *prometheus.CounterVec // by trigger: idle, max

	dataLoads     *prometheus.CounterVec // by data type and status
	dataLoadTime  *prometheus.HistogramVec
	dataInFlight  prometheus.Gauge
	contextsAlive prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh prometheus.Registry.
func New(reg prometheus.Registerer) (*Collectors, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := &Collectors{
		eventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "event",
			Name:      "dispatched_total",
			Help:      "Total number of events delivered by dispatchers",
		}, []string{"type"}),

		listenerPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "event",
			Name:      "listener_panics_total",
			Help:      "Total number of recovered listener panics",
		}, []string{"type"}),

		throttleFlushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "throttle_flushes_total",
			Help:      "Total number of throttle frame flushes",
		}),

		throttleCallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "throttle_callbacks_total",
			Help:      "Total number of throttled callbacks run by frame flushes",
		}),

		debounceFires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "debounce_fires_total",
			Help:      "Total number of debounce sessions closed",
		}, []string{"trigger"}), // trigger: idle, max

		dataLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "loads_total",
			Help:      "Total number of data loads",
		}, []string{"data_type", "status"}), // status: success, failure

		dataLoadTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "load_duration_seconds",
			Help:      "Data load duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}, []string{"data_type"}),

		dataInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "loads_in_flight",
			Help:      "Current number of data loads in flight",
		}),

		contextsAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "contexts",
			Help:      "Current number of registered chart contexts",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.eventsDispatched, c.listenerPanics,
		c.throttleFlushes, c.throttleCallbacks, c.debounceFires,
		c.dataLoads, c.dataLoadTime, c.dataInFlight, c.contextsAlive,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c, nil
}

// EventDispatched counts a dispatched event.
func (c *Collectors) EventDispatched(eventType string) {
	c.eventsDispatched.WithLabelValues(eventType).Inc()
}

// ListenerPanicked counts a recovered listener panic.
func (c *Collectors) ListenerPanicked(eventType string) {
	c.listenerPanics.WithLabelValues(eventType).Inc()
}

// ThrottleFlushed counts a frame flush that ran callbacks.
func (c *Collectors) ThrottleFlushed(callbacks int) {
	c.throttleFlushes.Inc()
	c.throttleCallbacks.Add(float64(callbacks))
}

// DebounceFired counts a closed debounce session.
func (c *Collectors) DebounceFired(forced bool) {
	trigger := "idle"
	if forced {
		trigger = "max"
	}
	c.debounceFires.WithLabelValues(trigger).Inc()
}

// LoadStarted marks a data load in flight and returns a function that
// records its outcome.
func (c *Collectors) LoadStarted(dataType string) (done func(err error)) {
	start := time.Now()
	c.dataInFlight.Inc()
	return func(err error) {
		c.dataInFlight.Dec()
		c.dataLoadTime.WithLabelValues(dataType).Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "failure"
		}
		c.dataLoads.WithLabelValues(dataType, status).Inc()
	}
}

// SetContexts records the number of registered contexts.
func (c *Collectors) SetContexts(n int) {
	c.contextsAlive.Set(float64(n))
}

// Handler serves the registry the collectors were registered with, or the
// default prometheus gatherer when that registry cannot be gathered.
func (c *Collectors) Handler() http.Handler {
	g := c.gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
