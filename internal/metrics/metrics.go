package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "holiday_assistant"

// Metrics holds the collectors of one assistant instance on its own registry
type Metrics struct {
	registry *prometheus.Registry

	questions      *prometheus.CounterVec
	answerDuration *prometheus.HistogramVec
	failures       *prometheus.CounterVec
	reloads        *prometheus.CounterVec
	holidays       prometheus.Gauge
	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
}

// New creates and registers the assistant collectors plus the Go runtime collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_total",
			Help:      "Questions answered, by route and query kind.",
		}, []string{"route", "kind"}),
		answerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "answer_duration_seconds",
			Help:      "Time spent answering a question, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_failures_total",
			Help:      "Questions that ended in an error, by route.",
		}, []string{"route"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calendar_reloads_total",
			Help:      "Scheduled calendar reloads, by result.",
		}, []string{"result"}),
		holidays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calendar_holidays",
			Help:      "Holidays held by the in-memory calendar.",
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_lookups_total",
			Help:      "Calendar store lookups, by operation and result.",
		}, []string{"op", "result"}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_lookup_duration_seconds",
			Help:      "Time spent in calendar store lookups, by operation.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"op"}),
	}

	m.registry.MustRegister(
		m.questions,
		m.answerDuration,
		m.failures,
		m.reloads,
		m.holidays,
		m.lookups,
		m.lookupDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAnswer records one answered question
func (m *Metrics) ObserveAnswer(route, kind string, took time.Duration) {
	m.questions.WithLabelValues(route, kind).Inc()
	m.answerDuration.WithLabelValues(route).Observe(took.Seconds())
}

// ObserveFailure records a question that could not be answered
func (m *Metrics) ObserveFailure(route string) {
	m.failures.WithLabelValues(route).Inc()
}

// ObserveReload records a calendar reload and the resulting table size
func (m *Metrics) ObserveReload(err error, holidays int) {
	if err != nil {
		m.reloads.WithLabelValues("error").Inc()
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
	m.holidays.Set(float64(holidays))
}

// ObserveLookup records one calendar store lookup
func (m *Metrics) ObserveLookup(op, result string, took time.Duration) {
	m.lookups.WithLabelValues(op, result).Inc()
	m.lookupDuration.WithLabelValues(op).Observe(took.Seconds())
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
