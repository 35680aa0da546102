package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"workorder-system/internal/origin"
)

const namespace = "workorder_origin"

// Metrics - счётчики загрузчиков и отказов валидатора идентификаторов.
// Реализует origin.LoadObserver.
type Metrics struct {
	loads        *prometheus.CounterVec
	loadErrors   *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	inFlight     *prometheus.GaugeVec
	stale        *prometheus.CounterVec
	rejections   *prometheus.CounterVec

	registry *prometheus.Registry
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Total number of directory loads",
			},
			[]string{"kind"},
		),
		loadErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_errors_total",
				Help:      "Total number of failed directory loads",
			},
			[]string{"kind"},
		),
		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Duration of directory loads in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "loads_in_flight",
				Help:      "Directory loads currently running",
			},
			[]string{"kind"},
		),
		stale: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_results_total",
				Help:      "Loader results discarded because a newer request for the same key exists",
			},
			[]string{"kind"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "task_id_rejections_total",
				Help:      "Task identifiers refused by the validator",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		m.loads,
		m.loadErrors,
		m.loadDuration,
		m.inFlight,
		m.stale,
		m.rejections,
	)

	return m
}

func (m *Metrics) LoadStarted(kind origin.LoadKind) {
	m.loads.WithLabelValues(string(kind)).Inc()
	m.inFlight.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) LoadFinished(kind origin.LoadKind, took time.Duration, err error) {
	k := string(kind)
	m.inFlight.WithLabelValues(k).Dec()
	m.loadDuration.WithLabelValues(k).Observe(took.Seconds())
	switch {
	case err == nil:
	case errors.Is(err, origin.ErrStaleResult):
		m.stale.WithLabelValues(k).Inc()
	default:
		m.loadErrors.WithLabelValues(k).Inc()
	}
}

func (m *Metrics) TaskIDRejected(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
