// Package jobmetrics instruments the asynq worker that delivers outbound mail,
// such as login codes.
package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts worker task outcomes, keyed by asynq task type ("mail:send").
type Metrics struct {
	deliveries *prometheus.CounterVec
	failures   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	dropped    *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the worker collectors. A nil registerer shares one
// set on the default Prometheus registry.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker times one delivery attempt of a task.
type Tracker struct {
	metrics  *Metrics
	taskType string
	start    time.Time
}

// Track starts timing a delivery attempt for taskType.
func (m *Metrics) Track(taskType string) *Tracker {
	return &Tracker{metrics: m, taskType: taskType, start: time.Now()}
}

// End records the attempt and returns err unchanged so handlers can
// `return tracker.End(err)`. A failed attempt is retried by asynq and
// counted again.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.taskType == "" {
		return err
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
		t.metrics.failures.WithLabelValues(t.taskType).Inc()
	}
	t.metrics.deliveries.WithLabelValues(t.taskType, outcome).Inc()
	t.metrics.latency.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
	return err
}

// Skip counts a message dropped without retry, e.g. an undecodable payload.
func (m *Metrics) Skip(taskType, reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(taskType, reason).Inc()
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipp_worker_deliveries_total",
		Help: "Mail delivery attempts by task type and outcome.",
	}, []string{"task", "outcome"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipp_worker_delivery_failures_total",
		Help: "Delivery attempts that failed and were handed back to asynq for retry.",
	}, []string{"task"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ipp_worker_delivery_seconds",
		Help:    "Time spent handing a message to the mail transport.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"task"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipp_worker_dropped_total",
		Help: "Messages dropped without retry, by task type and reason.",
	}, []string{"task", "reason"})
	registerer.MustRegister(deliveries, failures, latency, dropped)
	return &Metrics{deliveries: deliveries, failures: failures, latency: latency, dropped: dropped}
}
