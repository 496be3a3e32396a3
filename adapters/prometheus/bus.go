package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/reactbus/core/bus"
	"github.com/codewandler/reactbus/core/metrics"
)

// busMetrics implements bus.Metrics using Prometheus.
type busMetrics struct {
	messagesSent     *prometheus.CounterVec
	queueDepth       *prometheus.GaugeVec
	dispatchDuration *prometheus.HistogramVec
	deliveriesTotal  *prometheus.CounterVec
	filteredTotal    *prometheus.CounterVec
	panicTotal       *prometheus.CounterVec
	subscriptions    *prometheus.GaugeVec
}

// NewBusMetrics creates a Prometheus implementation of bus.Metrics and
// registers its collectors with reg.
func NewBusMetrics(reg prometheus.Registerer) bus.Metrics {
	m := &busMetrics{
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reactbus_messages_sent_total",
			Help: "Total number of messages enqueued",
		}, []string{"bus"}),

		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reactbus_queue_depth",
			Help: "Current number of queued messages",
		}, []string{"bus"}),

		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reactbus_dispatch_duration_seconds",
			Help:    "Time to deliver one message to all matching actors",
			Buckets: defaultBuckets,
		}, []string{"bus"}),

		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reactbus_deliveries_total",
			Help: "Total number of actor deliveries",
		}, []string{"bus", "success"}),

		filteredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reactbus_filtered_total",
			Help: "Total number of deliveries skipped by a predicate",
		}, []string{"bus"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reactbus_actor_panics_total",
			Help: "Total number of actor panics",
		}, []string{"bus"}),

		subscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reactbus_subscriptions",
			Help: "Current number of registered actors",
		}, []string{"bus"}),
	}

	reg.MustRegister(
		m.messagesSent,
		m.queueDepth,
		m.dispatchDuration,
		m.deliveriesTotal,
		m.filteredTotal,
		m.panicTotal,
		m.subscriptions,
	)

	return m
}

func (m *busMetrics) MessageSent(name string) {
	m.messagesSent.WithLabelValues(name).Inc()
}

func (m *busMetrics) QueueDepth(name string, depth int) {
	m.queueDepth.WithLabelValues(name).Set(float64(depth))
}

func (m *busMetrics) DispatchDuration(name string) metrics.Timer {
	return newTimer(m.dispatchDuration.WithLabelValues(name))
}

func (m *busMetrics) MessageDelivered(name string, success bool) {
	m.deliveriesTotal.WithLabelValues(name, boolToStr(success)).Inc()
}

func (m *busMetrics) MessageFiltered(name string) {
	m.filteredTotal.WithLabelValues(name).Inc()
}

func (m *busMetrics) ActorPanic(name string) {
	m.panicTotal.WithLabelValues(name).Inc()
}

func (m *busMetrics) Subscriptions(name string, count int) {
	m.subscriptions.WithLabelValues(name).Set(float64(count))
}

var _ bus.Metrics = (*busMetrics)(nil)
