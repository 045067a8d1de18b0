// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ConnectedClients prometheus.Gauge
	ActivePairs      prometheus.Gauge
	EventsForwarded  prometheus.Counter
	EventsDropped    prometheus.Counter
	ForwardLatency   prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of connected clients",
		}),
		ActivePairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_pairs",
			Help:      "Number of active session rooms",
		}),
		EventsForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_forwarded_total",
			Help:      "Total number of events forwarded to a counterpart",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Total number of events dropped because no counterpart was connected",
		}),
		ForwardLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forward_latency_seconds",
			Help:      "Event routing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.ConnectedClients,
		m.ActivePairs,
		m.EventsForwarded,
		m.EventsDropped,
		m.ForwardLatency,
	)

	return m
}

type Monitor struct {
	metrics      *Metrics
	startTime    time.Time
	forwardCount int64
	mutex        sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())

	// 添加expvar指标
	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("forwarded", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.forwardCount
	}))

	go http.ListenAndServe(addr, nil)
}

func (m *Monitor) IncConnectedClients() {
	m.metrics.ConnectedClients.Inc()
}

func (m *Monitor) DecConnectedClients() {
	m.metrics.ConnectedClients.Dec()
}

func (m *Monitor) SetActivePairs(count int) {
	m.metrics.ActivePairs.Set(float64(count))
}

func (m *Monitor) IncEventsForwarded() {
	m.metrics.EventsForwarded.Inc()
	m.mutex.Lock()
	m.forwardCount++
	m.mutex.Unlock()
}

func (m *Monitor) IncEventsDropped() {
	m.metrics.EventsDropped.Inc()
}

func (m *Monitor) ObserveForwardLatency(duration time.Duration) {
	m.metrics.ForwardLatency.Observe(duration.Seconds())
}
