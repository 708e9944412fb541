package monitor

import (
	"expvar"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ConnectedClients prometheus.Gauge
	ActiveRooms      prometheus.Gauge
	EventsReceived   prometheus.Counter
	EventLatency     prometheus.Histogram
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of open websocket connections",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of live rooms",
		}),
		EventsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Total number of client events received",
		}),
		EventLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_handling_seconds",
			Help:      "Event handling latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	reg.MustRegister(
		m.ConnectedClients,
		m.ActiveRooms,
		m.EventsReceived,
		m.EventLatency,
	)

	return m
}

// Monitor exposes server health over a dedicated address. Each Monitor owns
// its registry, so tests can build as many as they like.
type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	reg := prometheus.NewRegistry()
	return &Monitor{
		metrics:   NewMetrics(namespace, reg),
		registry:  reg,
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	go http.ListenAndServe(addr, mux)
}

func (m *Monitor) IncConnectedClients() {
	m.metrics.ConnectedClients.Inc()
}

func (m *Monitor) DecConnectedClients() {
	m.metrics.ConnectedClients.Dec()
}

func (m *Monitor) SetActiveRooms(count int) {
	m.metrics.ActiveRooms.Set(float64(count))
}

func (m *Monitor) IncEventsReceived() {
	m.metrics.EventsReceived.Inc()
}

func (m *Monitor) ObserveEventLatency(duration time.Duration) {
	m.metrics.EventLatency.Observe(duration.Seconds())
}
