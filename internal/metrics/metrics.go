package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "munidenuncia",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "munidenuncia",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"route", "method"})

	// AdapterErrorsTotal counts adapter failures by error class.
	AdapterErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "munidenuncia",
		Subsystem: "adapter",
		Name:      "errors_total",
		Help:      "Data adapter failures surfaced to HTTP clients, labeled by class.",
	}, []string{"class"})

	ReportsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "munidenuncia",
		Subsystem: "reports",
		Name:      "created_total",
		Help:      "Reports created.",
	})

	MessagesSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "munidenuncia",
		Subsystem: "messages",
		Name:      "sent_total",
		Help:      "Messages posted to report threads, labeled by sender.",
	}, []string{"sender"})

	WebsocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "munidenuncia",
		Subsystem: "realtime",
		Name:      "websocket_clients",
		Help:      "Open report thread websockets.",
	})
)

// Register registers the metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			AdapterErrorsTotal,
			ReportsCreatedTotal,
			MessagesSentTotal,
			WebsocketClients,
		)
	})
}
