package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the ledger operations behind it.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	ledgerOps       *prometheus.CounterVec
	subscriberGauge prometheus.Gauge
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	ledgerOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Ledger operations by module, operation and outcome",
	}, []string{"module", "operation", "outcome"})

	subscriberGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "announcement_subscribers",
		Help: "Currently open announcement subscriptions",
	})

	registry.MustRegister(requestDuration, requestTotal, ledgerOps, subscriberGauge)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		ledgerOps:       ledgerOps,
		subscriberGauge: subscriberGauge,
	}
}

// Handler exposes the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveLedgerOp counts a ledger operation outcome.
func (s *MetricsService) ObserveLedgerOp(module, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.ledgerOps.WithLabelValues(module, operation, outcome).Inc()
}

// SubscriberOpened tracks a new live subscription.
func (s *MetricsService) SubscriberOpened() {
	s.subscriberGauge.Inc()
}

// SubscriberClosed tracks a released live subscription.
func (s *MetricsService) SubscriberClosed() {
	s.subscriberGauge.Dec()
}
