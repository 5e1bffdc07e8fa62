package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chat turn outcomes.
const (
	OutcomeAnswered      = "answered"
	OutcomeAuthError     = "auth_error"
	OutcomeQuotaError    = "quota_error"
	OutcomeProviderError = "provider_error"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	chatTurns       *prometheus.CounterVec
	modelLatency    prometheus.Histogram
	storageFailures *prometheus.CounterVec
	registrations   prometheus.Counter
	logins          *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
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

	chatTurns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unihelp_chat_turns_total",
		Help: "Chat turns by outcome",
	}, []string{"outcome"})

	modelLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "unihelp_model_latency_seconds",
		Help:    "Latency of completion calls to the model provider",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
	})

	storageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unihelp_storage_failures_total",
		Help: "Record store writes that could not be completed",
	}, []string{"operation"})

	registrations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unihelp_registrations_total",
		Help: "Successful student registrations",
	})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unihelp_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, chatTurns, modelLatency, storageFailures, registrations, logins, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		chatTurns:       chatTurns,
		modelLatency:    modelLatency,
		storageFailures: storageFailures,
		registrations:   registrations,
		logins:          logins,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveChatTurn counts a completed turn and the model call latency.
func (m *MetricsService) ObserveChatTurn(outcome string, modelDuration time.Duration) {
	if m == nil {
		return
	}
	m.chatTurns.WithLabelValues(outcome).Inc()
	m.modelLatency.Observe(modelDuration.Seconds())
}

// RecordStorageFailure counts a write the record store rejected.
func (m *MetricsService) RecordStorageFailure(operation string) {
	if m == nil {
		return
	}
	m.storageFailures.WithLabelValues(operation).Inc()
}

// RecordRegistration counts a successful registration.
func (m *MetricsService) RecordRegistration() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

// RecordLogin counts a login attempt.
func (m *MetricsService) RecordLogin(success bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if success {
		result = "success"
	}
	m.logins.WithLabelValues(result).Inc()
}
