// Package metrics содержит счётчики Prometheus сервиса.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Исходы операций реестра.
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeConflict    = "conflict"
	OutcomeCapacity    = "capacity"
	OutcomeUnavailable = "unavailable"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
)

// Metrics - набор метрик приложения. Нулевой указатель допустим: все методы становятся no-op.
type Metrics struct {
	registry *prometheus.Registry

	registryOps     *prometheus.CounterVec
	recommendations prometheus.Counter
	pushes          *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New создаёт метрики в собственном реестре.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		registryOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_operations_total",
			Help: "Team registry operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		recommendations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Recommendation lists served.",
		}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_notifications_total",
			Help: "Push notifications by outcome.",
		}, []string{"outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.registryOps, m.recommendations, m.pushes, m.httpDuration)
	return m
}

func (m *Metrics) RegistryOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.registryOps.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) RecommendationServed() {
	if m == nil {
		return
	}
	m.recommendations.Inc()
}

func (m *Metrics) PushNotification(outcome string) {
	if m == nil {
		return
	}
	m.pushes.WithLabelValues(outcome).Inc()
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry нужен тестам для чтения значений.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Middleware измеряет длительность запросов по шаблону маршрута chi.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
