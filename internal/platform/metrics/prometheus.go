package metrics

import (
	"net/http"

	"github.com/inkcloud/review-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Manager holds the service's Prometheus metrics.
type Manager struct {
	Registry            *prometheus.Registry
	ReviewsCreatedTotal prometheus.Counter
	ReviewUpdatesTotal  prometheus.Counter
	ReviewDeletesTotal  prometheus.Counter
	LikesTotal          prometheus.Counter
	LikeCancelsTotal    prometheus.Counter
	ReportsTotal        prometheus.Counter
	HTTPErrorsTotal     *prometheus.CounterVec
	HTTPLatency         *prometheus.HistogramVec
}

// NewManager initializes and registers the service metrics on a private
// registry.
func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	m := &Manager{
		Registry: registry,
		ReviewsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "reviews_created_total",
			Help:      "Total number of reviews created.",
		}),
		ReviewUpdatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "review_updates_total",
			Help:      "Total number of reviews updated.",
		}),
		ReviewDeletesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "review_deletes_total",
			Help:      "Total number of reviews deleted.",
		}),
		LikesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "review_likes_total",
			Help:      "Total number of review likes.",
		}),
		LikeCancelsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "review_like_cancels_total",
			Help:      "Total number of cancelled review likes.",
		}),
		ReportsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "review_reports_total",
			Help:      "Total number of review abuse reports filed.",
		}),
		HTTPErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "http_errors_total",
			Help:      "Total number of HTTP error responses by route and status.",
		}, []string{"route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Name:      "http_request_latency_seconds",
			Help:      "Latency of HTTP requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	registry.MustRegister(
		m.ReviewsCreatedTotal,
		m.ReviewUpdatesTotal,
		m.ReviewDeletesTotal,
		m.LikesTotal,
		m.LikeCancelsTotal,
		m.ReportsTotal,
		m.HTTPErrorsTotal,
		m.HTTPLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

// StartServer starts an HTTP server exposing /metrics for the registry.
func StartServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Metrics server port not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting",
		zap.String("port", port),
		zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
