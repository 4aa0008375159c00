package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP метрики
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "HTTP response size in bytes",
		Buckets: prometheus.ExponentialBuckets(100, 10, 5),
	}, []string{"method", "path"})

	// gRPC метрики
	GRPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grpc_requests_total",
		Help: "Total number of gRPC requests",
	}, []string{"method", "status"})

	GRPCRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grpc_request_duration_seconds",
		Help:    "gRPC request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	// DB метрики
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Database query duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	DBActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_active_connections",
		Help: "Number of active database connections",
	})

	DBIdleConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_idle_connections",
		Help: "Number of idle database connections",
	})

	// метрики проверок показателей
	VitalsChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitals_checks_total",
		Help: "Total number of vital sign checks by kind and outcome",
	}, []string{"kind", "outcome"})

	AlertsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alerts_sent_total",
		Help: "Total number of alerts handed to a notifier",
	}, []string{"notifier"})

	AlertsDeliveryFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alerts_delivery_failed_total",
		Help: "Total number of alerts a notifier failed to deliver",
	}, []string{"notifier"})

	// метрики для воркеров наблюдений
	ObservationsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_observations_received_total",
		Help: "Total number of observations received by the worker pool",
	})

	ObservationsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_observations_processed_total",
		Help: "Total number of observations successfully checked",
	})

	ObservationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_observations_failed_total",
		Help: "Total number of observations failed during checking",
	})

	ObservationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_observations_dropped_total",
		Help: "Total number of device observations dropped because the queue was full or the payload was invalid",
	})

	ObservationProcessingTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "worker_observation_processing_seconds",
		Help:    "Histogram of observation processing durations",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // от 1ms до ~16 секунд
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_active_workers",
		Help: "Current number of active workers processing observations",
	})
)
