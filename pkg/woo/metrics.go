package woo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for upstream WooCommerce requests.
var (
	wooRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "woo_requests_total",
		Help: "Total WooCommerce requests by endpoint and status",
	}, []string{"endpoint", "status"})

	wooRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "woo_request_duration_seconds",
		Help:    "WooCommerce request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	wooErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "woo_errors_total",
		Help: "Total WooCommerce errors by class",
	}, []string{"class"})

	wooRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "woo_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	wooRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "woo_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	wooRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "woo_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)
