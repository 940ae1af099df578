// Package metrics provides the centralized Prometheus registry for the
// storefront API. All metrics are defined in their respective packages
// (woo, cache) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the storefront API.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Upstream Request Metrics (pkg/woo):
//   - woo_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - woo_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - woo_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//   - woo_retries_total{error_class} (Counter): Retry attempts by error class
//   - woo_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - woo_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total{prefix} (Counter): Cache hits by key prefix
//   - catalog_cache_misses_total{prefix} (Counter): Cache misses by key prefix
//   - catalog_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(catalog_cache_hits_total[5m])) /
//   (sum(rate(catalog_cache_hits_total[5m])) + sum(rate(catalog_cache_misses_total[5m])))
//
//   # Upstream Error Rate
//   rate(woo_errors_total[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(woo_request_duration_seconds_bucket[5m]))
