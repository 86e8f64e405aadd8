package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "opportunityhub",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "opportunityhub",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	storeQueryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "opportunityhub",
			Name:      "store_query_failures_total",
			Help:      "Document store sub-queries that failed and were degraded to zero results",
		},
		[]string{"query"},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "opportunityhub",
			Name:      "cache_requests_total",
			Help:      "Result cache lookups by outcome",
		},
		[]string{"cache", "result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(storeQueryFailures)
	prometheus.MustRegister(cacheRequests)
}

// QueryFailure records a degraded store sub-query for the named strategy.
func QueryFailure(query string) {
	storeQueryFailures.WithLabelValues(query).Inc()
}

// CacheHit and CacheMiss record result-cache outcomes for the named cache.
func CacheHit(cache string)  { cacheRequests.WithLabelValues(cache, "hit").Inc() }
func CacheMiss(cache string) { cacheRequests.WithLabelValues(cache, "miss").Inc() }

// Middleware records request duration and count per route pattern.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			// Use the route pattern, not the raw URL, to keep label cardinality low.
			path := c.Path()
			if path == "" {
				path = "unknown"
			}

			statusLabel := strconv.Itoa(status)
			httpRequestDuration.WithLabelValues(c.Request().Method, path, statusLabel).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(c.Request().Method, path, statusLabel).Inc()
			return err
		}
	}
}
