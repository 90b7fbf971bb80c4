// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the Prometheus instrumentation for gateway traffic. Labels
// use the registered route template (e.g. /api/entities/:address) so that
// screened addresses never become label values. Requests that match no route
// share the single "unmatched" label.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "gateway"
	unmatchedRoute   = "unmatched"
)

// Payload buckets from 200B up to the 1 MiB request cap and the 5 MiB
// upstream response cap.
var sizeBuckets = []float64{
	200, 1 << 10, 4 << 10, 16 << 10, 64 << 10,
	256 << 10, 1 << 20, 5 << 20,
}

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, including upstream and store time.",
			// Upstream calls are bounded by a 10s default timeout.
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"method", "route"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_inflight",
			Help:      "Requests currently being served.",
		},
	)

	httpReqSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_size_bytes",
			Help:      "Declared request body sizes.",
			Buckets:   sizeBuckets,
		},
		[]string{"route"},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_response_size_bytes",
			Help:      "Response body sizes, including relayed upstream verdicts.",
			Buckets:   sizeBuckets,
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpReqSize, httpRespSize)
}

// Metrics returns a Gin middleware that records request count, latency,
// in-flight requests and body sizes.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInflight.Inc()
		start := time.Now()
		defer func() {
			httpInflight.Dec()
			// A panic is still unwinding here. Recovery answers 500 once it
			// reaches the outer frame, unless a response was already started.
			if p := recover(); p != nil {
				status := http.StatusInternalServerError
				if c.Writer.Written() {
					status = c.Writer.Status()
				}
				observeRequest(c, status, start)
				panic(p)
			}
			observeRequest(c, c.Writer.Status(), start)
		}()

		c.Next()
	}
}

func observeRequest(c *gin.Context, status int, start time.Time) {
	route := routeLabel(c)
	method := c.Request.Method

	httpReqs.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLat.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	if n := c.Request.ContentLength; n > 0 {
		httpReqSize.WithLabelValues(route).Observe(float64(n))
	}
	// Size is -1 when nothing was written (304, aborted).
	if n := c.Writer.Size(); n >= 0 {
		httpRespSize.WithLabelValues(route).Observe(float64(n))
	}
}

func routeLabel(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return unmatchedRoute
}
